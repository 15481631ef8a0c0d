// Package property decodes and encodes tagged property tables.
//
// A table is a sequence of (field name, tag) pairs, each followed by a
// tag-specific payload, ending with the name "None". Names and tags are
// stored as indexes into the asset's name table, so every operation takes a
// Names resolver.
//
// Sizes declared by fixed-width tags are checked on decode and echoed on
// encode. Struct, Text, Array and Map payloads can change length when edited,
// so their sizes are always recomputed on encode.
//
// Basic usage:
//
//	table, err := property.Decode(stream, names)
//	if err != nil {
//	    return err
//	}
//	if err := table.SetInt("Exp", 250); err != nil {
//	    return err
//	}
//	stream, err = property.Encode(table, names)
package property
