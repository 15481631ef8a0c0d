// Package uasset reads and rebuilds asset pairs: a header member holding
// the package summary and name table, and a stream member holding the
// property table.
//
// Only the name table and the header fields that depend on it are
// interpreted; the rest of the header is carried through unchanged.
//
// Basic usage:
//
//	asset, err := uasset.Load(container, "JobDataAsset")
//	if err != nil {
//	    return err
//	}
//	jobs, err := asset.Table().Map("JobDataMap")
//	...
//	if err := asset.Update(); err != nil {
//	    return err
//	}
package uasset
