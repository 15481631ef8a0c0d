// Package pak reads game archive containers and writes patch containers.
//
// A container is a data section of members, each stored raw or as
// independently compressed chunks, followed by a table of contents, a footer
// with the table's SHA-1 and a block naming the compression methods in use.
//
// Members are extracted into an in-memory overlay, edited, and patched back.
// Build then writes a new container holding only the members whose bytes
// changed, under a mount point extended by the directory they share.
// Compressed members are recompressed with DEFLATE.
//
// # Quick Start
//
//	c, err := pak.Open("Game-Switch.pak")
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
//
//	data, err := c.ExtractFile("JobDataAsset.uexp")
//	if err != nil {
//	    return err
//	}
//	data[0]++
//	if err := c.PatchFile(data, "JobDataAsset.uexp"); err != nil {
//	    return err
//	}
//	res, err := c.BuildFile(ctx, "Game-Switch_P.pak")
//
// Members are named by base name when it is unique. When several entries
// share a base name, the name must be a substring of exactly one of their
// paths.
//
// # Assets
//
// The uasset package decodes a member pair through a Container:
//
//	asset, err := uasset.Load(c, "JobDataAsset")
package pak
