package testutil

import "encoding/binary"

// Offsets of the header fields written by UAsset.
const (
	UAssetHeaderSize        = 0x80
	UAssetTotalHeaderSize   = 0x18
	UAssetNameCount         = 0x29
	UAssetNameOffset        = 0x2D
	UAssetExportOffset      = 0x3D
	UAssetImportOffset      = 0x45
	UAssetDependsOffset     = 0x49
	UAssetSoftPackageOffset = 0x51
	UAssetThumbnailOffset   = 0x59
)

// UAssetTail is the opaque data written after the footer's two size fields.
var UAssetTail = []byte{0xAB, 0xAB, 0xAB, 0xAB, 0xCD, 0xCD, 0xCD, 0xCD}

// NameHash returns the opaque hash field UAsset stores for entry i.
func NameHash(i int) uint32 {
	return 0x9E370000 + uint32(i)
}

// UAsset assembles a header member holding names, with a footer whose first
// field records streamSize-4 and whose second records the header length.
// The soft package reference offset is left zero, as for assets without
// that section.
func UAsset(names []string, streamSize int) []byte {
	header := make([]byte, UAssetHeaderSize)
	copy(header, []byte{0xC1, 0x83, 0x2A, 0x9E})

	var entries []byte
	for i, n := range names {
		entries = appendFString(entries, n)
		entries = binary.LittleEndian.AppendUint32(entries, NameHash(i))
	}
	nameEnd := uint32(UAssetHeaderSize + len(entries))
	total := nameEnd + 16 + uint32(len(UAssetTail))

	put := func(off int, v uint32) { binary.LittleEndian.PutUint32(header[off:], v) }
	put(UAssetTotalHeaderSize, total)
	put(UAssetNameCount, uint32(len(names)))
	put(UAssetNameOffset, UAssetHeaderSize)
	put(UAssetExportOffset, nameEnd+8)
	put(UAssetImportOffset, nameEnd)
	put(UAssetDependsOffset, nameEnd+16)
	put(UAssetThumbnailOffset, total)

	out := append(header, entries...)
	out = binary.LittleEndian.AppendUint64(out, uint64(streamSize-4))
	out = binary.LittleEndian.AppendUint64(out, uint64(total))
	return append(out, UAssetTail...)
}
