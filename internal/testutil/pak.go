package testutil

import (
	"crypto/sha1" //nolint:gosec // the container format uses SHA-1
	"encoding/binary"
)

// PakMagic is the magic value written by BuildPak.
const PakMagic uint64 = 0x0000000B_5A6F12E1

// PakEntry describes one member of a synthetic container. Entries with a
// nil Compress are stored raw; others are split into BlockSize pieces that
// are each passed through Compress.
type PakEntry struct {
	Path      string
	Data      []byte
	Method    uint32
	BlockSize int
	Compress  func(block []byte) []byte
}

// Pak describes a synthetic container.
type Pak struct {
	Mount   string
	Magic   uint64
	Methods []string
	Entries []PakEntry
}

// BuildPak assembles the container bytes: the data section with an
// in-data header copy ahead of every member, the table of contents, the
// footer and the compression method block.
func BuildPak(p Pak) []byte {
	var data, toc []byte
	toc = appendFString(toc, p.Mount)
	toc = binary.LittleEndian.AppendUint32(toc, uint32(len(p.Entries)))

	for _, e := range p.Entries {
		base := uint64(len(data))
		var header, body []byte
		if e.Compress == nil {
			sum := sha1.Sum(e.Data) //nolint:gosec // format digest
			header = entryHeader(uint64(len(e.Data)), uint64(len(e.Data)), 0, sum)
			header = append(header, 0)
			header = binary.LittleEndian.AppendUint32(header, 0)
			body = e.Data
		} else {
			var chunks [][]byte
			for off := 0; off < len(e.Data); off += e.BlockSize {
				end := min(off+e.BlockSize, len(e.Data))
				chunks = append(chunks, e.Compress(e.Data[off:end]))
			}
			for _, c := range chunks {
				body = append(body, c...)
			}
			sum := sha1.Sum(body) //nolint:gosec // format digest
			header = entryHeader(uint64(len(body)), uint64(len(e.Data)), e.Method, sum)
			header = binary.LittleEndian.AppendUint32(header, uint32(len(chunks)))
			pos := uint64(8 + len(header) + 16*len(chunks) + 5)
			for _, c := range chunks {
				header = binary.LittleEndian.AppendUint64(header, pos)
				pos += uint64(len(c))
				header = binary.LittleEndian.AppendUint64(header, pos)
			}
			header = append(header, 0)
			header = binary.LittleEndian.AppendUint32(header, uint32(min(e.BlockSize, len(e.Data))))
		}

		data = binary.LittleEndian.AppendUint64(data, 0)
		data = append(data, header...)
		data = append(data, body...)

		toc = appendFString(toc, e.Path)
		toc = binary.LittleEndian.AppendUint64(toc, base)
		toc = append(toc, header...)
	}

	out := append([]byte(nil), data...)
	out = append(out, toc...)
	out = append(out, make([]byte, 17)...)
	out = binary.LittleEndian.AppendUint64(out, p.Magic)
	out = binary.LittleEndian.AppendUint64(out, uint64(len(data)))
	out = binary.LittleEndian.AppendUint64(out, uint64(len(toc)))
	sum := sha1.Sum(toc) //nolint:gosec // format digest
	out = append(out, sum[:]...)
	methods := make([]byte, 5*32)
	for i, m := range p.Methods {
		copy(methods[i*32:(i+1)*32], m)
	}
	return append(out, methods...)
}

// PakTOCRange returns the offset and size of the table of contents in a
// container built by BuildPak.
func PakTOCRange(pak []byte) (int64, int64) {
	footer := pak[len(pak)-160-44:]
	return int64(binary.LittleEndian.Uint64(footer[8:])), int64(binary.LittleEndian.Uint64(footer[16:]))
}

func entryHeader(size, rawSize uint64, method uint32, sum [20]byte) []byte {
	var h []byte
	h = binary.LittleEndian.AppendUint64(h, size)
	h = binary.LittleEndian.AppendUint64(h, rawSize)
	h = binary.LittleEndian.AppendUint32(h, method)
	return append(h, sum[:]...)
}

func appendFString(b []byte, s string) []byte {
	b = binary.LittleEndian.AppendUint32(b, uint32(len(s)+1))
	b = append(b, s...)
	return append(b, 0)
}
