package pak

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/pak/internal/codec"
	"github.com/meigma/pak/internal/testutil"
	"github.com/meigma/pak/uasset"
)

const testMount = "../../../"

func sample(n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = byte(i*7 + i/13)
	}
	return out
}

func zlibBlock(t *testing.T) func([]byte) []byte {
	t.Helper()
	return func(b []byte) []byte {
		out, err := codec.Compress(b)
		require.NoError(t, err)
		return out
	}
}

func zstdBlock(t *testing.T) func([]byte) []byte {
	t.Helper()
	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	t.Cleanup(func() { enc.Close() })
	return func(b []byte) []byte {
		return enc.EncodeAll(b, nil)
	}
}

func openBytes(t *testing.T, data []byte, opts ...Option) *Container {
	t.Helper()
	src := testutil.NewMockByteSource(data)
	c, err := New(src, src.Size(), opts...)
	require.NoError(t, err)
	return c
}

// fixture is a container with one raw member, one DEFLATE member spanning
// several blocks and one member labeled zstd but stored as DEFLATE.
func fixture(t *testing.T) (testutil.Pak, []byte) {
	t.Helper()
	p := testutil.Pak{
		Mount:   testMount,
		Magic:   testutil.PakMagic,
		Methods: []string{"Zlib", "Zstd"},
		Entries: []testutil.PakEntry{
			{Path: "Game/Content/Data/Job/JobTable.uasset", Data: sample(300)},
			{Path: "Game/Content/Data/Job/JobTable.uexp", Data: sample(1000), Method: 1, BlockSize: 256, Compress: zlibBlock(t)},
			{Path: "Game/Content/Data/Item/ItemTable.uexp", Data: sample(700), Method: 2, BlockSize: 512, Compress: zlibBlock(t)},
		},
	}
	return p, testutil.BuildPak(p)
}

func TestOpenReadsTableOfContents(t *testing.T) {
	t.Parallel()

	p, data := fixture(t)
	c := openBytes(t, data)

	assert.Equal(t, testMount, c.MountPoint())
	assert.Equal(t, testutil.PakMagic, c.Magic())
	assert.Equal(t, []Method{MethodZlib, MethodZstd}, c.Methods())
	require.Equal(t, 3, c.Len())

	var paths []string
	for e := range c.Entries() {
		paths = append(paths, e.Path)
	}
	assert.Equal(t, []string{p.Entries[0].Path, p.Entries[1].Path, p.Entries[2].Path}, paths)

	raw, err := c.Lookup("JobTable.uasset")
	require.NoError(t, err)
	assert.False(t, raw.Compressed())
	assert.Equal(t, []Chunk{{Start: rawHeaderSize, End: rawHeaderSize + 300}}, raw.Chunks)

	comp, err := c.Lookup("JobTable.uexp")
	require.NoError(t, err)
	assert.True(t, comp.Compressed())
	assert.Len(t, comp.Chunks, 4)
	assert.Equal(t, int64(compressedHeaderSize(4)), comp.Chunks[0].Start)
	assert.Equal(t, uint32(256), comp.BlockSize)
	assert.Equal(t, int64(1000), comp.RawSize)
}

func TestOpenFromFile(t *testing.T) {
	t.Parallel()

	_, data := fixture(t)
	path := filepath.Join(t.TempDir(), "Game-Switch.pak")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	c, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	_, err = Open(filepath.Join(t.TempDir(), "missing.pak"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestExtractFile(t *testing.T) {
	t.Parallel()

	p, data := fixture(t)
	c := openBytes(t, data)

	for _, e := range p.Entries {
		t.Run(e.Path, func(t *testing.T) {
			got, err := c.ExtractFile(e.Path)
			require.NoError(t, err)
			assert.Equal(t, e.Data, got)
		})
	}
}

func TestExtractFileMethods(t *testing.T) {
	t.Parallel()

	raw := sample(5000)
	tests := []struct {
		name     string
		methods  []string
		method   uint32
		compress func(*testing.T) func([]byte) []byte
	}{
		{name: "zlib", methods: []string{"Zlib"}, method: 1, compress: zlibBlock},
		{name: "zstd", methods: []string{"Zlib", "Zstd"}, method: 2, compress: zstdBlock},
		{name: "zstd label on deflate data", methods: []string{"Zstd"}, method: 1, compress: zlibBlock},
		{name: "unknown label on deflate data", methods: []string{"Oodle"}, method: 1, compress: zlibBlock},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			data := testutil.BuildPak(testutil.Pak{
				Mount:   testMount,
				Magic:   testutil.PakMagic,
				Methods: tt.methods,
				Entries: []testutil.PakEntry{
					{Path: "Game/Data.uexp", Data: raw, Method: tt.method, BlockSize: 2048, Compress: tt.compress(t)},
				},
			})
			c := openBytes(t, data, WithVerifyEntries(true))
			got, err := c.ExtractFile("Data.uexp")
			require.NoError(t, err)
			assert.Equal(t, raw, got)
		})
	}
}

func TestExtractFileDecompressionFailure(t *testing.T) {
	t.Parallel()

	data := testutil.BuildPak(testutil.Pak{
		Mount:   testMount,
		Magic:   testutil.PakMagic,
		Methods: []string{"Zstd"},
		Entries: []testutil.PakEntry{{
			Path: "Game/Data.uexp", Data: sample(64), Method: 1, BlockSize: 64,
			Compress: func([]byte) []byte { return bytes.Repeat([]byte{0xFF}, 16) },
		}},
	})
	c := openBytes(t, data)
	_, err := c.ExtractFile("Game/Data.uexp")
	require.ErrorIs(t, err, ErrDecompression)
}

func TestExtractFileChunkSizeMismatch(t *testing.T) {
	t.Parallel()

	// Chunks of 90 and 10 bytes sum to the raw size but break the 50-byte
	// block size, so each must fail its own size check.
	raw := sample(100)
	compress := zlibBlock(t)
	parts := [][]byte{raw[:90], raw[90:]}
	call := 0
	data := testutil.BuildPak(testutil.Pak{
		Mount:   testMount,
		Magic:   testutil.PakMagic,
		Methods: []string{"Zstd"},
		Entries: []testutil.PakEntry{{
			Path: "Game/Data.uexp", Data: raw, Method: 1, BlockSize: 50,
			Compress: func([]byte) []byte {
				out := compress(parts[call])
				call++
				return out
			},
		}},
	})
	c := openBytes(t, data)
	_, err := c.ExtractFile("Game/Data.uexp")
	require.ErrorIs(t, err, ErrDecompression)
}

func TestExtractFileReturnsCopies(t *testing.T) {
	t.Parallel()

	_, data := fixture(t)
	c := openBytes(t, data)

	first, err := c.ExtractFile("JobTable.uasset")
	require.NoError(t, err)
	first[0] ^= 0xFF

	second, err := c.ExtractFile("JobTable.uasset")
	require.NoError(t, err)
	assert.Equal(t, sample(300), second)
	assert.False(t, c.Modified("JobTable.uasset"))
}

func TestResolve(t *testing.T) {
	t.Parallel()

	data := testutil.BuildPak(testutil.Pak{
		Mount: testMount,
		Magic: testutil.PakMagic,
		Entries: []testutil.PakEntry{
			{Path: "Game/A/Data.uasset", Data: []byte("a")},
			{Path: "Game/B/Data.uasset", Data: []byte("b")},
			{Path: "Game/C/Unique.uexp", Data: []byte("c")},
		},
	})
	c := openBytes(t, data)

	tests := []struct {
		name    string
		member  string
		want    string
		wantErr error
	}{
		{name: "exact path", member: "Game/B/Data.uasset", want: "b"},
		{name: "unique base name", member: "Unique.uexp", want: "c"},
		{name: "base name with other directory", member: "Other/Unique.uexp", want: "c"},
		{name: "partial path", member: "A/Data.uasset", want: "a"},
		{name: "ambiguous base name", member: "Data.uasset", wantErr: ErrAmbiguousPath},
		{name: "no partial match", member: "X/Data.uasset", wantErr: ErrAmbiguousPath},
		{name: "missing", member: "Missing.bin", wantErr: fs.ErrNotExist},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.ExtractFile(tt.member)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestOpenIntegrity(t *testing.T) {
	t.Parallel()

	_, data := fixture(t)
	off, _ := testutil.PakTOCRange(data)
	data[off+10] ^= 0x01

	_, err := New(bytes.NewReader(data), int64(len(data)))
	require.ErrorIs(t, err, ErrIntegrity)
}

func TestOpenTruncated(t *testing.T) {
	t.Parallel()

	_, data := fixture(t)

	t.Run("shorter than trailer", func(t *testing.T) {
		t.Parallel()
		short := data[len(data)-100:]
		_, err := New(bytes.NewReader(short), int64(len(short)))
		require.ErrorIs(t, err, ErrTruncated)
	})

	t.Run("short source", func(t *testing.T) {
		t.Parallel()
		src := testutil.NewMockByteSource(data[:len(data)-300])
		_, err := New(src, int64(len(data)))
		require.ErrorIs(t, err, ErrTruncated)
	})

	t.Run("table beyond end", func(t *testing.T) {
		t.Parallel()
		cut := append([]byte(nil), data[200:]...)
		_, err := New(bytes.NewReader(cut), int64(len(cut)))
		require.ErrorIs(t, err, ErrTruncated)
	})
}

func TestVerifyEntries(t *testing.T) {
	t.Parallel()

	_, data := fixture(t)
	// First byte of the raw member after its header copy.
	data[rawHeaderSize] ^= 0xFF

	c := openBytes(t, data)
	got, err := c.ExtractFile("JobTable.uasset")
	require.NoError(t, err)
	assert.NotEqual(t, sample(300), got)

	v := openBytes(t, data, WithVerifyEntries(true))
	_, err = v.ExtractFile("JobTable.uasset")
	require.ErrorIs(t, err, ErrIntegrity)
}

func TestPatchFile(t *testing.T) {
	t.Parallel()

	_, data := fixture(t)
	c := openBytes(t, data)

	// Same content leaves the member unmodified.
	require.NoError(t, c.PatchFile(sample(300), "JobTable.uasset"))
	assert.False(t, c.Modified("JobTable.uasset"))

	patched := []byte("patched")
	require.NoError(t, c.PatchFile(patched, "JobTable.uasset"))
	assert.True(t, c.Modified("Game/Content/Data/Job/JobTable.uasset"))

	got, err := c.ExtractFile("JobTable.uasset")
	require.NoError(t, err)
	assert.Equal(t, patched, got)

	patched[0] = 'X'
	got, err = c.ExtractFile("JobTable.uasset")
	require.NoError(t, err)
	assert.Equal(t, []byte("patched"), got, "overlay must not alias caller buffers")

	assert.False(t, c.Modified("Missing.bin"))
	require.ErrorIs(t, c.PatchFile(patched, "Missing.bin"), fs.ErrNotExist)

	c.Reset()
	assert.False(t, c.Modified("JobTable.uasset"))
	got, err = c.ExtractFile("JobTable.uasset")
	require.NoError(t, err)
	assert.Equal(t, sample(300), got)
}

func TestBuildRoundTrip(t *testing.T) {
	t.Parallel()

	_, data := fixture(t)
	c := openBytes(t, data, WithBlockSize(300), WithWorkers(2))

	item := append(sample(700), []byte("more")...)
	header := []byte("new header")
	require.NoError(t, c.PatchFile(item, "ItemTable.uexp"))
	require.NoError(t, c.PatchFile(header, "JobTable.uasset"))
	_, err := c.ExtractFile("JobTable.uexp")
	require.NoError(t, err)

	var buf bytes.Buffer
	res, err := c.Build(context.Background(), &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Entries)
	assert.Equal(t, int64(buf.Len()), res.Size)
	assert.Equal(t, digest.FromBytes(buf.Bytes()), res.Digest)

	out := openBytes(t, buf.Bytes(), WithVerifyEntries(true))
	assert.Equal(t, testMount+"Game/Content/Data/", out.MountPoint())
	assert.Equal(t, testutil.PakMagic, out.Magic())
	assert.Equal(t, []Method{MethodZlib}, out.Methods())

	var paths []string
	for e := range out.Entries() {
		paths = append(paths, e.Path)
	}
	assert.Equal(t, []string{"Item/ItemTable.uexp", "Job/JobTable.uasset"}, paths, "first-extraction order")

	comp, err := out.Lookup("ItemTable.uexp")
	require.NoError(t, err)
	assert.Equal(t, uint32(1), comp.Method)
	assert.Equal(t, uint32(300), comp.BlockSize)
	assert.Len(t, comp.Chunks, 3)
	assert.Equal(t, int64(compressedHeaderSize(3)), comp.Chunks[0].Start)

	raw, err := out.Lookup("JobTable.uasset")
	require.NoError(t, err)
	assert.False(t, raw.Compressed())

	got, err := out.ExtractFile("ItemTable.uexp")
	require.NoError(t, err)
	assert.Equal(t, item, got)
	got, err = out.ExtractFile("JobTable.uasset")
	require.NoError(t, err)
	assert.Equal(t, header, got)
}

func TestBuildInDataHeaderCopy(t *testing.T) {
	t.Parallel()

	_, data := fixture(t)
	c := openBytes(t, data)
	require.NoError(t, c.PatchFile(sample(2000), "JobTable.uexp"))

	var buf bytes.Buffer
	_, err := c.Build(context.Background(), &buf)
	require.NoError(t, err)

	off, size := testutil.PakTOCRange(buf.Bytes())
	toc := buf.Bytes()[off : off+size]

	// The table of contents record after mount point, count and path:
	// offset 0 then the same bytes as the in-data copy after its 8 zero bytes.
	record := toc[len(toc)-(compressedHeaderSize(1)):]
	copyHeader := buf.Bytes()[:compressedHeaderSize(1)]
	assert.Equal(t, make([]byte, 8), copyHeader[:8])
	assert.Equal(t, record[8:], copyHeader[8:])
}

func TestBuildEmpty(t *testing.T) {
	t.Parallel()

	_, data := fixture(t)
	c := openBytes(t, data)
	require.NoError(t, c.PatchFile(sample(300), "JobTable.uasset"))

	var buf bytes.Buffer
	res, err := c.Build(context.Background(), &buf)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Entries)

	out := openBytes(t, buf.Bytes())
	assert.Equal(t, 0, out.Len())
	assert.Equal(t, testMount, out.MountPoint())
}

func TestBuildEmptyMember(t *testing.T) {
	t.Parallel()

	_, data := fixture(t)
	c := openBytes(t, data)
	require.NoError(t, c.PatchFile(nil, "JobTable.uexp"))

	var buf bytes.Buffer
	_, err := c.Build(context.Background(), &buf)
	require.NoError(t, err)

	out := openBytes(t, buf.Bytes())
	got, err := out.ExtractFile("JobTable.uexp")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestBuildCanceled(t *testing.T) {
	t.Parallel()

	_, data := fixture(t)
	c := openBytes(t, data)
	require.NoError(t, c.PatchFile(sample(10), "JobTable.uexp"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Build(ctx, &bytes.Buffer{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestBuildFile(t *testing.T) {
	t.Parallel()

	_, data := fixture(t)
	c := openBytes(t, data)
	require.NoError(t, c.PatchFile([]byte("patched"), "JobTable.uasset"))

	dir := t.TempDir()
	path := filepath.Join(dir, "Game-Switch_P.pak")
	res, err := c.BuildFile(context.Background(), path)
	require.NoError(t, err)

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, int64(len(written)), res.Size)
	assert.Equal(t, digest.FromBytes(written), res.Digest)

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, files, 1, "temporary file must be renamed")

	_, err = c.BuildFile(context.Background(), filepath.Join(dir, "missing", "out.pak"))
	require.Error(t, err)
}

func TestAssetRoundTrip(t *testing.T) {
	t.Parallel()

	names := testutil.NewNames("None")
	stream := testutil.NewStream(names).
		Int("Level", 3).
		Int("Exp", 100).
		Enum("Job", "EJobEnum", "EJobEnum::JE_Monk").
		End().Bytes()
	header := testutil.UAsset(names.List(), len(stream))

	data := testutil.BuildPak(testutil.Pak{
		Mount:   testMount,
		Magic:   testutil.PakMagic,
		Methods: []string{"Zstd"},
		Entries: []testutil.PakEntry{
			{Path: "Game/Content/Data/JobDataAsset.uasset", Data: header},
			{Path: "Game/Content/Data/JobDataAsset.uexp", Data: stream, Method: 1, BlockSize: 64, Compress: zstdBlock(t)},
		},
	})
	c := openBytes(t, data)

	a, err := uasset.Load(c, "JobDataAsset")
	require.NoError(t, err)
	require.NoError(t, a.Table().SetInt("Exp", 250))
	require.NoError(t, a.Update())
	assert.True(t, c.Modified("JobDataAsset.uexp"))
	assert.False(t, c.Modified("JobDataAsset.uasset"))

	var buf bytes.Buffer
	res, err := c.Build(context.Background(), &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Entries)

	out := openBytes(t, buf.Bytes())
	patched, err := out.ExtractFile("JobDataAsset.uexp")
	require.NoError(t, err)
	require.Len(t, patched, len(stream))

	var diff []int
	for i := range stream {
		if stream[i] != patched[i] {
			diff = append(diff, i)
		}
	}
	assert.Len(t, diff, 1, "only the low byte of Exp changes")

	// The patch container lacks the header, so load from the source with
	// the rebuilt stream patched in again.
	src := openBytes(t, data)
	require.NoError(t, src.PatchFile(patched, "JobDataAsset.uexp"))
	again, err := uasset.Load(src, "JobDataAsset")
	require.NoError(t, err)
	exp, err := again.Table().Int("Exp")
	require.NoError(t, err)
	assert.Equal(t, int64(250), exp)
}
