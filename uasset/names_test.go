package uasset

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/pak/internal/testutil"
)

var sampleNames = []string{"None", "IntProperty", "Exp", "Slot", "Grüße"}

func u32(b []byte, off int) uint32 { return binary.LittleEndian.Uint32(b[off:]) }

func u64(b []byte, off int) uint64 { return binary.LittleEndian.Uint64(b[off:]) }

func TestParseNameTable(t *testing.T) {
	t.Parallel()

	data := testutil.UAsset(sampleNames, 64)
	nt, err := ParseNameTable(data, DefaultLayout())
	require.NoError(t, err)

	assert.Equal(t, len(sampleNames), nt.Len())
	assert.Equal(t, sampleNames, nt.Names())
	assert.True(t, nt.Contains("Exp"))
	assert.False(t, nt.Contains("Exp_0"))

	for i, n := range sampleNames {
		idx, err := nt.Index(n)
		require.NoError(t, err)
		assert.Equal(t, uint64(i), idx)
		got, err := nt.Name(idx)
		require.NoError(t, err)
		assert.Equal(t, n, got)
	}
}

func TestQualifiedNames(t *testing.T) {
	t.Parallel()

	nt, err := ParseNameTable(testutil.UAsset(sampleNames, 64), DefaultLayout())
	require.NoError(t, err)

	idx, err := nt.Index("Slot_0")
	require.NoError(t, err)
	assert.Equal(t, uint64(1)<<32|3, idx)

	idx, err = nt.Index("Slot_12")
	require.NoError(t, err)
	assert.Equal(t, uint64(13)<<32|3, idx)

	name, err := nt.Name(uint64(13)<<32 | 3)
	require.NoError(t, err)
	assert.Equal(t, "Slot_12", name)

	for _, bad := range []string{"Missing", "Missing_3", "Slot_", "Slot_01", "Slot_-1", "Slot_x"} {
		_, err := nt.Index(bad)
		require.ErrorIs(t, err, ErrUnknownName, bad)
	}

	_, err = nt.Name(uint64(len(sampleNames)))
	require.ErrorIs(t, err, ErrUnknownName)
}

func TestNameTableBuild(t *testing.T) {
	t.Parallel()

	data := testutil.UAsset(sampleNames, 64)
	nt, err := ParseNameTable(data, DefaultLayout())
	require.NoError(t, err)

	out, err := nt.Build(-1)
	require.NoError(t, err)
	assert.Equal(t, data, out)

	out, err = nt.Build(64)
	require.NoError(t, err)
	assert.Equal(t, data, out, "unchanged stream size leaves the header untouched")

	out, err = nt.Build(1000)
	require.NoError(t, err)
	require.Len(t, out, len(data))
	footer := len(data) - 16 - len(testutil.UAssetTail)
	assert.Equal(t, uint64(996), u64(out, footer))
	assert.Equal(t, data[:footer], out[:footer])
	assert.Equal(t, data[footer+8:], out[footer+8:])

	_, err = nt.Build(2)
	require.ErrorIs(t, err, ErrMalformed)
}

func TestAddEntry(t *testing.T) {
	t.Parallel()

	data := testutil.UAsset(sampleNames, 64)
	nt, err := ParseNameTable(data, DefaultLayout())
	require.NoError(t, err)

	idx, err := nt.AddEntry("Exp")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), idx, "existing names are not added again")

	idx, err = nt.AddEntry("Bonus")
	require.NoError(t, err)
	assert.Equal(t, uint64(len(sampleNames)), idx)

	out, err := nt.Build(-1)
	require.NoError(t, err)
	// FString "Bonus": 4-byte length, 6 bytes with NUL, 4-byte hash.
	const grow = 4 + 6 + 4
	require.Len(t, out, len(data)+grow)

	assert.Equal(t, u32(data, testutil.UAssetNameCount)+1, u32(out, testutil.UAssetNameCount))
	assert.Equal(t, u32(data, testutil.UAssetNameOffset), u32(out, testutil.UAssetNameOffset))
	for _, off := range []int{
		testutil.UAssetTotalHeaderSize,
		testutil.UAssetExportOffset,
		testutil.UAssetImportOffset,
		testutil.UAssetDependsOffset,
		testutil.UAssetThumbnailOffset,
	} {
		assert.Equal(t, u32(data, off)+grow, u32(out, off), "offset 0x%x", off)
	}
	assert.Zero(t, u32(out, testutil.UAssetSoftPackageOffset), "absent sections stay zero")
	assert.Equal(t, uint64(len(out)), uint64(u32(out, testutil.UAssetTotalHeaderSize)))

	footer := len(out) - 16 - len(testutil.UAssetTail)
	assert.Equal(t, u64(data, footer-grow+8)+grow, u64(out, footer+8))

	again, err := ParseNameTable(out, DefaultLayout())
	require.NoError(t, err)
	assert.Equal(t, append(append([]string(nil), sampleNames...), "Bonus"), again.Names())
	i, err := again.Index("Bonus")
	require.NoError(t, err)
	assert.Equal(t, idx, i)
}

func TestParseNameTableErrors(t *testing.T) {
	t.Parallel()

	data := testutil.UAsset(sampleNames, 64)

	_, err := ParseNameTable(data[:0x20], DefaultLayout())
	require.ErrorIs(t, err, ErrTruncated)

	bad := append([]byte(nil), data...)
	binary.LittleEndian.PutUint32(bad[testutil.UAssetNameOffset:], uint32(len(bad)+1))
	_, err = ParseNameTable(bad, DefaultLayout())
	require.ErrorIs(t, err, ErrMalformed)

	bad = append([]byte(nil), data...)
	binary.LittleEndian.PutUint32(bad[testutil.UAssetNameCount:], 1000)
	_, err = ParseNameTable(bad, DefaultLayout())
	require.ErrorIs(t, err, ErrTruncated)

	// Names that run into a footer too short for its two fields.
	_, err = ParseNameTable(data[:len(data)-len(testutil.UAssetTail)-9], DefaultLayout())
	require.ErrorIs(t, err, ErrTruncated)
}

func TestCustomLayout(t *testing.T) {
	t.Parallel()

	l := DefaultLayout()
	l.Shifted = []int{testutil.UAssetTotalHeaderSize}
	data := testutil.UAsset(sampleNames, 64)
	nt, err := ParseNameTable(data, l)
	require.NoError(t, err)
	_, err = nt.AddEntry("Bonus")
	require.NoError(t, err)
	out, err := nt.Build(-1)
	require.NoError(t, err)
	assert.Equal(t, u32(data, testutil.UAssetExportOffset), u32(out, testutil.UAssetExportOffset))
}
