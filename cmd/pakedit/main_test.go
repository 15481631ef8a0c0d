package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/pak"
	"github.com/meigma/pak/internal/codec"
	"github.com/meigma/pak/internal/testutil"
	"github.com/meigma/pak/uasset"
)

func writePak(t *testing.T) string {
	t.Helper()
	names := testutil.NewNames("None")
	stream := testutil.NewStream(names).
		Int("Exp", 100).
		Float("Rate", 1.5).
		Bool("Hidden", false).
		Enum("Job", "EJobEnum", "EJobEnum::JE_Monk").
		End().Bytes()
	header := testutil.UAsset(names.List(), len(stream))

	data := testutil.BuildPak(testutil.Pak{
		Mount:   "../../../",
		Magic:   testutil.PakMagic,
		Methods: []string{"Zlib"},
		Entries: []testutil.PakEntry{
			{Path: "Game/Data/JobDataAsset.uasset", Data: header},
			{
				Path: "Game/Data/JobDataAsset.uexp", Data: stream, Method: 1, BlockSize: 0x10000,
				Compress: func(b []byte) []byte {
					out, err := codec.Compress(b)
					require.NoError(t, err)
					return out
				},
			},
		},
	})
	path := filepath.Join(t.TempDir(), "Game-Switch.pak")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), err
}

func TestList(t *testing.T) {
	t.Parallel()

	out, err := runCmd(t, "list", writePak(t))
	require.NoError(t, err)
	assert.Contains(t, out, "../../../")
	assert.Contains(t, out, "Game/Data/JobDataAsset.uasset")
	assert.Contains(t, out, "Zlib")
}

func TestExtract(t *testing.T) {
	t.Parallel()

	path := writePak(t)
	target := filepath.Join(t.TempDir(), "header.uasset")
	_, err := runCmd(t, "extract", path, "JobDataAsset.uasset", "-o", target)
	require.NoError(t, err)

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xC1, 0x83, 0x2A, 0x9E}, got[:4])
}

func TestDump(t *testing.T) {
	t.Parallel()

	out, err := runCmd(t, "dump", writePak(t), "Game/Data/JobDataAsset")
	require.NoError(t, err)
	assert.Equal(t, "Exp: 100\nRate: 1.5\nHidden: false\nJob: \"EJobEnum::JE_Monk\"\n", out)
}

func TestSet(t *testing.T) {
	t.Parallel()

	path := writePak(t)
	patch := filepath.Join(t.TempDir(), "Game-Switch_P.pak")
	_, err := runCmd(t, "set", path, "JobDataAsset", "Exp", "250", "-o", patch)
	require.NoError(t, err)

	c, err := pak.Open(patch)
	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, "../../../Game/Data/", c.MountPoint())

	src, err := pak.Open(path)
	require.NoError(t, err)
	defer src.Close()
	stream, err := c.ExtractFile("JobDataAsset.uexp")
	require.NoError(t, err)
	require.NoError(t, src.PatchFile(stream, "JobDataAsset.uexp"))
	a, err := uasset.Load(src, "JobDataAsset")
	require.NoError(t, err)
	exp, err := a.Table().Int("Exp")
	require.NoError(t, err)
	assert.Equal(t, int64(250), exp)
}

func TestSetErrors(t *testing.T) {
	t.Parallel()

	path := writePak(t)
	patch := filepath.Join(t.TempDir(), "out.pak")
	tests := []struct {
		name string
		args []string
	}{
		{name: "missing output", args: []string{"set", path, "JobDataAsset", "Exp", "1"}},
		{name: "missing field", args: []string{"set", path, "JobDataAsset", "Gold", "1", "-o", patch}},
		{name: "bad int", args: []string{"set", path, "JobDataAsset", "Exp", "many", "-o", patch}},
		{name: "int out of range", args: []string{"set", path, "JobDataAsset", "Exp", "4294967296", "-o", patch}},
		{name: "enum from command line", args: []string{"set", path, "JobDataAsset", "Job", "x", "-o", patch}},
		{name: "unknown command", args: []string{"frobnicate"}},
		{name: "wrong argument count", args: []string{"list"}},
		{name: "no command", args: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := runCmd(t, tt.args...)
			require.Error(t, err)
		})
	}
}
