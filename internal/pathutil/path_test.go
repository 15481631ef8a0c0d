package pathutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBase(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"", "."},
		{".", "."},
		{"a", "a"},
		{"Game/Content/Data.uexp", "Data.uexp"},
		{"Game/Content/", "Content"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Base(tt.in), tt.in)
	}
}

func TestCommonDir(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		paths []string
		want  string
	}{
		{name: "none", paths: nil, want: ""},
		{name: "single", paths: []string{"Game/Data/A.uexp"}, want: "Game/Data/"},
		{name: "siblings", paths: []string{"Game/Data/A.uexp", "Game/Data/A.uasset"}, want: "Game/Data/"},
		{name: "partial element", paths: []string{"Game/Data/bc", "Game/Data/bd"}, want: "Game/Data/"},
		{name: "cousins", paths: []string{"Game/Data/A.uexp", "Game/Other/B.uexp"}, want: "Game/"},
		{name: "no shared dir", paths: []string{"A.uexp", "B.uexp"}, want: ""},
		{name: "prefix name", paths: []string{"Game/Dat/x", "Game/Data/x"}, want: "Game/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, CommonDir(tt.paths))
		})
	}
}

func TestRel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "A.uexp", Rel("Game/Data/A.uexp", "Game/Data/"))
	assert.Equal(t, "Game/Data/A.uexp", Rel("Game/Data/A.uexp", ""))
	assert.Equal(t, "Other/A.uexp", Rel("Other/A.uexp", "Game/"))
}
