package pathmap

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMap(t *testing.T) {
	cases := []struct {
		name          string
		in, out, path string
		ext, want     string
	}{
		{"nested", "/a", "/b", "/a/x/y.src", ".out", "/b/x/y.out"},
		{"top level", "/a", "/b", "/a/z.ula", ".lua", "/b/z.lua"},
		{"trailing slash root", "/a/", "/b/", "/a/x/y.ula", ".lua", "/b/x/y.lua"},
		{"ext without dot", "/a", "/b", "/a/y.ula", "lua", "/b/y.lua"},
		{"only last ext swapped", "/a", "/b", "/a/v1.2/m.test.ula", ".lua", "/b/v1.2/m.test.lua"},
		{"no ext appended", "/a", "/b", "/a/Makefile", ".lua", "/b/Makefile.lua"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Map(filepath.FromSlash(tc.in), filepath.FromSlash(tc.out), filepath.FromSlash(tc.path), tc.ext)
			assert.Equal(t, filepath.FromSlash(tc.want), got)
		})
	}
}

func TestMapIsPure(t *testing.T) {
	a := Map("/in", "/out", "/in/p/q.ula", ".lua")
	b := Map("/in", "/out", "/in/p/q.ula", ".lua")
	assert.Equal(t, a, b)
}

func TestRel(t *testing.T) {
	assert.Equal(t, "x/y.lua", Rel(filepath.FromSlash("/a"), filepath.FromSlash("/a/x/y.ula"), ".lua"))
}

func TestMapPanicsOutsideRoot(t *testing.T) {
	assert.Panics(t, func() { Map("/a", "/b", "/c/y.ula", ".lua") })
	assert.Panics(t, func() { Map("/a", "/b", "/ab/y.ula", ".lua") })
	assert.Panics(t, func() { Map("/a", "/b", "/a", ".lua") })
}

func TestSwapExt(t *testing.T) {
	assert.Equal(t, "a.lua", SwapExt("a.ula", ".lua"))
	assert.Equal(t, "a", SwapExt("a.ula", ""))
}
