package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seppy/internal/domain"
)

func TestExtractImports(t *testing.T) {
	src := `from __future__ import annotations
import os, sys as system
import os.path
from ..pkg.mod import a as b, c
from . import sibling
from m import *
`
	f := parseSource(t, src)

	var all []domain.Import
	for _, n := range f.Root.Children {
		all = append(all, ExtractImports(f, n)...)
	}
	require.Len(t, all, 8)

	assert.True(t, all[0].IsFuture())
	assert.Equal(t, "annotations", all[0].Bound())

	assert.Equal(t, domain.Import{Module: "os", Line: 2}, all[1])
	assert.Equal(t, "system", all[2].Bound())
	assert.Equal(t, "import sys as system", all[2].Statement())

	assert.Equal(t, "os", all[3].Bound())
	assert.Equal(t, "import os.path", all[3].Statement())

	assert.Equal(t, 2, all[4].Level)
	assert.Equal(t, "pkg.mod", all[4].Module)
	assert.Equal(t, "from ..pkg.mod import a as b", all[4].Statement())
	assert.Equal(t, "c", all[5].Bound())

	assert.Equal(t, 1, all[6].Level)
	assert.Empty(t, all[6].Module)
	assert.Equal(t, "from . import sibling", all[6].Statement())

	assert.True(t, all[7].IsStar())
	assert.Equal(t, "from m import *", all[7].Statement())
}

func TestExtractImports_NonImport(t *testing.T) {
	f := parseSource(t, "x = 1\n")
	assert.Nil(t, ExtractImports(f, f.Root.Children[0]))
}

func TestIgnoreFilter(t *testing.T) {
	f := NewIgnoreFilter([]string{"_*", "test_*", "["})

	assert.True(t, f.Match("_private"))
	assert.True(t, f.Match("test_thing"))
	assert.False(t, f.Match("public"))
	assert.False(t, f.Match(""))
	assert.True(t, f.MatchAny([]string{"x", "_y"}))
	assert.False(t, f.MatchAny(nil))

	var none *IgnoreFilter
	assert.False(t, none.Match("_private"))
}
