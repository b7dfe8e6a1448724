package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seppy/internal/domain"
)

const resolverSource = `from __future__ import annotations
import json
import os.path
import re as regex
from collections import OrderedDict
from helpers import *

DEFAULT_TIMEOUT = 30
RETRIES = DEFAULT_TIMEOUT // 10
UNUSED = 0

def fetch(url):
    data = json.loads(url)
    return os.path.join(data, str(RETRIES))

def shadow(json):
    return json
`

func statements(imps []domain.Import) []string {
	var out []string
	for _, imp := range imps {
		out = append(out, imp.Statement())
	}
	return out
}

func TestFindUsedImports(t *testing.T) {
	ext := extract(t, resolverSource)
	fetch := ext.Units[0].Node

	used := FindUsedImports(fetch, ext.Imports)
	assert.Equal(t, []string{
		"from __future__ import annotations",
		"import json",
		"import os.path",
		"from helpers import *",
	}, statements(used))
}

func TestFindUsedImports_ShadowedNameStillUsed(t *testing.T) {
	ext := extract(t, resolverSource)
	shadow := ext.Units[1].Node

	assert.Contains(t, statements(FindUsedImports(shadow, ext.Imports)), "import json")
}

func TestFindUsedImports_SubsetIdempotentPure(t *testing.T) {
	ext := extract(t, resolverSource)
	fetch := ext.Units[0].Node

	before := append([]domain.Import(nil), ext.Imports...)
	first := FindUsedImports(fetch, ext.Imports)
	second := FindUsedImports(fetch, ext.Imports)

	assert.Equal(t, first, second)
	assert.Equal(t, before, ext.Imports)
	for _, imp := range first {
		assert.Contains(t, ext.Imports, imp)
	}
}

func TestFindUsedGlobals(t *testing.T) {
	ext := extract(t, resolverSource)
	fetch := ext.Units[0].Node

	assert.Equal(t, []string{"DEFAULT_TIMEOUT", "RETRIES", "UNUSED"}, ext.Globals)
	assert.Equal(t, []string{"RETRIES"}, FindUsedGlobals(fetch, ext.Globals))
	assert.Empty(t, FindUsedGlobals(ext.Units[1].Node, ext.Globals))
}

func TestResolve_GlobalClosure(t *testing.T) {
	ext := extract(t, resolverSource)

	usage := ext.Resolve(ext.Units[0].Node)
	assert.Equal(t, []string{"DEFAULT_TIMEOUT", "RETRIES"}, usage.Globals)
	require.Len(t, usage.Definitions, 2)
	assert.Equal(t, 8, usage.Definitions[0].Span.StartLine)
	assert.Equal(t, 9, usage.Definitions[1].Span.StartLine)
	assert.NotContains(t, statements(usage.Imports), "import re as regex")
}

func TestResolve_DefinitionImports(t *testing.T) {
	src := `import logging

log = logging.getLogger(__name__)

def run():
    log.info("run")
`
	ext := extract(t, src)
	usage := ext.Resolve(ext.Units[0].Node)

	assert.Equal(t, []string{"log"}, usage.Globals)
	assert.Equal(t, []string{"import logging"}, statements(usage.Imports))
}

func TestFindReferences_DecoratorsAndAnnotations(t *testing.T) {
	src := `class Registry:
    pass

class Shape:
    pass

@Registry.register
def area(s: Shape) -> float:
    return 0.0
`
	ext := extract(t, src)
	area := ext.Units[2].Node

	assert.Equal(t, []string{"Registry", "Shape"}, FindReferences(area, ext.UnitNames()))
}

func TestDependencyBuilder(t *testing.T) {
	b := NewDependencyBuilder()
	b.Register("Calculator", "calculator")
	b.Register("multiply", "multiply")

	deps := b.Build(map[string]bool{"multiply": true, "Calculator": true, "print": true})
	assert.Equal(t, []string{"calculator", "multiply"}, deps)

	assert.Empty(t, b.Build(map[string]bool{"len": true}))
}
