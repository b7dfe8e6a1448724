package docs

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"seppy/internal/domain"
)

func fetchUnit() domain.UnitRecord {
	return domain.UnitRecord{
		Name:      "fetch",
		Kind:      domain.KindAsyncFunction,
		Docstring: "Fetch a URL.\n\n    Returns the body.\n    ",
		Params: []domain.Param{
			{Name: "url", Annotation: "str"},
			{Prefix: "*"},
			{Name: "timeout", Annotation: "float", Default: "1.0"},
			{Name: "retries", Default: "3"},
			{Name: "opts", Prefix: "**"},
		},
		Returns:         "bytes",
		TypeAnnotations: map[string]string{"url": "str", "timeout": "float", "return": "bytes"},
		Decorators:      []domain.Decorator{{Name: "cached", Text: "cached"}},
		IsAsync:         true,
	}
}

func TestSignature_Function(t *testing.T) {
	assert.Equal(t,
		"async def fetch(url: str, *, timeout: float = 1.0, retries=3, **opts) -> bytes",
		Signature(fetchUnit()))
}

func TestSignature_Class(t *testing.T) {
	u := domain.UnitRecord{Name: "Point", Kind: domain.KindClass, Bases: []string{"Base", "metaclass=Meta"}}
	assert.Equal(t, "class Point(Base, metaclass=Meta)", Signature(u))
}

func TestPage_Function(t *testing.T) {
	body := "@cached\nasync def fetch(url: str, *, timeout: float = 1.0, retries=3, **opts) -> bytes:\n    ..."
	page := Page("fetch", Unit(fetchUnit(), body))

	assert.True(t, strings.HasPrefix(page, "# Module: `fetch`\n\n## Async Function: `fetch`\n"))
	assert.Contains(t, page, "**Kind:** `async_function`")
	assert.Contains(t, page, "- `@cached`")
	assert.Contains(t, page, "**Documentation:**\nFetch a URL.\n\nReturns the body.\n")
	assert.Contains(t, page, "- `return`: `bytes`\n- `timeout`: `float`\n- `url`: `str`\n")
	assert.Contains(t, page, "## Source\n\n```python\n"+body+"\n```\n")
}

func TestPage_ClassWithMethods(t *testing.T) {
	u := domain.UnitRecord{
		Name: "Calculator",
		Kind: domain.KindClass,
		Members: []domain.UnitRecord{
			{Name: "add", Kind: domain.KindNestedFunction, Parent: "Calculator",
				Params: []domain.Param{{Name: "self"}, {Name: "a"}, {Name: "b"}}},
			{Name: "run", Kind: domain.KindNestedFunction, Parent: "Calculator", IsAsync: true},
			{Name: "Inner", Kind: domain.KindNestedClass, Parent: "Calculator"},
		},
	}
	page := Page("calculator", Unit(u, "class Calculator:\n    ..."))

	assert.Contains(t, page, "## Class: `Calculator`\n")
	assert.Contains(t, page, "**Documentation:**\nNo documentation available.")
	assert.Contains(t, page, "### Method: `add`")
	assert.Contains(t, page, "def add(self, a, b)")
	assert.Contains(t, page, "### Async Method: `run`")
	assert.Contains(t, page, "async def run()")
	assert.Contains(t, page, "### Class: `Inner`")
}

func TestUnit_Deterministic(t *testing.T) {
	u := fetchUnit()
	assert.Equal(t, Unit(u, "x"), Unit(u, "x"))
}

func TestResidual(t *testing.T) {
	page := Residual("globals", `"""Shared state."""`, []string{"import os"}, []string{"X"}, "import os\n\nX = os.sep\n")

	assert.True(t, strings.HasPrefix(page, "# Module: `globals`\n"))
	assert.Contains(t, page, "## Imports\n\n- `import os`\n")
	assert.Contains(t, page, "## Globals\n\n- `X`\n")
	assert.Contains(t, page, "```python\nimport os\n\nX = os.sep\n```\n")
}

func TestClean(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"", ""},
		{"One line.", "One line."},
		{"  Summary.\n\n    Details here.\n      indented\n    ", "Summary.\n\nDetails here.\n  indented"},
		{"\n    Leading newline.\n    ", "Leading newline."},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Clean(c.in))
	}
}
