package syntaxtest_test

import (
	"strings"
	"testing"

	"github.com/forkeith/PackageDev/pkg/syntaxtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cTest = `// SYNTAX TEST "Packages/C/C.sublime-syntax"
int main() {
// <- storage.type.c
//  ^^^^ entity.name.function.c
	return 0;
//      ^ constant.numeric.c
}
`

func TestParseHeader(t *testing.T) {
	h, ok := syntaxtest.ParseHeader(cTest)
	require.True(t, ok)
	assert.Equal(t, "//", h.CommentToken)
	assert.Equal(t, "Packages/C/C.sublime-syntax", h.SyntaxPath)
	assert.Empty(t, h.EndToken)
	assert.Equal(t, `// SYNTAX TEST "`, cTest[:h.PathStart])

	h, ok = syntaxtest.ParseHeader(`<!-- SYNTAX TEST "HTML.sublime-syntax" -->`)
	require.True(t, ok)
	assert.Equal(t, "<!--", h.CommentToken)
	assert.Equal(t, "HTML.sublime-syntax", h.SyntaxPath)
	assert.Equal(t, "-->", h.EndToken)

	_, ok = syntaxtest.ParseHeader("int main() {}\n")
	assert.False(t, ok)

	_, ok = syntaxtest.ParseHeader(`// SYNTAX TEST ""` + "\n")
	assert.False(t, ok)

	_, ok = syntaxtest.ParseHeader(strings.Repeat("/", 1200) + ` SYNTAX TEST "x"`)
	assert.False(t, ok)
}

func TestParseAssertions(t *testing.T) {
	f := syntaxtest.Parse(cTest)
	require.True(t, f.HasHeader)
	require.Len(t, f.Assertions, 3)

	arrow := f.Assertions[0]
	assert.Equal(t, 2, arrow.Line)
	assert.True(t, arrow.Arrow)
	assert.Equal(t, 0, arrow.ColBegin)
	assert.Equal(t, 0, arrow.ColEnd)
	assert.Equal(t, "storage.type.c", arrow.Selector)
	assert.Equal(t, "storage.type.c", cTest[arrow.SelectorStart:arrow.SelectorStart+len(arrow.Selector)])

	carets := f.Assertions[1]
	assert.Equal(t, 3, carets.Line)
	assert.False(t, carets.Arrow)
	assert.Equal(t, 4, carets.ColBegin)
	assert.Equal(t, 8, carets.ColEnd)
	assert.Equal(t, "entity.name.function.c", carets.Selector)

	single := f.Assertions[2]
	assert.Equal(t, 5, single.Line)
	assert.Equal(t, 8, single.ColBegin)
	assert.Equal(t, 9, single.ColEnd)
	assert.Equal(t, "constant.numeric.c", single.Selector)
}

func TestParseStripsEndToken(t *testing.T) {
	text := "<!-- SYNTAX TEST \"HTML.sublime-syntax\" -->\n" +
		"<small>\n" +
		"<!-- ^ entity.name.tag -->\n"
	f := syntaxtest.Parse(text)
	require.Len(t, f.Assertions, 1)
	assert.Equal(t, "entity.name.tag", f.Assertions[0].Selector)
	assert.Equal(t, 5, f.Assertions[0].ColBegin)
}

func TestParseWithoutHeader(t *testing.T) {
	f := syntaxtest.Parse("int main() {}\n// ^ comment\n")
	assert.False(t, f.HasHeader)
	assert.Empty(t, f.Assertions)
	assert.False(t, syntaxtest.Detect("int main() {}"))
	assert.True(t, syntaxtest.Detect(cTest))
}

func TestAtHeaderPath(t *testing.T) {
	text := `# SYNTAX TEST "Packages/`
	spot := syntaxtest.At(text, len(text))
	require.Equal(t, syntaxtest.SpotPath, spot.Kind)
	assert.Equal(t, "Packages/", spot.Text)
	assert.Equal(t, len(`# SYNTAX TEST "`), spot.Start)

	// Inside the SYNTAX TEST words there is nothing to complete.
	spot = syntaxtest.At(text, 4)
	assert.Equal(t, syntaxtest.SpotNone, spot.Kind)

	// Past the closing quote of a finished header.
	closed := `# SYNTAX TEST "Packages/C/C.sublime-syntax" `
	spot = syntaxtest.At(closed, len(closed))
	assert.Equal(t, syntaxtest.SpotNone, spot.Kind)

	// Still inside the quotes of a finished header.
	spot = syntaxtest.At(closed, len(`# SYNTAX TEST "Packages/C`))
	assert.Equal(t, syntaxtest.SpotPath, spot.Kind)
	assert.Equal(t, "Packages/C", spot.Text)
}

func TestAtSelector(t *testing.T) {
	text := "// SYNTAX TEST \"Packages/C/C.sublime-syntax\"\nint x;\n//  ^ storage"
	spot := syntaxtest.At(text, len(text))
	require.Equal(t, syntaxtest.SpotSelector, spot.Kind)
	assert.Equal(t, "storage", spot.Text)
	assert.Equal(t, len(text)-len("storage"), spot.Start)

	// Inside the caret run there is no selector yet.
	spot = syntaxtest.At(text, len(text)-len(" storage"))
	assert.Equal(t, syntaxtest.SpotNone, spot.Kind)

	// A code line is not an assertion.
	spot = syntaxtest.At(text, len("// SYNTAX TEST \"Packages/C/C.sublime-syntax\"\nint"))
	assert.Equal(t, syntaxtest.SpotNone, spot.Kind)

	// Without a header no line is an assertion.
	plain := "int x;\n//  ^ storage"
	spot = syntaxtest.At(plain, len(plain))
	assert.Equal(t, syntaxtest.SpotNone, spot.Kind)
}
