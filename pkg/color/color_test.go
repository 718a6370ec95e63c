package color_test

import (
	"sort"
	"testing"

	"github.com/forkeith/PackageDev/pkg/color"
	"github.com/forkeith/PackageDev/pkg/dialect"
	"github.com/forkeith/PackageDev/pkg/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "long hex", in: "#ff0000", want: "#ff0000"},
		{name: "uppercase hex folds", in: "#FF0000", want: "#ff0000"},
		{name: "short hex expands", in: "#abc", want: "#aabbcc"},
		{name: "short hex with alpha", in: "#f008", want: "#ff000088"},
		{name: "hex with alpha", in: "#ff000080", want: "#ff000080"},
		{name: "opaque alpha drops", in: "#00ff00ff", want: "#00ff00"},
		{name: "rgb", in: "rgb(255, 0, 0)", want: "#ff0000"},
		{name: "rgb percentages", in: "rgb(100%, 0%, 0%)", want: "#ff0000"},
		{name: "rgb clamps out of range", in: "rgb(300, -20, 0)", want: "#ff0000"},
		{name: "rgba", in: "rgba(255, 0, 0, 0.5)", want: "#ff000080"},
		{name: "rgba percent alpha", in: "rgba(255, 0, 0, 50%)", want: "#ff000080"},
		{name: "hsl red", in: "hsl(0, 100%, 50%)", want: "#ff0000"},
		{name: "hsl green", in: "hsl(120, 100%, 50%)", want: "#00ff00"},
		{name: "hsl orange", in: "hsl(30, 100%, 50%)", want: "#ff8000"},
		{name: "hsl azure", in: "hsl(210, 100%, 50%)", want: "#0080ff"},
		{name: "hue wraps", in: "hsl(480, 100%, 50%)", want: "#00ff00"},
		{name: "negative hue wraps", in: "hsl(-120, 100%, 50%)", want: "#0000ff"},
		{name: "hue deg suffix", in: "hsl(120deg, 100%, 50%)", want: "#00ff00"},
		{name: "hsl bare fractions", in: "hsl(0, 1, 0.5)", want: "#ff0000"},
		{name: "hsla", in: "hsla(240, 100%, 50%, 0.5)", want: "#0000ff80"},
		{name: "named", in: "red", want: "#ff0000"},
		{name: "named case insensitive", in: "RebeccaPurple", want: "#663399"},
		{name: "transparent", in: "transparent", want: "#00000000"},
		{name: "surrounding space", in: "  teal ", want: "#008080"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := color.Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.Hex())
		})
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{name: "empty", in: ""},
		{name: "five hex digits", in: "#ff000"},
		{name: "non hex digit", in: "#gg0000"},
		{name: "rgb arity", in: "rgb(1, 2)"},
		{name: "rgb non numeric", in: "rgb(a, b, c)"},
		{name: "hsl arity", in: "hsl(0, 100%)"},
		{name: "unknown function", in: "cmyk(0, 0, 0, 1)"},
		{name: "unknown keyword", in: "blurple"},
		{name: "bare var reference", in: "var(accent)"},
		{name: "adjuster expression", in: "color(var(accent) alpha(0.5))"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := color.Parse(tt.in)
			assert.Error(t, err)
		})
	}
}

func TestVarName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{name: "plain", in: "var(bluish)", want: "bluish", ok: true},
		{name: "css variable", in: "var( --background )", want: "--background", ok: true},
		{name: "empty", in: "var()", ok: false},
		{name: "not a reference", in: "red", ok: false},
		{name: "nested call", in: "var(rgb(0,0,0))", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := color.VarName(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsModExpression(t *testing.T) {
	assert.True(t, color.IsModExpression("color(var(accent) alpha(0.5))"))
	assert.True(t, color.IsModExpression(" color(red blend(blue 50%)) "))
	assert.False(t, color.IsModExpression("rgb(1, 2, 3)"))
	assert.False(t, color.IsModExpression("color scheme"))
}

func TestResolve(t *testing.T) {
	vars := map[string]string{
		"accent":  "var(bluish)",
		"bluish":  "#3498db",
		"broken":  "not a color",
		"looping": "var(looping)",
	}

	v, err := color.Resolve("var(accent)", vars)
	require.NoError(t, err)
	assert.Equal(t, "#3498db", v.Hex())

	v, err = color.Resolve("#fff", vars)
	require.NoError(t, err)
	assert.Equal(t, "#ffffff", v.Hex())

	_, err = color.Resolve("var(missing)", vars)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "undefined")

	_, err = color.Resolve("var(looping)", vars)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cyclic")

	_, err = color.Resolve("var(broken)", vars)
	assert.Error(t, err)
}

func TestNames(t *testing.T) {
	names := color.Names()
	assert.True(t, sort.StringsAreSorted(names))
	assert.Contains(t, names, "red")
	assert.Contains(t, names, "rebeccapurple")
	assert.Contains(t, names, "transparent")

	v, ok := color.Named("DodgerBlue")
	require.True(t, ok)
	assert.Equal(t, "#1e90ff", v.Hex())

	_, ok = color.Named("blurple")
	assert.False(t, ok)
}

func TestBuiltinVariables(t *testing.T) {
	vars := color.BuiltinVariables()
	assert.Len(t, vars, 11)
	assert.True(t, sort.StringsAreSorted(vars))
	assert.Contains(t, vars, "--background")
	assert.Contains(t, vars, "--yellowish")
}

func TestVariablesFrom(t *testing.T) {
	text := `{
	"variables": {
		"accent": "#ff6600",
		"bluish": "hsl(210, 100%, 50%)"
	},
	"globals": {"background": "var(bluish)"}
}`
	doc := parser.Walk(text, dialect.ColorScheme)
	vars := color.VariablesFrom(doc)
	assert.Equal(t, map[string]string{
		"accent": "#ff6600",
		"bluish": "hsl(210, 100%, 50%)",
	}, vars)

	empty := parser.Walk(`{"globals": {}}`, dialect.ColorScheme)
	assert.Empty(t, color.VariablesFrom(empty))
	assert.Empty(t, color.VariablesFrom(nil))
}
