package completion_test

import (
	"context"
	"sort"
	"testing"

	"github.com/forkeith/PackageDev/pkg/completion"
	"github.com/forkeith/PackageDev/pkg/dialect"
	"github.com/forkeith/PackageDev/pkg/scopes"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cSyntax = `%YAML 1.2
---
name: C
scope: source.c
contexts:
  main:
    - match: '\bint\b'
      scope: storage.type.c
`

const htmlSyntax = `%YAML 1.2
---
name: HTML
scope: text.html.basic
contexts:
  main:
    - match: '<\w+'
      scope: meta.tag.html
`

const hiddenSyntax = `%YAML 1.2
---
name: C Command Line
scope: source.cmdline
hidden: true
contexts:
  main:
    - match: \S+
      scope: variable.parameter.cmdline
`

func seedRegistry(t *testing.T) *scopes.Registry {
	t.Helper()
	fs := afero.NewMemMapFs()
	files := map[string]string{
		"Packages/C/C.sublime-syntax":       cSyntax,
		"Packages/C/Cmdline.sublime-syntax": hiddenSyntax,
		"Packages/HTML/HTML.sublime-syntax": htmlSyntax,
	}
	for name, body := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(body), 0o644))
	}
	reg := scopes.NewRegistry(fs, []string{"Packages"})
	require.NoError(t, reg.Index(context.Background()))
	return reg
}

func complete(t *testing.T, fixture string, d dialect.Dialect, reg *scopes.Registry) []completion.Item {
	t.Helper()
	text, off := withCursor(t, fixture)
	return completion.Complete(text, off, d, reg)
}

func labels(items []completion.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Label
	}
	return out
}

func TestCompleteSettingKeys(t *testing.T) {
	items := complete(t, `{"tab_size": 4, "wo¦`, dialect.Settings, nil)

	require.NotEmpty(t, items)
	assert.Equal(t, "word_separators", items[0].Label)
	assert.Equal(t, "word_wrap", items[1].Label)
	assert.Equal(t, completion.ItemKey, items[0].Kind)
	assert.NotEmpty(t, items[1].Documentation)
}

func TestCompleteExcludesPresentKeys(t *testing.T) {
	items := complete(t, `{"tab_size": 4, "¦`, dialect.Settings, nil)

	got := labels(items)
	assert.NotContains(t, got, "tab_size")
	assert.Contains(t, got, "word_wrap")
}

func TestCompleteBoolValues(t *testing.T) {
	items := complete(t, `{"translate_tabs_to_spaces": ¦`, dialect.Settings, nil)

	assert.Equal(t, []string{"false", "true"}, labels(items))
	assert.Equal(t, "false", items[0].InsertText)
}

func TestCompleteWordEnumExcludesUsed(t *testing.T) {
	items := complete(t,
		`{"rules": [{"scope": "comment", "font_style": "bold it¦`,
		dialect.ColorScheme, nil)

	got := labels(items)
	require.NotEmpty(t, got)
	assert.Equal(t, "italic", got[0])
	assert.NotContains(t, got, "bold")
}

func TestCompleteScopesRanked(t *testing.T) {
	items := complete(t, "scope: sou¦", dialect.SublimeSyntax, seedRegistry(t))

	got := labels(items)
	require.GreaterOrEqual(t, len(got), 2)
	assert.Equal(t, "source", got[0])
	assert.Equal(t, "source.c", got[1])
	assert.Contains(t, got, "storage.type.c")

	for i, it := range items {
		if i > 0 {
			assert.Greater(t, it.SortText, items[i-1].SortText)
		}
	}

	seen := map[string]int{}
	for _, l := range got {
		seen[l]++
	}
	assert.Equal(t, 1, seen["source.c"], "registry and prefix sources must not duplicate")
}

func TestCompleteScopeTypoStillMatches(t *testing.T) {
	items := complete(t, "scope: sorce¦", dialect.SublimeSyntax, seedRegistry(t))

	got := labels(items)
	require.GreaterOrEqual(t, len(got), 2)
	assert.Equal(t, "source", got[0])
	assert.Equal(t, "source.c", got[1])
}

func TestCompleteInternalScopesNeedDottedPrefixAndRankLast(t *testing.T) {
	reg := seedRegistry(t)

	items := complete(t, "scope: source¦", dialect.SublimeSyntax, reg)
	assert.NotContains(t, labels(items), "source.cmdline",
		"hidden scopes stay out until the prefix is dotted")

	items = complete(t, "scope: source.c¦", dialect.SublimeSyntax, reg)
	got := labels(items)
	require.NotEmpty(t, got)
	assert.Equal(t, "source.c", got[0])
	assert.Contains(t, got, "source.cmdline")
	assert.Equal(t, "source.cmdline", got[len(got)-1], "internal entries sort behind everything")
}

func TestCompleteWithTuning(t *testing.T) {
	reg := seedRegistry(t)

	text, off := withCursor(t, "scope: source.c¦")
	items := completion.CompleteWith(text, off, dialect.SublimeSyntax, reg,
		completion.Options{MaxFuzzyDistance: 2})
	assert.NotContains(t, labels(items), "source.cmdline",
		"hidden syntaxes disappear entirely when internal scopes are off")

	text, off = withCursor(t, "scope: sorce¦")
	items = completion.CompleteWith(text, off, dialect.SublimeSyntax, reg,
		completion.Options{IncludeInternal: true})
	got := labels(items)
	require.NotEmpty(t, got)
	assert.Equal(t, "comment", got[0], "no typo tolerance at distance zero, order falls back to alphabetic")
}

const branchingSyntax = `%YAML 1.2
---
contexts:
  main:
    - match: '"'
      branch_point: quoted
      branch: [double, single]
    - match: x
      push: ¦
  double:
    - match: '"'
      fail: quoted
  single:
    - match: x
      pop: true
`

func TestCompletePushTargets(t *testing.T) {
	items := complete(t, branchingSyntax, dialect.SublimeSyntax, seedRegistry(t))

	got := labels(items)
	require.NotEmpty(t, got)
	assert.Equal(t, "double", got[0])
	assert.Contains(t, got, "main")
	assert.Contains(t, got, "single")
	assert.Contains(t, got, "scope:source.c")
	assert.Contains(t, got, "scope:text.html.basic")
}

func TestCompleteFailTargetsBranchPointsOnly(t *testing.T) {
	text := `%YAML 1.2
---
contexts:
  main:
    - match: '"'
      branch_point: quoted
      branch: [double, single]
  double:
    - match: '"'
      fail: ¦
  single:
    - match: x
      pop: true
`
	items := complete(t, text, dialect.SublimeSyntax, seedRegistry(t))

	assert.Equal(t, []string{"quoted"}, labels(items))
}

func TestCompleteTmLanguageIncludeTargets(t *testing.T) {
	text := `<?xml version="1.0" encoding="UTF-8"?>
<plist version="1.0">
<dict>
	<key>repository</key>
	<dict>
		<key>strings</key>
		<dict></dict>
	</dict>
	<key>patterns</key>
	<array>
		<dict>
			<key>include</key>
			<string>¦</string>
		</dict>
	</array>
</dict>
</plist>
`
	items := complete(t, text, dialect.TmLanguage, seedRegistry(t))

	got := labels(items)
	require.NotEmpty(t, got)
	assert.Equal(t, "#strings", got[0])
	assert.Contains(t, got, "$self")
	assert.Contains(t, got, "$base")
	assert.Contains(t, got, "source.c")
}

func TestCompleteSyntaxReferences(t *testing.T) {
	items := complete(t, `{"syntax": "¦`, dialect.Settings, seedRegistry(t))

	got := labels(items)
	assert.Contains(t, got, "Packages/C/C.sublime-syntax")
	assert.Contains(t, got, "Packages/HTML/HTML.sublime-syntax")
	for _, it := range items {
		if it.Label == "Packages/C/C.sublime-syntax" {
			assert.Equal(t, "C", it.Detail)
		}
	}
}

func TestCompleteSyntaxTestHeaderPath(t *testing.T) {
	items := complete(t, "// SYNTAX TEST \"Packages/C¦\"\nint x;\n",
		dialect.SyntaxTest, seedRegistry(t))

	require.NotEmpty(t, items)
	assert.Equal(t, "Packages/C/C.sublime-syntax", items[0].Label)
}

func TestCompleteSyntaxTestSelector(t *testing.T) {
	items := complete(t,
		"// SYNTAX TEST \"Packages/C/C.sublime-syntax\"\nint x;\n// <- stora¦\n",
		dialect.SyntaxTest, seedRegistry(t))

	got := labels(items)
	require.GreaterOrEqual(t, len(got), 2)
	assert.Equal(t, "storage", got[0])
	assert.Equal(t, "storage.type.c", got[1])
}

func TestCompleteColors(t *testing.T) {
	items := complete(t,
		`{"variables": {"bluish": "#38f"}, "globals": {"background": "¦`,
		dialect.ColorScheme, nil)

	got := labels(items)
	require.NotEmpty(t, got)
	assert.Equal(t, "aliceblue", got[0], "empty segment lists alphabetically")
	assert.Contains(t, got, "var(bluish)")
	assert.Contains(t, got, "rgb()")
	assert.Contains(t, got, "transparent")

	for _, it := range items {
		switch it.Label {
		case "red":
			assert.Equal(t, "#ff0000", it.Detail)
		case "rgb()":
			assert.Equal(t, "rgb(${1:255}, ${2:255}, ${3:255})", it.InsertText)
			assert.Equal(t, completion.ItemSnippet, it.Kind)
		}
	}
}

func TestCompleteColorVariableNames(t *testing.T) {
	items := complete(t,
		`{"variables": {"bluish": "#38f", "accent2": "#f80"}, "globals": {"background": "var(¦`,
		dialect.ColorScheme, nil)

	assert.Equal(t, []string{"accent2", "bluish"}, labels(items))
	assert.Equal(t, completion.ItemVariable, items[0].Kind)
}

func TestCompleteCssVariables(t *testing.T) {
	items := complete(t,
		`{"variables": {"--frame": "#111"}, "globals": {"popup_css": "html { background: var(--fr¦`,
		dialect.ColorScheme, nil)

	got := labels(items)
	require.NotEmpty(t, got)
	assert.Equal(t, "--frame", got[0])
	assert.Contains(t, got, "--accent")
	assert.Contains(t, got, "--foreground")
	assert.True(t, sort.StringsAreSorted(got[1:]), "built-ins keep alphabetical order")
}

func TestCompleteCssOutsideVarIsEmpty(t *testing.T) {
	items := complete(t,
		`{"globals": {"popup_css": "html ¦`,
		dialect.ColorScheme, nil)

	assert.Empty(t, items)
}

func TestCompleteDedupePrefersDocumentVariable(t *testing.T) {
	items := complete(t,
		`{"variables": {"--accent": "#f00"}, "globals": {"popup_css": "a { color: var(¦`,
		dialect.ColorScheme, nil)

	var hits []completion.Item
	for _, it := range items {
		if it.Label == "--accent" {
			hits = append(hits, it)
		}
	}
	require.Len(t, hits, 1)
	assert.Equal(t, "color scheme variable", hits[0].Detail)
}

func TestCompleteFreeTextYieldsNothing(t *testing.T) {
	assert.Empty(t, complete(t, `{"no_such_setting": {"deep": "x¦`, dialect.ColorScheme, nil))
	assert.Empty(t, complete(t, "anything¦", dialect.Unknown, nil))
}

func TestCompleteWithoutRegistry(t *testing.T) {
	items := complete(t, "scope: sou¦", dialect.SublimeSyntax, nil)

	got := labels(items)
	require.NotEmpty(t, got)
	assert.Equal(t, "source", got[0], "naming convention prefixes survive a nil registry")
}
