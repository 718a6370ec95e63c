package parser_test

import (
	"testing"

	"github.com/forkeith/PackageDev/pkg/dialect"
	"github.com/forkeith/PackageDev/pkg/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalkJSON(t *testing.T) {
	doc := parser.Walk(`{
	// base colors
	"globals": {"background": "#000"},
	"rules": [
		{"scope": "comment", "foreground": "var(--bluish)"},
	],
}`, dialect.ColorScheme)

	require.NotNil(t, doc.Root)
	assert.False(t, doc.Damaged)
	assert.Equal(t, parser.NodeMap, doc.Root.Kind)

	globals := doc.Root.Entry("globals")
	require.NotNil(t, globals)
	assert.Equal(t, parser.NodeMap, globals.Kind)
	assert.Equal(t, "globals", globals.Key.Text)

	bg := globals.Entry("background")
	require.NotNil(t, bg)
	assert.Equal(t, "#000", bg.Value.Text)
	assert.Equal(t, byte('"'), bg.Quote)

	rules := doc.Root.Entry("rules")
	require.NotNil(t, rules)
	require.Len(t, rules.Children, 1)
	rule := rules.Children[0]
	assert.Equal(t, "rules[0]", rule.Path.String())

	fg := rule.Entry("foreground")
	require.NotNil(t, fg)
	assert.Equal(t, "var(--bluish)", fg.Value.Text)
	assert.Equal(t, "rules[0].foreground", fg.Path.String())
}

func TestWalkJSONDamaged(t *testing.T) {
	doc := parser.Walk(`{"a": "x`, dialect.Settings)

	require.NotNil(t, doc.Root)
	assert.True(t, doc.Damaged)

	a := doc.Root.Entry("a")
	require.NotNil(t, a)
	assert.Equal(t, "x", a.Value.Text)
}

func TestWalkJSONBareScalars(t *testing.T) {
	doc := parser.Walk(`{"translate_tabs_to_spaces": true, "tab_size": 4}`, dialect.Settings)

	require.NotNil(t, doc.Root)
	assert.False(t, doc.Damaged)
	assert.Equal(t, "true", doc.Root.Entry("translate_tabs_to_spaces").Value.Text)
	assert.Equal(t, byte(0), doc.Root.Entry("translate_tabs_to_spaces").Quote)
	assert.Equal(t, "4", doc.Root.Entry("tab_size").Value.Text)
}

func TestWalkYAML(t *testing.T) {
	doc := parser.Walk(`%YAML 1.2
---
name: C
file_extensions:
  - c
  - h
contexts:
  main:
    - match: '[a-z]+'
      scope: source.c
      push: [string]
`, dialect.SublimeSyntax)

	require.NotNil(t, doc.Root)
	assert.False(t, doc.Damaged)

	assert.Equal(t, "C", doc.Root.Entry("name").Value.Text)

	exts := doc.Root.Entry("file_extensions")
	require.NotNil(t, exts)
	require.Len(t, exts.Children, 2)
	assert.Equal(t, "c", exts.Children[0].Value.Text)
	assert.Equal(t, "h", exts.Children[1].Value.Text)

	main := doc.Root.Entry("contexts").Entry("main")
	require.NotNil(t, main)
	require.Len(t, main.Children, 1)
	rule := main.Children[0]
	assert.Equal(t, "contexts.main[0]", rule.Path.String())

	match := rule.Entry("match")
	require.NotNil(t, match)
	assert.Equal(t, "[a-z]+", match.Value.Text)
	assert.Equal(t, byte('\''), match.Quote)

	push := rule.Entry("push")
	require.NotNil(t, push)
	require.Equal(t, parser.NodeList, push.Kind)
	require.Len(t, push.Children, 1)
	assert.Equal(t, "string", push.Children[0].Value.Text)
	assert.Equal(t, "contexts.main[0].push[0]", push.Children[0].Path.String())
}

func TestWalkYAMLBlockScalar(t *testing.T) {
	doc := parser.Walk("first_line_match: |\n  ^#!.*\\bpython\\b\nscope: source.python\n", dialect.SublimeSyntax)

	require.NotNil(t, doc.Root)
	flm := doc.Root.Entry("first_line_match")
	require.NotNil(t, flm)
	assert.True(t, flm.Block)

	scope := doc.Root.Entry("scope")
	require.NotNil(t, scope)
	assert.Equal(t, "source.python", scope.Value.Text)
}

func TestWalkYAMLListAtKeyColumn(t *testing.T) {
	doc := parser.Walk("file_extensions:\n- py\n- pyw\nscope: source.python\n", dialect.SublimeSyntax)

	require.NotNil(t, doc.Root)
	exts := doc.Root.Entry("file_extensions")
	require.NotNil(t, exts)
	require.Len(t, exts.Children, 2)
	assert.Equal(t, "pyw", exts.Children[1].Value.Text)
	assert.Equal(t, "source.python", doc.Root.Entry("scope").Value.Text)
}

func TestWalkPlist(t *testing.T) {
	doc := parser.Walk(`<?xml version="1.0" encoding="UTF-8"?>
<plist version="1.0">
<dict>
	<key>name</key>
	<string>T</string>
	<key>settings</key>
	<array>
		<dict>
			<key>scope</key>
			<string>comment</string>
		</dict>
	</array>
</dict>
</plist>
`, dialect.TmTheme)

	require.NotNil(t, doc.Root)
	assert.False(t, doc.Damaged)

	assert.Equal(t, "T", doc.Root.Entry("name").Value.Text)

	settings := doc.Root.Entry("settings")
	require.NotNil(t, settings)
	require.Len(t, settings.Children, 1)

	scope := settings.Children[0].Entry("scope")
	require.NotNil(t, scope)
	assert.Equal(t, "comment", scope.Value.Text)
	assert.Equal(t, "settings[0].scope", scope.Path.String())
}

func TestWalkPlistRawRegexContent(t *testing.T) {
	doc := parser.Walk(`<plist version="1.0"><dict>`+
		`<key>match</key><string>[<>]+</string>`+
		`<key>name</key><string>punctuation</string>`+
		`</dict></plist>`, dialect.TmLanguage)

	require.NotNil(t, doc.Root)
	match := doc.Root.Entry("match")
	require.NotNil(t, match)
	assert.Equal(t, "[<>]+", match.Value.Text)
	assert.Equal(t, "punctuation", doc.Root.Entry("name").Value.Text)
}

func TestWalkVisitPrunes(t *testing.T) {
	doc := parser.Walk(`{"globals": {"background": "#000"}, "rules": []}`, dialect.ColorScheme)

	var seen []string
	doc.Visit(func(n *parser.Node) bool {
		if n.Key != nil {
			seen = append(seen, n.Key.Text)
		}
		return n.Key == nil || n.Key.Text != "globals"
	})
	assert.Equal(t, []string{"globals", "rules"}, seen)
}

func TestDocumentAt(t *testing.T) {
	doc := parser.Walk(`{"rules": [{"scope": "comment", "foreground": "#888"}]}`, dialect.ColorScheme)

	fg := doc.At(parser.Path{parser.Key("rules"), parser.Index(0), parser.Key("foreground")})
	require.NotNil(t, fg)
	assert.Equal(t, "#888", fg.Value.Text)

	assert.Nil(t, doc.At(parser.Path{parser.Key("rules"), parser.Index(1)}))
	assert.Nil(t, doc.At(parser.Path{parser.Key("globals")}))
	assert.Nil(t, doc.At(parser.Path{parser.Index(0)}))

	var none *parser.Document
	assert.Nil(t, none.At(parser.Path{parser.Key("rules")}))
}

func TestWalkUnknownFamily(t *testing.T) {
	doc := parser.Walk("whatever", dialect.Unknown)
	assert.True(t, doc.Damaged)
	assert.Nil(t, doc.Root)
}
