package schema_test

import (
	"testing"

	"github.com/forkeith/PackageDev/pkg/dialect"
	"github.com/forkeith/PackageDev/pkg/parser"
	"github.com/forkeith/PackageDev/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(name string) parser.Segment {
	return parser.Key(name)
}

func idx(i int) parser.Segment {
	return parser.Index(i)
}

func TestLookup(t *testing.T) {
	tests := []struct {
		name     string
		dialect  dialect.Dialect
		path     parser.Path
		wantKind schema.Kind
	}{
		{
			name:     "syntax root",
			dialect:  dialect.SublimeSyntax,
			path:     nil,
			wantKind: schema.KindMap,
		},
		{
			name:     "syntax base scope",
			dialect:  dialect.SublimeSyntax,
			path:     parser.Path{key("scope")},
			wantKind: schema.KindScopeName,
		},
		{
			name:     "context resolves through the wildcard",
			dialect:  dialect.SublimeSyntax,
			path:     parser.Path{key("contexts"), key("main")},
			wantKind: schema.KindList,
		},
		{
			name:     "rule matched by type not index",
			dialect:  dialect.SublimeSyntax,
			path:     parser.Path{key("contexts"), key("main"), idx(7)},
			wantKind: schema.KindMap,
		},
		{
			name:     "rule scope",
			dialect:  dialect.SublimeSyntax,
			path:     parser.Path{key("contexts"), key("main"), idx(0), key("scope")},
			wantKind: schema.KindScopeName,
		},
		{
			name:     "capture group scope",
			dialect:  dialect.SublimeSyntax,
			path:     parser.Path{key("contexts"), key("main"), idx(0), key("captures"), key("1")},
			wantKind: schema.KindScopeName,
		},
		{
			name:     "with_prototype recurses into rules",
			dialect:  dialect.SublimeSyntax,
			path:     parser.Path{key("contexts"), key("main"), idx(0), key("with_prototype"), idx(0), key("match")},
			wantKind: schema.KindRegex,
		},
		{
			name:     "push is an action reference",
			dialect:  dialect.SublimeSyntax,
			path:     parser.Path{key("contexts"), key("main"), idx(0), key("push")},
			wantKind: schema.KindActionRef,
		},
		{
			name:     "grammar nested pattern name",
			dialect:  dialect.TmLanguage,
			path:     parser.Path{key("patterns"), idx(0), key("patterns"), idx(2), key("name")},
			wantKind: schema.KindScopeName,
		},
		{
			name:     "grammar repository entry",
			dialect:  dialect.TmLanguage,
			path:     parser.Path{key("repository"), key("strings"), key("begin")},
			wantKind: schema.KindRegex,
		},
		{
			name:     "color scheme rule selector",
			dialect:  dialect.ColorScheme,
			path:     parser.Path{key("rules"), idx(3), key("scope")},
			wantKind: schema.KindScopeSelector,
		},
		{
			name:     "color scheme variable value",
			dialect:  dialect.ColorScheme,
			path:     parser.Path{key("variables"), key("blue2")},
			wantKind: schema.KindColor,
		},
		{
			name:     "popup css carries variable references",
			dialect:  dialect.ColorScheme,
			path:     parser.Path{key("globals"), key("popup_css")},
			wantKind: schema.KindCssVariable,
		},
		{
			name:     "theme entry font style",
			dialect:  dialect.TmTheme,
			path:     parser.Path{key("settings"), idx(0), key("settings"), key("fontStyle")},
			wantKind: schema.KindEnum,
		},
		{
			name:     "keymap root is a list",
			dialect:  dialect.Keymap,
			path:     parser.Path{idx(0), key("context"), idx(1), key("key")},
			wantKind: schema.KindString,
		},
		{
			name:     "build platform override",
			dialect:  dialect.Build,
			path:     parser.Path{key("windows"), key("cmd")},
			wantKind: schema.KindList,
		},
		{
			name:     "build variant name",
			dialect:  dialect.Build,
			path:     parser.Path{key("variants"), idx(0), key("name")},
			wantKind: schema.KindString,
		},
		{
			name:     "snippet scope",
			dialect:  dialect.Snippet,
			path:     parser.Path{key("snippet"), key("scope")},
			wantKind: schema.KindScopeSelector,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, ok := schema.Lookup(tt.dialect, tt.path)
			require.True(t, ok, "path should resolve")
			require.NotNil(t, node)
			assert.Equal(t, tt.wantKind, node.Kind)
		})
	}
}

func TestLookupUnknown(t *testing.T) {
	_, ok := schema.Lookup(dialect.SublimeSyntax, parser.Path{key("garbage")})
	assert.False(t, ok)

	_, ok = schema.Lookup(dialect.ColorScheme, parser.Path{key("rules"), idx(0), key("nonsense")})
	assert.False(t, ok)

	_, ok = schema.Lookup(dialect.SyntaxTest, nil)
	assert.False(t, ok, "syntax tests have no key schema")
}

func TestSettingsWildcardStaysPermissive(t *testing.T) {
	node, ok := schema.Lookup(dialect.Settings, parser.Path{key("my_plugin_setting")})
	require.True(t, ok)
	assert.Equal(t, schema.KindFreeText, node.Kind)

	node, ok = schema.Lookup(dialect.Settings, parser.Path{key("draw_white_space")})
	require.True(t, ok)
	assert.Equal(t, schema.KindEnum, node.Kind)
	assert.True(t, node.WordEnum)
	assert.Contains(t, node.Values, "selection")
}

func TestChildNamesSorted(t *testing.T) {
	root := schema.Root(dialect.ColorScheme)
	require.NotNil(t, root)

	names := root.ChildNames()
	require.Equal(t, []string{"author", "globals", "name", "rules", "variables"}, names)
}

func TestGrammarPatternKeysCarryNames(t *testing.T) {
	node, ok := schema.Lookup(dialect.TmLanguage, parser.Path{key("patterns"), idx(0)})
	require.True(t, ok)

	for _, name := range node.ChildNames() {
		child := node.Child(name)
		require.NotNil(t, child)
		assert.Equal(t, name, child.Name)
	}

	// Capture tables still allow nested patterns.
	_, ok = schema.Lookup(dialect.TmLanguage, parser.Path{
		key("patterns"), idx(0), key("beginCaptures"), key("1"), key("patterns"), idx(0), key("match"),
	})
	assert.True(t, ok)
}

func TestRuleKeysCarryDocs(t *testing.T) {
	node, ok := schema.Lookup(dialect.SublimeSyntax, parser.Path{key("contexts"), key("x"), idx(0)})
	require.True(t, ok)

	for _, name := range node.ChildNames() {
		child := node.Child(name)
		require.NotNil(t, child)
		assert.NotEmpty(t, child.Doc, "key %s should carry a description", name)
		assert.Equal(t, name, child.Name)
	}
}
