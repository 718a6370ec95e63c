package engine_test

import (
	"context"
	"strings"
	"testing"

	"github.com/forkeith/PackageDev/pkg/dialect"
	"github.com/forkeith/PackageDev/pkg/engine"
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

const rustSyntax = `%YAML 1.2
---
name: Rust
scope: source.rust
contexts:
  main:
    - match: '\bfn\b'
      scope: storage.type.function.rust
`

func newEngine(t *testing.T) (*engine.Engine, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "Packages/C/C.sublime-syntax", []byte(cSyntax), 0o644))
	reg := scopes.NewRegistry(fs, []string{"Packages"})
	require.NoError(t, reg.Index(context.Background()))
	return engine.New(reg), fs
}

func TestGetCompletionsServesRankedItems(t *testing.T) {
	e, _ := newEngine(t)
	text := `{"rules": [{"scope": "sour`

	items, err := e.GetCompletions(context.Background(), text, len(text), dialect.ColorScheme)

	require.NoError(t, err)
	require.NotEmpty(t, items)
	labels := make([]string, len(items))
	for i, it := range items {
		labels[i] = it.Label
	}
	assert.Contains(t, labels, "source.c")
}

func TestGetCompletionsClampsOffset(t *testing.T) {
	e, _ := newEngine(t)
	text := `{"rules": [{"scope": "sour`

	at, err := e.GetCompletions(context.Background(), text, len(text), dialect.ColorScheme)
	require.NoError(t, err)
	beyond, err := e.GetCompletions(context.Background(), text, len(text)+500, dialect.ColorScheme)
	require.NoError(t, err)

	assert.Equal(t, at, beyond)
}

func TestGetCompletionsRejectsUnknownDialect(t *testing.T) {
	e, _ := newEngine(t)

	_, err := e.GetCompletions(context.Background(), "{}", 0, dialect.Unknown)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unrecognized dialect")

	_, err = e.GetCompletions(context.Background(), "{}", 0, dialect.Dialect("bogus"))
	require.Error(t, err)
}

func TestGetDiagnosticsReportsFindings(t *testing.T) {
	e, _ := newEngine(t)

	findings, err := e.GetDiagnostics(context.Background(), `{"globalz": {}}`, dialect.ColorScheme)

	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, `unknown key "globalz"`, findings[0].Message)

	_, err = e.GetDiagnostics(context.Background(), "{}", dialect.Unknown)
	require.Error(t, err)
}

func TestGetHoverDescribesToken(t *testing.T) {
	e, _ := newEngine(t)
	text := `{"globals": {"background": "#abc"}}`

	info, err := e.GetHover(context.Background(), text, strings.Index(text, "#abc")+1, dialect.ColorScheme)

	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "`#aabbcc`", info.Content[0])

	none, err := e.GetHover(context.Background(), text, 0, dialect.ColorScheme)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestOnPackageChangedTracksTheIndex(t *testing.T) {
	e, fs := newEngine(t)
	ctx := context.Background()
	require.False(t, e.Registry().Covers("source.rust"))

	require.NoError(t, afero.WriteFile(fs, "Packages/Rust/Rust.sublime-syntax", []byte(rustSyntax), 0o644))
	require.NoError(t, e.OnPackageChanged(ctx, scopes.PackageEvent{Action: scopes.PackageAdded, Package: "Rust"}))
	assert.True(t, e.Registry().Covers("source.rust"))

	require.NoError(t, e.OnPackageChanged(ctx, scopes.PackageEvent{Action: scopes.PackageRemoved, Package: "Rust"}))
	assert.False(t, e.Registry().Covers("source.rust"))
	assert.True(t, e.Registry().Covers("source.c"), "other packages keep their entries")
}

func TestOnPackageChangedRejectsBadEvents(t *testing.T) {
	e, _ := newEngine(t)
	ctx := context.Background()

	err := e.OnPackageChanged(ctx, scopes.PackageEvent{Action: scopes.PackageAdded})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "without a package")

	err = e.OnPackageChanged(ctx, scopes.PackageEvent{Action: scopes.Action("renamed"), Package: "C"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unrecognized package action")
}
