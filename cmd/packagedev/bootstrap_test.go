package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forkeith/PackageDev/pkg/config"
	"github.com/forkeith/PackageDev/pkg/dialect"
)

const goodSyntax = `%YAML 1.2
---
name: C
scope: source.c
contexts:
  main:
    - match: '\bint\b'
      scope: storage.type.c
`

func writePackage(t *testing.T, root, pkg, name, body string) {
	t.Helper()
	dir := filepath.Join(root, pkg)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestBuildEngineToleratesBrokenFiles(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root, "C", "C.sublime-syntax", goodSyntax)
	writePackage(t, root, "Broken", "B.tmLanguage", "<plist version=\"1.0\"><dict><key>truncated")

	cfg := config.Default()
	cfg.PackagesRoots = []string{root}

	eng, err := buildEngine(context.Background(), &cfg)
	require.NoError(t, err, "partial indexing failure must not abort")
	require.NotNil(t, eng)

	items, err := eng.GetCompletions(context.Background(), "scope: storage.ty", 17, dialect.SublimeSyntax)
	require.NoError(t, err)
	var labels []string
	for _, it := range items {
		labels = append(labels, it.Label)
	}
	assert.Contains(t, labels, "storage.type.c", "indexable files still serve")
}

func TestBuildEngineSkipsMissingRoots(t *testing.T) {
	cfg := config.Default()
	cfg.PackagesRoots = []string{filepath.Join(t.TempDir(), "no-such-dir")}

	eng, err := buildEngine(context.Background(), &cfg)
	require.NoError(t, err)
	assert.NotNil(t, eng)
}
