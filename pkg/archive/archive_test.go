package archive_test

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/forkeith/PackageDev/pkg/archive"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func zipOf(t *testing.T, members map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range members {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtract(t *testing.T) {
	data := zipOf(t, map[string]string{
		"Syntax.sublime-syntax":       "scope: source.test\n",
		"sub/Other.sublime-syntax":    "scope: source.other\n",
		"messages.json":               "{}",
		`back\slash\Win.tmLanguage`:   "<plist/>",
		"../escape.sublime-syntax":    "scope: source.evil\n",
		"/absolute.sublime-syntax":    "scope: source.evil\n",
		"dir/../Clean.sublime-syntax": "scope: source.clean\n",
	})

	fsys, err := archive.Extract(data)
	require.NoError(t, err)

	for _, name := range []string{
		"Syntax.sublime-syntax",
		"sub/Other.sublime-syntax",
		"messages.json",
		"back/slash/Win.tmLanguage",
		"Clean.sublime-syntax",
	} {
		body, err := afero.ReadFile(fsys, name)
		require.NoError(t, err, name)
		assert.NotEmpty(t, body, name)
	}

	for _, name := range []string{"../escape.sublime-syntax", "escape.sublime-syntax", "absolute.sublime-syntax"} {
		ok, _ := afero.Exists(fsys, name)
		assert.False(t, ok, name)
	}
}

func TestExtractFilter(t *testing.T) {
	data := zipOf(t, map[string]string{
		"Syntax.sublime-syntax": "scope: source.test\n",
		"huge.bin":              "0123456789",
	})

	fsys, err := archive.ExtractWithOptions(data, archive.ExtractOptions{
		Filter: func(name string) bool { return name != "huge.bin" },
	})
	require.NoError(t, err)

	ok, _ := afero.Exists(fsys, "Syntax.sublime-syntax")
	assert.True(t, ok)
	ok, _ = afero.Exists(fsys, "huge.bin")
	assert.False(t, ok)
}

func TestExtractSizeLimit(t *testing.T) {
	data := zipOf(t, map[string]string{"big.txt": "0123456789"})

	_, err := archive.ExtractWithOptions(data, archive.ExtractOptions{MaxFileSize: 4})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "big.txt")
}

func TestExtractNotAZip(t *testing.T) {
	_, err := archive.Extract([]byte("not a zip"))
	require.Error(t, err)
}
