// Package archive reads .sublime-package files, which are plain zip
// archives, into an in-memory filesystem so compressed packages index
// the same way loose package directories do.
package archive

import (
	"archive/zip"
	"bytes"
	"io"
	"path"
	"strings"

	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

// ExtractOptions configures which archive members are materialized.
type ExtractOptions struct {
	// Filter returns true for members to extract. Nil extracts everything.
	Filter func(name string) bool

	// MaxFileSize caps the decompressed size of a single member. Zero
	// applies the default; archives are untrusted input.
	MaxFileSize int64
}

const defaultMaxFileSize = 16 << 20

// Extract reads a zip archive into a fresh in-memory filesystem.
func Extract(data []byte) (afero.Fs, error) {
	return ExtractWithOptions(data, ExtractOptions{})
}

// ExtractWithOptions extracts a zip archive with custom options.
func ExtractWithOptions(data []byte, opts ExtractOptions) (afero.Fs, error) {
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = defaultMaxFileSize
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.Errorf("opening zip archive: %w", err)
	}

	fsys := afero.NewMemMapFs()
	for _, member := range zr.File {
		name := cleanName(member.Name)
		if name == "" || member.FileInfo().IsDir() {
			continue
		}
		if opts.Filter != nil && !opts.Filter(name) {
			continue
		}
		if err := extractMember(fsys, member, name, opts.MaxFileSize); err != nil {
			return nil, err
		}
	}
	return fsys, nil
}

// cleanName normalizes a member path and rejects ones escaping the
// archive root.
func cleanName(name string) string {
	name = path.Clean(strings.ReplaceAll(name, `\`, "/"))
	if name == "." || path.IsAbs(name) || strings.HasPrefix(name, "../") {
		return ""
	}
	return name
}

func extractMember(fsys afero.Fs, member *zip.File, name string, limit int64) error {
	rc, err := member.Open()
	if err != nil {
		return errors.Errorf("opening member %s: %w", name, err)
	}
	defer rc.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, io.LimitReader(rc, limit+1)); err != nil {
		return errors.Errorf("reading member %s: %w", name, err)
	}
	if int64(buf.Len()) > limit {
		return errors.Errorf("member %s exceeds the %d byte limit", name, limit)
	}
	return afero.WriteFile(fsys, name, buf.Bytes(), 0o644)
}
