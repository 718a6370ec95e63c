package scopes

import (
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

var syntaxPatterns = []string{
	"**/*.sublime-syntax",
	"**/*.tmLanguage",
	"**/*.hidden-tmLanguage",
}

const packageExt = ".sublime-package"

// findSyntaxFiles globs for syntax definitions under dir, returning paths
// relative to it. A missing directory is an empty result, not an error.
func findSyntaxFiles(fsys afero.Fs, dir string) ([]string, error) {
	if ok, err := afero.DirExists(fsys, dir); err != nil || !ok {
		return nil, err
	}

	scoped := afero.NewIOFS(afero.NewBasePathFs(fsys, dir))
	var out []string
	for _, pattern := range syntaxPatterns {
		matches, err := doublestar.Glob(scoped, pattern)
		if err != nil {
			return nil, errors.Errorf("globbing %s: %w", pattern, err)
		}
		out = append(out, matches...)
	}
	sort.Strings(out)
	return out, nil
}

// findPackageArchives lists the .sublime-package zip archives sitting
// directly under dir. Sublime keeps them flat in Installed Packages, so
// no recursion is needed.
func findPackageArchives(fsys afero.Fs, dir string) ([]string, error) {
	if ok, err := afero.DirExists(fsys, dir); err != nil || !ok {
		return nil, err
	}

	infos, err := afero.ReadDir(fsys, dir)
	if err != nil {
		return nil, errors.Errorf("listing %s: %w", dir, err)
	}
	var out []string
	for _, info := range infos {
		if !info.IsDir() && strings.HasSuffix(info.Name(), packageExt) {
			out = append(out, info.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}
