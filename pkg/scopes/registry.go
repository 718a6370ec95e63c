// Package scopes maintains the index of scope names declared by the
// syntax definitions installed under one or more package roots. The index
// is rebuilt off the request path and swapped in atomically, so queries
// during a rebuild see the previous complete state rather than a partial
// one.
package scopes

import (
	"context"
	"path"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

// Entry is one known scope name and where it came from.
type Entry struct {
	// Name is the full dotted scope name, e.g. "source.python".
	Name string
	// Source is the syntax file that declares the scope, relative to its
	// package root.
	Source string
	// Package is the top-level package directory the source lives in.
	Package string
	// Internal marks scopes from hidden syntaxes. They are retained for
	// validation but only surface in completions against an explicit
	// dotted prefix.
	Internal bool
}

// SyntaxFile describes one indexed syntax definition.
type SyntaxFile struct {
	Path    string
	Package string
	Scope   string
	Name    string
	Hidden  bool
}

type snapshot struct {
	// entries sorted by Name, one per unique name.
	entries []Entry
	// perPkg holds the raw extraction per package so one package can be
	// rebuilt without touching the others.
	perPkg   map[string][]*fileScopes
	syntaxes []SyntaxFile
}

func emptySnapshot() *snapshot {
	return &snapshot{perPkg: map[string][]*fileScopes{}}
}

// Registry indexes scope names under package roots. Queries are lock-free
// reads of the current snapshot; rebuilds serialize on a writer mutex.
type Registry struct {
	fs    afero.Fs
	roots []string

	mu   sync.Mutex
	snap atomic.Pointer[snapshot]
}

func NewRegistry(fsys afero.Fs, roots []string) *Registry {
	r := &Registry{fs: fsys, roots: roots}
	r.snap.Store(emptySnapshot())
	return r
}

// Index scans every package root and replaces the whole snapshot. File
// level failures are collected and logged, never fatal: a package with one
// broken syntax still contributes its other files.
func (r *Registry) Index(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	log := zerolog.Ctx(ctx)
	perPkg := map[string][]*fileScopes{}
	var errs *multierror.Error

	for _, root := range r.roots {
		files, err := findSyntaxFiles(r.fs, root)
		if err != nil {
			errs = multierror.Append(errs, errors.Errorf("scanning %s: %w", root, err))
			continue
		}
		for _, file := range files {
			if err := ctx.Err(); err != nil {
				return errors.Errorf("indexing interrupted: %w", err)
			}
			fsc, err := extractFile(r.fs, root, file)
			if err != nil {
				log.Warn().Err(err).Str("file", file).Msg("skipping unreadable syntax")
				errs = multierror.Append(errs, err)
				continue
			}
			perPkg[fsc.pkg] = append(perPkg[fsc.pkg], fsc)
		}

		archives, err := findPackageArchives(r.fs, root)
		if err != nil {
			errs = multierror.Append(errs, errors.Errorf("scanning %s: %w", root, err))
			continue
		}
		for _, name := range archives {
			if err := ctx.Err(); err != nil {
				return errors.Errorf("indexing interrupted: %w", err)
			}
			extracted, err := extractArchive(r.fs, root, name)
			if err != nil {
				log.Warn().Err(err).Str("archive", name).Msg("package archive indexed with problems")
				errs = multierror.Append(errs, err)
			}
			for _, fsc := range extracted {
				perPkg[fsc.pkg] = append(perPkg[fsc.pkg], fsc)
			}
		}
	}

	r.swap(perPkg)
	log.Debug().
		Int("packages", len(perPkg)).
		Int("scopes", len(r.snap.Load().entries)).
		Msg("scope index rebuilt")
	return errs.ErrorOrNil()
}

// OnPackageChanged rescans a single package and swaps in a snapshot where
// only that package's contribution differs.
func (r *Registry) OnPackageChanged(ctx context.Context, pkg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	log := zerolog.Ctx(ctx)
	perPkg := clonePerPkg(r.snap.Load().perPkg)
	delete(perPkg, pkg)

	var errs *multierror.Error
	for _, root := range r.roots {
		dir := path.Join(root, pkg)
		if ok, _ := afero.DirExists(r.fs, dir); ok {
			files, err := findSyntaxFiles(r.fs, dir)
			if err != nil {
				errs = multierror.Append(errs, errors.Errorf("scanning %s: %w", dir, err))
				continue
			}
			for _, file := range files {
				if err := ctx.Err(); err != nil {
					return errors.Errorf("indexing interrupted: %w", err)
				}
				fsc, err := extractFile(r.fs, root, path.Join(pkg, file))
				if err != nil {
					errs = multierror.Append(errs, err)
					continue
				}
				perPkg[pkg] = append(perPkg[pkg], fsc)
			}
		}

		name := pkg + packageExt
		if ok, _ := afero.Exists(r.fs, path.Join(root, name)); !ok {
			continue
		}
		extracted, err := extractArchive(r.fs, root, name)
		if err != nil {
			errs = multierror.Append(errs, err)
		}
		perPkg[pkg] = append(perPkg[pkg], extracted...)
	}

	r.swap(perPkg)
	log.Debug().Str("package", pkg).Msg("scope index updated")
	return errs.ErrorOrNil()
}

// Invalidate drops a package's entries without rescanning, for deleted
// packages.
func (r *Registry) Invalidate(pkg string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	perPkg := clonePerPkg(r.snap.Load().perPkg)
	delete(perPkg, pkg)
	r.swap(perPkg)
}

func clonePerPkg(src map[string][]*fileScopes) map[string][]*fileScopes {
	dst := make(map[string][]*fileScopes, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// swap rebuilds the derived entry list from the per-package extractions
// and publishes it. Callers hold r.mu.
func (r *Registry) swap(perPkg map[string][]*fileScopes) {
	snap := &snapshot{perPkg: perPkg}

	var all []*fileScopes
	byScope := map[string]*fileScopes{}
	byPath := map[string]*fileScopes{}
	for _, files := range perPkg {
		for _, f := range files {
			all = append(all, f)
			if f.mainScope != "" {
				if prev, ok := byScope[f.mainScope]; !ok || f.path < prev.path {
					byScope[f.mainScope] = f
				}
			}
			byPath[f.path] = f
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].path < all[j].path })

	best := map[string]Entry{}
	record := func(name string, f *fileScopes) {
		if name == "" {
			return
		}
		e := Entry{Name: name, Source: f.path, Package: f.pkg, Internal: f.hidden}
		prev, ok := best[name]
		if !ok || (prev.Internal && !e.Internal) {
			best[name] = e
		}
	}

	for _, f := range all {
		record(f.mainScope, f)
		for _, name := range f.defined {
			record(name, f)
		}
		for _, name := range resolveEmbeds(f, byScope, byPath) {
			record(name, f)
		}
	}

	snap.entries = make([]Entry, 0, len(best))
	for _, e := range best {
		snap.entries = append(snap.entries, e)
	}
	sort.Slice(snap.entries, func(i, j int) bool { return snap.entries[i].Name < snap.entries[j].Name })

	snap.syntaxes = make([]SyntaxFile, 0, len(all))
	for _, f := range all {
		snap.syntaxes = append(snap.syntaxes, SyntaxFile{
			Path:    f.path,
			Package: f.pkg,
			Scope:   f.mainScope,
			Name:    f.name,
			Hidden:  f.hidden,
		})
	}

	r.snap.Store(snap)
}

// resolveEmbeds returns the scopes contributed to f by the syntaxes it
// embeds or extends, transitively. A visited set keeps mutually embedding
// syntaxes from recursing forever.
func resolveEmbeds(f *fileScopes, byScope, byPath map[string]*fileScopes) []string {
	var out []string
	visited := map[string]bool{f.path: true}

	var visit func(g *fileScopes)
	visit = func(g *fileScopes) {
		if visited[g.path] {
			return
		}
		visited[g.path] = true
		if g.mainScope != "" {
			out = append(out, g.mainScope)
		}
		out = append(out, g.defined...)
		for _, ref := range g.refScopes {
			if t, ok := byScope[ref]; ok {
				visit(t)
			}
		}
		for _, ref := range g.refPaths {
			if t, ok := byPath[ref]; ok {
				visit(t)
			}
		}
	}

	for _, ref := range f.refScopes {
		if t, ok := byScope[ref]; ok {
			visit(t)
		}
	}
	for _, ref := range f.refPaths {
		if t, ok := byPath[ref]; ok {
			visit(t)
		}
	}
	return out
}

// Query returns the entries matching a partial scope name: prefix matches
// first, then substring matches, each group alphabetical. Matching is
// case sensitive. Internal entries only appear when the partial is a
// dotted prefix of their name.
func (r *Registry) Query(partial string) []Entry {
	snap := r.snap.Load()

	dotted := strings.Contains(partial, ".")
	var prefix, substr []Entry
	for _, e := range snap.entries {
		if e.Internal {
			if partial == "" || !dotted || !strings.HasPrefix(e.Name, partial) {
				continue
			}
			prefix = append(prefix, e)
			continue
		}
		switch {
		case partial == "" || strings.HasPrefix(e.Name, partial):
			prefix = append(prefix, e)
		case strings.Contains(e.Name, partial):
			substr = append(substr, e)
		}
	}
	return append(prefix, substr...)
}

// Lookup finds an exact scope name, internal ones included.
func (r *Registry) Lookup(name string) (Entry, bool) {
	snap := r.snap.Load()
	i := sort.Search(len(snap.entries), func(n int) bool { return snap.entries[n].Name >= name })
	if i < len(snap.entries) && snap.entries[i].Name == name {
		return snap.entries[i], true
	}
	return Entry{}, false
}

// Matching collects the entries that equal the atom or refine it with
// further dotted segments, in name order.
func (r *Registry) Matching(atom string) []Entry {
	if atom == "" {
		return nil
	}
	snap := r.snap.Load()
	var out []Entry
	i := sort.Search(len(snap.entries), func(n int) bool { return snap.entries[n].Name >= atom })
	for ; i < len(snap.entries) && strings.HasPrefix(snap.entries[i].Name, atom); i++ {
		name := snap.entries[i].Name
		if name == atom || name[len(atom)] == '.' {
			out = append(out, snap.entries[i])
		}
	}
	return out
}

// Entries returns every indexed scope entry in name order.
func (r *Registry) Entries() []Entry {
	snap := r.snap.Load()
	out := make([]Entry, len(snap.entries))
	copy(out, snap.entries)
	return out
}

// Covers reports whether some indexed scope equals the atom or refines it
// with further dotted segments. Internal scopes count here; validation
// treats hidden syntaxes as real.
func (r *Registry) Covers(atom string) bool {
	if atom == "" {
		return false
	}
	snap := r.snap.Load()
	i := sort.Search(len(snap.entries), func(n int) bool { return snap.entries[n].Name >= atom })
	for ; i < len(snap.entries) && strings.HasPrefix(snap.entries[i].Name, atom); i++ {
		name := snap.entries[i].Name
		if name == atom || name[len(atom)] == '.' {
			return true
		}
	}
	return false
}

// SyntaxFiles lists the indexed syntax definitions sorted by path.
func (r *Registry) SyntaxFiles() []SyntaxFile {
	return r.snap.Load().syntaxes
}

// Len reports the number of distinct scope names currently indexed.
func (r *Registry) Len() int {
	return len(r.snap.Load().entries)
}

// Packages lists the package names currently contributing entries.
func (r *Registry) Packages() []string {
	snap := r.snap.Load()
	pkgs := make([]string, 0, len(snap.perPkg))
	for pkg := range snap.perPkg {
		pkgs = append(pkgs, pkg)
	}
	sort.Strings(pkgs)
	return pkgs
}
