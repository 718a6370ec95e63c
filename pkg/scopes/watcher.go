package scopes

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

const watchDebounce = 500 * time.Millisecond

// Watcher keeps the registry current while packages are edited on disk.
// Events are debounced per package, so a burst of saves coalesces into a
// single rescan of that package.
type Watcher struct {
	registry *Registry
	fw       *fsnotify.Watcher

	mu      sync.Mutex
	timers  map[string]*time.Timer
	closing bool
}

// Watch registers every directory under the registry roots. fsnotify does
// not recurse, so directories created later are added as their create
// events arrive.
func (r *Registry) Watch(ctx context.Context) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Errorf("creating filesystem watcher: %w", err)
	}

	w := &Watcher{registry: r, fw: fw, timers: map[string]*time.Timer{}}
	for _, root := range r.roots {
		err := afero.Walk(r.fs, root, func(path string, info os.FileInfo, err error) error {
			if err != nil || !info.IsDir() {
				return nil
			}
			return fw.Add(path)
		})
		if err != nil {
			fw.Close()
			return nil, errors.Errorf("watching %s: %w", root, err)
		}
	}

	go w.loop(ctx)
	return w, nil
}

func (w *Watcher) loop(ctx context.Context) {
	log := zerolog.Ctx(ctx)
	for {
		select {
		case <-ctx.Done():
			w.Close()
			return
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if ev.Op&fsnotify.Create != 0 {
				if isDir, _ := afero.IsDir(w.registry.fs, ev.Name); isDir {
					if err := w.fw.Add(ev.Name); err != nil {
						log.Warn().Err(err).Str("dir", ev.Name).Msg("cannot watch new directory")
					}
					continue
				}
			}
			if !isSyntaxPath(ev.Name) && !strings.HasSuffix(ev.Name, packageExt) {
				continue
			}
			pkg, ok := w.packageFor(ev.Name)
			if !ok {
				continue
			}
			w.schedule(ctx, pkg)
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("filesystem watcher error")
		}
	}
}

func isSyntaxPath(name string) bool {
	return strings.HasSuffix(name, ".sublime-syntax") ||
		strings.HasSuffix(name, ".tmLanguage") ||
		strings.HasSuffix(name, ".hidden-tmLanguage")
}

func (w *Watcher) packageFor(name string) (string, bool) {
	for _, root := range w.registry.roots {
		rel, err := filepath.Rel(root, name)
		if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
			continue
		}
		rel = filepath.ToSlash(rel)
		if i := strings.IndexByte(rel, '/'); i >= 0 {
			return rel[:i], true
		}
		if strings.HasSuffix(rel, packageExt) {
			return strings.TrimSuffix(rel, packageExt), true
		}
	}
	return "", false
}

func (w *Watcher) schedule(ctx context.Context, pkg string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closing {
		return
	}
	if t, ok := w.timers[pkg]; ok {
		t.Stop()
	}
	w.timers[pkg] = time.AfterFunc(watchDebounce, func() {
		if err := w.registry.OnPackageChanged(ctx, pkg); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("package", pkg).Msg("package rescan reported problems")
		}
	})
}

// Close stops pending rescans and the underlying filesystem watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	w.closing = true
	for _, t := range w.timers {
		t.Stop()
	}
	w.mu.Unlock()
	return w.fw.Close()
}
