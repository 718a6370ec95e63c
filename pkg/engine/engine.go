// Package engine is the host boundary: a small facade over the
// completion, validation and hover pipeline, plus the scope index
// lifecycle. Requests are stateless; the registry snapshot they read is
// swapped atomically by the indexing side.
package engine

import (
	"context"
	"time"

	"github.com/forkeith/PackageDev/pkg/completion"
	"github.com/forkeith/PackageDev/pkg/diagnostic"
	"github.com/forkeith/PackageDev/pkg/dialect"
	"github.com/forkeith/PackageDev/pkg/hover"
	"github.com/forkeith/PackageDev/pkg/position"
	"github.com/forkeith/PackageDev/pkg/scopes"
	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// Engine bundles the scope registry with the request pipeline. A nil
// registry serves completions and diagnostics from static knowledge
// only.
type Engine struct {
	reg  *scopes.Registry
	opts completion.Options
}

func New(reg *scopes.Registry) *Engine {
	return NewWithOptions(reg, completion.DefaultOptions())
}

// NewWithOptions builds an engine with host-supplied completion tuning.
func NewWithOptions(reg *scopes.Registry, opts completion.Options) *Engine {
	return &Engine{reg: reg, opts: opts}
}

// Registry exposes the scope index for adapters that render it directly.
func (e *Engine) Registry() *scopes.Registry {
	return e.reg
}

// GetCompletions classifies the cursor and gathers ranked candidates.
// Offsets outside the document are clamped, never fatal.
func (e *Engine) GetCompletions(ctx context.Context, text string, offset int, d dialect.Dialect) ([]completion.Item, error) {
	if err := checkDialect(d); err != nil {
		return nil, err
	}
	log := requestLogger(ctx, "completions", d)
	start := time.Now()
	items := completion.CompleteWith(text, position.ClampOffset(text, offset), d, e.reg, e.opts)
	log.Debug().
		Int("items", len(items)).
		Dur("took", time.Since(start)).
		Msg("completion request served")
	return items, nil
}

// GetDiagnostics validates the whole document and returns findings
// ordered by position.
func (e *Engine) GetDiagnostics(ctx context.Context, text string, d dialect.Dialect) ([]diagnostic.Finding, error) {
	if err := checkDialect(d); err != nil {
		return nil, err
	}
	log := requestLogger(ctx, "diagnostics", d)
	start := time.Now()
	findings := diagnostic.Validate(text, d, e.reg)
	log.Debug().
		Int("findings", len(findings)).
		Dur("took", time.Since(start)).
		Msg("document validated")
	return findings, nil
}

// GetHover describes the token under the cursor, nil when there is
// nothing useful to show.
func (e *Engine) GetHover(ctx context.Context, text string, offset int, d dialect.Dialect) (*hover.Info, error) {
	if err := checkDialect(d); err != nil {
		return nil, err
	}
	log := requestLogger(ctx, "hover", d)
	info := hover.Hover(text, position.ClampOffset(text, offset), d, e.reg)
	log.Debug().Bool("hit", info != nil).Msg("hover request served")
	return info, nil
}

// OnPackageChanged applies a host-reported package event to the scope
// index. Removals drop the package; additions and updates rescan it.
func (e *Engine) OnPackageChanged(ctx context.Context, ev scopes.PackageEvent) error {
	if ev.Package == "" {
		return errors.New("package event without a package")
	}
	if e.reg == nil {
		return nil
	}
	log := zerolog.Ctx(ctx).With().
		Str("package", ev.Package).
		Str("action", string(ev.Action)).
		Int("files", len(ev.Files)).
		Logger()
	switch ev.Action {
	case scopes.PackageRemoved:
		e.reg.Invalidate(ev.Package)
		log.Debug().Msg("package dropped from scope index")
		return nil
	case scopes.PackageAdded, scopes.PackageUpdated:
		if err := e.reg.OnPackageChanged(log.WithContext(ctx), ev.Package); err != nil {
			return errors.Errorf("reindexing package %s: %w", ev.Package, err)
		}
		return nil
	default:
		return errors.Errorf("unrecognized package action %q", string(ev.Action))
	}
}

// checkDialect rejects host-contract misuse. Everything past this point
// degrades instead of failing.
func checkDialect(d dialect.Dialect) error {
	if d.Family() == dialect.FamilyUnknown {
		return errors.Errorf("unrecognized dialect %q", string(d))
	}
	return nil
}

func requestLogger(ctx context.Context, op string, d dialect.Dialect) zerolog.Logger {
	return zerolog.Ctx(ctx).With().
		Str("request_id", xid.New().String()).
		Str("op", op).
		Stringer("dialect", d).
		Logger()
}
