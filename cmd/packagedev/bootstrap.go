package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"

	"github.com/forkeith/PackageDev/pkg/config"
	"github.com/forkeith/PackageDev/pkg/debug"
	"github.com/forkeith/PackageDev/pkg/dialect"
	"github.com/forkeith/PackageDev/pkg/engine"
	"github.com/forkeith/PackageDev/pkg/scopes"
)

type rootFlags struct {
	configPath string
	logLevel   string
	jsonOut    bool
}

// loadConfig reads the configured or discovered config file and applies
// command-line overrides.
func (f *rootFlags) loadConfig() (*config.Config, error) {
	path := f.configPath
	if path == "" {
		path = config.Discover()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
	return cfg, nil
}

// logger writes to stderr so command output and the LSP wire keep
// stdout to themselves.
func (f *rootFlags) logger(cfg *config.Config) zerolog.Logger {
	return debug.Console(os.Stderr, cfg.Level())
}

// buildEngine indexes the configured package roots and wires the
// engine. Roots that do not exist are skipped, so the static knowledge
// still works outside a Sublime installation.
func buildEngine(ctx context.Context, cfg *config.Config) (*engine.Engine, error) {
	fs := afero.NewOsFs()
	var roots []string
	for _, root := range cfg.PackagesRoots {
		if ok, _ := afero.DirExists(fs, root); ok {
			roots = append(roots, root)
		}
	}
	if len(roots) == 0 {
		zerolog.Ctx(ctx).Debug().Strs("configured", cfg.PackagesRoots).
			Msg("no package roots exist, serving without a scope index")
		return engine.NewWithOptions(nil, cfg.CompletionOptions()), nil
	}

	reg := scopes.NewRegistry(fs, roots)
	if err := reg.Index(ctx); err != nil {
		// Index still publishes whatever parsed. Only a root that yielded
		// nothing at all is fatal.
		if reg.Len() == 0 {
			return nil, errors.Errorf("indexing packages: %w", err)
		}
		zerolog.Ctx(ctx).Warn().Err(err).Msg("some package files failed to index")
	}
	zerolog.Ctx(ctx).Debug().Strs("roots", roots).Int("scopes", reg.Len()).
		Msg("package roots indexed")
	return engine.NewWithOptions(reg, cfg.CompletionOptions()), nil
}

// readDocument loads a file and infers its dialect, which --dialect
// overrides.
func readDocument(path, dialectName string) (string, dialect.Dialect, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", dialect.Unknown, errors.Errorf("reading %s: %w", path, err)
	}
	d := dialect.FromPath(path)
	if dialectName != "" {
		d = dialect.Parse(dialectName)
	}
	if d == dialect.Unknown {
		return "", dialect.Unknown, errors.Errorf("cannot infer a dialect for %s, pass --dialect", path)
	}
	return string(data), d, nil
}
