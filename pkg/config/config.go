// Package config loads adapter settings from config files and the
// environment. Values merge in precedence order: built-in defaults,
// then one optional file (YAML, JSON or TOML), then PACKAGEDEV_
// environment variables.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/forkeith/PackageDev/pkg/completion"
)

// EnvPrefix is stripped from environment variable names before they
// overlay file values: PACKAGEDEV_LOG_LEVEL sets log_level.
const EnvPrefix = "PACKAGEDEV_"

// Names are the file names probed, in order, when no explicit config
// path is given.
var Names = []string{
	"packagedev.yml", "packagedev.yaml", "packagedev.json", "packagedev.toml",
}

// Config is every tunable the adapters accept. Keys absent from the
// loaded sources keep their defaults, so a partial file is fine.
type Config struct {
	// PackagesRoots are the directories scanned for syntax definitions.
	PackagesRoots []string `koanf:"packages_roots"`
	// LogLevel is a zerolog level name: trace, debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// FuzzyDistance caps the edit distance for typo-tolerant completion
	// matching. Zero turns typo tolerance off.
	FuzzyDistance int `koanf:"fuzzy_distance"`
	// IncludeInternalScopes keeps scopes contributed by hidden syntaxes
	// in completion results.
	IncludeInternalScopes bool `koanf:"include_internal_scopes"`
}

// Default returns the configuration used when no file or environment
// override is present.
func Default() Config {
	return Config{
		PackagesRoots:         []string{"Packages"},
		LogLevel:              "info",
		FuzzyDistance:         2,
		IncludeInternalScopes: true,
	}
}

// Load reads the file at path, then overlays the environment. An empty
// path skips the file layer.
func Load(path string) (*Config, error) {
	k, err := base()
	if err != nil {
		return nil, err
	}
	if path != "" {
		parser, err := parserFor(strings.TrimPrefix(filepath.Ext(path), "."))
		if err != nil {
			return nil, err
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, errors.Errorf("loading config %s: %w", path, err)
		}
	}
	return finish(k)
}

// FromBytes parses an in-memory config document in the named format
// (yaml, json or toml), with the same defaults and environment overlay
// as Load. Hosts that receive their settings over a wire use this.
func FromBytes(data []byte, format string) (*Config, error) {
	k, err := base()
	if err != nil {
		return nil, err
	}
	parser, err := parserFor(format)
	if err != nil {
		return nil, err
	}
	if err := k.Load(rawbytes.Provider(data), parser); err != nil {
		return nil, errors.Errorf("parsing %s config: %w", format, err)
	}
	return finish(k)
}

// Discover probes the working directory, then the user config
// directory, for a file named in Names. It returns "" when none exists.
func Discover() string {
	dirs := []string{"."}
	if base, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, filepath.Join(base, "packagedev"))
	}
	for _, dir := range dirs {
		for _, name := range Names {
			path := filepath.Join(dir, name)
			if st, err := os.Stat(path); err == nil && !st.IsDir() {
				return path
			}
		}
	}
	return ""
}

// Level maps LogLevel onto a zerolog level, info when the name is empty
// or unknown.
func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// CompletionOptions converts the tunables the completion pipeline
// understands.
func (c *Config) CompletionOptions() completion.Options {
	return completion.Options{
		MaxFuzzyDistance: c.FuzzyDistance,
		IncludeInternal:  c.IncludeInternalScopes,
	}
}

func base() (*koanf.Koanf, error) {
	k := koanf.New(".")
	def := Default()
	err := k.Load(confmap.Provider(map[string]interface{}{
		"packages_roots":          def.PackagesRoots,
		"log_level":               def.LogLevel,
		"fuzzy_distance":          def.FuzzyDistance,
		"include_internal_scopes": def.IncludeInternalScopes,
	}, "."), nil)
	if err != nil {
		return nil, errors.Errorf("loading defaults: %w", err)
	}
	return k, nil
}

// finish overlays the environment, unmarshals and validates.
func finish(k *koanf.Koanf) (*Config, error) {
	err := k.Load(env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, interface{}) {
		name := strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
		if name == "packages_roots" {
			return name, splitList(value)
		}
		return name, value
	}), nil)
	if err != nil {
		return nil, errors.Errorf("reading environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if len(c.PackagesRoots) == 0 {
		return errors.New("config needs at least one packages root")
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return errors.Errorf("bad log_level %q: %w", c.LogLevel, err)
	}
	if c.FuzzyDistance < 0 {
		return errors.Errorf("fuzzy_distance must not be negative, got %d", c.FuzzyDistance)
	}
	return nil
}

func parserFor(format string) (koanf.Parser, error) {
	switch strings.ToLower(format) {
	case "yaml", "yml":
		return yaml.Parser(), nil
	case "json":
		return json.Parser(), nil
	case "toml":
		return toml.Parser(), nil
	default:
		return nil, errors.Errorf("unsupported config format %q", format)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
