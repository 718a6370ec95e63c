// Package dialect enumerates the document dialects the engine understands
// and infers them from file names.
package dialect

import (
	"path"
	"strings"
)

type Dialect string

const (
	Unknown       Dialect = ""
	SublimeSyntax Dialect = "sublime-syntax"
	TmLanguage    Dialect = "tmLanguage"
	ColorScheme   Dialect = "sublime-color-scheme"
	TmTheme       Dialect = "tmTheme"
	Settings      Dialect = "sublime-settings"
	Build         Dialect = "sublime-build"
	Keymap        Dialect = "sublime-keymap"
	Snippet       Dialect = "sublime-snippet"
	SyntaxTest    Dialect = "syntax-test"
)

// Family groups dialects by their underlying document format, which decides
// how structural context is resolved around a cursor.
type Family int

const (
	FamilyUnknown Family = iota
	FamilyJSON
	FamilyPlist
	FamilyYAML
	FamilyPlain
)

func (d Dialect) String() string {
	if d == Unknown {
		return "unknown"
	}
	return string(d)
}

func (d Dialect) Family() Family {
	switch d {
	case ColorScheme, Settings, Build, Keymap:
		return FamilyJSON
	case TmLanguage, TmTheme, Snippet:
		return FamilyPlist
	case SublimeSyntax:
		return FamilyYAML
	case SyntaxTest:
		return FamilyPlain
	default:
		return FamilyUnknown
	}
}

// UsesScopeRegistry reports whether completions in this dialect ever draw on
// indexed scope names.
func (d Dialect) UsesScopeRegistry() bool {
	switch d {
	case SublimeSyntax, TmLanguage, ColorScheme, TmTheme, Keymap, Build, Snippet, SyntaxTest:
		return true
	default:
		return false
	}
}

var byExtension = map[string]Dialect{
	".sublime-syntax":       SublimeSyntax,
	".tmLanguage":           TmLanguage,
	".hidden-tmLanguage":    TmLanguage,
	".sublime-color-scheme": ColorScheme,
	".hidden-color-scheme":  ColorScheme,
	".tmTheme":              TmTheme,
	".hidden-tmTheme":       TmTheme,
	".sublime-settings":     Settings,
	".sublime-build":        Build,
	".sublime-keymap":       Keymap,
	".sublime-snippet":      Snippet,
}

// FromPath infers the dialect for a file path. Syntax test files are named
// by prefix rather than extension and win over any extension match.
func FromPath(p string) Dialect {
	base := path.Base(strings.ReplaceAll(p, "\\", "/"))
	if strings.HasPrefix(base, "syntax_test_") {
		return SyntaxTest
	}
	lower := strings.ToLower(base)
	for ext, d := range byExtension {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return d
		}
	}
	return Unknown
}

// Parse resolves a user-supplied dialect name, accepting both the canonical
// names and bare file extensions.
func Parse(name string) Dialect {
	name = strings.TrimPrefix(strings.TrimSpace(name), ".")
	switch strings.ToLower(name) {
	case "sublime-syntax":
		return SublimeSyntax
	case "tmlanguage", "hidden-tmlanguage":
		return TmLanguage
	case "sublime-color-scheme", "hidden-color-scheme", "color-scheme":
		return ColorScheme
	case "tmtheme", "hidden-tmtheme":
		return TmTheme
	case "sublime-settings", "settings":
		return Settings
	case "sublime-build", "build":
		return Build
	case "sublime-keymap", "keymap":
		return Keymap
	case "sublime-snippet", "snippet":
		return Snippet
	case "syntax-test", "syntax_test":
		return SyntaxTest
	default:
		return Unknown
	}
}

// All lists every known dialect in a stable order.
func All() []Dialect {
	return []Dialect{
		SublimeSyntax,
		TmLanguage,
		ColorScheme,
		TmTheme,
		Settings,
		Build,
		Keymap,
		Snippet,
		SyntaxTest,
	}
}
