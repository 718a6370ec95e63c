// Package debug builds the console logger the CLI and LSP adapters
// share. Verbose levels add a caller field trimmed to package/file:line
// so log lines stay readable.
package debug

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Console returns a console-writer logger at the given level. Debug and
// trace levels include the calling site.
func Console(out io.Writer, level zerolog.Level) zerolog.Logger {
	writer := zerolog.ConsoleWriter{Out: out, FormatCaller: FormatCaller}
	ctx := zerolog.New(writer).Level(level).With().Timestamp()
	if level <= zerolog.DebugLevel {
		ctx = ctx.Caller()
	}
	return ctx.Logger()
}

// FormatCaller trims an absolute caller path down to its last two
// components, pkg/file.go:line.
func FormatCaller(i interface{}) string {
	s, ok := i.(string)
	if !ok || s == "" {
		return ""
	}
	file, line, hasLine := strings.Cut(s, ":")
	parts := strings.Split(filepath.ToSlash(file), "/")
	if len(parts) > 2 {
		parts = parts[len(parts)-2:]
	}
	out := strings.Join(parts, "/")
	if hasLine {
		out += ":" + line
	}
	return out + " >"
}
