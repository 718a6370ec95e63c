package completion

import (
	"strings"

	"github.com/forkeith/PackageDev/pkg/dialect"
)

var (
	jsonEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	xmlEscaper  = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
)

// escapeInsert adapts insertion text to the string syntax at the cursor.
// Hosts replace the token span only, so quotes already surrounding the
// token stay in the document; the inserted content must not break them.
func escapeInsert(text string, ctx Context) string {
	switch ctx.Dialect.Family() {
	case dialect.FamilyJSON:
		return jsonEscaper.Replace(text)
	case dialect.FamilyPlist:
		return xmlEscaper.Replace(text)
	case dialect.FamilyYAML:
		return yamlEscape(text, ctx.Token.Quote)
	}
	return text
}

// yamlEscape matches the quoting style already open at the cursor. Bare
// scalars that would change meaning unquoted get single-quoted whole.
func yamlEscape(text string, quote byte) string {
	switch quote {
	case '\'':
		return strings.ReplaceAll(text, "'", "''")
	case '"':
		return jsonEscaper.Replace(text)
	}
	if needsYAMLQuote(text) {
		return "'" + strings.ReplaceAll(text, "'", "''") + "'"
	}
	return text
}

// needsYAMLQuote reports whether a plain scalar would parse differently
// unquoted: an indicator character in front, a comment or mapping break
// inside, or leading whitespace.
func needsYAMLQuote(s string) bool {
	if s == "" {
		return false
	}
	switch s[0] {
	case '!', '"', '#', '%', '&', '\'', '*', ',', '-', ':', '>', '?',
		'@', '[', ']', '`', '{', '|', '}', ' ', '\t':
		return true
	}
	return strings.HasSuffix(s, ":") ||
		strings.Contains(s, ": ") ||
		strings.Contains(s, " #")
}
