// Package parser resolves structural context around a cursor in partially
// written configuration documents. It never parses a whole file on the
// completion path: JSON nesting comes from a balance scan anchored at the
// cursor, plists from element tag matching, and the YAML-like syntax
// dialect from indentation. Malformed input degrades to an ambiguous
// result instead of an error.
package parser

import (
	"fmt"
	"strings"

	"github.com/forkeith/PackageDev/pkg/dialect"
	"github.com/forkeith/PackageDev/pkg/position"
)

// Segment is one step of a structural path: a key into a mapping or an
// index into a sequence.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

func Key(name string) Segment {
	return Segment{Key: name}
}

func Index(i int) Segment {
	return Segment{Index: i, IsIndex: true}
}

func (s Segment) String() string {
	if s.IsIndex {
		return fmt.Sprintf("[%d]", s.Index)
	}
	return s.Key
}

// Path is the nesting from the document root down to the element holding
// the cursor. It is rebuilt per request and never mutated in place.
type Path []Segment

func (p Path) String() string {
	var b strings.Builder
	for i, seg := range p {
		if seg.IsIndex {
			fmt.Fprintf(&b, "[%d]", seg.Index)
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg.Key)
	}
	return b.String()
}

// Token is the partial token being typed at the cursor, with its raw
// delimiters and offsets. Created per request, discarded after.
type Token struct {
	// Text is the raw source substring from the token start to the cursor,
	// escapes not yet interpreted.
	Text string
	// Start is the byte offset where the token begins (after any opening
	// quote).
	Start int
	// Quote holds the opening quote byte when the cursor sits inside a
	// string literal, zero otherwise.
	Quote byte
	// InKey marks a cursor positioned where a mapping key belongs.
	InKey bool
	// InValue marks a cursor positioned inside or right after a value.
	InValue bool
	// ParenDepth counts unclosed parentheses inside the token text,
	// signaling a selector sub-expression.
	ParenDepth int
}

// Span returns the token as a position-anchored text span.
func (t Token) Span() position.RawPosition {
	return position.NewBasicPosition(t.Text, t.Start)
}

// Result carries everything the classifier needs about one cursor position.
type Result struct {
	Path  Path
	Token Token
	// SiblingKeys lists the keys already present in the container holding
	// the cursor, for non-repeatable key exclusion.
	SiblingKeys []string
	// Ambiguous is set when nesting could not be determined; completions
	// degrade to free text rather than guessing.
	Ambiguous bool
}

// Resolve computes the structural path and partial token for a cursor
// offset. The offset is clamped to the document; unknown dialects resolve
// as ambiguous.
func Resolve(text string, offset int, d dialect.Dialect) Result {
	offset = position.ClampOffset(text, offset)

	switch d.Family() {
	case dialect.FamilyJSON:
		return resolveJSON(text, offset)
	case dialect.FamilyYAML:
		return resolveYAML(text, offset)
	case dialect.FamilyPlist:
		return resolvePlist(text, offset)
	default:
		return Result{Ambiguous: true, Token: tokenAt(text, offset)}
	}
}

// tokenAt extracts a bare word token ending at offset, used when no
// structural information is available.
func tokenAt(text string, offset int) Token {
	start := offset
	for start > 0 && isWordByte(text[start-1]) {
		start--
	}
	return Token{Text: text[start:offset], Start: start}
}

func isWordByte(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '.', c == '_', c == '-', c == '+':
		return true
	}
	return false
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func countParens(s string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		}
	}
	return depth
}

// lineAround returns the start offset and content of the line containing
// offset, excluding the trailing newline.
func lineAround(text string, offset int) (int, string) {
	start := strings.LastIndexByte(text[:offset], '\n') + 1
	end := strings.IndexByte(text[offset:], '\n')
	if end < 0 {
		return start, text[start:]
	}
	return start, text[start : offset+end]
}
