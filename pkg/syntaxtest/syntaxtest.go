// Package syntaxtest parses syntax test files: a first-line header naming
// the syntax under test and assertion lines marking columns whose scopes
// must match a selector. Parsing is line based and never fails; malformed
// lines simply do not produce assertions.
package syntaxtest

import (
	"regexp"
	"strings"

	"github.com/forkeith/PackageDev/pkg/position"
)

// Header is the parsed first line of a test file:
//
//	<token> SYNTAX TEST "<syntax file>" [<end token>]
//
// The token opens every assertion line; the optional end token closes them
// so tests can live inside block comments.
type Header struct {
	CommentToken string
	SyntaxPath   string
	EndToken     string
	// PathStart is the byte offset of SyntaxPath inside the document.
	PathStart int
}

// Assertion is one scope assertion. ColBegin and ColEnd are the byte
// columns the carets cover on the tested line, end exclusive. The first
// column form (<-) tests the column the comment token starts in and has
// ColEnd equal to ColBegin.
type Assertion struct {
	Line     int
	ColBegin int
	ColEnd   int
	Arrow    bool
	// Selector is the scope selector text after the marker, with any
	// closing end token stripped. SelectorStart is its byte offset in the
	// document.
	Selector      string
	SelectorStart int
}

// File is the parsed view of a whole test document.
type File struct {
	Header     Header
	HasHeader  bool
	Assertions []Assertion
}

// Header lines longer than this never match; checking them would be wasted
// work on minified or binary-ish first lines.
const maxHeaderLen = 1000

var (
	headerRe     = regexp.MustCompile(`^(\S+)\s+SYNTAX TEST\s+"([^"]+)"\s*(\S+)?$`)
	headerOpenRe = regexp.MustCompile(`^(\S+)\s+SYNTAX TEST\s+"`)
	markerRe     = regexp.MustCompile(`^\s*(?:(<-)|(\^+))`)
)

// ParseHeader reads the test header from the first line. ok is false when
// the document does not start with one.
func ParseHeader(text string) (Header, bool) {
	line := firstLine(text)
	if len(line) >= maxHeaderLen {
		return Header{}, false
	}
	m := headerRe.FindStringSubmatchIndex(line)
	if m == nil {
		return Header{}, false
	}
	h := Header{
		CommentToken: line[m[2]:m[3]],
		SyntaxPath:   line[m[4]:m[5]],
		PathStart:    m[4],
	}
	if m[6] >= 0 {
		h.EndToken = line[m[6]:m[7]]
	}
	return h, true
}

// Detect reports whether the document carries a test header. File name
// conventions are handled by dialect.FromPath; this is the fallback for
// unsaved buffers.
func Detect(text string) bool {
	_, ok := ParseHeader(text)
	return ok
}

// Parse reads the header and every assertion line.
func Parse(text string) File {
	f := File{}
	h, ok := ParseHeader(text)
	if !ok {
		return f
	}
	f.Header = h
	f.HasHeader = true

	lineStart := 0
	lineNo := 0
	for lineStart <= len(text) {
		lineEnd := strings.IndexByte(text[lineStart:], '\n')
		var line string
		if lineEnd < 0 {
			line = text[lineStart:]
			lineEnd = len(text)
		} else {
			line = text[lineStart : lineStart+lineEnd]
			lineEnd += lineStart
		}
		if lineNo > 0 {
			if a, ok := parseAssertion(line, lineStart, lineNo, h); ok {
				f.Assertions = append(f.Assertions, a)
			}
		}
		lineNo++
		lineStart = lineEnd + 1
	}
	return f
}

// parseAssertion interprets one line as an assertion: optional indent, the
// comment token, optional whitespace, then <- or a caret run, then the
// selector.
func parseAssertion(line string, lineStart, lineNo int, h Header) (Assertion, bool) {
	indent := len(line) - len(strings.TrimLeft(line, " \t"))
	rest := line[indent:]
	if !strings.HasPrefix(rest, h.CommentToken) {
		return Assertion{}, false
	}
	afterToken := indent + len(h.CommentToken)

	m := markerRe.FindStringSubmatchIndex(line[afterToken:])
	if m == nil {
		return Assertion{}, false
	}

	a := Assertion{Line: lineNo}
	var markerEnd int
	if m[2] >= 0 {
		a.Arrow = true
		a.ColBegin = indent
		a.ColEnd = indent
		markerEnd = afterToken + m[3]
	} else {
		a.ColBegin = afterToken + m[4]
		a.ColEnd = afterToken + m[5]
		markerEnd = afterToken + m[5]
	}

	sel := line[markerEnd:]
	selStart := markerEnd + (len(sel) - len(strings.TrimLeft(sel, " \t")))
	sel = strings.TrimSpace(sel)
	if h.EndToken != "" && strings.HasSuffix(sel, h.EndToken) {
		sel = strings.TrimRight(sel[:len(sel)-len(h.EndToken)], " \t")
	}
	a.Selector = sel
	a.SelectorStart = lineStart + selStart
	return a, true
}

// SpotKind classifies a cursor position for completion.
type SpotKind int

const (
	SpotNone SpotKind = iota
	// SpotPath is inside the header's quoted syntax file path.
	SpotPath
	// SpotSelector is in the selector text of an assertion line.
	SpotSelector
)

// Spot is the completable region under the cursor: the text from Start up
// to the cursor.
type Spot struct {
	Kind  SpotKind
	Start int
	Text  string
}

// At classifies the cursor for completion. The header path spot tolerates
// a still-unclosed quote so the path completes while being typed.
func At(text string, offset int) Spot {
	offset = position.ClampOffset(text, offset)
	lineStart := strings.LastIndexByte(text[:offset], '\n') + 1

	if lineStart == 0 {
		return headerSpot(text, offset)
	}

	h, ok := ParseHeader(text)
	if !ok {
		return Spot{}
	}
	_, line := lineAt(text, lineStart)
	a, ok := parseAssertion(line, lineStart, 1, h)
	if !ok || offset < a.SelectorStart {
		return Spot{}
	}
	return Spot{Kind: SpotSelector, Start: a.SelectorStart, Text: text[a.SelectorStart:offset]}
}

func headerSpot(text string, offset int) Spot {
	line := firstLine(text)
	m := headerOpenRe.FindStringIndex(line)
	if m == nil {
		return Spot{}
	}
	open := m[1] - 1
	if offset <= open {
		return Spot{}
	}
	if close := strings.IndexByte(line[open+1:], '"'); close >= 0 && offset > open+1+close {
		return Spot{}
	}
	return Spot{Kind: SpotPath, Start: open + 1, Text: text[open+1 : offset]}
}

func firstLine(text string) string {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		return text[:i]
	}
	return text
}

func lineAt(text string, lineStart int) (int, string) {
	end := strings.IndexByte(text[lineStart:], '\n')
	if end < 0 {
		return lineStart, text[lineStart:]
	}
	return lineStart, text[lineStart : lineStart+end]
}
