package position

import (
	"fmt"
	"strings"

	"github.com/apparentlymart/go-textseg/v13/textseg"
)

type Place struct {
	Line      int
	Character int
}

type Range struct {
	Start Place
	End   Place
}

// RawPosition represents a span of text anchored at a byte offset in the
// source document.
type RawPosition struct {
	// Offset is the byte offset in the source text
	Offset int
	// Text is the actual text at this position
	Text string
}

func NewBasicPosition(text string, offset int) RawPosition {
	return RawPosition{Text: text, Offset: offset}
}

// Length returns the byte length of the text at this position
func (p RawPosition) Length() int {
	return len(p.Text)
}

func (p RawPosition) End() int {
	return p.Offset + len(p.Text)
}

func (p RawPosition) String() string {
	return fmt.Sprintf("%s@%d", p.Text, p.Offset)
}

func (p RawPosition) HasRangeOverlapWith(other RawPosition) bool {
	otherStart := other.Offset
	otherEnd := other.Offset + other.Length()

	start := p.Offset
	end := p.Offset + p.Length()

	// Zero-length spans overlap when they fall inside the other range.
	if p.Length() == 0 {
		return start >= otherStart && start <= otherEnd
	}
	if other.Length() == 0 {
		return otherStart >= start && otherStart <= end
	}

	return otherStart < end && otherEnd > start
}

// Contains reports whether the byte offset falls inside this span. A span
// also contains the offset immediately past its final byte, matching how a
// cursor sits at the end of the token being typed.
func (p RawPosition) Contains(offset int) bool {
	return offset >= p.Offset && offset <= p.End()
}

// GetLineAndColumn calculates the zero-based line and byte column for the
// span's start offset.
func (p RawPosition) GetLineAndColumn(text string) (line, col int) {
	if p.Offset <= 0 {
		return 0, 0
	}

	offset := p.Offset
	if offset > len(text) {
		offset = len(text)
	}

	lastNewline := -1
	for i := 0; i < offset; i++ {
		if text[i] == '\n' {
			line++
			lastNewline = i
		}
	}
	col = offset - lastNewline - 1

	return line, col
}

// GetRange converts the span to a zero-based line/character range against
// the full document text.
func (p RawPosition) GetRange(fileText string) Range {
	startLine, startCol := p.GetLineAndColumn(fileText)
	endLine, endCol := NewBasicPosition("", p.End()).GetLineAndColumn(fileText)
	return Range{
		Start: Place{Line: startLine, Character: startCol},
		End:   Place{Line: endLine, Character: endCol},
	}
}

// DisplayColumn returns the one-based column of the span's start in grapheme
// clusters rather than bytes, for human-facing output. Multi-byte and
// combining sequences count as a single column.
func (p RawPosition) DisplayColumn(text string) int {
	_, byteCol := p.GetLineAndColumn(text)
	lineStart := p.Offset - byteCol
	if lineStart < 0 || lineStart > len(text) {
		return byteCol + 1
	}

	segment := text[lineStart:min(p.Offset, len(text))]
	clusters, err := textseg.TokenCount([]byte(segment), textseg.ScanGraphemeClusters)
	if err != nil {
		return byteCol + 1
	}
	return clusters + 1
}

// ClampOffset bounds an offset to the valid range for text, stepping back
// off a UTF-8 continuation byte so the result is always a rune boundary.
func ClampOffset(text string, offset int) int {
	if offset < 0 {
		return 0
	}
	if offset > len(text) {
		return len(text)
	}
	for offset > 0 && offset < len(text) && text[offset]&0xC0 == 0x80 {
		offset--
	}
	return offset
}

// OffsetForPlace maps a zero-based line/character place back to a byte
// offset, clamping lines and columns that run past the document.
func OffsetForPlace(text string, place Place) int {
	if place.Line < 0 {
		return 0
	}
	offset := 0
	remaining := text
	for i := 0; i < place.Line; i++ {
		nl := strings.IndexByte(remaining, '\n')
		if nl < 0 {
			return ClampOffset(text, offset+len(remaining))
		}
		offset += nl + 1
		remaining = remaining[nl+1:]
	}
	lineLen := len(remaining)
	if nl := strings.IndexByte(remaining, '\n'); nl >= 0 {
		lineLen = nl
	}
	col := place.Character
	if col < 0 {
		col = 0
	}
	if col > lineLen {
		col = lineLen
	}
	return ClampOffset(text, offset+col)
}
