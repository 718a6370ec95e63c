package parser

import (
	"sort"
	"strings"
)

// The JSON family covers color schemes, settings, builds, and keymaps.
// These files allow comments and trailing commas, and while being typed
// they are routinely unbalanced, so nesting is recovered by a balance scan
// walking backward from the cursor instead of a document parse.

type stringSpan struct {
	open   int // offset of the opening quote
	close  int // offset of the closing quote, or of the byte ending the content when unterminated
	closed bool
}

type jsonDoc struct {
	text     string
	strs     []stringSpan
	comments [][2]int
}

// scanJSONDoc performs the single flat pass that classifies string and
// comment regions. No structure is recovered here; unterminated strings
// end at the line break.
func scanJSONDoc(text string) *jsonDoc {
	doc := &jsonDoc{text: text}

	inStr := false
	escaped := false
	openPos := 0
	for i := 0; i < len(text); i++ {
		c := text[i]
		if inStr {
			if escaped {
				escaped = false
				continue
			}
			switch c {
			case '\\':
				escaped = true
			case '"':
				doc.strs = append(doc.strs, stringSpan{open: openPos, close: i, closed: true})
				inStr = false
			case '\n':
				doc.strs = append(doc.strs, stringSpan{open: openPos, close: i, closed: false})
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
			openPos = i
		case '/':
			if i+1 >= len(text) {
				break
			}
			switch text[i+1] {
			case '/':
				end := strings.IndexByte(text[i:], '\n')
				if end < 0 {
					doc.comments = append(doc.comments, [2]int{i, len(text)})
					return doc
				}
				doc.comments = append(doc.comments, [2]int{i, i + end})
				i += end - 1
			case '*':
				end := strings.Index(text[i+2:], "*/")
				if end < 0 {
					doc.comments = append(doc.comments, [2]int{i, len(text)})
					return doc
				}
				doc.comments = append(doc.comments, [2]int{i, i + 2 + end + 2})
				i += 2 + end + 1
			}
		}
	}
	if inStr {
		doc.strs = append(doc.strs, stringSpan{open: openPos, close: len(text), closed: false})
	}
	return doc
}

func (d *jsonDoc) inner(s stringSpan) string {
	return d.text[s.open+1 : s.close]
}

// stringAt returns the span whose quotes or content cover byte i.
func (d *jsonDoc) stringAt(i int) (stringSpan, bool) {
	idx := sort.Search(len(d.strs), func(n int) bool { return d.strs[n].close >= i })
	if idx < len(d.strs) && d.strs[idx].open <= i {
		return d.strs[idx], true
	}
	return stringSpan{}, false
}

// cursorString returns the span whose content holds the cursor. Sitting on
// the opening quote itself does not count; sitting right before the
// closing quote does.
func (d *jsonDoc) cursorString(offset int) (stringSpan, bool) {
	idx := sort.Search(len(d.strs), func(n int) bool { return d.strs[n].close >= offset })
	if idx < len(d.strs) {
		s := d.strs[idx]
		if s.open < offset && offset <= s.close {
			return s, true
		}
	}
	return stringSpan{}, false
}

func (d *jsonDoc) commentAt(i int) ([2]int, bool) {
	for _, c := range d.comments {
		if i >= c[0] && i < c[1] {
			return c, true
		}
		if c[0] > i {
			break
		}
	}
	return [2]int{}, false
}

// prevSignificant finds the last structural byte before pos, skipping
// whitespace, comments, and whole strings. The second return is the
// position of that byte, -1 at document start. A string is reported as '"'
// positioned at its opening quote.
func (d *jsonDoc) prevSignificant(pos int) (byte, int) {
	i := pos - 1
	for i >= 0 {
		if c, ok := d.commentAt(i); ok {
			i = c[0] - 1
			continue
		}
		if s, ok := d.stringAt(i); ok {
			return '"', s.open
		}
		c := d.text[i]
		if isSpace(c) {
			i--
			continue
		}
		return c, i
	}
	return 0, -1
}

// keyEndingAt reads the `"key"` string whose closing quote is the last
// significant byte before pos.
func (d *jsonDoc) keyEndingAt(pos int) (stringSpan, bool) {
	c, at := d.prevSignificant(pos)
	if c != '"' {
		return stringSpan{}, false
	}
	s, ok := d.stringAt(at)
	if !ok || !s.closed {
		return stringSpan{}, false
	}
	return s, true
}

// keyBeforeOpener reads the `"key":` member introduction preceding the
// container opened at pos.
func (d *jsonDoc) keyBeforeOpener(pos int) (stringSpan, bool) {
	c, at := d.prevSignificant(pos)
	if c != ':' {
		return stringSpan{}, false
	}
	return d.keyEndingAt(at)
}

// keyForColon checks whether the span is followed by a colon, marking it
// as a member key rather than a value.
func (d *jsonDoc) keyForColon(s stringSpan) bool {
	if !s.closed {
		return false
	}
	i := s.close + 1
	for i < len(d.text) {
		if c, ok := d.commentAt(i); ok {
			i = c[1]
			continue
		}
		c := d.text[i]
		if isSpace(c) {
			i++
			continue
		}
		return c == ':'
	}
	return false
}

func resolveJSON(text string, offset int) Result {
	doc := scanJSONDoc(text)

	if offset > 0 {
		if _, ok := doc.commentAt(offset - 1); ok {
			return Result{Ambiguous: true, Token: tokenAt(text, offset)}
		}
	}

	var token Token
	anchor := offset
	if s, ok := doc.cursorString(offset); ok {
		token = Token{
			Text:  text[s.open+1 : offset],
			Start: s.open + 1,
			Quote: text[s.open],
		}
		anchor = s.open
	} else {
		token = tokenAt(text, offset)
		anchor = token.Start
	}
	token.ParenDepth = countParens(token.Text)

	// Classify the slot the token occupies from the byte before it.
	prev, prevAt := doc.prevSignificant(anchor)
	var memberKey Path
	startCommas := 0
	sawComma := false
	switch prev {
	case ':':
		token.InValue = true
		if key, ok := doc.keyEndingAt(prevAt); ok {
			memberKey = Path{Key(doc.inner(key))}
			anchor = key.open
		} else {
			anchor = prevAt
		}
	case ',':
		// Key or array element, settled once the container is known. The
		// consumed separator counts toward the element index.
		sawComma = true
		startCommas = 1
		anchor = prevAt
	case '{':
		token.InKey = true
		anchor = prevAt + 1
	case '[':
		token.InValue = true
		anchor = prevAt + 1
	case '"':
		// Between a closed string and whatever follows; nothing useful
		// to complete here.
		return Result{Ambiguous: true, Token: token}
	case 0:
		// Document root.
		token.InValue = true
		return Result{Token: token}
	default:
		return Result{Ambiguous: true, Token: token}
	}

	segs, siblings, ok := doc.ancestors(anchor, startCommas)
	if !ok {
		return Result{Ambiguous: true, Token: token}
	}

	if sawComma {
		if len(segs) > 0 && segs[len(segs)-1].IsIndex {
			token.InValue = true
		} else {
			token.InKey = true
		}
	}

	full := append(Path{}, segs...)
	full = append(full, memberKey...)

	if token.InKey {
		siblings = append(siblings, doc.siblingsAfter(offset)...)
	} else {
		siblings = nil
	}

	return Result{Path: full, Token: token, SiblingKeys: siblings}
}

// ancestors walks backward from pos to the document start, emitting one
// segment per unmatched opening bracket. Balanced bracket pairs and whole
// strings are skipped, so trailing damage after the cursor never affects
// the result. Member keys seen at the innermost level are collected for
// sibling exclusion.
func (d *jsonDoc) ancestors(pos, startCommas int) ([]Segment, []string, bool) {
	var reversed []Segment
	var siblings []string

	depth := 0
	commas := startCommas
	innermost := true

	i := pos - 1
	for i >= 0 {
		if c, ok := d.commentAt(i); ok {
			i = c[0] - 1
			continue
		}
		if s, ok := d.stringAt(i); ok {
			if innermost && depth == 0 && d.keyForColon(s) {
				siblings = append(siblings, d.inner(s))
			}
			i = s.open - 1
			continue
		}

		switch c := d.text[i]; c {
		case '}', ']':
			depth++
		case '{', '[':
			if depth > 0 {
				depth--
				break
			}
			if c == '[' {
				reversed = append(reversed, Index(commas))
			}
			commas = 0
			innermost = false
			if key, ok := d.keyBeforeOpener(i); ok {
				reversed = append(reversed, Key(d.inner(key)))
				i = key.open
			}
		case ',':
			if depth == 0 {
				commas++
			}
		}
		i--
	}

	if depth > 0 {
		// More closers than openers before the cursor: the scan cannot
		// name a consistent nesting.
		return nil, nil, false
	}

	segs := make([]Segment, 0, len(reversed))
	for j := len(reversed) - 1; j >= 0; j-- {
		segs = append(segs, reversed[j])
	}
	return segs, siblings, true
}

// siblingsAfter collects the member keys between the cursor and the end of
// its container, so already-present keys are excluded even when they sit
// below the cursor.
func (d *jsonDoc) siblingsAfter(offset int) []string {
	var keys []string
	depth := 0

	i := offset
	for i < len(d.text) {
		if c, ok := d.commentAt(i); ok {
			i = c[1]
			continue
		}
		if s, ok := d.stringAt(i); ok {
			if depth == 0 && s.open >= offset && d.keyForColon(s) {
				keys = append(keys, d.inner(s))
			}
			i = s.close + 1
			continue
		}
		switch d.text[i] {
		case '{', '[':
			depth++
		case '}', ']':
			if depth == 0 {
				return keys
			}
			depth--
		}
		i++
	}
	return keys
}
