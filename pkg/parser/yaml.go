package parser

import "strings"

// YAML resolution is line-oriented. Block structure is recovered from
// indentation and dash markers on the lines above the cursor, which stays
// stable no matter how damaged the text after the cursor is. Flow
// collections are only considered on the cursor's own line.

type yamlFrame struct {
	indent int
	isList bool
	index  int
	key    string
	keys   []string
}

type yamlStack []*yamlFrame

func (s yamlStack) top() *yamlFrame {
	if len(s) == 0 {
		return nil
	}
	return s[len(s)-1]
}

func (s *yamlStack) pop() {
	*s = (*s)[:len(*s)-1]
}

func (s *yamlStack) popDeeper(col int) {
	for t := s.top(); t != nil && t.indent > col; t = s.top() {
		s.pop()
	}
}

// enterDash records a `- ` marker at the given column: either the next
// element of the list already open there or a fresh nested list.
func (s *yamlStack) enterDash(col int) {
	s.popDeeper(col)
	if t := s.top(); t != nil && t.isList && t.indent == col {
		t.index++
		return
	}
	*s = append(*s, &yamlFrame{indent: col, isList: true})
}

// enterKey records a `key:` line at the given column. A key at a list's
// own column ends that list.
func (s *yamlStack) enterKey(col int, key string) {
	s.popDeeper(col)
	for t := s.top(); t != nil && t.isList && t.indent == col; t = s.top() {
		s.pop()
	}
	if t := s.top(); t != nil && !t.isList && t.indent == col {
		t.key = key
		t.keys = append(t.keys, key)
		return
	}
	*s = append(*s, &yamlFrame{indent: col, key: key, keys: []string{key}})
}

func (s yamlStack) path() Path {
	p := make(Path, 0, len(s))
	for _, f := range s {
		if f.isList {
			p = append(p, Index(f.index))
		} else {
			p = append(p, Key(f.key))
		}
	}
	return p
}

// yamlLine splits a raw line into dash marker columns and the remaining
// content. contentCol is the column where content begins, after
// indentation and dash markers.
func yamlLine(line string) (dashCols []int, content string, contentCol int) {
	col := 0
	for col < len(line) && (line[col] == ' ' || line[col] == '\t') {
		col++
	}
	for col < len(line) && line[col] == '-' {
		if col+1 < len(line) && line[col+1] != ' ' && line[col+1] != '\t' {
			break
		}
		dashCols = append(dashCols, col)
		col++
		for col < len(line) && (line[col] == ' ' || line[col] == '\t') {
			col++
		}
	}
	return dashCols, line[col:], col
}

// stripComment cuts an end-of-line comment from content, honoring quoted
// regions. The second return is the column of the '#' relative to content
// start, -1 when there is none.
func stripComment(content string) (string, int) {
	var quote byte
	for i := 0; i < len(content); i++ {
		c := content[i]
		if quote != 0 {
			if c == quote {
				if quote == '\'' && i+1 < len(content) && content[i+1] == '\'' {
					i++
					continue
				}
				quote = 0
			}
			continue
		}
		switch {
		case c == '"' || c == '\'':
			quote = c
		case c == '#' && (i == 0 || content[i-1] == ' ' || content[i-1] == '\t'):
			end := i
			for end > 0 && (content[end-1] == ' ' || content[end-1] == '\t') {
				end--
			}
			return content[:end], i
		}
	}
	return content, -1
}

// splitKey recognizes a leading `key:` in content, unwrapping quoted keys.
// restCol is the column of the value relative to content start.
func splitKey(content string) (key, rest string, restCol int, ok bool) {
	if content == "" {
		return "", "", 0, false
	}
	i := 0
	if content[0] == '"' || content[0] == '\'' {
		q := content[0]
		i = 1
		for i < len(content) && content[i] != q {
			if q == '"' && content[i] == '\\' {
				i++
			}
			i++
		}
		if i >= len(content) {
			return "", "", 0, false
		}
		key = content[1:i]
		i++
	} else {
		for i < len(content) && content[i] != ':' {
			i++
		}
		key = strings.TrimRight(content[:i], " \t")
	}
	for i < len(content) && content[i] == ' ' {
		i++
	}
	if i >= len(content) || content[i] != ':' {
		return "", "", 0, false
	}
	i++
	if i < len(content) && content[i] != ' ' && content[i] != '\t' {
		return "", "", 0, false
	}
	for i < len(content) && (content[i] == ' ' || content[i] == '\t') {
		i++
	}
	return key, content[i:], i, true
}

// isBlockScalar reports whether a value introduces a literal or folded
// block (`|`, `>`, with optional chomping and indentation modifiers).
func isBlockScalar(rest string) bool {
	if rest == "" || (rest[0] != '|' && rest[0] != '>') {
		return false
	}
	for i := 1; i < len(rest); i++ {
		c := rest[i]
		if c != '-' && c != '+' && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

func resolveYAML(text string, offset int) Result {
	curStart, curLine := lineAround(text, offset)
	cursorCol := offset - curStart

	var stack yamlStack
	blockIndent := -1

	lineStart := 0
	for lineStart < curStart {
		end := strings.IndexByte(text[lineStart:], '\n')
		line := text[lineStart : lineStart+end]
		lineStart += end + 1

		dashCols, content, contentCol := yamlLine(line)
		content, _ = stripComment(content)
		if content == "" && len(dashCols) == 0 {
			continue
		}
		lineIndent := contentCol
		if len(dashCols) > 0 {
			lineIndent = dashCols[0]
		}
		if blockIndent >= 0 {
			if lineIndent > blockIndent {
				continue
			}
			blockIndent = -1
		}
		if len(dashCols) == 0 {
			if content[0] == '%' {
				continue
			}
			if content == "---" || content == "..." {
				stack = stack[:0]
				continue
			}
		}
		for _, c := range dashCols {
			stack.enterDash(c)
		}
		if key, rest, _, ok := splitKey(content); ok {
			stack.enterKey(contentCol, key)
			if isBlockScalar(rest) {
				blockIndent = contentCol
			}
		}
	}

	dashCols, content, contentCol := yamlLine(curLine)
	blank := content == "" && len(dashCols) == 0 && strings.TrimRight(curLine, " \t") == ""
	lineIndent := contentCol
	if blank {
		lineIndent = cursorCol
	} else if len(dashCols) > 0 {
		lineIndent = dashCols[0]
	}
	if blockIndent >= 0 {
		if lineIndent > blockIndent {
			return Result{Ambiguous: true, Token: tokenAt(text, offset)}
		}
	}

	content, commentCol := stripComment(content)
	if commentCol >= 0 && offset > curStart+contentCol+commentCol {
		return Result{Ambiguous: true, Token: tokenAt(text, offset)}
	}
	if len(dashCols) == 0 && content != "" && (content[0] == '%' || content == "---" || content == "...") {
		return Result{Ambiguous: true, Token: tokenAt(text, offset)}
	}

	key, rest, restCol, keyOK := splitKey(content)
	valueAbs := curStart + contentCol + restCol

	if keyOK && offset >= valueAbs {
		for _, c := range dashCols {
			stack.enterDash(c)
		}
		stack.enterKey(contentCol, key)
		path := stack.path()

		valText := rest
		if n := offset - valueAbs; n < len(valText) {
			valText = valText[:n]
		}
		token := valueToken(text, offset, valueAbs, valText)
		token.InValue = true

		if extra, inFlowKey, inFlow := flowPath(valText); inFlow {
			path = append(path, extra...)
			if inFlowKey {
				token.InValue = false
				token.InKey = true
			}
		} else if token.Quote == 0 {
			// Outside flow collections and quotes, the whole plain scalar
			// is the token. Scope assignments span spaces, so the last
			// word alone would misplace the replace span.
			token = Token{Text: valText, Start: valueAbs, InValue: true}
		}
		token.ParenDepth = countParens(token.Text)
		return Result{Path: path, Token: token}
	}

	// Key position, plain list element, or the value region of a less
	// indented key line above.
	for _, c := range dashCols {
		if c < cursorCol {
			stack.enterDash(c)
		}
	}
	token := tokenAt(text, offset)
	token.ParenDepth = countParens(token.Text)
	tokCol := token.Start - curStart

	stack.popDeeper(tokCol)
	for t := stack.top(); t != nil && t.isList && t.indent == tokCol; t = stack.top() {
		stack.pop()
	}

	t := stack.top()
	switch {
	case t == nil:
		token.InKey = true
		return Result{Token: token, SiblingKeys: yamlSiblingsAfter(text, curStart, tokCol)}
	case !t.isList && t.indent == tokCol:
		token.InKey = true
		siblings := append([]string(nil), t.keys...)
		siblings = append(siblings, yamlSiblingsAfter(text, curStart, tokCol)...)
		return Result{Path: stack[:len(stack)-1].path(), Token: token, SiblingKeys: siblings}
	case t.isList && len(dashCols) > 0 && token.Text != "" && token.Start == curStart+contentCol:
		// A word right after a dash marker reads two ways: a scalar
		// element, or the first key of the block mapping the element is
		// becoming. Carry both so the schema can pick.
		token.InKey = true
		token.InValue = true
		return Result{Path: stack.path(), Token: token, SiblingKeys: yamlSiblingsAfter(text, curStart, tokCol)}
	default:
		// Deeper than the innermost frame: the cursor sits inside that
		// frame's value.
		token.InValue = true
		return Result{Path: stack.path(), Token: token}
	}
}

// valueToken builds the partial token for a cursor inside a value,
// respecting an unclosed quote opened earlier in the value text.
func valueToken(text string, offset, valueAbs int, valText string) Token {
	openQ := -1
	var q byte
	for i := 0; i < len(valText); i++ {
		c := valText[i]
		if q != 0 {
			if c == q {
				q = 0
				openQ = -1
			}
			continue
		}
		if c == '"' || c == '\'' {
			q = c
			openQ = i
		}
	}
	if openQ >= 0 {
		return Token{Text: valText[openQ+1:], Start: valueAbs + openQ + 1, Quote: q}
	}
	return tokenAt(text, offset)
}

// flowPath derives the extra segments when the cursor sits inside an
// inline [] or {} value. The second return reports a flow-map key
// position, the third whether any flow collection is open at the cursor.
func flowPath(valText string) (Path, bool, bool) {
	type flowFrame struct {
		open    byte
		commas  int
		lastKey string
		keyDone bool
	}
	var frames []flowFrame
	var q byte
	for i := 0; i < len(valText); i++ {
		c := valText[i]
		if q != 0 {
			if c == q {
				q = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			q = c
		case '[', '{':
			frames = append(frames, flowFrame{open: c})
		case ']', '}':
			if len(frames) > 0 {
				frames = frames[:len(frames)-1]
			}
		case ',':
			if len(frames) > 0 {
				f := &frames[len(frames)-1]
				f.commas++
				f.keyDone = false
				f.lastKey = ""
			}
		case ':':
			if len(frames) > 0 && frames[len(frames)-1].open == '{' {
				end := i
				for end > 0 && (valText[end-1] == ' ' || valText[end-1] == '\t') {
					end--
				}
				start := end
				for start > 0 && isWordByte(valText[start-1]) {
					start--
				}
				f := &frames[len(frames)-1]
				f.keyDone = true
				f.lastKey = valText[start:end]
			}
		}
	}
	if len(frames) == 0 {
		return nil, false, false
	}
	var p Path
	inKey := false
	for _, f := range frames {
		if f.open == '[' {
			p = append(p, Index(f.commas))
			continue
		}
		if f.keyDone {
			p = append(p, Key(f.lastKey))
		}
	}
	last := frames[len(frames)-1]
	if last.open == '{' && !last.keyDone {
		inKey = true
	}
	return p, inKey, true
}

// yamlSiblingsAfter collects keys declared at exactly col on the lines
// below the cursor, until the block dedents or a new document starts.
func yamlSiblingsAfter(text string, curStart, col int) []string {
	i := strings.IndexByte(text[curStart:], '\n')
	if i < 0 {
		return nil
	}
	var keys []string
	lineStart := curStart + i + 1
	for lineStart < len(text) {
		var line string
		if end := strings.IndexByte(text[lineStart:], '\n'); end >= 0 {
			line = text[lineStart : lineStart+end]
			lineStart += end + 1
		} else {
			line = text[lineStart:]
			lineStart = len(text)
		}

		dashCols, content, contentCol := yamlLine(line)
		content, _ = stripComment(content)
		if content == "" && len(dashCols) == 0 {
			continue
		}
		lineIndent := contentCol
		if len(dashCols) > 0 {
			lineIndent = dashCols[0]
		}
		if lineIndent < col || content == "---" || content == "..." {
			return keys
		}
		if lineIndent > col || len(dashCols) > 0 {
			continue
		}
		if key, _, _, ok := splitKey(content); ok {
			keys = append(keys, key)
		}
	}
	return keys
}
