package parser

import "strings"

// The YAML walker handles the block-structured subset syntax definitions
// are written in: nested maps and lists by indentation, dash markers,
// plain and quoted scalars, block scalars, and single-line flow
// collections. Consuming a dash marker rewrites the line in place so the
// remainder parses as a fresh, shorter line.

type yamlLineView struct {
	start      int
	raw        string
	dashCols   []int
	content    string
	contentCol int
	indent     int
	blank      bool
}

func (ln *yamlLineView) end() int {
	return ln.start + len(ln.raw)
}

type yamlWalker struct {
	text    string
	lines   []yamlLineView
	idx     int
	damaged bool
	lastEnd int
}

func newYamlWalker(text string) *yamlWalker {
	w := &yamlWalker{text: text}
	start := 0
	for start <= len(text) {
		end := strings.IndexByte(text[start:], '\n')
		var raw string
		var next int
		if end >= 0 {
			raw = text[start : start+end]
			next = start + end + 1
		} else {
			raw = text[start:]
			next = len(text) + 1
		}

		dashCols, content, contentCol := yamlLine(raw)
		content, _ = stripComment(content)
		ln := yamlLineView{
			start:      start,
			raw:        raw,
			dashCols:   dashCols,
			content:    content,
			contentCol: contentCol,
		}
		ln.blank = content == "" && len(dashCols) == 0
		if len(dashCols) > 0 {
			ln.indent = dashCols[0]
		} else {
			ln.indent = contentCol
		}
		if !ln.blank && len(dashCols) == 0 {
			if content[0] == '%' || content == "---" || content == "..." {
				ln.blank = true
			}
		}
		w.lines = append(w.lines, ln)
		start = next
	}
	return w
}

// peek returns the next significant line, consuming blanks, comments, and
// document markers on the way.
func (w *yamlWalker) peek() *yamlLineView {
	for w.idx < len(w.lines) {
		if !w.lines[w.idx].blank {
			return &w.lines[w.idx]
		}
		w.idx++
	}
	return nil
}

func (w *yamlWalker) consume(ln *yamlLineView) {
	w.lastEnd = ln.end()
	w.idx++
}

func walkYAML(text string) *Document {
	w := newYamlWalker(text)
	if w.peek() == nil {
		return &Document{}
	}
	root := w.parseBlock(nil)
	if w.peek() != nil {
		w.damaged = true
	}
	return &Document{Root: root, Damaged: w.damaged}
}

func (w *yamlWalker) parseBlock(path Path) *Node {
	ln := w.peek()
	if ln == nil {
		return &Node{Kind: NodeScalar, Path: path, Value: span(w.text, w.lastEnd, w.lastEnd)}
	}
	if len(ln.dashCols) > 0 {
		return w.parseList(ln.dashCols[0], path)
	}
	if _, _, _, ok := splitKey(ln.content); ok {
		return w.parseMap(ln.contentCol, path)
	}
	w.consume(ln)
	node, _ := w.flowValue(ln.content, 0, ln.start+ln.contentCol, path)
	return node
}

func (w *yamlWalker) parseMap(col int, path Path) *Node {
	node := &Node{Kind: NodeMap, Path: path}
	first := w.peek()
	startOff := first.start + first.contentCol

	for {
		ln := w.peek()
		if ln == nil || ln.indent < col {
			break
		}
		if ln.indent > col {
			// Continuation of a wrapped plain scalar, or stray deeper
			// content.
			if n := len(node.Children); n > 0 && node.Children[n-1].Kind == NodeScalar && !node.Children[n-1].Block {
				prev := node.Children[n-1]
				prev.Value = span(w.text, prev.Value.Offset, ln.end())
			} else {
				w.damaged = true
			}
			w.consume(ln)
			continue
		}
		if len(ln.dashCols) > 0 {
			break
		}
		key, rest, restCol, ok := splitKey(ln.content)
		if !ok {
			w.damaged = true
			w.consume(ln)
			continue
		}

		keyOff := ln.start + ln.contentCol
		if ln.content[0] == '"' || ln.content[0] == '\'' {
			keyOff++
		}
		keySpan := span(w.text, keyOff, keyOff+len(key))
		childPath := append(append(Path{}, path...), Key(key))

		var child *Node
		switch {
		case isBlockScalar(rest):
			child = w.parseBlockScalar(ln, col, restCol, childPath)
		case rest != "":
			w.consume(ln)
			child, _ = w.flowValue(rest, 0, ln.start+ln.contentCol+restCol, childPath)
		default:
			w.consume(ln)
			next := w.peek()
			switch {
			case next != nil && len(next.dashCols) > 0 && next.dashCols[0] >= col:
				child = w.parseList(next.dashCols[0], childPath)
			case next != nil && next.indent > col:
				child = w.parseBlock(childPath)
			default:
				child = &Node{Kind: NodeScalar, Path: childPath, Value: span(w.text, ln.end(), ln.end())}
			}
		}
		child.Key = &keySpan
		node.Children = append(node.Children, child)
	}

	node.Value = span(w.text, startOff, w.lastEnd)
	return node
}

func (w *yamlWalker) parseList(col int, path Path) *Node {
	node := &Node{Kind: NodeList, Path: path}
	first := w.peek()
	startOff := first.start + col

	for {
		ln := w.peek()
		if ln == nil {
			break
		}
		if len(ln.dashCols) == 0 || ln.dashCols[0] != col {
			if ln.indent > col {
				if n := len(node.Children); n > 0 && node.Children[n-1].Kind == NodeScalar && !node.Children[n-1].Block {
					prev := node.Children[n-1]
					prev.Value = span(w.text, prev.Value.Offset, ln.end())
					w.consume(ln)
					continue
				}
			}
			break
		}

		childPath := append(append(Path{}, path...), Index(len(node.Children)))
		var child *Node
		switch {
		case len(ln.dashCols) > 1:
			// Rewrite the line without its first dash and reparse.
			ln.dashCols = ln.dashCols[1:]
			ln.indent = ln.dashCols[0]
			child = w.parseBlock(childPath)
		case ln.content != "":
			ln.dashCols = nil
			ln.indent = ln.contentCol
			child = w.parseBlock(childPath)
		default:
			w.consume(ln)
			next := w.peek()
			if next != nil && next.indent > col {
				child = w.parseBlock(childPath)
			} else {
				child = &Node{Kind: NodeScalar, Path: childPath, Value: span(w.text, ln.end(), ln.end())}
			}
		}
		node.Children = append(node.Children, child)
	}

	node.Value = span(w.text, startOff, w.lastEnd)
	return node
}

// parseBlockScalar consumes a literal or folded scalar: every following
// line indented past the key line, blanks included.
func (w *yamlWalker) parseBlockScalar(ln *yamlLineView, col, restCol int, path Path) *Node {
	markerOff := ln.start + ln.contentCol + restCol
	w.consume(ln)
	end := ln.end()
	for w.idx < len(w.lines) {
		next := &w.lines[w.idx]
		if !next.blank && next.indent <= col {
			break
		}
		end = next.end()
		w.lastEnd = end
		w.idx++
	}
	return &Node{Kind: NodeScalar, Path: path, Value: span(w.text, markerOff, end), Block: true}
}

// flowValue parses an inline value: a flow list or map, a quoted scalar,
// or a plain scalar. Plain scalars stop at flow delimiters only inside a
// flow collection; at the top level they run to the end of the line.
func (w *yamlWalker) flowValue(s string, pos, base int, path Path) (*Node, int) {
	return w.flowValueIn(s, pos, base, path, false)
}

func (w *yamlWalker) flowValueIn(s string, pos, base int, path Path, inFlow bool) (*Node, int) {
	for pos < len(s) && (s[pos] == ' ' || s[pos] == '\t') {
		pos++
	}
	if pos >= len(s) {
		return &Node{Kind: NodeScalar, Path: path, Value: span(w.text, base+pos, base+pos)}, pos
	}

	switch s[pos] {
	case '[':
		node := &Node{Kind: NodeList, Path: path}
		start := pos
		pos++
		for {
			for pos < len(s) && (s[pos] == ' ' || s[pos] == '\t') {
				pos++
			}
			if pos >= len(s) {
				w.damaged = true
				break
			}
			if s[pos] == ']' {
				pos++
				break
			}
			if s[pos] == ',' {
				pos++
				continue
			}
			var child *Node
			child, pos = w.flowValueIn(s, pos, base, append(append(Path{}, path...), Index(len(node.Children))), true)
			node.Children = append(node.Children, child)
		}
		node.Value = span(w.text, base+start, base+pos)
		return node, pos
	case '{':
		node := &Node{Kind: NodeMap, Path: path}
		start := pos
		pos++
		for {
			for pos < len(s) && (s[pos] == ' ' || s[pos] == '\t') {
				pos++
			}
			if pos >= len(s) {
				w.damaged = true
				break
			}
			if s[pos] == '}' {
				pos++
				break
			}
			if s[pos] == ',' {
				pos++
				continue
			}
			keyStart := pos
			for pos < len(s) && s[pos] != ':' && s[pos] != ',' && s[pos] != '}' {
				pos++
			}
			key := strings.TrimRight(s[keyStart:pos], " \t")
			keySpan := span(w.text, base+keyStart, base+keyStart+len(key))
			if pos < len(s) && s[pos] == ':' {
				pos++
				var child *Node
				child, pos = w.flowValueIn(s, pos, base, append(append(Path{}, path...), Key(key)), true)
				child.Key = &keySpan
				node.Children = append(node.Children, child)
			} else {
				w.damaged = true
			}
		}
		node.Value = span(w.text, base+start, base+pos)
		return node, pos
	case '"', '\'':
		q := s[pos]
		start := pos
		pos++
		for pos < len(s) {
			if s[pos] == '\\' && q == '"' {
				pos += 2
				continue
			}
			if s[pos] == q {
				if q == '\'' && pos+1 < len(s) && s[pos+1] == '\'' {
					pos += 2
					continue
				}
				break
			}
			pos++
		}
		closed := pos < len(s)
		endInner := pos
		if closed {
			pos++
		} else {
			w.damaged = true
			endInner = len(s)
			pos = len(s)
		}
		return &Node{
			Kind:  NodeScalar,
			Path:  path,
			Value: span(w.text, base+start+1, base+endInner),
			Quote: q,
		}, pos
	default:
		start := pos
		for pos < len(s) {
			if inFlow && (s[pos] == ',' || s[pos] == ']' || s[pos] == '}') {
				break
			}
			pos++
		}
		end := pos
		for end > start && (s[end-1] == ' ' || s[end-1] == '\t') {
			end--
		}
		return &Node{Kind: NodeScalar, Path: path, Value: span(w.text, base+start, base+end)}, pos
	}
}
