package parser

import "github.com/forkeith/PackageDev/pkg/position"

// The JSON walker reuses the flat string and comment scan and parses the
// value grammar on top of it. Trailing commas, comments, and unterminated
// strings are absorbed; anything else unparseable marks the document
// damaged and resynchronizes at the next delimiter.

type jsonWalker struct {
	doc     *jsonDoc
	text    string
	pos     int
	damaged bool
}

func walkJSON(text string) *Document {
	w := &jsonWalker{doc: scanJSONDoc(text), text: text}
	w.skipTrivia()
	root := w.parseValue(nil)
	if root == nil {
		return &Document{Damaged: true}
	}
	return &Document{Root: root, Damaged: w.damaged}
}

func (w *jsonWalker) skipTrivia() {
	for w.pos < len(w.text) {
		if c, ok := w.doc.commentAt(w.pos); ok {
			w.pos = c[1]
			continue
		}
		if isSpace(w.text[w.pos]) {
			w.pos++
			continue
		}
		return
	}
}

func (w *jsonWalker) parseValue(path Path) *Node {
	if w.pos >= len(w.text) {
		return nil
	}
	switch w.text[w.pos] {
	case '{':
		return w.parseObject(path)
	case '[':
		return w.parseArray(path)
	case '"':
		return w.parseString(path)
	default:
		return w.parseBare(path)
	}
}

func (w *jsonWalker) parseString(path Path) *Node {
	s, ok := w.doc.stringAt(w.pos)
	if !ok {
		w.damaged = true
		w.pos++
		return nil
	}
	if !s.closed {
		w.damaged = true
	}
	w.pos = s.close
	if s.closed {
		w.pos++
	}
	return &Node{
		Kind:  NodeScalar,
		Path:  path,
		Value: span(w.text, s.open+1, s.close),
		Quote: w.text[s.open],
	}
}

func (w *jsonWalker) parseBare(path Path) *Node {
	start := w.pos
	for w.pos < len(w.text) {
		c := w.text[w.pos]
		if isSpace(c) || c == ',' || c == '}' || c == ']' || c == '{' || c == '[' || c == '"' {
			break
		}
		if _, ok := w.doc.commentAt(w.pos); ok {
			break
		}
		w.pos++
	}
	if w.pos == start {
		w.damaged = true
		w.pos++
		return nil
	}
	return &Node{Kind: NodeScalar, Path: path, Value: span(w.text, start, w.pos)}
}

func (w *jsonWalker) parseObject(path Path) *Node {
	start := w.pos
	w.pos++
	node := &Node{Kind: NodeMap, Path: path}

	for {
		w.skipTrivia()
		if w.pos >= len(w.text) {
			w.damaged = true
			break
		}
		switch w.text[w.pos] {
		case '}':
			w.pos++
			node.Value = span(w.text, start, w.pos)
			return node
		case ',':
			w.pos++
			continue
		case '"':
			keySpan, _ := w.doc.stringAt(w.pos)
			key := span(w.text, keySpan.open+1, keySpan.close)
			w.pos = keySpan.close
			if keySpan.closed {
				w.pos++
			}
			w.skipTrivia()
			if w.pos < len(w.text) && w.text[w.pos] == ':' {
				w.pos++
				w.skipTrivia()
				child := w.parseValue(append(append(Path{}, path...), Key(key.Text)))
				if child != nil {
					child.Key = &key
					node.Children = append(node.Children, child)
					continue
				}
			}
			// Key without a usable value. Keep the key so repeated and
			// unknown key checks still see it.
			w.damaged = true
			node.Children = append(node.Children, &Node{
				Kind:  NodeScalar,
				Path:  append(append(Path{}, path...), Key(key.Text)),
				Key:   &key,
				Value: position.RawPosition{Offset: key.Offset + len(key.Text)},
			})
			w.resync()
		default:
			w.damaged = true
			w.resync()
		}
	}
	node.Value = span(w.text, start, w.pos)
	return node
}

func (w *jsonWalker) parseArray(path Path) *Node {
	start := w.pos
	w.pos++
	node := &Node{Kind: NodeList, Path: path}

	for {
		w.skipTrivia()
		if w.pos >= len(w.text) {
			w.damaged = true
			break
		}
		switch w.text[w.pos] {
		case ']':
			w.pos++
			node.Value = span(w.text, start, w.pos)
			return node
		case ',':
			w.pos++
			continue
		default:
			child := w.parseValue(append(append(Path{}, path...), Index(len(node.Children))))
			if child == nil {
				w.resync()
				continue
			}
			node.Children = append(node.Children, child)
		}
	}
	node.Value = span(w.text, start, w.pos)
	return node
}

// resync advances to the next separator or closer so one bad token does
// not cascade.
func (w *jsonWalker) resync() {
	for w.pos < len(w.text) {
		if c, ok := w.doc.commentAt(w.pos); ok {
			w.pos = c[1]
			continue
		}
		if s, ok := w.doc.stringAt(w.pos); ok {
			w.pos = s.close + 1
			continue
		}
		switch w.text[w.pos] {
		case ',', '}', ']':
			return
		}
		w.pos++
	}
}
