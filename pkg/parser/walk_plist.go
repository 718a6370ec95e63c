package parser

import "strings"

// The plist walker reads the element stream forward, pairing <key> tags
// with the value element that follows. Raw markup characters inside
// scalar bodies are tolerated because scalar content is cut at the
// matching close tag, not at the first '<'.

type plistTag struct {
	name       string
	closing    bool
	selfClosed bool
	start, end int
	ok         bool
}

type plistWalker struct {
	text    string
	pos     int
	pending *plistTag
	damaged bool
}

func walkPlist(text string) *Document {
	w := &plistWalker{text: text}
	for {
		t := w.next()
		if !t.ok {
			return &Document{Damaged: true}
		}
		if t.closing {
			continue
		}
		if t.name == "plist" {
			continue
		}
		root := w.parseElem(t, nil)
		if root == nil {
			return &Document{Damaged: true}
		}
		return &Document{Root: root, Damaged: w.damaged}
	}
}

func (w *plistWalker) next() plistTag {
	if w.pending != nil {
		t := *w.pending
		w.pending = nil
		return t
	}
	for {
		lt := strings.IndexByte(w.text[w.pos:], '<')
		if lt < 0 {
			w.pos = len(w.text)
			return plistTag{}
		}
		lt += w.pos
		if strings.HasPrefix(w.text[lt:], "<!--") {
			end := strings.Index(w.text[lt:], "-->")
			if end < 0 {
				w.pos = len(w.text)
				w.damaged = true
				return plistTag{}
			}
			w.pos = lt + end + 3
			continue
		}
		if strings.HasPrefix(w.text[lt:], "<?") || strings.HasPrefix(w.text[lt:], "<!") {
			gt := strings.IndexByte(w.text[lt:], '>')
			if gt < 0 {
				w.pos = len(w.text)
				w.damaged = true
				return plistTag{}
			}
			w.pos = lt + gt + 1
			continue
		}
		gt := strings.IndexByte(w.text[lt:], '>')
		if gt < 0 {
			w.pos = len(w.text)
			w.damaged = true
			return plistTag{}
		}
		gt += lt

		inner := w.text[lt+1 : gt]
		t := plistTag{start: lt, end: gt + 1, ok: true}
		t.closing = strings.HasPrefix(inner, "/")
		t.selfClosed = strings.HasSuffix(inner, "/")
		name := strings.Trim(inner, "/")
		if n := strings.IndexAny(name, " \t\r\n"); n >= 0 {
			name = name[:n]
		}
		t.name = name
		w.pos = t.end
		return t
	}
}

func (w *plistWalker) push(t plistTag) {
	w.pending = &t
}

func (w *plistWalker) parseElem(t plistTag, path Path) *Node {
	switch t.name {
	case "dict":
		return w.parseDict(t, path)
	case "array":
		return w.parseArray(t, path)
	case "true", "false":
		return &Node{Kind: NodeScalar, Path: path, Value: span(w.text, t.start+1, t.start+1+len(t.name))}
	default:
		if t.selfClosed {
			return &Node{Kind: NodeScalar, Path: path, Value: span(w.text, t.end, t.end)}
		}
		closeTag := "</" + t.name + ">"
		idx := strings.Index(w.text[t.end:], closeTag)
		if idx < 0 {
			w.damaged = true
			w.pos = len(w.text)
			return &Node{Kind: NodeScalar, Path: path, Value: span(w.text, t.end, len(w.text))}
		}
		node := &Node{Kind: NodeScalar, Path: path, Value: span(w.text, t.end, t.end+idx)}
		w.pos = t.end + idx + len(closeTag)
		if !plistScalarTags[t.name] {
			w.damaged = true
		}
		return node
	}
}

func (w *plistWalker) parseDict(open plistTag, path Path) *Node {
	node := &Node{Kind: NodeMap, Path: path}
	for {
		t := w.next()
		if !t.ok {
			w.damaged = true
			break
		}
		if t.closing {
			if t.name != "dict" {
				w.damaged = true
				w.push(t)
			}
			break
		}
		if t.name != "key" {
			// Value without a key. Parse it to stay in sync, keep it out
			// of the tree.
			w.damaged = true
			w.parseElem(t, path)
			continue
		}

		keyStart := t.end
		keyEnd := strings.Index(w.text[keyStart:], "</key>")
		if keyEnd < 0 {
			w.damaged = true
			break
		}
		keySpan := span(w.text, keyStart, keyStart+keyEnd)
		w.pos = keyStart + keyEnd + len("</key>")
		childPath := append(append(Path{}, path...), Key(keySpan.Text))

		vt := w.next()
		if !vt.ok || vt.closing || vt.name == "key" {
			// Key with no value element.
			w.damaged = true
			child := &Node{Kind: NodeScalar, Path: childPath, Key: &keySpan, Value: span(w.text, w.pos, w.pos)}
			node.Children = append(node.Children, child)
			if vt.ok {
				w.push(vt)
			}
			continue
		}
		child := w.parseElem(vt, childPath)
		if child == nil {
			continue
		}
		child.Key = &keySpan
		node.Children = append(node.Children, child)
	}
	node.Value = span(w.text, open.start, w.pos)
	return node
}

func (w *plistWalker) parseArray(open plistTag, path Path) *Node {
	node := &Node{Kind: NodeList, Path: path}
	for {
		t := w.next()
		if !t.ok {
			w.damaged = true
			break
		}
		if t.closing {
			if t.name != "array" {
				w.damaged = true
				w.push(t)
			}
			break
		}
		child := w.parseElem(t, append(append(Path{}, path...), Index(len(node.Children))))
		if child == nil {
			continue
		}
		node.Children = append(node.Children, child)
	}
	node.Value = span(w.text, open.start, w.pos)
	return node
}
