package parser

import "strings"

// Plist resolution scans tags forward from the document start to the
// cursor. The prefix of a plist being edited is usually well formed, and
// scanning forward keeps <key> elements naturally associated with the
// values that follow them. Unknown or damaged tags are skipped without
// touching the structure, so raw regex characters inside <string> bodies
// do not derail the walk.

type plistFrame struct {
	tag    string
	seg    Segment
	hasSeg bool
	key    string
	hasKey bool
	keys   []string
	count  int
}

type plistMode int

const (
	plistBetween plistMode = iota
	plistInKey
	plistInScalar
)

var plistScalarTags = map[string]bool{
	"string":  true,
	"integer": true,
	"real":    true,
	"date":    true,
	"data":    true,
}

func resolvePlist(text string, offset int) Result {
	var stack []*plistFrame
	mode := plistBetween
	textStart := 0
	var scalarSeg Segment
	scalarHasSeg := false

	top := func() *plistFrame {
		if len(stack) == 0 {
			return nil
		}
		return stack[len(stack)-1]
	}
	// childSeg claims the slot the next value element occupies in the
	// innermost container.
	childSeg := func() (Segment, bool) {
		t := top()
		if t == nil {
			return Segment{}, false
		}
		switch t.tag {
		case "array":
			return Index(t.count), true
		case "dict":
			if t.hasKey {
				t.hasKey = false
				return Key(t.key), true
			}
		}
		return Segment{}, false
	}

	i := 0
	for {
		lt := strings.IndexByte(text[i:], '<')
		if lt < 0 || i+lt >= offset {
			break
		}
		lt += i

		if strings.HasPrefix(text[lt:], "<!--") {
			end := strings.Index(text[lt:], "-->")
			if end < 0 || lt+end+3 > offset {
				return Result{Ambiguous: true, Token: tokenAt(text, offset)}
			}
			i = lt + end + 3
			continue
		}
		if strings.HasPrefix(text[lt:], "<?") || strings.HasPrefix(text[lt:], "<!") {
			gt := strings.IndexByte(text[lt:], '>')
			if gt < 0 || lt+gt >= offset {
				return Result{Ambiguous: true, Token: tokenAt(text, offset)}
			}
			i = lt + gt + 1
			continue
		}

		gt := strings.IndexByte(text[lt:], '>')
		if gt < 0 || lt+gt >= offset {
			// Cursor inside the tag markup itself.
			return Result{Ambiguous: true, Token: tokenAt(text, offset)}
		}
		gt += lt

		inner := text[lt+1 : gt]
		closing := strings.HasPrefix(inner, "/")
		selfClosed := strings.HasSuffix(inner, "/")
		name := strings.Trim(inner, "/")
		if n := strings.IndexAny(name, " \t\r\n"); n >= 0 {
			name = name[:n]
		}

		switch {
		case name == "plist":
			if closing {
				if len(stack) > 0 {
					stack = stack[:len(stack)-1]
				}
			} else {
				stack = append(stack, &plistFrame{tag: "plist"})
			}
			mode = plistBetween
		case name == "dict" || name == "array":
			if closing {
				if len(stack) > 0 {
					stack = stack[:len(stack)-1]
				}
				if t := top(); t != nil && t.tag == "array" {
					t.count++
				}
			} else {
				seg, ok := childSeg()
				stack = append(stack, &plistFrame{tag: name, seg: seg, hasSeg: ok})
			}
			mode = plistBetween
		case name == "key":
			if closing {
				if t := top(); t != nil && t.tag == "dict" {
					t.key = text[textStart:lt]
					t.hasKey = true
					t.keys = append(t.keys, t.key)
				}
				mode = plistBetween
			} else {
				mode = plistInKey
				textStart = gt + 1
			}
		case plistScalarTags[name]:
			if closing {
				if t := top(); t != nil && t.tag == "array" {
					t.count++
				}
				mode = plistBetween
			} else if selfClosed {
				if _, ok := childSeg(); ok {
					if t := top(); t != nil && t.tag == "array" {
						t.count++
					}
				}
			} else {
				scalarSeg, scalarHasSeg = childSeg()
				mode = plistInScalar
				textStart = gt + 1
			}
		case name == "true" || name == "false":
			if _, ok := childSeg(); ok {
				if t := top(); t != nil && t.tag == "array" {
					t.count++
				}
			}
		}
		i = gt + 1
	}

	if len(stack) == 0 {
		return Result{Ambiguous: true, Token: tokenAt(text, offset)}
	}

	path := make(Path, 0, len(stack)+1)
	for _, f := range stack {
		if f.hasSeg {
			path = append(path, f.seg)
		}
	}

	switch mode {
	case plistInKey:
		token := Token{Text: text[textStart:offset], Start: textStart, InKey: true}
		var siblings []string
		if t := top(); t != nil && t.tag == "dict" {
			siblings = append(siblings, t.keys...)
		}
		siblings = append(siblings, plistSiblingsAfter(text, offset)...)
		return Result{Path: path, Token: token, SiblingKeys: siblings}
	case plistInScalar:
		token := tokenAt(text, offset)
		if token.Start < textStart {
			token = Token{Text: text[textStart:offset], Start: textStart}
		}
		token.InValue = true
		token.ParenDepth = countParens(token.Text)
		if scalarHasSeg {
			path = append(path, scalarSeg)
		}
		return Result{Path: path, Token: token}
	default:
		token := tokenAt(text, offset)
		t := top()
		switch t.tag {
		case "dict":
			token.InKey = true
			siblings := append([]string(nil), t.keys...)
			siblings = append(siblings, plistSiblingsAfter(text, offset)...)
			return Result{Path: path, Token: token, SiblingKeys: siblings}
		case "array":
			token.InValue = true
			path = append(path, Index(t.count))
			return Result{Path: path, Token: token}
		default:
			token.InValue = true
			return Result{Path: path, Token: token}
		}
	}
}

// plistSiblingsAfter collects the keys declared between the cursor and the
// end of the enclosing dict.
func plistSiblingsAfter(text string, offset int) []string {
	var keys []string
	depth := 0

	i := offset
	for {
		lt := strings.IndexByte(text[i:], '<')
		if lt < 0 {
			return keys
		}
		lt += i
		gt := strings.IndexByte(text[lt:], '>')
		if gt < 0 {
			return keys
		}
		gt += lt

		inner := text[lt+1 : gt]
		closing := strings.HasPrefix(inner, "/")
		name := strings.Trim(inner, "/")
		if n := strings.IndexAny(name, " \t\r\n"); n >= 0 {
			name = name[:n]
		}

		switch name {
		case "dict", "array":
			if closing {
				if depth == 0 {
					return keys
				}
				depth--
			} else {
				depth++
			}
		case "plist":
			if closing {
				return keys
			}
		case "key":
			if !closing && depth == 0 {
				end := strings.Index(text[gt+1:], "</key>")
				if end < 0 {
					return keys
				}
				keys = append(keys, text[gt+1:gt+1+end])
				i = gt + 1 + end
				continue
			}
		}
		i = gt + 1
	}
}
