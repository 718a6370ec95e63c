package parser

import (
	"github.com/forkeith/PackageDev/pkg/dialect"
	"github.com/forkeith/PackageDev/pkg/position"
)

// NodeKind classifies a document tree node.
type NodeKind int

const (
	NodeMap NodeKind = iota
	NodeList
	NodeScalar
)

// Node is one element of a parsed document tree. Scalar nodes carry their
// raw text in Value; container nodes carry the region they span. Escape
// sequences inside quoted scalars are kept verbatim.
type Node struct {
	Kind NodeKind
	Path Path

	// Key spans the key text introducing this node when it is a map
	// entry, nil otherwise.
	Key   *position.RawPosition
	Value position.RawPosition

	// Quote is the quoting character around a scalar, 0 when bare.
	// Block marks a YAML literal or folded scalar.
	Quote byte
	Block bool

	Children []*Node
}

// Entry returns the child introduced by the given key, nil when absent.
func (n *Node) Entry(key string) *Node {
	if n == nil || n.Kind != NodeMap {
		return nil
	}
	for _, c := range n.Children {
		if c.Key != nil && c.Key.Text == key {
			return c
		}
	}
	return nil
}

// Document is the tolerant parse of a whole file. Damaged is set when
// regions could not be interpreted; the tree still covers everything that
// could.
type Document struct {
	Root    *Node
	Damaged bool
}

// At follows a structural path from the root. Nil when any step is
// missing or of the wrong shape.
func (d *Document) At(path Path) *Node {
	if d == nil {
		return nil
	}
	n := d.Root
	for _, seg := range path {
		if n == nil {
			return nil
		}
		if seg.IsIndex {
			if n.Kind != NodeList || seg.Index < 0 || seg.Index >= len(n.Children) {
				return nil
			}
			n = n.Children[seg.Index]
			continue
		}
		n = n.Entry(seg.Key)
	}
	return n
}

// Visit walks the tree preorder. The visitor returning false prunes the
// subtree.
func (d *Document) Visit(fn func(*Node) bool) {
	if d == nil || d.Root == nil {
		return
	}
	var rec func(*Node)
	rec = func(n *Node) {
		if !fn(n) {
			return
		}
		for _, c := range n.Children {
			rec(c)
		}
	}
	rec(d.Root)
}

// Walk parses the whole document for the dialect's family. Unknown
// families yield an empty damaged document, never an error.
func Walk(text string, d dialect.Dialect) *Document {
	switch d.Family() {
	case dialect.FamilyJSON:
		return walkJSON(text)
	case dialect.FamilyYAML:
		return walkYAML(text)
	case dialect.FamilyPlist:
		return walkPlist(text)
	default:
		return &Document{Damaged: true}
	}
}

func span(text string, start, end int) position.RawPosition {
	if start < 0 {
		start = 0
	}
	if end > len(text) {
		end = len(text)
	}
	if end < start {
		end = start
	}
	return position.RawPosition{Offset: start, Text: text[start:end]}
}
