// Package schema declares the static catalogs describing which keys, value
// kinds, and nestings are valid in each supported document dialect. The
// tables are pure data, built once at init and never mutated; lookups walk
// a structural path downward and return nil on the first unknown segment.
package schema

import (
	"sort"

	"github.com/forkeith/PackageDev/pkg/dialect"
	"github.com/forkeith/PackageDev/pkg/parser"
)

// Kind classifies the value expected at a schema position.
type Kind int

const (
	KindMap Kind = iota
	KindList
	KindString
	KindNumber
	KindBool
	KindEnum
	KindRegex
	// KindScopeName is the assignment flavor: one or more space-separated
	// scope names, no selector operators (a rule's scope key).
	KindScopeName
	// KindScopeSelector is a full selector expression with combinators.
	KindScopeSelector
	// KindCssVariable is CSS text whose var() references resolve against
	// the built-in minihtml variables.
	KindCssVariable
	KindColor
	// KindActionRef names a context in the same document, or a syntax
	// reference for actions that can cross files (push, set, embed).
	KindActionRef
	// KindSyntaxRef references another syntax definition file.
	KindSyntaxRef
	KindFreeText
)

func (k Kind) String() string {
	switch k {
	case KindMap:
		return "map"
	case KindList:
		return "list"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindEnum:
		return "enum"
	case KindRegex:
		return "regex"
	case KindScopeName:
		return "scope-name"
	case KindScopeSelector:
		return "scope-selector"
	case KindCssVariable:
		return "css-variable"
	case KindColor:
		return "color"
	case KindActionRef:
		return "action-reference"
	case KindSyntaxRef:
		return "syntax-reference"
	default:
		return "free-text"
	}
}

// Node describes one key or value position in a dialect's schema tree.
// Nodes are immutable after construction.
type Node struct {
	Name string
	Kind Kind
	// Doc is a one-line description surfaced as completion detail.
	Doc string
	// Values enumerates allowed values for KindEnum nodes and suggested
	// values for string-like nodes.
	Values []string
	// WordEnum marks enum values that combine as space-separated words
	// (font_style: "bold italic").
	WordEnum bool
	// Children holds the named keys of a KindMap node.
	Children map[string]*Node
	// Wildcard describes values under arbitrary keys of a KindMap node
	// (variables, captures).
	Wildcard *Node
	// Elem describes the element type of a KindList node; repeatable by
	// construction, matched by type rather than index.
	Elem *Node
	// Repeatable marks keys that may legally appear more than once among
	// siblings. Map keys default to non-repeatable.
	Repeatable bool
}

// Child resolves a named key against a map node, falling back to the
// wildcard entry. Returns nil when the key is unknown.
func (n *Node) Child(key string) *Node {
	if n == nil || n.Kind != KindMap {
		return nil
	}
	if c, ok := n.Children[key]; ok {
		return c
	}
	return n.Wildcard
}

// ChildNames returns the declared key names of a map node in sorted order.
func (n *Node) ChildNames() []string {
	if n == nil || len(n.Children) == 0 {
		return nil
	}
	names := make([]string, 0, len(n.Children))
	for name := range n.Children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasScopeValue reports whether completions for this node's value consult
// the scope registry.
func (n *Node) HasScopeValue() bool {
	if n == nil {
		return false
	}
	return n.Kind == KindScopeName || n.Kind == KindScopeSelector
}

// Lookup walks the dialect's schema tree along the given path. List
// segments match the element type regardless of index. The second return
// is false when the dialect has no schema or a segment is unknown.
func Lookup(d dialect.Dialect, path parser.Path) (*Node, bool) {
	node := Root(d)
	if node == nil {
		return nil, false
	}
	for _, seg := range path {
		var next *Node
		if seg.IsIndex {
			if node.Kind == KindList {
				next = node.Elem
			}
		} else {
			next = node.Child(seg.Key)
		}
		if next == nil {
			return nil, false
		}
		node = next
	}
	return node, true
}

// Root returns the schema tree for a dialect, nil when none is declared.
func Root(d dialect.Dialect) *Node {
	switch d {
	case dialect.SublimeSyntax:
		return sublimeSyntaxRoot
	case dialect.TmLanguage:
		return tmLanguageRoot
	case dialect.ColorScheme:
		return colorSchemeRoot
	case dialect.TmTheme:
		return tmThemeRoot
	case dialect.Settings:
		return settingsRoot
	case dialect.Build:
		return buildRoot
	case dialect.Keymap:
		return keymapRoot
	case dialect.Snippet:
		return snippetRoot
	default:
		return nil
	}
}

// Table constructors. Node names are filled in by finish() so the literal
// tables only state each key once.

func str(doc string, suggest ...string) *Node {
	return &Node{Kind: KindString, Doc: doc, Values: suggest}
}

func num(doc string) *Node {
	return &Node{Kind: KindNumber, Doc: doc}
}

func boolean(doc string) *Node {
	return &Node{Kind: KindBool, Doc: doc}
}

func enum(doc string, values ...string) *Node {
	return &Node{Kind: KindEnum, Doc: doc, Values: values}
}

func wordEnum(doc string, values ...string) *Node {
	return &Node{Kind: KindEnum, Doc: doc, Values: values, WordEnum: true}
}

func regex(doc string) *Node {
	return &Node{Kind: KindRegex, Doc: doc}
}

func scopeName(doc string) *Node {
	return &Node{Kind: KindScopeName, Doc: doc}
}

func scopeSelector(doc string) *Node {
	return &Node{Kind: KindScopeSelector, Doc: doc}
}

func cssText(doc string) *Node {
	return &Node{Kind: KindCssVariable, Doc: doc}
}

func color(doc string) *Node {
	return &Node{Kind: KindColor, Doc: doc}
}

func actionRef(doc string) *Node {
	return &Node{Kind: KindActionRef, Doc: doc}
}

func syntaxRef(doc string) *Node {
	return &Node{Kind: KindSyntaxRef, Doc: doc}
}

func freeText(doc string) *Node {
	return &Node{Kind: KindFreeText, Doc: doc}
}

func list(doc string, elem *Node) *Node {
	return &Node{Kind: KindList, Doc: doc, Elem: elem}
}

func mapOf(doc string, children map[string]*Node) *Node {
	return finish(&Node{Kind: KindMap, Doc: doc, Children: children})
}

func mapWild(doc string, wildcard *Node, children map[string]*Node) *Node {
	return finish(&Node{Kind: KindMap, Doc: doc, Children: children, Wildcard: wildcard})
}

func finish(n *Node) *Node {
	for name, child := range n.Children {
		if child.Name == "" {
			child.Name = name
		}
	}
	return n
}
