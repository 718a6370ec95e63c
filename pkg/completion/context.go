// Package completion turns a cursor position in a syntax, color scheme,
// settings, or related document into a ranked list of completion items.
// Classify decides what the author is typing there; Generate gathers,
// deduplicates, and orders the candidates for that context. Both halves
// are pure functions over the document text and a registry snapshot, so
// they are safe to call concurrently from request handlers.
package completion

import (
	"sort"
	"strings"

	"github.com/forkeith/PackageDev/pkg/color"
	"github.com/forkeith/PackageDev/pkg/dialect"
	"github.com/forkeith/PackageDev/pkg/parser"
	"github.com/forkeith/PackageDev/pkg/schema"
	"github.com/forkeith/PackageDev/pkg/selector"
	"github.com/forkeith/PackageDev/pkg/syntaxtest"
)

// Kind classifies what belongs at the cursor.
type Kind int

const (
	// FreeText means no completion source applies; hosts fall back to
	// their word-based suggestions.
	FreeText Kind = iota
	// KeyName completes mapping keys from the enclosing container's
	// schema, minus non-repeatable keys already present.
	KeyName
	// ScopeSelector completes scope names from the registry, inside
	// selectors as well as plain scope assignments.
	ScopeSelector
	// CssVariable completes var() references in minihtml CSS text.
	CssVariable
	// ActionName completes context names, branch points, and syntax
	// references for push/set/embed/include style actions.
	ActionName
	// ValueEnum completes a finite value set declared by the schema.
	ValueEnum
	// Color completes named colors, color function templates, and
	// variable references in color-valued positions.
	Color
)

func (k Kind) String() string {
	switch k {
	case KeyName:
		return "key-name"
	case ScopeSelector:
		return "scope-selector"
	case CssVariable:
		return "css-variable"
	case ActionName:
		return "action-name"
	case ValueEnum:
		return "value-enum"
	case Color:
		return "color"
	default:
		return "free-text"
	}
}

// Context carries everything Generate needs about one cursor position.
type Context struct {
	Kind    Kind
	Dialect dialect.Dialect
	Path    parser.Path
	Token   parser.Token
	// Node is the schema node behind the classification: the enclosing
	// map for KeyName, the value's node otherwise. Nil for syntax test
	// positions and unclassified text.
	Node *schema.Node
	// Siblings lists keys already present in the surrounding container.
	Siblings []string
	// Segment is the fragment candidates are matched against: the
	// selector atom after the last combinator, the name being typed
	// inside var(, the word of a word enum, or the whole token.
	// SegmentStart is its byte offset in the document.
	Segment      string
	SegmentStart int
	// ContextNames and BranchPoints hold the document's own context and
	// branch point definitions for ActionName positions.
	ContextNames []string
	BranchPoints []string
	// Variables holds the document's declared variable names for
	// CssVariable and Color positions.
	Variables []string
}

// ReplaceSpan is the byte range a host should replace with a chosen
// item's insertion text.
func (c Context) ReplaceSpan() (start, end int) {
	return c.SegmentStart, c.Token.Start + len(c.Token.Text)
}

// Classify resolves the document structure at offset and decides what
// kind of completion applies there. Offsets out of range are clamped;
// unparseable surroundings degrade to FreeText, never an error.
func Classify(text string, offset int, d dialect.Dialect) Context {
	if d == dialect.SyntaxTest {
		return classifyTest(text, offset)
	}

	res := parser.Resolve(text, offset, d)
	ctx := Context{
		Kind:         FreeText,
		Dialect:      d,
		Path:         res.Path,
		Token:        res.Token,
		Siblings:     res.SiblingKeys,
		Segment:      res.Token.Text,
		SegmentStart: res.Token.Start,
	}
	if res.Ambiguous {
		return ctx
	}
	node, ok := schema.Lookup(d, res.Path)
	if !ok {
		return ctx
	}

	if res.Token.InKey {
		if node.Kind == schema.KindMap {
			ctx.Kind = KeyName
			ctx.Node = node
			return ctx
		}
		// A token flagged both ways, a word after a YAML dash, falls
		// through to value handling when the container is not a mapping.
		if !res.Token.InValue {
			return ctx
		}
	}
	if !res.Token.InValue {
		return ctx
	}

	ctx.Node = node
	kind := node.Kind
	if d == dialect.Keymap && kind == schema.KindFreeText {
		kind = keymapOperandKind(text, res.Path)
	}

	switch kind {
	case schema.KindScopeName, schema.KindScopeSelector:
		ctx.Kind = ScopeSelector
		seg, off := selector.LastSegment(res.Token.Text)
		ctx.Segment = seg
		ctx.SegmentStart = res.Token.Start + off
	case schema.KindCssVariable:
		ctx.Kind = CssVariable
		ctx.Segment, ctx.SegmentStart = functionTail(res.Token)
		ctx.Variables = variableNames(text, d)
	case schema.KindColor:
		ctx.Kind = Color
		ctx.Segment, ctx.SegmentStart = functionTail(res.Token)
		ctx.Variables = variableNames(text, d)
	case schema.KindActionRef, schema.KindSyntaxRef:
		ctx.Kind = ActionName
		ctx.ContextNames, ctx.BranchPoints = definitionNames(text, d)
	case schema.KindEnum, schema.KindBool:
		ctx.Kind = ValueEnum
		if node.WordEnum {
			seg, off := lastWord(res.Token.Text)
			ctx.Segment = seg
			ctx.SegmentStart = res.Token.Start + off
		}
	case schema.KindString:
		if len(node.Values) > 0 {
			ctx.Kind = ValueEnum
		}
	}
	return ctx
}

// classifyTest handles syntax test files, which have no mapping
// structure: the header's syntax path and the selector text of
// assertion lines are the only completable spots.
func classifyTest(text string, offset int) Context {
	ctx := Context{
		Kind:         FreeText,
		Dialect:      dialect.SyntaxTest,
		Token:        parser.Token{Start: offset},
		SegmentStart: offset,
	}
	spot := syntaxtest.At(text, offset)
	switch spot.Kind {
	case syntaxtest.SpotPath:
		ctx.Kind = ActionName
	case syntaxtest.SpotSelector:
		ctx.Kind = ScopeSelector
	default:
		return ctx
	}
	ctx.Token = parser.Token{Text: spot.Text, Start: spot.Start, InValue: true}
	ctx.Segment = spot.Text
	ctx.SegmentStart = spot.Start
	if ctx.Kind == ScopeSelector {
		seg, off := selector.LastSegment(spot.Text)
		ctx.Segment = seg
		ctx.SegmentStart = spot.Start + off
	}
	return ctx
}

// keymapOperandKind upgrades a key binding's context operand to a scope
// selector when the sibling "key" entry asks for one. The schema cannot
// express this dependency, so the document itself is consulted.
func keymapOperandKind(text string, path parser.Path) schema.Kind {
	if len(path) == 0 {
		return schema.KindFreeText
	}
	last := path[len(path)-1]
	if last.IsIndex || last.Key != "operand" {
		return schema.KindFreeText
	}
	row := parser.Walk(text, dialect.Keymap).At(path[:len(path)-1])
	keyed := row.Entry("key")
	if keyed == nil || keyed.Kind != parser.NodeScalar {
		return schema.KindFreeText
	}
	switch keyed.Value.Text {
	case "selector", "eol_selector":
		return schema.KindScopeSelector
	}
	return schema.KindFreeText
}

// functionTail finds the fragment being completed inside CSS or color
// function text: everything after the last opening parenthesis, comma,
// or other separator. A bare value returns the whole token.
func functionTail(tok parser.Token) (string, int) {
	cut := -1
	for i := 0; i < len(tok.Text); i++ {
		switch tok.Text[i] {
		case '(', ',', ':', ';', ' ', '\t', '\n':
			cut = i
		}
	}
	return tok.Text[cut+1:], tok.Start + cut + 1
}

// insideVar reports whether the token has an unclosed var( reference at
// its end, meaning a variable name is being typed.
func insideVar(s string) bool {
	i := strings.LastIndex(s, "var(")
	if i < 0 {
		return false
	}
	return !strings.Contains(s[i+4:], ")")
}

func lastWord(s string) (string, int) {
	i := strings.LastIndexAny(s, " \t")
	return s[i+1:], i + 1
}

// definitionNames collects the names an action reference can target from
// the document itself: context or repository keys, plus branch points
// for sublime-syntax.
func definitionNames(text string, d dialect.Dialect) (contexts, branchPoints []string) {
	doc := parser.Walk(text, d)
	var section *parser.Node
	switch d {
	case dialect.SublimeSyntax:
		section = doc.At(parser.Path{parser.Key("contexts")})
	case dialect.TmLanguage:
		section = doc.At(parser.Path{parser.Key("repository")})
	default:
		return nil, nil
	}
	if section != nil && section.Kind == parser.NodeMap {
		for _, c := range section.Children {
			if c.Key != nil {
				contexts = append(contexts, c.Key.Text)
			}
		}
	}
	sort.Strings(contexts)
	if d == dialect.SublimeSyntax {
		doc.Visit(func(n *parser.Node) bool {
			if n.Kind == parser.NodeScalar && n.Key != nil && n.Key.Text == "branch_point" {
				branchPoints = append(branchPoints, n.Value.Text)
			}
			return true
		})
		sort.Strings(branchPoints)
	}
	return contexts, branchPoints
}

// variableNames lists the document's variables block keys, sorted. Only
// color schemes declare variables.
func variableNames(text string, d dialect.Dialect) []string {
	if d != dialect.ColorScheme {
		return nil
	}
	vars := color.VariablesFrom(parser.Walk(text, d))
	if len(vars) == 0 {
		return nil
	}
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
