// Package hover builds the tooltip for the token under the cursor:
// schema documentation for keys, declaring syntaxes for scope atoms,
// computed values for colors and variable references.
package hover

import (
	"fmt"
	"strings"

	"github.com/forkeith/PackageDev/pkg/color"
	"github.com/forkeith/PackageDev/pkg/dialect"
	"github.com/forkeith/PackageDev/pkg/parser"
	"github.com/forkeith/PackageDev/pkg/position"
	"github.com/forkeith/PackageDev/pkg/schema"
	"github.com/forkeith/PackageDev/pkg/scopes"
	"github.com/forkeith/PackageDev/pkg/selector"
	"github.com/forkeith/PackageDev/pkg/syntaxtest"
)

// Info is the rendered tooltip. Content holds markdown sections; Range is
// the span of text the tooltip describes.
type Info struct {
	Content []string
	Range   position.RawPosition
}

// Hover describes what sits under the cursor. Returns nil when there is
// nothing useful to show.
func Hover(text string, offset int, d dialect.Dialect, reg *scopes.Registry) *Info {
	offset = position.ClampOffset(text, offset)
	if d == dialect.SyntaxTest {
		return testHover(text, offset, reg)
	}
	if schema.Root(d) == nil {
		return nil
	}
	doc := parser.Walk(text, d)
	n, inKey := nodeAt(doc, offset)
	if n == nil {
		return nil
	}
	s, ok := schema.Lookup(d, n.Path)
	if !ok || s == nil {
		return nil
	}
	if inKey {
		return keyHover(n.Key, s)
	}
	var vars map[string]string
	if d == dialect.ColorScheme {
		vars = color.VariablesFrom(doc)
	}
	if d == dialect.Keymap && isSelectorOperand(doc, n) {
		return scopeHover(n.Value, offset, reg)
	}
	switch s.Kind {
	case schema.KindScopeName, schema.KindScopeSelector:
		return scopeHover(n.Value, offset, reg)
	case schema.KindColor:
		return colorHover(n.Value, vars, d)
	case schema.KindCssVariable:
		return cssHover(n.Value, offset, vars)
	}
	return nil
}

// nodeAt finds the deepest node whose key or scalar value spans the
// offset. The bool reports a key hit.
func nodeAt(doc *parser.Document, offset int) (*parser.Node, bool) {
	var found *parser.Node
	inKey := false
	doc.Visit(func(n *parser.Node) bool {
		if n.Key != nil && within(*n.Key, offset) {
			found, inKey = n, true
		}
		if n.Kind == parser.NodeScalar && within(n.Value, offset) {
			found, inKey = n, false
		}
		return true
	})
	return found, inKey
}

func within(p position.RawPosition, offset int) bool {
	return offset >= p.Offset && offset < p.Offset+len(p.Text)
}

func keyHover(key *position.RawPosition, s *schema.Node) *Info {
	content := []string{fmt.Sprintf("`%s` (%s)", key.Text, s.Kind)}
	if s.Doc != "" {
		content = append(content, s.Doc)
	}
	if len(s.Values) > 0 {
		label := "One of"
		if s.WordEnum {
			label = "Any of"
		}
		content = append(content, label+": "+strings.Join(s.Values, ", "))
	}
	return &Info{Content: content, Range: *key}
}

// maxDeclarers caps the listing for broad atoms like "source".
const maxDeclarers = 10

// scopeHover describes the selector atom under the cursor. Without
// anything to say beyond the atom itself it stays silent.
func scopeHover(val position.RawPosition, offset int, reg *scopes.Registry) *Info {
	rel := offset - val.Offset
	var atom selector.Atom
	found := false
	for _, a := range selector.Atoms(val.Text) {
		if rel >= a.Offset && rel < a.Offset+len(a.Name) {
			atom, found = a, true
			break
		}
	}
	if !found {
		return nil
	}
	content := []string{fmt.Sprintf("`%s`", atom.Name)}
	if scopes.WellKnown(atom.Name) {
		content = append(content, "Scope naming convention root.")
	}
	if reg != nil && reg.Len() > 0 {
		if matches := reg.Matching(atom.Name); len(matches) > 0 {
			content = append(content, declaredBy(matches))
		} else if !scopes.WellKnown(atom.Name) {
			content = append(content, "No indexed syntax declares this scope.")
		}
	}
	if len(content) == 1 {
		return nil
	}
	return &Info{
		Content: content,
		Range:   position.RawPosition{Offset: val.Offset + atom.Offset, Text: atom.Name},
	}
}

func declaredBy(matches []scopes.Entry) string {
	var b strings.Builder
	b.WriteString("Declared by:")
	for i, e := range matches {
		if i == maxDeclarers {
			fmt.Fprintf(&b, "\n- and %d more", len(matches)-maxDeclarers)
			break
		}
		fmt.Fprintf(&b, "\n- `%s` in %s", e.Name, e.Source)
		if e.Internal {
			b.WriteString(" (hidden)")
		}
	}
	return b.String()
}

func colorHover(val position.RawPosition, vars map[string]string, d dialect.Dialect) *Info {
	trimmed := strings.TrimSpace(val.Text)
	if trimmed == "" {
		return nil
	}
	if name, ok := color.VarName(trimmed); ok {
		if d != dialect.ColorScheme {
			return nil
		}
		v, err := color.Resolve(trimmed, vars)
		if err != nil {
			return nil
		}
		return &Info{
			Content: []string{fmt.Sprintf("`%s` resolves to `%s`", name, v.Hex()), components(v)},
			Range:   val,
		}
	}
	// Adjuster expressions depend on the colors in effect at draw time.
	if color.IsModExpression(trimmed) {
		return nil
	}
	v, err := color.Parse(trimmed)
	if err != nil {
		return nil
	}
	return &Info{
		Content: []string{fmt.Sprintf("`%s`", v.Hex()), components(v)},
		Range:   val,
	}
}

func components(v color.Value) string {
	if v.A != 255 {
		return fmt.Sprintf("rgba(%d, %d, %d, %.3g)", v.R, v.G, v.B, float64(v.A)/255)
	}
	return fmt.Sprintf("rgb(%d, %d, %d)", v.R, v.G, v.B)
}

// cssHover resolves the var() reference under the cursor inside a css
// block.
func cssHover(val position.RawPosition, offset int, vars map[string]string) *Info {
	name, start, ok := cssVarAt(val.Text, offset-val.Offset)
	if !ok {
		return nil
	}
	rng := position.RawPosition{Offset: val.Offset + start, Text: name}
	for _, b := range color.BuiltinVariables() {
		if name == b {
			return &Info{
				Content: []string{fmt.Sprintf("`%s`", name), "Built-in minihtml variable."},
				Range:   rng,
			}
		}
	}
	raw, declared := vars[name]
	if !declared {
		return nil
	}
	if v, err := color.Resolve(raw, vars); err == nil {
		return &Info{
			Content: []string{fmt.Sprintf("`%s` resolves to `%s`", name, v.Hex()), components(v)},
			Range:   rng,
		}
	}
	return &Info{Content: []string{fmt.Sprintf("`%s` = %s", name, raw)}, Range: rng}
}

// cssVarAt finds the var() argument containing rel, returning the name
// and its start offset within s.
func cssVarAt(s string, rel int) (string, int, bool) {
	for i := 0; i < len(s); {
		j := strings.Index(s[i:], "var(")
		if j < 0 {
			break
		}
		open := i + j + len("var(")
		end := strings.IndexByte(s[open:], ')')
		if end < 0 {
			end = len(s) - open
		}
		arg := s[open : open+end]
		lead := len(arg) - len(strings.TrimLeft(arg, " \t"))
		name := strings.TrimSpace(arg)
		start := open + lead
		if name != "" && rel >= start && rel < start+len(name) {
			return name, start, true
		}
		i = open + end + 1
	}
	return "", 0, false
}

// isSelectorOperand reports whether n is a key binding context operand
// whose sibling "key" makes it a scope selector.
func isSelectorOperand(doc *parser.Document, n *parser.Node) bool {
	if len(n.Path) == 0 {
		return false
	}
	last := n.Path[len(n.Path)-1]
	if last.IsIndex || last.Key != "operand" {
		return false
	}
	entry := doc.At(n.Path[:len(n.Path)-1])
	if entry == nil {
		return false
	}
	keyed := entry.Entry("key")
	if keyed == nil || keyed.Kind != parser.NodeScalar {
		return false
	}
	switch keyed.Value.Text {
	case "selector", "eol_selector":
		return true
	}
	return false
}

// testHover describes the scope atom under the cursor on a syntax test
// assertion line.
func testHover(text string, offset int, reg *scopes.Registry) *Info {
	f := syntaxtest.Parse(text)
	for _, a := range f.Assertions {
		if a.Selector == "" {
			continue
		}
		if offset < a.SelectorStart || offset >= a.SelectorStart+len(a.Selector) {
			continue
		}
		return scopeHover(position.RawPosition{Offset: a.SelectorStart, Text: a.Selector}, offset, reg)
	}
	return nil
}
