// Package diagnostic walks whole documents and reports advisory findings:
// unknown keys, scopes nobody declares, malformed selectors, colors that
// do not parse, undefined or cyclic variables, enum violations, repeated
// keys, and syntax test problems. Validation never fails and never blocks
// editing; malformed regions simply contribute no findings beneath them.
package diagnostic

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/forkeith/PackageDev/pkg/color"
	"github.com/forkeith/PackageDev/pkg/dialect"
	"github.com/forkeith/PackageDev/pkg/parser"
	"github.com/forkeith/PackageDev/pkg/schema"
	"github.com/forkeith/PackageDev/pkg/scopes"
	"github.com/forkeith/PackageDev/pkg/selector"
	"github.com/forkeith/PackageDev/pkg/syntaxtest"
)

// Severity grades a finding. There is no error level on purpose: every
// finding is advisory.
type Severity string

const (
	// Warning marks values that are definitely wrong in this document:
	// colors that cannot parse, enum violations, broken selectors.
	Warning Severity = "warning"
	// Info marks misses against the indexed environment, which may be
	// incomplete: unknown keys and scope names.
	Info Severity = "info"
)

// Finding is one advisory message anchored to a byte range of the
// document.
type Finding struct {
	Start    int
	End      int
	Severity Severity
	Message  string
}

// Validate checks a whole document and returns findings ordered by
// position. It never raises; unparseable regions yield nothing. A nil or
// empty registry skips scope existence checks.
func Validate(text string, d dialect.Dialect, reg *scopes.Registry) []Finding {
	v := &validator{dialect: d, reg: reg}
	if d == dialect.SyntaxTest {
		v.syntaxTest(text)
		return v.sorted()
	}
	root := schema.Root(d)
	if root == nil {
		return nil
	}
	doc := parser.Walk(text, d)
	if doc.Root == nil {
		return nil
	}
	if d == dialect.ColorScheme {
		v.vars = color.VariablesFrom(doc)
	}
	v.node(doc.Root, root)
	if d == dialect.ColorScheme {
		v.variableCycles(doc)
	}
	return v.sorted()
}

type validator struct {
	dialect  dialect.Dialect
	reg      *scopes.Registry
	vars     map[string]string
	findings []Finding
}

func (v *validator) add(start, end int, sev Severity, format string, args ...any) {
	v.findings = append(v.findings, Finding{
		Start:    start,
		End:      end,
		Severity: sev,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (v *validator) sorted() []Finding {
	sort.SliceStable(v.findings, func(i, j int) bool {
		return v.findings[i].Start < v.findings[j].Start
	})
	return v.findings
}

func (v *validator) node(n *parser.Node, s *schema.Node) {
	if n == nil || s == nil {
		return
	}
	switch n.Kind {
	case parser.NodeMap:
		v.mapNode(n, s)
	case parser.NodeList:
		if s.Kind != schema.KindList {
			return
		}
		for _, c := range n.Children {
			v.node(c, s.Elem)
		}
	case parser.NodeScalar:
		v.scalar(n, s)
	}
}

func (v *validator) mapNode(n *parser.Node, s *schema.Node) {
	if s.Kind != schema.KindMap {
		return
	}
	selectorOperand := v.dialect == dialect.Keymap && wantsSelectorOperand(n)
	seen := make(map[string]bool, len(n.Children))
	for _, c := range n.Children {
		if c.Key == nil {
			continue
		}
		key := c.Key.Text
		cs := s.Child(key)
		if cs == nil {
			v.add(c.Key.Offset, c.Key.Offset+len(key), Info, "unknown key %q", key)
			continue
		}
		if seen[key] && !cs.Repeatable {
			v.add(c.Key.Offset, c.Key.Offset+len(key), Warning, "key %q repeated in the same block", key)
		}
		seen[key] = true
		if selectorOperand && key == "operand" && c.Kind == parser.NodeScalar {
			v.selectorValue(c.Value.Offset, c.Value.Text)
			continue
		}
		v.node(c, cs)
	}
}

// wantsSelectorOperand reports whether a key binding context entry's
// operand holds a scope selector, decided by its sibling "key" value.
func wantsSelectorOperand(n *parser.Node) bool {
	keyed := n.Entry("key")
	if keyed == nil || keyed.Kind != parser.NodeScalar {
		return false
	}
	switch keyed.Value.Text {
	case "selector", "eol_selector":
		return true
	}
	return false
}

func (v *validator) scalar(n *parser.Node, s *schema.Node) {
	val := n.Value.Text
	start := n.Value.Offset
	end := start + len(val)
	if strings.TrimSpace(val) == "" {
		return
	}
	switch s.Kind {
	case schema.KindScopeName:
		for _, a := range selector.SplitAssignment(val) {
			if !selector.IsScopeName(a.Name) {
				v.add(start+a.Offset, start+a.Offset+len(a.Name), Warning,
					"%q is not a valid scope name", a.Name)
			}
		}
	case schema.KindScopeSelector:
		v.selectorValue(start, val)
	case schema.KindColor:
		v.colorValue(start, val)
	case schema.KindCssVariable:
		v.cssValue(start, val)
	case schema.KindEnum:
		v.enumValue(start, val, s)
	case schema.KindBool:
		switch val {
		case "true", "false":
		default:
			v.add(start, end, Warning, "expected true or false, got %q", val)
		}
	case schema.KindNumber:
		if _, err := strconv.ParseFloat(val, 64); err != nil {
			v.add(start, end, Warning, "expected a number, got %q", val)
		}
	}
}

func (v *validator) enumValue(start int, val string, s *schema.Node) {
	allowed := func(w string) bool {
		for _, a := range s.Values {
			if w == a {
				return true
			}
		}
		return false
	}
	if !s.WordEnum {
		if !allowed(val) {
			v.add(start, start+len(val), Warning, "%q is not one of %s",
				val, strings.Join(s.Values, ", "))
		}
		return
	}
	for _, w := range selector.SplitAssignment(val) {
		if !allowed(w.Name) {
			v.add(start+w.Offset, start+w.Offset+len(w.Name), Warning,
				"%q is not one of %s", w.Name, strings.Join(s.Values, ", "))
		}
	}
}

func (v *validator) selectorValue(start int, sel string) {
	for _, p := range selector.Check(sel) {
		end := start + p.Offset
		if p.Offset < len(sel) {
			end++
		}
		v.add(start+p.Offset, end, Warning, "%s", p.Message)
	}
	v.scopeAtoms(start, sel)
}

// scopeAtoms flags selector atoms no indexed syntax declares. The naming
// convention prefixes always pass; an empty registry disables the check
// rather than flagging everything.
func (v *validator) scopeAtoms(start int, sel string) {
	if v.reg == nil || v.reg.Len() == 0 {
		return
	}
	for _, a := range selector.Atoms(sel) {
		if scopes.WellKnown(a.Name) || v.reg.Covers(a.Name) {
			continue
		}
		v.add(start+a.Offset, start+a.Offset+len(a.Name), Info, "unknown scope %q", a.Name)
	}
}

func (v *validator) colorValue(start int, val string) {
	trimmed := strings.TrimSpace(val)
	end := start + len(val)
	if name, ok := color.VarName(trimmed); ok {
		if v.dialect != dialect.ColorScheme {
			v.add(start, end, Warning, "variables are not available in this format")
			return
		}
		if _, declared := v.vars[name]; !declared {
			v.add(start, end, Warning, "undefined variable %q", name)
		}
		return
	}
	if color.IsModExpression(trimmed) {
		// Adjuster expressions cannot be evaluated statically, but their
		// var() arguments can still be resolved.
		v.varRefsDeclared(start, val)
		return
	}
	if _, err := color.Parse(trimmed); err != nil {
		v.add(start, end, Warning, "%s", err)
	}
}

func (v *validator) cssValue(start int, val string) {
	builtins := color.BuiltinVariables()
	builtin := func(name string) bool {
		for _, b := range builtins {
			if name == b {
				return true
			}
		}
		return false
	}
	for _, ref := range varRefs(val) {
		if !ref.closed {
			v.add(start+ref.off, start+len(val), Warning, "unclosed var()")
			continue
		}
		if builtin(ref.name) {
			continue
		}
		if _, declared := v.vars[ref.name]; declared && strings.HasPrefix(ref.name, "--") {
			continue
		}
		v.add(start+ref.off, start+ref.end, Info, "unknown css variable %q", ref.name)
	}
}

// varRefsDeclared checks every var() inside a larger color expression
// against the declared variables.
func (v *validator) varRefsDeclared(start int, val string) {
	for _, ref := range varRefs(val) {
		if !ref.closed {
			v.add(start+ref.off, start+len(val), Warning, "unclosed var()")
			continue
		}
		if _, declared := v.vars[ref.name]; !declared {
			v.add(start+ref.off, start+ref.end, Warning, "undefined variable %q", ref.name)
		}
	}
}

type varRef struct {
	name   string
	off    int
	end    int
	closed bool
}

func varRefs(s string) []varRef {
	var out []varRef
	for i := 0; i < len(s); {
		j := strings.Index(s[i:], "var(")
		if j < 0 {
			break
		}
		open := i + j + len("var(")
		k := strings.IndexByte(s[open:], ')')
		if k < 0 {
			out = append(out, varRef{name: strings.TrimSpace(s[open:]), off: i + j})
			break
		}
		out = append(out, varRef{
			name:   strings.TrimSpace(s[open : open+k]),
			off:    i + j,
			end:    open + k + 1,
			closed: true,
		})
		i = open + k + 1
	}
	return out
}

// variableCycles walks the variables block and flags reference chains
// that come back around to a variable already on the chain.
func (v *validator) variableCycles(doc *parser.Document) {
	section := doc.At(parser.Path{parser.Key("variables")})
	if section == nil || section.Kind != parser.NodeMap {
		return
	}
	for _, c := range section.Children {
		if c.Key == nil || c.Kind != parser.NodeScalar {
			continue
		}
		name, ok := color.VarName(strings.TrimSpace(c.Value.Text))
		if !ok {
			continue
		}
		seen := map[string]bool{c.Key.Text: true}
		for {
			if seen[name] {
				v.add(c.Value.Offset, c.Value.Offset+len(c.Value.Text), Warning,
					"cyclic variable reference through %q", name)
				break
			}
			seen[name] = true
			next, declared := v.vars[name]
			if !declared {
				break
			}
			name, ok = color.VarName(strings.TrimSpace(next))
			if !ok {
				break
			}
		}
	}
}

func (v *validator) syntaxTest(text string) {
	f := syntaxtest.Parse(text)
	if !f.HasHeader {
		first := text
		if i := strings.IndexByte(text, '\n'); i >= 0 {
			first = text[:i]
		}
		switch {
		case strings.Contains(first, "SYNTAX TEST"):
			v.add(0, len(first), Warning, "malformed SYNTAX TEST header")
		case strings.Contains(text, "SYNTAX TEST"):
			at := strings.Index(text, "SYNTAX TEST")
			v.add(at, at+len("SYNTAX TEST"), Warning,
				"the SYNTAX TEST header must be on the first line")
		default:
			v.add(0, len(first), Warning, "missing SYNTAX TEST header")
		}
		return
	}
	for _, a := range f.Assertions {
		if a.Selector == "" {
			v.add(a.SelectorStart, a.SelectorStart, Warning,
				"assertion is missing a scope selector")
			continue
		}
		for _, p := range selector.Check(a.Selector) {
			end := a.SelectorStart + p.Offset
			if p.Offset < len(a.Selector) {
				end++
			}
			v.add(a.SelectorStart+p.Offset, end, Warning, "%s", p.Message)
		}
		v.scopeAtoms(a.SelectorStart, a.Selector)
	}
}
