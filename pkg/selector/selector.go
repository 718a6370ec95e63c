// Package selector lexes scope selector expressions: dot-separated scope
// name atoms joined by combinators (space, comma, `>`, `-`, `|`, `&`) with
// parenthesized grouping. It never builds a full matcher; consumers only
// need the atoms, balance checks, and the tail segment being typed.
package selector

import (
	"strings"
)

// Atom is one scope name inside a selector, with its byte offset relative
// to the selector string.
type Atom struct {
	Name   string
	Offset int
}

// Problem describes a structural defect found by Check.
type Problem struct {
	Offset  int
	Message string
}

func isCombinator(r byte) bool {
	switch r {
	case ' ', '\t', ',', '>', '-', '|', '&':
		return true
	}
	return false
}

func isNameByte(r byte) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '.', r == '_', r == '+', r == '*':
		return true
	}
	return false
}

// Atoms returns every scope name atom in the selector in document order.
// Combinators and parentheses are skipped; malformed bytes end the current
// atom without failing.
func Atoms(sel string) []Atom {
	var atoms []Atom
	start := -1
	for i := 0; i < len(sel); i++ {
		if isNameByte(sel[i]) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			atoms = append(atoms, Atom{Name: sel[start:i], Offset: start})
			start = -1
		}
	}
	if start >= 0 {
		atoms = append(atoms, Atom{Name: sel[start:], Offset: start})
	}
	return atoms
}

// LastSegment returns the partial atom being typed at the end of the
// selector and its byte offset: the substring after the last combinator or
// opening parenthesis. An empty segment with offset len(sel) means the
// cursor sits right after a combinator.
func LastSegment(sel string) (string, int) {
	for i := len(sel) - 1; i >= 0; i-- {
		if isCombinator(sel[i]) || sel[i] == '(' || sel[i] == ')' {
			return sel[i+1:], i + 1
		}
	}
	return sel, 0
}

// ParenDepth counts unclosed parentheses at the end of the selector.
func ParenDepth(sel string) int {
	depth := 0
	for i := 0; i < len(sel); i++ {
		switch sel[i] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		}
	}
	return depth
}

// Check reports structural problems: unbalanced parentheses, empty groups,
// and combinators with nothing on their right. It never rejects unknown
// scope names; that is the registry's concern.
func Check(sel string) []Problem {
	var problems []Problem

	depth := 0
	for i := 0; i < len(sel); i++ {
		switch sel[i] {
		case '(':
			depth++
			rest := strings.TrimLeft(sel[i+1:], " \t")
			if strings.HasPrefix(rest, ")") {
				problems = append(problems, Problem{Offset: i, Message: "empty selector group"})
			}
		case ')':
			if depth == 0 {
				problems = append(problems, Problem{Offset: i, Message: "unmatched closing parenthesis"})
			} else {
				depth--
			}
		}
	}
	if depth > 0 {
		problems = append(problems, Problem{Offset: len(sel), Message: "unclosed parenthesis in selector"})
	}

	trimmed := strings.TrimRight(sel, " \t")
	if trimmed != "" {
		last := trimmed[len(trimmed)-1]
		if last == ',' || last == '>' || last == '-' || last == '|' || last == '&' {
			problems = append(problems, Problem{Offset: len(trimmed) - 1, Message: "selector ends with a dangling combinator"})
		}
	}

	return problems
}

// IsScopeName reports whether s is a bare dot-separated scope name with no
// selector operators, as required in assignment position (a syntax rule's
// scope key).
func IsScopeName(s string) bool {
	if s == "" {
		return false
	}
	for _, part := range strings.Split(s, ".") {
		if part == "" {
			return false
		}
	}
	for i := 0; i < len(s); i++ {
		if !isNameByte(s[i]) {
			return false
		}
	}
	return true
}

// SplitAssignment splits a scope assignment value (space-separated scope
// names) into atoms with offsets. Used for `scope:`-style keys where each
// word is an independent name.
func SplitAssignment(value string) []Atom {
	var atoms []Atom
	start := -1
	for i := 0; i < len(value); i++ {
		if value[i] == ' ' || value[i] == '\t' || value[i] == '\n' {
			if start >= 0 {
				atoms = append(atoms, Atom{Name: value[start:i], Offset: start})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		atoms = append(atoms, Atom{Name: value[start:], Offset: start})
	}
	return atoms
}
