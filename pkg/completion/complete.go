package completion

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agext/levenshtein"

	"github.com/forkeith/PackageDev/pkg/color"
	"github.com/forkeith/PackageDev/pkg/dialect"
	"github.com/forkeith/PackageDev/pkg/parser"
	"github.com/forkeith/PackageDev/pkg/schema"
	"github.com/forkeith/PackageDev/pkg/scopes"
)

// ItemKind labels the source category of a completion item.
type ItemKind string

const (
	ItemKey      ItemKind = "key"
	ItemValue    ItemKind = "value"
	ItemScope    ItemKind = "scope"
	ItemContext  ItemKind = "context"
	ItemSyntax   ItemKind = "syntax"
	ItemVariable ItemKind = "variable"
	ItemColor    ItemKind = "color"
	ItemSnippet  ItemKind = "snippet"
)

// Item is one completion suggestion. InsertText is already escaped for
// the document's string syntax; hosts display items in SortText order.
type Item struct {
	Label      string
	Kind       ItemKind
	InsertText string
	Detail     string
	// Documentation carries a longer description when the source has
	// one, empty otherwise.
	Documentation string
	SortText      string
}

type candidate struct {
	item Item
	// internal entries sort after everything else regardless of match
	// quality.
	internal bool
}

// Options tune candidate generation. The zero value disables fuzzy
// matching and hides internal scopes; DefaultOptions matches editor
// behavior.
type Options struct {
	// MaxFuzzyDistance is the largest edit distance still counted as a
	// near miss when the typed segment matches nothing directly.
	MaxFuzzyDistance int
	// IncludeInternal keeps scopes contributed by hidden syntaxes in
	// the results. They rank after everything else either way.
	IncludeInternal bool
}

// DefaultOptions returns the tuning used when the host does not supply
// its own.
func DefaultOptions() Options {
	return Options{MaxFuzzyDistance: fuzzyMaxDistance, IncludeInternal: true}
}

// Complete classifies the cursor position and generates completions in
// one call. The registry may be nil; registry-backed sources are then
// skipped.
func Complete(text string, offset int, d dialect.Dialect, reg *scopes.Registry) []Item {
	return CompleteWith(text, offset, d, reg, DefaultOptions())
}

// CompleteWith is Complete with explicit tuning.
func CompleteWith(text string, offset int, d dialect.Dialect, reg *scopes.Registry, opts Options) []Item {
	return generate(Classify(text, offset, d), reg, opts)
}

// Generate produces the ranked, deduplicated completion list for a
// classified context. The result is deterministic for a given context
// and registry snapshot.
func Generate(ctx Context, reg *scopes.Registry) []Item {
	return generate(ctx, reg, DefaultOptions())
}

func generate(ctx Context, reg *scopes.Registry, opts Options) []Item {
	var cands []candidate
	switch ctx.Kind {
	case KeyName:
		cands = keyCandidates(ctx)
	case ValueEnum:
		cands = enumCandidates(ctx)
	case ScopeSelector:
		cands = scopeCandidates(ctx, reg)
	case CssVariable:
		cands = cssVariableCandidates(ctx)
	case Color:
		cands = colorCandidates(ctx)
	case ActionName:
		cands = actionCandidates(ctx, reg)
	default:
		return nil
	}
	if !opts.IncludeInternal {
		kept := cands[:0]
		for _, c := range cands {
			if !c.internal {
				kept = append(kept, c)
			}
		}
		cands = kept
	}
	return rank(cands, ctx, opts.MaxFuzzyDistance)
}

func keyCandidates(ctx Context) []candidate {
	used := make(map[string]bool, len(ctx.Siblings))
	for _, k := range ctx.Siblings {
		used[k] = true
	}
	var out []candidate
	for _, name := range ctx.Node.ChildNames() {
		child := ctx.Node.Children[name]
		if used[name] && !child.Repeatable {
			continue
		}
		out = append(out, candidate{item: Item{
			Label:         name,
			Kind:          ItemKey,
			InsertText:    escapeInsert(name, ctx),
			Detail:        child.Kind.String(),
			Documentation: child.Doc,
		}})
	}
	return out
}

func enumCandidates(ctx Context) []candidate {
	values := ctx.Node.Values
	if ctx.Node.Kind == schema.KindBool {
		values = []string{"false", "true"}
	}
	var used map[string]bool
	if ctx.Node.WordEnum {
		used = make(map[string]bool)
		head := ctx.Token.Text[:ctx.SegmentStart-ctx.Token.Start]
		for _, w := range strings.Fields(head) {
			used[w] = true
		}
	}
	var out []candidate
	for _, v := range values {
		if used[v] {
			continue
		}
		out = append(out, candidate{item: Item{
			Label:      v,
			Kind:       ItemValue,
			InsertText: escapeInsert(v, ctx),
			Detail:     ctx.Node.Name,
		}})
	}
	return out
}

func scopeCandidates(ctx Context, reg *scopes.Registry) []candidate {
	var out []candidate
	if reg != nil {
		// The segment query surfaces internal scopes behind their dotted
		// prefix gate; the empty query supplies the full public universe
		// so ranking can still catch near misses the filter would hide.
		entries := reg.Query(ctx.Segment)
		if ctx.Segment != "" {
			entries = append(entries, reg.Query("")...)
		}
		for _, e := range entries {
			out = append(out, candidate{
				item: Item{
					Label:      e.Name,
					Kind:       ItemScope,
					InsertText: escapeInsert(e.Name, ctx),
					Detail:     e.Source,
				},
				internal: e.Internal,
			})
		}
	}
	for _, p := range scopes.WellKnownPrefixes() {
		out = append(out, candidate{item: Item{
			Label:      p,
			Kind:       ItemScope,
			InsertText: escapeInsert(p, ctx),
			Detail:     "scope naming convention",
		}})
	}
	return out
}

func cssVariableCandidates(ctx Context) []candidate {
	if !insideVar(ctx.Token.Text) {
		return nil
	}
	var out []candidate
	for _, name := range ctx.Variables {
		if !strings.HasPrefix(name, "--") {
			continue
		}
		out = append(out, candidate{item: Item{
			Label:      name,
			Kind:       ItemVariable,
			InsertText: escapeInsert(name, ctx),
			Detail:     "color scheme variable",
		}})
	}
	for _, name := range color.BuiltinVariables() {
		out = append(out, candidate{item: Item{
			Label:      name,
			Kind:       ItemVariable,
			InsertText: escapeInsert(name, ctx),
			Detail:     "minihtml built-in",
		}})
	}
	return out
}

func colorCandidates(ctx Context) []candidate {
	if insideVar(ctx.Token.Text) {
		out := make([]candidate, 0, len(ctx.Variables))
		for _, name := range ctx.Variables {
			out = append(out, candidate{item: Item{
				Label:      name,
				Kind:       ItemVariable,
				InsertText: escapeInsert(name, ctx),
				Detail:     "color scheme variable",
			}})
		}
		return out
	}
	var out []candidate
	for _, name := range color.Names() {
		it := Item{
			Label:      name,
			Kind:       ItemColor,
			InsertText: escapeInsert(name, ctx),
		}
		if v, ok := color.Named(name); ok {
			it.Detail = v.Hex()
		}
		out = append(out, candidate{item: it})
	}
	for _, name := range ctx.Variables {
		ref := "var(" + name + ")"
		out = append(out, candidate{item: Item{
			Label:      ref,
			Kind:       ItemVariable,
			InsertText: escapeInsert(ref, ctx),
			Detail:     "variable reference",
		}})
	}
	return append(out, colorTemplates(ctx)...)
}

func colorTemplates(ctx Context) []candidate {
	templates := []Item{
		{Label: "rgb()", InsertText: "rgb(${1:255}, ${2:255}, ${3:255})", Documentation: "red, green, blue channels 0-255"},
		{Label: "rgba()", InsertText: "rgba(${1:255}, ${2:255}, ${3:255}, ${4:1.0})", Documentation: "rgb with alpha 0-1"},
		{Label: "hsl()", InsertText: "hsl(${1:0}, ${2:100}%, ${3:50}%)", Documentation: "hue 0-360, saturation and lightness in percent"},
		{Label: "hsla()", InsertText: "hsla(${1:0}, ${2:100}%, ${3:50}%, ${4:1.0})", Documentation: "hsl with alpha 0-1"},
		{Label: "var()", InsertText: "var($1)", Documentation: "reference a variables entry"},
	}
	out := make([]candidate, 0, len(templates))
	for _, t := range templates {
		t.Kind = ItemSnippet
		t.Detail = "template"
		t.InsertText = escapeInsert(t.InsertText, ctx)
		out = append(out, candidate{item: t})
	}
	return out
}

func actionCandidates(ctx Context, reg *scopes.Registry) []candidate {
	if ctx.Dialect == dialect.SyntaxTest || (ctx.Node != nil && ctx.Node.Kind == schema.KindSyntaxRef) {
		return syntaxPathCandidates(ctx, reg)
	}

	var out []candidate
	key := lastKeyOf(ctx.Path)
	switch {
	case key == "fail":
		for _, b := range ctx.BranchPoints {
			out = append(out, candidate{item: Item{
				Label:      b,
				Kind:       ItemContext,
				InsertText: escapeInsert(b, ctx),
				Detail:     "branch point in this file",
			}})
		}
	case ctx.Dialect == dialect.TmLanguage:
		for _, name := range ctx.ContextNames {
			ref := "#" + name
			out = append(out, candidate{item: Item{
				Label:      ref,
				Kind:       ItemContext,
				InsertText: escapeInsert(ref, ctx),
				Detail:     "repository entry",
			}})
		}
		out = append(out,
			candidate{item: Item{Label: "$self", Kind: ItemContext, InsertText: escapeInsert("$self", ctx), Detail: "this grammar"}},
			candidate{item: Item{Label: "$base", Kind: ItemContext, InsertText: escapeInsert("$base", ctx), Detail: "the embedding grammar"}},
		)
		if reg != nil {
			for _, f := range reg.SyntaxFiles() {
				if f.Scope == "" {
					continue
				}
				out = append(out, candidate{item: Item{
					Label:      f.Scope,
					Kind:       ItemSyntax,
					InsertText: escapeInsert(f.Scope, ctx),
					Detail:     f.Path,
				}})
			}
		}
	default:
		for _, name := range ctx.ContextNames {
			out = append(out, candidate{item: Item{
				Label:      name,
				Kind:       ItemContext,
				InsertText: escapeInsert(name, ctx),
				Detail:     "context in this file",
			}})
		}
		if crossFileAction(key) && reg != nil {
			for _, f := range reg.SyntaxFiles() {
				if f.Scope == "" {
					continue
				}
				ref := "scope:" + f.Scope
				out = append(out, candidate{item: Item{
					Label:      ref,
					Kind:       ItemSyntax,
					InsertText: escapeInsert(ref, ctx),
					Detail:     f.Path,
				}})
			}
		}
	}
	return out
}

// crossFileAction reports whether the action accepts scope: references
// to other syntax definitions besides local context names. Branch
// targets and fail never cross files.
func crossFileAction(key string) bool {
	switch key {
	case "push", "set", "embed", "include":
		return true
	}
	return false
}

func syntaxPathCandidates(ctx Context, reg *scopes.Registry) []candidate {
	if reg == nil {
		return nil
	}
	files := reg.SyntaxFiles()
	out := make([]candidate, 0, len(files))
	for _, f := range files {
		path := "Packages/" + f.Path
		detail := f.Name
		if detail == "" {
			detail = f.Scope
		}
		out = append(out, candidate{
			item: Item{
				Label:      path,
				Kind:       ItemSyntax,
				InsertText: escapeInsert(path, ctx),
				Detail:     detail,
			},
			internal: f.Hidden,
		})
	}
	return out
}

func lastKeyOf(path parser.Path) string {
	for i := len(path) - 1; i >= 0; i-- {
		if !path[i].IsIndex {
			return path[i].Key
		}
	}
	return ""
}

// Match tiers: exact prefix, then substring, then near misses within a
// small edit distance, then everything else.
const fuzzyMaxDistance = 2

// rank orders candidates by match quality against the context's segment,
// alphabetically within a tier, internal entries last. Duplicate
// insertion texts keep only their best-ranked occurrence, and each
// surviving item gets a fixed-width SortText hosts can sort on verbatim.
func rank(cands []candidate, ctx Context, maxDist int) []Item {
	seg := ctx.Segment
	fold := foldCase(ctx.Kind)
	if fold {
		seg = strings.ToLower(seg)
	}

	type scored struct {
		candidate
		tier int
	}
	all := make([]scored, len(cands))
	for i, c := range cands {
		all[i] = scored{candidate: c, tier: matchTier(c.item.Label, seg, fold, maxDist)}
	}
	sort.SliceStable(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.internal != b.internal {
			return !a.internal
		}
		if a.tier != b.tier {
			return a.tier < b.tier
		}
		return a.item.Label < b.item.Label
	})

	items := make([]Item, 0, len(all))
	seen := make(map[string]bool, len(all))
	for _, s := range all {
		if seen[s.item.InsertText] {
			continue
		}
		seen[s.item.InsertText] = true
		s.item.SortText = fmt.Sprintf("%04d", len(items))
		items = append(items, s.item)
	}
	return items
}

// foldCase reports whether matching ignores case for this kind. Scope
// names and CSS variables are case-sensitive by convention.
func foldCase(k Kind) bool {
	switch k {
	case KeyName, ValueEnum, ActionName, Color:
		return true
	}
	return false
}

func matchTier(label, seg string, fold bool, maxDist int) int {
	if seg == "" {
		return 0
	}
	if fold {
		label = strings.ToLower(label)
	}
	switch {
	case strings.HasPrefix(label, seg):
		return 0
	case strings.Contains(label, seg):
		return 1
	case len(seg) >= 3 && maxDist > 0 && nearMiss(label, seg, maxDist):
		return 2
	default:
		return 3
	}
}

// nearMiss tolerates typos: the segment is compared against the whole
// label, each dotted part, and the label's prefix of the same length, so
// "strign" still finds string.quoted.double.
func nearMiss(label, seg string, maxDist int) bool {
	if levenshtein.Distance(label, seg, nil) <= maxDist {
		return true
	}
	for _, part := range strings.Split(label, ".") {
		if levenshtein.Distance(part, seg, nil) <= maxDist {
			return true
		}
	}
	if len(label) > len(seg) {
		if levenshtein.Distance(label[:len(seg)], seg, nil) <= maxDist {
			return true
		}
	}
	return false
}
