package scopes

// wellKnownPrefixes are the first atoms of the scope naming conventions.
// They are legal selector atoms even when no indexed syntax declares a
// scope under them.
var wellKnownPrefixes = []string{
	"comment", "constant", "entity", "invalid", "keyword", "markup",
	"meta", "punctuation", "source", "storage", "string", "support",
	"text", "variable",
}

// WellKnownPrefixes returns the conventional top-level scope atoms in
// sorted order.
func WellKnownPrefixes() []string {
	out := make([]string, len(wellKnownPrefixes))
	copy(out, wellKnownPrefixes)
	return out
}

// WellKnown reports whether the atom is exactly one of the conventional
// top-level scope atoms. Refinements still answer to the registry.
func WellKnown(atom string) bool {
	for _, p := range wellKnownPrefixes {
		if atom == p {
			return true
		}
	}
	return false
}
