// Package color parses the color literal grammar of color scheme files:
// hex forms (#RGB, #RGBA, #RRGGBB, #RRGGBBAA), rgb()/rgba() and
// hsl()/hsla() functions, CSS named colors, and var() references resolved
// against a scheme's variables section. Values normalize to RGBA bytes so
// every spelling of a color compares and renders the same way.
package color

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/forkeith/PackageDev/pkg/parser"
	"github.com/lucasb-eyer/go-colorful"
	"gitlab.com/tozd/go/errors"
)

// Value is a parsed color, normalized to RGBA bytes. A is 255 for fully
// opaque colors.
type Value struct {
	R, G, B, A uint8
}

// Hex renders the canonical lowercase hex form, with an alpha byte only
// when the color is not fully opaque.
func (v Value) Hex() string {
	if v.A == 255 {
		return fmt.Sprintf("#%02x%02x%02x", v.R, v.G, v.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", v.R, v.G, v.B, v.A)
}

func (v Value) String() string {
	return v.Hex()
}

// Parse interprets a single color literal. var() references and color()
// adjuster expressions are not literals; they fail here and are handled by
// Resolve and IsModExpression respectively.
func Parse(s string) (Value, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Value{}, errors.New("empty color value")
	}
	if s[0] == '#' {
		return parseHex(s)
	}
	if open := strings.IndexByte(s, '('); open >= 0 && strings.HasSuffix(s, ")") {
		args := s[open+1 : len(s)-1]
		switch strings.ToLower(strings.TrimSpace(s[:open])) {
		case "rgb", "rgba":
			return parseRGB(args)
		case "hsl", "hsla":
			return parseHSL(args)
		case "var":
			return Value{}, errors.Errorf("unresolved variable reference %q", s)
		case "color":
			return Value{}, errors.Errorf("color() expression %q cannot be evaluated statically", s)
		}
		return Value{}, errors.Errorf("unknown color function in %q", s)
	}
	if v, ok := Named(s); ok {
		return v, nil
	}
	return Value{}, errors.Errorf("unrecognized color %q", s)
}

func parseHex(s string) (Value, error) {
	digits := s[1:]
	for i := 0; i < len(digits); i++ {
		if !isHexDigit(digits[i]) {
			return Value{}, errors.Errorf("bad hex digit in color %q", s)
		}
	}
	switch len(digits) {
	case 3, 6:
		r, g, b, err := hexRGB(s)
		if err != nil {
			return Value{}, err
		}
		return Value{r, g, b, 255}, nil
	case 4:
		r, g, b, err := hexRGB(s[:4])
		if err != nil {
			return Value{}, err
		}
		n, _ := strconv.ParseUint(digits[3:], 16, 8)
		return Value{r, g, b, uint8(n * 0x11)}, nil
	case 8:
		r, g, b, err := hexRGB(s[:7])
		if err != nil {
			return Value{}, err
		}
		n, _ := strconv.ParseUint(digits[6:], 16, 8)
		return Value{r, g, b, uint8(n)}, nil
	}
	return Value{}, errors.Errorf("hex color %q must have 3, 4, 6, or 8 digits", s)
}

func hexRGB(s string) (r, g, b uint8, err error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return 0, 0, 0, errors.Errorf("parsing hex color %q: %w", s, err)
	}
	r, g, b = c.RGB255()
	return r, g, b, nil
}

func isHexDigit(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

func parseRGB(args string) (Value, error) {
	parts, err := splitArgs(args, "rgb")
	if err != nil {
		return Value{}, err
	}
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		ch[i], err = parseChannel(parts[i])
		if err != nil {
			return Value{}, err
		}
	}
	a := uint8(255)
	if len(parts) == 4 {
		a, err = parseAlpha(parts[3])
		if err != nil {
			return Value{}, err
		}
	}
	return Value{ch[0], ch[1], ch[2], a}, nil
}

func parseHSL(args string) (Value, error) {
	parts, err := splitArgs(args, "hsl")
	if err != nil {
		return Value{}, err
	}
	h, err := parseHue(parts[0])
	if err != nil {
		return Value{}, err
	}
	sat, err := parseFraction(parts[1])
	if err != nil {
		return Value{}, err
	}
	light, err := parseFraction(parts[2])
	if err != nil {
		return Value{}, err
	}
	a := uint8(255)
	if len(parts) == 4 {
		a, err = parseAlpha(parts[3])
		if err != nil {
			return Value{}, err
		}
	}
	r, g, b := hslChannels(h, sat, light)
	return Value{r, g, b, a}, nil
}

// hslChannels converts hue, saturation, lightness to rounded RGB bytes
// using the piecewise chroma form. Half-steps like hsl(210, 100%, 50%)
// stay exact, so the green channel rounds to 0x80 instead of landing a
// hair under and truncating.
func hslChannels(h, s, l float64) (uint8, uint8, uint8) {
	c := (1 - math.Abs(2*l-1)) * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := l - c/2
	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return clamp255((r + m) * 255), clamp255((g + m) * 255), clamp255((b + m) * 255)
}

func splitArgs(args, fn string) ([]string, error) {
	parts := strings.Split(args, ",")
	if len(parts) != 3 && len(parts) != 4 {
		return nil, errors.Errorf("%s() takes 3 or 4 arguments, got %d", fn, len(parts))
	}
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
		if parts[i] == "" {
			return nil, errors.Errorf("%s() has an empty argument", fn)
		}
	}
	return parts, nil
}

// parseChannel reads an rgb() component: 0-255 or a percentage. Out of
// range values clamp instead of failing, matching how schemes render.
func parseChannel(s string) (uint8, error) {
	if strings.HasSuffix(s, "%") {
		f, err := parseNumber(strings.TrimSuffix(s, "%"))
		if err != nil {
			return 0, err
		}
		return clamp255(f * 255 / 100), nil
	}
	f, err := parseNumber(s)
	if err != nil {
		return 0, err
	}
	return clamp255(f), nil
}

// parseFraction reads a saturation or lightness component: a percentage,
// or a bare 0-1 fraction.
func parseFraction(s string) (float64, error) {
	pct := strings.HasSuffix(s, "%")
	f, err := parseNumber(strings.TrimSuffix(s, "%"))
	if err != nil {
		return 0, err
	}
	if pct {
		f /= 100
	}
	return clamp01(f), nil
}

func parseHue(s string) (float64, error) {
	f, err := parseNumber(strings.TrimSuffix(s, "deg"))
	if err != nil {
		return 0, err
	}
	f = math.Mod(f, 360)
	if f < 0 {
		f += 360
	}
	return f, nil
}

func parseAlpha(s string) (uint8, error) {
	f, err := parseFraction(s)
	if err != nil {
		return 0, err
	}
	return uint8(math.Round(f * 255)), nil
}

func parseNumber(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, errors.Errorf("parsing color component %q: %w", s, err)
	}
	return f, nil
}

func clamp255(f float64) uint8 {
	if f < 0 {
		return 0
	}
	if f > 255 {
		return 255
	}
	return uint8(math.Round(f))
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// VarName extracts the variable name from a var() reference. The name may
// carry the -- prefix of the minihtml CSS variables.
func VarName(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "var(") || !strings.HasSuffix(s, ")") {
		return "", false
	}
	name := strings.TrimSpace(s[len("var(") : len(s)-1])
	if name == "" || strings.ContainsAny(name, "(),") {
		return "", false
	}
	return name, true
}

// IsModExpression reports whether s uses the color() adjuster syntax
// (blending, alpha adjustment against a base color). Those evaluate
// against the colors already in effect, so validation accepts them
// without computing a value.
func IsModExpression(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "color(") && strings.HasSuffix(s, ")")
}

// Resolve follows var() references through the variables table until a
// literal is reached, then parses it. Undefined names and reference
// cycles are errors.
func Resolve(s string, vars map[string]string) (Value, error) {
	cur := s
	seen := make(map[string]bool)
	for {
		name, ok := VarName(cur)
		if !ok {
			return Parse(cur)
		}
		if seen[name] {
			return Value{}, errors.Errorf("cyclic variable reference through %q", name)
		}
		seen[name] = true
		next, ok := vars[name]
		if !ok {
			return Value{}, errors.Errorf("undefined variable %q", name)
		}
		cur = next
	}
}

// Named looks up a CSS color keyword, case-insensitively.
func Named(name string) (Value, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "transparent" {
		return Value{}, true
	}
	hex, ok := named[name]
	if !ok {
		return Value{}, false
	}
	v, err := parseHex(hex)
	if err != nil {
		return Value{}, false
	}
	return v, true
}

// Names returns every color keyword in sorted order.
func Names() []string {
	names := make([]string, 0, len(named)+1)
	for name := range named {
		names = append(names, name)
	}
	names = append(names, "transparent")
	sort.Strings(names)
	return names
}

var builtinVariables = []string{
	"--accent",
	"--background",
	"--bluish",
	"--cyanish",
	"--foreground",
	"--greenish",
	"--orangish",
	"--pinkish",
	"--purplish",
	"--redish",
	"--yellowish",
}

// BuiltinVariables returns the minihtml CSS variable names every color
// scheme provides, sorted.
func BuiltinVariables() []string {
	out := make([]string, len(builtinVariables))
	copy(out, builtinVariables)
	return out
}

// VariablesFrom collects the variables section of a color scheme
// document: the scalar entries of the root-level "variables" map.
// Documents without one, including tmTheme schemes, yield an empty table.
func VariablesFrom(doc *parser.Document) map[string]string {
	vars := make(map[string]string)
	if doc == nil {
		return vars
	}
	section := doc.Root.Entry("variables")
	if section == nil || section.Kind != parser.NodeMap {
		return vars
	}
	for _, c := range section.Children {
		if c.Kind == parser.NodeScalar && c.Key != nil {
			vars[c.Key.Text] = c.Value.Text
		}
	}
	return vars
}
