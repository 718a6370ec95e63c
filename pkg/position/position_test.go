package position_test

import (
	"testing"

	"github.com/forkeith/PackageDev/pkg/position"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLineAndColumn(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		offset   int
		wantLine int
		wantCol  int
	}{
		{
			name:     "empty text",
			text:     "",
			offset:   0,
			wantLine: 0,
			wantCol:  0,
		},
		{
			name:     "single line, middle position",
			text:     `{"scope": "source.go"}`,
			offset:   7,
			wantLine: 0,
			wantCol:  7,
		},
		{
			name:     "second line",
			text:     "name: Go\nscope: source.go",
			offset:   16,
			wantLine: 1,
			wantCol:  7,
		},
		{
			name:     "offset at newline belongs to the preceding line",
			text:     "abc\ndef",
			offset:   3,
			wantLine: 0,
			wantCol:  3,
		},
		{
			name:     "offset past end clamps",
			text:     "abc",
			offset:   99,
			wantLine: 0,
			wantCol:  3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos := position.NewBasicPosition("", tt.offset)
			gotLine, gotCol := pos.GetLineAndColumn(tt.text)
			assert.Equal(t, tt.wantLine, gotLine, "line")
			assert.Equal(t, tt.wantCol, gotCol, "column")
		})
	}
}

func TestGetRange(t *testing.T) {
	text := "contexts:\n  main:\n    - match: foo\n"
	pos := position.NewBasicPosition("match", 24)

	r := pos.GetRange(text)
	require.Equal(t, 2, r.Start.Line)
	require.Equal(t, 6, r.Start.Character)
	require.Equal(t, 2, r.End.Line)
	require.Equal(t, 11, r.End.Character)
}

func TestHasRangeOverlapWith(t *testing.T) {
	tests := []struct {
		name  string
		a     position.RawPosition
		b     position.RawPosition
		wants bool
	}{
		{
			name:  "disjoint spans",
			a:     position.NewBasicPosition("abc", 0),
			b:     position.NewBasicPosition("def", 10),
			wants: false,
		},
		{
			name:  "partial overlap",
			a:     position.NewBasicPosition("abcdef", 0),
			b:     position.NewBasicPosition("defghi", 3),
			wants: true,
		},
		{
			name:  "zero length inside span",
			a:     position.NewBasicPosition("", 2),
			b:     position.NewBasicPosition("abcdef", 0),
			wants: true,
		},
		{
			name:  "zero length outside span",
			a:     position.NewBasicPosition("", 20),
			b:     position.NewBasicPosition("abcdef", 0),
			wants: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wants, tt.a.HasRangeOverlapWith(tt.b))
			assert.Equal(t, tt.wants, tt.b.HasRangeOverlapWith(tt.a))
		})
	}
}

func TestContains(t *testing.T) {
	pos := position.NewBasicPosition("scope", 10)

	assert.True(t, pos.Contains(10))
	assert.True(t, pos.Contains(12))
	assert.True(t, pos.Contains(15), "cursor just past the final byte still belongs to the token")
	assert.False(t, pos.Contains(9))
	assert.False(t, pos.Contains(16))
}

func TestDisplayColumn(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		offset int
		want   int
	}{
		{
			name:   "ascii line",
			text:   "scope: source.go",
			offset: 7,
			want:   8,
		},
		{
			name:   "multibyte rune counts one column",
			text:   "name: café syntax",
			offset: 11, // byte offset just past the two-byte e-acute
			want:   11,
		},
		{
			name:   "second line resets the count",
			text:   "first\nsecond",
			offset: 8,
			want:   3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := position.NewBasicPosition("", tt.offset).DisplayColumn(tt.text)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClampOffset(t *testing.T) {
	text := "café"

	assert.Equal(t, 0, position.ClampOffset(text, -5))
	assert.Equal(t, len(text), position.ClampOffset(text, 100))
	// Offset 4 lands on the continuation byte of the two-byte rune.
	assert.Equal(t, 3, position.ClampOffset(text, 4))
}

func TestOffsetForPlace(t *testing.T) {
	text := "name: Go\nscope: source.go\n"

	tests := []struct {
		name  string
		place position.Place
		want  int
	}{
		{name: "origin", place: position.Place{Line: 0, Character: 0}, want: 0},
		{name: "mid second line", place: position.Place{Line: 1, Character: 7}, want: 16},
		{name: "column past line end clamps", place: position.Place{Line: 0, Character: 50}, want: 8},
		{name: "line past document clamps", place: position.Place{Line: 9, Character: 0}, want: len(text)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, position.OffsetForPlace(text, tt.place))
		})
	}
}
