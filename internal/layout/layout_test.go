package layout

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func word(text string, x0, y0, x1, y1 float64) Word {
	return Word{Rect: Rect{x0, y0, x1, y1}, Baseline: y1, Text: text}
}

func TestRect_Intersects(t *testing.T) {
	tests := []struct {
		name string
		a, b Rect
		want bool
	}{
		{"overlap", Rect{0, 0, 10, 10}, Rect{5, 5, 15, 15}, true},
		{"contained", Rect{0, 0, 10, 10}, Rect{2, 2, 3, 3}, true},
		{"touching edge", Rect{0, 0, 10, 10}, Rect{10, 0, 20, 10}, false},
		{"disjoint", Rect{0, 0, 10, 10}, Rect{20, 20, 30, 30}, false},
		{"empty", Rect{0, 0, 10, 10}, Rect{5, 5, 5, 5}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Intersects(tt.b); got != tt.want {
				t.Errorf("Intersects() = %v, want %v", got, tt.want)
			}
			if got := tt.b.Intersects(tt.a); got != tt.want {
				t.Errorf("Intersects() reversed = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewRect_Normalizes(t *testing.T) {
	got := NewRect(10, 20, 0, 5)
	want := Rect{0, 5, 10, 20}
	if got != want {
		t.Errorf("NewRect() = %v, want %v", got, want)
	}
}

func TestText(t *testing.T) {
	words := []Word{
		word("B", 16, 0, 20, 10),
		word("Token", 0, 0, 10, 10),
		word("A", 11, 0, 15, 10),
	}

	if got := Text(words, Rect{0, 0, 20, 10}); got != "Token A B" {
		t.Errorf("Text() = %q, want %q", got, "Token A B")
	}
}

func TestLines(t *testing.T) {
	words := []Word{
		word("second", 0, 12, 30, 22),
		word("line", 32, 12, 50, 22),
		word("first", 0, 0, 20, 10),
		word("line", 22, 0, 40, 10),
		word("outside", 0, 100, 40, 110),
	}

	tests := []struct {
		name   string
		target Rect
		want   []string
	}{
		{"two lines", Rect{0, 0, 60, 25}, []string{"first line", "second line"}},
		{"partial overlap", Rect{25, 5, 60, 15}, []string{"line", "second line"}},
		{"no words", Rect{200, 200, 300, 300}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Lines(words, tt.target)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Lines() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLines_CollapsesNewlines(t *testing.T) {
	words := []Word{word("hyphen-\nated", 0, 0, 10, 10), word("\r\n", 12, 0, 14, 10)}

	got := Lines(words, Rect{0, 0, 20, 10})
	want := []string{"hyphen- ated"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Lines() mismatch (-want +got):\n%s", diff)
	}
}

func TestParagraph(t *testing.T) {
	blocks := []Block{
		{Rect: Rect{0, 50, 100, 80}, Text: "Second block\ncontinues here"},
		{Rect: Rect{0, 0, 100, 40}, Text: "First block"},
		{Rect: Rect{0, 200, 100, 240}, Text: "Far away"},
	}

	got := Paragraph(blocks, Rect{10, 30, 20, 60})
	want := "First block Second block continues here"
	if got != want {
		t.Errorf("Paragraph() = %q, want %q", got, want)
	}
	if got := Paragraph(blocks, Rect{500, 500, 600, 600}); got != "" {
		t.Errorf("Paragraph() outside = %q, want empty", got)
	}
}
