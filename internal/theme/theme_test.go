package theme

import (
	"errors"
	"testing"

	"github.com/0xn0va/slh-sh/internal/color"
)

func testThemes() []Theme {
	return []Theme{
		{Color: "red", Hex: "#FF3333", Term: "Challenges in AI Ethics"},
		{Color: "blue", Hex: "#3389FF", Term: "Challenges in AI Laws"},
		{Color: "crimson", Hex: "#FF3434", Term: "Near duplicate of red"},
	}
}

func mustIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := NewIndex(testThemes())
	if err != nil {
		t.Fatalf("NewIndex() error = %v", err)
	}
	return idx
}

func TestNewIndex_Errors(t *testing.T) {
	_, err := NewIndex([]Theme{{Color: "red", Hex: "red"}})
	if !errors.Is(err, color.ErrFormat) {
		t.Errorf("NewIndex() error = %v, want ErrFormat", err)
	}

	_, err = NewIndex([]Theme{{Color: "red", Hex: "#ff0000"}, {Color: "Red", Hex: "#ff0001"}})
	if err == nil {
		t.Error("NewIndex() with duplicate names should fail")
	}
}

func TestIndex_Lookup(t *testing.T) {
	idx := mustIndex(t)

	tests := []struct {
		filter string
		want   string
		ok     bool
	}{
		{"red", "red", true},
		{"BLUE", "blue", true},
		{"#ff3333", "red", true},
		{"#3389FF", "blue", true},
		{"green", "", false},
		{"#000000", "", false},
	}

	for _, tt := range tests {
		got, ok := idx.Lookup(tt.filter)
		if ok != tt.ok || got.Color != tt.want {
			t.Errorf("Lookup(%q) = %q, %v; want %q, %v", tt.filter, got.Color, ok, tt.want, tt.ok)
		}
	}
}

func TestIndex_HexNormalized(t *testing.T) {
	got, _ := mustIndex(t).Lookup("red")
	if got.Hex != "#ff3333" {
		t.Errorf("Hex = %q, want lowercase", got.Hex)
	}
}

func TestIndex_ByTerm(t *testing.T) {
	idx := mustIndex(t)
	if got, ok := idx.ByTerm("Challenges in AI Laws"); !ok || got.Color != "blue" {
		t.Errorf("ByTerm() = %+v, %v", got, ok)
	}
	if _, ok := idx.ByTerm("challenges in ai laws"); ok {
		t.Error("ByTerm() should be exact")
	}
}

func TestIndex_Closest(t *testing.T) {
	idx := mustIndex(t)

	tests := []struct {
		name string
		c    color.RGB8
		want string
		ok   bool
	}{
		{"exact red", color.RGB8{R: 255, G: 51, B: 51}, "red", true},
		{"nearer crimson", color.RGB8{R: 255, G: 52, B: 52}, "crimson", true},
		{"equidistant keeps order", color.RGB8{R: 255, G: 51, B: 52}, "red", true},
		{"slightly off blue", color.RGB8{R: 60, G: 140, B: 250}, "blue", true},
		{"black", color.RGB8{}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := idx.Closest(tt.c, color.DefaultThreshold)
			if ok != tt.ok || got.Color != tt.want {
				t.Errorf("Closest(%v) = %q, %v; want %q, %v", tt.c, got.Color, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestIndex_WithIDs(t *testing.T) {
	idx := mustIndex(t)
	withIDs := idx.WithIDs(map[string]int64{"red": 7, "blue": 9})

	if got, _ := withIDs.Lookup("red"); got.ID != 7 {
		t.Errorf("red ID = %d, want 7", got.ID)
	}
	if got, _ := withIDs.Lookup("crimson"); got.ID != 0 {
		t.Errorf("crimson ID = %d, want 0", got.ID)
	}
	if got, _ := idx.Lookup("red"); got.ID != 0 {
		t.Error("WithIDs() modified the original index")
	}
}

func TestIndex_Nil(t *testing.T) {
	var idx *Index
	if _, ok := idx.Lookup("red"); ok {
		t.Error("nil index Lookup() should miss")
	}
	if idx.Len() != 0 {
		t.Error("nil index Len() should be 0")
	}
}
