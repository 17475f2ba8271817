// Package theme maps highlight colors and search terms to review topics.
package theme

import (
	"fmt"
	"strings"

	"github.com/0xn0va/slh-sh/internal/color"
)

// Theme is a configured topic: a display color name, its hex value and the
// topic term.
type Theme struct {
	ID    int64  `json:"id,omitempty"`
	Color string `json:"color"`
	Hex   string `json:"hex"`
	Term  string `json:"term"`
}

// Index is an immutable lookup table over a theme list. Order follows the
// input and breaks ties between equally close colors.
type Index struct {
	themes []Theme
	rgb    []color.RGB8
	byName map[string]int
	byHex  map[string]int
	byTerm map[string]int
}

// NewIndex builds an index. Hex values are normalized to lowercase and must
// be "#rrggbb"; names must be unique.
func NewIndex(themes []Theme) (*Index, error) {
	idx := &Index{
		byName: make(map[string]int, len(themes)),
		byHex:  make(map[string]int, len(themes)),
		byTerm: make(map[string]int, len(themes)),
	}
	for _, t := range themes {
		rgb, err := color.ParseHex(t.Hex)
		if err != nil {
			return nil, fmt.Errorf("theme %q: %w", t.Color, err)
		}
		name := strings.ToLower(t.Color)
		if _, dup := idx.byName[name]; dup {
			return nil, fmt.Errorf("duplicate theme %q", t.Color)
		}

		t.Hex = strings.ToLower(t.Hex)
		i := len(idx.themes)
		idx.themes = append(idx.themes, t)
		idx.rgb = append(idx.rgb, rgb)
		idx.byName[name] = i
		if _, seen := idx.byHex[t.Hex]; !seen {
			idx.byHex[t.Hex] = i
		}
		if _, seen := idx.byTerm[t.Term]; !seen && t.Term != "" {
			idx.byTerm[t.Term] = i
		}
	}
	return idx, nil
}

// Len returns the number of themes.
func (x *Index) Len() int {
	if x == nil {
		return 0
	}
	return len(x.themes)
}

// Themes returns the themes in configuration order.
func (x *Index) Themes() []Theme {
	if x == nil {
		return nil
	}
	out := make([]Theme, len(x.themes))
	copy(out, x.themes)
	return out
}

// Lookup resolves a user-supplied filter, which is either a theme name
// (case-insensitive) or a hex color.
func (x *Index) Lookup(filter string) (Theme, bool) {
	if x == nil {
		return Theme{}, false
	}
	if i, ok := x.byName[strings.ToLower(filter)]; ok {
		return x.themes[i], true
	}
	return x.ByHex(filter)
}

// ByHex returns the theme with exactly this hex value.
func (x *Index) ByHex(hex string) (Theme, bool) {
	if x == nil {
		return Theme{}, false
	}
	i, ok := x.byHex[strings.ToLower(hex)]
	if !ok {
		return Theme{}, false
	}
	return x.themes[i], true
}

// ByTerm returns the theme whose term is exactly term.
func (x *Index) ByTerm(term string) (Theme, bool) {
	if x == nil {
		return Theme{}, false
	}
	i, ok := x.byTerm[term]
	if !ok {
		return Theme{}, false
	}
	return x.themes[i], true
}

// Closest returns the theme nearest to c within threshold.
func (x *Index) Closest(c color.RGB8, threshold float64) (Theme, bool) {
	if x == nil {
		return Theme{}, false
	}
	best := -1
	bestDist := 0.0
	for i, rgb := range x.rgb {
		d := color.Distance(c, rgb)
		if d > threshold {
			continue
		}
		if best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return Theme{}, false
	}
	return x.themes[best], true
}

// WithIDs returns a copy of the index whose themes carry the store ids in
// ids, keyed by theme name. Themes missing from ids keep ID 0.
func (x *Index) WithIDs(ids map[string]int64) *Index {
	if x == nil {
		return nil
	}
	cp := *x
	cp.themes = make([]Theme, len(x.themes))
	for i, t := range x.themes {
		t.ID = ids[t.Color]
		cp.themes[i] = t
	}
	return &cp
}
