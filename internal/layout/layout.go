// Package layout reconstructs readable text from positioned page tokens.
//
// Coordinates are in top-down page space: y grows towards the bottom of the
// page, so sorting by ascending y gives reading order.
package layout

import (
	"sort"
	"strings"
)

// Rect is an axis-aligned rectangle with X0 <= X1 and Y0 <= Y1.
type Rect struct {
	X0, Y0, X1, Y1 float64
}

// NewRect builds a rectangle from two corners in any order.
func NewRect(x0, y0, x1, y1 float64) Rect {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	return Rect{X0: x0, Y0: y0, X1: x1, Y1: y1}
}

// IsEmpty reports whether r has no area.
func (r Rect) IsEmpty() bool {
	return r.X0 >= r.X1 || r.Y0 >= r.Y1
}

// Intersects reports whether r and o share a region of positive area.
// Rectangles that only touch along an edge do not intersect.
func (r Rect) Intersects(o Rect) bool {
	if r.IsEmpty() || o.IsEmpty() {
		return false
	}
	return r.X0 < o.X1 && o.X0 < r.X1 && r.Y0 < o.Y1 && o.Y0 < r.Y1
}

// Union returns the smallest rectangle containing both r and o.
// An empty receiver is ignored.
func (r Rect) Union(o Rect) Rect {
	if r.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return r
	}
	return Rect{
		X0: min(r.X0, o.X0),
		Y0: min(r.Y0, o.Y0),
		X1: max(r.X1, o.X1),
		Y1: max(r.Y1, o.Y1),
	}
}

// Word is a single text token with its bounding box. Words on the same
// printed line share a Baseline value.
type Word struct {
	Rect     Rect
	Baseline float64
	Text     string
}

// Block is a paragraph-sized region whose text is already line-joined.
type Block struct {
	Rect Rect
	Text string
}

// Lines returns one reconstructed line per baseline for the words that
// intersect target. An empty intersection returns nil.
func Lines(words []Word, target Rect) []string {
	var hits []Word
	for _, w := range words {
		if w.Rect.Intersects(target) {
			hits = append(hits, w)
		}
	}
	if len(hits) == 0 {
		return nil
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Baseline != hits[j].Baseline {
			return hits[i].Baseline < hits[j].Baseline
		}
		return hits[i].Rect.X0 < hits[j].Rect.X0
	})

	var lines []string
	start := 0
	for i := 1; i <= len(hits); i++ {
		if i < len(hits) && hits[i].Baseline == hits[start].Baseline {
			continue
		}
		parts := make([]string, 0, i-start)
		for _, w := range hits[start:i] {
			parts = append(parts, w.Text)
		}
		if line := clean(strings.Join(parts, " ")); line != "" {
			lines = append(lines, line)
		}
		start = i
	}
	return lines
}

// Text joins the reconstructed lines under target with single spaces.
func Text(words []Word, target Rect) string {
	return strings.Join(Lines(words, target), " ")
}

// Paragraph returns the text of every block intersecting target, in reading
// order, as a single string.
func Paragraph(blocks []Block, target Rect) string {
	var hits []Block
	for _, b := range blocks {
		if b.Rect.Intersects(target) {
			hits = append(hits, b)
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Rect.Y0 != hits[j].Rect.Y0 {
			return hits[i].Rect.Y0 < hits[j].Rect.Y0
		}
		return hits[i].Rect.X0 < hits[j].Rect.X0
	})

	parts := make([]string, 0, len(hits))
	for _, b := range hits {
		if t := clean(b.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

var newlines = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// clean collapses embedded newlines to spaces and trims the result.
func clean(s string) string {
	return strings.TrimSpace(newlines.Replace(s))
}
