package layout

import (
	"unicode"
	"unicode/utf8"
)

// Search returns one rectangle per non-overlapping occurrence of term on the
// page. Matches never span lines. With fold set, letters compare case
// insensitively.
func (l Layout) Search(term string, fold bool) []Rect {
	needle := []rune(term)
	if len(needle) == 0 {
		return nil
	}
	if fold {
		needle = lower(needle)
	}

	var hits []Rect
	for _, line := range l.Lines {
		runes, boxes := lineRunes(line)
		if fold {
			runes = lower(runes)
		}
		for i := 0; i+len(needle) <= len(runes); {
			if !hasPrefix(runes[i:], needle) {
				i++
				continue
			}
			var r Rect
			for _, b := range boxes[i : i+len(needle)] {
				r = r.Union(b)
			}
			hits = append(hits, r)
			i += len(needle)
		}
	}
	return hits
}

// lineRunes flattens a line into runes with an approximate box per rune.
// Word boxes are split evenly across their runes; the joining space covers
// the gap between neighbouring words.
func lineRunes(line Line) ([]rune, []Rect) {
	var (
		runes []rune
		boxes []Rect
	)
	for i, w := range line.Words {
		if i > 0 {
			prev := line.Words[i-1].Rect
			runes = append(runes, ' ')
			boxes = append(boxes, NewRect(prev.X1, w.Rect.Y0, w.Rect.X0, w.Rect.Y1))
		}
		n := utf8.RuneCountInString(w.Text)
		step := (w.Rect.X1 - w.Rect.X0) / float64(max(n, 1))
		k := 0
		for _, r := range w.Text {
			x := w.Rect.X0 + float64(k)*step
			runes = append(runes, r)
			boxes = append(boxes, Rect{X0: x, Y0: w.Rect.Y0, X1: x + step, Y1: w.Rect.Y1})
			k++
		}
	}
	return runes, boxes
}

func lower(rs []rune) []rune {
	out := make([]rune, len(rs))
	for i, r := range rs {
		out[i] = unicode.ToLower(r)
	}
	return out
}

func hasPrefix(s, prefix []rune) bool {
	if len(prefix) > len(s) {
		return false
	}
	for i := range prefix {
		if s[i] != prefix[i] {
			return false
		}
	}
	return true
}
