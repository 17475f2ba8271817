package layout

import (
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Glyph is one drawn character (or short run) as reported by a PDF content
// stream, already transformed into top-down page space. Baseline is the y
// coordinate of the text baseline; Size is the font size in points.
type Glyph struct {
	X, Baseline float64
	Width, Size float64
	Text        string
}

// Rect approximates the glyph box from its baseline and font size.
func (g Glyph) Rect() Rect {
	size := g.Size
	if size <= 0 {
		size = 1
	}
	return NewRect(g.X, g.Baseline-0.8*size, g.X+g.Width, g.Baseline+0.2*size)
}

// fallbackAdvance is the per-rune advance, relative to the font size, given
// to glyphs whose font reports no widths.
const fallbackAdvance = 0.5

// EstimateAdvances lays out glyphs that carry no width. A reader without font
// metrics reports every glyph of such a run at the run's start; consecutive
// zero-width glyphs on the same baseline and at the same reported X are
// placed one after another using fallbackAdvance. Glyphs must be in content
// stream order. The input slice is modified in place and returned.
func EstimateAdvances(glyphs []Glyph) []Glyph {
	var (
		inRun         bool
		runX, runBase float64
		cursor        float64
	)
	for i := range glyphs {
		g := &glyphs[i]
		if g.Width > 0 {
			inRun = false
			continue
		}
		if !inRun || g.X != runX || g.Baseline != runBase {
			inRun, runX, runBase, cursor = true, g.X, g.Baseline, g.X
		}
		g.X = cursor
		g.Width = fallbackAdvance * math.Max(g.Size, 1) * float64(utf8.RuneCountInString(g.Text))
		cursor += g.Width
	}
	return glyphs
}

// Tuning constants for Assemble, relative to the font size.
const (
	baselineTolerance = 0.3 // glyphs this close vertically share a line
	wordGapRatio      = 0.2 // horizontal gap that starts a new word
	blockGapRatio     = 0.8 // extra leading that starts a new block
)

// Line is a run of words on one baseline.
type Line struct {
	Baseline float64
	Size     float64
	Words    []Word
}

// Rect returns the bounding box of the line.
func (l Line) Rect() Rect {
	var r Rect
	for _, w := range l.Words {
		r = r.Union(w.Rect)
	}
	return r
}

// Text joins the line's words with single spaces.
func (l Line) Text() string {
	parts := make([]string, len(l.Words))
	for i, w := range l.Words {
		parts[i] = w.Text
	}
	return strings.Join(parts, " ")
}

// Layout is the word, line and block structure of a single page.
type Layout struct {
	Words  []Word
	Lines  []Line
	Blocks []Block
}

// Assemble groups glyphs into words, lines and blocks. Glyph text is NFKC
// normalized so typographic ligatures read as their component letters.
func Assemble(glyphs []Glyph) Layout {
	lines := groupLines(glyphs)

	var out Layout
	for _, gl := range lines {
		line := buildLine(gl)
		if len(line.Words) == 0 {
			continue
		}
		out.Lines = append(out.Lines, line)
		out.Words = append(out.Words, line.Words...)
	}
	out.Blocks = buildBlocks(out.Lines)
	return out
}

// groupLines buckets glyphs by baseline and orders them left to right.
func groupLines(glyphs []Glyph) [][]Glyph {
	sorted := make([]Glyph, 0, len(glyphs))
	for _, g := range glyphs {
		if g.Text != "" {
			sorted = append(sorted, g)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Baseline < sorted[j].Baseline
	})

	var lines [][]Glyph
	for _, g := range sorted {
		n := len(lines)
		if n > 0 {
			ref := lines[n-1][0]
			tol := baselineTolerance * math.Max(ref.Size, 1)
			if math.Abs(g.Baseline-ref.Baseline) <= tol {
				lines[n-1] = append(lines[n-1], g)
				continue
			}
		}
		lines = append(lines, []Glyph{g})
	}
	for _, l := range lines {
		sort.SliceStable(l, func(i, j int) bool { return l[i].X < l[j].X })
	}
	return lines
}

// buildLine splits a baseline's glyphs into words on whitespace and gaps.
func buildLine(glyphs []Glyph) Line {
	line := Line{Baseline: glyphs[0].Baseline, Size: glyphs[0].Size}

	var (
		text    strings.Builder
		rect    Rect
		lastEnd = math.Inf(-1)
	)
	flush := func() {
		if s := strings.TrimSpace(norm.NFKC.String(text.String())); s != "" {
			line.Words = append(line.Words, Word{Rect: rect, Baseline: line.Baseline, Text: s})
		}
		text.Reset()
		rect = Rect{}
	}

	for _, g := range glyphs {
		if strings.TrimFunc(g.Text, unicode.IsSpace) == "" {
			flush()
			lastEnd = g.X + g.Width
			continue
		}
		if text.Len() > 0 && g.X-lastEnd > wordGapRatio*math.Max(g.Size, 1) {
			flush()
		}
		text.WriteString(g.Text)
		rect = rect.Union(g.Rect())
		lastEnd = g.X + g.Width
	}
	flush()
	return line
}

// buildBlocks merges consecutive lines into blocks while the leading between
// them stays close to the font size and they overlap horizontally.
func buildBlocks(lines []Line) []Block {
	var blocks []Block
	var cur []Line
	emit := func() {
		if len(cur) == 0 {
			return
		}
		var r Rect
		texts := make([]string, len(cur))
		for i, l := range cur {
			r = r.Union(l.Rect())
			texts[i] = l.Text()
		}
		blocks = append(blocks, Block{Rect: r, Text: strings.Join(texts, "\n")})
		cur = nil
	}

	for _, l := range lines {
		if n := len(cur); n > 0 {
			prev := cur[n-1]
			size := math.Max(prev.Size, 1)
			gap := l.Baseline - prev.Baseline
			pr, lr := prev.Rect(), l.Rect()
			overlaps := lr.X0 < pr.X1 && pr.X0 < lr.X1
			if gap > size*(1+blockGapRatio) || !overlaps {
				emit()
			}
		}
		cur = append(cur, l)
	}
	emit()
	return blocks
}
