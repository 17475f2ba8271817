// Package doctest provides in-memory documents for exercising extraction
// without PDF files.
package doctest

import (
	"errors"

	"github.com/0xn0va/slh-sh/internal/document"
	"github.com/0xn0va/slh-sh/internal/layout"
)

// Page serves either explicit Words or an assembled Layout.
type Page struct {
	N         int
	Annots    []document.Annotation
	Words     []layout.Word
	Layout    *layout.Layout
	AnnotErr  error
	SearchErr error
}

type page struct{ p *Page }

func (pg page) Number() int { return pg.p.N }

func (pg page) Annotations() ([]document.Annotation, error) {
	return pg.p.Annots, pg.p.AnnotErr
}

func (pg page) Words() ([]layout.Word, error) {
	if pg.p.Layout != nil {
		return pg.p.Layout.Words, nil
	}
	return pg.p.Words, nil
}

func (pg page) Blocks() ([]layout.Block, error) {
	if pg.p.Layout != nil {
		return pg.p.Layout.Blocks, nil
	}
	return nil, nil
}

func (pg page) Search(term string, fold bool) ([]layout.Rect, error) {
	if pg.p.SearchErr != nil {
		return nil, pg.p.SearchErr
	}
	if pg.p.Layout == nil {
		return nil, nil
	}
	return pg.p.Layout.Search(term, fold), nil
}

// Doc is a document over Pages. Page numbers listed in Broken fail to load.
type Doc struct {
	Pages  []*Page
	Broken map[int]bool
	Closed bool
}

// NumPage returns len(d.Pages).
func (d *Doc) NumPage() int { return len(d.Pages) }

// Page returns page n or an error for broken pages.
func (d *Doc) Page(n int) (document.Page, error) {
	if d.Broken[n] {
		return nil, errors.New("corrupt page object")
	}
	if n < 1 || n > len(d.Pages) {
		return nil, document.ErrNotFound
	}
	return page{d.Pages[n-1]}, nil
}

// Close marks the document closed.
func (d *Doc) Close() error {
	d.Closed = true
	return nil
}

// Typeset lays each line out on its own baseline, 100pt apart, with 5pt
// advances at size 10, so every line becomes its own block.
func Typeset(lines ...string) *layout.Layout {
	var glyphs []layout.Glyph
	for i, line := range lines {
		x, baseline := 0.0, float64(100*(i+1))
		for _, r := range line {
			glyphs = append(glyphs, layout.Glyph{X: x, Baseline: baseline, Width: 5, Size: 10, Text: string(r)})
			x += 5
		}
	}
	l := layout.Assemble(glyphs)
	return &l
}

// Highlight builds a highlight annotation.
func Highlight(c []float64, r layout.Rect) document.Annotation {
	return document.Annotation{Kind: document.KindHighlight, Color: c, Rect: r}
}
