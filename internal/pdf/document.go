// Package pdf reads study PDFs: page layout and annotations for extraction,
// plain text and keywords, file location, viewer launch and validation.
package pdf

import (
	"errors"
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"

	"github.com/0xn0va/slh-sh/internal/document"
	"github.com/0xn0va/slh-sh/internal/layout"
)

// Document is an open PDF backed by ledongthuc/pdf.
type Document struct {
	f *os.File
	r *pdf.Reader
}

// Open opens the PDF at path. A missing file wraps document.ErrNotFound.
// The file is closed again when parsing fails.
func Open(path string) (doc *Document, err error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", document.ErrNotFound, path)
		}
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() {
		if p := recover(); p != nil {
			doc, err = nil, fmt.Errorf("parsing %s: %v", path, p)
		}
		if err != nil {
			f.Close()
		}
	}()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("checking %s: %w", path, err)
	}
	r, err := pdf.NewReader(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return &Document{f: f, r: r}, nil
}

// NumPage returns the page count from the document catalog.
func (d *Document) NumPage() int {
	return d.r.NumPage()
}

// Page returns page n (1-based).
func (d *Document) Page(n int) (document.Page, error) {
	if n < 1 || n > d.r.NumPage() {
		return nil, fmt.Errorf("page %d: %w", n, document.ErrNotFound)
	}
	p := d.r.Page(n)
	if p.V.IsNull() {
		return nil, fmt.Errorf("page %d: %w", n, document.ErrNotFound)
	}
	return &Page{num: n, p: p}, nil
}

// Close releases the underlying file.
func (d *Document) Close() error {
	return d.f.Close()
}

// Page is one page of an open PDF. The text layout is built on first use.
type Page struct {
	num    int
	p      pdf.Page
	layout *layout.Layout
}

// Number returns the 1-based page number.
func (pg *Page) Number() int {
	return pg.num
}

// maxInheritDepth bounds the /Parent walk so a cyclic page tree cannot loop.
const maxInheritDepth = 32

// top returns the upper edge of the media box, used to flip PDF's bottom-up
// y axis into top-down page space. The box may be inherited from an ancestor
// /Pages node.
func (pg *Page) top() float64 {
	v := pg.p.V
	for i := 0; i < maxInheritDepth && !v.IsNull(); i++ {
		if box := v.Key("MediaBox"); box.Len() == 4 {
			return max(box.Index(1).Float64(), box.Index(3).Float64())
		}
		v = v.Key("Parent")
	}
	return 792 // US Letter
}

// Annotations lists the page's /Annots entries.
func (pg *Page) Annotations() (annots []document.Annotation, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("page %d annotations: %v", pg.num, p)
		}
	}()

	top := pg.top()
	list := pg.p.V.Key("Annots")
	for i := 0; i < list.Len(); i++ {
		a := list.Index(i)
		if a.Kind() != pdf.Dict {
			continue
		}

		var rect layout.Rect
		if r := a.Key("Rect"); r.Len() == 4 {
			x0, y0 := r.Index(0).Float64(), r.Index(1).Float64()
			x1, y1 := r.Index(2).Float64(), r.Index(3).Float64()
			rect = layout.NewRect(x0, top-y0, x1, top-y1)
		}

		var c []float64
		if col := a.Key("C"); col.Kind() == pdf.Array {
			for j := 0; j < col.Len(); j++ {
				c = append(c, col.Index(j).Float64())
			}
		}

		annots = append(annots, document.Annotation{
			Kind:  a.Key("Subtype").Name(),
			Color: c,
			Rect:  rect,
		})
	}
	return annots, nil
}

// Words returns the page's word tokens.
func (pg *Page) Words() ([]layout.Word, error) {
	l, err := pg.build()
	if err != nil {
		return nil, err
	}
	return l.Words, nil
}

// Blocks returns the page's paragraph blocks.
func (pg *Page) Blocks() ([]layout.Block, error) {
	l, err := pg.build()
	if err != nil {
		return nil, err
	}
	return l.Blocks, nil
}

// Search returns one rectangle per occurrence of term on the page.
func (pg *Page) Search(term string, fold bool) ([]layout.Rect, error) {
	l, err := pg.build()
	if err != nil {
		return nil, err
	}
	return l.Search(term, fold), nil
}

func (pg *Page) build() (l *layout.Layout, err error) {
	if pg.layout != nil {
		return pg.layout, nil
	}
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("page %d content: %v", pg.num, p)
		}
	}()

	top := pg.top()
	content := pg.p.Content()
	glyphs := make([]layout.Glyph, 0, len(content.Text))
	for _, t := range content.Text {
		glyphs = append(glyphs, layout.Glyph{
			X:        t.X,
			Baseline: top - t.Y,
			Width:    t.W,
			Size:     t.FontSize,
			Text:     t.S,
		})
	}
	assembled := layout.Assemble(layout.EstimateAdvances(glyphs))
	pg.layout = &assembled
	return pg.layout, nil
}
