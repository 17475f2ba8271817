// Package document defines the page-oriented view of a study document that
// the extraction engine reads from.
package document

import (
	"errors"

	"github.com/0xn0va/slh-sh/internal/layout"
)

// ErrNotFound is returned when a document or page does not exist.
var ErrNotFound = errors.New("not found")

// KindHighlight is the annotation subtype produced by highlighter tools.
const KindHighlight = "Highlight"

// Annotation is a markup annotation on a page. Color holds the raw /C
// components (gray, RGB or CMYK) and may be empty.
type Annotation struct {
	Kind  string
	Color []float64
	Rect  layout.Rect
}

// IsHighlight reports whether a is a highlight annotation.
func (a Annotation) IsHighlight() bool {
	return a.Kind == KindHighlight
}

// Page is a single page of an open document. Rectangles are in top-down page
// space.
type Page interface {
	Number() int
	Annotations() ([]Annotation, error)
	Words() ([]layout.Word, error)
	Blocks() ([]layout.Block, error)
	Search(term string, fold bool) ([]layout.Rect, error)
}

// Document is an open, page-addressable document. Pages are numbered from 1.
type Document interface {
	NumPage() int
	Page(n int) (Page, error)
	Close() error
}
