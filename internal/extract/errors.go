package extract

import (
	"errors"

	"github.com/0xn0va/slh-sh/internal/document"
)

// Sentinel errors shared by extraction and persistence.
var (
	// ErrNotFound reports a missing study, theme row or document path.
	ErrNotFound = document.ErrNotFound

	// ErrThemeNotConfigured reports a color or term with no matching theme.
	ErrThemeNotConfigured = errors.New("theme not configured")

	// ErrEmptyTerm is returned when a distribution search term is empty.
	ErrEmptyTerm = errors.New("empty search term")
)
