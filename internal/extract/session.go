// Package extract walks an open document and turns highlight annotations and
// search-term occurrences into deduplicated, theme-linked records.
package extract

import (
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/0xn0va/slh-sh/internal/color"
	"github.com/0xn0va/slh-sh/internal/document"
	"github.com/0xn0va/slh-sh/internal/theme"
)

// Session owns one open document for the duration of an extraction run.
// It is not safe for concurrent use.
type Session struct {
	doc       document.Document
	runID     string
	studyID   string
	themes    *theme.Index
	threshold float64
	citation  string
	fold      bool
	strict    bool
	log       *slog.Logger
}

// Option customises a Session.
type Option func(*Session)

// WithStudy sets the external study id stamped on every record.
func WithStudy(id string) Option { return func(s *Session) { s.studyID = id } }

// WithThemes sets the theme index used to resolve color filters.
func WithThemes(idx *theme.Index) Option { return func(s *Session) { s.themes = idx } }

// WithThreshold sets the color distance threshold. Default: color.DefaultThreshold.
func WithThreshold(t float64) Option { return func(s *Session) { s.threshold = t } }

// WithLogger sets the logger for warnings and skip notices. Default: discard.
func WithLogger(l *slog.Logger) Option { return func(s *Session) { s.log = l } }

// WithCitation appends "<citation> page <n>." to every distribution excerpt.
func WithCitation(c string) Option { return func(s *Session) { s.citation = c } }

// WithCaseInsensitive makes term search fold case.
func WithCaseInsensitive(fold bool) Option { return func(s *Session) { s.fold = fold } }

// WithStrictThemes makes an unknown color filter an error instead of a warning.
func WithStrictThemes(strict bool) Option { return func(s *Session) { s.strict = strict } }

// NewSession starts a run over doc. The session takes ownership of doc.
func NewSession(doc document.Document, opts ...Option) *Session {
	s := &Session{
		doc:       doc,
		runID:     uuid.NewString(),
		threshold: color.DefaultThreshold,
		log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, o := range opts {
		o(s)
	}
	s.log = s.log.With("run", s.runID, "study", s.studyID)
	return s
}

// RunID identifies this run in logs and in the runs table.
func (s *Session) RunID() string {
	return s.runID
}

// StudyID returns the external study id, if set.
func (s *Session) StudyID() string {
	return s.studyID
}

// Close releases the document.
func (s *Session) Close() error {
	if s.doc == nil {
		return nil
	}
	err := s.doc.Close()
	s.doc = nil
	return err
}

// pages calls fn for every page that loads, logging and skipping the rest.
func (s *Session) pages(fn func(document.Page)) {
	n := s.doc.NumPage()
	for i := 1; i <= n; i++ {
		page, err := s.doc.Page(i)
		if err != nil {
			s.log.Warn("skipping page", "page", i, "err", err)
			continue
		}
		fn(page)
	}
}
