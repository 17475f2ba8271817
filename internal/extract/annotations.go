package extract

import (
	"fmt"

	"github.com/0xn0va/slh-sh/internal/color"
	"github.com/0xn0va/slh-sh/internal/document"
	"github.com/0xn0va/slh-sh/internal/layout"
	"github.com/0xn0va/slh-sh/internal/theme"
)

// AnnotationRecord is one deduplicated highlighted passage.
type AnnotationRecord struct {
	StudyID string       `json:"study_id"`
	Theme   *theme.Theme `json:"theme,omitempty"`
	Count   int          `json:"count"`
	Page    int          `json:"page_number"`
	RGB     color.RGB8   `json:"rgb_color"`
	Hex     string       `json:"hex_color"`
	Text    string       `json:"text"`
}

// AnnotationResult is the output of one annotation run.
type AnnotationResult struct {
	RunID      string             `json:"run_id"`
	Filter     string             `json:"filter,omitempty"`
	Theme      *theme.Theme       `json:"theme,omitempty"`
	Total      int                `json:"total"`
	Records    []AnnotationRecord `json:"records"`
	PageCounts map[int]int        `json:"page_counts"`
}

// Annotations extracts highlight annotations in page order. A non-empty
// filter (theme name or hex) keeps only highlights close to that theme's
// color.
func (s *Session) Annotations(filter string) (*AnnotationResult, error) {
	res := &AnnotationResult{
		RunID:      s.runID,
		Filter:     filter,
		Records:    []AnnotationRecord{},
		PageCounts: map[int]int{},
	}

	if filter != "" {
		t, ok := s.themes.Lookup(filter)
		switch {
		case ok:
			res.Theme = &t
		case s.strict:
			return nil, fmt.Errorf("color %q: %w", filter, ErrThemeNotConfigured)
		default:
			s.log.Warn("color filter has no theme, extracting unfiltered", "filter", filter)
		}
	}

	seen := make(map[string]bool)
	s.pages(func(page document.Page) {
		s.annotatePage(page, res, seen)
	})
	return res, nil
}

func (s *Session) annotatePage(page document.Page, res *AnnotationResult, seen map[string]bool) {
	n := page.Number()
	annots, err := page.Annotations()
	if err != nil {
		s.log.Warn("skipping page annotations", "page", n, "err", err)
		return
	}

	var words []layout.Word
	loaded := false
	for _, a := range annots {
		if !a.IsHighlight() {
			continue
		}

		rgb, err := color.FromComponents(a.Color)
		if err != nil {
			s.log.Warn("skipping highlight without usable color", "page", n, "err", err)
			continue
		}
		if res.Theme != nil {
			near, err := color.IsClose(rgb, res.Theme.Hex, s.threshold)
			if err != nil {
				s.log.Warn("theme color unreadable", "theme", res.Theme.Color, "err", err)
				return
			}
			if !near {
				continue
			}
		}

		if !loaded {
			if words, err = page.Words(); err != nil {
				s.log.Warn("skipping page text", "page", n, "err", err)
				return
			}
			loaded = true
		}

		text := layout.Text(words, a.Rect)
		if seen[text] {
			s.log.Debug("duplicate highlight skipped", "page", n, "text", text)
			continue
		}
		seen[text] = true

		res.Total++
		res.PageCounts[n]++
		res.Records = append(res.Records, AnnotationRecord{
			StudyID: s.studyID,
			Theme:   res.Theme,
			Count:   res.Total,
			Page:    n,
			RGB:     rgb.To8(),
			Hex:     rgb.Hex(),
			Text:    text,
		})
	}
}
