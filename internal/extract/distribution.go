package extract

import (
	"fmt"

	"github.com/0xn0va/slh-sh/internal/document"
	"github.com/0xn0va/slh-sh/internal/layout"
)

// DistributionRecord is one deduplicated occurrence of a search term.
type DistributionRecord struct {
	StudyID string `json:"study_id"`
	Term    string `json:"term"`
	Count   int    `json:"count"`
	Page    int    `json:"page_number"`
	Text    string `json:"text"`

	// Paragraph is Text without the citation suffix. Stored occurrences
	// are matched on it.
	Paragraph string `json:"paragraph"`
}

// DistributionResult is the output of one term-distribution run.
type DistributionResult struct {
	RunID      string               `json:"run_id"`
	Term       string               `json:"term"`
	Total      int                  `json:"total"`
	Records    []DistributionRecord `json:"records"`
	PageCounts map[int]int          `json:"page_counts"`
}

// Distribution finds every literal occurrence of term and records the
// paragraph around it. Occurrences whose paragraph text repeats are counted
// once.
func (s *Session) Distribution(term string) (*DistributionResult, error) {
	if term == "" {
		return nil, ErrEmptyTerm
	}

	res := &DistributionResult{
		RunID:      s.runID,
		Term:       term,
		Records:    []DistributionRecord{},
		PageCounts: map[int]int{},
	}
	seen := make(map[string]bool)
	s.pages(func(page document.Page) {
		s.distributePage(page, term, res, seen)
	})
	return res, nil
}

func (s *Session) distributePage(page document.Page, term string, res *DistributionResult, seen map[string]bool) {
	n := page.Number()
	hits, err := page.Search(term, s.fold)
	if err != nil {
		s.log.Warn("skipping page search", "page", n, "err", err)
		return
	}
	if len(hits) == 0 {
		return
	}
	blocks, err := page.Blocks()
	if err != nil {
		s.log.Warn("skipping page text", "page", n, "err", err)
		return
	}

	for _, r := range hits {
		para := layout.Paragraph(blocks, r)
		if seen[para] {
			s.log.Debug("duplicate occurrence skipped", "page", n, "term", term)
			continue
		}
		seen[para] = true

		text := para
		if s.citation != "" {
			text = fmt.Sprintf("%s %s page %d.", para, s.citation, n)
		}

		res.Total++
		res.PageCounts[n]++
		res.Records = append(res.Records, DistributionRecord{
			StudyID: s.studyID,
			Term:    term,
			Count:   res.Total,
			Page:    n,
			Text:    text,

			Paragraph: para,
		})
	}
}
