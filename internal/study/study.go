// Package study defines the study record that extraction results attach to.
package study

import (
	"fmt"
	"strings"
)

// Study is one document under review.
type Study struct {
	// Identity
	ID         int64  `json:"id"`          // Store row id, 0 until saved
	ExternalID string `json:"external_id"` // Reviewer-assigned id (e.g. Covidence number)

	// Metadata
	Title    string `json:"title"`
	Authors  string `json:"authors"`
	Year     int    `json:"year,omitempty"`
	DOI      string `json:"doi,omitempty"`
	Filename string `json:"filename,omitempty"` // PDF name relative to pdf_path
	Keywords string `json:"keywords,omitempty"`
	Citation string `json:"citation,omitempty"` // e.g. "(Smith et al., 2020)"

	// Counters, replaced by each extraction run
	TotalAnnotations  int `json:"total_annotations"`
	TotalDistribution int `json:"total_distribution"`
}

// Validate checks the fields required to store a study.
func (s Study) Validate() error {
	if strings.TrimSpace(s.ExternalID) == "" {
		return fmt.Errorf("study is missing external_id")
	}
	if s.Year < 0 {
		return fmt.Errorf("study %s: negative year %d", s.ExternalID, s.Year)
	}
	return nil
}
