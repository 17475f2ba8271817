// Package export renders extraction results and stored rows to files and
// stdout as JSON, YAML, CSV or JSONL.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/0xn0va/slh-sh/internal/storage"
)

// Format names an output encoding.
type Format string

const (
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatCSV   Format = "csv"
	FormatJSONL Format = "jsonl"
)

// ParseFormat validates a format name against the allowed set.
func ParseFormat(s string, allowed ...Format) (Format, error) {
	for _, f := range allowed {
		if Format(s) == f {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported format %q (valid: %v)", s, allowed)
}

// PageCount is the number of records found on one page.
type PageCount struct {
	Page  int `json:"page" yaml:"page"`
	Count int `json:"count" yaml:"count"`
}

// SortedPageCounts flattens a page -> count map in page order.
func SortedPageCounts(counts map[int]int) []PageCount {
	out := make([]PageCount, 0, len(counts))
	for p, c := range counts {
		out = append(out, PageCount{Page: p, Count: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Page < out[j].Page })
	return out
}

// WritePageCounts writes a per-page histogram as json, yaml or csv. The csv
// form has a "Pagenumber,Count" header.
func WritePageCounts(w io.Writer, counts map[int]int, f Format) error {
	rows := SortedPageCounts(counts)
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(rows)
	case FormatCSV:
		cw := csv.NewWriter(w)
		if err := cw.Write([]string{"Pagenumber", "Count"}); err != nil {
			return err
		}
		for _, r := range rows {
			if err := cw.Write([]string{strconv.Itoa(r.Page), strconv.Itoa(r.Count)}); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	}
	return fmt.Errorf("unsupported format %q for page counts", f)
}

var (
	annotationHeader   = []string{"study", "count", "page", "theme_id", "rgb", "hex", "text"}
	distributionHeader = []string{"study", "count", "page", "theme_id", "term", "text"}
)

// WriteAnnotations writes stored highlight rows as jsonl or csv.
func WriteAnnotations(w io.Writer, rows []storage.AnnotationRow, f Format) error {
	switch f {
	case FormatJSONL:
		return writeJSONL(w, rows)
	case FormatCSV:
		return writeCSV(w, annotationHeader, len(rows), func(i int) []string {
			r := rows[i]
			return []string{r.ExternalID, strconv.Itoa(r.Count), strconv.Itoa(r.Page), idString(r.ThemeID), r.RGB, r.Hex, r.Text}
		})
	}
	return fmt.Errorf("unsupported format %q for annotations", f)
}

// WriteDistribution writes stored term occurrence rows as jsonl or csv.
func WriteDistribution(w io.Writer, rows []storage.DistributionRow, f Format) error {
	switch f {
	case FormatJSONL:
		return writeJSONL(w, rows)
	case FormatCSV:
		return writeCSV(w, distributionHeader, len(rows), func(i int) []string {
			r := rows[i]
			return []string{r.ExternalID, strconv.Itoa(r.Count), strconv.Itoa(r.Page), idString(r.ThemeID), r.Term, r.Text}
		})
	}
	return fmt.Errorf("unsupported format %q for distribution", f)
}

func writeJSONL[T any](w io.Writer, rows []T) error {
	enc := json.NewEncoder(w)
	for _, r := range rows {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encoding row: %w", err)
		}
	}
	return nil
}

func writeCSV(w io.Writer, header []string, n int, row func(int) []string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := cw.Write(row(i)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func idString(id *int64) string {
	if id == nil {
		return ""
	}
	return strconv.FormatInt(*id, 10)
}
