package persist

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/0xn0va/slh-sh/internal/color"
	"github.com/0xn0va/slh-sh/internal/document"
	"github.com/0xn0va/slh-sh/internal/document/doctest"
	"github.com/0xn0va/slh-sh/internal/extract"
	"github.com/0xn0va/slh-sh/internal/layout"
	"github.com/0xn0va/slh-sh/internal/storage"
	"github.com/0xn0va/slh-sh/internal/study"
	"github.com/0xn0va/slh-sh/internal/theme"
)

var configThemes = []theme.Theme{
	{Color: "red", Hex: "#FF3333", Term: "Challenges in AI Ethics"},
	{Color: "blue", Hex: "#3389FF", Term: "Challenges in AI Laws"},
}

// setupMapper opens a store holding study "12" and the synced themes.
func setupMapper(t *testing.T, opts ...Option) (*Mapper, *storage.DB, *theme.Index) {
	t.Helper()

	db, err := storage.OpenDB(filepath.Join(t.TempDir(), "slh.db"))
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := db.UpsertStudy(study.Study{ExternalID: "12", Title: "AI Ethics"}); err != nil {
		t.Fatalf("UpsertStudy() error = %v", err)
	}
	if _, err := db.SyncThemes(configThemes); err != nil {
		t.Fatalf("SyncThemes() error = %v", err)
	}
	idx, err := theme.NewIndex(configThemes)
	if err != nil {
		t.Fatalf("NewIndex() error = %v", err)
	}
	m, err := NewMapper(db, idx, opts...)
	if err != nil {
		t.Fatalf("NewMapper() error = %v", err)
	}
	return m, db, idx
}

var (
	red  = []float64{1.0, 0.2, 0.2}
	blue = []float64{0.2, 0.54, 1.0}
)

func highlightedDoc() *doctest.Doc {
	return &doctest.Doc{Pages: []*doctest.Page{
		{
			N:      1,
			Layout: doctest.Typeset("Ethics matters", "Laws matter"),
			Annots: []document.Annotation{
				doctest.Highlight(red, layout.Rect{X0: 0, Y0: 90, X1: 70, Y1: 102}),
				doctest.Highlight(blue, layout.Rect{X0: 0, Y0: 190, X1: 55, Y1: 202}),
			},
		},
		{N: 2, Layout: doctest.Typeset("AI regulation is needed", "strict regulation now")},
	}}
}

func extractAnnotations(t *testing.T, idx *theme.Index, filter string) *extract.AnnotationResult {
	t.Helper()
	s := extract.NewSession(highlightedDoc(), extract.WithStudy("12"), extract.WithThemes(idx))
	defer s.Close()

	res, err := s.Annotations(filter)
	if err != nil {
		t.Fatalf("Annotations() error = %v", err)
	}
	return res
}

func TestSaveAnnotations_Idempotent(t *testing.T) {
	m, db, idx := setupMapper(t)

	first, err := m.SaveAnnotations("12", extractAnnotations(t, idx, "red"))
	if err != nil {
		t.Fatalf("SaveAnnotations() error = %v", err)
	}
	if first.Total != 1 || first.Inserted != 1 || first.Skipped != 0 {
		t.Errorf("first run = %+v, want 1 inserted", first)
	}

	second, err := m.SaveAnnotations("12", extractAnnotations(t, idx, "red"))
	if err != nil {
		t.Fatalf("second SaveAnnotations() error = %v", err)
	}
	if second.Inserted != 0 || second.Skipped != 1 {
		t.Errorf("second run = %+v, want 0 inserted, 1 skipped", second)
	}

	rows, err := db.ListAnnotations("12")
	if err != nil {
		t.Fatalf("ListAnnotations() error = %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("stored %d annotations, want 1", len(rows))
	}
	if rows[0].Text != "Ethics matters" || rows[0].Hex != "#ff3333" || rows[0].RGB != "(255, 51, 51)" {
		t.Errorf("stored row = %+v", rows[0])
	}

	ids, _ := db.ThemeIDs()
	if rows[0].ThemeID == nil || *rows[0].ThemeID != ids["red"] {
		t.Errorf("ThemeID = %v, want red (%d)", rows[0].ThemeID, ids["red"])
	}

	st, _ := db.GetStudy("12")
	if runs, _ := db.ListRuns(st.ID); len(runs) != 2 {
		t.Errorf("ListRuns() returned %d runs, want 2", len(runs))
	}
}

func TestSaveAnnotations_CounterReplaced(t *testing.T) {
	m, db, idx := setupMapper(t)

	if _, err := m.SaveAnnotations("12", extractAnnotations(t, idx, "")); err != nil {
		t.Fatalf("SaveAnnotations() error = %v", err)
	}
	st, _ := db.GetStudy("12")
	if st.TotalAnnotations != 2 {
		t.Errorf("TotalAnnotations = %d, want 2", st.TotalAnnotations)
	}

	if _, err := m.SaveAnnotations("12", extractAnnotations(t, idx, "blue")); err != nil {
		t.Fatalf("SaveAnnotations() error = %v", err)
	}
	st, _ = db.GetStudy("12")
	if st.TotalAnnotations != 1 {
		t.Errorf("TotalAnnotations = %d, want 1 (replaced, not incremented)", st.TotalAnnotations)
	}
}

func TestSaveAnnotations_UnfilteredLinksNearestTheme(t *testing.T) {
	m, db, idx := setupMapper(t)

	sum, err := m.SaveAnnotations("12", extractAnnotations(t, idx, ""))
	if err != nil {
		t.Fatalf("SaveAnnotations() error = %v", err)
	}
	if sum.Unthemed != 0 {
		t.Errorf("Unthemed = %d, want 0", sum.Unthemed)
	}

	ids, _ := db.ThemeIDs()
	rows, _ := db.ListAnnotations("12")
	got := map[string]int64{}
	for _, r := range rows {
		if r.ThemeID != nil {
			got[r.Text] = *r.ThemeID
		}
	}
	if got["Ethics matters"] != ids["red"] || got["Laws matter"] != ids["blue"] {
		t.Errorf("theme links = %v, ids = %v", got, ids)
	}
}

func TestSaveAnnotations_NoThemeStoresNull(t *testing.T) {
	m, db, _ := setupMapper(t)
	res := &extract.AnnotationResult{
		RunID: "green-run",
		Total: 1,
		Records: []extract.AnnotationRecord{
			{StudyID: "12", Count: 1, Page: 1, RGB: color.RGB8{G: 255}, Hex: "#00ff00", Text: "green passage"},
		},
	}

	sum, err := m.SaveAnnotations("12", res)
	if err != nil {
		t.Fatalf("SaveAnnotations() error = %v", err)
	}
	if sum.Inserted != 1 || sum.Unthemed != 1 {
		t.Errorf("summary = %+v, want 1 inserted, 1 unthemed", sum)
	}
	rows, _ := db.ListAnnotations("12")
	if len(rows) != 1 || rows[0].ThemeID != nil {
		t.Errorf("rows = %+v, want one row with null theme", rows)
	}
}

func TestSaveAnnotations_StudyNotFound(t *testing.T) {
	m, db, idx := setupMapper(t)

	_, err := m.SaveAnnotations("999", extractAnnotations(t, idx, "red"))
	if !errors.Is(err, extract.ErrNotFound) {
		t.Errorf("SaveAnnotations(999) error = %v, want ErrNotFound", err)
	}
	if rows, _ := db.ListAnnotations(""); len(rows) != 0 {
		t.Errorf("stored %d rows for a missing study", len(rows))
	}
}

func extractDistribution(t *testing.T, term string, opts ...extract.Option) *extract.DistributionResult {
	t.Helper()
	opts = append(opts, extract.WithStudy("12"))
	s := extract.NewSession(highlightedDoc(), opts...)
	defer s.Close()

	res, err := s.Distribution(term)
	if err != nil {
		t.Fatalf("Distribution() error = %v", err)
	}
	return res
}

func TestSaveDistribution(t *testing.T) {
	m, db, _ := setupMapper(t)

	res := extractDistribution(t, "regulation", extract.WithCitation("(Smith, 2020)"))
	sum, err := m.SaveDistribution("12", res)
	if err != nil {
		t.Fatalf("SaveDistribution() error = %v", err)
	}
	if sum.Total != 2 || sum.Inserted != 2 || sum.Unthemed != 2 {
		t.Errorf("summary = %+v, want 2 inserted without theme", sum)
	}

	rows, err := db.ListDistribution("12")
	if err != nil {
		t.Fatalf("ListDistribution() error = %v", err)
	}
	if len(rows) != 2 || rows[0].Text != "AI regulation is needed (Smith, 2020) page 2." || rows[0].ThemeID != nil {
		t.Errorf("rows = %+v", rows)
	}
	if len(rows) > 0 && rows[0].Paragraph != "AI regulation is needed" {
		t.Errorf("rows[0].Paragraph = %q, want the text without citation", rows[0].Paragraph)
	}
	st, _ := db.GetStudy("12")
	if st.TotalDistribution != 2 {
		t.Errorf("TotalDistribution = %d, want 2", st.TotalDistribution)
	}

	again, err := m.SaveDistribution("12", extractDistribution(t, "regulation", extract.WithCitation("(Smith, 2020)")))
	if err != nil {
		t.Fatalf("second SaveDistribution() error = %v", err)
	}
	if again.Inserted != 0 || again.Skipped != 2 {
		t.Errorf("second run = %+v, want 2 skipped", again)
	}
}

func TestSaveDistribution_CitationChanged(t *testing.T) {
	m, db, _ := setupMapper(t)

	if _, err := m.SaveDistribution("12", extractDistribution(t, "regulation", extract.WithCitation("(Smith, 2020)"))); err != nil {
		t.Fatalf("SaveDistribution() error = %v", err)
	}
	again, err := m.SaveDistribution("12", extractDistribution(t, "regulation", extract.WithCitation("(Smith et al., 2020)")))
	if err != nil {
		t.Fatalf("second SaveDistribution() error = %v", err)
	}
	if again.Inserted != 0 || again.Skipped != 2 {
		t.Errorf("second run = %+v, want 2 skipped", again)
	}

	rows, _ := db.ListDistribution("12")
	if len(rows) != 2 {
		t.Errorf("stored %d rows, want 2", len(rows))
	}
}

func TestSaveDistribution_ThemeByTerm(t *testing.T) {
	m, db, _ := setupMapper(t)

	res := &extract.DistributionResult{
		RunID:   "term-run",
		Term:    "Challenges in AI Laws",
		Total:   1,
		Records: []extract.DistributionRecord{{StudyID: "12", Term: "Challenges in AI Laws", Count: 1, Page: 3, Text: "passage"}},
	}
	sum, err := m.SaveDistribution("12", res)
	if err != nil {
		t.Fatalf("SaveDistribution() error = %v", err)
	}
	if sum.Unthemed != 0 {
		t.Errorf("Unthemed = %d, want 0", sum.Unthemed)
	}

	ids, _ := db.ThemeIDs()
	rows, _ := db.ListDistribution("12")
	if len(rows) != 1 || rows[0].ThemeID == nil || *rows[0].ThemeID != ids["blue"] {
		t.Errorf("rows = %+v, want linked to blue", rows)
	}
}

func TestSaveDistribution_Strict(t *testing.T) {
	m, db, _ := setupMapper(t, WithStrict(true))

	_, err := m.SaveDistribution("12", extractDistribution(t, "regulation"))
	if !errors.Is(err, extract.ErrThemeNotConfigured) {
		t.Fatalf("SaveDistribution() error = %v, want ErrThemeNotConfigured", err)
	}

	st, _ := db.GetStudy("12")
	rows, _ := db.ListDistribution("12")
	if len(rows) != 0 || st.TotalDistribution != 0 {
		t.Errorf("strict failure wrote %d rows, total %d", len(rows), st.TotalDistribution)
	}
}

func TestSave_GeneratesRunID(t *testing.T) {
	m, _, _ := setupMapper(t)

	res := &extract.DistributionResult{Term: "x", Records: []extract.DistributionRecord{}}
	sum, err := m.SaveDistribution("12", res)
	if err != nil {
		t.Fatalf("SaveDistribution() error = %v", err)
	}
	if sum.RunID == "" {
		t.Error("RunID is empty")
	}
}
