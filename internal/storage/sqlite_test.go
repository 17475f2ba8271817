package storage

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/0xn0va/slh-sh/internal/study"
	"github.com/0xn0va/slh-sh/internal/theme"
)

// setupTestDB opens an empty database with two studies and two themes.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := OpenDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test DB: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	for _, s := range []study.Study{
		{ExternalID: "12", Title: "AI Ethics", Authors: "Smith, J.", Year: 2020, Citation: "(Smith, 2020)"},
		{ExternalID: "34", Title: "AI Law", Authors: "Lee, K."},
	} {
		if _, err := db.UpsertStudy(s); err != nil {
			t.Fatalf("UpsertStudy() error = %v", err)
		}
	}
	if _, err := db.SyncThemes([]theme.Theme{
		{Color: "red", Hex: "#ff3333", Term: "Challenges in AI Ethics"},
		{Color: "blue", Hex: "#3389ff", Term: "Challenges in AI Laws"},
	}); err != nil {
		t.Fatalf("SyncThemes() error = %v", err)
	}
	return db
}

func TestOpenDB_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := OpenDB(path)
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	if _, err := db.UpsertStudy(study.Study{ExternalID: "1"}); err != nil {
		t.Fatalf("UpsertStudy() error = %v", err)
	}
	db.Close()

	db, err = OpenDB(path)
	if err != nil {
		t.Fatalf("second OpenDB() error = %v", err)
	}
	defer db.Close()
	if n, err := db.CountStudies(); err != nil || n != 1 {
		t.Errorf("CountStudies() = %d, %v; want 1", n, err)
	}
}

func TestUpsertStudy(t *testing.T) {
	db := setupTestDB(t)

	before, _ := db.GetStudy("12")
	id, err := db.UpsertStudy(study.Study{ExternalID: "12", Title: "AI Ethics, revised", Year: 2021})
	if err != nil {
		t.Fatalf("UpsertStudy() error = %v", err)
	}
	if id != before.ID {
		t.Errorf("UpsertStudy() id = %d, want existing %d", id, before.ID)
	}

	got, err := db.GetStudy("12")
	if err != nil {
		t.Fatalf("GetStudy() error = %v", err)
	}
	if got.Title != "AI Ethics, revised" || got.Year != 2021 {
		t.Errorf("GetStudy() = %+v", got)
	}

	if _, err := db.UpsertStudy(study.Study{}); err == nil {
		t.Error("UpsertStudy() without external id should fail")
	}
}

func TestGetStudy_Missing(t *testing.T) {
	db := setupTestDB(t)

	got, err := db.GetStudy("999")
	if err != nil {
		t.Fatalf("GetStudy() error = %v", err)
	}
	if got != nil {
		t.Errorf("GetStudy() = %+v, want nil", got)
	}
}

func TestListStudies(t *testing.T) {
	db := setupTestDB(t)

	all, err := db.ListStudies(0)
	if err != nil {
		t.Fatalf("ListStudies() error = %v", err)
	}
	if len(all) != 2 || all[0].ExternalID != "12" || all[0].Citation != "(Smith, 2020)" {
		t.Errorf("ListStudies() = %+v", all)
	}

	limited, err := db.ListStudies(1)
	if err != nil {
		t.Fatalf("ListStudies(1) error = %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("ListStudies(1) returned %d studies", len(limited))
	}
}

func TestSetKeywords(t *testing.T) {
	db := setupTestDB(t)

	if err := db.SetKeywords("12", "ethics, law"); err != nil {
		t.Fatalf("SetKeywords() error = %v", err)
	}
	got, _ := db.GetStudy("12")
	if got.Keywords != "ethics, law" {
		t.Errorf("Keywords = %q", got.Keywords)
	}

	if err := db.SetKeywords("999", "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetKeywords(missing) error = %v, want ErrNotFound", err)
	}
}

func TestSyncThemes_InsertsOnlyMissing(t *testing.T) {
	db := setupTestDB(t)

	n, err := db.SyncThemes([]theme.Theme{
		{Color: "red", Hex: "#000000", Term: "changed"},
		{Color: "green", Hex: "#33ff33", Term: "Challenges in AI Policy"},
	})
	if err != nil {
		t.Fatalf("SyncThemes() error = %v", err)
	}
	if n != 1 {
		t.Errorf("SyncThemes() inserted %d, want 1", n)
	}

	themes, err := db.ListThemes()
	if err != nil {
		t.Fatalf("ListThemes() error = %v", err)
	}
	if len(themes) != 3 || themes[0].Hex != "#ff3333" || themes[2].Color != "green" {
		t.Errorf("ListThemes() = %+v", themes)
	}

	ids, err := db.ThemeIDs()
	if err != nil {
		t.Fatalf("ThemeIDs() error = %v", err)
	}
	if ids["red"] != themes[0].ID || ids["green"] != themes[2].ID {
		t.Errorf("ThemeIDs() = %v", ids)
	}
}

func TestSyncNamed(t *testing.T) {
	db := setupTestDB(t)

	entries := []Named{{Name: "search_1", Description: "AI and Regulations"}, {Name: "search_2"}}
	if n, err := db.SyncNamed(Searches, entries); err != nil || n != 2 {
		t.Fatalf("SyncNamed() = %d, %v; want 2", n, err)
	}
	if n, err := db.SyncNamed(Searches, entries); err != nil || n != 0 {
		t.Errorf("second SyncNamed() = %d, %v; want 0", n, err)
	}

	got, err := db.ListNamed(Searches)
	if err != nil {
		t.Fatalf("ListNamed() error = %v", err)
	}
	if len(got) != 2 || got[0].Description != "AI and Regulations" || got[1].Description != "" {
		t.Errorf("ListNamed() = %+v", got)
	}

	if sources, _ := db.ListNamed(Sources); len(sources) != 0 {
		t.Errorf("ListNamed(Sources) = %+v, want empty", sources)
	}
	if _, err := db.SyncNamed(NamedTable("studies"), entries); err == nil {
		t.Error("SyncNamed() on an unknown table should fail")
	}
}

func TestTx_AnnotationsAndCounters(t *testing.T) {
	db := setupTestDB(t)
	s, _ := db.GetStudy("12")
	ids, _ := db.ThemeIDs()
	red := ids["red"]

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	defer tx.Rollback()

	row := AnnotationRow{StudyID: s.ID, ThemeID: &red, Count: 1, Page: 1, RGB: "(255, 51, 51)", Hex: "#ff3333", Text: "Token A B"}
	if err := tx.InsertAnnotation(row); err != nil {
		t.Fatalf("InsertAnnotation() error = %v", err)
	}
	if err := tx.InsertAnnotation(row); err == nil {
		t.Error("duplicate InsertAnnotation() should violate the unique constraint")
	}
	if has, err := tx.HasAnnotationText(s.ID, "Token A B"); err != nil || !has {
		t.Errorf("HasAnnotationText() = %v, %v; want true", has, err)
	}
	if has, _ := tx.HasAnnotationText(s.ID, "other"); has {
		t.Error("HasAnnotationText(other) = true")
	}
	if err := tx.SetTotalAnnotations(s.ID, 1); err != nil {
		t.Fatalf("SetTotalAnnotations() error = %v", err)
	}
	if err := tx.InsertRun(Run{ID: "run-1", StudyID: s.ID, Kind: "annotations", Filter: "red", Total: 1, Inserted: 1, CreatedAt: time.Now()}); err != nil {
		t.Fatalf("InsertRun() error = %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	got, _ := db.GetStudy("12")
	if got.TotalAnnotations != 1 {
		t.Errorf("TotalAnnotations = %d, want 1", got.TotalAnnotations)
	}

	rows, err := db.ListAnnotations("12")
	if err != nil {
		t.Fatalf("ListAnnotations() error = %v", err)
	}
	if len(rows) != 1 || rows[0].ThemeID == nil || *rows[0].ThemeID != red || rows[0].ExternalID != "12" {
		t.Errorf("ListAnnotations() = %+v", rows)
	}
	if other, _ := db.ListAnnotations("34"); len(other) != 0 {
		t.Errorf("ListAnnotations(34) = %+v, want empty", other)
	}

	runs, err := db.ListRuns(s.ID)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 1 || runs[0].Filter != "red" || runs[0].CreatedAt.IsZero() {
		t.Errorf("ListRuns() = %+v", runs)
	}
}

func TestTx_RollbackDiscards(t *testing.T) {
	db := setupTestDB(t)
	s, _ := db.GetStudy("34")

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if err := tx.InsertDistribution(DistributionRow{StudyID: s.ID, Count: 1, Page: 2, Term: "regulation", Text: "AI regulation"}); err != nil {
		t.Fatalf("InsertDistribution() error = %v", err)
	}
	if err := tx.SetTotalDistribution(s.ID, 1); err != nil {
		t.Fatalf("SetTotalDistribution() error = %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback() error = %v", err)
	}

	rows, _ := db.ListDistribution("")
	got, _ := db.GetStudy("34")
	if len(rows) != 0 || got.TotalDistribution != 0 {
		t.Errorf("after rollback: %d rows, total %d", len(rows), got.TotalDistribution)
	}
}

func TestTx_DistributionParagraph(t *testing.T) {
	db := setupTestDB(t)
	s, _ := db.GetStudy("12")

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	defer tx.Rollback()

	row := DistributionRow{
		StudyID:   s.ID,
		Count:     1,
		Page:      2,
		Term:      "regulation",
		Text:      "AI regulation (Smith, 2020) page 2.",
		Paragraph: "AI regulation",
	}
	if err := tx.InsertDistribution(row); err != nil {
		t.Fatalf("InsertDistribution() error = %v", err)
	}

	tests := []struct {
		paragraph string
		want      bool
	}{
		{"AI regulation", true},
		{"AI regulation (Smith, 2020) page 2.", false},
		{"other text", false},
	}
	for _, tt := range tests {
		got, err := tx.HasDistributionParagraph(s.ID, tt.paragraph)
		if err != nil {
			t.Fatalf("HasDistributionParagraph(%q) error = %v", tt.paragraph, err)
		}
		if got != tt.want {
			t.Errorf("HasDistributionParagraph(%q) = %v, want %v", tt.paragraph, got, tt.want)
		}
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	rows, _ := db.ListDistribution("12")
	if len(rows) != 1 || rows[0].Paragraph != "AI regulation" {
		t.Errorf("ListDistribution() = %+v", rows)
	}
}

func TestOpenDB_AddsParagraphColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.db")
	db, err := OpenDB(path)
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	id, err := db.UpsertStudy(study.Study{ExternalID: "12", Title: "AI Ethics"})
	if err != nil {
		t.Fatalf("UpsertStudy() error = %v", err)
	}
	tx, _ := db.Begin()
	if err := tx.InsertDistribution(DistributionRow{StudyID: id, Count: 1, Page: 2, Term: "regulation", Text: "AI regulation"}); err != nil {
		t.Fatalf("InsertDistribution() error = %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	db.Close()

	// Rewind the table to the layout without a paragraph column.
	raw, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	for _, stmt := range []string{
		`DROP INDEX idx_distribution_paragraph`,
		`ALTER TABLE distribution DROP COLUMN paragraph`,
	} {
		if _, err := raw.Exec(stmt); err != nil {
			raw.Close()
			t.Fatalf("%s: %v", stmt, err)
		}
	}
	raw.Close()

	db, err = OpenDB(path)
	if err != nil {
		t.Fatalf("reopening: %v", err)
	}
	defer db.Close()

	rows, err := db.ListDistribution("12")
	if err != nil {
		t.Fatalf("ListDistribution() error = %v", err)
	}
	if len(rows) != 1 || rows[0].Paragraph != "AI regulation" {
		t.Errorf("ListDistribution() = %+v, want paragraph copied from text", rows)
	}
}

func TestTx_CounterOnMissingStudy(t *testing.T) {
	db := setupTestDB(t)

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	defer tx.Rollback()

	if err := tx.SetTotalDistribution(999, 3); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetTotalDistribution(999) error = %v, want ErrNotFound", err)
	}
}

func TestImportStudies(t *testing.T) {
	db := setupTestDB(t)
	path := filepath.Join(t.TempDir(), "studies.jsonl")
	if err := WriteStudies(path, []study.Study{{ExternalID: "34", Title: "AI Law (2nd ed.)"}, {ExternalID: "56"}}); err != nil {
		t.Fatalf("WriteStudies() error = %v", err)
	}

	n, err := db.ImportStudies(path)
	if err != nil {
		t.Fatalf("ImportStudies() error = %v", err)
	}
	if n != 2 {
		t.Errorf("ImportStudies() = %d, want 2", n)
	}
	if count, _ := db.CountStudies(); count != 3 {
		t.Errorf("CountStudies() = %d, want 3", count)
	}
	if s, _ := db.GetStudy("34"); s.Title != "AI Law (2nd ed.)" {
		t.Errorf("study 34 title = %q", s.Title)
	}
}
