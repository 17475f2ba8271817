package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// AnnotationRow is a stored highlight.
type AnnotationRow struct {
	ID         int64  `json:"id"`
	StudyID    int64  `json:"studies_id"`
	ExternalID string `json:"external_id,omitempty"`
	ThemeID    *int64 `json:"theme_id"`
	Count      int    `json:"count"`
	Page       int    `json:"page_number"`
	RGB        string `json:"annot_rgb_color"`
	Hex        string `json:"annot_hex_color"`
	Text       string `json:"text"`
}

// DistributionRow is a stored term occurrence.
type DistributionRow struct {
	ID         int64  `json:"id"`
	StudyID    int64  `json:"studies_id"`
	ExternalID string `json:"external_id,omitempty"`
	ThemeID    *int64 `json:"theme_id"`
	Count      int    `json:"count"`
	Page       int    `json:"page_number"`
	Term       string `json:"term"`
	Text       string `json:"text"`
	Paragraph  string `json:"paragraph"`
}

// Run records one persisted extraction.
type Run struct {
	ID        string    `json:"id"`
	StudyID   int64     `json:"studies_id"`
	Kind      string    `json:"kind"`
	Filter    string    `json:"filter,omitempty"`
	Total     int       `json:"total"`
	Inserted  int       `json:"inserted"`
	Skipped   int       `json:"skipped"`
	Failed    int       `json:"failed"`
	CreatedAt time.Time `json:"created_at"`
}

// Tx is a write transaction scoped to one extraction run.
type Tx struct {
	tx *sql.Tx
}

// Begin starts a write transaction.
func (d *DB) Begin() (*Tx, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	return &Tx{tx: tx}, nil
}

// Commit commits the transaction.
func (t *Tx) Commit() error {
	return t.tx.Commit()
}

// Rollback aborts the transaction. It is a no-op after Commit.
func (t *Tx) Rollback() error {
	err := t.tx.Rollback()
	if err == sql.ErrTxDone {
		return nil
	}
	return err
}

// HasAnnotationText reports whether the study already stores this text.
func (t *Tx) HasAnnotationText(studyID int64, text string) (bool, error) {
	return t.exists(`SELECT 1 FROM annotations WHERE studies_id = ? AND text = ?`, studyID, text)
}

// HasDistributionParagraph reports whether the study already stores an
// occurrence of this paragraph, whatever citation was appended to it.
func (t *Tx) HasDistributionParagraph(studyID int64, paragraph string) (bool, error) {
	return t.exists(`SELECT 1 FROM distribution WHERE studies_id = ? AND paragraph = ?`, studyID, paragraph)
}

func (t *Tx) exists(query string, args ...interface{}) (bool, error) {
	var one int
	err := t.tx.QueryRow(query, args...).Scan(&one)
	if isNoRows(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// InsertAnnotation stores one highlight row.
func (t *Tx) InsertAnnotation(a AnnotationRow) error {
	_, err := t.tx.Exec(`
		INSERT INTO annotations (studies_id, theme_id, count, page_number, annot_rgb_color, annot_hex_color, text)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, a.StudyID, nullableID(a.ThemeID), a.Count, a.Page, a.RGB, a.Hex, a.Text)
	if err != nil {
		return fmt.Errorf("inserting annotation on page %d: %w", a.Page, err)
	}
	return nil
}

// InsertDistribution stores one term occurrence row.
func (t *Tx) InsertDistribution(r DistributionRow) error {
	_, err := t.tx.Exec(`
		INSERT INTO distribution (studies_id, theme_id, count, page_number, term, text, paragraph)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, r.StudyID, nullableID(r.ThemeID), r.Count, r.Page, r.Term, r.Text, r.Paragraph)
	if err != nil {
		return fmt.Errorf("inserting distribution on page %d: %w", r.Page, err)
	}
	return nil
}

// SetTotalAnnotations replaces the study's annotation counter.
func (t *Tx) SetTotalAnnotations(studyID int64, total int) error {
	return t.setCounter("total_annotations", studyID, total)
}

// SetTotalDistribution replaces the study's distribution counter.
func (t *Tx) SetTotalDistribution(studyID int64, total int) error {
	return t.setCounter("total_distribution", studyID, total)
}

func (t *Tx) setCounter(column string, studyID int64, total int) error {
	res, err := t.tx.Exec(`UPDATE studies SET `+column+` = ? WHERE id = ?`, total, studyID)
	if err != nil {
		return fmt.Errorf("updating %s: %w", column, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("study row %d: %w", studyID, ErrNotFound)
	}
	return nil
}

// InsertRun records a run summary.
func (t *Tx) InsertRun(r Run) error {
	_, err := t.tx.Exec(`
		INSERT INTO runs (id, studies_id, kind, filter, total, inserted, skipped, failed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.StudyID, r.Kind, nullableStringValue(r.Filter), r.Total, r.Inserted, r.Skipped, r.Failed,
		r.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("inserting run %s: %w", r.ID, err)
	}
	return nil
}

// ListAnnotations returns stored highlights, for one study when externalID is
// set, ordered by study and count.
func (d *DB) ListAnnotations(externalID string) ([]AnnotationRow, error) {
	query := `
		SELECT a.id, a.studies_id, s.external_id, a.theme_id, a.count, a.page_number,
			a.annot_rgb_color, a.annot_hex_color, a.text
		FROM annotations a JOIN studies s ON s.id = a.studies_id`
	var args []interface{}
	if externalID != "" {
		query += ` WHERE s.external_id = ?`
		args = append(args, externalID)
	}
	query += ` ORDER BY a.studies_id, a.count, a.id`

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing annotations: %w", err)
	}
	defer rows.Close()

	var out []AnnotationRow
	for rows.Next() {
		var a AnnotationRow
		var themeID sql.NullInt64
		if err := rows.Scan(&a.ID, &a.StudyID, &a.ExternalID, &themeID, &a.Count, &a.Page,
			&a.RGB, &a.Hex, &a.Text); err != nil {
			return nil, err
		}
		a.ThemeID = idPtr(themeID)
		out = append(out, a)
	}
	return out, rows.Err()
}

// ListDistribution returns stored term occurrences, for one study when
// externalID is set.
func (d *DB) ListDistribution(externalID string) ([]DistributionRow, error) {
	query := `
		SELECT r.id, r.studies_id, s.external_id, r.theme_id, r.count, r.page_number, r.term, r.text, r.paragraph
		FROM distribution r JOIN studies s ON s.id = r.studies_id`
	var args []interface{}
	if externalID != "" {
		query += ` WHERE s.external_id = ?`
		args = append(args, externalID)
	}
	query += ` ORDER BY r.studies_id, r.count, r.id`

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing distribution: %w", err)
	}
	defer rows.Close()

	var out []DistributionRow
	for rows.Next() {
		var r DistributionRow
		var themeID sql.NullInt64
		if err := rows.Scan(&r.ID, &r.StudyID, &r.ExternalID, &themeID, &r.Count, &r.Page,
			&r.Term, &r.Text, &r.Paragraph); err != nil {
			return nil, err
		}
		r.ThemeID = idPtr(themeID)
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListRuns returns the runs recorded for a study, oldest first.
func (d *DB) ListRuns(studyID int64) ([]Run, error) {
	rows, err := d.db.Query(`
		SELECT id, studies_id, kind, COALESCE(filter, ''), total, inserted, skipped, failed, created_at
		FROM runs WHERE studies_id = ? ORDER BY created_at, rowid
	`, studyID)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var created string
		if err := rows.Scan(&r.ID, &r.StudyID, &r.Kind, &r.Filter, &r.Total, &r.Inserted,
			&r.Skipped, &r.Failed, &created); err != nil {
			return nil, err
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339, created)
		out = append(out, r)
	}
	return out, rows.Err()
}
