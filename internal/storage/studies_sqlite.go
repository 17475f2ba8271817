package storage

import (
	"database/sql"
	"fmt"

	"github.com/0xn0va/slh-sh/internal/study"
)

// selectStudyFields contains the standard field list for study queries.
const selectStudyFields = `id, external_id, title, authors, year, doi, filename,
	keywords, citation, total_annotations, total_distribution`

// UpsertStudy inserts a study or updates its metadata, keyed by external id.
// Counters and keywords of an existing row are left alone.
func (d *DB) UpsertStudy(s study.Study) (int64, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}
	_, err := d.db.Exec(`
		INSERT INTO studies (external_id, title, authors, year, doi, filename, citation)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(external_id) DO UPDATE SET
			title = excluded.title,
			authors = excluded.authors,
			year = excluded.year,
			doi = excluded.doi,
			filename = excluded.filename,
			citation = excluded.citation
	`, s.ExternalID, s.Title, s.Authors, nullableInt(s.Year),
		nullableStringValue(s.DOI), nullableStringValue(s.Filename), nullableStringValue(s.Citation))
	if err != nil {
		return 0, fmt.Errorf("upserting study %s: %w", s.ExternalID, err)
	}

	var id int64
	if err := d.db.QueryRow(`SELECT id FROM studies WHERE external_id = ?`, s.ExternalID).Scan(&id); err != nil {
		return 0, fmt.Errorf("reading id of study %s: %w", s.ExternalID, err)
	}
	return id, nil
}

// GetStudy retrieves a study by external id. A missing study returns nil, nil.
func (d *DB) GetStudy(externalID string) (*study.Study, error) {
	row := d.db.QueryRow(`SELECT `+selectStudyFields+` FROM studies WHERE external_id = ?`, externalID)
	return scanStudy(row)
}

// ListStudies returns all studies ordered by row id, optionally limited.
func (d *DB) ListStudies(limit int) ([]study.Study, error) {
	query := `SELECT ` + selectStudyFields + ` FROM studies ORDER BY id`
	var args []interface{}

	if limit > 0 {
		query += " LIMIT ?"
		args = []interface{}{limit}
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing studies: %w", err)
	}
	defer rows.Close()

	var out []study.Study
	for rows.Next() {
		s, err := scanStudy(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// CountStudies returns the total number of studies.
func (d *DB) CountStudies() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM studies").Scan(&count)
	return count, err
}

// SetKeywords stores the keyword list extracted from a study's PDF.
func (d *DB) SetKeywords(externalID, keywords string) error {
	res, err := d.db.Exec(`UPDATE studies SET keywords = ? WHERE external_id = ?`,
		nullableStringValue(keywords), externalID)
	if err != nil {
		return fmt.Errorf("updating keywords of %s: %w", externalID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("study %s: %w", externalID, ErrNotFound)
	}
	return nil
}

func scanStudy(s scanner) (*study.Study, error) {
	var st study.Study
	var year sql.NullInt64
	var doi, filename, keywords, citation sql.NullString

	err := s.Scan(
		&st.ID, &st.ExternalID, &st.Title, &st.Authors, &year, &doi, &filename,
		&keywords, &citation, &st.TotalAnnotations, &st.TotalDistribution,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}

	st.Year = int(year.Int64)
	st.DOI = doi.String
	st.Filename = filename.String
	st.Keywords = keywords.String
	st.Citation = citation.String
	return &st, nil
}
