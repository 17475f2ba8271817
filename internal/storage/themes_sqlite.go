package storage

import (
	"fmt"

	"github.com/0xn0va/slh-sh/internal/theme"
)

// NamedTable is one of the name/description lookup tables.
type NamedTable string

// Lookup tables synced from the project config.
const (
	Searches NamedTable = "searches"
	Sources  NamedTable = "sources"
)

// Named is a row of a NamedTable.
type Named struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// SyncThemes inserts themes whose color name is not stored yet. Existing
// rows are never modified. Returns the number of rows inserted.
func (d *DB) SyncThemes(themes []theme.Theme) (int, error) {
	stmt, err := d.db.Prepare(`
		INSERT INTO themes (color, hex, term) VALUES (?, ?, ?)
		ON CONFLICT(color) DO NOTHING
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing theme insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, t := range themes {
		res, err := stmt.Exec(t.Color, t.Hex, t.Term)
		if err != nil {
			return inserted, fmt.Errorf("inserting theme %s: %w", t.Color, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}
	return inserted, nil
}

// ListThemes returns the stored themes ordered by row id.
func (d *DB) ListThemes() ([]theme.Theme, error) {
	rows, err := d.db.Query(`SELECT id, color, hex, term FROM themes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing themes: %w", err)
	}
	defer rows.Close()

	var out []theme.Theme
	for rows.Next() {
		var t theme.Theme
		if err := rows.Scan(&t.ID, &t.Color, &t.Hex, &t.Term); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ThemeIDs maps stored theme color names to row ids.
func (d *DB) ThemeIDs() (map[string]int64, error) {
	themes, err := d.ListThemes()
	if err != nil {
		return nil, err
	}
	ids := make(map[string]int64, len(themes))
	for _, t := range themes {
		ids[t.Color] = t.ID
	}
	return ids, nil
}

// SyncNamed inserts entries whose name is not stored yet and returns the
// number of rows inserted.
func (d *DB) SyncNamed(table NamedTable, entries []Named) (int, error) {
	if table != Searches && table != Sources {
		return 0, fmt.Errorf("unknown table %q", table)
	}
	stmt, err := d.db.Prepare(`INSERT INTO ` + string(table) + ` (name, description) VALUES (?, ?)
		ON CONFLICT(name) DO NOTHING`)
	if err != nil {
		return 0, fmt.Errorf("preparing %s insert: %w", table, err)
	}
	defer stmt.Close()

	inserted := 0
	for _, e := range entries {
		res, err := stmt.Exec(e.Name, nullableStringValue(e.Description))
		if err != nil {
			return inserted, fmt.Errorf("inserting %s %s: %w", table, e.Name, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}
	return inserted, nil
}

// ListNamed returns the rows of a lookup table ordered by id.
func (d *DB) ListNamed(table NamedTable) ([]Named, error) {
	if table != Searches && table != Sources {
		return nil, fmt.Errorf("unknown table %q", table)
	}
	rows, err := d.db.Query(`SELECT id, name, COALESCE(description, '') FROM ` + string(table) + ` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", table, err)
	}
	defer rows.Close()

	var out []Named
	for rows.Next() {
		var n Named
		if err := rows.Scan(&n.ID, &n.Name, &n.Description); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
