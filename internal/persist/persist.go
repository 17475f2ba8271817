// Package persist writes extraction results to the store: it links records
// to themes, skips text the study already holds, and replaces the study's
// counter in the same transaction.
package persist

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/0xn0va/slh-sh/internal/color"
	"github.com/0xn0va/slh-sh/internal/extract"
	"github.com/0xn0va/slh-sh/internal/storage"
	"github.com/0xn0va/slh-sh/internal/study"
	"github.com/0xn0va/slh-sh/internal/theme"
)

// Run kinds recorded in the runs table.
const (
	KindAnnotations  = "annotations"
	KindDistribution = "distribution"
)

// Summary reports what one save did.
type Summary struct {
	RunID    string `json:"run_id"`
	StudyID  string `json:"study_id"`
	Kind     string `json:"kind"`
	Total    int    `json:"total"`
	Inserted int    `json:"inserted"`
	Skipped  int    `json:"skipped"`
	Failed   int    `json:"failed"`
	Unthemed int    `json:"unthemed"`
}

// Mapper is the only write path for extraction records.
type Mapper struct {
	db        *storage.DB
	themes    *theme.Index
	threshold float64
	strict    bool
	log       *slog.Logger
	now       func() time.Time
}

// Option customises a Mapper.
type Option func(*Mapper)

// WithLogger sets the logger for skipped and failed records. Default: discard.
func WithLogger(l *slog.Logger) Option { return func(m *Mapper) { m.log = l } }

// WithThreshold sets the distance used to link unfiltered highlights to the
// nearest theme. Default: color.DefaultThreshold.
func WithThreshold(t float64) Option { return func(m *Mapper) { m.threshold = t } }

// WithStrict makes a distribution term without a theme an error.
func WithStrict(strict bool) Option { return func(m *Mapper) { m.strict = strict } }

// NewMapper binds the configured themes to their store ids.
func NewMapper(db *storage.DB, themes *theme.Index, opts ...Option) (*Mapper, error) {
	ids, err := db.ThemeIDs()
	if err != nil {
		return nil, fmt.Errorf("loading theme ids: %w", err)
	}
	m := &Mapper{
		db:        db,
		themes:    themes.WithIDs(ids),
		threshold: color.DefaultThreshold,
		log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:       time.Now,
	}
	for _, o := range opts {
		o(m)
	}
	return m, nil
}

// SaveAnnotations stores an annotation run for the study.
func (m *Mapper) SaveAnnotations(studyID string, res *extract.AnnotationResult) (*Summary, error) {
	st, err := m.study(studyID)
	if err != nil {
		return nil, err
	}
	sum := &Summary{RunID: res.RunID, StudyID: studyID, Kind: KindAnnotations, Total: res.Total}
	log := m.log.With("run", res.RunID, "study", studyID)

	rows := make([]storage.AnnotationRow, 0, len(res.Records))
	for _, r := range res.Records {
		themeID := m.annotationTheme(r)
		if themeID == nil {
			sum.Unthemed++
			log.Warn("no theme for highlight, storing without theme", "page", r.Page, "hex", r.Hex)
		}
		rows = append(rows, storage.AnnotationRow{
			StudyID: st.ID,
			ThemeID: themeID,
			Count:   r.Count,
			Page:    r.Page,
			RGB:     r.RGB.String(),
			Hex:     r.Hex,
			Text:    r.Text,
		})
	}

	err = m.write(st, sum, res.Filter, func(tx *storage.Tx) error {
		for _, row := range rows {
			has, err := tx.HasAnnotationText(st.ID, row.Text)
			if err != nil {
				return err
			}
			if has {
				sum.Skipped++
				log.Debug("highlight already stored", "page", row.Page)
				continue
			}
			if err := tx.InsertAnnotation(row); err != nil {
				sum.Failed++
				log.Warn("insert failed", "page", row.Page, "err", err)
				continue
			}
			sum.Inserted++
		}
		return tx.SetTotalAnnotations(st.ID, res.Total)
	})
	if err != nil {
		return nil, err
	}
	return sum, nil
}

// SaveDistribution stores a term-distribution run for the study.
func (m *Mapper) SaveDistribution(studyID string, res *extract.DistributionResult) (*Summary, error) {
	st, err := m.study(studyID)
	if err != nil {
		return nil, err
	}
	sum := &Summary{RunID: res.RunID, StudyID: studyID, Kind: KindDistribution, Total: res.Total}
	log := m.log.With("run", res.RunID, "study", studyID)

	var themeID *int64
	if t, ok := m.themes.ByTerm(res.Term); ok && t.ID != 0 {
		themeID = &t.ID
	} else if m.strict {
		return nil, fmt.Errorf("term %q: %w", res.Term, extract.ErrThemeNotConfigured)
	} else {
		sum.Unthemed = len(res.Records)
		log.Warn("no theme for term, storing without theme", "term", res.Term)
	}

	err = m.write(st, sum, res.Term, func(tx *storage.Tx) error {
		for _, r := range res.Records {
			para := r.Paragraph
			if para == "" {
				para = r.Text
			}
			has, err := tx.HasDistributionParagraph(st.ID, para)
			if err != nil {
				return err
			}
			if has {
				sum.Skipped++
				log.Debug("occurrence already stored", "page", r.Page)
				continue
			}
			row := storage.DistributionRow{
				StudyID:   st.ID,
				ThemeID:   themeID,
				Count:     r.Count,
				Page:      r.Page,
				Term:      r.Term,
				Text:      r.Text,
				Paragraph: para,
			}
			if err := tx.InsertDistribution(row); err != nil {
				sum.Failed++
				log.Warn("insert failed", "page", r.Page, "err", err)
				continue
			}
			sum.Inserted++
		}
		return tx.SetTotalDistribution(st.ID, res.Total)
	})
	if err != nil {
		return nil, err
	}
	return sum, nil
}

func (m *Mapper) study(externalID string) (*study.Study, error) {
	st, err := m.db.GetStudy(externalID)
	if err != nil {
		return nil, fmt.Errorf("loading study %s: %w", externalID, err)
	}
	if st == nil {
		return nil, fmt.Errorf("study %s: %w", externalID, extract.ErrNotFound)
	}
	return st, nil
}

// annotationTheme links a record to its filter theme, or else to the stored
// theme nearest its color.
func (m *Mapper) annotationTheme(r extract.AnnotationRecord) *int64 {
	var t theme.Theme
	var ok bool
	if r.Theme != nil {
		t, ok = m.themes.Lookup(r.Theme.Color)
	} else {
		t, ok = m.themes.Closest(r.RGB, m.threshold)
	}
	if !ok || t.ID == 0 {
		return nil
	}
	return &t.ID
}

// write runs fn and records the run in one transaction.
func (m *Mapper) write(st *study.Study, sum *Summary, filter string, fn func(*storage.Tx) error) error {
	if sum.RunID == "" {
		sum.RunID = uuid.NewString()
	}
	tx, err := m.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return fmt.Errorf("saving %s for study %s: %w", sum.Kind, sum.StudyID, err)
	}
	err = tx.InsertRun(storage.Run{
		ID:        sum.RunID,
		StudyID:   st.ID,
		Kind:      sum.Kind,
		Filter:    filter,
		Total:     sum.Total,
		Inserted:  sum.Inserted,
		Skipped:   sum.Skipped,
		Failed:    sum.Failed,
		CreatedAt: m.now(),
	})
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing %s run: %w", sum.Kind, err)
	}
	return nil
}
