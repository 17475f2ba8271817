package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/0xn0va/slh-sh/internal/config"
	"github.com/0xn0va/slh-sh/internal/document"
	"github.com/0xn0va/slh-sh/internal/extract"
	"github.com/0xn0va/slh-sh/internal/pdf"
	"github.com/0xn0va/slh-sh/internal/persist"
	"github.com/0xn0va/slh-sh/internal/storage"
	"github.com/0xn0va/slh-sh/internal/study"
	"github.com/0xn0va/slh-sh/internal/theme"
)

// target is one study and the PDF it is read from.
type target struct {
	Study study.Study
	Path  string
}

// pipeline runs extractions for the extract subcommands.
type pipeline struct {
	db      *storage.DB
	locator *pdf.Locator
	themes  *theme.Index
	cfg     *config.Config
	strict  bool
	log     *slog.Logger
	open    func(path string) (document.Document, error)

	mapper *persist.Mapper
}

func newPipeline(db *storage.DB, locator *pdf.Locator, themes *theme.Index, cfg *config.Config) *pipeline {
	return &pipeline{
		db:      db,
		locator: locator,
		themes:  themes,
		cfg:     cfg,
		log:     logger,
		open: func(path string) (document.Document, error) {
			doc, err := pdf.Open(path)
			if err != nil {
				return nil, err
			}
			return doc, nil
		},
	}
}

// targets resolves --id or --all. Studies without a stored row are still
// extracted, keyed by the id in the file name.
func (p *pipeline) targets(id string, all bool) ([]target, error) {
	if all {
		paths, err := p.locator.List()
		if err != nil {
			return nil, err
		}
		out := make([]target, 0, len(paths))
		for _, path := range paths {
			st, err := p.study(pdf.IDFromFilename(path))
			if err != nil {
				return nil, err
			}
			out = append(out, target{Study: st, Path: path})
		}
		return out, nil
	}

	if id == "" {
		return nil, errors.New("either --id or --all is required")
	}
	st, err := p.study(id)
	if err != nil {
		return nil, err
	}
	path, err := p.locator.Find(id, st.Filename)
	if err != nil {
		return nil, err
	}
	return []target{{Study: st, Path: path}}, nil
}

func (p *pipeline) study(id string) (study.Study, error) {
	st, err := p.db.GetStudy(id)
	if err != nil {
		return study.Study{}, err
	}
	if st == nil {
		return study.Study{ExternalID: id}, nil
	}
	return *st, nil
}

// session opens the study's document. A non-empty citation is appended to
// distribution excerpts, which only happens for runs that are saved.
func (p *pipeline) session(t target, citation string) (*extract.Session, error) {
	doc, err := p.open(t.Path)
	if err != nil {
		return nil, err
	}
	return extract.NewSession(doc,
		extract.WithStudy(t.Study.ExternalID),
		extract.WithThemes(p.themes),
		extract.WithThreshold(p.cfg.Threshold()),
		extract.WithLogger(p.log),
		extract.WithCitation(citation),
		extract.WithCaseInsensitive(p.cfg.CaseInsensitive),
		extract.WithStrictThemes(p.strict),
	), nil
}

func (p *pipeline) persister() (*persist.Mapper, error) {
	if p.mapper != nil {
		return p.mapper, nil
	}
	m, err := persist.NewMapper(p.db, p.themes,
		persist.WithLogger(p.log),
		persist.WithThreshold(p.cfg.Threshold()),
		persist.WithStrict(p.strict),
	)
	if err != nil {
		return nil, err
	}
	p.mapper = m
	return m, nil
}

// AnnotationReport is the output of one annotation extraction.
type AnnotationReport struct {
	Study    string                    `json:"study"`
	Citation string                    `json:"citation,omitempty"`
	Path     string                    `json:"path"`
	Result   *extract.AnnotationResult `json:"result"`
	Summary  *persist.Summary          `json:"saved,omitempty"`
}

func (p *pipeline) annotate(t target, filter string, save bool) (*AnnotationReport, error) {
	s, err := p.session(t, "")
	if err != nil {
		return nil, err
	}
	defer s.Close()

	res, err := s.Annotations(filter)
	if err != nil {
		return nil, fmt.Errorf("study %s: %w", t.Study.ExternalID, err)
	}
	rep := &AnnotationReport{Study: t.Study.ExternalID, Citation: t.Study.Citation, Path: t.Path, Result: res}
	if !save {
		return rep, nil
	}

	m, err := p.persister()
	if err != nil {
		return nil, err
	}
	if rep.Summary, err = m.SaveAnnotations(t.Study.ExternalID, res); err != nil {
		return nil, fmt.Errorf("saving study %s: %w", t.Study.ExternalID, err)
	}
	return rep, nil
}

// DistributionReport is the output of one term distribution extraction.
type DistributionReport struct {
	Study   string                      `json:"study"`
	Path    string                      `json:"path"`
	Result  *extract.DistributionResult `json:"result"`
	Summary *persist.Summary            `json:"saved,omitempty"`
}

func (p *pipeline) distribute(t target, term string, save bool) (*DistributionReport, error) {
	var citation string
	if save {
		citation = t.Study.Citation
	}
	s, err := p.session(t, citation)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	res, err := s.Distribution(term)
	if err != nil {
		return nil, fmt.Errorf("study %s: %w", t.Study.ExternalID, err)
	}
	rep := &DistributionReport{Study: t.Study.ExternalID, Path: t.Path, Result: res}
	if !save {
		return rep, nil
	}

	m, err := p.persister()
	if err != nil {
		return nil, err
	}
	if rep.Summary, err = m.SaveDistribution(t.Study.ExternalID, res); err != nil {
		return nil, fmt.Errorf("saving study %s: %w", t.Study.ExternalID, err)
	}
	return rep, nil
}
