// Package storage handles study persistence in SQLite and study exchange in
// JSONL.
package storage

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/0xn0va/slh-sh/internal/study"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines (1MB per line).
const MaxJSONLLineCapacity = 1024 * 1024

// ReadStudies reads all studies from a JSONL file. A missing file yields no
// studies.
func ReadStudies(path string) ([]study.Study, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening studies file: %w", err)
	}
	defer f.Close()

	var studies []study.Study
	scanner := bufio.NewScanner(f)

	// Increase buffer size for long lines
	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue // Skip empty lines
		}

		var s study.Study
		if err := json.Unmarshal(line, &s); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		studies = append(studies, s)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading studies file: %w", err)
	}

	return studies, nil
}

// WriteStudies writes all studies to a JSONL file, replacing existing content.
func WriteStudies(path string, studies []study.Study) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating studies file: %w", err)
	}
	defer f.Close()

	return EncodeStudies(f, studies)
}

// EncodeStudies writes one JSON object per line.
func EncodeStudies(w io.Writer, studies []study.Study) error {
	for i, s := range studies {
		data, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("encoding study %d: %w", i, err)
		}

		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("writing study %d: %w", i, err)
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return fmt.Errorf("writing newline: %w", err)
		}
	}

	return nil
}

// ImportStudies upserts every study in the JSONL file and returns how many
// were read.
func (d *DB) ImportStudies(path string) (int, error) {
	studies, err := ReadStudies(path)
	if err != nil {
		return 0, fmt.Errorf("reading JSONL: %w", err)
	}
	for _, s := range studies {
		if _, err := d.UpsertStudy(s); err != nil {
			return 0, err
		}
	}
	return len(studies), nil
}
