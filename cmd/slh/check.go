package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/0xn0va/slh-sh/internal/pdf"
	"github.com/0xn0va/slh-sh/internal/storage"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the PDF folder against the database",
	Long: `Verify the PDF folder against the database.

Reports PDFs that fail validation, PDFs whose id has no study, studies
without a PDF, and studies whose stored DOI differs from the one printed
in the PDF.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

// Issue types reported by check.
const (
	IssueInvalidPDF   = "invalid_pdf"
	IssueUnknownStudy = "unknown_study"
	IssueMissingPDF   = "missing_pdf"
	IssueDOIMismatch  = "doi_mismatch"
)

// CheckResult is the response for the check command.
type CheckResult struct {
	Status  string       `json:"status"`
	PDFs    int          `json:"pdfs"`
	Studies int          `json:"studies"`
	Pages   int          `json:"pages"`
	Issues  []CheckIssue `json:"issues"`
}

// CheckIssue represents a single issue found during check.
type CheckIssue struct {
	Type   string `json:"type"`
	ID     string `json:"id,omitempty"`
	File   string `json:"file,omitempty"`
	Detail string `json:"detail,omitempty"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	root := mustFindProject()
	cfg := mustLoadConfig(root)
	db := mustOpenDatabase(root, cfg)
	defer db.Close()

	res, err := checkProject(db, mustLocator(root, cfg))
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if !humanOutput {
		return outputJSON(res)
	}
	if len(res.Issues) == 0 {
		fmt.Printf("Project check: OK\n\n%d PDFs (%d pages), %d studies checked\n", res.PDFs, res.Pages, res.Studies)
		return nil
	}
	fmt.Printf("Project check: %d issues found\n\n", len(res.Issues))
	for _, issue := range res.Issues {
		fmt.Printf("  [WARN] %s %s %s\n", issue.Type, issue.ID, issue.File)
		if issue.Detail != "" {
			fmt.Printf("         %s\n", issue.Detail)
		}
	}
	fmt.Printf("\n%d PDFs (%d pages), %d studies checked\n", res.PDFs, res.Pages, res.Studies)
	return nil
}

func checkProject(db *storage.DB, loc *pdf.Locator) (*CheckResult, error) {
	paths, err := loc.List()
	if err != nil {
		return nil, err
	}
	studies, err := db.ListStudies(0)
	if err != nil {
		return nil, err
	}

	res := &CheckResult{PDFs: len(paths), Studies: len(studies), Issues: []CheckIssue{}}
	seen := make(map[string]string, len(paths))

	for _, path := range paths {
		id := pdf.IDFromFilename(path)
		file := filepath.Base(path)
		seen[id] = path

		pages, err := pdf.Validate(path)
		if err != nil {
			res.Issues = append(res.Issues, CheckIssue{Type: IssueInvalidPDF, ID: id, File: file, Detail: err.Error()})
			continue
		}
		res.Pages += pages
	}

	for _, st := range studies {
		path, ok := seen[st.ExternalID]
		if !ok {
			res.Issues = append(res.Issues, CheckIssue{Type: IssueMissingPDF, ID: st.ExternalID, File: st.Filename})
			continue
		}
		delete(seen, st.ExternalID)

		if st.DOI == "" {
			continue
		}
		found, err := pdf.ExtractDOI(path)
		if err != nil || found == "" {
			continue
		}
		if !strings.EqualFold(found, st.DOI) {
			res.Issues = append(res.Issues, CheckIssue{
				Type:   IssueDOIMismatch,
				ID:     st.ExternalID,
				File:   filepath.Base(path),
				Detail: fmt.Sprintf("stored %s, PDF has %s", st.DOI, found),
			})
		}
	}

	for _, path := range paths {
		id := pdf.IDFromFilename(path)
		if p, ok := seen[id]; ok && p == path {
			res.Issues = append(res.Issues, CheckIssue{Type: IssueUnknownStudy, ID: id, File: filepath.Base(path)})
		}
	}

	res.Status = "ok"
	if len(res.Issues) > 0 {
		res.Status = "issues"
	}
	return res, nil
}
