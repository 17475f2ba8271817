package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/0xn0va/slh-sh/internal/pdf"
	"github.com/0xn0va/slh-sh/internal/storage"
	"github.com/0xn0va/slh-sh/internal/study"
)

var importFromPDFs bool

func init() {
	importCmd.Flags().BoolVar(&importFromPDFs, "from-pdfs", false, "Register every PDF in pdf_path that has no study yet")
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import [studies.jsonl]",
	Short: "Import studies into the database",
	Long: `Import studies into the database.

Each JSONL line is a study object with at least "external_id". Existing
studies are updated in place; their extraction counters are kept.

With --from-pdfs, every PDF named "<id>_..." in pdf_path whose id is not
stored yet is registered with its file name.

Examples:
  slh import studies.jsonl
  slh import --from-pdfs`,
	Args: cobra.MaximumNArgs(1),
	RunE: runImport,
}

// ImportResult is the response for the import command.
type ImportResult struct {
	Imported   int `json:"imported"`
	Registered int `json:"registered"`
}

func runImport(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !importFromPDFs {
		exitWithError(ExitError, "a JSONL file or --from-pdfs is required")
	}

	root := mustFindProject()
	cfg := mustLoadConfig(root)
	db := mustOpenDatabase(root, cfg)
	defer db.Close()

	var res ImportResult
	if len(args) == 1 {
		n, err := db.ImportStudies(args[0])
		if err != nil {
			exitWithError(ExitDataError, "importing %s: %v", args[0], err)
		}
		res.Imported = n
	}
	if importFromPDFs {
		n, err := registerPDFs(db, mustLocator(root, cfg))
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		res.Registered = n
	}

	if humanOutput {
		fmt.Printf("Imported %d studies, registered %d PDFs\n", res.Imported, res.Registered)
	} else {
		outputJSON(res)
	}
	return nil
}

// registerPDFs stores a bare study for each PDF whose id is unknown.
func registerPDFs(db *storage.DB, loc *pdf.Locator) (int, error) {
	paths, err := loc.List()
	if err != nil {
		return 0, err
	}

	n := 0
	for _, path := range paths {
		id := pdf.IDFromFilename(path)
		if id == "" {
			continue
		}
		existing, err := db.GetStudy(id)
		if err != nil {
			return n, err
		}
		if existing != nil {
			continue
		}
		if _, err := db.UpsertStudy(study.Study{ExternalID: id, Filename: filepath.Base(path)}); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
