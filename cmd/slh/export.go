package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/0xn0va/slh-sh/internal/export"
	"github.com/0xn0va/slh-sh/internal/storage"
)

var (
	exportID     string
	exportFormat string
	exportOut    string
)

func init() {
	for _, c := range []*cobra.Command{exportAnnotsCmd, exportDistCmd} {
		c.Flags().StringVar(&exportID, "id", "", "Only rows of this study")
		c.Flags().StringVar(&exportFormat, "format", "jsonl", "Output format (jsonl, csv)")
		c.Flags().StringVarP(&exportOut, "output", "o", "", "Write to file instead of stdout")
	}
	exportStudiesCmd.Flags().StringVarP(&exportOut, "output", "o", "", "Write to file instead of stdout")

	exportCmd.AddCommand(exportAnnotsCmd, exportDistCmd, exportStudiesCmd)
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored highlights, term occurrences or studies",
}

var exportAnnotsCmd = &cobra.Command{
	Use:   "annots",
	Short: "Export stored highlights as JSONL or CSV",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExportRows(func(db *storage.DB, w io.Writer, f export.Format) error {
			rows, err := db.ListAnnotations(exportID)
			if err != nil {
				return err
			}
			return export.WriteAnnotations(w, rows, f)
		})
	},
}

var exportDistCmd = &cobra.Command{
	Use:   "dist",
	Short: "Export stored term occurrences as JSONL or CSV",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExportRows(func(db *storage.DB, w io.Writer, f export.Format) error {
			rows, err := db.ListDistribution(exportID)
			if err != nil {
				return err
			}
			return export.WriteDistribution(w, rows, f)
		})
	},
}

func runExportRows(write func(*storage.DB, io.Writer, export.Format) error) error {
	format, err := export.ParseFormat(exportFormat, export.FormatJSONL, export.FormatCSV)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	root := mustFindProject()
	cfg := mustLoadConfig(root)
	db := mustOpenDatabase(root, cfg)
	defer db.Close()

	w, closeOut := mustOutput(exportOut)
	defer closeOut()

	if err := write(db, w, format); err != nil {
		exitWithError(ExitError, "exporting: %v", err)
	}
	if exportOut != "" {
		if humanOutput {
			fmt.Printf("Exported to %s\n", exportOut)
		} else {
			outputJSON(StatusResponse{Status: "exported", Path: exportOut})
		}
	}
	return nil
}

var exportStudiesCmd = &cobra.Command{
	Use:   "studies",
	Short: "Export stored studies as JSONL",
	Long: `Export stored studies as JSONL, one study per line, in the format read
by "slh import".

Examples:
  slh export studies -o studies.jsonl`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		root := mustFindProject()
		cfg := mustLoadConfig(root)
		db := mustOpenDatabase(root, cfg)
		defer db.Close()

		studies, err := db.ListStudies(0)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}

		if exportOut == "" {
			if err := storage.EncodeStudies(os.Stdout, studies); err != nil {
				exitWithError(ExitError, "exporting: %v", err)
			}
			return nil
		}
		if err := storage.WriteStudies(exportOut, studies); err != nil {
			exitWithError(ExitError, "exporting: %v", err)
		}
		if humanOutput {
			fmt.Printf("Exported %d studies to %s\n", len(studies), exportOut)
		} else {
			outputJSON(StatusResponse{Status: "exported", Path: exportOut})
		}
		return nil
	},
}

// mustOutput opens path for writing, or returns stdout for "".
func mustOutput(path string) (io.Writer, func()) {
	if path == "" {
		return os.Stdout, func() {}
	}
	f, err := os.Create(path)
	if err != nil {
		exitWithError(ExitError, "creating %s: %v", path, err)
	}
	return f, func() { f.Close() }
}
