package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/0xn0va/slh-sh/internal/clipboard"
	"github.com/0xn0va/slh-sh/internal/export"
	"github.com/0xn0va/slh-sh/internal/pdf"
	"github.com/0xn0va/slh-sh/internal/persist"
)

var (
	extractID     string
	extractAll    bool
	extractSave   bool
	extractStrict bool
	annotsColor   string
	annotsCopy    bool
	distOutput    string
)

func init() {
	for _, c := range []*cobra.Command{extractAnnotsCmd, extractDistCmd, extractKeywordsCmd} {
		c.Flags().StringVar(&extractID, "id", "", "Study id (the number before the first _ in the PDF name)")
		c.Flags().BoolVar(&extractAll, "all", false, "Process every PDF in pdf_path")
		c.Flags().BoolVar(&extractSave, "db", false, "Save results to the database")
		c.MarkFlagsMutuallyExclusive("id", "all")
	}
	for _, c := range []*cobra.Command{extractAnnotsCmd, extractDistCmd} {
		c.Flags().BoolVar(&extractStrict, "strict", false, "Fail on colors or terms without a configured theme")
	}
	extractAnnotsCmd.Flags().StringVar(&annotsColor, "color", "", "Only highlights of this theme (name or hex)")
	extractAnnotsCmd.Flags().BoolVar(&annotsCopy, "copy", false, "Copy the highlighted text to the clipboard")
	extractDistCmd.Flags().StringVar(&distOutput, "output", "", "Write the per-page histogram instead (json, yaml, csv)")

	extractCmd.AddCommand(extractAnnotsCmd, extractDistCmd, extractKeywordsCmd)
	rootCmd.AddCommand(extractCmd)
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract highlights, term distributions or keywords from study PDFs",
}

var extractAnnotsCmd = &cobra.Command{
	Use:   "annots",
	Short: "Extract highlighted text",
	Long: `Extract the text under highlight annotations.

Highlights are matched to themes by color distance. With --color only
highlights close to that theme are returned.

Examples:
  slh extract annots --id 12
  slh extract annots --id 12 --color red --db
  slh extract annots --all --db`,
	Args: cobra.NoArgs,
	RunE: runExtractAnnots,
}

var extractDistCmd = &cobra.Command{
	Use:   "dist <term>",
	Short: "Extract the paragraphs around every occurrence of a term",
	Long: `Extract the paragraph around every occurrence of a term.

Examples:
  slh extract dist "regulation" --id 12
  slh extract dist "regulation" --id 12 --output csv > dist.csv
  slh extract dist "Challenges in AI Ethics" --all --db`,
	Args: cobra.ExactArgs(1),
	RunE: runExtractDist,
}

var extractKeywordsCmd = &cobra.Command{
	Use:   "keywords",
	Short: "Extract the keyword list printed in the study",
	Args:  cobra.NoArgs,
	RunE:  runExtractKeywords,
}

func mustPipeline() (*pipeline, func()) {
	root := mustFindProject()
	cfg := mustLoadConfig(root)
	db := mustOpenDatabase(root, cfg)
	p := newPipeline(db, mustLocator(root, cfg), mustThemeIndex(cfg), cfg)
	p.strict = extractStrict
	return p, func() { db.Close() }
}

func mustTargets(p *pipeline) []target {
	targets, err := p.targets(extractID, extractAll)
	if err != nil {
		exitWithError(exitCode(err), "%v", err)
	}
	return targets
}

// each runs fn over every target. A failure aborts a single-study run and
// is logged and skipped in an --all run.
func each(targets []target, fn func(target) error) {
	for _, t := range targets {
		if err := fn(t); err != nil {
			if !extractAll {
				exitWithError(exitCode(err), "%v", err)
			}
			logger.Warn("skipping study", "study", t.Study.ExternalID, "err", err)
		}
	}
}

func runExtractAnnots(cmd *cobra.Command, args []string) error {
	p, done := mustPipeline()
	defer done()

	var reports []*AnnotationReport
	each(mustTargets(p), func(t target) error {
		rep, err := p.annotate(t, annotsColor, extractSave)
		if err != nil {
			return err
		}
		reports = append(reports, rep)
		return nil
	})

	if annotsCopy {
		if err := clipboard.Copy(highlights(reports)); err != nil {
			logger.Warn("copying to clipboard", "err", err)
		}
	}

	if !humanOutput {
		return outputJSON(reports)
	}
	for _, r := range reports {
		outputHuman("Study %s: %d highlights\n", r.Study, r.Result.Total)
		for _, rec := range r.Result.Records {
			name := "-"
			if rec.Theme != nil {
				name = rec.Theme.Color
			}
			outputHuman("  p.%-3d %-8s %s\n", rec.Page, name, truncateString(rec.Text, TextMaxLen))
		}
		printSummary(r.Summary)
	}
	return nil
}

func runExtractDist(cmd *cobra.Command, args []string) error {
	var format export.Format
	if distOutput != "" {
		f, err := export.ParseFormat(distOutput, export.FormatJSON, export.FormatYAML, export.FormatCSV)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		format = f
	}

	p, done := mustPipeline()
	defer done()

	term := args[0]
	var reports []*DistributionReport
	each(mustTargets(p), func(t target) error {
		rep, err := p.distribute(t, term, extractSave)
		if err != nil {
			return err
		}
		reports = append(reports, rep)
		return nil
	})

	if format != "" {
		counts := map[int]int{}
		for _, r := range reports {
			for page, n := range r.Result.PageCounts {
				counts[page] += n
			}
		}
		if err := export.WritePageCounts(os.Stdout, counts, format); err != nil {
			exitWithError(ExitError, "writing histogram: %v", err)
		}
		return nil
	}

	if !humanOutput {
		return outputJSON(reports)
	}
	for _, r := range reports {
		outputHuman("Study %s: %d occurrences of %q\n", r.Study, r.Result.Total, term)
		for _, rec := range r.Result.Records {
			outputHuman("  p.%-3d %s\n", rec.Page, truncateString(rec.Text, TextMaxLen))
		}
		printSummary(r.Summary)
	}
	return nil
}

// KeywordsResult is the response for extract keywords.
type KeywordsResult struct {
	Study    string `json:"study"`
	Keywords string `json:"keywords"`
	Saved    bool   `json:"saved,omitempty"`
}

func runExtractKeywords(cmd *cobra.Command, args []string) error {
	p, done := mustPipeline()
	defer done()

	var results []KeywordsResult
	each(mustTargets(p), func(t target) error {
		kw, err := pdf.ExtractKeywords(t.Path)
		if err != nil {
			return err
		}
		res := KeywordsResult{Study: t.Study.ExternalID, Keywords: kw}
		if extractSave && kw != "" {
			if err := p.db.SetKeywords(t.Study.ExternalID, kw); err != nil {
				return err
			}
			res.Saved = true
		}
		results = append(results, res)
		return nil
	})

	if !humanOutput {
		return outputJSON(results)
	}
	for _, r := range results {
		kw := r.Keywords
		if kw == "" {
			kw = "(none found)"
		}
		outputHuman("%s: %s\n", r.Study, kw)
	}
	return nil
}

// highlights collects the text of every highlight across reports.
func highlights(reports []*AnnotationReport) string {
	var texts []string
	for _, r := range reports {
		for _, rec := range r.Result.Records {
			texts = append(texts, rec.Text)
		}
	}
	return clipboard.Lines(texts)
}

func printSummary(s *persist.Summary) {
	if s == nil {
		return
	}
	fmt.Printf("  saved: %d inserted, %d skipped, %d failed, %d without theme (run %s)\n",
		s.Inserted, s.Skipped, s.Failed, s.Unthemed, s.RunID)
}
