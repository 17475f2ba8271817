package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/0xn0va/slh-sh/internal/storage"
	"github.com/0xn0va/slh-sh/internal/study"
)

func init() {
	rootCmd.AddCommand(getCmd)
}

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a study with its stored highlights and term occurrences",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

// StudyDetail is the response for the get command.
type StudyDetail struct {
	study.Study
	Annotations  []storage.AnnotationRow   `json:"annotations"`
	Distribution []storage.DistributionRow `json:"distribution"`
	Runs         []storage.Run             `json:"runs"`
}

func runGet(cmd *cobra.Command, args []string) error {
	root := mustFindProject()
	cfg := mustLoadConfig(root)
	db := mustOpenDatabase(root, cfg)
	defer db.Close()

	id := args[0]
	st, err := db.GetStudy(id)
	if err != nil {
		exitWithError(ExitError, "getting study: %v", err)
	}
	if st == nil {
		exitWithError(ExitNotFound, "study not found: %s", id)
	}

	detail := StudyDetail{Study: *st}
	if detail.Annotations, err = db.ListAnnotations(id); err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if detail.Distribution, err = db.ListDistribution(id); err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if detail.Runs, err = db.ListRuns(st.ID); err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if !humanOutput {
		return outputJSON(detail)
	}

	fmt.Printf("%s  %s\n", st.ExternalID, st.Title)
	if st.Authors != "" {
		fmt.Printf("    %s (%d)\n", st.Authors, st.Year)
	}
	if st.DOI != "" {
		fmt.Printf("    doi: %s\n", st.DOI)
	}
	if st.Keywords != "" {
		fmt.Printf("    keywords: %s\n", st.Keywords)
	}
	fmt.Printf("\nHighlights (%d)\n", st.TotalAnnotations)
	for _, a := range detail.Annotations {
		fmt.Printf("  p.%-3d %s %s\n", a.Page, a.Hex, truncateString(a.Text, TextMaxLen))
	}
	fmt.Printf("\nTerm occurrences (%d)\n", st.TotalDistribution)
	for _, d := range detail.Distribution {
		fmt.Printf("  p.%-3d [%s] %s\n", d.Page, d.Term, truncateString(d.Text, TextMaxLen))
	}
	return nil
}
