package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/0xn0va/slh-sh/internal/storage"
)

var listLimit int

func init() {
	listStudiesCmd.Flags().IntVar(&listLimit, "limit", 0, "Maximum number of studies (0 = all)")
	listCmd.AddCommand(listStudiesCmd, listThemesCmd, listSearchesCmd, listSourcesCmd)
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored studies, themes, searches or sources",
}

var listStudiesCmd = &cobra.Command{
	Use:   "studies",
	Short: "List stored studies with their counters",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		root := mustFindProject()
		cfg := mustLoadConfig(root)
		db := mustOpenDatabase(root, cfg)
		defer db.Close()

		studies, err := db.ListStudies(listLimit)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		if !humanOutput {
			return outputJSON(studies)
		}
		for _, s := range studies {
			fmt.Printf("%-8s %-50s %4d annots %4d dist\n",
				s.ExternalID, truncateString(s.Title, ListTitleMaxLen), s.TotalAnnotations, s.TotalDistribution)
		}
		if listLimit > 0 && len(studies) == listLimit {
			if total, err := db.CountStudies(); err == nil && total > len(studies) {
				fmt.Printf("\nShowing %d of %d studies\n", len(studies), total)
			}
		}
		return nil
	},
}

var listThemesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List stored themes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		root := mustFindProject()
		cfg := mustLoadConfig(root)
		db := mustOpenDatabase(root, cfg)
		defer db.Close()

		themes, err := db.ListThemes()
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		if !humanOutput {
			return outputJSON(themes)
		}
		for _, t := range themes {
			fmt.Printf("%-3d %-10s %s  %s\n", t.ID, t.Color, t.Hex, t.Term)
		}
		return nil
	},
}

var listSearchesCmd = &cobra.Command{
	Use:   "searches",
	Short: "List stored searches",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listNamed(storage.Searches)
	},
}

var listSourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List stored sources",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listNamed(storage.Sources)
	},
}

func listNamed(table storage.NamedTable) error {
	root := mustFindProject()
	cfg := mustLoadConfig(root)
	db := mustOpenDatabase(root, cfg)
	defer db.Close()

	entries, err := db.ListNamed(table)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if !humanOutput {
		return outputJSON(entries)
	}
	for _, e := range entries {
		fmt.Printf("%-12s %s\n", e.Name, e.Description)
	}
	return nil
}
