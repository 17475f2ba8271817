package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(openCmd)
}

var openCmd = &cobra.Command{
	Use:   "open <id>",
	Short: "Open a study's PDF in the configured viewer",
	Long: `Open a study's PDF in the configured viewer.

Examples:
  slh open 12
  slh config pdf_reader zathura && slh open 12`,
	Args: cobra.ExactArgs(1),
	RunE: runOpen,
}

func runOpen(cmd *cobra.Command, args []string) error {
	root := mustFindProject()
	cfg := mustLoadConfig(root)
	db := mustOpenDatabase(root, cfg)
	defer db.Close()

	p := newPipeline(db, mustLocator(root, cfg), nil, cfg)
	targets, err := p.targets(args[0], false)
	if err != nil {
		exitWithError(exitCode(err), "%v", err)
	}
	path := targets[0].Path

	if err := p.locator.Open(path); err != nil {
		exitWithError(exitCode(err), "opening PDF: %v", err)
	}

	if humanOutput {
		fmt.Printf("Opening: %s\n", path)
	} else {
		outputJSON(StatusResponse{Status: "opened", Path: path})
	}
	return nil
}
