package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/0xn0va/slh-sh/internal/config"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get or set configuration values",
	Long: `Get or set configuration values in slh.yaml.

Usage:
  slh config                         # Show all config
  slh config pdf_path                # Get specific value
  slh config pdf_path ~/thesis/pdfs  # Set value
  slh config pdf_reader skim         # Set PDF reader

Keys:
  pdf_path          PDF folder, absolute or relative to the project
  pdf_reader        PDF reader preference (system, skim, zathura, evince, okular)
  sqlite_db         Database file, absolute or relative to the project
  color_threshold   Maximum RGB distance for a highlight to match a theme
  case_insensitive  Fold case when searching terms (true, false)

Themes, searches and sources are edited in slh.yaml and stored with
'slh sync'.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	root := mustFindProject()
	cfg := mustLoadConfig(root)

	if len(args) == 0 {
		if humanOutput {
			for _, k := range config.Keys {
				v, _ := cfg.Get(k)
				fmt.Printf("%-17s %s\n", k+":", v)
			}
			for _, t := range cfg.Themes {
				fmt.Printf("theme %-11s %s  %s\n", t.Color, t.Hex, t.Term)
			}
		} else {
			outputJSON(cfg)
		}
		return nil
	}

	key := normalizeKey(args[0])

	if len(args) == 1 {
		v, err := cfg.Get(key)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		if humanOutput {
			fmt.Println(v)
		} else {
			outputJSON(map[string]string{key: v})
		}
		return nil
	}

	value := args[1]
	if err := cfg.Set(key, value); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	if err := cfg.Save(root); err != nil {
		exitWithError(ExitError, "saving config: %v", err)
	}

	if humanOutput {
		fmt.Printf("Set %s = %s\n", key, value)
	} else {
		outputJSON(UpdateResponse{Status: "updated", Key: key, Value: value})
	}
	return nil
}

// normalizeKey accepts pdf-path as well as pdf_path.
func normalizeKey(key string) string {
	return strings.ReplaceAll(strings.ToLower(key), "-", "_")
}
