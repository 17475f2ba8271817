// Package main provides the slh CLI entry point.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/0xn0va/slh-sh/internal/config"
	"github.com/0xn0va/slh-sh/internal/pdf"
	"github.com/0xn0va/slh-sh/internal/storage"
	"github.com/0xn0va/slh-sh/internal/theme"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	verbose     bool
	logger      = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// SilenceErrors hides cobra's own message
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "slh",
	Short: "Systematic literature review helper",
	Long: `slh extracts highlights and term distributions from study PDFs.

Highlights are matched to the themes configured in slh.yaml by color;
term occurrences are collected with their surrounding paragraph. Results
are stored in a local SQLite database and can be exported as JSONL or
CSV.

All commands output JSON by default. Use --human for readable output.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()

		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log skipped pages and duplicate records")
	rootCmd.Version = Version
}

// mustFindProject locates the project root, exits on error.
func mustFindProject() string {
	cwd, err := os.Getwd()
	if err != nil {
		exitWithError(ExitError, "getting current directory: %v", err)
	}

	root, err := config.ResolveProject(cwd)
	if err != nil {
		fmt.Fprintln(os.Stderr, config.HelpfulConfigMessage())
		os.Exit(ExitConfigError)
	}
	return root
}

// mustLoadConfig loads and validates slh.yaml, exits on error.
func mustLoadConfig(root string) *config.Config {
	cfg, err := config.Load(root)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		exitWithError(ExitConfigError, "invalid %s: %v", config.ConfigFile, err)
	}
	return cfg
}

// mustOpenDatabase opens the project database, exits on error.
// The caller is responsible for calling Close() on the returned DB.
func mustOpenDatabase(root string, cfg *config.Config) *storage.DB {
	name := cfg.SQLiteDB
	if name == "" {
		name = config.DefaultDBFile
	}
	db, err := storage.OpenDB(config.ResolvePath(root, name))
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	return db
}

// mustThemeIndex builds the configured theme index, exits on error.
func mustThemeIndex(cfg *config.Config) *theme.Index {
	idx, err := cfg.ThemeIndex()
	if err != nil {
		exitWithError(ExitConfigError, "themes: %v", err)
	}
	return idx
}

// mustLocator returns a PDF locator for the configured pdf_path, exits if it
// is not set.
func mustLocator(root string, cfg *config.Config) *pdf.Locator {
	if cfg.PDFPath == "" {
		exitWithError(ExitConfigError, "pdf_path not configured\n  Hint: Use 'slh config pdf_path /path/to/pdfs' to set the PDF directory")
	}
	return pdf.NewLocator(config.ResolvePath(root, cfg.PDFPath), cfg.PDFReader)
}
