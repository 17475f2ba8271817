package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/0xn0va/slh-sh/internal/config"
	"github.com/0xn0va/slh-sh/internal/storage"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init [name]",
	Short: "Initialize a new slh project",
	Long: `Initialize a new slh project.

With a name, creates the project in ./<name>; otherwise in the current
directory.

Creates:
  slh.yaml       # Default config with example themes, searches and sources
  studies_pdf/   # PDF folder
  slh.db         # SQLite database`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		exitWithError(ExitError, "getting current directory: %v", err)
	}

	root := cwd
	name := filepath.Base(cwd)
	if len(args) == 1 {
		name = args[0]
		root = filepath.Join(cwd, name)
	}

	if err := initProject(root, name); err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if humanOutput {
		fmt.Printf("Initialized slh project %q in %s\n", name, root)
	} else {
		outputJSON(StatusResponse{Status: "initialized", Path: root})
	}
	return nil
}

// initProject writes the default config, the PDF folder and the database.
func initProject(root, name string) error {
	if config.IsProject(root) {
		return fmt.Errorf("%s already contains %s", root, config.ConfigFile)
	}

	cfg := config.Default(name)
	if err := os.MkdirAll(config.ResolvePath(root, cfg.PDFPath), 0755); err != nil {
		return fmt.Errorf("creating PDF directory: %w", err)
	}
	if err := cfg.Save(root); err != nil {
		return err
	}

	db, err := storage.OpenDB(config.ResolvePath(root, cfg.SQLiteDB))
	if err != nil {
		return fmt.Errorf("creating database: %w", err)
	}
	return db.Close()
}
