package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/0xn0va/slh-sh/internal/config"
	"github.com/0xn0va/slh-sh/internal/storage"
)

func init() {
	rootCmd.AddCommand(syncCmd)
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Add configured themes, searches and sources to the database",
	Long: `Add the themes, searches and sources from slh.yaml to the database.

Entries already stored are left unchanged; only missing ones are inserted.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

// SyncResult is the response for the sync command.
type SyncResult struct {
	Themes   int `json:"themes_added"`
	Searches int `json:"searches_added"`
	Sources  int `json:"sources_added"`
}

func runSync(cmd *cobra.Command, args []string) error {
	root := mustFindProject()
	cfg := mustLoadConfig(root)
	db := mustOpenDatabase(root, cfg)
	defer db.Close()

	res, err := syncConfig(db, cfg)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if humanOutput {
		fmt.Printf("Added %d themes, %d searches, %d sources\n", res.Themes, res.Searches, res.Sources)
	} else {
		outputJSON(res)
	}
	return nil
}

func syncConfig(db *storage.DB, cfg *config.Config) (*SyncResult, error) {
	idx, err := cfg.ThemeIndex()
	if err != nil {
		return nil, err
	}

	var res SyncResult
	if res.Themes, err = db.SyncThemes(idx.Themes()); err != nil {
		return nil, err
	}
	if res.Searches, err = db.SyncNamed(storage.Searches, toNamed(cfg.Searches)); err != nil {
		return nil, err
	}
	if res.Sources, err = db.SyncNamed(storage.Sources, toNamed(cfg.Sources)); err != nil {
		return nil, err
	}
	return &res, nil
}

func toNamed(l config.NamedList) []storage.Named {
	out := make([]storage.Named, len(l))
	for i, n := range l {
		out[i] = storage.Named{Name: n.Name, Description: n.Description}
	}
	return out
}
