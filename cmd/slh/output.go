package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/0xn0va/slh-sh/internal/color"
	"github.com/0xn0va/slh-sh/internal/extract"
)

const (
	ListTitleMaxLen = 50 // Used in list command output
	TextMaxLen      = 90 // Used for excerpts in human output
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputHuman writes a human-readable string to stdout.
func outputHuman(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// exitCode maps engine errors to exit codes.
func exitCode(err error) int {
	switch {
	case errors.Is(err, extract.ErrNotFound):
		return ExitNotFound
	case errors.Is(err, extract.ErrThemeNotConfigured), errors.Is(err, color.ErrFormat), errors.Is(err, extract.ErrEmptyTerm):
		return ExitDataError
	}
	return ExitError
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
}

// UpdateResponse is the response for config set commands.
type UpdateResponse struct {
	Status string `json:"status"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// truncateString truncates a string to maxLen runes, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
