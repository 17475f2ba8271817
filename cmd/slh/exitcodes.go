package main

// Exit codes
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (no project, invalid slh.yaml, missing pdf_path)
	ExitDataError   = 3 // Data error (malformed input, unconfigured theme, invalid PDF)
	ExitNotFound    = 4 // Study, theme or PDF not found
)
