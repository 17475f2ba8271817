// Package clipboard copies extracted highlights to the system clipboard through
// pbcopy, xclip or xsel.
package clipboard

import (
	"errors"
	"os/exec"
	"runtime"
	"strings"
)

// ErrUnavailable is returned when no clipboard tool is installed.
var ErrUnavailable = errors.New("clipboard unavailable")

// command returns the copy command for this platform.
func command() (*exec.Cmd, error) {
	switch runtime.GOOS {
	case "darwin":
		if _, err := exec.LookPath("pbcopy"); err == nil {
			return exec.Command("pbcopy"), nil
		}
	case "linux":
		if _, err := exec.LookPath("xclip"); err == nil {
			return exec.Command("xclip", "-selection", "clipboard"), nil
		}
		if _, err := exec.LookPath("xsel"); err == nil {
			return exec.Command("xsel", "--clipboard", "--input"), nil
		}
	}
	return nil, ErrUnavailable
}

// IsAvailable reports whether Copy can work on this system.
func IsAvailable() bool {
	_, err := command()
	return err == nil
}

// Copy replaces the clipboard contents with text.
func Copy(text string) error {
	cmd, err := command()
	if err != nil {
		return err
	}
	cmd.Stdin = strings.NewReader(text)
	return cmd.Run()
}

// Lines joins excerpts one per line, trimmed, dropping blank ones.
func Lines(excerpts []string) string {
	var b strings.Builder
	for _, e := range excerpts {
		if e = strings.TrimSpace(e); e != "" {
			b.WriteString(e)
			b.WriteByte('\n')
		}
	}
	return b.String()
}
