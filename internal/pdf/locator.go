package pdf

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/0xn0va/slh-sh/internal/document"
)

// Locator finds study PDFs in the project's PDF directory and opens them in
// a viewer. Files are named "<id>_<authors>_<year>.pdf"; a leading "#" on
// the name is ignored.
type Locator struct {
	pdfRoot   string
	pdfReader string
}

// NewLocator creates a locator rooted at pdfRoot.
func NewLocator(pdfRoot, pdfReader string) *Locator {
	if pdfReader == "" {
		pdfReader = "system"
	}
	return &Locator{
		pdfRoot:   pdfRoot,
		pdfReader: pdfReader,
	}
}

// IDFromFilename returns the study identifier encoded in a PDF file name.
func IDFromFilename(name string) string {
	name = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	id, _, _ := strings.Cut(name, "_")
	return strings.ReplaceAll(id, "#", "")
}

// List returns the absolute paths of every PDF in the directory, sorted.
func (l *Locator) List() ([]string, error) {
	if l.pdfRoot == "" {
		return nil, fmt.Errorf("pdf_path not configured")
	}
	entries, err := os.ReadDir(l.pdfRoot)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", l.pdfRoot, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		paths = append(paths, filepath.Join(l.pdfRoot, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// Find resolves the PDF of a study. A stored filename is tried first, then
// the directory is scanned for a name carrying the id.
func (l *Locator) Find(id, filename string) (string, error) {
	if filename != "" {
		full := filepath.Join(l.pdfRoot, filename)
		if _, err := os.Stat(full); err == nil {
			return full, nil
		}
	}

	paths, err := l.List()
	if err != nil {
		return "", err
	}
	for _, p := range paths {
		if IDFromFilename(p) == id {
			return p, nil
		}
	}
	return "", fmt.Errorf("PDF for study %s: %w", id, document.ErrNotFound)
}

// Open opens a PDF file using the configured reader.
func (l *Locator) Open(fullPath string) error {
	// Fail fast if file doesn't exist
	if _, err := os.Stat(fullPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", document.ErrNotFound, fullPath)
		}
		return fmt.Errorf("checking PDF file: %w", err)
	}

	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = l.darwinCommand(fullPath)
	case "linux":
		cmd = l.linuxCommand(fullPath)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}

func (l *Locator) darwinCommand(path string) *exec.Cmd {
	switch l.pdfReader {
	case "skim":
		return exec.Command("open", "-a", "Skim", path)
	case "preview":
		return exec.Command("open", "-a", "Preview", path)
	default: // "system"
		return exec.Command("open", path)
	}
}

func (l *Locator) linuxCommand(path string) *exec.Cmd {
	switch l.pdfReader {
	case "zathura":
		return exec.Command("zathura", path)
	case "evince":
		return exec.Command("evince", path)
	case "okular":
		return exec.Command("okular", path)
	default: // "system"
		return exec.Command("xdg-open", path)
	}
}
