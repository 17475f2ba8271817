// Package config handles project and global configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/0xn0va/slh-sh/internal/color"
	"github.com/0xn0va/slh-sh/internal/theme"
)

const (
	ConfigFile    = "slh.yaml"
	DefaultDBFile = "slh.db"
	DefaultPDFDir = "studies_pdf"
	// RootEnv overrides project discovery.
	RootEnv = "SLH_ROOT"
)

// ValidReaders lists the supported PDF reader values.
var ValidReaders = []string{"system", "skim", "zathura", "evince", "okular"}

// ErrNoProject is returned when no slh.yaml is found.
var ErrNoProject = errors.New("not in an slh project (no " + ConfigFile + " found)")

// Config represents project configuration stored in slh.yaml.
type Config struct {
	ProjectName     string    `yaml:"project_name" json:"project_name"`
	SQLiteDB        string    `yaml:"sqlite_db" json:"sqlite_db"`
	PDFPath         string    `yaml:"pdf_path" json:"pdf_path"`
	PDFReader       string    `yaml:"pdf_reader,omitempty" json:"pdf_reader,omitempty"`
	ColorThreshold  *float64  `yaml:"color_threshold,omitempty" json:"color_threshold,omitempty"`
	CaseInsensitive bool      `yaml:"case_insensitive,omitempty" json:"case_insensitive"`
	Themes          ThemeList `yaml:"themes" json:"themes"`
	Searches        NamedList `yaml:"searches,omitempty" json:"searches,omitempty"`
	Sources         NamedList `yaml:"sources,omitempty" json:"sources,omitempty"`
}

// Default returns the configuration written by "slh init".
func Default(name string) *Config {
	return &Config{
		ProjectName: name,
		SQLiteDB:    DefaultDBFile,
		PDFPath:     DefaultPDFDir,
		PDFReader:   "system",
		Themes: ThemeList{
			{Color: "blue", Hex: "#3389FF", Term: "Challenges in AI Laws"},
			{Color: "red", Hex: "#FF3333", Term: "Challenges in AI Ethics"},
			{Color: "vio", Hex: "#CC33FF", Term: "Challenges in AI Politics"},
		},
		Searches: NamedList{
			{Name: "search_1", Description: "AI and Regulations"},
			{Name: "search_2", Description: "AI, Regulations"},
		},
		Sources: NamedList{
			{Name: "source_1", Description: "Google Scholar"},
			{Name: "source_2", Description: "Scopus"},
			{Name: "source_3", Description: "University Library"},
		},
	}
}

// Threshold returns the configured color distance threshold.
func (c *Config) Threshold() float64 {
	if c.ColorThreshold == nil {
		return color.DefaultThreshold
	}
	return *c.ColorThreshold
}

// ThemeIndex builds the lookup index over the configured themes.
func (c *Config) ThemeIndex() (*theme.Index, error) {
	return theme.NewIndex(c.Themes)
}

// Validate checks theme colors, terms, the threshold and the reader.
func (c *Config) Validate() error {
	for _, t := range c.Themes {
		if _, err := color.ParseHex(t.Hex); err != nil {
			return fmt.Errorf("theme %q: %w", t.Color, err)
		}
		if strings.TrimSpace(t.Term) == "" {
			return fmt.Errorf("theme %q: empty term", t.Color)
		}
	}
	if _, err := c.ThemeIndex(); err != nil {
		return err
	}
	if c.Threshold() < 0 {
		return fmt.Errorf("color_threshold must not be negative: %v", c.Threshold())
	}
	return ValidatePDFReader(c.PDFReader)
}

// Path returns the path to slh.yaml from a project root.
func Path(root string) string {
	return filepath.Join(root, ConfigFile)
}

// IsProject checks if root contains an slh.yaml file.
func IsProject(root string) bool {
	info, err := os.Stat(Path(root))
	return err == nil && !info.IsDir()
}

// FindProject walks up from start to the nearest directory with slh.yaml.
func FindProject(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		if IsProject(abs) {
			return abs, nil
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", ErrNoProject
		}
		abs = parent
	}
}

// ResolveProject locates the project root: $SLH_ROOT, then a walk up from
// start, then project_path from the global config.
func ResolveProject(start string) (string, error) {
	if env := os.Getenv(RootEnv); env != "" {
		root := ExpandPath(env)
		if !IsProject(root) {
			return "", fmt.Errorf("%s=%s: %w", RootEnv, root, ErrNoProject)
		}
		return root, nil
	}

	root, err := FindProject(start)
	if err == nil {
		return root, nil
	}

	global, gerr := LoadGlobalConfig()
	if gerr != nil {
		return "", gerr
	}
	if global.ProjectPath != "" && IsProject(global.ProjectPath) {
		return global.ProjectPath, nil
	}
	return "", err
}

// Load reads slh.yaml from the project at root.
func Load(root string) (*Config, error) {
	data, err := os.ReadFile(Path(root))
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes slh.yaml to the project at root.
func (c *Config) Save(root string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(Path(root), data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// ResolvePath returns p relative to root unless it is absolute or starts
// with ~.
func ResolvePath(root, p string) string {
	p = ExpandPath(p)
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

// Keys lists the settings accepted by Get and Set.
var Keys = []string{"pdf_path", "pdf_reader", "sqlite_db", "color_threshold", "case_insensitive"}

// Get returns the value of a scalar setting as a string.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "pdf_path":
		return c.PDFPath, nil
	case "pdf_reader":
		return c.PDFReader, nil
	case "sqlite_db":
		return c.SQLiteDB, nil
	case "color_threshold":
		return strconv.FormatFloat(c.Threshold(), 'g', -1, 64), nil
	case "case_insensitive":
		return strconv.FormatBool(c.CaseInsensitive), nil
	}
	return "", fmt.Errorf("unknown config key: %s (valid: %v)", key, Keys)
}

// Set updates a scalar setting after validating value.
func (c *Config) Set(key, value string) error {
	switch key {
	case "pdf_path":
		if err := ValidatePDFPath(value); err != nil {
			return err
		}
		c.PDFPath = value
	case "pdf_reader":
		if err := ValidatePDFReader(value); err != nil {
			return err
		}
		c.PDFReader = value
	case "sqlite_db":
		if strings.TrimSpace(value) == "" {
			return errors.New("sqlite_db must not be empty")
		}
		c.SQLiteDB = value
	case "color_threshold":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil || v < 0 {
			return fmt.Errorf("invalid color_threshold: %s", value)
		}
		c.ColorThreshold = &v
	case "case_insensitive":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid case_insensitive: %s", value)
		}
		c.CaseInsensitive = v
	default:
		return fmt.Errorf("unknown config key: %s (valid: %v)", key, Keys)
	}
	return nil
}

// ValidatePDFPath checks that an absolute PDF path exists and is a directory.
// Relative paths are resolved against the project root later and pass.
func ValidatePDFPath(path string) error {
	if path == "" {
		return nil
	}
	expanded := ExpandPath(path)
	if !filepath.IsAbs(expanded) {
		return nil
	}

	info, err := os.Stat(expanded)
	if err != nil {
		return fmt.Errorf("path does not exist: %s", expanded)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", expanded)
	}
	return nil
}

// ValidatePDFReader checks that the reader value is valid.
func ValidatePDFReader(reader string) error {
	if reader == "" {
		return nil // defaults to "system"
	}
	for _, valid := range ValidReaders {
		if reader == valid {
			return nil
		}
	}
	return fmt.Errorf("invalid pdf_reader: %s (valid: %v)", reader, ValidReaders)
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
