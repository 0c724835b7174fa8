package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	defaultRCFile = ".coveragerc"

	sectionRun    = "run"
	sectionReport = "report"
	sectionHTML   = "html"

	keySource    = "source"
	keyPrecision = "precision"
	keyOmit      = "omit"
	keyDirectory = "directory"
)

// Settings is the coverage configuration resolved from an rc file.
// It is populated once at startup and never mutated afterwards.
type Settings struct {
	// Source is the package root whose files are measured.
	Source string `yaml:"source" json:"source"`
	// Precision is the number of decimal digits in displayed percentages.
	Precision int `yaml:"precision" json:"precision"`
	// OmitPatterns lists path globs excluded from coverage statistics, in
	// the order they appear in the rc file. Matching treats them as a set.
	OmitPatterns []string `yaml:"omit" json:"omit"`
	// HTMLDir is the output directory for rendered reports.
	HTMLDir string `yaml:"html_directory" json:"html_directory"`
	// BaseDir is the directory containing the rc file. Omit patterns are
	// relative to it. Not part of the serialized form.
	BaseDir string `yaml:"-" json:"-"`
}

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	RCFile    string
	Precision *int
	HTMLDir   *string
}

// Resolve locates and loads the coverage configuration with precedence:
// CLI flags > rc file > Environment variables > Defaults
func Resolve(overrides *CLIOverrides) (Settings, error) {
	path := defaultRCFile
	if env := strings.TrimSpace(os.Getenv("ASE_COVERAGERC")); env != "" {
		path = env
	}
	if overrides != nil && overrides.RCFile != "" {
		path = overrides.RCFile
	}

	settings, err := Load(path)
	if err != nil {
		return Settings{}, err
	}

	if overrides != nil {
		if overrides.Precision != nil {
			settings.Precision = *overrides.Precision
		}
		if overrides.HTMLDir != nil && *overrides.HTMLDir != "" {
			settings.HTMLDir = *overrides.HTMLDir
		}
	}

	if err := validateSettings(settings); err != nil {
		return Settings{}, err
	}

	return settings, nil
}

// Load reads and parses the rc file at path into Settings.
// All failures wrap ErrMalformed.
func Load(path string) (Settings, error) {
	file, err := os.Open(path)
	if err != nil {
		return Settings{}, malformedf("read %s: %v", path, err)
	}

	raw, err := parse(bufio.NewScanner(file))
	closeErr := file.Close()
	if err != nil {
		return Settings{}, err
	}
	if closeErr != nil {
		return Settings{}, malformedf("close %s: %v", path, closeErr)
	}

	settings, err := buildSettings(raw)
	if err != nil {
		return Settings{}, err
	}

	baseDir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return Settings{}, malformedf("resolve directory of %s: %v", path, err)
	}
	settings.BaseDir = baseDir

	if err := validateSettings(settings); err != nil {
		return Settings{}, err
	}

	return settings, nil
}

// rawSettings captures the rc file contents before type conversion and
// required-key checks.
type rawSettings struct {
	sections  map[string]bool
	source    *string
	precision *string
	directory *string
	omit      []string
}

// parse walks the rc file line by line. Top-level lines are section headers
// or key assignments; indented lines continue the list opened by the last
// valueless key. Blank lines and full-line comments never terminate a list.
func parse(scanner *bufio.Scanner) (*rawSettings, error) {
	raw := &rawSettings{sections: make(map[string]bool)}

	section := ""
	listKey := ""
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		trimmed := strings.TrimSpace(line)

		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		indented := line[0] == ' ' || line[0] == '\t'
		if indented {
			if listKey == "" {
				return nil, malformedf("line %d: indented line outside of a list value", lineNo)
			}
			if entry := stripInlineComment(trimmed); entry != "" {
				raw.appendList(section, listKey, entry)
			}
			continue
		}

		listKey = ""

		if strings.HasPrefix(trimmed, "[") {
			if !strings.HasSuffix(trimmed, "]") || len(trimmed) < 3 {
				return nil, malformedf("line %d: invalid section header %q", lineNo, trimmed)
			}
			section = strings.TrimSpace(trimmed[1 : len(trimmed)-1])
			if section == "" {
				return nil, malformedf("line %d: empty section name", lineNo)
			}
			raw.sections[section] = true
			continue
		}

		key, value, found := strings.Cut(trimmed, "=")
		if !found {
			return nil, malformedf("line %d: expected 'key = value', got %q", lineNo, trimmed)
		}
		if section == "" {
			return nil, malformedf("line %d: key %q outside of any section", lineNo, strings.TrimSpace(key))
		}

		key = strings.TrimSpace(key)
		value = stripInlineComment(strings.TrimSpace(value))
		if key == "" {
			return nil, malformedf("line %d: missing key before '='", lineNo)
		}

		if value == "" {
			listKey = key
			raw.openList(section, key)
			continue
		}

		raw.setScalar(section, key, value)
	}

	if err := scanner.Err(); err != nil {
		return nil, malformedf("read configuration: %v", err)
	}

	return raw, nil
}

// setScalar assigns a recognized scalar key. Unrecognized keys are ignored;
// nothing in the tool depends on them.
func (r *rawSettings) setScalar(section, key, value string) {
	switch {
	case section == sectionRun && key == keySource:
		r.source = &value
	case section == sectionReport && key == keyPrecision:
		r.precision = &value
	case section == sectionHTML && key == keyDirectory:
		r.directory = &value
	}
}

func (r *rawSettings) openList(section, key string) {
	if section == sectionReport && key == keyOmit && r.omit == nil {
		r.omit = []string{}
	}
}

func (r *rawSettings) appendList(section, key, entry string) {
	if section == sectionReport && key == keyOmit {
		r.omit = append(r.omit, entry)
	}
}

// buildSettings converts raw text values into a typed Settings record,
// failing on missing required sections and keys.
func buildSettings(raw *rawSettings) (Settings, error) {
	for _, section := range []string{sectionRun, sectionReport, sectionHTML} {
		if !raw.sections[section] {
			return Settings{}, malformedf("missing [%s] section", section)
		}
	}
	if raw.source == nil {
		return Settings{}, malformedf("missing %q key in [%s]", keySource, sectionRun)
	}
	if raw.precision == nil {
		return Settings{}, malformedf("missing %q key in [%s]", keyPrecision, sectionReport)
	}
	if raw.directory == nil {
		return Settings{}, malformedf("missing %q key in [%s]", keyDirectory, sectionHTML)
	}

	precision, err := strconv.Atoi(*raw.precision)
	if err != nil {
		return Settings{}, malformedf("%q must be an integer, got %q", keyPrecision, *raw.precision)
	}

	omit := raw.omit
	if omit == nil {
		omit = []string{}
	}

	return Settings{
		Source:       *raw.source,
		Precision:    precision,
		OmitPatterns: omit,
		HTMLDir:      *raw.directory,
	}, nil
}

// validateSettings validates the final configuration.
func validateSettings(settings Settings) error {
	if strings.TrimSpace(settings.Source) == "" {
		return malformedf("%q must not be empty", keySource)
	}
	if settings.Precision < 0 {
		return malformedf("%q must be >= 0, got %d", keyPrecision, settings.Precision)
	}
	if strings.TrimSpace(settings.HTMLDir) == "" {
		return malformedf("%q must not be empty", keyDirectory)
	}
	return nil
}

// stripInlineComment cuts a trailing comment introduced by '#' at the start
// of the value or after whitespace.
func stripInlineComment(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] != '#' {
			continue
		}
		if i == 0 || s[i-1] == ' ' || s[i-1] == '\t' {
			return strings.TrimSpace(s[:i])
		}
	}
	return strings.TrimSpace(s)
}

func malformedf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...))
}
