package application

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Czestchan/ase/internal/config"
	"github.com/Czestchan/ase/internal/omit"
	"github.com/Czestchan/ase/internal/profile"
	"github.com/Czestchan/ase/internal/report"
)

// Formats accepted by Show. The rc format is the file's own syntax.
const (
	FormatRC = "rc"
)

// App encapsulates the loaded settings and the operations the tool exposes.
type App struct {
	settings config.Settings
	omitSet  *omit.Set
	logger   *zap.Logger
}

// New wires the application from the resolved configuration.
func New(settings config.Settings, logger *zap.Logger) (*App, error) {
	set, err := omit.NewSet(settings.OmitPatterns)
	if err != nil {
		return nil, fmt.Errorf("build omit set: %w", err)
	}

	logger.Debug("configuration loaded",
		zap.String("source", settings.Source),
		zap.Int("precision", settings.Precision),
		zap.Int("omit_patterns", set.Len()),
		zap.String("html_directory", settings.HTMLDir),
	)

	return &App{settings: settings, omitSet: set, logger: logger}, nil
}

// Settings returns the resolved configuration.
func (a *App) Settings() config.Settings {
	return a.settings
}

// Validate confirms the loaded configuration on w. Parsing and validation
// already happened during resolution, so reaching this point means the file
// is well formed.
func (a *App) Validate(w io.Writer) error {
	_, err := fmt.Fprintf(w, "configuration OK: source=%s precision=%d omit=%d html=%s\n",
		a.settings.Source, a.settings.Precision, a.omitSet.Len(), a.settings.HTMLDir)
	return err
}

// Show writes the normalized configuration to w in the requested format.
func (a *App) Show(w io.Writer, format string) error {
	switch format {
	case FormatRC:
		_, err := a.settings.WriteTo(w)
		return err
	case report.FormatYAML:
		enc := yaml.NewEncoder(w)
		if err := enc.Encode(a.settings); err != nil {
			return err
		}
		return enc.Close()
	case report.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(a.settings)
	default:
		return fmt.Errorf("%w: %q", report.ErrUnknownFormat, format)
	}
}

// Report summarizes the coverage profile at profilePath under the loaded
// settings and encodes the result to w.
func (a *App) Report(w io.Writer, profilePath, format string) error {
	files, err := profile.Read(profilePath, a.settings.Source)
	if err != nil {
		return err
	}

	summary, err := report.Build(files, a.omitSet, a.settings.Precision)
	if err != nil {
		return err
	}

	a.logger.Debug("report built",
		zap.Int("files", len(summary.Files)),
		zap.Int("omitted", len(summary.Omitted)),
		zap.String("total_percent", summary.Total.Percent),
	)

	return report.Encode(w, summary, format)
}

// WriteReportFile renders the report into the configured output directory,
// creating it when needed, and returns the path of the written file. A
// relative directory is anchored at the rc file's location.
func (a *App) WriteReportFile(profilePath, format string) (string, error) {
	dir := a.settings.HTMLDir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(a.settings.BaseDir, dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	path := filepath.Join(dir, "coverage."+extensionFor(format))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create report file: %w", err)
	}

	reportErr := a.Report(file, profilePath, format)
	closeErr := file.Close()
	if reportErr != nil {
		return "", reportErr
	}
	if closeErr != nil {
		return "", fmt.Errorf("close report file: %w", closeErr)
	}

	a.logger.Debug("report written", zap.String("path", path))
	return path, nil
}

func extensionFor(format string) string {
	if format == report.FormatText {
		return "txt"
	}
	return format
}
