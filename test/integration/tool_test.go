package integration

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/Czestchan/ase/internal/application"
	"github.com/Czestchan/ase/internal/config"
	"github.com/Czestchan/ase/internal/report"
)

const rcContent = `# coverage settings for the ase test suite

[run]
source = ase

[report]
precision = 2
omit =
    io/pov.go  # renderer backend, no tests yet
    utils/sphinx/*

[html]
directory = coverage-html
`

const profileContent = `mode: set
github.com/acme/ase/db/cli.go:5.10,7.2 3 1
github.com/acme/ase/io/pov.go:1.2,4.3 4 0
github.com/acme/ase/io/ulm.go:10.2,12.3 5 1
github.com/acme/ase/io/ulm.go:14.2,18.3 5 0
`

func setup(t *testing.T) (*application.App, string) {
	t.Helper()

	dir := t.TempDir()
	rcDir := filepath.Join(dir, "test")
	if err := os.MkdirAll(rcDir, 0o755); err != nil {
		t.Fatalf("create rc dir: %v", err)
	}
	rcPath := filepath.Join(rcDir, ".coveragerc")
	if err := os.WriteFile(rcPath, []byte(rcContent), 0o600); err != nil {
		t.Fatalf("write rc file: %v", err)
	}
	profilePath := filepath.Join(dir, "cover.out")
	if err := os.WriteFile(profilePath, []byte(profileContent), 0o600); err != nil {
		t.Fatalf("write profile: %v", err)
	}

	t.Setenv("ASE_COVERAGERC", rcPath)
	settings, err := config.Resolve(nil)
	if err != nil {
		t.Fatalf("resolve settings: %v", err)
	}

	app, err := application.New(settings, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("build application: %v", err)
	}
	return app, profilePath
}

func TestLoadedSettingsMatchFile(t *testing.T) {
	app, _ := setup(t)

	settings := app.Settings()
	if settings.Source != "ase" {
		t.Fatalf("unexpected source: %q", settings.Source)
	}
	if settings.Precision != 2 {
		t.Fatalf("unexpected precision: %d", settings.Precision)
	}
	if want := []string{"io/pov.go", "utils/sphinx/*"}; len(settings.OmitPatterns) != len(want) ||
		settings.OmitPatterns[0] != want[0] || settings.OmitPatterns[1] != want[1] {
		t.Fatalf("unexpected omit patterns: %v", settings.OmitPatterns)
	}
	if settings.HTMLDir != "coverage-html" {
		t.Fatalf("unexpected html directory: %q", settings.HTMLDir)
	}
}

func TestReportPipeline(t *testing.T) {
	app, profilePath := setup(t)

	var buf bytes.Buffer
	if err := app.Report(&buf, profilePath, report.FormatJSON); err != nil {
		t.Fatalf("Report returned error: %v", err)
	}

	var summary report.Summary
	if err := json.Unmarshal(buf.Bytes(), &summary); err != nil {
		t.Fatalf("decode report: %v", err)
	}

	if len(summary.Files) != 2 {
		t.Fatalf("expected two measured files, got %+v", summary.Files)
	}
	if len(summary.Omitted) != 1 || summary.Omitted[0] != "io/pov.go" {
		t.Fatalf("expected io/pov.go to be omitted, got %v", summary.Omitted)
	}
	if summary.Total.Statements != 13 || summary.Total.Covered != 8 {
		t.Fatalf("unexpected totals: %+v", summary.Total)
	}
	if summary.Total.Percent != "61.54" {
		t.Fatalf("expected total percent with two decimals, got %q", summary.Total.Percent)
	}
}

func TestWrittenReportLandsInConfiguredDirectory(t *testing.T) {
	app, profilePath := setup(t)

	path, err := app.WriteReportFile(profilePath, report.FormatText)
	if err != nil {
		t.Fatalf("WriteReportFile returned error: %v", err)
	}

	if !strings.HasSuffix(path, filepath.Join("coverage-html", "coverage.txt")) {
		t.Fatalf("unexpected report path: %q", path)
	}
	if !strings.HasPrefix(path, app.Settings().BaseDir) {
		t.Fatalf("report written outside the rc directory: %q", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("written report missing: %v", err)
	}
}
