package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/Czestchan/ase/internal/application"
	"github.com/Czestchan/ase/internal/config"
	"github.com/Czestchan/ase/internal/logging"
	"github.com/Czestchan/ase/internal/report"
)

// runOptions carries the per-command flag values into run.
type runOptions struct {
	stdout       io.Writer
	showFormat   string
	profile      string
	reportFormat string
	reportToDir  bool
}

func main() {
	kingpinApp := kingpin.New("asecover", "Coverage configuration tool for the ase test suite")
	rcFile := kingpinApp.Flag("rcfile", "Path to the coverage rc file").String()
	verbose := kingpinApp.Flag("verbose", "Enable debug logging").Short('v').Bool()
	precisionFlag := kingpinApp.Flag("precision", "Override the report precision").Default("-1").Int()
	htmlDirFlag := kingpinApp.Flag("html-dir", "Override the report output directory").String()

	validateCmd := kingpinApp.Command("validate", "Load the configuration and confirm it is well formed")

	showCmd := kingpinApp.Command("show", "Print the normalized configuration")
	showFormat := showCmd.Flag("format", "Output format").
		Default(application.FormatRC).
		Enum(application.FormatRC, report.FormatYAML, report.FormatJSON)

	reportCmd := kingpinApp.Command("report", "Summarize a coverage profile under the configuration")
	reportProfile := reportCmd.Flag("profile", "Path to a coverage profile").Required().String()
	reportFormat := reportCmd.Flag("format", "Output format").
		Default(report.FormatText).
		Enum(report.FormatText, report.FormatYAML, report.FormatJSON)
	reportToDir := reportCmd.Flag("output", "Write the report into the configured output directory instead of stdout").Bool()

	command := kingpin.MustParse(kingpinApp.Parse(os.Args[1:]))

	logger, err := logging.New(*verbose)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	settings, err := config.Resolve(buildOverrides(*rcFile, *precisionFlag, *htmlDirFlag))
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	app, err := application.New(settings, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}

	opts := runOptions{
		stdout:       os.Stdout,
		showFormat:   *showFormat,
		profile:      *reportProfile,
		reportFormat: *reportFormat,
		reportToDir:  *reportToDir,
	}
	commands := commandNames{
		validate: validateCmd.FullCommand(),
		show:     showCmd.FullCommand(),
		report:   reportCmd.FullCommand(),
	}
	if err := run(app, command, commands, opts); err != nil {
		logger.Fatal("command failed", zap.String("command", command), zap.Error(err))
	}
}

type commandNames struct {
	validate string
	show     string
	report   string
}

// buildOverrides turns flag values into config overrides; unset flags stay
// nil so they never mask values from the rc file.
func buildOverrides(rcFile string, precision int, htmlDir string) *config.CLIOverrides {
	overrides := &config.CLIOverrides{RCFile: rcFile}
	if precision >= 0 {
		overrides.Precision = &precision
	}
	if htmlDir != "" {
		overrides.HTMLDir = &htmlDir
	}
	return overrides
}

func run(app *application.App, command string, commands commandNames, opts runOptions) error {
	switch command {
	case commands.validate:
		return app.Validate(opts.stdout)
	case commands.show:
		return app.Show(opts.stdout, opts.showFormat)
	case commands.report:
		if opts.reportToDir {
			path, err := app.WriteReportFile(opts.profile, opts.reportFormat)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(opts.stdout, path)
			return err
		}
		return app.Report(opts.stdout, opts.profile, opts.reportFormat)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}
