// Package report turns per-file coverage counts into summaries presented the
// way the rc file asks for: omitted files excluded from statistics and
// percentages carrying the configured number of decimal digits.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/Czestchan/ase/internal/omit"
	"github.com/Czestchan/ase/internal/profile"
)

// Formats accepted by Encode.
const (
	FormatText = "text"
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// File is the summary line for a single measured file.
type File struct {
	Name       string `yaml:"name" json:"name"`
	Statements int    `yaml:"statements" json:"statements"`
	Covered    int    `yaml:"covered" json:"covered"`
	Percent    string `yaml:"percent" json:"percent"`
}

// Summary aggregates coverage statistics for one profile under the loaded
// settings.
type Summary struct {
	Precision int      `yaml:"precision" json:"precision"`
	Files     []File   `yaml:"files" json:"files"`
	Omitted   []string `yaml:"omitted,omitempty" json:"omitted,omitempty"`
	Total     File     `yaml:"total" json:"total"`
}

// Build filters files through the omit set and computes per-file and total
// percentages with the given precision. Omitted file names are retained in
// the summary so reports can show what was excluded from the statistics.
func Build(files []profile.FileCoverage, set *omit.Set, precision int) (Summary, error) {
	if precision < 0 {
		return Summary{}, ErrInvalidPrecision
	}

	summary := Summary{
		Precision: precision,
		Files:     make([]File, 0, len(files)),
	}

	total := profile.FileCoverage{Name: "TOTAL"}
	for _, fc := range files {
		if set != nil && set.Match(fc.Name) {
			summary.Omitted = append(summary.Omitted, fc.Name)
			continue
		}
		summary.Files = append(summary.Files, newFile(fc, precision))
		total.Statements += fc.Statements
		total.Covered += fc.Covered
	}

	if total.Statements == 0 {
		return Summary{}, ErrNoData
	}

	summary.Total = newFile(total, precision)
	return summary, nil
}

func newFile(fc profile.FileCoverage, precision int) File {
	return File{
		Name:       fc.Name,
		Statements: fc.Statements,
		Covered:    fc.Covered,
		Percent:    formatPercent(fc.Covered, fc.Statements, precision),
	}
}

// formatPercent renders covered/total as a percentage with exactly
// precision decimal digits. Files without statements report 100%: nothing
// measurable was missed.
func formatPercent(covered, total, precision int) string {
	value := 100.0
	if total > 0 {
		value = float64(covered) * 100 / float64(total)
	}
	return strconv.FormatFloat(value, 'f', precision, 64)
}

// Encode writes the summary to w in the named format.
func Encode(w io.Writer, summary Summary, format string) error {
	switch format {
	case FormatText:
		return encodeText(w, summary)
	case FormatYAML:
		return encodeYAML(w, summary)
	case FormatJSON:
		return encodeJSON(w, summary)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func encodeText(w io.Writer, summary Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)

	if _, err := fmt.Fprintln(tw, "NAME\tSTMTS\tCOVERED\tPERCENT"); err != nil {
		return err
	}
	for _, file := range summary.Files {
		if _, err := fmt.Fprintf(tw, "%s\t%d\t%d\t%s%%\n", file.Name, file.Statements, file.Covered, file.Percent); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(tw, "%s\t%d\t%d\t%s%%\n", summary.Total.Name, summary.Total.Statements, summary.Total.Covered, summary.Total.Percent); err != nil {
		return err
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, name := range summary.Omitted {
		if _, err := fmt.Fprintf(w, "omitted: %s\n", name); err != nil {
			return err
		}
	}
	return nil
}

func encodeYAML(w io.Writer, summary Summary) error {
	enc := yaml.NewEncoder(w)
	if err := enc.Encode(summary); err != nil {
		return err
	}
	return enc.Close()
}

func encodeJSON(w io.Writer, summary Summary) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
