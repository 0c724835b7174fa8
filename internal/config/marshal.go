package config

import (
	"fmt"
	"io"
	"strings"
)

// Marshal renders the settings in the rc file format. Parsing the output
// yields a Settings equal to the receiver (BaseDir aside, which is derived
// from the file location rather than its contents).
func (s Settings) Marshal() []byte {
	var b strings.Builder
	_, _ = s.WriteTo(&b)
	return []byte(b.String())
}

// WriteTo writes the rc file form of the settings to w.
func (s Settings) WriteTo(w io.Writer) (int64, error) {
	var total int64

	write := func(format string, args ...any) error {
		n, err := fmt.Fprintf(w, format, args...)
		total += int64(n)
		return err
	}

	if err := write("[%s]\n%s = %s\n\n", sectionRun, keySource, s.Source); err != nil {
		return total, err
	}

	if err := write("[%s]\n%s = %d\n", sectionReport, keyPrecision, s.Precision); err != nil {
		return total, err
	}
	if len(s.OmitPatterns) > 0 {
		if err := write("%s =\n", keyOmit); err != nil {
			return total, err
		}
		for _, pattern := range s.OmitPatterns {
			if err := write("    %s\n", pattern); err != nil {
				return total, err
			}
		}
	}
	if err := write("\n"); err != nil {
		return total, err
	}

	err := write("[%s]\n%s = %s\n", sectionHTML, keyDirectory, s.HTMLDir)
	return total, err
}
