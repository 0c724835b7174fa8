// Package config loads the coverage rc file, a flat section-based key/value
// format ([run], [report], [html]), into an immutable Settings record, with
// precedence: CLI flags > rc file > Environment variables > Defaults. It also
// serializes Settings back to the same format.
package config
