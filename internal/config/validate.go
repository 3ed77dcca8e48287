// Package config provides configuration models and helpers for ingest runs.
//
// This file adds a lightweight linter/validator for Config values. It
// performs static checks over a decoded Config and returns a list of issues
// (errors and warnings) that callers can surface in a CLI or tests.
package config

import (
	"fmt"
	"net/url"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding for a Config.
//
// Path is a dotted path into the config (e.g. "storage.dsn",
// "types.customers.index"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// Validate performs static validation / linting of a Config.
//
// It does not mutate the config. Instead it returns a slice of Issue values.
// Callers may decide whether to treat warnings as fatal or not.
func Validate(c Config) []Issue {
	var issues []Issue

	issues = append(issues, validateArchive(c.Archive)...)

	if strings.TrimSpace(c.DataDir) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "data_dir",
			Message:  "data_dir must not be empty; extracted files need a destination",
		})
	}

	issues = append(issues, validateStorage(c.Storage)...)
	issues = append(issues, validateRuntime(c.Runtime)...)
	issues = append(issues, validateTypes(c.Types)...)

	if !strings.HasPrefix(c.Files.Extension, ".") {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "files.extension",
			Message:  fmt.Sprintf("extension %q does not start with a dot; enumeration matches on full extensions", c.Files.Extension),
		})
	}

	return issues
}

// validateArchive validates the archive block.
func validateArchive(a Archive) []Issue {
	var issues []Issue

	if strings.TrimSpace(a.URL) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "archive.url",
			Message:  "archive.url must not be empty",
		})
		return issues
	}

	u, err := url.Parse(a.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "archive.url",
			Message:  fmt.Sprintf("archive.url %q is not an absolute URL", a.URL),
		})
	}

	if strings.TrimSpace(a.DownloadPath) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "archive.download_path",
			Message:  "download_path is empty; a name derived from the URL will be used",
		})
	}

	return issues
}

// validateStorage validates storage configuration.
func validateStorage(s Storage) []Issue {
	var issues []Issue

	if strings.TrimSpace(s.Kind) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.kind",
			Message:  "storage.kind must not be empty",
		})
		return issues
	}

	// Known storage kinds. Unknown kinds are warnings (for forward
	// compatibility with backends registered by other builds).
	known := map[string]struct{}{
		"sqlite": {},
	}
	if _, ok := known[s.Kind]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "storage.kind",
			Message:  fmt.Sprintf("unknown storage kind %q; ensure a matching backend is registered", s.Kind),
		})
	}

	if strings.TrimSpace(s.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.dsn",
			Message:  "storage.dsn must not be empty",
		})
	}

	return issues
}

// validateRuntime validates Runtime for obvious misconfigurations
// (negative values, zero-sized batches, etc.).
func validateRuntime(r Runtime) []Issue {
	var issues []Issue

	if r.BatchSize <= 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "runtime.batch_size",
			Message:  fmt.Sprintf("batch_size=%d; batches must hold at least one record", r.BatchSize),
		})
	}
	if r.ChannelBuffer < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "runtime.channel_buffer",
			Message:  "channel_buffer must not be negative",
		})
	}
	if strings.TrimSpace(r.DateLayout) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "runtime.date_layout",
			Message:  "date_layout must not be empty; date columns cannot be coerced without it",
		})
	}

	return issues
}

// validateTypes checks that every type entry names a recognized logical type.
func validateTypes(tm TypeMap) []Issue {
	var issues []Issue

	for table, cols := range tm {
		for col, typ := range cols {
			switch typ {
			case "integer", "date":
			default:
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     fmt.Sprintf("types.%s.%s", table, col),
					Message:  fmt.Sprintf("unknown logical type %q; expected \"integer\" or \"date\"", typ),
				})
			}
		}
	}

	return issues
}
