package config

import (
	"strings"
	"testing"
)

// validConfig returns a config that passes Validate with zero issues.
func validConfig() Config {
	return Config{
		Archive: Archive{URL: "https://example.com/datasets.tar.gz", DownloadPath: "/tmp/d.tar.gz"},
		DataDir: "data",
		Storage: Storage{Kind: "sqlite", DSN: "ingest.db"},
		Files:   Files{Extension: ".csv"},
		Runtime: Runtime{BatchSize: 100, ChannelBuffer: 100, DateLayout: "2006-01-02"},
		Types:   DefaultTypes(),
	}
}

// TestValidate walks one broken field at a time and checks the issue path and
// severity reported for each.
func TestValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name         string
		mutate       func(*Config)
		wantPath     string
		wantSeverity IssueSeverity
	}{
		{
			name:         "empty_url",
			mutate:       func(c *Config) { c.Archive.URL = "" },
			wantPath:     "archive.url",
			wantSeverity: SeverityError,
		},
		{
			name:         "relative_url",
			mutate:       func(c *Config) { c.Archive.URL = "datasets.tar.gz" },
			wantPath:     "archive.url",
			wantSeverity: SeverityError,
		},
		{
			name:         "empty_download_path_is_warning",
			mutate:       func(c *Config) { c.Archive.DownloadPath = "" },
			wantPath:     "archive.download_path",
			wantSeverity: SeverityWarning,
		},
		{
			name:         "empty_data_dir",
			mutate:       func(c *Config) { c.DataDir = "" },
			wantPath:     "data_dir",
			wantSeverity: SeverityError,
		},
		{
			name:         "empty_storage_kind",
			mutate:       func(c *Config) { c.Storage.Kind = "" },
			wantPath:     "storage.kind",
			wantSeverity: SeverityError,
		},
		{
			name:         "unknown_storage_kind_is_warning",
			mutate:       func(c *Config) { c.Storage.Kind = "cockroach" },
			wantPath:     "storage.kind",
			wantSeverity: SeverityWarning,
		},
		{
			name:         "empty_dsn",
			mutate:       func(c *Config) { c.Storage.DSN = "" },
			wantPath:     "storage.dsn",
			wantSeverity: SeverityError,
		},
		{
			name:         "zero_batch_size",
			mutate:       func(c *Config) { c.Runtime.BatchSize = 0 },
			wantPath:     "runtime.batch_size",
			wantSeverity: SeverityError,
		},
		{
			name:         "negative_channel_buffer",
			mutate:       func(c *Config) { c.Runtime.ChannelBuffer = -1 },
			wantPath:     "runtime.channel_buffer",
			wantSeverity: SeverityError,
		},
		{
			name:         "empty_date_layout",
			mutate:       func(c *Config) { c.Runtime.DateLayout = "" },
			wantPath:     "runtime.date_layout",
			wantSeverity: SeverityError,
		},
		{
			name:         "unknown_logical_type",
			mutate:       func(c *Config) { c.Types = TypeMap{"customers": {"index": "bigint"}} },
			wantPath:     "types.customers.index",
			wantSeverity: SeverityError,
		},
		{
			name:         "extension_without_dot",
			mutate:       func(c *Config) { c.Files.Extension = "csv" },
			wantPath:     "files.extension",
			wantSeverity: SeverityWarning,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			c := validConfig()
			tc.mutate(&c)

			issues := Validate(c)
			found := false
			for _, iss := range issues {
				if iss.Path == tc.wantPath && iss.Severity == tc.wantSeverity {
					found = true
				}
			}
			if !found {
				t.Fatalf("no %s issue at %q; got %v", tc.wantSeverity, tc.wantPath, issues)
			}
		})
	}
}

// TestValidateCleanConfig checks that a complete, correct config produces no
// issues at all.
func TestValidateCleanConfig(t *testing.T) {
	t.Parallel()

	if issues := Validate(validConfig()); len(issues) != 0 {
		t.Fatalf("expected no issues, got %v", issues)
	}
}

// TestIssueError checks the error-interface rendering of a single Issue.
func TestIssueError(t *testing.T) {
	t.Parallel()

	iss := Issue{Severity: SeverityError, Path: "storage.dsn", Message: "must not be empty"}
	s := iss.Error()
	for _, want := range []string{"error", "storage.dsn", "must not be empty"} {
		if !strings.Contains(s, want) {
			t.Errorf("Error()=%q missing %q", s, want)
		}
	}
}
