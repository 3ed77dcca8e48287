// Package config defines the canonical, JSON-serializable configuration model
// for the ingest application. It is intentionally small, explicit, and
// dependency-free so that run configs can be loaded from disk (or other
// sources) and passed through the program without additional glue code.
//
// Design goals:
//
//  1. Stability: Changes to this package should be additive and backwards-
//     compatible whenever possible.
//  2. Clarity: Field names in Go mirror the JSON structure used in run
//     configuration files.
//  3. Minimalism: No third-party config libraries; decoding is performed by
//     the standard library.
//
// Example (trimmed):
//
//	{
//	  "archive": { "url": "https://example.com/datasets.tar.gz" },
//	  "data_dir": "data",
//	  "storage":  { "kind": "sqlite", "dsn": "ingest.db" },
//	  "runtime":  { "batch_size": 100 },
//	  "types":    { "customers": { "index": "integer", "subscription_date": "date" } }
//	}
package config

import (
	"encoding/json"
	"io"
	"os"
)

// Config is the top-level run configuration decoded from a config file.
type Config struct {
	// Archive describes the remote compressed archive to ingest.
	Archive Archive `json:"archive"`

	// DataDir is the destination directory for extracted dataset files.
	DataDir string `json:"data_dir"`

	// Storage selects and configures the relational store.
	Storage Storage `json:"storage"`

	// Files constrains which extracted files are eligible for loading.
	Files Files `json:"files"`

	// Runtime controls batching and coercion settings.
	Runtime Runtime `json:"runtime"`

	// Types is the closed-world column type lookup: table name -> column
	// name -> logical type ("integer" or "date"). Columns not listed default
	// to text. Adding a dataset means adding entries here, not code.
	Types TypeMap `json:"types"`
}

// Archive identifies the remote archive and its local download location.
type Archive struct {
	// URL is the remote location of the gzip-compressed tar archive.
	URL string `json:"url"`

	// DownloadPath is the local file the archive is fetched to. When empty,
	// a name derived from the URL basename is placed inside DataDir.
	DownloadPath string `json:"download_path"`
}

// Storage configures the relational store sink.
type Storage struct {
	// Kind selects the storage backend registered with the storage factory.
	// Current value: "sqlite".
	Kind string `json:"kind"`

	// DSN is the connection string, for SQLite typically a file path such as
	// "ingest.db" or "file:ingest.db?cache=shared".
	DSN string `json:"dsn"`
}

// Files constrains file enumeration in the extracted data directory.
type Files struct {
	// Extension is the required file extension (including the dot) for a
	// file to become a record source. Hidden files are always excluded.
	Extension string `json:"extension"`
}

// Runtime controls batching and coercion behavior.
type Runtime struct {
	// BatchSize is the number of records accumulated before a bulk insert.
	BatchSize int `json:"batch_size"`

	// ChannelBuffer is the parser-to-loader channel capacity. Together with
	// BatchSize it bounds peak memory per record source.
	ChannelBuffer int `json:"channel_buffer"`

	// DateLayout is the time.Parse layout applied to date-typed columns.
	DateLayout string `json:"date_layout"`
}

// TypeMap maps table name -> column name -> logical type. Recognized types
// are "integer" and "date"; anything else falls back to text.
type TypeMap map[string]map[string]string

const (
	// DefaultBatchSize bounds peak memory to O(DefaultBatchSize) records per
	// source when the config does not override it.
	DefaultBatchSize = 100

	// DefaultDateLayout matches the ISO dates used by the sample datasets.
	DefaultDateLayout = "2006-01-02"

	// DefaultExtension selects delimited text files.
	DefaultExtension = ".csv"
)

// DefaultTypes returns the built-in type lookup for the sample datasets.
// Callers may extend or replace it via the "types" config block.
func DefaultTypes() TypeMap {
	return TypeMap{
		"customers": {
			"index":             "integer",
			"subscription_date": "date",
		},
		"people": {
			"index":         "integer",
			"date_of_birth": "date",
		},
		"organizations": {
			"index":               "integer",
			"founded":             "integer",
			"number_of_employees": "integer",
		},
	}
}

// Load reads and decodes a Config from the file at cfgPath, then applies
// defaults. Unknown JSON fields are rejected to catch typos early.
func Load(cfgPath string) (Config, error) {
	f, err := os.Open(cfgPath)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()
	return Decode(f)
}

// Decode decodes a Config from r and applies defaults.
func Decode(r io.Reader) (Config, error) {
	var c Config
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return Config{}, err
	}
	c.ApplyDefaults()
	return c, nil
}

// ApplyDefaults fills zero-valued fields with their documented defaults. It
// is idempotent and safe to call on a fully populated Config.
func (c *Config) ApplyDefaults() {
	if c.Storage.Kind == "" {
		c.Storage.Kind = "sqlite"
	}
	if c.Files.Extension == "" {
		c.Files.Extension = DefaultExtension
	}
	if c.Runtime.BatchSize <= 0 {
		c.Runtime.BatchSize = DefaultBatchSize
	}
	if c.Runtime.ChannelBuffer <= 0 {
		c.Runtime.ChannelBuffer = c.Runtime.BatchSize
	}
	if c.Runtime.DateLayout == "" {
		c.Runtime.DateLayout = DefaultDateLayout
	}
	if c.Types == nil {
		c.Types = DefaultTypes()
	}
}
