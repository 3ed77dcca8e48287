// Command ingest fetches a remote compressed archive of delimited datasets,
// extracts it, and loads every dataset into its own table in the configured
// relational store. The CLI layer stays thin: it decodes and validates the
// run configuration and hands off to the pipeline.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/WhirlyFan/large-data-parser/internal/config"
	"github.com/WhirlyFan/large-data-parser/internal/pipeline"

	// register all backends with the storage factory.
	// config specifies which to use but we need to build in support for all of them.
	_ "github.com/WhirlyFan/large-data-parser/internal/storage/all"
)

// main is the entry point for the ingest binary. It loads the run config,
// applies flag overrides, and executes the streaming run.
func main() {
	var (
		cfgPath  string
		urlFlg   string
		dbFlg    string
		dataDir  string
		batch    int
		validate bool
	)

	flag.StringVar(&cfgPath, "config", "", "run config JSON path (optional; flags override it)")
	flag.StringVar(&urlFlg, "url", "", "archive URL (overrides config)")
	flag.StringVar(&dbFlg, "db", "", "SQLite database path (overrides config)")
	flag.StringVar(&dataDir, "data-dir", "", "destination directory for extracted files (overrides config)")
	flag.IntVar(&batch, "batch", 0, "batch size for bulk inserts (overrides config)")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()

	var cfg config.Config
	if cfgPath != "" {
		c, err := config.Load(cfgPath)
		if err != nil {
			fatalf("load config: %v", err)
		}
		cfg = c
	}

	// Flag overrides: flag → config file → default.
	if urlFlg != "" {
		cfg.Archive.URL = urlFlg
	}
	if dbFlg != "" {
		cfg.Storage.DSN = dbFlg
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if batch > 0 {
		cfg.Runtime.BatchSize = batch
	}
	cfg.ApplyDefaults()

	// Validate run config.
	issues := config.Validate(cfg)
	hasError := false
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
		if iss.Severity == config.SeverityError {
			hasError = true
		}
	}
	if hasError {
		log.Printf("configuration is invalid")
		os.Exit(1)
	}

	// If validate flag is set, only validate the configuration and exit.
	if validate {
		log.Printf("configuration is valid")
		os.Exit(0)
	}

	ctx := context.Background()
	start := time.Now()

	if *verbose {
		log.Printf("run: url=%s data_dir=%s storage=%s dsn=%s batch=%d",
			cfg.Archive.URL, cfg.DataDir, cfg.Storage.Kind, cfg.Storage.DSN, cfg.Runtime.BatchSize)
	}

	if err := pipeline.Run(ctx, cfg); err != nil {
		log.Fatalf("%v", err)
	}

	if *verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
