// Package all wires all built-in storage backends into the storage factory.
//
// This package exists purely for side effects: importing it (even as a blank
// import) causes the init functions of each concrete storage backend to run,
// which in turn register their factories with the storage package.
//
// In other words, importing this package makes the following storage kinds
// available at runtime:
//
//   - "sqlite" (internal/storage/sqlite)
//
// Typical usage (in cmd/ingest/main.go or a similar wiring layer):
//
//	import _ "github.com/WhirlyFan/large-data-parser/internal/storage/all"
//
// This pattern keeps backend-specific wiring in a single, small package and
// allows the rest of the application (pipeline, loader, CLI) to depend only
// on the storage abstraction rather than individual backends. A build that
// should support additional engines adds their packages here.
package all

import (
	_ "github.com/WhirlyFan/large-data-parser/internal/storage/sqlite"
)
