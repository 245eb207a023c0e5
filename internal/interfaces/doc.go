// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Storage Interfaces
//
//   - importers.KeyImporter: Persist a validated key record (internal/importers/geth.go),
//     implemented by keystore.Store
//   - importers.RecordLoader: Validate a local-format keyfile object
//     (internal/importers/geth.go), implemented by keyfile.Load
//
// ## Import Interfaces
//
//   - scheduler.DirImporter: Import a whole keystore directory with per-file
//     outcomes (internal/scheduler/geth_sync.go), implemented by importers.GethImporter
//
// # Adding a New Wallet Source
//
// To import keys from another wallet (e.g., Parity):
//
//  1. Create an importer in internal/importers/
//
//     type ParityImporter struct {
//         store importers.KeyImporter
//     }
//
//     func (p *ParityImporter) ImportFile(path string) error {
//         // Read the file, translate it to the local keyfile layout,
//         // keyfile.Load it and hand the record to p.store
//     }
//
//  2. Report per-file failures as *importers.ImportError so callers can
//     tell read/store failures (KindIO) from content problems (KindFormat)
//
//  3. Add a CLI command in internal/cli/ and register it in main.go
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// This pattern is used throughout the codebase. See checks.go for examples.
package interfaces
