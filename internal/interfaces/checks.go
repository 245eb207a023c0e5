package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/keymigrate/internal/importers"
	"github.com/mrlokans/keymigrate/internal/keyfile"
	"github.com/mrlokans/keymigrate/internal/keystore"
	"github.com/mrlokans/keymigrate/internal/scheduler"
)

// =============================================================================
// Key Storage
// =============================================================================

// KeyImporter implementations
var _ importers.KeyImporter = (*keystore.Store)(nil)

// RecordLoader implementations
var _ importers.RecordLoader = keyfile.Load

// =============================================================================
// Import
// =============================================================================

// DirImporter implementations
var _ scheduler.DirImporter = (*importers.GethImporter)(nil)

// =============================================================================
// Errors
// =============================================================================

var _ error = (*importers.ImportError)(nil)
var _ error = (*importers.MalformedAddressError)(nil)
