// Package importers moves keys from other wallets into the local key store.
//
// # Geth keystore
//
// A geth keystore directory holds one JSON file per key, named
//
//	UTC--<timestamp>--<hex address>
//
// The import runs in three steps:
//
//	EnumerateGethKeys → TranslateGethKey → keyfile.Load → KeyImporter.ImportKey
//
// Geth writes the encrypted section under "Crypto" while the local keyfile
// format expects "crypto"; TranslateGethKey performs that rename and nothing
// else. Every other field, and the contents of the crypto section, reach the
// keyfile loader unchanged.
//
// # Errors
//
// Failures for a single file are reported as *ImportError with Kind KindIO
// (read or store failure) or KindFormat (content problem). GethImporter.ImportDir
// logs such failures and moves on; it only fails when the directory cannot be
// enumerated, including the case of a correctly named file whose address part
// is not hex (*MalformedAddressError).
//
// # Example Usage
//
//	store, err := keystore.New(keystore.Config{DatabasePath: "keystore.db"})
//	importer := importers.NewGethImporter(store, logger.Named("geth"), metrics.New())
//
//	// Import one file
//	err = importer.ImportFile("/home/me/.ethereum/keystore/UTC--...--3f49...")
//
//	// Import a whole directory, keeping per-file outcomes
//	result, err := importer.ImportDirWithReport("/home/me/.ethereum/keystore")
package importers
