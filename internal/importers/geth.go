package importers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mrlokans/keymigrate/internal/entities"
	"github.com/mrlokans/keymigrate/internal/keyfile"
	"github.com/mrlokans/keymigrate/internal/logger"
	"github.com/mrlokans/keymigrate/internal/metrics"
)

const (
	gethFilenameSeparator = "--"
	gethFilenameParts     = 3

	gethCryptoKey  = "Crypto"
	localCryptoKey = "crypto"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// GethKeyFile is a keystore file found by EnumerateGethKeys.
type GethKeyFile struct {
	Address  entities.Address
	Filename string
}

// EnumerateGethKeys lists the files in dir named like geth keystore files:
// <prefix>--<prefix>--<hex address>. Directories and files with any other
// number of "--" segments are skipped. A matching name whose address segment
// does not parse aborts the enumeration with *MalformedAddressError.
func EnumerateGethKeys(dir string) ([]GethKeyFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, ioError(dir, err)
	}

	files := make([]GethKeyFile, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()

		// Stat follows symlinks, so a link to a directory is skipped too
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			return nil, ioError(filepath.Join(dir, name), err)
		}
		if info.IsDir() {
			continue
		}

		parts := strings.Split(name, gethFilenameSeparator)
		if len(parts) != gethFilenameParts {
			continue
		}

		addr, err := entities.ParseAddress(parts[2])
		if err != nil {
			return nil, &MalformedAddressError{Filename: name, Err: err}
		}

		files = append(files, GethKeyFile{Address: addr, Filename: name})
	}

	return files, nil
}

// RenameField returns a copy of tree with the value under from moved to to.
// tree itself is not modified. When from is absent the copy is unchanged.
func RenameField(tree map[string]any, from, to string) map[string]any {
	out := maps.Clone(tree)
	if out == nil {
		out = map[string]any{}
	}

	value, ok := out[from]
	if !ok {
		return out
	}

	out[to] = value
	if from != to {
		delete(out, from)
	}
	return out
}

// TranslateGethKey decodes a geth keystore document and rewrites it into the
// local keyfile layout. Only the "Crypto" section is renamed; its contents
// and every other field pass through untouched.
func TranslateGethKey(data []byte) (map[string]any, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	// Numbers stay json.Number so kdf parameters are re-encoded digit for digit
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var tree map[string]any
	if err := dec.Decode(&tree); err != nil {
		return nil, fmt.Errorf("not a JSON object: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after JSON object")
	}
	if tree == nil {
		return nil, errors.New("not a JSON object: null")
	}

	payload, ok := tree[gethCryptoKey].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%q section missing or not an object", gethCryptoKey)
	}

	translated := RenameField(tree, gethCryptoKey, localCryptoKey)
	translated[localCryptoKey] = maps.Clone(payload)
	return translated, nil
}

// KeyImporter persists validated key records
type KeyImporter interface {
	ImportKey(record *entities.KeyRecord) error
}

// RecordLoader validates a local-format keyfile object
type RecordLoader func(obj map[string]any) (*entities.KeyRecord, error)

// GethImporter moves geth keystore files into a KeyImporter.
//
// It is single-threaded and holds the store for the duration of a call; callers
// must not share the store with another importer concurrently.
type GethImporter struct {
	store   KeyImporter
	load    RecordLoader
	log     *logger.Logger
	metrics *metrics.Import
}

// NewGethImporter creates an importer writing to store. log and m may be nil.
func NewGethImporter(store KeyImporter, log *logger.Logger, m *metrics.Import) *GethImporter {
	if log == nil {
		log = logger.Nop()
	}
	return &GethImporter{
		store:   store,
		load:    keyfile.Load,
		log:     log,
		metrics: m,
	}
}

// ImportFile imports one geth keystore file.
func (g *GethImporter) ImportFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return ioError(path, err)
	}

	obj, err := TranslateGethKey(data)
	if err != nil {
		return formatError(path, err)
	}

	record, err := g.load(obj)
	if err != nil {
		return formatError(path, err)
	}

	if err := g.store.ImportKey(record); err != nil {
		return ioError(path, err)
	}

	return nil
}

// GethImportOutcome is the result for one discovered file. Err is nil on success.
type GethImportOutcome struct {
	Address  entities.Address
	Filename string
	Err      error
}

// GethImportResult summarizes a directory import.
type GethImportResult struct {
	Directory  string
	Discovered int
	Imported   int
	Failed     int
	Outcomes   []GethImportOutcome
}

// Failures returns the outcomes that carry an error
func (r GethImportResult) Failures() []GethImportOutcome {
	var failed []GethImportOutcome
	for _, o := range r.Outcomes {
		if o.Err != nil {
			failed = append(failed, o)
		}
	}
	return failed
}

// ImportDir imports every geth keystore file in dir. Only enumeration
// failures are returned; a file that cannot be imported is logged and
// skipped.
func (g *GethImporter) ImportDir(dir string) error {
	_, err := g.ImportDirWithReport(dir)
	return err
}

// ImportDirWithReport is ImportDir with per-file outcomes.
func (g *GethImporter) ImportDirWithReport(dir string) (GethImportResult, error) {
	result := GethImportResult{Directory: dir}

	files, err := EnumerateGethKeys(dir)
	if err != nil {
		return result, err
	}

	result.Discovered = len(files)
	result.Outcomes = make([]GethImportOutcome, 0, len(files))
	g.metrics.Discovered(len(files))

	for _, f := range files {
		err := g.ImportFile(filepath.Join(dir, f.Filename))
		result.Outcomes = append(result.Outcomes, GethImportOutcome{
			Address:  f.Address,
			Filename: f.Filename,
			Err:      err,
		})

		if err != nil {
			result.Failed++
			g.metrics.Skipped(skipReason(err))
			g.log.Warn().
				Err(err).
				Str("address", f.Address.String()).
				Str("file", f.Filename).
				Msg("skipped geth key")
			continue
		}

		result.Imported++
		g.metrics.Imported()
		g.log.Debug().
			Str("address", f.Address.String()).
			Str("file", f.Filename).
			Msg("imported geth key")
	}

	g.metrics.BatchDone(time.Now())
	g.log.Info().
		Str("dir", dir).
		Int("discovered", result.Discovered).
		Int("imported", result.Imported).
		Int("failed", result.Failed).
		Msg("geth import finished")

	return result, nil
}

func skipReason(err error) string {
	if KindOf(err) == KindFormat {
		return metrics.ReasonFormat
	}
	return metrics.ReasonIO
}
