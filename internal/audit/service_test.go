package audit

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/keymigrate/internal/entities"
	"github.com/mrlokans/keymigrate/internal/importers"
)

const (
	addrA = "3f49624084b67849c7b4e805c5988c21a430f9d9"
	addrB = "5ba4dcf897e97c2bdf8315b9ef26c13c085988cf"
)

func testResult() importers.GethImportResult {
	return importers.GethImportResult{
		Directory:  "/data/keystore",
		Discovered: 2,
		Imported:   1,
		Failed:     1,
		Outcomes: []importers.GethImportOutcome{
			{Address: entities.MustParseAddress(addrA), Filename: "UTC--a--" + addrA},
			{
				Address:  entities.MustParseAddress(addrB),
				Filename: "UTC--b--" + addrB,
				Err:      &importers.ImportError{Kind: importers.KindFormat, Path: "UTC--b--" + addrB, Err: errors.New("bad json")},
			},
		},
	}
}

func TestNewImportReport(t *testing.T) {
	started := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	finished := started.Add(time.Second)

	t.Run("partial import lists failures", func(t *testing.T) {
		report := NewImportReport(testResult(), nil, "cli", started, finished)

		assert.Equal(t, "geth", report.Source)
		assert.Equal(t, "/data/keystore", report.Directory)
		assert.Equal(t, "cli", report.Trigger)
		assert.Equal(t, StatusPartial, report.Status)
		assert.Equal(t, 2, report.Discovered)
		assert.Equal(t, 1, report.Imported)
		assert.Equal(t, 1, report.Failed)
		require.Len(t, report.Failures, 1)
		assert.Equal(t, entities.MustParseAddress(addrB).Hex(), report.Failures[0].Address)
		assert.Equal(t, "format error", report.Failures[0].Kind)
		assert.Contains(t, report.Failures[0].Error, "bad json")
		assert.Empty(t, report.Error)
	})

	t.Run("clean import", func(t *testing.T) {
		result := importers.GethImportResult{Directory: "/d", Discovered: 1, Imported: 1}

		report := NewImportReport(result, nil, "scheduler", started, finished)

		assert.Equal(t, StatusSuccess, report.Status)
		assert.Empty(t, report.Failures)
	})

	t.Run("enumeration failure", func(t *testing.T) {
		result := importers.GethImportResult{Directory: "/d"}
		err := &importers.MalformedAddressError{Filename: "UTC--x--zz", Err: entities.ErrInvalidAddress}

		report := NewImportReport(result, err, "cli", started, finished)

		assert.Equal(t, StatusFailed, report.Status)
		assert.Contains(t, report.Error, "UTC--x--zz")
	})
}

func TestService_LogImport(t *testing.T) {
	t.Run("writes report file", func(t *testing.T) {
		dir := t.TempDir()
		svc := NewService(dir)
		report := NewImportReport(testResult(), nil, "cli", time.Now(), time.Now())

		filename, err := svc.LogImport(report)
		require.NoError(t, err)
		assert.Contains(t, filename, "-geth-cli-partial-")

		data, err := os.ReadFile(filepath.Join(dir, filename))
		require.NoError(t, err)

		var saved ImportReport
		require.NoError(t, json.Unmarshal(data, &saved))
		assert.Equal(t, StatusPartial, saved.Status)
		assert.Len(t, saved.Failures, 1)
	})

	t.Run("no directory disables reports", func(t *testing.T) {
		svc := NewService("")

		filename, err := svc.LogImport(ImportReport{})

		assert.NoError(t, err)
		assert.Empty(t, filename)
	})
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	long := strings.Repeat("x", 20)
	assert.Equal(t, "xxxxxxx...", truncate(long, 10))
}
