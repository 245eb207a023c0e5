package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportFilename(t *testing.T) {
	id := uuid.MustParse("1a2b3c4d-0000-4000-8000-000000000000")
	finished := time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("CET", 3600))

	t.Run("encodes finish time, source, trigger and status", func(t *testing.T) {
		report := ImportReport{Source: "geth", Trigger: "cli", Status: StatusPartial, FinishedAt: finished}

		assert.Equal(t, "20240102T020405Z-geth-cli-partial-1a2b3c4d.json", ReportFilename(report, id))
	})

	t.Run("unsafe and empty segments", func(t *testing.T) {
		report := ImportReport{Source: "Geth", Trigger: "../x y", FinishedAt: finished}

		assert.Equal(t, "20240102T020405Z-geth-___x_y-unknown-1a2b3c4d.json", ReportFilename(report, id))
	})
}

func TestReportWriter(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "audit")
	writer := NewReportWriter(dir)
	report := ImportReport{
		Source:     "geth",
		Directory:  "/data/keystore",
		Trigger:    "scheduler",
		Status:     StatusSuccess,
		FinishedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Discovered: 2,
		Imported:   2,
	}

	t.Run("creates directory and writes a private file", func(t *testing.T) {
		filename, err := writer.Write(report)
		require.NoError(t, err)
		assert.Regexp(t, `^20240102T030405Z-geth-scheduler-success-[0-9a-f]{8}\.json$`, filename)

		dirInfo, err := os.Stat(dir)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o700), dirInfo.Mode().Perm())

		path := filepath.Join(dir, filename)
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		var saved ImportReport
		require.NoError(t, json.Unmarshal(data, &saved))
		assert.Equal(t, report, saved)
	})

	t.Run("same report twice gets distinct files", func(t *testing.T) {
		first, err := writer.Write(report)
		require.NoError(t, err)
		second, err := writer.Write(report)
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
	})

	t.Run("no temp files are left behind", func(t *testing.T) {
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		for _, e := range entries {
			assert.NotContains(t, e.Name(), ".report-")
		}
	})

	t.Run("unwritable directory fails", func(t *testing.T) {
		blocker := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(blocker, nil, 0o600))

		_, err := NewReportWriter(filepath.Join(blocker, "audit")).Write(report)

		assert.Error(t, err)
	})
}
