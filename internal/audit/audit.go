package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/mrlokans/keymigrate/internal/logger"
)

const reportTimeLayout = "20060102T150405Z"

// ReportWriter stores import reports in a directory, one JSON file per run.
type ReportWriter struct {
	Dir string
	log *logger.Logger
}

func NewReportWriter(dir string) *ReportWriter {
	return &ReportWriter{
		Dir: dir,
		log: logger.Named("audit"),
	}
}

// ReportFilename names a report file so a directory listing sorts by finish
// time and shows where each run came from and how it ended:
//
//	20240102T030405Z-geth-cli-partial-1a2b3c4d.json
func ReportFilename(report ImportReport, id uuid.UUID) string {
	return fmt.Sprintf("%s-%s-%s-%s-%s.json",
		report.FinishedAt.UTC().Format(reportTimeLayout),
		filenameSegment(report.Source),
		filenameSegment(report.Trigger),
		filenameSegment(report.Status),
		id.String()[:8],
	)
}

// Write saves report and returns its filename. The file appears under its
// final name only once fully written.
func (w *ReportWriter) Write(report ImportReport) (string, error) {
	// Reports name key files and addresses; keep them private to the owner
	if err := os.MkdirAll(w.Dir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create audit directory: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	tmp, err := os.CreateTemp(w.Dir, ".report-*")
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write report file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}

	filename := ReportFilename(report, uuid.New())
	path := filepath.Join(w.Dir, filename)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("failed to move report into place: %w", err)
	}

	w.log.Debug().Str("path", path).Msg("saved report file")
	return filename, nil
}

// filenameSegment keeps [a-z0-9] and folds everything else into '_'
func filenameSegment(s string) string {
	if s == "" {
		return "unknown"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '_'
		}
	}, s)
}
