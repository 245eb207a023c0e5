package audit

import (
	"time"

	"github.com/mrlokans/keymigrate/internal/importers"
	"github.com/mrlokans/keymigrate/internal/logger"
)

const maxErrorLength = 500

// Report statuses
const (
	StatusSuccess = "success"
	StatusPartial = "partial"
	StatusFailed  = "failed"
)

// ImportFailure is one file that could not be imported
type ImportFailure struct {
	Address  string `json:"address"`
	Filename string `json:"filename"`
	Kind     string `json:"kind"`
	Error    string `json:"error"`
}

// ImportReport is the audit record of one geth directory import.
type ImportReport struct {
	Source     string          `json:"source"`
	Directory  string          `json:"directory"`
	Trigger    string          `json:"trigger"`
	Status     string          `json:"status"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Discovered int             `json:"discovered"`
	Imported   int             `json:"imported"`
	Failed     int             `json:"failed"`
	Failures   []ImportFailure `json:"failures,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// NewImportReport builds a report from an import result. err is the
// enumeration error returned alongside result, if any.
func NewImportReport(result importers.GethImportResult, err error, trigger string, startedAt, finishedAt time.Time) ImportReport {
	report := ImportReport{
		Source:     "geth",
		Directory:  result.Directory,
		Trigger:    trigger,
		Status:     StatusSuccess,
		StartedAt:  startedAt.UTC(),
		FinishedAt: finishedAt.UTC(),
		Discovered: result.Discovered,
		Imported:   result.Imported,
		Failed:     result.Failed,
	}

	for _, o := range result.Failures() {
		report.Failures = append(report.Failures, ImportFailure{
			Address:  o.Address.Hex(),
			Filename: o.Filename,
			Kind:     importers.KindOf(o.Err).String(),
			Error:    truncate(o.Err.Error(), maxErrorLength),
		})
	}

	switch {
	case err != nil:
		report.Status = StatusFailed
		report.Error = truncate(err.Error(), maxErrorLength)
	case result.Failed > 0:
		report.Status = StatusPartial
	}

	return report
}

// Service records import reports. A nil *Service or one without a
// directory does nothing.
type Service struct {
	writer *ReportWriter
	log    *logger.Logger
}

// NewService creates a service writing reports into dir.
func NewService(dir string) *Service {
	if dir == "" {
		return nil
	}
	return &Service{
		writer: NewReportWriter(dir),
		log:    logger.Named("audit"),
	}
}

// LogImport saves report and returns the audit filename.
func (s *Service) LogImport(report ImportReport) (string, error) {
	if s == nil {
		return "", nil
	}

	filename, err := s.writer.Write(report)
	if err != nil {
		s.log.Error().Err(err).Str("dir", report.Directory).Msg("failed to save import report")
		return "", err
	}

	s.log.Info().
		Str("file", filename).
		Str("status", report.Status).
		Msg("saved import report")
	return filename, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
