package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/keymigrate/internal/audit"
	"github.com/mrlokans/keymigrate/internal/importers"
	"github.com/mrlokans/keymigrate/internal/logger"
	"github.com/mrlokans/keymigrate/internal/metrics"
)

// TriggerScheduler marks reports written by scheduled runs
const TriggerScheduler = "scheduler"

// DirImporter imports a keystore directory and reports per-file outcomes
type DirImporter interface {
	ImportDirWithReport(dir string) (importers.GethImportResult, error)
}

// GethSyncConfig configures the periodic geth import
type GethSyncConfig struct {
	Dir         string
	Schedule    string
	MetricsFile string // Rewritten after every run when set
}

// GethSyncScheduler re-imports a geth keystore directory on a cron schedule
type GethSyncScheduler struct {
	importer     DirImporter
	auditService *audit.Service
	metrics      *metrics.Import
	config       GethSyncConfig
	log          *logger.Logger

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	isSyncing  bool
	cancelFunc context.CancelFunc
	lastResult *importers.GethImportResult
}

// NewGethSyncScheduler creates a new scheduler instance. auditService and m may be nil.
func NewGethSyncScheduler(importer DirImporter, cfg GethSyncConfig, auditService *audit.Service, m *metrics.Import) *GethSyncScheduler {
	return &GethSyncScheduler{
		importer:     importer,
		auditService: auditService,
		metrics:      m,
		config:       cfg,
		log:          logger.Named("geth-sync"),
		cron:         cron.New(cron.WithParser(scheduleParser)),
	}
}

// Start schedules the sync job. The scheduler stops when ctx is cancelled.
func (s *GethSyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if s.config.Dir == "" {
		return fmt.Errorf("geth keystore directory not configured")
	}

	if err := ValidateSchedule(s.config.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.config.Schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.config.Schedule, func() {
		s.runSync()
	})
	if err != nil {
		return fmt.Errorf("failed to schedule sync job: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	nextRun, _ := NextRun(s.config.Schedule, time.Now())
	s.log.Info().
		Str("dir", s.config.Dir).
		Str("schedule", s.config.Schedule).
		Str("description", DescribeSchedule(s.config.Schedule)).
		Time("next_run", nextRun).
		Msg("geth sync scheduler started")

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop removes the job and waits for a scheduled sync in progress to finish
func (s *GethSyncScheduler) Stop() {
	s.mu.Lock()
	wasRunning := s.isRunning
	var cancel context.CancelFunc
	if wasRunning {
		s.isRunning = false
		s.cron.Remove(s.entryID)
		cancel = s.cancelFunc
		s.cancelFunc = nil
	}
	s.mu.Unlock()

	// runSync takes the lock when it finishes, so wait outside of it.
	// Callers that lost the race to stop still wait here for running jobs.
	done := s.cron.Stop()
	<-done.Done()

	if !wasRunning {
		return
	}
	if cancel != nil {
		cancel()
	}

	s.log.Info().Msg("geth sync scheduler stopped")
}

// SyncNow runs a sync on the calling goroutine. It returns false when
// another sync is already in progress.
func (s *GethSyncScheduler) SyncNow() bool {
	return s.runSync()
}

// IsRunning returns whether the scheduler is active
func (s *GethSyncScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// IsSyncing returns whether a sync is currently in progress
func (s *GethSyncScheduler) IsSyncing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isSyncing
}

// NextRunTime returns when the next sync will occur, or nil when stopped
func (s *GethSyncScheduler) NextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

// LastResult returns the outcome of the most recent completed sync
func (s *GethSyncScheduler) LastResult() *importers.GethImportResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastResult
}

// runSync performs one import. It returns false when skipped because
// another sync is still in progress.
func (s *GethSyncScheduler) runSync() bool {
	s.mu.Lock()
	if s.isSyncing {
		s.mu.Unlock()
		s.log.Warn().Msg("geth sync skipped: already syncing")
		return false
	}
	s.isSyncing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isSyncing = false
		s.mu.Unlock()
	}()

	s.log.Info().Str("dir", s.config.Dir).Msg("geth sync starting")
	startTime := time.Now()

	result, err := s.importer.ImportDirWithReport(s.config.Dir)
	finishTime := time.Now()

	if err != nil {
		s.log.Error().Err(err).Str("dir", s.config.Dir).Msg("geth sync failed")
	} else {
		s.log.Info().
			Int("discovered", result.Discovered).
			Int("imported", result.Imported).
			Int("failed", result.Failed).
			Dur("duration", finishTime.Sub(startTime).Round(time.Millisecond)).
			Msg("geth sync finished")
	}

	s.mu.Lock()
	s.lastResult = &result
	s.mu.Unlock()

	if _, auditErr := s.auditService.LogImport(audit.NewImportReport(result, err, TriggerScheduler, startTime, finishTime)); auditErr != nil {
		s.log.Warn().Err(auditErr).Msg("geth sync report not saved")
	}

	if metricsErr := s.metrics.WriteTextfile(s.config.MetricsFile); metricsErr != nil {
		s.log.Warn().Err(metricsErr).Msg("geth sync metrics not written")
	}

	return true
}
