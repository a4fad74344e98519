// Package scheduler fires the batch price update on an admin-configurable
// cadence: daily, every third day, or weekly, always at 03:00 Asia/Tokyo.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"tcg-nakama/internal/repository"
)

const (
	FrequencyDaily      = "daily"
	FrequencyEvery3Days = "every_3_days"
	FrequencyWeekly     = "weekly"

	defaultFrequency = FrequencyWeekly
	fireHour         = 3
)

// Job is the work the scheduler triggers.
type Job func(ctx context.Context) error

type Scheduler struct {
	settingRepo repository.SettingRepository
	job         Job
	loc         *time.Location
	now         func() time.Time

	mu        sync.Mutex
	frequency string
	running   bool
	wake      chan struct{}
	stopped   bool
}

func New(settingRepo repository.SettingRepository, job Job) *Scheduler {
	loc, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		loc = time.FixedZone("JST", 9*60*60)
	}
	return &Scheduler{
		settingRepo: settingRepo,
		job:         job,
		loc:         loc,
		now:         time.Now,
		frequency:   defaultFrequency,
		wake:        make(chan struct{}, 1),
	}
}

// Start reads the saved frequency and blocks until ctx is cancelled. Run it
// in its own goroutine.
func (s *Scheduler) Start(ctx context.Context) {
	saved, err := s.settingRepo.Get(ctx, repository.SettingUpdateFrequency, defaultFrequency)
	if err != nil {
		slog.Warn("read scheduler frequency failed", slog.Any("error", err))
		saved = defaultFrequency
	}
	if !validFrequency(saved) {
		saved = defaultFrequency
	}
	s.mu.Lock()
	s.frequency = saved
	s.mu.Unlock()

	slog.Info("scheduler started", slog.String("frequency", saved))

	for {
		next := NextRun(s.Frequency(), s.now().In(s.loc))
		timer := time.NewTimer(next.Sub(s.now()))

		select {
		case <-ctx.Done():
			timer.Stop()
			slog.Info("scheduler stopped")
			return
		case <-s.wake:
			// Frequency changed, recompute the next fire time.
			timer.Stop()
		case <-timer.C:
			s.runJob(ctx)
		}
	}
}

func (s *Scheduler) Frequency() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frequency
}

// Reschedule switches the cadence and persists it.
func (s *Scheduler) Reschedule(ctx context.Context, frequency string) error {
	if !validFrequency(frequency) {
		return fmt.Errorf("unknown frequency %q", frequency)
	}

	if err := s.settingRepo.Set(ctx, repository.SettingUpdateFrequency, frequency); err != nil {
		return fmt.Errorf("persist frequency: %w", err)
	}

	s.mu.Lock()
	s.frequency = frequency
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}

	slog.Info("scheduler rescheduled", slog.String("frequency", frequency))
	return nil
}

// RunNow triggers an immediate run in the background. Returns false when a
// run is already in flight.
func (s *Scheduler) RunNow(ctx context.Context) bool {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return false
	}
	s.mu.Unlock()

	go s.runJob(ctx)
	return true
}

func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) runJob(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		slog.Warn("batch already running, skipping trigger")
		return
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	if err := s.settingRepo.Set(ctx, repository.SettingTrackerStatus, "running"); err != nil {
		slog.Warn("set tracker status failed", slog.Any("error", err))
	}

	if err := s.job(ctx); err != nil {
		slog.Error("scheduled batch failed", slog.Any("error", err))
		_ = s.settingRepo.Set(ctx, repository.SettingTrackerStatus, "failed")
		msg := err.Error()
		if len(msg) > 500 {
			msg = msg[:500]
		}
		_ = s.settingRepo.Set(ctx, repository.SettingTrackerLastError, msg)
		return
	}

	_ = s.settingRepo.Set(ctx, repository.SettingTrackerStatus, "idle")
}

func validFrequency(frequency string) bool {
	switch frequency {
	case FrequencyDaily, FrequencyEvery3Days, FrequencyWeekly:
		return true
	}
	return false
}

// NextRun computes the next 03:00 fire time after now for a frequency.
// every_3_days fires on days of the month 1, 4, 7, ...; weekly on Sundays.
func NextRun(frequency string, now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), fireHour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}

	switch frequency {
	case FrequencyEvery3Days:
		for next.Day()%3 != 1 {
			next = next.AddDate(0, 0, 1)
		}
	case FrequencyWeekly:
		for next.Weekday() != time.Sunday {
			next = next.AddDate(0, 0, 1)
		}
	}
	return next
}
