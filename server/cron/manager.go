package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Manager runs one CronTrigger per configured schedule, all calling the same Job.
type Manager struct {
	triggers []*CronTrigger
	logger   *slog.Logger
}

// NewManager creates a Manager from a schedule list as accepted by ParseSchedules.
func NewManager(spec string, job Job, logger *slog.Logger) (*Manager, error) {
	schedules, err := ParseSchedules(spec)
	if err != nil {
		return nil, err
	}

	triggers := make([]*CronTrigger, 0, len(schedules))
	for _, schedule := range schedules {
		trigger, err := NewCronTrigger(schedule, job, logger)
		if err != nil {
			return nil, fmt.Errorf("creating trigger for '%s': %w", schedule, err)
		}
		triggers = append(triggers, trigger)
	}

	for i, trigger := range triggers {
		logger.Info("sync schedule registered",
			"index", i,
			"schedule", trigger.Spec(),
			"next_run", trigger.NextRun(),
		)
	}

	return &Manager{
		triggers: triggers,
		logger:   logger,
	}, nil
}

// Start launches all triggers. Each trigger runs in its own goroutine.
// Returns immediately. All goroutines exit when ctx is cancelled.
func (m *Manager) Start(ctx context.Context) {
	for _, trigger := range m.triggers {
		trigger.Start(ctx)
	}
}

// NextRun returns the earliest scheduled run time across all triggers.
// Returns zero time if there are no triggers.
func (m *Manager) NextRun() time.Time {
	if len(m.triggers) == 0 {
		return time.Time{}
	}

	earliest := m.triggers[0].NextRun()
	for _, trigger := range m.triggers[1:] {
		if next := trigger.NextRun(); next.Before(earliest) {
			earliest = next
		}
	}
	return earliest
}

// Schedules returns the schedules being run.
func (m *Manager) Schedules() []string {
	result := make([]string, len(m.triggers))
	for i, trigger := range m.triggers {
		result[i] = trigger.Spec()
	}
	return result
}
