package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"pet-health-bot/internal/domain/health"
	"pet-health-bot/internal/domain/pets"
)

const (
	DefaultInterval  = time.Hour
	DefaultLookahead = 7 * 24 * time.Hour
)

// EventSource is the slice of the record store the scheduler reads and
// writes. Satisfied by health.Repository.
type EventSource interface {
	ListDue(ctx context.Context, until time.Time) ([]health.Event, error)
	UpdateLastNotified(ctx context.Context, id string, ts time.Time) error
}

// PetSource resolves a due event's pet (for the owner and the name).
type PetSource interface {
	GetByID(ctx context.Context, id string) (pets.Pet, error)
}

// Notifier delivers one reminder. Satisfied by the telegram adapter.
type Notifier interface {
	Notify(ctx context.Context, userID, text string) error
}

// Scheduler periodically scans for health events whose next-due date falls
// inside the lookahead window and notifies the pet's owner once per due
// cycle. It holds no store lock while delivering: the scan snapshot is
// read first, then last_notified is written back per delivered reminder.
// A crash between delivery and write-back duplicates at most one reminder;
// a reminder is never silently dropped.
type Scheduler struct {
	events    EventSource
	pets      PetSource
	notifier  Notifier
	interval  time.Duration
	lookahead time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

type Config struct {
	Interval  time.Duration // scan cadence; DefaultInterval when zero
	Lookahead time.Duration // due window; DefaultLookahead when zero
}

func NewScheduler(events EventSource, petSrc PetSource, notifier Notifier, cfg Config, logger *slog.Logger) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Lookahead <= 0 {
		cfg.Lookahead = DefaultLookahead
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		events:    events,
		pets:      petSrc,
		notifier:  notifier,
		interval:  cfg.Interval,
		lookahead: cfg.Lookahead,
		logger:    logger,
		now:       time.Now,
	}
}

// Run scans on a fixed interval until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("reminder scheduler started",
		"interval", s.interval.String(), "lookahead", s.lookahead.String())

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("reminder scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.ScanOnce(ctx); err != nil {
				s.logger.Error("reminder scan failed", "error", err)
			}
		}
	}
}

// ScanOnce performs a single scan-and-notify cycle and returns the number
// of reminders emitted. Re-running before any next-due date changes emits
// nothing: the store filters on last_notified < next_due.
func (s *Scheduler) ScanOnce(ctx context.Context) (int, error) {
	now := s.now()
	due, err := s.events.ListDue(ctx, now.Add(s.lookahead))
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, ev := range due {
		pet, err := s.pets.GetByID(ctx, ev.PetID)
		if err != nil {
			s.logger.Error("due event without a pet", "event_id", ev.ID, "pet_id", ev.PetID, "error", err)
			continue
		}

		text := reminderText(pet, ev)
		if err := s.notifier.Notify(ctx, pet.OwnerID, text); err != nil {
			// No write-back: the next scan retries this reminder.
			s.logger.Error("reminder delivery failed", "event_id", ev.ID, "owner_id", pet.OwnerID, "error", err)
			continue
		}

		// The watermark is the due date, not the delivery instant: a scan
		// inside the lookahead runs before next_due, and stamping the scan
		// time would leave last_notified < next_due, re-arming the filter.
		if err := s.events.UpdateLastNotified(ctx, ev.ID, *ev.NextDue); err != nil {
			s.logger.Error("failed to record reminder delivery", "event_id", ev.ID, "error", err)
		}
		sent++
	}

	if sent > 0 {
		s.logger.Info("reminders sent", "count", sent)
	}
	return sent, nil
}

func reminderText(pet pets.Pet, ev health.Event) string {
	return fmt.Sprintf("🔔 Reminder for %s: %s due on %s.\n%s",
		pet.Name, ev.Kind, ev.NextDue.Format("2006-01-02"), ev.Detail)
}
