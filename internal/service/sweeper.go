package service

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"carshare/internal/repository"
)

// sweepTimeout bounds one sweep run.
const sweepTimeout = 5 * time.Minute

// OverdueSweeper periodically scans open rentals for lateness and notifies
// the ops chat. Detection only: it never mutates rental or vehicle state,
// and it keeps no state between runs.
type OverdueSweeper struct {
	cron          *cron.Cron
	rentalRepo    repository.RentalRepository
	notifications *NotificationService
	schedule      string
	now           func() time.Time
}

// NewOverdueSweeper creates a new OverdueSweeper. schedule is a cron
// expression, e.g. "0 6 * * *" for every day at 06:00.
func NewOverdueSweeper(
	rentalRepo repository.RentalRepository,
	notifications *NotificationService,
	schedule string,
) *OverdueSweeper {
	return &OverdueSweeper{
		cron:          cron.New(),
		rentalRepo:    rentalRepo,
		notifications: notifications,
		schedule:      schedule,
		now:           time.Now,
	}
}

// Start registers the sweep job and starts the scheduler.
func (s *OverdueSweeper) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()

		if err := s.Sweep(ctx); err != nil {
			zap.S().Errorw("overdue sweep failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	zap.S().Infow("overdue sweeper started", "schedule", s.schedule)
	return nil
}

// Stop gracefully stops the scheduler, waiting for a running sweep.
func (s *OverdueSweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("overdue sweeper stopped")
}

// Sweep scans open rentals once. Rentals whose agreed return date has passed
// without a recorded return are reported one notification each; an empty
// selection produces a single all-clear notice.
func (s *OverdueSweeper) Sweep(ctx context.Context) error {
	active := true
	rentals, err := s.rentalRepo.List(ctx, repository.RentalFilter{Active: &active})
	if err != nil {
		return err
	}

	today := dateOnly(s.now())

	overdue := 0
	for _, rental := range rentals {
		if !rental.Overdue(today) {
			continue
		}
		overdue++
		s.notifications.NotifyOverdueRental(rental)
	}

	if overdue == 0 {
		s.notifications.NotifyNoOverdueRentals()
	}

	zap.S().Infow("overdue sweep complete", "open", len(rentals), "overdue", overdue)
	return nil
}
