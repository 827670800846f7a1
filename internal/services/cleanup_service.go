package services

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	intconfig "ridemate/internal/config"
	"ridemate/internal/observability"
	"ridemate/internal/repositories"
	"ridemate/internal/sched"
)

const (
	completedRideRetention = 12 * time.Hour
	messageRetention       = 3 * time.Hour
)

// CleanupService purges completed rides (with their bookings, reports and
// messages) after the retention window, and expires old ride chat.
type CleanupService struct {
	RideRepo    repositories.RideRepository
	BookingRepo repositories.BookingRepository
	ReportRepo  repositories.ReportRepository
	MessageRepo repositories.MessageRepository
	Locker      sched.Locker
	Logger      *slog.Logger
	Interval    time.Duration
	DB          *sql.DB
}

func (s CleanupService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s CleanupService) rides() repositories.RideRepository {
	if s.RideRepo.DB != nil {
		return s.RideRepo
	}
	return repositories.RideRepository{DB: s.db()}
}

func (s CleanupService) bookings() repositories.BookingRepository {
	if s.BookingRepo.DB != nil {
		return s.BookingRepo
	}
	return repositories.BookingRepository{DB: s.db()}
}

func (s CleanupService) reports() repositories.ReportRepository {
	if s.ReportRepo.DB != nil {
		return s.ReportRepo
	}
	return repositories.ReportRepository{DB: s.db()}
}

func (s CleanupService) messages() repositories.MessageRepository {
	if s.MessageRepo.DB != nil {
		return s.MessageRepo
	}
	return repositories.MessageRepository{DB: s.db()}
}

func (s CleanupService) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// Start runs one sweep immediately, then on every tick until ctx ends.
func (s CleanupService) Start(ctx context.Context) {
	interval := s.Interval
	if interval <= 0 {
		interval = time.Hour
	}

	s.Run(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Run(ctx)
		}
	}
}

// Run performs one sweep. When a locker is configured, only the replica
// holding the lease sweeps; the rest skip quietly.
func (s CleanupService) Run(ctx context.Context) {
	if s.Locker != nil && !s.Locker.TryAcquire(ctx) {
		s.logger().Debug("cleanup lease held elsewhere, skipping sweep")
		return
	}

	now := time.Now()
	purged := 0

	ids, err := s.rides().ListCompletedBefore(now.Add(-completedRideRetention))
	if err != nil {
		s.logger().Error("cleanup: list completed rides", "err", err)
	}
	for _, id := range ids {
		if err := s.purgeRide(id); err != nil {
			s.logger().Error("cleanup: purge ride", "ride_id", id, "err", err)
			continue
		}
		purged++
	}

	expired, err := s.messages().DeleteOlderThan(now.Add(-messageRetention))
	if err != nil {
		s.logger().Error("cleanup: delete old messages", "err", err)
	}

	observability.CleanupSweeps.Inc()
	s.logger().Info("cleanup sweep done", "rides_purged", purged, "messages_deleted", expired)
}

// purgeRide deletes a ride and its dependents in one transaction so a
// failure cannot strand child rows without their ride.
func (s CleanupService) purgeRide(rideID int64) error {
	tx, err := s.db().Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.bookings().DeleteByRide(tx, rideID); err != nil {
		return err
	}
	if err := s.reports().DeleteByRide(tx, rideID); err != nil {
		return err
	}
	if err := s.messages().DeleteByRide(tx, rideID); err != nil {
		return err
	}
	if err := s.rides().Delete(tx, rideID); err != nil {
		return err
	}
	return tx.Commit()
}
