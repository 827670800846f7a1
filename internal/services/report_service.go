package services

import (
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"

	intconfig "ridemate/internal/config"
	"ridemate/internal/domain"
	"ridemate/internal/domain/models"
	"ridemate/internal/observability"
	"ridemate/internal/repositories"
)

const (
	// Fixed moderation policy.
	fakeReportThreshold = 3
	creationBanLength   = 7 * 24 * time.Hour
)

const mysqlErrDuplicateEntry = 1062

type ReportService struct {
	ReportRepo  repositories.ReportRepository
	RideRepo    repositories.RideRepository
	StudentRepo repositories.StudentRepository
	DB          *sql.DB
}

func (s ReportService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s ReportService) reports() repositories.ReportRepository {
	if s.ReportRepo.DB != nil {
		return s.ReportRepo
	}
	return repositories.ReportRepository{DB: s.db()}
}

func (s ReportService) rides() repositories.RideRepository {
	if s.RideRepo.DB != nil {
		return s.RideRepo
	}
	return repositories.RideRepository{DB: s.db()}
}

func (s ReportService) students() repositories.StudentRepository {
	if s.StudentRepo.DB != nil {
		return s.StudentRepo
	}
	return repositories.StudentRepository{DB: s.db()}
}

// ReportResult describes the outcome of one fake-ride report.
type ReportResult struct {
	ReportCount  int64
	RideClosed   bool
	CreatorBans  int
	PermanentBan bool
}

// ReportRide files a fake-ride report against a student share. One report
// per student per ride; the report that brings the count to the threshold
// closes the ride and escalates the creator's ban counter. The ban-until
// date is only set while the counter stays below three; from three on the
// counter alone marks the creator permanently ineligible.
func (s ReportService) ReportRide(rideID, reporterID int64) (*ReportResult, error) {
	tx, err := s.db().Begin()
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	defer tx.Rollback()

	ride, err := s.rides().GetByID(tx, rideID)
	if err == sql.ErrNoRows {
		return nil, domain.NotFoundError{Resource: "ride", Err: err}
	}
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	if ride.Type != models.RideTypeStudentSharing {
		return nil, domain.ValidationError{Field: "ride", Msg: "only student ride shares can be reported"}
	}

	if err := s.reports().Insert(tx, rideID, reporterID); err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == mysqlErrDuplicateEntry {
			return nil, domain.ConflictError{Resource: "report", Msg: "you already reported this ride"}
		}
		return nil, domain.InternalError{Err: err}
	}

	count, err := s.reports().CountByRide(tx, rideID)
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}

	result := &ReportResult{ReportCount: count}
	if count == fakeReportThreshold {
		// Escalation fires exactly once, on the threshold report.
		if _, err := s.rides().Complete(tx, rideID); err != nil {
			return nil, domain.InternalError{Err: err}
		}
		banCount, err := s.students().ApplyReportBan(tx, ride.Owner.ID, time.Now().Add(creationBanLength))
		if err != nil {
			return nil, domain.InternalError{Err: err}
		}
		result.RideClosed = true
		result.CreatorBans = banCount
		result.PermanentBan = banCount >= fakeReportThreshold
	}

	if err := tx.Commit(); err != nil {
		return nil, domain.InternalError{Err: err}
	}

	observability.FakeRideReports.Inc()
	return result, nil
}
