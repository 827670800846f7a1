package services

import (
	"database/sql"
	"strings"
	"time"

	intconfig "ridemate/internal/config"
	"ridemate/internal/domain"
	"ridemate/internal/domain/models"
	"ridemate/internal/matching"
	"ridemate/internal/observability"
	"ridemate/internal/repositories"
)

const (
	minSeats = 1
	maxSeats = 10

	// Lifetime policy for lazy expiry.
	studentShareLifetime = 3 * time.Hour
	departureGrace       = 1 * time.Hour

	// Ride-share creation gates.
	maxSharesPerDay = 2

	departureLayout = "2006-01-02 15:04"
)

type RideService struct {
	RideRepo    repositories.RideRepository
	BookingRepo repositories.BookingRepository
	StudentRepo repositories.StudentRepository
	StatsRepo   repositories.StatsRepository
	DB          *sql.DB
}

func (s RideService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s RideService) rides() repositories.RideRepository {
	if s.RideRepo.DB != nil {
		return s.RideRepo
	}
	return repositories.RideRepository{DB: s.db()}
}

func (s RideService) bookings() repositories.BookingRepository {
	if s.BookingRepo.DB != nil {
		return s.BookingRepo
	}
	return repositories.BookingRepository{DB: s.db()}
}

func (s RideService) students() repositories.StudentRepository {
	if s.StudentRepo.DB != nil {
		return s.StudentRepo
	}
	return repositories.StudentRepository{DB: s.db()}
}

func (s RideService) stats() repositories.StatsRepository {
	if s.StatsRepo.DB != nil {
		return s.StatsRepo
	}
	return repositories.StatsRepository{DB: s.db()}
}

func validateRideInput(from, to string, totalSeats int) error {
	from = strings.TrimSpace(from)
	to = strings.TrimSpace(to)
	if from == "" {
		return domain.ValidationError{Field: "from", Msg: "pickup location is required"}
	}
	if to == "" {
		return domain.ValidationError{Field: "to", Msg: "drop location is required"}
	}
	if strings.EqualFold(from, to) {
		return domain.ValidationError{Field: "to", Msg: "pickup and drop cannot be the same"}
	}
	if totalSeats < minSeats || totalSeats > maxSeats {
		return domain.ValidationError{Field: "total_seats", Msg: "seats must be between 1 and 10"}
	}
	return nil
}

// CreateDriverRide posts a driver ride. A driver keeps at most one active
// ride at a time.
func (s RideService) CreateDriverRide(driverID int64, from, to string, totalSeats int, depTime, depDate string) (*models.Ride, error) {
	if err := validateRideInput(from, to, totalSeats); err != nil {
		return nil, err
	}

	tx, err := s.db().Begin()
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	defer tx.Rollback()

	busy, err := s.rides().HasActiveByDriver(tx, driverID)
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	if busy {
		return nil, domain.ValidationError{Field: "ride", Msg: "you already have an active ride"}
	}

	ride := &models.Ride{
		Type:          models.RideTypeDriver,
		Owner:         models.Owner{Role: models.OwnerRoleDriver, ID: driverID},
		From:          strings.TrimSpace(from),
		To:            strings.TrimSpace(to),
		TotalSeats:    totalSeats,
		DepartureTime: strings.TrimSpace(depTime),
		DepartureDate: strings.TrimSpace(depDate),
	}
	if err := s.rides().Create(tx, ride); err != nil {
		return nil, domain.InternalError{Err: err}
	}
	if err := tx.Commit(); err != nil {
		return nil, domain.InternalError{Err: err}
	}

	s.recordRideCreated(ride)
	return s.reload(ride)
}

// CreateStudentShare posts a peer ride share, applying the escalation gates:
// a permanent ban (three strikes), an unexpired temporary ban, or the daily
// creation quota each block the attempt.
func (s RideService) CreateStudentShare(studentID int64, from, to string, totalSeats int, depTime, depDate string) (*models.Ride, error) {
	if err := validateRideInput(from, to, totalSeats); err != nil {
		return nil, err
	}

	now := time.Now()

	tx, err := s.db().Begin()
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	defer tx.Rollback()

	student, err := s.students().GetByID(tx, studentID)
	if err == sql.ErrNoRows {
		return nil, domain.NotFoundError{Resource: "student", Err: err}
	}
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	if student.PermanentlyBanned() {
		return nil, domain.ForbiddenError{Msg: "you are permanently banned from creating rides"}
	}
	if student.TemporarilyBanned(now) {
		return nil, domain.ForbiddenError{Msg: "you are temporarily banned from creating rides"}
	}

	todayCount := 0
	if student.LastRideCreatedAt != nil && sameDay(*student.LastRideCreatedAt, now) {
		todayCount = student.CreatedRidesCount
	}
	if todayCount >= maxSharesPerDay {
		return nil, domain.ForbiddenError{Msg: "daily ride creation limit reached"}
	}

	ride := &models.Ride{
		Type:          models.RideTypeStudentSharing,
		Owner:         models.Owner{Role: models.OwnerRoleStudent, ID: studentID},
		From:          strings.TrimSpace(from),
		To:            strings.TrimSpace(to),
		TotalSeats:    totalSeats,
		DepartureTime: strings.TrimSpace(depTime),
		DepartureDate: strings.TrimSpace(depDate),
	}
	if err := s.rides().Create(tx, ride); err != nil {
		return nil, domain.InternalError{Err: err}
	}
	if err := s.students().RecordRideCreation(tx, studentID, todayCount+1, now); err != nil {
		return nil, domain.InternalError{Err: err}
	}
	if err := tx.Commit(); err != nil {
		return nil, domain.InternalError{Err: err}
	}

	s.recordRideCreated(ride)
	return s.reload(ride)
}

func (s RideService) recordRideCreated(ride *models.Ride) {
	// Advisory lifetime counter; failures must not fail the create.
	_ = s.stats().IncrementRidesCreated()
	observability.RidesCreated.WithLabelValues(string(ride.Type)).Inc()
}

func (s RideService) reload(ride *models.Ride) (*models.Ride, error) {
	full, err := s.rides().GetByID(nil, ride.ID)
	if err != nil {
		return ride, nil
	}
	return full, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// ListActive returns active rides, optionally narrowed to those serving the
// requested from/to segment. Stale actives are expired first.
func (s RideService) ListActive(from, to string) ([]models.Ride, error) {
	s.ExpireStale(time.Now())
	rides, err := s.rides().ListActive()
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	return matching.FindMatchingRides(rides, from, to), nil
}

func (s RideService) GetRide(rideID int64) (*models.Ride, error) {
	ride, err := s.rides().GetByID(nil, rideID)
	if err == sql.ErrNoRows {
		return nil, domain.NotFoundError{Resource: "ride", Err: err}
	}
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	return ride, nil
}

func (s RideService) ListAllForAdmin() ([]models.Ride, error) {
	s.ExpireStale(time.Now())
	rides, err := s.rides().ListAll()
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	return rides, nil
}

func (s RideService) ListReported() ([]models.Ride, error) {
	rides, err := s.rides().ListReported()
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	return rides, nil
}

// MyRides returns a driver's rides, newest first.
func (s RideService) MyRides(driverID int64) ([]models.Ride, error) {
	rides, err := s.rides().ListByDriver(driverID)
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	return rides, nil
}

// CreatedRides returns a student's recent share rides.
func (s RideService) CreatedRides(studentID int64) ([]models.Ride, error) {
	s.ExpireStale(time.Now())
	rides, err := s.rides().ListByStudent(studentID, 7)
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	return rides, nil
}

func (s RideService) loadOwned(rideID int64, actor models.Owner) (*models.Ride, error) {
	ride, err := s.rides().GetByID(nil, rideID)
	if err == sql.ErrNoRows {
		return nil, domain.NotFoundError{Resource: "ride", Err: err}
	}
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	if !ride.OwnedBy(actor) {
		return nil, domain.AuthorizationError{Msg: "not your ride"}
	}
	return ride, nil
}

// UpdateDeparture changes departure time/date on an active owned ride. Nil
// fields are left untouched.
func (s RideService) UpdateDeparture(rideID int64, actor models.Owner, depTime, depDate *string) (*models.Ride, error) {
	ride, err := s.loadOwned(rideID, actor)
	if err != nil {
		return nil, err
	}
	if !ride.IsActive() {
		return nil, domain.InvalidStateError{Msg: "ride is not active"}
	}
	if err := s.rides().UpdateDeparture(rideID, depTime, depDate); err != nil {
		return nil, domain.InternalError{Err: err}
	}
	return s.GetRide(rideID)
}

// EndRide completes an owned ride and force-cancels its unconfirmed
// bookings. Seat counts are left alone; the ride is closed.
func (s RideService) EndRide(rideID int64, actor models.Owner) (*models.Ride, error) {
	if _, err := s.loadOwned(rideID, actor); err != nil {
		return nil, err
	}

	tx, err := s.db().Begin()
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	defer tx.Rollback()

	done, err := s.rides().Complete(tx, rideID)
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	if !done {
		return nil, domain.InvalidStateError{Msg: "ride is already completed"}
	}
	if _, err := s.bookings().CancelPendingByRide(tx, rideID); err != nil {
		return nil, domain.InternalError{Err: err}
	}
	if err := tx.Commit(); err != nil {
		return nil, domain.InternalError{Err: err}
	}
	return s.GetRide(rideID)
}

// DeactivateByAdmin completes a ride without owner checks. Unlike EndRide it
// does not touch bookings; that matches the administrative override path.
func (s RideService) DeactivateByAdmin(rideID int64) (*models.Ride, error) {
	if _, err := s.GetRide(rideID); err != nil {
		return nil, err
	}
	done, err := s.rides().Complete(nil, rideID)
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	if !done {
		return nil, domain.InvalidStateError{Msg: "ride is already completed"}
	}
	return s.GetRide(rideID)
}

// FillSeat lets the owner reserve a seat for an offline passenger. The
// bounded conditional update is what enforces capacity under concurrency.
func (s RideService) FillSeat(rideID int64, actor models.Owner) (*models.Ride, error) {
	ride, err := s.loadOwned(rideID, actor)
	if err != nil {
		return nil, err
	}
	if !ride.IsActive() {
		return nil, domain.InvalidStateError{Msg: "ride is not active"}
	}
	ok, err := s.rides().IncrementFilledSeats(s.db(), rideID)
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	if !ok {
		return nil, domain.CapacityError{Msg: "all seats are already filled"}
	}
	return s.GetRide(rideID)
}

// UnfillSeat releases an offline seat. Seats backed by live bookings form a
// floor the manual decrement may not cross.
func (s RideService) UnfillSeat(rideID int64, actor models.Owner) (*models.Ride, error) {
	ride, err := s.loadOwned(rideID, actor)
	if err != nil {
		return nil, err
	}
	if !ride.IsActive() {
		return nil, domain.InvalidStateError{Msg: "ride is not active"}
	}
	if ride.FilledSeats == 0 {
		return nil, domain.InvalidStateError{Msg: "no filled seats to release"}
	}
	floor, err := s.bookings().CountSeatHolding(nil, rideID)
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	ok, err := s.rides().DecrementAboveFloor(s.db(), rideID, floor)
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	if !ok {
		return nil, domain.InvalidStateError{Msg: "remaining filled seats are held by bookings"}
	}
	return s.GetRide(rideID)
}

// ExpireStale force-completes rides past their lifetime: student shares
// older than three hours, and any ride more than an hour past its declared
// departure. Completion is terminal, so re-running is harmless.
func (s RideService) ExpireStale(now time.Time) {
	_, _ = s.rides().ExpireStudentShares(now.Add(-studentShareLifetime))

	deps, err := s.rides().ListActiveDepartures()
	if err != nil {
		return
	}
	overdue := []int64{}
	for _, d := range deps {
		at, err := time.ParseInLocation(departureLayout, d.DepartureDate+" "+d.DepartureTime, now.Location())
		if err != nil {
			continue
		}
		if now.After(at.Add(departureGrace)) {
			overdue = append(overdue, d.ID)
		}
	}
	_, _ = s.rides().CompleteByIDs(overdue)
}
