package services

import (
	"database/sql"

	"github.com/google/uuid"

	intconfig "ridemate/internal/config"
	"ridemate/internal/domain"
	"ridemate/internal/domain/models"
	"ridemate/internal/observability"
	"ridemate/internal/repositories"
)

// Escalation threshold for repeated no-shows.
const noShowBlockThreshold = 3

type BookingService struct {
	BookingRepo repositories.BookingRepository
	RideRepo    repositories.RideRepository
	StudentRepo repositories.StudentRepository
	BlockRepo   repositories.BlockRepository
	DB          *sql.DB
}

func (s BookingService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s BookingService) bookings() repositories.BookingRepository {
	if s.BookingRepo.DB != nil {
		return s.BookingRepo
	}
	return repositories.BookingRepository{DB: s.db()}
}

func (s BookingService) rides() repositories.RideRepository {
	if s.RideRepo.DB != nil {
		return s.RideRepo
	}
	return repositories.RideRepository{DB: s.db()}
}

func (s BookingService) students() repositories.StudentRepository {
	if s.StudentRepo.DB != nil {
		return s.StudentRepo
	}
	return repositories.StudentRepository{DB: s.db()}
}

func (s BookingService) blocks() repositories.BlockRepository {
	if s.BlockRepo.DB != nil {
		return s.BlockRepo
	}
	return repositories.BlockRepository{DB: s.db()}
}

// BookSeat reserves one seat for the student. Checks run in a fixed order so
// each failure surfaces its own kind; the seat itself is taken by a bounded
// conditional increment inside the transaction, which is what keeps two
// last-seat bookers from both succeeding.
func (s BookingService) BookSeat(studentID, rideID int64) (*models.Booking, error) {
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
	if student.IsGloballyBlocked {
		return nil, domain.ForbiddenError{Msg: "your account is blocked due to repeated no-shows"}
	}

	ride, err := s.rides().GetByID(tx, rideID)
	if err == sql.ErrNoRows {
		return nil, domain.NotFoundError{Resource: "ride", Err: err}
	}
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	if !ride.IsActive() {
		return nil, domain.InvalidStateError{Msg: "ride is not active"}
	}

	if ride.Owner.IsDriver() {
		blocked, err := s.blocks().Exists(tx, ride.Owner.ID, studentID)
		if err != nil {
			return nil, domain.InternalError{Err: err}
		}
		if blocked {
			return nil, domain.ForbiddenError{Msg: "this driver has blocked you"}
		}
	}

	busy, err := s.bookings().HasActiveByStudent(tx, studentID)
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	if busy {
		return nil, domain.ConflictError{Resource: "booking", Msg: "you already have an active booking"}
	}

	got, err := s.rides().IncrementFilledSeats(tx, rideID)
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	if !got {
		return nil, domain.CapacityError{Msg: "no seats available"}
	}

	booking := &models.Booking{
		Reference: uuid.NewString(),
		RideID:    rideID,
		StudentID: studentID,
	}
	if err := s.bookings().Create(tx, booking); err != nil {
		return nil, domain.InternalError{Err: err}
	}
	if err := tx.Commit(); err != nil {
		return nil, domain.InternalError{Err: err}
	}

	observability.BookingsCreated.Inc()
	return s.get(booking.ID)
}

func (s BookingService) get(bookingID int64) (*models.Booking, error) {
	b, err := s.bookings().GetByID(nil, bookingID)
	if err == sql.ErrNoRows {
		return nil, domain.NotFoundError{Resource: "booking", Err: err}
	}
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	return b, nil
}

// MarkPaid records the rider's honor-system payment acknowledgment:
// pending to pending_confirmation, rider only.
func (s BookingService) MarkPaid(bookingID, studentID int64) (*models.Booking, error) {
	b, err := s.get(bookingID)
	if err != nil {
		return nil, err
	}
	if b.StudentID != studentID {
		return nil, domain.AuthorizationError{Msg: "not your booking"}
	}
	ok, err := s.bookings().UpdateStatusFrom(s.db(), bookingID,
		[]models.BookingStatus{models.BookingStatusPending}, models.BookingStatusPendingConfirmation)
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	if !ok {
		return nil, domain.InvalidStateError{Msg: "booking is not awaiting payment"}
	}
	return s.get(bookingID)
}

// Confirm is the ride owner's acknowledgment of a paid booking.
func (s BookingService) Confirm(bookingID int64, actor models.Owner) (*models.Booking, error) {
	b, err := s.get(bookingID)
	if err != nil {
		return nil, err
	}
	if b.RideOwner != actor {
		return nil, domain.AuthorizationError{Msg: "not a booking on your ride"}
	}
	ok, err := s.bookings().UpdateStatusFrom(s.db(), bookingID,
		[]models.BookingStatus{models.BookingStatusPendingConfirmation}, models.BookingStatusConfirmed)
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	if !ok {
		return nil, domain.InvalidStateError{Msg: "booking is not awaiting confirmation"}
	}
	return s.get(bookingID)
}

// NoShowResult reports what the escalation did alongside the booking.
type NoShowResult struct {
	Booking     *models.Booking
	NoShowCount int
	Blocked     bool
}

// MarkNoShow lets the ride owner flag an absent rider. The seat is released,
// the rider's counter advances, and the third strike flips the global block.
// Any seat-holding status may transition here, confirmed included.
func (s BookingService) MarkNoShow(bookingID int64, actor models.Owner) (*NoShowResult, error) {
	tx, err := s.db().Begin()
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	defer tx.Rollback()

	b, err := s.bookings().GetByID(tx, bookingID)
	if err == sql.ErrNoRows {
		return nil, domain.NotFoundError{Resource: "booking", Err: err}
	}
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	if b.RideOwner != actor {
		return nil, domain.AuthorizationError{Msg: "not a booking on your ride"}
	}

	ok, err := s.bookings().UpdateStatusFrom(tx, bookingID,
		models.SeatHoldingStatuses, models.BookingStatusNoShow)
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	if !ok {
		return nil, domain.InvalidStateError{Msg: "booking is already closed"}
	}
	if err := s.rides().ReleaseSeat(tx, b.RideID); err != nil {
		return nil, domain.InternalError{Err: err}
	}
	count, blocked, err := s.students().ApplyNoShow(tx, b.StudentID)
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	if err := tx.Commit(); err != nil {
		return nil, domain.InternalError{Err: err}
	}

	observability.NoShowsRecorded.Inc()
	updated, err := s.get(bookingID)
	if err != nil {
		return nil, err
	}
	return &NoShowResult{Booking: updated, NoShowCount: count, Blocked: blocked}, nil
}

// Cancel is rider-initiated and only valid before confirmation. The held
// seat goes back to the ride.
func (s BookingService) Cancel(bookingID, studentID int64) (*models.Booking, error) {
	tx, err := s.db().Begin()
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	defer tx.Rollback()

	b, err := s.bookings().GetByID(tx, bookingID)
	if err == sql.ErrNoRows {
		return nil, domain.NotFoundError{Resource: "booking", Err: err}
	}
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	if b.StudentID != studentID {
		return nil, domain.AuthorizationError{Msg: "not your booking"}
	}

	ok, err := s.bookings().UpdateStatusFrom(tx, bookingID,
		models.ActiveBookingStatuses, models.BookingStatusCancelled)
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	if !ok {
		return nil, domain.InvalidStateError{Msg: "booking can no longer be cancelled"}
	}
	if err := s.rides().ReleaseSeat(tx, b.RideID); err != nil {
		return nil, domain.InternalError{Err: err}
	}
	if err := tx.Commit(); err != nil {
		return nil, domain.InternalError{Err: err}
	}
	return s.get(bookingID)
}

func (s BookingService) MyBookings(studentID int64) ([]models.Booking, error) {
	out, err := s.bookings().ListByStudent(studentID)
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	return out, nil
}

// RideBookings is the owner's passenger list for one ride.
func (s BookingService) RideBookings(rideID int64, actor models.Owner) ([]models.Booking, error) {
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
	out, err := s.bookings().ListByRide(rideID)
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	return out, nil
}

// HasBookingForRide powers the ride-details chat-access flag.
func (s BookingService) HasBookingForRide(studentID, rideID int64) (bool, error) {
	ok, err := s.bookings().HasSeatHoldingByStudent(studentID, rideID)
	if err != nil {
		return false, domain.InternalError{Err: err}
	}
	return ok, nil
}

// PurgeCancelled is the administrative bulk delete of cancelled records.
func (s BookingService) PurgeCancelled() (int64, error) {
	n, err := s.bookings().DeleteCancelled()
	if err != nil {
		return 0, domain.InternalError{Err: err}
	}
	return n, nil
}
