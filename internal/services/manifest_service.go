package services

import (
	"bytes"
	"database/sql"
	"fmt"

	"github.com/phpdave11/gofpdf"

	intconfig "ridemate/internal/config"
	"ridemate/internal/domain"
	"ridemate/internal/domain/models"
	"ridemate/internal/repositories"
)

// ManifestService renders the passenger manifest PDF a driver can print
// before departure.
type ManifestService struct {
	RideRepo    repositories.RideRepository
	BookingRepo repositories.BookingRepository
	DB          *sql.DB
}

func (s ManifestService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s ManifestService) rides() repositories.RideRepository {
	if s.RideRepo.DB != nil {
		return s.RideRepo
	}
	return repositories.RideRepository{DB: s.db()}
}

func (s ManifestService) bookings() repositories.BookingRepository {
	if s.BookingRepo.DB != nil {
		return s.BookingRepo
	}
	return repositories.BookingRepository{DB: s.db()}
}

// GenerateManifest builds the PDF for an owned ride. Returns the bytes and
// a suggested filename.
func (s ManifestService) GenerateManifest(rideID int64, actor models.Owner) ([]byte, string, error) {
	ride, err := s.rides().GetByID(nil, rideID)
	if err == sql.ErrNoRows {
		return nil, "", domain.NotFoundError{Resource: "ride", Err: err}
	}
	if err != nil {
		return nil, "", domain.InternalError{Err: err}
	}
	if !ride.OwnedBy(actor) {
		return nil, "", domain.AuthorizationError{Msg: "not your ride"}
	}

	passengers, err := s.bookings().ListByRide(rideID)
	if err != nil {
		return nil, "", domain.InternalError{Err: err}
	}

	data, err := buildManifestPDF(ride, passengers)
	if err != nil {
		return nil, "", domain.InternalError{Err: err}
	}
	return data, fmt.Sprintf("manifest-ride-%d.pdf", rideID), nil
}

func buildManifestPDF(ride *models.Ride, passengers []models.Booking) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Passenger Manifest", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "PASSENGER MANIFEST")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	header := []string{
		fmt.Sprintf("Ride       : #%d", ride.ID),
		fmt.Sprintf("Route      : %s -> %s", ride.From, ride.To),
		fmt.Sprintf("Departure  : %s %s", orDash(ride.DepartureDate), orDash(ride.DepartureTime)),
		fmt.Sprintf("Seats      : %d / %d filled", ride.FilledSeats, ride.TotalSeats),
	}
	if ride.AutoNumber != "" {
		header = append(header, fmt.Sprintf("Auto       : %s", ride.AutoNumber))
	}
	for _, line := range header {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(10, 8, "#", "1", 0, "C", false, 0, "")
	pdf.CellFormat(60, 8, "Passenger", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 8, "Phone", "1", 0, "L", false, 0, "")
	pdf.CellFormat(45, 8, "Status", "1", 0, "L", false, 0, "")
	pdf.CellFormat(25, 8, "No-shows", "1", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	row := 0
	for _, p := range passengers {
		if p.Status == models.BookingStatusCancelled {
			continue
		}
		row++
		pdf.CellFormat(10, 8, fmt.Sprintf("%d", row), "1", 0, "C", false, 0, "")
		pdf.CellFormat(60, 8, p.StudentName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 8, p.StudentPhone, "1", 0, "L", false, 0, "")
		pdf.CellFormat(45, 8, string(p.Status), "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 8, fmt.Sprintf("%d", p.StudentNoShows), "1", 1, "C", false, 0, "")
	}
	if row == 0 {
		pdf.CellFormat(180, 8, "No passengers yet", "1", 1, "C", false, 0, "")
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Note: only riders in pending, pending_confirmation or confirmed status hold a seat. Cancelled bookings are omitted.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
