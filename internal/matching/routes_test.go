package matching

import (
	"testing"

	"ridemate/internal/domain/models"
)

func ride(from, to string) models.Ride {
	return models.Ride{From: from, To: to, Status: models.RideStatusActive}
}

func TestFindMatchingRides_NoFilterReturnsAll(t *testing.T) {
	rides := []models.Ride{ride("College", "City Station"), ride("Bus Stand", "College")}
	got := FindMatchingRides(rides, "", "")
	if len(got) != 2 {
		t.Fatalf("expected all rides back, got %d", len(got))
	}
}

func TestMatches_DirectCaseInsensitive(t *testing.T) {
	r := ride("College", "City Station")
	if !Matches(&r, "college", "city station") {
		t.Fatalf("direct match should ignore case")
	}
}

func TestMatches_NestedForwardSegment(t *testing.T) {
	// Route: College, Maqsudan, Jyoti Chowk, Rama Mandi, City Station.
	r := ride("College", "City Station")
	if !Matches(&r, "Maqsudan", "Rama Mandi") {
		t.Fatalf("nested forward segment should match")
	}
}

func TestMatches_WrongDirectionRejected(t *testing.T) {
	r := ride("College", "City Station")
	if Matches(&r, "Rama Mandi", "Maqsudan") {
		t.Fatalf("reverse-direction request must not match a forward ride")
	}
}

func TestMatches_ReverseRideNestedSegment(t *testing.T) {
	r := ride("City Station", "College")
	if !Matches(&r, "Rama Mandi", "Maqsudan") {
		t.Fatalf("nested segment on a reverse ride should match")
	}
	if Matches(&r, "Maqsudan", "Rama Mandi") {
		t.Fatalf("forward request must not match a reverse ride")
	}
}

func TestMatches_BlankFromDefaultsToRideStart(t *testing.T) {
	r := ride("College", "City Station")
	if !Matches(&r, "", "Jyoti Chowk") {
		t.Fatalf("blank from should default to the ride's own start")
	}
}

func TestMatches_OffRouteStopRejected(t *testing.T) {
	r := ride("College", "City Station")
	if Matches(&r, "Nowhere", "City Station") {
		t.Fatalf("unknown stop must not match")
	}
}

func TestMatches_SegmentOutsideRideSpan(t *testing.T) {
	// Ride covers only College..Jyoti Chowk; request reaches past its end.
	r := ride("College", "Jyoti Chowk")
	if Matches(&r, "Maqsudan", "City Station") {
		t.Fatalf("request extending past the ride's segment must not match")
	}
}

func TestFindMatchingRides_Filters(t *testing.T) {
	rides := []models.Ride{
		ride("College", "City Station"),
		ride("City Station", "College"),
		ride("Bus Stand", "College"),
	}
	got := FindMatchingRides(rides, "Maqsudan", "Rama Mandi")
	if len(got) != 1 {
		t.Fatalf("expected exactly one match, got %d", len(got))
	}
	if got[0].From != "College" {
		t.Fatalf("matched the wrong ride: %s -> %s", got[0].From, got[0].To)
	}
}
