// Package matching filters active rides against a rider's desired from/to,
// including partial "flag it down midway" overlap along fixed auto routes.
package matching

import (
	"strings"

	"ridemate/internal/domain/models"
)

// Routes are the physical corridors autos travel through campus and the
// city, each an ordered stop list. The set is small, fixed and code-defined;
// matching is containment along a corridor, not path finding.
var Routes = [][]string{
	{"College", "Maqsudan", "Jyoti Chowk", "Rama Mandi", "City Station"},
	{"Bus Stand", "City Station", "Maqsudan", "College"},
	{"College", "Maqsudan", "Cantt. Station", "Rama Mandi"},
	{"Bus Stand", "Cantt. Station", "Maqsudan", "College"},
}

// Locations is the union of all stops, for pickers and validation.
var Locations = []string{
	"College",
	"Maqsudan",
	"Jyoti Chowk",
	"Rama Mandi",
	"City Station",
	"Bus Stand",
	"Cantt. Station",
}

// FindMatchingRides keeps the rides that satisfy the rider's from/to.
// With both fields blank the input is returned unchanged.
func FindMatchingRides(rides []models.Ride, from, to string) []models.Ride {
	if from == "" && to == "" {
		return rides
	}

	out := make([]models.Ride, 0, len(rides))
	for _, ride := range rides {
		if Matches(&ride, from, to) {
			out = append(out, ride)
		}
	}
	return out
}

// Matches reports whether a single ride serves the requested segment,
// either directly or somewhere along one of the fixed routes.
func Matches(ride *models.Ride, from, to string) bool {
	fromMatch := from == "" || strings.EqualFold(ride.From, from)
	toMatch := to == "" || strings.EqualFold(ride.To, to)
	if fromMatch && toMatch {
		return true
	}

	for _, route := range Routes {
		if matchesOnRoute(route, ride, from, to) {
			return true
		}
	}
	return false
}

// matchesOnRoute checks one corridor: the requested segment must lie within
// the ride's segment and run in the same direction.
func matchesOnRoute(route []string, ride *models.Ride, from, to string) bool {
	rideFrom := stopIndex(route, ride.From)
	rideTo := stopIndex(route, ride.To)
	if rideFrom < 0 || rideTo < 0 {
		return false
	}

	reqFrom := rideFrom
	if from != "" {
		reqFrom = stopIndex(route, from)
	}
	reqTo := rideTo
	if to != "" {
		reqTo = stopIndex(route, to)
	}
	if reqFrom < 0 || reqTo < 0 {
		return false
	}

	if rideFrom < rideTo {
		// Forward travel along the route.
		return reqFrom >= rideFrom && reqTo <= rideTo && reqFrom < reqTo
	}
	return reqFrom <= rideFrom && reqTo >= rideTo && reqFrom > reqTo
}

func stopIndex(route []string, stop string) int {
	for i, s := range route {
		if strings.EqualFold(s, stop) {
			return i
		}
	}
	return -1
}
