package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ridemate/internal/matching"
	"ridemate/internal/services"
)

// GET /api/health
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GET /api/rides/active?from=&to=
func ActiveRides(c *gin.Context) {
	rides, err := services.RideService{}.ListActive(c.Query("from"), c.Query("to"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rides": rides})
}

// GET /api/rides/locations
func RideLocations(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"locations": matching.Locations})
}

// GET /api/rides/routes
func RideRoutes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"routes": matching.Routes})
}

// GET /api/rides/:id
func RideDetails(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	ride, err := services.RideService{}.GetRide(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ride": ride})
}
