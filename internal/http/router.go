package api

import (
	"log/slog"
	stdhttp "net/http"

	"github.com/gin-gonic/gin"

	intconfig "ridemate/internal/config"
	h "ridemate/internal/http/handlers"
	"ridemate/internal/http/middleware"
	"ridemate/internal/observability"
)

func NewRouter(env intconfig.Env, logger *slog.Logger) *gin.Engine {
	h.SetJWTSecret([]byte(env.JWTSecret))
	secret := []byte(env.JWTSecret)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(logger), gin.Recovery(),
		middleware.CORS(), observability.HTTPMetrics())

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Warn("failed to set trusted proxies", "err", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	r.GET("/metrics", observability.MetricsHandler())

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)

		auth := api.Group("/auth")
		auth.POST("/student/register", h.RegisterStudent)
		auth.POST("/student/login", h.LoginStudent)
		auth.POST("/driver/login", h.LoginDriver)
		auth.POST("/admin/login", h.LoginAdmin)
		auth.GET("/me", middleware.Auth(secret), h.Me)

		// Public ride discovery.
		rides := api.Group("/rides")
		rides.GET("/active", h.ActiveRides)
		rides.GET("/locations", h.RideLocations)
		rides.GET("/routes", h.RideRoutes)
		rides.GET("/:id", h.RideDetails)

		student := api.Group("/student",
			middleware.Auth(secret), middleware.RequireRoles(middleware.RoleStudent))
		student.GET("/rides", h.StudentRides)
		student.GET("/ride/:id", h.StudentRideDetails)
		student.POST("/book/:id", h.BookSeat)
		student.PUT("/book/:id/pay", h.MarkPaid)
		student.PUT("/book/:id/cancel", h.CancelBooking)
		student.GET("/bookings", h.MyBookings)
		student.POST("/ride", h.CreateRideShare)
		student.POST("/ride/:id/report", h.ReportRide)
		student.GET("/ride/:id/messages", h.ListMessages)
		student.POST("/ride/:id/messages", h.PostMessage)
		student.GET("/rides/created", h.CreatedRides)
		student.PUT("/ride/:id", h.UpdateOwnShare)
		student.PUT("/ride/:id/deactivate", h.DeactivateOwnShare)

		driver := api.Group("/driver",
			middleware.Auth(secret), middleware.RequireRoles(middleware.RoleDriver))
		driver.GET("/profile", h.DriverProfile)
		driver.PUT("/profile", h.UpdateDriverProfile)
		driver.POST("/rides", h.CreateDriverRide)
		driver.GET("/rides", h.DriverRides)
		driver.PUT("/rides/:id/time", h.UpdateRideTime)
		driver.PUT("/rides/:id/end", h.EndRide)
		driver.PUT("/rides/:id/fill-seat", h.FillSeat)
		driver.PUT("/rides/:id/unfill-seat", h.UnfillSeat)
		driver.GET("/rides/:id/bookings", h.RideBookings)
		driver.GET("/rides/:id/manifest", h.RideManifest)
		driver.GET("/rides/:id/messages", h.ListMessages)
		driver.POST("/rides/:id/messages", h.PostMessage)
		driver.PUT("/bookings/:id/confirm", h.ConfirmBooking)
		driver.PUT("/bookings/:id/noshow", h.MarkNoShow)
		driver.POST("/block/:studentId", h.BlockStudent)
		driver.DELETE("/block/:studentId", h.UnblockStudent)
		driver.GET("/blocked", h.BlockedStudents)

		admin := api.Group("/admin",
			middleware.Auth(secret), middleware.RequireRoles(middleware.RoleAdmin))
		admin.GET("/stats", h.AdminStats)
		admin.POST("/drivers", h.AddDriver)
		admin.GET("/drivers", h.ListDrivers)
		admin.PUT("/drivers/:id", h.UpdateDriver)
		admin.PUT("/drivers/:id/toggle", h.ToggleDriver)
		admin.GET("/students", h.ListStudents)
		admin.PUT("/students/:id/unblock", h.AdminUnblockStudent)
		admin.GET("/rides", h.AdminRides)
		admin.PUT("/rides/:id/deactivate", h.AdminDeactivateRide)
		admin.DELETE("/bookings/cancelled", h.DeleteCancelledBookings)
		admin.GET("/fake-ride-reports", h.FakeRideReports)
		admin.GET("/complaints", h.ListComplaints)
		admin.PUT("/complaints/:id", h.ResolveComplaint)
		admin.DELETE("/complaints/:id", h.DeleteComplaint)
		admin.GET("/suggestions", h.ListSuggestions)
		admin.DELETE("/suggestions/:id", h.DeleteSuggestion)

		complaints := api.Group("/complaints", middleware.Auth(secret))
		complaints.POST("", h.SubmitComplaint)
		complaints.GET("/my", h.MyComplaints)

		api.POST("/suggestions", h.SubmitSuggestion)
	}

	return r
}
