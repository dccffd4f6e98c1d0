// README: HTTP router registration and role policy.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"medicar/internal/http/handlers"
	"medicar/internal/http/middleware"
	"medicar/internal/infra"
	"medicar/internal/modules/assignment"
	"medicar/internal/modules/availability"
	"medicar/internal/modules/destination"
	"medicar/internal/modules/driver"
	"medicar/internal/modules/patient"
	"medicar/internal/modules/ride"
)

type RouterDeps struct {
	Rides        *ride.Service
	Assignment   *assignment.Service
	Availability *availability.Service
	Patients     *patient.Service
	Drivers      *driver.Service
	Destinations *destination.Service
	Verifier     infra.TokenVerifier
	Redis        *redis.Client
	Logger       *zap.Logger
	RatePerMin   int
}

func NewRouter(deps RouterDeps) http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.Logging(deps.Logger))
	if deps.Redis != nil {
		r.Use(middleware.RateLimit(deps.Redis, deps.RatePerMin))
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	api := r.Group("/api", middleware.Auth(deps.Verifier))

	dispatcher := middleware.RequireRole(middleware.RoleAdmin, middleware.RoleOperator)
	anyRole := middleware.RequireRole(middleware.RoleAdmin, middleware.RoleOperator, middleware.RoleDriver)

	rideHandler := handlers.NewRideHandler(deps.Rides, deps.Patients, deps.Destinations)
	api.POST("/rides", dispatcher, rideHandler.Create)
	api.POST("/rides/recurring", dispatcher, rideHandler.CreateRecurring)
	api.GET("/rides", anyRole, rideHandler.List)
	api.GET("/rides/:id", anyRole, rideHandler.Get)
	api.DELETE("/rides/:id", middleware.RequireRole(middleware.RoleAdmin), rideHandler.Delete)

	api.POST("/rides/:id/assign", dispatcher, rideHandler.Assign)
	api.POST("/rides/:id/confirm", anyRole, rideHandler.Confirm)
	api.POST("/rides/:id/reject", anyRole, rideHandler.Reject)
	api.POST("/rides/:id/start", anyRole, rideHandler.Start)
	api.POST("/rides/:id/complete", anyRole, rideHandler.Complete)
	api.POST("/rides/:id/cancel", dispatcher, rideHandler.Cancel)

	assignmentHandler := handlers.NewAssignmentHandler(deps.Rides, deps.Assignment)
	api.GET("/rides/:id/suggestions", dispatcher, assignmentHandler.Suggest)

	patientHandler := handlers.NewPatientHandler(deps.Patients)
	api.POST("/patients", dispatcher, patientHandler.Create)
	api.GET("/patients", dispatcher, patientHandler.List)
	api.GET("/patients/:id", anyRole, patientHandler.Get)
	api.PUT("/patients/:id", dispatcher, patientHandler.Update)
	api.DELETE("/patients/:id", middleware.RequireRole(middleware.RoleAdmin), patientHandler.Delete)

	driverHandler := handlers.NewDriverHandler(deps.Drivers, deps.Availability)
	api.POST("/drivers", dispatcher, driverHandler.Create)
	api.GET("/drivers", dispatcher, driverHandler.List)
	api.GET("/drivers/:id", anyRole, driverHandler.Get)
	api.PUT("/drivers/:id", dispatcher, driverHandler.Update)
	api.DELETE("/drivers/:id", middleware.RequireRole(middleware.RoleAdmin), driverHandler.Delete)

	api.GET("/drivers/:id/schedule", anyRole, driverHandler.Schedule)
	api.PUT("/drivers/:id/availability", anyRole, driverHandler.PutBlock)
	api.DELETE("/drivers/:id/availability/:blockID", anyRole, driverHandler.DeleteBlock)
	api.POST("/drivers/:id/absences", anyRole, driverHandler.AddAbsence)
	api.DELETE("/drivers/:id/absences/:absenceID", anyRole, driverHandler.DeleteAbsence)

	destinationHandler := handlers.NewDestinationHandler(deps.Destinations)
	api.POST("/destinations", dispatcher, destinationHandler.Create)
	api.GET("/destinations", anyRole, destinationHandler.List)
	api.GET("/destinations/:id", anyRole, destinationHandler.Get)
	api.PUT("/destinations/:id", dispatcher, destinationHandler.Update)
	api.POST("/destinations/:id/deactivate", dispatcher, destinationHandler.Deactivate)
	api.POST("/destinations/:id/activate", dispatcher, destinationHandler.Activate)

	return r
}
