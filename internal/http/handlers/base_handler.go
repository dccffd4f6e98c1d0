// README: Shared handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"medicar/internal/modules/availability"
	"medicar/internal/modules/destination"
	"medicar/internal/modules/driver"
	"medicar/internal/modules/patient"
	"medicar/internal/modules/ride"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// writeRideError maps ride service errors onto HTTP statuses.
func writeRideError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ride.ErrBadRequest):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, ride.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, ride.ErrUnsupportedWindow):
		writeError(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ride.ErrInvalidTransition),
		errors.Is(err, ride.ErrDriverUnavailable),
		errors.Is(err, ride.ErrConflict):
		writeError(c, http.StatusConflict, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

// writeRegistryError maps the registry modules' errors onto HTTP statuses.
func writeRegistryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, patient.ErrBadRequest),
		errors.Is(err, driver.ErrBadRequest),
		errors.Is(err, destination.ErrBadRequest),
		errors.Is(err, availability.ErrBadRequest):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, patient.ErrNotFound),
		errors.Is(err, driver.ErrNotFound),
		errors.Is(err, destination.ErrNotFound),
		errors.Is(err, availability.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
