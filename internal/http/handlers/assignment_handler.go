// README: Driver suggestion handler for the dispatcher's driver picker.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"medicar/internal/modules/assignment"
	"medicar/internal/modules/ride"
	"medicar/internal/types"
)

type AssignmentHandler struct {
	rides       *ride.Service
	suggestions *assignment.Service
}

func NewAssignmentHandler(rides *ride.Service, suggestions *assignment.Service) *AssignmentHandler {
	return &AssignmentHandler{rides: rides, suggestions: suggestions}
}

// Suggest returns the roster evaluated against the ride's window. It is a
// read-only query feeding the driver picker; it never assigns.
func (h *AssignmentHandler) Suggest(c *gin.Context) {
	r, err := h.rides.Get(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeRideError(c, err)
		return
	}
	out, err := h.suggestions.Suggest(c.Request.Context(), r)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	resp := make([]gin.H, 0, len(out))
	for _, s := range out {
		entry := gin.H{
			"driver_id":   s.DriverID,
			"driver_name": s.DriverName,
			"available":   s.Available,
		}
		if s.Available {
			entry["ride_count"] = s.RideCount
		} else {
			entry["reason"] = s.Reason
		}
		resp = append(resp, entry)
	}
	writeJSON(c, http.StatusOK, gin.H{"drivers": resp})
}
