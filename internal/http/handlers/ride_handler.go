// README: Ride handlers: creation, recurring creation, transitions, lookup.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"medicar/internal/modules/destination"
	"medicar/internal/modules/patient"
	"medicar/internal/modules/ride"
	"medicar/internal/types"
)

type RideHandler struct {
	rides        *ride.Service
	patients     *patient.Service
	destinations *destination.Service
}

func NewRideHandler(rides *ride.Service, patients *patient.Service, destinations *destination.Service) *RideHandler {
	return &RideHandler{rides: rides, patients: patients, destinations: destinations}
}

type createRideReq struct {
	PatientID     string  `json:"patient_id"`
	DestinationID string  `json:"destination_id"`
	PickupAt      string  `json:"pickup_at"`
	ArrivalAt     string  `json:"arrival_at"`
	ReturnAt      *string `json:"return_at,omitempty"`
	Notes         string  `json:"notes"`
}

func (h *RideHandler) buildCreateCommand(c *gin.Context, req createRideReq) (ride.CreateCommand, bool) {
	var cmd ride.CreateCommand
	pickup, err1 := time.Parse(time.RFC3339, req.PickupAt)
	arrival, err2 := time.Parse(time.RFC3339, req.ArrivalAt)
	if err1 != nil || err2 != nil {
		writeError(c, http.StatusBadRequest, "pickup_at and arrival_at must be RFC 3339 timestamps")
		return cmd, false
	}
	cmd = ride.CreateCommand{
		PatientID:     types.ID(req.PatientID),
		DestinationID: types.ID(req.DestinationID),
		PickupAt:      pickup,
		ArrivalAt:     arrival,
		Notes:         req.Notes,
	}
	if req.ReturnAt != nil {
		ret, err := time.Parse(time.RFC3339, *req.ReturnAt)
		if err != nil {
			writeError(c, http.StatusBadRequest, "return_at must be an RFC 3339 timestamp")
			return cmd, false
		}
		cmd.ReturnAt = &ret
	}

	p, err := h.patients.Get(c.Request.Context(), cmd.PatientID)
	if err != nil {
		writeRegistryError(c, err)
		return cmd, false
	}
	d, err := h.destinations.Get(c.Request.Context(), cmd.DestinationID)
	if err != nil {
		writeRegistryError(c, err)
		return cmd, false
	}
	cmd.Origin = p.Location
	cmd.Destination = d.Location
	return cmd, true
}

func (h *RideHandler) Create(c *gin.Context) {
	var req createRideReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	cmd, ok := h.buildCreateCommand(c, req)
	if !ok {
		return
	}
	id, err := h.rides.Create(c.Request.Context(), cmd)
	if err != nil {
		writeRideError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, gin.H{"ride_id": id, "status": ride.StatusPlanned})
}

type createRecurringReq struct {
	createRideReq
	// DaysOfWeek uses 1=Monday .. 7=Sunday.
	DaysOfWeek []int `json:"days_of_week"`
	Weeks      int   `json:"weeks"`
}

func (h *RideHandler) CreateRecurring(c *gin.Context) {
	var req createRecurringReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	tpl, ok := h.buildCreateCommand(c, req.createRideReq)
	if !ok {
		return
	}
	days := make([]time.Weekday, 0, len(req.DaysOfWeek))
	for _, n := range req.DaysOfWeek {
		if n < 1 || n > 7 {
			writeError(c, http.StatusBadRequest, "days_of_week entries must be 1..7")
			return
		}
		days = append(days, time.Weekday(n%7))
	}
	ids, err := h.rides.CreateRecurring(c.Request.Context(), ride.CreateRecurringCommand{
		Template:   tpl,
		DaysOfWeek: days,
		Weeks:      req.Weeks,
	})
	if err != nil && len(ids) == 0 {
		writeRideError(c, err)
		return
	}
	resp := gin.H{"ride_ids": ids, "count": len(ids)}
	if err != nil {
		// Creation is best effort: report partial failures alongside the
		// occurrences that were created.
		resp["partial_error"] = err.Error()
	}
	writeJSON(c, http.StatusCreated, resp)
}

func (h *RideHandler) Get(c *gin.Context) {
	r, err := h.rides.Get(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeRideError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, rideResponse(r))
}

func (h *RideHandler) List(c *gin.Context) {
	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		writeError(c, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	rides, err := h.rides.ListOnDate(c.Request.Context(), date)
	if err != nil {
		writeRideError(c, err)
		return
	}
	out := make([]gin.H, 0, len(rides))
	for _, r := range rides {
		out = append(out, rideResponse(r))
	}
	writeJSON(c, http.StatusOK, gin.H{"rides": out})
}

func (h *RideHandler) Delete(c *gin.Context) {
	if err := h.rides.Delete(c.Request.Context(), types.ID(c.Param("id"))); err != nil {
		writeRideError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type assignReq struct {
	DriverID string `json:"driver_id"`
}

func (h *RideHandler) Assign(c *gin.Context) {
	var req assignReq
	if err := c.ShouldBindJSON(&req); err != nil || req.DriverID == "" {
		writeError(c, http.StatusBadRequest, "missing driver_id")
		return
	}
	err := h.rides.AssignDriver(c.Request.Context(), ride.AssignCommand{
		RideID:   types.ID(c.Param("id")),
		DriverID: types.ID(req.DriverID),
	})
	if err != nil {
		writeRideError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": ride.StatusPlanned, "driver_id": req.DriverID})
}

func (h *RideHandler) Confirm(c *gin.Context) {
	err := h.rides.Confirm(c.Request.Context(), ride.ConfirmCommand{RideID: types.ID(c.Param("id"))})
	if err != nil {
		writeRideError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": ride.StatusConfirmed})
}

func (h *RideHandler) Reject(c *gin.Context) {
	err := h.rides.Reject(c.Request.Context(), ride.RejectCommand{RideID: types.ID(c.Param("id"))})
	if err != nil {
		writeRideError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": ride.StatusPlanned})
}

func (h *RideHandler) Start(c *gin.Context) {
	err := h.rides.Start(c.Request.Context(), ride.StartCommand{RideID: types.ID(c.Param("id"))})
	if err != nil {
		writeRideError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": ride.StatusInProgress})
}

func (h *RideHandler) Complete(c *gin.Context) {
	err := h.rides.Complete(c.Request.Context(), ride.CompleteCommand{RideID: types.ID(c.Param("id"))})
	if err != nil {
		writeRideError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": ride.StatusCompleted})
}

type cancelReq struct {
	Reason string `json:"reason"`
}

func (h *RideHandler) Cancel(c *gin.Context) {
	var req cancelReq
	_ = c.ShouldBindJSON(&req)
	err := h.rides.Cancel(c.Request.Context(), ride.CancelCommand{
		RideID: types.ID(c.Param("id")),
		Reason: req.Reason,
	})
	if err != nil {
		writeRideError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": ride.StatusCancelled})
}

func rideResponse(r *ride.Ride) gin.H {
	resp := gin.H{
		"ride_id":        r.ID,
		"patient_id":     r.PatientID,
		"destination_id": r.DestinationID,
		"status":         r.Status,
		"pickup_at":      r.PickupAt,
		"arrival_at":     r.ArrivalAt,
		"notes":          r.Notes,
	}
	if r.DriverID != nil {
		resp["driver_id"] = *r.DriverID
	}
	if r.ReturnAt != nil {
		resp["return_at"] = *r.ReturnAt
	}
	if r.RecurrenceGroup != nil {
		resp["recurrence_group"] = *r.RecurrenceGroup
	}
	if r.EstimatedKm != nil {
		resp["estimated_km"] = *r.EstimatedKm
	}
	if r.EstimatedTime != nil {
		resp["estimated_minutes"] = int(r.EstimatedTime.Minutes())
	}
	if r.CancelReason != nil {
		resp["cancel_reason"] = *r.CancelReason
	}
	return resp
}
