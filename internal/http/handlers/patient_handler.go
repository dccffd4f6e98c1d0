// README: Patient registry handlers.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"medicar/internal/modules/patient"
	"medicar/internal/types"
)

type PatientHandler struct {
	patients *patient.Service
}

func NewPatientHandler(patients *patient.Service) *PatientHandler {
	return &PatientHandler{patients: patients}
}

type patientReq struct {
	FirstName       string   `json:"first_name"`
	LastName        string   `json:"last_name"`
	Address         string   `json:"address"`
	Lat             *float64 `json:"lat"`
	Lng             *float64 `json:"lng"`
	Phone           string   `json:"phone"`
	Wheelchair      bool     `json:"wheelchair"`
	Walker          bool     `json:"walker"`
	NeedsAssistance bool     `json:"needs_assistance"`
	Notes           string   `json:"notes"`
}

func (r patientReq) command() patient.UpsertCommand {
	return patient.UpsertCommand{
		FirstName:       r.FirstName,
		LastName:        r.LastName,
		Address:         r.Address,
		Location:        pointOf(r.Lat, r.Lng),
		Phone:           r.Phone,
		Wheelchair:      r.Wheelchair,
		Walker:          r.Walker,
		NeedsAssistance: r.NeedsAssistance,
		Notes:           r.Notes,
	}
}

func (h *PatientHandler) Create(c *gin.Context) {
	var req patientReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	p, err := h.patients.Create(c.Request.Context(), req.command())
	if err != nil {
		writeRegistryError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, patientResponse(p))
}

func (h *PatientHandler) Get(c *gin.Context) {
	p, err := h.patients.Get(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeRegistryError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, patientResponse(p))
}

func (h *PatientHandler) Update(c *gin.Context) {
	var req patientReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	p, err := h.patients.Update(c.Request.Context(), types.ID(c.Param("id")), req.command())
	if err != nil {
		writeRegistryError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, patientResponse(p))
}

func (h *PatientHandler) List(c *gin.Context) {
	patients, err := h.patients.List(c.Request.Context())
	if err != nil {
		writeRegistryError(c, err)
		return
	}
	out := make([]gin.H, 0, len(patients))
	for _, p := range patients {
		out = append(out, patientResponse(p))
	}
	writeJSON(c, http.StatusOK, gin.H{"patients": out})
}

func (h *PatientHandler) Delete(c *gin.Context) {
	if err := h.patients.Delete(c.Request.Context(), types.ID(c.Param("id"))); err != nil {
		writeRegistryError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func patientResponse(p *patient.Patient) gin.H {
	resp := gin.H{
		"patient_id":       p.ID,
		"first_name":       p.FirstName,
		"last_name":        p.LastName,
		"address":          p.Address,
		"phone":            p.Phone,
		"wheelchair":       p.Wheelchair,
		"walker":           p.Walker,
		"needs_assistance": p.NeedsAssistance,
		"notes":            p.Notes,
	}
	if p.Location != nil {
		resp["lat"] = p.Location.Lat
		resp["lng"] = p.Location.Lng
	}
	return resp
}

func pointOf(lat, lng *float64) *types.Point {
	if lat == nil || lng == nil {
		return nil
	}
	return &types.Point{Lat: *lat, Lng: *lng}
}
