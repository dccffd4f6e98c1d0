// README: Destination registry handlers.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"medicar/internal/modules/destination"
	"medicar/internal/types"
)

type DestinationHandler struct {
	destinations *destination.Service
}

func NewDestinationHandler(destinations *destination.Service) *DestinationHandler {
	return &DestinationHandler{destinations: destinations}
}

type destinationReq struct {
	Name         string   `json:"name"`
	Address      string   `json:"address"`
	Lat          *float64 `json:"lat"`
	Lng          *float64 `json:"lng"`
	Type         string   `json:"type"`
	OpeningHours string   `json:"opening_hours"`
	ArrivalNote  string   `json:"arrival_note"`
}

func (r destinationReq) command() destination.UpsertCommand {
	return destination.UpsertCommand{
		Name:         r.Name,
		Address:      r.Address,
		Location:     pointOf(r.Lat, r.Lng),
		Type:         destination.Type(r.Type),
		OpeningHours: r.OpeningHours,
		ArrivalNote:  r.ArrivalNote,
	}
}

func (h *DestinationHandler) Create(c *gin.Context) {
	var req destinationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	d, err := h.destinations.Create(c.Request.Context(), req.command())
	if err != nil {
		writeRegistryError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, destinationResponse(d))
}

func (h *DestinationHandler) Get(c *gin.Context) {
	d, err := h.destinations.Get(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeRegistryError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, destinationResponse(d))
}

func (h *DestinationHandler) Update(c *gin.Context) {
	var req destinationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	d, err := h.destinations.Update(c.Request.Context(), types.ID(c.Param("id")), req.command())
	if err != nil {
		writeRegistryError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, destinationResponse(d))
}

func (h *DestinationHandler) List(c *gin.Context) {
	includeInactive := c.Query("include_inactive") == "true"
	ds, err := h.destinations.List(c.Request.Context(), includeInactive)
	if err != nil {
		writeRegistryError(c, err)
		return
	}
	out := make([]gin.H, 0, len(ds))
	for _, d := range ds {
		out = append(out, destinationResponse(d))
	}
	writeJSON(c, http.StatusOK, gin.H{"destinations": out})
}

func (h *DestinationHandler) Deactivate(c *gin.Context) {
	if err := h.destinations.Deactivate(c.Request.Context(), types.ID(c.Param("id"))); err != nil {
		writeRegistryError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"active": false})
}

func (h *DestinationHandler) Activate(c *gin.Context) {
	if err := h.destinations.Activate(c.Request.Context(), types.ID(c.Param("id"))); err != nil {
		writeRegistryError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"active": true})
}

func destinationResponse(d *destination.Destination) gin.H {
	resp := gin.H{
		"destination_id": d.ID,
		"name":           d.Name,
		"address":        d.Address,
		"type":           d.Type,
		"opening_hours":  d.OpeningHours,
		"arrival_note":   d.ArrivalNote,
		"active":         d.Active,
	}
	if d.Location != nil {
		resp["lat"] = d.Location.Lat
		resp["lng"] = d.Location.Lng
	}
	return resp
}
