// README: Driver registry handlers plus availability block/absence management.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"medicar/internal/modules/availability"
	"medicar/internal/modules/driver"
	"medicar/internal/types"
)

type DriverHandler struct {
	drivers      *driver.Service
	availability *availability.Service
}

func NewDriverHandler(drivers *driver.Service, avail *availability.Service) *DriverHandler {
	return &DriverHandler{drivers: drivers, availability: avail}
}

type driverReq struct {
	Name         string  `json:"name"`
	Phone        string  `json:"phone"`
	VehicleType  string  `json:"vehicle_type"`
	VehiclePlate string  `json:"vehicle_plate"`
	UserID       *string `json:"user_id"`
}

func (r driverReq) command() driver.UpsertCommand {
	cmd := driver.UpsertCommand{
		Name:         r.Name,
		Phone:        r.Phone,
		VehicleType:  r.VehicleType,
		VehiclePlate: r.VehiclePlate,
	}
	if r.UserID != nil {
		id := types.ID(*r.UserID)
		cmd.UserID = &id
	}
	return cmd
}

func (h *DriverHandler) Create(c *gin.Context) {
	var req driverReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	d, err := h.drivers.Create(c.Request.Context(), req.command())
	if err != nil {
		writeRegistryError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, driverResponse(d))
}

func (h *DriverHandler) Get(c *gin.Context) {
	d, err := h.drivers.Get(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeRegistryError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, driverResponse(d))
}

func (h *DriverHandler) Update(c *gin.Context) {
	var req driverReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	d, err := h.drivers.Update(c.Request.Context(), types.ID(c.Param("id")), req.command())
	if err != nil {
		writeRegistryError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, driverResponse(d))
}

func (h *DriverHandler) List(c *gin.Context) {
	drivers, err := h.drivers.List(c.Request.Context())
	if err != nil {
		writeRegistryError(c, err)
		return
	}
	out := make([]gin.H, 0, len(drivers))
	for _, d := range drivers {
		out = append(out, driverResponse(d))
	}
	writeJSON(c, http.StatusOK, gin.H{"drivers": out})
}

func (h *DriverHandler) Delete(c *gin.Context) {
	if err := h.drivers.Delete(c.Request.Context(), types.ID(c.Param("id"))); err != nil {
		writeRegistryError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type blockReq struct {
	Weekday string `json:"weekday"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

// PutBlock upserts the weekly availability block for (driver, weekday, start).
func (h *DriverHandler) PutBlock(c *gin.Context) {
	var req blockReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	start, err := availability.ParseClock(req.Start)
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	end, err := availability.ParseClock(req.End)
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	b, err := h.availability.PutBlock(c.Request.Context(), availability.BlockCommand{
		DriverID: types.ID(c.Param("id")),
		Weekday:  availability.Weekday(req.Weekday),
		Start:    start,
		End:      end,
	})
	if err != nil {
		writeRegistryError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, blockResponse(*b))
}

// Schedule returns the driver's blocks and absences in one response for the
// availability editor.
func (h *DriverHandler) Schedule(c *gin.Context) {
	driverID := types.ID(c.Param("id"))
	blocks, err := h.availability.Blocks(c.Request.Context(), driverID)
	if err != nil {
		writeRegistryError(c, err)
		return
	}
	absences, err := h.availability.Absences(c.Request.Context(), driverID)
	if err != nil {
		writeRegistryError(c, err)
		return
	}
	bs := make([]gin.H, 0, len(blocks))
	for _, b := range blocks {
		bs = append(bs, blockResponse(b))
	}
	as := make([]gin.H, 0, len(absences))
	for _, a := range absences {
		as = append(as, absenceResponse(a))
	}
	writeJSON(c, http.StatusOK, gin.H{"blocks": bs, "absences": as})
}

func (h *DriverHandler) DeleteBlock(c *gin.Context) {
	if err := h.availability.DeleteBlock(c.Request.Context(), types.ID(c.Param("blockID"))); err != nil {
		writeRegistryError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type absenceReq struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Reason string `json:"reason"`
}

func (h *DriverHandler) AddAbsence(c *gin.Context) {
	var req absenceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	from, err1 := time.Parse("2006-01-02", req.From)
	to, err2 := time.Parse("2006-01-02", req.To)
	if err1 != nil || err2 != nil {
		writeError(c, http.StatusBadRequest, "from and to must be YYYY-MM-DD")
		return
	}
	a, err := h.availability.AddAbsence(c.Request.Context(), availability.AbsenceCommand{
		DriverID: types.ID(c.Param("id")),
		From:     from,
		To:       to,
		Reason:   req.Reason,
	})
	if err != nil {
		writeRegistryError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, absenceResponse(*a))
}

func (h *DriverHandler) DeleteAbsence(c *gin.Context) {
	if err := h.availability.DeleteAbsence(c.Request.Context(), types.ID(c.Param("absenceID"))); err != nil {
		writeRegistryError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func driverResponse(d *driver.Driver) gin.H {
	resp := gin.H{
		"driver_id":     d.ID,
		"name":          d.Name,
		"phone":         d.Phone,
		"vehicle_type":  d.VehicleType,
		"vehicle_plate": d.VehiclePlate,
	}
	if d.UserID != nil {
		resp["user_id"] = *d.UserID
	}
	return resp
}

func blockResponse(b availability.Block) gin.H {
	return gin.H{
		"block_id": b.ID,
		"weekday":  b.Weekday,
		"start":    b.Start.String(),
		"end":      b.End.String(),
	}
}

func absenceResponse(a availability.Absence) gin.H {
	return gin.H{
		"absence_id": a.ID,
		"from":       a.From.Format("2006-01-02"),
		"to":         a.To.Format("2006-01-02"),
		"reason":     a.Reason,
	}
}
