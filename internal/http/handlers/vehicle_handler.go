// README: Vehicle and vehicle-type handlers.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"revline/internal/http/middleware"
	"revline/internal/modules/identity"
	"revline/internal/modules/vehicle"
	"revline/internal/types"
)

type VehicleHandler struct {
	vehicle *vehicle.Service
}

func NewVehicleHandler(svc *vehicle.Service) *VehicleHandler {
	return &VehicleHandler{vehicle: svc}
}

type createVehicleReq struct {
	ClientID string `json:"client_id"`
	TypeID   string `json:"type_id"`
	Plate    string `json:"plate"`
	Make     string `json:"make"`
	Model    string `json:"model"`
	Year     int    `json:"year"`
}

func (h *VehicleHandler) Create(c *gin.Context) {
	var req createVehicleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	clientID := types.ID(req.ClientID)
	if middleware.CallerRole(c) == identity.RoleClient {
		clientID = middleware.CallerID(c)
	}
	v, err := h.vehicle.Create(c.Request.Context(), vehicle.CreateCommand{
		ClientID: clientID,
		TypeID:   types.ID(req.TypeID),
		Plate:    req.Plate,
		Make:     req.Make,
		Model:    req.Model,
		Year:     req.Year,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, vehicleView(v))
}

func (h *VehicleHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	var (
		vs  []*vehicle.Vehicle
		err error
	)
	if middleware.CallerRole(c).IsAdmin() {
		vs, err = h.vehicle.ListAll(ctx)
	} else {
		vs, err = h.vehicle.ListByClient(ctx, middleware.CallerID(c))
	}
	if err != nil {
		writeDomainError(c, err)
		return
	}
	views := make([]gin.H, len(vs))
	for i, v := range vs {
		views[i] = vehicleView(v)
	}
	writeJSON(c, http.StatusOK, gin.H{"vehicles": views})
}

type createTypeReq struct {
	Name string `json:"name"`
}

func (h *VehicleHandler) CreateType(c *gin.Context) {
	var req createTypeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	t, err := h.vehicle.CreateType(c.Request.Context(), req.Name)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, gin.H{"id": t.ID, "name": t.Name})
}

func vehicleView(v *vehicle.Vehicle) gin.H {
	return gin.H{
		"id":        v.ID,
		"client_id": v.ClientID,
		"type_id":   v.TypeID,
		"plate":     v.Plate,
		"make":      v.Make,
		"model":     v.Model,
		"year":      v.Year,
	}
}
