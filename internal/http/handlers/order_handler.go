// README: Service order handlers: list, get, create, take, release, status,
// history.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"revline/internal/http/middleware"
	"revline/internal/modules/identity"
	"revline/internal/modules/order"
	"revline/internal/types"
)

type OrderHandler struct {
	order *order.Service
}

func NewOrderHandler(svc *order.Service) *OrderHandler {
	return &OrderHandler{order: svc}
}

func caller(c *gin.Context) order.Caller {
	return order.Caller{ID: middleware.CallerID(c), Role: middleware.CallerRole(c)}
}

func orderView(o *order.ServiceOrder) gin.H {
	return gin.H{
		"id":              o.ID,
		"order_number":    o.OrderNumber,
		"client_id":       o.ClientID,
		"vehicle_id":      o.VehicleID,
		"operator_id":     o.OperatorID,
		"taken_by":        o.TakenBy,
		"taken_at":        o.TakenAt,
		"status":          o.Status,
		"priority":        o.Priority,
		"description":     o.Description,
		"estimated_cost":  o.EstimatedCost,
		"final_cost":      o.FinalCost,
		"created_at":      o.CreatedAt,
		"start_date":      o.StartDate,
		"completion_date": o.CompletionDate,
	}
}

func (h *OrderHandler) List(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(c, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	orders, err := h.order.List(c.Request.Context(), caller(c), c.Query("status"), limit)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	views := make([]gin.H, len(orders))
	for i, o := range orders {
		views[i] = orderView(o)
	}
	writeJSON(c, http.StatusOK, gin.H{"orders": views})
}

func (h *OrderHandler) Get(c *gin.Context) {
	o, err := h.order.Get(c.Request.Context(), caller(c), types.ID(c.Param("id")))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, orderView(o))
}

type createOrderReq struct {
	ClientID      string       `json:"client_id"`
	VehicleID     string       `json:"vehicle_id"`
	Description   string       `json:"description"`
	Priority      string       `json:"priority"`
	EstimatedCost *types.Money `json:"estimated_cost"`
}

func (h *OrderHandler) Create(c *gin.Context) {
	var req createOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	cl := caller(c)
	clientID := types.ID(req.ClientID)
	// Client self-service always creates for the caller's own account.
	if cl.Role == identity.RoleClient {
		clientID = cl.ID
	}
	o, err := h.order.Create(c.Request.Context(), order.CreateCommand{
		ClientID:      clientID,
		VehicleID:     types.ID(req.VehicleID),
		Description:   req.Description,
		Priority:      order.Priority(req.Priority),
		EstimatedCost: req.EstimatedCost,
		CreatedBy:     cl.ID,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, orderView(o))
}

func (h *OrderHandler) Take(c *gin.Context) {
	err := h.order.Take(c.Request.Context(), types.ID(c.Param("id")), middleware.CallerID(c))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": order.StatusInProgress})
}

type releaseReq struct {
	Notes string `json:"notes"`
}

func (h *OrderHandler) Release(c *gin.Context) {
	var req releaseReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	err := h.order.Release(c.Request.Context(), types.ID(c.Param("id")), middleware.CallerID(c), req.Notes)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": order.StatusPending})
}

type changeStatusReq struct {
	Status    string       `json:"status"`
	Notes     string       `json:"notes"`
	FinalCost *types.Money `json:"final_cost"`
}

func (h *OrderHandler) ChangeStatus(c *gin.Context) {
	var req changeStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	err := h.order.ChangeStatus(c.Request.Context(), order.ChangeStatusCommand{
		OrderID:   types.ID(c.Param("id")),
		NewStatus: order.Status(req.Status),
		CallerID:  middleware.CallerID(c),
		Notes:     req.Notes,
		FinalCost: req.FinalCost,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": req.Status})
}

func (h *OrderHandler) History(c *gin.Context) {
	entries, err := h.order.History(c.Request.Context(), caller(c), types.ID(c.Param("id")))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	views := make([]gin.H, len(entries))
	for i, e := range entries {
		views[i] = gin.H{
			"previous_status": e.PreviousStatus,
			"new_status":      e.NewStatus,
			"changed_by":      e.ChangedBy,
			"changed_at":      e.ChangedAt,
			"notes":           e.Notes,
			"operator_action": e.OperatorAction,
		}
	}
	writeJSON(c, http.StatusOK, gin.H{"history": views})
}
