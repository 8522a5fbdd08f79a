// README: Checklist handlers: templates, per-order rows, validation,
// completion.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"revline/internal/http/middleware"
	"revline/internal/modules/checklist"
	"revline/internal/modules/order"
	"revline/internal/types"
)

type ChecklistHandler struct {
	checklist *checklist.Service
	order     *order.Service
}

func NewChecklistHandler(chk *checklist.Service, ord *order.Service) *ChecklistHandler {
	return &ChecklistHandler{checklist: chk, order: ord}
}

type createItemReq struct {
	VehicleTypeID string `json:"vehicle_type_id"`
	Name          string `json:"name"`
	Category      string `json:"category"`
	SortOrder     int    `json:"sort_order"`
	IsRequired    bool   `json:"is_required"`
}

func (h *ChecklistHandler) CreateItem(c *gin.Context) {
	var req createItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	it, err := h.checklist.CreateItem(c.Request.Context(), checklist.CreateItemCommand{
		VehicleTypeID: types.ID(req.VehicleTypeID),
		Name:          req.Name,
		Category:      req.Category,
		SortOrder:     req.SortOrder,
		IsRequired:    req.IsRequired,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, gin.H{"id": it.ID, "name": it.Name})
}

// Rows returns the order's checklist rows, visibility-checked through the
// order service.
func (h *ChecklistHandler) Rows(c *gin.Context) {
	orderID := types.ID(c.Param("id"))
	if _, err := h.order.Get(c.Request.Context(), caller(c), orderID); err != nil {
		writeDomainError(c, err)
		return
	}
	rows, err := h.checklist.RowsForOrder(c.Request.Context(), orderID)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	views := make([]gin.H, len(rows))
	for i, r := range rows {
		views[i] = gin.H{
			"item_id":      r.ItemID,
			"is_completed": r.IsCompleted,
			"completed_by": r.CompletedBy,
			"completed_at": r.CompletedAt,
			"notes":        r.Notes,
		}
	}
	writeJSON(c, http.StatusOK, gin.H{"checklist": views})
}

func (h *ChecklistHandler) Validate(c *gin.Context) {
	res, err := h.checklist.Validate(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, res)
}

type completeItemReq struct {
	Notes string `json:"notes"`
}

func (h *ChecklistHandler) CompleteItem(c *gin.Context) {
	var req completeItemReq
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	err := h.checklist.CompleteItem(c.Request.Context(),
		types.ID(c.Param("id")), types.ID(c.Param("itemID")),
		middleware.CallerID(c), req.Notes)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"completed": true})
}
