// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"revline/internal/modules/checklist"
	"revline/internal/modules/identity"
	"revline/internal/modules/order"
	"revline/internal/modules/vehicle"
)

type errorResponse struct {
	Error        string   `json:"error"`
	MissingItems []string `json:"missing_items,omitempty"`
	Errors       []string `json:"errors,omitempty"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// writeDomainError maps typed failures onto HTTP statuses. A checklist
// rejection carries the gate's detail so the UI can list the items.
func writeDomainError(c *gin.Context, err error) {
	var chk *order.ChecklistError
	if errors.As(err, &chk) {
		c.JSON(http.StatusConflict, errorResponse{
			Error:        chk.Error(),
			MissingItems: chk.MissingItems,
			Errors:       chk.Errors,
		})
		return
	}
	switch {
	case errors.Is(err, order.ErrNotFound),
		errors.Is(err, vehicle.ErrNotFound),
		errors.Is(err, checklist.ErrNotFound),
		errors.Is(err, identity.ErrUserNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, order.ErrForbidden):
		writeError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, order.ErrAlreadyAssigned),
		errors.Is(err, order.ErrInvalidTransition),
		errors.Is(err, order.ErrConflict):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, order.ErrValidation),
		errors.Is(err, vehicle.ErrBadRequest),
		errors.Is(err, checklist.ErrBadRequest),
		errors.Is(err, identity.ErrBadRequest):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, identity.ErrInvalidCredentials),
		errors.Is(err, identity.ErrUserInactive):
		writeError(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, identity.ErrUserExists):
		writeError(c, http.StatusConflict, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
