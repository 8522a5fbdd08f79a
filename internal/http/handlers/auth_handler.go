// README: Registration and login handlers.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"revline/internal/modules/identity"
)

type AuthHandler struct {
	identity *identity.Service
}

func NewAuthHandler(svc *identity.Service) *AuthHandler {
	return &AuthHandler{identity: svc}
}

type registerReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	// Self-service registration is limited to clients and operators;
	// admin accounts are provisioned out-of-band.
	role := identity.Role(req.Role)
	if role != "" && role != identity.RoleClient && role != identity.RoleOperator {
		writeError(c, http.StatusForbidden, "cannot self-register with this role")
		return
	}
	u, err := h.identity.Register(c.Request.Context(), identity.RegisterCommand{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     role,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, gin.H{
		"user_id":  u.ID,
		"username": u.Username,
		"role":     u.Role,
	})
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	token, u, err := h.identity.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{
		"token":   token,
		"user_id": u.ID,
		"role":    u.Role,
	})
}
