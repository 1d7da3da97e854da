package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"intelliq/internal/apperr"
	"intelliq/internal/db"
)

type createUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// CreateUser handles POST /api/user. A duplicate email is a 400, detected by
// the store's unique constraint.
func (h *Handler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperr.Wrap(apperr.Validation, "invalid request body", err))
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		h.respondError(c, apperr.New(apperr.Validation, "email is required"))
		return
	}

	user, err := h.Store.CreateUser(c.Request.Context(), db.CreateUserParams{
		Name:  req.Name,
		Email: req.Email,
		Role:  req.Role,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.Log.Info("user registered", "email", user.Email, "role", user.Role)
	c.JSON(http.StatusCreated, user)
}

// GetUserByEmail handles GET /api/user/:email.
func (h *Handler) GetUserByEmail(c *gin.Context) {
	user, err := h.Store.GetUserByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

type updateUserRequest struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// UpdateUserByEmail handles PUT /api/user/:email. Only name and role are
// mutable.
func (h *Handler) UpdateUserByEmail(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperr.Wrap(apperr.Validation, "invalid request body", err))
		return
	}

	user, err := h.Store.UpdateUserByEmail(c.Request.Context(), db.UpdateUserParams{
		Email: c.Param("email"),
		Name:  req.Name,
		Role:  req.Role,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
