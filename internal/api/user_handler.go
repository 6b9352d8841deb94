package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/BenJLiuu/microsoftteamsbackend-sub000/internal/auth"
	"github.com/BenJLiuu/microsoftteamsbackend-sub000/internal/service"
)

// UserHandler handles user profile endpoints.
type UserHandler struct {
	service *service.UserService
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{service: svc}
}

// ListUsers handles GET /api/v1/users.
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.service.ListUsers(c.Request().Context(), auth.GetUserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return successJSON(c, http.StatusOK, users)
}

// GetUser handles GET /api/v1/users/:id.
func (h *UserHandler) GetUser(c echo.Context) error {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid user ID")
	}

	user, err := h.service.Profile(c.Request().Context(), auth.GetUserID(c), userID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return successJSON(c, http.StatusOK, user)
}

type setNameRequest struct {
	NameFirst string `json:"name_first"`
	NameLast  string `json:"name_last"`
}

// SetName handles PUT /api/v1/users/@me/name.
func (h *UserHandler) SetName(c echo.Context) error {
	var req setNameRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}
	if err := h.service.SetName(c.Request().Context(), auth.GetUserID(c), req.NameFirst, req.NameLast); err != nil {
		return mapServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type setEmailRequest struct {
	Email string `json:"email"`
}

// SetEmail handles PUT /api/v1/users/@me/email.
func (h *UserHandler) SetEmail(c echo.Context) error {
	var req setEmailRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}
	if err := h.service.SetEmail(c.Request().Context(), auth.GetUserID(c), req.Email); err != nil {
		return mapServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type setHandleRequest struct {
	Handle string `json:"handle_str"`
}

// SetHandle handles PUT /api/v1/users/@me/handle.
func (h *UserHandler) SetHandle(c echo.Context) error {
	var req setHandleRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}
	if err := h.service.SetHandle(c.Request().Context(), auth.GetUserID(c), req.Handle); err != nil {
		return mapServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
