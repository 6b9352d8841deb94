package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/BenJLiuu/microsoftteamsbackend-sub000/internal/auth"
	"github.com/BenJLiuu/microsoftteamsbackend-sub000/internal/models"
	"github.com/BenJLiuu/microsoftteamsbackend-sub000/internal/service"
)

// AdminHandler handles global-owner endpoints.
type AdminHandler struct {
	service *service.AdminService
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(svc *service.AdminService) *AdminHandler {
	return &AdminHandler{service: svc}
}

type setPermissionRequest struct {
	PermissionID models.PermissionLevel `json:"permission_id"`
}

// SetPermission handles PUT /api/v1/admin/users/:id/permission.
func (h *AdminHandler) SetPermission(c echo.Context) error {
	targetID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid user ID")
	}
	var req setPermissionRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	if err := h.service.SetGlobalPermission(c.Request().Context(), auth.GetUserID(c), targetID, req.PermissionID); err != nil {
		return mapServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// RemoveUser handles DELETE /api/v1/admin/users/:id.
func (h *AdminHandler) RemoveUser(c echo.Context) error {
	targetID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid user ID")
	}

	if err := h.service.RemoveUser(c.Request().Context(), auth.GetUserID(c), targetID); err != nil {
		return mapServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
