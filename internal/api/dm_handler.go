package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/BenJLiuu/microsoftteamsbackend-sub000/internal/auth"
	"github.com/BenJLiuu/microsoftteamsbackend-sub000/internal/service"
)

// DMHandler handles direct-message endpoints.
type DMHandler struct {
	service *service.DMService
}

// NewDMHandler creates a DMHandler.
func NewDMHandler(svc *service.DMService) *DMHandler {
	return &DMHandler{service: svc}
}

type createDMRequest struct {
	UserIDs []int64 `json:"u_ids"`
}

// CreateDM handles POST /api/v1/dms.
func (h *DMHandler) CreateDM(c echo.Context) error {
	var req createDMRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	dm, err := h.service.CreateDM(c.Request().Context(), auth.GetUserID(c), req.UserIDs)
	if err != nil {
		return mapServiceError(c, err)
	}
	return successJSON(c, http.StatusCreated, dm)
}

// ListDMs handles GET /api/v1/dms.
func (h *DMHandler) ListDMs(c echo.Context) error {
	dms, err := h.service.ListDMs(c.Request().Context(), auth.GetUserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return successJSON(c, http.StatusOK, dms)
}

// GetDM handles GET /api/v1/dms/:id.
func (h *DMHandler) GetDM(c echo.Context) error {
	dmID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid DM ID")
	}

	details, err := h.service.DMDetails(c.Request().Context(), auth.GetUserID(c), dmID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return successJSON(c, http.StatusOK, details)
}

// LeaveDM handles POST /api/v1/dms/:id/leave.
func (h *DMHandler) LeaveDM(c echo.Context) error {
	dmID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid DM ID")
	}

	if err := h.service.LeaveDM(c.Request().Context(), auth.GetUserID(c), dmID); err != nil {
		return mapServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// RemoveDM handles DELETE /api/v1/dms/:id.
func (h *DMHandler) RemoveDM(c echo.Context) error {
	dmID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid DM ID")
	}

	if err := h.service.RemoveDM(c.Request().Context(), auth.GetUserID(c), dmID); err != nil {
		return mapServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
