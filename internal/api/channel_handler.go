package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/BenJLiuu/microsoftteamsbackend-sub000/internal/auth"
	"github.com/BenJLiuu/microsoftteamsbackend-sub000/internal/service"
)

// ChannelHandler handles channel and channel membership endpoints.
type ChannelHandler struct {
	service *service.ChannelService
}

// NewChannelHandler creates a ChannelHandler.
func NewChannelHandler(svc *service.ChannelService) *ChannelHandler {
	return &ChannelHandler{service: svc}
}

type createChannelRequest struct {
	Name     string `json:"name"`
	IsPublic bool   `json:"is_public"`
}

// CreateChannel handles POST /api/v1/channels.
func (h *ChannelHandler) CreateChannel(c echo.Context) error {
	var req createChannelRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	ch, err := h.service.CreateChannel(c.Request().Context(), auth.GetUserID(c), req.Name, req.IsPublic)
	if err != nil {
		return mapServiceError(c, err)
	}
	return successJSON(c, http.StatusCreated, ch)
}

// ListChannels handles GET /api/v1/channels.
func (h *ChannelHandler) ListChannels(c echo.Context) error {
	channels, err := h.service.ListChannels(c.Request().Context(), auth.GetUserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return successJSON(c, http.StatusOK, channels)
}

// ListAllChannels handles GET /api/v1/channels/all.
func (h *ChannelHandler) ListAllChannels(c echo.Context) error {
	channels, err := h.service.ListAllChannels(c.Request().Context(), auth.GetUserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return successJSON(c, http.StatusOK, channels)
}

// GetChannel handles GET /api/v1/channels/:id.
func (h *ChannelHandler) GetChannel(c echo.Context) error {
	channelID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid channel ID")
	}

	details, err := h.service.ChannelDetails(c.Request().Context(), auth.GetUserID(c), channelID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return successJSON(c, http.StatusOK, details)
}

// JoinChannel handles POST /api/v1/channels/:id/join.
func (h *ChannelHandler) JoinChannel(c echo.Context) error {
	channelID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid channel ID")
	}

	if err := h.service.JoinChannel(c.Request().Context(), auth.GetUserID(c), channelID); err != nil {
		return mapServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// LeaveChannel handles POST /api/v1/channels/:id/leave.
func (h *ChannelHandler) LeaveChannel(c echo.Context) error {
	channelID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid channel ID")
	}

	if err := h.service.LeaveChannel(c.Request().Context(), auth.GetUserID(c), channelID); err != nil {
		return mapServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type targetRequest struct {
	UserID int64 `json:"u_id"`
}

// InviteToChannel handles POST /api/v1/channels/:id/invite.
func (h *ChannelHandler) InviteToChannel(c echo.Context) error {
	channelID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid channel ID")
	}
	var req targetRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	if err := h.service.InviteToChannel(c.Request().Context(), auth.GetUserID(c), channelID, req.UserID); err != nil {
		return mapServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// AddOwner handles POST /api/v1/channels/:id/owners.
func (h *ChannelHandler) AddOwner(c echo.Context) error {
	channelID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid channel ID")
	}
	var req targetRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	if err := h.service.AddChannelOwner(c.Request().Context(), auth.GetUserID(c), channelID, req.UserID); err != nil {
		return mapServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// RemoveOwner handles DELETE /api/v1/channels/:id/owners/:user_id.
func (h *ChannelHandler) RemoveOwner(c echo.Context) error {
	channelID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid channel ID")
	}
	targetID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid user ID")
	}

	if err := h.service.RemoveChannelOwner(c.Request().Context(), auth.GetUserID(c), channelID, targetID); err != nil {
		return mapServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
