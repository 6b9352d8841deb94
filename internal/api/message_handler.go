package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/BenJLiuu/microsoftteamsbackend-sub000/internal/auth"
	"github.com/BenJLiuu/microsoftteamsbackend-sub000/internal/models"
	"github.com/BenJLiuu/microsoftteamsbackend-sub000/internal/service"
)

// MessageHandler handles message endpoints for channels and DMs.
type MessageHandler struct {
	service *service.MessageService
}

// NewMessageHandler creates a MessageHandler.
func NewMessageHandler(svc *service.MessageService) *MessageHandler {
	return &MessageHandler{service: svc}
}

type sendMessageRequest struct {
	Message string `json:"message"`
}

type sendMessageResponse struct {
	MessageID int64 `json:"message_id"`
}

// SendChannelMessage handles POST /api/v1/channels/:id/messages.
func (h *MessageHandler) SendChannelMessage(c echo.Context) error {
	return h.send(c, "invalid channel ID", h.service.SendChannelMessage)
}

// SendDMMessage handles POST /api/v1/dms/:id/messages.
func (h *MessageHandler) SendDMMessage(c echo.Context) error {
	return h.send(c, "invalid DM ID", h.service.SendDMMessage)
}

func (h *MessageHandler) send(c echo.Context, badID string,
	fn func(ctx context.Context, callerID, convID int64, content string) (int64, error)) error {
	convID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_ID", badID)
	}
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	id, err := fn(c.Request().Context(), auth.GetUserID(c), convID, req.Message)
	if err != nil {
		return mapServiceError(c, err)
	}
	return successJSON(c, http.StatusCreated, sendMessageResponse{MessageID: id})
}

// GetChannelMessages handles GET /api/v1/channels/:id/messages?start=N.
func (h *MessageHandler) GetChannelMessages(c echo.Context) error {
	return h.list(c, "invalid channel ID", h.service.ChannelMessages)
}

// GetDMMessages handles GET /api/v1/dms/:id/messages?start=N.
func (h *MessageHandler) GetDMMessages(c echo.Context) error {
	return h.list(c, "invalid DM ID", h.service.DMMessages)
}

func (h *MessageHandler) list(c echo.Context, badID string,
	fn func(ctx context.Context, callerID, convID int64, start int) (*models.MessagePage, error)) error {
	convID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_ID", badID)
	}
	start := 0
	if s := c.QueryParam("start"); s != "" {
		start, err = strconv.Atoi(s)
		if err != nil {
			return Error(c, http.StatusBadRequest, "INVALID_START", "start must be an integer")
		}
	}

	page, err := fn(c.Request().Context(), auth.GetUserID(c), convID, start)
	if err != nil {
		return mapServiceError(c, err)
	}
	return successJSON(c, http.StatusOK, page)
}

// EditMessage handles PATCH /api/v1/messages/:id.
func (h *MessageHandler) EditMessage(c echo.Context) error {
	messageID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid message ID")
	}
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	if err := h.service.EditMessage(c.Request().Context(), auth.GetUserID(c), messageID, req.Message); err != nil {
		return mapServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteMessage handles DELETE /api/v1/messages/:id.
func (h *MessageHandler) DeleteMessage(c echo.Context) error {
	messageID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid message ID")
	}

	if err := h.service.RemoveMessage(c.Request().Context(), auth.GetUserID(c), messageID); err != nil {
		return mapServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
