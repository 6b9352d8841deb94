package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/BenJLiuu/microsoftteamsbackend-sub000/internal/service"
)

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error code and message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error sends a JSON error response.
func Error(c echo.Context, status int, code, message string) error {
	return c.JSON(status, ErrorResponse{
		Error: ErrorDetail{Code: code, Message: message},
	})
}

// successJSON sends a JSON success response with a data envelope.
func successJSON(c echo.Context, status int, data any) error {
	return c.JSON(status, map[string]any{"data": data})
}

// statusFor maps a service error class to an HTTP status. Anything that is
// neither an authorization nor an infrastructure failure is a bad request.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrInternal):
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// mapServiceError writes the error envelope for err.
func mapServiceError(c echo.Context, err error) error {
	var se *service.ServiceError
	if errors.As(err, &se) {
		return Error(c, statusFor(se), se.Code, se.Message)
	}
	c.Logger().Error(err)
	return Error(c, http.StatusInternalServerError, "INTERNAL", "internal server error")
}
