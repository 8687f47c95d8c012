package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/gangland/server/internal/domain/engine"
)

// APIResponse is the envelope of every JSON response.
type APIResponse struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message,omitempty"`
	Data       any             `json:"data,omitempty"`
	Error      *APIError       `json:"error,omitempty"`
	Pagination *PaginationInfo `json:"pagination,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
}

type APIError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

type PaginationInfo struct {
	Offset  int  `json:"offset"`
	Limit   int  `json:"limit"`
	Total   int  `json:"total"`
	HasNext bool `json:"has_next"`
}

func SendSuccess(c *fiber.Ctx, data any, message string) error {
	return c.Status(http.StatusOK).JSON(APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
}

func SendCreated(c *fiber.Ctx, data any, message string) error {
	return c.Status(http.StatusCreated).JSON(APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
}

func SendPaginated(c *fiber.Ctx, data any, page PaginationInfo) error {
	return c.Status(http.StatusOK).JSON(APIResponse{
		Success:    true,
		Data:       data,
		Pagination: &page,
		Timestamp:  time.Now().UTC(),
	})
}

func SendError(c *fiber.Ctx, status int, code, message string, details map[string]string) error {
	return c.Status(status).JSON(APIResponse{
		Success:   false,
		Error:     &APIError{Code: code, Message: message, Details: details},
		Timestamp: time.Now().UTC(),
	})
}

func SendBadRequest(c *fiber.Ctx, message string) error {
	return SendError(c, http.StatusBadRequest, "BAD_REQUEST", message, nil)
}

func SendUnauthorized(c *fiber.Ctx, message string) error {
	return SendError(c, http.StatusUnauthorized, "UNAUTHORIZED", message, nil)
}

// SendGameError maps engine rejections to their HTTP status. Anything else is
// an internal failure and is logged, not shown.
func SendGameError(c *fiber.Ctx, err error) error {
	var ge *engine.Error
	if !errors.As(err, &ge) {
		slog.Error("Request failed",
			slog.String("type", "api"),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("error", err.Error()))
		return SendError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Something went wrong", nil)
	}

	var details map[string]string
	if ge.Remaining > 0 {
		details = map[string]string{
			"remaining_seconds": strconv.FormatInt(int64(ge.Remaining.Round(time.Second)/time.Second), 10),
		}
	}
	switch ge.Kind {
	case engine.KindValidation:
		return SendError(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", ge.Reason, details)
	case engine.KindNotFound:
		return SendError(c, http.StatusNotFound, "NOT_FOUND", ge.Reason, details)
	case engine.KindPrecondition:
		return SendError(c, http.StatusForbidden, "PRECONDITION_FAILED", ge.Reason, details)
	case engine.KindConflict:
		return SendError(c, http.StatusConflict, "CONFLICT", ge.Reason, details)
	}
	return SendError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", ge.Reason, details)
}

// clientIP prefers proxy headers over the socket address.
func clientIP(c *fiber.Ctx) string {
	if xff := c.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := c.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return c.IP()
}
