package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/geocoder89/learnhub/internal/http/middlewares"
	"github.com/geocoder89/learnhub/internal/store"
	"github.com/gin-gonic/gin"
)

type APIError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"requestId,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

// RespondError writes the shared envelope. "detail" mirrors the message so
// clients that only look at the top level still get a reason.
func RespondError(ctx *gin.Context, status int, code, message string, details interface{}) {
	ctx.JSON(status, gin.H{
		"detail": message,
		"error": APIError{
			Code:      code,
			Message:   message,
			RequestID: middlewares.RequestIDFrom(ctx),
			Details:   details,
		},
	})
}

func RespondValidation(ctx *gin.Context, message string, details interface{}) {
	RespondError(ctx, http.StatusUnprocessableEntity, "invalid_request", message, details)
}

func RespondBadRequest(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusBadRequest, code, message, nil)
}

func RespondUnauthorized(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusUnauthorized, "unauthorized", message, nil)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, "not_found", message, nil)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, "internal_error", message, nil)
}

func RespondUnavailable(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusServiceUnavailable, "store_unavailable", message, nil)
}

// RespondStoreError maps a record store failure. notFound is the message
// used when err is store.ErrNotFound.
func RespondStoreError(ctx *gin.Context, err error, notFound string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		RespondNotFound(ctx, notFound)
	case errors.Is(err, store.ErrUnavailable):
		slog.WarnContext(ctx.Request.Context(), "record store unavailable", "err", err)
		RespondUnavailable(ctx, "Record store unavailable")
	default:
		slog.ErrorContext(ctx.Request.Context(), "record store failure", "err", err)
		RespondInternal(ctx, "Internal server error")
	}
}
