package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/geocoder89/learnhub/internal/gateway"
	"github.com/geocoder89/learnhub/internal/health"
	"github.com/gin-gonic/gin"
)

type Forwarder interface {
	Forward(ctx context.Context, service string, req gateway.Request) (*gateway.Response, error)
}

type HealthChecker interface {
	CheckAll(ctx context.Context) map[string]health.Result
}

type GatewayHandler struct {
	services []string
	fwd      Forwarder
	checker  HealthChecker
}

func NewGatewayHandler(services []string, fwd Forwarder, checker HealthChecker) *GatewayHandler {
	return &GatewayHandler{services: services, fwd: fwd, checker: checker}
}

func (h *GatewayHandler) Index(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"services": h.services,
		"message":  "Swagger UI Gateway running",
	})
}

// ServicesHealth is always 200; each entry carries its own status.
func (h *GatewayHandler) ServicesHealth(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, h.checker.CheckAll(ctx.Request.Context()))
}

// Proxy relays the request to service unchanged and answers with the
// collaborator's status and body.
func (h *GatewayHandler) Proxy(service string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		req := gateway.Request{
			Method:   ctx.Request.Method,
			Path:     ctx.Request.URL.Path,
			RawQuery: ctx.Request.URL.RawQuery,
			Header:   ctx.Request.Header,
		}

		if isMultipart(ctx.GetHeader("Content-Type")) {
			form, err := ctx.MultipartForm()
			if err != nil {
				respondUnreadable(ctx, "Invalid multipart body", err)
				return
			}
			req.Form = form
		} else if ctx.Request.Body != nil {
			body, err := io.ReadAll(ctx.Request.Body)
			if err != nil {
				respondUnreadable(ctx, "Could not read request body", err)
				return
			}
			req.Body = body
		}

		resp, err := h.fwd.Forward(ctx.Request.Context(), service, req)

		var unavailable *gateway.UnavailableError
		if errors.As(err, &unavailable) {
			slog.WarnContext(ctx.Request.Context(), "collaborator unreachable",
				"service", service,
				"path", req.Path,
				"err", unavailable.Err,
			)
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"detail": unavailable.Error()})
			return
		}
		if err != nil {
			RespondValidation(ctx, "Invalid upload", gin.H{"reason": err.Error()})
			return
		}

		for key, values := range resp.Header {
			for _, v := range values {
				ctx.Writer.Header().Add(key, v)
			}
		}
		ctx.Status(resp.Status)
		if len(resp.Body) > 0 {
			_, _ = ctx.Writer.Write(resp.Body)
		}
	}
}

// respondUnreadable answers 413 when the body ran past the size cap and
// 422 for any other unreadable body.
func respondUnreadable(ctx *gin.Context, message string, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		RespondError(ctx, http.StatusRequestEntityTooLarge, "body_too_large", "Request body too large", gin.H{"limit": tooLarge.Limit})
		return
	}
	RespondValidation(ctx, message, gin.H{"reason": err.Error()})
}

func isMultipart(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(contentType), "multipart/form-data")
}
