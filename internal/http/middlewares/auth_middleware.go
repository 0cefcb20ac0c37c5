package middlewares

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// TokenResolver maps a bearer token to a user id.
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (string, error)
}

type AuthMiddleware struct {
	tokens     TokenResolver
	isRejected func(error) bool
}

// NewAuthMiddleware treats errors for which isRejected reports true as a
// bad token (401); anything else is a backend failure (503).
func NewAuthMiddleware(tokens TokenResolver, isRejected func(error) bool) *AuthMiddleware {
	if isRejected == nil {
		isRejected = func(error) bool { return true }
	}
	return &AuthMiddleware{tokens: tokens, isRejected: isRejected}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abort(c, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
			return
		}

		userID, err := m.tokens.Resolve(c.Request.Context(), raw)
		switch {
		case err == nil:
		case m.isRejected(err):
			abort(c, http.StatusUnauthorized, "unauthorized", "Invalid or unknown access token")
			return
		default:
			slog.WarnContext(c.Request.Context(), "token lookup failed", "err", err)
			abort(c, http.StatusServiceUnavailable, "store_unavailable", "Token store unavailable")
			return
		}

		c.Set(CtxUserID, userID)

		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}

	raw := strings.TrimSpace(header[len(prefix):])
	return raw, raw != ""
}

func abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"detail": message,
		"error": gin.H{
			"code":      code,
			"message":   message,
			"requestId": RequestIDFrom(c),
		},
	})
}
