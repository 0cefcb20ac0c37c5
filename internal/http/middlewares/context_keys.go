package middlewares

import "github.com/gin-gonic/gin"

// gin context keys set by this package
const (
	CtxRequestID = "request_id"
	CtxUserID    = "auth.userID"
)

func RequestIDFrom(ctx *gin.Context) string {
	if id := ctx.GetString(CtxRequestID); id != "" {
		return id
	}

	// fallback header
	return ctx.GetHeader(requestIDHeader)
}

func UserIDFromContext(ctx *gin.Context) (string, bool) {
	id := ctx.GetString(CtxUserID)
	return id, id != ""
}
