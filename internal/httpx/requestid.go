package httpx

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/kubelearn/internal/common"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ctxKey string

const requestIDKey ctxKey = "requestID"

const maxRequestIDLength = 128

// RequestID reuses an incoming X-Request-Id or mints a new one, echoes it in
// the response and stores it in the request context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(common.HeaderRequestID)
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.NewString()
		}

		c.Header(common.HeaderRequestID, id)
		c.Request = c.Request.WithContext(WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the request id or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// PropagateRequestID copies the request id of ctx onto an outgoing request.
func PropagateRequestID(ctx context.Context, h http.Header) {
	if id := RequestIDFromContext(ctx); id != "" {
		h.Set(common.HeaderRequestID, id)
	}
}
