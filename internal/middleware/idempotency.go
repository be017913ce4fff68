package middleware

import (
	"bytes"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bugsbunnee/clickride-backend/internal/redis"
)

const (
	idempotencyHeader = "Idempotency-Key"
	idempotencyTTL    = 24 * time.Hour
)

// responseWriter wraps gin.ResponseWriter to capture the response.
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// IdempotencyMiddleware replays the stored response of a mutating request
// repeated with the same Idempotency-Key. Keys are scoped to the caller
// and the route, so install it after RequireAuth.
func IdempotencyMiddleware(store redis.IdempotencyStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Only apply to mutating methods.
		if c.Request.Method != http.MethodPost && c.Request.Method != http.MethodPut && c.Request.Method != http.MethodPatch {
			c.Next()
			return
		}

		key := c.GetHeader(idempotencyHeader)
		if key == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		cacheKey := idempotencyKey(c, key)

		cached, err := store.GetResponse(ctx, cacheKey)
		if err != nil {
			// Redis error - proceed without idempotency.
			log.Printf("[IDEMPOTENCY] lookup failed, continuing: %v", err)
			c.Next()
			return
		}

		if cached != nil {
			c.Header("Idempotent-Replayed", "true")
			c.Data(cached.StatusCode, cached.ContentType, cached.Body)
			c.Abort()
			return
		}

		w := &responseWriter{
			ResponseWriter: c.Writer,
			body:           &bytes.Buffer{},
		}
		c.Writer = w

		c.Next()

		// Server errors are retried rather than replayed.
		status := c.Writer.Status()
		if status >= 200 && status < 500 {
			response := &redis.IdempotentResponse{
				StatusCode:  status,
				ContentType: c.Writer.Header().Get("Content-Type"),
				Body:        w.body.Bytes(),
			}
			if err := store.SetResponse(ctx, cacheKey, response, idempotencyTTL); err != nil {
				log.Printf("[IDEMPOTENCY] store failed: %v", err)
			}
		}
	}
}

func idempotencyKey(c *gin.Context, key string) string {
	caller := "anonymous"
	if p, ok := PrincipalFrom(c); ok {
		caller = p.UserID
	}
	return caller + ":" + c.Request.Method + ":" + c.FullPath() + ":" + key
}
