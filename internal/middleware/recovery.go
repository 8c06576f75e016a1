package middleware

import (
	"net/http"
	"runtime/debug"

	"go-do-list/backend/internal/logging"

	"github.com/gin-gonic/gin"
)

// RecoveryWithLog turns a panic into a 500 with a generic body and logs the
// stack.
func RecoveryWithLog(log logging.Logger) gin.HandlerFunc {
	if log == nil {
		log = logging.Discard()
	}
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error(c.Request.Context(), "panic recovered",
					"panic", r,
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
					"stack", string(debug.Stack()),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			}
		}()
		c.Next()
	}
}
