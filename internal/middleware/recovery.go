package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"coinpulse/internal/domain/dto"
	"coinpulse/internal/logger"
)

// RecoveryMiddleware catches panics in the handler chain, logs the stack
// trace and answers with the standard error envelope.
func RecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.L().Error().
					Str("panic", fmt.Sprintf("%v", r)).
					Bytes("stack", debug.Stack()).
					Msg("panic recovered")

				c.AbortWithStatusJSON(http.StatusInternalServerError,
					dto.NewErrorResponse("internal server error", fmt.Errorf("%v", r)))
			}
		}()

		c.Next()
	}
}
