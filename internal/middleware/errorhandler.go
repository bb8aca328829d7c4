package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"coinpulse/internal/domain/dto"
)

// ErrorHandler turns errors attached to the context via c.Error into the
// standard envelope once the chain finishes, for handlers that record
// failures without writing a response themselves.
var ErrorHandler gin.HandlerFunc = func(c *gin.Context) {
	c.Next()

	if len(c.Errors) == 0 || c.Writer.Written() {
		return
	}
	c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("internal server error", c.Errors.Last().Err))
}

// AbortWithError records the error on the context and aborts with the
// standard envelope at the given status.
func AbortWithError(c *gin.Context, status int, message string, err error) {
	resp := dto.NewErrorResponse(message, err)
	_ = c.Error(resp)
	c.AbortWithStatusJSON(status, resp)
}
