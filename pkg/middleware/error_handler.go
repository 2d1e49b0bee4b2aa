package middleware

import (
	"time"

	"bitwise74/account-api/pkg/httperr"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Path             string            `json:"path"`
	Timestamp        int64             `json:"timestamp"`
	Message          string            `json:"message"`
	ValidationErrors map[string]string `json:"validationErrors,omitempty"`
}

// ErrorHandler renders the last error pushed with c.Error once the rest of
// the chain is done. Errors that aren't *httperr.Error become a 500.
// Responses that were already written are left alone.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil || c.Writer.Written() {
			return
		}

		requestID := c.GetString("requestID")

		e, ok := httperr.As(last.Err)
		if !ok {
			e = httperr.Internal(last.Err)
		}

		if e.Status >= 500 {
			zap.L().Error("Request failed",
				zap.Error(last.Err),
				zap.Int("status", e.Status),
				zap.String("path", c.Request.URL.Path),
				zap.String("requestID", requestID),
			)
		}

		c.JSON(e.Status, ErrorResponse{
			Path:             c.Request.URL.Path,
			Timestamp:        time.Now().UnixMilli(),
			Message:          e.Message,
			ValidationErrors: e.ValidationErrors,
		})
	}
}
