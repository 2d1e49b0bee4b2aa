package middleware

import (
	"errors"
	"net/http"

	"bitwise74/account-api/pkg/httperr"

	"github.com/gin-gonic/gin"
)

const bodyTooLarge = "Request body size exceeds limit"

// BodySizeLimiter caps the request body at maxBytes. A maxBytes of 0 or less
// disables the check.
func BodySizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 {
			c.Next()
			return
		}

		// Fast reject for honest clients
		if c.Request.ContentLength > maxBytes {
			c.Error(httperr.TooLarge(bodyTooLarge))
			c.Abort()
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()

		last := c.Errors.Last()
		if last == nil {
			return
		}

		var mbe *http.MaxBytesError
		if errors.As(last.Err, &mbe) {
			c.Error(httperr.TooLarge(bodyTooLarge))
		}
	}
}
