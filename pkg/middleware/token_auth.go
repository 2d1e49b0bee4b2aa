package middleware

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"bitwise74/account-api/internal/model"
	"bitwise74/account-api/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const authenticatedUserKey = "authenticatedUser"

type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*model.User, error)
}

// TokenAuthentication resolves the bearer token of a request to its owner.
// It never rejects a request by itself; handlers that need a user check
// AuthenticatedUser and answer 403 when there is none.
func TokenAuthentication(tokens TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || token == "" {
			c.Next()
			return
		}

		user, err := tokens.Verify(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, service.ErrTokenInvalid) {
				zap.L().Error("Failed to verify bearer token", zap.Error(err), zap.String("requestID", c.GetString("requestID")))
			}

			c.Next()
			return
		}

		c.Set(authenticatedUserKey, user)
		c.Set("userID", strconv.FormatUint(uint64(user.ID), 10))
		c.Next()
	}
}

// AuthenticatedUser returns the user the request's token belongs to
func AuthenticatedUser(c *gin.Context) (*model.User, bool) {
	v, ok := c.Get(authenticatedUserKey)
	if !ok {
		return nil, false
	}

	u, ok := v.(*model.User)
	return u, ok
}

// BearerToken returns the raw token sent in the Authorization header
func BearerToken(c *gin.Context) string {
	token, _ := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	return token
}
