package auth

import (
	"net/http"

	"bitwise74/account-api/internal"
	"bitwise74/account-api/pkg/middleware"

	"github.com/gin-gonic/gin"
)

func AuthLogout(c *gin.Context, d *internal.Deps) {
	if err := d.Users.Logout(c.Request.Context(), middleware.BearerToken(c)); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusOK)
}
