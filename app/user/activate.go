package user

import (
	"net/http"

	"bitwise74/account-api/internal"

	"github.com/gin-gonic/gin"
)

func UserActivate(c *gin.Context, d *internal.Deps) {
	if err := d.Users.Activate(c.Request.Context(), c.Param("token")); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Account is activated",
	})
}
