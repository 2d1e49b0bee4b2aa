package user

import (
	"net/http"
	"strconv"

	"bitwise74/account-api/internal"
	"bitwise74/account-api/pkg/httperr"

	"github.com/gin-gonic/gin"
)

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}

	return uint(id), true
}

func UserFetch(c *gin.Context, d *internal.Deps) {
	id, ok := parseID(c)
	if !ok {
		c.Error(httperr.NotFound("User not found"))
		return
	}

	u, err := d.Users.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, u.View())
}
