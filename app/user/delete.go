package user

import (
	"net/http"

	"bitwise74/account-api/internal"
	"bitwise74/account-api/pkg/httperr"
	"bitwise74/account-api/pkg/middleware"

	"github.com/gin-gonic/gin"
)

func UserDelete(c *gin.Context, d *internal.Deps) {
	id, ok := parseID(c)
	authed, authenticated := middleware.AuthenticatedUser(c)
	if !ok || !authenticated || authed.ID != id {
		c.Error(httperr.Forbidden("You are not authorized to delete user"))
		return
	}

	if err := d.Users.Delete(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusOK)
}
