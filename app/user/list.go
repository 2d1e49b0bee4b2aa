package user

import (
	"net/http"

	"bitwise74/account-api/internal"
	"bitwise74/account-api/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// UserList returns a page of active users. The caller, if authenticated,
// isn't part of the listing.
func UserList(c *gin.Context, d *internal.Deps) {
	p := middleware.GetPagination(c)

	var exclude uint
	if u, ok := middleware.AuthenticatedUser(c); ok {
		exclude = u.ID
	}

	page, err := d.Users.List(c.Request.Context(), p.Page, p.Size, exclude)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, page)
}
