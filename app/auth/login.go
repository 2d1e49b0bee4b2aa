package auth

import (
	"net/http"

	"bitwise74/account-api/internal"
	"bitwise74/account-api/pkg/httperr"

	"github.com/gin-gonic/gin"
)

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func AuthLogin(c *gin.Context, d *internal.Deps) {
	var data loginBody
	if err := c.ShouldBindJSON(&data); err != nil {
		c.Error(httperr.Wrap(http.StatusUnauthorized, "Incorrect credentials", err))
		return
	}

	if data.Email == "" || data.Password == "" {
		c.Error(httperr.Unauthorized("Incorrect credentials"))
		return
	}

	s, err := d.Users.Authenticate(c.Request.Context(), data.Email, data.Password)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, s)
}
