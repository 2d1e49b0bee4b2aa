package password

import (
	"net/http"

	"bitwise74/account-api/internal"
	"bitwise74/account-api/pkg/httperr"

	"github.com/gin-gonic/gin"
)

type resetBody struct {
	PasswordResetToken string `json:"passwordResetToken"`
	Password           string `json:"password"`
}

func PasswordReset(c *gin.Context, d *internal.Deps) {
	var data resetBody
	if err := c.ShouldBindJSON(&data); err != nil {
		c.Error(httperr.Wrap(http.StatusBadRequest, "Invalid request body", err))
		return
	}

	if err := d.Users.ResetPassword(c.Request.Context(), data.PasswordResetToken, data.Password); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Password updated",
	})
}
