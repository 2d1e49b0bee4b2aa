package password

import (
	"net/http"

	"bitwise74/account-api/internal"
	"bitwise74/account-api/pkg/httperr"
	"bitwise74/account-api/pkg/validators"

	"github.com/gin-gonic/gin"
)

type resetRequestBody struct {
	Email string `json:"email" binding:"email"`
}

func PasswordResetRequest(c *gin.Context, d *internal.Deps) {
	var data resetRequestBody
	if err := c.ShouldBindJSON(&data); err != nil {
		if fields := validators.Messages(err); fields != nil {
			c.Error(httperr.Validation(fields))
			return
		}

		c.Error(httperr.Wrap(http.StatusBadRequest, "Invalid request body", err))
		return
	}

	if err := d.Users.RequestPasswordReset(c.Request.Context(), data.Email); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Check your e-mail for resetting your password",
	})
}
