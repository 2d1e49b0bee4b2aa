package user

import (
	"net/http"

	"bitwise74/account-api/internal"
	"bitwise74/account-api/internal/service"
	"bitwise74/account-api/pkg/httperr"
	"bitwise74/account-api/pkg/validators"

	"github.com/gin-gonic/gin"
)

type registerBody struct {
	Username string `json:"username" binding:"required,min=4,max=32"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=255,password"`
}

func UserRegister(c *gin.Context, d *internal.Deps) {
	var data registerBody

	fields := map[string]string{}
	if err := c.ShouldBindJSON(&data); err != nil {
		fields = validators.Messages(err)
		if fields == nil {
			c.Error(httperr.Wrap(http.StatusBadRequest, "Invalid request body", err))
			return
		}
	}

	// Only well formed addresses are looked up
	if _, invalid := fields["email"]; !invalid {
		inUse, err := d.Users.EmailInUse(c.Request.Context(), data.Email)
		if err != nil {
			c.Error(err)
			return
		}

		if inUse {
			fields["email"] = "E-mail in use"
		}
	}

	if len(fields) > 0 {
		c.Error(httperr.Validation(fields))
		return
	}

	err := d.Users.Register(c.Request.Context(), service.RegisterInput{
		Username: data.Username,
		Email:    data.Email,
		Password: data.Password,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User created",
	})
}
