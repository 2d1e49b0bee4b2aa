package user

import (
	"net/http"

	"bitwise74/account-api/internal"
	"bitwise74/account-api/internal/service"
	"bitwise74/account-api/pkg/httperr"
	"bitwise74/account-api/pkg/middleware"
	"bitwise74/account-api/pkg/validators"

	"github.com/gin-gonic/gin"
)

type updateBody struct {
	Username string `json:"username" binding:"required,min=4,max=32"`
	// Base64 encoded png or jpeg
	Image *string `json:"image"`
}

func UserUpdate(c *gin.Context, d *internal.Deps) {
	id, ok := parseID(c)
	authed, authenticated := middleware.AuthenticatedUser(c)
	if !ok || !authenticated || authed.ID != id {
		c.Error(httperr.Forbidden("You are not authorized to update user"))
		return
	}

	var data updateBody

	fields := map[string]string{}
	if err := c.ShouldBindJSON(&data); err != nil {
		fields = validators.Messages(err)
		if fields == nil {
			c.Error(httperr.Wrap(http.StatusBadRequest, "Invalid request body", err))
			return
		}
	}

	in := service.UpdateInput{Username: data.Username}

	if data.Image != nil && *data.Image != "" {
		img, mime, err := validators.ProfileImage(*data.Image)
		if err != nil {
			fields["image"] = err.Error()
		}

		in.Image = img
		in.ImageType = mime
	}

	if len(fields) > 0 {
		c.Error(httperr.Validation(fields))
		return
	}

	u, err := d.Users.Update(c.Request.Context(), id, in)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, u.View())
}
