package image

import (
	"errors"
	"io"
	"net/http"

	"bitwise74/account-api/internal"
	"bitwise74/account-api/internal/service"
	"bitwise74/account-api/pkg/httperr"
	"bitwise74/account-api/pkg/validators"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
)

// Image names are never reused, so clients may keep them for a year
const cacheControl = "public, max-age=31536000"

func ImageServe(c *gin.Context, d *internal.Deps) {
	r, err := d.Images.Open(c.Request.Context(), c.Param("file"))
	if err != nil {
		if errors.Is(err, service.ErrImageNotFound) {
			err = httperr.NotFound("Image not found")
		}

		// Aborting keeps the response cache from storing the failure
		c.Error(err)
		c.Abort()
		return
	}
	defer r.Close()

	data, err := io.ReadAll(io.LimitReader(r, validators.MaxImageSize+1))
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}

	c.Header("Cache-Control", cacheControl)
	c.Data(http.StatusOK, mimetype.Detect(data).String(), data)
}
