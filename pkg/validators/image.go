package validators

import (
	"encoding/base64"
	"errors"
	"slices"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrImageTooLarge = errors.New("Your profile image cannot be bigger than 2MB")
	ErrImageType     = errors.New("Only JPEG or PNG files are allowed")
)

const MaxImageSize = 2 << 20

var allowedImageTypes = []string{"image/png", "image/jpeg"}

// ProfileImage decodes a base64 encoded profile image and checks its size and
// real content type. The header-less payload is sniffed, so a renamed file of
// another type is rejected.
func ProfileImage(b64 string) (data []byte, contentType string, err error) {
	// Cheap upper bound before allocating anything
	if base64.StdEncoding.DecodedLen(len(b64)) > MaxImageSize+2 {
		return nil, "", ErrImageTooLarge
	}

	data, err = base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, "", ErrImageType
	}

	if len(data) > MaxImageSize {
		return nil, "", ErrImageTooLarge
	}

	mime := mimetype.Detect(data)
	if !slices.Contains(allowedImageTypes, mime.String()) {
		return nil, "", ErrImageType
	}

	return data, mime.String(), nil
}
