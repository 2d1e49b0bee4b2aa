// Package validators contains validators found throughout the application
// that have been abstracted away from the main code
package validators

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var setupOnce sync.Once

// Field messages keyed by "<json field>.<failed tag>"
var messages = map[string]string{
	"username.required": "Username cannot be null",
	"username.min":      "Must have min 4 and max 32 characters",
	"username.max":      "Must have min 4 and max 32 characters",
	"email.required":    "E-mail cannot be null",
	"email.email":       "E-mail is not valid",
	"password.required": ErrPasswordEmpty.Error(),
	"password.min":      ErrPasswordTooShort.Error(),
	"password.max":      ErrPasswordTooLong.Error(),
	"password.password": ErrPasswordWeak.Error(),
}

// Setup configures gin's validator engine. Safe to call more than once.
func Setup() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}

		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}

			return name
		})

		v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
			return PasswordValidator(fl.Field().String()) == nil
		})
	})
}

// Messages turns binding validation errors into a field -> message map. Only
// the first failing rule of every field is reported. Returns nil if err
// isn't a validation error.
func Messages(err error) map[string]string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil
	}

	out := make(map[string]string, len(ve))
	for _, fe := range ve {
		if _, ok := out[fe.Field()]; ok {
			continue
		}

		msg, ok := messages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg = fmt.Sprintf("field '%s' failed '%s'", fe.Field(), fe.Tag())
		}

		out[fe.Field()] = msg
	}

	return out
}
