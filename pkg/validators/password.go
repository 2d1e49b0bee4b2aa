package validators

import (
	"errors"
	"unicode/utf8"
)

var (
	ErrPasswordEmpty    = errors.New("Password cannot be null")
	ErrPasswordTooShort = errors.New("Password must be at least 6 characters")
	ErrPasswordTooLong  = errors.New("Password is too long")
	ErrPasswordWeak     = errors.New("Password must have at least 1 uppercase, 1 lowercase letter and 1 number")
)

const (
	minPasswordLen = 6
	maxPasswordLen = 255
)

func PasswordValidator(p string) error {
	if p == "" {
		return ErrPasswordEmpty
	}

	// Counted in characters like the min and max binding rules
	n := utf8.RuneCountInString(p)

	if n < minPasswordLen {
		return ErrPasswordTooShort
	}

	if n > maxPasswordLen {
		return ErrPasswordTooLong
	}

	var lower, upper, digit bool
	for _, r := range p {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}

	if !lower || !upper || !digit {
		return ErrPasswordWeak
	}

	return nil
}
