package security

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// TokenSize is the length of activation, password reset and bearer tokens
const TokenSize = 32

// NewToken returns a random alphanumeric string of length n
func NewToken(n int) (string, error) {
	return gonanoid.Generate(charset, n)
}
