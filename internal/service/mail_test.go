package service

import (
	"net"
	"testing"

	"bitwise74/account-api/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMTPMailerLinks(t *testing.T) {
	m := NewSMTPMailer(config.MailConfig{Host: "localhost", Port: 587, From: "info@my-app.com"}, config.HostConfig{
		Domain: "example.com",
		SSL:    config.SSLConfig{Enabled: true},
	})

	assert.Equal(t, "https://example.com/activate?token=abc", m.link("/activate", "token", "abc"))

	m = NewSMTPMailer(config.MailConfig{Host: "localhost", Port: 587}, config.HostConfig{Domain: "localhost:8080"})
	assert.Equal(t, "http://localhost:8080/password-reset?reset=abc", m.link("/password-reset", "reset", "abc"))
}

func TestSMTPMailerMessage(t *testing.T) {
	m := NewSMTPMailer(config.MailConfig{Host: "localhost", Port: 587, From: "info@my-app.com"}, config.HostConfig{Domain: "example.com"})

	msg := m.message("user1@mail.com", "Account Activation", "<p>hi</p>")

	assert.Equal(t, []string{"info@my-app.com"}, msg.GetHeader("From"))
	assert.Equal(t, []string{"user1@mail.com"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"Account Activation"}, msg.GetHeader("Subject"))
}

func TestSMTPMailerUnreachableServer(t *testing.T) {
	// Grab a free port and close it again so nothing listens there
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	m := NewSMTPMailer(config.MailConfig{Host: "127.0.0.1", Port: port, From: "info@my-app.com"}, config.HostConfig{Domain: "localhost"})

	assert.Error(t, m.SendAccountActivation("user1@mail.com", "token"))
	assert.Error(t, m.SendPasswordReset("user1@mail.com", "token"))
}
