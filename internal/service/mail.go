package service

import (
	"fmt"
	"net/url"

	"bitwise74/account-api/config"

	"gopkg.in/gomail.v2"
)

type Mailer interface {
	SendAccountActivation(to, token string) error
	SendPasswordReset(to, token string) error
}

// SMTPMailer sends account mails through an SMTP relay
type SMTPMailer struct {
	dialer  *gomail.Dialer
	from    string
	baseURL string
}

func NewSMTPMailer(mail config.MailConfig, host config.HostConfig) *SMTPMailer {
	return &SMTPMailer{
		dialer:  gomail.NewDialer(mail.Host, mail.Port, mail.Username, mail.Password),
		from:    mail.From,
		baseURL: fmt.Sprintf("%s://%s", host.Scheme(), host.Domain),
	}
}

func (m *SMTPMailer) link(path, param, token string) string {
	return m.baseURL + path + "?" + url.Values{param: {token}}.Encode()
}

func (m *SMTPMailer) message(to, subject, body string) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	return msg
}

func (m *SMTPMailer) SendAccountActivation(to, token string) error {
	body := fmt.Sprintf(
		"<h1>You have registered</h1><p>Click <a href='%s'>here</a> to activate your account.</p><p>Token is %s</p>",
		m.link("/activate", "token", token), token,
	)

	if err := m.dialer.DialAndSend(m.message(to, "Account Activation", body)); err != nil {
		return fmt.Errorf("failed to send activation mail, %w", err)
	}

	return nil
}

func (m *SMTPMailer) SendPasswordReset(to, token string) error {
	body := fmt.Sprintf(
		"<h1>Password Reset</h1><p>Click <a href='%s'>here</a> to reset your password.</p><p>Token is %s</p>",
		m.link("/password-reset", "reset", token), token,
	)

	if err := m.dialer.DialAndSend(m.message(to, "Password Reset", body)); err != nil {
		return fmt.Errorf("failed to send password reset mail, %w", err)
	}

	return nil
}
