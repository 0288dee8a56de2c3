package mail

import (
	"fmt"
	"net/smtp"

	"community-app/config"

	"go.uber.org/zap"
)

type Mailer interface {
	SendVerificationEmail(to, link string) error
	SendPasswordReset(to, link string) error
	SendTemporaryPassword(to, password string, validHours int) error
}

// SMTPMailer sends plain-text mail through the configured SMTP relay.
type SMTPMailer struct {
	cfg config.SMTPConfig
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) SendVerificationEmail(to, link string) error {
	body := fmt.Sprintf("Click the following link to verify your account:\n\n%s", link)
	return m.send(to, "Verify Your Account", body)
}

func (m *SMTPMailer) SendPasswordReset(to, link string) error {
	body := fmt.Sprintf("Click the following link to reset your password:\n\n%s", link)
	return m.send(to, "Reset Your Password", body)
}

func (m *SMTPMailer) SendTemporaryPassword(to, password string, validHours int) error {
	body := fmt.Sprintf(
		"Your owner application was approved.\n\nTemporary password: %s\n\nIt expires in %d hours; you will be asked to change it on first login.",
		password, validHours)
	return m.send(to, "Owner Application Approved", body)
}

func (m *SMTPMailer) send(to, subject, body string) error {
	auth := smtp.PlainAuth("", m.cfg.From, m.cfg.Password, m.cfg.Host)

	message := []byte("Subject: " + subject + "\r\n" +
		"From: " + m.cfg.From + "\r\n" +
		"To: " + to + "\r\n" +
		"Content-Type: text/plain; charset=UTF-8\r\n" +
		"\r\n" +
		body + "\r\n")

	return smtp.SendMail(m.cfg.Host+":"+m.cfg.Port, auth, m.cfg.From, []string{to}, message)
}

// LogMailer is used when SMTP is not configured (local dev, tests): it
// logs instead of sending.
type LogMailer struct {
	Log *zap.Logger
}

func (m *LogMailer) SendVerificationEmail(to, link string) error {
	m.Log.Info("verification email", zap.String("to", to), zap.String("link", link))
	return nil
}

func (m *LogMailer) SendPasswordReset(to, link string) error {
	m.Log.Info("password reset email", zap.String("to", to), zap.String("link", link))
	return nil
}

func (m *LogMailer) SendTemporaryPassword(to, password string, validHours int) error {
	m.Log.Info("temporary password email", zap.String("to", to), zap.Int("valid_hours", validHours))
	return nil
}
