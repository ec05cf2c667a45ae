// Package email delivers one-time password reset codes. The SMTP sender is
// used when SMTP is configured; the log sender stands in for a real channel
// in demos and local development.
package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"

	"docstore-api/internal/logging"
)

// SMTPSender delivers reset codes over SMTP.
type SMTPSender struct {
	host      string
	port      string
	user      string
	password  string
	fromEmail string
}

func NewSMTPSender(host, port, user, password string) *SMTPSender {
	return &SMTPSender{
		host:      host,
		port:      port,
		user:      user,
		password:  password,
		fromEmail: user,
	}
}

// DeliverCode sends the reset code to the given address.
// This method is designed to be called in a goroutine.
func (s *SMTPSender) DeliverCode(ctx context.Context, toEmail, code string) error {
	logger := logging.GetLoggerFromContext(ctx)

	subject := "Your password reset code"
	body, err := renderCodeTemplate(code)
	if err != nil {
		logger.Error("failed to render reset code email template", "error", err)
		return fmt.Errorf("render template: %w", err)
	}

	if err := s.sendEmail(toEmail, subject, body); err != nil {
		logger.Error("failed to send reset code email", "email", toEmail, "error", err)
		return fmt.Errorf("send email: %w", err)
	}

	logger.Info("reset code email sent", "email", toEmail)
	return nil
}

func (s *SMTPSender) sendEmail(to, subject, body string) error {
	auth := smtp.PlainAuth("", s.user, s.password, s.host)

	msg := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s\r\n",
		s.fromEmail, to, subject, body,
	))

	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	return smtp.SendMail(addr, auth, s.fromEmail, []string{to}, msg)
}

func renderCodeTemplate(code string) (string, error) {
	tmpl := `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
</head>
<body style="font-family: Arial, sans-serif; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2>Password reset requested</h2>
    <p>Use this code to reset your password:</p>
    <p style="font-size: 28px; letter-spacing: 6px; font-weight: bold;">{{.Code}}</p>
    <p>The code expires in 5 minutes and can be used once.</p>
    <p>If you didn't request a password reset, you can safely ignore this email.</p>
</body>
</html>
`

	t, err := template.New("resetCode").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	data := struct {
		Code string
	}{
		Code: code,
	}

	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}

	return buf.String(), nil
}

// LogSender writes the code to the application log instead of sending it.
// Matches the demo behavior of logging the OTP to the console.
type LogSender struct {
	logger *logging.Logger
}

func NewLogSender(logger *logging.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) DeliverCode(ctx context.Context, toEmail, code string) error {
	s.logger.Info("password reset code issued", "email", toEmail, "otp", code)
	return nil
}
