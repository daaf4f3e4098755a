// backend/src/services/email_service.go
package services

import (
	"fmt"
	"net/smtp"
	"net/url"
	"strings"

	"github.com/username/protrade/backend/src/config"
	"github.com/username/protrade/backend/src/logger"
)

// NewEmailService selects the provider configured in EMAIL_SERVICE_PROVIDER.
// "smtp" sends real mail; anything else falls back to the log provider, which
// only writes the action links to the application log (useful in development).
func NewEmailService() EmailService {
	provider := strings.ToLower(config.Cfg.EmailServiceProvider)
	if provider == "smtp" && config.Cfg.SMTPServer != "" {
		return &smtpEmailService{}
	}
	if provider == "smtp" {
		logger.L.Warn("EMAIL_SERVICE_PROVIDER is 'smtp' but SMTP_SERVER is empty, falling back to log provider")
	}
	return &logEmailService{}
}

// --- SMTP provider ---

type smtpEmailService struct{}

func (s *smtpEmailService) SendVerificationEmail(toEmail, username, token string) error {
	link := buildActionLink(config.Cfg.VerificationEmailBaseURL, token)
	subject := "Confirme a sua conta ProTrade"
	body := fmt.Sprintf(
		"Olá %s,\n\nObrigado por se registar no ProTrade. Confirme o seu email clicando no link abaixo:\n\n%s\n\nO link expira em %s.\n\nSe não criou esta conta, ignore este email.\n",
		username, link, config.Cfg.VerificationTokenExpiry)
	return s.send(toEmail, subject, body)
}

func (s *smtpEmailService) SendPasswordResetEmail(toEmail, username, token string) error {
	link := buildActionLink(config.Cfg.PasswordResetBaseURL, token)
	subject := "Redefinição de senha ProTrade"
	body := fmt.Sprintf(
		"Olá %s,\n\nRecebemos um pedido para redefinir a sua senha. Use o link abaixo:\n\n%s\n\nO link expira em %s.\n\nSe não pediu esta alteração, ignore este email.\n",
		username, link, config.Cfg.PasswordResetTokenExpiry)
	return s.send(toEmail, subject, body)
}

func (s *smtpEmailService) send(toEmail, subject, body string) error {
	cfg := config.Cfg
	addr := fmt.Sprintf("%s:%d", cfg.SMTPServer, cfg.SMTPPort)

	var auth smtp.Auth
	if cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPServer)
	}

	msg := strings.Join([]string{
		fmt.Sprintf("From: %s <%s>", cfg.SenderName, cfg.SenderEmail),
		fmt.Sprintf("To: %s", toEmail),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		`Content-Type: text/plain; charset="utf-8"`,
		"",
		body,
	}, "\r\n")

	if err := smtp.SendMail(addr, auth, cfg.SenderEmail, []string{toEmail}, []byte(msg)); err != nil {
		logger.L.Error("Failed to send email via SMTP", "to", toEmail, "subject", subject, "error", err)
		return fmt.Errorf("failed to send email: %w", err)
	}
	logger.L.Info("Email sent", "to", toEmail, "subject", subject)
	return nil
}

// --- Log provider (development) ---

type logEmailService struct{}

func (s *logEmailService) SendVerificationEmail(toEmail, username, token string) error {
	logger.L.Info("DEV EMAIL: account verification",
		"to", toEmail, "username", username, "link", buildActionLink(config.Cfg.VerificationEmailBaseURL, token))
	return nil
}

func (s *logEmailService) SendPasswordResetEmail(toEmail, username, token string) error {
	logger.L.Info("DEV EMAIL: password reset",
		"to", toEmail, "username", username, "link", buildActionLink(config.Cfg.PasswordResetBaseURL, token))
	return nil
}

func buildActionLink(baseURL, token string) string {
	return fmt.Sprintf("%s?token=%s", baseURL, url.QueryEscape(token))
}
