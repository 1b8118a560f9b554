package email

import (
	"context"
	"fmt"
	"net/smtp"
	"net/url"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// BaseURL is the public origin used to build reset links.
	BaseURL string
}

type SMTPProvider struct {
	cfg Config
}

func NewSMTP(cfg Config) *SMTPProvider {
	return &SMTPProvider{cfg: cfg}
}

func (p *SMTPProvider) SendPasswordReset(ctx context.Context, to, displayName, resetToken string) error {
	_ = ctx

	if displayName == "" {
		displayName = "there"
	}
	resetURL := fmt.Sprintf("%s/api/auth/password-reset?token=%s", p.cfg.BaseURL, url.QueryEscape(resetToken))
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>A password reset was requested for your account. "+
			"Follow <a href=%q>this link</a> to choose a new password. "+
			"The link expires shortly and can be ignored if you did not ask for it.</p>",
		displayName, resetURL,
	)

	return p.send(to, "Reset your LegalDraft password", body)
}

func (p *SMTPProvider) send(to, subject, htmlBody string) error {
	auth := smtp.PlainAuth("", p.cfg.Username, p.cfg.Password, p.cfg.Host)
	addr := fmt.Sprintf("%s:%d", p.cfg.Host, p.cfg.Port)

	mime := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"
	msg := []byte(fmt.Sprintf("To: %s\r\nSubject: %s\r\n%s\r\n%s", to, subject, mime, htmlBody))

	return smtp.SendMail(addr, auth, p.cfg.From, []string{to}, msg)
}
