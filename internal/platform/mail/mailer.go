// Package mail delivers the verification and password-reset messages. The
// auth service treats delivery as fire-and-forget; senders here only need to
// report an error for the caller to log.
package mail

import (
	"context"
	"fmt"
	"log/slog"
)

type Mailer interface {
	SendVerificationMail(ctx context.Context, email, token string) error
	SendPasswordResetMail(ctx context.Context, email, token string) error
}

func verificationBody(baseURL, token string) (subject, html string) {
	url := fmt.Sprintf("%s/api/v1/users/verify/%s", baseURL, token)
	subject = "Verify your email - Mindclaire"
	html = fmt.Sprintf(`<p>Hello,</p>
<p>Thank you for registering with Mindclaire.</p>
<p>Please verify your email by clicking the link below. This link will expire in 10 minutes:</p>
<a href="%s">%s</a>
<p>If you did not request this, you can safely ignore this email.</p>`, url, url)
	return subject, html
}

func passwordResetBody(baseURL, token string) (subject, html string) {
	url := fmt.Sprintf("%s/reset-password/%s", baseURL, token)
	subject = "Reset your password - Mindclaire"
	html = fmt.Sprintf(`<p>Hello,</p>
<p>A password reset was requested for your Mindclaire account.</p>
<p>Use the link below within 10 minutes to choose a new password:</p>
<a href="%s">%s</a>
<p>If you did not request this, you can safely ignore this email.</p>`, url, url)
	return subject, html
}

// LogMailer is the development sender: it logs the links instead of sending.
type LogMailer struct {
	baseURL string
	log     *slog.Logger
}

func NewLogMailer(baseURL string, log *slog.Logger) *LogMailer {
	return &LogMailer{baseURL: baseURL, log: log}
}

func (m *LogMailer) SendVerificationMail(ctx context.Context, email, token string) error {
	subject, _ := verificationBody(m.baseURL, token)
	m.log.InfoContext(ctx, "mail suppressed (dev sender)",
		"to", email, "subject", subject,
		"link", fmt.Sprintf("%s/api/v1/users/verify/%s", m.baseURL, token))
	return nil
}

func (m *LogMailer) SendPasswordResetMail(ctx context.Context, email, token string) error {
	subject, _ := passwordResetBody(m.baseURL, token)
	m.log.InfoContext(ctx, "mail suppressed (dev sender)",
		"to", email, "subject", subject,
		"link", fmt.Sprintf("%s/reset-password/%s", m.baseURL, token))
	return nil
}
