package mail

import (
	"context"
	"errors"
	"fmt"

	"github.com/mrz1836/postmark"
)

// PostmarkMailer sends through Postmark's transactional API.
type PostmarkMailer struct {
	client  *postmark.Client
	sender  string
	baseURL string
}

func NewPostmarkMailer(serverToken, accountToken, sender, baseURL string) (*PostmarkMailer, error) {
	if serverToken == "" {
		return nil, errors.New("postmark server token is required")
	}
	if sender == "" {
		return nil, errors.New("sender email is required")
	}
	return &PostmarkMailer{
		client:  postmark.NewClient(serverToken, accountToken),
		sender:  sender,
		baseURL: baseURL,
	}, nil
}

func (m *PostmarkMailer) SendVerificationMail(ctx context.Context, email, token string) error {
	subject, html := verificationBody(m.baseURL, token)
	return m.send(ctx, email, subject, html, "email-verification")
}

func (m *PostmarkMailer) SendPasswordResetMail(ctx context.Context, email, token string) error {
	subject, html := passwordResetBody(m.baseURL, token)
	return m.send(ctx, email, subject, html, "password-reset")
}

func (m *PostmarkMailer) send(ctx context.Context, to, subject, html, tag string) error {
	resp, err := m.client.SendEmail(ctx, postmark.Email{
		From:     m.sender,
		To:       to,
		Subject:  subject,
		HTMLBody: html,
		Tag:      tag,
	})
	if err != nil {
		return fmt.Errorf("postmark send: %w", err)
	}
	if resp.ErrorCode > 0 {
		return fmt.Errorf("postmark send: %d - %s", resp.ErrorCode, resp.Message)
	}
	return nil
}
