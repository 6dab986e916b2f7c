package notify

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// GmailProvider sends through the Gmail API with service-account
// credentials, the transport the hosted deployment uses.
type GmailProvider struct {
	svc    *gmail.Service
	sender string
}

// NewGmailService builds the Gmail client. Explicit service-account JSON
// takes precedence; otherwise application default credentials are used.
func NewGmailService(ctx context.Context, credentialsJSON string) (*gmail.Service, error) {
	opts := []option.ClientOption{option.WithScopes(gmail.GmailSendScope)}
	if credentialsJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credentialsJSON)))
	}
	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}
	return svc, nil
}

func NewGmail(svc *gmail.Service, sender string) *GmailProvider {
	return &GmailProvider{svc: svc, sender: sender}
}

func (p *GmailProvider) Send(ctx context.Context, to []string, subject string, htmlBody string) error {
	var raw strings.Builder
	fmt.Fprintf(&raw, "From: %s\r\n", p.sender)
	fmt.Fprintf(&raw, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&raw, "Subject: %s\r\n", subject)
	raw.WriteString("MIME-Version: 1.0\r\n")
	raw.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	raw.WriteString("\r\n")
	raw.WriteString(htmlBody)

	msg := &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString([]byte(raw.String())),
	}

	if _, err := p.svc.Users.Messages.Send("me", msg).Context(ctx).Do(); err != nil {
		return fmt.Errorf("send gmail message: %w", err)
	}
	return nil
}
