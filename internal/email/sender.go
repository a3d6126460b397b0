// Package email delivers transactional mail for bookings and payments.
package email

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/bepeace/telemed/pkg/logging"
)

// Sender is the delivery interface. Implementations can be swapped
// (SendGrid, SES, SMTP) without changing callers.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

type Message struct {
	To          string
	ToName      string
	Subject     string
	Body        string
	HTML        string
	Attachments []Attachment
}

// SendGridSender sends mail through the SendGrid v3 API.
type SendGridSender struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
	logger    *logging.Logger
}

func NewSendGridSender(apiKey, fromEmail, fromName string, logger *logging.Logger) *SendGridSender {
	if apiKey == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SendGridSender{
		client:    sendgrid.NewSendClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
		logger:    logger,
	}
}

func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("email: sendgrid client not configured")
	}

	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(msg.ToName, msg.To)

	plain := msg.Body
	html := msg.HTML
	if html == "" {
		html = plain
	}
	message := mail.NewSingleEmail(from, msg.Subject, to, plain, html)

	for _, a := range msg.Attachments {
		attachment := mail.NewAttachment()
		attachment.SetFilename(a.Filename)
		attachment.SetType(a.ContentType)
		attachment.SetContent(base64.StdEncoding.EncodeToString(a.Data))
		attachment.SetDisposition("attachment")
		message.AddAttachment(attachment)
	}

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		s.logger.Error("sendgrid send failed", "error", err, "to", msg.To)
		return fmt.Errorf("email: sendgrid send failed: %w", err)
	}
	if response.StatusCode >= 400 {
		s.logger.Error("sendgrid returned error status", "status", response.StatusCode, "body", response.Body, "to", msg.To)
		return fmt.Errorf("email: sendgrid returned status %d", response.StatusCode)
	}

	s.logger.Info("email sent", "to", msg.To, "subject", msg.Subject, "status", response.StatusCode)
	return nil
}

// StubSender logs instead of sending. Used in tests and when no API key
// is configured.
type StubSender struct {
	logger *logging.Logger
}

func NewStubSender(logger *logging.Logger) *StubSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &StubSender{logger: logger}
}

func (s *StubSender) Send(ctx context.Context, msg Message) error {
	s.logger.Info("stub sender: would send email", "to", msg.To, "subject", msg.Subject, "attachments", len(msg.Attachments))
	return nil
}

var (
	_ Sender = (*SendGridSender)(nil)
	_ Sender = (*StubSender)(nil)
)
