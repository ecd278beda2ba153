package notify

import (
	"context"
	"fmt"
	"html"

	"github.com/google/uuid"
	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"

	"github.com/vitneshimmanuvel/dsqaubackend/internal/domain"
)

// EmailMessage is one outgoing e-mail
type EmailMessage struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// EmailSender sends a single e-mail
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// UserLookup resolves a notification recipient
type UserLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// ResendSender sends e-mail through the Resend API
type ResendSender struct {
	client    *resend.Client
	fromName  string
	fromEmail string
}

// NewResendSender creates a Resend-backed sender
func NewResendSender(apiKey, fromName, fromEmail string) *ResendSender {
	return &ResendSender{
		client:    resend.NewClient(apiKey),
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

// Send sends the message
func (s *ResendSender) Send(ctx context.Context, msg EmailMessage) error {
	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail),
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	}
	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("resend: %w", err)
	}
	return nil
}

// EmailDispatcher mails intents to the recipient's address
type EmailDispatcher struct {
	users  UserLookup
	sender EmailSender
	logger *zap.Logger
}

// NewEmailDispatcher creates an e-mail dispatcher
func NewEmailDispatcher(users UserLookup, sender EmailSender, logger *zap.Logger) *EmailDispatcher {
	return &EmailDispatcher{users: users, sender: sender, logger: logger}
}

// Send looks up the recipient and mails the notification.
// Inactive users and users without an address are skipped.
func (d *EmailDispatcher) Send(ctx context.Context, intent domain.NotificationIntent) error {
	user, err := d.users.GetByID(ctx, intent.RecipientID)
	if err != nil {
		return fmt.Errorf("failed to resolve recipient: %w", err)
	}
	if !user.IsActive || user.Email == "" {
		d.logger.Debug("skipping e-mail notification", zap.String("user_id", user.ID.String()))
		return nil
	}
	return d.sender.Send(ctx, EmailMessage{
		To:      user.Email,
		Subject: intent.Title,
		Text:    intent.Message,
		HTML:    fmt.Sprintf("<p>Hello %s,</p><p>%s</p>", html.EscapeString(user.DisplayName), html.EscapeString(intent.Message)),
	})
}
