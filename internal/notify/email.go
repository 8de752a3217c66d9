package notify

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
)

// EmailSender delivers invite emails via the Resend API. With no API key
// configured it logs the message instead, which keeps local development
// working without credentials.
type EmailSender struct {
	client *resend.Client
	from   string
	logger zerolog.Logger
}

func NewEmailSender(apiKey, from string, logger zerolog.Logger) *EmailSender {
	s := &EmailSender{from: from, logger: logger}
	if apiKey != "" {
		s.client = resend.NewClient(apiKey)
	}
	return s
}

func (s *EmailSender) SendInviteEmail(ctx context.Context, msg InviteMessage) error {
	subject := fmt.Sprintf("Scotia Sense Invite - %s", msg.RoleLabel)
	html := fmt.Sprintf(
		`<p>You have been invited to join <strong>%s</strong> on Scotia Sense as %s <strong>%s</strong>.</p>
		 <p>Click below to register:</p>
		 <a href="%s">%s</a>`,
		msg.TeamName, Article(msg.RoleLabel), msg.RoleLabel, msg.Link, msg.Link,
	)

	if s.client == nil {
		s.logger.Info().
			Str("to", msg.Email).
			Str("subject", subject).
			Str("link", msg.Link).
			Msg("email sending disabled, logging invite instead")
		return nil
	}

	sent, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{msg.Email},
		Subject: subject,
		Html:    html,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("to", msg.Email).Msg("failed to send invite email")
		return fmt.Errorf("failed to send invite email: %w", err)
	}

	s.logger.Info().Str("to", msg.Email).Str("message_id", sent.Id).Msg("invite email sent")
	return nil
}
