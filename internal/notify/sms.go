package notify

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

const twilioBaseURL = "https://api.twilio.com/2010-04-01"

// SMSSender delivers invite messages over WhatsApp via the Twilio REST API.
// With no credentials configured it logs the message instead.
type SMSSender struct {
	accountSID string
	authToken  string
	from       string
	client     *fasthttp.Client
	logger     zerolog.Logger
}

func NewSMSSender(accountSID, authToken, from string, logger zerolog.Logger) *SMSSender {
	return &SMSSender{
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
		client: &fasthttp.Client{
			MaxConnsPerHost:     10,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		logger: logger,
	}
}

func (s *SMSSender) SendInviteSMS(ctx context.Context, msg InviteMessage) error {
	if msg.PhoneNumber == "" {
		return nil
	}

	body := fmt.Sprintf("You've been invited to join %s on Scotia Sense as %s %s. Register here: %s",
		msg.TeamName, Article(msg.RoleLabel), msg.RoleLabel, msg.Link)

	if s.accountSID == "" || s.authToken == "" {
		s.logger.Info().
			Str("to", msg.PhoneNumber).
			Str("body", body).
			Msg("sms sending disabled, logging invite instead")
		return nil
	}

	form := url.Values{}
	form.Set("From", "whatsapp:"+s.from)
	form.Set("To", "whatsapp:"+msg.PhoneNumber)
	form.Set("Body", body)

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fmt.Sprintf("%s/Accounts/%s/Messages.json", twilioBaseURL, s.accountSID))
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Basic "+basicAuth(s.accountSID, s.authToken))
	req.SetBodyString(form.Encode())

	deadline, ok := ctx.Deadline()
	var err error
	if ok {
		err = s.client.DoDeadline(req, resp, deadline)
	} else {
		err = s.client.Do(req, resp)
	}
	if err != nil {
		s.logger.Error().Err(err).Str("to", msg.PhoneNumber).Msg("failed to send invite sms")
		return fmt.Errorf("failed to send invite sms: %w", err)
	}

	if resp.StatusCode() >= 300 {
		s.logger.Error().
			Int("status", resp.StatusCode()).
			Str("to", msg.PhoneNumber).
			Msg("twilio rejected invite sms")
		return fmt.Errorf("twilio returned status %d", resp.StatusCode())
	}

	s.logger.Info().Str("to", msg.PhoneNumber).Msg("invite sms sent")
	return nil
}

func basicAuth(user, pass string) string {
	return base64.StdEncoding.EncodeToString([]byte(user + ":" + pass))
}

// Dispatcher bundles the email and SMS senders behind the Notifier interface.
type Dispatcher struct {
	*EmailSender
	*SMSSender
}

func NewDispatcher(email *EmailSender, sms *SMSSender) *Dispatcher {
	return &Dispatcher{EmailSender: email, SMSSender: sms}
}

var _ Notifier = (*Dispatcher)(nil)
