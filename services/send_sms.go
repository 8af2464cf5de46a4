package services

import (
	"context"
	"fmt"

	"github.com/ridgeline-labs/site-backend/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// SMSNotifier sends short alerts through Twilio.
type SMSNotifier struct {
	messages messageCreator
	from     string
	logger   zerolog.Logger
}

// NewSMSNotifier returns nil unless TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN
// and TWILIO_FROM_NUMBER are all set.
func NewSMSNotifier(cfg map[string]string) *SMSNotifier {
	sid := config.GetString(cfg, "TWILIO_ACCOUNT_SID", "")
	token := config.GetString(cfg, "TWILIO_AUTH_TOKEN", "")
	from := config.GetString(cfg, "TWILIO_FROM_NUMBER", "")
	if sid == "" || token == "" || from == "" {
		return nil
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: sid,
		Password: token,
	})
	return &SMSNotifier{
		messages: client.Api,
		from:     from,
		logger:   log.With().Str("service", "twilio").Logger(),
	}
}

// SendSMS sends body to the number to. The Twilio client has no context
// support; ctx is only checked before the call.
func (s *SMSNotifier) SendSMS(ctx context.Context, to, body string) error {
	if to == "" {
		return fmt.Errorf("recipient phone number is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(body)

	resp, err := s.messages.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("failed to send SMS via Twilio: %w", err)
	}

	sid := ""
	if resp != nil && resp.Sid != nil {
		sid = *resp.Sid
	}
	s.logger.Info().Str("messageSid", sid).Msg("Successfully sent SMS via Twilio")
	return nil
}
