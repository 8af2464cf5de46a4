package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ridgeline-labs/site-backend/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const resendEndpoint = "https://api.resend.com/emails"

// ResendEmailRequest represents the request payload for Resend API
type ResendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Html    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

// ResendEmailResponse represents the response from Resend API
type ResendEmailResponse struct {
	ID string `json:"id"`
}

// ResendErrorResponse represents an error response from Resend API
type ResendErrorResponse struct {
	Message string `json:"message"`
}

// Mailer sends transactional email through Resend.
type Mailer struct {
	apiKey   string
	from     string
	endpoint string
	client   *http.Client
	logger   zerolog.Logger
}

// NewMailer reads RESEND_API_KEY and RESEND_FROM_EMAIL. It returns nil when
// either is missing so callers can treat email as unconfigured.
func NewMailer(cfg map[string]string) *Mailer {
	apiKey := config.GetString(cfg, "RESEND_API_KEY", "")
	fromEmail := config.GetString(cfg, "RESEND_FROM_EMAIL", "")
	if apiKey == "" || fromEmail == "" {
		return nil
	}
	return &Mailer{
		apiKey:   apiKey,
		from:     fromEmail,
		endpoint: resendEndpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
		logger:   log.With().Str("service", "resend").Logger(),
	}
}

// SendEmail sends one HTML email. replyTo may be empty.
func (m *Mailer) SendEmail(ctx context.Context, subject, html, replyTo string, recipients []string) error {
	if len(recipients) == 0 {
		return fmt.Errorf("at least one recipient is required")
	}

	payload := ResendEmailRequest{
		From:    m.from,
		To:      recipients,
		Subject: subject,
		Html:    html,
		ReplyTo: replyTo,
	}

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return fmt.Errorf("failed to create Resend API request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request to Resend API: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read Resend API response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errorResp ResendErrorResponse
		if err := json.Unmarshal(bodyBytes, &errorResp); err == nil && errorResp.Message != "" {
			return fmt.Errorf("resend API error (status %d): %s", resp.StatusCode, errorResp.Message)
		}
		return fmt.Errorf("resend API error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var emailResponse ResendEmailResponse
	if err := json.Unmarshal(bodyBytes, &emailResponse); err != nil {
		m.logger.Warn().Err(err).Msg("Failed to parse Resend email response, but email was sent")
	} else {
		m.logger.Info().Str("emailId", emailResponse.ID).Msg("Successfully sent email via Resend")
	}

	return nil
}
