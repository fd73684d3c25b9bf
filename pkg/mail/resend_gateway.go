package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Sender sends transactional email
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Message represents a single outbound email
type Message struct {
	To      string
	Subject string
	HTML    string
}

// ResendGateway implements email sending via the Resend HTTP API
type ResendGateway struct {
	apiURL string
	apiKey string
	from   string
	client *http.Client
}

// ResendConfig holds configuration for the Resend gateway
type ResendConfig struct {
	APIKey  string
	From    string
	Timeout time.Duration
}

// NewResendGateway creates a new Resend email gateway client
func NewResendGateway(config ResendConfig) *ResendGateway {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &ResendGateway{
		apiURL: "https://api.resend.com/emails",
		apiKey: config.APIKey,
		from:   config.From,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// sendEmailRequest represents the Resend send request structure
type sendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// sendEmailResponse represents the Resend send response structure
type sendEmailResponse struct {
	ID string `json:"id"`
}

// Send delivers a single email through Resend
func (g *ResendGateway) Send(ctx context.Context, msg Message) error {
	if g.apiKey == "" {
		return fmt.Errorf("resend gateway not configured: missing API key")
	}
	if msg.To == "" {
		return fmt.Errorf("recipient address is required")
	}

	payload := sendEmailRequest{
		From:    g.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		HTML:    msg.HTML,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal email request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read email response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("resend API returned status %d: %s", resp.StatusCode, string(body))
	}

	var sendResp sendEmailResponse
	if err := json.Unmarshal(body, &sendResp); err != nil {
		return fmt.Errorf("failed to parse email response: %w", err)
	}

	return nil
}
