package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Config contains credentials for the WhatsApp gateway.
type Config struct {
	APIURL string
	Token  string
	Sender string
}

// Service delivers one-time codes over a WhatsApp gateway.
type Service struct {
	cfg    Config
	client *http.Client
	logger zerolog.Logger
}

// New constructs a WhatsApp messenger instance.
func New(cfg Config, logger zerolog.Logger) (*Service, error) {
	if cfg.APIURL == "" || cfg.Token == "" {
		return nil, fmt.Errorf("whatsapp gateway credentials must be provided")
	}

	return &Service{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger.With().Str("component", "whatsapp").Logger(),
	}, nil
}

type sendRequest struct {
	Sender    string `json:"sender,omitempty"`
	Recipient string `json:"recipient"`
	Message   string `json:"message"`
}

// SendOTP delivers a password-reset code to the recipient's phone.
func (s *Service) SendOTP(ctx context.Context, phone, code string) error {
	payload, err := json.Marshal(sendRequest{
		Sender:    s.cfg.Sender,
		Recipient: phone,
		Message:   fmt.Sprintf("Your password reset code is %s. It expires in 10 minutes.", code),
	})
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.APIURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.Token)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach whatsapp gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("whatsapp gateway returned status %d", resp.StatusCode)
	}

	s.logger.Info().Str("recipient", phone).Msg("otp delivered")
	return nil
}
