package mailer

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/mail"
	"strconv"
	"time"
)

const DefaultBrevoURL = "https://api.brevo.com/v3/smtp/email"

type Contact struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

func (c *Contact) address() string {
	return (&mail.Address{Name: c.Name, Address: c.Email}).String()
}

type BrevoAttachment struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

type brevoPayload struct {
	Sender      Contact           `json:"sender"`
	To          []Contact         `json:"to"`
	ReplyTo     *Contact          `json:"replyTo,omitempty"`
	Subject     string            `json:"subject"`
	HTMLContent string            `json:"htmlContent"`
	Attachment  []BrevoAttachment `json:"attachment,omitempty"`
}

type brevoError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type BrevoConfig struct {
	APIKey  string
	URL     string
	Sender  Contact
	ReplyTo *Contact
	Client  *http.Client
}

// BrevoSender delivers through the Brevo transactional email API. The API
// has no CID support, so inline images travel as regular attachments.
type BrevoSender struct {
	cfg BrevoConfig
}

func NewBrevoSender(cfg BrevoConfig) *BrevoSender {
	if cfg.URL == "" {
		cfg.URL = DefaultBrevoURL
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: 30 * time.Second}
	}
	return &BrevoSender{cfg: cfg}
}

func (b *BrevoSender) Send(ctx context.Context, email Email) error {
	payload := brevoPayload{
		Sender:      b.cfg.Sender,
		To:          []Contact{{Email: email.To}},
		ReplyTo:     b.cfg.ReplyTo,
		Subject:     email.Subject,
		HTMLContent: email.HTMLBody,
	}
	for _, att := range email.Attachments {
		payload.Attachment = append(payload.Attachment, BrevoAttachment{
			Name:    att.Filename,
			Content: base64.StdEncoding.EncodeToString(att.Content),
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("accept", "application/json")
	req.Header.Set("api-key", b.cfg.APIKey)

	resp, err := b.cfg.Client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	message := string(raw)
	var apiErr brevoError
	if json.Unmarshal(raw, &apiErr) == nil && apiErr.Message != "" {
		message = apiErr.Code + ": " + apiErr.Message
	}
	return &SendError{
		Provider: "brevo",
		Code:     strconv.Itoa(resp.StatusCode),
		Message:  message,
	}
}
