// Package mailer defines the send capability used by the batch dispatcher
// and its provider implementations: SMTP, the Brevo HTTP API and a
// log-only sender for local runs.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Attachment is sent inline when ContentID is set.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
	ContentID   string
}

type Email struct {
	To          string
	Subject     string
	HTMLBody    string
	Attachments []Attachment
}

type Sender interface {
	Send(ctx context.Context, email Email) error
}

// SendError is a provider rejection. Code is the provider status: an SMTP
// enhanced status ("5.4.6"), an SMTP reply code ("554") or an HTTP status.
type SendError struct {
	Provider string
	Code     string
	Message  string
	Err      error
}

func (e *SendError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("%s: %s", e.Provider, e.Message)
	}
	return fmt.Sprintf("%s: %s %s", e.Provider, e.Code, e.Message)
}

func (e *SendError) Unwrap() error {
	return e.Err
}

// HardBlockPolicy decides which send failures stop a whole batch.
type HardBlockPolicy struct {
	codes []string
}

func NewHardBlockPolicy(codes []string) HardBlockPolicy {
	cleaned := make([]string, 0, len(codes))
	for _, c := range codes {
		if c = strings.TrimSpace(c); c != "" {
			cleaned = append(cleaned, c)
		}
	}
	return HardBlockPolicy{codes: cleaned}
}

func (p HardBlockPolicy) Codes() []string {
	return append([]string(nil), p.codes...)
}

// IsHardBlock matches the SendError code exactly, or the reply text when it
// carries an enhanced status code. Errors that are not SendErrors only match
// on enhanced codes found in their text.
func (p HardBlockPolicy) IsHardBlock(err error) bool {
	if err == nil {
		return false
	}

	var sendErr *SendError
	if errors.As(err, &sendErr) {
		for _, c := range p.codes {
			if sendErr.Code == c {
				return true
			}
			if isEnhancedCode(c) && strings.Contains(sendErr.Message, c) {
				return true
			}
		}
		return false
	}

	msg := err.Error()
	for _, c := range p.codes {
		if isEnhancedCode(c) && strings.Contains(msg, c) {
			return true
		}
	}
	return false
}

func isEnhancedCode(code string) bool {
	return strings.Count(code, ".") == 2
}
