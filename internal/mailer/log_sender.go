package mailer

import (
	"context"
	"fmt"

	"ticket-mailer/internal/logger"
)

// LogSender only logs what would have been sent.
type LogSender struct {
	Logger *logger.Logger
}

func (l *LogSender) Send(ctx context.Context, email Email) error {
	l.Logger.Info("MAILER", fmt.Sprintf("[dry-run] to=%s subject=%q html=%dB attachments=%d",
		email.To, email.Subject, len(email.HTMLBody), len(email.Attachments)))
	return nil
}
