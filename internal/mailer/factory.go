package mailer

import (
	"fmt"

	"ticket-mailer/internal/config"
	"ticket-mailer/internal/logger"
)

// NewSender picks the provider named by cfg.Provider.
func NewSender(cfg config.EmailConfig, log *logger.Logger) (Sender, error) {
	switch cfg.Provider {
	case "smtp":
		if cfg.SMTPHost == "" || cfg.FromAddress == "" {
			return nil, fmt.Errorf("smtp provider requires SMTP_HOST and a sender address")
		}
		replyTo := ""
		if cfg.ReplyToEmail != "" {
			replyTo = (&Contact{Name: cfg.ReplyToName, Email: cfg.ReplyToEmail}).address()
		}
		return NewSMTPSender(SMTPConfig{
			Host:        cfg.SMTPHost,
			Port:        cfg.SMTPPort,
			Username:    cfg.SMTPUsername,
			Password:    cfg.SMTPPassword,
			ImplicitTLS: cfg.SMTPImplicitTLS,
			FromName:    cfg.FromName,
			FromAddress: cfg.FromAddress,
			ReplyTo:     replyTo,
		}), nil
	case "brevo":
		if cfg.BrevoAPIKey == "" {
			return nil, fmt.Errorf("brevo provider requires BREVO_API_KEY")
		}
		var replyTo *Contact
		if cfg.ReplyToEmail != "" {
			replyTo = &Contact{Name: cfg.ReplyToName, Email: cfg.ReplyToEmail}
		}
		return NewBrevoSender(BrevoConfig{
			APIKey:  cfg.BrevoAPIKey,
			URL:     cfg.BrevoURL,
			Sender:  Contact{Name: cfg.FromName, Email: cfg.FromAddress},
			ReplyTo: replyTo,
		}), nil
	case "log":
		return &LogSender{Logger: log}, nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
	}
}
