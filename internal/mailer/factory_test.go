package mailer

import (
	"io"
	"testing"

	"ticket-mailer/internal/config"
	"ticket-mailer/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSender(t *testing.T) {
	log := logger.NewWriterLogger(io.Discard)

	s, err := NewSender(config.EmailConfig{Provider: "smtp", SMTPHost: "smtp.zoho.com", SMTPPort: "465", FromAddress: "a@b.c"}, log)
	require.NoError(t, err)
	assert.IsType(t, &SMTPSender{}, s)

	s, err = NewSender(config.EmailConfig{Provider: "brevo", BrevoAPIKey: "k"}, log)
	require.NoError(t, err)
	assert.IsType(t, &BrevoSender{}, s)

	s, err = NewSender(config.EmailConfig{Provider: "log"}, log)
	require.NoError(t, err)
	assert.IsType(t, &LogSender{}, s)

	_, err = NewSender(config.EmailConfig{Provider: "brevo"}, log)
	assert.Error(t, err)

	_, err = NewSender(config.EmailConfig{Provider: "pigeon"}, log)
	assert.Error(t, err)
}
