package mailer

import (
	"bytes"
	"encoding/base64"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessage(t *testing.T) {
	png := bytes.Repeat([]byte{0x89, 0x50, 0x4e, 0x47}, 40)
	email := Email{
		To:       "guest@example.com",
		Subject:  "Tu Ticket para Torneo Año Nuevo",
		HTMLBody: `<p style="color:#121217">Hola ` + strings.Repeat("x", 100) + `</p>`,
		Attachments: []Attachment{
			{Filename: "ticket-qr.png", ContentType: "image/png", Content: png, ContentID: "unique-qr-code"},
			{Filename: "terms.txt", Content: []byte("terms")},
		},
	}
	from := mail.Address{Name: "WoowTek Eventos", Address: "events@example.com"}

	raw, err := buildMessage(from, email, "reply@example.com", time.Date(2025, 12, 1, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	require.NoError(t, err)

	assert.Equal(t, "guest@example.com", msg.Header.Get("To"))
	assert.Equal(t, "reply@example.com", msg.Header.Get("Reply-To"))
	subject, err := new(mime.WordDecoder).DecodeHeader(msg.Header.Get("Subject"))
	require.NoError(t, err)
	assert.Equal(t, email.Subject, subject)

	mediaType, params, err := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/related", mediaType)

	reader := multipart.NewReader(msg.Body, params["boundary"])

	htmlPart, err := reader.NextRawPart()
	require.NoError(t, err)
	assert.Contains(t, htmlPart.Header.Get("Content-Type"), "text/html")
	html, err := io.ReadAll(quotedprintable.NewReader(htmlPart))
	require.NoError(t, err)
	assert.Equal(t, email.HTMLBody, string(html))

	qrPart, err := reader.NextRawPart()
	require.NoError(t, err)
	assert.Equal(t, "<unique-qr-code>", qrPart.Header.Get("Content-ID"))
	assert.True(t, strings.HasPrefix(qrPart.Header.Get("Content-Disposition"), "inline"))
	encoded, err := io.ReadAll(qrPart)
	require.NoError(t, err)
	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(string(encoded), "\r\n", ""))
	require.NoError(t, err)
	assert.Equal(t, png, decoded)

	filePart, err := reader.NextRawPart()
	require.NoError(t, err)
	assert.Empty(t, filePart.Header.Get("Content-ID"))
	assert.True(t, strings.HasPrefix(filePart.Header.Get("Content-Disposition"), "attachment"))
	assert.Contains(t, filePart.Header.Get("Content-Type"), "application/octet-stream")

	_, err = reader.NextRawPart()
	assert.ErrorIs(t, err, io.EOF)
}

func TestWriteBase64Lines(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeBase64Lines(&buf, bytes.Repeat([]byte("a"), 200)))

	for _, line := range strings.Split(strings.TrimRight(buf.String(), "\r\n"), "\r\n") {
		assert.LessOrEqual(t, len(line), 76)
	}
}
