package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net"
	"net/mail"
	"net/smtp"
	"net/textproto"
	"regexp"
	"strconv"
	"time"
)

var enhancedStatus = regexp.MustCompile(`\b[245]\.\d{1,3}\.\d{1,3}\b`)

type SMTPConfig struct {
	Host        string
	Port        string
	Username    string
	Password    string
	ImplicitTLS bool
	FromName    string
	FromAddress string
	ReplyTo     string
	Timeout     time.Duration
}

type SMTPSender struct {
	cfg  SMTPConfig
	from mail.Address
}

func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &SMTPSender{
		cfg:  cfg,
		from: mail.Address{Name: cfg.FromName, Address: cfg.FromAddress},
	}
}

func (s *SMTPSender) Send(ctx context.Context, email Email) error {
	msg, err := buildMessage(s.from, email, s.cfg.ReplyTo, time.Now())
	if err != nil {
		return fmt.Errorf("failed to build message: %w", err)
	}

	conn, err := s.dial(ctx)
	if err != nil {
		return fmt.Errorf("failed to dial SMTP server: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(s.cfg.Timeout))
	}

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		conn.Close()
		return classifySMTPError("greeting", err)
	}
	defer client.Close()

	if !s.cfg.ImplicitTLS {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: s.cfg.Host}); err != nil {
				return fmt.Errorf("failed to start TLS: %w", err)
			}
		}
	}

	if s.cfg.Username != "" {
		auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return classifySMTPError("auth", err)
		}
	}

	if err := client.Mail(s.from.Address); err != nil {
		return classifySMTPError("mail from", err)
	}
	if err := client.Rcpt(email.To); err != nil {
		return classifySMTPError("rcpt to", err)
	}

	w, err := client.Data()
	if err != nil {
		return classifySMTPError("data", err)
	}
	if _, err := w.Write(msg); err != nil {
		w.Close()
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return classifySMTPError("data", err)
	}

	// The message is accepted once DATA closes; QUIT failures are ignored.
	_ = client.Quit()
	return nil
}

func (s *SMTPSender) dial(ctx context.Context) (net.Conn, error) {
	addr := net.JoinHostPort(s.cfg.Host, s.cfg.Port)
	dialer := &net.Dialer{Timeout: s.cfg.Timeout}
	if s.cfg.ImplicitTLS {
		tlsDialer := &tls.Dialer{NetDialer: dialer, Config: &tls.Config{ServerName: s.cfg.Host}}
		return tlsDialer.DialContext(ctx, "tcp", addr)
	}
	return dialer.DialContext(ctx, "tcp", addr)
}

// classifySMTPError turns server replies into SendErrors, preferring the
// enhanced status code ("5.4.6") over the basic reply code.
func classifySMTPError(stage string, err error) error {
	var protoErr *textproto.Error
	if !errors.As(err, &protoErr) {
		return fmt.Errorf("smtp %s: %w", stage, err)
	}

	code := strconv.Itoa(protoErr.Code)
	if enhanced := enhancedStatus.FindString(protoErr.Msg); enhanced != "" {
		code = enhanced
	}
	return &SendError{
		Provider: "smtp",
		Code:     code,
		Message:  fmt.Sprintf("%s: %d %s", stage, protoErr.Code, protoErr.Msg),
		Err:      err,
	}
}

// buildMessage renders a multipart/related message: the HTML body followed
// by its attachments.
func buildMessage(from mail.Address, email Email, replyTo string, now time.Time) ([]byte, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	htmlHeader := textproto.MIMEHeader{}
	htmlHeader.Set("Content-Type", "text/html; charset=UTF-8")
	htmlHeader.Set("Content-Transfer-Encoding", "quoted-printable")
	part, err := mw.CreatePart(htmlHeader)
	if err != nil {
		return nil, err
	}
	qp := quotedprintable.NewWriter(part)
	if _, err := io.WriteString(qp, email.HTMLBody); err != nil {
		return nil, err
	}
	if err := qp.Close(); err != nil {
		return nil, err
	}

	for _, att := range email.Attachments {
		contentType := att.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		disposition := "attachment"
		header := textproto.MIMEHeader{}
		if att.ContentID != "" {
			disposition = "inline"
			header.Set("Content-ID", "<"+att.ContentID+">")
		}
		header.Set("Content-Type", mime.FormatMediaType(contentType, map[string]string{"name": att.Filename}))
		header.Set("Content-Transfer-Encoding", "base64")
		header.Set("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": att.Filename}))

		part, err := mw.CreatePart(header)
		if err != nil {
			return nil, err
		}
		if err := writeBase64Lines(part, att.Content); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var msg bytes.Buffer
	writeHeader := func(k, v string) {
		msg.WriteString(k + ": " + v + "\r\n")
	}
	writeHeader("From", from.String())
	writeHeader("To", email.To)
	if replyTo != "" {
		writeHeader("Reply-To", replyTo)
	}
	writeHeader("Subject", mime.QEncoding.Encode("utf-8", email.Subject))
	writeHeader("Date", now.Format(time.RFC1123Z))
	writeHeader("MIME-Version", "1.0")
	writeHeader("Content-Type", fmt.Sprintf("multipart/related; boundary=%q", mw.Boundary()))
	msg.WriteString("\r\n")
	msg.Write(body.Bytes())

	return msg.Bytes(), nil
}

func writeBase64Lines(w io.Writer, data []byte) error {
	encoded := base64.StdEncoding.EncodeToString(data)
	for len(encoded) > 76 {
		if _, err := io.WriteString(w, encoded[:76]+"\r\n"); err != nil {
			return err
		}
		encoded = encoded[76:]
	}
	_, err := io.WriteString(w, encoded+"\r\n")
	return err
}
