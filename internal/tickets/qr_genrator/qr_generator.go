package qr

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"
)

const dataURIPrefix = "data:image/png;base64,"

type QRGenerator struct {
	size  int
	level qrcode.RecoveryLevel
}

func NewQRGenerator(size int) *QRGenerator {
	if size <= 0 {
		size = 256
	}
	return &QRGenerator{size: size, level: qrcode.Medium}
}

// Generate encodes the ticket code as a PNG QR image.
func (q *QRGenerator) Generate(content string) ([]byte, error) {
	if content == "" {
		return nil, errors.New("qr content is empty")
	}
	png, err := qrcode.Encode(content, q.level, q.size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode qr: %w", err)
	}
	return png, nil
}

// DataURI wraps PNG bytes as an inline image source.
func DataURI(png []byte) string {
	return dataURIPrefix + base64.StdEncoding.EncodeToString(png)
}

var imageEncodings = []*base64.Encoding{
	base64.StdEncoding,
	base64.RawStdEncoding,
	base64.URLEncoding,
	base64.RawURLEncoding,
}

// DecodeImage accepts a caller-supplied QR either as a data URI or as raw
// base64, padded or not, standard or URL-safe, and returns the PNG bytes.
func DecodeImage(src string) ([]byte, error) {
	payload := src
	if idx := strings.Index(src, "base64,"); idx >= 0 {
		payload = src[idx+len("base64,"):]
	}
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, errors.New("invalid qr image: empty payload")
	}

	var err error
	for _, enc := range imageEncodings {
		var png []byte
		if png, err = enc.DecodeString(payload); err == nil {
			return png, nil
		}
	}
	return nil, fmt.Errorf("invalid qr image: %w", err)
}
