// Package utils provides helper functionality shared across components,
// currently connection profile URIs and their QR code rendering.
package utils

import (
	"encoding/base64"
	"fmt"
	"net/url"

	"github.com/skip2/go-qrcode"
)

// ProfileURI builds the connection profile handed to the client app. The
// external VPN daemon consumes this URI to bring the actual tunnel up; this
// backend only describes which server was selected.
func ProfileURI(serverID, name, country string) string {
	query := url.Values{}
	query.Set("server", serverID)
	query.Set("name", name)
	query.Set("country", country)
	return "matreshka://connect?" + query.Encode()
}

// QRCodeGenerator renders connection profiles as QR codes so the mobile app
// can be configured by scanning instead of typing.
type QRCodeGenerator struct {
	Size          int                  // Pixel dimensions of the generated image
	RecoveryLevel qrcode.RecoveryLevel // Error correction level
}

// NewQRCodeGenerator creates a QR code generator with defaults suitable for
// phone-screen scanning.
// Returns a pointer to the newly created QRCodeGenerator.
func NewQRCodeGenerator() *QRCodeGenerator {
	return &QRCodeGenerator{
		Size:          256,
		RecoveryLevel: qrcode.Medium,
	}
}

// GeneratePNG renders the content as PNG image data.
// Returns the PNG bytes or an error if generation fails.
func (qr *QRCodeGenerator) GeneratePNG(content string) ([]byte, error) {
	pngData, err := qrcode.Encode(content, qr.RecoveryLevel, qr.Size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code PNG: %w", err)
	}
	return pngData, nil
}

// GenerateBase64 renders the content as a base64 data URI, ready to embed in
// a JSON response or an <img> tag without a separate image endpoint.
// Returns the data URI or an error if generation fails.
func (qr *QRCodeGenerator) GenerateBase64(content string) (string, error) {
	pngData, err := qr.GeneratePNG(content)
	if err != nil {
		return "", fmt.Errorf("failed to generate PNG for base64 encoding: %w", err)
	}

	encoded := base64.StdEncoding.EncodeToString(pngData)
	return fmt.Sprintf("data:image/png;base64,%s", encoded), nil
}
