package qr

import (
	"encoding/hex"
	"fmt"
	"os"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/dkijania/vit-testing/internal/crypto"
)

// EncodeSecret seals a raw wallet secret with the PIN and renders it as a
// QR code PNG. The QR text is the hex form of the sealed payload.
func EncodeSecret(secret, pin []byte, size int) ([]byte, error) {
	payload, err := crypto.EncryptSecret(secret, pin)
	if err != nil {
		return nil, fmt.Errorf("failed to seal secret: %w", err)
	}

	code, err := qrcode.New(hex.EncodeToString(payload), qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("failed to create QR code: %w", err)
	}

	png, err := code.PNG(size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PNG: %w", err)
	}
	return png, nil
}

// WriteSecret writes the QR code PNG for a sealed secret to path.
func WriteSecret(path string, secret, pin []byte, size int) error {
	png, err := EncodeSecret(secret, pin, size)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, png, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
