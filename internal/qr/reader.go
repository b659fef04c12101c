package qr

import (
	"encoding/hex"
	"fmt"
	"image"
	_ "image/png"
	"io"
	"os"

	"github.com/makiuchi-d/gozxing"
	zxqrcode "github.com/makiuchi-d/gozxing/qrcode"

	"github.com/dkijania/vit-testing/internal/crypto"
)

// SecretReader reads PIN-protected wallet secrets out of QR code images.
type SecretReader struct {
	Pin PinReader
}

// NewSecretReader creates a reader using the given PIN policy.
func NewSecretReader(pin PinReader) *SecretReader {
	return &SecretReader{Pin: pin}
}

// DecodeImage extracts the QR text content from a PNG image.
func DecodeImage(r io.Reader) (string, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("failed to binarize image: %w", err)
	}

	result, err := zxqrcode.NewQRCodeReader().Decode(bmp, nil)
	if err != nil {
		return "", fmt.Errorf("no QR code found: %w", err)
	}

	return result.GetText(), nil
}

// ReadSecret reads one QR file and decrypts its payload with the PIN the
// configured policy yields for that file.
func (r *SecretReader) ReadSecret(path string) ([]byte, error) {
	pin, err := r.Pin.ReadPin(path)
	if err != nil {
		return nil, err
	}
	defer clear(pin)

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	text, err := DecodeImage(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	payload, err := hex.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("%s: QR content is not a hex payload: %w", path, err)
	}

	secret, err := crypto.DecryptSecret(payload, pin)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return secret, nil
}

// ReadSecrets reads many QR files in order. Any single failure fails the
// whole call: no partial list is returned.
func (r *SecretReader) ReadSecrets(paths []string) ([][]byte, error) {
	secrets := make([][]byte, 0, len(paths))
	for _, path := range paths {
		secret, err := r.ReadSecret(path)
		if err != nil {
			return nil, err
		}
		secrets = append(secrets, secret)
	}
	return secrets, nil
}
