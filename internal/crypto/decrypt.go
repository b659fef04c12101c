package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"

	"golang.org/x/crypto/scrypt"
)

// ErrInvalidPin is returned when a sealed payload cannot be opened,
// which almost always means the PIN is wrong.
var ErrInvalidPin = errors.New("invalid pin or corrupted payload")

// DecryptSecret opens a payload produced by EncryptSecret.
// pin must be []byte for security (caller should zero it after use)
func DecryptSecret(payload, pin []byte) ([]byte, error) {
	if len(payload) <= saltLen+nonceLen {
		return nil, fmt.Errorf("payload too short: %d bytes", len(payload))
	}

	salt := payload[:saltLen]
	nonce := payload[saltLen : saltLen+nonceLen]
	ciphertext := payload[saltLen+nonceLen:]

	key, err := scrypt.Key(pin, salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	secret, err := aesGCM.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrInvalidPin
	}

	return secret, nil
}
