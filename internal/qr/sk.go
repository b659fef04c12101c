package qr

import (
	"fmt"
	"os"
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"
)

// ReadBech32Key reads a bech32-encoded secret key file and returns the
// human-readable prefix and the raw key bytes.
func ReadBech32Key(path string) (string, []byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	// Keys are longer than the 90-character bech32 checksum limit, so the
	// no-limit decoder is required here.
	hrp, data, err := bech32.DecodeNoLimit(strings.TrimSpace(string(raw)))
	if err != nil {
		return "", nil, fmt.Errorf("%s: malformed bech32: %w", path, err)
	}

	key, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return "", nil, fmt.Errorf("%s: invalid bech32 data: %w", path, err)
	}

	return hrp, key, nil
}

// EncodeBech32Key renders raw key bytes in bech32 with the given prefix.
// Used by tooling and tests to produce key files this package can read back.
func EncodeBech32Key(hrp string, key []byte) (string, error) {
	data, err := bech32.ConvertBits(key, 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("failed to regroup key bits: %w", err)
	}
	encoded, err := bech32.Encode(hrp, data)
	if err != nil {
		return "", fmt.Errorf("failed to encode key: %w", err)
	}
	return encoded, nil
}
