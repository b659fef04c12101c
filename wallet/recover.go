package wallet

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/tyler-smith/go-bip39"
)

// AccountKeyLen is the expected length of a raw account secret key.
const AccountKeyLen = ed25519.PrivateKeySize

// ErrInvalidKeyLength is returned for raw account keys that are not
// exactly AccountKeyLen bytes.
var ErrInvalidKeyLength = fmt.Errorf("account key must be %d bytes", AccountKeyLen)

// Generate creates a wallet with a fresh random keypair.
func Generate() (*Wallet, error) {
	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate account key: %w", err)
	}
	return newWallet(key), nil
}

// Recover derives a wallet from a mnemonic word list and a passphrase.
// The same phrase and passphrase always yield the same account.
func Recover(mnemonic string, passphrase []byte) (*Wallet, error) {
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, string(passphrase))
	if err != nil {
		return nil, fmt.Errorf("failed to recover from mnemonic: %w", err)
	}
	key := ed25519.NewKeyFromSeed(seed[:ed25519.SeedSize])
	return newWallet(key), nil
}

// RecoverFromAccount restores a wallet from a raw 64-byte account key.
// The embedded public half must be consistent with the secret half.
func RecoverFromAccount(key []byte) (*Wallet, error) {
	if len(key) != AccountKeyLen {
		return nil, ErrInvalidKeyLength
	}

	priv := ed25519.PrivateKey(append([]byte(nil), key...))
	derived := ed25519.NewKeyFromSeed(priv.Seed())
	if subtle.ConstantTimeCompare(derived, priv) != 1 {
		return nil, errors.New("account key public half does not match its secret half")
	}

	return newWallet(priv), nil
}

// Secret returns the raw 64-byte account key, e.g. for QR encoding.
// Caller should zero the returned slice after use.
func (w *Wallet) Secret() []byte {
	return append([]byte(nil), w.key...)
}
