package controller

import (
	"fmt"

	"github.com/dkijania/vit-testing/internal/client"
	"github.com/dkijania/vit-testing/internal/qr"
	"github.com/dkijania/vit-testing/wallet"
)

// Bulk constructors. All of them are fail-fast: one bad input fails the
// whole call and no partial controller is returned.

// Generate creates a controller over count fresh random wallets.
func Generate(backend *client.WalletBackend, count int) (*MultiController, error) {
	wallets := make([]*wallet.Wallet, 0, count)
	for i := 0; i < count; i++ {
		w, err := wallet.Generate()
		if err != nil {
			return nil, &Error{Op: fmt.Sprintf("generate wallet %d", i), Err: err}
		}
		wallets = append(wallets, w)
	}
	return NewMultiController(backend, wallets)
}

// Recover restores one wallet per mnemonic phrase, in input order, all
// sharing the same passphrase.
func Recover(backend *client.WalletBackend, mnemonics []string, passphrase []byte) (*MultiController, error) {
	wallets := make([]*wallet.Wallet, 0, len(mnemonics))
	for i, mnemonic := range mnemonics {
		w, err := wallet.Recover(mnemonic, passphrase)
		if err != nil {
			return nil, &Error{Op: fmt.Sprintf("recover wallet %d", i), Err: err}
		}
		wallets = append(wallets, w)
	}
	return NewMultiController(backend, wallets)
}

// RecoverFromQRs restores one wallet per QR code image, reading each PIN
// according to the supplied policy.
func RecoverFromQRs(backend *client.WalletBackend, qrs []string, pin qr.PinReader) (*MultiController, error) {
	secrets, err := qr.NewSecretReader(pin).ReadSecrets(qrs)
	if err != nil {
		return nil, &Error{Op: "read QR secrets", Err: err}
	}

	wallets := make([]*wallet.Wallet, 0, len(secrets))
	for i, secret := range secrets {
		w, err := wallet.RecoverFromAccount(secret)
		clear(secret)
		if err != nil {
			return nil, &Error{Op: "restore wallet from " + qrs[i], Err: err}
		}
		wallets = append(wallets, w)
	}
	return NewMultiController(backend, wallets)
}

// RecoverFromSks restores one wallet per bech32 secret key file.
func RecoverFromSks(backend *client.WalletBackend, paths []string) (*MultiController, error) {
	wallets := make([]*wallet.Wallet, 0, len(paths))
	for _, path := range paths {
		_, key, err := qr.ReadBech32Key(path)
		if err != nil {
			return nil, &Error{Op: "read secret key file", Err: err}
		}
		w, err := wallet.RecoverFromAccount(key)
		clear(key)
		if err != nil {
			return nil, &Error{Op: "restore wallet from " + path, Err: err}
		}
		wallets = append(wallets, w)
	}
	return NewMultiController(backend, wallets)
}
