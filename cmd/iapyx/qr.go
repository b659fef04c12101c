package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dkijania/vit-testing/internal/qr"
	"github.com/dkijania/vit-testing/wallet"
)

// qrCmd represents the qr subcommand
var qrCmd = &cobra.Command{
	Use:   "qr",
	Short: "Work with PIN-protected wallet QR codes",
}

var (
	qrPin         string
	qrPinFromFile bool
	qrOutput      string
	qrSize        int
)

func pinReader() qr.PinReader {
	if qrPinFromFile {
		return qr.PinReader{Mode: qr.PinFromFileName}
	}
	if qrPin != "" {
		return qr.PinReader{Mode: qr.PinGlobal, GlobalPin: qrPin}
	}
	return qr.PinReader{Mode: qr.PinInteractive}
}

// verifyQrCmd checks that each QR file can be decrypted with its PIN.
var verifyQrCmd = &cobra.Command{
	Use:   "verify [qr files]",
	Short: "Check that QR secrets decrypt with the given pin",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		reader := qr.NewSecretReader(pinReader())
		for _, path := range args {
			secret, err := reader.ReadSecret(path)
			if err != nil {
				return err
			}
			clear(secret)
			fmt.Printf("%s: ok\n", path)
		}
		return nil
	},
}

// addressQrCmd prints the account id recovered from each QR file.
var addressQrCmd = &cobra.Command{
	Use:   "address [qr files]",
	Short: "Print the account id encoded in QR secrets",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		reader := qr.NewSecretReader(pinReader())
		for _, path := range args {
			secret, err := reader.ReadSecret(path)
			if err != nil {
				return err
			}
			w, err := wallet.RecoverFromAccount(secret)
			clear(secret)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			fmt.Printf("%s: %s\n", path, w.ID())
		}
		return nil
	},
}

// encodeQrCmd seals a bech32 secret key file into a QR code PNG.
var encodeQrCmd = &cobra.Command{
	Use:   "encode [secret key file]",
	Short: "Seal a bech32 secret key into a PIN-protected QR code",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		if qrPin == "" {
			return fmt.Errorf("--pin is required for encode")
		}
		_, key, err := qr.ReadBech32Key(args[0])
		if err != nil {
			return err
		}
		defer clear(key)

		if err := qr.WriteSecret(qrOutput, key, []byte(qrPin), qrSize); err != nil {
			return err
		}

		w, err := wallet.RecoverFromAccount(key)
		if err != nil {
			return err
		}
		fmt.Printf("%s: account %s\n", qrOutput, w.ID())
		return nil
	},
}

// secretQrCmd prints the raw secret in hex, for piping into other tools.
var secretQrCmd = &cobra.Command{
	Use:   "secret [qr file]",
	Short: "Print the raw secret key from a QR code",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		reader := qr.NewSecretReader(pinReader())
		secret, err := reader.ReadSecret(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, hex.EncodeToString(secret))
		clear(secret)
		return nil
	},
}

func init() {
	qrCmd.PersistentFlags().StringVar(&qrPin, "pin", "", "pin protecting the QR secrets")
	qrCmd.PersistentFlags().BoolVar(&qrPinFromFile, "pin-from-filename", false, "read the pin from the _<pin> file name suffix")
	encodeQrCmd.Flags().StringVar(&qrOutput, "output", "wallet.png", "output PNG path")
	encodeQrCmd.Flags().IntVar(&qrSize, "size", 256, "QR code image size in pixels")

	qrCmd.AddCommand(verifyQrCmd)
	qrCmd.AddCommand(addressQrCmd)
	qrCmd.AddCommand(encodeQrCmd)
	qrCmd.AddCommand(secretQrCmd)
	rootCmd.AddCommand(qrCmd)
}
