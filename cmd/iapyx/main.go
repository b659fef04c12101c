// iapyx is a command line wallet client for the voting ledger: it reads
// wallet secrets (QR codes, key files, mnemonics), inspects proposals and
// casts votes through a remote node.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dkijania/vit-testing/internal/client"
	"github.com/dkijania/vit-testing/internal/config"
)

var rootCmd = &cobra.Command{
	Use:           "iapyx",
	Short:         "Wallet client for the voting ledger",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var backendFlag string

func init() {
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "backend node address (defaults to IAPYX_BACKEND_ADDRESS)")
}

func main() {
	if err := config.Init(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger() *zap.Logger {
	if config.GetDebug() {
		log, err := zap.NewDevelopment()
		if err == nil {
			return log
		}
	}
	return zap.NewNop()
}

func newBackend() *client.WalletBackend {
	address := backendFlag
	if address == "" {
		address = config.GetBackendAddress()
	}
	backend := client.NewWalletBackend(address, config.GetRequestTimeout())
	backend.EnableLogs(newLogger())
	return backend
}
