// Package qr turns external secret sources (QR-encoded PIN-protected
// payloads, bech32 secret key files) into raw wallet secrets.
package qr

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"
)

// PinReadMode selects how the PIN for a QR-encoded secret is obtained.
type PinReadMode int

const (
	// PinGlobal uses one caller-supplied PIN for every source.
	PinGlobal PinReadMode = iota
	// PinFromFileName takes the PIN from the source file name, after the
	// last '_' (e.g. wallet_1234.png).
	PinFromFileName
	// PinInteractive prompts on the terminal for each source.
	PinInteractive
)

// PinReadError is returned when a required PIN cannot be obtained. It is
// distinct from decryption failures: the PIN never reached the cipher.
type PinReadError struct {
	Source string
	Reason string
}

func (e *PinReadError) Error() string {
	return fmt.Sprintf("cannot read pin for %s: %s", e.Source, e.Reason)
}

// IsPinReadError checks if error is PinReadError
func IsPinReadError(err error) bool {
	var target *PinReadError
	return errors.As(err, &target)
}

// PinReader resolves the PIN for a given secret source according to its mode.
type PinReader struct {
	Mode      PinReadMode
	GlobalPin string
}

// ReadPin returns the PIN to use for source.
func (r PinReader) ReadPin(source string) ([]byte, error) {
	switch r.Mode {
	case PinGlobal:
		if r.GlobalPin == "" {
			return nil, &PinReadError{Source: source, Reason: "global pin is empty"}
		}
		return []byte(r.GlobalPin), nil

	case PinFromFileName:
		name := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
		idx := strings.LastIndex(name, "_")
		if idx < 0 || idx == len(name)-1 {
			return nil, &PinReadError{Source: source, Reason: "file name carries no _<pin> suffix"}
		}
		return []byte(name[idx+1:]), nil

	case PinInteractive:
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return nil, &PinReadError{Source: source, Reason: "stdin is not a terminal"}
		}
		fmt.Fprintf(os.Stderr, "Enter pin for %s: ", source)
		defer fmt.Fprintln(os.Stderr)
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return nil, &PinReadError{Source: source, Reason: err.Error()}
		}
		if len(raw) == 0 {
			return nil, &PinReadError{Source: source, Reason: "empty pin"}
		}
		return raw, nil

	default:
		return nil, &PinReadError{Source: source, Reason: fmt.Sprintf("unknown pin read mode %d", r.Mode)}
	}
}
