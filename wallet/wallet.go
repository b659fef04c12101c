// Package wallet implements the in-process voting wallet: an ed25519 account
// identity with a locally cached on-chain state and a record of the vote
// fragments it has produced.
package wallet

import (
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"
)

// Wallet is a single voting identity. It caches the last known on-chain
// (value, counter) pair and tracks the fragments it has signed.
//
// A Wallet carries no internal locking: it is owned by exactly one
// controller and all mutation goes through that owner's single-threaded
// API. Moving a whole Wallet between goroutines is safe as long as the
// sending side stops touching it.
type Wallet struct {
	key ed25519.PrivateKey

	value    uint64
	counter  uint32
	hasState bool

	pending   map[FragmentID]struct{}
	confirmed map[FragmentID]struct{}
}

// SigningError reports that the wallet could not produce a signed
// transaction in its current state.
type SigningError struct {
	Reason string
}

func (e *SigningError) Error() string {
	return "cannot sign: " + e.Reason
}

// IsSigningError checks if error is SigningError
func IsSigningError(err error) bool {
	var target *SigningError
	return errors.As(err, &target)
}

func newWallet(key ed25519.PrivateKey) *Wallet {
	return &Wallet{
		key:       key,
		pending:   make(map[FragmentID]struct{}),
		confirmed: make(map[FragmentID]struct{}),
	}
}

// ID returns the account identifier: the hex-encoded public key, as the
// backend expects it in account URLs.
func (w *Wallet) ID() string {
	return hex.EncodeToString(w.key.Public().(ed25519.PublicKey))
}

// PublicKey returns the account public key.
func (w *Wallet) PublicKey() ed25519.PublicKey {
	return w.key.Public().(ed25519.PublicKey)
}

// SetState overwrites the cached (value, counter) pair with a fresh
// snapshot. Only the refresh path and batch building call this.
func (w *Wallet) SetState(value uint64, counter uint32) {
	w.value = value
	w.counter = counter
	w.hasState = true
}

// Value returns the cached account balance.
func (w *Wallet) Value() uint64 {
	return w.value
}

// Counter returns the cached spending counter.
func (w *Wallet) Counter() uint32 {
	return w.counter
}

// Vote builds and signs one vote fragment from the cached state. It does
// not advance the cached counter; the caller decides when the counter
// moves (refresh for single votes, SetState per item for batches).
func (w *Wallet) Vote(votePlanID string, proposalIndex, choice uint8) (*Transaction, error) {
	if !w.hasState {
		return nil, &SigningError{Reason: "wallet has no account state, refresh it first"}
	}

	raw, err := hex.DecodeString(votePlanID)
	if err != nil {
		return nil, &SigningError{Reason: fmt.Sprintf("malformed vote plan id %q", votePlanID)}
	}
	if len(raw) != votePlanLen {
		return nil, &SigningError{Reason: fmt.Sprintf("vote plan id must be %d bytes, got %d", votePlanLen, len(raw))}
	}

	var votePlan [votePlanLen]byte
	copy(votePlan[:], raw)
	var account [accountLen]byte
	copy(account[:], w.PublicKey())

	body := encodeVoteCastBody(votePlan, proposalIndex, choice, account, w.value, w.counter)
	signature := ed25519.Sign(w.key, body)

	tx := newTransaction(append(body, signature...))
	w.pending[tx.ID] = struct{}{}
	return tx, nil
}

// ConfirmTransaction marks one of this wallet's pending fragments as
// confirmed. Unknown ids and already-confirmed ids are no-ops.
func (w *Wallet) ConfirmTransaction(id FragmentID) {
	if _, ok := w.pending[id]; !ok {
		return
	}
	delete(w.pending, id)
	w.confirmed[id] = struct{}{}
}

// ConfirmAllTransactions marks every pending fragment of this wallet as
// confirmed.
func (w *Wallet) ConfirmAllTransactions() {
	for id := range w.pending {
		w.confirmed[id] = struct{}{}
	}
	w.pending = make(map[FragmentID]struct{})
}

// PendingCount returns the number of produced but unconfirmed fragments.
func (w *Wallet) PendingCount() int {
	return len(w.pending)
}

// IsConfirmed reports whether this wallet has seen the fragment confirmed.
func (w *Wallet) IsConfirmed(id FragmentID) bool {
	_, ok := w.confirmed[id]
	return ok
}
