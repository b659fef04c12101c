package controller

import (
	"github.com/dkijania/vit-testing/wallet"
)

// SubmitMode selects how a batch reaches the backend.
type SubmitMode int

const (
	// SubmitAtOnce sends the whole batch in one backend call; the node
	// accepts or rejects it as a set.
	SubmitAtOnce SubmitMode = iota
	// SubmitIndividually sends fragments one by one; a mid-batch failure
	// leaves earlier fragments accepted and the caller reconciles.
	SubmitIndividually
)

// SubmitOne submits a single built transaction.
func (c *MultiController) SubmitOne(tx *wallet.Transaction) (wallet.FragmentID, error) {
	id, err := c.backend.SendFragment(tx.Bytes)
	if err != nil {
		return wallet.FragmentID{}, &Error{Op: "submit fragment " + tx.ID.String(), Err: err}
	}
	return id, nil
}

// SubmitBatch submits built transactions in the given mode, preserving
// their order. In individual mode the ids accepted before a failure are
// returned together with the error.
func (c *MultiController) SubmitBatch(txs []*wallet.Transaction, mode SubmitMode) ([]wallet.FragmentID, error) {
	payloads := make([][]byte, 0, len(txs))
	for _, tx := range txs {
		payloads = append(payloads, tx.Bytes)
	}
	return c.backend.SendFragmentsAtOnce(payloads, mode == SubmitAtOnce)
}

// ConfirmTransaction marks the fragment confirmed in every wallet that
// knows it. Fragment confirmation is a backend-wide event, so this is a
// broadcast, not addressed to one wallet. Idempotent.
func (c *MultiController) ConfirmTransaction(id wallet.FragmentID) {
	c.pool.Each(func(w *wallet.Wallet) {
		w.ConfirmTransaction(id)
	})
}

// ConfirmAllTransactions marks every tracked pending fragment of every
// wallet as confirmed.
func (c *MultiController) ConfirmAllTransactions() {
	c.pool.Each(func(w *wallet.Wallet) {
		w.ConfirmAllTransactions()
	})
}
