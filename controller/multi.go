// Package controller drives a pool of voting wallets against one remote
// ledger backend: it keeps each wallet's cached account state in sync,
// builds signed vote fragments singly or in counter-consistent batches,
// and tracks their confirmation.
package controller

import (
	"fmt"

	"github.com/dkijania/vit-testing/internal/client"
	"github.com/dkijania/vit-testing/internal/model"
	"github.com/dkijania/vit-testing/wallet"
)

// VoteInput pairs a proposal with the choice to cast for it.
type VoteInput struct {
	Proposal model.Proposal
	Choice   uint8
}

// MultiController owns a wallet pool and a backend client. It is
// single-threaded: callers serialize access, wallets are never shared.
type MultiController struct {
	backend  *client.WalletBackend
	pool     *Pool
	settings model.Settings
}

// NewMultiController wires wallets to a backend. Chain settings are
// fetched once here and reused for every fragment built afterwards.
func NewMultiController(backend *client.WalletBackend, wallets []*wallet.Wallet) (*MultiController, error) {
	settings, err := backend.Settings()
	if err != nil {
		return nil, &Error{Op: "fetch backend settings", Err: err}
	}
	return &MultiController{
		backend:  backend,
		pool:     NewPool(wallets),
		settings: *settings,
	}, nil
}

// Settings returns the chain settings fetched at construction.
func (c *MultiController) Settings() model.Settings {
	return c.settings
}

// WalletCount returns the number of wallets under control.
func (c *MultiController) WalletCount() int {
	return c.pool.Count()
}

// Wallet returns the wallet at index. Panics when index is out of range.
func (c *MultiController) Wallet(index int) *wallet.Wallet {
	return c.pool.Get(index)
}

// Proposals lists the proposals currently open for voting.
func (c *MultiController) Proposals() ([]model.Proposal, error) {
	return c.backend.Proposals()
}

// RefreshWallet overwrites the wallet's cached (value, counter) pair with
// a fresh snapshot from the backend. An unknown account is reported as
// client.UnknownAccountError; callers treat it as "not yet converted".
func (c *MultiController) RefreshWallet(index int) error {
	w := c.pool.Get(index)
	state, err := c.backend.AccountState(w.ID())
	if err != nil {
		return &Error{Op: fmt.Sprintf("refresh wallet %d", index), Err: err}
	}
	w.SetState(state.Value, state.Counter)
	return nil
}

// IsConverted reports whether the wallet's account exists on chain.
// A missing account is a normal false, not an error.
func (c *MultiController) IsConverted(index int) (bool, error) {
	w := c.pool.Get(index)
	exists, err := c.backend.AccountExists(w.ID())
	if err != nil {
		return false, &Error{Op: fmt.Sprintf("check wallet %d conversion", index), Err: err}
	}
	return exists, nil
}

// Vote casts a single vote from the wallet's currently cached state and
// submits it. The cached counter is left untouched; refresh the wallet
// before the next single vote.
func (c *MultiController) Vote(index int, proposal model.Proposal, choice uint8) (wallet.FragmentID, error) {
	w := c.pool.Get(index)
	tx, err := w.Vote(proposal.ChainVoteplanID, proposal.ChainProposalIndex, choice)
	if err != nil {
		return wallet.FragmentID{}, &Error{Op: fmt.Sprintf("build vote for wallet %d", index), Err: err}
	}
	return c.SubmitOne(tx)
}

// VotesBatch builds one signed fragment per input, all against the
// account state fetched at batch start: the first fragment uses the
// remote counter, each following one the next value, so the batch forms
// a gapless run as long as it is submitted before anything else lands on
// that account.
//
// The returned fragments and their ids are in reverse input order
// (newest counter first). Downstream submission relies on this order;
// do not change it.
func (c *MultiController) VotesBatch(index int, useV1 bool, votes []VoteInput) ([]wallet.FragmentID, error) {
	w := c.pool.Get(index)

	state, err := c.backend.AccountState(w.ID())
	if err != nil {
		return nil, &Error{Op: fmt.Sprintf("fetch state for wallet %d", index), Err: err}
	}

	counter := state.Counter
	txs := make([]*wallet.Transaction, 0, len(votes))
	for i, vote := range votes {
		w.SetState(state.Value, counter)
		tx, err := w.Vote(vote.Proposal.ChainVoteplanID, vote.Proposal.ChainProposalIndex, vote.Choice)
		if err != nil {
			return nil, &Error{Op: fmt.Sprintf("build vote %d for wallet %d", i, index), Err: err}
		}
		txs = append(txs, tx)
		counter++
	}

	for i, j := 0, len(txs)-1; i < j; i, j = i+1, j-1 {
		txs[i], txs[j] = txs[j], txs[i]
	}

	mode := SubmitIndividually
	if useV1 {
		mode = SubmitAtOnce
	}
	return c.SubmitBatch(txs, mode)
}
