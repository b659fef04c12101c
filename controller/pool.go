package controller

import (
	"fmt"

	"github.com/dkijania/vit-testing/wallet"
)

// Pool owns an ordered set of wallet identities addressed by stable index.
// It is an in-process registry: passing an out-of-range index is a
// programming error and panics instead of returning an error.
type Pool struct {
	wallets []*wallet.Wallet
}

// NewPool creates a pool owning the given wallets.
func NewPool(wallets []*wallet.Wallet) *Pool {
	return &Pool{wallets: wallets}
}

// Count returns the number of wallets in the pool.
func (p *Pool) Count() int {
	return len(p.wallets)
}

// Get returns the wallet at index. Panics when index is out of range.
func (p *Pool) Get(index int) *wallet.Wallet {
	if index < 0 || index >= len(p.wallets) {
		panic(fmt.Sprintf("wallet index %d out of range [0, %d)", index, len(p.wallets)))
	}
	return p.wallets[index]
}

// Each runs fn over every wallet in index order.
func (p *Pool) Each(fn func(*wallet.Wallet)) {
	for _, w := range p.wallets {
		fn(w)
	}
}
