package controller

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/blake2b"

	"github.com/dkijania/vit-testing/internal/client"
	"github.com/dkijania/vit-testing/internal/model"
	"github.com/dkijania/vit-testing/internal/qr"
	"github.com/dkijania/vit-testing/wallet"
)

const (
	mnemonicAlice = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"
	mnemonicBob   = "legal winner thank year wave sausage worth useful legal winner thank yellow"
	votePlanA     = "36ad42885189a0ac3438cdb57bc8ac7f6542e05a59d1f2e4d1d38194c9d4ac7b"
)

// fakeNode is a minimal voting node for controller tests.
type fakeNode struct {
	mu           sync.Mutex
	accounts     map[string]model.AccountState
	proposals    []model.Proposal
	received     [][]byte
	v1BatchCalls int
}

func (n *fakeNode) record(fragment []byte) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.received = append(n.received, fragment)
}

func (n *fakeNode) fragments() [][]byte {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([][]byte(nil), n.received...)
}

func (n *fakeNode) setAccount(id string, state model.AccountState) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.accounts[id] = state
}

func (n *fakeNode) batchCalls() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.v1BatchCalls
}

func newFakeNode() *fakeNode {
	return &fakeNode{accounts: map[string]model.AccountState{}}
}

func (n *fakeNode) fragmentID(fragment []byte) string {
	sum := blake2b.Sum256(fragment)
	return hex.EncodeToString(sum[:])
}

func (n *fakeNode) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v0/settings", func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(model.Settings{
			Block0Hash: "adbd397e0f2a352cb53e14a1e2fae7d6ddbf2a8e7c8a9cabb5f265a0a0e27fde",
			Fees:       model.Fees{Constant: 1, Coefficient: 1, Certificate: 1},
		})
	})
	mux.HandleFunc("/api/v0/account/", func(w http.ResponseWriter, r *http.Request) {
		n.mu.Lock()
		state, ok := n.accounts[r.URL.Path[len("/api/v0/account/"):]]
		n.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(state)
	})
	mux.HandleFunc("/api/v0/proposals", func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(n.proposals)
	})
	mux.HandleFunc("/api/v0/message", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		n.record(body)
		fmt.Fprint(w, n.fragmentID(body))
	})
	mux.HandleFunc("/api/v1/fragments", func(w http.ResponseWriter, r *http.Request) {
		n.mu.Lock()
		n.v1BatchCalls++
		n.mu.Unlock()
		var batch model.FragmentsBatchRequest
		if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		resp := model.FragmentsBatchResponse{}
		for _, raw := range batch.Fragments {
			fragment, _ := hex.DecodeString(raw)
			n.record(fragment)
			resp.FragmentIDs = append(resp.FragmentIDs, n.fragmentID(fragment))
		}
		json.NewEncoder(w).Encode(resp)
	})
	return mux
}

func (n *fakeNode) backend(t *testing.T) *client.WalletBackend {
	t.Helper()
	server := httptest.NewServer(n.handler())
	t.Cleanup(server.Close)
	return client.NewWalletBackend(server.URL, 5*time.Second)
}

func proposal(votePlan string, index uint8) model.Proposal {
	return model.Proposal{
		InternalID:         fmt.Sprintf("%d", index),
		ChainVoteplanID:    votePlan,
		ChainProposalIndex: index,
		ChainVoteOptions:   3,
	}
}

func TestRecoverBuildsPoolInInputOrder(t *testing.T) {
	node := newFakeNode()
	ctrl, err := Recover(node.backend(t), []string{mnemonicAlice, mnemonicBob}, []byte("pass"))
	require.NoError(t, err)
	require.Equal(t, 2, ctrl.WalletCount())

	alice, err := wallet.Recover(mnemonicAlice, []byte("pass"))
	require.NoError(t, err)
	bob, err := wallet.Recover(mnemonicBob, []byte("pass"))
	require.NoError(t, err)
	assert.Equal(t, alice.ID(), ctrl.Wallet(0).ID())
	assert.Equal(t, bob.ID(), ctrl.Wallet(1).ID())
}

func TestRecoverFailsFastOnMalformedMnemonic(t *testing.T) {
	node := newFakeNode()
	ctrl, err := Recover(node.backend(t), []string{mnemonicAlice, "garbage phrase"}, nil)
	require.Error(t, err)
	assert.Nil(t, ctrl)
}

func TestGenerate(t *testing.T) {
	node := newFakeNode()
	ctrl, err := Generate(node.backend(t), 4)
	require.NoError(t, err)
	assert.Equal(t, 4, ctrl.WalletCount())
	assert.NotEqual(t, ctrl.Wallet(0).ID(), ctrl.Wallet(1).ID())
}

func TestRefreshWalletSyncsCounter(t *testing.T) {
	node := newFakeNode()
	ctrl, err := Recover(node.backend(t), []string{mnemonicAlice}, nil)
	require.NoError(t, err)

	node.setAccount(ctrl.Wallet(0).ID(), model.AccountState{Value: 250, Counter: 9})
	require.NoError(t, ctrl.RefreshWallet(0))
	assert.Equal(t, uint64(250), ctrl.Wallet(0).Value())
	assert.Equal(t, uint32(9), ctrl.Wallet(0).Counter())
}

func TestRefreshWalletUnknownAccount(t *testing.T) {
	node := newFakeNode()
	ctrl, err := Recover(node.backend(t), []string{mnemonicAlice}, nil)
	require.NoError(t, err)

	err = ctrl.RefreshWallet(0)
	require.Error(t, err)
	assert.True(t, client.IsUnknownAccountError(err))
}

func TestIsConverted(t *testing.T) {
	node := newFakeNode()
	ctrl, err := Recover(node.backend(t), []string{mnemonicAlice}, nil)
	require.NoError(t, err)

	converted, err := ctrl.IsConverted(0)
	require.NoError(t, err)
	assert.False(t, converted)

	node.setAccount(ctrl.Wallet(0).ID(), model.AccountState{Value: 1, Counter: 0})
	converted, err = ctrl.IsConverted(0)
	require.NoError(t, err)
	assert.True(t, converted)
}

func TestVoteUsesCachedState(t *testing.T) {
	node := newFakeNode()
	ctrl, err := Recover(node.backend(t), []string{mnemonicAlice}, nil)
	require.NoError(t, err)

	node.setAccount(ctrl.Wallet(0).ID(), model.AccountState{Value: 100, Counter: 4})
	require.NoError(t, ctrl.RefreshWallet(0))

	id, err := ctrl.Vote(0, proposal(votePlanA, 2), 1)
	require.NoError(t, err)

	received := node.fragments()
	require.Len(t, received, 1)
	cast, err := wallet.ParseVoteCast(received[0])
	require.NoError(t, err)
	assert.Equal(t, uint32(4), cast.Counter)
	assert.Equal(t, uint64(100), cast.Value)
	assert.Equal(t, node.fragmentID(received[0]), id.String())

	// single votes leave the cached counter alone
	assert.Equal(t, uint32(4), ctrl.Wallet(0).Counter())
}

func TestVoteWithoutStateIsSigningError(t *testing.T) {
	node := newFakeNode()
	ctrl, err := Recover(node.backend(t), []string{mnemonicAlice}, nil)
	require.NoError(t, err)

	_, err = ctrl.Vote(0, proposal(votePlanA, 0), 1)
	require.Error(t, err)
	assert.True(t, wallet.IsSigningError(err))
}

func TestVotesBatchCountersContiguousAndReversed(t *testing.T) {
	node := newFakeNode()
	ctrl, err := Recover(node.backend(t), []string{mnemonicAlice}, nil)
	require.NoError(t, err)

	node.setAccount(ctrl.Wallet(0).ID(), model.AccountState{Value: 100, Counter: 5})

	votes := []VoteInput{
		{Proposal: proposal(votePlanA, 0), Choice: 1},
		{Proposal: proposal(votePlanA, 1), Choice: 2},
		{Proposal: proposal(votePlanA, 2), Choice: 1},
	}
	ids, err := ctrl.VotesBatch(0, false, votes)
	require.NoError(t, err)
	require.Len(t, ids, 3)
	received := node.fragments()
	require.Len(t, received, 3)

	// submission order is the reverse of input order: counters 7, 6, 5
	counters := make([]uint32, 0, 3)
	for i, fragment := range received {
		cast, err := wallet.ParseVoteCast(fragment)
		require.NoError(t, err)
		require.True(t, cast.Verify())
		assert.Equal(t, uint64(100), cast.Value)
		assert.Equal(t, node.fragmentID(fragment), ids[i].String())
		counters = append(counters, cast.Counter)
	}
	assert.Equal(t, []uint32{7, 6, 5}, counters)

	// ...and the input order maps to proposal indexes 2, 1, 0
	first, err := wallet.ParseVoteCast(received[0])
	require.NoError(t, err)
	assert.Equal(t, uint8(2), first.ProposalIndex)
}

func TestVotesBatchV1UsesSingleBackendCall(t *testing.T) {
	node := newFakeNode()
	ctrl, err := Recover(node.backend(t), []string{mnemonicAlice}, nil)
	require.NoError(t, err)

	node.setAccount(ctrl.Wallet(0).ID(), model.AccountState{Value: 100, Counter: 0})

	votes := []VoteInput{
		{Proposal: proposal(votePlanA, 0), Choice: 1},
		{Proposal: proposal(votePlanA, 1), Choice: 1},
	}
	ids, err := ctrl.VotesBatch(0, true, votes)
	require.NoError(t, err)
	assert.Len(t, ids, 2)
	assert.Equal(t, 1, node.batchCalls())
}

func TestVotesBatchUnknownAccountFails(t *testing.T) {
	node := newFakeNode()
	ctrl, err := Recover(node.backend(t), []string{mnemonicAlice}, nil)
	require.NoError(t, err)

	_, err = ctrl.VotesBatch(0, false, []VoteInput{{Proposal: proposal(votePlanA, 0), Choice: 1}})
	require.Error(t, err)
	assert.Empty(t, node.fragments())
}

func TestConfirmTransactionBroadcastsAndIsIdempotent(t *testing.T) {
	node := newFakeNode()
	ctrl, err := Recover(node.backend(t), []string{mnemonicAlice, mnemonicBob}, nil)
	require.NoError(t, err)

	node.setAccount(ctrl.Wallet(0).ID(), model.AccountState{Value: 100, Counter: 0})
	ids, err := ctrl.VotesBatch(0, false, []VoteInput{{Proposal: proposal(votePlanA, 0), Choice: 1}})
	require.NoError(t, err)
	require.Len(t, ids, 1)

	ctrl.ConfirmTransaction(ids[0])
	assert.True(t, ctrl.Wallet(0).IsConfirmed(ids[0]))
	// the other wallet never saw this fragment: no effect there
	assert.False(t, ctrl.Wallet(1).IsConfirmed(ids[0]))

	before := ctrl.Wallet(0).PendingCount()
	ctrl.ConfirmTransaction(ids[0])
	assert.Equal(t, before, ctrl.Wallet(0).PendingCount())
	assert.True(t, ctrl.Wallet(0).IsConfirmed(ids[0]))
}

func TestConfirmAllTransactions(t *testing.T) {
	node := newFakeNode()
	ctrl, err := Recover(node.backend(t), []string{mnemonicAlice, mnemonicBob}, nil)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		node.setAccount(ctrl.Wallet(i).ID(), model.AccountState{Value: 100, Counter: 0})
		_, err := ctrl.VotesBatch(i, false, []VoteInput{
			{Proposal: proposal(votePlanA, 0), Choice: 1},
			{Proposal: proposal(votePlanA, 1), Choice: 1},
		})
		require.NoError(t, err)
	}
	require.Equal(t, 2, ctrl.Wallet(0).PendingCount())
	require.Equal(t, 2, ctrl.Wallet(1).PendingCount())

	ctrl.ConfirmAllTransactions()
	assert.Equal(t, 0, ctrl.Wallet(0).PendingCount())
	assert.Equal(t, 0, ctrl.Wallet(1).PendingCount())
}

func TestRecoverFromQRs(t *testing.T) {
	source, err := wallet.Generate()
	require.NoError(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "wallet_1234.png")
	require.NoError(t, qr.WriteSecret(path, source.Secret(), []byte("1234"), 256))

	node := newFakeNode()
	ctrl, err := RecoverFromQRs(node.backend(t), []string{path}, qr.PinReader{Mode: qr.PinFromFileName})
	require.NoError(t, err)
	require.Equal(t, 1, ctrl.WalletCount())
	assert.Equal(t, source.ID(), ctrl.Wallet(0).ID())
}

func TestRecoverFromQRsFailsFastOnBadPin(t *testing.T) {
	source, err := wallet.Generate()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "wallet.png")
	require.NoError(t, qr.WriteSecret(path, source.Secret(), []byte("1234"), 256))

	node := newFakeNode()
	ctrl, err := RecoverFromQRs(node.backend(t), []string{path}, qr.PinReader{Mode: qr.PinGlobal, GlobalPin: "0000"})
	require.Error(t, err)
	assert.Nil(t, ctrl)
}

func TestRecoverFromSks(t *testing.T) {
	source, err := wallet.Generate()
	require.NoError(t, err)

	encoded, err := qr.EncodeBech32Key("ed25519e_sk", source.Secret())
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "wallet.sk")
	require.NoError(t, os.WriteFile(path, []byte(encoded), 0600))

	node := newFakeNode()
	ctrl, err := RecoverFromSks(node.backend(t), []string{path})
	require.NoError(t, err)
	require.Equal(t, 1, ctrl.WalletCount())
	assert.Equal(t, source.ID(), ctrl.Wallet(0).ID())
}
