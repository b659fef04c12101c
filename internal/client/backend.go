// Package client implements the REST client for the voting-ledger node.
package client

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dkijania/vit-testing/internal/model"
	"github.com/dkijania/vit-testing/wallet"
)

// UnknownAccountError reports an account identifier the chain does not
// recognize yet. This is a normal condition for unconverted wallets, not
// a transport failure.
type UnknownAccountError struct {
	AccountID string
}

func (e *UnknownAccountError) Error() string {
	return fmt.Sprintf("account %s is not known to the backend", e.AccountID)
}

// IsUnknownAccountError checks if error is UnknownAccountError
func IsUnknownAccountError(err error) bool {
	var target *UnknownAccountError
	return errors.As(err, &target)
}

// WalletBackend is a client for the node REST API. All calls block until
// the backend responds or the configured timeout fires; there is no retry.
type WalletBackend struct {
	address string
	client  *http.Client
	log     *zap.Logger
}

// NewWalletBackend creates a backend client for the node at address.
func NewWalletBackend(address string, timeout time.Duration) *WalletBackend {
	return &WalletBackend{
		address: strings.TrimSuffix(address, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
		log: zap.NewNop(),
	}
}

// EnableLogs routes request/response logging to the given logger.
func (b *WalletBackend) EnableLogs(log *zap.Logger) {
	b.log = log
}

// Address returns the node base URL.
func (b *WalletBackend) Address() string {
	return b.address
}

// Settings fetches the chain settings the node runs with.
func (b *WalletBackend) Settings() (*model.Settings, error) {
	var settings model.Settings
	if err := b.getJSON("v0/settings", &settings); err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return &settings, nil
}

// AccountState fetches a fresh (value, counter) snapshot for an account.
// Returns UnknownAccountError when the chain has no such account.
func (b *WalletBackend) AccountState(accountID string) (*model.AccountState, error) {
	url := fmt.Sprintf("%s/api/v0/account/%s", b.address, accountID)
	b.log.Debug("fetching account state", zap.String("account", accountID))

	resp, err := b.client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to get account state: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, &UnknownAccountError{AccountID: accountID}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, b.statusError("account state", resp)
	}

	var state model.AccountState
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return nil, fmt.Errorf("failed to decode account state: %w", err)
	}
	return &state, nil
}

// AccountExists answers only the existence question for an account,
// without conflating it with state-fetch failures.
func (b *WalletBackend) AccountExists(accountID string) (bool, error) {
	url := fmt.Sprintf("%s/api/v0/account/%s", b.address, accountID)

	resp, err := b.client.Get(url)
	if err != nil {
		return false, fmt.Errorf("failed to check account: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, b.statusError("account check", resp)
	}
}

// SendFragment submits one raw fragment and returns the id the node
// assigned to it.
func (b *WalletBackend) SendFragment(fragment []byte) (wallet.FragmentID, error) {
	url := fmt.Sprintf("%s/api/v0/message", b.address)
	b.log.Debug("sending fragment", zap.Int("bytes", len(fragment)))

	resp, err := b.client.Post(url, "application/octet-stream", bytes.NewReader(fragment))
	if err != nil {
		return wallet.FragmentID{}, fmt.Errorf("failed to send fragment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return wallet.FragmentID{}, b.statusError("send fragment", resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return wallet.FragmentID{}, fmt.Errorf("failed to read fragment id: %w", err)
	}

	id, err := wallet.FragmentIDFromString(strings.TrimSpace(string(body)))
	if err != nil {
		return wallet.FragmentID{}, fmt.Errorf("backend returned malformed fragment id: %w", err)
	}
	return id, nil
}

// SendFragmentsAtOnce submits a batch of fragments. With useV1 the whole
// batch goes out in one v1 call and the node accepts or rejects it as a
// set. Without it fragments are sent one by one in order; on a mid-batch
// failure the ids accepted so far are returned together with the error so
// the caller can reconcile the partial success.
func (b *WalletBackend) SendFragmentsAtOnce(fragments [][]byte, useV1 bool) ([]wallet.FragmentID, error) {
	if useV1 {
		return b.sendFragmentsV1(fragments)
	}

	ids := make([]wallet.FragmentID, 0, len(fragments))
	for i, fragment := range fragments {
		id, err := b.SendFragment(fragment)
		if err != nil {
			return ids, fmt.Errorf("fragment %d of %d rejected: %w", i+1, len(fragments), err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (b *WalletBackend) sendFragmentsV1(fragments [][]byte) ([]wallet.FragmentID, error) {
	request := model.FragmentsBatchRequest{
		Fragments: make([]string, 0, len(fragments)),
	}
	for _, fragment := range fragments {
		request.Fragments = append(request.Fragments, hex.EncodeToString(fragment))
	}

	payload, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal fragments batch: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/fragments", b.address)
	b.log.Debug("sending fragments batch", zap.Int("count", len(fragments)))

	resp, err := b.client.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to send fragments batch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, b.statusError("send fragments batch", resp)
	}

	var batch model.FragmentsBatchResponse
	if err := json.NewDecoder(resp.Body).Decode(&batch); err != nil {
		return nil, fmt.Errorf("failed to decode fragments batch response: %w", err)
	}

	ids := make([]wallet.FragmentID, 0, len(batch.FragmentIDs))
	for _, raw := range batch.FragmentIDs {
		id, err := wallet.FragmentIDFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("backend returned malformed fragment id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Proposals lists the proposals currently open for voting.
func (b *WalletBackend) Proposals() ([]model.Proposal, error) {
	var proposals []model.Proposal
	if err := b.getJSON("v0/proposals", &proposals); err != nil {
		return nil, fmt.Errorf("failed to get proposals: %w", err)
	}
	return proposals, nil
}

func (b *WalletBackend) getJSON(path string, out interface{}) error {
	url := fmt.Sprintf("%s/api/%s", b.address, path)
	b.log.Debug("GET", zap.String("url", url))

	resp, err := b.client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return b.statusError(path, resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// statusError turns a non-200 response into an error, picking up the
// backend's JSON error body when it sends one.
func (b *WalletBackend) statusError(operation string, resp *http.Response) error {
	var body model.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		return fmt.Errorf("%s: status %d: %s", operation, resp.StatusCode, body.Error)
	}
	return fmt.Errorf("%s: status %d", operation, resp.StatusCode)
}
