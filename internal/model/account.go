package model

// AccountState represents response for GET v0/account/{id}.
// It is a snapshot: a new fetch produces a new value, never a patched one.
type AccountState struct {
	Value   uint64 `json:"value"`
	Counter uint32 `json:"counter"`
}
