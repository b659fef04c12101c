package wallet

import (
	"crypto/ed25519"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// FragmentID is the content-derived identifier of a signed transaction
// payload: blake2b-256 over the full fragment bytes.
type FragmentID [32]byte

// String returns the hex form used by the backend REST API.
func (id FragmentID) String() string {
	return hex.EncodeToString(id[:])
}

// FragmentIDFromString parses the hex form returned by the backend.
func FragmentIDFromString(s string) (FragmentID, error) {
	var id FragmentID
	raw, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("invalid fragment id %q: %w", s, err)
	}
	if len(raw) != len(id) {
		return id, fmt.Errorf("invalid fragment id length: expected %d bytes, got %d", len(id), len(raw))
	}
	copy(id[:], raw)
	return id, nil
}

const (
	voteCastTag = 0x0b

	votePlanLen = 32
	accountLen  = ed25519.PublicKeySize

	// tag + voteplan + proposal index + choice + account + value + counter
	voteCastBodyLen = 1 + votePlanLen + 1 + 1 + accountLen + 8 + 4
	voteCastLen     = voteCastBodyLen + ed25519.SignatureSize
)

// Transaction is an immutable signed vote fragment together with its id.
type Transaction struct {
	Bytes []byte
	ID    FragmentID
}

// VoteCast is the decoded form of a vote fragment. Field order matches the
// wire layout; Signature covers everything before it.
type VoteCast struct {
	VotePlan      [votePlanLen]byte
	ProposalIndex uint8
	Choice        uint8
	Account       [accountLen]byte
	Value         uint64
	Counter       uint32
	Signature     []byte
}

func encodeVoteCastBody(votePlan [votePlanLen]byte, proposalIndex, choice uint8, account [accountLen]byte, value uint64, counter uint32) []byte {
	body := make([]byte, 0, voteCastBodyLen)
	body = append(body, voteCastTag)
	body = append(body, votePlan[:]...)
	body = append(body, proposalIndex, choice)
	body = append(body, account[:]...)
	body = binary.BigEndian.AppendUint64(body, value)
	body = binary.BigEndian.AppendUint32(body, counter)
	return body
}

func newTransaction(fragment []byte) *Transaction {
	return &Transaction{
		Bytes: fragment,
		ID:    FragmentID(blake2b.Sum256(fragment)),
	}
}

// ParseVoteCast decodes a vote fragment produced by Wallet.Vote.
func ParseVoteCast(fragment []byte) (*VoteCast, error) {
	if len(fragment) != voteCastLen {
		return nil, fmt.Errorf("invalid fragment length: expected %d bytes, got %d", voteCastLen, len(fragment))
	}
	if fragment[0] != voteCastTag {
		return nil, fmt.Errorf("not a vote fragment: tag 0x%02x", fragment[0])
	}

	var cast VoteCast
	off := 1
	copy(cast.VotePlan[:], fragment[off:off+votePlanLen])
	off += votePlanLen
	cast.ProposalIndex = fragment[off]
	cast.Choice = fragment[off+1]
	off += 2
	copy(cast.Account[:], fragment[off:off+accountLen])
	off += accountLen
	cast.Value = binary.BigEndian.Uint64(fragment[off : off+8])
	off += 8
	cast.Counter = binary.BigEndian.Uint32(fragment[off : off+4])
	off += 4
	cast.Signature = append([]byte(nil), fragment[off:]...)
	return &cast, nil
}

// Verify checks the fragment signature against the account key embedded in it.
func (c *VoteCast) Verify() bool {
	body := encodeVoteCastBody(c.VotePlan, c.ProposalIndex, c.Choice, c.Account, c.Value, c.Counter)
	return ed25519.Verify(c.Account[:], body, c.Signature)
}
