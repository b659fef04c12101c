package model

// Proposal represents one votable option as served by GET v0/proposals.
// Opaque to the controller beyond the chain coordinates needed to cast a vote.
type Proposal struct {
	InternalID         string `json:"internalId"`
	ProposalTitle      string `json:"proposalTitle"`
	ChainProposalID    string `json:"chainProposalId"`
	ChainVoteplanID    string `json:"chainVoteplanId"` // hex, 32 bytes
	ChainProposalIndex uint8  `json:"chainProposalIndex"`
	ChainVoteOptions   uint8  `json:"chainVoteOptions"`
}

// FragmentsBatchRequest represents request for POST v1/fragments
type FragmentsBatchRequest struct {
	Fragments []string `json:"fragments"` // hex-encoded fragment bytes
}

// FragmentsBatchResponse represents response for POST v1/fragments
type FragmentsBatchResponse struct {
	FragmentIDs []string `json:"fragment_ids"`
}
