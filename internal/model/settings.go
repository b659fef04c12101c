package model

// Settings represents response for GET v0/settings
type Settings struct {
	Block0Hash string `json:"block0Hash"`
	Fees       Fees   `json:"fees"`
}

// Fees are the linear fee parameters the node applies to fragments.
type Fees struct {
	Constant    uint64 `json:"constant"`
	Coefficient uint64 `json:"coefficient"`
	Certificate uint64 `json:"certificate"`
}

// Certificate fragments carry exactly one account input, so the full
// price of a vote is constant + coefficient + certificate.
func (f Fees) VoteCost() uint64 {
	return f.Constant + f.Coefficient + f.Certificate
}
