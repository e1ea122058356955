package model

import "time"

type Outcome string

const (
	RESOLVED          Outcome = "resolved"
	NO_FEASIBLE_OFFER Outcome = "no_feasible_offer"
	EXHAUSTED         Outcome = "exhausted"
	FORMULA_FAILED    Outcome = "formula_failed"
)

// AuctionResult is the terminal record of one auction.
type AuctionResult struct {
	Request PlacementRequest `json:"request"`
	Outcome Outcome          `json:"outcome"`
	Winner  string           `json:"winner,omitempty"`

	NumRounds         int           `json:"num_rounds"`
	NumCommunications int           `json:"num_communications"`
	BiddingDuration   time.Duration `json:"bidding_duration"`
	Duration          time.Duration `json:"duration"`
}

func (r AuctionResult) Resolved() bool {
	return r.Outcome == RESOLVED
}

// Outcomes receives terminal auction results; the surrounding system
// is expected to start the work unit on the winner.
type Outcomes interface {
	SubmitAuctionResult(result AuctionResult)
}
