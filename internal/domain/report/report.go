// Package report defines the decision report returned by the bidding service.
//
// The report is a read-only snapshot: the client renders it and never mutates
// or re-scores it. JSON keys follow the service's camelCase presenter format.
package report

import (
	"encoding/json"
	"fmt"
	"io"
)

// Weights maps a scoring criterion name to its weight, in payload order.
// Weights are normally numbers; other values are kept as sent.
type Weights = Fields

// NewWeights returns an empty Weights mapping.
func NewWeights() *Weights {
	return NewFields()
}

// Task describes the work being bid on.
type Task struct {
	ID                 string   `json:"id"`
	Title              string   `json:"title"`
	BudgetUSD          float64  `json:"budgetUsd"`
	AcceptanceCriteria []string `json:"acceptanceCriteria"`
}

// Score is the breakdown the service assigned to a bid.
type Score struct {
	Price   float64 `json:"price"`
	ETA     float64 `json:"eta"`
	Quality float64 `json:"quality"`
	Risk    float64 `json:"risk"`
	Total   float64 `json:"total"`
}

// Bid is one freelancer's final offer. Notes is empty when no note was produced.
type Bid struct {
	FreelancerID   string   `json:"freelancerId"`
	PriceUSD       float64  `json:"priceUsd"`
	ETADays        float64  `json:"etaDays"`
	Confidence     float64  `json:"confidence"`
	PortfolioScore float64  `json:"portfolioScore"`
	RiskFlags      []string `json:"riskFlags"`
	Notes          string   `json:"notes"`
	Score          Score    `json:"score"`
	Rank           int      `json:"rank"`
	IsWinner       bool     `json:"isWinner"`
}

// HasNote reports whether the bid carries a note.
func (b Bid) HasNote() bool { return b.Notes != "" }

// WinnerSummary names the selected bid and why.
type WinnerSummary struct {
	FreelancerID string   `json:"freelancerId"`
	TotalScore   float64  `json:"totalScore"`
	Highlights   []string `json:"highlights"`
}

// ScoreHistoryEntry is the score of one bidder at the end of one round.
type ScoreHistoryEntry struct {
	Round        int     `json:"round"`
	FreelancerID string  `json:"freelancerId"`
	Price        float64 `json:"price"`
	ETA          float64 `json:"eta"`
	Quality      float64 `json:"quality"`
	Risk         float64 `json:"risk"`
	Total        float64 `json:"total"`
}

// TimelineEvent is one entry of the negotiation ledger.
type TimelineEvent struct {
	RunID   string  `json:"run_id,omitempty"`
	Seq     int     `json:"seq"`
	Type    string  `json:"type"`
	TS      string  `json:"ts"`
	Round   int     `json:"round"`
	Summary string  `json:"summary"`
	Data    *Fields `json:"data"`
}

// Report is the full decision report. ScoreHistory and Events are nil when the
// service omitted them and non-nil (possibly empty) when it sent a list.
type Report struct {
	Task         Task                `json:"task"`
	Weights      *Weights            `json:"weights"`
	Winner       WinnerSummary       `json:"winner"`
	Referee      *Fields             `json:"referee"`
	Bids         []Bid               `json:"bids"`
	ScoreHistory []ScoreHistoryEntry `json:"scoreHistory"`
	Events       []TimelineEvent     `json:"events"`
}

// Presence distinguishes an omitted optional field from an empty one.
type Presence int

// Presence values.
const (
	Absent Presence = iota
	Empty
	Populated
)

func (p Presence) String() string {
	switch p {
	case Absent:
		return "absent"
	case Empty:
		return "empty"
	default:
		return "populated"
	}
}

func presenceOf(isNil bool, n int) Presence {
	switch {
	case isNil:
		return Absent
	case n == 0:
		return Empty
	default:
		return Populated
	}
}

// HistoryPresence reports whether score history was sent and whether it has entries.
func (r *Report) HistoryPresence() Presence {
	return presenceOf(r.ScoreHistory == nil, len(r.ScoreHistory))
}

// EventsPresence reports whether timeline events were sent and whether there are any.
func (r *Report) EventsPresence() Presence {
	return presenceOf(r.Events == nil, len(r.Events))
}

// RefereePresence reports whether referee metrics were sent and whether there are any.
func (r *Report) RefereePresence() Presence {
	if r.Referee == nil {
		return Absent
	}
	return presenceOf(false, r.Referee.Len())
}

// BidByID returns the bid submitted by the given freelancer.
func (r *Report) BidByID(id string) (Bid, bool) {
	for _, b := range r.Bids {
		if b.FreelancerID == id {
			return b, true
		}
	}
	return Bid{}, false
}

// Decode reads one JSON report. Unknown keys are ignored.
func Decode(rd io.Reader) (*Report, error) {
	var r Report
	if err := json.NewDecoder(rd).Decode(&r); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return &r, nil
}
