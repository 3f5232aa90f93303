// Package trend groups per-round score history for the score trend card.
package trend

import (
	"slices"

	"github.com/okian/taskbounty/internal/domain/ranking"
	"github.com/okian/taskbounty/internal/domain/report"
)

// Standing is one bidder's position within a round.
type Standing struct {
	Rank  int
	Entry report.ScoreHistoryEntry
}

// Round holds the standings of one round, best total first.
type Round struct {
	Round     int
	Standings []Standing
}

// Leader returns the freelancer with the highest total in the round.
func (r Round) Leader() (string, bool) {
	if len(r.Standings) == 0 {
		return "", false
	}
	return r.Standings[0].Entry.FreelancerID, true
}

// Trend is score history grouped by round, rounds ascending.
type Trend struct {
	Rounds []Round
}

// Flatten returns the entries in grouped order.
func (t Trend) Flatten() []report.ScoreHistoryEntry {
	var out []report.ScoreHistoryEntry
	for _, r := range t.Rounds {
		for _, s := range r.Standings {
			out = append(out, s.Entry)
		}
	}
	return out
}

// Group buckets entries by round. It returns false when there is no history,
// which is either an absent or an empty list.
func Group(entries []report.ScoreHistoryEntry) (Trend, bool) {
	if len(entries) == 0 {
		return Trend{}, false
	}

	byRound := make(map[int][]report.ScoreHistoryEntry)
	for _, e := range entries {
		byRound[e.Round] = append(byRound[e.Round], e)
	}

	rounds := make([]int, 0, len(byRound))
	for r := range byRound {
		rounds = append(rounds, r)
	}
	slices.Sort(rounds)

	t := Trend{Rounds: make([]Round, 0, len(rounds))}
	for _, r := range rounds {
		sorted := ranking.SortByTotal(byRound[r], func(e report.ScoreHistoryEntry) float64 { return e.Total })
		standings := make([]Standing, len(sorted))
		for i, e := range sorted {
			standings[i] = Standing{Rank: i + 1, Entry: e}
		}
		t.Rounds = append(t.Rounds, Round{Round: r, Standings: standings})
	}
	return t, true
}
