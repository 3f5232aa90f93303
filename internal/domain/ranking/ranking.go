// Package ranking presents bids in the order and with the flags the decision
// service assigned, and re-derives the order only as a cross-check.
package ranking

import (
	"fmt"
	"slices"

	"github.com/okian/taskbounty/internal/domain/report"
)

// Row is one bid as displayed in the bids table.
type Row struct {
	Bid report.Bid
	// Rank and IsWinner come from the payload.
	Rank     int
	IsWinner bool
	// DerivedRank is the 1-based position after a stable sort on total.
	DerivedRank int
}

// Consistent reports whether the payload rank matches the derived rank.
func (r Row) Consistent() bool { return r.Rank == r.DerivedRank }

// SortByTotal returns a copy of items sorted by total descending. Ties keep input order.
func SortByTotal[T any](items []T, total func(T) float64) []T {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b T) int {
		ta, tb := total(a), total(b)
		switch {
		case ta > tb:
			return -1
		case ta < tb:
			return 1
		default:
			return 0
		}
	})
	return out
}

func bidTotal(b report.Bid) float64 { return b.Score.Total }

// View returns one row per bid in payload order.
func View(bids []report.Bid) []Row {
	derived := make(map[int]int, len(bids))
	idx := make([]int, len(bids))
	for i := range bids {
		idx[i] = i
	}
	sorted := SortByTotal(idx, func(i int) float64 { return bidTotal(bids[i]) })
	for pos, i := range sorted {
		derived[i] = pos + 1
	}

	rows := make([]Row, len(bids))
	for i, b := range bids {
		rows[i] = Row{
			Bid:         b,
			Rank:        b.Rank,
			IsWinner:    b.IsWinner,
			DerivedRank: derived[i],
		}
	}
	return rows
}

// Winner returns the single bid flagged as winner.
func Winner(bids []report.Bid) (report.Bid, error) {
	var (
		found report.Bid
		n     int
	)
	for _, b := range bids {
		if b.IsWinner {
			found = b
			n++
		}
	}
	switch n {
	case 0:
		return report.Bid{}, ErrNoWinner
	case 1:
		return found, nil
	default:
		return report.Bid{}, fmt.Errorf("%w: %d flagged", ErrMultipleWinners, n)
	}
}

// CheckWinner verifies that exactly one bid is flagged and that it matches the summary.
func CheckWinner(r *report.Report) error {
	w, err := Winner(r.Bids)
	if err != nil {
		return err
	}
	if w.FreelancerID != r.Winner.FreelancerID {
		return fmt.Errorf("%w: flagged %q, summary %q", ErrWinnerMismatch, w.FreelancerID, r.Winner.FreelancerID)
	}
	return nil
}
