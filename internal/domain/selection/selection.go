// Package selection holds which bid, if any, the operator opened for a breakdown.
package selection

import "github.com/okian/taskbounty/internal/domain/report"

// Selection is an immutable value; Select and Clear return new values.
type Selection struct {
	id string
}

// None is the empty selection.
var None = Selection{}

// Select returns a selection of the given freelancer id. An empty id clears it.
func (Selection) Select(id string) Selection { return Selection{id: id} }

// Clear returns the empty selection.
func (Selection) Clear() Selection { return None }

// ID returns the selected freelancer id.
func (s Selection) ID() (string, bool) { return s.id, s.id != "" }

// Resolve returns the selected bid from r. A selection that names no bid in r resolves to nothing.
func (s Selection) Resolve(r *report.Report) (report.Bid, bool) {
	id, ok := s.ID()
	if !ok || r == nil {
		return report.Bid{}, false
	}
	return r.BidByID(id)
}
