// Package timeline annotates negotiation events with leader bookkeeping.
package timeline

import (
	"cmp"
	"slices"

	"github.com/okian/taskbounty/internal/domain/report"
)

// Payload keys read from event data.
const (
	keyLeader = "leader"
	keyTop3   = "top3"
)

// TopEntry is one (freelancer, score) pair of a top-3 snapshot.
type TopEntry struct {
	FreelancerID string
	Score        float64
}

// Annotated is an event plus the leader state derived while walking the timeline.
type Annotated struct {
	Event report.TimelineEvent

	Leader    string
	HasLeader bool
	// LeaderChanged is set when an earlier event recorded a different leader.
	LeaderChanged bool

	Top3 []TopEntry
}

// Annotate walks events in ascending seq order, tracking the most recent leader.
// The input slice is not modified.
func Annotate(events []report.TimelineEvent) []Annotated {
	ordered := slices.Clone(events)
	slices.SortStableFunc(ordered, func(a, b report.TimelineEvent) int { return cmp.Compare(a.Seq, b.Seq) })

	out := make([]Annotated, 0, len(ordered))
	var last string
	for _, ev := range ordered {
		a := Annotated{Event: ev, Top3: Top3(ev.Data)}
		if leader, ok := Leader(ev.Data); ok {
			a.Leader, a.HasLeader = leader, true
			a.LeaderChanged = last != "" && last != leader
			last = leader
		}
		out = append(out, a)
	}
	return out
}

// Leader returns the payload's leader when it is a non-empty string.
func Leader(data *report.Fields) (string, bool) {
	v, ok := report.Lookup(data, keyLeader)
	if !ok {
		return "", false
	}
	s, ok := v.Str()
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// Top3 returns the payload's top3 pairs in order. Entries that are not an
// [id, score] pair are skipped.
func Top3(data *report.Fields) []TopEntry {
	v, ok := report.Lookup(data, keyTop3)
	if !ok {
		return nil
	}
	items, ok := v.Array()
	if !ok {
		return nil
	}
	out := make([]TopEntry, 0, len(items))
	for _, item := range items {
		pair, ok := item.Array()
		if !ok || len(pair) < 2 {
			continue
		}
		id, okID := pair[0].Str()
		score, okScore := pair[1].Number()
		if !okID || !okScore {
			continue
		}
		out = append(out, TopEntry{FreelancerID: id, Score: score})
	}
	return out
}
