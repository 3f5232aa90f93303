package service

import (
	"time"

	"github.com/okian/taskbounty/internal/domain/ranking"
	"github.com/okian/taskbounty/internal/domain/report"
	"github.com/okian/taskbounty/internal/domain/timeline"
	"github.com/okian/taskbounty/internal/domain/trend"
)

// Snapshot is a point-in-time copy of the store. Report is shared and must not be modified.
type Snapshot struct {
	Loading   bool
	Report    *report.Report
	Err       string
	Applied   uint64
	UpdatedAt time.Time
}

// Status derives the coarse store state.
func (s Snapshot) Status() Status {
	switch {
	case s.Loading:
		return StatusLoading
	case s.Report == nil && s.Err == "":
		return StatusIdle
	default:
		return StatusSettled
	}
}

// HasReport reports whether a report has been applied.
func (s Snapshot) HasReport() bool { return s.Report != nil }

// Ranking returns the bids table rows of the current report.
func (s Snapshot) Ranking() []ranking.Row {
	if s.Report == nil {
		return nil
	}
	return ranking.View(s.Report.Bids)
}

// Trend groups the current report's score history.
func (s Snapshot) Trend() (trend.Trend, bool) {
	if s.Report == nil {
		return trend.Trend{}, false
	}
	return trend.Group(s.Report.ScoreHistory)
}

// Timeline annotates the current report's events.
func (s Snapshot) Timeline() []timeline.Annotated {
	if s.Report == nil {
		return nil
	}
	return timeline.Annotate(s.Report.Events)
}
