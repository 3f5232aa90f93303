// Package view builds the presentation model of the dashboard from a store
// snapshot. It only formats; ordering and flags come from the domain packages.
package view

import (
	service "github.com/okian/taskbounty/internal/app"
	"github.com/okian/taskbounty/internal/domain/report"
	"github.com/okian/taskbounty/internal/domain/selection"
	"github.com/okian/taskbounty/internal/domain/trend"
)

// Placeholder texts.
const (
	MsgNoWeights = "No weights."
	MsgNoReferee = "No referee metrics."
	MsgNoHistory = "No score history available."
	MsgNoEvents  = "No events."
	MsgNoNote    = "No LLM note (deterministic mode)."
	MsgNoReport  = "No report loaded."
	MsgRunning   = "Running…"
)

// KV is one key/value row.
type KV struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Header is the status line above the cards.
type Header struct {
	Status  string `json:"status"`
	Loading bool   `json:"loading"`
	Banner  string `json:"banner,omitempty"`
	Error   string `json:"error,omitempty"`
}

// WinnerCard shows the selected bid.
type WinnerCard struct {
	FreelancerID string   `json:"freelancerId"`
	Score        string   `json:"score"`
	Highlights   []string `json:"highlights"`
}

// TaskCard shows the task definition.
type TaskCard struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Budget   string   `json:"budget"`
	Criteria []string `json:"criteria"`
}

// WeightsCard shows scoring weights in payload order.
type WeightsCard struct {
	Rows    []KV   `json:"rows"`
	Message string `json:"message,omitempty"`
}

// RefereeCard shows referee metrics in payload order.
type RefereeCard struct {
	Rows    []KV   `json:"rows"`
	Message string `json:"message,omitempty"`
}

// BidRow is one row of the bids table.
type BidRow struct {
	Rank         int      `json:"rank"`
	FreelancerID string   `json:"freelancerId"`
	IsWinner     bool     `json:"isWinner"`
	Price        string   `json:"price"`
	ETA          string   `json:"eta"`
	Confidence   string   `json:"confidence"`
	Portfolio    string   `json:"portfolio"`
	Total        string   `json:"total"`
	Flags        []string `json:"flags"`
	MoreFlags    int      `json:"moreFlags,omitempty"`
	Selected     bool     `json:"selected,omitempty"`
	// Consistent is false when the payload rank disagrees with the order of totals.
	Consistent bool `json:"consistent"`
}

// Breakdown is the score detail of the selected bid.
type Breakdown struct {
	FreelancerID string   `json:"freelancerId"`
	Terms        []KV     `json:"terms"`
	Note         string   `json:"note"`
	HasNote      bool     `json:"hasNote"`
	RiskFlags    []string `json:"riskFlags"`
}

// TrendRow is one bidder within a round.
type TrendRow struct {
	Rank         int    `json:"rank"`
	FreelancerID string `json:"freelancerId"`
	IsWinner     bool   `json:"isWinner"`
	Total        string `json:"total"`
	Price        string `json:"price"`
	ETA          string `json:"eta"`
	Quality      string `json:"quality"`
	Risk         string `json:"risk"`
}

// TrendRound is one round of the trend card.
type TrendRound struct {
	Round  int        `json:"round"`
	Leader string     `json:"leader"`
	Rows   []TrendRow `json:"rows"`
}

// TrendCard shows score history by round.
type TrendCard struct {
	Rounds  []TrendRound `json:"rounds"`
	Message string       `json:"message,omitempty"`
}

// TimelineItem is one annotated event.
type TimelineItem struct {
	Seq           int    `json:"seq"`
	Type          string `json:"type"`
	TS            string `json:"ts"`
	Round         int    `json:"round"`
	Summary       string `json:"summary"`
	Leader        string `json:"leader,omitempty"`
	LeaderChanged bool   `json:"leaderChanged"`
	Top3          []KV   `json:"top3,omitempty"`
	Payload       string `json:"payload"`
}

// TimelineCard shows the negotiation timeline.
type TimelineCard struct {
	Items   []TimelineItem `json:"items"`
	Message string         `json:"message,omitempty"`
}

// Dashboard is everything a presentation adapter renders.
type Dashboard struct {
	Header    Header       `json:"header"`
	HasReport bool         `json:"hasReport"`
	Winner    WinnerCard   `json:"winner"`
	Task      TaskCard     `json:"task"`
	Weights   WeightsCard  `json:"weights"`
	Referee   RefereeCard  `json:"referee"`
	Bids      []BidRow     `json:"bids"`
	Breakdown *Breakdown   `json:"breakdown,omitempty"`
	Trend     TrendCard    `json:"trend"`
	Timeline  TimelineCard `json:"timeline"`
	RawJSON   string       `json:"-"`
}

// Build composes the dashboard for a snapshot and the operator's selection.
func Build(snap service.Snapshot, sel selection.Selection) Dashboard {
	d := Dashboard{
		Header: Header{
			Status:  string(snap.Status()),
			Loading: snap.Loading,
			Error:   snap.Err,
		},
		HasReport: snap.HasReport(),
	}
	if snap.Loading {
		d.Header.Banner = MsgRunning
	}
	if snap.Report == nil {
		if !snap.Loading {
			d.Header.Banner = MsgNoReport
		}
		return d
	}

	r := snap.Report
	selected, _ := sel.ID()

	d.Winner = winnerCard(r.Winner)
	d.Task = taskCard(r.Task)
	d.Weights = weightsCard(r.Weights)
	d.Referee = refereeCard(r)
	d.Bids = bidRows(snap, selected)
	if b, ok := sel.Resolve(r); ok {
		d.Breakdown = breakdown(b)
	}
	t, ok := snap.Trend()
	d.Trend = trendCard(t, ok, r.Winner.FreelancerID)
	d.Timeline = timelineCard(snap)
	d.RawJSON = PrettyJSON(r)
	return d
}

func winnerCard(w report.WinnerSummary) WinnerCard {
	return WinnerCard{
		FreelancerID: w.FreelancerID,
		Score:        Num(w.TotalScore),
		Highlights:   w.Highlights,
	}
}

func taskCard(t report.Task) TaskCard {
	return TaskCard{
		ID:       t.ID,
		Title:    t.Title,
		Budget:   USD(t.BudgetUSD),
		Criteria: t.AcceptanceCriteria,
	}
}

func weightsCard(w *report.Weights) WeightsCard {
	if w.Len() == 0 {
		return WeightsCard{Message: MsgNoWeights}
	}
	rows := make([]KV, 0, w.Len())
	for p := w.Oldest(); p != nil; p = p.Next() {
		text := ValueText(p.Value)
		if n, ok := p.Value.Number(); ok {
			text = Num(n)
		}
		rows = append(rows, KV{Key: p.Key, Value: text})
	}
	return WeightsCard{Rows: rows}
}

func refereeCard(r *report.Report) RefereeCard {
	if r.RefereePresence() != report.Populated {
		return RefereeCard{Message: MsgNoReferee}
	}
	rows := make([]KV, 0, r.Referee.Len())
	for p := r.Referee.Oldest(); p != nil; p = p.Next() {
		rows = append(rows, KV{Key: p.Key, Value: ValueText(p.Value)})
	}
	return RefereeCard{Rows: rows}
}

func bidRows(snap service.Snapshot, selected string) []BidRow {
	rows := snap.Ranking()
	out := make([]BidRow, 0, len(rows))
	for _, row := range rows {
		b := row.Bid
		shown, more := Flags(b.RiskFlags)
		out = append(out, BidRow{
			Rank:         row.Rank,
			FreelancerID: b.FreelancerID,
			IsWinner:     row.IsWinner,
			Price:        USD(b.PriceUSD),
			ETA:          Days(b.ETADays),
			Confidence:   Num(b.Confidence),
			Portfolio:    Num(b.PortfolioScore),
			Total:        Num(b.Score.Total),
			Flags:        shown,
			MoreFlags:    more,
			Selected:     selected != "" && selected == b.FreelancerID,
			Consistent:   row.Consistent(),
		})
	}
	return out
}

func breakdown(b report.Bid) *Breakdown {
	bd := &Breakdown{
		FreelancerID: b.FreelancerID,
		Terms: []KV{
			{Key: "price_term", Value: Num(b.Score.Price)},
			{Key: "eta_term", Value: Num(b.Score.ETA)},
			{Key: "quality_term", Value: Num(b.Score.Quality)},
			{Key: "risk_term", Value: Num(b.Score.Risk)},
			{Key: "total", Value: Num(b.Score.Total)},
		},
		Note:      MsgNoNote,
		HasNote:   b.HasNote(),
		RiskFlags: b.RiskFlags,
	}
	if bd.HasNote {
		bd.Note = b.Notes
	}
	return bd
}

func trendCard(t trend.Trend, ok bool, winner string) TrendCard {
	if !ok {
		return TrendCard{Message: MsgNoHistory}
	}
	card := TrendCard{Rounds: make([]TrendRound, 0, len(t.Rounds))}
	for _, r := range t.Rounds {
		leader, _ := r.Leader()
		tr := TrendRound{Round: r.Round, Leader: leader, Rows: make([]TrendRow, 0, len(r.Standings))}
		for _, s := range r.Standings {
			e := s.Entry
			tr.Rows = append(tr.Rows, TrendRow{
				Rank:         s.Rank,
				FreelancerID: e.FreelancerID,
				IsWinner:     e.FreelancerID == winner,
				Total:        Num(e.Total),
				Price:        Num(e.Price),
				ETA:          Num(e.ETA),
				Quality:      Num(e.Quality),
				Risk:         Num(e.Risk),
			})
		}
		card.Rounds = append(card.Rounds, tr)
	}
	return card
}

func timelineCard(snap service.Snapshot) TimelineCard {
	annotated := snap.Timeline()
	if len(annotated) == 0 {
		return TimelineCard{Message: MsgNoEvents}
	}
	card := TimelineCard{Items: make([]TimelineItem, 0, len(annotated))}
	for _, a := range annotated {
		ev := a.Event
		item := TimelineItem{
			Seq:           ev.Seq,
			Type:          ev.Type,
			TS:            ev.TS,
			Round:         ev.Round,
			Summary:       ev.Summary,
			Leader:        a.Leader,
			LeaderChanged: a.LeaderChanged,
			Payload:       payloadText(ev.Data),
		}
		for _, top := range a.Top3 {
			item.Top3 = append(item.Top3, KV{Key: top.FreelancerID, Value: Num(top.Score)})
		}
		card.Items = append(card.Items, item)
	}
	return card
}

func payloadText(data *report.Fields) string {
	if data == nil {
		return "{}"
	}
	return PrettyJSON(data)
}
