// Package terminal renders the dashboard as text and collects task input interactively.
package terminal

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/okian/taskbounty/internal/view"
)

const (
	title    = "TaskBounty DAO"
	subtitle = "Multi-agent bidding + scoring + explainable winner selection"
	colGap   = 2
)

// Options selects the optional sections of Render.
type Options struct {
	// Payloads prints each timeline event's data.
	Payloads bool
	// Raw appends the full report as JSON.
	Raw bool
}

type theme struct {
	title   lipgloss.Style
	section lipgloss.Style
	muted   lipgloss.Style
	winner  lipgloss.Style
	danger  lipgloss.Style
	badge   lipgloss.Style
}

func newTheme(w io.Writer) theme {
	r := lipgloss.NewRenderer(w)
	return theme{
		title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
		section: r.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		muted:   r.NewStyle().Faint(true),
		winner:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("34")),
		danger:  r.NewStyle().Foreground(lipgloss.Color("160")),
		badge:   r.NewStyle().Foreground(lipgloss.Color("178")),
	}
}

// Render writes the dashboard to w.
func Render(w io.Writer, d view.Dashboard, opts Options) error {
	t := newTheme(w)
	var b strings.Builder

	fmt.Fprintf(&b, "%s  %s\n", t.title.Render(title), t.muted.Render("["+d.Header.Status+"]"))
	fmt.Fprintln(&b, t.muted.Render(subtitle))
	if d.Header.Banner != "" {
		fmt.Fprintln(&b, d.Header.Banner)
	}
	if d.Header.Error != "" {
		fmt.Fprintln(&b, t.danger.Render("Error: "+d.Header.Error))
	}
	if !d.HasReport {
		_, err := io.WriteString(w, b.String())
		return err
	}

	renderSummary(&b, t, d)
	renderBids(&b, t, d)
	if d.Breakdown != nil {
		renderBreakdown(&b, t, d.Breakdown)
	}
	renderTrend(&b, t, d.Trend)
	renderTimeline(&b, t, d.Timeline, opts.Payloads)
	if opts.Raw {
		section(&b, t, "Raw JSON (debug)")
		fmt.Fprintln(&b, d.RawJSON)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func section(b *strings.Builder, t theme, name string) {
	fmt.Fprintf(b, "\n%s\n", t.section.Render("== "+name+" =="))
}

func renderSummary(b *strings.Builder, t theme, d view.Dashboard) {
	section(b, t, "Winner")
	fmt.Fprintf(b, "%s  %s\n", t.winner.Render(d.Winner.FreelancerID), t.badge.Render("Score: "+d.Winner.Score))
	bullets(b, d.Winner.Highlights)

	section(b, t, "Task")
	writeTable(b, nil, [][]string{
		{"Title", d.Task.Title},
		{"Budget", d.Task.Budget},
	})
	fmt.Fprintln(b, "Acceptance criteria:")
	bullets(b, d.Task.Criteria)

	section(b, t, "Weights")
	if d.Weights.Message != "" {
		fmt.Fprintln(b, t.muted.Render(d.Weights.Message))
	} else {
		writeTable(b, nil, kvRows(d.Weights.Rows))
	}

	section(b, t, "Referee")
	if d.Referee.Message != "" {
		fmt.Fprintln(b, t.muted.Render(d.Referee.Message))
	} else {
		writeTable(b, nil, kvRows(d.Referee.Rows))
	}
}

func renderBids(b *strings.Builder, t theme, d view.Dashboard) {
	section(b, t, "Bids")
	rows := make([][]string, 0, len(d.Bids))
	for _, bid := range d.Bids {
		id := bid.FreelancerID
		if bid.IsWinner {
			id += " [WIN]"
		}
		if bid.Selected {
			id = "> " + id
		}
		flags := strings.Join(bid.Flags, ", ")
		if bid.MoreFlags > 0 {
			flags += " +" + strconv.Itoa(bid.MoreFlags)
		}
		rows = append(rows, []string{
			strconv.Itoa(bid.Rank), id, bid.Price, bid.ETA, bid.Confidence, bid.Portfolio, bid.Total, flags,
		})
	}
	writeTable(b, []string{"#", "Freelancer", "Price", "ETA", "Conf", "Portfolio", "Total", "Risk"}, rows)
}

func renderBreakdown(b *strings.Builder, t theme, bd *view.Breakdown) {
	section(b, t, "Score breakdown: "+bd.FreelancerID)
	writeTable(b, nil, kvRows(bd.Terms))
	if bd.HasNote {
		fmt.Fprintf(b, "Note: %s\n", bd.Note)
	} else {
		fmt.Fprintln(b, t.muted.Render(bd.Note))
	}
	if len(bd.RiskFlags) > 0 {
		fmt.Fprintf(b, "Risk flags: %s\n", t.danger.Render(strings.Join(bd.RiskFlags, ", ")))
	}
}

func renderTrend(b *strings.Builder, t theme, card view.TrendCard) {
	section(b, t, "Score trend")
	if card.Message != "" {
		fmt.Fprintln(b, t.muted.Render(card.Message))
		return
	}
	for _, r := range card.Rounds {
		fmt.Fprintf(b, "Round %d  %s\n", r.Round, t.badge.Render("Top: "+r.Leader))
		rows := make([][]string, 0, len(r.Rows))
		for _, row := range r.Rows {
			id := row.FreelancerID
			if row.IsWinner {
				id += " *"
			}
			rows = append(rows, []string{
				strconv.Itoa(row.Rank), id, row.Total, row.Price, row.ETA, row.Quality, row.Risk,
			})
		}
		writeTable(b, []string{"#", "Freelancer", "Total", "Price", "ETA", "Quality", "Risk"}, rows)
	}
}

func renderTimeline(b *strings.Builder, t theme, card view.TimelineCard, payloads bool) {
	section(b, t, "Timeline")
	if card.Message != "" {
		fmt.Fprintln(b, t.muted.Render(card.Message))
		return
	}
	for _, it := range card.Items {
		line := fmt.Sprintf("#%d %s  Round %d", it.Seq, it.Type, it.Round)
		if it.Leader != "" {
			line += "  " + t.winner.Render("Leader: "+it.Leader)
		}
		if it.LeaderChanged {
			line += "  " + t.danger.Render("Leader changed")
		}
		fmt.Fprintln(b, line)
		if it.TS != "" {
			fmt.Fprintf(b, "  %s\n", t.muted.Render(it.TS))
		}
		fmt.Fprintf(b, "  %s\n", it.Summary)
		if len(it.Top3) > 0 {
			pairs := make([]string, 0, len(it.Top3))
			for _, p := range it.Top3 {
				pairs = append(pairs, p.Key+" — "+p.Value)
			}
			fmt.Fprintf(b, "  Top 3 snapshot: %s\n", strings.Join(pairs, ", "))
		}
		if payloads {
			for _, l := range strings.Split(it.Payload, "\n") {
				fmt.Fprintf(b, "    %s\n", l)
			}
		}
	}
}

func bullets(b *strings.Builder, items []string) {
	for _, it := range items {
		fmt.Fprintf(b, "  - %s\n", it)
	}
}

func kvRows(kvs []view.KV) [][]string {
	rows := make([][]string, 0, len(kvs))
	for _, kv := range kvs {
		rows = append(rows, []string{kv.Key, kv.Value})
	}
	return rows
}

// writeTable aligns cells by display width. A nil header prints rows only.
func writeTable(b *strings.Builder, header []string, rows [][]string) {
	all := rows
	if header != nil {
		all = append([][]string{header}, rows...)
	}
	widths := map[int]int{}
	for _, row := range all {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	for _, row := range all {
		var line strings.Builder
		for i, cell := range row {
			if i == len(row)-1 {
				line.WriteString(cell)
				continue
			}
			line.WriteString(padRight(cell, widths[i]+colGap))
		}
		fmt.Fprintln(b, strings.TrimRight(line.String(), " "))
	}
}

func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}
