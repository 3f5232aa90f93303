package view

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/okian/taskbounty/internal/domain/report"
)

const (
	scorePlaces = 4
	moneyPlaces = 2
	// shownRiskFlags is how many risk flags fit in a bids table cell.
	shownRiskFlags = 2
)

// Num formats a score with up to four decimals, trailing zeros removed.
func Num(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return decimal.NewFromFloat(f).Round(scorePlaces).String()
}

// USD formats an amount as dollars with two fixed decimals.
func USD(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "$" + strconv.FormatFloat(f, 'g', -1, 64)
	}
	return "$" + decimal.NewFromFloat(f).StringFixed(moneyPlaces)
}

// Days formats an ETA in days.
func Days(n float64) string { return Num(n) + "d" }

// Flags splits risk flags into the ones shown inline and the overflow count.
func Flags(flags []string) ([]string, int) {
	if len(flags) <= shownRiskFlags {
		return flags, 0
	}
	return flags[:shownRiskFlags], len(flags) - shownRiskFlags
}

// ValueText renders a tagged value for a key/value row. Nested values are compact JSON.
func ValueText(v report.Value) string {
	switch v.Kind() {
	case report.KindNull:
		return "null"
	case report.KindBool:
		b, _ := v.Bool()
		return strconv.FormatBool(b)
	case report.KindNumber:
		n, _ := v.Number()
		return strconv.FormatFloat(n, 'f', -1, 64)
	case report.KindString:
		s, _ := v.Str()
		return s
	default:
		out, err := json.Marshal(v)
		if err != nil {
			return err.Error()
		}
		return string(out)
	}
}

// PrettyJSON indents v with two spaces.
func PrettyJSON(v any) string {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err.Error()
	}
	return string(out)
}
