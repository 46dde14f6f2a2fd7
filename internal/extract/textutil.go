package extract

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"faturas/internal/domain"
)

// energyMarker replaces unit tokens so history blocks can be sliced on a
// known delimiter regardless of whether the layout reports kwh or mwh.
const energyMarker = "energia_wh"

var monthNumbers = map[string]time.Month{
	"jan": time.January,
	"fev": time.February,
	"mar": time.March,
	"abr": time.April,
	"mai": time.May,
	"jun": time.June,
	"jul": time.July,
	"ago": time.August,
	"set": time.September,
	"out": time.October,
	"nov": time.November,
	"dez": time.December,
}

// parseMonthToken converts an abbreviated month token ("dez/22" or
// "dez/2022") into the first of that month.
func parseMonthToken(tok string) (time.Time, error) {
	parts := strings.SplitN(tok, "/", 2)
	if len(parts) != 2 || len(parts[0]) < 3 {
		return time.Time{}, fmt.Errorf("malformed month token %q", tok)
	}
	month, ok := monthNumbers[parts[0][:3]]
	if !ok {
		return time.Time{}, fmt.Errorf("unknown month abbreviation in %q", tok)
	}
	year, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed year in month token %q", tok)
	}
	if len(parts[1]) == 2 {
		year += 2000
	}
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC), nil
}

// parseNumericMonth converts a numeric month token ("12/22" or "12/2022")
// into the first of that month.
func parseNumericMonth(tok string) (time.Time, error) {
	parts := strings.SplitN(tok, "/", 2)
	if len(parts) != 2 {
		return time.Time{}, fmt.Errorf("malformed month token %q", tok)
	}
	month, err := strconv.Atoi(parts[0])
	if err != nil || month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("malformed month in token %q", tok)
	}
	year, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed year in month token %q", tok)
	}
	if len(parts[1]) == 2 {
		year += 2000
	}
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC), nil
}

// parseDecimal parses a Brazilian-formatted number: dots separate thousands
// and the comma is the decimal separator.
func parseDecimal(tok string) (float64, error) {
	tok = strings.ReplaceAll(tok, ".", "")
	tok = strings.ReplaceAll(tok, ",", ".")
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing numeric token: %w", err)
	}
	return v, nil
}

// markUnits rewrites a history block so it splits on layout delimiters:
// unit tokens ("kwh"/"mwh") start an energy-marker line, spaces are dropped
// and "dias" starts its own line.
func markUnits(text string) []string {
	text = strings.ReplaceAll(text, "kwh", "\n"+energyMarker)
	text = strings.ReplaceAll(text, "mwh", "\n"+energyMarker)
	text = strings.ReplaceAll(text, " ", "")
	text = strings.ReplaceAll(text, "dias", "\ndias")
	return strings.Split(text, "\n")
}

// consumptionSlice returns the tokens strictly between the energy marker and
// the "dias" column label.
func consumptionSlice(tokens []string) ([]string, error) {
	start, end := -1, -1
	for i, tok := range tokens {
		if start == -1 && tok == energyMarker {
			start = i
			continue
		}
		if start != -1 && tok == "dias" {
			end = i
			break
		}
	}
	if start == -1 || end == -1 {
		return nil, fmt.Errorf("history block misses %q/%q delimiters", energyMarker, "dias")
	}
	return tokens[start+1 : end], nil
}

// yearRollover resolves abbreviated month tokens that span a fiscal-year
// boundary. The block starts with the current four-digit year, lists the
// current-year months, and may end with the previous year followed by its
// months. Tokens come back as "abb/yyyy", current year first.
func yearRollover(block string) ([]string, error) {
	block = strings.TrimSpace(block)
	if len(block) < 4 {
		return nil, fmt.Errorf("date block %q too short for a year header", block)
	}
	current, err := strconv.Atoi(block[:4])
	if err != nil {
		return nil, fmt.Errorf("date block %q does not start with a year", block)
	}
	previous := current - 1
	marker := strconv.Itoa(previous)

	head, tail := block, ""
	if sep := strings.Index(block, marker); sep != -1 {
		head, tail = block[:sep], block[sep:]
	}

	var tokens []string
	for _, tok := range dropFirstField(head) {
		tokens = append(tokens, fmt.Sprintf("%s/%d", abbrev(tok), current))
	}
	for _, tok := range dropFirstField(tail) {
		tokens = append(tokens, fmt.Sprintf("%s/%d", abbrev(tok), previous))
	}
	return tokens, nil
}

// dropFirstField splits on whitespace and drops the leading field, which in
// a date block is the year header itself.
func dropFirstField(text string) []string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil
	}
	return fields[1:]
}

func abbrev(tok string) string {
	if len(tok) > 3 {
		return tok[:3]
	}
	return tok
}

// zipSeries pairs months with peak and off-peak readings. offPeak may be nil
// for single-column layouts.
func zipSeries(months []time.Time, peak, offPeak []float64) ([]domain.SeriesPoint, error) {
	if len(peak) != len(months) || (offPeak != nil && len(offPeak) != len(months)) {
		return nil, fmt.Errorf("series length mismatch: %d months, %d peak, %d off-peak",
			len(months), len(peak), len(offPeak))
	}
	points := make([]domain.SeriesPoint, len(months))
	for i, m := range months {
		points[i] = domain.SeriesPoint{Month: m, Peak: ptr(peak[i])}
		if offPeak != nil {
			points[i].OffPeak = ptr(offPeak[i])
		}
	}
	return points, nil
}

// sortSeries orders two aligned series chronologically ascending.
func sortSeries(consumption, demand []domain.SeriesPoint) {
	sort.SliceStable(consumption, func(i, j int) bool {
		return consumption[i].Month.Before(consumption[j].Month)
	})
	sort.SliceStable(demand, func(i, j int) bool {
		return demand[i].Month.Before(demand[j].Month)
	})
}

func ptr(v float64) *float64 {
	return &v
}
