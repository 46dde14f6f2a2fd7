package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"faturas/internal/domain"
)

// CPFL reports the billing history on the last page under per-measure
// anchors. The demand layout depends on the tariff class: a green tariff
// has a single off-peak demand column, a blue tariff a peak/off-peak pair,
// so the class must be known before demand extraction.
const (
	cpflConsumptionPeak    = "consumo ponta"
	cpflConsumptionOffPeak = "consumo fora de ponta"
	cpflDemandSingle       = "demanda - ["
	cpflDemandPeak         = "demanda ponta - ["
	cpflDemandOffPeak      = "demanda fora de ponta - ["
)

// cpflTariffs maps first-page plan phrases to the tariff class. Exactly one
// may match; several matching is a layout contract violation.
var cpflTariffs = map[string]domain.TariffClass{
	"cliente livre-a4": domain.TariffBlue,
	"tarifa azul-a4":   domain.TariffBlue,
	"verde":            domain.TariffGreen,
}

var (
	cpflTrailingJunk = regexp.MustCompile(`(jul)?ll.*`)
	cpflRowsEnd      = regexp.MustCompile(`\n\w.*dias`)
	cpflNumeric      = regexp.MustCompile(`^\d+(,\d+)?$|^\d+(\.\d+)?$`)
	cpflMarginNoise  = regexp.MustCompile(`ll.*`)
)

type cpfl struct {
	demandUnit string
}

func init() {
	register(domain.VendorCPFL, func() Extractor { return &cpfl{} })
}

func (c *cpfl) Vendor() domain.Vendor { return domain.VendorCPFL }

func (c *cpfl) Extract(doc *domain.Document) (*domain.InvoiceRecord, error) {
	name := c.clientName(doc)

	tariff, err := c.tariff(doc, name)
	if err != nil {
		return nil, err
	}

	months, err := c.months(doc, name)
	if err != nil {
		return nil, err
	}

	peak, err := c.consumption(doc, name, cpflConsumptionPeak)
	if err != nil {
		return nil, err
	}
	offPeak, err := c.consumption(doc, name, cpflConsumptionOffPeak)
	if err != nil {
		return nil, err
	}
	consumption, err := zipSeries(months, peak, offPeak)
	if err != nil {
		return nil, fmt.Errorf("cpfl consumption: %w", err)
	}

	demand, err := c.demand(doc, name, tariff, months)
	if err != nil {
		return nil, err
	}
	sortSeries(consumption, demand)

	return &domain.InvoiceRecord{
		Vendor:          domain.VendorCPFL,
		ClientName:      name,
		MeterCode:       doc.MeterCode(),
		Tariff:          tariff,
		ConsumptionUnit: c.consumptionUnit(doc),
		DemandUnit:      c.demandUnit,
		Consumption:     consumption,
		Demand:          demand,
	}, nil
}

// clientName is the first line of the first page, underscored.
func (c *cpfl) clientName(doc *domain.Document) string {
	line, _, _ := strings.Cut(doc.FirstPage(), "\n")
	return strings.ReplaceAll(strings.ReplaceAll(line, " ", "_"), ".", "")
}

func (c *cpfl) tariff(doc *domain.Document, client string) (domain.TariffClass, error) {
	var matched []string
	var class domain.TariffClass
	for phrase, t := range cpflTariffs {
		if strings.Contains(doc.FirstPage(), phrase) {
			matched = append(matched, phrase)
			class = t
		}
	}
	switch len(matched) {
	case 0:
		return domain.TariffUnknown, nil
	case 1:
		return class, nil
	default:
		return domain.TariffUnknown, fmt.Errorf(
			"cpfl: more than one tariff phrase matched for client %q: %s",
			client, strings.Join(matched, "; "))
	}
}

// months recovers the history month tokens from the date block that follows
// the off-peak consumption anchor, resolving the fiscal-year rollover.
func (c *cpfl) months(doc *domain.Document, client string) ([]time.Time, error) {
	idx := strings.Index(doc.LastPage(), cpflConsumptionOffPeak)
	if idx == -1 {
		return nil, &domain.AnchorError{
			Vendor: domain.VendorCPFL, Anchor: cpflConsumptionOffPeak, Path: doc.Path, Client: client,
		}
	}
	block := cpflTrailingJunk.ReplaceAllString(doc.LastPage()[idx:], "$1")
	lines := strings.Split(block, "\n")

	end := -1
	for i, line := range lines {
		if line == "" {
			end = i
			break
		}
	}
	if end == -1 {
		joined := strings.Join(lines, "\n")
		loc := cpflRowsEnd.FindStringIndex(joined)
		if loc == nil {
			return nil, fmt.Errorf("cpfl: unterminated date block in %s (client %q)", doc.Path, client)
		}
		lines = strings.Split(joined[:loc[0]], "\n")
		end = len(lines)
	}

	tokens, err := yearRollover(strings.Join(lines[1:end], "\n"))
	if err != nil {
		return nil, fmt.Errorf("cpfl date block (client %q): %w", client, err)
	}
	months := make([]time.Time, len(tokens))
	for i, tok := range tokens {
		if months[i], err = parseMonthToken(tok); err != nil {
			return nil, fmt.Errorf("cpfl date block (client %q): %w", client, err)
		}
	}
	return months, nil
}

func (c *cpfl) consumption(doc *domain.Document, client, anchor string) ([]float64, error) {
	idx := strings.Index(doc.LastPage(), anchor)
	if idx == -1 {
		return nil, &domain.AnchorError{
			Vendor: domain.VendorCPFL, Anchor: anchor, Path: doc.Path, Client: client,
		}
	}
	tokens, err := consumptionSlice(markUnits(doc.LastPage()[idx:]))
	if err != nil {
		return nil, fmt.Errorf("cpfl %q block: %w", anchor, err)
	}
	values := make([]float64, 0, len(tokens))
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		v, err := parseDecimal(tok)
		if err != nil {
			return nil, fmt.Errorf("cpfl %q block: %w", anchor, err)
		}
		values = append(values, v)
	}
	return values, nil
}

func (c *cpfl) demand(doc *domain.Document, client string, tariff domain.TariffClass, months []time.Time) ([]domain.SeriesPoint, error) {
	switch tariff {
	case domain.TariffGreen:
		values, err := c.demandColumn(doc, client, cpflDemandSingle)
		if err != nil {
			return nil, err
		}
		return singleDemand(months, values)
	case domain.TariffBlue:
		peak, err := c.demandColumn(doc, client, cpflDemandPeak)
		if err != nil {
			return nil, err
		}
		offPeak, err := c.demandColumn(doc, client, cpflDemandOffPeak)
		if err != nil {
			return nil, err
		}
		points, err := zipSeries(months, peak, offPeak)
		if err != nil {
			return nil, fmt.Errorf("cpfl demand: %w", err)
		}
		return points, nil
	default:
		return nil, fmt.Errorf("cpfl: cannot choose demand layout for client %q without a tariff class", client)
	}
}

// demandColumn reads the numeric tokens between a demand anchor and the
// "dias" label, capturing the bracketed unit on the way.
func (c *cpfl) demandColumn(doc *domain.Document, client, anchor string) ([]float64, error) {
	page := doc.LastPage()
	idx := strings.Index(page, anchor)
	if idx == -1 {
		return nil, &domain.AnchorError{
			Vendor: domain.VendorCPFL, Anchor: anchor, Path: doc.Path, Client: client,
		}
	}
	unitStart := idx + len(anchor)
	if close := strings.Index(page[unitStart:], "]"); close != -1 {
		c.demandUnit = page[unitStart : unitStart+close]
	}

	stop := strings.Index(page[idx:], "dias")
	if stop == -1 {
		return nil, fmt.Errorf("cpfl: unterminated demand block %q in %s", anchor, doc.Path)
	}
	text := strings.ReplaceAll(page[idx:idx+stop], "dias", "\ndias")
	text = cpflMarginNoise.ReplaceAllString(text, "")

	var values []float64
	for _, tok := range strings.Fields(strings.ReplaceAll(text, "\n", " ")) {
		if !cpflNumeric.MatchString(tok) {
			continue
		}
		v, err := strconv.ParseFloat(strings.Replace(tok, ",", ".", 1), 64)
		if err != nil {
			continue
		}
		values = append(values, v)
	}
	return values, nil
}

func (c *cpfl) consumptionUnit(doc *domain.Document) string {
	idx := strings.Index(doc.LastPage(), cpflConsumptionOffPeak)
	if idx == -1 {
		idx = 0
	}
	page := doc.LastPage()[idx:]
	switch {
	case strings.Contains(page, "[kwh]"):
		return "kwh"
	case strings.Contains(page, "[mwh]"):
		return "mwh"
	default:
		return "nao encontrado"
	}
}

// singleDemand builds a demand series whose only reading is the off-peak
// column, as green-tariff invoices report.
func singleDemand(months []time.Time, values []float64) ([]domain.SeriesPoint, error) {
	if len(values) != len(months) {
		return nil, fmt.Errorf("demand series length mismatch: %d months, %d values", len(months), len(values))
	}
	points := make([]domain.SeriesPoint, len(months))
	for i, m := range months {
		points[i] = domain.SeriesPoint{Month: m, OffPeak: ptr(values[i])}
	}
	return points, nil
}
