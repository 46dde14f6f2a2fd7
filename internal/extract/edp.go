package extract

import (
	"fmt"
	"strconv"
	"strings"

	"faturas/internal/domain"
)

// EDP prints the billing history as the lines preceding the "histórico de
// consumo" label on the last page. Green-tariff rows carry five fields,
// other tariffs six (an extra peak-demand column). Off-peak consumption is
// split into an individual and a capacitive sub-column that must be summed,
// not concatenated.
const (
	edpHistoryAnchor = "histórico de consumo"
	edpTariffAnchor  = "modalidade tarifária"
	edpNameAnchor    = "cliente / endereço de entrega"

	edpHistoryRows = 13
)

type edp struct{}

func init() {
	register(domain.VendorEDP, func() Extractor { return &edp{} })
}

func (e *edp) Vendor() domain.Vendor { return domain.VendorEDP }

func (e *edp) Extract(doc *domain.Document) (*domain.InvoiceRecord, error) {
	name, err := e.clientName(doc)
	if err != nil {
		return nil, err
	}
	tariff, err := e.tariff(doc, name)
	if err != nil {
		return nil, err
	}

	consumption, demand, err := e.series(doc, name, tariff)
	if err != nil {
		return nil, err
	}
	sortSeries(consumption, demand)

	consumptionUnit, demandUnit := e.units(doc)
	return &domain.InvoiceRecord{
		Vendor:          domain.VendorEDP,
		ClientName:      name,
		MeterCode:       doc.MeterCode(),
		Tariff:          tariff,
		ConsumptionUnit: consumptionUnit,
		DemandUnit:      demandUnit,
		Consumption:     consumption,
		Demand:          demand,
	}, nil
}

func (e *edp) clientName(doc *domain.Document) (string, error) {
	_, rest, found := strings.Cut(doc.FirstPage(), edpNameAnchor)
	if !found {
		return "", &domain.AnchorError{Vendor: domain.VendorEDP, Anchor: edpNameAnchor, Path: doc.Path}
	}
	lines := strings.Split(rest, "\n")
	if len(lines) < 2 {
		return "", fmt.Errorf("edp: client block truncated in %s", doc.Path)
	}
	return strings.ReplaceAll(strings.TrimRight(lines[1], " "), " ", "_"), nil
}

func (e *edp) tariff(doc *domain.Document, client string) (domain.TariffClass, error) {
	idx := strings.Index(doc.FirstPage(), edpTariffAnchor)
	if idx == -1 {
		return domain.TariffUnknown, &domain.AnchorError{
			Vendor: domain.VendorEDP, Anchor: edpTariffAnchor, Path: doc.Path, Client: client,
		}
	}
	lines := strings.Split(doc.FirstPage()[idx:], "\n")
	if len(lines) > 1 && strings.Contains(lines[1], "verde") {
		return domain.TariffGreen, nil
	}
	return domain.TariffBlue, nil
}

// series parses the fixed-width history rows above the history label. Field
// layout per row:
//
//	green: month, consumption peak, off-peak individual, off-peak capacitive, demand off-peak
//	blue:  month, consumption peak, off-peak individual, off-peak capacitive, demand peak, demand off-peak
func (e *edp) series(doc *domain.Document, client string, tariff domain.TariffClass) (consumption, demand []domain.SeriesPoint, err error) {
	page := doc.LastPage()
	idx := strings.Index(page, edpHistoryAnchor)
	if idx == -1 {
		return nil, nil, &domain.AnchorError{
			Vendor: domain.VendorEDP, Anchor: edpHistoryAnchor, Path: doc.Path, Client: client,
		}
	}

	width := 6
	if tariff == domain.TariffGreen {
		width = 5
	}

	lines := strings.Split(page[:idx], "\n")
	if len(lines) > edpHistoryRows {
		lines = lines[:edpHistoryRows]
	}
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) < width {
			continue
		}
		fields = fields[:width]

		month, err := parseNumericMonth(fields[0])
		if err != nil {
			return nil, nil, fmt.Errorf("edp history row %q: %w", line, err)
		}
		values := make([]float64, width-1)
		for i, tok := range fields[1:] {
			if values[i], err = strconv.ParseFloat(tok, 64); err != nil {
				return nil, nil, fmt.Errorf("edp history row %q: %w", line, err)
			}
		}

		// off-peak consumption is the individual plus capacitive sub-columns
		offPeak := values[1] + values[2]
		consumption = append(consumption, domain.SeriesPoint{
			Month: month, Peak: ptr(values[0]), OffPeak: ptr(offPeak),
		})
		point := domain.SeriesPoint{Month: month}
		if width == 6 {
			point.Peak = ptr(values[3])
			point.OffPeak = ptr(values[4])
		} else {
			point.OffPeak = ptr(values[3])
		}
		demand = append(demand, point)
	}
	if len(consumption) == 0 {
		return nil, nil, fmt.Errorf("edp: empty billing history in %s (client %q)", doc.Path, client)
	}
	return consumption, demand, nil
}

// units come from fixed positions on the second page: the consumption unit
// ends the first line, the demand unit ends the fourth. Longer invoices push
// extra detail pages after it, so the page is indexed, not taken from the
// end.
func (e *edp) units(doc *domain.Document) (consumptionUnit, demandUnit string) {
	lines := strings.Split(doc.Page(1), "\n")
	if len(lines) > 0 && len(lines[0]) >= 3 {
		consumptionUnit = lines[0][len(lines[0])-3:]
	}
	if len(lines) > 3 && len(lines[3]) >= 2 {
		demandUnit = lines[3][len(lines[3])-2:]
	}
	return consumptionUnit, demandUnit
}
