package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"faturas/internal/domain"
)

// CEMIG prints the whole billing history on the first page under a
// "hp hfp hp hfp hr" column header; units, tariff and client name come from
// direct regex capture. No anomaly repair is needed for this layout.
const (
	cemigHistoryAnchor = "hp hfp hp hfp hr"
	cemigHistoryEnd    = "reservado ao fisco"
)

var (
	cemigConsumptionUnit = regexp.MustCompile(`energia\((\w*)\)`)
	cemigDemandUnit      = regexp.MustCompile(`demanda\((\w*)\)`)
	cemigClientName      = regexp.MustCompile(`cliente: (\w.*) unidade:`)
	cemigTariff          = regexp.MustCompile(`ths (\w+)\s`)
)

type cemig struct{}

func init() {
	register(domain.VendorCEMIG, func() Extractor { return &cemig{} })
}

func (c *cemig) Vendor() domain.Vendor { return domain.VendorCEMIG }

func (c *cemig) Extract(doc *domain.Document) (*domain.InvoiceRecord, error) {
	name, err := c.clientName(doc)
	if err != nil {
		return nil, err
	}

	consumption, demand, err := c.series(doc, name)
	if err != nil {
		return nil, err
	}
	sortSeries(consumption, demand)

	rec := &domain.InvoiceRecord{
		Vendor:      domain.VendorCEMIG,
		ClientName:  name,
		MeterCode:   doc.MeterCode(),
		Tariff:      c.tariff(doc),
		Consumption: consumption,
		Demand:      demand,
	}
	rec.ConsumptionUnit = capture(cemigConsumptionUnit, doc.FirstPage())
	rec.DemandUnit = capture(cemigDemandUnit, doc.FirstPage())
	return rec, nil
}

func (c *cemig) clientName(doc *domain.Document) (string, error) {
	m := cemigClientName.FindStringSubmatch(doc.LastPage())
	if m == nil {
		return "", &domain.AnchorError{Vendor: domain.VendorCEMIG, Anchor: "cliente:", Path: doc.Path}
	}
	return m[1], nil
}

func (c *cemig) tariff(doc *domain.Document) domain.TariffClass {
	switch capture(cemigTariff, doc.FirstPage()) {
	case "verde":
		return domain.TariffGreen
	case "azul":
		return domain.TariffBlue
	default:
		return domain.TariffUnknown
	}
}

// series parses the history rows between the column header and the fiscal
// footer. Each row carries a month token, the demand pair, then the
// consumption pair, with one trailing reactive column that is dropped.
func (c *cemig) series(doc *domain.Document, client string) (consumption, demand []domain.SeriesPoint, err error) {
	page := doc.FirstPage()
	start := strings.Index(page, cemigHistoryAnchor)
	if start == -1 {
		return nil, nil, &domain.AnchorError{
			Vendor: domain.VendorCEMIG, Anchor: cemigHistoryAnchor, Path: doc.Path, Client: client,
		}
	}
	start += len(cemigHistoryAnchor) + 1
	end := strings.Index(page, cemigHistoryEnd)
	if end == -1 || end < start {
		return nil, nil, &domain.AnchorError{
			Vendor: domain.VendorCEMIG, Anchor: cemigHistoryEnd, Path: doc.Path, Client: client,
		}
	}

	for _, line := range strings.Split(page[start:end], "\n") {
		fields := strings.Fields(line)
		if len(fields) < 6 {
			continue
		}
		// drop the trailing reactive-energy column
		fields = fields[:len(fields)-1]

		month, err := parseMonthToken(fields[0])
		if err != nil {
			return nil, nil, fmt.Errorf("cemig history row %q: %w", line, err)
		}
		values := make([]float64, 4)
		for i, tok := range fields[1:5] {
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("cemig history row %q: %w", line, err)
			}
			values[i] = v
		}
		demand = append(demand, domain.SeriesPoint{Month: month, Peak: ptr(values[0]), OffPeak: ptr(values[1])})
		consumption = append(consumption, domain.SeriesPoint{Month: month, Peak: ptr(values[2]), OffPeak: ptr(values[3])})
	}
	if len(consumption) == 0 {
		return nil, nil, fmt.Errorf("cemig: empty billing history in %s", doc.Path)
	}
	return consumption, demand, nil
}

func capture(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}
