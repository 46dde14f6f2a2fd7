package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"faturas/internal/domain"
)

// ENEL prints the history between a "mês/ano" header and the first line of
// the current-reading block, which starts with a day count (28, 30 or 31).
// Rows carry six numeric columns when a peak-demand reading exists and five
// otherwise, with a trailing day-count column that is discarded either way.
const enelHistoryAnchor = "mês/ano"

var (
	enelHistoryEnd = regexp.MustCompile(`\d\s(28|30|31)( \w+|\w+)`)
	enelPayerName  = regexp.MustCompile(`\s{2,}|\s\-\s`)
	enelUnits      = regexp.MustCompile(`quant\.\n?.*\((\ww)/\s?\n?(\wwh)`)
	enelUnitsAlt   = regexp.MustCompile(`\((\ww)/(\wwh)/`)
)

type enel struct{}

func init() {
	register(domain.VendorENEL, func() Extractor { return &enel{} })
}

func (e *enel) Vendor() domain.Vendor { return domain.VendorENEL }

func (e *enel) Extract(doc *domain.Document) (*domain.InvoiceRecord, error) {
	name, err := e.clientName(doc)
	if err != nil {
		return nil, err
	}
	consumption, demand, err := e.series(doc, name)
	if err != nil {
		return nil, err
	}
	sortSeries(consumption, demand)

	demandUnit, consumptionUnit := e.units(doc)
	return &domain.InvoiceRecord{
		Vendor:          domain.VendorENEL,
		ClientName:      name,
		MeterCode:       doc.MeterCode(),
		Tariff:          e.tariff(doc),
		ConsumptionUnit: consumptionUnit,
		DemandUnit:      demandUnit,
		Consumption:     consumption,
		Demand:          demand,
	}, nil
}

func (e *enel) clientName(doc *domain.Document) (string, error) {
	_, rest, found := strings.Cut(doc.FirstPage(), "nome do pagador/cpf/cnpj/endereço")
	if !found {
		return "", &domain.AnchorError{Vendor: domain.VendorENEL, Anchor: "nome do pagador", Path: doc.Path}
	}
	var line string
	for _, l := range strings.Split(rest, "\n") {
		if strings.TrimSpace(l) != "" {
			line = strings.TrimLeft(l, " ")
			break
		}
	}
	name := enelPayerName.Split(line, 2)[0]
	return strings.ReplaceAll(strings.TrimRight(name, " "), " ", "_"), nil
}

func (e *enel) tariff(doc *domain.Document) domain.TariffClass {
	_, rest, found := strings.Cut(doc.FirstPage(), " - a4 - ")
	if !found {
		return domain.TariffUnknown
	}
	class, _, _ := strings.Cut(rest, " -")
	switch strings.TrimSpace(class) {
	case "verde":
		return domain.TariffGreen
	case "azul":
		return domain.TariffBlue
	}
	return domain.TariffUnknown
}

// series parses the history block. Column layout per row:
//
//	6 cols: month, demand peak, demand off-peak, consumption peak, consumption off-peak, days
//	5 cols: month, demand off-peak, consumption peak, consumption off-peak, days
func (e *enel) series(doc *domain.Document, client string) (consumption, demand []domain.SeriesPoint, err error) {
	page := doc.FirstPage()
	start := strings.Index(page, enelHistoryAnchor)
	if start == -1 {
		return nil, nil, &domain.AnchorError{
			Vendor: domain.VendorENEL, Anchor: enelHistoryAnchor, Path: doc.Path, Client: client,
		}
	}
	block := page[start:]
	if loc := enelHistoryEnd.FindStringSubmatchIndex(block); loc != nil {
		block = block[:loc[4]]
	}

	lines := strings.Split(block, "\n")
	if len(lines) < 3 {
		return nil, nil, fmt.Errorf("enel: history block truncated in %s (client %q)", doc.Path, client)
	}
	for _, line := range lines[2:] {
		line = strings.TrimRight(line, " ")
		line = strings.ReplaceAll(line, ".", "")
		line = strings.ReplaceAll(line, ",", ".")
		fields := strings.Fields(line)
		if len(fields) < 5 {
			continue
		}

		month, err := parseMonthToken(fields[0])
		if err != nil {
			return nil, nil, fmt.Errorf("enel history row %q: %w", line, err)
		}
		values := make([]float64, len(fields)-1)
		for i, tok := range fields[1:] {
			if values[i], err = strconv.ParseFloat(tok, 64); err != nil {
				return nil, nil, fmt.Errorf("enel history row %q: %w", line, err)
			}
		}

		point := domain.SeriesPoint{Month: month}
		if len(fields) >= 6 {
			point.Peak = ptr(values[0])
			point.OffPeak = ptr(values[1])
			consumption = append(consumption, domain.SeriesPoint{
				Month: month, Peak: ptr(values[2]), OffPeak: ptr(values[3]),
			})
		} else {
			point.OffPeak = ptr(values[0])
			consumption = append(consumption, domain.SeriesPoint{
				Month: month, Peak: ptr(values[1]), OffPeak: ptr(values[2]),
			})
		}
		demand = append(demand, point)
	}
	if len(consumption) == 0 {
		return nil, nil, fmt.Errorf("enel: empty billing history in %s (client %q)", doc.Path, client)
	}
	return consumption, demand, nil
}

func (e *enel) units(doc *domain.Document) (demandUnit, consumptionUnit string) {
	m := enelUnits.FindStringSubmatch(doc.FirstPage())
	if m == nil {
		m = enelUnitsAlt.FindStringSubmatch(doc.FirstPage())
	}
	if m == nil {
		return "nao encontrado", "nao encontrado"
	}
	return m[1], m[2]
}
