package extract

import (
	"fmt"
	"regexp"
	"strings"

	"faturas/internal/domain"
)

// COPEL's current layout prints the billing history on the last page as one
// row per month: month token, payment date, consumption peak/off-peak, then
// demand peak/off-peak. Two scanner defects are known and repaired here:
//
//   - rows whose payment date is blank (month not yet processed) come out
//     with every later column shifted one position left; the row is shifted
//     back and the gap filled with a sentinel date;
//   - on the most recent row the peak and off-peak readings are sometimes
//     concatenated into a single numeric string (for both the consumption
//     pair and the demand pair); the merged string is split using the
//     character length of the following row's reading.
//
// Documents in COPEL's first historical layout (recognizable by its old
// per-measure anchors) are reported as not supported.
const (
	copelHistoryAnchor = "histórico de consumo e demanda"
	copelLegacyAnchor  = "consumo ponta"

	// copelDateSentinel replaces a blank payment date after the shift repair.
	copelDateSentinel = "01/01/1900"

	// mergedReadingRatio is the empirical threshold above which two adjacent
	// readings are taken as evidence of concatenated peak/off-peak fields.
	mergedReadingRatio = 100.0
)

var (
	copelTariff  = regexp.MustCompile(`modalidade tarifária:?\s*(\w+)`)
	copelPayDate = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)
)

type copel struct{}

func init() {
	register(domain.VendorCOPEL, func() Extractor { return &copel{} })
}

func (c *copel) Vendor() domain.Vendor { return domain.VendorCOPEL }

func (c *copel) Extract(doc *domain.Document) (*domain.InvoiceRecord, error) {
	name := c.clientName(doc)

	rows, err := c.historyRows(doc, name)
	if err != nil {
		return nil, err
	}

	var consumption, demand []domain.SeriesPoint
	for _, row := range rows {
		month, err := parseMonthToken(row[0])
		if err != nil {
			return nil, fmt.Errorf("copel history row %v: %w", row, err)
		}
		values := make([]float64, 4)
		for i, tok := range row[2:6] {
			v, err := parseDecimal(tok)
			if err != nil {
				return nil, fmt.Errorf("copel history row %v: %w", row, err)
			}
			values[i] = v
		}
		consumption = append(consumption, domain.SeriesPoint{Month: month, Peak: ptr(values[0]), OffPeak: ptr(values[1])})
		demand = append(demand, domain.SeriesPoint{Month: month, Peak: ptr(values[2]), OffPeak: ptr(values[3])})
	}
	sortSeries(consumption, demand)

	return &domain.InvoiceRecord{
		Vendor:          domain.VendorCOPEL,
		ClientName:      name,
		MeterCode:       doc.MeterCode(),
		Tariff:          c.tariff(doc),
		ConsumptionUnit: c.consumptionUnit(doc),
		DemandUnit:      "kw",
		Consumption:     consumption,
		Demand:          demand,
	}, nil
}

func (c *copel) clientName(doc *domain.Document) string {
	for _, line := range strings.Split(doc.FirstPage(), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			return strings.ReplaceAll(strings.ReplaceAll(line, ".", ""), " ", "_")
		}
	}
	return ""
}

func (c *copel) tariff(doc *domain.Document) domain.TariffClass {
	switch capture(copelTariff, doc.FirstPage()) {
	case "verde":
		return domain.TariffGreen
	case "azul":
		return domain.TariffBlue
	default:
		return domain.TariffUnknown
	}
}

func (c *copel) consumptionUnit(doc *domain.Document) string {
	if strings.Contains(doc.LastPage(), "mwh") {
		return "mwh"
	}
	return "kwh"
}

// historyRows tokenizes the history block and applies both repairs so every
// returned row has exactly six fields.
func (c *copel) historyRows(doc *domain.Document, client string) ([][]string, error) {
	page := doc.LastPage()
	start := strings.Index(page, copelHistoryAnchor)
	if start == -1 {
		if strings.Contains(page, copelLegacyAnchor) {
			return nil, fmt.Errorf("copel first historical layout in %s: %w",
				doc.Path, domain.ErrLayoutNotSupported)
		}
		return nil, &domain.AnchorError{
			Vendor: domain.VendorCOPEL, Anchor: copelHistoryAnchor, Path: doc.Path, Client: client,
		}
	}

	var rows [][]string
	for _, line := range strings.Split(page[start+len(copelHistoryAnchor):], "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			if len(rows) > 0 {
				break
			}
			continue
		}
		if _, err := parseMonthToken(fields[0]); err != nil {
			if len(rows) > 0 {
				break
			}
			continue
		}
		rows = append(rows, restoreShiftedRow(fields))
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("copel: empty billing history in %s (client %q)", doc.Path, client)
	}
	return c.splitMergedReadings(rows)
}

// restoreShiftedRow re-inserts the payment-date column when it was printed
// blank and every later value moved one position left.
func restoreShiftedRow(fields []string) []string {
	if len(fields) >= 2 && !copelPayDate.MatchString(fields[1]) && len(fields) != 4 {
		restored := make([]string, 0, len(fields)+1)
		restored = append(restored, fields[0], copelDateSentinel)
		restored = append(restored, fields[1:]...)
		return restored
	}
	return fields
}

// splitMergedReadings repairs the concatenated-reading defect on the first
// row. The merged consumption string splits at the length of the second
// row's consumption reading; the merged demand string splits the same way
// against the second row's demand reading.
func (c *copel) splitMergedReadings(rows [][]string) ([][]string, error) {
	first := rows[0]
	if len(first) == 6 {
		return rows, checkWidths(rows)
	}
	if len(first) != 4 || len(rows) < 2 || len(rows[1]) != 6 {
		return nil, fmt.Errorf("copel: malformed history row %v", first)
	}

	next := rows[1]
	mergedC, mergedD := first[2], first[3]
	cv, err := parseDecimal(mergedC)
	if err != nil {
		return nil, fmt.Errorf("copel merged row: %w", err)
	}
	nv, err := parseDecimal(next[2])
	if err != nil {
		return nil, fmt.Errorf("copel merged row: %w", err)
	}
	if nv == 0 || cv/nv <= mergedReadingRatio {
		return nil, fmt.Errorf("copel: malformed history row %v", first)
	}

	cp, cf, err := splitMerged(mergedC, len(next[2]))
	if err != nil {
		return nil, fmt.Errorf("copel consumption readings: %w", err)
	}
	dp, df, err := splitMerged(mergedD, len(next[4]))
	if err != nil {
		return nil, fmt.Errorf("copel demand readings: %w", err)
	}
	rows[0] = []string{first[0], first[1], cp, cf, dp, df}
	return rows, checkWidths(rows)
}

// splitMerged cuts a concatenated reading so its tail has the same length
// as the reference reading from the following row.
func splitMerged(merged string, refLen int) (head, tail string, err error) {
	if refLen <= 0 || refLen >= len(merged) {
		return "", "", fmt.Errorf("cannot split %q at reference length %d", merged, refLen)
	}
	return merged[:len(merged)-refLen], merged[len(merged)-refLen:], nil
}

func checkWidths(rows [][]string) error {
	for _, row := range rows {
		if len(row) != 6 {
			return fmt.Errorf("copel: malformed history row %v", row)
		}
	}
	return nil
}
