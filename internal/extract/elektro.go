package extract

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"faturas/internal/domain"
)

// ELEKTRO invoices do not print a billing history the reader can recover, so
// the extractor reports client metadata and the reference month only. Records
// produced here never satisfy HasSeries and are excluded from aggregation.
var (
	elektroTariff    = regexp.MustCompile(`horária (\w*)\s/`)
	elektroConsUnit  = regexp.MustCompile(`consumo ponta te (\wwh)`)
	elektroDemUnit   = regexp.MustCompile(`demanda tusd (\ww)`)
	elektroReference = regexp.MustCompile(`leitura atual: \d.*/(\d*/\d*)`)
)

type elektro struct{}

func init() {
	register(domain.VendorELEKTRO, func() Extractor { return &elektro{} })
}

func (e *elektro) Vendor() domain.Vendor { return domain.VendorELEKTRO }

func (e *elektro) Extract(doc *domain.Document) (*domain.InvoiceRecord, error) {
	page := doc.FirstPage()

	name := e.clientName(page)
	month, err := e.referenceMonth(page)
	if err != nil {
		return nil, fmt.Errorf("elektro %s (client %q): %w", doc.Path, name, err)
	}

	tariff := domain.TariffUnknown
	if t := capture(elektroTariff, page); t != "" {
		tariff = domain.TariffClass(t)
	}

	return &domain.InvoiceRecord{
		Vendor:          domain.VendorELEKTRO,
		ClientName:      name,
		MeterCode:       doc.MeterCode(),
		Tariff:          tariff,
		ConsumptionUnit: capture(elektroConsUnit, page),
		DemandUnit:      capture(elektroDemUnit, page),
		Consumption:     []domain.SeriesPoint{{Month: month}},
	}, nil
}

// Duplicate ("segunda via") invoices carry two extra header lines before the
// client name.
func (e *elektro) clientName(page string) string {
	lines := strings.Split(page, "\n")
	line := ""
	if strings.Contains(page, "segunda via") {
		if len(lines) > 3 {
			line = lines[3]
		}
	} else if len(lines) > 1 {
		line = lines[1]
	}
	return strings.ReplaceAll(strings.TrimSpace(line), " ", "_")
}

func (e *elektro) referenceMonth(page string) (time.Time, error) {
	ref := capture(elektroReference, page)
	if ref == "" {
		return time.Time{}, fmt.Errorf("reference month not found")
	}
	return time.Parse("01/2006", ref)
}
