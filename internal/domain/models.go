package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// Document holds the lowercased page text of a decoded invoice file.
type Document struct {
	Path  string
	Pages []string
}

// Page returns the text of page i, or "" when the document is shorter.
func (d *Document) Page(i int) string {
	if i < 0 || i >= len(d.Pages) {
		return ""
	}
	return d.Pages[i]
}

// FirstPage returns the text of the first page, or "" for an empty document.
func (d *Document) FirstPage() string {
	if len(d.Pages) == 0 {
		return ""
	}
	return d.Pages[0]
}

// LastPage returns the text of the last page, or "" for an empty document.
func (d *Document) LastPage() string {
	if len(d.Pages) == 0 {
		return ""
	}
	return d.Pages[len(d.Pages)-1]
}

// MeterCode derives the consumer-unit code (uc) from the file name stem.
func (d *Document) MeterCode() string {
	base := filepath.Base(d.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// SeriesPoint is one month of a billing history. Nil values mean the layout
// does not report that sub-measure, which is different from zero.
type SeriesPoint struct {
	Month   time.Time
	Peak    *float64
	OffPeak *float64
}

// InvoiceRecord is the normalized result of extracting one document.
// Consumption and Demand share the same month index, ascending.
type InvoiceRecord struct {
	Vendor          Vendor
	ClientName      string
	MeterCode       string
	Tariff          TariffClass
	ConsumptionUnit string
	DemandUnit      string
	Consumption     []SeriesPoint
	Demand          []SeriesPoint
}

// HasSeries reports whether the extractor produced billing histories. A
// record without series (layout variant not yet supported) is still useful
// for identification but is excluded from aggregation.
func (r *InvoiceRecord) HasSeries() bool {
	return len(r.Consumption) > 0 && len(r.Demand) > 0
}

// ClientRow is a persisted client identity. Created once per distinct
// (name, meter code, distributor) triple, never mutated.
type ClientRow struct {
	ID        string      `db:"id"`
	Name      string      `db:"nome"`
	MeterCode string      `db:"uc"`
	Vendor    Vendor      `db:"distribuidora"`
	Tariff    TariffClass `db:"ths"`
}

// ConsumptionRow is one persisted month of consumption and demand for a
// client. CompositeKey is "<client id>-MMYYYY" and is the dedup unit: a
// vendor table never holds two rows with the same key.
type ConsumptionRow struct {
	CompositeKey       string  `db:"id_datas"`
	ConsumptionPeak    float64 `db:"consumo_ponta"`
	ConsumptionOffPeak float64 `db:"consumo_fora_de_ponta"`
	DemandPeak         float64 `db:"demanda_ponta"`
	DemandOffPeak      float64 `db:"demanda_fora_de_ponta"`
	ConsumptionUnit    string  `db:"medida_consumo"`
	DemandUnit         string  `db:"medida_demanda"`
}

// ClientSeriesRow is one month of total consumption for a client, read back
// from a vendor table joined to clients. Month is the raw MMYYYY suffix of
// the composite key.
type ClientSeriesRow struct {
	Name      string  `db:"nome"`
	MeterCode string  `db:"uc"`
	Total     float64 `db:"consumo_total"`
	Month     string  `db:"data"`
}
