// Package aggregate flattens extracted invoice records into one row per
// client-month and filters implausible readings before persistence.
package aggregate

import (
	"sort"
	"strings"
	"time"

	"faturas/internal/domain"
)

// missing marks a sub-measure the vendor layout does not report. The value
// is persisted as-is so absent readings stay distinguishable from zeros.
const missing = -1

// Row is one month of one client's billing history, ready for persistence.
type Row struct {
	Name            string
	MeterCode       string
	Vendor          domain.Vendor
	Tariff          domain.TariffClass
	ConsumptionUnit string
	DemandUnit      string

	Month              time.Time
	ConsumptionPeak    float64
	ConsumptionOffPeak float64
	DemandPeak         float64
	DemandOffPeak      float64
}

// Build joins each record's consumption and demand series on month and
// flattens the result. Months present in only one of the two series keep the
// other side's values at the missing sentinel. Records without series are
// skipped, and exact duplicate rows (the same file processed twice) collapse
// to one.
func Build(records []*domain.InvoiceRecord) []Row {
	var rows []Row
	seen := make(map[Row]struct{})
	for _, rec := range records {
		if !rec.HasSeries() {
			continue
		}
		for _, row := range flatten(rec) {
			if _, dup := seen[row]; dup {
				continue
			}
			seen[row] = struct{}{}
			rows = append(rows, row)
		}
	}
	return rows
}

func flatten(rec *domain.InvoiceRecord) []Row {
	type pair struct {
		consumption domain.SeriesPoint
		demand      domain.SeriesPoint
	}
	byMonth := make(map[time.Time]*pair)
	for _, p := range rec.Consumption {
		byMonth[p.Month] = &pair{consumption: p}
	}
	for _, p := range rec.Demand {
		if m, ok := byMonth[p.Month]; ok {
			m.demand = p
		} else {
			byMonth[p.Month] = &pair{demand: p}
		}
	}

	months := make([]time.Time, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })

	name := strings.ReplaceAll(rec.ClientName, " ", "_")
	rows := make([]Row, 0, len(months))
	for _, m := range months {
		p := byMonth[m]
		rows = append(rows, Row{
			Name:               name,
			MeterCode:          rec.MeterCode,
			Vendor:             rec.Vendor,
			Tariff:             rec.Tariff,
			ConsumptionUnit:    rec.ConsumptionUnit,
			DemandUnit:         rec.DemandUnit,
			Month:              m,
			ConsumptionPeak:    orMissing(p.consumption.Peak),
			ConsumptionOffPeak: orMissing(p.consumption.OffPeak),
			DemandPeak:         orMissing(p.demand.Peak),
			DemandOffPeak:      orMissing(p.demand.OffPeak),
		})
	}
	return rows
}

func orMissing(v *float64) float64 {
	if v == nil {
		return missing
	}
	return *v
}
