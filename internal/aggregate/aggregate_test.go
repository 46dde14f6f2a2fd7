package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"faturas/internal/domain"
)

func month(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func ptr(v float64) *float64 { return &v }

func record() *domain.InvoiceRecord {
	return &domain.InvoiceRecord{
		Vendor:          domain.VendorCEMIG,
		ClientName:      "empresa exemplo",
		MeterCode:       "10001",
		Tariff:          domain.TariffGreen,
		ConsumptionUnit: "kwh",
		DemandUnit:      "kw",
		Consumption: []domain.SeriesPoint{
			{Month: month(2022, time.December), Peak: ptr(100), OffPeak: ptr(200)},
			{Month: month(2023, time.January), Peak: ptr(110), OffPeak: ptr(210)},
		},
		Demand: []domain.SeriesPoint{
			{Month: month(2022, time.December), OffPeak: ptr(10)},
			{Month: month(2023, time.January), OffPeak: ptr(11)},
		},
	}
}

func TestBuild_JoinsSeriesByMonth(t *testing.T) {
	rows := Build([]*domain.InvoiceRecord{record()})
	require.Len(t, rows, 2)

	dez := rows[0]
	assert.Equal(t, "empresa_exemplo", dez.Name)
	assert.Equal(t, domain.VendorCEMIG, dez.Vendor)
	assert.Equal(t, month(2022, time.December), dez.Month)
	assert.Equal(t, 100.0, dez.ConsumptionPeak)
	assert.Equal(t, 200.0, dez.ConsumptionOffPeak)
	assert.Equal(t, 10.0, dez.DemandOffPeak)
	// no peak demand reading on a green tariff
	assert.Equal(t, float64(missing), dez.DemandPeak)
}

func TestBuild_DropsExactDuplicates(t *testing.T) {
	rows := Build([]*domain.InvoiceRecord{record(), record()})
	assert.Len(t, rows, 2)
}

func TestBuild_SkipsRecordsWithoutSeries(t *testing.T) {
	rec := record()
	rec.Demand = nil
	assert.Empty(t, Build([]*domain.InvoiceRecord{rec}))
}

func TestBuild_MonthInOneSeriesOnly(t *testing.T) {
	rec := record()
	rec.Demand = rec.Demand[:1]
	rows := Build([]*domain.InvoiceRecord{rec})
	require.Len(t, rows, 2)

	jan := rows[1]
	assert.Equal(t, 110.0, jan.ConsumptionPeak)
	assert.Equal(t, float64(missing), jan.DemandOffPeak)
}

func TestFilterOutliers_DropsGluedReadingSpike(t *testing.T) {
	rows := series(980, 990, 1000, 1010, 1020, 1030, 1050, 1070, 1090, 1100, 12001000)
	kept := FilterOutliers(rows)

	require.Len(t, kept, len(rows)-1)
	for _, r := range kept {
		assert.Less(t, r.ConsumptionPeak, 12001000.0)
	}
}

func TestFilterOutliers_KeepsSpreadOutSeries(t *testing.T) {
	rows := series(980, 990, 1000, 1010, 1020, 1030, 1050, 1070, 1090, 1100, 2000)
	assert.Len(t, FilterOutliers(rows), len(rows))
}

func TestFilterOutliers_DropsNearZeroFragment(t *testing.T) {
	rows := series(980, 990, 1000, 1010, 1020, 1030, 1050, 1070, 1090, 1100, 0.001)
	kept := FilterOutliers(rows)

	require.Len(t, kept, len(rows)-1)
	for _, r := range kept {
		assert.Greater(t, r.ConsumptionPeak, 1.0)
	}
}

func TestFilterOutliers_SpikeOnShortHistoryClientIsCut(t *testing.T) {
	rows := series(1000, 1010, 1020, 1030, 1040, 1050, 1060, 1070, 1080, 1090, 1100)
	// a second client with only two months still contributes to the batch,
	// so its glued reading is judged against everyone's readings
	rows = append(rows,
		Row{Name: "cliente_novo", Month: month(2023, time.January), ConsumptionPeak: 1050},
		Row{Name: "cliente_novo", Month: month(2023, time.February), ConsumptionPeak: 12001000},
	)

	kept := FilterOutliers(rows)
	require.Len(t, kept, len(rows)-1)
	for _, r := range kept {
		assert.Less(t, r.ConsumptionPeak, 12001000.0)
	}
}

func TestFilterOutliers_ShortSeriesUntouched(t *testing.T) {
	rows := series(1000, 900000)
	assert.Len(t, FilterOutliers(rows), 2)
}

func series(values ...float64) []Row {
	rows := make([]Row, len(values))
	for i, v := range values {
		rows[i] = Row{
			Name:            "cliente",
			Month:           month(2022, time.January).AddDate(0, i, 0),
			ConsumptionPeak: v,
		}
	}
	return rows
}
