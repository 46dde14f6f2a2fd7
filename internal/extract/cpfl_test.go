package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"faturas/internal/domain"
)

// cpflLastPage builds a green-tariff history: three months spanning a year
// rollover, one value per line the way the page text decodes.
const cpflGreenLastPage = `consumo ponta - [kwh]
kwh
9,00
10,00
11,00

dias
31 28 31
consumo fora de ponta - [kwh]
2023 janeiro fevereiro
2022 dezembro

kwh
40,00
50,00
60,00

dias
31 28 31
demanda - [kw]
1,00
2,00
3,00
dias
31 28 31
`

func cpflDoc(firstLine, plan string) *domain.Document {
	return &domain.Document{
		Path: "30001.pdf",
		Pages: []string{
			firstLine + "\ncpflempresas\n" + plan + "\n",
			cpflGreenLastPage,
		},
	}
}

func TestCPFL_ExtractGreen(t *testing.T) {
	e, err := ForVendor(domain.VendorCPFL)
	require.NoError(t, err)

	rec, err := e.Extract(cpflDoc("fabrica modelo s.a.", "plano tarifa verde a4"))
	require.NoError(t, err)

	assert.Equal(t, "fabrica_modelo_sa", rec.ClientName)
	assert.Equal(t, domain.TariffGreen, rec.Tariff)
	assert.Equal(t, "kwh", rec.ConsumptionUnit)
	assert.Equal(t, "kw", rec.DemandUnit)

	require.Len(t, rec.Consumption, 3)
	require.Len(t, rec.Demand, 3)

	// ascending after the rollover: dez/22, jan/23, fev/23
	assert.Equal(t, time.Date(2022, time.December, 1, 0, 0, 0, 0, time.UTC), rec.Consumption[0].Month)
	assert.Equal(t, time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC), rec.Consumption[1].Month)
	assert.Equal(t, time.Date(2023, time.February, 1, 0, 0, 0, 0, time.UTC), rec.Consumption[2].Month)

	// dez/22 was the third column before sorting
	assert.Equal(t, 11.0, *rec.Consumption[0].Peak)
	assert.Equal(t, 60.0, *rec.Consumption[0].OffPeak)
	assert.Equal(t, 9.0, *rec.Consumption[1].Peak)
	assert.Equal(t, 40.0, *rec.Consumption[1].OffPeak)

	// green tariff reports a single off-peak demand column
	assert.Nil(t, rec.Demand[0].Peak)
	assert.Equal(t, 3.0, *rec.Demand[0].OffPeak)
	assert.Equal(t, 1.0, *rec.Demand[1].OffPeak)
}

func TestCPFL_TariffPhrases(t *testing.T) {
	e, err := ForVendor(domain.VendorCPFL)
	require.NoError(t, err)

	rec, err := e.Extract(cpflDoc("fabrica modelo s.a.", "plano tarifa verde a4"))
	require.NoError(t, err)
	assert.Equal(t, domain.TariffGreen, rec.Tariff)

	_, err = e.Extract(cpflDoc("fabrica modelo s.a.", "plano verde cliente livre-a4"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "more than one tariff phrase")
}

func TestCPFL_UnknownTariffCannotChooseDemandLayout(t *testing.T) {
	e, err := ForVendor(domain.VendorCPFL)
	require.NoError(t, err)

	_, err = e.Extract(cpflDoc("fabrica modelo s.a.", "plano sem classe"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "without a tariff class")
}

func TestCPFL_MissingOffPeakAnchor(t *testing.T) {
	e, err := ForVendor(domain.VendorCPFL)
	require.NoError(t, err)

	doc := cpflDoc("fabrica modelo s.a.", "plano tarifa verde a4")
	doc.Pages[1] = "pagina sem blocos de consumo\n"

	_, err = e.Extract(doc)
	var anchorErr *domain.AnchorError
	require.ErrorAs(t, err, &anchorErr)
	assert.Equal(t, cpflConsumptionOffPeak, anchorErr.Anchor)
}
