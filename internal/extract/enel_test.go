package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"faturas/internal/domain"
)

func enelDoc(history string) *domain.Document {
	firstPage := `eletropaulo metropolitana eletricidade de são paulo s.a
nome do pagador/cpf/cnpj/endereço
 empresa enel s.a - rua das palmeiras 10
fornecimento - a4 - azul - grupo a
quant. faturada (kw/ kwh) tarifas
` + history
	return &domain.Document{
		Path:  "50001.pdf",
		Pages: []string{firstPage},
	}
}

const enelSixColumnHistory = `mês/ano
demanda consumo
jan/23 10,5 20,0 30,0 40,0 31
dez/22 1.000,0 21,0 31,0 41,0 30
1 31 proxima
`

func TestENEL_ExtractSixColumns(t *testing.T) {
	e, err := ForVendor(domain.VendorENEL)
	require.NoError(t, err)

	rec, err := e.Extract(enelDoc(enelSixColumnHistory))
	require.NoError(t, err)

	assert.Equal(t, "empresa_enel_s.a", rec.ClientName)
	assert.Equal(t, domain.TariffBlue, rec.Tariff)
	assert.Equal(t, "kw", rec.DemandUnit)
	assert.Equal(t, "kwh", rec.ConsumptionUnit)

	require.Len(t, rec.Consumption, 2)
	require.Len(t, rec.Demand, 2)

	dez := rec.Demand[0]
	assert.Equal(t, time.Date(2022, time.December, 1, 0, 0, 0, 0, time.UTC), dez.Month)
	// thousands dot stripped, comma is the decimal separator
	assert.Equal(t, 1000.0, *dez.Peak)
	assert.Equal(t, 21.0, *dez.OffPeak)

	jan := rec.Consumption[1]
	assert.Equal(t, 30.0, *jan.Peak)
	assert.Equal(t, 40.0, *jan.OffPeak)
}

func TestENEL_ExtractFiveColumns(t *testing.T) {
	e, err := ForVendor(domain.VendorENEL)
	require.NoError(t, err)

	rec, err := e.Extract(enelDoc(`mês/ano
demanda consumo
jan/23 20,0 30,0 40,0 31
1 31 proxima
`))
	require.NoError(t, err)

	require.Len(t, rec.Demand, 1)
	assert.Nil(t, rec.Demand[0].Peak)
	assert.Equal(t, 20.0, *rec.Demand[0].OffPeak)
	assert.Equal(t, 30.0, *rec.Consumption[0].Peak)
	assert.Equal(t, 40.0, *rec.Consumption[0].OffPeak)
}

func TestENEL_MissingHistoryAnchor(t *testing.T) {
	e, err := ForVendor(domain.VendorENEL)
	require.NoError(t, err)

	_, err = e.Extract(enelDoc("sem bloco de historico\n"))
	var anchorErr *domain.AnchorError
	require.ErrorAs(t, err, &anchorErr)
	assert.Equal(t, enelHistoryAnchor, anchorErr.Anchor)
}

func TestENEL_UnitsFallbackPattern(t *testing.T) {
	e, err := ForVendor(domain.VendorENEL)
	require.NoError(t, err)

	doc := enelDoc(enelSixColumnHistory)
	doc.Pages[0] = `eletropaulo metropolitana eletricidade de são paulo s.a
nome do pagador/cpf/cnpj/endereço
 empresa enel s.a - rua das palmeiras 10
fornecimento - a4 - verde - grupo a
valores (kw/kwh/mes)
` + enelSixColumnHistory
	rec, err := e.Extract(doc)
	require.NoError(t, err)
	assert.Equal(t, domain.TariffGreen, rec.Tariff)
	assert.Equal(t, "kw", rec.DemandUnit)
	assert.Equal(t, "kwh", rec.ConsumptionUnit)
}
