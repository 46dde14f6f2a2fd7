package csvexport

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"faturas/internal/domain"
)

func TestExport_WritesOneFilePerClient(t *testing.T) {
	dir := t.TempDir()
	e := NewExporter(dir)

	err := e.Export("cemig", []domain.ClientSeriesRow{
		{Name: "cliente_a", MeterCode: "1", Total: 100.5, Month: "122022"},
		{Name: "cliente_a", MeterCode: "1", Total: 110, Month: "012023"},
		{Name: "cliente_b", MeterCode: "2", Total: 50, Month: "012023"},
	})
	require.NoError(t, err)

	rows := readCSV(t, filepath.Join(dir, "cemig", "cliente_a-1", "consumo_cliente_a-1.csv"))
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"datas", "consumo_total"}, rows[0])
	assert.Equal(t, []string{"2022-12-01", "100.5"}, rows[1])
	assert.Equal(t, []string{"2023-01-01", "110"}, rows[2])
	// trailing placeholder for the month after the last reading
	assert.Equal(t, []string{"2023-02-01", ""}, rows[3])

	rows = readCSV(t, filepath.Join(dir, "cemig", "cliente_b-2", "consumo_cliente_b-2.csv"))
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"2023-02-01", ""}, rows[2])
}

func TestExport_MalformedMonthKey(t *testing.T) {
	e := NewExporter(t.TempDir())
	err := e.Export("copel", []domain.ClientSeriesRow{
		{Name: "cliente_a", MeterCode: "1", Total: 1, Month: "not-a-month"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "month key")
}

func TestExport_NoRowsWritesNothing(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, NewExporter(dir).Export("edp", nil))

	_, err := os.Stat(filepath.Join(dir, "edp"))
	assert.True(t, os.IsNotExist(err))
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = ';'
	rows, err := r.ReadAll()
	require.NoError(t, err)
	return rows
}
