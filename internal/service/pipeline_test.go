package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"faturas/internal/csvexport"
	"faturas/internal/dbsync"
	"faturas/internal/domain"
	"faturas/mocks"
)

const cemigPage = `fale com cemig
energia(kwh) demanda(kw)
ths verde a4
hp hfp hp hfp hr
jan/23 110 210 310 410 51
dez/22 100 200 300 400 50
reservado ao fisco
`

func writeFakeInvoice(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o644))
	return path
}

func TestPipeline_Run(t *testing.T) {
	invoiceDir := t.TempDir()
	outDir := t.TempDir()

	goodPath := writeFakeInvoice(t, invoiceDir, "10001.pdf")
	badPath := writeFakeInvoice(t, invoiceDir, "90009.pdf")
	// non-pdf files are not picked up at all
	require.NoError(t, os.WriteFile(filepath.Join(invoiceDir, "notas.txt"), []byte("x"), 0o644))

	source := new(mocks.MockPageSource)
	source.On("Extract", mock.Anything, goodPath).Return(&domain.Document{
		Path: goodPath,
		Pages: []string{
			cemigPage,
			"pagina final cliente: empresa exemplo unidade: 001\n",
		},
	}, nil)
	source.On("Extract", mock.Anything, badPath).Return(nil, errors.New("encrypted"))

	clients := new(mocks.MockClientRepo)
	clients.On("List", mock.Anything).Return([]domain.ClientRow{}, nil)
	clients.On("Append", mock.Anything, mock.Anything).Return(nil)

	consumption := new(mocks.MockConsumptionRepo)
	consumption.On("ListRows", mock.Anything, "cemig").Return(nil, nil)
	var appended []domain.ConsumptionRow
	consumption.On("Append", mock.Anything, "cemig", mock.Anything).
		Run(func(args mock.Arguments) {
			appended = args.Get(2).([]domain.ConsumptionRow)
		}).
		Return(nil)
	consumption.On("ListTables", mock.Anything).Return([]string{"cemig"}, nil)
	consumption.On("ClientSeries", mock.Anything, "cemig").Return([]domain.ClientSeriesRow{
		{Name: "empresa_exemplo", MeterCode: "10001", Total: 710, Month: "012023"},
	}, nil)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	p := NewPipeline(
		source,
		dbsync.NewSyncer(clients, consumption, logger),
		consumption,
		csvexport.NewExporter(filepath.Join(outDir, "distribuidoras")),
		filepath.Join(outDir, "relatorio.xlsx"),
		logger,
	)

	result, err := p.Run(context.Background(), invoiceDir)
	require.NoError(t, err)

	require.Len(t, result.Files, 2)
	assert.Equal(t, "10001.pdf", result.Files[0].File)
	assert.Equal(t, statusProcessed, result.Files[0].Status)
	assert.Equal(t, "cemig", result.Files[0].Vendor)
	assert.Equal(t, statusSkipped, result.Files[1].Status)
	assert.Contains(t, result.Files[1].Detail, "encrypted")

	assert.Equal(t, 1, result.Summary.NewClients)
	assert.Equal(t, 2, result.Summary.Tables["cemig"].Appended)
	require.Len(t, appended, 2)

	// export and report artifacts
	assert.FileExists(t, filepath.Join(outDir, "distribuidoras", "cemig",
		"empresa_exemplo-10001", "consumo_empresa_exemplo-10001.csv"))
	assert.FileExists(t, filepath.Join(outDir, "relatorio.xlsx"))

	source.AssertExpectations(t)
	consumption.AssertExpectations(t)
}

func TestPipeline_UnidentifiedVendorIsSkipped(t *testing.T) {
	invoiceDir := t.TempDir()
	outDir := t.TempDir()
	path := writeFakeInvoice(t, invoiceDir, "77777.pdf")

	source := new(mocks.MockPageSource)
	source.On("Extract", mock.Anything, path).Return(&domain.Document{
		Path:  path,
		Pages: []string{"documento sem assinatura conhecida\n"},
	}, nil)

	clients := new(mocks.MockClientRepo)
	clients.On("List", mock.Anything).Return([]domain.ClientRow{}, nil)
	consumption := new(mocks.MockConsumptionRepo)
	consumption.On("ListTables", mock.Anything).Return([]string{}, nil)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	p := NewPipeline(
		source,
		dbsync.NewSyncer(clients, consumption, logger),
		consumption,
		csvexport.NewExporter(filepath.Join(outDir, "distribuidoras")),
		filepath.Join(outDir, "relatorio.xlsx"),
		logger,
	)

	result, err := p.Run(context.Background(), invoiceDir)
	require.NoError(t, err)

	require.Len(t, result.Files, 1)
	assert.Equal(t, statusSkipped, result.Files[0].Status)
	assert.Equal(t, "distribuidora nao identificada", result.Files[0].Detail)
	clients.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestPipeline_MissingDir(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	p := NewPipeline(new(mocks.MockPageSource), nil, nil, nil, "", logger)

	_, err := p.Run(context.Background(), filepath.Join(t.TempDir(), "nao-existe"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading invoice dir")
}
