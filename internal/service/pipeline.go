package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"faturas/internal/aggregate"
	"faturas/internal/csvexport"
	"faturas/internal/dbsync"
	"faturas/internal/domain"
	"faturas/internal/extract"
	"faturas/internal/identify"
	"faturas/internal/port"
	"faturas/internal/report"
)

// File fates reported in the run summary.
const (
	statusProcessed    = "processado"
	statusNoSeries     = "sem historico"
	statusSkipped      = "ignorado"
	statusExtractError = "falha"
)

// Pipeline runs one batch end to end: decode, identify, extract, aggregate,
// sync, export, report.
type Pipeline struct {
	source      port.PageSource
	syncer      *dbsync.Syncer
	consumption port.ConsumptionRepository
	exporter    *csvexport.Exporter
	reportPath  string
	log         *slog.Logger
}

func NewPipeline(
	source port.PageSource,
	syncer *dbsync.Syncer,
	consumption port.ConsumptionRepository,
	exporter *csvexport.Exporter,
	reportPath string,
	log *slog.Logger,
) *Pipeline {
	return &Pipeline{
		source:      source,
		syncer:      syncer,
		consumption: consumption,
		exporter:    exporter,
		reportPath:  reportPath,
		log:         log,
	}
}

// RunResult summarizes one batch.
type RunResult struct {
	Files   []report.FileRow
	Summary *dbsync.Summary
}

// Run processes every invoice in dir (non-recursive, .pdf only). A file that
// cannot be decoded, identified or extracted is recorded in the run report
// and skipped; it never aborts the batch. A vendor table whose write fails
// is likewise recorded while the remaining tables still sync. Only identity,
// export and report failures abort, since the batch's output is incomplete
// without them.
func (p *Pipeline) Run(ctx context.Context, dir string) (*RunResult, error) {
	paths, err := listInvoices(dir)
	if err != nil {
		return nil, err
	}
	p.log.Info("batch started", slog.String("dir", dir), slog.Int("files", len(paths)))

	result := &RunResult{}
	var records []*domain.InvoiceRecord
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, rec := p.processFile(ctx, path)
		result.Files = append(result.Files, row)
		if rec != nil {
			records = append(records, rec)
		}
	}

	rows := aggregate.FilterOutliers(aggregate.Build(records))

	summary, err := p.syncer.Sync(ctx, rows)
	if err != nil {
		return nil, err
	}
	result.Summary = summary

	if err := p.export(ctx); err != nil {
		return nil, err
	}
	if err := p.writeReport(result); err != nil {
		return nil, err
	}
	p.log.Info("batch finished",
		slog.Int("files", len(result.Files)),
		slog.Int("new_clients", summary.NewClients),
	)
	return result, nil
}

// processFile takes one invoice from path to a normalized record. The
// returned record is nil whenever the file contributes nothing to the batch;
// the row says why.
func (p *Pipeline) processFile(ctx context.Context, path string) (report.FileRow, *domain.InvoiceRecord) {
	row := report.FileRow{File: filepath.Base(path)}

	doc, err := p.source.Extract(ctx, path)
	if err != nil {
		row.Status = statusSkipped
		row.Detail = err.Error()
		p.log.Warn("file skipped", slog.String("file", row.File), slog.String("reason", err.Error()))
		return row, nil
	}

	vendor, err := identify.Vendor(doc.FirstPage(), path)
	if err != nil {
		row.Status = statusSkipped
		row.Detail = err.Error()
		p.log.Warn("ambiguous vendor", slog.String("file", row.File), slog.String("reason", err.Error()))
		return row, nil
	}
	if vendor == domain.VendorUnknown {
		row.Status = statusSkipped
		row.Detail = "distribuidora nao identificada"
		p.log.Warn("vendor not identified", slog.String("file", row.File))
		return row, nil
	}
	row.Vendor = string(vendor)

	extractor, err := extract.ForVendor(vendor)
	if err != nil {
		row.Status = statusSkipped
		row.Detail = err.Error()
		return row, nil
	}
	rec, err := extractor.Extract(doc)
	if err != nil {
		if errors.Is(err, domain.ErrLayoutNotSupported) {
			row.Status = statusSkipped
		} else {
			row.Status = statusExtractError
		}
		row.Detail = err.Error()
		p.log.Warn("extraction failed",
			slog.String("file", row.File),
			slog.String("vendor", string(vendor)),
			slog.String("reason", err.Error()),
		)
		return row, nil
	}

	row.Client = rec.ClientName
	if !rec.HasSeries() {
		row.Status = statusNoSeries
	} else {
		row.Status = statusProcessed
	}
	return row, rec
}

// export rewrites every client CSV from what the store now holds, so the
// files reflect all runs, not just this one.
func (p *Pipeline) export(ctx context.Context) error {
	tables, err := p.consumption.ListTables(ctx)
	if err != nil {
		return fmt.Errorf("listing tables: %w", err)
	}
	for _, table := range tables {
		series, err := p.consumption.ClientSeries(ctx, table)
		if err != nil {
			return fmt.Errorf("reading series for %s: %w", table, err)
		}
		if err := p.exporter.Export(table, series); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) writeReport(result *RunResult) error {
	var tables []report.TableRow
	for name, outcome := range result.Summary.Tables {
		row := report.TableRow{
			Table:    name,
			Appended: outcome.Appended,
			Skipped:  outcome.Skipped,
		}
		if outcome.Err != nil {
			row.Detail = outcome.Err.Error()
		}
		tables = append(tables, row)
	}
	return report.Write(p.reportPath, result.Files, tables)
}

func listInvoices(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading invoice dir %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	return paths, nil
}
