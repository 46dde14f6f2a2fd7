// Package report writes the run-summary workbook operators review after a
// batch: one sheet listing the fate of every input file, one listing what
// each vendor table received.
package report

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"
)

// FileRow is the fate of one input file.
type FileRow struct {
	File   string
	Vendor string
	Client string
	Status string
	Detail string
}

// TableRow is what a run did to one vendor table. Detail carries the write
// failure when the table could not be synced.
type TableRow struct {
	Table    string
	Appended int
	Skipped  int
	Detail   string
}

const (
	filesSheet  = "arquivos"
	tablesSheet = "tabelas"
)

// Write renders the workbook at path, replacing any previous run's report.
func Write(path string, files []FileRow, tables []TableRow) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName(f.GetSheetName(0), filesSheet)
	if err := writeFiles(f, files); err != nil {
		return err
	}
	if _, err := f.NewSheet(tablesSheet); err != nil {
		return err
	}
	if err := writeTables(f, tables); err != nil {
		return err
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving report %s: %w", path, err)
	}
	return nil
}

func writeFiles(f *excelize.File, rows []FileRow) error {
	cells := [][]any{{"arquivo", "distribuidora", "cliente", "status", "detalhe"}}
	sorted := append([]FileRow(nil), rows...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].File < sorted[j].File })
	for _, r := range sorted {
		cells = append(cells, []any{r.File, r.Vendor, r.Client, r.Status, r.Detail})
	}
	return writeSheet(f, filesSheet, cells)
}

func writeTables(f *excelize.File, rows []TableRow) error {
	cells := [][]any{{"tabela", "inseridos", "ignorados", "detalhe"}}
	sorted := append([]TableRow(nil), rows...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Table < sorted[j].Table })
	for _, r := range sorted {
		cells = append(cells, []any{r.Table, r.Appended, r.Skipped, r.Detail})
	}
	return writeSheet(f, tablesSheet, cells)
}

func writeSheet(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
