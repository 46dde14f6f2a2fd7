// Package csvexport writes each client's monthly consumption series to a
// CSV consumed by the downstream forecasting notebooks.
package csvexport

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"faturas/internal/domain"
)

// header matches what the forecasting side reads.
var header = []string{"datas", "consumo_total"}

// monthKeyLayout is the MMYYYY month suffix of composite keys.
const monthKeyLayout = "012006"

// Exporter writes one CSV per client under
// <dir>/<vendor>/<name>-<uc>/consumo_<name>-<uc>.csv.
type Exporter struct {
	dir string
}

func NewExporter(dir string) *Exporter {
	return &Exporter{dir: dir}
}

// Export writes one vendor table's series, one file per client. Each file
// holds the client's months in order plus a trailing placeholder row for the
// month after the last reading, with an empty value, which the forecasting
// side fills in.
func (e *Exporter) Export(vendor string, rows []domain.ClientSeriesRow) error {
	grouped := make(map[string][]domain.ClientSeriesRow)
	var order []string
	for _, r := range rows {
		slug := r.Name + "-" + r.MeterCode
		if _, ok := grouped[slug]; !ok {
			order = append(order, slug)
		}
		grouped[slug] = append(grouped[slug], r)
	}
	for _, slug := range order {
		if err := e.writeClient(vendor, slug, grouped[slug]); err != nil {
			return fmt.Errorf("exporting %s/%s: %w", vendor, slug, err)
		}
	}
	return nil
}

func (e *Exporter) writeClient(vendor, slug string, rows []domain.ClientSeriesRow) error {
	dir := filepath.Join(e.dir, vendor, slug)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(dir, "consumo_"+slug+".csv"))
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = ';'
	if err := w.Write(header); err != nil {
		return err
	}
	var last time.Time
	for _, r := range rows {
		month, err := time.Parse(monthKeyLayout, r.Month)
		if err != nil {
			return fmt.Errorf("month key %q: %w", r.Month, err)
		}
		if month.After(last) {
			last = month
		}
		record := []string{
			month.Format("2006-01-02"),
			strconv.FormatFloat(r.Total, 'f', -1, 64),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	// placeholder the forecast fills in
	if err := w.Write([]string{last.AddDate(0, 1, 0).Format("2006-01-02"), ""}); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}
