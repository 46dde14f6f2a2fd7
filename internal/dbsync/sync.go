package dbsync

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"faturas/internal/aggregate"
	"faturas/internal/domain"
	"faturas/internal/port"
)

// Syncer pushes aggregated rows into the store without ever touching what
// is already there. Clients and consumption months are both append-only.
type Syncer struct {
	clients     port.ClientRepository
	consumption port.ConsumptionRepository
	log         *slog.Logger
}

func NewSyncer(clients port.ClientRepository, consumption port.ConsumptionRepository, log *slog.Logger) *Syncer {
	return &Syncer{clients: clients, consumption: consumption, log: log}
}

// TableOutcome reports what a run did to one vendor table. Err is set when
// the table's write failed; its rows were not persisted but the run went on.
type TableOutcome struct {
	Appended int
	Skipped  int
	Err      error
}

// Wrote reports whether the run changed the table.
func (o TableOutcome) Wrote() bool { return o.Err == nil && o.Appended > 0 }

// Summary is the result of one sync run.
type Summary struct {
	NewClients int
	Tables     map[string]TableOutcome
}

// Sync reconciles rows against the store. Known clients keep their persisted
// identity, unknown ones are minted and appended; then each vendor table
// receives only the months whose composite key it has never held. Running
// the same input twice appends nothing the second time.
//
// A failed table write is recorded in its outcome and the remaining tables
// still sync; only the identity step can fail the whole run, since without
// ids no table can be keyed.
func (s *Syncer) Sync(ctx context.Context, rows []aggregate.Row) (*Summary, error) {
	rows = dedupeMonths(rows)

	ids, minted, err := s.assignIDs(ctx, rows)
	if err != nil {
		return nil, err
	}

	summary := &Summary{NewClients: minted, Tables: make(map[string]TableOutcome)}
	for table, tableRows := range groupByVendor(rows) {
		outcome, err := s.syncTable(ctx, table, tableRows, ids)
		if err != nil {
			outcome.Err = fmt.Errorf("sync table %s: %w", table, err)
			s.log.Error("table sync failed",
				slog.String("table", table),
				slog.String("error", err.Error()),
			)
			summary.Tables[table] = outcome
			continue
		}
		summary.Tables[table] = outcome
		s.log.Info("table synced",
			slog.String("table", table),
			slog.Int("appended", outcome.Appended),
			slog.Int("skipped", outcome.Skipped),
		)
	}
	return summary, nil
}

// clientKey identifies a billed unit. One name can hold several meter codes,
// and even the same meter under two distributors after a concession change,
// so identity is the full triple, never the name alone.
type clientKey struct {
	name      string
	meterCode string
	vendor    domain.Vendor
}

// assignIDs resolves every row to a client identity, minting and persisting
// identities for (name, meter code, vendor) triples the store has never held.
func (s *Syncer) assignIDs(ctx context.Context, rows []aggregate.Row) (map[clientKey]string, int, error) {
	existing, err := s.clients.List(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("list clients: %w", err)
	}
	ids := make(map[clientKey]string, len(existing))
	for _, c := range existing {
		ids[clientKey{c.Name, c.MeterCode, c.Vendor}] = c.ID
	}

	var newClients []domain.ClientRow
	for _, r := range rows {
		k := clientKey{r.Name, r.MeterCode, r.Vendor}
		if _, known := ids[k]; known {
			continue
		}
		id := NewClientID(r.Name, r.MeterCode)
		ids[k] = id
		newClients = append(newClients, domain.ClientRow{
			ID:        id,
			Name:      r.Name,
			MeterCode: r.MeterCode,
			Vendor:    r.Vendor,
			Tariff:    r.Tariff,
		})
	}
	if len(newClients) > 0 {
		if err := s.clients.Append(ctx, newClients); err != nil {
			return nil, 0, fmt.Errorf("append clients: %w", err)
		}
		s.log.Info("new clients registered", slog.Int("count", len(newClients)))
	}
	return ids, len(newClients), nil
}

func (s *Syncer) syncTable(ctx context.Context, table string, rows []aggregate.Row, ids map[clientKey]string) (TableOutcome, error) {
	persisted, err := s.consumption.ListRows(ctx, table)
	if err != nil {
		return TableOutcome{}, fmt.Errorf("list rows: %w", err)
	}
	existingKeys := make(map[string]struct{}, len(persisted))
	for _, p := range persisted {
		existingKeys[p.CompositeKey] = struct{}{}
	}

	var outcome TableOutcome
	var novel []domain.ConsumptionRow
	for _, r := range rows {
		key := CompositeKey(ids[clientKey{r.Name, r.MeterCode, r.Vendor}], r.Month)
		if _, held := existingKeys[key]; held {
			outcome.Skipped++
			continue
		}
		existingKeys[key] = struct{}{}
		novel = append(novel, domain.ConsumptionRow{
			CompositeKey:       key,
			ConsumptionPeak:    r.ConsumptionPeak,
			ConsumptionOffPeak: r.ConsumptionOffPeak,
			DemandPeak:         r.DemandPeak,
			DemandOffPeak:      r.DemandOffPeak,
			ConsumptionUnit:    r.ConsumptionUnit,
			DemandUnit:         r.DemandUnit,
		})
	}
	if len(novel) > 0 {
		if err := s.consumption.Append(ctx, table, novel); err != nil {
			return TableOutcome{}, fmt.Errorf("append rows: %w", err)
		}
	}
	outcome.Appended = len(novel)
	return outcome, nil
}

func groupByVendor(rows []aggregate.Row) map[string][]aggregate.Row {
	grouped := make(map[string][]aggregate.Row)
	for _, r := range rows {
		table := string(r.Vendor)
		grouped[table] = append(grouped[table], r)
	}
	for _, tableRows := range grouped {
		sort.SliceStable(tableRows, func(i, j int) bool {
			if tableRows[i].Name != tableRows[j].Name {
				return tableRows[i].Name < tableRows[j].Name
			}
			return tableRows[i].Month.Before(tableRows[j].Month)
		})
	}
	return grouped
}
