// Package dbsync reconciles aggregated billing rows against the store:
// clients get stable identities, months get composite keys, and only rows
// the store has never seen are appended.
package dbsync

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"faturas/internal/aggregate"
)

// monthKeyLayout renders a month as MMYYYY for composite keys.
const monthKeyLayout = "012006"

// NewClientID mints the identity for a client seen for the first time:
// a random UUID, a short tag sampled from the client name, and the meter
// code. The tag takes the name's characters at indices 4, 2 and 0, so the
// same name always yields the same tag.
func NewClientID(name, meterCode string) string {
	return fmt.Sprintf("%s-%s-%s", uuid.New(), nameTag(name), meterCode)
}

func nameTag(name string) string {
	runes := []rune(name)
	var tag []rune
	for _, i := range []int{4, 2, 0} {
		if i < len(runes) {
			tag = append(tag, runes[i])
		}
	}
	return string(tag)
}

// CompositeKey joins a client id with a billing month. It is the dedup unit
// of every vendor table.
func CompositeKey(clientID string, month time.Time) string {
	return clientID + "-" + month.Format(monthKeyLayout)
}

// dedupeMonths keeps the first row per (client name, meter code, month).
// Extraction can yield the same month twice for one unit when two invoices
// overlap in their printed histories; two units of one client keep their own
// rows.
func dedupeMonths(rows []aggregate.Row) []aggregate.Row {
	type key struct {
		name  string
		uc    string
		month time.Time
	}
	seen := make(map[key]struct{}, len(rows))
	kept := rows[:0:0]
	for _, r := range rows {
		k := key{r.Name, r.MeterCode, r.Month}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		kept = append(kept, r)
	}
	return kept
}
