// Package extract turns decoded invoice page text into normalized billing
// records. Each vendor's layout gets its own extractor variant; all variants
// share the tokenizer and month-parsing helpers in this package.
package extract

import (
	"fmt"

	"faturas/internal/domain"
)

// Extractor converts a decoded document into a normalized invoice record.
type Extractor interface {
	Vendor() domain.Vendor
	Extract(doc *domain.Document) (*domain.InvoiceRecord, error)
}

type factory func() Extractor

// registry of extractor factories, populated by init() in each vendor file.
var registry = map[domain.Vendor]factory{}

func register(v domain.Vendor, f factory) {
	registry[v] = f
}

// ForVendor returns the extractor variant for a vendor tag.
func ForVendor(v domain.Vendor) (Extractor, error) {
	f, ok := registry[v]
	if !ok {
		return nil, fmt.Errorf("no extractor registered for vendor %q", v)
	}
	return f(), nil
}
