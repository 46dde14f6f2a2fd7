// Package identify maps first-page invoice text to the issuing vendor by
// matching fixed signature phrases from each company's boilerplate.
package identify

import (
	"sort"
	"strings"

	"faturas/internal/domain"
)

// signatures maps a substring unique to one vendor's invoice boilerplate to
// its tag. Signatures are assumed mutually exclusive.
var signatures = map[string]domain.Vendor{
	"eletropaulo metropolitana eletricidade de são paulo s.a": domain.VendorENEL,
	"elektro redes s.a.":                         domain.VendorELEKTRO,
	"cpflempresas":                               domain.VendorCPFL,
	"copel distribuição s.a":                     domain.VendorCOPEL,
	"fale com cemig":                             domain.VendorCEMIG,
	"edp são paulo distribuição de energia s.a.": domain.VendorEDP,
}

// Vendor identifies the issuing vendor from lowercased first-page text.
// Zero matches yield VendorUnknown with no error; two or more matches are a
// contract violation and return *domain.AmbiguousVendorError.
func Vendor(firstPage, path string) (domain.Vendor, error) {
	var matched []string
	var vendor domain.Vendor
	for sig, v := range signatures {
		if strings.Contains(firstPage, sig) {
			matched = append(matched, sig)
			vendor = v
		}
	}
	switch len(matched) {
	case 0:
		return domain.VendorUnknown, nil
	case 1:
		return vendor, nil
	default:
		sort.Strings(matched)
		return domain.VendorUnknown, &domain.AmbiguousVendorError{Path: path, Signatures: matched}
	}
}
