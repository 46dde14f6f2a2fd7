package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrLayoutNotSupported marks a layout variant the extractor knows about
	// but does not parse (e.g. COPEL's first historical layout).
	ErrLayoutNotSupported = errors.New("invoice layout not supported")

	// ErrFileTooLarge marks a file above the identification size threshold.
	ErrFileTooLarge = errors.New("file exceeds identification size threshold")
)

// AmbiguousVendorError reports that more than one vendor signature matched a
// first page. Signatures are assumed mutually exclusive, so this is a
// contract violation and must surface, never be resolved silently.
type AmbiguousVendorError struct {
	Path       string
	Signatures []string
}

func (e *AmbiguousVendorError) Error() string {
	return fmt.Sprintf("ambiguous vendor identification for %s: signatures matched: %s",
		e.Path, strings.Join(e.Signatures, "; "))
}

// AnchorError reports that a vendor extractor could not locate an expected
// text anchor in a document.
type AnchorError struct {
	Vendor Vendor
	Anchor string
	Path   string
	Client string
}

func (e *AnchorError) Error() string {
	return fmt.Sprintf("%s: anchor %q not found in %s (client %q)",
		e.Vendor, e.Anchor, e.Path, e.Client)
}
