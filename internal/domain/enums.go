package domain

// Vendor identifies the distribution company that issued an invoice.
// The value doubles as the persisted table name for that vendor's
// consumption rows.
type Vendor string

const (
	VendorCEMIG   Vendor = "cemig"
	VendorCOPEL   Vendor = "copel"
	VendorCPFL    Vendor = "cpfl"
	VendorEDP     Vendor = "edp"
	VendorELEKTRO Vendor = "elektro"
	VendorENEL    Vendor = "enel"
	VendorUnknown Vendor = ""
)

// Vendors lists every identifiable vendor.
var Vendors = []Vendor{
	VendorCEMIG, VendorCOPEL, VendorCPFL, VendorEDP, VendorELEKTRO, VendorENEL,
}

// TariffClass is the horosazonal billing structure of a client. It decides
// whether demand is reported as a single figure or as a peak/off-peak pair.
type TariffClass string

const (
	TariffGreen   TariffClass = "verde"
	TariffBlue    TariffClass = "azul"
	TariffUnknown TariffClass = "nao encontrada"
)
