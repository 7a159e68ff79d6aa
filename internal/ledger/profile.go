package ledger

import (
	"gstledger/internal/domain"
)

// Column is a logical raw-row field, independent of how a given export names it.
type Column string

const (
	ColGSTIN           Column = "gstin"
	ColTradeName       Column = "trade_name"
	ColInvoiceNumber   Column = "invoice_number"
	ColInvoiceDate     Column = "invoice_date"
	ColInvoiceValue    Column = "invoice_value"
	ColPlaceOfSupply   Column = "place_of_supply"
	ColReverseCharge   Column = "reverse_charge"
	ColRate            Column = "rate"
	ColTaxableValue    Column = "taxable_value"
	ColIGST            Column = "igst"
	ColCGST            Column = "cgst"
	ColSGST            Column = "sgst"
	ColCess            Column = "cess"
	ColITCAvailability Column = "itc_availability"
)

// SourceProfile parameterizes the engine for one filing source.
type SourceProfile struct {
	Type domain.SourceType
	// Columns lists the accepted headers per logical field; matching ignores case,
	// spacing and punctuation.
	Columns              map[Column][]string
	EditableSupplierName bool
	EditableITC          bool
	// CessOnReverseCharge adds cess to the gross amount of reverse-charge rows too.
	CessOnReverseCharge bool
}

var commonColumns = map[Column][]string{
	ColGSTIN:           {"GSTIN of supplier", "Supplier GSTIN", "GSTIN"},
	ColInvoiceNumber:   {"Invoice number", "Invoice No", "Document number"},
	ColInvoiceDate:     {"Invoice Date", "Document date"},
	ColInvoiceValue:    {"Invoice Value", "Invoice Value (₹)"},
	ColPlaceOfSupply:   {"Place of supply", "POS"},
	ColReverseCharge:   {"Supply Attract Reverse Charge", "Reverse Charge"},
	ColRate:            {"Rate (%)", "Rate"},
	ColTaxableValue:    {"Taxable Value (₹)", "Taxable Value"},
	ColIGST:            {"Integrated Tax (₹)", "Integrated Tax", "IGST"},
	ColCGST:            {"Central Tax (₹)", "Central Tax", "CGST"},
	ColSGST:            {"State/UT Tax (₹)", "State/UT Tax", "SGST"},
	ColCess:            {"Cess (₹)", "Cess"},
	ColITCAvailability: {"ITC Availability", "ITC Available"},
}

// Profile2A describes the GSTR-2A export. Reviewers may correct supplier names
// and ITC availability on it.
var Profile2A = newProfile(domain.SourceGSTR2A, map[Column][]string{
	ColTradeName: {"Trade/Legal name of the Supplier", "Trade/Legal name", "Supplier Name"},
}, true, true)

// Profile2B describes the GSTR-2B export.
var Profile2B = newProfile(domain.SourceGSTR2B, map[Column][]string{
	ColTradeName: {"Trade/Legal name", "Trade/Legal name of the Supplier", "Supplier Name"},
}, false, false)

func newProfile(t domain.SourceType, extra map[Column][]string, editableName, editableITC bool) SourceProfile {
	cols := make(map[Column][]string, len(commonColumns)+len(extra))
	for k, v := range commonColumns {
		cols[k] = v
	}
	for k, v := range extra {
		cols[k] = v
	}
	return SourceProfile{
		Type:                 t,
		Columns:              cols,
		EditableSupplierName: editableName,
		EditableITC:          editableITC,
	}
}

// ProfileFor returns the built-in profile for a source type.
func ProfileFor(t domain.SourceType) (SourceProfile, error) {
	switch t {
	case domain.SourceGSTR2A:
		return Profile2A, nil
	case domain.SourceGSTR2B:
		return Profile2B, nil
	default:
		return SourceProfile{}, domain.ErrInvalidSourceType
	}
}

// WithAliases returns a copy of p that also accepts the given headers.
func (p SourceProfile) WithAliases(aliases map[Column][]string) SourceProfile {
	cols := make(map[Column][]string, len(p.Columns))
	for k, v := range p.Columns {
		cols[k] = append([]string(nil), v...)
	}
	for k, v := range aliases {
		cols[k] = append(cols[k], v...)
	}
	p.Columns = cols
	return p
}

// Headers returns every accepted header of the profile, in no particular order.
func (p SourceProfile) Headers() []string {
	var out []string
	for c, names := range p.Columns {
		out = append(out, string(c))
		out = append(out, names...)
	}
	return out
}

// Recognizes reports whether header names one of the profile's logical columns.
func (p SourceProfile) Recognizes(header string) bool {
	key := normalizeKey(header)
	if key == "" {
		return false
	}
	for c, names := range p.Columns {
		if normalizeKey(string(c)) == key {
			return true
		}
		for _, n := range names {
			if normalizeKey(n) == key {
				return true
			}
		}
	}
	return false
}

// ParseColumn maps a logical column name such as "invoice_number" to its Column.
func ParseColumn(name string) (Column, bool) {
	key := normalizeKey(name)
	for _, c := range allColumns {
		if normalizeKey(string(c)) == key {
			return c, true
		}
	}
	return "", false
}

var allColumns = []Column{
	ColGSTIN, ColTradeName, ColInvoiceNumber, ColInvoiceDate, ColInvoiceValue, ColPlaceOfSupply,
	ColReverseCharge, ColRate, ColTaxableValue, ColIGST, ColCGST, ColSGST, ColCess, ColITCAvailability,
}

// rowReader resolves logical columns against one raw row.
type rowReader struct {
	profile SourceProfile
	values  map[string]any
}

func newRowReader(p SourceProfile, row domain.RawRow) rowReader {
	values := make(map[string]any, len(row))
	for k, v := range row {
		nk := normalizeKey(k)
		if _, seen := values[nk]; !seen {
			values[nk] = v
		}
	}
	return rowReader{profile: p, values: values}
}

// get returns the first non-nil value among the column's accepted headers,
// falling back to the logical column name itself.
func (r rowReader) get(c Column) any {
	for _, name := range r.profile.Columns[c] {
		if v, ok := r.values[normalizeKey(name)]; ok && v != nil {
			return v
		}
	}
	if v, ok := r.values[normalizeKey(string(c))]; ok {
		return v
	}
	return nil
}

func (r rowReader) float(c Column) *float64 { return toFloat(r.get(c)) }
func (r rowReader) text(c Column) string    { return toString(r.get(c)) }

// HeaderKey is the form headers are compared in: lower-case letters and digits only.
func HeaderKey(header string) string { return normalizeKey(header) }
