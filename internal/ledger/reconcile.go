package ledger

import (
	"gstledger/internal/domain"
)

// InvoiceNumbers returns the normalized, non-empty invoice numbers of a record set.
func InvoiceNumbers(records domain.Records) map[string]struct{} {
	set := make(map[string]struct{}, len(records))
	for i := range records {
		if inv := normalizeInvoiceNumber(records[i].InvoiceNumber); inv != "" {
			set[inv] = struct{}{}
		}
	}
	return set
}

// Reconcile removes from a every canonical and view row whose invoice number also
// appears in other, then renumbers each collection. Rows without an invoice number are
// kept. It returns the number of canonical rows removed, or ErrNothingToReconcile when
// other has no invoice numbers at all.
func Reconcile(a, other *domain.ProcessedDocument) (int, error) {
	seen := InvoiceNumbers(other.Canonical)
	if len(seen) == 0 {
		return 0, domain.ErrNothingToReconcile
	}

	before := len(a.Canonical)
	a.Canonical = excludeInvoices(a.Canonical, seen)
	a.ReverseCharge = excludeInvoices(a.ReverseCharge, seen)
	a.Mismatched = excludeInvoices(a.Mismatched, seen)
	a.Disallow = excludeInvoices(a.Disallow, seen)
	return before - len(a.Canonical), nil
}

func excludeInvoices(records domain.Records, seen map[string]struct{}) domain.Records {
	out := make(domain.Records, 0, len(records))
	for i := range records {
		inv := normalizeInvoiceNumber(records[i].InvoiceNumber)
		if _, captured := seen[inv]; inv != "" && captured {
			continue
		}
		out = append(out, records[i])
	}
	out.Renumber()
	return out
}
