package ledger

import (
	"gstledger/internal/domain"
)

// ProcessResult is a freshly classified record set and its derived views.
type ProcessResult struct {
	Canonical     domain.Records
	ReverseCharge domain.Records
	Mismatched    domain.Records
	Disallow      domain.Records
	// Duplicates counts rows dropped by invoice-number/GSTIN dedup.
	Duplicates int
}

// Process classifies every row of an import, assigning SourceRowIDs from offset.
// Rows repeating an earlier (invoice number, GSTIN) pair are dropped; rows without
// an invoice number are always kept.
func (e *Engine) Process(rows []domain.RawRow, offset int) *ProcessResult {
	res := &ProcessResult{Canonical: make(domain.Records, 0, len(rows))}
	seen := make(map[string]struct{}, len(rows))
	disallowIDs := make(map[int]struct{})

	id := offset
	for _, row := range rows {
		r := newRowReader(e.profile, row)
		if inv := normalizeInvoiceNumber(r.text(ColInvoiceNumber)); inv != "" {
			key := inv + "|" + normalizeGSTIN(r.text(ColGSTIN))
			if _, dup := seen[key]; dup {
				res.Duplicates++
				continue
			}
			seen[key] = struct{}{}
		}

		rec, mismatched := e.Classify(row, id)
		id++
		res.Canonical = append(res.Canonical, rec)
		if rec.ReverseCharge {
			res.ReverseCharge = append(res.ReverseCharge, rec)
		}
		if mismatched {
			res.Mismatched = append(res.Mismatched, rec)
		}
		if rec.ITCAvailability == domain.ITCNo {
			disallowIDs[rec.SourceRowID] = struct{}{}
		}
	}

	res.Canonical.Renumber()
	res.ReverseCharge.Renumber()
	res.Mismatched.Renumber()
	res.Disallow = e.mergeDisallow(res.Canonical, disallowIDs)
	return res
}

// Apply copies the result's collections onto doc, replacing what was there. Identity
// and the reconcile link are left alone.
func (r *ProcessResult) Apply(doc *domain.ProcessedDocument) {
	doc.Canonical = r.Canonical
	doc.ReverseCharge = nonNil(r.ReverseCharge)
	doc.Mismatched = nonNil(r.Mismatched)
	doc.Disallow = nonNil(r.Disallow)
}

// mergeDisallow unions the ITC-disallowed candidates with the rows the disallow rule
// selects, once per SourceRowID, in canonical order.
func (e *Engine) mergeDisallow(canonical domain.Records, candidates map[int]struct{}) domain.Records {
	out := make(domain.Records, 0)
	for i := range canonical {
		rec := &canonical[i]
		_, candidate := candidates[rec.SourceRowID]
		if candidate || e.IsDisallowed(rec) {
			out = append(out, *rec)
		}
	}
	out.Renumber()
	return out
}

func nonNil(r domain.Records) domain.Records {
	if r == nil {
		return domain.Records{}
	}
	return r
}
