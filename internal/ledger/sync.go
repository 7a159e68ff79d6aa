package ledger

import (
	"gstledger/internal/domain"
)

// Synchronize applies edits addressed to one view of doc, propagates every changed
// field to the canonical record with the same SourceRowID, renumbers the canonical set
// and re-derives all views. It reports false, leaving doc untouched, when no edit
// changes any value.
func (e *Engine) Synchronize(doc *domain.ProcessedDocument, view domain.ViewName, edits []domain.EditRequest) (bool, error) {
	target := doc.View(view)
	if target == nil {
		return false, domain.ErrInvalidView
	}
	if len(*target) == 0 {
		return false, domain.ErrViewEmpty
	}
	for i := range edits {
		if a := edits[i].Action; a.Set && a.Value != nil && !domain.ValidActions[*a.Value] {
			return false, domain.ErrInvalidAction
		}
	}

	rows := *target
	bySerial := make(map[int]int, len(rows))
	for i := range rows {
		bySerial[rows[i].SerialNo] = i
	}

	// Work on a copy of the target so an error or a no-op leaves doc as it was.
	working := make(domain.Records, len(rows))
	copy(working, rows)

	resolved := 0
	var changes []domain.RowChange
	for i := range edits {
		idx, ok := resolveRow(&edits[i], bySerial, len(working))
		if !ok {
			continue
		}
		resolved++
		fields := e.editableFields(edits[i].LedgerFields)
		changed := applyFields(&working[idx], fields)
		if !changed.Empty() {
			changes = append(changes, domain.RowChange{SourceRowID: working[idx].SourceRowID, Fields: changed})
		}
	}
	if resolved == 0 {
		return false, domain.ErrNoMatchingRows
	}
	if len(changes) == 0 {
		return false, nil
	}

	byID := make(map[int]int, len(doc.Canonical))
	for i := range doc.Canonical {
		byID[doc.Canonical[i].SourceRowID] = i
	}
	for _, ch := range changes {
		if i, ok := byID[ch.SourceRowID]; ok {
			applyFields(&doc.Canonical[i], ch.Fields)
		}
	}

	e.Rederive(doc)
	return true, nil
}

// Append classifies manually entered rows, appends them to the canonical set and
// re-derives all views. It returns the number of rows added.
func (e *Engine) Append(doc *domain.ProcessedDocument, rows []domain.RawRow) (int, error) {
	if len(rows) == 0 {
		return 0, domain.ErrNoRows
	}
	next := NextSourceRowID(doc.Canonical)
	for i, row := range rows {
		rec, _ := e.Classify(row, next+i)
		doc.Canonical = append(doc.Canonical, rec)
	}
	e.Rederive(doc)
	return len(rows), nil
}

// Rederive renumbers the canonical set and rebuilds the three views from it.
// ReverseCharge and Mismatched keep the membership fixed at classification time;
// Disallow is recomputed from the current ledger names and ITC availability.
func (e *Engine) Rederive(doc *domain.ProcessedDocument) {
	doc.Canonical.Renumber()

	rc := make(domain.Records, 0, len(doc.ReverseCharge))
	mm := make(domain.Records, 0, len(doc.Mismatched))
	dis := make(domain.Records, 0, len(doc.Disallow))
	for i := range doc.Canonical {
		rec := doc.Canonical[i]
		if rec.ReverseCharge {
			rc = append(rc, rec)
		}
		if rec.Mismatched {
			mm = append(mm, rec)
		}
		if e.IsDisallowed(&rec) {
			dis = append(dis, rec)
		}
	}
	rc.Renumber()
	mm.Renumber()
	dis.Renumber()
	doc.ReverseCharge, doc.Mismatched, doc.Disallow = rc, mm, dis
}

// NextSourceRowID is the first identity not used by any record, and never less than len(records).
func NextSourceRowID(records domain.Records) int {
	next := len(records)
	for i := range records {
		if records[i].SourceRowID >= next {
			next = records[i].SourceRowID + 1
		}
	}
	return next
}

// resolveRow finds the target row by serial number, falling back to the positional index.
func resolveRow(req *domain.EditRequest, bySerial map[int]int, n int) (int, bool) {
	if req.SerialNo != nil {
		if idx, ok := bySerial[*req.SerialNo]; ok {
			return idx, true
		}
	}
	if req.Index != nil && *req.Index >= 0 && *req.Index < n {
		return *req.Index, true
	}
	return 0, false
}

// editableFields drops fields this source does not allow editing and normalizes ITC values.
func (e *Engine) editableFields(f domain.LedgerFields) domain.LedgerFields {
	if !e.profile.EditableSupplierName {
		f.SupplierName = domain.Field[string]{}
	}
	if !e.profile.EditableITC {
		f.ITCAvailability = domain.Field[string]{}
	}
	if f.ITCAvailability.Set {
		var raw any
		if f.ITCAvailability.Value != nil {
			raw = *f.ITCAvailability.Value
		}
		f.ITCAvailability = domain.Some(NormalizeITC(raw))
	}
	return f
}

// applyFields writes every set field that differs from the record's current value and
// returns only the fields it actually changed.
func applyFields(rec *domain.CanonicalRecord, f domain.LedgerFields) domain.LedgerFields {
	var changed domain.LedgerFields
	if f.LedgerName.Set && !samePtr(rec.LedgerName, f.LedgerName.Value) {
		rec.LedgerName = clonePtr(f.LedgerName.Value)
		changed.LedgerName = f.LedgerName
	}
	if f.AcceptCredit.Set && !samePtr(rec.AcceptCredit, f.AcceptCredit.Value) {
		rec.AcceptCredit = clonePtr(f.AcceptCredit.Value)
		changed.AcceptCredit = f.AcceptCredit
	}
	if f.Action.Set && !samePtr(rec.Action, f.Action.Value) {
		rec.Action = clonePtr(f.Action.Value)
		changed.Action = f.Action
	}
	if f.ActionReason.Set && !samePtr(rec.ActionReason, f.ActionReason.Value) {
		rec.ActionReason = clonePtr(f.ActionReason.Value)
		changed.ActionReason = f.ActionReason
	}
	if f.Narration.Set && !samePtr(rec.Narration, f.Narration.Value) {
		rec.Narration = clonePtr(f.Narration.Value)
		changed.Narration = f.Narration
	}
	if f.ITCAvailability.Set && f.ITCAvailability.Value != nil && rec.ITCAvailability != *f.ITCAvailability.Value {
		rec.ITCAvailability = *f.ITCAvailability.Value
		changed.ITCAvailability = f.ITCAvailability
	}
	if f.SupplierName.Set {
		name := ""
		if f.SupplierName.Value != nil {
			name = *f.SupplierName.Value
		}
		if rec.SupplierName != name {
			rec.SupplierName = name
			changed.SupplierName = f.SupplierName
		}
	}
	return changed
}

func samePtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
