package domain

import (
	"bytes"
	"encoding/json"
)

// Field is an optional edit value. Set reports whether the key was present in the
// payload at all; a present key with a JSON null has Set true and Value nil.
type Field[T any] struct {
	Set   bool
	Value *T
}

// Some returns a present field holding v.
func Some[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: &v}
}

// Null returns a present field that clears the target value.
func Null[T any]() Field[T] {
	return Field[T]{Set: true}
}

// UnmarshalJSON is only invoked when the key exists, which is what marks the field as set.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		f.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	f.Value = &v
	return nil
}

// MarshalJSON writes the value or null. Absent fields should be skipped by the caller.
func (f Field[T]) MarshalJSON() ([]byte, error) {
	if f.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*f.Value)
}

// LedgerFields is the reviewer-editable part of a canonical record. Only fields with
// Set true take part in an edit.
type LedgerFields struct {
	LedgerName      Field[string] `json:"Ledger Name,omitzero"`
	AcceptCredit    Field[string] `json:"Accept Credit,omitzero"`
	Action          Field[Action] `json:"Action,omitzero"`
	ActionReason    Field[string] `json:"Action Reason,omitzero"`
	Narration       Field[string] `json:"Narration,omitzero"`
	ITCAvailability Field[string] `json:"ITC Availability,omitzero"`
	SupplierName    Field[string] `json:"Supplier Name,omitzero"`
}

// Empty reports whether no field is set.
func (f LedgerFields) Empty() bool {
	return !f.LedgerName.Set && !f.AcceptCredit.Set && !f.Action.Set && !f.ActionReason.Set &&
		!f.Narration.Set && !f.ITCAvailability.Set && !f.SupplierName.Set
}

// EditRequest addresses one row of a view and carries the ledger fields to change.
// SerialNo is matched against the target view's own numbering; Index is the 0-based
// position within the target view and is only consulted when SerialNo does not resolve.
type EditRequest struct {
	SerialNo *int `json:"Sr No,omitempty"`
	Index    *int `json:"index,omitempty"`
	LedgerFields
}

// RowChange is the set of fields actually modified on one row, keyed by row identity.
type RowChange struct {
	SourceRowID int
	Fields      LedgerFields
}
