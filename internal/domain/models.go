package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RawRow is one invoice line as produced by a spreadsheet/CSV parser:
// column name to scalar (string, number, bool or nil).
type RawRow map[string]any

// RawRows is a JSONB-backed list of raw rows.
type RawRows []RawRow

// Value implements driver.Valuer.
func (r RawRows) Value() (driver.Value, error) {
	if r == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(r)
}

// Scan implements sql.Scanner.
func (r *RawRows) Scan(src any) error {
	return scanJSON(src, r)
}

// SlabLedger holds the five ledger fields for one rate slab (or the custom fallback).
type SlabLedger struct {
	LedgerAmount *float64 `json:"Ledger Amount"`
	DrCr         *string  `json:"Ledger DR/CR"`
	IGST         *float64 `json:"IGST"`
	CGST         *float64 `json:"CGST"`
	SGST         *float64 `json:"SGST"`
}

// CanonicalRecord is the authoritative representation of one invoice line after classification.
// SourceRowID is assigned once and never reassigned; SerialNo is display order only.
type CanonicalRecord struct {
	SourceRowID int `json:"sourceRowId"`
	SerialNo    int `json:"Sr No"`

	InvoiceNumber string  `json:"Invoice Number"`
	InvoiceDate   *string `json:"Invoice Date"`
	SupplierGSTIN string  `json:"GSTIN of Supplier"`
	SupplierName  string  `json:"Supplier Name"`
	SupplierState *string `json:"Supplier State"`
	PlaceOfSupply *string `json:"Place of Supply"`

	TaxableValue *float64 `json:"Taxable Value"`
	InvoiceValue *float64 `json:"Invoice Value"`
	Rate         *float64 `json:"Rate (%)"`
	IGST         *float64 `json:"Integrated Tax"`
	CGST         *float64 `json:"Central Tax"`
	SGST         *float64 `json:"State/UT Tax"`
	Cess         *float64 `json:"Cess"`

	Slab     Slab        `json:"Slab"`
	TaxMode  TaxMode     `json:"Tax Mode"`
	Ledger5  *SlabLedger `json:"5%"`
	Ledger12 *SlabLedger `json:"12%"`
	Ledger18 *SlabLedger `json:"18%"`
	Ledger28 *SlabLedger `json:"28%"`
	Custom   *SlabLedger `json:"Custom"`

	LedgerName   *string `json:"Ledger Name"`
	AcceptCredit *string `json:"Accept Credit"`
	Action       *Action `json:"Action"`
	ActionReason *string `json:"Action Reason"`
	Narration    *string `json:"Narration"`

	GroAmount      float64  `json:"Gro Amount"`
	RoundOffDr     *float64 `json:"Round Off DR"`
	RoundOffCr     *float64 `json:"Round Off CR"`
	InvoiceAmount  float64  `json:"Invoice Amount"`
	SupplierAmount float64  `json:"Supplier Amount"`

	ReverseCharge      bool   `json:"reverseCharge"`
	ReverseChargeLabel string `json:"Reverse Charge"`
	ITCAvailability    string `json:"ITC Availability"`
	Mismatched         bool   `json:"mismatched"`
}

// LedgerFor returns the ledger set for the given slab, or the custom set for SlabNone.
func (r *CanonicalRecord) LedgerFor(s Slab) *SlabLedger {
	switch s {
	case Slab5:
		return r.Ledger5
	case Slab12:
		return r.Ledger12
	case Slab18:
		return r.Ledger18
	case Slab28:
		return r.Ledger28
	default:
		return r.Custom
	}
}

// SetLedgerFor stores l as the ledger set for s.
func (r *CanonicalRecord) SetLedgerFor(s Slab, l *SlabLedger) {
	switch s {
	case Slab5:
		r.Ledger5 = l
	case Slab12:
		r.Ledger12 = l
	case Slab18:
		r.Ledger18 = l
	case Slab28:
		r.Ledger28 = l
	default:
		r.Custom = l
	}
}

// Records is a JSONB-backed ordered list of canonical records.
type Records []CanonicalRecord

// Value implements driver.Valuer.
func (r Records) Value() (driver.Value, error) {
	if r == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(r)
}

// Scan implements sql.Scanner.
func (r *Records) Scan(src any) error {
	return scanJSON(src, r)
}

// Renumber assigns SerialNo 1..n in the current order.
func (r Records) Renumber() {
	for i := range r {
		r[i].SerialNo = i + 1
	}
}

// ProcessedDocument owns one canonical record set plus its three derived views.
// Its ID is the ID of the import it was produced from.
type ProcessedDocument struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	CompanyID      uuid.UUID  `db:"company_id" json:"company_id"`
	SourceType     SourceType `db:"source_type" json:"source_type"`
	Canonical      Records    `db:"canonical" json:"canonical"`
	ReverseCharge  Records    `db:"reverse_charge" json:"reverse_charge"`
	Mismatched     Records    `db:"mismatched" json:"mismatched"`
	Disallow       Records    `db:"disallow" json:"disallow"`
	ReconciledWith *uuid.UUID `db:"reconciled_with" json:"reconciled_with"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// View returns a pointer to the named collection, or nil for an unknown name.
func (d *ProcessedDocument) View(name ViewName) *Records {
	switch name {
	case ViewCanonical:
		return &d.Canonical
	case ViewReverseCharge:
		return &d.ReverseCharge
	case ViewMismatched:
		return &d.Mismatched
	case ViewDisallow:
		return &d.Disallow
	default:
		return nil
	}
}

// Import is an uploaded filing export and the raw rows parsed from it.
type Import struct {
	ID              uuid.UUID    `db:"id" json:"id"`
	CompanyID       uuid.UUID    `db:"company_id" json:"company_id"`
	SourceType      SourceType   `db:"source_type" json:"source_type"`
	FileName        string       `db:"file_name" json:"file_name"`
	S3Bucket        string       `db:"s3_bucket" json:"-"`
	S3Key           string       `db:"s3_key" json:"-"`
	Rows            RawRows      `db:"rows" json:"-"`
	RowCount        int          `db:"row_count" json:"row_count"`
	Status          ImportStatus `db:"status" json:"status"`
	ProcessAttempts int          `db:"process_attempts" json:"process_attempts"`
	ProcessError    string       `db:"process_error" json:"process_error"`
	CreatedAt       time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time    `db:"updated_at" json:"updated_at"`
}

// Party is a supplier known to one owning company.
type Party struct {
	ID        uuid.UUID `db:"id" json:"id"`
	CompanyID uuid.UUID `db:"company_id" json:"company_id"`
	GSTIN     string    `db:"gstin" json:"gstin"`
	Name      string    `db:"name" json:"name"`
}

// StateCode maps a two-digit GSTIN prefix to a state name.
type StateCode struct {
	Code string `db:"code" json:"code"`
	Name string `db:"name" json:"name"`
}

func scanJSON(src, dest any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("scanJSON: unsupported source type %T", src)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("scanJSON: %w", err)
	}
	return nil
}
