package ledger

import (
	"strings"

	"github.com/shopspring/decimal"

	"gstledger/internal/domain"
)

// StateLookup resolves a two-character GSTIN prefix to a state name.
type StateLookup interface {
	StateName(prefix string) (string, bool)
}

// PartyLookup resolves a supplier GSTIN to the owning company's display name for it.
type PartyLookup interface {
	PartyName(gstin string) (string, bool)
}

var half = decimal.NewFromFloat(0.5)

const (
	labelYes = "Yes"
	labelNo  = "No"
)

// Classify converts one raw row into a canonical record. The second result reports
// whether the row's tax amounts matched no supported slab.
func (e *Engine) Classify(row domain.RawRow, sourceRowID int) (domain.CanonicalRecord, bool) {
	r := newRowReader(e.profile, row)

	gstin := normalizeGSTIN(r.text(ColGSTIN))
	rc, rcLabel := parseReverseCharge(r.get(ColReverseCharge))

	rec := domain.CanonicalRecord{
		SourceRowID:        sourceRowID,
		InvoiceNumber:      r.text(ColInvoiceNumber),
		InvoiceDate:        toDate(r.get(ColInvoiceDate)),
		SupplierGSTIN:      gstin,
		SupplierName:       e.supplierName(gstin, r.text(ColTradeName)),
		SupplierState:      e.supplierState(gstin),
		TaxableValue:       r.float(ColTaxableValue),
		InvoiceValue:       r.float(ColInvoiceValue),
		Rate:               r.float(ColRate),
		IGST:               r.float(ColIGST),
		CGST:               r.float(ColCGST),
		SGST:               r.float(ColSGST),
		Cess:               r.float(ColCess),
		ReverseCharge:      rc,
		ReverseChargeLabel: rcLabel,
		ITCAvailability:    NormalizeITC(r.get(ColITCAvailability)),
	}
	if pos := r.text(ColPlaceOfSupply); pos != "" {
		rec.PlaceOfSupply = &pos
	}

	var ledgerAmount, igst, cgst, sgst decimal.Decimal

	res, matched := ResolveSlab(valueOf(rec.TaxableValue), valueOf(rec.IGST), valueOf(rec.CGST), rec.Rate)
	if matched {
		ledgerAmount = dec(rec.TaxableValue)
		l := &domain.SlabLedger{
			LedgerAmount: floatPtr(round2(ledgerAmount)),
			DrCr:         strPtr(domain.Debit),
		}
		if res.Mode == domain.TaxModeIGST {
			igst = dec(rec.IGST)
			l.IGST, l.CGST, l.SGST = floatPtr(round2(igst)), floatPtr(0), floatPtr(0)
		} else {
			cgst, sgst = dec(rec.CGST), dec(rec.SGST)
			l.IGST, l.CGST, l.SGST = floatPtr(0), floatPtr(round2(cgst)), floatPtr(round2(sgst))
		}
		rec.Slab = res.Slab
		rec.TaxMode = res.Mode
		rec.SetLedgerFor(res.Slab, l)
	} else {
		rec.Mismatched = true
		// A zero or negative taxable value carries no amount; use the invoice value.
		amount := rec.TaxableValue
		if (amount == nil || *amount <= 0) && rec.InvoiceValue != nil {
			amount = rec.InvoiceValue
		}
		l := &domain.SlabLedger{
			LedgerAmount: amount,
			IGST:         rec.IGST,
			CGST:         rec.CGST,
			SGST:         rec.SGST,
		}
		if amount != nil {
			l.DrCr = strPtr(domain.Debit)
		}
		ledgerAmount, igst, cgst, sgst = dec(amount), dec(rec.IGST), dec(rec.CGST), dec(rec.SGST)
		rec.SetLedgerFor(domain.SlabNone, l)
	}

	gross := ledgerAmount.Add(igst).Add(cgst).Add(sgst)
	if !rc || e.profile.CessOnReverseCharge {
		gross = gross.Add(dec(rec.Cess))
	}
	gross = gross.Round(2)

	rec.GroAmount = gross.InexactFloat64()
	rec.RoundOffDr, rec.RoundOffCr = roundOff(gross)
	rec.InvoiceAmount = round2(gross.Add(dec(rec.RoundOffCr)).Sub(dec(rec.RoundOffDr)))

	rec.SupplierAmount = rec.InvoiceAmount
	if rc && rec.TaxableValue != nil {
		rec.SupplierAmount = *rec.TaxableValue
	}

	return rec, rec.Mismatched
}

// roundOff returns the debit or credit adjustment that brings gross to a whole unit.
// A fractional part of exactly .5 rounds up (credit).
func roundOff(gross decimal.Decimal) (debit, credit *float64) {
	frac := gross.Sub(gross.Floor())
	switch {
	case frac.IsZero():
		return nil, nil
	case frac.GreaterThanOrEqual(half):
		return nil, floatPtr(round2(gross.Ceil().Sub(gross)))
	default:
		return floatPtr(round2(frac)), nil
	}
}

func (e *Engine) supplierName(gstin, tradeName string) string {
	if gstin != "" && e.parties != nil {
		if name, ok := e.parties.PartyName(gstin); ok && name != "" {
			return name
		}
	}
	if tradeName != "" {
		return tradeName
	}
	return gstin
}

// supplierState is derived only from the GSTIN; place of supply is read separately from the row.
func (e *Engine) supplierState(gstin string) *string {
	if len(gstin) < 2 || e.states == nil {
		return nil
	}
	if name, ok := e.states.StateName(gstin[:2]); ok {
		return &name
	}
	return nil
}

// parseReverseCharge interprets the raw reverse-charge cell. Unrecognized text is
// kept as the display label and counts as not reverse charge.
func parseReverseCharge(v any) (bool, string) {
	switch x := v.(type) {
	case nil:
		return false, labelNo
	case bool:
		if x {
			return true, labelYes
		}
		return false, labelNo
	}
	s := toString(v)
	switch strings.ToLower(s) {
	case "yes", "y", "1", "true":
		return true, labelYes
	case "no", "n", "0", "false", "":
		return false, labelNo
	default:
		return false, s
	}
}

// NormalizeITC maps y/yes and n/no to Yes/No, defaults absent values to Yes and
// passes anything else through.
func NormalizeITC(v any) string {
	s := toString(v)
	switch strings.ToLower(s) {
	case "":
		return domain.ITCYes
	case "y", "yes":
		return domain.ITCYes
	case "n", "no":
		return domain.ITCNo
	default:
		return s
	}
}
