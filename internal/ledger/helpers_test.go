package ledger_test

import (
	"gstledger/internal/domain"
	"gstledger/internal/ledger"
	"gstledger/internal/lookup"
)

func newEngine(opts ...ledger.Option) *ledger.Engine {
	return newEngineFor(ledger.Profile2B, opts...)
}

func newEngineFor(p ledger.SourceProfile, opts ...ledger.Option) *ledger.Engine {
	return ledger.NewEngine(p, lookup.NewStateTable(lookup.DefaultStateCodes()), opts...)
}

// igstRow is an interstate line taxed at IGST.
func igstRow(inv, gstin string, taxable, igst float64, rc string) domain.RawRow {
	return domain.RawRow{
		"invoiceNumber": inv,
		"gstin":         gstin,
		"taxableValue":  taxable,
		"igst":          igst,
		"reverseCharge": rc,
	}
}

// processed builds a document from rows the way the service does.
func processed(e *ledger.Engine, rows ...domain.RawRow) *domain.ProcessedDocument {
	doc := &domain.ProcessedDocument{SourceType: e.Profile().Type}
	e.Process(rows, 0).Apply(doc)
	return doc
}

func intPtr(i int) *int { return &i }

func serials(records domain.Records) []int {
	out := make([]int, len(records))
	for i := range records {
		out[i] = records[i].SerialNo
	}
	return out
}

func rowIDs(records domain.Records) []int {
	out := make([]int, len(records))
	for i := range records {
		out[i] = records[i].SourceRowID
	}
	return out
}

func invoiceNumbers(records domain.Records) []string {
	out := make([]string, len(records))
	for i := range records {
		out[i] = records[i].InvoiceNumber
	}
	return out
}
