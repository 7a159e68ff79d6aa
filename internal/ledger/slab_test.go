package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gstledger/internal/domain"
	"gstledger/internal/ledger"
)

func TestResolveSlab(t *testing.T) {
	rate := func(f float64) *float64 { return &f }

	tests := []struct {
		name     string
		taxable  float64
		igst     float64
		cgst     float64
		explicit *float64
		wantOK   bool
		wantSlab domain.Slab
		wantMode domain.TaxMode
	}{
		{name: "igst 18", taxable: 1000, igst: 180, wantOK: true, wantSlab: domain.Slab18, wantMode: domain.TaxModeIGST},
		{name: "cgst half rate 18", taxable: 1000, cgst: 90, wantOK: true, wantSlab: domain.Slab18, wantMode: domain.TaxModeCGST},
		{name: "cgst half rate 5", taxable: 2000, cgst: 50, wantOK: true, wantSlab: domain.Slab5, wantMode: domain.TaxModeCGST},
		{name: "within tolerance", taxable: 1000, igst: 50.08, wantOK: true, wantSlab: domain.Slab5, wantMode: domain.TaxModeIGST},
		{name: "outside tolerance", taxable: 1000, igst: 181.5},
		{name: "unsupported rate", taxable: 1000, igst: 150},
		{name: "igst takes priority", taxable: 1000, igst: 280, cgst: 90, wantOK: true, wantSlab: domain.Slab28, wantMode: domain.TaxModeIGST},
		{name: "explicit rate wins", taxable: 1000, explicit: rate(12), wantOK: true, wantSlab: domain.Slab12, wantMode: domain.TaxModeCGST},
		{name: "explicit rate igst mode", taxable: 1000, igst: 1, explicit: rate(28), wantOK: true, wantSlab: domain.Slab28, wantMode: domain.TaxModeIGST},
		{name: "unsupported explicit rate falls back", taxable: 1000, igst: 180, explicit: rate(15), wantOK: true, wantSlab: domain.Slab18, wantMode: domain.TaxModeIGST},
		{name: "zero taxable", taxable: 0, igst: 180, explicit: rate(18)},
		{name: "negative taxable", taxable: -1000, igst: -180},
		{name: "no tax", taxable: 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, ok := ledger.ResolveSlab(tt.taxable, tt.igst, tt.cgst, tt.explicit)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantSlab, res.Slab)
				assert.Equal(t, tt.wantMode, res.Mode)
			}
		})
	}
}

func TestResolveSlab_IGSTWithinTolerancePicksSlab(t *testing.T) {
	for _, s := range domain.SupportedSlabs {
		for _, delta := range []float64{-0.09, 0, 0.09} {
			taxable := 2500.0
			igst := taxable * (s.Rate() + delta) / 100
			res, ok := ledger.ResolveSlab(taxable, igst, 0, nil)
			assert.True(t, ok, "slab %s delta %v", s, delta)
			assert.Equal(t, s, res.Slab)
			assert.Equal(t, domain.TaxModeIGST, res.Mode)
		}
	}
}
