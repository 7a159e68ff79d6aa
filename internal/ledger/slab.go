package ledger

import (
	"math"

	"github.com/shopspring/decimal"

	"gstledger/internal/domain"
)

// SlabTolerance is how far, in percentage points, a computed rate may sit from a slab.
const SlabTolerance = 0.1

var (
	hundred   = decimal.NewFromInt(100)
	tolerance = decimal.NewFromFloat(SlabTolerance)
)

// SlabResolution is the slab a row's tax amounts belong to and how the tax was split.
type SlabResolution struct {
	Slab domain.Slab
	Mode domain.TaxMode
}

// ResolveSlab finds the supported slab for a taxable value and its IGST/CGST amounts.
// An explicit rate that equals a slab exactly wins. Otherwise the effective percentage is
// computed from IGST (preferred) or CGST, the latter compared against the half rate.
// A non-positive taxable value never matches.
func ResolveSlab(taxable, igst, cgst float64, explicitRate *float64) (SlabResolution, bool) {
	if !(taxable > 0) || math.IsInf(taxable, 0) {
		return SlabResolution{}, false
	}

	mode := domain.TaxModeCGST
	if igst > 0 {
		mode = domain.TaxModeIGST
	}

	if explicitRate != nil {
		for _, s := range domain.SupportedSlabs {
			if *explicitRate == s.Rate() {
				return SlabResolution{Slab: s, Mode: mode}, true
			}
		}
	}

	var amount float64
	switch {
	case igst > 0:
		amount = igst
	case cgst > 0:
		amount = cgst
	default:
		return SlabResolution{}, false
	}

	percent := decimal.NewFromFloat(amount).Div(decimal.NewFromFloat(taxable)).Mul(hundred)
	for _, s := range domain.SupportedSlabs {
		want := s.Rate()
		if mode == domain.TaxModeCGST {
			want = s.HalfRate()
		}
		if percent.Sub(decimal.NewFromFloat(want)).Abs().LessThanOrEqual(tolerance) {
			return SlabResolution{Slab: s, Mode: mode}, true
		}
	}
	return SlabResolution{}, false
}
