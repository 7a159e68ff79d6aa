package domain

// Slab is a supported GST rate bracket. SlabNone marks an unmatched (custom) rate.
type Slab string

const (
	SlabNone Slab = ""
	Slab5    Slab = "5%"
	Slab12   Slab = "12%"
	Slab18   Slab = "18%"
	Slab28   Slab = "28%"
)

// SupportedSlabs lists the slabs in ascending rate order.
var SupportedSlabs = []Slab{Slab5, Slab12, Slab18, Slab28}

// slabRates holds the full (IGST) rate for each slab.
var slabRates = map[Slab]float64{
	Slab5:  5,
	Slab12: 12,
	Slab18: 18,
	Slab28: 28,
}

// Rate returns the IGST percentage of the slab. CGST and SGST are each half of it.
func (s Slab) Rate() float64 {
	return slabRates[s]
}

// HalfRate returns the CGST (or SGST) percentage of the slab.
func (s Slab) HalfRate() float64 {
	return slabRates[s] / 2
}
