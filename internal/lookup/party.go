package lookup

import (
	"strings"

	"gstledger/internal/domain"
)

// PartyDirectory resolves supplier GSTINs to the display names one company uses for them.
type PartyDirectory struct {
	byGSTIN map[string]string
}

// NewPartyDirectory indexes parties by upper-cased GSTIN. Parties without a name are skipped.
func NewPartyDirectory(parties []domain.Party) *PartyDirectory {
	m := make(map[string]string, len(parties))
	for idx := range parties {
		p := &parties[idx]
		gstin := strings.ToUpper(strings.TrimSpace(p.GSTIN))
		if gstin == "" || strings.TrimSpace(p.Name) == "" {
			continue
		}
		m[gstin] = strings.TrimSpace(p.Name)
	}
	return &PartyDirectory{byGSTIN: m}
}

// PartyName returns the party name for gstin.
func (d *PartyDirectory) PartyName(gstin string) (string, bool) {
	name, ok := d.byGSTIN[strings.ToUpper(strings.TrimSpace(gstin))]
	return name, ok
}
