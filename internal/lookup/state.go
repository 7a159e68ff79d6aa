package lookup

import (
	"context"
	"fmt"
	"strings"

	"gstledger/internal/domain"
	"gstledger/internal/port"
)

// StateTable resolves GSTIN state-code prefixes to state names.
// It is immutable after construction and safe for concurrent access.
type StateTable struct {
	byCode map[string]string
}

// NewStateTable builds a StateTable from state code entries loaded from the database.
// Later entries for the same code win.
func NewStateTable(entries []domain.StateCode) *StateTable {
	m := make(map[string]string, len(entries))
	for idx := range entries {
		e := &entries[idx]
		code := strings.TrimSpace(e.Code)
		if len(code) == 1 {
			code = "0" + code
		}
		if code == "" || e.Name == "" {
			continue
		}
		m[code] = e.Name
	}
	return &StateTable{byCode: m}
}

// StateName returns the state for a two-digit GSTIN prefix.
func (t *StateTable) StateName(prefix string) (string, bool) {
	name, ok := t.byCode[prefix]
	return name, ok
}

// Len returns the number of known state codes.
func (t *StateTable) Len() int {
	return len(t.byCode)
}

// DefaultStateCodes is the GST state code list used when the database holds none.
func DefaultStateCodes() []domain.StateCode {
	return []domain.StateCode{
		{Code: "01", Name: "Jammu and Kashmir"},
		{Code: "02", Name: "Himachal Pradesh"},
		{Code: "03", Name: "Punjab"},
		{Code: "04", Name: "Chandigarh"},
		{Code: "05", Name: "Uttarakhand"},
		{Code: "06", Name: "Haryana"},
		{Code: "07", Name: "Delhi"},
		{Code: "08", Name: "Rajasthan"},
		{Code: "09", Name: "Uttar Pradesh"},
		{Code: "10", Name: "Bihar"},
		{Code: "11", Name: "Sikkim"},
		{Code: "12", Name: "Arunachal Pradesh"},
		{Code: "13", Name: "Nagaland"},
		{Code: "14", Name: "Manipur"},
		{Code: "15", Name: "Mizoram"},
		{Code: "16", Name: "Tripura"},
		{Code: "17", Name: "Meghalaya"},
		{Code: "18", Name: "Assam"},
		{Code: "19", Name: "West Bengal"},
		{Code: "20", Name: "Jharkhand"},
		{Code: "21", Name: "Odisha"},
		{Code: "22", Name: "Chhattisgarh"},
		{Code: "23", Name: "Madhya Pradesh"},
		{Code: "24", Name: "Gujarat"},
		{Code: "26", Name: "Dadra and Nagar Haveli and Daman and Diu"},
		{Code: "27", Name: "Maharashtra"},
		{Code: "29", Name: "Karnataka"},
		{Code: "30", Name: "Goa"},
		{Code: "31", Name: "Lakshadweep"},
		{Code: "32", Name: "Kerala"},
		{Code: "33", Name: "Tamil Nadu"},
		{Code: "34", Name: "Puducherry"},
		{Code: "35", Name: "Andaman and Nicobar Islands"},
		{Code: "36", Name: "Telangana"},
		{Code: "37", Name: "Andhra Pradesh"},
		{Code: "38", Name: "Ladakh"},
		{Code: "97", Name: "Other Territory"},
	}
}

// LoadStateTable reads the state codes once at startup. An empty table falls back
// to DefaultStateCodes; a failing repository is an error.
func LoadStateTable(ctx context.Context, repo port.StateRepository) (*StateTable, error) {
	entries, err := repo.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading state codes: %w", err)
	}
	if len(entries) == 0 {
		entries = DefaultStateCodes()
	}
	return NewStateTable(entries), nil
}
