package rawimport

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"gstledger/internal/domain"
	"gstledger/internal/ledger"
)

// Mapping is the optional YAML file of extra header aliases, keyed by logical
// column name:
//
//	common:
//	  invoice_number: ["Inv. No."]
//	gstr2a:
//	  trade_name: ["Party Name"]
type Mapping struct {
	Common map[string][]string `yaml:"common"`
	GSTR2A map[string][]string `yaml:"gstr2a"`
	GSTR2B map[string][]string `yaml:"gstr2b"`
}

// LoadMapping reads a mapping file. An empty path yields an empty mapping.
func LoadMapping(path string) (*Mapping, error) {
	if path == "" {
		return &Mapping{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rawimport.LoadMapping: %w", err)
	}
	return ParseMapping(data)
}

// ParseMapping decodes and validates mapping YAML. Unknown column names are rejected
// so a typo does not silently disable an alias.
func ParseMapping(data []byte) (*Mapping, error) {
	var m Mapping
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: mapping file: %v", domain.ErrInvalidInput, err)
	}
	for _, section := range []map[string][]string{m.Common, m.GSTR2A, m.GSTR2B} {
		for name := range section {
			if _, ok := ledger.ParseColumn(name); !ok {
				return nil, fmt.Errorf("%w: mapping file: unknown column %q", domain.ErrInvalidInput, name)
			}
		}
	}
	return &m, nil
}

// Profile returns the built-in profile for t extended with the mapping's aliases.
func (m *Mapping) Profile(t domain.SourceType) (ledger.SourceProfile, error) {
	p, err := ledger.ProfileFor(t)
	if err != nil {
		return ledger.SourceProfile{}, err
	}
	p = p.WithAliases(columns(m.Common))
	switch t {
	case domain.SourceGSTR2A:
		p = p.WithAliases(columns(m.GSTR2A))
	case domain.SourceGSTR2B:
		p = p.WithAliases(columns(m.GSTR2B))
	}
	return p, nil
}

func columns(section map[string][]string) map[ledger.Column][]string {
	out := make(map[ledger.Column][]string, len(section))
	for name, aliases := range section {
		if c, ok := ledger.ParseColumn(name); ok {
			out[c] = append(out[c], aliases...)
		}
	}
	return out
}
