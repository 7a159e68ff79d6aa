// Package ledger turns raw filing-export rows into ledger-ready canonical records and
// keeps the canonical set and its derived views consistent under edits, appends and
// cross-document reconciliation.
//
// All functions here operate on in-memory documents. Loading, locking and persisting
// are the caller's job.
package ledger

import (
	"strings"

	"gstledger/internal/domain"
)

// DefaultDisallowMarker is the ledger-name token that routes a row to the Disallow view.
const DefaultDisallowMarker = "disallow"

// Engine classifies and synchronizes documents of one source profile.
type Engine struct {
	profile SourceProfile
	states  StateLookup
	parties PartyLookup
	marker  string
}

// Option configures an Engine.
type Option func(*Engine)

// WithParties sets the party-name lookup used for supplier names.
func WithParties(p PartyLookup) Option {
	return func(e *Engine) { e.parties = p }
}

// WithDisallowMarker overrides DefaultDisallowMarker. Matching is case-insensitive.
func WithDisallowMarker(marker string) Option {
	return func(e *Engine) {
		if marker != "" {
			e.marker = marker
		}
	}
}

// NewEngine creates an Engine for the given profile. states may be shared process-wide.
func NewEngine(profile SourceProfile, states StateLookup, opts ...Option) *Engine {
	e := &Engine{
		profile: profile,
		states:  states,
		marker:  DefaultDisallowMarker,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.marker = strings.ToLower(e.marker)
	return e
}

// Profile returns the engine's source profile.
func (e *Engine) Profile() SourceProfile {
	return e.profile
}

// IsDisallowed reports whether a record belongs in the Disallow view.
func (e *Engine) IsDisallowed(rec *domain.CanonicalRecord) bool {
	if rec.ITCAvailability == domain.ITCNo {
		return true
	}
	return rec.LedgerName != nil && strings.Contains(strings.ToLower(*rec.LedgerName), e.marker)
}
