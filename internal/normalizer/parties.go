package normalizer

import (
	"strings"

	"procfeed/internal/models"
)

// DefaultPartyIDPrefixes are the id-scheme prefixes observed in party references
// (country + document type, e.g. "PE-RUC-20100070970").
var DefaultPartyIDPrefixes = []string{"PE-RUC-"}

// PartyResolver resolves opaque party references against one release's registry.
// It holds no registry itself, so nothing leaks between releases.
type PartyResolver struct {
	prefixes []string
}

// NewPartyResolver creates a resolver stripping the given prefixes. A nil or empty
// list uses DefaultPartyIDPrefixes.
func NewPartyResolver(prefixes []string) *PartyResolver {
	if len(prefixes) == 0 {
		prefixes = DefaultPartyIDPrefixes
	}

	return &PartyResolver{prefixes: prefixes}
}

// StripPrefix removes the first matching known scheme prefix from id.
func (p *PartyResolver) StripPrefix(id string) string {
	id = strings.TrimSpace(id)
	upper := strings.ToUpper(id)

	for _, prefix := range p.prefixes {
		if prefix != "" && strings.HasPrefix(upper, strings.ToUpper(prefix)) {
			return id[len(prefix):]
		}
	}

	return id
}

// Lookup returns the first party whose stripped id equals the stripped reference.
// The role is accepted for future narrowing but ids are unique within a release.
func (p *PartyResolver) Lookup(parties []models.Party, reference, role string) (*models.Party, bool) {
	ref := p.StripPrefix(reference)
	if ref == "" {
		return nil, false
	}

	for i := range parties {
		if p.StripPrefix(parties[i].ID.String()) == ref {
			return &parties[i], true
		}
	}

	return nil, false
}

// ResolveName returns the display name of the referenced party, or models.UnknownParty.
func (p *PartyResolver) ResolveName(parties []models.Party, reference, role string) string {
	party, ok := p.Lookup(parties, reference, role)
	if !ok {
		return models.UnknownParty
	}

	return party.Name
}
