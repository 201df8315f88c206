package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"procfeed/internal/models"
)

func TestPartyResolver_ResolveName(t *testing.T) {
	parties := []models.Party{
		{ID: "PE-RUC-20100070970", Name: "ACME SAC"},
		{ID: "20500000001", Name: "Ministerio de Salud"},
	}

	r := NewPartyResolver(nil)

	tests := []struct {
		name      string
		reference string
		want      string
	}{
		{"prefixed both sides", "PE-RUC-20100070970", "ACME SAC"},
		{"unprefixed reference", "20100070970", "ACME SAC"},
		{"prefixed reference to bare id", "PE-RUC-20500000001", "Ministerio de Salud"},
		{"lowercase prefix", "pe-ruc-20100070970", "ACME SAC"},
		{"no match", "PE-RUC-999", models.UnknownParty},
		{"empty reference", "", models.UnknownParty},
		{"prefix only", "PE-RUC-", models.UnknownParty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.ResolveName(parties, tt.reference, "supplier"))
		})
	}
}

func TestPartyResolver_FirstMatchWins(t *testing.T) {
	parties := []models.Party{
		{ID: "PE-RUC-1", Name: "First"},
		{ID: "1", Name: "Second"},
	}

	assert.Equal(t, "First", NewPartyResolver(nil).ResolveName(parties, "1", "buyer"))
}

func TestPartyResolver_CustomPrefixes(t *testing.T) {
	parties := []models.Party{{ID: "CL-RUT-76.123.456-7", Name: "Proveedora Andina"}}

	r := NewPartyResolver([]string{"CL-RUT-", "PE-RUC-"})

	assert.Equal(t, "Proveedora Andina", r.ResolveName(parties, "76.123.456-7", "supplier"))
	assert.Equal(t, "76.123.456-7", r.StripPrefix("CL-RUT-76.123.456-7"))

	party, ok := r.Lookup(parties, "CL-RUT-76.123.456-7", "supplier")
	require.True(t, ok)
	assert.Same(t, &parties[0], party)
}
