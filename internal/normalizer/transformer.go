package normalizer

import (
	"time"

	"procfeed/internal/models"
)

// Transformer routes raw payload elements to the mapper for their format.
type Transformer struct {
	tabular *TabularMapper
	nested  *ReleaseTransformer
}

// NewTransformer creates a transformer with the default tabular schema and the given
// party id prefixes.
func NewTransformer(partyPrefixes []string) *Transformer {
	return &Transformer{
		tabular: NewTabularMapper(nil),
		nested:  NewReleaseTransformer(NewPartyResolver(partyPrefixes)),
	}
}

// WithSchema replaces the tabular schema.
func (t *Transformer) WithSchema(schema []FieldSpec) *Transformer {
	t.tabular = NewTabularMapper(schema)

	return t
}

// Transform normalizes one raw JSON element of a payload detected as format.
func (t *Transformer) Transform(format Format, raw string, runDate time.Time) Outcome {
	switch format {
	case FormatTabular:
		row, err := RowFromJSON(raw)
		if err != nil {
			return Rejected(RejectMalformedElement, err.Error())
		}

		return t.tabular.Map(row, runDate)
	case FormatNested:
		rel, err := ReleaseFromJSON(raw)
		if err != nil {
			return Rejected(RejectMalformedElement, err.Error())
		}

		return t.nested.Transform(rel, runDate)
	default:
		return Rejected(RejectUnsupportedFormat, string(format))
	}
}

// TransformRow maps an already decoded row.
func (t *Transformer) TransformRow(row models.Row, runDate time.Time) Outcome {
	return t.tabular.Map(row, runDate)
}

// TransformRelease maps an already decoded release.
func (t *Transformer) TransformRelease(rel *models.Release, runDate time.Time) Outcome {
	return t.nested.Transform(rel, runDate)
}
