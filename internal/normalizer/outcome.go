package normalizer

import "procfeed/internal/models"

// RejectReason explains why an element produced no entry.
type RejectReason string

// Rejection reasons. Rejections are normal outcomes and never abort a run.
const (
	RejectNone              RejectReason = ""
	RejectMissingOrderID    RejectReason = "missing_order_id"
	RejectMissingReleaseID  RejectReason = "missing_release_id"
	RejectNotCatalog        RejectReason = "not_catalog_purchase"
	RejectMalformedElement  RejectReason = "malformed_element"
	RejectInvalidEntry      RejectReason = "invalid_entry"
	RejectUnsupportedFormat RejectReason = "unsupported_format"
)

// Outcome is the result of normalizing one element: either an accepted entry or a
// rejection reason.
type Outcome struct {
	Entry  *models.CanonicalProcurementEntry
	Reason RejectReason
	Detail string
	// Defaulted counts fields whose source value was missing or unparseable and
	// fell back to a default. It is informational only.
	Defaulted int
}

// Accepted wraps an entry.
func Accepted(entry *models.CanonicalProcurementEntry, defaulted int) Outcome {
	return Outcome{Entry: entry, Defaulted: defaulted}
}

// Rejected builds a rejection.
func Rejected(reason RejectReason, detail string) Outcome {
	return Outcome{Reason: reason, Detail: detail}
}

// IsAccepted reports whether the outcome carries an entry.
func (o Outcome) IsAccepted() bool {
	return o.Entry != nil && o.Reason == RejectNone
}
