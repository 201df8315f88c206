// Package metadata describes a single ingestion run for operator diagnostics.
package metadata

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// Metadata identifies one fetch of one source.
type Metadata struct {
	FetchedAt   time.Time `json:"fetched_at"`
	RunID       string    `json:"run_id"`
	SourceURL   string    `json:"source_url"`
	ContentType string    `json:"content_type,omitempty"`
	Hash        string    `json:"hash"`
	Bytes       int       `json:"bytes"`
}

// New builds run metadata for a fetched body. The hash lets operators tell whether two
// runs saw the same payload; it is not used for deduplication.
func New(sourceURL, contentType string, body []byte) *Metadata {
	return &Metadata{
		FetchedAt:   time.Now().UTC(),
		RunID:       uuid.NewString(),
		SourceURL:   sourceURL,
		ContentType: contentType,
		Hash:        CalculateHash(body),
		Bytes:       len(body),
	}
}

// CalculateHash computes the SHA-256 hash of the content.
func CalculateHash(content []byte) string {
	hash := sha256.Sum256(content)

	return hex.EncodeToString(hash[:])
}

// ShortHash returns the first 12 hex characters of the hash, for log lines.
func (m *Metadata) ShortHash() string {
	if m == nil || len(m.Hash) < 12 {
		return ""
	}

	return m.Hash[:12]
}
