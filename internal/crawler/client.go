// Package crawler fetches procurement open-data payloads and routes their elements
// through the normalizer.
package crawler

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"procfeed/internal/config"
	"procfeed/internal/logger"
	"procfeed/internal/models"
	"procfeed/internal/normalizer"
	"procfeed/pkg/metadata"
)

// IngestOptions tunes one ingestion run.
type IngestOptions struct {
	// PartyIDPrefixes overrides the configured id-scheme prefixes.
	PartyIDPrefixes []string
	Strict          bool
}

// IngestResult is the outcome of one ingestion run: the elements found, the entries
// accepted from them and a diagnostic for every rejected element.
type IngestResult struct {
	Metadata     *metadata.Metadata                  `json:"metadata"`
	Format       normalizer.Format                   `json:"format"`
	Wrapper      string                              `json:"wrapper,omitempty"`
	Entries      []*models.CanonicalProcurementEntry `json:"entries"`
	Rejections   []normalizer.Rejection              `json:"rejections,omitempty"`
	TopLevelKeys []string                            `json:"top_level_keys,omitempty"`
	Found        int                                 `json:"found"`
	Defaulted    int                                 `json:"defaulted"`
}

// Accepted returns the number of accepted entries.
func (r *IngestResult) Accepted() int {
	return len(r.Entries)
}

// RejectedErrors renders one diagnostic line per rejected element.
func (r *IngestResult) RejectedErrors() []string {
	out := make([]string, len(r.Rejections))
	for i, rej := range r.Rejections {
		out[i] = rej.String()
	}

	return out
}

// Client manages fetching and data flow for ingestion.
type Client struct {
	fetcher  *Fetcher
	log      *logger.Logger
	now      func() time.Time
	prefixes []string
	workers  int
}

// NewClient creates a client from configuration.
func NewClient(cfg *config.Config, log *logger.Logger) *Client {
	if log == nil {
		log = logger.Discard()
	}

	return NewClientWithDeps(NewFetcher(cfg.Fetch, log), cfg.Normalize, log)
}

// NewClientWithDeps creates a client with an injected fetcher.
func NewClientWithDeps(fetcher *Fetcher, norm config.NormalizeConfig, log *logger.Logger) *Client {
	if log == nil {
		log = logger.Discard()
	}

	return &Client{
		fetcher:  fetcher,
		log:      log,
		now:      time.Now,
		prefixes: norm.PartyIDPrefixes,
		workers:  norm.Workers,
	}
}

// Ingest fetches url and normalizes every element it contains. Policy, transport and
// format failures abort the run; per-element rejections are reported in the result.
func (c *Client) Ingest(ctx context.Context, url string, opts IngestOptions) (*IngestResult, error) {
	doc, err := c.fetcher.Fetch(ctx, url, FetchOptions{Strict: opts.Strict})
	if err != nil {
		c.log.Error("fetch failed", "url", url, "error", err)

		return nil, fmt.Errorf("failed to fetch source: %w", err)
	}

	return c.IngestDocument(ctx, doc, opts)
}

// IngestFile normalizes a payload stored on disk.
func (c *Client) IngestFile(ctx context.Context, filePath string, opts IngestOptions) (*IngestResult, error) {
	doc, err := c.fetcher.ReadLocalFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load source: %w", err)
	}

	return c.IngestDocument(ctx, doc, opts)
}

// IngestDocument detects the payload format of doc and normalizes its elements.
func (c *Client) IngestDocument(ctx context.Context, doc *Document, opts IngestOptions) (*IngestResult, error) {
	meta := metadata.New(doc.URL, doc.ContentType, doc.Body)
	log := c.log.With("run_id", meta.RunID, "url", doc.URL)

	collection := DetectFormat(doc.Body)

	result := &IngestResult{
		Metadata:     meta,
		Format:       collection.Format,
		Wrapper:      collection.Wrapper,
		TopLevelKeys: collection.TopLevelKeys,
	}

	if collection.Format == normalizer.FormatUnknown {
		log.Warn("no element collection found in payload", "top_level_keys", collection.TopLevelKeys)

		return result, nil
	}

	prefixes := opts.PartyIDPrefixes
	if len(prefixes) == 0 {
		prefixes = c.prefixes
	}

	processor := normalizer.NewProcessor(
		normalizer.WithTransformer(normalizer.NewTransformer(prefixes)),
		normalizer.WithWorkers(c.workers),
		normalizer.WithLogger(log),
		normalizer.WithClock(c.now),
	)

	batch, err := processor.Process(ctx, collection.Format, collection.Elements)
	if err != nil {
		return nil, fmt.Errorf("failed to process payload: %w", err)
	}

	result.Found = batch.Found
	result.Entries = batch.Entries
	result.Rejections = batch.Rejections
	result.Defaulted = batch.Defaulted

	log.Info("ingest finished",
		"format", result.Format,
		"wrapper", result.Wrapper,
		"found", result.Found,
		"accepted", result.Accepted(),
		"defaulted", result.Defaulted,
		"hash", meta.ShortHash(),
	)

	return result, nil
}

// SaveResultJSON writes the result to a JSON file.
func (c *Client) SaveResultJSON(result *IngestResult, outputPath string) error {
	jsonData, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if err := os.WriteFile(outputPath, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}
