package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"procfeed/internal/config"
	"procfeed/internal/logger"
	"procfeed/internal/models"
)

// ErrTenantRequired is returned when the uploader has no tenant to write under.
var ErrTenantRequired = errors.New("tenant id is required")

const (
	defaultBatchSize     = 500
	defaultMaxConcurrent = 4
)

// SaveResult contains the results of a save operation.
type SaveResult struct {
	Errors     []error
	Saved      int
	Duplicates int
	Batches    int
}

// Uploader splits entries into batches and writes them concurrently.
type Uploader struct {
	writer        Writer
	logger        *logger.Logger
	tenantID      string
	batchSize     int
	maxConcurrent int
}

// NewUploader creates an uploader writing through w.
func NewUploader(w Writer, cfg config.StorageConfig, log *logger.Logger) *Uploader {
	if log == nil {
		log = logger.Discard()
	}

	u := &Uploader{
		writer:        w,
		logger:        log,
		tenantID:      cfg.TenantID,
		batchSize:     cfg.BatchSize,
		maxConcurrent: cfg.MaxConcurrentBatches,
	}

	if u.batchSize < 1 {
		u.batchSize = defaultBatchSize
	}

	if u.maxConcurrent < 1 {
		u.maxConcurrent = defaultMaxConcurrent
	}

	return u
}

// Save upserts entries. Entries sharing a business key collapse to the last one seen.
// A failed batch is reported in the result and does not stop the others.
func (u *Uploader) Save(ctx context.Context, entries []*models.CanonicalProcurementEntry) (*SaveResult, error) {
	if u.tenantID == "" {
		return nil, ErrTenantRequired
	}

	rows := u.dedupe(entries)
	result := &SaveResult{Duplicates: countNonNil(entries) - len(rows)}

	if len(rows) == 0 {
		return result, nil
	}

	batches := chunk(rows, u.batchSize)
	result.Batches = len(batches)

	u.logger.Info("starting upsert", "tenant", u.tenantID, "rows", len(rows), "batches", len(batches))

	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.maxConcurrent)

	for i, batch := range batches {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			_, err := u.writer.UpsertBatch(gctx, batch)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				u.logger.Error("batch upsert failed", "batch", i, "rows", len(batch), "error", err)
				result.Errors = append(result.Errors, fmt.Errorf("batch %d: %w", i, err))

				return nil
			}

			result.Saved += len(batch)

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return result, fmt.Errorf("save cancelled: %w", err)
	}

	u.logger.Info("upsert finished", "saved", result.Saved, "failed_batches", len(result.Errors))

	return result, nil
}

func (u *Uploader) dedupe(entries []*models.CanonicalProcurementEntry) []OrderRecord {
	index := make(map[models.EntryKey]int, len(entries))
	rows := make([]OrderRecord, 0, len(entries))

	for _, e := range entries {
		if e == nil {
			continue
		}

		row := NewOrderRecord(u.tenantID, e)

		key := e.Key()
		if i, ok := index[key]; ok {
			rows[i] = row

			continue
		}

		index[key] = len(rows)
		rows = append(rows, row)
	}

	return rows
}

func chunk(rows []OrderRecord, size int) [][]OrderRecord {
	batches := make([][]OrderRecord, 0, (len(rows)+size-1)/size)

	for start := 0; start < len(rows); start += size {
		end := min(start+size, len(rows))
		batches = append(batches, rows[start:end])
	}

	return batches
}

func countNonNil(entries []*models.CanonicalProcurementEntry) int {
	n := 0

	for _, e := range entries {
		if e != nil {
			n++
		}
	}

	return n
}
