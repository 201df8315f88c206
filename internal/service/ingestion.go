// Package service orchestrates ingestion runs: fetching with caller-level retries,
// walking source fallbacks and persisting accepted entries.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"

	"procfeed/internal/config"
	"procfeed/internal/crawler"
	"procfeed/internal/logger"
	"procfeed/internal/models"
	"procfeed/internal/store"
)

// Service errors.
var (
	ErrNoEnabledSources    = errors.New("no enabled sources configured")
	ErrPersistenceDisabled = errors.New("persistence requested but no storage is configured")
	ErrMissingLocation     = errors.New("url is required")
	ErrSourceFailed        = errors.New("source failed")
	ErrPartialPersistence  = errors.New("some batches failed to persist")
)

// Ingester produces ingestion results from a URL or a local file.
type Ingester interface {
	Ingest(ctx context.Context, url string, opts crawler.IngestOptions) (*crawler.IngestResult, error)
	IngestFile(ctx context.Context, path string, opts crawler.IngestOptions) (*crawler.IngestResult, error)
}

// Saver persists accepted entries.
type Saver interface {
	Save(ctx context.Context, entries []*models.CanonicalProcurementEntry) (*store.SaveResult, error)
}

// Ensure the concrete collaborators satisfy the interfaces.
var (
	_ Ingester = (*crawler.Client)(nil)
	_ Saver    = (*store.Uploader)(nil)
)

// RunOptions tunes one run.
type RunOptions struct {
	PartyIDPrefixes []string
	Strict          bool
	Persist         bool
}

// RunReport describes one completed run.
type RunReport struct {
	Result   *crawler.IngestResult `json:"result,omitempty"`
	Saved    *store.SaveResult     `json:"saved,omitempty"`
	Source   string                `json:"source,omitempty"`
	Location string                `json:"location"`
	Error    string                `json:"error,omitempty"`
	Attempts int                   `json:"attempts"`
	Duration time.Duration         `json:"duration"`
}

// IngestionService runs ingestions against configured collaborators.
type IngestionService struct {
	client Ingester
	saver  Saver
	cfg    *config.Config
	log    *logger.Logger
}

// NewIngestionService creates a service. saver may be nil when no storage is configured.
func NewIngestionService(cfg *config.Config, client Ingester, saver Saver, log *logger.Logger) *IngestionService {
	if log == nil {
		log = logger.Discard()
	}

	return &IngestionService{
		client: client,
		saver:  saver,
		cfg:    cfg,
		log:    log,
	}
}

// CanPersist reports whether a persistence collaborator is wired.
func (s *IngestionService) CanPersist() bool {
	return s.saver != nil
}

// Run ingests url, retrying transient transport failures, and optionally persists the
// accepted entries.
func (s *IngestionService) Run(ctx context.Context, url string, opts RunOptions) (*RunReport, error) {
	if url == "" {
		return nil, ErrMissingLocation
	}

	return s.run(ctx, crawler.Target{Location: url}, opts)
}

// RunFile normalizes a local payload and optionally persists the accepted entries.
func (s *IngestionService) RunFile(ctx context.Context, path string, opts RunOptions) (*RunReport, error) {
	if path == "" {
		return nil, ErrMissingLocation
	}

	return s.run(ctx, crawler.Target{Location: path, IsFile: true}, opts)
}

func (s *IngestionService) run(ctx context.Context, target crawler.Target, opts RunOptions) (*RunReport, error) {
	if opts.Persist && s.saver == nil {
		return nil, ErrPersistenceDisabled
	}

	start := time.Now()
	report := &RunReport{Source: target.Source.Name, Location: target.Location}

	ingestOpts := crawler.IngestOptions{Strict: opts.Strict, PartyIDPrefixes: opts.PartyIDPrefixes}

	var (
		result *crawler.IngestResult
		err    error
	)

	if target.IsFile {
		report.Attempts = 1
		result, err = s.client.IngestFile(ctx, target.Location, ingestOpts)
	} else {
		result, err = s.fetchWithRetry(ctx, target.Location, ingestOpts, report)
	}

	report.Duration = time.Since(start)

	if err != nil {
		report.Error = err.Error()

		return report, err
	}

	report.Result = result

	if !opts.Persist || result.Accepted() == 0 {
		return report, nil
	}

	saved, err := s.saver.Save(ctx, result.Entries)
	report.Saved = saved
	report.Duration = time.Since(start)

	if err != nil {
		report.Error = err.Error()

		return report, fmt.Errorf("failed to persist entries: %w", err)
	}

	if len(saved.Errors) > 0 {
		err = fmt.Errorf("%w: %w", ErrPartialPersistence, errors.Join(saved.Errors...))
		report.Error = err.Error()

		return report, err
	}

	return report, nil
}

func (s *IngestionService) fetchWithRetry(
	ctx context.Context,
	url string,
	opts crawler.IngestOptions,
	report *RunReport,
) (*crawler.IngestResult, error) {
	var result *crawler.IngestResult

	err := retry.Do(ctx, s.backoff(), func(ctx context.Context) error {
		report.Attempts++

		var ingestErr error

		result, ingestErr = s.client.Ingest(ctx, url, opts)
		if ingestErr == nil {
			return nil
		}

		if isRetryable(ctx, ingestErr) {
			s.log.Warn("transient fetch failure, retrying", "url", url, "attempt", report.Attempts, "error", ingestErr)

			return retry.RetryableError(ingestErr)
		}

		return ingestErr
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// backoff builds a fresh policy per run; go-retry backoffs are stateful.
func (s *IngestionService) backoff() retry.Backoff {
	rp := s.cfg.Retry

	attempts := max(rp.MaxAttempts, 1)

	base := rp.InitialDelay()
	if base <= 0 {
		base = time.Millisecond
	}

	factor := max(rp.BackoffMultiplier, 1.0)

	next := float64(base)
	var b retry.Backoff = retry.BackoffFunc(func() (time.Duration, bool) {
		d := time.Duration(next)
		next *= factor

		return d, false
	})

	if maxDelay := rp.MaxDelay(); maxDelay > 0 {
		b = retry.WithCappedDuration(maxDelay, b)
	}

	return retry.WithMaxRetries(uint64(attempts-1), b) // #nosec G115 -- attempts is at least 1
}

// isRetryable reports whether err is a transport failure worth another attempt:
// connection failures, timeouts, throttling and server errors.
func isRetryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}

	var transportErr *crawler.TransportError
	if !errors.As(err, &transportErr) {
		return false
	}

	switch status := transportErr.Status; {
	case status == 0:
		return true
	case status == http.StatusRequestTimeout, status == http.StatusTooManyRequests:
		return true
	case status >= http.StatusInternalServerError:
		return true
	default:
		return false
	}
}

func (r *RunReport) durationOrZero() time.Duration {
	if r == nil {
		return 0
	}

	return r.Duration
}
