package service

import (
	"context"
	"errors"
	"fmt"

	"procfeed/internal/config"
	"procfeed/internal/crawler"
)

// SourceReport is the outcome of one configured source during a sync.
type SourceReport struct {
	Run    *RunReport `json:"run,omitempty"`
	Source string     `json:"source"`
	Error  string     `json:"error,omitempty"`
}

// Succeeded reports whether the source produced a result.
func (r SourceReport) Succeeded() bool {
	return r.Error == ""
}

// RunSource ingests src, falling back to its backup URLs when a location fails.
// Storage is used whenever it is configured.
func (s *IngestionService) RunSource(ctx context.Context, src config.SourceConfig) (*RunReport, error) {
	um := crawler.NewURLManager([]config.SourceConfig{src})
	defer um.LogAttemptSummary(s.log.With("source", src.Name))

	opts := RunOptions{
		Strict:          src.StrictDomain,
		Persist:         s.saver != nil,
		PartyIDPrefixes: s.cfg.PartyIDPrefixesFor(src),
	}

	var failures []error

	for {
		target, err := um.NextURL()
		if errors.Is(err, crawler.ErrSourceExhausted) {
			break
		}

		if err != nil {
			return nil, err
		}

		report, err := s.run(ctx, target, opts)

		status := 0

		var transportErr *crawler.TransportError
		if errors.As(err, &transportErr) {
			status = transportErr.Status
		}

		duration := report.durationOrZero()
		um.RecordAttempt(target.Location, err == nil, err, status, duration)

		if err == nil {
			report.Source = src.Name

			return report, nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return report, ctxErr
		}

		s.log.Warn("source location failed", "source", src.Name, "location", target.Location, "error", err)
		failures = append(failures, fmt.Errorf("%s: %w", target.Location, err))
	}

	return nil, fmt.Errorf("%w: %s: %w", ErrSourceFailed, src.Name, errors.Join(failures...))
}

// SyncAll runs every enabled source in configuration order. A failing source is
// reported and does not stop the others.
func (s *IngestionService) SyncAll(ctx context.Context) ([]SourceReport, error) {
	sources := s.cfg.GetEnabledSources()
	if len(sources) == 0 {
		return nil, ErrNoEnabledSources
	}

	reports := make([]SourceReport, 0, len(sources))

	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return reports, err
		}

		run, err := s.RunSource(ctx, src)

		report := SourceReport{Source: src.Name, Run: run}
		if err != nil {
			report.Error = err.Error()
			s.log.Error("source sync failed", "source", src.Name, "error", err)
		}

		reports = append(reports, report)
	}

	return reports, nil
}
