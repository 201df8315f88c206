// Package normalizer turns raw procurement payload elements into canonical entries.
package normalizer

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"procfeed/internal/logger"
	"procfeed/internal/models"
)

// Rejection describes one element that produced no entry.
type Rejection struct {
	Reason RejectReason `json:"reason"`
	Detail string       `json:"detail,omitempty"`
	Index  int          `json:"index"`
}

// String renders the rejection as an operator diagnostic.
func (r Rejection) String() string {
	if r.Detail == "" {
		return fmt.Sprintf("element %d: %s", r.Index, r.Reason)
	}

	return fmt.Sprintf("element %d: %s (%s)", r.Index, r.Reason, r.Detail)
}

// Batch is the result of processing one payload.
type Batch struct {
	RunDate    time.Time
	Format     Format
	Entries    []*models.CanonicalProcurementEntry
	Rejections []Rejection
	Found      int
	Defaulted  int
}

// Accepted returns the number of entries produced.
func (b *Batch) Accepted() int {
	return len(b.Entries)
}

// Processor handles data processing and transformation.
type Processor struct {
	validator   *Validator
	transformer *Transformer
	log         *logger.Logger
	workers     int
	now         func() time.Time
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithWorkers processes elements on up to n goroutines. Values below 2 keep
// processing sequential.
func WithWorkers(n int) ProcessorOption {
	return func(p *Processor) {
		p.workers = n
	}
}

// WithLogger sets the logger.
func WithLogger(log *logger.Logger) ProcessorOption {
	return func(p *Processor) {
		if log != nil {
			p.log = log
		}
	}
}

// WithClock overrides the clock used for the run date.
func WithClock(now func() time.Time) ProcessorOption {
	return func(p *Processor) {
		if now != nil {
			p.now = now
		}
	}
}

// WithTransformer replaces the element transformer.
func WithTransformer(t *Transformer) ProcessorOption {
	return func(p *Processor) {
		if t != nil {
			p.transformer = t
		}
	}
}

// NewProcessor creates a new processor instance.
func NewProcessor(opts ...ProcessorOption) *Processor {
	p := &Processor{
		validator:   NewValidator(),
		transformer: NewTransformer(nil),
		log:         logger.Discard(),
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Process normalizes every raw element of a payload detected as format. Element
// failures become rejections; the only error is context cancellation. Results keep
// element order regardless of the number of workers.
func (p *Processor) Process(ctx context.Context, format Format, elements []string) (*Batch, error) {
	runDate := DateOf(p.now())
	outcomes := make([]Outcome, len(elements))

	if p.workers > 1 && len(elements) > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(p.workers)

		for i, raw := range elements {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}

				outcomes[i] = p.processOne(format, raw, runDate)

				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("processing cancelled: %w", err)
		}
	} else {
		for i, raw := range elements {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("processing cancelled: %w", err)
			}

			outcomes[i] = p.processOne(format, raw, runDate)
		}
	}

	batch := &Batch{
		RunDate: runDate,
		Format:  format,
		Found:   len(elements),
	}

	for i, o := range outcomes {
		batch.Defaulted += o.Defaulted

		if o.IsAccepted() {
			batch.Entries = append(batch.Entries, o.Entry)

			continue
		}

		batch.Rejections = append(batch.Rejections, Rejection{Index: i, Reason: o.Reason, Detail: o.Detail})
	}

	p.log.Debug("batch processed",
		"format", format,
		"found", batch.Found,
		"accepted", batch.Accepted(),
		"rejected", len(batch.Rejections),
		"defaulted", batch.Defaulted,
	)

	return batch, nil
}

func (p *Processor) processOne(format Format, raw string, runDate time.Time) Outcome {
	out := p.transformer.Transform(format, raw, runDate)
	if !out.IsAccepted() {
		return out
	}

	if err := p.validator.Validate(out.Entry); err != nil {
		return Rejected(RejectInvalidEntry, err.Error())
	}

	return out
}
