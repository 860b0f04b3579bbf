// Package dispatch gates discovered addresses through the send ledger and
// the daily rate limiter, hands accepted ones to the mail transport, and
// records every terminal outcome.
package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/nvoss/outreacher/internal/discovery"
	"github.com/nvoss/outreacher/internal/ledger"
	"github.com/nvoss/outreacher/internal/utils"

	"go.uber.org/zap"
)

// Outcome is the terminal state of one discovery record within a run.
type Outcome string

const (
	OutcomeSent                 Outcome = "sent"
	OutcomeFailed               Outcome = "failed"
	OutcomeSkippedDuplicate     Outcome = "skipped_duplicate"
	OutcomeSkippedLowConfidence Outcome = "skipped_low_confidence"
	OutcomeSkippedRateLimited   Outcome = "skipped_rate_limited"
)

// Ledger is the dedup store contract the controller needs.
type Ledger interface {
	Contacted(address string) bool
	Record(address string, status ledger.Status) error
}

// Limiter hands out send reservations against the daily cap.
type Limiter interface {
	TryReserve() (bool, error)
}

// Transport delivers the outreach message for an accepted record. A dry-run
// implementation satisfies the same contract.
type Transport interface {
	Send(ctx context.Context, rec *discovery.Record) error
}

// Result is the terminal outcome for one record. Err carries the transport
// failure detail when the outcome is OutcomeFailed.
type Result struct {
	Record  *discovery.Record
	Outcome Outcome
	Err     error
}

// Summary aggregates a run's results by outcome.
type Summary struct {
	Counts  map[Outcome]int
	Results []*Result
}

func newSummary() *Summary {
	return &Summary{Counts: make(map[Outcome]int)}
}

func (s *Summary) add(r *Result) {
	s.Counts[r.Outcome]++
	s.Results = append(s.Results, r)
}

// Controller runs the per-record decision pipeline. It is the single writer
// of ledger and rate state; records are processed strictly sequentially.
type Controller struct {
	ledger    Ledger
	limiter   Limiter
	transport Transport
	pause     time.Duration
	logger    *zap.Logger

	// Set once the limiter declines; later records are reported as
	// rate-limited without burning further reservation attempts.
	exhausted bool
}

func New(l Ledger, limiter Limiter, transport Transport, pause time.Duration, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Controller{
		ledger:    l,
		limiter:   limiter,
		transport: transport,
		pause:     pause,
		logger:    logger,
	}
}

// Run dispatches every record and returns the run summary. Ledger or rate
// state failures abort the run; everything else is handled per record.
func (c *Controller) Run(ctx context.Context, records []*discovery.Record) (*Summary, error) {
	summary := newSummary()

	for i, rec := range records {
		result, err := c.dispatch(ctx, rec)
		if err != nil {
			return nil, err
		}

		summary.add(result)

		fields := []zap.Field{
			zap.String("person", rec.Person.FullName),
			zap.String("company", rec.Person.CompanyName),
			zap.String("outcome", string(result.Outcome)),
		}
		if rec.HasCandidate() {
			fields = append(fields, zap.String("address", rec.Address()))
		}
		if result.Err != nil {
			fields = append(fields, zap.Error(result.Err))
		}
		c.logger.Info("dispatched record", fields...)

		if result.Outcome == OutcomeSent && i < len(records)-1 {
			if err := utils.WaitFor(ctx, c.pause); err != nil {
				return summary, fmt.Errorf("pausing between sends: %w", err)
			}
		}
	}

	c.logger.Info("dispatch run complete",
		zap.Int("records", len(records)),
		zap.Int("sent", summary.Counts[OutcomeSent]),
		zap.Int("failed", summary.Counts[OutcomeFailed]),
		zap.Int("skipped_duplicate", summary.Counts[OutcomeSkippedDuplicate]),
		zap.Int("skipped_low_confidence", summary.Counts[OutcomeSkippedLowConfidence]),
		zap.Int("skipped_rate_limited", summary.Counts[OutcomeSkippedRateLimited]),
	)

	return summary, nil
}

// dispatch applies the gate rules in order; the first matching rule wins.
func (c *Controller) dispatch(ctx context.Context, rec *discovery.Record) (*Result, error) {
	if !rec.HasCandidate() {
		return &Result{Record: rec, Outcome: OutcomeSkippedLowConfidence}, nil
	}

	address := rec.Address()

	if c.ledger.Contacted(address) {
		return &Result{Record: rec, Outcome: OutcomeSkippedDuplicate}, nil
	}

	if c.exhausted {
		return &Result{Record: rec, Outcome: OutcomeSkippedRateLimited}, nil
	}

	reserved, err := c.limiter.TryReserve()
	if err != nil {
		return nil, fmt.Errorf("reserving send quota: %w", err)
	}
	if !reserved {
		c.exhausted = true
		return &Result{Record: rec, Outcome: OutcomeSkippedRateLimited}, nil
	}

	// The reservation is spent from here on, even when the send fails.
	result := &Result{Record: rec, Outcome: OutcomeSent}
	status := ledger.StatusSent

	if sendErr := c.transport.Send(ctx, rec); sendErr != nil {
		result.Outcome = OutcomeFailed
		result.Err = sendErr
		status = ledger.StatusFailed
	}

	if err := c.ledger.Record(address, status); err != nil {
		return nil, fmt.Errorf("recording attempt for %s: %w", address, err)
	}

	return result, nil
}
