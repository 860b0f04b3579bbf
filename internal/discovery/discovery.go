// Package discovery guesses the most plausible email address for a recruiter
// contact: it generates candidates from naming conventions, validates them,
// scores each one and selects the single best candidate per person.
package discovery

import (
	"context"

	"github.com/nvoss/outreacher/internal/outreach"

	"go.uber.org/zap"
)

// DefaultMinConfidence is the threshold below which discovery reports no
// candidate instead of a low-quality guess.
const DefaultMinConfidence = 0.5

// Record is the discovery outcome for one person: the selected candidate
// with its validation and confidence, or no candidate when nothing met the
// minimum confidence.
type Record struct {
	Person     *outreach.Person
	Candidate  *Candidate
	Validation Validation
	Confidence float64
}

func (r *Record) HasCandidate() bool {
	return r != nil && r.Candidate != nil
}

// Address returns the selected address, or an empty string when discovery
// found no candidate.
func (r *Record) Address() string {
	if !r.HasCandidate() {
		return ""
	}
	return r.Candidate.Address
}

type addressValidator interface {
	Validate(ctx context.Context, address string) Validation
}

// Finder runs the discovery pipeline. It never mutates ledger or rate state;
// its only side effects are the MX lookups inside the validator, so
// discovering the same person twice yields the same record.
type Finder struct {
	validator     addressValidator
	score         ScoreFunc
	patterns      []Pattern
	minConfidence float64
	logger        *zap.Logger
}

func NewFinder(validator addressValidator, score ScoreFunc, patterns []Pattern, minConfidence float64, logger *zap.Logger) *Finder {
	if score == nil {
		score = DefaultScore
	}
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	if minConfidence <= 0 {
		minConfidence = DefaultMinConfidence
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Finder{
		validator:     validator,
		score:         score,
		patterns:      patterns,
		minConfidence: minConfidence,
		logger:        logger,
	}
}

// Discover selects the candidate with the strictly highest confidence for
// the person. Ties keep the earlier-generated pattern. A best confidence
// below the minimum yields a record without a candidate.
func (f *Finder) Discover(ctx context.Context, p *outreach.Person) *Record {
	record := &Record{Person: p}

	for _, candidate := range Generate(p, f.patterns) {
		validation := f.validator.Validate(ctx, candidate.Address)
		confidence := f.score(candidate, validation)

		f.logger.Debug("scored candidate address",
			zap.String("address", candidate.Address),
			zap.String("pattern", string(candidate.Pattern)),
			zap.Bool("syntax_valid", validation.SyntaxValid),
			zap.String("domain_mx", validation.DomainMX.String()),
			zap.Float64("confidence", confidence),
		)

		if confidence > record.Confidence {
			record.Candidate = candidate
			record.Validation = validation
			record.Confidence = confidence
		}
	}

	if record.Candidate == nil || record.Confidence < f.minConfidence {
		f.logger.Info("no candidate address met minimum confidence",
			zap.String("person", p.FullName),
			zap.String("company_domain", p.CompanyDomain),
			zap.Float64("best_confidence", record.Confidence),
			zap.Float64("minimum", f.minConfidence),
		)
		return &Record{Person: p}
	}

	f.logger.Info("selected candidate address",
		zap.String("person", p.FullName),
		zap.String("address", record.Candidate.Address),
		zap.String("pattern", string(record.Candidate.Pattern)),
		zap.Float64("confidence", record.Confidence),
	)

	return record
}
