package discovery

// ScoreFunc maps a generated candidate and its validation result to a
// confidence in [0, 1]. Scores are comparable between candidates for the
// same person only; they are not calibrated probabilities across people.
type ScoreFunc func(c *Candidate, v Validation) float64

// Per-pattern priors follow the precedence order in DefaultPatterns:
// a more common convention always carries a higher prior.
var patternPriors = map[Pattern]float64{
	PatternFirstDotLast: 0.95,
	PatternFirst:        0.85,
	PatternFLast:        0.80,
	PatternFirstSepLast: 0.75,
	PatternFirstLast:    0.70,
	PatternFDotLast:     0.65,
	PatternRoleHR:       0.55,
	PatternRoleCareers:  0.50,
}

// mxUnknownFactor discounts candidates whose domain deliverability could not
// be confirmed.
const mxUnknownFactor = 0.6

// DefaultScore starts from the pattern prior, zeroes out syntactically
// invalid addresses and domains without MX records, and discounts unknown
// deliverability. Confidence is monotonically non-decreasing in pattern
// commonness, syntax validity and MX presence.
func DefaultScore(c *Candidate, v Validation) float64 {
	if c == nil || !v.SyntaxValid {
		return 0
	}

	prior := patternPriors[c.Pattern]

	switch v.DomainMX {
	case MXPresent:
		return prior
	case MXAbsent:
		return 0
	default:
		return prior * mxUnknownFactor
	}
}
