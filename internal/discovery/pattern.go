package discovery

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/nvoss/outreacher/internal/outreach"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Pattern identifies a corporate address convention used to derive an email
// local part from name components.
type Pattern string

const (
	PatternFirstDotLast Pattern = "first.last"
	PatternFirst        Pattern = "first"
	PatternFLast        Pattern = "flast"
	PatternFirstSepLast Pattern = "first_last"
	PatternFirstLast    Pattern = "firstlast"
	PatternFDotLast     Pattern = "f.last"
	PatternRoleHR       Pattern = "hr"
	PatternRoleCareers  Pattern = "careers"
)

// DefaultPatterns is the precedence order, most likely convention first. The
// order is the tie-break used when candidates score equally, so it must stay
// stable across runs. Role accounts come last: they reach a mailbox almost
// surely but rarely the person.
var DefaultPatterns = []Pattern{
	PatternFirstDotLast,
	PatternFirst,
	PatternFLast,
	PatternFirstSepLast,
	PatternFirstLast,
	PatternFDotLast,
	PatternRoleHR,
	PatternRoleCareers,
}

// ParsePatterns validates a configured precedence override. Unknown pattern
// names are a configuration error rather than being silently dropped.
func ParsePatterns(names []string) ([]Pattern, error) {
	if len(names) == 0 {
		return DefaultPatterns, nil
	}

	known := make(map[Pattern]bool, len(DefaultPatterns))
	for _, p := range DefaultPatterns {
		known[p] = true
	}

	patterns := make([]Pattern, 0, len(names))
	for _, name := range names {
		p := Pattern(strings.TrimSpace(name))
		if !known[p] {
			return nil, fmt.Errorf("unknown address pattern %q", name)
		}
		patterns = append(patterns, p)
	}

	return patterns, nil
}

// Candidate is a generated address for one (person, pattern) pairing. It is
// ephemeral within a single discovery call and never persisted.
type Candidate struct {
	Address string
	Pattern Pattern
	Person  *outreach.Person
}

var asciiFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Generate produces the candidate addresses for a person in the given
// precedence order. It is a pure function of its inputs: the same person
// always yields the same sequence. Persons without a usable first name or
// company domain yield an empty sequence, and surname-dependent patterns are
// skipped when there is no last name.
func Generate(p *outreach.Person, patterns []Pattern) []*Candidate {
	if p == nil || p.CompanyDomain == "" {
		return nil
	}

	first := sanitizeNamePart(p.FirstName)
	last := sanitizeNamePart(p.LastName)
	if first == "" {
		return nil
	}

	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}

	candidates := make([]*Candidate, 0, len(patterns))
	for _, pattern := range patterns {
		local := localPart(pattern, first, last)
		if local == "" {
			continue
		}
		candidates = append(candidates, &Candidate{
			Address: fmt.Sprintf("%s@%s", local, p.CompanyDomain),
			Pattern: pattern,
			Person:  p,
		})
	}

	return candidates
}

func localPart(pattern Pattern, first, last string) string {
	switch pattern {
	case PatternRoleHR:
		return "hr"
	case PatternRoleCareers:
		return "careers"
	case PatternFirst:
		return first
	}

	// Everything below needs a surname.
	if last == "" {
		return ""
	}

	switch pattern {
	case PatternFirstDotLast:
		return first + "." + last
	case PatternFLast:
		return first[:1] + last
	case PatternFirstSepLast:
		return first + "_" + last
	case PatternFirstLast:
		return first + last
	case PatternFDotLast:
		return first[:1] + "." + last
	default:
		return ""
	}
}

// sanitizeNamePart transliterates a name token to ASCII and strips anything
// that cannot appear in an email local part.
func sanitizeNamePart(s string) string {
	folded, _, err := transform.String(asciiFold, strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		folded = strings.ToLower(strings.TrimSpace(s))
	}

	var b strings.Builder
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
