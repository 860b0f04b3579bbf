package discovery

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/maypok86/otter/v2"
	"go.uber.org/zap"
)

const (
	defaultMXTimeout = 5 * time.Second
	mxCacheSize      = 4_096
	mxCacheTTL       = time.Hour
)

// MXStatus is the deliverability signal for an address domain.
type MXStatus int

const (
	// MXUnknown means the lookup failed or timed out. Scoring degrades but
	// the candidate is not rejected.
	MXUnknown MXStatus = iota
	// MXPresent means the domain publishes at least one MX record.
	MXPresent
	// MXAbsent means the domain authoritatively has no MX records.
	MXAbsent
)

func (s MXStatus) String() string {
	switch s {
	case MXPresent:
		return "present"
	case MXAbsent:
		return "absent"
	default:
		return "unknown"
	}
}

// Validation is the result of checking a single candidate address.
type Validation struct {
	SyntaxValid bool
	DomainMX    MXStatus
}

// Resolver is the DNS surface the validator needs.
type Resolver interface {
	LookupMX(ctx context.Context, domain string) ([]*net.MX, error)
}

// Validator checks candidate addresses for syntactic validity and a coarse
// deliverability signal. MX results are cached per domain so the many
// candidates generated for one company cost a single lookup.
type Validator struct {
	resolver Resolver
	timeout  time.Duration
	cache    *otter.Cache[string, MXStatus]
	logger   *zap.Logger
}

func NewValidator(resolver Resolver, timeout time.Duration, logger *zap.Logger) *Validator {
	if resolver == nil {
		resolver = net.DefaultResolver
	}
	if timeout <= 0 {
		timeout = defaultMXTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cache := otter.Must(&otter.Options[string, MXStatus]{
		MaximumSize:      mxCacheSize,
		ExpiryCalculator: otter.ExpiryWriting[string, MXStatus](mxCacheTTL),
	})

	return &Validator{
		resolver: resolver,
		timeout:  timeout,
		cache:    cache,
		logger:   logger,
	}
}

// Validate checks the address. A syntactically invalid address short-circuits
// before any network traffic. Lookup failures never surface as errors; they
// degrade to MXUnknown.
func (v *Validator) Validate(ctx context.Context, address string) Validation {
	if !SyntaxValid(address) {
		return Validation{SyntaxValid: false, DomainMX: MXUnknown}
	}

	domain := address[strings.LastIndex(address, "@")+1:]

	return Validation{
		SyntaxValid: true,
		DomainMX:    v.lookupMX(ctx, domain),
	}
}

func (v *Validator) lookupMX(ctx context.Context, domain string) MXStatus {
	if status, ok := v.cache.GetIfPresent(domain); ok {
		return status
	}

	lookupCtx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	var records []*net.MX
	err := retry.Do(
		func() error {
			var lerr error
			records, lerr = v.resolver.LookupMX(lookupCtx, domain)
			if lerr != nil {
				var dnsErr *net.DNSError
				if errors.As(lerr, &dnsErr) && dnsErr.IsNotFound {
					// Authoritative absence, not a transient failure.
					records = nil
					return nil
				}
				return lerr
			}
			return nil
		},
		retry.Context(lookupCtx),
		retry.Attempts(2),
		retry.Delay(200*time.Millisecond),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		v.logger.Debug("mx lookup failed",
			zap.String("domain", domain),
			zap.Error(err),
		)
		// Transient outcome, do not cache.
		return MXUnknown
	}

	status := MXPresent
	if len(records) == 0 {
		status = MXAbsent
	}

	v.cache.Set(domain, status)

	return status
}

// SyntaxValid reports whether the address follows the local@domain grammar:
// non-empty local part, a single @, a dotted domain, and no disallowed
// characters on either side.
func SyntaxValid(address string) bool {
	address = strings.TrimSpace(address)

	at := strings.Index(address, "@")
	if at <= 0 || at != strings.LastIndex(address, "@") {
		return false
	}

	local, domain := address[:at], address[at+1:]
	if local == "" || domain == "" || !strings.Contains(domain, ".") {
		return false
	}
	if strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") ||
		strings.HasPrefix(domain, "-") || strings.HasSuffix(domain, "-") {
		return false
	}

	for _, r := range local {
		if !isLocalRune(r) {
			return false
		}
	}
	for _, r := range domain {
		if !isDomainRune(r) {
			return false
		}
	}

	return true
}

func isLocalRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '.' || r == '_' || r == '-' || r == '+' || r == '%':
		return true
	default:
		return false
	}
}

func isDomainRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '.' || r == '-':
		return true
	default:
		return false
	}
}
