package discovery

import (
	"context"
	"net"
	"testing"
	"time"

	"go.uber.org/zap"
)

type stubResolver struct {
	records []*net.MX
	err     error
	calls   int
}

func (s *stubResolver) LookupMX(_ context.Context, _ string) ([]*net.MX, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.records, nil
}

func TestSyntaxValid(t *testing.T) {
	tests := []struct {
		address string
		valid   bool
	}{
		{"jane.doe@acme.com", true},
		{"j_doe+tag@sub.acme.io", true},
		{"  jane@acme.com  ", true},
		{"no-at-sign", false},
		{"@acme.com", false},
		{"jane@", false},
		{"jane@acme", false},
		{"jane@@acme.com", false},
		{"jane doe@acme.com", false},
		{"jane@.acme.com", false},
		{"jane@acme.com.", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			if got := SyntaxValid(tt.address); got != tt.valid {
				t.Fatalf("SyntaxValid(%q) = %v, expected %v", tt.address, got, tt.valid)
			}
		})
	}
}

func TestValidateShortCircuitsOnSyntaxFailure(t *testing.T) {
	resolver := &stubResolver{records: []*net.MX{{Host: "mx.acme.com"}}}
	validator := NewValidator(resolver, time.Second, zap.NewNop())

	result := validator.Validate(context.Background(), "not-an-address")

	if result.SyntaxValid {
		t.Fatal("expected syntax to be invalid")
	}
	if result.DomainMX != MXUnknown {
		t.Fatalf("expected MXUnknown, got %v", result.DomainMX)
	}
	if resolver.calls != 0 {
		t.Fatalf("expected no network call on syntax failure, got %d", resolver.calls)
	}
}

func TestValidateMXPresent(t *testing.T) {
	resolver := &stubResolver{records: []*net.MX{{Host: "mx.acme.com"}}}
	validator := NewValidator(resolver, time.Second, zap.NewNop())

	result := validator.Validate(context.Background(), "jane.doe@acme.com")

	if !result.SyntaxValid {
		t.Fatal("expected syntax to be valid")
	}
	if result.DomainMX != MXPresent {
		t.Fatalf("expected MXPresent, got %v", result.DomainMX)
	}
}

func TestValidateMXAbsentOnAuthoritativeNotFound(t *testing.T) {
	resolver := &stubResolver{err: &net.DNSError{Err: "no such host", IsNotFound: true}}
	validator := NewValidator(resolver, time.Second, zap.NewNop())

	result := validator.Validate(context.Background(), "jane.doe@acme.com")

	if result.DomainMX != MXAbsent {
		t.Fatalf("expected MXAbsent, got %v", result.DomainMX)
	}
	if resolver.calls != 1 {
		t.Fatalf("expected a single lookup for an authoritative answer, got %d", resolver.calls)
	}
}

func TestValidateDegradesToUnknownOnLookupFailure(t *testing.T) {
	resolver := &stubResolver{err: &net.DNSError{Err: "timeout", IsTimeout: true}}
	validator := NewValidator(resolver, 50*time.Millisecond, zap.NewNop())

	result := validator.Validate(context.Background(), "jane.doe@acme.com")

	if !result.SyntaxValid {
		t.Fatal("expected syntax to be valid")
	}
	if result.DomainMX != MXUnknown {
		t.Fatalf("expected MXUnknown on lookup failure, got %v", result.DomainMX)
	}
}

func TestValidateCachesDomainLookups(t *testing.T) {
	resolver := &stubResolver{records: []*net.MX{{Host: "mx.acme.com"}}}
	validator := NewValidator(resolver, time.Second, zap.NewNop())

	validator.Validate(context.Background(), "jane.doe@acme.com")
	validator.Validate(context.Background(), "jdoe@acme.com")
	validator.Validate(context.Background(), "careers@acme.com")

	if resolver.calls != 1 {
		t.Fatalf("expected one lookup for the shared domain, got %d", resolver.calls)
	}
}
