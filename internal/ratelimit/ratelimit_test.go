package ratelimit

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestLimiter(t *testing.T, cap int) (*Limiter, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "rate.json")
	l, err := Open(path, cap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return l, path
}

func TestTryReserveHonorsCap(t *testing.T) {
	l, _ := openTestLimiter(t, 3)

	for i := 0; i < 3; i++ {
		ok, err := l.TryReserve()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !ok {
			t.Fatalf("reservation %d: expected success under the cap", i+1)
		}
	}

	ok, err := l.TryReserve()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected reservation to be declined at the cap")
	}
	if l.SentToday() != 3 {
		t.Fatalf("expected counter unchanged after decline, got %d", l.SentToday())
	}
}

func TestZeroCapNeverReserves(t *testing.T) {
	l, _ := openTestLimiter(t, 0)

	ok, err := l.TryReserve()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected no reservation with a zero cap")
	}
}

func TestWindowResetsOnDateRoll(t *testing.T) {
	l, _ := openTestLimiter(t, 1)

	day := time.Date(2026, 8, 29, 23, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return day }

	if ok, _ := l.TryReserve(); !ok {
		t.Fatal("expected first reservation to succeed")
	}
	if ok, _ := l.TryReserve(); ok {
		t.Fatal("expected cap to be hit")
	}

	l.now = func() time.Time { return day.Add(2 * time.Hour) } // next calendar day

	ok, err := l.TryReserve()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected reservation to succeed after the date rolled")
	}
	if l.SentToday() != 1 {
		t.Fatalf("expected fresh counter after roll, got %d", l.SentToday())
	}
}

func TestWindowSurvivesReopen(t *testing.T) {
	l, path := openTestLimiter(t, 5)

	if ok, _ := l.TryReserve(); !ok {
		t.Fatal("expected reservation to succeed")
	}
	if ok, _ := l.TryReserve(); !ok {
		t.Fatal("expected reservation to succeed")
	}

	reopened, err := Open(path, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if reopened.SentToday() != 2 {
		t.Fatalf("expected persisted counter, got %d", reopened.SentToday())
	}
}
