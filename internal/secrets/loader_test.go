package secrets

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "password")
	if err := os.WriteFile(path, []byte("  s3cret\n"), 0o600); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	secret, err := Load(Source{Name: "smtp password", File: path, Value: "inline"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if secret != "s3cret" {
		t.Fatalf("expected the trimmed file content to win, got %q", secret)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("OUTREACHER_TEST_SECRET", "from-env")

	secret, err := Load(Source{Name: "smtp password", Env: "OUTREACHER_TEST_SECRET", Value: "inline"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if secret != "from-env" {
		t.Fatalf("expected the env value to win over inline, got %q", secret)
	}
}

func TestLoadInlineFallback(t *testing.T) {
	secret, err := Load(Source{Name: "smtp password", Env: "OUTREACHER_UNSET_SECRET", Value: "inline"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if secret != "inline" {
		t.Fatalf("expected the inline value, got %q", secret)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(Source{Name: "smtp password"}); err == nil {
		t.Fatal("expected error for an empty source")
	}

	if _, err := Load(Source{Name: "smtp password", File: "/nonexistent/secret"}); err == nil {
		t.Fatal("expected error for an unreadable file")
	}

	empty := filepath.Join(t.TempDir(), "empty")
	if err := os.WriteFile(empty, []byte("  \n"), 0o600); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := Load(Source{Name: "smtp password", File: empty}); err == nil {
		t.Fatal("expected error for an empty secret file")
	}
}
