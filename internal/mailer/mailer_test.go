package mailer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func testSMTP(t *testing.T) *SMTP {
	t.Helper()

	return NewSMTP(&Config{
		Host:        "smtp.example.com",
		Port:        587,
		SenderName:  "John Candidate",
		SenderEmail: "john@candidate.dev",
	}, zap.NewNop())
}

func TestBuildPayloadPlainText(t *testing.T) {
	s := testSMTP(t)

	payload, err := s.buildPayload(&Message{
		To:      "jane.doe@acme.com",
		Subject: "Interest in Go Developer at Acme",
		Body:    "Hello Jane,",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	text := string(payload)
	for _, want := range []string{
		"From: John Candidate <john@candidate.dev>\r\n",
		"To: jane.doe@acme.com\r\n",
		"Subject: Interest in Go Developer at Acme\r\n",
		"Content-Type: text/plain; charset=utf-8\r\n\r\nHello Jane,",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("payload missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "multipart/mixed") {
		t.Fatal("did not expect a multipart envelope without an attachment")
	}
}

func TestBuildPayloadWithAttachment(t *testing.T) {
	s := testSMTP(t)

	path := filepath.Join(t.TempDir(), "resume.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4 fake"), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	payload, err := s.buildPayload(&Message{
		To:             "jane.doe@acme.com",
		Subject:        "subject",
		Body:           "body",
		AttachmentPath: path,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	text := string(payload)
	for _, want := range []string{
		"Content-Type: multipart/mixed",
		"Content-Transfer-Encoding: base64",
		`Content-Disposition: attachment; filename="resume.pdf"`,
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("payload missing %q:\n%s", want, text)
		}
	}
}

func TestBuildPayloadMissingAttachmentFallsBack(t *testing.T) {
	s := testSMTP(t)

	payload, err := s.buildPayload(&Message{
		To:             "jane.doe@acme.com",
		Subject:        "subject",
		Body:           "body",
		AttachmentPath: filepath.Join(t.TempDir(), "nope.pdf"),
	})
	if err != nil {
		t.Fatalf("expected a missing attachment to fall back, got: %v", err)
	}

	if strings.Contains(string(payload), "multipart/mixed") {
		t.Fatal("expected a plain text payload when the attachment is missing")
	}
}

func TestDryRunReportsSuccess(t *testing.T) {
	d := &DryRun{}

	err := d.Send(context.Background(), &Message{
		To:      "jane.doe@acme.com",
		Subject: "subject",
		Body:    strings.Repeat("long body ", 100),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
