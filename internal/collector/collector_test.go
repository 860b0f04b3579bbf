package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestGreenhouseJobs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/acme/jobs" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"jobs": [
			{"title": "Go Developer", "company_name": "Acme", "location": {"name": "New York, NY"}},
			{"title": "SRE", "location": {"name": "Remote, USA"}}
		]}`))
	}))
	defer server.Close()

	client := New(context.Background(), zap.NewNop())
	client.GreenhouseAPIURL = server.URL

	jobs, err := client.GreenhouseJobs(&BoardConfig{Slug: "acme", Domain: "acme.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0].Title != "Go Developer" || jobs[0].CompanyName != "Acme" || jobs[0].Location != "New York, NY" {
		t.Fatalf("unexpected first job: %+v", jobs[0])
	}
	if jobs[1].CompanyName != "acme" {
		t.Fatalf("expected slug fallback for missing company name, got %q", jobs[1].CompanyName)
	}
}

func TestLeverJobs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/globex" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"text": "Backend Engineer", "company": "Globex", "categories": {"location": "Austin, TX"}}
		]`))
	}))
	defer server.Close()

	client := New(context.Background(), zap.NewNop())
	client.LeverAPIURL = server.URL

	jobs, err := client.LeverJobs(&BoardConfig{Slug: "globex", Domain: "globex.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(jobs))
	}
	if jobs[0].Title != "Backend Engineer" || jobs[0].Location != "Austin, TX" {
		t.Fatalf("unexpected job: %+v", jobs[0])
	}
}

func TestGreenhouseJobsBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := New(context.Background(), zap.NewNop())
	client.GreenhouseAPIURL = server.URL

	if _, err := client.GreenhouseJobs(&BoardConfig{Slug: "ghost"}); err == nil {
		t.Fatal("expected error for a missing board")
	}
}

func TestFilterByLocation(t *testing.T) {
	jobs := []*Job{
		{Title: "a", Location: "New York, United States"},
		{Title: "b", Location: "Berlin, Germany"},
		{Title: "c", Location: "Remote - USA"},
	}

	kept := FilterByLocation(jobs, []string{"united states", "usa"})
	if len(kept) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(kept))
	}

	all := FilterByLocation(jobs, nil)
	if len(all) != 3 {
		t.Fatalf("expected all jobs with no terms, got %d", len(all))
	}
}

func TestContactFor(t *testing.T) {
	jobs := []*Job{{CompanyName: "Acme", Title: "Go Developer", Location: "NYC"}}

	person := ContactFor(&BoardConfig{Slug: "acme", Domain: "acme.com", Contact: "Jane Doe"}, jobs)
	if person == nil {
		t.Fatal("expected a contact")
	}
	if person.FullName != "Jane Doe" || person.CompanyDomain != "acme.com" {
		t.Fatalf("unexpected contact: %+v", person)
	}
	if person.JobTitle != "Go Developer" || person.CompanyName != "Acme" {
		t.Fatalf("expected message context from the first job, got %+v", person)
	}

	fallback := ContactFor(&BoardConfig{Slug: "acme", Domain: "acme.com"}, jobs)
	if fallback.FullName != "Hiring Team" {
		t.Fatalf("expected fallback contact name, got %q", fallback.FullName)
	}

	if ContactFor(&BoardConfig{Slug: "acme", Domain: "acme.com"}, nil) != nil {
		t.Fatal("expected no contact for a board without jobs")
	}
}

func TestPeopleFromConfig(t *testing.T) {
	people := PeopleFromConfig([]*PersonConfig{
		{Name: "John Roe", Company: "Globex", Domain: "Globex.com", JobTitle: "SRE"},
		nil,
	})

	if len(people) != 1 {
		t.Fatalf("expected 1 person, got %d", len(people))
	}
	if people[0].CompanyDomain != "globex.com" {
		t.Fatalf("expected normalized domain, got %q", people[0].CompanyDomain)
	}
	if people[0].Source != "config" {
		t.Fatalf("unexpected source: %q", people[0].Source)
	}
}
