// Package collector gathers open job postings from public ATS board APIs
// and turns them into recruiter contacts for discovery.
package collector

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nvoss/outreacher/internal/outreach"

	"github.com/codeGROOVE-dev/retry"
	"go.uber.org/zap"
)

const (
	greenhouseAPIURL = "https://boards-api.greenhouse.io/v1/boards"
	leverAPIURL      = "https://api.lever.co/v0/postings"
	userAgent        = "outreacher (github.com/nvoss/outreacher)"

	fallbackContact = "Hiring Team"
)

// Job is one open posting fetched from a board.
type Job struct {
	CompanyName string
	Title       string
	Location    string
}

// BoardConfig describes one company board to poll.
type BoardConfig struct {
	Slug    string `mapstructure:"slug"`
	Domain  string `mapstructure:"domain"`
	Company string `mapstructure:"company"`
	Contact string `mapstructure:"contact"`
}

// PersonConfig is a manually researched contact configured directly.
type PersonConfig struct {
	Name     string `mapstructure:"name"`
	Company  string `mapstructure:"company"`
	Domain   string `mapstructure:"domain"`
	JobTitle string `mapstructure:"job-title"`
}

type Client struct {
	// ctx used only for http requests right now
	ctx        context.Context
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string

	GreenhouseAPIURL string
	LeverAPIURL      string
}

func New(ctx context.Context, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		ctx:    ctx,
		logger: logger,
		HTTPClient: &http.Client{
			Timeout: 20 * time.Second,
		},
		UserAgent:        userAgent,
		GreenhouseAPIURL: greenhouseAPIURL,
		LeverAPIURL:      leverAPIURL,
	}
}

// FilterByLocation keeps jobs whose location contains any of the terms,
// case-insensitively. Empty terms keep everything.
func FilterByLocation(jobs []*Job, terms []string) []*Job {
	if len(terms) == 0 {
		return jobs
	}

	kept := make([]*Job, 0, len(jobs))
	for _, job := range jobs {
		location := strings.ToLower(job.Location)
		for _, term := range terms {
			if term = strings.ToLower(strings.TrimSpace(term)); term != "" && strings.Contains(location, term) {
				kept = append(kept, job)
				break
			}
		}
	}
	return kept
}

// ContactFor builds the recruiter contact for a board with open jobs. The
// first posting provides the message context; boards without a configured
// contact name fall back to a generic one, which discovery resolves to the
// board's role accounts.
func ContactFor(cfg *BoardConfig, jobs []*Job) *outreach.Person {
	if cfg == nil || len(jobs) == 0 {
		return nil
	}

	name := strings.TrimSpace(cfg.Contact)
	if name == "" {
		name = fallbackContact
	}

	company := strings.TrimSpace(cfg.Company)
	if company == "" {
		company = jobs[0].CompanyName
	}
	if company == "" {
		company = cfg.Slug
	}

	person := outreach.NewPerson(name, cfg.Domain)
	person.CompanyName = company
	person.JobTitle = jobs[0].Title
	person.Source = "ats"

	return person
}

// PeopleFromConfig converts statically configured contacts.
func PeopleFromConfig(entries []*PersonConfig) []*outreach.Person {
	people := make([]*outreach.Person, 0, len(entries))
	for _, entry := range entries {
		if entry == nil {
			continue
		}
		person := outreach.NewPerson(entry.Name, entry.Domain)
		person.CompanyName = strings.TrimSpace(entry.Company)
		person.JobTitle = strings.TrimSpace(entry.JobTitle)
		person.Source = "config"
		people = append(people, person)
	}
	return people
}

// getJSON fetches the url and decodes the response body into target,
// retrying transient failures with backoff.
func (c *Client) getJSON(url string, target any) error {
	return retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(c.ctx, http.MethodGet, url, nil)
			if err != nil {
				return err
			}

			req.Header.Set("User-Agent", c.UserAgent)
			req.Header.Set("Accept", "application/json")
			req.Header.Set("Accept-Encoding", "gzip")

			c.logger.Debug("make request", zap.String("url", req.URL.String()))

			resp, err := c.HTTPClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("bad status: %s", resp.Status)
			}

			var reader io.Reader = resp.Body
			if resp.Header.Get("Content-Encoding") == "gzip" {
				gzipReader, err := gzip.NewReader(resp.Body)
				if err != nil {
					return err
				}
				defer gzipReader.Close()
				reader = gzipReader
			}

			return json.NewDecoder(reader).Decode(target)
		},
		retry.Context(c.ctx),
		retry.Attempts(3),
		retry.Delay(time.Second),
		retry.MaxDelay(10*time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Warn("board request failed, retrying",
				zap.String("url", url),
				zap.Uint("attempt", n+1),
				zap.Error(err),
			)
		}),
	)
}
