package collector

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

type greenhouseJob struct {
	Title       string `json:"title"`
	CompanyName string `json:"company_name"`
	Location    struct {
		Name string `json:"name"`
	} `json:"location"`
}

// GreenhouseJobs fetches the open postings of one Greenhouse board.
func (c *Client) GreenhouseJobs(cfg *BoardConfig) ([]*Job, error) {
	url := fmt.Sprintf("%s/%s/jobs", c.GreenhouseAPIURL, cfg.Slug)

	var payload map[string]any
	if err := c.getJSON(url, &payload); err != nil {
		return nil, fmt.Errorf("fetching greenhouse board %q: %w", cfg.Slug, err)
	}

	var parsed []*greenhouseJob
	decoderCfg := &mapstructure.DecoderConfig{
		Result:  &parsed,
		TagName: "json",
	}
	decoder, _ := mapstructure.NewDecoder(decoderCfg)
	if err := decoder.Decode(payload["jobs"]); err != nil {
		return nil, fmt.Errorf("decoding greenhouse board %q: %w", cfg.Slug, err)
	}

	jobs := make([]*Job, 0, len(parsed))
	for _, job := range parsed {
		company := job.CompanyName
		if company == "" {
			company = cfg.Slug
		}
		jobs = append(jobs, &Job{
			CompanyName: company,
			Title:       job.Title,
			Location:    job.Location.Name,
		})
	}

	return jobs, nil
}
