package collector

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

type leverPosting struct {
	Text       string `json:"text"`
	Company    string `json:"company"`
	Categories struct {
		Location string `json:"location"`
	} `json:"categories"`
}

// LeverJobs fetches the open postings of one Lever board.
func (c *Client) LeverJobs(cfg *BoardConfig) ([]*Job, error) {
	url := fmt.Sprintf("%s/%s?mode=json", c.LeverAPIURL, cfg.Slug)

	var payload []any
	if err := c.getJSON(url, &payload); err != nil {
		return nil, fmt.Errorf("fetching lever board %q: %w", cfg.Slug, err)
	}

	var parsed []*leverPosting
	decoderCfg := &mapstructure.DecoderConfig{
		Result:  &parsed,
		TagName: "json",
	}
	decoder, _ := mapstructure.NewDecoder(decoderCfg)
	if err := decoder.Decode(payload); err != nil {
		return nil, fmt.Errorf("decoding lever board %q: %w", cfg.Slug, err)
	}

	jobs := make([]*Job, 0, len(parsed))
	for _, posting := range parsed {
		company := posting.Company
		if company == "" {
			company = cfg.Slug
		}
		jobs = append(jobs, &Job{
			CompanyName: company,
			Title:       posting.Text,
			Location:    posting.Categories.Location,
		})
	}

	return jobs, nil
}
