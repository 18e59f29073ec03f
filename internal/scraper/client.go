package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to the scraping service, a sidecar that drives the actual
// browser automation against the providers.
type Client struct {
	url    string
	client *http.Client
}

// NewClient initializes a scraper client. The HTTP timeout is disabled:
// a scraping run legitimately takes minutes, and the service is trusted to
// terminate on its own.
func NewClient(url string) *Client {
	return &Client{
		url:    url,
		client: &http.Client{Timeout: 0},
	}
}

// Scrape asks the service to fetch all movements for one account from
// startDate up to now. A transport or decoding problem is an error; a
// provider-side failure comes back as Result.Success == false.
func (c *Client) Scrape(ctx context.Context, companyID string, credentials map[string]string, startDate time.Time) (*Result, error) {
	body, err := json.Marshal(Request{
		CompanyID:           companyID,
		Credentials:         credentials,
		StartDate:           startDate.Format(time.RFC3339),
		CombineInstallments: false,
	})
	if err != nil {
		return nil, fmt.Errorf("scraper: marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/scrape", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("scraper: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scraper: calling service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("scraper: service returned %d: %s", resp.StatusCode, raw)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("scraper: decoding response: %w", err)
	}

	return &result, nil
}
