package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	// DefaultBaseURL points at the local frame service
	DefaultBaseURL = "http://127.0.0.1:8090"

	// User agent sent with every request
	UserAgent = "imagery-live/1.0"
)

// Client handles communication with the frame service (catalog index,
// local frame store, fetch jobs)
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new frame service client with system proxy support
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	// Use http.ProxyFromEnvironment to respect system proxy settings
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
	}

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

// CatalogLatest returns the newest capture the remote catalog knows about
// for the given view. A nil frame with nil error means the catalog has no
// entry yet ("no update yet", never fatal).
func (c *Client) CatalogLatest(ctx context.Context, satellite, sector, band string) (*CatalogFrame, error) {
	var frame CatalogFrame
	ok, err := c.getJSON(ctx, "/api/catalog/latest", satellite, sector, band, &frame)
	if err != nil || !ok {
		return nil, err
	}
	return &frame, nil
}

// LocalLatest returns the last frame materialized locally for the given
// view, or nil if nothing has been fetched yet.
func (c *Client) LocalLatest(ctx context.Context, satellite, sector, band string) (*LocalFrame, error) {
	var frame LocalFrame
	ok, err := c.getJSON(ctx, "/api/frames/latest", satellite, sector, band, &frame)
	if err != nil || !ok {
		return nil, err
	}
	return &frame, nil
}

// getJSON performs a latest-frame style GET. Returns ok=false for absent
// content (404, 204, empty body) so callers can treat it as "no update yet".
func (c *Client) getJSON(ctx context.Context, path, satellite, sector, band string, out interface{}) (bool, error) {
	q := url.Values{}
	q.Set("satellite", satellite)
	q.Set("sector", sector)
	q.Set("band", band)

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusNoContent {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("request failed with status: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("failed to read response: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return false, nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("failed to parse response: %w", err)
	}
	return true, nil
}

// StartFetch asks the backend to download a frame range and returns the
// job id tracking it. The caller normalizes the satellite identifier.
func (c *Client) StartFetch(ctx context.Context, freq FetchRequest) (string, error) {
	body, err := json.Marshal(freq)
	if err != nil {
		return "", fmt.Errorf("failed to marshal fetch request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/fetch", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return "", fmt.Errorf("fetch request failed with status: %d", resp.StatusCode)
	}

	var result struct {
		JobID string `json:"job_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to parse fetch response: %w", err)
	}
	if result.JobID == "" {
		return "", fmt.Errorf("fetch response missing job id")
	}
	return result.JobID, nil
}

// Job returns the current state of a fetch job
func (c *Client) Job(ctx context.Context, id string) (*FetchJob, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/api/jobs/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("job request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("job request failed with status: %d", resp.StatusCode)
	}

	var job FetchJob
	if err := json.NewDecoder(resp.Body).Decode(&job); err != nil {
		return nil, fmt.Errorf("failed to parse job response: %w", err)
	}
	return &job, nil
}
