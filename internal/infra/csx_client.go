package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"csx_ticker/internal/domain"
)

const (
	// DefaultCSXURL is the public CSX market summary endpoint
	DefaultCSXURL = "https://data.mef.gov.kh/api/v1/realtime-api/csx-summary"

	defaultRequestTimeout = 10 * time.Second
	maxBodyBytes          = 4 << 20
)

// csxResponse represents the CSX summary API response
type csxResponse struct {
	Data []domain.Quote `json:"data"`
}

// CSXClient fetches the market summary from the CSX realtime API.
// Each call is a single attempt; callers own the refresh schedule.
type CSXClient struct {
	apiURL     string
	httpClient *http.Client
}

// NewCSXClient creates a client for apiURL. Empty apiURL selects DefaultCSXURL,
// a non-positive timeout selects 10 seconds.
func NewCSXClient(apiURL string, timeout time.Duration) *CSXClient {
	if apiURL == "" {
		apiURL = DefaultCSXURL
	}
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &CSXClient{
		apiURL: apiURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchSnapshot issues one GET and decodes the quote list
func (c *CSXClient) FetchSnapshot(ctx context.Context) (domain.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL, nil)
	if err != nil {
		return domain.Snapshot{}, &domain.TransportError{Op: "request", Err: err}
	}

	// Add browser-like User-Agent to avoid bot detection
	req.Header.Set("User-Agent", DefaultUserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Snapshot{}, &domain.TransportError{Op: "request", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.Snapshot{}, domain.NewStatusError(resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return domain.Snapshot{}, &domain.TransportError{Op: "read", Err: err}
	}

	var data csxResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return domain.Snapshot{}, &domain.TransportError{Op: "decode", Err: fmt.Errorf("invalid market summary: %w", err)}
	}

	if len(data.Data) == 0 {
		return domain.Snapshot{}, &domain.EmptyPayloadError{Field: "data"}
	}

	return domain.Snapshot{Quotes: data.Data}, nil
}
