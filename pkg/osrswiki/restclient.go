package osrswiki

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultBaseURL is the OSRS real-time prices API.
const DefaultBaseURL = "https://prices.runescape.wiki/api/v1/osrs"

// ErrInvalidTimestep is returned for a timestep the API does not serve.
var ErrInvalidTimestep = errors.New("invalid timestep")

var timesteps = map[string]struct{}{"5m": {}, "1h": {}, "6h": {}, "24h": {}}

// APIError is returned when the API answers with a non-200 status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("osrs wiki error: status %d: %s", e.StatusCode, e.Body)
}

// RESTClient talks to the OSRS wiki prices API. The API requires a descriptive User-Agent.
type RESTClient struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

func NewRESTClient(baseURL, userAgent string, timeout time.Duration) *RESTClient {
	return &RESTClient{
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// GetTimeseries fetches the sparse price history of an item at the given
// timestep ("5m", "1h", "6h" or "24h").
func (c *RESTClient) GetTimeseries(ctx context.Context, id int64, timestep string) ([]TimeseriesPoint, error) {
	if _, ok := timesteps[timestep]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimestep, timestep)
	}

	q := url.Values{}
	q.Set("timestep", timestep)
	q.Set("id", strconv.FormatInt(id, 10))

	var result TimeseriesResponse
	if err := c.getJSON(ctx, c.baseURL+"/timeseries?"+q.Encode(), &result); err != nil {
		return nil, fmt.Errorf("get timeseries: %w", err)
	}
	return result.Data, nil
}

// GetLatest fetches the latest trade of every item.
func (c *RESTClient) GetLatest(ctx context.Context) (map[string]LatestPrice, error) {
	var result LatestResponse
	if err := c.getJSON(ctx, c.baseURL+"/latest", &result); err != nil {
		return nil, fmt.Errorf("get latest: %w", err)
	}
	return result.Data, nil
}

// GetLatestItem fetches the latest trade of a single item. The bool is false when the item is unknown.
func (c *RESTClient) GetLatestItem(ctx context.Context, id int64) (LatestPrice, bool, error) {
	key := strconv.FormatInt(id, 10)

	var result LatestResponse
	if err := c.getJSON(ctx, c.baseURL+"/latest?id="+key, &result); err != nil {
		return LatestPrice{}, false, fmt.Errorf("get latest item: %w", err)
	}
	price, ok := result.Data[key]
	return price, ok, nil
}

// GetMapping fetches the metadata of all tradeable items.
func (c *RESTClient) GetMapping(ctx context.Context) ([]ItemMapping, error) {
	var result []ItemMapping
	if err := c.getJSON(ctx, c.baseURL+"/mapping", &result); err != nil {
		return nil, fmt.Errorf("get mapping: %w", err)
	}
	return result, nil
}

// GetDailyVolumes fetches the 24h averages and volumes of every item.
func (c *RESTClient) GetDailyVolumes(ctx context.Context) (*BulkPriceResponse, error) {
	var result BulkPriceResponse
	if err := c.getJSON(ctx, c.baseURL+"/24h", &result); err != nil {
		return nil, fmt.Errorf("get 24h: %w", err)
	}
	return &result, nil
}

// GetRaw fetches an arbitrary JSON document with the client's User-Agent,
// e.g. wiki pages served with action=raw.
func (c *RESTClient) GetRaw(ctx context.Context, rawURL string) (json.RawMessage, error) {
	var result json.RawMessage
	if err := c.getJSON(ctx, rawURL, &result); err != nil {
		return nil, fmt.Errorf("get raw: %w", err)
	}
	return result, nil
}

func (c *RESTClient) getJSON(ctx context.Context, endpoint string, out any) error {
	// Construct the GET request with context for timeout/cancel support
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
