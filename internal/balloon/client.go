package balloon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sony/gobreaker"

	"github.com/i474232898/balloon-tracker/internal/common"
)

// DefaultBaseURL is the upstream balloon-position feed.
const DefaultBaseURL = "https://a.windbornesystems.com/treasure"

// ErrTransport covers network failures, unreadable or malformed bodies
// and an open circuit. It maps to a generic 500.
var ErrTransport = errors.New("failed to fetch balloon data")

// UpstreamError carries a non-2xx status from the balloon provider.
type UpstreamError struct {
	StatusCode int
	StatusText string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("Failed to fetch: %s", e.StatusText)
}

// Fetcher returns the raw JSON body for one hour of the feed.
type Fetcher interface {
	FetchHour(ctx context.Context, hour int) ([]byte, error)
}

// Client relays single-hour requests to the upstream provider.
type Client struct {
	baseURL string
	http    *http.Client
	circuit *gobreaker.CircuitBreaker
}

// NewClient creates a Client. An empty baseURL selects DefaultBaseURL.
func NewClient(httpClient *http.Client, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		circuit: common.NewBreaker("balloons"),
	}
}

// URL returns the upstream URL for an hour offset.
func (c *Client) URL(hour int) string {
	return fmt.Sprintf("%s/%s.json", c.baseURL, common.HourLabel(hour))
}

// FetchHour issues one request for the given hour (0-23).
// Non-2xx responses yield *UpstreamError, everything else that fails wraps ErrTransport.
// The returned body is valid JSON but not necessarily an array.
func (c *Client) FetchHour(ctx context.Context, hour int) ([]byte, error) {
	if hour < 0 || hour > 23 {
		return nil, fmt.Errorf("hour %d out of range 0-23", hour)
	}

	req, err := http.NewRequest(http.MethodGet, c.URL(hour), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := common.DoOnce(ctx, c.http, c.circuit, req)
	if err != nil {
		var se *common.StatusError
		if errors.As(err, &se) {
			return nil, &UpstreamError{StatusCode: se.StatusCode, StatusText: se.StatusText()}
		}
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrTransport, err)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: malformed json for hour %s", ErrTransport, common.HourLabel(hour))
	}
	return body, nil
}
