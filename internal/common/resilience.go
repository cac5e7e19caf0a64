package common

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

var (
	ErrCircuitOpen  = errors.New("circuit breaker open")
	ErrNoHTTPClient = errors.New("http client not configured")
)

// StatusError is returned for a non-2xx upstream response.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d (%s)", e.StatusCode, e.Status)
}

// StatusText returns the reason phrase without the numeric code, e.g. "Not Found".
// The upstream's own phrase wins over the canonical one for the code.
func (e *StatusError) StatusText() string {
	if text := strings.TrimSpace(strings.TrimPrefix(e.Status, strconv.Itoa(e.StatusCode))); text != "" {
		return text
	}
	return http.StatusText(e.StatusCode)
}

// BreakerMaxRequests bounds the probes admitted while half-open. It covers a
// full day of hourly fetches issued at once.
const BreakerMaxRequests = 24

// NewBreaker returns a circuit breaker with the settings shared by all outbound clients.
func NewBreaker(name string) *gobreaker.CircuitBreaker {
	return newBreaker(name, 2*time.Minute)
}

func newBreaker(name string, openTimeout time.Duration) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: BreakerMaxRequests,
		Interval:    1 * time.Minute,
		Timeout:     openTimeout,
	})
}

// DoOnce executes req exactly once through the circuit breaker.
// Non-2xx responses are closed and returned as *StatusError.
// Only transport failures count against the breaker; a status answer means
// the upstream is reachable.
// There is no retry: the caller decides what a failure means.
func DoOnce(ctx context.Context, client *http.Client, cb *gobreaker.CircuitBreaker, req *http.Request) (*http.Response, error) {
	if client == nil {
		return nil, ErrNoHTTPClient
	}

	req = req.WithContext(ctx)

	result, err := cb.Execute(func() (interface{}, error) {
		return client.Do(req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", ErrCircuitOpen, err)
		}
		return nil, err
	}

	resp, ok := result.(*http.Response)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}
	return resp, nil
}
