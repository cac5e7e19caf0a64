package balloon

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestClientFetchHourSuccess(t *testing.T) {
	var gotPath, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte(`[[1,2,3]]`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL+"/treasure/")
	body, err := c.FetchHour(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != `[[1,2,3]]` {
		t.Fatalf("body not passed through verbatim: %s", body)
	}
	if gotPath != "/treasure/07.json" {
		t.Fatalf("expected path /treasure/07.json, got %s", gotPath)
	}
	if gotAccept != "application/json" {
		t.Fatalf("expected Accept application/json, got %q", gotAccept)
	}
}

func TestClientFetchHourUpstreamStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL)
	_, err := c.FetchHour(context.Background(), 0)

	var ue *UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected *UpstreamError, got %v", err)
	}
	if ue.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", ue.StatusCode)
	}
	if ue.Error() != "Failed to fetch: Not Found" {
		t.Fatalf("unexpected message %q", ue.Error())
	}
}

// TestClientRepeatedUpstreamStatus verifies a long run of missing hours keeps
// reporting the upstream status and a recovered upstream is reached at once.
func TestClientRepeatedUpstreamStatus(t *testing.T) {
	var healthy atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !healthy.Load() {
			http.Error(w, "slow down", http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`[[1,2,3]]`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL)
	for i := 0; i < 12; i++ {
		_, err := c.FetchHour(context.Background(), i)
		var ue *UpstreamError
		if !errors.As(err, &ue) || ue.StatusCode != http.StatusTooManyRequests {
			t.Fatalf("call %d: expected 429 UpstreamError, got %v", i+1, err)
		}
	}

	healthy.Store(true)
	if _, err := c.FetchHour(context.Background(), 0); err != nil {
		t.Fatalf("expected recovered upstream, got %v", err)
	}
}

// TestLoaderThroughClientAfterStatusRun verifies a full day loads after a
// cycle where every hour answered 404.
func TestLoaderThroughClientAfterStatusRun(t *testing.T) {
	var healthy atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !healthy.Load() {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`[[10,20,5]]`))
	}))
	defer srv.Close()

	loader := NewLoader(NewClient(srv.Client(), srv.URL), DefaultHours, nil)
	if got := loader.Load(context.Background()); len(got) != 0 {
		t.Fatalf("expected no snapshots while upstream is missing, got %d", len(got))
	}

	healthy.Store(true)
	if got := loader.Load(context.Background()); len(got) != DefaultHours {
		t.Fatalf("expected %d snapshots after recovery, got %d", DefaultHours, len(got))
	}
}

func TestClientFetchHourMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[[1,2,`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL)
	if _, err := c.FetchHour(context.Background(), 1); !errors.Is(err, ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
}

func TestClientFetchHourNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(&http.Client{}, url)
	if _, err := c.FetchHour(context.Background(), 1); !errors.Is(err, ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
}

func TestClientFetchHourRange(t *testing.T) {
	c := NewClient(&http.Client{}, "http://example.invalid")
	if _, err := c.FetchHour(context.Background(), 24); err == nil {
		t.Fatalf("expected error for hour 24")
	}
}
