package ratesapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func TestHTTPFetcher_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "application/json" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if r.Header.Get("X-Request-ID") != "req-1" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if r.URL.Path != "/city/Austin" || r.URL.Query().Get("state") != "TX" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"companies":[]}`))
	}))
	defer server.Close()

	fetcher, err := NewHTTPFetcher(server.Client(), server.URL+"/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := WithRequestID(context.Background(), "req-1")
	body, err := fetcher.Get(ctx, "/city/Austin", url.Values{"state": []string{"TX"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != `{"companies":[]}` {
		t.Fatalf("unexpected body: %s", body)
	}
}

func TestHTTPFetcher_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"error":"upstream down"}`))
	}))
	defer server.Close()

	fetcher, err := NewHTTPFetcher(server.Client(), server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = fetcher.Post(context.Background(), "/scrape")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected status error, got %v", err)
	}
	if statusErr.StatusCode != http.StatusBadGateway || statusErr.Message != "upstream down" {
		t.Fatalf("unexpected status error: %+v", statusErr)
	}
}

func TestNewHTTPFetcher_RequiresBaseURL(t *testing.T) {
	if _, err := NewHTTPFetcher(http.DefaultClient, "  "); err == nil {
		t.Fatalf("expected error for empty base url")
	}
}

func TestExtractAPIError(t *testing.T) {
	tests := map[string]struct {
		body string
		want string
	}{
		"error field":   {body: `{"error":"boom"}`, want: "boom"},
		"message field": {body: `{"message":"nope"}`, want: "nope"},
		"plain text":    {body: `not-json`, want: "not-json"},
		"empty":         {body: ``, want: "rates api returned an error"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := extractAPIError([]byte(tt.body)); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
