package ratesapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"google.golang.org/api/idtoken"
)

// DefaultBaseURL is the public rates API.
const DefaultBaseURL = "https://api.rolloffrates.com"

const (
	defaultTimeout = 15 * time.Second
	maxBodyBytes   = 8 << 20
)

// Fetcher retrieves raw JSON documents from the rates API.
type Fetcher interface {
	Get(ctx context.Context, path string, query url.Values) ([]byte, error)
	Post(ctx context.Context, path string) ([]byte, error)
}

// StatusError is returned when the API answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("rates api returned %d: %s", e.StatusCode, e.Message)
}

// HTTPFetcher talks to the rates API over HTTP.
type HTTPFetcher struct {
	client  *http.Client
	baseURL string
}

// NewHTTPFetcher builds a fetcher for baseURL. When client is nil an ID token
// client is attempted first so calls between Cloud Run services authenticate.
func NewHTTPFetcher(client *http.Client, baseURL string) (*HTTPFetcher, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("rates api base url must not be empty")
	}
	if client == nil {
		idc, err := idtoken.NewClient(context.Background(), baseURL)
		if err != nil {
			client = &http.Client{Timeout: defaultTimeout}
		} else {
			idc.Timeout = defaultTimeout
			client = idc
		}
	}
	return &HTTPFetcher{client: client, baseURL: baseURL}, nil
}

// Get issues a GET request and returns the response body.
func (f *HTTPFetcher) Get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	target := f.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create rates request: %w", err)
	}
	return f.do(req)
}

// Post issues an empty POST request and returns the response body.
func (f *HTTPFetcher) Post(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create rates request: %w", err)
	}
	return f.do(req)
}

func (f *HTTPFetcher) do(req *http.Request) ([]byte, error) {
	req.Header.Set("Accept", "application/json")
	if rid := RequestIDFrom(req.Context()); rid != "" {
		req.Header.Set("X-Request-ID", rid)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rates request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("could not read rates response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Message: extractAPIError(body)}
	}
	return body, nil
}

func extractAPIError(body []byte) string {
	if len(body) == 0 {
		return "rates api returned an error"
	}
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return string(body)
}

type requestIDKey struct{}

// WithRequestID attaches a request identifier forwarded as X-Request-ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom returns the identifier stored by WithRequestID.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

var _ Fetcher = (*HTTPFetcher)(nil)
