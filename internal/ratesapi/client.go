// Package ratesapi reads the remote dumpster rates API through a TTL cache.
package ratesapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/octobees/rolloff-rates/internal/cache"
	"github.com/octobees/rolloff-rates/internal/entity"
)

// ScrapeTimeout bounds the scrape trigger call.
const ScrapeTimeout = 5 * time.Second

const (
	endpointCompanies     = "companies"
	endpointServiceAreas  = "service_areas"
	endpointDumpsterSizes = "dumpster_sizes"
	endpointPrices        = "prices"
	endpointCities        = "cities"
)

// Client serves API collections from the cache and refetches on miss or expiry.
// Failures are logged and never cached.
type Client struct {
	fetcher Fetcher
	store   cache.Store
	ttl     time.Duration
}

// NewClient wires a fetcher to a cache store. A non-positive ttl uses cache.DefaultTTL.
func NewClient(fetcher Fetcher, store cache.Store, ttl time.Duration) *Client {
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}
	return &Client{fetcher: fetcher, store: store, ttl: ttl}
}

// Companies returns every company, or an empty slice when the API is unavailable.
func (c *Client) Companies(ctx context.Context) []entity.Company {
	v, _ := load[[]entity.Company](ctx, c, cache.CollectionKey(endpointCompanies), "/companies", nil)
	return orEmpty(v)
}

// ServiceAreas returns every service area.
func (c *Client) ServiceAreas(ctx context.Context) []entity.ServiceArea {
	v, _ := load[[]entity.ServiceArea](ctx, c, cache.CollectionKey(endpointServiceAreas), "/service-areas", nil)
	return orEmpty(v)
}

// DumpsterSizes returns every dumpster size.
func (c *Client) DumpsterSizes(ctx context.Context) []entity.DumpsterSize {
	v, _ := load[[]entity.DumpsterSize](ctx, c, cache.CollectionKey(endpointDumpsterSizes), "/dumpster-sizes", nil)
	return orEmpty(v)
}

// Prices returns every price row.
func (c *Client) Prices(ctx context.Context) []entity.DumpsterPrice {
	v, _ := load[[]entity.DumpsterPrice](ctx, c, cache.CollectionKey(endpointPrices), "/prices", nil)
	return orEmpty(v)
}

// Cities returns the distinct cities the API has data for.
func (c *Client) Cities(ctx context.Context) []entity.City {
	v, _ := load[[]entity.City](ctx, c, cache.CollectionKey(endpointCities), "/cities", nil)
	return orEmpty(v)
}

// CityData returns the bundle for one city, or nil when it cannot be loaded.
// State is optional.
func (c *Client) CityData(ctx context.Context, city, state string) *entity.CityData {
	city = strings.TrimSpace(city)
	state = strings.TrimSpace(state)
	if cache.Slug(city) == "" {
		return nil
	}

	var query url.Values
	if state != "" {
		query = url.Values{"state": []string{state}}
	}
	data, ok := load[*entity.CityData](ctx, c, cache.CityKey(city, state), "/city/"+url.PathEscape(city), query)
	if !ok {
		return nil
	}
	return data
}

// ClearCache removes every cached API response and reports how many entries went.
func (c *Client) ClearCache(ctx context.Context) (int, error) {
	n, err := c.store.DeletePrefix(ctx, cache.KeyPrefix)
	if err != nil {
		return 0, fmt.Errorf("clear rates cache: %w", err)
	}
	return n, nil
}

// TriggerScrape asks the API to refresh its data and, once it accepts, clears
// the whole cache. The upstream message is returned when present.
func (c *Client) TriggerScrape(ctx context.Context) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, ScrapeTimeout)
	defer cancel()

	body, err := c.fetcher.Post(callCtx, "/scrape")
	if err != nil {
		log.Printf("rates scrape trigger failed err=%v", err)
		return "", fmt.Errorf("trigger scrape: %w", err)
	}

	var resp struct {
		Message string `json:"message"`
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &resp); err != nil {
			log.Printf("rates scrape response not json err=%v", err)
		}
	}

	if _, err := c.ClearCache(ctx); err != nil {
		return resp.Message, err
	}
	return resp.Message, nil
}

// load reads key from the store or fetches path and caches the decoded value.
// ok is false when nothing usable was obtained.
func load[T any](ctx context.Context, c *Client, key, path string, query url.Values) (T, bool) {
	var zero T

	raw, hit, err := c.store.Get(ctx, key)
	if err != nil {
		log.Printf("rates cache read failed key=%s err=%v", key, err)
	}
	if hit {
		var cached T
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, true
		}
		log.Printf("rates cache entry unreadable key=%s", key)
	}

	body, err := c.fetcher.Get(ctx, path, query)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			log.Printf("rates api not found endpoint=%s", path)
		} else {
			log.Printf("rates api fetch failed endpoint=%s err=%v", path, err)
		}
		return zero, false
	}

	var value T
	if err := json.Unmarshal(body, &value); err != nil {
		log.Printf("rates api malformed body endpoint=%s err=%v", path, err)
		return zero, false
	}
	if isNil(value) {
		log.Printf("rates api empty body endpoint=%s", path)
		return zero, false
	}
	if err := ctx.Err(); err != nil {
		log.Printf("rates api response discarded endpoint=%s err=%v", path, err)
		return zero, false
	}

	encoded, err := json.Marshal(value)
	if err == nil {
		err = c.store.Set(ctx, key, encoded, c.ttl)
	}
	if err != nil {
		log.Printf("rates cache write failed key=%s err=%v", key, err)
	}
	return value, true
}

// isNil reports a JSON null body, which decodes to a nil pointer or slice.
func isNil(v any) bool {
	switch x := v.(type) {
	case *entity.CityData:
		return x == nil
	case []entity.Company:
		return x == nil
	case []entity.ServiceArea:
		return x == nil
	case []entity.DumpsterSize:
		return x == nil
	case []entity.DumpsterPrice:
		return x == nil
	case []entity.City:
		return x == nil
	default:
		return v == nil
	}
}

func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
