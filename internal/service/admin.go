package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/octobees/rolloff-rates/internal/dto"
)

// CacheController exposes the invalidation side of the rates client.
type CacheController interface {
	TriggerScrape(ctx context.Context) (string, error)
	ClearCache(ctx context.Context) (int, error)
}

// StaticGenerator writes the static city mirror.
type StaticGenerator interface {
	GenerateAll(ctx context.Context) (int, error)
	Dir() string
}

// AdminService backs the operator endpoints.
type AdminService struct {
	cache  CacheController
	static StaticGenerator
}

// NewAdminService constructs an AdminService. static may be nil when the
// mirror is disabled.
func NewAdminService(cache CacheController, static StaticGenerator) *AdminService {
	return &AdminService{cache: cache, static: static}
}

const defaultScrapeMessage = "Scrape triggered successfully."

// TriggerScrape forwards the refresh request upstream. The cache is cleared by
// the rates client once the upstream accepts.
func (s *AdminService) TriggerScrape(ctx context.Context) (dto.ScrapeResult, error) {
	msg, err := s.cache.TriggerScrape(ctx)
	if err != nil {
		return dto.ScrapeResult{}, fmt.Errorf("failed to trigger scrape: %w", err)
	}
	if msg == "" {
		msg = defaultScrapeMessage
	}
	log.Printf("scrape triggered message=%q", msg)
	return dto.ScrapeResult{Message: msg}, nil
}

// ClearCache drops every cached API response.
func (s *AdminService) ClearCache(ctx context.Context) (dto.CacheClearResult, error) {
	n, err := s.cache.ClearCache(ctx)
	if err != nil {
		return dto.CacheClearResult{}, err
	}
	log.Printf("rates cache cleared entries=%d", n)
	return dto.CacheClearResult{ClearedEntries: n}, nil
}

// ErrStaticDisabled is returned when no static generator is configured.
var ErrStaticDisabled = errors.New("static generation is not configured")

// GenerateStatic rebuilds the static mirror.
func (s *AdminService) GenerateStatic(ctx context.Context) (dto.StaticResult, error) {
	if s.static == nil {
		return dto.StaticResult{}, ErrStaticDisabled
	}
	n, err := s.static.GenerateAll(ctx)
	if err != nil {
		return dto.StaticResult{}, err
	}
	return dto.StaticResult{Pages: n, Dir: s.static.Dir()}, nil
}
