// Package staticgen writes a static HTML mirror of every city page plus a
// sitemap.
package staticgen

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	"github.com/octobees/rolloff-rates/internal/cache"
	"github.com/octobees/rolloff-rates/internal/entity"
	"github.com/octobees/rolloff-rates/internal/viewmodel"
)

const (
	lockFile       = ".generate.lock"
	sitemapFile    = "sitemap.xml"
	sitemapNS      = "http://www.sitemaps.org/schemas/sitemap/0.9"
	defaultWorkers = 4
)

var (
	// ErrGenerationInProgress is returned when another run holds the lock.
	ErrGenerationInProgress = errors.New("static generation already in progress")
	// ErrNoCities is returned when the rates API lists no cities.
	ErrNoCities = errors.New("no cities available")
)

// CitySource lists cities and builds their views.
type CitySource interface {
	Cities(ctx context.Context) []entity.City
	View(ctx context.Context, city, state string) viewmodel.CityView
}

// PageRenderer writes a full city document.
type PageRenderer interface {
	CityPage(w io.Writer, view viewmodel.CityView, canonicalURL string) error
}

// Options configures a Generator.
type Options struct {
	Dir     string
	BaseURL string
	Workers int
}

// Generator renders every city into Dir.
type Generator struct {
	source   CitySource
	renderer PageRenderer
	dir      string
	baseURL  string
	workers  int
}

// New constructs a Generator. Dir is required.
func New(source CitySource, renderer PageRenderer, opts Options) (*Generator, error) {
	dir := strings.TrimSpace(opts.Dir)
	if dir == "" {
		return nil, errors.New("static dir is required")
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Generator{
		source:   source,
		renderer: renderer,
		dir:      dir,
		baseURL:  strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"),
		workers:  workers,
	}, nil
}

// Dir returns the output directory.
func (g *Generator) Dir() string {
	return g.dir
}

type page struct {
	city    entity.City
	slug    string
	written bool
}

// GenerateAll renders one page per available city and rewrites the sitemap.
// It returns the number of pages written.
func (g *Generator) GenerateAll(ctx context.Context) (int, error) {
	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return 0, fmt.Errorf("create static dir: %w", err)
	}

	lock := flock.New(filepath.Join(g.dir, lockFile))
	locked, err := lock.TryLock()
	if err != nil {
		return 0, fmt.Errorf("lock static dir: %w", err)
	}
	if !locked {
		return 0, ErrGenerationInProgress
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			log.Printf("static unlock failed dir=%s err=%v", g.dir, err)
		}
	}()

	pages := g.pages(ctx)
	if len(pages) == 0 {
		return 0, ErrNoCities
	}

	var written atomic.Int64
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)
	for i := range pages {
		p := &pages[i]
		eg.Go(func() error {
			ok, err := g.writePage(egCtx, p)
			if err != nil {
				return err
			}
			if ok {
				p.written = true
				written.Add(1)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return int(written.Load()), err
	}

	if err := g.writeSitemap(pages); err != nil {
		return int(written.Load()), err
	}

	n := int(written.Load())
	log.Printf("static mirror generated dir=%s pages=%d cities=%d", g.dir, n, len(pages))
	return n, nil
}

// pages lists the cities to render, one per distinct directory.
func (g *Generator) pages(ctx context.Context) []page {
	cities := g.source.Cities(ctx)
	pages := make([]page, 0, len(cities))
	seen := make(map[string]struct{}, len(cities))
	for _, c := range cities {
		slug := PageSlug(c.City, c.State)
		if slug == "" {
			continue
		}
		if _, dup := seen[slug]; dup {
			continue
		}
		seen[slug] = struct{}{}
		pages = append(pages, page{city: c, slug: slug})
	}
	return pages
}

func (g *Generator) writePage(ctx context.Context, p *page) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	view := g.source.View(ctx, p.city.City, p.city.State)
	if view.Unavailable {
		log.Printf("static page skipped city=%q state=%q reason=unavailable", p.city.City, p.city.State)
		return false, nil
	}

	dir := filepath.Join(g.dir, p.slug)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, fmt.Errorf("create page dir: %w", err)
	}
	err := writeFileAtomic(filepath.Join(dir, "index.html"), func(w io.Writer) error {
		return g.renderer.CityPage(w, view, g.pageURL(p.slug))
	})
	if err != nil {
		return false, fmt.Errorf("write page %s: %w", p.slug, err)
	}
	return true, nil
}

func (g *Generator) pageURL(slug string) string {
	return g.baseURL + "/" + slug + "/"
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

func (g *Generator) writeSitemap(pages []page) error {
	set := urlSet{XMLNS: sitemapNS, URLs: make([]sitemapURL, 0, len(pages))}
	for _, p := range pages {
		if !p.written {
			continue
		}
		set.URLs = append(set.URLs, sitemapURL{Loc: g.pageURL(p.slug), ChangeFreq: "weekly", Priority: "0.8"})
	}

	err := writeFileAtomic(filepath.Join(g.dir, sitemapFile), func(w io.Writer) error {
		if _, err := io.WriteString(w, xml.Header); err != nil {
			return err
		}
		enc := xml.NewEncoder(w)
		enc.Indent("", "  ")
		if err := enc.Encode(set); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n")
		return err
	})
	if err != nil {
		return fmt.Errorf("write sitemap: %w", err)
	}
	return nil
}

// PageSlug is the directory name of a city page, "<city>-<state>".
func PageSlug(city, state string) string {
	slug := cache.Slug(city)
	if slug == "" {
		return ""
	}
	if s := cache.Slug(state); s != "" {
		slug += "-" + s
	}
	return slug
}

func writeFileAtomic(path string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
