package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/octobees/rolloff-rates/internal/auth"
	"github.com/octobees/rolloff-rates/internal/cache"
	"github.com/octobees/rolloff-rates/internal/config"
	"github.com/octobees/rolloff-rates/internal/database"
	"github.com/octobees/rolloff-rates/internal/handler"
	middlewarepkg "github.com/octobees/rolloff-rates/internal/middleware"
	"github.com/octobees/rolloff-rates/internal/ratesapi"
	"github.com/octobees/rolloff-rates/internal/render"
	"github.com/octobees/rolloff-rates/internal/repository"
	"github.com/octobees/rolloff-rates/internal/router"
	"github.com/octobees/rolloff-rates/internal/scheduler"
	"github.com/octobees/rolloff-rates/internal/service"
	"github.com/octobees/rolloff-rates/internal/staticgen"
)

const (
	staticInterval     = 24 * time.Hour
	cachePurgeInterval = time.Hour
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var (
		store   cache.Store
		pgCache *repository.PGXCacheStore
	)
	switch cfg.CacheBackend {
	case config.CacheBackendPostgres:
		pgCache = repository.NewPGXCacheStore(pool)
		store = pgCache
	default:
		store = cache.NewMemoryStore()
	}

	var httpClient *http.Client
	if !cfg.RatesAPIIDToken {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	fetcher, err := ratesapi.NewHTTPFetcher(httpClient, cfg.RatesAPIURL)
	if err != nil {
		log.Fatalf("failed to configure rates api: %v", err)
	}
	rates := ratesapi.NewClient(fetcher, store, cfg.CacheTTL)

	renderOpts, err := render.LoadOptions(cfg.RenderConfig)
	if err != nil {
		log.Fatalf("failed to load render config: %v", err)
	}
	renderer, err := render.New(renderOpts)
	if err != nil {
		log.Fatalf("failed to build renderer: %v", err)
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)

	usersRepo := repository.NewPGXUsersRepository(pool)
	leadsRepo := repository.NewPGXLeadsRepository(pool)

	var notifier service.Notifier
	if cfg.SMTP.Addr != "" {
		smtpNotifier, err := service.NewSMTPNotifier(cfg.SMTP.Addr, cfg.SMTP.User, cfg.SMTP.Password, cfg.SMTP.From, cfg.SMTP.To)
		if err != nil {
			log.Fatalf("failed to configure smtp notifier: %v", err)
		}
		notifier = smtpNotifier
	}

	cityService := service.NewCityService(rates)
	authService := service.NewAuthService(usersRepo, jwtManager)
	leadService := service.NewLeadService(leadsRepo, notifier, cfg.PhoneRegion)

	var (
		generator *staticgen.Generator
		static    service.StaticGenerator
	)
	if cfg.StaticDir != "" {
		generator, err = staticgen.New(cityService, renderer, staticgen.Options{Dir: cfg.StaticDir, BaseURL: cfg.StaticBaseURL})
		if err != nil {
			log.Fatalf("failed to configure static mirror: %v", err)
		}
		static = generator
	}
	adminService := service.NewAdminService(rates, static)

	created, err := authService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		log.Fatalf("failed to bootstrap admin: %v", err)
	}
	if created {
		log.Printf("admin account created email=%s", cfg.AdminEmail)
	}

	jobsCtx, stopJobs := context.WithCancel(context.Background())
	defer stopJobs()
	if cfg.StaticCron && generator != nil {
		go scheduler.Every(jobsCtx, staticInterval, "static-mirror", func(ctx context.Context) error {
			_, err := generator.GenerateAll(ctx)
			return err
		})
	}
	if pgCache != nil {
		go scheduler.Every(jobsCtx, cachePurgeInterval, "cache-purge", func(ctx context.Context) error {
			n, err := pgCache.PurgeExpired(ctx)
			if err == nil && n > 0 {
				log.Printf("expired cache entries purged count=%d", n)
			}
			return err
		})
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer

	e.Use(middlewarepkg.RequestID())
	e.Use(middlewarepkg.Logging())
	e.Use(echoMiddleware.Recover())

	router.Register(e, cfg, jwtManager, router.Handlers{
		Auth:    handler.NewAuthHandler(authService),
		City:    handler.NewCityHandler(cityService, renderer),
		Catalog: handler.NewCatalogHandler(cityService),
		Leads:   handler.NewLeadHandler(leadService),
		Admin:   handler.NewAdminHandler(adminService, leadService),
	})

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("listening port=%s rates_api=%s cache=%s", cfg.Port, cfg.RatesAPIURL, cfg.CacheBackend)
		serverErr <- e.Start(":" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
		return
	}

	stopJobs()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
