// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	scs "github.com/alexedwards/scs/v2"
	"github.com/rs/zerolog"

	"github.com/sabbir-tanvir/storefront/backend"
	"github.com/sabbir-tanvir/storefront/cache"
	"github.com/sabbir-tanvir/storefront/feeds"
	"github.com/sabbir-tanvir/storefront/internal/config"
	"github.com/sabbir-tanvir/storefront/internal/http/routes"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}
	logger = logger.Level(cfg.LogLevel())

	// ETag response store
	store, err := cache.NewMemoryCache(cfg.Cache.ETagCacheBytes)
	if err != nil {
		logger.Fatal().Err(err).Msg("create response cache")
	}
	defer store.Close()

	client, err := backend.New(
		backend.WithBaseURL(cfg.Backend.URL),
		backend.WithHTTPClient(&http.Client{Timeout: cfg.Backend.Timeout}),
		backend.WithUserAgent(cfg.Backend.UserAgent),
		backend.WithCache(cache.NewBackendAdapter(store), cfg.Backend.ETagTTL),
		backend.WithLogger(logger.With().Str("component", "backend").Logger()),
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("create backend client")
	}

	// Shared feeds own their TTL, so they only revalidate against the store
	feedClient := client.Revalidating()
	reg := feeds.NewRegistry()
	reg.Register(feeds.FromCache(routes.FeedProducts, cache.NewShared(
		feedClient.ListProducts,
		cache.WithName(routes.FeedProducts),
		cache.WithTTL(cfg.Cache.ProductsTTL),
		cache.WithLogger(logger),
	)))
	reg.Register(feeds.FromCache(routes.FeedShops, cache.NewShared(
		func(ctx context.Context) ([]backend.Shop, error) {
			page, err := feedClient.ListShops(ctx, 1)
			return page.Results, err
		},
		cache.WithName(routes.FeedShops),
		cache.WithTTL(cfg.Cache.ShopsTTL),
		cache.WithLogger(logger),
	)))

	// Sessions
	sess := scs.New()
	sess.Lifetime = cfg.Session.Lifetime
	sess.Cookie.HttpOnly = true
	sess.Cookie.SameSite = http.SameSiteLaxMode
	sess.Cookie.Secure = cfg.Session.CookieSecure

	s := routes.New(routes.ServerOptions{
		Sess:    sess,
		Backend: client,
		Feeds:   reg,
		Logger:  logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info().Str("addr", srv.Addr).Str("backend", client.BaseURL()).Msg("starting storefront")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("listen")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown")
	}
}
