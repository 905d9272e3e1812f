package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/firstlist/presentd/internal/adapter/cache"
	"github.com/firstlist/presentd/internal/adapter/queue"
	"github.com/firstlist/presentd/internal/adapter/repo"
	"github.com/firstlist/presentd/internal/http/handlers"
	"github.com/firstlist/presentd/internal/http/httpapi"
	"github.com/firstlist/presentd/internal/infra"
	"github.com/firstlist/presentd/internal/infra/geoip"
	"github.com/firstlist/presentd/internal/middleware"
	"github.com/firstlist/presentd/internal/service"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()

	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	rdb, err := infra.NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}
	defer rdb.Close()

	jobs := repo.NewJobRepository(dbpool)
	producer := queue.NewRedisProducer(rdb, cfg.QueueName)
	reader := cache.NewRedisReader(rdb, cfg.StatusKeyPrefix, cfg.ResultKeyPrefix)
	svc := service.NewPresentations(jobs, producer, reader, logger)

	app := handlers.NewApp(svc, logger)
	app.PingDB = dbpool.Ping
	app.PingRedis = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }

	var lookup middleware.CountryLookup
	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	} else if resolver != nil {
		lookup = resolver.CountryCode
		defer resolver.Close()
	}

	router := httpapi.NewRouter(app, logger, cfg.AllowedOrigins, lookup)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
