package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/firstlist/presentd/internal/adapter/queue"
	"github.com/firstlist/presentd/internal/adapter/repo"
	"github.com/firstlist/presentd/internal/infra"
	"github.com/firstlist/presentd/internal/service"
)

// Re-publishes work descriptors for jobs stuck in PENDING, recovering from a
// queue publish that failed after the job record was written. Runs once by
// default; -interval keeps it scanning.
func main() {
	interval := flag.Duration("interval", 0, "rescan interval; 0 runs a single pass")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("repair: db connection failed")
	}
	defer dbpool.Close()

	rdb, err := infra.NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("repair: redis connection failed")
	}
	defer rdb.Close()

	repairer := service.NewRepairer(
		repo.NewJobRepository(dbpool),
		queue.NewRedisProducer(rdb, cfg.QueueName),
		logger,
	)

	runOnce := func() {
		n, err := repairer.Republish(ctx, cfg.RepairStaleAfter, cfg.RepairBatchSize)
		if err != nil {
			logger.Error().Err(err).Msg("repair pass failed")
			return
		}
		logger.Info().Int("republished", n).Msg("repair pass done")
	}

	runOnce()
	if *interval <= 0 {
		return
	}

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("repair stopped")
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
