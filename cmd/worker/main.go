package main

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/hibiken/asynq"

	"github.com/lazorkit/lazordrop/config"
	"github.com/lazorkit/lazordrop/internal/airdrop"
	"github.com/lazorkit/lazordrop/internal/confirm"
	"github.com/lazorkit/lazordrop/internal/cooldown"
	"github.com/lazorkit/lazordrop/internal/graceful"
	"github.com/lazorkit/lazordrop/internal/health"
	"github.com/lazorkit/lazordrop/internal/ledger"
	"github.com/lazorkit/lazordrop/internal/logging"
	"github.com/lazorkit/lazordrop/internal/metrics"
	"github.com/lazorkit/lazordrop/internal/tasks"
	"github.com/lazorkit/lazordrop/internal/worker"
)

func main() {
	ctx, stop := graceful.Context(context.Background())
	defer stop()

	cfg, err := config.GetConfigure()
	if err != nil {
		panic(err)
	}

	logger, err := logging.NewLogger(cfg.Logging)
	if err != nil {
		panic(err)
	}

	metrics.StartMetricsServer(ctx, cfg.Metrics, []string{
		metrics.ServiceAirdrop,
		metrics.ServiceWorker,
	}, logger)

	cooldowns, err := cooldown.NewRedisStore(cfg.Redis)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize cooldown store: %v", err))
	}
	defer func() {
		_ = cooldowns.Close()
	}()

	solana := ledger.NewSolana(ledger.SolanaConfig{
		URL:        cfg.Ledger.RPCURL,
		Commitment: rpc.CommitmentType(cfg.Ledger.Commitment),
		RetryMax:   cfg.Ledger.RetryMax,
		RetryWait:  cfg.Ledger.RetryWait,
	}, logger)

	airdropMetrics := metrics.NewAirdropMetrics()
	poller := confirm.NewPoller(logger, solana, cfg.Poller, airdropMetrics)
	svc := airdrop.NewService(logger, solana, poller, cooldowns, airdropMetrics, cfg.Airdrop)

	redisOptions := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr(),
		Username: cfg.Redis.User,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	srv := asynq.NewServer(
		redisOptions,
		asynq.Config{
			Logger:      logger,
			Concurrency: cfg.Worker.Concurrency,
			Queues: map[string]int{
				tasks.QUEUE_NAME: 10,
			},
		},
	)

	go func() {
		hs := health.New(cfg.Worker.HealthPort, map[string]health.Check{
			"ledger": solana.Ping,
			"redis":  cooldowns.Ping,
		})
		if err := hs.Start(ctx, logger); err != nil {
			logger.Errorf("health server: %v", err)
		}
	}()

	handler := worker.NewAirdropHandler(logger, svc, cfg.Worker.TaskTimeout)
	mux := asynq.NewServeMux()
	mux.Handle(tasks.TypeAirdropRequest, metrics.WithWorkerMetrics(
		handler.HandleAirdropRequest,
		tasks.TypeAirdropRequest,
		metrics.NewWorkerMetrics(),
	))

	if err := srv.Start(mux); err != nil {
		panic(fmt.Errorf("could not run server: %w", err))
	}
	<-ctx.Done()
	logger.Info("got exit signal, shutting down worker")
	srv.Shutdown()
}
