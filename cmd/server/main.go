package main

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/hibiken/asynq"

	"github.com/lazorkit/lazordrop/config"
	"github.com/lazorkit/lazordrop/internal/airdrop"
	"github.com/lazorkit/lazordrop/internal/api"
	"github.com/lazorkit/lazordrop/internal/confirm"
	"github.com/lazorkit/lazordrop/internal/cooldown"
	"github.com/lazorkit/lazordrop/internal/graceful"
	"github.com/lazorkit/lazordrop/internal/health"
	"github.com/lazorkit/lazordrop/internal/ledger"
	"github.com/lazorkit/lazordrop/internal/logging"
	"github.com/lazorkit/lazordrop/internal/metrics"
	"github.com/lazorkit/lazordrop/internal/tasks"
)

func main() {
	ctx, stop := graceful.Context(context.Background())
	defer stop()

	cfg, err := config.GetConfigure()
	if err != nil {
		panic(fmt.Errorf("config.GetConfigure: %w", err))
	}

	logger, err := logging.NewLogger(cfg.Logging)
	if err != nil {
		panic(fmt.Errorf("logging.NewLogger: %w", err))
	}
	logger.Warn(airdrop.DevnetWarning)

	metrics.StartMetricsServer(ctx, cfg.Metrics, []string{
		metrics.ServiceAirdrop,
		metrics.ServiceHTTP,
	}, logger)

	cooldowns, err := cooldown.NewRedisStore(cfg.Redis)
	if err != nil {
		logger.Fatalf("Failed to connect to redis: %v", err)
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

	redisConnOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr(),
		Username: cfg.Redis.User,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	client := asynq.NewClient(redisConnOpt)
	defer func() {
		if err := client.Close(); err != nil {
			logger.Errorf("fail to close asynq client: %v", err)
		}
	}()
	inspector := asynq.NewInspector(redisConnOpt)
	defer func() {
		_ = inspector.Close()
	}()

	go func() {
		hs := health.New(cfg.Server.HealthPort, map[string]health.Check{
			"ledger": solana.Ping,
			"redis":  cooldowns.Ping,
		})
		if err := hs.Start(ctx, logger); err != nil {
			logger.Errorf("health server: %v", err)
		}
	}()

	server := api.NewServer(
		cfg.Server,
		svc,
		client,
		tasks.NewResultReader(inspector),
		metrics.NewHTTPMetrics(),
		logger,
	)
	if err := server.StartServer(ctx); err != nil {
		panic(err)
	}
}
