package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/mvrcosta/backend-loja/internal/config"
	"github.com/mvrcosta/backend-loja/internal/events"
	"github.com/mvrcosta/backend-loja/internal/obs"
	"github.com/mvrcosta/backend-loja/internal/payment"
	"github.com/mvrcosta/backend-loja/internal/tasks"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("component", "worker").Logger()

	obs.MustRegisterDomainMetrics(envOrDefault("OBS_METRICS_NAMESPACE", "loja"), nil)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	redisClient := mustInitRedis(ctx, redisOpts, logger)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()

	handler := &tasks.PixExpiryHandler{
		Charges: payment.ChargeStore{Client: redisClient, TTL: cfg.ChargeTTL},
		Events: &events.Bus{
			Store:     events.RedisStreamStore{Client: redisClient},
			Notifiers: []events.Notifier{events.LogNotifier{Logger: logger}},
		},
		Logger: logger,
	}

	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: redisOpts.Addr, Password: redisOpts.Password, DB: redisOpts.DB},
		asynq.Config{
			Concurrency: envInt("WORKER_CONCURRENCY", 5),
			Logger:      asynqLogger{logger},
		},
	)

	go func() {
		<-ctx.Done()
		srv.Shutdown()
	}()

	logger.Info().Msg("worker starting")
	if err := srv.Run(tasks.NewMux(handler)); err != nil {
		logger.Fatal().Err(err).Msg("worker stopped with error")
	}
	logger.Info().Msg("worker shutdown complete")
}

func mustInitRedis(ctx context.Context, opts *redis.Options, logger zerolog.Logger) *redis.Client {
	client := redis.NewClient(opts)
	if err := redisotel.InstrumentTracing(client); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}
	return client
}

// asynqLogger adapts zerolog to asynq's logging interface.
type asynqLogger struct {
	l zerolog.Logger
}

func (a asynqLogger) Debug(args ...any) { a.l.Debug().Msgf("%v", args) }
func (a asynqLogger) Info(args ...any)  { a.l.Info().Msgf("%v", args) }
func (a asynqLogger) Warn(args ...any)  { a.l.Warn().Msgf("%v", args) }
func (a asynqLogger) Error(args ...any) { a.l.Error().Msgf("%v", args) }
func (a asynqLogger) Fatal(args ...any) { a.l.Fatal().Msgf("%v", args) }

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return parsed
		}
	}
	return fallback
}
