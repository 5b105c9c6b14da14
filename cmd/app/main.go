package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fulfillment/cmd"
	httpin "fulfillment/internal/adapters/in/http"
	"fulfillment/internal/adapters/out/kafka"
	"fulfillment/internal/adapters/out/postgres"
	"fulfillment/internal/pkg/logger"
	"fulfillment/internal/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const shutdownTimeout = 15 * time.Second

func main() {
	configs, err := cmd.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Env: configs.LogEnv, Level: configs.LogLevel})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err = run(ctx, configs, log); err != nil {
		log.Fatal().Err(err).Msg("service stopped")
	}
	log.Info().Msg("service stopped")
}

func run(ctx context.Context, configs cmd.Config, log *logger.Logger) error {
	gormDB, err := gorm.Open(gormpostgres.Open(configs.DSN()), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return fmt.Errorf("getting sql.DB: %w", err)
	}
	defer sqlDB.Close()

	if err = postgres.Migrate(gormDB); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}

	redisClient := goredis.NewClient(&goredis.Options{
		Addr:     configs.RedisAddr,
		Password: configs.RedisPassword,
		DB:       configs.RedisDB,
	})
	defer redisClient.Close()
	pingCtx, cancelPing := context.WithTimeout(ctx, 5*time.Second)
	if pingErr := redisClient.Ping(pingCtx).Err(); pingErr != nil {
		// Settings reads fall back to Postgres while Redis is away.
		log.Warn().Err(pingErr).Str("addr", configs.RedisAddr).Msg("redis unreachable")
	}
	cancelPing()

	publisher, err := kafka.NewPublisher(kafka.Config{
		Brokers:      configs.KafkaBrokers,
		WriteTimeout: configs.KafkaWriteTimeout,
	}, log.Component("kafka"))
	if err != nil {
		return fmt.Errorf("creating kafka publisher: %w", err)
	}
	defer func() {
		if closeErr := publisher.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("closing kafka publisher")
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewRecorder(registry)

	app := cmd.NewCompositionRoot(configs, gormDB, redisClient, publisher, recorder, log)

	jobManager := app.CreateJobManager()
	if err = jobManager.StartAll(); err != nil {
		return fmt.Errorf("starting jobs: %w", err)
	}
	defer jobManager.StopAll()

	return startWebServer(ctx, app, registry, configs.HTTPPort, log)
}

func startWebServer(
	ctx context.Context,
	app cmd.CompositionRoot,
	registry *prometheus.Registry,
	port string,
	log *logger.Logger,
) error {
	e := httpin.NewRouter(app.CreateHTTPServer(), registry, log.Component("http"))

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", port).Msg("http server listening")
		if err := e.Start(fmt.Sprintf("0.0.0.0:%s", port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
