package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	pkgkafka "github.com/novabank/credit-engine/pkg/kafka"
	"github.com/novabank/credit-engine/pkg/observability"
	pkgpostgres "github.com/novabank/credit-engine/pkg/postgres"

	"github.com/novabank/credit-engine/internal/application/usecase"
	"github.com/novabank/credit-engine/internal/domain/port"
	"github.com/novabank/credit-engine/internal/domain/service"
	"github.com/novabank/credit-engine/internal/infrastructure/cache"
	"github.com/novabank/credit-engine/internal/infrastructure/config"
	"github.com/novabank/credit-engine/internal/infrastructure/messaging"
	pgRepo "github.com/novabank/credit-engine/internal/infrastructure/persistence/postgres"
	grpcPresentation "github.com/novabank/credit-engine/internal/presentation/grpc"
	"github.com/novabank/credit-engine/internal/presentation/rest"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load configuration.
	cfg := config.Load()
	cfg.Validate()

	// Initialize structured logger via shared observability package.
	logger := observability.InitLogger(observability.LogConfig{
		Level:  cfg.LogLevel,
		Format: "json",
	})
	slog.SetDefault(logger)

	logger.Info("starting credit-engine",
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
	)

	// Metrics: OTel meter provider plus a Prometheus scrape handler.
	meterProvider, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{
		ServiceName: cfg.ServiceName,
	})
	if err != nil {
		logger.Error("failed to initialize metrics", "error", err)
		os.Exit(1)
	}
	defer func() { _ = meterProvider.Shutdown(context.Background()) }() //nolint:errcheck // best-effort meter shutdown
	decisionMetrics := observability.NewDecisionMetrics()

	// Database connection.
	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	defer dbCancel()

	pgCfg := pkgpostgres.Config{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Name,
		SSLMode:  cfg.DB.SSLMode,
	}
	pool, err := pkgpostgres.NewPool(dbCtx, pgCfg)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("connected to database")

	// Run database migrations.
	if migErr := pkgpostgres.RunMigrations(pgCfg.DSN(), "file://migrations"); migErr != nil {
		logger.Warn("migration warning", "error", migErr)
	}

	// Wire infrastructure adapters.
	customerRepo := pgRepo.NewCustomerRepo(pool)
	loanRepo := pgRepo.NewLoanRepo(pool)
	outboxRepo := pgRepo.NewOutboxRepo(pool)
	uow := pgRepo.NewUnitOfWork(pool)

	kafkaProducer := pkgkafka.NewProducer(pkgkafka.Config{
		Brokers: cfg.Kafka.Brokers,
	})
	defer kafkaProducer.Close()

	// Decision events are written to the outbox inside the booking
	// transaction; the relay delivers them to Kafka.
	relay := messaging.NewOutboxRelay(outboxRepo, kafkaProducer, cfg.Kafka.Topic, cfg.Kafka.RelayInterval, logger)
	go relay.Run(ctx)

	// Decision cache is optional: a dead Redis degrades to uncached evaluation.
	var decisionCache port.DecisionCache
	redisClient, err := cache.OpenRedis(cfg.Redis.Addr, cfg.Redis.DB)
	if err != nil {
		logger.Warn("redis unavailable, decisions will not be cached", "error", err)
	} else {
		defer redisClient.Close()
		decisionCache = cache.NewRedisDecisionCache(redisClient)
	}

	engine := service.NewEligibilityEngine()

	// Wire use cases.
	checkEligibilityUC := usecase.NewCheckEligibilityUseCase(
		customerRepo, loanRepo, decisionCache, cfg.Redis.DecisionTTL, engine, logger)
	createLoanUC := usecase.NewCreateLoanUseCase(uow, decisionCache, engine, logger)
	getLoanUC := usecase.NewGetLoanUseCase(loanRepo)
	listLoansUC := usecase.NewListCustomerLoansUseCase(loanRepo)

	// gRPC server.
	handler := grpcPresentation.NewCreditHandler(
		checkEligibilityUC, createLoanUC, getLoanUC, listLoansUC,
		decisionMetrics, logger)
	grpcServer := grpcPresentation.NewServer(handler, logger)

	// HTTP server (health checks and metrics).
	mux := http.NewServeMux()
	healthHandler := rest.NewHealthHandler(logger, func(ctx context.Context) error {
		return pkgpostgres.HealthCheck(ctx, pool)
	})
	healthHandler.RegisterRoutes(mux)
	mux.Handle("GET /metrics", metricsHandler)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start servers.
	errCh := make(chan error, 2)

	go func() {
		if err := grpcServer.Serve(cfg.GRPCAddr()); err != nil {
			errCh <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	go func() {
		logger.Info("HTTP server starting", "port", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Wait for shutdown signal.
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("server error", "error", err)
	}

	// Graceful shutdown.
	grpcServer.GracefulStop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("credit-engine stopped")
}
