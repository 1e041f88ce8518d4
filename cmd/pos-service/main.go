package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fjod/go_pos/internal/catalog"
	"github.com/fjod/go_pos/internal/config"
	"github.com/fjod/go_pos/internal/document"
	posgrpc "github.com/fjod/go_pos/internal/grpc"
	"github.com/fjod/go_pos/internal/logger"
	"github.com/fjod/go_pos/internal/metrics"
	"github.com/fjod/go_pos/internal/printing"
	"github.com/fjod/go_pos/internal/service"
	"github.com/fjod/go_pos/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logg, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logg.Sync() }()
	zap.ReplaceGlobals(logg)

	ctx := context.Background()

	store, err := openStore(ctx, cfg.Catalog, logg)
	if err != nil {
		logg.Fatal("failed to open catalog store", zap.Error(err))
	}
	defer store.Close()

	rawSink, closeSink, err := openSink(ctx, cfg.Print, logg)
	if err != nil {
		logg.Fatal("failed to open print sink", zap.Error(err))
	}
	defer closeSink()

	sink := printing.NewBreakerSink(
		printing.WithTimeout(rawSink, cfg.Print.Timeout),
		printing.BreakerSettings{
			Name:        "print-" + string(cfg.Print.Sink),
			MaxFailures: cfg.Print.BreakerMaxFailures,
			OpenTimeout: cfg.Print.BreakerOpenTimeout,
		},
		logg,
	)

	m := metrics.New(prometheus.DefaultRegisterer)
	renderer := document.NewRenderer(document.WithCurrency(cfg.Print.Currency))

	sales := service.NewSaleService(
		catalog.NewLoader(store, logg),
		renderer,
		sink,
		service.SaleConfig{
			Session: session.Options{
				ScanCooldown: cfg.Sale.ScanCooldown,
				Printer:      cfg.Print.Printer,
			},
			IdleTTL: cfg.Sale.IdleTTL,
		},
		m,
		logg,
	)
	products := service.NewCatalogService(store, renderer, sink, cfg.Print.LabelPrinter, m, logg)

	janitor, err := service.StartJanitor(sales, cfg.Sale.JanitorSchedule, logg)
	if err != nil {
		logg.Fatal("failed to start session janitor", zap.Error(err))
	}

	lis, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.GRPCPort))
	if err != nil {
		logg.Fatal("failed to listen", zap.Error(err))
	}

	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	posgrpc.RegisterSaleServiceServer(grpcServer, posgrpc.NewSaleServer(sales))
	posgrpc.RegisterCatalogServiceServer(grpcServer, posgrpc.NewCatalogServer(products))

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	metricsSrv := newMetricsServer(cfg.MetricsPort)

	go func() {
		logg.Info("pos service listening", zap.String("port", cfg.GRPCPort))
		if err := grpcServer.Serve(lis); err != nil {
			logg.Fatal("failed to serve", zap.Error(err))
		}
	}()
	go func() {
		logg.Info("metrics listening", zap.String("port", cfg.MetricsPort))
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error("metrics server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logg.Info("shutting down pos service")
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	grpcServer.GracefulStop()
	janitor.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logg.Error("metrics server forced to shutdown", zap.Error(err))
	}
	logg.Info("pos service stopped")
}

func openStore(ctx context.Context, cfg config.CatalogConfig, logg *zap.Logger) (catalog.Store, error) {
	switch cfg.Backend {
	case config.CatalogMemory:
		if cfg.SeedFile == "" {
			return catalog.NewMemoryStore(), nil
		}
		store, err := catalog.LoadSeedFile(cfg.SeedFile)
		if err != nil {
			return nil, err
		}
		logg.Info("catalog seeded from file", zap.String("path", cfg.SeedFile))
		return store, nil

	case config.CatalogSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		store, err := catalog.NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := store.RunMigrations(); err != nil {
			store.Close()
			return nil, err
		}
		logg.Info("catalog opened", zap.String("backend", "sqlite"), zap.String("path", cfg.SQLitePath))
		return store, nil

	case config.CatalogPostgres:
		store, err := catalog.NewPostgresStore(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if err := store.RunMigrations(); err != nil {
			store.Close()
			return nil, err
		}
		logg.Info("catalog opened", zap.String("backend", "postgres"))
		return store, nil

	case config.CatalogMongo:
		db, err := catalog.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		store := catalog.NewMongoStore(db)
		if err := store.CreateIndexes(ctx); err != nil {
			store.Close()
			return nil, err
		}
		logg.Info("catalog opened", zap.String("backend", "mongo"), zap.String("database", cfg.MongoDatabase))
		return store, nil
	}
	return nil, fmt.Errorf("unknown catalog backend %q", cfg.Backend)
}

func openSink(ctx context.Context, cfg config.PrintConfig, logg *zap.Logger) (printing.Sink, func(), error) {
	switch cfg.Sink {
	case config.PrintSinkLog:
		return printing.NewLogSink(logg), func() {}, nil

	case config.PrintSinkKafka:
		sink := printing.NewKafkaSink(cfg.KafkaTopic, cfg.KafkaBrokers...)
		logg.Info("printing to kafka", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
		return sink, func() {
			if err := sink.Close(); err != nil {
				logg.Error("failed to close kafka writer", zap.Error(err))
			}
		}, nil

	case config.PrintSinkRedis:
		client := redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
			DB:   cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("redis connection failed: %w", err)
		}
		logg.Info("printing to redis spool", zap.String("addr", cfg.RedisAddr))
		return printing.NewRedisSpool(client), func() { client.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown print sink %q", cfg.Sink)
}

func newMetricsServer(port string) *http.Server {
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
