package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/fjod/go_pos/internal/config"
	"github.com/fjod/go_pos/internal/logger"
	"github.com/fjod/go_pos/internal/printing"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// print-agent drains the print queue next to the printers and writes every
// job as an HTML page under PRINT_SPOOL_DIR.
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

	out := printing.NewDirSink(cfg.Print.SpoolDir)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var wg sync.WaitGroup
	switch cfg.Print.Sink {
	case config.PrintSinkKafka:
		consumer := printing.NewConsumer(cfg.Print.KafkaTopic, cfg.Print.ConsumerGroup, out, logg, cfg.Print.KafkaBrokers...)
		defer consumer.Close()

		wg.Add(1)
		go func() {
			defer wg.Done()
			consumer.Run(ctx)
		}()
		logg.Info("print agent consuming kafka",
			zap.String("topic", cfg.Print.KafkaTopic),
			zap.String("group", cfg.Print.ConsumerGroup))

	case config.PrintSinkRedis:
		client := redis.NewClient(&redis.Options{
			Addr: cfg.Print.RedisAddr,
			DB:   cfg.Print.RedisDB,
		})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			logg.Fatal("redis connection failed", zap.Error(err))
		}

		spool := printing.NewRedisSpool(client)
		for _, printer := range []string{cfg.Print.Printer, cfg.Print.LabelPrinter} {
			wg.Add(1)
			go func(printer string) {
				defer wg.Done()
				spool.Forward(ctx, printer, out, 5*time.Second, logg)
			}(printer)
		}
		logg.Info("print agent draining redis spool",
			zap.String("addr", cfg.Print.RedisAddr),
			zap.Strings("printers", []string{cfg.Print.Printer, cfg.Print.LabelPrinter}))

	default:
		logg.Fatal("print agent needs PRINT_SINK=kafka or PRINT_SINK=redis", zap.String("sink", string(cfg.Print.Sink)))
	}

	<-ctx.Done()
	logg.Info("shutting down print agent")
	wg.Wait()
	logg.Info("print agent stopped")
}
