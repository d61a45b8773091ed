package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"prestes/internal/amqp"
	"prestes/internal/cli"
	"prestes/internal/log"
	"prestes/internal/records"
	"prestes/internal/worker"
)

func main() {
	cfg, logger := cli.LoadConfig(log.ComponentWorker)
	cli.MustValidate(logger, cfg)
	logger.Info("Starting prestes-worker")

	if cfg.DataBackend == "memory" {
		// A memory backend is private to its process; nothing written
		// elsewhere would ever reach this worker.
		logger.Warn("Memory backend selected, the worker only sees its own empty store")
	}

	boot, cancelBoot := context.WithTimeout(context.Background(), 30*time.Second)
	res := cli.InitBackend(boot, logger, cfg)
	cancelBoot()
	// The Sheets client keeps its context for token refreshes.
	writer, err := cli.NewSummaryWriter(context.Background(), logger, cfg)
	if err != nil {
		logger.Error("Failed to initialize summary writer", log.FieldError, err)
		os.Exit(1)
	}

	store := records.New(res.Blobs, records.WithLogger(logger.WithComponent(log.ComponentRecords)))
	mirror := worker.NewMirrorWorker(store, writer, cfg.MirrorInterval)

	var client *amqp.Client
	if cfg.AMQPEnabled() {
		client, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
	} else {
		logger.Info("AMQP disabled, mirroring on the resync interval only", "interval", cfg.MirrorInterval)
	}

	// Exposes the store counters, including summary_mirrors_total.
	metricsSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           store.Metrics().Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, done := cli.GracefulShutdown(logger, 15*time.Second, func(ctx context.Context) {
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logger.Error("Metrics server shutdown error", log.FieldError, err)
		}
		if client != nil {
			client.Close()
		}
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend close error", log.FieldError, err)
		}
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return mirror.Run(gctx)
	})
	g.Go(func() error {
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if client != nil {
		g.Go(func() error {
			err := client.ConsumeChanges(gctx, mirror.HandleChange)
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("Worker error", log.FieldError, err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}
