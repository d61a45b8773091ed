package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"prestes/internal/amqp"
	"prestes/internal/cache"
	"prestes/internal/cli"
	"prestes/internal/config"
	"prestes/internal/core"
	apphttp "prestes/internal/http"
	"prestes/internal/log"
	"prestes/internal/records"
	"prestes/internal/services"
	"prestes/internal/storage"
	"prestes/internal/worker"
)

func main() {
	cfg, logger := cli.LoadConfig(log.ComponentApp)
	cli.MustValidate(logger, cfg)

	boot, cancelBoot := context.WithTimeout(context.Background(), 30*time.Second)
	res := cli.InitBackend(boot, logger, cfg)
	cancelBoot()

	store := records.New(res.Blobs, records.WithLogger(logger.WithComponent(log.ComponentRecords)))
	reports := cache.NewLRU[core.YearReport](cfg.ReportCacheSize, cfg.ReportCacheTTL)
	binder := services.NewBinder(store, services.WithReportCache(reports))

	srv := apphttp.NewServer(":"+cfg.Port, store, binder, apphttp.Options{
		ProductName:        cfg.ProductName,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		ReadyCheck:         readyCheck(res.Blobs),
		Logger:             logger.WithComponent(log.ComponentHTTP),
	})

	var consumer *amqp.Client
	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		binder.Unmount()
		if consumer != nil {
			consumer.Close()
		}
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend close error", log.FieldError, err)
		}
	})

	binder.Mount(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting prestes server", "port", cfg.Port, log.FieldBackend, cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return cache.NewJanitor(reports).Run(gctx, time.Minute)
	})

	bridged := false
	if cfg.AMQPEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			// Local writes still work; other processes just won't hear about them.
			logger.Warn("AMQP unavailable, running without change bridge", log.FieldError, err)
		} else {
			bridged = true
			consumer = client
			bridge := amqp.NewBridge(client, store.Metrics())
			detach := bridge.Attach(store)
			g.Go(func() error {
				defer detach()
				return bridge.Run(gctx)
			})
			g.Go(func() error {
				reload := amqp.ReloadOnChange(store.Metrics(), func(ctx context.Context) error {
					binder.Reload(ctx)
					return nil
				})
				if err := client.ConsumeChanges(gctx, reload); err != nil && !errors.Is(err, context.Canceled) {
					return err
				}
				return nil
			})
		}
	}

	if mirrorsInProcess(cfg, bridged) {
		mirror, err := cli.NewSummaryWriter(gctx, logger, cfg)
		if err != nil {
			logger.Warn("Summary mirror disabled", log.FieldError, err)
		} else {
			w := worker.NewMirrorWorker(store, mirror, cfg.MirrorInterval)
			detach := w.Attach(store)
			g.Go(func() error {
				defer detach()
				return w.Run(gctx)
			})
		}
	}

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}

// mirrorsInProcess reports whether the server writes the summary sheet
// itself. Without a reachable broker no worker hears our changes.
func mirrorsInProcess(cfg *config.Config, bridged bool) bool {
	return cfg.MirrorEnabled() && !bridged
}

// readyCheck reports whether the durable layer answers reads.
func readyCheck(blobs storage.Blobs) func(context.Context) error {
	return func(ctx context.Context) error {
		_, err := blobs.Get(ctx, records.KeyConfig)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return err
		}
		return nil
	}
}
