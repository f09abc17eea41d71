package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/bahikhata-erp/bahikhata/internal/app"
	"github.com/bahikhata-erp/bahikhata/internal/invoice"
	"github.com/bahikhata-erp/bahikhata/internal/platform/cache"
	"github.com/bahikhata-erp/bahikhata/internal/platform/db"
	"github.com/bahikhata-erp/bahikhata/internal/recurring"
	"github.com/bahikhata-erp/bahikhata/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer redisClient.Close()

	invoiceService := invoice.NewService(invoice.NewRepository(pool), logger)
	recurringService := recurring.NewService(recurring.NewRepository(pool), invoiceService, logger)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskRecurringFireDue, Handler: jobs.HandleRecurringFireDue(recurringService, logger)},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.RecurringSweepCron, Task: jobs.NewRecurringFireDueTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("worker started", "sweep_cron", cfg.RecurringSweepCron)
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
