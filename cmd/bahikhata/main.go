package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bahikhata-erp/bahikhata/internal/app"
	"github.com/bahikhata-erp/bahikhata/internal/inventory"
	"github.com/bahikhata-erp/bahikhata/internal/invoice"
	"github.com/bahikhata-erp/bahikhata/internal/masterdata/companies"
	"github.com/bahikhata-erp/bahikhata/internal/masterdata/finyears"
	"github.com/bahikhata-erp/bahikhata/internal/masterdata/groups"
	"github.com/bahikhata-erp/bahikhata/internal/masterdata/ledgers"
	"github.com/bahikhata-erp/bahikhata/internal/platform/db"
	"github.com/bahikhata-erp/bahikhata/internal/recon"
	"github.com/bahikhata-erp/bahikhata/internal/recurring"
	"github.com/bahikhata-erp/bahikhata/internal/reports"
	"github.com/bahikhata-erp/bahikhata/internal/voucher"
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

	if cfg.AutoMigrate {
		if err := db.Migrate(ctx, pool); err != nil {
			logger.Error("run migrations", slog.Any("error", err))
			os.Exit(1)
		}
	}

	companyService := companies.NewService(companies.NewRepository(pool))
	groupService := groups.NewService(groups.NewRepository(pool))
	ledgerService := ledgers.NewService(ledgers.NewRepository(pool))
	finYearService := finyears.NewService(finyears.NewRepository(pool))
	voucherService := voucher.NewService(voucher.NewRepository(pool))
	inventoryService := inventory.NewService(inventory.NewRepository(pool))
	invoiceService := invoice.NewService(invoice.NewRepository(pool), logger)
	reportService := reports.NewService(reports.NewRepository(pool), logger,
		decimal.NewFromFloat(cfg.GSTB2CLargeLimit))
	reconService := recon.NewService(voucherService, logger)
	recurringService := recurring.NewService(recurring.NewRepository(pool), invoiceService, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		Pool:             pool,
		CompanyHandler:   companies.NewHandler(logger, companyService),
		GroupHandler:     groups.NewHandler(logger, groupService),
		LedgerHandler:    ledgers.NewHandler(logger, ledgerService),
		FinYearHandler:   finyears.NewHandler(logger, finYearService),
		VoucherHandler:   voucher.NewHandler(logger, voucherService),
		InvoiceHandler:   invoice.NewHandler(logger, invoiceService),
		InventoryHandler: inventory.NewHandler(logger, inventoryService),
		ReportHandler:    reports.NewHandler(logger, reportService),
		ReconHandler:     recon.NewHandler(logger, reconService),
		RecurringHandler: recurring.NewHandler(logger, recurringService),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.AppAddr, "env", cfg.AppEnv)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", slog.Any("error", err))
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}
}
