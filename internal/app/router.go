package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bahikhata-erp/bahikhata/internal/inventory"
	"github.com/bahikhata-erp/bahikhata/internal/invoice"
	"github.com/bahikhata-erp/bahikhata/internal/masterdata/companies"
	"github.com/bahikhata-erp/bahikhata/internal/masterdata/finyears"
	"github.com/bahikhata-erp/bahikhata/internal/masterdata/groups"
	"github.com/bahikhata-erp/bahikhata/internal/masterdata/ledgers"
	"github.com/bahikhata-erp/bahikhata/internal/recon"
	"github.com/bahikhata-erp/bahikhata/internal/recurring"
	"github.com/bahikhata-erp/bahikhata/internal/reports"
	"github.com/bahikhata-erp/bahikhata/internal/voucher"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	Pool             *pgxpool.Pool
	CompanyHandler   *companies.Handler
	GroupHandler     *groups.Handler
	LedgerHandler    *ledgers.Handler
	FinYearHandler   *finyears.Handler
	VoucherHandler   *voucher.Handler
	InvoiceHandler   *invoice.Handler
	InventoryHandler *inventory.Handler
	ReportHandler    *reports.Handler
	ReconHandler     *recon.Handler
	RecurringHandler *recurring.Handler
}

// NewRouter constructs the chi router with the full API surface.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if params.Pool != nil {
			if err := params.Pool.Ping(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"degraded"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/companies", params.CompanyHandler.MountRoutes)
		r.Route("/groups", params.GroupHandler.MountRoutes)
		r.Route("/ledgers", params.LedgerHandler.MountRoutes)
		r.Route("/financial-years", params.FinYearHandler.MountRoutes)
		r.Route("/vouchers", params.VoucherHandler.MountRoutes)
		r.Route("/invoices", params.InvoiceHandler.MountRoutes)
		r.Route("/items", params.InventoryHandler.MountRoutes)
		r.Route("/reports", params.ReportHandler.MountRoutes)
		r.Route("/reconciliation", params.ReconHandler.MountRoutes)
		r.Route("/recurring-invoices", params.RecurringHandler.MountRoutes)
	})

	return r
}
