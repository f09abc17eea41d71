package recon

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bahikhata-erp/bahikhata/internal/platform/httpx"
	"github.com/bahikhata-erp/bahikhata/internal/voucher"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/transactions", h.Transactions)
	r.Put("/entries/{entryID}/allocation-date", h.SetAllocationDate)
}

func (h *Handler) Transactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	companyID, _ := strconv.ParseInt(q.Get("company_id"), 10, 64)
	ledgerID, _ := strconv.ParseInt(q.Get("ledger_id"), 10, 64)
	from, err1 := time.Parse("2006-01-02", q.Get("from"))
	to, err2 := time.Parse("2006-01-02", q.Get("to"))
	if companyID == 0 || ledgerID == 0 || err1 != nil || err2 != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "company_id, ledger_id, from and to are required")
		return
	}
	view, err := h.service.Transactions(r.Context(), companyID, ledgerID, from, to)
	if err != nil {
		h.respondErr(w, "list transactions", err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) SetAllocationDate(w http.ResponseWriter, r *http.Request) {
	companyID, _ := strconv.ParseInt(r.URL.Query().Get("company_id"), 10, 64)
	entryID, _ := strconv.ParseInt(chi.URLParam(r, "entryID"), 10, 64)
	var body struct {
		Date *time.Time `json:"date"`
	}
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.service.SetAllocationDate(r.Context(), companyID, entryID, body.Date); err != nil {
		h.respondErr(w, "set allocation date", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"updated": true})
}

func (h *Handler) respondErr(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, voucher.ErrLedgerNotFound), errors.Is(err, voucher.ErrEntryNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	default:
		h.logger.Error(op+" failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
