package reports

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bahikhata-erp/bahikhata/internal/platform/httpx"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/trial-balance", h.TrialBalance)
	r.Get("/profit-and-loss", h.ProfitAndLoss)
	r.Get("/balance-sheet", h.BalanceSheet)
	r.Get("/gstr1", h.GSTR1)
	r.Get("/gstr3b", h.GSTR3B)
}

func (h *Handler) TrialBalance(w http.ResponseWriter, r *http.Request) {
	companyID, asOf, ok := queryAsOf(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "company_id and as_of are required")
		return
	}
	tb, err := h.service.TrialBalance(r.Context(), companyID, asOf)
	if err != nil {
		h.respondErr(w, "trial balance", err)
		return
	}
	httpx.JSON(w, http.StatusOK, tb)
}

func (h *Handler) ProfitAndLoss(w http.ResponseWriter, r *http.Request) {
	companyID, from, to, ok := queryPeriod(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "company_id, from and to are required")
		return
	}
	pl, err := h.service.ProfitAndLoss(r.Context(), companyID, from, to)
	if err != nil {
		h.respondErr(w, "profit and loss", err)
		return
	}
	httpx.JSON(w, http.StatusOK, pl)
}

func (h *Handler) BalanceSheet(w http.ResponseWriter, r *http.Request) {
	companyID, asOf, ok := queryAsOf(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "company_id and as_of are required")
		return
	}
	bs, err := h.service.BalanceSheet(r.Context(), companyID, asOf)
	if err != nil {
		h.respondErr(w, "balance sheet", err)
		return
	}
	httpx.JSON(w, http.StatusOK, bs)
}

func (h *Handler) GSTR1(w http.ResponseWriter, r *http.Request) {
	companyID, from, to, ok := queryPeriod(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "company_id, from and to are required")
		return
	}
	out, err := h.service.GSTR1(r.Context(), companyID, from, to)
	if err != nil {
		h.respondErr(w, "gstr1", err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) GSTR3B(w http.ResponseWriter, r *http.Request) {
	companyID, from, to, ok := queryPeriod(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "company_id, from and to are required")
		return
	}
	out, err := h.service.GSTR3B(r.Context(), companyID, from, to)
	if err != nil {
		h.respondErr(w, "gstr3b", err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) respondErr(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, ErrUnclassified) {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Unclassified Ledger", err.Error())
		return
	}
	h.logger.Error(op+" failed", slog.Any("error", err))
	httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
}

func queryAsOf(r *http.Request) (int64, time.Time, bool) {
	companyID, _ := strconv.ParseInt(r.URL.Query().Get("company_id"), 10, 64)
	asOf, err := time.Parse("2006-01-02", r.URL.Query().Get("as_of"))
	return companyID, asOf, companyID != 0 && err == nil
}

func queryPeriod(r *http.Request) (int64, time.Time, time.Time, bool) {
	companyID, _ := strconv.ParseInt(r.URL.Query().Get("company_id"), 10, 64)
	from, err1 := time.Parse("2006-01-02", r.URL.Query().Get("from"))
	to, err2 := time.Parse("2006-01-02", r.URL.Query().Get("to"))
	return companyID, from, to, companyID != 0 && err1 == nil && err2 == nil
}
