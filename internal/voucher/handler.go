package voucher

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/bahikhata-erp/bahikhata/internal/platform/db"
	"github.com/bahikhata-erp/bahikhata/internal/platform/httpx"
)

type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Post)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Replace)
	r.Delete("/{id}", h.Delete)
	r.Get("/balance", h.Balance)
	r.Get("/statement", h.Statement)
	r.Put("/entries/{entryID}/bank-allocation", h.SetBankAllocation)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	companyID := queryID(r, "company_id")
	from, to, ok := queryRange(r)
	if companyID == 0 || !ok {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "company_id, from and to are required")
		return
	}
	vouchers, err := h.service.List(r.Context(), companyID, from, to)
	if err != nil {
		h.respondErr(w, "list vouchers", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"vouchers": vouchers})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	companyID := queryID(r, "company_id")
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	v, err := h.service.Get(r.Context(), companyID, id)
	if err != nil {
		h.respondErr(w, "get voucher", err)
		return
	}
	httpx.JSON(w, http.StatusOK, v)
}

func (h *Handler) Post(w http.ResponseWriter, r *http.Request) {
	var input PostingInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	posted, err := h.service.Post(r.Context(), input)
	if err != nil {
		h.respondErr(w, "post voucher", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, posted)
}

func (h *Handler) Replace(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	var input PostingInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if err := h.service.Replace(r.Context(), id, input); err != nil {
		h.respondErr(w, "replace voucher", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"replaced": true})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	companyID := queryID(r, "company_id")
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err := h.service.Delete(r.Context(), companyID, id); err != nil {
		h.respondErr(w, "delete voucher", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": true})
}

func (h *Handler) Balance(w http.ResponseWriter, r *http.Request) {
	companyID := queryID(r, "company_id")
	ledgerID := queryID(r, "ledger_id")
	asOf, err := time.Parse("2006-01-02", r.URL.Query().Get("as_of"))
	if companyID == 0 || ledgerID == 0 || err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "company_id, ledger_id and as_of are required")
		return
	}
	balance, err := h.service.BalanceAsOf(r.Context(), companyID, ledgerID, asOf)
	if err != nil {
		h.respondErr(w, "balance", err)
		return
	}
	httpx.JSON(w, http.StatusOK, balance)
}

func (h *Handler) Statement(w http.ResponseWriter, r *http.Request) {
	companyID := queryID(r, "company_id")
	ledgerID := queryID(r, "ledger_id")
	from, to, ok := queryRange(r)
	if companyID == 0 || ledgerID == 0 || !ok {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "company_id, ledger_id, from and to are required")
		return
	}
	statement, err := h.service.Statement(r.Context(), companyID, ledgerID, from, to)
	if err != nil {
		h.respondErr(w, "statement", err)
		return
	}
	httpx.JSON(w, http.StatusOK, statement)
}

func (h *Handler) SetBankAllocation(w http.ResponseWriter, r *http.Request) {
	companyID := queryID(r, "company_id")
	entryID, _ := strconv.ParseInt(chi.URLParam(r, "entryID"), 10, 64)
	var body struct {
		Date *time.Time `json:"date"`
	}
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.service.SetBankAllocationDate(r.Context(), companyID, entryID, body.Date); err != nil {
		h.respondErr(w, "set bank allocation", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"updated": true})
}

func (h *Handler) respondErr(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrVoucherNotFound), errors.Is(err, ErrEntryNotFound), errors.Is(err, ErrLedgerNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrUnbalanced), errors.Is(err, ErrTooFewEntries):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Unbalanced", err.Error())
	case errors.Is(err, ErrPeriodClosed):
		httpx.Problem(w, http.StatusConflict, "Period Closed", err.Error())
	case errors.Is(err, ErrSourceAlreadyLinked), errors.Is(err, db.ErrConcurrentModification):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		h.logger.Error(op+" failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func queryID(r *http.Request, key string) int64 {
	id, _ := strconv.ParseInt(r.URL.Query().Get(key), 10, 64)
	return id
}

func queryRange(r *http.Request) (time.Time, time.Time, bool) {
	from, err1 := time.Parse("2006-01-02", r.URL.Query().Get("from"))
	to, err2 := time.Parse("2006-01-02", r.URL.Query().Get("to"))
	return from, to, err1 == nil && err2 == nil
}
