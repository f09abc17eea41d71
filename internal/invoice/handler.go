package invoice

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
	"github.com/bahikhata-erp/bahikhata/internal/voucher"
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
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Get("/{id}/payments", h.ListPayments)
	r.Post("/{id}/payments", h.ApplyPayment)
	r.Delete("/{id}/payments/{paymentID}", h.ReversePayment)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	companyID := queryID(r, "company_id")
	if companyID == 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "company_id is required")
		return
	}
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	f := ListFilters{
		CompanyID:     companyID,
		Type:          Type(q.Get("type")),
		PaymentStatus: PaymentStatus(q.Get("payment_status")),
		PartyLedgerID: queryID(r, "party_ledger_id"),
		Page:          page,
		Limit:         limit,
	}
	if from, err := time.Parse("2006-01-02", q.Get("from")); err == nil {
		f.From = &from
	}
	if to, err := time.Parse("2006-01-02", q.Get("to")); err == nil {
		f.To = &to
	}
	invoices, total, err := h.service.List(r.Context(), f)
	if err != nil {
		h.respondErr(w, "list invoices", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"invoices": invoices, "total": total})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	companyID := queryID(r, "company_id")
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	inv, err := h.service.Get(r.Context(), companyID, id)
	if err != nil {
		h.respondErr(w, "get invoice", err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var input CreateInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	inv, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.respondErr(w, "create invoice", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	var input CreateInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	inv, err := h.service.Update(r.Context(), input.CompanyID, id, input)
	if err != nil {
		h.respondErr(w, "update invoice", err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	companyID := queryID(r, "company_id")
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	cascade := r.URL.Query().Get("cascade") == "true"
	if err := h.service.Delete(r.Context(), companyID, id, cascade); err != nil {
		h.respondErr(w, "delete invoice", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": true})
}

func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	companyID := queryID(r, "company_id")
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	payments, err := h.service.ListPayments(r.Context(), companyID, id)
	if err != nil {
		h.respondErr(w, "list payments", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"payments": payments})
}

func (h *Handler) ApplyPayment(w http.ResponseWriter, r *http.Request) {
	companyID := queryID(r, "company_id")
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	var input PaymentInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	p, err := h.service.ApplyPayment(r.Context(), companyID, id, input)
	if err != nil {
		h.respondErr(w, "apply payment", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

func (h *Handler) ReversePayment(w http.ResponseWriter, r *http.Request) {
	companyID := queryID(r, "company_id")
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	paymentID, _ := strconv.ParseInt(chi.URLParam(r, "paymentID"), 10, 64)
	if err := h.service.ReversePayment(r.Context(), companyID, id, paymentID); err != nil {
		h.respondErr(w, "reverse payment", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"reversed": true})
}

func (h *Handler) respondErr(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrInvoiceNotFound), errors.Is(err, ErrPaymentNotFound), errors.Is(err, voucher.ErrLedgerNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrInvalidType), errors.Is(err, ErrNegativeAmount):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
	case errors.Is(err, ErrOverPayment), errors.Is(err, ErrTaxLedgerNotMapped):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Unprocessable", err.Error())
	case errors.Is(err, ErrPaymentsExist), errors.Is(err, voucher.ErrPeriodClosed), errors.Is(err, db.ErrConcurrentModification):
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
