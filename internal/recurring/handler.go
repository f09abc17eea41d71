package recurring

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bahikhata-erp/bahikhata/internal/invoice"
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
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/fire", h.Fire)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	companyID := queryID(r, "company_id")
	if companyID == 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "company_id is required")
		return
	}
	templates, err := h.service.List(r.Context(), companyID)
	if err != nil {
		h.respondErr(w, "list templates", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"templates": templates})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	companyID := queryID(r, "company_id")
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	t, err := h.service.Get(r.Context(), companyID, id)
	if err != nil {
		h.respondErr(w, "get template", err)
		return
	}
	httpx.JSON(w, http.StatusOK, t)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var t Template
	if err := httpx.DecodeJSON(r, &t); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.service.Create(r.Context(), &t); err != nil {
		h.respondErr(w, "create template", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, t)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	var t Template
	if err := httpx.DecodeJSON(r, &t); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	t.ID = id
	if err := h.service.Update(r.Context(), &t); err != nil {
		h.respondErr(w, "update template", err)
		return
	}
	httpx.JSON(w, http.StatusOK, t)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	companyID := queryID(r, "company_id")
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err := h.service.Delete(r.Context(), companyID, id); err != nil {
		h.respondErr(w, "delete template", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": true})
}

func (h *Handler) Fire(w http.ResponseWriter, r *http.Request) {
	companyID := queryID(r, "company_id")
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	inv, err := h.service.Fire(r.Context(), companyID, id)
	if err != nil {
		h.respondErr(w, "fire template", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

func (h *Handler) respondErr(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrTemplateNotFound), errors.Is(err, invoice.ErrInvoiceNotFound), errors.Is(err, voucher.ErrLedgerNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrInvalidCron), errors.Is(err, ErrTemplateIdle), errors.Is(err, invoice.ErrTaxLedgerNotMapped):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Unprocessable", err.Error())
	case errors.Is(err, voucher.ErrPeriodClosed):
		httpx.Problem(w, http.StatusConflict, "Period Closed", err.Error())
	default:
		h.logger.Error(op+" failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func queryID(r *http.Request, key string) int64 {
	id, _ := strconv.ParseInt(r.URL.Query().Get(key), 10, 64)
	return id
}
