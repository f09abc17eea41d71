package finyears

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bahikhata-erp/bahikhata/internal/masterdata/shared"
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
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Post("/{id}/activate", h.Activate)
	r.Post("/{id}/close", h.Close)
	r.Post("/{id}/reopen", h.Reopen)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	companyID, _ := strconv.ParseInt(r.URL.Query().Get("company_id"), 10, 64)
	years, err := h.service.List(r.Context(), companyID)
	if err != nil {
		h.respondErr(w, "list financial years", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"financial_years": years})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var year FinancialYear
	if err := httpx.DecodeJSON(r, &year); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	created, err := h.service.Create(r.Context(), year)
	if err != nil {
		h.respondErr(w, "create financial year", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) Activate(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Activate)
}

func (h *Handler) Close(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Close)
}

func (h *Handler) Reopen(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Reopen)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, companyID, id int64) error) {
	companyID, _ := strconv.ParseInt(r.URL.Query().Get("company_id"), 10, 64)
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err := fn(r.Context(), companyID, id); err != nil {
		h.respondErr(w, "financial year transition", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) respondErr(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrValidation), errors.Is(err, shared.ErrRequiredField), errors.Is(err, shared.ErrInvalidID):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error(op+" failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
