package ledgers

import (
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
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filters := shared.ListFilters{
		Page:   1,
		Limit:  100,
		Search: r.URL.Query().Get("search"),
	}
	if page, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && page > 0 {
		filters.Page = page
	}
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit > 0 {
		filters.Limit = limit
	}
	if companyID, err := strconv.ParseInt(r.URL.Query().Get("company_id"), 10, 64); err == nil && companyID > 0 {
		filters.CompanyID = &companyID
	}
	if groupID, err := strconv.ParseInt(r.URL.Query().Get("group_id"), 10, 64); err == nil && groupID > 0 {
		filters.GroupID = &groupID
	}

	out, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list ledgers failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"ledgers": out, "total": total})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	companyID, _ := strconv.ParseInt(r.URL.Query().Get("company_id"), 10, 64)
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	ledger, err := h.service.Get(r.Context(), companyID, id)
	if err != nil {
		h.respondErr(w, "get ledger", err)
		return
	}
	httpx.JSON(w, http.StatusOK, ledger)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var ledger Ledger
	if err := httpx.DecodeJSON(r, &ledger); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	created, err := h.service.Create(r.Context(), ledger)
	if err != nil {
		h.respondErr(w, "create ledger", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	var ledger Ledger
	if err := httpx.DecodeJSON(r, &ledger); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.service.Update(r.Context(), id, ledger); err != nil {
		h.respondErr(w, "update ledger", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"updated": true})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondErr(w, "delete ledger", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": true})
}

func (h *Handler) respondErr(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrInUse):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, shared.ErrValidation), errors.Is(err, shared.ErrRequiredField), errors.Is(err, shared.ErrInvalidID):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error(op+" failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
