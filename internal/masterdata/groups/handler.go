package groups

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
		Page:   queryInt(r, "page", 1),
		Limit:  queryInt(r, "limit", 50),
		Search: r.URL.Query().Get("search"),
	}
	groups, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list groups failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"groups": groups, "total": total})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	group, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondErr(w, h.logger, "get group", err)
		return
	}
	httpx.JSON(w, http.StatusOK, group)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var group Group
	if err := httpx.DecodeJSON(r, &group); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	created, err := h.service.Create(r.Context(), group)
	if err != nil {
		respondErr(w, h.logger, "create group", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	var group Group
	if err := httpx.DecodeJSON(r, &group); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.service.Update(r.Context(), id, group); err != nil {
		respondErr(w, h.logger, "update group", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"updated": true})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err := h.service.Delete(r.Context(), id); err != nil {
		respondErr(w, h.logger, "delete group", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": true})
}

func respondErr(w http.ResponseWriter, logger *slog.Logger, op string, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrInUse):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, shared.ErrValidation), errors.Is(err, shared.ErrRequiredField), errors.Is(err, shared.ErrInvalidID):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		logger.Error(op+" failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func queryInt(r *http.Request, key string, fallback int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v < 1 {
		return fallback
	}
	return v
}
