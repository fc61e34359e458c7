package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/yume/internal/domain"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// MenuProvider is the read side of the catalog used by the screens
type MenuProvider interface {
	Items(ctx context.Context) ([]domain.MenuItem, error)
	Popular(ctx context.Context) ([]domain.MenuItem, error)
	Item(ctx context.Context, id string) (domain.MenuItem, error)
	Extras(ctx context.Context) ([]domain.MenuExtra, error)
}

type MenuHandler struct {
	menu    MenuProvider
	timeout time.Duration
	logger  *zap.Logger
}

func NewMenuHandler(menu MenuProvider, timeout time.Duration, l *zap.Logger) *MenuHandler {
	return &MenuHandler{
		menu:    menu,
		timeout: requestTimeout(timeout),
		logger:  l,
	}
}

func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	items, err := h.menu.Items(ctx)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, MenuResponse{Items: items})
}

func (h *MenuHandler) Popular(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	items, err := h.menu.Popular(ctx)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, MenuResponse{Items: items})
}

func (h *MenuHandler) Extras(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	extras, err := h.menu.Extras(ctx)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, ExtrasResponse{Extras: extras})
}

func (h *MenuHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	itemID := chi.URLParam(r, "item_id")
	if itemID == "" {
		respondError(w, h.logger, http.StatusBadRequest, "invalid_request", "item_id is required")
		return
	}

	item, err := h.menu.Item(ctx, itemID)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, item)
}
