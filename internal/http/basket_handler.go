package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/fjod/yume/internal/basket"
	"github.com/fjod/yume/internal/service"
	"github.com/fjod/yume/internal/store"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxRequestBodySize = 1 << 20 // 1MB

type BasketHandler struct {
	sessions store.SessionStore
	orders   *service.OrderService
	logger   *zap.Logger
}

func NewBasketHandler(sessions store.SessionStore, orders *service.OrderService, l *zap.Logger) *BasketHandler {
	return &BasketHandler{
		sessions: sessions,
		orders:   orders,
		logger:   l,
	}
}

func (h *BasketHandler) basket(w http.ResponseWriter, r *http.Request) (*basket.Basket, bool) {
	b, err := h.sessions.Basket(getSessionID(r.Context()))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return nil, false
	}
	return b, true
}

func (h *BasketHandler) Get(w http.ResponseWriter, r *http.Request) {
	b, ok := h.basket(w, r)
	if !ok {
		return
	}

	respondJSON(w, h.logger, http.StatusOK, toBasketDTO(b.Snapshot()))
}

func (h *BasketHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	b, ok := h.basket(w, r)
	if !ok {
		return
	}

	// Parse request body
	var req AddItemRequestDTO
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodySize)).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	req.ItemID = strings.TrimSpace(req.ItemID)
	if req.ItemID == "" {
		respondError(w, h.logger, http.StatusBadRequest, "invalid_request", "item_id is required")
		return
	}

	line, err := h.orders.AddToBasket(r.Context(), b, req.ItemID, req.Extras)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusCreated, toLineItemDTO(line))
}

// RemoveItem answers 204 whether or not the line item was present
func (h *BasketHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	b, ok := h.basket(w, r)
	if !ok {
		return
	}

	h.orders.RemoveFromBasket(r.Context(), b, chi.URLParam(r, "line_item_id"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *BasketHandler) Clear(w http.ResponseWriter, r *http.Request) {
	b, ok := h.basket(w, r)
	if !ok {
		return
	}

	h.orders.ClearBasket(r.Context(), b)
	w.WriteHeader(http.StatusNoContent)
}

func (h *BasketHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	b, ok := h.basket(w, r)
	if !ok {
		return
	}

	receipt, err := h.orders.Checkout(r.Context(), b)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusCreated, toReceiptDTO(receipt))
}
