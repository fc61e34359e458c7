package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fjod/yume/internal/basket"
	"github.com/fjod/yume/internal/repository"
	"github.com/fjod/yume/internal/service"
	"github.com/fjod/yume/internal/store"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, l *zap.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		l.Warn("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, l *zap.Logger, status int, code, message string) {
	respondJSON(w, l, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleServiceError maps domain errors to HTTP status codes
func handleServiceError(w http.ResponseWriter, l *zap.Logger, err error) {
	var httpStatus int
	var code string

	switch {
	case errors.Is(err, repository.ErrItemNotFound):
		httpStatus, code = http.StatusNotFound, "item_not_found"
	case errors.Is(err, service.ErrExtraNotFound):
		httpStatus, code = http.StatusBadRequest, "extra_not_found"
	case errors.Is(err, service.ErrInvalidQuantity):
		httpStatus, code = http.StatusBadRequest, "invalid_quantity"
	case errors.Is(err, basket.ErrInvalidPrice):
		httpStatus, code = http.StatusUnprocessableEntity, "invalid_price"
	case errors.Is(err, basket.ErrEmptyBasket):
		httpStatus, code = http.StatusConflict, "empty_basket"
	case errors.Is(err, store.ErrSessionIDRequired):
		httpStatus, code = http.StatusBadRequest, "invalid_request"
	default:
		l.Error("request failed", zap.Error(err))
		respondError(w, l, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	respondError(w, l, httpStatus, code, err.Error())
}
