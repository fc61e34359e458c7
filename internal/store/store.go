package store

import (
	"errors"

	"github.com/fjod/yume/internal/basket"
)

// Common errors returned by the store
var (
	ErrSessionIDRequired = errors.New("session id is required")
	ErrSessionNotFound   = errors.New("session not found")
)

// SessionStore keeps one basket per session
type SessionStore interface {
	// Basket returns the session's basket, creating an empty one on first use
	Basket(sessionID string) (*basket.Basket, error)

	// Delete discards the session's basket
	Delete(sessionID string) error

	// Len returns the number of live sessions
	Len() int

	// Close shuts down the store and any background processes
	Close() error
}
