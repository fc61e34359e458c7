package cache

import (
	"context"
	"errors"

	"github.com/fjod/yume/internal/domain"
)

// MenuCache stores the whole catalog under a single key
type MenuCache interface {
	Get(ctx context.Context) (*domain.Menu, error)
	Set(ctx context.Context, menu *domain.Menu) error
	Delete(ctx context.Context) error
}

var ErrCacheMiss = errors.New("cache miss")
