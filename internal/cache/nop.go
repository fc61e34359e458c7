package cache

import (
	"context"

	"github.com/fjod/yume/internal/domain"
)

// NopCache always misses. Used when no Redis address is configured.
type NopCache struct{}

func (NopCache) Get(context.Context) (*domain.Menu, error) { return nil, ErrCacheMiss }

func (NopCache) Set(context.Context, *domain.Menu) error { return nil }

func (NopCache) Delete(context.Context) error { return nil }
