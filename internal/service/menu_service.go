package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/yume/internal/cache"
	"github.com/fjod/yume/internal/domain"
	"github.com/fjod/yume/internal/repository"
	"github.com/fjod/yume/pkg/circuitbreaker"
	"github.com/fjod/yume/pkg/logger"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var ErrExtraNotFound = errors.New("extra option not found")

const (
	menuFlightKey   = "menu"
	cacheSetTimeout = time.Second
)

// Catalog is the read side of the catalog repository
type Catalog interface {
	GetMenuItems(ctx context.Context) ([]domain.MenuItem, error)
	GetMenuItem(ctx context.Context, id string) (domain.MenuItem, error)
	GetExtras(ctx context.Context) ([]domain.MenuExtra, error)
}

var _ Catalog = (*repository.Repository)(nil)

type MenuService struct {
	repo    Catalog
	cache   cache.MenuCache
	breaker *circuitbreaker.Breaker[*domain.Menu]
	sfg     singleflight.Group // Prevents cache stampede
	logger  *zap.Logger
}

func NewMenuService(repo Catalog, menuCache cache.MenuCache, l *zap.Logger) *MenuService {
	if l == nil {
		l = zap.NewNop()
	}
	return &MenuService{
		repo:  repo,
		cache: menuCache,
		breaker: circuitbreaker.New[*domain.Menu](circuitbreaker.Settings{
			Name:                "menu-cache",
			ConsecutiveFailures: 5,
			Timeout:             30 * time.Second,
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, cache.ErrCacheMiss)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				l.Warn("circuit breaker state changed",
					zap.String("breaker", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()))
			},
		}),
		logger: l,
	}
}

// Menu returns the whole catalog, from the cache when possible.
func (s *MenuService) Menu(ctx context.Context) (*domain.Menu, error) {
	v, err, _ := s.sfg.Do(menuFlightKey, func() (interface{}, error) {
		log := logger.WithTrace(ctx, s.logger)

		menu, err := s.cachedMenu(ctx)
		if err == nil {
			return menu, nil
		}

		items, err := s.repo.GetMenuItems(ctx)
		if err != nil {
			return nil, fmt.Errorf("load menu items: %w", err)
		}
		extras, err := s.repo.GetExtras(ctx)
		if err != nil {
			return nil, fmt.Errorf("load extras: %w", err)
		}
		menu = &domain.Menu{Items: items, Extras: extras}

		setCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cacheSetTimeout)
		defer cancel()
		if _, errSet := s.breaker.Execute(func() (*domain.Menu, error) {
			return nil, s.cache.Set(setCtx, menu)
		}); errSet != nil {
			log.Warn("menu cache set failed", zap.Error(errSet))
		}

		return menu, nil
	})

	if err != nil {
		return nil, err
	}

	return v.(*domain.Menu), nil
}

// cachedMenu reads the menu through the breaker. Failures other than a miss
// are logged; the caller falls back to the repository either way.
func (s *MenuService) cachedMenu(ctx context.Context) (*domain.Menu, error) {
	menu, err := s.breaker.Execute(func() (*domain.Menu, error) {
		return s.cache.Get(ctx)
	})
	switch {
	case err == nil, errors.Is(err, cache.ErrCacheMiss):
	case errors.Is(err, circuitbreaker.ErrOpenState):
		logger.WithTrace(ctx, s.logger).Debug("menu cache skipped, breaker open")
	default:
		logger.WithTrace(ctx, s.logger).Warn("menu cache get failed", zap.Error(err))
	}
	return menu, err
}

func (s *MenuService) Items(ctx context.Context) ([]domain.MenuItem, error) {
	menu, err := s.Menu(ctx)
	if err != nil {
		return nil, err
	}
	return append([]domain.MenuItem(nil), menu.Items...), nil
}

// Popular returns the items flagged for the home screen, in menu order.
func (s *MenuService) Popular(ctx context.Context) ([]domain.MenuItem, error) {
	menu, err := s.Menu(ctx)
	if err != nil {
		return nil, err
	}
	popular := make([]domain.MenuItem, 0, len(menu.Items))
	for _, it := range menu.Items {
		if it.Popular {
			popular = append(popular, it)
		}
	}
	return popular, nil
}

// Item looks id up in the cached menu, or reads that single row from the
// repository when the menu is not cached.
func (s *MenuService) Item(ctx context.Context, id string) (domain.MenuItem, error) {
	if menu, err := s.cachedMenu(ctx); err == nil {
		for _, it := range menu.Items {
			if it.ID == id {
				return it, nil
			}
		}
		return domain.MenuItem{}, fmt.Errorf("%w: %s", repository.ErrItemNotFound, id)
	}

	item, err := s.repo.GetMenuItem(ctx, id)
	if err != nil {
		return domain.MenuItem{}, err
	}
	return item, nil
}

func (s *MenuService) Extras(ctx context.Context) ([]domain.MenuExtra, error) {
	menu, err := s.Menu(ctx)
	if err != nil {
		return nil, err
	}
	return append([]domain.MenuExtra(nil), menu.Extras...), nil
}

func (s *MenuService) Extra(ctx context.Context, id string) (domain.MenuExtra, error) {
	menu, err := s.Menu(ctx)
	if err != nil {
		return domain.MenuExtra{}, err
	}
	for _, e := range menu.Extras {
		if e.ID == id {
			return e, nil
		}
	}
	return domain.MenuExtra{}, fmt.Errorf("%w: %s", ErrExtraNotFound, id)
}

// Invalidate drops the cached menu so the next read goes to the repository.
func (s *MenuService) Invalidate(ctx context.Context) error {
	if err := s.cache.Delete(ctx); err != nil {
		logger.WithTrace(ctx, s.logger).Warn("menu cache invalidate failed", zap.Error(err))
		return fmt.Errorf("invalidate menu cache: %w", err)
	}
	return nil
}
