package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fjod/yume/internal/cache"
	"github.com/fjod/yume/internal/domain"
	"github.com/fjod/yume/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCatalog struct {
	items  []domain.MenuItem
	extras []domain.MenuExtra
	err    error
	gate   chan struct{} // when set, GetMenuItems blocks until closed
	calls  atomic.Int32
	single atomic.Int32
}

func (m *mockCatalog) GetMenuItems(context.Context) ([]domain.MenuItem, error) {
	m.calls.Add(1)
	if m.gate != nil {
		<-m.gate
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.items, nil
}

func (m *mockCatalog) GetMenuItem(_ context.Context, id string) (domain.MenuItem, error) {
	m.single.Add(1)
	if m.err != nil {
		return domain.MenuItem{}, m.err
	}
	for _, it := range m.items {
		if it.ID == id {
			return it, nil
		}
	}
	return domain.MenuItem{}, fmt.Errorf("%w: %s", repository.ErrItemNotFound, id)
}

func (m *mockCatalog) GetExtras(context.Context) ([]domain.MenuExtra, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.extras, nil
}

type mockCache struct {
	m       sync.RWMutex
	menu    *domain.Menu
	err     error
	gets    int
	deletes int
}

func (m *mockCache) Get(context.Context) (*domain.Menu, error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.gets++
	if m.err != nil {
		return nil, m.err
	}
	if m.menu == nil {
		return nil, cache.ErrCacheMiss
	}
	return m.menu, nil
}

func (m *mockCache) Set(_ context.Context, menu *domain.Menu) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	m.menu = menu
	return nil
}

func (m *mockCache) Delete(context.Context) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.deletes++
	m.menu = nil
	return m.err
}

func (m *mockCache) cached() *domain.Menu {
	m.m.RLock()
	defer m.m.RUnlock()
	return m.menu
}

func newCatalog() *mockCatalog {
	return &mockCatalog{
		items: []domain.MenuItem{
			{ID: "p1", Name: "Chef's Special Ramen", Price: "15.99", Popular: true},
			{ID: "p2", Name: "Deluxe Tonkotsu", Price: "14.99", Popular: true},
			{ID: "2", Name: "Miso Ramen", Price: "12.99"},
			{ID: "3", Name: "Shoyu Ramen", Price: "11.99"},
		},
		extras: []domain.MenuExtra{
			{ID: "egg", Name: "Extra Egg", Price: "1.50"},
			{ID: "noodles", Name: "Extra Noodles", Price: "2.00"},
		},
	}
}

func TestMenu_CacheMissLoadsAndPopulates(t *testing.T) {
	repo := newCatalog()
	c := &mockCache{}
	svc := NewMenuService(repo, c, nil)

	menu, err := svc.Menu(context.Background())
	require.NoError(t, err)
	assert.Len(t, menu.Items, 4)
	assert.Len(t, menu.Extras, 2)
	assert.Equal(t, menu, c.cached())

	_, err = svc.Menu(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), repo.calls.Load())
}

func TestMenu_CacheErrorFallsBackToRepository(t *testing.T) {
	repo := newCatalog()
	svc := NewMenuService(repo, &mockCache{err: errors.New("connection refused")}, nil)

	menu, err := svc.Menu(context.Background())
	require.NoError(t, err)
	assert.Len(t, menu.Items, 4)
}

func TestMenu_BreakerSkipsUnhealthyCache(t *testing.T) {
	repo := newCatalog()
	c := &mockCache{err: errors.New("connection refused")}
	svc := NewMenuService(repo, c, nil)

	for i := 0; i < 10; i++ {
		_, err := svc.Menu(context.Background())
		require.NoError(t, err)
	}

	// each call is one get and one set until the breaker trips after five failures
	c.m.RLock()
	gets := c.gets
	c.m.RUnlock()
	assert.Equal(t, 3, gets)
	assert.Equal(t, int32(10), repo.calls.Load())
}

func TestMenu_SingleflightCollapsesMisses(t *testing.T) {
	repo := newCatalog()
	repo.gate = make(chan struct{})
	svc := NewMenuService(repo, &mockCache{}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			menu, err := svc.Menu(context.Background())
			assert.NoError(t, err)
			assert.Len(t, menu.Items, 4)
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(repo.gate)
	wg.Wait()

	assert.Equal(t, int32(1), repo.calls.Load())
}

func TestMenu_RepositoryError(t *testing.T) {
	repo := newCatalog()
	repo.err = errors.New("disk on fire")
	svc := NewMenuService(repo, cache.NopCache{}, nil)

	_, err := svc.Menu(context.Background())
	assert.ErrorContains(t, err, "disk on fire")
}

func TestPopular(t *testing.T) {
	svc := NewMenuService(newCatalog(), cache.NopCache{}, nil)

	popular, err := svc.Popular(context.Background())
	require.NoError(t, err)
	require.Len(t, popular, 2)
	assert.Equal(t, "p1", popular[0].ID)
	assert.Equal(t, "p2", popular[1].ID)
}

func TestItem_CachedMenuSkipsRepository(t *testing.T) {
	repo := newCatalog()
	svc := NewMenuService(repo, &mockCache{}, nil)

	_, err := svc.Menu(context.Background())
	require.NoError(t, err)

	item, err := svc.Item(context.Background(), "3")
	require.NoError(t, err)
	assert.Equal(t, "Shoyu Ramen", item.Name)

	_, err = svc.Item(context.Background(), "42")
	assert.ErrorIs(t, err, repository.ErrItemNotFound)
	assert.Equal(t, int32(0), repo.single.Load())
}

func TestItem_UncachedReadsSingleRow(t *testing.T) {
	repo := newCatalog()
	svc := NewMenuService(repo, &mockCache{}, nil)

	item, err := svc.Item(context.Background(), "p2")
	require.NoError(t, err)
	assert.Equal(t, "Deluxe Tonkotsu", item.Name)
	assert.Equal(t, int32(1), repo.single.Load())
	assert.Equal(t, int32(0), repo.calls.Load())
}

func TestItem_RepositoryError(t *testing.T) {
	repo := newCatalog()
	repo.err = errors.New("disk on fire")
	svc := NewMenuService(repo, cache.NopCache{}, nil)

	_, err := svc.Item(context.Background(), "p1")
	assert.ErrorContains(t, err, "disk on fire")
}

func TestItem(t *testing.T) {
	svc := NewMenuService(newCatalog(), cache.NopCache{}, nil)

	item, err := svc.Item(context.Background(), "2")
	require.NoError(t, err)
	assert.Equal(t, "Miso Ramen", item.Name)

	_, err = svc.Item(context.Background(), "42")
	assert.ErrorIs(t, err, repository.ErrItemNotFound)
}

func TestExtra(t *testing.T) {
	svc := NewMenuService(newCatalog(), cache.NopCache{}, nil)

	extra, err := svc.Extra(context.Background(), "egg")
	require.NoError(t, err)
	assert.Equal(t, "1.50", extra.Price)

	_, err = svc.Extra(context.Background(), "truffle")
	assert.ErrorIs(t, err, ErrExtraNotFound)
}

func TestItemsAndExtras_ReturnCopies(t *testing.T) {
	c := &mockCache{}
	svc := NewMenuService(newCatalog(), c, nil)

	items, err := svc.Items(context.Background())
	require.NoError(t, err)
	items[0].Name = "changed"

	extras, err := svc.Extras(context.Background())
	require.NoError(t, err)
	extras[0].Price = "0.00"

	menu, err := svc.Menu(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Chef's Special Ramen", menu.Items[0].Name)
	assert.Equal(t, "1.50", menu.Extras[0].Price)
}

func TestInvalidate(t *testing.T) {
	repo := newCatalog()
	c := &mockCache{}
	svc := NewMenuService(repo, c, nil)

	_, err := svc.Menu(context.Background())
	require.NoError(t, err)
	require.NoError(t, svc.Invalidate(context.Background()))
	assert.Nil(t, c.cached())

	_, err = svc.Menu(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), repo.calls.Load())
}
