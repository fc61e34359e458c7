package service

import (
	"context"
	"testing"

	"github.com/fjod/yume/internal/basket"
	"github.com/fjod/yume/internal/cache"
	"github.com/fjod/yume/internal/domain"
	"github.com/fjod/yume/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func setupOrderService(t *testing.T, catalog *mockCatalog) (*OrderService, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	l := zap.New(core)
	menu := NewMenuService(catalog, cache.NopCache{}, l)
	return NewOrderService(menu, l), logs
}

func TestAddToBasket_ResolvesItemAndExtras(t *testing.T) {
	svc, _ := setupOrderService(t, newCatalog())
	b := basket.New()

	line, err := svc.AddToBasket(context.Background(), b, "2", []ExtraPick{
		{ExtraID: "egg", Quantity: 2},
		{ExtraID: "noodles", Quantity: 1},
	})
	require.NoError(t, err)

	assert.Equal(t, "2", line.ItemID)
	assert.Equal(t, "Miso Ramen", line.Name)
	assert.Equal(t, "17.99", line.TotalPrice.StringFixed(2))
	require.Len(t, line.Extras, 2)
	assert.Equal(t, "Extra Egg", line.Extras[0].Name)
	assert.Equal(t, 2, line.Extras[0].Quantity)
	assert.Equal(t, "17.99", b.TotalAmount().StringFixed(2))
}

func TestAddToBasket_ZeroQuantityPicksAreNotResolved(t *testing.T) {
	svc, _ := setupOrderService(t, newCatalog())
	b := basket.New()

	line, err := svc.AddToBasket(context.Background(), b, "p1", []ExtraPick{
		{ExtraID: "does-not-exist", Quantity: 0},
		{ExtraID: "egg", Quantity: -1},
	})
	require.NoError(t, err)
	assert.Empty(t, line.Extras)
	assert.Equal(t, "15.99", line.TotalPrice.StringFixed(2))
}

func TestAddToBasket_QuantityTooLarge(t *testing.T) {
	svc, _ := setupOrderService(t, newCatalog())
	b := basket.New()

	_, err := svc.AddToBasket(context.Background(), b, "2", []ExtraPick{
		{ExtraID: "egg", Quantity: MaxQuantity + 1},
	})
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	assert.Empty(t, b.LineItems())
}

func TestAddToBasket_UnknownItem(t *testing.T) {
	svc, _ := setupOrderService(t, newCatalog())
	b := basket.New()

	_, err := svc.AddToBasket(context.Background(), b, "42", nil)
	assert.ErrorIs(t, err, repository.ErrItemNotFound)
	assert.Empty(t, b.LineItems())
}

func TestAddToBasket_UnknownExtra(t *testing.T) {
	svc, _ := setupOrderService(t, newCatalog())
	b := basket.New()

	_, err := svc.AddToBasket(context.Background(), b, "2", []ExtraPick{
		{ExtraID: "truffle", Quantity: 1},
	})
	assert.ErrorIs(t, err, ErrExtraNotFound)
	assert.Empty(t, b.LineItems())
}

func TestAddToBasket_InvalidCatalogPrice(t *testing.T) {
	catalog := newCatalog()
	catalog.items = append(catalog.items, domain.MenuItem{ID: "bad", Name: "Broken Ramen", Price: "free"})
	svc, logs := setupOrderService(t, catalog)
	b := basket.New()

	_, err := svc.AddToBasket(context.Background(), b, "bad", nil)
	assert.ErrorIs(t, err, basket.ErrInvalidPrice)
	assert.Empty(t, b.LineItems())
	assert.Equal(t, 1, logs.FilterMessage("add to basket rejected").Len())
}

func TestRemoveAndClear(t *testing.T) {
	svc, _ := setupOrderService(t, newCatalog())
	b := basket.New()
	ctx := context.Background()

	first, err := svc.AddToBasket(ctx, b, "2", nil)
	require.NoError(t, err)
	_, err = svc.AddToBasket(ctx, b, "3", nil)
	require.NoError(t, err)

	assert.True(t, svc.RemoveFromBasket(ctx, b, first.ID))
	assert.False(t, svc.RemoveFromBasket(ctx, b, first.ID))
	assert.Equal(t, "11.99", b.TotalAmount().StringFixed(2))

	svc.ClearBasket(ctx, b)
	assert.Equal(t, basket.StateEmpty, b.State())
}

func TestCheckout_PlacesOrderLocally(t *testing.T) {
	svc, logs := setupOrderService(t, newCatalog())
	b := basket.New()
	ctx := context.Background()

	_, err := svc.AddToBasket(ctx, b, "p1", nil)
	require.NoError(t, err)
	_, err = svc.AddToBasket(ctx, b, "3", []ExtraPick{{ExtraID: "egg", Quantity: 1}})
	require.NoError(t, err)

	receipt, err := svc.Checkout(ctx, b)
	require.NoError(t, err)
	assert.NotEmpty(t, receipt.ID)
	assert.Len(t, receipt.Items, 2)
	assert.Equal(t, "29.48", receipt.TotalAmount.StringFixed(2))
	assert.Empty(t, b.LineItems())

	placed := logs.FilterMessage("order placed").All()
	require.Len(t, placed, 1)
	assert.Equal(t, receipt.ID, placed[0].ContextMap()["receipt_id"])
	assert.Equal(t, "29.48", placed[0].ContextMap()["total_amount"])
}

func TestCheckout_EmptyBasket(t *testing.T) {
	svc, logs := setupOrderService(t, newCatalog())

	_, err := svc.Checkout(context.Background(), basket.New())
	assert.ErrorIs(t, err, basket.ErrEmptyBasket)
	assert.Equal(t, 0, logs.FilterMessage("order placed").Len())
}
