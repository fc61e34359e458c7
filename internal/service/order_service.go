package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/fjod/yume/internal/basket"
	"github.com/fjod/yume/internal/domain"
	"github.com/fjod/yume/internal/pricing"
	"github.com/fjod/yume/pkg/logger"
	"go.uber.org/zap"
)

// MaxQuantity is the largest number of one extra a single line item may carry
const MaxQuantity = 99

var ErrInvalidQuantity = errors.New("extra quantity must not exceed 99")

// ExtraPick is an extra chosen by id, as sent by the presentation layer
type ExtraPick struct {
	ExtraID  string `json:"extra_id"`
	Quantity int    `json:"quantity"`
}

// MenuReader resolves catalog ids
type MenuReader interface {
	Item(ctx context.Context, id string) (domain.MenuItem, error)
	Extra(ctx context.Context, id string) (domain.MenuExtra, error)
}

type OrderService struct {
	menu   MenuReader
	logger *zap.Logger
}

func NewOrderService(menu MenuReader, l *zap.Logger) *OrderService {
	if l == nil {
		l = zap.NewNop()
	}
	return &OrderService{menu: menu, logger: l}
}

// AddToBasket resolves itemID and picks against the catalog and adds the
// result to b as a new line item.
func (s *OrderService) AddToBasket(ctx context.Context, b *basket.Basket, itemID string, picks []ExtraPick) (domain.LineItem, error) {
	for _, p := range picks {
		if p.Quantity > MaxQuantity {
			return domain.LineItem{}, fmt.Errorf("%w: %s x%d", ErrInvalidQuantity, p.ExtraID, p.Quantity)
		}
	}

	item, err := s.menu.Item(ctx, itemID)
	if err != nil {
		return domain.LineItem{}, err
	}

	selections := make([]domain.ExtraSelection, 0, len(picks))
	for _, p := range picks {
		if p.Quantity <= 0 {
			continue
		}
		extra, err := s.menu.Extra(ctx, p.ExtraID)
		if err != nil {
			return domain.LineItem{}, err
		}
		selections = append(selections, domain.ExtraSelection{
			ExtraID:   extra.ID,
			Name:      extra.Name,
			UnitPrice: extra.Price,
			Quantity:  p.Quantity,
		})
	}

	line, err := b.Add(item, selections)
	if err != nil {
		logger.WithTrace(ctx, s.logger).Warn("add to basket rejected",
			zap.String("item_id", itemID),
			zap.Error(err))
		return domain.LineItem{}, err
	}

	logger.WithTrace(ctx, s.logger).Debug("line item added",
		zap.String("line_item_id", line.ID),
		zap.String("item_id", line.ItemID),
		zap.String("total_price", pricing.Format(line.TotalPrice)))
	return line, nil
}

func (s *OrderService) RemoveFromBasket(ctx context.Context, b *basket.Basket, lineItemID string) bool {
	removed := b.Remove(lineItemID)
	logger.WithTrace(ctx, s.logger).Debug("remove line item",
		zap.String("line_item_id", lineItemID),
		zap.Bool("removed", removed))
	return removed
}

func (s *OrderService) ClearBasket(ctx context.Context, b *basket.Basket) {
	b.Clear()
	logger.WithTrace(ctx, s.logger).Debug("basket cleared")
}

// Checkout places the order locally. Nothing is submitted anywhere; the
// receipt is the whole acknowledgement.
func (s *OrderService) Checkout(ctx context.Context, b *basket.Basket) (domain.Receipt, error) {
	receipt, err := b.Checkout()
	if err != nil {
		return domain.Receipt{}, err
	}

	logger.WithTrace(ctx, s.logger).Info("order placed",
		zap.String("receipt_id", receipt.ID),
		zap.Int("line_items", len(receipt.Items)),
		zap.String("total_amount", pricing.Format(receipt.TotalAmount)))
	return receipt, nil
}
