package http

import (
	"time"

	"github.com/fjod/yume/internal/basket"
	"github.com/fjod/yume/internal/domain"
	"github.com/fjod/yume/internal/pricing"
	"github.com/fjod/yume/internal/service"
)

type MenuResponse struct {
	Items []domain.MenuItem `json:"items"`
}

type ExtrasResponse struct {
	Extras []domain.MenuExtra `json:"extras"`
}

type AddItemRequestDTO struct {
	ItemID string              `json:"item_id"`
	Extras []service.ExtraPick `json:"extras"`
}

type ExtraDTO struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	UnitPrice  string `json:"unit_price"`
	Quantity   int    `json:"quantity"`
	TotalPrice string `json:"total_price"`
}

type LineItemDTO struct {
	ID         string     `json:"id"`
	ItemID     string     `json:"item_id"`
	Name       string     `json:"name"`
	BasePrice  string     `json:"base_price"`
	Extras     []ExtraDTO `json:"extras"`
	TotalPrice string     `json:"total_price"`
	AddedAt    time.Time  `json:"added_at"`
}

type BasketDTO struct {
	Version     uint64        `json:"version"`
	State       string        `json:"state"`
	Items       []LineItemDTO `json:"items"`
	ItemCount   int           `json:"item_count"`
	TotalAmount string        `json:"total_amount"`
}

type ReceiptDTO struct {
	ID          string        `json:"id"`
	Items       []LineItemDTO `json:"items"`
	TotalAmount string        `json:"total_amount"`
	PlacedAt    time.Time     `json:"placed_at"`
}

func toLineItemDTO(li domain.LineItem) LineItemDTO {
	extras := make([]ExtraDTO, 0, len(li.Extras))
	for _, e := range li.Extras {
		extras = append(extras, ExtraDTO{
			ID:         e.ID,
			Name:       e.Name,
			UnitPrice:  pricing.Format(e.UnitPrice),
			Quantity:   e.Quantity,
			TotalPrice: pricing.Format(pricing.ExtraTotal(e)),
		})
	}
	return LineItemDTO{
		ID:         li.ID,
		ItemID:     li.ItemID,
		Name:       li.Name,
		BasePrice:  pricing.Format(li.BasePrice),
		Extras:     extras,
		TotalPrice: pricing.Format(li.TotalPrice),
		AddedAt:    li.AddedAt,
	}
}

func toLineItemDTOs(items []domain.LineItem) []LineItemDTO {
	out := make([]LineItemDTO, 0, len(items))
	for _, li := range items {
		out = append(out, toLineItemDTO(li))
	}
	return out
}

func toBasketDTO(s basket.Snapshot) BasketDTO {
	return BasketDTO{
		Version:     s.Version,
		State:       s.State.String(),
		Items:       toLineItemDTOs(s.Items),
		ItemCount:   len(s.Items),
		TotalAmount: pricing.Format(s.TotalAmount),
	}
}

func toReceiptDTO(r domain.Receipt) ReceiptDTO {
	return ReceiptDTO{
		ID:          r.ID,
		Items:       toLineItemDTOs(r.Items),
		TotalAmount: pricing.Format(r.TotalAmount),
		PlacedAt:    r.PlacedAt,
	}
}
