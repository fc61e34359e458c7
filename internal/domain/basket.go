package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExtraSelection is an extra as chosen by the customer, before validation.
type ExtraSelection struct {
	ExtraID   string
	Name      string
	UnitPrice string
	Quantity  int
}

// ExtraOption is an extra recorded on a line item. Quantity is always > 0.
type ExtraOption struct {
	ID        string
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

// LineItem is a frozen copy of a menu item as it was ordered.
type LineItem struct {
	ID         string // unique per basket entry
	ItemID     string // catalog id
	Name       string
	BasePrice  decimal.Decimal
	Extras     []ExtraOption
	TotalPrice decimal.Decimal
	AddedAt    time.Time
}

// Clone returns a copy that shares no memory with l.
func (l LineItem) Clone() LineItem {
	c := l
	if l.Extras != nil {
		c.Extras = make([]ExtraOption, len(l.Extras))
		copy(c.Extras, l.Extras)
	}
	return c
}

// Receipt acknowledges a placed order. It is never sent anywhere.
type Receipt struct {
	ID          string
	Items       []LineItem
	TotalAmount decimal.Decimal
	PlacedAt    time.Time
}
