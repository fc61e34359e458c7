package basket

import (
	"errors"

	"github.com/fjod/yume/internal/pricing"
)

var (
	ErrInvalidPrice = pricing.ErrInvalidPrice
	ErrEmptyBasket  = errors.New("basket is empty, nothing to check out")
)
