package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is the local stand-in for a catalog entry. Carts read its price.
type Product struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	CreatedAt time.Time       `json:"created_at"`
}
