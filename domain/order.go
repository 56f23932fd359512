package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CartID    string    `json:"cart_id"`
	Number    int64     `json:"number"` // assigned by the store
	CreatedAt time.Time `json:"created_at"`
}

type OrderItem struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"order_id"`
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Size      string          `json:"size"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type OrderDetails struct {
	ID            string          `json:"id"`
	OrderID       string          `json:"order_id"`
	FirstName     string          `json:"first_name"`
	LastName      string          `json:"last_name"`
	Street        string          `json:"street"`
	Apartment     string          `json:"apartment"`
	City          string          `json:"city"`
	PostalCode    string          `json:"postal_code"`
	Phone         string          `json:"phone"`
	Email         string          `json:"email"`
	PaymentMethod string          `json:"payment_method"`
	Total         decimal.Decimal `json:"total"`
}

// OrderSummary is the read model behind the order summary page.
type OrderSummary struct {
	Order   Order         `json:"order"`
	Items   []OrderItem   `json:"items"`
	Details *OrderDetails `json:"details"`
}
