package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const EventOrderPlaced = "order.placed"

type OutboxEvent struct {
	ID          string
	AggregateID string
	EventType   string
	Payload     []byte
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// OrderPlacedPayload is the JSON body of an order.placed event.
type OrderPlacedPayload struct {
	OrderID     string          `json:"order_id"`
	OrderNumber int64           `json:"order_number"`
	UserID      string          `json:"user_id"`
	Items       []OrderItem     `json:"items"`
	Total       decimal.Decimal `json:"total"`
	PlacedAt    time.Time       `json:"placed_at"`
}
