package service

import (
	"encoding/json"
	"fmt"

	d "github.com/fjod/go_cart/shop-service/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// buildOrderItems copies every cart line, price included, into a new order item.
func buildOrderItems(orderID string, lines []d.CartItem) []d.OrderItem {
	items := make([]d.OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, d.OrderItem{
			ID:        uuid.NewString(),
			OrderID:   orderID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Size:      line.Size,
			UnitPrice: line.UnitPrice,
		})
	}
	return items
}

func buildOrderDetails(orderID string, input *d.CheckoutInput, total decimal.Decimal) *d.OrderDetails {
	return &d.OrderDetails{
		ID:            uuid.NewString(),
		OrderID:       orderID,
		FirstName:     input.FirstName,
		LastName:      input.LastName,
		Street:        input.Street,
		Apartment:     input.Apartment,
		City:          input.City,
		PostalCode:    input.PostalCode,
		Phone:         input.Phone,
		Email:         input.Email,
		PaymentMethod: input.PaymentMethod,
		Total:         total,
	}
}

func buildOrderPlacedEvent(order *d.Order, items []d.OrderItem, total decimal.Decimal) (*d.OutboxEvent, error) {
	payload, err := json.Marshal(d.OrderPlacedPayload{
		OrderID:     order.ID,
		OrderNumber: order.Number,
		UserID:      order.UserID,
		Items:       items,
		Total:       total,
		PlacedAt:    order.CreatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal order placed payload: %w", err)
	}

	return &d.OutboxEvent{
		ID:          uuid.NewString(),
		AggregateID: order.ID,
		EventType:   d.EventOrderPlaced,
		Payload:     payload,
	}, nil
}
