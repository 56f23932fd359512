package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fjod/go_cart/shop-service/domain"
)

func (r *Repository) GetOrderSummary(ctx context.Context, orderID string) (*domain.OrderSummary, error) {
	query := `SELECT id, user_id, COALESCE(cart_id::text, ''), number, created_at FROM orders WHERE id = $1`

	var summary domain.OrderSummary
	err := r.db.QueryRowContext(ctx, query, orderID).Scan(
		&summary.Order.ID,
		&summary.Order.UserID,
		&summary.Order.CartID,
		&summary.Order.Number,
		&summary.Order.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) || errorCode(err) == codeInvalidTextRepr {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order by id: %w", err)
	}

	items, err := r.orderItems(ctx, orderID)
	if err != nil {
		return nil, err
	}
	summary.Items = items

	details, err := r.orderDetails(ctx, orderID)
	if err != nil {
		return nil, err
	}
	summary.Details = details

	return &summary, nil
}

func (r *Repository) ListOrdersByUserID(ctx context.Context, userID string) ([]*domain.Order, error) {
	query := `SELECT id, user_id, COALESCE(cart_id::text, ''), number, created_at
	          FROM orders WHERE user_id = $1 ORDER BY created_at DESC, number DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query orders by user id: %w", err)
	}
	defer rows.Close()

	orders := make([]*domain.Order, 0)
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(
			&order.ID,
			&order.UserID,
			&order.CartID,
			&order.Number,
			&order.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, &order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return orders, nil
}

func (r *Repository) orderItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	query := `SELECT id, order_id, product_id, quantity, size, unit_price
	          FROM order_items WHERE order_id = $1 ORDER BY product_id, size`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.OrderItem, 0)
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.Quantity,
			&item.Size,
			&item.UnitPrice,
		); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return items, nil
}

func (r *Repository) orderDetails(ctx context.Context, orderID string) (*domain.OrderDetails, error) {
	query := `SELECT id, order_id, first_name, last_name, street, apartment, city,
	                 postal_code, phone, email, payment_method, total
	          FROM order_details WHERE order_id = $1`

	var details domain.OrderDetails
	err := r.db.QueryRowContext(ctx, query, orderID).Scan(
		&details.ID,
		&details.OrderID,
		&details.FirstName,
		&details.LastName,
		&details.Street,
		&details.Apartment,
		&details.City,
		&details.PostalCode,
		&details.Phone,
		&details.Email,
		&details.PaymentMethod,
		&details.Total,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query order details: %w", err)
	}
	return &details, nil
}
