package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fjod/go_cart/shop-service/domain"
)

// Session implements CheckoutCommands on top of one database transaction.
// It is only valid inside the WithinTx callback that created it.
type Session struct {
	tx *sql.Tx
}

// LockCart takes a row lock on the cart for the rest of the transaction and
// fails with ErrCartChanged if the cart is gone, empty, or was modified after
// the caller read it at expectedVersion.
func (s *Session) LockCart(ctx context.Context, cartID string, expectedVersion int64) error {
	var version int64
	err := s.tx.QueryRowContext(ctx, `SELECT version FROM carts WHERE id = $1 FOR UPDATE`, cartID).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrCartChanged
	}
	if err != nil {
		return fmt.Errorf("lock cart: %w", err)
	}
	if version != expectedVersion {
		return fmt.Errorf("%w: version %d, expected %d", ErrCartChanged, version, expectedVersion)
	}

	var count int
	if err := s.tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM cart_items WHERE cart_id = $1`, cartID).Scan(&count); err != nil {
		return fmt.Errorf("count cart items: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("%w: cart is empty", ErrCartChanged)
	}
	return nil
}

// CreateOrder fills in the store assigned Number and CreatedAt.
func (s *Session) CreateOrder(ctx context.Context, order *domain.Order) error {
	if order == nil {
		return fmt.Errorf("%w: order", ErrNilArgument)
	}

	query := `INSERT INTO orders (id, user_id, cart_id, created_at)
	          VALUES ($1, $2, $3, NOW())
	          RETURNING number, created_at`

	err := s.tx.QueryRowContext(ctx, query, order.ID, order.UserID, nullString(order.CartID)).
		Scan(&order.Number, &order.CreatedAt)
	if err != nil {
		if errorCode(err) == codeUniqueViolation {
			return ErrDuplicateOrder
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// AddOrderItems writes the whole batch with a single statement.
func (s *Session) AddOrderItems(ctx context.Context, items []domain.OrderItem) error {
	if items == nil {
		return fmt.Errorf("%w: order items", ErrNilArgument)
	}
	if len(items) == 0 {
		return nil
	}

	const columns = 6
	var sb strings.Builder
	sb.WriteString(`INSERT INTO order_items (id, order_id, product_id, quantity, size, unit_price) VALUES `)
	args := make([]any, 0, len(items)*columns)
	for i, item := range items {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * columns
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d)", base+1, base+2, base+3, base+4, base+5, base+6)
		args = append(args, item.ID, item.OrderID, item.ProductID, item.Quantity, item.Size, item.UnitPrice)
	}

	if _, err := s.tx.ExecContext(ctx, sb.String(), args...); err != nil {
		if errorCode(err) == codeForeignKeyViolation {
			return fmt.Errorf("%w: order items reference a missing order", ErrOrderNotFound)
		}
		return fmt.Errorf("insert order items: %w", err)
	}
	return nil
}

func (s *Session) AddOrderDetails(ctx context.Context, details *domain.OrderDetails) error {
	if details == nil {
		return fmt.Errorf("%w: order details", ErrNilArgument)
	}

	query := `INSERT INTO order_details (id, order_id, first_name, last_name, street, apartment, city,
	                                     postal_code, phone, email, payment_method, total)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := s.tx.ExecContext(ctx, query,
		details.ID,
		details.OrderID,
		details.FirstName,
		details.LastName,
		details.Street,
		details.Apartment,
		details.City,
		details.PostalCode,
		details.Phone,
		details.Email,
		details.PaymentMethod,
		details.Total)
	if err != nil {
		switch errorCode(err) {
		case codeUniqueViolation:
			return ErrDuplicateOrderDetails
		case codeForeignKeyViolation:
			return fmt.Errorf("%w: order details reference a missing order", ErrOrderNotFound)
		}
		return fmt.Errorf("insert order details: %w", err)
	}
	return nil
}

func (s *Session) EnqueueEvent(ctx context.Context, event *domain.OutboxEvent) error {
	if event == nil {
		return fmt.Errorf("%w: outbox event", ErrNilArgument)
	}

	query := `INSERT INTO order_outbox (id, aggregate_id, event_type, payload, created_at)
	          VALUES ($1, $2, $3, $4, NOW())`

	if _, err := s.tx.ExecContext(ctx, query, event.ID, event.AggregateID, event.EventType, event.Payload); err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}
	return nil
}

// ClearCart removes every item and bumps the version, so a second checkout
// holding the old version fails LockCart.
func (s *Session) ClearCart(ctx context.Context, cartID string) error {
	if _, err := s.tx.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return fmt.Errorf("delete cart items: %w", err)
	}

	bump := `UPDATE carts SET version = version + 1, updated_at = NOW() WHERE id = $1`
	if _, err := s.tx.ExecContext(ctx, bump, cartID); err != nil {
		return fmt.Errorf("bump cart version: %w", err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
