package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fjod/go_cart/shop-service/domain"
	"github.com/google/uuid"
)

// GetCart never reports a missing cart: a user without one gets an empty cart.
func (r *Repository) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	cart := &domain.Cart{UserID: userID, Items: []domain.CartItem{}}

	query := `SELECT id, version, created_at, updated_at FROM carts WHERE user_id = $1`
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&cart.ID,
		&cart.Version,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return cart, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query cart: %w", err)
	}

	itemsQuery := `SELECT ci.product_id, p.name, ci.quantity, ci.size, p.price
	               FROM cart_items ci
	               JOIN products p ON p.id = ci.product_id
	               WHERE ci.cart_id = $1
	               ORDER BY ci.added_at, ci.product_id, ci.size`

	rows, err := r.db.QueryContext(ctx, itemsQuery, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("query cart items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(
			&item.ProductID,
			&item.ProductName,
			&item.Quantity,
			&item.Size,
			&item.UnitPrice,
		); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		cart.Items = append(cart.Items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return cart, nil
}

// AddItem creates the cart on first use. Adding a (product, size) pair that is
// already in the cart overwrites its quantity.
func (r *Repository) AddItem(ctx context.Context, userID string, item domain.CartItem) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	cartID, err := touchCart(ctx, tx, userID)
	if err != nil {
		return err
	}

	query := `INSERT INTO cart_items (cart_id, product_id, quantity, size, added_at)
	          VALUES ($1, $2, $3, $4, NOW())
	          ON CONFLICT (cart_id, product_id, size) DO UPDATE SET quantity = EXCLUDED.quantity`

	if _, err := tx.ExecContext(ctx, query, cartID, item.ProductID, item.Quantity, item.Size); err != nil {
		if errorCode(err) == codeForeignKeyViolation {
			return ErrProductNotFound
		}
		return concurrencyError(fmt.Errorf("insert cart item: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return concurrencyError(fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}

// RemoveItem locks the cart row before touching its items, the same order a
// checkout takes them in.
func (r *Repository) RemoveItem(ctx context.Context, userID string, productID int64, size string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	bump := `UPDATE carts SET version = version + 1, updated_at = NOW()
	         WHERE user_id = $1
	         RETURNING id`

	var cartID string
	err = tx.QueryRowContext(ctx, bump, userID).Scan(&cartID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrItemNotFound
	}
	if err != nil {
		return concurrencyError(fmt.Errorf("bump cart version: %w", err))
	}

	query := `DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2 AND size = $3`
	result, err := tx.ExecContext(ctx, query, cartID, productID, size)
	if err != nil {
		return concurrencyError(fmt.Errorf("delete cart item: %w", err))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrItemNotFound
	}

	if err := tx.Commit(); err != nil {
		return concurrencyError(fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}

// touchCart returns the user's cart id, creating the cart if needed, and bumps
// its version so in-flight checkouts notice the change.
func touchCart(ctx context.Context, tx *sql.Tx, userID string) (string, error) {
	query := `INSERT INTO carts (id, user_id, version, created_at, updated_at)
	          VALUES ($1, $2, 0, NOW(), NOW())
	          ON CONFLICT (user_id) DO UPDATE SET version = carts.version + 1, updated_at = NOW()
	          RETURNING id`

	var cartID string
	if err := tx.QueryRowContext(ctx, query, uuid.NewString(), userID).Scan(&cartID); err != nil {
		return "", fmt.Errorf("upsert cart: %w", err)
	}
	return cartID, nil
}
