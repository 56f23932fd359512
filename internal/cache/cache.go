package cache

import (
	"context"
	"errors"

	"github.com/fjod/go_cart/shop-service/domain"
)

// CartCache holds read-through copies of carts. Every Delete bumps a per-user
// generation; Set only stores a cart loaded under the current generation, so a
// slow writer cannot bring back a cart that was invalidated after it was read.
type CartCache interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	Generation(ctx context.Context, userID string) (int64, error)
	Set(ctx context.Context, userID string, cart *domain.Cart, generation int64) error
	Delete(ctx context.Context, userID string) error
}

var (
	ErrCacheMiss = errors.New("cache miss")
	// ErrStaleCart is returned by Set when the cart was invalidated after the
	// caller read the generation.
	ErrStaleCart = errors.New("cart invalidated since load")
)
