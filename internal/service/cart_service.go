package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fjod/go_cart/shop-service/domain"
	"github.com/fjod/go_cart/shop-service/internal/cache"
	"github.com/fjod/go_cart/shop-service/internal/repository"
	"golang.org/x/sync/singleflight"
)

const maxItemQuantity = 99

type CartService struct {
	repo  repository.CartRepository
	cache cache.CartCache
	sfg   singleflight.Group // Prevents cache stampede
	log   *slog.Logger
}

func NewCartService(repo repository.CartRepository, cache cache.CartCache, logger *slog.Logger) *CartService {
	return &CartService{
		repo:  repo,
		cache: cache,
		log:   logger.With("component", "cart_service"),
	}
}

func (s *CartService) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}

	// Use singleflight to prevent multiple concurrent cache misses for same key
	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {
		cart, err := s.cache.Get(ctx, userID)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.WarnContext(ctx, "cache get failed", "user_id", userID, "error", err)
		}

		// read before the store so an invalidation during the load is detected
		gen, genErr := s.cache.Generation(ctx, userID)
		if genErr != nil {
			s.log.WarnContext(ctx, "cache generation failed", "user_id", userID, "error", genErr)
		}

		cart, err = s.repo.GetCart(ctx, userID)
		if err != nil {
			return nil, err
		}

		// an empty cart has no id yet, caching it would hide the first AddItem
		if cart.ID != "" && genErr == nil {
			go s.store(userID, cart, gen)
		}

		return cart, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*domain.Cart), nil
}

func (s *CartService) AddItem(ctx context.Context, userID string, productID int64, quantity int, size string) error {
	if userID == "" {
		return ErrMissingUser
	}
	if productID <= 0 {
		return ErrInvalidProduct
	}
	if quantity < 1 || quantity > maxItemQuantity {
		return ErrInvalidQuantity
	}

	item := domain.CartItem{ProductID: productID, Quantity: quantity, Size: size}
	if err := s.repo.AddItem(ctx, userID, item); err != nil {
		return fmt.Errorf("add item: %w", err)
	}

	s.Invalidate(userID)
	return nil
}

func (s *CartService) RemoveItem(ctx context.Context, userID string, productID int64, size string) error {
	if userID == "" {
		return ErrMissingUser
	}
	if err := s.repo.RemoveItem(ctx, userID, productID, size); err != nil {
		return fmt.Errorf("remove item: %w", err)
	}

	s.Invalidate(userID)
	return nil
}

func (s *CartService) store(userID string, cart *domain.Cart, gen int64) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err := s.cache.Set(ctx, userID, cart, gen)
	switch {
	case errors.Is(err, cache.ErrStaleCart):
		s.log.Debug("cart changed during load, not cached", "user_id", userID)
	case err != nil:
		s.log.Warn("cache set failed", "user_id", userID, "error", err)
	}
}

// Invalidate drops the cached cart. Failures are logged only: the entry
// expires on its own.
func (s *CartService) Invalidate(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		s.log.Warn("cache invalidate failed", "user_id", userID, "error", err)
	}
}
