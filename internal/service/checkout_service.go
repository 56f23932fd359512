package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	d "github.com/fjod/go_cart/shop-service/domain"
	r "github.com/fjod/go_cart/shop-service/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type InputValidator interface {
	Validate(input *d.CheckoutInput) d.FieldErrors
}

type OutcomeRecorder interface {
	ObserveCheckout(outcome d.CheckoutOutcome)
}

// CartInvalidator drops a user's cached cart after it was cleared.
type CartInvalidator interface {
	Invalidate(userID string)
}

type CheckoutService interface {
	PrepareCheckout(ctx context.Context, userID string) (*d.CheckoutResult, error)
	Checkout(ctx context.Context, req *d.CheckoutRequest) (*d.CheckoutResult, error)
}

type CheckoutServiceImpl struct {
	repo      r.RepoInterface
	validator InputValidator
	carts     CartInvalidator
	recorder  OutcomeRecorder
	log       *slog.Logger
}

func NewCheckoutService(repo r.RepoInterface, validator InputValidator, carts CartInvalidator,
	recorder OutcomeRecorder, logger *slog.Logger) *CheckoutServiceImpl {
	return &CheckoutServiceImpl{
		repo:      repo,
		validator: validator,
		carts:     carts,
		recorder:  recorder,
		log:       logger.With("component", "checkout_service"),
	}
}

// PrepareCheckout backs the checkout form: an empty cart sends the user back
// to the catalog, otherwise the cart is returned for rendering.
func (s *CheckoutServiceImpl) PrepareCheckout(ctx context.Context, userID string) (*d.CheckoutResult, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}
	cart, err := s.repo.GetCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	if cart.IsEmpty() {
		return &d.CheckoutResult{Outcome: d.OutcomeCatalog, Cart: cart}, nil
	}
	return &d.CheckoutResult{Outcome: d.OutcomeForm, Cart: cart}, nil
}

// Checkout turns the user's cart into an order. Catalog and form outcomes are
// returned without touching the store. Any error means nothing was written.
func (s *CheckoutServiceImpl) Checkout(ctx context.Context, req *d.CheckoutRequest) (*d.CheckoutResult, error) {
	if req == nil || req.UserID == "" {
		return nil, ErrMissingUser
	}

	cart, err := s.repo.GetCart(ctx, req.UserID)
	if err != nil {
		return nil, s.fail(ctx, req.UserID, fmt.Errorf("%w: get cart: %w", ErrCheckoutFailed, err))
	}

	if cart.IsEmpty() {
		return s.done(&d.CheckoutResult{Outcome: d.OutcomeCatalog, Cart: cart}), nil
	}

	if fieldErrors := s.validator.Validate(&req.Input); len(fieldErrors) > 0 {
		return s.done(&d.CheckoutResult{Outcome: d.OutcomeForm, Cart: cart, FieldErrors: fieldErrors}), nil
	}

	// the total is captured from the cart as read, later catalog changes do not apply
	total := cart.Total()
	order := &d.Order{
		ID:     uuid.NewString(),
		UserID: req.UserID,
		CartID: cart.ID,
	}

	err = s.repo.WithinTx(ctx, func(ctx context.Context, cmds r.CheckoutCommands) error {
		return placeOrder(ctx, cmds, cart, order, &req.Input, total)
	})
	if err != nil {
		return nil, s.fail(ctx, req.UserID, classify(err))
	}

	s.carts.Invalidate(req.UserID)
	s.log.InfoContext(ctx, "order placed",
		"order_id", order.ID, "order_number", order.Number, "user_id", req.UserID, "total", total.StringFixed(2))

	return s.done(&d.CheckoutResult{Outcome: d.OutcomeSummary, Cart: cart, Order: order}), nil
}

func placeOrder(ctx context.Context, cmds r.CheckoutCommands, cart *d.Cart, order *d.Order,
	input *d.CheckoutInput, total decimal.Decimal) error {
	if err := cmds.LockCart(ctx, cart.ID, cart.Version); err != nil {
		return err
	}
	if err := cmds.CreateOrder(ctx, order); err != nil {
		return fmt.Errorf("create order: %w", err)
	}

	items := buildOrderItems(order.ID, cart.Items)
	if err := cmds.AddOrderItems(ctx, items); err != nil {
		return fmt.Errorf("add order items: %w", err)
	}

	if err := cmds.AddOrderDetails(ctx, buildOrderDetails(order.ID, input, total)); err != nil {
		return fmt.Errorf("add order details: %w", err)
	}

	event, err := buildOrderPlacedEvent(order, items, total)
	if err != nil {
		return err
	}
	if err := cmds.EnqueueEvent(ctx, event); err != nil {
		return fmt.Errorf("enqueue event: %w", err)
	}

	if err := cmds.ClearCart(ctx, cart.ID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func classify(err error) error {
	if errors.Is(err, r.ErrCartChanged) {
		return fmt.Errorf("%w: %w", ErrCheckoutConflict, err)
	}
	return fmt.Errorf("%w: %w", ErrCheckoutFailed, err)
}

func (s *CheckoutServiceImpl) fail(ctx context.Context, userID string, err error) error {
	level := slog.LevelError
	if errors.Is(err, ErrCheckoutConflict) || errors.Is(err, context.Canceled) {
		level = slog.LevelWarn
	}
	s.log.Log(ctx, level, "checkout aborted", "user_id", userID, "error", err)
	s.recorder.ObserveCheckout(d.OutcomeFailed)
	return err
}

func (s *CheckoutServiceImpl) done(result *d.CheckoutResult) *d.CheckoutResult {
	s.recorder.ObserveCheckout(result.Outcome)
	return result
}
