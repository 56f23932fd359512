package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	d "github.com/fjod/go_cart/shop-service/domain"
	s "github.com/fjod/go_cart/shop-service/internal/service"
)

type CheckoutHandler struct {
	checkout s.CheckoutService
	timeout  time.Duration
}

func NewCheckoutHandler(checkout s.CheckoutService, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkout,
		timeout:  timeout,
	}
}

type CheckoutResponseDTO struct {
	Outcome     string           `json:"outcome"`
	Redirect    string           `json:"redirect"`
	OrderID     string           `json:"order_id,omitempty"`
	OrderNumber int64            `json:"order_number,omitempty"`
	Cart        *CartResponseDTO `json:"cart,omitempty"`
	FieldErrors d.FieldErrors    `json:"field_errors,omitempty"`
	Error       string           `json:"error,omitempty"`
	Retryable   bool             `json:"retryable,omitempty"`
}

// GET /api/v1/checkout
func (h *CheckoutHandler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	result, err := h.checkout.PrepareCheckout(ctx, userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, newCheckoutResponse(result))
}

// POST /api/v1/checkout
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var input d.CheckoutInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	result, err := h.checkout.Checkout(ctx, &d.CheckoutRequest{UserID: userID, Input: input})
	if err != nil {
		respondCheckoutFailure(w, r, err)
		return
	}

	status := http.StatusOK
	switch result.Outcome {
	case d.OutcomeSummary:
		status = http.StatusCreated
	case d.OutcomeForm:
		status = http.StatusUnprocessableEntity
	}
	respondJSON(w, status, newCheckoutResponse(result))
}

func newCheckoutResponse(result *d.CheckoutResult) CheckoutResponseDTO {
	resp := CheckoutResponseDTO{
		Outcome:     result.Outcome.String(),
		FieldErrors: result.FieldErrors,
	}

	orderID := ""
	if result.Order != nil {
		orderID = result.Order.ID
		resp.OrderID = result.Order.ID
		resp.OrderNumber = result.Order.Number
	} else if result.Cart != nil {
		cart := newCartResponse(result.Cart)
		resp.Cart = &cart
	}
	resp.Redirect = result.Outcome.Redirect(orderID)
	return resp
}

func respondCheckoutFailure(w http.ResponseWriter, req *http.Request, err error) {
	resp := CheckoutResponseDTO{
		Outcome:  d.OutcomeFailed.String(),
		Redirect: d.OutcomeFailed.Redirect(""),
	}

	switch {
	case errors.Is(err, s.ErrMissingUser):
		handleServiceError(w, req, err)
	case errors.Is(err, s.ErrCheckoutConflict):
		resp.Error = "cart changed during checkout, please review it and try again"
		resp.Retryable = true
		respondJSON(w, http.StatusConflict, resp)
	default:
		logRequestError(req, err)
		resp.Error = "order could not be placed"
		respondJSON(w, http.StatusInternalServerError, resp)
	}
}
