package http

import (
	"context"
	"net/http"
	"time"

	d "github.com/fjod/go_cart/shop-service/domain"
	"github.com/fjod/go_cart/shop-service/internal/repository"
	"github.com/go-chi/chi/v5"
)

type OrdersHandler struct {
	orders  repository.OrderRepository
	timeout time.Duration
}

func NewOrdersHandler(orders repository.OrderRepository, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		orders:  orders,
		timeout: timeout,
	}
}

type ListOrdersResponseDTO struct {
	Orders []*d.Order `json:"orders"`
}

// GET /api/v1/orders
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	orders, err := h.orders.ListOrdersByUserID(ctx, userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if orders == nil {
		orders = []*d.Order{}
	}

	respondJSON(w, http.StatusOK, ListOrdersResponseDTO{Orders: orders})
}

// GET /api/v1/orders/{order_id}
func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	orderID := chi.URLParam(r, "order_id")
	if orderID == "" {
		respondError(w, http.StatusBadRequest, "missing_order_id", "order_id is required")
		return
	}

	summary, err := h.orders.GetOrderSummary(ctx, orderID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	// other users' orders are reported as missing
	if summary.Order.UserID != userID {
		handleServiceError(w, r, repository.ErrOrderNotFound)
		return
	}

	respondJSON(w, http.StatusOK, summary)
}
