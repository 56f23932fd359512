package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	r "github.com/fjod/go_cart/shop-service/internal/repository"
	s "github.com/fjod/go_cart/shop-service/internal/service"
)

type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	Details   string `json:"details,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleServiceError converts service and store errors to HTTP responses.
// Internal error text is never sent to the client.
func handleServiceError(w http.ResponseWriter, req *http.Request, err error) {
	var httpStatus int
	var code, message string

	switch {
	case errors.Is(err, s.ErrMissingUser):
		httpStatus, code, message = http.StatusUnauthorized, "unauthorized", "missing user authentication"
	case errors.Is(err, s.ErrInvalidProduct), errors.Is(err, s.ErrInvalidQuantity):
		httpStatus, code, message = http.StatusBadRequest, "invalid_argument", err.Error()
	case errors.Is(err, r.ErrProductNotFound):
		httpStatus, code, message = http.StatusNotFound, "product_not_found", "product not found"
	case errors.Is(err, r.ErrItemNotFound):
		httpStatus, code, message = http.StatusNotFound, "item_not_found", "item not found in cart"
	case errors.Is(err, r.ErrOrderNotFound):
		httpStatus, code, message = http.StatusNotFound, "order_not_found", "order not found"
	case errors.Is(err, s.ErrCheckoutConflict):
		respondJSON(w, http.StatusConflict, ErrorResponse{
			Error:     "cart changed during checkout, please review it and try again",
			Code:      "checkout_conflict",
			Retryable: true,
		})
		return
	case errors.Is(err, r.ErrCartChanged):
		respondJSON(w, http.StatusConflict, ErrorResponse{
			Error:     "cart was changed concurrently, please try again",
			Code:      "cart_conflict",
			Retryable: true,
		})
		return
	case errors.Is(err, context.DeadlineExceeded):
		logRequestError(req, err)
		httpStatus, code, message = http.StatusGatewayTimeout, "timeout", "request timed out"
	default:
		logRequestError(req, err)
		httpStatus, code, message = http.StatusInternalServerError, "internal_error", "internal server error"
	}

	respondError(w, httpStatus, code, message)
}

// logRequestError keeps the error text the client does not see, keyed by the
// request id echoed in X-Request-ID.
func logRequestError(req *http.Request, err error) {
	log.Printf("request %s %s %s failed: %v", getRequestID(req.Context()), req.Method, req.URL.Path, err)
}
