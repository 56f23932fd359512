package http

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	r "github.com/fjod/go_cart/shop-service/internal/repository"
	s "github.com/fjod/go_cart/shop-service/internal/service"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })
	return &buf
}

func serveError(err error) *httptest.ResponseRecorder {
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handleServiceError(w, r, err)
	}))

	request := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	request.Header.Set("X-Request-ID", "req-500")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

func TestHandleServiceError_LogsRequestIDForInternalErrors(t *testing.T) {
	logs := captureLog(t)

	recorder := serveError(errors.New("connection reset by peer"))

	if recorder.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", recorder.Code)
	}
	if strings.Contains(recorder.Body.String(), "connection reset") {
		t.Errorf("Expected internal error text to stay out of the body, got %s", recorder.Body.String())
	}
	if !strings.Contains(logs.String(), "req-500") {
		t.Errorf("Expected request id in log, got %q", logs.String())
	}
	if !strings.Contains(logs.String(), "connection reset by peer") {
		t.Errorf("Expected error text in log, got %q", logs.String())
	}
}

func TestHandleServiceError_ClientErrorsAreNotLogged(t *testing.T) {
	logs := captureLog(t)

	recorder := serveError(s.ErrInvalidQuantity)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", recorder.Code)
	}
	if logs.Len() != 0 {
		t.Errorf("Expected no log output, got %q", logs.String())
	}
}

func TestRespondCheckoutFailure_LogsRequestID(t *testing.T) {
	logs := captureLog(t)

	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondCheckoutFailure(w, r, s.ErrCheckoutFailed)
	}))
	request := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil)
	request.Header.Set("X-Request-ID", "req-checkout")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", recorder.Code)
	}
	if !strings.Contains(logs.String(), "req-checkout") {
		t.Errorf("Expected request id in log, got %q", logs.String())
	}
}

func TestHandleServiceError_LostCartRaceIsRetryable(t *testing.T) {
	recorder := serveError(fmt.Errorf("remove item: %w", r.ErrCartChanged))

	if recorder.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", recorder.Code)
	}
	if !strings.Contains(recorder.Body.String(), `"retryable":true`) {
		t.Errorf("Expected retryable body, got %s", recorder.Body.String())
	}
}
