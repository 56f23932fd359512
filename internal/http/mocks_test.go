package http

import (
	"context"

	d "github.com/fjod/go_cart/shop-service/domain"
	"github.com/fjod/go_cart/shop-service/internal/repository"
)

type cartServiceMock struct {
	cart      *d.Cart
	err       error
	addErr    error
	removeErr error

	addedSize   string
	removedSize string
}

func (m *cartServiceMock) GetCart(context.Context, string) (*d.Cart, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.cart, nil
}

func (m *cartServiceMock) AddItem(_ context.Context, _ string, _ int64, _ int, size string) error {
	m.addedSize = size
	return m.addErr
}

func (m *cartServiceMock) RemoveItem(_ context.Context, _ string, _ int64, size string) error {
	m.removedSize = size
	return m.removeErr
}

type checkoutServiceMock struct {
	result  *d.CheckoutResult
	err     error
	request *d.CheckoutRequest
}

func (m *checkoutServiceMock) PrepareCheckout(context.Context, string) (*d.CheckoutResult, error) {
	return m.result, m.err
}

func (m *checkoutServiceMock) Checkout(_ context.Context, req *d.CheckoutRequest) (*d.CheckoutResult, error) {
	m.request = req
	return m.result, m.err
}

type orderRepoMock struct {
	summary *d.OrderSummary
	orders  []*d.Order
	err     error
}

func (m *orderRepoMock) GetOrderSummary(context.Context, string) (*d.OrderSummary, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.summary, nil
}

func (m *orderRepoMock) ListOrdersByUserID(context.Context, string) ([]*d.Order, error) {
	return m.orders, m.err
}

type productRepoMock struct {
	products []*d.Product
	err      error
}

func (m *productRepoMock) GetAllProducts(context.Context) ([]*d.Product, error) {
	return m.products, m.err
}

func (m *productRepoMock) GetProduct(_ context.Context, id int64) (*d.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, p := range m.products {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, repository.ErrProductNotFound
}
