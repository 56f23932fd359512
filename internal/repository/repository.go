package repository

import (
	"context"
	"errors"

	"github.com/fjod/go_cart/shop-service/domain"
)

var (
	ErrCartChanged           = errors.New("cart changed since it was read")
	ErrItemNotFound          = errors.New("item not found in cart")
	ErrProductNotFound       = errors.New("product not found")
	ErrOrderNotFound         = errors.New("order not found")
	ErrDuplicateOrder        = errors.New("order already exists")
	ErrDuplicateOrderDetails = errors.New("order details already exist for this order")
	ErrNilArgument           = errors.New("required argument is nil")
)

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

// CheckoutCommands are the writes of one checkout attempt. Every call runs
// inside the transaction that produced the value and nothing is visible to
// other sessions until that transaction commits.
type CheckoutCommands interface {
	LockCart(ctx context.Context, cartID string, expectedVersion int64) error
	CreateOrder(ctx context.Context, order *domain.Order) error
	AddOrderItems(ctx context.Context, items []domain.OrderItem) error
	AddOrderDetails(ctx context.Context, details *domain.OrderDetails) error
	EnqueueEvent(ctx context.Context, event *domain.OutboxEvent) error
	ClearCart(ctx context.Context, cartID string) error
}

type CartRepository interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	AddItem(ctx context.Context, userID string, item domain.CartItem) error
	RemoveItem(ctx context.Context, userID string, productID int64, size string) error
}

type ProductRepository interface {
	GetAllProducts(ctx context.Context) ([]*domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
}

type OrderRepository interface {
	GetOrderSummary(ctx context.Context, orderID string) (*domain.OrderSummary, error)
	ListOrdersByUserID(ctx context.Context, userID string) ([]*domain.Order, error)
}

type OutboxRepository interface {
	GetUnprocessedEvents(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkEventAsProcessed(ctx context.Context, id string) error
}

type RepoInterface interface {
	CartRepository
	ProductRepository
	OrderRepository
	OutboxRepository
	WithinTx(ctx context.Context, fn func(ctx context.Context, cmds CheckoutCommands) error) error
	RunMigrations(*Credentials) error
	Close() error
}
