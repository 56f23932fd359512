package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	d "github.com/fjod/go_cart/shop-service/domain"
	"github.com/fjod/go_cart/shop-service/internal/cache"
	r "github.com/fjod/go_cart/shop-service/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var errStoreDown = errors.New("store unavailable")

// memoryRepo is an in-memory RepoInterface. WithinTx is serialized and
// stages writes, applying them only when the callback returns nil.
type memoryRepo struct {
	mu   sync.Mutex
	txMu sync.Mutex

	carts   map[string]*d.Cart // by user id
	orders  map[string]d.Order
	items   map[string][]d.OrderItem
	details map[string]d.OrderDetails
	outbox  []*d.OutboxEvent
	number  int64

	getCartErr   error
	failOn       string // command whose calls fail
	afterGetCart func()
	getCartCalls int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		carts:   make(map[string]*d.Cart),
		orders:  make(map[string]d.Order),
		items:   make(map[string][]d.OrderItem),
		details: make(map[string]d.OrderDetails),
		number:  999,
	}
}

func (m *memoryRepo) putCart(userID string, lines ...d.CartItem) *d.Cart {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := &d.Cart{ID: uuid.NewString(), UserID: userID, Version: 1, Items: lines}
	m.carts[userID] = c
	return copyCart(c)
}

func (m *memoryRepo) setPrice(productID int64, price decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.carts {
		for i := range c.Items {
			if c.Items[i].ProductID == productID {
				c.Items[i].UnitPrice = price
			}
		}
	}
}

func (m *memoryRepo) orderCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

func (m *memoryRepo) cartItemCount(userID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.carts[userID]; ok {
		return len(c.Items)
	}
	return 0
}

func copyCart(c *d.Cart) *d.Cart {
	cp := *c
	cp.Items = append([]d.CartItem{}, c.Items...)
	return &cp
}

func (m *memoryRepo) GetCart(_ context.Context, userID string) (*d.Cart, error) {
	m.mu.Lock()
	m.getCartCalls++
	if m.getCartErr != nil {
		m.mu.Unlock()
		return nil, m.getCartErr
	}
	var cart *d.Cart
	if c, ok := m.carts[userID]; ok {
		cart = copyCart(c)
	} else {
		cart = &d.Cart{UserID: userID, Items: []d.CartItem{}}
	}
	hook := m.afterGetCart
	m.mu.Unlock()

	if hook != nil {
		hook()
	}
	return cart, nil
}

func (m *memoryRepo) AddItem(_ context.Context, userID string, item d.CartItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carts[userID]
	if !ok {
		c = &d.Cart{ID: uuid.NewString(), UserID: userID}
		m.carts[userID] = c
	}
	c.Version++
	for i := range c.Items {
		if c.Items[i].ProductID == item.ProductID && c.Items[i].Size == item.Size {
			c.Items[i].Quantity = item.Quantity
			return nil
		}
	}
	c.Items = append(c.Items, item)
	return nil
}

func (m *memoryRepo) RemoveItem(_ context.Context, userID string, productID int64, size string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carts[userID]
	if !ok {
		return r.ErrItemNotFound
	}
	for i, item := range c.Items {
		if item.ProductID == productID && item.Size == size {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.Version++
			return nil
		}
	}
	return r.ErrItemNotFound
}

func (m *memoryRepo) GetAllProducts(context.Context) ([]*d.Product, error) {
	return []*d.Product{}, nil
}

func (m *memoryRepo) GetProduct(context.Context, int64) (*d.Product, error) {
	return nil, r.ErrProductNotFound
}

func (m *memoryRepo) GetOrderSummary(_ context.Context, orderID string) (*d.OrderSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok {
		return nil, r.ErrOrderNotFound
	}
	summary := &d.OrderSummary{Order: o, Items: append([]d.OrderItem{}, m.items[orderID]...)}
	if det, ok := m.details[orderID]; ok {
		summary.Details = &det
	}
	return summary, nil
}

func (m *memoryRepo) ListOrdersByUserID(_ context.Context, userID string) ([]*d.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*d.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			o := o
			out = append(out, &o)
		}
	}
	return out, nil
}

func (m *memoryRepo) GetUnprocessedEvents(_ context.Context, limit int) ([]*d.OutboxEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*d.OutboxEvent
	for _, e := range m.outbox {
		if e.ProcessedAt == nil && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memoryRepo) MarkEventAsProcessed(context.Context, string) error { return nil }

func (m *memoryRepo) RunMigrations(*r.Credentials) error { return nil }

func (m *memoryRepo) Close() error { return nil }

func (m *memoryRepo) WithinTx(ctx context.Context, fn func(ctx context.Context, cmds r.CheckoutCommands) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	tx := &memorySession{repo: m}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	tx.commit()
	return nil
}

// memorySession stages writes until commit.
type memorySession struct {
	repo    *memoryRepo
	orders  []d.Order
	items   []d.OrderItem
	details []d.OrderDetails
	events  []*d.OutboxEvent
	cleared []string
}

func (s *memorySession) fail(op string) error {
	s.repo.mu.Lock()
	defer s.repo.mu.Unlock()
	if s.repo.failOn == op {
		return fmt.Errorf("%s: %w", op, errStoreDown)
	}
	return nil
}

func (s *memorySession) LockCart(_ context.Context, cartID string, expectedVersion int64) error {
	if err := s.fail("lock"); err != nil {
		return err
	}
	s.repo.mu.Lock()
	defer s.repo.mu.Unlock()
	for _, c := range s.repo.carts {
		if c.ID != cartID {
			continue
		}
		if c.Version != expectedVersion || len(c.Items) == 0 {
			return r.ErrCartChanged
		}
		return nil
	}
	return r.ErrCartChanged
}

func (s *memorySession) CreateOrder(_ context.Context, order *d.Order) error {
	if order == nil {
		return fmt.Errorf("%w: order", r.ErrNilArgument)
	}
	if err := s.fail("create"); err != nil {
		return err
	}
	s.repo.mu.Lock()
	defer s.repo.mu.Unlock()
	if _, ok := s.repo.orders[order.ID]; ok {
		return r.ErrDuplicateOrder
	}
	order.Number = s.repo.number + int64(len(s.orders)) + 1
	s.orders = append(s.orders, *order)
	return nil
}

func (s *memorySession) AddOrderItems(_ context.Context, items []d.OrderItem) error {
	if items == nil {
		return fmt.Errorf("%w: items", r.ErrNilArgument)
	}
	if err := s.fail("items"); err != nil {
		return err
	}
	s.items = append(s.items, items...)
	return nil
}

func (s *memorySession) AddOrderDetails(_ context.Context, details *d.OrderDetails) error {
	if details == nil {
		return fmt.Errorf("%w: details", r.ErrNilArgument)
	}
	if err := s.fail("details"); err != nil {
		return err
	}
	s.details = append(s.details, *details)
	return nil
}

func (s *memorySession) EnqueueEvent(_ context.Context, event *d.OutboxEvent) error {
	if event == nil {
		return fmt.Errorf("%w: event", r.ErrNilArgument)
	}
	if err := s.fail("event"); err != nil {
		return err
	}
	s.events = append(s.events, event)
	return nil
}

func (s *memorySession) ClearCart(_ context.Context, cartID string) error {
	if err := s.fail("clear"); err != nil {
		return err
	}
	s.cleared = append(s.cleared, cartID)
	return nil
}

func (s *memorySession) commit() {
	m := s.repo
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range s.orders {
		m.orders[o.ID] = o
		m.number++
	}
	for _, it := range s.items {
		m.items[it.OrderID] = append(m.items[it.OrderID], it)
	}
	for _, det := range s.details {
		m.details[det.OrderID] = det
	}
	m.outbox = append(m.outbox, s.events...)
	for _, id := range s.cleared {
		for _, c := range m.carts {
			if c.ID == id {
				c.Items = nil
				c.Version++
			}
		}
	}
}

type mockCache struct {
	mu      sync.Mutex
	data    map[string]*d.Cart
	gen     map[string]int64
	deletes int
	err     error

	// holdSet, when set, parks Set until it is closed; setDone reports each Set result.
	holdSet chan struct{}
	setDone chan error
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string]*d.Cart), gen: make(map[string]int64)}
}

func (c *mockCache) Get(_ context.Context, userID string) (*d.Cart, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	cart, ok := c.data[userID]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return cart, nil
}

func (c *mockCache) Generation(_ context.Context, userID string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return 0, c.err
	}
	return c.gen[userID], nil
}

func (c *mockCache) Set(_ context.Context, userID string, cart *d.Cart, generation int64) error {
	c.mu.Lock()
	hold, done := c.holdSet, c.setDone
	c.mu.Unlock()
	if hold != nil {
		<-hold
	}

	err := c.set(userID, cart, generation)
	if done != nil {
		done <- err
	}
	return err
}

func (c *mockCache) set(userID string, cart *d.Cart, generation int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen[userID] != generation {
		return cache.ErrStaleCart
	}
	c.data[userID] = cart
	return nil
}

func (c *mockCache) Delete(_ context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, userID)
	c.gen[userID]++
	c.deletes++
	return nil
}

func (c *mockCache) has(userID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[userID]
	return ok
}

type mockRecorder struct {
	mu       sync.Mutex
	outcomes []d.CheckoutOutcome
}

func (m *mockRecorder) ObserveCheckout(outcome d.CheckoutOutcome) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, outcome)
}

func (m *mockRecorder) count(outcome d.CheckoutOutcome) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, o := range m.outcomes {
		if o == outcome {
			n++
		}
	}
	return n
}
