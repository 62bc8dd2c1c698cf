package checkout

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/just-smsm/storefront/internal/cart"
	"github.com/just-smsm/storefront/internal/catalog"
	"github.com/just-smsm/storefront/internal/order"
	"github.com/just-smsm/storefront/internal/payment"
)

type mockCartStore struct {
	m        sync.Mutex
	cart     *cart.Cart
	getErr   error
	clearErr error
	cleared  int
}

func (m *mockCartStore) CurrentCart(context.Context, string) (*cart.Cart, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.cart, nil
}

func (m *mockCartStore) Clear(_ context.Context, email string) (*cart.Cart, error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.cleared++
	if m.clearErr != nil {
		return nil, m.clearErr
	}
	m.cart = &cart.Cart{Email: email}
	return m.cart, nil
}

func (m *mockCartStore) clearedTimes() int {
	m.m.Lock()
	defer m.m.Unlock()
	return m.cleared
}

type mockLedger struct {
	m         sync.Mutex
	created   *order.Order
	createErr error

	failedID     uuid.UUID
	failedReason string
	failErr      error

	refsID     uuid.UUID
	refsIntent *string
	refsSecret string
	refsErr    error
}

func (m *mockLedger) Create(_ context.Context, o *order.Order) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	o.Status = order.StatusAwaitingPayment
	cp := *o
	m.created = &cp
	return nil
}

func (m *mockLedger) MarkFailed(_ context.Context, id uuid.UUID, reason string) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.failedID = id
	m.failedReason = reason
	return m.failErr
}

func (m *mockLedger) RecordPaymentRefs(_ context.Context, id uuid.UUID, paymentIntentID *string, clientSecret string) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.refsID = id
	m.refsIntent = paymentIntentID
	m.refsSecret = clientSecret
	return m.refsErr
}

type mockGateway struct {
	m sync.Mutex

	session     *payment.Session
	createErrs  []error // consumed one per CreateSession call
	createCalls int

	intentID  string
	intentErr error
}

func (m *mockGateway) CreateSession(_ context.Context, params payment.SessionParams) (*payment.Session, error) {
	m.m.Lock()
	defer m.m.Unlock()
	call := m.createCalls
	m.createCalls++
	if call < len(m.createErrs) && m.createErrs[call] != nil {
		return nil, m.createErrs[call]
	}
	if m.session != nil {
		return m.session, nil
	}
	return &payment.Session{ID: "cs_test", URL: "https://gateway.test/pay/cs_test"}, nil
}

func (m *mockGateway) PaymentIntent(context.Context, string) (string, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.intentErr != nil {
		return "", m.intentErr
	}
	return m.intentID, nil
}

func (m *mockGateway) calls() int {
	m.m.Lock()
	defer m.m.Unlock()
	return m.createCalls
}

// mockStock records decrements and restocks per product.
type mockStock struct {
	m           sync.Mutex
	stock       map[int64]int
	failFor     int64 // product id whose decrement fails
	decremented map[int64]int
	restocked   map[int64]int
}

func newMockStock(stock map[int64]int) *mockStock {
	return &mockStock{
		stock:       stock,
		decremented: make(map[int64]int),
		restocked:   make(map[int64]int),
	}
}

func (m *mockStock) ProductInfo(context.Context, int64) (*catalog.Product, error) {
	panic("not used in checkout")
}

func (m *mockStock) DecrementStock(_ context.Context, productID int64, quantity int) error {
	m.m.Lock()
	defer m.m.Unlock()
	if productID == m.failFor {
		return catalog.ErrInsufficientStock
	}
	if m.stock[productID] < quantity {
		return catalog.ErrInsufficientStock
	}
	m.stock[productID] -= quantity
	m.decremented[productID] += quantity
	return nil
}

func (m *mockStock) Restock(_ context.Context, productID int64, quantity int) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.stock[productID] += quantity
	m.restocked[productID] += quantity
	return nil
}

type mockUsers struct {
	known map[string]bool
	err   error
}

func (m *mockUsers) Exists(_ context.Context, email string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.known[email], nil
}
