package handler

import (
	"context"
	"sync"
	"time"

	"zayana-be/internal/auth"
	"zayana-be/internal/cart"
	"zayana-be/internal/category"
	"zayana-be/internal/order"
	"zayana-be/internal/product"
	"zayana-be/internal/user"

	"github.com/stretchr/testify/mock"
)

type MockUsers struct{ mock.Mock }

func (m *MockUsers) Register(ctx context.Context, email, password string) (*user.AuthResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.AuthResult), args.Error(1)
}

func (m *MockUsers) Login(ctx context.Context, email, password string) (*user.AuthResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.AuthResult), args.Error(1)
}

func (m *MockUsers) Get(ctx context.Context, principalID, userID int64) (*user.User, error) {
	args := m.Called(ctx, principalID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUsers) Update(ctx context.Context, principalID, userID int64, in user.UpdateInput) (*user.User, error) {
	args := m.Called(ctx, principalID, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUsers) Delete(ctx context.Context, principalID, userID int64) error {
	return m.Called(ctx, principalID, userID).Error(0)
}

type MockCategories struct{ mock.Mock }

func (m *MockCategories) List(ctx context.Context) ([]*category.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*category.Category), args.Error(1)
}

func (m *MockCategories) GetByID(ctx context.Context, id int64) (*category.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*category.Category), args.Error(1)
}

func (m *MockCategories) Create(ctx context.Context, name string) (*category.Category, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*category.Category), args.Error(1)
}

func (m *MockCategories) Update(ctx context.Context, id int64, name string) (*category.Category, error) {
	args := m.Called(ctx, id, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*category.Category), args.Error(1)
}

func (m *MockCategories) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockProducts struct{ mock.Mock }

func (m *MockProducts) List(ctx context.Context, opts product.ListOptions) (*product.ListResult, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.ListResult), args.Error(1)
}

func (m *MockProducts) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProducts) Create(ctx context.Context, in product.CreateInput) (*product.Product, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProducts) Update(ctx context.Context, id int64, in product.UpdateInput) (*product.Product, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProducts) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockCarts struct{ mock.Mock }

func (m *MockCarts) GetOrCreateCart(ctx context.Context, userID int64) (*cart.Cart, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Cart), args.Error(1)
}

func (m *MockCarts) GetCartDetail(ctx context.Context, userID int64) (*cart.Detail, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Detail), args.Error(1)
}

func (m *MockCarts) AddItem(ctx context.Context, userID, productID int64, quantity int) (*cart.Detail, error) {
	args := m.Called(ctx, userID, productID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Detail), args.Error(1)
}

func (m *MockCarts) RemoveItem(ctx context.Context, userID, productID int64, quantity *int) (*cart.Detail, error) {
	args := m.Called(ctx, userID, productID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Detail), args.Error(1)
}

func (m *MockCarts) Clear(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockCarts) RemoveOrdered(ctx context.Context, userID int64, lines []cart.Line) error {
	return m.Called(ctx, userID, lines).Error(0)
}

type MockOrders struct{ mock.Mock }

func (m *MockOrders) CreateOrder(ctx context.Context, userID int64) (*order.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrders) ListOrders(ctx context.Context, userID int64) ([]*order.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrders) GetOrder(ctx context.Context, userID, orderID int64) (*order.Order, error) {
	args := m.Called(ctx, userID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrders) UpdateStatus(ctx context.Context, userID, orderID int64, status order.Status) (*order.Order, error) {
	args := m.Called(ctx, userID, orderID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

// tokenStub accepts "user-<id>" style tokens mapped in claims.
type tokenStub map[string]int64

func (s tokenStub) Parse(token string) (*auth.Claims, error) {
	id, ok := s[token]
	if !ok {
		return nil, auth.ErrInvalidToken
	}
	return &auth.Claims{UserID: id}, nil
}

type memStore struct {
	mu   sync.Mutex
	keys map[string]bool
}

func (s *memStore) Reserve(_ context.Context, key string, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.keys == nil {
		s.keys = map[string]bool{}
	}
	if s.keys[key] {
		return false, nil
	}
	s.keys[key] = true
	return true, nil
}

func (s *memStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
	return nil
}
