package service

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/sanketp1/ecommerce-microservices/cart-service/internal/cache"
	"github.com/sanketp1/ecommerce-microservices/cart-service/internal/domain"
	"github.com/sanketp1/ecommerce-microservices/cart-service/internal/repository"
)

type mockRepository struct {
	m             sync.RWMutex
	cart          *domain.Cart
	err           error
	setTotalCalls int

	// when release is set, GetCart signals entered and blocks until
	// release is closed
	entered chan struct{}
	release chan struct{}
}

func (m *mockRepository) GetCart(ctx context.Context, _ string) (*domain.Cart, error) {
	m.m.RLock()
	entered, release := m.entered, m.release
	m.m.RUnlock()
	if release != nil {
		entered <- struct{}{}
		<-release
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.cart == nil {
		return nil, repository.ErrCartNotFound
	}
	c := *m.cart
	c.Items = append([]domain.CartItem(nil), m.cart.Items...)
	return &c, nil
}

func (m *mockRepository) AddItem(_ context.Context, userID, productID string, quantity int) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.cart == nil {
		m.cart = &domain.Cart{ID: "cart-" + userID, UserID: userID}
	}
	for i := range m.cart.Items {
		if m.cart.Items[i].ProductID == productID {
			m.cart.Items[i].Quantity += quantity
			return nil
		}
	}
	m.cart.Items = append(m.cart.Items, domain.CartItem{ProductID: productID, Quantity: quantity})
	return nil
}

func (m *mockRepository) UpdateItemQuantity(_ context.Context, _, productID string, quantity int) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.cart == nil {
		return repository.ErrItemNotFound
	}
	for i := range m.cart.Items {
		if m.cart.Items[i].ProductID == productID {
			m.cart.Items[i].Quantity = quantity
			return nil
		}
	}
	return repository.ErrItemNotFound
}

func (m *mockRepository) RemoveItem(_ context.Context, _, productID string) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.cart == nil {
		return repository.ErrItemNotFound
	}
	for i, item := range m.cart.Items {
		if item.ProductID == productID {
			m.cart.Items = append(m.cart.Items[:i], m.cart.Items[i+1:]...)
			return nil
		}
	}
	return repository.ErrItemNotFound
}

func (m *mockRepository) SetTotal(_ context.Context, _ string, totalMinor int64) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.cart == nil {
		return repository.ErrCartNotFound
	}
	m.setTotalCalls++
	m.cart.TotalMinor = totalMinor
	return nil
}

func (m *mockRepository) ClearCart(context.Context, string) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.cart == nil {
		return repository.ErrCartNotFound
	}
	m.cart.Items = []domain.CartItem{}
	m.cart.TotalMinor = 0
	return nil
}

func (m *mockRepository) snapshot() domain.Cart {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.cart == nil {
		return domain.Cart{}
	}
	c := *m.cart
	c.Items = append([]domain.CartItem(nil), m.cart.Items...)
	return c
}

func (m *mockRepository) totalWrites() int {
	m.m.RLock()
	defer m.m.RUnlock()
	return m.setTotalCalls
}

type mockCache struct {
	m    sync.RWMutex
	cart *domain.Cart
	err  error
	// noStore drops writes, so reads always reach the repository.
	noStore bool
}

func (m *mockCache) Get(context.Context, string) (*domain.Cart, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.cart == nil {
		return nil, cache.ErrCacheMiss
	}
	return m.cart, nil
}

func (m *mockCache) Set(_ context.Context, _ string, cart *domain.Cart) error {
	m.m.Lock()
	defer m.m.Unlock()
	if !m.noStore {
		m.cart = cart
	}
	return m.err
}

func (m *mockCache) Delete(context.Context, string) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.cart = nil
	return m.err
}

func (m *mockCache) getCart() *domain.Cart {
	m.m.RLock()
	defer m.m.RUnlock()
	return m.cart
}

type mockCatalog struct {
	m        sync.RWMutex
	products map[string]*domain.Product
	calls    int
}

func newMockCatalog(products ...domain.Product) *mockCatalog {
	c := &mockCatalog{products: map[string]*domain.Product{}}
	for _, p := range products {
		c.products[string(p.ID)] = &p
	}
	return c
}

func (c *mockCatalog) GetProduct(_ context.Context, productID string) *domain.Product {
	c.m.Lock()
	defer c.m.Unlock()
	c.calls++
	p, ok := c.products[productID]
	if !ok {
		return nil
	}
	cp := *p
	return &cp
}

func (c *mockCatalog) setPrice(productID string, price float64) {
	c.m.Lock()
	defer c.m.Unlock()
	c.products[productID].Price = price
}

func (c *mockCatalog) drop(productID string) {
	c.m.Lock()
	defer c.m.Unlock()
	delete(c.products, productID)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
