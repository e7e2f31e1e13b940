package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sanketp1/ecommerce-microservices/cart-service/internal/cache"
	"github.com/sanketp1/ecommerce-microservices/cart-service/internal/domain"
	"github.com/sanketp1/ecommerce-microservices/cart-service/internal/repository"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// ProductCatalog returns nil when a product cannot be fetched for any reason.
type ProductCatalog interface {
	GetProduct(ctx context.Context, productID string) *domain.Product
}

const (
	maxConcurrentLookups = 8
	loadTimeout          = 5 * time.Second
)

type CartService struct {
	repo    repository.CartRepository
	cache   cache.CartCache
	catalog ProductCatalog
	logger  *slog.Logger
	sfg     singleflight.Group // prevents cache stampede
}

func NewCartService(repo repository.CartRepository, cache cache.CartCache, catalog ProductCatalog, logger *slog.Logger) *CartService {
	return &CartService{
		repo:    repo,
		cache:   cache,
		catalog: catalog,
		logger:  logger,
	}
}

// GetCart returns the cart priced at current catalog prices. Items whose
// product cannot be fetched are returned without product detail and do not
// count toward the total.
func (s *CartService) GetCart(ctx context.Context, userID string) (*domain.CartView, error) {
	cart, err := s.loadCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.price(ctx, cart), nil
}

func (s *CartService) AddItem(ctx context.Context, userID, productID string, quantity int) (*domain.CartView, error) {
	if productID == "" {
		return nil, ErrInvalidProduct
	}
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	if s.catalog.GetProduct(ctx, productID) == nil {
		return nil, ErrProductNotFound
	}

	if err := s.repo.AddItem(ctx, userID, productID, quantity); err != nil {
		s.logger.ErrorContext(ctx, "repo add item failed", "user_id", userID, "product_id", productID, "error", err)
		return nil, err
	}

	s.invalidateCache(userID)
	return s.refresh(ctx, userID)
}

// UpdateQuantity sets the line quantity. A quantity of zero or less removes
// the line.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, productID string, quantity int) (*domain.CartView, error) {
	if quantity <= 0 {
		return s.RemoveItem(ctx, userID, productID)
	}

	if err := s.repo.UpdateItemQuantity(ctx, userID, productID, quantity); err != nil {
		if !errors.Is(err, repository.ErrItemNotFound) {
			s.logger.ErrorContext(ctx, "repo update item quantity failed", "user_id", userID, "product_id", productID, "error", err)
		}
		return nil, err
	}

	s.invalidateCache(userID)
	return s.refresh(ctx, userID)
}

func (s *CartService) RemoveItem(ctx context.Context, userID, productID string) (*domain.CartView, error) {
	if err := s.repo.RemoveItem(ctx, userID, productID); err != nil {
		if !errors.Is(err, repository.ErrItemNotFound) {
			s.logger.ErrorContext(ctx, "repo remove item failed", "user_id", userID, "product_id", productID, "error", err)
		}
		return nil, err
	}

	s.invalidateCache(userID)
	return s.refresh(ctx, userID)
}

func (s *CartService) ClearCart(ctx context.Context, userID string) (*domain.CartView, error) {
	if err := s.repo.ClearCart(ctx, userID); err != nil {
		if !errors.Is(err, repository.ErrCartNotFound) {
			s.logger.ErrorContext(ctx, "repo clear cart failed", "user_id", userID, "error", err)
		}
		return nil, err
	}

	s.invalidateCache(userID)
	return domain.NewCartView(nil), nil
}

// InvalidateCache drops the cached cart, e.g. after another service changed it.
func (s *CartService) InvalidateCache(ctx context.Context, userID string) error {
	return s.cache.Delete(ctx, userID)
}

func (s *CartService) loadCart(ctx context.Context, userID string) (*domain.Cart, error) {
	// The fill is shared by every caller waiting on this user, so it must
	// not die with whichever caller started it.
	ch := s.sfg.DoChan(userID, func() (interface{}, error) {
		fillCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()

		cart, err := s.cache.Get(fillCtx, userID)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.WarnContext(fillCtx, "cache get failed", "user_id", userID, "error", err)
		}

		cart, err = s.readCart(fillCtx, userID)
		if err != nil {
			return nil, err
		}
		if cart.ID == "" {
			return cart, nil
		}

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := s.cache.Set(ctx, userID, cart); err != nil {
				s.logger.Warn("cache set failed", "user_id", userID, "error", err)
			}
		}()

		return cart, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domain.Cart), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// readCart reads the stored cart, returning an empty unsaved cart for users
// who have never added anything.
func (s *CartService) readCart(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := s.repo.GetCart(ctx, userID)
	if errors.Is(err, repository.ErrCartNotFound) {
		now := time.Now()
		return &domain.Cart{UserID: userID, CreatedAt: now, UpdatedAt: now}, nil
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "repo get cart failed", "user_id", userID, "error", err)
		return nil, err
	}
	return cart, nil
}

// refresh prices the cart straight from the store, bypassing the cache, so
// a mutation's response reflects the mutation.
func (s *CartService) refresh(ctx context.Context, userID string) (*domain.CartView, error) {
	cart, err := s.readCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.price(ctx, cart), nil
}

func (s *CartService) price(ctx context.Context, cart *domain.Cart) *domain.CartView {
	lines := make([]domain.CartLine, len(cart.Items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLookups)
	for i, item := range cart.Items {
		g.Go(func() error {
			lines[i] = domain.CartLine{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Product:   s.catalog.GetProduct(gctx, item.ProductID),
			}
			return nil
		})
	}
	_ = g.Wait()

	view := domain.NewCartView(lines)
	if view.TotalMinor != cart.TotalMinor {
		s.syncTotal(ctx, cart.UserID, view.TotalMinor)
	}
	return view
}

func (s *CartService) syncTotal(ctx context.Context, userID string, totalMinor int64) {
	err := s.repo.SetTotal(ctx, userID, totalMinor)
	if err != nil {
		if !errors.Is(err, repository.ErrCartNotFound) {
			s.logger.ErrorContext(ctx, "repo set total failed", "user_id", userID, "error", err)
		}
		return
	}
	s.invalidateCache(userID)
}

func (s *CartService) invalidateCache(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		s.logger.Warn("cache invalidate failed", "user_id", userID, "error", err)
	}
}
