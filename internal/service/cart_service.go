package service

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/madstore/madstore-api/internal/cache"
	"github.com/madstore/madstore-api/internal/domain"
	"github.com/madstore/madstore-api/internal/repository"
)

type CartService struct {
	repo     repository.CartRepository
	products repository.ProductRepository
	cache    cache.CartCache
	sfg      singleflight.Group // Prevents cache stampede
}

func NewCartService(repo repository.CartRepository, products repository.ProductRepository, cartCache cache.CartCache) *CartService {
	return &CartService{
		repo:     repo,
		products: products,
		cache:    cartCache,
	}
}

// GetCart returns the cart for a code, creating an empty one on first
// reference. Reads go through the cache; concurrent misses for the same
// code collapse into one repository fetch.
func (s *CartService) GetCart(ctx context.Context, code string) (*domain.Cart, error) {
	v, err, _ := s.sfg.Do(code, func() (interface{}, error) {
		cart, err := s.cache.Get(ctx, code)
		if err == nil {
			return cart, nil
		}

		if !errors.Is(err, cache.ErrCacheMiss) {
			logger.Error().Err(err).Str("cart_code", code).Msg("cart cache get error")
		}

		cart, errGet := s.repo.GetOrCreateCart(ctx, code)
		if errGet != nil {
			return nil, errGet
		}

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if errSet := s.cache.Set(ctx, code, cart); errSet != nil {
				logger.Error().Err(errSet).Str("cart_code", code).Msg("cart cache set error")
			}
		}()

		return cart, nil
	})

	if err != nil {
		return nil, err
	}

	return v.(*domain.Cart), nil
}

func (s *CartService) AddItem(ctx context.Context, code string, productID int64) (*domain.Cart, error) {
	if _, err := s.products.GetProductByID(ctx, productID); err != nil {
		return nil, err
	}

	cart, err := s.repo.AddCartItem(ctx, code, productID)
	if err != nil {
		return nil, err
	}

	s.invalidate(code)
	return cart, nil
}

func (s *CartService) UpdateItemQuantity(ctx context.Context, itemID int64, quantity int) error {
	code, err := s.repo.UpdateCartItemQuantity(ctx, itemID, quantity)
	if err != nil {
		return err
	}

	s.invalidate(code)
	return nil
}

func (s *CartService) RemoveItem(ctx context.Context, itemID int64) error {
	code, err := s.repo.RemoveCartItem(ctx, itemID)
	if err != nil {
		return err
	}

	s.invalidate(code)
	return nil
}

func (s *CartService) invalidate(code string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, code); err != nil {
		logger.Error().Err(err).Str("cart_code", code).Msg("cart cache invalidate error")
	}
}
