package cache

import (
	"context"
	"errors"

	"github.com/madstore/madstore-api/internal/domain"
)

type CartCache interface {
	Get(ctx context.Context, code string) (*domain.Cart, error)
	Set(ctx context.Context, code string, cart *domain.Cart) error
	Delete(ctx context.Context, code string) error
}

var ErrCacheMiss = errors.New("cache miss")
