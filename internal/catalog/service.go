package catalog

import (
	"context"
	"errors"
)

const listCacheKey = "catalog:products"

// Service exposes catalog reads with an optional read-through cache.
type Service struct {
	Source Source
	Cache  *Cache
}

// List returns the full product list, serving from cache when possible.
func (s *Service) List(ctx context.Context) ([]Product, error) {
	if s == nil || s.Source == nil {
		return nil, errors.New("catalog service not configured")
	}
	var cached []Product
	if hit, err := s.Cache.GetJSON(ctx, listCacheKey, &cached); err == nil && hit {
		return cached, nil
	}
	products, err := s.Source.List(ctx)
	if err != nil {
		return nil, err
	}
	_ = s.Cache.SetJSON(ctx, listCacheKey, products)
	return products, nil
}

// Get returns a single product by id, serving from cache when possible.
func (s *Service) Get(ctx context.Context, id string) (Product, error) {
	if s == nil || s.Source == nil {
		return Product{}, errors.New("catalog service not configured")
	}
	var cached Product
	key := "catalog:product:" + id
	if hit, err := s.Cache.GetJSON(ctx, key, &cached); err == nil && hit {
		return cached, nil
	}
	product, err := s.Source.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	_ = s.Cache.SetJSON(ctx, key, product)
	return product, nil
}
