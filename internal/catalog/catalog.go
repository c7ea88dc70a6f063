// Package catalog supplies read-only product records to the cart and
// checkout flows.
package catalog

import (
	"context"
	"errors"

	"github.com/mvrcosta/backend-loja/internal/pricing"
)

// ErrNotFound indicates the requested product does not exist.
var ErrNotFound = errors.New("catalog: product not found")

// Product is a fixed-catalog item. Display metadata is carried through to the
// storefront but ignored by pricing.
type Product struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Subtitle    string        `json:"subtitle,omitempty"`
	Description string        `json:"description,omitempty"`
	UnitPrice   pricing.Money `json:"unitPrice"`
	Features    []string      `json:"features,omitempty"`
	Badge       string        `json:"badge,omitempty"`
}

// Source provides product records.
type Source interface {
	List(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id string) (Product, error)
}

// StaticSource serves a fixed in-memory product list in insertion order.
type StaticSource struct {
	Products []Product
}

// List returns all products.
func (s StaticSource) List(_ context.Context) ([]Product, error) {
	out := make([]Product, len(s.Products))
	copy(out, s.Products)
	return out, nil
}

// Get returns the product with the given id.
func (s StaticSource) Get(_ context.Context, id string) (Product, error) {
	for _, p := range s.Products {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}

// DefaultProducts seeds the demo storefront catalog.
func DefaultProducts() []Product {
	return []Product{
		{
			ID:          "kit-4s",
			Name:        "Kit Essencial 4 Semanas",
			Subtitle:    "Ideal para iniciantes",
			Description: "Programa completo de 4 semanas com acompanhamento.",
			UnitPrice:   119700,
			Features:    []string{"4 semanas", "Frete grátis"},
		},
		{
			ID:          "kit-plus",
			Name:        "Kit Transformação Plus",
			Subtitle:    "Pacote premium",
			Description: "Versão premium para resultados mais rápidos.",
			UnitPrice:   159700,
			Features:    []string{"4 semanas", "Premium", "Frete grátis"},
			Badge:       "MAIS VENDIDO",
		},
	}
}
