// Package cart owns the shopping cart aggregate and its snapshot persistence.
package cart

import (
	"github.com/mvrcosta/backend-loja/internal/catalog"
	"github.com/mvrcosta/backend-loja/internal/pricing"
)

// Line is a single cart entry. Product fields are denormalised at add time so
// display and pricing do not depend on catalog availability.
type Line struct {
	ProductID string        `json:"productId"`
	Name      string        `json:"name"`
	UnitPrice pricing.Money `json:"unitPrice"`
	Qty       int           `json:"qty"`
}

// Subtotal is the line total.
func (l Line) Subtotal() pricing.Money {
	total, err := pricing.LineTotal(l.UnitPrice, l.Qty)
	if err != nil {
		return 0
	}
	return total
}

// Cart is an ordered sequence of lines. Order is the order products were first
// added; it carries no meaning beyond stable display.
type Cart struct {
	Lines []Line `json:"lines"`
}

// Add merges qty into an existing line for the product or appends a new one.
// Non-positive quantities are ignored.
func (c *Cart) Add(p catalog.Product, qty int) {
	if qty <= 0 {
		return
	}
	for i := range c.Lines {
		if c.Lines[i].ProductID == p.ID {
			c.Lines[i].Qty += qty
			return
		}
	}
	c.Lines = append(c.Lines, Line{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.UnitPrice,
		Qty:       qty,
	})
}

// Remove drops the line for the product. Absent ids are a no-op.
func (c *Cart) Remove(productID string) {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return
		}
	}
}

// SetQty replaces the quantity for the product's line. A quantity of zero or
// less removes the line.
func (c *Cart) SetQty(productID string, qty int) {
	if qty <= 0 {
		c.Remove(productID)
		return
	}
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines[i].Qty = qty
			return
		}
	}
}

// Clear removes every line.
func (c *Cart) Clear() {
	c.Lines = nil
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// TotalItems sums quantities across lines.
func (c *Cart) TotalItems() int {
	total := 0
	for _, l := range c.Lines {
		total += l.Qty
	}
	return total
}

// Total computes the cart total in minor units.
func (c *Cart) Total() pricing.Money {
	items := make([]pricing.Item, 0, len(c.Lines))
	for _, l := range c.Lines {
		items = append(items, pricing.Item{Qty: l.Qty, UnitPrice: l.UnitPrice})
	}
	return pricing.CartTotal(items)
}
