package cart_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mvrcosta/backend-loja/internal/cart"
	"github.com/mvrcosta/backend-loja/internal/catalog"
	"github.com/mvrcosta/backend-loja/internal/pricing"
)

var (
	kit     = catalog.Product{ID: "kit-4s", Name: "Kit Essencial 4 Semanas", UnitPrice: 119700}
	kitPlus = catalog.Product{ID: "kit-plus", Name: "Kit Transformação Plus", UnitPrice: 159700}
)

func TestAddMergesExistingLine(t *testing.T) {
	var incremental, direct cart.Cart

	incremental.Add(kit, 2)
	incremental.Add(kit, 3)
	direct.Add(kit, 5)

	require.Len(t, incremental.Lines, 1)
	require.Equal(t, 5, incremental.Lines[0].Qty)
	require.Equal(t, direct, incremental)
}

func TestInsertionOrderIsStable(t *testing.T) {
	var c cart.Cart
	c.Add(kitPlus, 1)
	c.Add(kit, 1)
	c.Add(kitPlus, 1)

	require.Equal(t, "kit-plus", c.Lines[0].ProductID)
	require.Equal(t, "kit-4s", c.Lines[1].ProductID)
}

func TestSetQtyZeroRemovesLine(t *testing.T) {
	var c cart.Cart
	c.Add(kit, 2)
	c.SetQty(kit.ID, 0)
	require.True(t, c.IsEmpty())

	c.Add(kit, 2)
	c.SetQty(kit.ID, -1)
	require.True(t, c.IsEmpty())
}

func TestRemoveAbsentIsNoop(t *testing.T) {
	var c cart.Cart
	c.Add(kit, 1)
	c.Remove("missing")
	require.Len(t, c.Lines, 1)
}

func TestTotals(t *testing.T) {
	var c cart.Cart
	require.Equal(t, pricing.Money(0), c.Total())

	c.Add(kit, 1)
	c.Add(kitPlus, 2)
	require.Equal(t, pricing.Money(119700+2*159700), c.Total())
	require.Equal(t, 3, c.TotalItems())
}
