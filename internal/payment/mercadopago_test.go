package payment

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mvrcosta/backend-loja/internal/card"
	"github.com/mvrcosta/backend-loja/internal/common"
)

func testOrder() Order {
	return Order{
		ID:       "order-1",
		Items:    []OrderItem{{ProductID: "kit-4s", Name: "Kit 4 Sabores", UnitPrice: 119700, Qty: 1}},
		Total:    119700,
		Currency: "BRL",
		Payer:    Payer{Name: "Maria Silva", Email: "maria@example.com", Phone: "11999990000"},
	}
}

func testCard() CardInput {
	return CardInput{
		Number:       "4539 1488 0343 6467",
		HolderName:   "MARIA SILVA",
		Expiry:       "12/29",
		CVV:          "123",
		Installments: 3,
	}
}

func TestCreatePixChargeExpiresInThirtyMinutes(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	g := MercadoPago{AccessToken: "tok", Now: func() time.Time { return now }}

	charge, err := g.CreatePixCharge(context.Background(), testOrder())
	require.NoError(t, err)
	require.Equal(t, StatusPending, charge.Status)
	require.Equal(t, now, charge.CreatedAt)
	require.Equal(t, now.Add(30*time.Minute), charge.ExpiresAt)
	require.Equal(t, int64(119700), int64(charge.Amount))
	require.Equal(t, "Pedido #order-1", charge.Description)
	require.NotEmpty(t, charge.QRCode)
	require.NotEmpty(t, charge.QRCodeBase64)
	require.True(t, strings.HasPrefix(charge.ID, "pix_"))
}

func TestCreatePixChargeHonoursConfiguredExpiry(t *testing.T) {
	now := time.Now()
	g := MercadoPago{AccessToken: "tok", PixExpiry: 5 * time.Minute, Now: func() time.Time { return now }}

	charge, err := g.CreatePixCharge(context.Background(), testOrder())
	require.NoError(t, err)
	require.Equal(t, now.Add(5*time.Minute), charge.ExpiresAt)
}

func TestCreatePreferenceEmbedsOrderReference(t *testing.T) {
	g := MercadoPago{AccessToken: "tok"}

	pref, err := g.CreatePreference(context.Background(), testOrder())
	require.NoError(t, err)
	require.Equal(t, "order-1", pref.ExternalReference)
	require.Contains(t, pref.InitPoint, pref.ID)
	require.Contains(t, pref.SandboxInitPoint, pref.ID)
}

func TestGatewayUnavailableWithoutAccessToken(t *testing.T) {
	g := MercadoPago{}

	_, err := g.CreatePixCharge(context.Background(), testOrder())
	require.Equal(t, common.CodeGatewayUnavailable, common.CodeOf(err))

	_, err = g.CreatePreference(context.Background(), testOrder())
	require.Equal(t, common.CodeGatewayUnavailable, common.CodeOf(err))

	_, err = g.ProcessCardCharge(context.Background(), testCard(), testOrder())
	require.Equal(t, common.CodeGatewayUnavailable, common.CodeOf(err))
}

func TestProcessCardChargeApproved(t *testing.T) {
	g := MercadoPago{AccessToken: "tok", Approver: StaticApprover(true)}

	charge, err := g.ProcessCardCharge(context.Background(), testCard(), testOrder())
	require.NoError(t, err)
	require.Equal(t, StatusApproved, charge.Status)
	require.True(t, charge.Approved())
	require.Equal(t, "6467", charge.Last4)
	require.Equal(t, card.Visa, charge.Brand)
	require.Equal(t, 3, charge.Installments)
	require.Equal(t, int64(119700), int64(charge.Amount))
}

func TestProcessCardChargeRejected(t *testing.T) {
	g := MercadoPago{AccessToken: "tok", Approver: StaticApprover(false)}

	charge, err := g.ProcessCardCharge(context.Background(), testCard(), testOrder())
	require.NoError(t, err)
	require.Equal(t, StatusRejected, charge.Status)
	require.False(t, charge.Approved())
}

func TestProcessCardChargeValidation(t *testing.T) {
	g := MercadoPago{AccessToken: "tok", Approver: StaticApprover(true)}

	bad := testCard()
	bad.Number = "4539148803436468"
	_, err := g.ProcessCardCharge(context.Background(), bad, testOrder())
	require.Equal(t, common.CodeValidation, common.CodeOf(err))

	noHolder := testCard()
	noHolder.HolderName = "  "
	_, err = g.ProcessCardCharge(context.Background(), noHolder, testOrder())
	require.Equal(t, common.CodeValidation, common.CodeOf(err))

	tooMany := testCard()
	tooMany.Installments = 13
	_, err = g.ProcessCardCharge(context.Background(), tooMany, testOrder())
	require.Equal(t, common.CodeValidation, common.CodeOf(err))
}

func TestValidateOrderRejectsEmptyOrders(t *testing.T) {
	g := MercadoPago{AccessToken: "tok"}

	empty := testOrder()
	empty.Items = nil
	_, err := g.CreatePixCharge(context.Background(), empty)
	require.Equal(t, common.CodeValidation, common.CodeOf(err))

	noID := testOrder()
	noID.ID = ""
	_, err = g.CreatePreference(context.Background(), noID)
	require.Equal(t, common.CodeValidation, common.CodeOf(err))
}
