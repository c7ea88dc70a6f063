package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mvrcosta/backend-loja/internal/card"
	"github.com/mvrcosta/backend-loja/internal/common"
)

// qrImagePlaceholder is a 1x1 PNG. The gateway contract treats the image
// payload as opaque; downstream code passes it through verbatim.
const qrImagePlaceholder = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

// MercadoPago implements Gateway in the Mercado Pago checkout style. Responses
// are synthesised deterministically instead of calling the network; the real
// integration swaps the synthesis for API calls without changing the contract.
type MercadoPago struct {
	PublicKey   string
	AccessToken string
	BaseURL     string
	Sandbox     bool
	PixExpiry   time.Duration
	Approver    CardApprover
	Now         func() time.Time
}

func (g MercadoPago) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}

func (g MercadoPago) pixExpiry() time.Duration {
	if g.PixExpiry <= 0 {
		return 30 * time.Minute
	}
	return g.PixExpiry
}

func (g MercadoPago) host() string {
	host := strings.TrimSpace(g.BaseURL)
	if host == "" {
		if g.Sandbox {
			return "https://sandbox.mercadopago.com.br"
		}
		return "https://www.mercadopago.com.br"
	}
	return strings.TrimRight(host, "/")
}

func (g MercadoPago) checkReady() error {
	if strings.TrimSpace(g.AccessToken) == "" {
		return common.GatewayUnavailable(errors.New("access token not configured"))
	}
	return nil
}

func validateOrder(order Order) error {
	if strings.TrimSpace(order.ID) == "" {
		return common.ValidationError("order id is required", nil)
	}
	if len(order.Items) == 0 {
		return common.ValidationError("order has no items", nil)
	}
	if order.Total < 0 {
		return common.ValidationError("order total must not be negative", nil)
	}
	return nil
}

// CreatePreference opens a redirect checkout page reference. The order id is
// embedded as the external reference so reconciliation can match it later.
func (g MercadoPago) CreatePreference(_ context.Context, order Order) (Preference, error) {
	if err := g.checkReady(); err != nil {
		return Preference{}, err
	}
	if err := validateOrder(order); err != nil {
		return Preference{}, err
	}
	id := "pref_" + uuid.NewString()
	return Preference{
		ID:                id,
		InitPoint:         fmt.Sprintf("https://www.mercadopago.com.br/checkout/v1/redirect?pref_id=%s", id),
		SandboxInitPoint:  fmt.Sprintf("https://sandbox.mercadopago.com.br/checkout/v1/redirect?pref_id=%s", id),
		ExternalReference: order.ID,
	}, nil
}

// CreatePixCharge opens a pending instant-transfer charge expiring exactly
// PixExpiry after creation.
func (g MercadoPago) CreatePixCharge(_ context.Context, order Order) (PixCharge, error) {
	if err := g.checkReady(); err != nil {
		return PixCharge{}, err
	}
	if err := validateOrder(order); err != nil {
		return PixCharge{}, err
	}
	now := g.now()
	id := "pix_" + uuid.NewString()
	return PixCharge{
		ID:           id,
		Status:       StatusPending,
		QRCode:       pixPayload(order),
		QRCodeBase64: qrImagePlaceholder,
		TicketURL:    fmt.Sprintf("%s/payments/%s/ticket", g.host(), id),
		Amount:       order.Total,
		Description:  "Pedido #" + order.ID,
		CreatedAt:    now,
		ExpiresAt:    now.Add(g.pixExpiry()),
	}, nil
}

// ProcessCardCharge settles a card charge synchronously. The outcome is
// terminal: approved or rejected, never pending.
func (g MercadoPago) ProcessCardCharge(_ context.Context, input CardInput, order Order) (CardCharge, error) {
	if err := g.checkReady(); err != nil {
		return CardCharge{}, err
	}
	if err := validateOrder(order); err != nil {
		return CardCharge{}, err
	}
	if !card.LuhnValid(input.Number) {
		return CardCharge{}, common.ValidationError("invalid card number", map[string]any{"field": "number"})
	}
	if strings.TrimSpace(input.HolderName) == "" {
		return CardCharge{}, common.ValidationError("cardholder name is required", map[string]any{"field": "holderName"})
	}
	if input.Installments < 1 || input.Installments > 12 {
		return CardCharge{}, common.ValidationError("installments must be between 1 and 12", map[string]any{"field": "installments"})
	}

	status := StatusRejected
	if g.Approver != nil && g.Approver.Approve(input, order) {
		status = StatusApproved
	}
	return CardCharge{
		ID:           "card_" + uuid.NewString(),
		Status:       status,
		Last4:        card.Last4(input.Number),
		Brand:        card.Detect(input.Number),
		Installments: input.Installments,
		Amount:       order.Total,
	}, nil
}

// pixPayload renders a BR Code style copy-and-paste string for the charge.
// Real payloads are produced by the PSP; this one carries the same shape and
// the order reference.
func pixPayload(order Order) string {
	amount := fmt.Sprintf("%d.%02d", order.Total/100, order.Total%100)
	return fmt.Sprintf(
		"00020126580014br.gov.bcb.pix0136%s52040000530398654%02d%s5802BR5913LOJA VIRTUAL6009SAO PAULO62%02d05%s6304",
		uuid.NewString(), len(amount), amount, len(order.ID)+4, order.ID,
	)
}

var _ Gateway = MercadoPago{}
