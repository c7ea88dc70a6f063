// Package payment normalises orders into gateway charges and back.
package payment

import (
	"time"

	"github.com/mvrcosta/backend-loja/internal/card"
	"github.com/mvrcosta/backend-loja/internal/pricing"
)

// Method enumerates the supported payment paths. Adding a method means adding
// a variant here and a handler for it in the gateway, not widening
// conditionals elsewhere.
type Method string

const (
	MethodPix      Method = "pix"
	MethodCard     Method = "card"
	MethodRedirect Method = "redirect"
)

// Valid reports whether the method is one of the closed set.
func (m Method) Valid() bool {
	switch m {
	case MethodPix, MethodCard, MethodRedirect:
		return true
	}
	return false
}

// Status is a charge lifecycle status.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusExpired  Status = "expired"
)

// Shipping carries delivery and contact details collected during checkout.
// Complement is the only optional field.
type Shipping struct {
	Name         string `json:"name" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Phone        string `json:"phone" validate:"required"`
	PostalCode   string `json:"postalCode" validate:"required"`
	Street       string `json:"street" validate:"required"`
	Number       string `json:"number" validate:"required"`
	Complement   string `json:"complement,omitempty"`
	Neighborhood string `json:"neighborhood" validate:"required"`
	City         string `json:"city" validate:"required"`
	State        string `json:"state" validate:"required"`
}

// Payer is the subset of shipping data a gateway needs about the buyer.
type Payer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// OrderItem is a denormalised cart line frozen into an order.
type OrderItem struct {
	ProductID string        `json:"productId"`
	Name      string        `json:"name"`
	UnitPrice pricing.Money `json:"unitPrice"`
	Qty       int           `json:"qty"`
}

// Order is the immutable snapshot handed to the gateway. It is built once per
// payment attempt; a retry constructs a new Order with a new identifier.
type Order struct {
	ID       string        `json:"id"`
	Items    []OrderItem   `json:"items"`
	Total    pricing.Money `json:"total"`
	Currency string        `json:"currency"`
	Payer    Payer         `json:"payer"`
	Shipping Shipping      `json:"shipping"`
}

// Identification is the buyer's tax id pair (e.g. CPF).
type Identification struct {
	Type   string `json:"type" validate:"required"`
	Number string `json:"number" validate:"required"`
}

// CardInput holds raw card data for the duration of a single charge attempt.
// It must never reach durable storage or logs.
type CardInput struct {
	Number         string         `json:"number" validate:"required"`
	HolderName     string         `json:"holderName" validate:"required"`
	Expiry         string         `json:"expiry" validate:"required"`
	CVV            string         `json:"cvv" validate:"required"`
	Installments   int            `json:"installments" validate:"min=1,max=12"`
	Identification Identification `json:"identification"`
}

// Preference is a gateway-hosted checkout page reference for the redirect path.
type Preference struct {
	ID                string `json:"id"`
	InitPoint         string `json:"initPoint"`
	SandboxInitPoint  string `json:"sandboxInitPoint"`
	ExternalReference string `json:"externalReference"`
}

// PixCharge is an asynchronous instant-transfer charge. QRCodeBase64 is an
// opaque image payload passed through verbatim from the gateway.
type PixCharge struct {
	ID           string        `json:"id"`
	Status       Status        `json:"status"`
	QRCode       string        `json:"qrCode"`
	QRCodeBase64 string        `json:"qrCodeBase64"`
	TicketURL    string        `json:"ticketUrl"`
	Amount       pricing.Money `json:"amount"`
	Description  string        `json:"description"`
	CreatedAt    time.Time     `json:"createdAt"`
	ExpiresAt    time.Time     `json:"expiresAt"`
}

// CardCharge is a synchronously settled card charge. Status is terminal at
// creation: approved or rejected, never pending.
type CardCharge struct {
	ID           string        `json:"id"`
	Status       Status        `json:"status"`
	Last4        string        `json:"last4"`
	Brand        card.Brand    `json:"brand"`
	Installments int           `json:"installments"`
	Amount       pricing.Money `json:"amount"`
}

// Approved reports whether the charge settled successfully.
func (c CardCharge) Approved() bool {
	return c.Status == StatusApproved
}

// Result is the tagged union over the three payment paths. Exactly one of the
// variant pointers is set, matching Method.
type Result struct {
	Method     Method      `json:"method"`
	Pix        *PixCharge  `json:"pix,omitempty"`
	Card       *CardCharge `json:"card,omitempty"`
	Preference *Preference `json:"preference,omitempty"`
}
