package payment

import "context"

// Gateway abstracts the three operations required from the upstream payment
// provider. Every operation accepts the same normalised Order shape and
// returns a structured failure (*common.AppError) distinguishing invalid
// input from an unavailable gateway.
type Gateway interface {
	CreatePreference(ctx context.Context, order Order) (Preference, error)
	CreatePixCharge(ctx context.Context, order Order) (PixCharge, error)
	ProcessCardCharge(ctx context.Context, input CardInput, order Order) (CardCharge, error)
}
