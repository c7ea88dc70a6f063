package payment

import "math/rand"

// CardApprover decides whether a card charge settles as approved. The
// production policy is a fixed approval probability standing in for a real
// decisioning service; tests inject a deterministic policy to force either
// outcome.
type CardApprover interface {
	Approve(input CardInput, order Order) bool
}

// RateApprover approves a fixed fraction of charges.
type RateApprover struct {
	Rate float64
	// Rand overrides the random source; defaults to the shared generator.
	Rand func() float64
}

// Approve samples the configured approval rate.
func (a RateApprover) Approve(CardInput, Order) bool {
	f := a.Rand
	if f == nil {
		f = rand.Float64
	}
	return f() < a.Rate
}

// StaticApprover always returns its fixed decision.
type StaticApprover bool

// Approve returns the fixed decision.
func (a StaticApprover) Approve(CardInput, Order) bool { return bool(a) }
