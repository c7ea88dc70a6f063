// Package checkout drives the multi-step checkout flow as an explicit state
// machine over per-session state.
package checkout

import "github.com/mvrcosta/backend-loja/internal/obs"

// State is a checkout phase. Transitions never skip states; Completed is only
// reached through a gateway response.
type State string

const (
	StateCollectingShipping State = "collecting_shipping"
	StateSelectingPayment   State = "selecting_payment"
	StateAwaitingGateway    State = "awaiting_gateway_result"
	StateCompleted          State = "completed"
)

// transition moves the session forward and records the edge. The caller holds
// the session lock.
func (s *Session) transition(to State) {
	from := s.State
	s.State = to
	if obs.CheckoutTransitionTotal != nil {
		obs.CheckoutTransitionTotal.WithLabelValues(string(from), string(to)).Inc()
	}
}
