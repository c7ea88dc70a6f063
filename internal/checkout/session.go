package checkout

import (
	"sync"

	"github.com/mvrcosta/backend-loja/internal/payment"
)

// Session is the mutable checkout state for one shopper session. All access
// goes through its mutex; the lock is released while a gateway call is in
// flight so cancellation can race it, with activeOrderID as the tiebreaker.
type Session struct {
	mu sync.Mutex

	ID          string
	State       State
	Shipping    payment.Shipping
	HasShipping bool
	Method      payment.Method

	// activeOrderID identifies the order attempt whose gateway response may
	// still be applied. Responses for any other order id are stale.
	activeOrderID string
	inFlight      bool

	Result *payment.Result
}

// Registry holds checkout sessions in memory, keyed by session id. Sessions
// are created on first touch in the initial state.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Get returns the session for the id, creating it when absent.
func (r *Registry) Get(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		s = &Session{ID: id, State: StateCollectingShipping}
		r.sessions[id] = s
	}
	return s
}

// Drop forgets the session. The next Get starts a fresh checkout.
func (r *Registry) Drop(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}
