// Package identity supplies an optional payer identity used to prefill the
// shipping form. How the identity was established is outside this module; the
// provider only observes what the caller presents.
package identity

import (
	"context"
	"net/http"
	"strings"
)

// Payer is the prefill subset of an authenticated shopper.
type Payer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Provider resolves the payer identity for a request context, if any.
type Provider interface {
	Payer(ctx context.Context) (Payer, bool)
}

type ctxKey struct{}

// Headers the edge proxy forwards after authenticating the shopper.
const (
	HeaderPayerName  = "X-Payer-Name"
	HeaderPayerEmail = "X-Payer-Email"
)

// Middleware copies the forwarded identity headers into the request context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimSpace(r.Header.Get(HeaderPayerName))
		email := strings.TrimSpace(r.Header.Get(HeaderPayerEmail))
		if name != "" || email != "" {
			ctx := context.WithValue(r.Context(), ctxKey{}, Payer{Name: name, Email: email})
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}

// HeaderProvider reads the payer stored by Middleware.
type HeaderProvider struct{}

// Payer returns the forwarded identity, when present.
func (HeaderProvider) Payer(ctx context.Context) (Payer, bool) {
	p, ok := ctx.Value(ctxKey{}).(Payer)
	return p, ok
}

var _ Provider = HeaderProvider{}
