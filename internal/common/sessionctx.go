package common

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type ctxKey string

const sessionIDKey ctxKey = "session/id"

// SessionHeader carries the shopper session identifier on every request.
const SessionHeader = "X-Session-Id"

// WithSessionID stores the shopper session identifier on the provided context.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey, id)
}

// SessionID extracts the shopper session identifier from the context if present.
func SessionID(ctx context.Context) (string, bool) {
	v := ctx.Value(sessionIDKey)
	if v == nil {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

// SessionMiddleware resolves the session id from the request header, minting a
// fresh one when absent, and echoes it back on the response.
func SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(SessionHeader))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(SessionHeader, id)
		next.ServeHTTP(w, r.WithContext(WithSessionID(r.Context(), id)))
	})
}
