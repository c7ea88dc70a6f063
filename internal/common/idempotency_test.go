package common

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func testIdem(t *testing.T) Idem {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return Idem{R: client, TTL: time.Minute}
}

func doRequest(handler http.Handler, sessionID, idemKey string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	if idemKey != "" {
		req.Header.Set("Idempotency-Key", idemKey)
	}
	if sessionID != "" {
		req = req.WithContext(WithSessionID(req.Context(), sessionID))
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestIdempotencyRejectsReplay(t *testing.T) {
	idem := testIdem(t)
	handler := idem.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	require.Equal(t, http.StatusOK, doRequest(handler, "s1", "k1").Code)
	require.Equal(t, http.StatusConflict, doRequest(handler, "s1", "k1").Code)
}

func TestIdempotencyScopedPerSession(t *testing.T) {
	idem := testIdem(t)
	handler := idem.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	require.Equal(t, http.StatusOK, doRequest(handler, "s1", "k1").Code)
	require.Equal(t, http.StatusOK, doRequest(handler, "s2", "k1").Code)
}

func TestIdempotencySkippedWithoutKey(t *testing.T) {
	idem := testIdem(t)
	handler := idem.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	require.Equal(t, http.StatusOK, doRequest(handler, "s1", "").Code)
	require.Equal(t, http.StatusOK, doRequest(handler, "s1", "").Code)
}
