package tasks

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/mvrcosta/backend-loja/internal/events"
	"github.com/mvrcosta/backend-loja/internal/payment"
)

type memEventStore struct {
	mu     sync.Mutex
	events []events.Event
}

func (s *memEventStore) Append(_ context.Context, event events.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func testHandler(t *testing.T) (*PixExpiryHandler, *memEventStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := &memEventStore{}
	return &PixExpiryHandler{
		Charges: payment.ChargeStore{Client: client, TTL: time.Hour},
		Events:  &events.Bus{Store: store},
		Logger:  zerolog.Nop(),
	}, store
}

func TestHandlePixExpireResolvesPendingCharge(t *testing.T) {
	h, store := testHandler(t)
	ctx := context.Background()

	require.NoError(t, h.Charges.SavePix(ctx, payment.PixCharge{ID: "pix_1", Status: payment.StatusPending}))

	task, err := NewPixExpireTask("pix_1")
	require.NoError(t, err)
	require.NoError(t, h.HandlePixExpire(ctx, task))

	got, err := h.Charges.GetPix(ctx, "pix_1")
	require.NoError(t, err)
	require.Equal(t, payment.StatusExpired, got.Status)

	require.Len(t, store.events, 1)
	require.Equal(t, events.TopicPixExpired, store.events[0].Topic)
}

func TestHandlePixExpireSkipsSettledCharge(t *testing.T) {
	h, store := testHandler(t)
	ctx := context.Background()

	require.NoError(t, h.Charges.SavePix(ctx, payment.PixCharge{ID: "pix_paid", Status: payment.StatusApproved}))

	task, err := NewPixExpireTask("pix_paid")
	require.NoError(t, err)
	require.NoError(t, h.HandlePixExpire(ctx, task))

	got, err := h.Charges.GetPix(ctx, "pix_paid")
	require.NoError(t, err)
	require.Equal(t, payment.StatusApproved, got.Status)
	require.Empty(t, store.events)
}

func TestHandlePixExpireMissingChargeIsNotRetried(t *testing.T) {
	h, _ := testHandler(t)

	task, err := NewPixExpireTask("pix_gone")
	require.NoError(t, err)
	require.NoError(t, h.HandlePixExpire(context.Background(), task))
}

func TestHandlePixExpireBadPayloadSkipsRetry(t *testing.T) {
	h, _ := testHandler(t)

	err := h.HandlePixExpire(context.Background(), asynq.NewTask(TypePixExpire, []byte("{")))
	require.ErrorIs(t, err, asynq.SkipRetry)
}
