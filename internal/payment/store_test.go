package payment

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func testChargeStore(t *testing.T) ChargeStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return ChargeStore{Client: client, TTL: time.Hour}
}

func TestChargeStoreRoundTrip(t *testing.T) {
	store := testChargeStore(t)
	ctx := context.Background()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	charge := PixCharge{
		ID:        "pix_abc",
		Status:    StatusPending,
		QRCode:    "payload",
		Amount:    113715,
		CreatedAt: now,
		ExpiresAt: now.Add(30 * time.Minute),
	}
	require.NoError(t, store.SavePix(ctx, charge))

	got, err := store.GetPix(ctx, "pix_abc")
	require.NoError(t, err)
	require.Equal(t, charge.ID, got.ID)
	require.Equal(t, StatusPending, got.Status)
	require.True(t, charge.ExpiresAt.Equal(got.ExpiresAt))
}

func TestChargeStoreMissing(t *testing.T) {
	store := testChargeStore(t)

	_, err := store.GetPix(context.Background(), "pix_missing")
	require.ErrorIs(t, err, ErrChargeNotFound)
}

func TestMarkPixExpired(t *testing.T) {
	store := testChargeStore(t)
	ctx := context.Background()

	require.NoError(t, store.SavePix(ctx, PixCharge{ID: "pix_1", Status: StatusPending}))

	expired, err := store.MarkPixExpired(ctx, "pix_1")
	require.NoError(t, err)
	require.Equal(t, StatusExpired, expired.Status)

	got, err := store.GetPix(ctx, "pix_1")
	require.NoError(t, err)
	require.Equal(t, StatusExpired, got.Status)
}

func TestMarkPixExpiredLeavesTerminalStatesAlone(t *testing.T) {
	store := testChargeStore(t)
	ctx := context.Background()

	require.NoError(t, store.SavePix(ctx, PixCharge{ID: "pix_paid", Status: StatusApproved}))

	got, err := store.MarkPixExpired(ctx, "pix_paid")
	require.NoError(t, err)
	require.Equal(t, StatusApproved, got.Status)
}
