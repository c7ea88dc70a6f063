package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrChargeNotFound indicates the requested charge is unknown or expired out
// of the store.
var ErrChargeNotFound = errors.New("payment: charge not found")

// ChargeStore persists PIX charge state so the status endpoint and the expiry
// worker can observe it after the checkout response is gone. Card charges are
// settled synchronously and never stored.
type ChargeStore struct {
	Client *redis.Client
	TTL    time.Duration
}

func (s ChargeStore) ttl() time.Duration {
	if s.TTL <= 0 {
		return 24 * time.Hour
	}
	return s.TTL
}

func chargeKey(id string) string {
	return "charge:pix:" + id
}

// SavePix stores the charge snapshot.
func (s ChargeStore) SavePix(ctx context.Context, charge PixCharge) error {
	if s.Client == nil {
		return errors.New("payment: redis client not configured")
	}
	blob, err := json.Marshal(charge)
	if err != nil {
		return fmt.Errorf("encode charge: %w", err)
	}
	return s.Client.Set(ctx, chargeKey(charge.ID), blob, s.ttl()).Err()
}

// GetPix loads a charge by id.
func (s ChargeStore) GetPix(ctx context.Context, id string) (PixCharge, error) {
	if s.Client == nil {
		return PixCharge{}, errors.New("payment: redis client not configured")
	}
	blob, err := s.Client.Get(ctx, chargeKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return PixCharge{}, ErrChargeNotFound
		}
		return PixCharge{}, err
	}
	var charge PixCharge
	if err := json.Unmarshal(blob, &charge); err != nil {
		return PixCharge{}, fmt.Errorf("decode charge: %w", err)
	}
	return charge, nil
}

// MarkPixExpired transitions a pending charge to expired. Charges already in
// a terminal state are returned unchanged.
func (s ChargeStore) MarkPixExpired(ctx context.Context, id string) (PixCharge, error) {
	charge, err := s.GetPix(ctx, id)
	if err != nil {
		return PixCharge{}, err
	}
	if charge.Status != StatusPending {
		return charge, nil
	}
	charge.Status = StatusExpired
	if err := s.SavePix(ctx, charge); err != nil {
		return PixCharge{}, err
	}
	return charge, nil
}
