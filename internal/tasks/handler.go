package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/mvrcosta/backend-loja/internal/events"
	"github.com/mvrcosta/backend-loja/internal/obs"
	"github.com/mvrcosta/backend-loja/internal/payment"
)

// PixExpiryHandler resolves pending PIX charges to expired. Charges paid or
// already expired before the task fires are left untouched.
type PixExpiryHandler struct {
	Charges payment.ChargeStore
	Events  *events.Bus
	Logger  zerolog.Logger
}

func (h *PixExpiryHandler) HandlePixExpire(ctx context.Context, t *asynq.Task) error {
	var payload PixExpirePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}

	charge, err := h.Charges.MarkPixExpired(ctx, payload.ChargeID)
	if err != nil {
		if errors.Is(err, payment.ErrChargeNotFound) {
			// The snapshot TTL elapsed; nothing left to resolve.
			h.Logger.Debug().Str("charge_id", payload.ChargeID).Msg("pix charge gone before expiry task")
			return nil
		}
		return fmt.Errorf("expire charge %s: %w", payload.ChargeID, err)
	}
	if charge.Status != payment.StatusExpired {
		return nil
	}

	if obs.PixChargesExpiredTotal != nil {
		obs.PixChargesExpiredTotal.Inc()
	}
	if h.Events != nil {
		if _, err := h.Events.Emit(ctx, events.TopicPixExpired, payload.ChargeID, map[string]any{
			"chargeId": charge.ID,
			"amount":   charge.Amount,
		}); err != nil {
			h.Logger.Error().Err(err).Str("charge_id", charge.ID).Msg("emit pix expired event")
		}
	}
	h.Logger.Info().Str("charge_id", charge.ID).Msg("pix charge expired")
	return nil
}

// NewMux wires the worker's task routes.
func NewMux(h *PixExpiryHandler) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypePixExpire, h.HandlePixExpire)
	return mux
}
