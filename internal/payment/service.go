package payment

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/mvrcosta/backend-loja/internal/events"
	"github.com/mvrcosta/backend-loja/internal/obs"
)

// ExpiryScheduler schedules the background resolution of a PIX charge once it
// passes its expiry instant.
type ExpiryScheduler interface {
	SchedulePixExpiry(ctx context.Context, chargeID string, at time.Time) error
}

// Service wraps the gateway with charge persistence, expiry scheduling and
// event emission. It satisfies Gateway so callers depend on one contract.
type Service struct {
	Gateway   Gateway
	Charges   ChargeStore
	Scheduler ExpiryScheduler
	Events    *events.Bus
	Logger    zerolog.Logger
}

// CreatePreference opens a redirect preference and records the event.
func (s *Service) CreatePreference(ctx context.Context, order Order) (Preference, error) {
	if s == nil || s.Gateway == nil {
		return Preference{}, errors.New("payment service not configured")
	}
	pref, err := s.Gateway.CreatePreference(ctx, order)
	if err != nil {
		s.count(MethodRedirect, "error")
		return Preference{}, err
	}
	s.count(MethodRedirect, "created")
	s.emit(ctx, events.TopicPreferenceCreated, order.ID, map[string]any{
		"preferenceId": pref.ID,
		"orderId":      order.ID,
	})
	return pref, nil
}

// CreatePixCharge opens a PIX charge, persists it and schedules its expiry.
func (s *Service) CreatePixCharge(ctx context.Context, order Order) (PixCharge, error) {
	if s == nil || s.Gateway == nil {
		return PixCharge{}, errors.New("payment service not configured")
	}
	charge, err := s.Gateway.CreatePixCharge(ctx, order)
	if err != nil {
		s.count(MethodPix, "error")
		return PixCharge{}, err
	}
	if err := s.Charges.SavePix(ctx, charge); err != nil {
		s.Logger.Error().Err(err).Str("charge_id", charge.ID).Msg("persist pix charge")
	}
	if s.Scheduler != nil {
		if err := s.Scheduler.SchedulePixExpiry(ctx, charge.ID, charge.ExpiresAt); err != nil {
			s.Logger.Error().Err(err).Str("charge_id", charge.ID).Msg("schedule pix expiry")
		}
	}
	s.count(MethodPix, string(charge.Status))
	s.emit(ctx, events.TopicPixCreated, order.ID, map[string]any{
		"chargeId":  charge.ID,
		"orderId":   order.ID,
		"amount":    charge.Amount,
		"expiresAt": charge.ExpiresAt,
	})
	return charge, nil
}

// ProcessCardCharge settles a card charge and records the outcome. The event
// payload carries only non-sensitive fields.
func (s *Service) ProcessCardCharge(ctx context.Context, input CardInput, order Order) (CardCharge, error) {
	if s == nil || s.Gateway == nil {
		return CardCharge{}, errors.New("payment service not configured")
	}
	charge, err := s.Gateway.ProcessCardCharge(ctx, input, order)
	if err != nil {
		s.count(MethodCard, "error")
		return CardCharge{}, err
	}
	s.count(MethodCard, string(charge.Status))
	topic := events.TopicCardRejected
	if charge.Approved() {
		topic = events.TopicCardApproved
	}
	s.emit(ctx, topic, order.ID, map[string]any{
		"chargeId":     charge.ID,
		"orderId":      order.ID,
		"last4":        charge.Last4,
		"brand":        charge.Brand,
		"installments": charge.Installments,
		"amount":       charge.Amount,
	})
	return charge, nil
}

// GetPixStatus loads the current state of a stored PIX charge.
func (s *Service) GetPixStatus(ctx context.Context, chargeID string) (PixCharge, error) {
	if s == nil {
		return PixCharge{}, errors.New("payment service not configured")
	}
	return s.Charges.GetPix(ctx, chargeID)
}

func (s *Service) emit(ctx context.Context, topic, aggregateID string, payload any) {
	if s.Events == nil {
		return
	}
	if _, err := s.Events.Emit(ctx, topic, aggregateID, payload); err != nil {
		s.Logger.Error().Err(err).Str("topic", topic).Msg("emit event")
	}
}

func (s *Service) count(method Method, result string) {
	if obs.PaymentChargeTotal != nil {
		obs.PaymentChargeTotal.WithLabelValues(string(method), result).Inc()
	}
}

var _ Gateway = (*Service)(nil)
