package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mvrcosta/backend-loja/internal/catalog"
	"github.com/mvrcosta/backend-loja/internal/obs"
)

// ErrInvalidInput is returned when the provided payload is invalid.
var ErrInvalidInput = errors.New("cart: invalid input")

// Service encapsulates cart operations for a session. Every mutation is
// followed by a snapshot save; a missing or corrupt snapshot on load is
// recovered as an empty cart.
type Service struct {
	Store   Store
	Catalog catalog.Source
	Logger  zerolog.Logger
}

func snapshotKey(sessionID string) string {
	return "cart:" + sessionID
}

// Load returns the session's cart. Unreadable snapshots yield an empty cart,
// never an error.
func (s *Service) Load(ctx context.Context, sessionID string) (Cart, error) {
	if s == nil || s.Store == nil {
		return Cart{}, errors.New("cart service not configured")
	}
	if sessionID == "" {
		return Cart{}, fmt.Errorf("session id required: %w", ErrInvalidInput)
	}
	blob, err := s.Store.Get(ctx, snapshotKey(sessionID))
	if err != nil {
		if !errors.Is(err, ErrSnapshotMissing) {
			s.Logger.Warn().Err(err).Str("session_id", sessionID).Msg("cart snapshot unreadable, starting empty")
		}
		return Cart{}, nil
	}
	var c Cart
	if err := json.Unmarshal(blob, &c); err != nil {
		s.Logger.Warn().Err(err).Str("session_id", sessionID).Msg("cart snapshot corrupt, starting empty")
		return Cart{}, nil
	}
	return c, nil
}

func (s *Service) save(ctx context.Context, sessionID string, c Cart) error {
	blob, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode cart snapshot: %w", err)
	}
	if err := s.Store.Set(ctx, snapshotKey(sessionID), blob); err != nil {
		return fmt.Errorf("store cart snapshot: %w", err)
	}
	return nil
}

// AddItem merges the product into the cart, incrementing an existing line or
// appending a new one, and persists the snapshot.
func (s *Service) AddItem(ctx context.Context, sessionID, productID string, qty int) (Cart, error) {
	if s == nil || s.Store == nil || s.Catalog == nil {
		return Cart{}, errors.New("cart service not configured")
	}
	if qty <= 0 {
		return Cart{}, fmt.Errorf("qty must be positive: %w", ErrInvalidInput)
	}
	product, err := s.Catalog.Get(ctx, productID)
	if err != nil {
		return Cart{}, fmt.Errorf("resolve product: %w", err)
	}
	c, err := s.Load(ctx, sessionID)
	if err != nil {
		return Cart{}, err
	}
	c.Add(product, qty)
	if err := s.save(ctx, sessionID, c); err != nil {
		return Cart{}, err
	}
	s.countMutation("add")
	return c, nil
}

// UpdateQty sets the quantity for a line, removing it when qty <= 0.
func (s *Service) UpdateQty(ctx context.Context, sessionID, productID string, qty int) (Cart, error) {
	if s == nil || s.Store == nil {
		return Cart{}, errors.New("cart service not configured")
	}
	c, err := s.Load(ctx, sessionID)
	if err != nil {
		return Cart{}, err
	}
	c.SetQty(productID, qty)
	if err := s.save(ctx, sessionID, c); err != nil {
		return Cart{}, err
	}
	s.countMutation("update")
	return c, nil
}

// RemoveItem drops a line. Removing an absent product is a no-op.
func (s *Service) RemoveItem(ctx context.Context, sessionID, productID string) (Cart, error) {
	if s == nil || s.Store == nil {
		return Cart{}, errors.New("cart service not configured")
	}
	c, err := s.Load(ctx, sessionID)
	if err != nil {
		return Cart{}, err
	}
	c.Remove(productID)
	if err := s.save(ctx, sessionID, c); err != nil {
		return Cart{}, err
	}
	s.countMutation("remove")
	return c, nil
}

// Clear empties the cart and persists the empty snapshot.
func (s *Service) Clear(ctx context.Context, sessionID string) error {
	if s == nil || s.Store == nil {
		return errors.New("cart service not configured")
	}
	c := Cart{}
	if err := s.save(ctx, sessionID, c); err != nil {
		return err
	}
	s.countMutation("clear")
	return nil
}

func (s *Service) countMutation(op string) {
	if obs.CartMutationTotal != nil {
		obs.CartMutationTotal.WithLabelValues(op).Inc()
	}
}
