package events

import (
	"context"

	"github.com/rs/zerolog"
)

// LogNotifier writes every emitted event to the structured log.
type LogNotifier struct {
	Logger zerolog.Logger
}

// Notify logs the event at info level.
func (n LogNotifier) Notify(_ context.Context, event Event) error {
	n.Logger.Info().
		Str("event_id", event.ID).
		Str("topic", event.Topic).
		Str("aggregate_id", event.AggregateID).
		Msg("domain_event")
	return nil
}
