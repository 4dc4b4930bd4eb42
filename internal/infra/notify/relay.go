package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/IBM/sarama"
)

// Relay consumes domain events from the broker and fans them out as user
// notifications. Delivery is a log line for now; the envelope handling and
// offsets are the part that matters.
type Relay struct {
	Log *slog.Logger
}

type cloudEvent struct {
	ID     string          `json:"id"`
	Type   string          `json:"type"`
	Source string          `json:"source"`
	Time   time.Time       `json:"time"`
	Data   json.RawMessage `json:"data"`
}

// Handle decodes one CloudEvents record. Malformed payloads are dropped
// after logging so the partition keeps moving.
func (r *Relay) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	log := r.Log
	if log == nil {
		log = slog.Default()
	}
	var evt cloudEvent
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		log.WarnContext(ctx, "notify: dropping malformed event",
			slog.String("topic", msg.Topic),
			slog.Int64("offset", msg.Offset),
			slog.String("error", err.Error()))
		return nil
	}
	log.InfoContext(ctx, "notify: event delivered",
		slog.String("event_id", evt.ID),
		slog.String("type", evt.Type),
		slog.String("key", string(msg.Key)),
		slog.Time("occurred_at", evt.Time))
	return nil
}
