package eventbus

import (
	"context"
	"log"

	"github.com/hearthbot/hearth/internal/event"
)

// LogConsumer logs all domain events for observability.
type LogConsumer struct{}

func NewLogConsumer() *LogConsumer { return &LogConsumer{} }

func (c *LogConsumer) HandleEvent(_ context.Context, evt event.DomainEvent) error {
	log.Printf("event: %s [%s] session=%s %s", evt.Type, evt.Polarity, evt.Session, evt.Summary)
	return nil
}
