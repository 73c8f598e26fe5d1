package events

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/catalog-management/internal"
)

// AuditLogger writes one structured line per catalog change.
type AuditLogger struct {
	logger *slog.Logger
}

func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return &AuditLogger{logger: logger.With("component", "audit")}
}

// Register subscribes the audit logger to every catalog event type.
func (a *AuditLogger) Register(bus *EventBus) {
	bus.SubscribeAll(a.Handle, CatalogEventTypes...)
}

func (a *AuditLogger) Handle(ctx context.Context, event Event) error {
	attrs := []any{
		"event_id", event.EventID(),
		"event_type", event.EventType(),
		"occurred_at", event.OccurredAt(),
	}
	if traceID := internal.TraceIDFromContext(ctx); traceID != "" {
		attrs = append(attrs, "trace_id", traceID)
	}
	if changed, ok := event.(*EntityChangedEvent); ok {
		attrs = append(attrs,
			"entity", changed.Entity,
			"entity_id", changed.EntityID,
			"actor", changed.Actor,
		)
	} else {
		attrs = append(attrs, "payload", event.Payload())
	}
	a.logger.InfoContext(ctx, "catalog change", attrs...)
	return nil
}
