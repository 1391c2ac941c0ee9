package services

import (
	"context"

	"go.uber.org/zap"

	"clubhub-backend/application/ports"
	"clubhub-backend/domain/events"
)

// publish delivers events after a committed write. Failures are logged only;
// the write already happened.
func publish(ctx context.Context, publisher ports.EventPublisher, logger *zap.Logger, evts ...events.DomainEvent) {
	if publisher == nil || len(evts) == 0 {
		return
	}
	if err := publisher.Publish(ctx, evts...); err != nil {
		types := make([]string, 0, len(evts))
		for _, e := range evts {
			types = append(types, e.GetEventType())
		}
		logger.Error("Failed to publish domain events",
			zap.Strings("eventTypes", types),
			zap.Error(err))
	}
}
