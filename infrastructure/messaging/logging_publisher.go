// Package messaging holds event publishers that do not need a broker.
package messaging

import (
	"context"

	"go.uber.org/zap"

	"clubhub-backend/application/ports"
	"clubhub-backend/domain/events"
	"clubhub-backend/pkg/observability"
)

// LoggingPublisher writes events to the log instead of a bus. Used with the
// in-memory backend for local development.
type LoggingPublisher struct {
	logger  *zap.Logger
	metrics *observability.Collector
}

var _ ports.EventPublisher = (*LoggingPublisher)(nil)

func NewLoggingPublisher(logger *zap.Logger, metrics *observability.Collector) *LoggingPublisher {
	return &LoggingPublisher{logger: logger, metrics: metrics}
}

func (p *LoggingPublisher) Publish(ctx context.Context, domainEvents ...events.DomainEvent) error {
	for _, e := range domainEvents {
		p.logger.Info("Domain event",
			zap.String("eventType", e.GetEventType()),
			zap.String("aggregateID", e.GetAggregateID()),
			zap.String("actorID", e.GetActorID()),
			zap.Time("timestamp", e.GetTimestamp()))
		p.metrics.RecordEvent(e.GetEventType(), nil)
	}
	return nil
}
