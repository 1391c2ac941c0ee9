package eventbridge

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"go.uber.org/zap"

	"clubhub-backend/application/ports"
	"clubhub-backend/domain/events"
	"clubhub-backend/pkg/observability"
)

// Source is the EventBridge source of every published event
const Source = "clubhub.membership"

// PutEvents allows at most 10 entries per call
const batchSize = 10

// API is the subset of the EventBridge client the publisher needs
type API interface {
	PutEvents(ctx context.Context, params *eventbridge.PutEventsInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error)
}

// Publisher sends domain events to an EventBridge bus
type Publisher struct {
	client       API
	eventBusName string
	logger       *zap.Logger
	metrics      *observability.Collector
}

var _ ports.EventPublisher = (*Publisher)(nil)

// NewPublisher creates a new EventBridge publisher
func NewPublisher(client API, eventBusName string, logger *zap.Logger, metrics *observability.Collector) *Publisher {
	return &Publisher{
		client:       client,
		eventBusName: eventBusName,
		logger:       logger,
		metrics:      metrics,
	}
}

// Publish sends events in batches of 10. The first failing batch aborts.
func (p *Publisher) Publish(ctx context.Context, domainEvents ...events.DomainEvent) error {
	for i := 0; i < len(domainEvents); i += batchSize {
		end := i + batchSize
		if end > len(domainEvents) {
			end = len(domainEvents)
		}
		if err := p.publishBatch(ctx, domainEvents[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (p *Publisher) publishBatch(ctx context.Context, batch []events.DomainEvent) error {
	entries := make([]types.PutEventsRequestEntry, 0, len(batch))
	sent := make([]events.DomainEvent, 0, len(batch))

	for _, event := range batch {
		detail, err := json.Marshal(event)
		if err != nil {
			p.logger.Error("Failed to marshal event",
				zap.String("eventType", event.GetEventType()),
				zap.Error(err))
			p.metrics.RecordEvent(event.GetEventType(), err)
			continue
		}
		entries = append(entries, types.PutEventsRequestEntry{
			EventBusName: aws.String(p.eventBusName),
			Source:       aws.String(Source),
			DetailType:   aws.String(event.GetEventType()),
			Detail:       aws.String(string(detail)),
			Time:         aws.Time(event.GetTimestamp()),
		})
		sent = append(sent, event)
	}
	if len(entries) == 0 {
		return nil
	}

	result, err := p.client.PutEvents(ctx, &eventbridge.PutEventsInput{Entries: entries})
	if err != nil {
		for _, event := range sent {
			p.metrics.RecordEvent(event.GetEventType(), err)
		}
		return fmt.Errorf("failed to publish events to EventBridge: %w", err)
	}

	var failed error
	for i, entry := range result.Entries {
		if i >= len(sent) {
			break
		}
		if entry.ErrorCode != nil {
			failed = fmt.Errorf("%s: %s", aws.ToString(entry.ErrorCode), aws.ToString(entry.ErrorMessage))
			p.logger.Error("Failed to publish event",
				zap.String("eventType", sent[i].GetEventType()),
				zap.String("aggregateID", sent[i].GetAggregateID()),
				zap.String("errorCode", aws.ToString(entry.ErrorCode)),
				zap.String("errorMessage", aws.ToString(entry.ErrorMessage)))
			p.metrics.RecordEvent(sent[i].GetEventType(), failed)
			continue
		}
		p.metrics.RecordEvent(sent[i].GetEventType(), nil)
	}
	if result.FailedEntryCount > 0 {
		return fmt.Errorf("%d events failed to publish", result.FailedEntryCount)
	}

	p.logger.Debug("Events published to EventBridge",
		zap.Int("count", len(entries)),
		zap.String("eventBus", p.eventBusName))
	return nil
}
