package kafka

import (
	"context"
	"fmt"

	"github.com/farmops-platform/block-service/internal/domain"
	"github.com/farmops-platform/block-service/pkg/cloudevents"
	"github.com/farmops-platform/block-service/pkg/kafka"
	"github.com/farmops-platform/block-service/pkg/logging"
)

// producer abstracts the Kafka producer so tests can capture published
// events without a broker.
type producer interface {
	PublishEvent(ctx context.Context, topic string, event *cloudevents.FarmCloudEvent) error
}

// EventPublisher maps domain events onto CloudEvents and routes them to the
// farmops topics
type EventPublisher struct {
	producer producer
	factory  *cloudevents.EventFactory
	logger   *logging.Logger
}

func NewEventPublisher(p producer, factory *cloudevents.EventFactory, logger *logging.Logger) *EventPublisher {
	return &EventPublisher{
		producer: p,
		factory:  factory,
		logger:   logger,
	}
}

func (p *EventPublisher) Publish(ctx context.Context, event domain.DomainEvent) error {
	cloudEvent, topic, err := p.convert(ctx, event)
	if err != nil {
		return err
	}

	if err := p.producer.PublishEvent(ctx, topic, cloudEvent); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.EventType(), err)
	}

	p.logger.Debug("Published event",
		"eventType", event.EventType(),
		"topic", topic,
		"eventId", cloudEvent.ID,
	)
	return nil
}

func (p *EventPublisher) PublishAll(ctx context.Context, events []domain.DomainEvent) error {
	for _, event := range events {
		if err := p.Publish(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

func (p *EventPublisher) convert(ctx context.Context, event domain.DomainEvent) (*cloudevents.FarmCloudEvent, string, error) {
	switch e := event.(type) {
	case *domain.BlockCreatedEvent:
		return p.factory.CreateBlockEvent(ctx, e.EventType(), e.BlockID, e.FarmID, e), kafka.Topics.BlockEvents, nil
	case *domain.PlantsAssignedEvent:
		return p.factory.CreateBlockEvent(ctx, e.EventType(), e.BlockID, e.FarmID, e), kafka.Topics.BlockEvents, nil
	case *domain.PlantsRemovedEvent:
		return p.factory.CreateBlockEvent(ctx, e.EventType(), e.BlockID, e.FarmID, e), kafka.Topics.BlockEvents, nil
	case *domain.BlockStatusChangedEvent:
		return p.factory.CreateBlockEvent(ctx, e.EventType(), e.BlockID, e.FarmID, e), kafka.Topics.BlockEvents, nil
	case *domain.BlockPlantedEvent:
		return p.factory.CreateBlockEvent(ctx, e.EventType(), e.BlockID, e.FarmID, e), kafka.Topics.BlockEvents, nil
	case *domain.HarvestStartedEvent:
		return p.factory.CreateBlockEvent(ctx, e.EventType(), e.BlockID, e.FarmID, e), kafka.Topics.BlockEvents, nil
	case *domain.AlertOpenedEvent:
		return p.factory.CreateBlockEvent(ctx, e.EventType(), e.BlockID, e.FarmID, e), kafka.Topics.AlertEvents, nil
	case *domain.AlertResolvedEvent:
		return p.factory.CreateBlockEvent(ctx, e.EventType(), e.BlockID, e.FarmID, e), kafka.Topics.AlertEvents, nil
	case *domain.TemplateStatusChangedEvent:
		return p.factory.CreateTemplateEvent(ctx, e.EventType(), e.TemplateID, e), kafka.Topics.TemplateEvents, nil
	case *domain.TasksScheduledEvent:
		return p.factory.CreateBlockEvent(ctx, e.EventType(), e.BlockID, e.FarmID, e), kafka.Topics.TaskEvents, nil
	default:
		return nil, "", fmt.Errorf("unmapped domain event type %s", event.EventType())
	}
}
