package cloudevents

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventFactory creates CloudEvents for farm domain events
type EventFactory struct {
	source string
}

// NewEventFactory creates a new EventFactory for a specific source
func NewEventFactory(source string) *EventFactory {
	return &EventFactory{source: source}
}

// CreateEvent creates a new FarmCloudEvent with the given parameters
func (f *EventFactory) CreateEvent(
	ctx context.Context,
	eventType string,
	subject string,
	data interface{},
) *FarmCloudEvent {
	return &FarmCloudEvent{
		SpecVersion:     "1.0",
		Type:            eventType,
		Source:          f.source,
		Subject:         subject,
		ID:              uuid.New().String(),
		Time:            time.Now().UTC(),
		DataContentType: "application/json",
		Data:            data,
	}
}

// CreateBlockEvent creates an event scoped to a block
func (f *EventFactory) CreateBlockEvent(
	ctx context.Context,
	eventType string,
	blockID string,
	farmID string,
	data interface{},
) *FarmCloudEvent {
	event := f.CreateEvent(ctx, eventType, "block/"+blockID, data)
	event.BlockID = blockID
	event.FarmID = farmID
	return event
}

// CreateTemplateEvent creates an event scoped to a task template
func (f *EventFactory) CreateTemplateEvent(
	ctx context.Context,
	eventType string,
	templateID string,
	data interface{},
) *FarmCloudEvent {
	return f.CreateEvent(ctx, eventType, "template/"+templateID, data)
}

// CreateEventWithCorrelation creates an event with correlation tracking
func (f *EventFactory) CreateEventWithCorrelation(
	ctx context.Context,
	eventType string,
	subject string,
	data interface{},
	correlationID string,
) *FarmCloudEvent {
	event := f.CreateEvent(ctx, eventType, subject, data)
	event.CorrelationID = correlationID
	return event
}
