package cloudevents

import (
	"time"
)

// EventType constants for farm operations domain events
const (
	// Block lifecycle events
	BlockCreated       = "farmops.block.created"
	BlockDeleted       = "farmops.block.deleted"
	BlockStatusChanged = "farmops.block.status-changed"
	BlockPlanted       = "farmops.block.planted"
	HarvestStarted     = "farmops.block.harvest-started"

	// Capacity events
	PlantsAssigned = "farmops.block.plants-assigned"
	PlantsRemoved  = "farmops.block.plants-removed"

	// Alert events
	AlertOpened   = "farmops.alert.opened"
	AlertResolved = "farmops.alert.resolved"

	// Template events
	TemplateStatusChanged = "farmops.template.status-changed"

	// Scheduling events
	TasksScheduled = "farmops.task.scheduled"
)

// Source constants for event sources
const (
	SourceBlockService = "/farmops/block-service"
	SourceWorker       = "/farmops/block-service/worker"
)

// FarmCloudEvent represents a CloudEvents v1.0 compliant event
type FarmCloudEvent struct {
	SpecVersion     string      `json:"specversion"`
	Type            string      `json:"type"`
	Source          string      `json:"source"`
	Subject         string      `json:"subject,omitempty"`
	ID              string      `json:"id"`
	Time            time.Time   `json:"time"`
	DataContentType string      `json:"datacontenttype"`
	Data            interface{} `json:"data"`

	// Farm-specific extensions
	CorrelationID string `json:"farmcorrelationid,omitempty"`
	FarmID        string `json:"farmfarmid,omitempty"`
	BlockID       string `json:"farmblockid,omitempty"`

	// W3C Trace Context
	TraceParent string `json:"traceparent,omitempty"`
	TraceState  string `json:"tracestate,omitempty"`
}

// BlockStatusChangedData is the payload for BlockStatusChanged events
type BlockStatusChangedData struct {
	BlockID    string `json:"blockId"`
	FromStatus string `json:"fromStatus"`
	ToStatus   string `json:"toStatus"`
	Note       string `json:"note,omitempty"`
	Actor      string `json:"actor,omitempty"`
}

// PlantsAssignedData is the payload for PlantsAssigned events
type PlantsAssignedData struct {
	BlockID           string `json:"blockId"`
	PlantTypeID       string `json:"plantTypeId"`
	AssignedCount     int    `json:"assignedCount"`
	RemainingCapacity int    `json:"remainingCapacity"`
}

// AlertOpenedData is the payload for AlertOpened events
type AlertOpenedData struct {
	BlockID  string `json:"blockId"`
	Kind     string `json:"kind"`
	Severity string `json:"severity"`
	Message  string `json:"message,omitempty"`
}

// TasksScheduledData is the payload for TasksScheduled events
type TasksScheduledData struct {
	BlockID      string    `json:"blockId"`
	TaskCount    int       `json:"taskCount"`
	DroppedCount int       `json:"droppedCount"`
	EvaluatedAt  time.Time `json:"evaluatedAt"`
}
