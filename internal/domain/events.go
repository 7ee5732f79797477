package domain

import "time"

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	EventType() string
	OccurredAt() time.Time
}

// BlockCreatedEvent is published when a block is registered
type BlockCreatedEvent struct {
	BlockID     string    `json:"blockId"`
	FarmID      string    `json:"farmId,omitempty"`
	Name        string    `json:"name"`
	MaxCapacity int       `json:"maxCapacity"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (e *BlockCreatedEvent) EventType() string     { return "farmops.block.created" }
func (e *BlockCreatedEvent) OccurredAt() time.Time { return e.CreatedAt }

// PlantsAssignedEvent is published when plants are assigned to a block
type PlantsAssignedEvent struct {
	BlockID           string    `json:"blockId"`
	FarmID            string    `json:"farmId,omitempty"`
	PlantTypeID       string    `json:"plantTypeId"`
	Count             int       `json:"count"`
	TotalAssigned     int       `json:"totalAssigned"`
	RemainingCapacity int       `json:"remainingCapacity"`
	AssignedAt        time.Time `json:"assignedAt"`
}

func (e *PlantsAssignedEvent) EventType() string     { return "farmops.block.plants-assigned" }
func (e *PlantsAssignedEvent) OccurredAt() time.Time { return e.AssignedAt }

// PlantsRemovedEvent is published when plants are removed from a block
type PlantsRemovedEvent struct {
	BlockID           string    `json:"blockId"`
	FarmID            string    `json:"farmId,omitempty"`
	PlantTypeID       string    `json:"plantTypeId"`
	Count             int       `json:"count"`
	TotalAssigned     int       `json:"totalAssigned"`
	RemainingCapacity int       `json:"remainingCapacity"`
	RemovedAt         time.Time `json:"removedAt"`
}

func (e *PlantsRemovedEvent) EventType() string     { return "farmops.block.plants-removed" }
func (e *PlantsRemovedEvent) OccurredAt() time.Time { return e.RemovedAt }

// BlockStatusChangedEvent is published for every lifecycle transition
type BlockStatusChangedEvent struct {
	BlockID   string      `json:"blockId"`
	FarmID    string      `json:"farmId,omitempty"`
	From      BlockStatus `json:"from"`
	To        BlockStatus `json:"to"`
	Note      string      `json:"note,omitempty"`
	Actor     string      `json:"actor,omitempty"`
	ChangedAt time.Time   `json:"changedAt"`
}

func (e *BlockStatusChangedEvent) EventType() string     { return "farmops.block.status-changed" }
func (e *BlockStatusChangedEvent) OccurredAt() time.Time { return e.ChangedAt }

// BlockPlantedEvent is published when physical planting is confirmed
type BlockPlantedEvent struct {
	BlockID   string    `json:"blockId"`
	FarmID    string    `json:"farmId,omitempty"`
	PlantedAt time.Time `json:"plantedAt"`
	Actor     string    `json:"actor,omitempty"`
}

func (e *BlockPlantedEvent) EventType() string     { return "farmops.block.planted" }
func (e *BlockPlantedEvent) OccurredAt() time.Time { return e.PlantedAt }

// HarvestStartedEvent is published when harvesting begins
type HarvestStartedEvent struct {
	BlockID   string    `json:"blockId"`
	FarmID    string    `json:"farmId,omitempty"`
	StartedAt time.Time `json:"startedAt"`
	Actor     string    `json:"actor,omitempty"`
}

func (e *HarvestStartedEvent) EventType() string     { return "farmops.block.harvest-started" }
func (e *HarvestStartedEvent) OccurredAt() time.Time { return e.StartedAt }

// AlertOpenedEvent is published when a block alert opens
type AlertOpenedEvent struct {
	BlockID     string        `json:"blockId"`
	FarmID      string        `json:"farmId,omitempty"`
	Kind        AlertKind     `json:"kind"`
	Severity    AlertSeverity `json:"severity"`
	Description string        `json:"description,omitempty"`
	OpenedAt    time.Time     `json:"openedAt"`
}

func (e *AlertOpenedEvent) EventType() string     { return "farmops.alert.opened" }
func (e *AlertOpenedEvent) OccurredAt() time.Time { return e.OpenedAt }

// AlertResolvedEvent is published when a block alert is resolved
type AlertResolvedEvent struct {
	BlockID    string    `json:"blockId"`
	FarmID     string    `json:"farmId,omitempty"`
	Kind       AlertKind `json:"kind"`
	ResolvedAt time.Time `json:"resolvedAt"`
}

func (e *AlertResolvedEvent) EventType() string     { return "farmops.alert.resolved" }
func (e *AlertResolvedEvent) OccurredAt() time.Time { return e.ResolvedAt }

// TemplateStatusChangedEvent is published when a task template moves through
// its lifecycle
type TemplateStatusChangedEvent struct {
	TemplateID string         `json:"templateId"`
	From       TemplateStatus `json:"from"`
	To         TemplateStatus `json:"to"`
	ChangedAt  time.Time      `json:"changedAt"`
}

func (e *TemplateStatusChangedEvent) EventType() string     { return "farmops.template.status-changed" }
func (e *TemplateStatusChangedEvent) OccurredAt() time.Time { return e.ChangedAt }

// TasksScheduledEvent is published after a scheduling tick produces work
type TasksScheduledEvent struct {
	BlockID     string          `json:"blockId"`
	FarmID      string          `json:"farmId,omitempty"`
	Tasks       []ScheduledTask `json:"tasks"`
	ScheduledAt time.Time       `json:"scheduledAt"`
}

func (e *TasksScheduledEvent) EventType() string     { return "farmops.task.scheduled" }
func (e *TasksScheduledEvent) OccurredAt() time.Time { return e.ScheduledAt }
