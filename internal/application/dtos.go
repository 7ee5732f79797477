package application

import (
	"time"

	"github.com/farmops-platform/block-service/internal/domain"
)

// AssignmentDTO is the API representation of a plant assignment
type AssignmentDTO struct {
	PlantTypeID          string     `json:"plantTypeId"`
	PlantName            string     `json:"plantName"`
	AssignedCount        int        `json:"assignedCount"`
	PlantingDate         *time.Time `json:"plantingDate,omitempty"`
	ExpectedHarvestStart *time.Time `json:"expectedHarvestStart,omitempty"`
	ExpectedHarvestEnd   *time.Time `json:"expectedHarvestEnd,omitempty"`
	ActualHarvestStart   *time.Time `json:"actualHarvestStart,omitempty"`
	HarvestTimingNote    string     `json:"harvestTimingNote,omitempty"`
}

// TransitionDTO is the API representation of one audit record
type TransitionDTO struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	Timestamp time.Time `json:"timestamp"`
	Note      string    `json:"note,omitempty"`
	Actor     string    `json:"actor,omitempty"`
}

// AlertDTO is the API representation of a block alert
type AlertDTO struct {
	Kind        string     `json:"kind"`
	Severity    string     `json:"severity"`
	Description string     `json:"description,omitempty"`
	OpenedAt    time.Time  `json:"openedAt"`
	ResolvedAt  *time.Time `json:"resolvedAt,omitempty"`
}

// BlockDTO is the API representation of a block aggregate
type BlockDTO struct {
	BlockID           string          `json:"blockId"`
	Name              string          `json:"name"`
	FarmID            string          `json:"farmId,omitempty"`
	MaxCapacity       int             `json:"maxCapacity"`
	Status            string          `json:"status"`
	Assignments       []AssignmentDTO `json:"assignments"`
	TotalAssigned     int             `json:"totalAssigned"`
	RemainingCapacity int             `json:"remainingCapacity"`
	Alert             *AlertDTO       `json:"alert,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// TemplateDTO is the API representation of a task template
type TemplateDTO struct {
	TemplateID               string                `json:"templateId"`
	Name                     string                `json:"name"`
	Category                 string                `json:"category"`
	Priority                 string                `json:"priority"`
	EstimatedDurationMinutes int                   `json:"estimatedDurationMinutes"`
	Status                   string                `json:"status"`
	RequiresApproval         bool                  `json:"requiresApproval"`
	ApprovedBy               string                `json:"approvedBy,omitempty"`
	Triggers                 domain.TriggerSpec    `json:"triggers"`
	Dependencies             domain.DependencySpec `json:"dependencies"`
	Resources                domain.ResourceSpec   `json:"resources"`
	Cost                     domain.CostFormulas   `json:"cost"`
	CreatedAt                time.Time             `json:"createdAt"`
	UpdatedAt                time.Time             `json:"updatedAt"`
}

// MaterialQuantityDTO is a computed material need for one scheduled task
type MaterialQuantityDTO struct {
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

// ScheduledTaskDTO is one task emitted by a scheduling tick
type ScheduledTaskDTO struct {
	TemplateID        string                         `json:"templateId"`
	Name              string                         `json:"name"`
	Category          string                         `json:"category"`
	Priority          string                         `json:"priority"`
	EstimatedDuration int                            `json:"estimatedDurationMinutes"`
	Cost              float64                        `json:"cost"`
	Materials         map[string]MaterialQuantityDTO `json:"materials,omitempty"`
	Reasons           []string                       `json:"reasons,omitempty"`
	Warnings          []string                       `json:"warnings,omitempty"`
}

// DroppedTaskDTO is a template that was eligible but blocked by dependencies
type DroppedTaskDTO struct {
	TemplateID string `json:"templateId"`
	Reason     string `json:"reason"`
}

// ScheduleResultDTO is the full outcome of one scheduling tick
type ScheduleResultDTO struct {
	BlockID     string             `json:"blockId"`
	EvaluatedAt time.Time          `json:"evaluatedAt"`
	Tasks       []ScheduledTaskDTO `json:"tasks"`
	Dropped     []DroppedTaskDTO   `json:"dropped,omitempty"`
}
