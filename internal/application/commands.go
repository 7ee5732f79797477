package application

import (
	"time"

	"github.com/farmops-platform/block-service/internal/domain"
)

// CreateBlockCommand registers a new growing block
type CreateBlockCommand struct {
	BlockID     string
	Name        string
	FarmID      string
	MaxCapacity int
}

// GetBlockQuery retrieves a block by ID
type GetBlockQuery struct {
	BlockID string
}

// ListBlocksQuery retrieves blocks with pagination
type ListBlocksQuery struct {
	Limit  int
	Offset int
}

// GetByStatusQuery retrieves blocks in a given lifecycle status
type GetByStatusQuery struct {
	Status domain.BlockStatus
}

// DeleteBlockCommand removes an empty block
type DeleteBlockCommand struct {
	BlockID string
}

// AssignPlantsCommand allocates capacity to a plant type
type AssignPlantsCommand struct {
	BlockID     string
	PlantTypeID string
	PlantName   string
	Count       int
}

// RemovePlantsCommand releases capacity from a plant type
type RemovePlantsCommand struct {
	BlockID     string
	PlantTypeID string
	Count       int
}

// ConfirmPlantingCommand confirms physical planting. HarvestOffsets maps
// plant type id to its expected harvest window offsets in days.
type ConfirmPlantingCommand struct {
	BlockID        string
	Actor          string
	HarvestOffsets map[string]domain.HarvestOffsets
}

// StartHarvestCommand begins harvesting on a planted block
type StartHarvestCommand struct {
	BlockID string
	Actor   string
}

// OpenAlertCommand opens an operational alert on a block
type OpenAlertCommand struct {
	BlockID     string
	Kind        domain.AlertKind
	Severity    domain.AlertSeverity
	Description string
	Actor       string
}

// ResolveAlertCommand resolves the open alert on a block
type ResolveAlertCommand struct {
	BlockID string
	Actor   string
}

// GetHistoryQuery retrieves the transition audit history of a block
type GetHistoryQuery struct {
	BlockID string
}

// CreateTemplateCommand registers a new task template in draft status
type CreateTemplateCommand struct {
	TemplateID               string
	Name                     string
	Category                 domain.TaskCategory
	Priority                 domain.TaskPriority
	EstimatedDurationMinutes int
	Triggers                 domain.TriggerSpec
	Dependencies             domain.DependencySpec
	Resources                domain.ResourceSpec
	Cost                     domain.CostFormulas
	RequiresApproval         bool
}

// GetTemplateQuery retrieves a template by ID
type GetTemplateQuery struct {
	TemplateID string
}

// ListTemplatesQuery retrieves templates with pagination
type ListTemplatesQuery struct {
	Limit  int
	Offset int
}

// ActivateTemplateCommand moves a draft template into rotation
type ActivateTemplateCommand struct {
	TemplateID string
}

// ApproveTemplateCommand records approval on a template
type ApproveTemplateCommand struct {
	TemplateID string
	Approver   string
}

// DeprecateTemplateCommand retires an active template
type DeprecateTemplateCommand struct {
	TemplateID string
}

// ArchiveTemplateCommand archives a template
type ArchiveTemplateCommand struct {
	TemplateID string
}

// EvaluateBlockCommand runs one scheduling tick for a block. The caller
// supplies the environmental snapshot; block-derived facts (days after
// planting, days before harvest) are computed from the aggregate.
type EvaluateBlockCommand struct {
	BlockID        string
	GrowthStage    domain.GrowthStage
	SensorSnapshot map[string]float64
	Weather        []string
	CompletedTasks map[string]time.Time
	QueuedTasks    []string
	CostRates      map[string]float64
	Now            time.Time
}
