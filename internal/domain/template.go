package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TemplateStatus represents the lifecycle status of a task template
type TemplateStatus string

const (
	TemplateStatusDraft      TemplateStatus = "draft"
	TemplateStatusActive     TemplateStatus = "active"
	TemplateStatusDeprecated TemplateStatus = "deprecated"
	TemplateStatusArchived   TemplateStatus = "archived"
)

// IsValid checks if the template status is valid
func (s TemplateStatus) IsValid() bool {
	switch s {
	case TemplateStatusDraft, TemplateStatusActive, TemplateStatusDeprecated, TemplateStatusArchived:
		return true
	default:
		return false
	}
}

// TaskCategory classifies a schedulable unit of work
type TaskCategory string

const (
	CategoryIrrigation  TaskCategory = "irrigation"
	CategoryFertilizing TaskCategory = "fertilizing"
	CategoryPestControl TaskCategory = "pest_control"
	CategoryPruning     TaskCategory = "pruning"
	CategoryHarvesting  TaskCategory = "harvesting"
	CategoryMaintenance TaskCategory = "maintenance"
	CategoryInspection  TaskCategory = "inspection"
)

// IsValid checks if the task category is valid
func (c TaskCategory) IsValid() bool {
	switch c {
	case CategoryIrrigation, CategoryFertilizing, CategoryPestControl,
		CategoryPruning, CategoryHarvesting, CategoryMaintenance, CategoryInspection:
		return true
	default:
		return false
	}
}

// TaskPriority orders competing tasks for a single next-task pick
type TaskPriority string

const (
	PriorityUrgent TaskPriority = "urgent"
	PriorityHigh   TaskPriority = "high"
	PriorityMedium TaskPriority = "medium"
	PriorityLow    TaskPriority = "low"
)

// Rank maps priority to a comparable weight, higher wins
func (p TaskPriority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// IsValid checks if the task priority is valid
func (p TaskPriority) IsValid() bool {
	return p.Rank() > 0
}

// GrowthStage is the plant growth stage a trigger may gate on
type GrowthStage string

const (
	StageSeedling   GrowthStage = "seedling"
	StageVegetative GrowthStage = "vegetative"
	StageFlowering  GrowthStage = "flowering"
	StageFruiting   GrowthStage = "fruiting"
	StageHarvest    GrowthStage = "harvest"
)

// Comparator compares a sensor reading against a threshold value
type Comparator string

const (
	ComparatorAbove  Comparator = "above"
	ComparatorBelow  Comparator = "below"
	ComparatorEquals Comparator = "equals"
)

// Holds evaluates the comparator against a reading
func (c Comparator) Holds(reading, value float64) bool {
	switch c {
	case ComparatorAbove:
		return reading > value
	case ComparatorBelow:
		return reading < value
	case ComparatorEquals:
		return reading == value
	default:
		return false
	}
}

// SensorThreshold is one sensor condition a trigger requires
type SensorThreshold struct {
	SensorType string     `bson:"sensorType" json:"sensorType"`
	Comparator Comparator `bson:"comparator" json:"comparator"`
	Value      float64    `bson:"value" json:"value"`
}

// TriggerSpec describes when a template becomes eligible. Absent fields mean
// no constraint from that gate; all present gates must hold together.
type TriggerSpec struct {
	GrowthStage       *GrowthStage      `bson:"growthStage,omitempty" json:"growthStage,omitempty"`
	DaysAfterPlanting *int              `bson:"daysAfterPlanting,omitempty" json:"daysAfterPlanting,omitempty"`
	DaysBeforeHarvest *int              `bson:"daysBeforeHarvest,omitempty" json:"daysBeforeHarvest,omitempty"`
	FrequencyDays     *int              `bson:"frequencyDays,omitempty" json:"frequencyDays,omitempty"`
	SensorThresholds  []SensorThreshold `bson:"sensorThresholds,omitempty" json:"sensorThresholds,omitempty"`
	WeatherConditions []string          `bson:"weatherConditions,omitempty" json:"weatherConditions,omitempty"`
	ManualOnly        bool              `bson:"manualOnly" json:"manualOnly"`
}

// WaitRule delays a task until a period has elapsed after another task
type WaitRule struct {
	AfterTaskID string `bson:"afterTaskId" json:"afterTaskId"`
	WaitHours   int    `bson:"waitHours" json:"waitHours"`
	Reason      string `bson:"reason,omitempty" json:"reason,omitempty"`
}

// SeasonalRestriction limits scheduling to calendar months (1-12).
// RestrictedMonths wins over AllowedMonths when both name a month.
type SeasonalRestriction struct {
	AllowedMonths    []int `bson:"allowedMonths,omitempty" json:"allowedMonths,omitempty"`
	RestrictedMonths []int `bson:"restrictedMonths,omitempty" json:"restrictedMonths,omitempty"`
}

// DependencySpec describes ordering relationships between templates
type DependencySpec struct {
	PrerequisiteTasks []string             `bson:"prerequisiteTasks,omitempty" json:"prerequisiteTasks,omitempty"`
	WaitRules         []WaitRule           `bson:"waitRules,omitempty" json:"waitRules,omitempty"`
	ConflictingTasks  []string             `bson:"conflictingTasks,omitempty" json:"conflictingTasks,omitempty"`
	Seasonal          *SeasonalRestriction `bson:"seasonal,omitempty" json:"seasonal,omitempty"`
}

// MaterialRequirement is one material consumed by a task, with a quantity
// expressed as a cost formula over the scheduling variable context
type MaterialRequirement struct {
	QuantityFormula string `bson:"quantityFormula" json:"quantityFormula"`
	Unit            string `bson:"unit" json:"unit"`
}

// ResourceSpec lists materials and equipment a task needs
type ResourceSpec struct {
	Materials map[string]MaterialRequirement `bson:"materials,omitempty" json:"materials,omitempty"`
	Equipment map[string]bool                `bson:"equipment,omitempty" json:"equipment,omitempty"`
}

// CostFormulas holds the pricing formulas for a task. An empty formula
// contributes zero to the total.
type CostFormulas struct {
	LaborFormula       string  `bson:"laborFormula" json:"laborFormula,omitempty"`
	MaterialFormula    string  `bson:"materialFormula" json:"materialFormula,omitempty"`
	EquipmentFormula   string  `bson:"equipmentFormula,omitempty" json:"equipmentFormula,omitempty"`
	OverheadPercentage float64 `bson:"overheadPercentage" json:"overheadPercentage"`
}

// TaskTemplate is the aggregate root for one schedulable unit of work.
// Templates are immutable per version once active; rule changes go through
// deprecation and a new template.
type TaskTemplate struct {
	ID                       primitive.ObjectID `bson:"_id,omitempty"`
	TemplateID               string             `bson:"templateId"`
	Name                     string             `bson:"name"`
	Category                 TaskCategory       `bson:"category"`
	Priority                 TaskPriority       `bson:"priority"`
	EstimatedDurationMinutes int                `bson:"estimatedDurationMinutes"`
	Status                   TemplateStatus     `bson:"status"`

	Triggers     TriggerSpec    `bson:"triggers"`
	Dependencies DependencySpec `bson:"dependencies"`
	Resources    ResourceSpec   `bson:"resources"`
	Cost         CostFormulas   `bson:"cost"`

	RequiresApproval bool   `bson:"requiresApproval"`
	ApprovedBy       string `bson:"approvedBy,omitempty"`

	CreatedAt    time.Time     `bson:"createdAt"`
	UpdatedAt    time.Time     `bson:"updatedAt"`
	DomainEvents []DomainEvent `bson:"-"`
}

// NewTaskTemplate creates a template in draft status
func NewTaskTemplate(templateID, name string, category TaskCategory, priority TaskPriority, durationMinutes int) (*TaskTemplate, error) {
	if !category.IsValid() {
		return nil, ErrInvalidTaskCategory
	}
	if !priority.IsValid() {
		return nil, ErrInvalidTaskPriority
	}

	now := time.Now()
	return &TaskTemplate{
		TemplateID:               templateID,
		Name:                     name,
		Category:                 category,
		Priority:                 priority,
		EstimatedDurationMinutes: durationMinutes,
		Status:                   TemplateStatusDraft,
		Resources: ResourceSpec{
			Materials: make(map[string]MaterialRequirement),
			Equipment: make(map[string]bool),
		},
		CreatedAt:    now,
		UpdatedAt:    now,
		DomainEvents: make([]DomainEvent, 0),
	}, nil
}

// Activate moves a draft template into rotation. Templates flagged for
// approval cannot activate until ApprovedBy is set.
func (t *TaskTemplate) Activate() error {
	if t.Status != TemplateStatusDraft {
		return ErrTemplateNotDraft
	}
	if t.RequiresApproval && t.ApprovedBy == "" {
		return ErrApprovalRequired
	}
	t.setStatus(TemplateStatusActive)
	return nil
}

// Approve records the approver, enabling activation
func (t *TaskTemplate) Approve(approver string) {
	t.ApprovedBy = approver
	t.UpdatedAt = time.Now()
}

// Deprecate marks an active template as superseded and removes it from
// automatic scheduling
func (t *TaskTemplate) Deprecate() error {
	if t.Status != TemplateStatusActive {
		return ErrTemplateNotActive
	}
	t.setStatus(TemplateStatusDeprecated)
	return nil
}

// Archive removes the template from scheduling permanently
func (t *TaskTemplate) Archive() {
	if t.Status == TemplateStatusArchived {
		return
	}
	t.setStatus(TemplateStatusArchived)
}

func (t *TaskTemplate) setStatus(to TemplateStatus) {
	from := t.Status
	now := time.Now()
	t.Status = to
	t.UpdatedAt = now
	t.AddDomainEvent(&TemplateStatusChangedEvent{
		TemplateID: t.TemplateID,
		From:       from,
		To:         to,
		ChangedAt:  now,
	})
}

// Schedulable reports whether the template participates in automatic
// scheduling at all. Archived templates never schedule.
func (t *TaskTemplate) Schedulable() bool {
	return t.Status == TemplateStatusActive
}

// Domain event methods
func (t *TaskTemplate) AddDomainEvent(event DomainEvent) {
	t.DomainEvents = append(t.DomainEvents, event)
}

func (t *TaskTemplate) ClearDomainEvents() {
	t.DomainEvents = make([]DomainEvent, 0)
}

func (t *TaskTemplate) GetDomainEvents() []DomainEvent {
	return t.DomainEvents
}
