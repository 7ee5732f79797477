package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BlockStatus represents the lifecycle status of a growing block
type BlockStatus string

const (
	BlockStatusEmpty      BlockStatus = "empty"      // No plants assigned
	BlockStatusAssigned   BlockStatus = "assigned"   // Plants assigned, not yet in the ground
	BlockStatusPlanted    BlockStatus = "planted"    // Physical planting confirmed
	BlockStatusHarvesting BlockStatus = "harvesting" // Harvest in progress
	BlockStatusAlert      BlockStatus = "alert"      // Operational alert open
)

// IsValid checks if the block status is valid
func (s BlockStatus) IsValid() bool {
	switch s {
	case BlockStatusEmpty, BlockStatusAssigned, BlockStatusPlanted, BlockStatusHarvesting, BlockStatusAlert:
		return true
	default:
		return false
	}
}

// PlantAssignment represents one plant type occupying part of a block
type PlantAssignment struct {
	PlantTypeID          string     `bson:"plantTypeId"`
	PlantName            string     `bson:"plantName"`
	AssignedCount        int        `bson:"assignedCount"`
	PlantingDate         *time.Time `bson:"plantingDate,omitempty"`
	ExpectedHarvestStart *time.Time `bson:"expectedHarvestStart,omitempty"`
	ExpectedHarvestEnd   *time.Time `bson:"expectedHarvestEnd,omitempty"`
	ActualHarvestStart   *time.Time `bson:"actualHarvestStart,omitempty"`
	HarvestTimingNote    string     `bson:"harvestTimingNote,omitempty"`
}

// StateTransition is one append-only audit record of a status change
type StateTransition struct {
	From      BlockStatus `bson:"from"`
	To        BlockStatus `bson:"to"`
	Timestamp time.Time   `bson:"timestamp"`
	Note      string      `bson:"note,omitempty"`
	Actor     string      `bson:"actor,omitempty"`
}

// AlertKind classifies the cause of a block alert
type AlertKind string

const (
	AlertKindDisease   AlertKind = "disease"
	AlertKindPest      AlertKind = "pest"
	AlertKindWeather   AlertKind = "weather"
	AlertKindEquipment AlertKind = "equipment"
	AlertKindOther     AlertKind = "other"
)

// AlertSeverity grades how urgent an alert is
type AlertSeverity string

const (
	AlertSeverityLow      AlertSeverity = "low"
	AlertSeverityMedium   AlertSeverity = "medium"
	AlertSeverityHigh     AlertSeverity = "high"
	AlertSeverityCritical AlertSeverity = "critical"
)

// AlertInfo carries the details of the currently open (or last resolved) alert
type AlertInfo struct {
	Kind        AlertKind     `bson:"kind"`
	Severity    AlertSeverity `bson:"severity"`
	Description string        `bson:"description,omitempty"`
	OpenedAt    time.Time     `bson:"openedAt"`
	ResolvedAt  *time.Time    `bson:"resolvedAt,omitempty"`

	// Status the block held before the alert opened, restored on resolve.
	PreviousStatus BlockStatus `bson:"previousStatus"`
}

// Block is the aggregate root for a bounded growing area. Capacity counters
// and status are derived state: they change only through the allocator and
// lifecycle methods, never by direct field writes from outside the aggregate.
type Block struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	BlockID     string             `bson:"blockId"`
	Name        string             `bson:"name"`
	FarmID      string             `bson:"farmId,omitempty"`
	MaxCapacity int                `bson:"maxCapacity"`
	Status      BlockStatus        `bson:"status"`

	Assignments       []PlantAssignment `bson:"assignments"`
	TotalAssigned     int               `bson:"totalAssigned"`
	RemainingCapacity int               `bson:"remainingCapacity"`

	TransitionHistory []StateTransition `bson:"transitionHistory"`
	Alert             *AlertInfo        `bson:"alert,omitempty"`

	CreatedAt    time.Time     `bson:"createdAt"`
	UpdatedAt    time.Time     `bson:"updatedAt"`
	DomainEvents []DomainEvent `bson:"-"`
}

// NewBlock creates a new empty Block aggregate
func NewBlock(blockID, name, farmID string, maxCapacity int) (*Block, error) {
	if maxCapacity <= 0 {
		return nil, ErrInvalidCapacity
	}

	now := time.Now()
	block := &Block{
		BlockID:           blockID,
		Name:              name,
		FarmID:            farmID,
		MaxCapacity:       maxCapacity,
		Status:            BlockStatusEmpty,
		Assignments:       make([]PlantAssignment, 0),
		TotalAssigned:     0,
		RemainingCapacity: maxCapacity,
		TransitionHistory: make([]StateTransition, 0),
		CreatedAt:         now,
		UpdatedAt:         now,
		DomainEvents:      make([]DomainEvent, 0),
	}

	block.AddDomainEvent(&BlockCreatedEvent{
		BlockID:     blockID,
		FarmID:      farmID,
		Name:        name,
		MaxCapacity: maxCapacity,
		CreatedAt:   now,
	})

	return block, nil
}

// AssignPlants assigns count plants of a type to the block. An existing
// assignment for the same plant type is incremented, otherwise a new entry is
// appended. Fails without mutation if count exceeds the remaining capacity or
// an alert is open. Assigning to an empty block transitions it to assigned.
func (b *Block) AssignPlants(plantTypeID, plantName string, count int) error {
	if b.HasActiveAlert() {
		return ErrBlockInAlert
	}
	if count <= 0 {
		return ErrInvalidPlantCount
	}
	if count > b.RemainingCapacity {
		return &InsufficientCapacityError{Requested: count, Available: b.RemainingCapacity}
	}

	found := false
	for idx := range b.Assignments {
		if b.Assignments[idx].PlantTypeID == plantTypeID {
			b.Assignments[idx].AssignedCount += count
			found = true
			break
		}
	}
	if !found {
		b.Assignments = append(b.Assignments, PlantAssignment{
			PlantTypeID:   plantTypeID,
			PlantName:     plantName,
			AssignedCount: count,
		})
	}

	wasEmpty := b.Status == BlockStatusEmpty
	b.recomputeCapacity()

	if wasEmpty {
		if err := b.transitionTo(BlockStatusAssigned, "first plants assigned", "allocator"); err != nil {
			return err
		}
	}

	b.UpdatedAt = time.Now()
	b.AddDomainEvent(&PlantsAssignedEvent{
		BlockID:           b.BlockID,
		FarmID:            b.FarmID,
		PlantTypeID:       plantTypeID,
		Count:             count,
		TotalAssigned:     b.TotalAssigned,
		RemainingCapacity: b.RemainingCapacity,
		AssignedAt:        b.UpdatedAt,
	})

	return nil
}

// RemovePlants removes count plants of a type from the block. The assignment
// entry is dropped when it reaches zero, and removing the last plants
// transitions the block back to empty. The implied transition is validated
// before anything mutates, so a rejected removal leaves the block unchanged.
func (b *Block) RemovePlants(plantTypeID string, count int) error {
	if b.HasActiveAlert() {
		return ErrBlockInAlert
	}
	if count <= 0 {
		return ErrInvalidPlantCount
	}

	idx := -1
	for i := range b.Assignments {
		if b.Assignments[i].PlantTypeID == plantTypeID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrAssignmentNotFound
	}
	if count > b.Assignments[idx].AssignedCount {
		return &InsufficientAssignmentError{
			PlantTypeID: plantTypeID,
			Requested:   count,
			Available:   b.Assignments[idx].AssignedCount,
		}
	}

	emptiesBlock := b.TotalAssigned-count == 0 && b.Status != BlockStatusEmpty
	if emptiesBlock && !b.transitionAllowed(BlockStatusEmpty) {
		return &IllegalTransitionError{From: b.Status, To: BlockStatusEmpty}
	}

	b.Assignments[idx].AssignedCount -= count
	if b.Assignments[idx].AssignedCount == 0 {
		b.Assignments = append(b.Assignments[:idx], b.Assignments[idx+1:]...)
	}

	b.recomputeCapacity()

	if emptiesBlock {
		b.applyTransition(BlockStatusEmpty, "all plants removed", "allocator")
	}

	b.UpdatedAt = time.Now()
	b.AddDomainEvent(&PlantsRemovedEvent{
		BlockID:           b.BlockID,
		FarmID:            b.FarmID,
		PlantTypeID:       plantTypeID,
		Count:             count,
		TotalAssigned:     b.TotalAssigned,
		RemainingCapacity: b.RemainingCapacity,
		RemovedAt:         b.UpdatedAt,
	})

	return nil
}

// recomputeCapacity rederives the capacity counters from the assignment list.
// Invariant: 0 <= TotalAssigned <= MaxCapacity, RemainingCapacity is the
// complement. Callers validate before mutating, so this never goes negative.
func (b *Block) recomputeCapacity() {
	total := 0
	for _, a := range b.Assignments {
		total += a.AssignedCount
	}
	b.TotalAssigned = total
	b.RemainingCapacity = b.MaxCapacity - total
}

// GetAssignment returns the assignment for a plant type, or nil
func (b *Block) GetAssignment(plantTypeID string) *PlantAssignment {
	for i := range b.Assignments {
		if b.Assignments[i].PlantTypeID == plantTypeID {
			return &b.Assignments[i]
		}
	}
	return nil
}

// CanDelete reports whether the block may be removed from the system
func (b *Block) CanDelete() bool {
	return b.TotalAssigned == 0
}

// HasActiveAlert reports whether an alert is currently open
func (b *Block) HasActiveAlert() bool {
	return b.Alert != nil && b.Alert.ResolvedAt == nil
}

// Domain event methods
func (b *Block) AddDomainEvent(event DomainEvent) {
	b.DomainEvents = append(b.DomainEvents, event)
}

func (b *Block) ClearDomainEvents() {
	b.DomainEvents = make([]DomainEvent, 0)
}

func (b *Block) GetDomainEvents() []DomainEvent {
	return b.DomainEvents
}
