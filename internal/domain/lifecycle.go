package domain

import (
	"fmt"
	"time"
)

// legalTransitions is the block lifecycle table. Alert entry is handled
// separately because "alert" may be entered from any operational state;
// the only exit is ResolveAlert restoring the recorded pre-alert status.
var legalTransitions = map[BlockStatus][]BlockStatus{
	BlockStatusEmpty:      {BlockStatusAssigned},
	BlockStatusAssigned:   {BlockStatusEmpty, BlockStatusPlanted},
	BlockStatusPlanted:    {BlockStatusHarvesting},
	BlockStatusHarvesting: {},
}

func (b *Block) transitionAllowed(to BlockStatus) bool {
	if to == BlockStatusAlert {
		return b.Status != BlockStatusAlert
	}
	if b.Status == BlockStatusAlert {
		// No operation moves an alerted block; ResolveAlert applies the
		// restore transition directly.
		return false
	}
	for _, allowed := range legalTransitions[b.Status] {
		if allowed == to {
			return true
		}
	}
	return false
}

// transitionTo moves the block to a new status and appends one audit record.
// A rejected transition leaves the block, including its history, unchanged.
func (b *Block) transitionTo(to BlockStatus, note, actor string) error {
	if !b.transitionAllowed(to) {
		return &IllegalTransitionError{From: b.Status, To: to}
	}

	b.applyTransition(to, note, actor)
	return nil
}

// applyTransition performs the status change, audit record and event without
// consulting the transition table. Callers validate legality first.
func (b *Block) applyTransition(to BlockStatus, note, actor string) {
	from := b.Status
	now := time.Now()
	b.Status = to
	b.TransitionHistory = append(b.TransitionHistory, StateTransition{
		From:      from,
		To:        to,
		Timestamp: now,
		Note:      note,
		Actor:     actor,
	})
	b.UpdatedAt = now

	b.AddDomainEvent(&BlockStatusChangedEvent{
		BlockID:   b.BlockID,
		FarmID:    b.FarmID,
		From:      from,
		To:        to,
		Note:      note,
		Actor:     actor,
		ChangedAt: now,
	})
}

// HarvestOffsets carries catalog-supplied day offsets for a plant type,
// measured from the planting date.
type HarvestOffsets struct {
	StartDays int
	EndDays   int
}

// ConfirmPlanting transitions assigned -> planted when the operator confirms
// physical planting. Every assignment without a planting date gets one, and
// the expected harvest window is derived from the catalog offsets when the
// plant type has an entry.
func (b *Block) ConfirmPlanting(offsets map[string]HarvestOffsets, actor string) error {
	if err := b.transitionTo(BlockStatusPlanted, "planting confirmed", actor); err != nil {
		return err
	}

	now := time.Now()
	for i := range b.Assignments {
		a := &b.Assignments[i]
		if a.PlantingDate == nil {
			planted := now
			a.PlantingDate = &planted
		}
		if off, ok := offsets[a.PlantTypeID]; ok {
			start := a.PlantingDate.AddDate(0, 0, off.StartDays)
			end := a.PlantingDate.AddDate(0, 0, off.EndDays)
			a.ExpectedHarvestStart = &start
			a.ExpectedHarvestEnd = &end
		}
	}

	b.AddDomainEvent(&BlockPlantedEvent{
		BlockID:   b.BlockID,
		FarmID:    b.FarmID,
		PlantedAt: now,
		Actor:     actor,
	})

	return nil
}

// StartHarvest transitions planted -> harvesting. Assignments without an
// actual harvest start get stamped with now and a timing note comparing the
// actual start against the expected window.
func (b *Block) StartHarvest(actor string) error {
	if err := b.transitionTo(BlockStatusHarvesting, "harvest started", actor); err != nil {
		return err
	}

	now := time.Now()
	for i := range b.Assignments {
		a := &b.Assignments[i]
		if a.ActualHarvestStart != nil {
			continue
		}
		started := now
		a.ActualHarvestStart = &started
		a.HarvestTimingNote = harvestTimingNote(a.ExpectedHarvestStart, started)
	}

	b.AddDomainEvent(&HarvestStartedEvent{
		BlockID:   b.BlockID,
		FarmID:    b.FarmID,
		StartedAt: now,
		Actor:     actor,
	})

	return nil
}

// harvestTimingNote compares the actual harvest start to the expected one.
// Without an expected date there is nothing to compare against.
func harvestTimingNote(expected *time.Time, actual time.Time) string {
	if expected == nil {
		return ""
	}
	days := int(actual.Sub(*expected).Hours() / 24)
	switch {
	case days > 0:
		return fmt.Sprintf("%d days late", days)
	case days < 0:
		return fmt.Sprintf("%d days early", -days)
	default:
		return "on time"
	}
}

// OpenAlert moves the block into alert from any operational state without
// touching assignment data. The pre-alert status is recorded so the block
// can return to it on resolve.
func (b *Block) OpenAlert(kind AlertKind, severity AlertSeverity, description, actor string) error {
	if b.HasActiveAlert() {
		return ErrAlertAlreadyOpen
	}

	previous := b.Status
	if err := b.transitionTo(BlockStatusAlert, fmt.Sprintf("%s alert opened (%s)", kind, severity), actor); err != nil {
		return err
	}

	b.Alert = &AlertInfo{
		Kind:           kind,
		Severity:       severity,
		Description:    description,
		OpenedAt:       time.Now(),
		PreviousStatus: previous,
	}

	b.AddDomainEvent(&AlertOpenedEvent{
		BlockID:     b.BlockID,
		FarmID:      b.FarmID,
		Kind:        kind,
		Severity:    severity,
		Description: description,
		OpenedAt:    b.Alert.OpenedAt,
	})

	return nil
}

// ResolveAlert closes the open alert and restores the pre-alert status.
// The restore target was a legal state when the alert opened and alerted
// blocks reject every other mutation, so it is applied directly.
func (b *Block) ResolveAlert(actor string) error {
	if !b.HasActiveAlert() {
		return ErrNoActiveAlert
	}

	b.applyTransition(b.Alert.PreviousStatus, "alert resolved", actor)

	now := time.Now()
	b.Alert.ResolvedAt = &now

	b.AddDomainEvent(&AlertResolvedEvent{
		BlockID:    b.BlockID,
		FarmID:     b.FarmID,
		Kind:       b.Alert.Kind,
		ResolvedAt: now,
	})

	return nil
}
