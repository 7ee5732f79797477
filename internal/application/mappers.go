package application

import (
	"time"

	"github.com/farmops-platform/block-service/internal/domain"
)

// ToBlockDTO converts a domain Block to its API representation
func ToBlockDTO(block *domain.Block) *BlockDTO {
	if block == nil {
		return nil
	}

	assignments := make([]AssignmentDTO, 0, len(block.Assignments))
	for _, a := range block.Assignments {
		assignments = append(assignments, AssignmentDTO{
			PlantTypeID:          a.PlantTypeID,
			PlantName:            a.PlantName,
			AssignedCount:        a.AssignedCount,
			PlantingDate:         a.PlantingDate,
			ExpectedHarvestStart: a.ExpectedHarvestStart,
			ExpectedHarvestEnd:   a.ExpectedHarvestEnd,
			ActualHarvestStart:   a.ActualHarvestStart,
			HarvestTimingNote:    a.HarvestTimingNote,
		})
	}

	return &BlockDTO{
		BlockID:           block.BlockID,
		Name:              block.Name,
		FarmID:            block.FarmID,
		MaxCapacity:       block.MaxCapacity,
		Status:            string(block.Status),
		Assignments:       assignments,
		TotalAssigned:     block.TotalAssigned,
		RemainingCapacity: block.RemainingCapacity,
		Alert:             toAlertDTO(block.Alert),
		CreatedAt:         block.CreatedAt,
		UpdatedAt:         block.UpdatedAt,
	}
}

func toAlertDTO(alert *domain.AlertInfo) *AlertDTO {
	if alert == nil {
		return nil
	}
	return &AlertDTO{
		Kind:        string(alert.Kind),
		Severity:    string(alert.Severity),
		Description: alert.Description,
		OpenedAt:    alert.OpenedAt,
		ResolvedAt:  alert.ResolvedAt,
	}
}

// ToBlockDTOs converts a slice of blocks
func ToBlockDTOs(blocks []*domain.Block) []*BlockDTO {
	dtos := make([]*BlockDTO, 0, len(blocks))
	for _, block := range blocks {
		dtos = append(dtos, ToBlockDTO(block))
	}
	return dtos
}

// ToTransitionDTOs converts a block's transition history
func ToTransitionDTOs(history []domain.StateTransition) []TransitionDTO {
	dtos := make([]TransitionDTO, 0, len(history))
	for _, t := range history {
		dtos = append(dtos, TransitionDTO{
			From:      string(t.From),
			To:        string(t.To),
			Timestamp: t.Timestamp,
			Note:      t.Note,
			Actor:     t.Actor,
		})
	}
	return dtos
}

// ToTemplateDTO converts a domain TaskTemplate to its API representation
func ToTemplateDTO(template *domain.TaskTemplate) *TemplateDTO {
	if template == nil {
		return nil
	}
	return &TemplateDTO{
		TemplateID:               template.TemplateID,
		Name:                     template.Name,
		Category:                 string(template.Category),
		Priority:                 string(template.Priority),
		EstimatedDurationMinutes: template.EstimatedDurationMinutes,
		Status:                   string(template.Status),
		RequiresApproval:         template.RequiresApproval,
		ApprovedBy:               template.ApprovedBy,
		Triggers:                 template.Triggers,
		Dependencies:             template.Dependencies,
		Resources:                template.Resources,
		Cost:                     template.Cost,
		CreatedAt:                template.CreatedAt,
		UpdatedAt:                template.UpdatedAt,
	}
}

// ToTemplateDTOs converts a slice of templates
func ToTemplateDTOs(templates []*domain.TaskTemplate) []*TemplateDTO {
	dtos := make([]*TemplateDTO, 0, len(templates))
	for _, template := range templates {
		dtos = append(dtos, ToTemplateDTO(template))
	}
	return dtos
}

// ToScheduleResultDTO converts a scheduling outcome
func ToScheduleResultDTO(blockID string, result domain.ScheduleResult, evaluatedAt time.Time) *ScheduleResultDTO {
	tasks := make([]ScheduledTaskDTO, 0, len(result.Tasks))
	for _, task := range result.Tasks {
		var materials map[string]MaterialQuantityDTO
		if len(task.Materials) > 0 {
			materials = make(map[string]MaterialQuantityDTO, len(task.Materials))
			for name, q := range task.Materials {
				materials[name] = MaterialQuantityDTO{Quantity: q.Quantity, Unit: q.Unit}
			}
		}
		tasks = append(tasks, ScheduledTaskDTO{
			TemplateID:        task.TemplateID,
			Name:              task.Name,
			Category:          string(task.Category),
			Priority:          string(task.Priority),
			EstimatedDuration: task.EstimatedDuration,
			Cost:              task.Cost,
			Materials:         materials,
			Reasons:           task.Reasons,
			Warnings:          task.Warnings,
		})
	}

	var dropped []DroppedTaskDTO
	for _, d := range result.Dropped {
		dropped = append(dropped, DroppedTaskDTO{TemplateID: d.TemplateID, Reason: d.Reason})
	}

	return &ScheduleResultDTO{
		BlockID:     blockID,
		EvaluatedAt: evaluatedAt,
		Tasks:       tasks,
		Dropped:     dropped,
	}
}
