package domain

import (
	"fmt"
	"sort"
	"time"
)

// MaterialQuantity is a computed material need for one scheduled task
type MaterialQuantity struct {
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

// ScheduledTask is one task-execution decision produced by a scheduling
// tick, with its computed cost and an eligibility reason trail for audit.
type ScheduledTask struct {
	TemplateID        string                      `json:"templateId"`
	Name              string                      `json:"name"`
	Category          TaskCategory                `json:"category"`
	Priority          TaskPriority                `json:"priority"`
	EstimatedDuration int                         `json:"estimatedDurationMinutes"`
	Cost              float64                     `json:"cost"`
	Materials         map[string]MaterialQuantity `json:"materials,omitempty"`
	Reasons           []string                    `json:"reasons,omitempty"`
	Warnings          []string                    `json:"warnings,omitempty"`
}

// ScheduleResult is the full outcome of one tick, including templates that
// were eligible but dropped by dependency checks.
type ScheduleResult struct {
	Tasks   []ScheduledTask
	Dropped []DroppedTask
}

// Schedule runs one evaluation tick for a block: active filter, trigger
// evaluation, dependency resolution, then cost attachment. It reads the
// block and templates without mutating either, so concurrent calls across
// distinct blocks need no coordination. Output order is the catalog order,
// stably re-sorted by descending priority so callers needing a single next
// task can take the head. Deterministic for identical inputs.
func Schedule(block *Block, templates []*TaskTemplate, ctx *SchedulingContext, now time.Time) ScheduleResult {
	eligible := make([]*TaskTemplate, 0, len(templates))
	for _, template := range templates {
		if !template.Schedulable() {
			continue
		}
		if IsEligible(template, ctx, now) {
			eligible = append(eligible, template)
		}
	}

	ready, dropped := FilterReady(eligible, ctx, now)

	vars := buildVariableContext(block, ctx)
	tasks := make([]ScheduledTask, 0, len(ready))
	for _, template := range ready {
		tasks = append(tasks, priceTask(template, vars, ctx))
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].Priority.Rank() > tasks[j].Priority.Rank()
	})

	return ScheduleResult{Tasks: tasks, Dropped: dropped}
}

// buildVariableContext merges the block-derived plant count with the
// catalog-supplied cost rates. Catalog rates never shadow plant_count.
func buildVariableContext(block *Block, ctx *SchedulingContext) map[string]float64 {
	vars := make(map[string]float64, len(ctx.CostRates)+2)
	for name, value := range ctx.CostRates {
		vars[name] = value
	}
	vars["plant_count"] = float64(block.TotalAssigned)
	vars["block_capacity"] = float64(block.MaxCapacity)
	return vars
}

// priceTask evaluates the template's cost and material formulas. A formula
// failure degrades that task to zero cost with a warning attached; it never
// drops the task or aborts the batch.
func priceTask(template *TaskTemplate, vars map[string]float64, ctx *SchedulingContext) ScheduledTask {
	task := ScheduledTask{
		TemplateID:        template.TemplateID,
		Name:              template.Name,
		Category:          template.Category,
		Priority:          template.Priority,
		EstimatedDuration: template.EstimatedDurationMinutes,
		Reasons:           eligibilityTrail(template, ctx),
	}

	total := 0.0
	failed := false

	labor := 0.0
	if template.Cost.LaborFormula != "" {
		var err error
		labor, err = EvaluateFormula(template.Cost.LaborFormula, vars)
		if err != nil {
			task.Warnings = append(task.Warnings, fmt.Sprintf("labor formula: %v", err))
			failed = true
		}
	}
	material := 0.0
	if template.Cost.MaterialFormula != "" {
		var err error
		material, err = EvaluateFormula(template.Cost.MaterialFormula, vars)
		if err != nil {
			task.Warnings = append(task.Warnings, fmt.Sprintf("material formula: %v", err))
			failed = true
		}
	}
	equipment := 0.0
	if template.Cost.EquipmentFormula != "" {
		var err error
		equipment, err = EvaluateFormula(template.Cost.EquipmentFormula, vars)
		if err != nil {
			task.Warnings = append(task.Warnings, fmt.Sprintf("equipment formula: %v", err))
			failed = true
		}
	}

	if !failed {
		total = (labor + material + equipment) * (1 + template.Cost.OverheadPercentage/100)
	}
	task.Cost = total

	if len(template.Resources.Materials) > 0 {
		task.Materials = make(map[string]MaterialQuantity, len(template.Resources.Materials))
		for name, req := range template.Resources.Materials {
			qty, err := EvaluateFormula(req.QuantityFormula, vars)
			if err != nil {
				task.Warnings = append(task.Warnings, fmt.Sprintf("material %s quantity: %v", name, err))
				qty = 0
			}
			task.Materials[name] = MaterialQuantity{Quantity: qty, Unit: req.Unit}
		}
	}

	return task
}

// eligibilityTrail records which trigger gates held, for auditability
func eligibilityTrail(template *TaskTemplate, ctx *SchedulingContext) []string {
	trail := make([]string, 0, 4)
	trig := template.Triggers

	if trig.GrowthStage != nil {
		trail = append(trail, fmt.Sprintf("growth stage %s matched", *trig.GrowthStage))
	}
	if trig.DaysAfterPlanting != nil {
		trail = append(trail, fmt.Sprintf("day %d >= %d after planting", ctx.DaysAfterPlanting, *trig.DaysAfterPlanting))
	}
	if trig.DaysBeforeHarvest != nil {
		trail = append(trail, fmt.Sprintf("day %d >= %d before harvest", ctx.DaysBeforeHarvest, *trig.DaysBeforeHarvest))
	}
	for _, threshold := range trig.SensorThresholds {
		if reading, ok := ctx.SensorSnapshot[threshold.SensorType]; ok {
			trail = append(trail, fmt.Sprintf("%s %.2f %s %.2f", threshold.SensorType, reading, threshold.Comparator, threshold.Value))
		} else {
			trail = append(trail, fmt.Sprintf("%s reading missing, condition skipped", threshold.SensorType))
		}
	}
	if len(trail) == 0 {
		trail = append(trail, "no trigger constraints")
	}
	return trail
}
