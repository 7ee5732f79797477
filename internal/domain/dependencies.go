package domain

import (
	"fmt"
	"time"
)

// DroppedTask records why a template fell out of the ready set. Dropping is
// not an error: absence from the result is the only scheduling signal, the
// reasons exist for observability.
type DroppedTask struct {
	TemplateID string
	Reason     string
}

// FilterReady filters an eligible-template list down to templates whose
// prerequisites are completed, waiting periods elapsed, and conflicts
// avoided. Pure given its inputs.
func FilterReady(eligible []*TaskTemplate, ctx *SchedulingContext, now time.Time) ([]*TaskTemplate, []DroppedTask) {
	ready := make([]*TaskTemplate, 0, len(eligible))
	dropped := make([]DroppedTask, 0)

	for _, template := range eligible {
		if reason := readinessBlock(template, ctx, now); reason != "" {
			dropped = append(dropped, DroppedTask{TemplateID: template.TemplateID, Reason: reason})
			continue
		}
		ready = append(ready, template)
	}

	return ready, dropped
}

// readinessBlock returns the first dependency check that fails, or "" when
// the template is ready.
func readinessBlock(template *TaskTemplate, ctx *SchedulingContext, now time.Time) string {
	deps := template.Dependencies

	for _, prereq := range deps.PrerequisiteTasks {
		if !ctx.IsCompleted(prereq) {
			return fmt.Sprintf("prerequisite %s not completed", prereq)
		}
	}

	for _, rule := range deps.WaitRules {
		completedAt, ok := ctx.CompletedAt(rule.AfterTaskID)
		if !ok {
			continue
		}
		wait := time.Duration(rule.WaitHours) * time.Hour
		if now.Sub(completedAt) < wait {
			return fmt.Sprintf("waiting period after %s not elapsed (%dh required)", rule.AfterTaskID, rule.WaitHours)
		}
	}

	for _, conflict := range deps.ConflictingTasks {
		if ctx.IsPending(conflict) {
			return fmt.Sprintf("conflicting task %s is queued", conflict)
		}
	}

	return ""
}
