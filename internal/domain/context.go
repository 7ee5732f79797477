package domain

import "time"

// SchedulingContext is the caller-assembled snapshot of growth, time, sensor
// and calendar facts for one evaluation tick. The engine never gathers any
// of this itself: sensors, task ledgers and calendars are resolved by the
// caller before a tick starts, so every evaluation is pure computation.
type SchedulingContext struct {
	GrowthStage       GrowthStage
	DaysAfterPlanting int
	DaysBeforeHarvest int
	CurrentMonth      int // 1-12

	// SensorSnapshot maps sensor type to its latest reading. A sensor
	// missing from the snapshot leaves threshold conditions on it
	// unevaluated rather than failing them.
	SensorSnapshot map[string]float64

	// Weather holds the current weather conditions. An empty slice means no
	// observation was supplied and weather conditions go unevaluated, the
	// same policy as missing sensor readings.
	Weather []string

	// CompletedTasks maps completed template ids to completion time.
	CompletedTasks map[string]time.Time

	// QueuedTasks holds template ids queued for execution. Queued-but-not-
	// completed means present here and absent from CompletedTasks.
	QueuedTasks map[string]struct{}

	// CostRates carries catalog-supplied variables (labor rates, material
	// unit prices) merged into every formula evaluation.
	CostRates map[string]float64
}

// HasWeather reports whether a weather condition is currently observed
func (c *SchedulingContext) HasWeather(condition string) bool {
	for _, w := range c.Weather {
		if w == condition {
			return true
		}
	}
	return false
}

// IsCompleted reports whether a task id has completed
func (c *SchedulingContext) IsCompleted(taskID string) bool {
	_, ok := c.CompletedTasks[taskID]
	return ok
}

// CompletedAt returns the completion time for a task id
func (c *SchedulingContext) CompletedAt(taskID string) (time.Time, bool) {
	t, ok := c.CompletedTasks[taskID]
	return t, ok
}

// IsPending reports whether a task id is queued but not yet completed
func (c *SchedulingContext) IsPending(taskID string) bool {
	if _, queued := c.QueuedTasks[taskID]; !queued {
		return false
	}
	return !c.IsCompleted(taskID)
}
