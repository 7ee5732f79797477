package domain

import "time"

// IsEligible decides whether a template's triggers hold for the given
// context at the given instant. Total function: every gate is independently
// well-defined, so the answer is always a plain yes or no. Gates are
// conjunctive; an absent sub-condition imposes no constraint.
func IsEligible(template *TaskTemplate, ctx *SchedulingContext, now time.Time) bool {
	// Manual-only templates are reachable solely through an explicit
	// operator invocation, never through automatic scheduling.
	if template.Triggers.ManualOnly {
		return false
	}

	trig := template.Triggers
	if trig.GrowthStage != nil && *trig.GrowthStage != ctx.GrowthStage {
		return false
	}
	if trig.DaysAfterPlanting != nil && ctx.DaysAfterPlanting < *trig.DaysAfterPlanting {
		return false
	}
	if trig.DaysBeforeHarvest != nil && ctx.DaysBeforeHarvest < *trig.DaysBeforeHarvest {
		return false
	}

	// Frequency: a template that already ran waits out its repeat interval.
	// A template with no completion on record is due immediately.
	if trig.FrequencyDays != nil {
		if last, ok := ctx.CompletedAt(template.TemplateID); ok {
			if int(now.Sub(last).Hours()/24) < *trig.FrequencyDays {
				return false
			}
		}
	}

	if !seasonAllows(template.Dependencies.Seasonal, ctx.CurrentMonth) {
		return false
	}

	for _, threshold := range trig.SensorThresholds {
		reading, ok := ctx.SensorSnapshot[threshold.SensorType]
		if !ok {
			// Missing reading: skip the condition rather than fail it,
			// so a dead sensor does not silence a whole template.
			continue
		}
		if !threshold.Comparator.Holds(reading, threshold.Value) {
			return false
		}
	}

	// Weather conditions follow the sensor policy: without an observation
	// the gate goes unevaluated instead of refusing.
	if len(trig.WeatherConditions) > 0 && len(ctx.Weather) > 0 {
		for _, condition := range trig.WeatherConditions {
			if !ctx.HasWeather(condition) {
				return false
			}
		}
	}

	return true
}

// seasonAllows applies the seasonal gate: a restricted month always refuses,
// otherwise a non-empty allowed list must contain the current month.
func seasonAllows(seasonal *SeasonalRestriction, month int) bool {
	if seasonal == nil {
		return true
	}
	for _, m := range seasonal.RestrictedMonths {
		if m == month {
			return false
		}
	}
	if len(seasonal.AllowedMonths) > 0 {
		for _, m := range seasonal.AllowedMonths {
			if m == month {
				return true
			}
		}
		return false
	}
	return true
}
