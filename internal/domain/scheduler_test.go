package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createScheduledBlock(t *testing.T) *Block {
	t.Helper()
	block := createTestBlock(t, 100)
	require.NoError(t, block.AssignPlants("tomato", "Tomato", 40))
	require.NoError(t, block.ConfirmPlanting(nil, "operator-1"))
	block.ClearDomainEvents()
	return block
}

func TestSchedule_CostComputation(t *testing.T) {
	block := createScheduledBlock(t)
	template := createTestTemplate(t, "TPL-001")
	template.Cost = CostFormulas{
		LaborFormula:       "plant_count * labor_rate",
		MaterialFormula:    "plant_count * 0.25",
		EquipmentFormula:   "5",
		OverheadPercentage: 10,
	}

	ctx := createTestContext()
	ctx.CostRates["labor_rate"] = 0.5

	result := Schedule(block, []*TaskTemplate{template}, ctx, time.Now())

	require.Len(t, result.Tasks, 1)
	task := result.Tasks[0]
	// (40*0.5 + 40*0.25 + 5) * 1.1
	assert.InDelta(t, 38.5, task.Cost, 1e-9)
	assert.Empty(t, task.Warnings)
	assert.NotEmpty(t, task.Reasons)
}

func TestSchedule_FormulaFailureDegradesToZero(t *testing.T) {
	block := createScheduledBlock(t)
	broken := createTestTemplate(t, "TPL-BROKEN")
	broken.Cost.LaborFormula = "undefined_rate * 2"
	healthy := createTestTemplate(t, "TPL-OK")

	result := Schedule(block, []*TaskTemplate{broken, healthy}, createTestContext(), time.Now())

	require.Len(t, result.Tasks, 2)
	var brokenTask, healthyTask *ScheduledTask
	for i := range result.Tasks {
		switch result.Tasks[i].TemplateID {
		case "TPL-BROKEN":
			brokenTask = &result.Tasks[i]
		case "TPL-OK":
			healthyTask = &result.Tasks[i]
		}
	}
	require.NotNil(t, brokenTask)
	require.NotNil(t, healthyTask)

	assert.Zero(t, brokenTask.Cost)
	require.NotEmpty(t, brokenTask.Warnings)
	assert.Contains(t, brokenTask.Warnings[0], "undefined_rate")

	// The failure never aborts the batch
	assert.Greater(t, healthyTask.Cost, 0.0)
	assert.Empty(t, healthyTask.Warnings)
}

func TestSchedule_MaterialQuantities(t *testing.T) {
	block := createScheduledBlock(t)
	template := createTestTemplate(t, "TPL-001")
	template.Resources.Materials["fertilizer"] = MaterialRequirement{
		QuantityFormula: "plant_count * 0.1",
		Unit:            "kg",
	}

	result := Schedule(block, []*TaskTemplate{template}, createTestContext(), time.Now())

	require.Len(t, result.Tasks, 1)
	mat, ok := result.Tasks[0].Materials["fertilizer"]
	require.True(t, ok)
	assert.InDelta(t, 4.0, mat.Quantity, 1e-9)
	assert.Equal(t, "kg", mat.Unit)
}

func TestSchedule_FiltersNonActiveTemplates(t *testing.T) {
	block := createScheduledBlock(t)

	draft, err := NewTaskTemplate("TPL-DRAFT", "Draft", CategoryPruning, PriorityLow, 30)
	require.NoError(t, err)
	draft.Cost = CostFormulas{LaborFormula: "1", MaterialFormula: "1"}

	archived := createTestTemplate(t, "TPL-ARCHIVED")
	archived.Archive()

	active := createTestTemplate(t, "TPL-ACTIVE")

	result := Schedule(block, []*TaskTemplate{draft, archived, active}, createTestContext(), time.Now())

	require.Len(t, result.Tasks, 1)
	assert.Equal(t, "TPL-ACTIVE", result.Tasks[0].TemplateID)
}

func TestSchedule_Ordering(t *testing.T) {
	block := createScheduledBlock(t)

	low1 := createTestTemplate(t, "TPL-LOW-1")
	low1.Priority = PriorityLow
	urgent := createTestTemplate(t, "TPL-URGENT")
	urgent.Priority = PriorityUrgent
	low2 := createTestTemplate(t, "TPL-LOW-2")
	low2.Priority = PriorityLow
	high := createTestTemplate(t, "TPL-HIGH")
	high.Priority = PriorityHigh

	result := Schedule(block, []*TaskTemplate{low1, urgent, low2, high}, createTestContext(), time.Now())

	require.Len(t, result.Tasks, 4)
	assert.Equal(t, "TPL-URGENT", result.Tasks[0].TemplateID)
	assert.Equal(t, "TPL-HIGH", result.Tasks[1].TemplateID)
	// Catalog order preserved within equal priority
	assert.Equal(t, "TPL-LOW-1", result.Tasks[2].TemplateID)
	assert.Equal(t, "TPL-LOW-2", result.Tasks[3].TemplateID)
}

func TestSchedule_Determinism(t *testing.T) {
	block := createScheduledBlock(t)
	templates := []*TaskTemplate{
		createTestTemplate(t, "TPL-1"),
		createTestTemplate(t, "TPL-2"),
		createTestTemplate(t, "TPL-3"),
	}
	templates[1].Priority = PriorityUrgent
	ctx := createTestContext()
	ctx.CostRates["labor_rate"] = 1.25
	now := time.Now()

	first := Schedule(block, templates, ctx, now)
	second := Schedule(block, templates, ctx, now)

	assert.Equal(t, first, second)
}

func TestSchedule_DependencyDropSurfaced(t *testing.T) {
	block := createScheduledBlock(t)
	gated := createTestTemplate(t, "TPL-GATED")
	gated.Dependencies.PrerequisiteTasks = []string{"TPL-PREP"}

	result := Schedule(block, []*TaskTemplate{gated}, createTestContext(), time.Now())

	assert.Empty(t, result.Tasks)
	require.Len(t, result.Dropped, 1)
	assert.Equal(t, "TPL-GATED", result.Dropped[0].TemplateID)
}

func TestSchedule_EmptyCatalog(t *testing.T) {
	block := createScheduledBlock(t)
	result := Schedule(block, nil, createTestContext(), time.Now())
	assert.Empty(t, result.Tasks)
	assert.Empty(t, result.Dropped)
}
