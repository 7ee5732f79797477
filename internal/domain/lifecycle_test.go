package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createAssignedBlock(t *testing.T) *Block {
	t.Helper()
	block := createTestBlock(t, 100)
	require.NoError(t, block.AssignPlants("tomato", "Tomato", 60))
	return block
}

func TestBlock_ConfirmPlanting(t *testing.T) {
	t.Run("Sets planting dates and harvest window", func(t *testing.T) {
		block := createAssignedBlock(t)

		offsets := map[string]HarvestOffsets{
			"tomato": {StartDays: 70, EndDays: 90},
		}
		err := block.ConfirmPlanting(offsets, "operator-1")
		require.NoError(t, err)

		assert.Equal(t, BlockStatusPlanted, block.Status)
		a := block.GetAssignment("tomato")
		require.NotNil(t, a)
		require.NotNil(t, a.PlantingDate)
		require.NotNil(t, a.ExpectedHarvestStart)
		require.NotNil(t, a.ExpectedHarvestEnd)
		assert.Equal(t, a.PlantingDate.AddDate(0, 0, 70), *a.ExpectedHarvestStart)
		assert.Equal(t, a.PlantingDate.AddDate(0, 0, 90), *a.ExpectedHarvestEnd)
	})

	t.Run("Missing catalog offsets leave the window unset", func(t *testing.T) {
		block := createAssignedBlock(t)

		require.NoError(t, block.ConfirmPlanting(nil, "operator-1"))

		a := block.GetAssignment("tomato")
		require.NotNil(t, a.PlantingDate)
		assert.Nil(t, a.ExpectedHarvestStart)
	})

	t.Run("Existing planting date is preserved", func(t *testing.T) {
		block := createAssignedBlock(t)
		planted := time.Now().AddDate(0, 0, -10)
		block.Assignments[0].PlantingDate = &planted

		require.NoError(t, block.ConfirmPlanting(nil, "operator-1"))

		assert.Equal(t, planted, *block.Assignments[0].PlantingDate)
	})

	t.Run("Rejected from empty", func(t *testing.T) {
		block := createTestBlock(t, 100)

		err := block.ConfirmPlanting(nil, "operator-1")

		var trErr *IllegalTransitionError
		require.ErrorAs(t, err, &trErr)
		assert.Equal(t, BlockStatusEmpty, trErr.From)
		assert.Equal(t, BlockStatusPlanted, trErr.To)
		assert.Empty(t, block.TransitionHistory)
	})
}

func TestBlock_StartHarvest(t *testing.T) {
	plantedBlock := func(t *testing.T, expectedStartOffsetDays int) *Block {
		block := createAssignedBlock(t)
		require.NoError(t, block.ConfirmPlanting(nil, "operator-1"))
		if expectedStartOffsetDays != 0 {
			expected := time.Now().AddDate(0, 0, expectedStartOffsetDays)
			block.Assignments[0].ExpectedHarvestStart = &expected
		}
		return block
	}

	t.Run("On time", func(t *testing.T) {
		block := plantedBlock(t, 0)
		expected := time.Now()
		block.Assignments[0].ExpectedHarvestStart = &expected

		require.NoError(t, block.StartHarvest("operator-2"))

		assert.Equal(t, BlockStatusHarvesting, block.Status)
		a := block.GetAssignment("tomato")
		require.NotNil(t, a.ActualHarvestStart)
		assert.Equal(t, "on time", a.HarvestTimingNote)
	})

	t.Run("Late harvest", func(t *testing.T) {
		block := plantedBlock(t, -5)

		require.NoError(t, block.StartHarvest("operator-2"))

		assert.Equal(t, "5 days late", block.GetAssignment("tomato").HarvestTimingNote)
	})

	t.Run("Early harvest", func(t *testing.T) {
		block := plantedBlock(t, 4)

		require.NoError(t, block.StartHarvest("operator-2"))

		assert.Equal(t, "3 days early", block.GetAssignment("tomato").HarvestTimingNote)
	})

	t.Run("No expected date leaves no note", func(t *testing.T) {
		block := plantedBlock(t, 0)

		require.NoError(t, block.StartHarvest("operator-2"))

		assert.Empty(t, block.GetAssignment("tomato").HarvestTimingNote)
	})

	t.Run("Rejected from assigned", func(t *testing.T) {
		block := createAssignedBlock(t)

		err := block.StartHarvest("operator-2")

		var trErr *IllegalTransitionError
		require.ErrorAs(t, err, &trErr)
		assert.Equal(t, BlockStatusAssigned, trErr.From)
	})
}

func TestBlock_Alerts(t *testing.T) {
	t.Run("Open and resolve restores previous status", func(t *testing.T) {
		block := createAssignedBlock(t)
		require.NoError(t, block.ConfirmPlanting(nil, "operator-1"))

		err := block.OpenAlert(AlertKindPest, AlertSeverityHigh, "aphids on rows 3-5", "scout-1")
		require.NoError(t, err)
		assert.Equal(t, BlockStatusAlert, block.Status)
		assert.True(t, block.HasActiveAlert())
		// Assignments untouched by the alert
		assert.Equal(t, 60, block.TotalAssigned)

		require.NoError(t, block.ResolveAlert("scout-1"))
		assert.Equal(t, BlockStatusPlanted, block.Status)
		assert.False(t, block.HasActiveAlert())
		require.NotNil(t, block.Alert.ResolvedAt)
	})

	t.Run("Alert from any operational state", func(t *testing.T) {
		for _, setup := range []func(t *testing.T) *Block{
			func(t *testing.T) *Block { return createTestBlock(t, 100) },
			createAssignedBlock,
		} {
			block := setup(t)
			require.NoError(t, block.OpenAlert(AlertKindWeather, AlertSeverityCritical, "frost warning", "system"))
			assert.Equal(t, BlockStatusAlert, block.Status)
		}
	})

	t.Run("Double open rejected", func(t *testing.T) {
		block := createAssignedBlock(t)
		require.NoError(t, block.OpenAlert(AlertKindDisease, AlertSeverityMedium, "", "scout-1"))

		assert.Equal(t, ErrAlertAlreadyOpen, block.OpenAlert(AlertKindPest, AlertSeverityLow, "", "scout-1"))
	})

	t.Run("Resolve without alert rejected", func(t *testing.T) {
		block := createAssignedBlock(t)
		assert.Equal(t, ErrNoActiveAlert, block.ResolveAlert("scout-1"))
	})

	t.Run("Lifecycle operations rejected while alert is open", func(t *testing.T) {
		block := createAssignedBlock(t)
		require.NoError(t, block.OpenAlert(AlertKindPest, AlertSeverityHigh, "", "scout-1"))

		err := block.ConfirmPlanting(nil, "operator-1")
		var trErr *IllegalTransitionError
		require.ErrorAs(t, err, &trErr)
		assert.Equal(t, BlockStatusAlert, trErr.From)
		assert.Equal(t, BlockStatusAlert, block.Status)
		assert.True(t, block.HasActiveAlert())
	})

	t.Run("Harvest rejected while alert opened on a planted block", func(t *testing.T) {
		block := createAssignedBlock(t)
		require.NoError(t, block.ConfirmPlanting(nil, "operator-1"))
		require.NoError(t, block.OpenAlert(AlertKindWeather, AlertSeverityCritical, "frost", "system"))

		// The pre-alert status being planted does not open a way out.
		var trErr *IllegalTransitionError
		require.ErrorAs(t, block.StartHarvest("operator-2"), &trErr)
		assert.Equal(t, BlockStatusAlert, block.Status)

		require.NoError(t, block.ResolveAlert("scout-1"))
		assert.Equal(t, BlockStatusPlanted, block.Status)
		require.NoError(t, block.StartHarvest("operator-2"))
	})

	t.Run("Allocator rejected while alert is open", func(t *testing.T) {
		block := createTestBlock(t, 100)
		require.NoError(t, block.OpenAlert(AlertKindEquipment, AlertSeverityMedium, "", "scout-1"))

		assert.Equal(t, ErrBlockInAlert, block.AssignPlants("tomato", "Tomato", 20))
		assert.Equal(t, 0, block.TotalAssigned)

		// Resolving restores empty, and empty still matches zero assigned.
		require.NoError(t, block.ResolveAlert("scout-1"))
		assert.Equal(t, BlockStatusEmpty, block.Status)
		assert.Equal(t, 0, block.TotalAssigned)
	})

	t.Run("Removal rejected while alert is open", func(t *testing.T) {
		block := createAssignedBlock(t)
		require.NoError(t, block.OpenAlert(AlertKindDisease, AlertSeverityLow, "", "scout-1"))

		assert.Equal(t, ErrBlockInAlert, block.RemovePlants("tomato", 60))
		assert.Equal(t, 60, block.TotalAssigned)
	})
}

// Transition audit completeness: history grows by exactly one per successful
// transition and by zero per rejected one.
func TestBlock_TransitionAudit(t *testing.T) {
	block := createTestBlock(t, 100)
	assert.Empty(t, block.TransitionHistory)

	require.NoError(t, block.AssignPlants("tomato", "Tomato", 10))
	assert.Len(t, block.TransitionHistory, 1)

	require.Error(t, block.StartHarvest("op")) // assigned -> harvesting is illegal
	assert.Len(t, block.TransitionHistory, 1)

	require.NoError(t, block.ConfirmPlanting(nil, "op"))
	assert.Len(t, block.TransitionHistory, 2)

	require.NoError(t, block.OpenAlert(AlertKindOther, AlertSeverityLow, "", "op"))
	assert.Len(t, block.TransitionHistory, 3)

	require.NoError(t, block.ResolveAlert("op"))
	assert.Len(t, block.TransitionHistory, 4)

	require.NoError(t, block.StartHarvest("op"))
	assert.Len(t, block.TransitionHistory, 5)

	// History records chain correctly
	for i, tr := range block.TransitionHistory {
		if i > 0 {
			assert.Equal(t, block.TransitionHistory[i-1].To, tr.From)
		}
	}
}
