package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestBlock(t *testing.T, capacity int) *Block {
	t.Helper()
	block, err := NewBlock("BLK-001", "North Field A", "FARM-001", capacity)
	require.NoError(t, err)
	return block
}

func TestNewBlock(t *testing.T) {
	tests := []struct {
		name        string
		capacity    int
		expectError error
	}{
		{name: "Valid block", capacity: 100, expectError: nil},
		{name: "Zero capacity", capacity: 0, expectError: ErrInvalidCapacity},
		{name: "Negative capacity", capacity: -5, expectError: ErrInvalidCapacity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			block, err := NewBlock("BLK-001", "North Field A", "FARM-001", tt.capacity)

			if tt.expectError != nil {
				assert.Equal(t, tt.expectError, err)
				assert.Nil(t, block)
			} else {
				require.NoError(t, err)
				assert.Equal(t, BlockStatusEmpty, block.Status)
				assert.Equal(t, 0, block.TotalAssigned)
				assert.Equal(t, tt.capacity, block.RemainingCapacity)
				assert.Empty(t, block.Assignments)
				assert.Empty(t, block.TransitionHistory)
				assert.Len(t, block.GetDomainEvents(), 1)
			}
		})
	}
}

func TestBlock_AssignPlants(t *testing.T) {
	t.Run("First assignment transitions empty to assigned", func(t *testing.T) {
		block := createTestBlock(t, 100)

		err := block.AssignPlants("tomato", "Tomato", 60)
		require.NoError(t, err)

		assert.Equal(t, BlockStatusAssigned, block.Status)
		assert.Equal(t, 60, block.TotalAssigned)
		assert.Equal(t, 40, block.RemainingCapacity)
		require.Len(t, block.Assignments, 1)
		assert.Equal(t, "tomato", block.Assignments[0].PlantTypeID)
		assert.Len(t, block.TransitionHistory, 1)
	})

	t.Run("Assignment exceeding remaining capacity fails without mutation", func(t *testing.T) {
		block := createTestBlock(t, 100)
		require.NoError(t, block.AssignPlants("tomato", "Tomato", 60))
		historyLen := len(block.TransitionHistory)

		err := block.AssignPlants("tomato", "Tomato", 50)

		var capErr *InsufficientCapacityError
		require.ErrorAs(t, err, &capErr)
		assert.Equal(t, 50, capErr.Requested)
		assert.Equal(t, 40, capErr.Available)
		assert.Equal(t, BlockStatusAssigned, block.Status)
		assert.Equal(t, 60, block.TotalAssigned)
		assert.Equal(t, 40, block.RemainingCapacity)
		assert.Len(t, block.TransitionHistory, historyLen)
	})

	t.Run("Repeated assignment of same plant type increments the entry", func(t *testing.T) {
		block := createTestBlock(t, 100)
		require.NoError(t, block.AssignPlants("tomato", "Tomato", 30))
		require.NoError(t, block.AssignPlants("tomato", "Tomato", 20))

		require.Len(t, block.Assignments, 1)
		assert.Equal(t, 50, block.Assignments[0].AssignedCount)
		assert.Equal(t, 50, block.TotalAssigned)
	})

	t.Run("Different plant types get separate entries", func(t *testing.T) {
		block := createTestBlock(t, 100)
		require.NoError(t, block.AssignPlants("tomato", "Tomato", 30))
		require.NoError(t, block.AssignPlants("basil", "Basil", 20))

		assert.Len(t, block.Assignments, 2)
		assert.Equal(t, 50, block.TotalAssigned)
		assert.Equal(t, 50, block.RemainingCapacity)
	})

	t.Run("Non-positive count rejected", func(t *testing.T) {
		block := createTestBlock(t, 100)
		assert.Equal(t, ErrInvalidPlantCount, block.AssignPlants("tomato", "Tomato", 0))
		assert.Equal(t, ErrInvalidPlantCount, block.AssignPlants("tomato", "Tomato", -3))
	})
}

func TestBlock_RemovePlants(t *testing.T) {
	t.Run("Removing all plants transitions back to empty", func(t *testing.T) {
		block := createTestBlock(t, 100)
		require.NoError(t, block.AssignPlants("tomato", "Tomato", 60))

		err := block.RemovePlants("tomato", 60)
		require.NoError(t, err)

		assert.Equal(t, BlockStatusEmpty, block.Status)
		assert.Equal(t, 0, block.TotalAssigned)
		assert.Equal(t, 100, block.RemainingCapacity)
		assert.Empty(t, block.Assignments)
		assert.Len(t, block.TransitionHistory, 2)
	})

	t.Run("Partial removal keeps the entry", func(t *testing.T) {
		block := createTestBlock(t, 100)
		require.NoError(t, block.AssignPlants("tomato", "Tomato", 60))

		require.NoError(t, block.RemovePlants("tomato", 20))

		assert.Equal(t, BlockStatusAssigned, block.Status)
		assert.Equal(t, 40, block.TotalAssigned)
		require.Len(t, block.Assignments, 1)
		assert.Equal(t, 40, block.Assignments[0].AssignedCount)
	})

	t.Run("Removing more than assigned fails without mutation", func(t *testing.T) {
		block := createTestBlock(t, 100)
		require.NoError(t, block.AssignPlants("tomato", "Tomato", 30))

		err := block.RemovePlants("tomato", 40)

		var asgErr *InsufficientAssignmentError
		require.ErrorAs(t, err, &asgErr)
		assert.Equal(t, 40, asgErr.Requested)
		assert.Equal(t, 30, asgErr.Available)
		assert.Equal(t, 30, block.TotalAssigned)
	})

	t.Run("Unknown plant type", func(t *testing.T) {
		block := createTestBlock(t, 100)
		require.NoError(t, block.AssignPlants("tomato", "Tomato", 30))

		assert.Equal(t, ErrAssignmentNotFound, block.RemovePlants("basil", 5))
	})

	t.Run("Removing all from a planted block fails without mutation", func(t *testing.T) {
		block := createTestBlock(t, 100)
		require.NoError(t, block.AssignPlants("tomato", "Tomato", 10))
		require.NoError(t, block.ConfirmPlanting(nil, "operator-1"))

		err := block.RemovePlants("tomato", 10)

		var trErr *IllegalTransitionError
		require.ErrorAs(t, err, &trErr)
		assert.Equal(t, BlockStatusPlanted, trErr.From)
		assert.Equal(t, BlockStatusEmpty, trErr.To)

		// The rejected removal left the aggregate untouched
		assert.Equal(t, BlockStatusPlanted, block.Status)
		assert.Equal(t, 10, block.TotalAssigned)
		assert.Equal(t, 90, block.RemainingCapacity)
		require.Len(t, block.Assignments, 1)
		assert.Equal(t, 10, block.Assignments[0].AssignedCount)
	})

	t.Run("Partial removal from a planted block is allowed", func(t *testing.T) {
		block := createTestBlock(t, 100)
		require.NoError(t, block.AssignPlants("tomato", "Tomato", 10))
		require.NoError(t, block.ConfirmPlanting(nil, "operator-1"))

		require.NoError(t, block.RemovePlants("tomato", 4))

		assert.Equal(t, BlockStatusPlanted, block.Status)
		assert.Equal(t, 6, block.TotalAssigned)
	})
}

// Capacity invariant: for any sequence of assign/remove calls, the counters
// stay within bounds and consistent with each other.
func TestBlock_CapacityInvariant(t *testing.T) {
	block := createTestBlock(t, 50)

	ops := []struct {
		assign bool
		plant  string
		count  int
	}{
		{true, "tomato", 20},
		{true, "basil", 25},
		{true, "tomato", 10}, // would exceed, must fail
		{false, "basil", 10},
		{true, "pepper", 15},
		{false, "tomato", 20},
		{false, "pepper", 15},
		{false, "basil", 15},
	}

	for _, op := range ops {
		if op.assign {
			_ = block.AssignPlants(op.plant, op.plant, op.count)
		} else {
			_ = block.RemovePlants(op.plant, op.count)
		}

		sum := 0
		for _, a := range block.Assignments {
			sum += a.AssignedCount
		}
		require.Equal(t, sum, block.TotalAssigned)
		require.Equal(t, block.MaxCapacity-block.TotalAssigned, block.RemainingCapacity)
		require.GreaterOrEqual(t, block.TotalAssigned, 0)
		require.LessOrEqual(t, block.TotalAssigned, block.MaxCapacity)

		// Status/assignment coupling holds after every operation
		if block.TotalAssigned == 0 {
			require.Equal(t, BlockStatusEmpty, block.Status)
		} else {
			require.NotEqual(t, BlockStatusEmpty, block.Status)
		}
	}

	assert.Equal(t, 0, block.TotalAssigned)
	assert.Equal(t, BlockStatusEmpty, block.Status)
}

// End-to-end capacity scenario
func TestBlock_CapacityScenario(t *testing.T) {
	block := createTestBlock(t, 100)

	require.NoError(t, block.AssignPlants("tomato", "Tomato", 60))
	assert.Equal(t, BlockStatusAssigned, block.Status)
	assert.Equal(t, 40, block.RemainingCapacity)

	err := block.AssignPlants("tomato", "Tomato", 50)
	var capErr *InsufficientCapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, 50, capErr.Requested)
	assert.Equal(t, 40, capErr.Available)
	assert.Equal(t, BlockStatusAssigned, block.Status)

	require.NoError(t, block.RemovePlants("tomato", 60))
	assert.Equal(t, BlockStatusEmpty, block.Status)
	assert.Equal(t, 100, block.RemainingCapacity)
}

func TestBlock_CanDelete(t *testing.T) {
	block := createTestBlock(t, 100)
	assert.True(t, block.CanDelete())

	require.NoError(t, block.AssignPlants("tomato", "Tomato", 10))
	assert.False(t, block.CanDelete())

	require.NoError(t, block.RemovePlants("tomato", 10))
	assert.True(t, block.CanDelete())
}
