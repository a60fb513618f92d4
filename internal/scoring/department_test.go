package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRollupDepartment(t *testing.T) {
	allocations := []AllocationInput{
		{TaskID: "t1", UserID: "a", AdjustedScore: dec("4.00"), DifficultyScore: 8},
		{TaskID: "t1", UserID: "b", AdjustedScore: dec("4.00"), DifficultyScore: 8},
		{TaskID: "t2", UserID: "a", AdjustedScore: dec("5.00"), DifficultyScore: 5},
		{TaskID: "t3", UserID: "outsider", AdjustedScore: dec("3.00"), DifficultyScore: 3},
	}

	rollup := RollupDepartment([]string{"a", "b", "c"}, allocations)
	assertDecimal(t, "13.00", rollup.TotalOKRScore)
	assert.Equal(t, 3, rollup.MemberCount)
	assertDecimal(t, "4.33", rollup.AvgScore)
	assert.Equal(t, 2, rollup.CompletedTasks)
	assertDecimal(t, "6.50", rollup.AvgDifficulty)
}

func TestRollupDepartmentEmpty(t *testing.T) {
	rollup := RollupDepartment(nil, nil)
	assertDecimal(t, "0", rollup.TotalOKRScore)
	assertDecimal(t, "0", rollup.AvgScore)
	assertDecimal(t, "0", rollup.AvgDifficulty)
	assert.Zero(t, rollup.CompletedTasks)
	assert.Zero(t, rollup.MemberCount)
}
