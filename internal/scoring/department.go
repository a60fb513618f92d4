package scoring

import (
	"github.com/shopspring/decimal"

	"github.com/noah-isme/okr-performance-api/pkg/rounding"
)

// AllocationInput is one allocation earned by a department member on a task
// completed in the month.
type AllocationInput struct {
	TaskID          string
	UserID          string
	AdjustedScore   decimal.Decimal
	DifficultyScore int
}

// DepartmentRollup is the derived summary of one department for a month.
type DepartmentRollup struct {
	TotalOKRScore  decimal.Decimal
	MemberCount    int
	AvgScore       decimal.Decimal
	CompletedTasks int
	AvgDifficulty  decimal.Decimal
}

// RollupDepartment aggregates the allocations of members. Allocations whose
// user is not in members are ignored; a task shared by several members counts
// once.
func RollupDepartment(members []string, allocations []AllocationInput) DepartmentRollup {
	rollup := DepartmentRollup{
		TotalOKRScore: rounding.Zero,
		MemberCount:   len(members),
		AvgScore:      rounding.Zero,
		AvgDifficulty: rounding.Zero,
	}
	memberSet := make(map[string]struct{}, len(members))
	for _, id := range members {
		memberSet[id] = struct{}{}
	}

	total := decimal.Zero
	tasks := make(map[string]int)
	for _, alloc := range allocations {
		if _, ok := memberSet[alloc.UserID]; !ok {
			continue
		}
		total = total.Add(alloc.AdjustedScore)
		tasks[alloc.TaskID] = alloc.DifficultyScore
	}
	rollup.TotalOKRScore = rounding.Round2(total)
	rollup.CompletedTasks = len(tasks)

	if rollup.MemberCount > 0 {
		rollup.AvgScore = rounding.Round2(rollup.TotalOKRScore.Div(decimal.NewFromInt(int64(rollup.MemberCount))))
	}
	if len(tasks) > 0 {
		var sum int64
		for _, d := range tasks {
			sum += int64(d)
		}
		rollup.AvgDifficulty = rounding.Round2(decimal.NewFromInt(sum).Div(decimal.NewFromInt(int64(len(tasks)))))
	}
	return rollup
}
