package scoring

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/okr-performance-api/internal/models"
)

func completed(difficulty int, postponed bool, collaborators ...string) DistributionInput {
	return DistributionInput{
		Status:          models.TaskStatusCompleted,
		DifficultyScore: difficulty,
		EverPostponed:   postponed,
		OwnerID:         "owner",
		CollaboratorIDs: collaborators,
	}
}

func TestDistribute(t *testing.T) {
	tests := []struct {
		name        string
		input       DistributionInput
		total       string
		penalty     string
		ownerShare  string
		ownerPct    string
		collabShare string
		collabPct   string
		collabCount int
	}{
		{name: "owner only", input: completed(8, false), total: "8.00", penalty: "1.000", ownerShare: "8.00", ownerPct: "100.00"},
		{name: "one collaborator", input: completed(8, false, "c1"), total: "8.00", penalty: "1.000", ownerShare: "4.00", ownerPct: "50.00", collabShare: "4.00", collabPct: "50.00", collabCount: 1},
		{name: "postponed one collaborator", input: completed(5, true, "c1"), total: "4.00", penalty: "0.800", ownerShare: "2.00", ownerPct: "50.00", collabShare: "2.00", collabPct: "50.00", collabCount: 1},
		{name: "postponed difficulty eight", input: completed(8, true, "c1"), total: "6.40", penalty: "0.800", ownerShare: "3.20", ownerPct: "50.00", collabShare: "3.20", collabPct: "50.00", collabCount: 1},
		{name: "three collaborators", input: completed(10, false, "c1", "c2", "c3"), total: "10.00", penalty: "1.000", ownerShare: "5.00", ownerPct: "50.00", collabShare: "1.67", collabPct: "16.67", collabCount: 3},
		{name: "duplicates and owner ignored", input: completed(6, false, "c1", "c1", "owner", ""), total: "6.00", penalty: "1.000", ownerShare: "3.00", ownerPct: "50.00", collabShare: "3.00", collabPct: "50.00", collabCount: 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, err := Distribute(tc.input)
			require.NoError(t, err)
			assertDecimal(t, tc.total, result.TotalScore)
			assertDecimal(t, tc.penalty, result.PenaltyCoefficient)
			require.Len(t, result.Shares, tc.collabCount+1)

			owner := result.Shares[0]
			assert.True(t, owner.IsOwner)
			assert.Equal(t, "owner", owner.UserID)
			assertDecimal(t, tc.ownerShare, owner.AdjustedScore)
			assertDecimal(t, tc.ownerShare, owner.BaseScore)
			assertDecimal(t, tc.ownerPct, owner.Percentage)

			for _, share := range result.Shares[1:] {
				assert.False(t, share.IsOwner)
				assertDecimal(t, tc.collabShare, share.AdjustedScore)
				assertDecimal(t, tc.collabPct, share.Percentage)
			}
		})
	}
}

func TestDistributeRejectsIncompleteTask(t *testing.T) {
	for _, status := range []models.TaskStatus{models.TaskStatusTodo, models.TaskStatusInProgress, models.TaskStatusPostponed} {
		in := completed(5, false)
		in.Status = status
		_, err := Distribute(in)
		assert.True(t, errors.Is(err, ErrInvalidState), string(status))
	}
}

func TestDistributeConservation(t *testing.T) {
	cent := dec("0.01")
	for difficulty := 1; difficulty <= 10; difficulty++ {
		for _, postponed := range []bool{false, true} {
			for n := 0; n <= 5; n++ {
				collaborators := make([]string, n)
				for i := range collaborators {
					collaborators[i] = fmt.Sprintf("c%d", i)
				}
				result, err := Distribute(completed(difficulty, postponed, collaborators...))
				require.NoError(t, err)

				wantPenalty := PenaltyNone
				if postponed {
					wantPenalty = PenaltyPostponed
				}
				assert.True(t, wantPenalty.Equal(result.PenaltyCoefficient))

				sum := decimal.Zero
				for _, s := range result.Shares {
					sum = sum.Add(s.AdjustedScore)
				}
				label := fmt.Sprintf("difficulty=%d postponed=%v n=%d", difficulty, postponed, n)
				if n <= 1 {
					assert.True(t, sum.Equal(result.TotalScore), label)
					continue
				}
				// Even collaborator splits are rounded independently and may
				// drift from the total by less than one cent per collaborator.
				drift := sum.Sub(result.TotalScore).Abs()
				assert.True(t, drift.LessThanOrEqual(cent.Mul(decimal.NewFromInt(int64(n-1)))), label)
			}
		}
	}
}

func TestDistributeKnownDrift(t *testing.T) {
	result, err := Distribute(completed(10, false, "c1", "c2", "c3"))
	require.NoError(t, err)

	sum := decimal.Zero
	for _, s := range result.Shares {
		sum = sum.Add(s.AdjustedScore)
	}
	assertDecimal(t, "10.01", sum)
}
