package scoring

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/okr-performance-api/pkg/rounding"
)

// Dimension names one of the twelve inputs of the monthly score.
type Dimension string

const (
	DimensionWorkHours            Dimension = "work_hours"
	DimensionCompletionRate       Dimension = "completion_rate"
	DimensionAvgDifficulty        Dimension = "avg_difficulty"
	DimensionRevenue              Dimension = "revenue"
	DimensionDepartmentAvg        Dimension = "department_avg"
	DimensionTaskRating           Dimension = "task_rating"
	DimensionCultureUnderstanding Dimension = "culture_understanding"
	DimensionTeamFit              Dimension = "team_fit"
	DimensionMonthlyGrowth        Dimension = "monthly_growth"
	DimensionBiggestContribution  Dimension = "biggest_contribution"
	DimensionPeerEvaluation       Dimension = "peer_evaluation"
	DimensionAdminFinal           Dimension = "admin_final"
)

// Dimensions lists every dimension in presentation order.
var Dimensions = []Dimension{
	DimensionWorkHours,
	DimensionCompletionRate,
	DimensionAvgDifficulty,
	DimensionRevenue,
	DimensionDepartmentAvg,
	DimensionTaskRating,
	DimensionCultureUnderstanding,
	DimensionTeamFit,
	DimensionMonthlyGrowth,
	DimensionBiggestContribution,
	DimensionPeerEvaluation,
	DimensionAdminFinal,
}

// Weights is a validated weight table. Build one with NewWeights.
type Weights struct {
	values map[Dimension]decimal.Decimal
}

// CanonicalWeights is the production weight table.
var CanonicalWeights = mustWeights(map[Dimension]string{
	DimensionWorkHours:            "0.10",
	DimensionCompletionRate:       "0.15",
	DimensionAvgDifficulty:        "0.10",
	DimensionRevenue:              "0.10",
	DimensionDepartmentAvg:        "0.05",
	DimensionTaskRating:           "0.10",
	DimensionCultureUnderstanding: "0.05",
	DimensionTeamFit:              "0.05",
	DimensionMonthlyGrowth:        "0.05",
	DimensionBiggestContribution:  "0.05",
	DimensionPeerEvaluation:       "0.05",
	DimensionAdminFinal:           "0.15",
})

// NewWeights validates that every dimension has a non-negative weight and that
// the weights sum to exactly 1.00.
func NewWeights(values map[Dimension]decimal.Decimal) (Weights, error) {
	if len(values) != len(Dimensions) {
		return Weights{}, fmt.Errorf("%w: expected %d dimensions, got %d", ErrInvalidWeights, len(Dimensions), len(values))
	}
	sum := decimal.Zero
	copied := make(map[Dimension]decimal.Decimal, len(values))
	for _, dim := range Dimensions {
		w, ok := values[dim]
		if !ok {
			return Weights{}, fmt.Errorf("%w: missing %s", ErrInvalidWeights, dim)
		}
		if w.IsNegative() {
			return Weights{}, fmt.Errorf("%w: negative weight for %s", ErrInvalidWeights, dim)
		}
		copied[dim] = w
		sum = sum.Add(w)
	}
	if !sum.Equal(decimal.NewFromInt(1)) {
		return Weights{}, fmt.Errorf("%w: weights sum to %s", ErrInvalidWeights, sum.String())
	}
	return Weights{values: copied}, nil
}

func mustWeights(raw map[Dimension]string) Weights {
	values := make(map[Dimension]decimal.Decimal, len(raw))
	for dim, v := range raw {
		values[dim] = rounding.MustParse(v)
	}
	w, err := NewWeights(values)
	if err != nil {
		panic(err)
	}
	return w
}

// Of returns the weight of dim, zero for unknown dimensions.
func (w Weights) Of(dim Dimension) decimal.Decimal {
	if v, ok := w.values[dim]; ok {
		return v
	}
	return decimal.Zero
}

// Final combines dimension scores on [0,10] into the clamped 0-100 score.
func (w Weights) Final(scores map[Dimension]decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, dim := range Dimensions {
		score, ok := scores[dim]
		if !ok {
			continue
		}
		sum = sum.Add(w.Of(dim).Mul(score))
	}
	return rounding.Round2(rounding.Clamp(sum.Mul(rounding.Ten), rounding.Zero, rounding.Hundred))
}
