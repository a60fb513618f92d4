package scoring

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/okr-performance-api/pkg/rounding"
)

var (
	fullTimeHours    = decimal.NewFromInt(300)
	revenueBaseline  = decimal.NewFromInt(10000)
	five             = decimal.NewFromInt(5)
	half             = rounding.MustParse("0.5")
	teamFitEmpty     = rounding.MustParse("5.00")
	teamFitSubmitted = rounding.MustParse("7.00")
)

// WorkHoursScore maps monthly hours onto [0,10], saturating at 300 hours.
func WorkHoursScore(hours decimal.Decimal) decimal.Decimal {
	if !hours.IsPositive() {
		return rounding.Zero
	}
	score := hours.Mul(rounding.Ten).Div(fullTimeHours)
	return rounding.Round2(decimal.Min(score, rounding.Ten))
}

// CompletionRate returns the completion percentage and its [0,10] score.
func CompletionRate(completed, assigned int) (decimal.Decimal, decimal.Decimal) {
	if assigned <= 0 {
		return rounding.Zero, rounding.Zero
	}
	ratio := decimal.NewFromInt(int64(completed)).Div(decimal.NewFromInt(int64(assigned)))
	ratio = rounding.Clamp(ratio, rounding.Zero, decimal.NewFromInt(1))
	return rounding.Round2(ratio.Mul(rounding.Hundred)), rounding.Round2(ratio.Mul(rounding.Ten))
}

// AvgDifficulty is the mean difficulty of completed tasks, 0 with none.
func AvgDifficulty(difficulties []int) decimal.Decimal {
	if len(difficulties) == 0 {
		return rounding.Zero
	}
	var sum int64
	for _, d := range difficulties {
		sum += int64(d)
	}
	avg := decimal.NewFromInt(sum).Div(decimal.NewFromInt(int64(len(difficulties))))
	return rounding.Round2(rounding.Clamp(avg, rounding.Zero, rounding.Ten))
}

// RevenueScore is linear up to 10 000 (worth 5 points) and logarithmic above,
// capped at 10.
func RevenueScore(revenue decimal.Decimal) decimal.Decimal {
	if !revenue.IsPositive() {
		return rounding.Zero
	}
	if revenue.LessThanOrEqual(revenueBaseline) {
		return rounding.Round2(revenue.Mul(five).Div(revenueBaseline))
	}
	ratio := revenue.Div(revenueBaseline).InexactFloat64()
	bonus := math.Min(math.Log10(ratio)*2.5, 5)
	return rounding.Clamp(rounding.Float2(5+bonus), rounding.Zero, rounding.Ten)
}

// DepartmentAvg divides the department's monthly allocation total by its
// active member count. The raw average is returned alongside the clamped score.
func DepartmentAvg(total decimal.Decimal, members int) (decimal.Decimal, decimal.Decimal) {
	if members <= 0 {
		return rounding.Zero, rounding.Zero
	}
	avg := rounding.Round2(total.Div(decimal.NewFromInt(int64(members))))
	return avg, rounding.Clamp(avg, rounding.Zero, rounding.Ten)
}

// TaskRatingScore is the role-weighted rating pooled over every review of
// tasks completed in the month.
func TaskRatingScore(reviews []RatedReview, weights RoleWeights) decimal.Decimal {
	avg, count := WeightedAverage(reviews, weights)
	if count == 0 {
		return rounding.Zero
	}
	return rounding.Clamp(avg, rounding.Zero, rounding.Ten)
}

// SelfScore converts an optional 1-10 evaluation value.
func SelfScore(value *int) decimal.Decimal {
	if value == nil {
		return rounding.Zero
	}
	return rounding.Round2(rounding.Clamp(decimal.NewFromInt(int64(*value)), rounding.Zero, rounding.Ten))
}

// TeamFitPlaceholder returns the fixed team fit value: 0 without an
// evaluation, 5 for an empty ranking, 7 once a ranking was submitted. The
// submitted ranking is not otherwise scored yet.
func TeamFitPlaceholder(hasEvaluation bool, rankingLen int) decimal.Decimal {
	switch {
	case !hasEvaluation:
		return rounding.Zero
	case rankingLen == 0:
		return teamFitEmpty
	default:
		return teamFitSubmitted
	}
}

// PeerInput is a single peer evaluation.
type PeerInput struct {
	Score   int
	Ranking int
}

// PeerEvaluationScore averages, across evaluators, half the given score plus
// half the ranking converted onto [0,10] against the active headcount.
func PeerEvaluationScore(peers []PeerInput, activeUsers int) decimal.Decimal {
	if len(peers) == 0 {
		return rounding.Zero
	}
	n := decimal.NewFromInt(int64(activeUsers))
	sum := decimal.Zero
	for _, p := range peers {
		rankScore := rounding.Zero
		if activeUsers > 0 {
			positions := decimal.NewFromInt(int64(activeUsers - p.Ranking + 1))
			rankScore = rounding.Clamp(positions.Mul(rounding.Ten).Div(n), rounding.Zero, rounding.Ten)
		}
		score := rounding.Clamp(decimal.NewFromInt(int64(p.Score)), rounding.Zero, rounding.Ten)
		sum = sum.Add(score.Mul(half)).Add(rankScore.Mul(half))
	}
	return rounding.Round2(sum.Div(decimal.NewFromInt(int64(len(peers)))))
}
