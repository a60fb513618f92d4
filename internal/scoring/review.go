package scoring

import (
	"github.com/shopspring/decimal"

	"github.com/noah-isme/okr-performance-api/internal/models"
	"github.com/noah-isme/okr-performance-api/pkg/rounding"
)

// DefaultWeight applies to reviewer roles absent from a RoleWeights table.
const DefaultWeight int64 = 1

// RoleWeights maps a reviewer role to the weight of its ratings.
type RoleWeights map[models.UserRole]int64

// DefaultRoleWeights counts admin ratings twice.
var DefaultRoleWeights = RoleWeights{
	models.RoleAdmin:  2,
	models.RoleMember: 1,
}

var (
	factorFloor = rounding.MustParse("0.700")
	factorCeil  = rounding.MustParse("1.000")
	factorSpan  = rounding.MustParse("0.3")
)

// Weight returns the weight for role.
func (w RoleWeights) Weight(role models.UserRole) int64 {
	if weight, ok := w[role]; ok {
		return weight
	}
	return DefaultWeight
}

// RatedReview is the part of a review the aggregation reads.
type RatedReview struct {
	Rating int
	Role   models.UserRole
}

// WeightedAverage returns the role-weighted mean rating and the number of
// reviews considered. Callers must branch on count: an average of 0 with a
// count of 0 means "no rating", not a poor one.
func WeightedAverage(reviews []RatedReview, weights RoleWeights) (decimal.Decimal, int) {
	if len(reviews) == 0 {
		return rounding.Zero, 0
	}
	if weights == nil {
		weights = DefaultRoleWeights
	}

	var sum, totalWeight int64
	for _, r := range reviews {
		w := weights.Weight(r.Role)
		sum += int64(r.Rating) * w
		totalWeight += w
	}
	if totalWeight <= 0 {
		return rounding.Zero, len(reviews)
	}
	avg := decimal.NewFromInt(sum).Div(decimal.NewFromInt(totalWeight))
	return rounding.Round2(avg), len(reviews)
}

// AdjustmentFactor maps a weighted average onto [0.700, 1.000].
func AdjustmentFactor(avg decimal.Decimal, count int) decimal.Decimal {
	if count == 0 || !avg.IsPositive() {
		return factorFloor
	}
	factor := rounding.Round3(avg.Div(rounding.Ten).Mul(factorSpan).Add(factorFloor))
	return rounding.Clamp(factor, factorFloor, factorCeil)
}

// ReviewSummary describes the reviews of one task.
type ReviewSummary struct {
	TotalCount       int             `json:"total_count"`
	AdminCount       int             `json:"admin_count"`
	MemberCount      int             `json:"member_count"`
	AverageRating    decimal.Decimal `json:"average_rating"`
	WeightedAverage  decimal.Decimal `json:"weighted_average"`
	AdjustmentFactor decimal.Decimal `json:"adjustment_factor"`
}

// Summarize aggregates reviews into a ReviewSummary.
func Summarize(reviews []RatedReview, weights RoleWeights) ReviewSummary {
	summary := ReviewSummary{AverageRating: rounding.Zero}
	var sum int64
	for _, r := range reviews {
		switch r.Role {
		case models.RoleAdmin:
			summary.AdminCount++
		case models.RoleMember:
			summary.MemberCount++
		}
		sum += int64(r.Rating)
	}
	summary.TotalCount = len(reviews)
	if summary.TotalCount > 0 {
		summary.AverageRating = rounding.Round2(decimal.NewFromInt(sum).Div(decimal.NewFromInt(int64(summary.TotalCount))))
	}
	summary.WeightedAverage, _ = WeightedAverage(reviews, weights)
	summary.AdjustmentFactor = AdjustmentFactor(summary.WeightedAverage, summary.TotalCount)
	return summary
}

// Redistribute rescales existing allocations by a review adjustment factor.
// Each allocation keeps its percentage and receives that share of the new
// adjusted total.
func Redistribute(difficulty int, penalty, factor decimal.Decimal, allocations []models.ScoreAllocation) (decimal.Decimal, []models.ScoreAllocation) {
	adjustedTotal := rounding.Round2(decimal.NewFromInt(int64(difficulty)).Mul(penalty).Mul(factor))
	out := make([]models.ScoreAllocation, len(allocations))
	for i, alloc := range allocations {
		alloc.AdjustedScore = rounding.Round2(adjustedTotal.Mul(alloc.Percentage).Div(rounding.Hundred))
		out[i] = alloc
	}
	return adjustedTotal, out
}
