package scoring

import (
	"github.com/shopspring/decimal"

	"github.com/noah-isme/okr-performance-api/pkg/rounding"
)

// EvaluationInput carries the self evaluation values read for a month.
type EvaluationInput struct {
	CultureUnderstanding int
	MonthlyGrowth        int
	BiggestContribution  int
	TeamFitRankingLen    int
	AdminFinal           *int
}

// Inputs gathers every source the monthly score reads. Absent sources are left
// at their zero value and degrade the matching dimension to 0.
type Inputs struct {
	WorkHours             decimal.Decimal
	AssignedTasks         int
	CompletedTasks        int
	CompletedDifficulties []int
	Revenue               decimal.Decimal
	DepartmentTotal       decimal.Decimal
	DepartmentMembers     int
	TaskReviews           []RatedReview
	Evaluation            *EvaluationInput
	Peers                 []PeerInput
	ActiveUsers           int
}

// DimensionValue pairs the raw metric with its normalised [0,10] score.
type DimensionValue struct {
	Raw   decimal.Decimal
	Score decimal.Decimal
}

// Result is the full outcome of Score.
type Result struct {
	Dimensions map[Dimension]DimensionValue
	Final      decimal.Decimal
}

// Engine scores a user's month with a weight table and reviewer weighting.
type Engine struct {
	Weights     Weights
	RoleWeights RoleWeights
}

// NewEngine returns an engine using the canonical tables.
func NewEngine() *Engine {
	return &Engine{Weights: CanonicalWeights, RoleWeights: DefaultRoleWeights}
}

// Score normalises every dimension and combines them into the final score.
func (e *Engine) Score(in Inputs) Result {
	dims := make(map[Dimension]DimensionValue, len(Dimensions))

	hours := rounding.Round2(in.WorkHours)
	dims[DimensionWorkHours] = DimensionValue{Raw: hours, Score: WorkHoursScore(hours)}

	rate, rateScore := CompletionRate(in.CompletedTasks, in.AssignedTasks)
	dims[DimensionCompletionRate] = DimensionValue{Raw: rate, Score: rateScore}

	difficulty := AvgDifficulty(in.CompletedDifficulties)
	dims[DimensionAvgDifficulty] = DimensionValue{Raw: difficulty, Score: difficulty}

	revenue := rounding.Round2(in.Revenue)
	dims[DimensionRevenue] = DimensionValue{Raw: revenue, Score: RevenueScore(revenue)}

	deptAvg, deptScore := DepartmentAvg(in.DepartmentTotal, in.DepartmentMembers)
	dims[DimensionDepartmentAvg] = DimensionValue{Raw: deptAvg, Score: deptScore}

	rating := TaskRatingScore(in.TaskReviews, e.RoleWeights)
	dims[DimensionTaskRating] = DimensionValue{Raw: rating, Score: rating}

	var culture, growth, contribution, admin *int
	if ev := in.Evaluation; ev != nil {
		culture, growth, contribution, admin = &ev.CultureUnderstanding, &ev.MonthlyGrowth, &ev.BiggestContribution, ev.AdminFinal
	}
	teamFit := rounding.Zero
	if in.Evaluation != nil {
		teamFit = TeamFitPlaceholder(true, in.Evaluation.TeamFitRankingLen)
	}
	dims[DimensionCultureUnderstanding] = selfValue(culture)
	dims[DimensionTeamFit] = DimensionValue{Raw: teamFit, Score: teamFit}
	dims[DimensionMonthlyGrowth] = selfValue(growth)
	dims[DimensionBiggestContribution] = selfValue(contribution)

	peer := PeerEvaluationScore(in.Peers, in.ActiveUsers)
	dims[DimensionPeerEvaluation] = DimensionValue{Raw: peer, Score: peer}
	dims[DimensionAdminFinal] = selfValue(admin)

	scores := make(map[Dimension]decimal.Decimal, len(dims))
	for dim, v := range dims {
		scores[dim] = v.Score
	}
	return Result{Dimensions: dims, Final: e.Weights.Final(scores)}
}

func selfValue(v *int) DimensionValue {
	s := SelfScore(v)
	return DimensionValue{Raw: s, Score: s}
}
