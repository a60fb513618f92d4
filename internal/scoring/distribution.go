package scoring

import (
	"github.com/shopspring/decimal"

	"github.com/noah-isme/okr-performance-api/internal/models"
	"github.com/noah-isme/okr-performance-api/pkg/rounding"
)

var (
	// PenaltyNone applies to tasks that were never postponed.
	PenaltyNone = rounding.MustParse("1.000")
	// PenaltyPostponed applies to tasks postponed at least once.
	PenaltyPostponed = rounding.MustParse("0.800")

	ownerRatio        = rounding.MustParse("0.50")
	collaboratorTotal = rounding.MustParse("50.00")
)

// DistributionInput is the subset of a task the distribution rule reads.
type DistributionInput struct {
	Status          models.TaskStatus
	DifficultyScore int
	EverPostponed   bool
	OwnerID         string
	CollaboratorIDs []string
}

// Share is one participant's portion of a distribution.
type Share struct {
	UserID        string
	IsOwner       bool
	BaseScore     decimal.Decimal
	AdjustedScore decimal.Decimal
	Percentage    decimal.Decimal
}

// DistributionResult is the outcome of Distribute.
type DistributionResult struct {
	TotalScore         decimal.Decimal
	PenaltyCoefficient decimal.Decimal
	Shares             []Share
}

// Penalty returns the coefficient applied to a task's difficulty score.
func Penalty(everPostponed bool) decimal.Decimal {
	if everPostponed {
		return rounding.Round3(PenaltyPostponed)
	}
	return rounding.Round3(PenaltyNone)
}

// Distribute splits a completed task's score between owner and collaborators.
// The owner keeps half and the remainder, computed by subtraction, is divided
// evenly among collaborators. With two or more collaborators the rounded
// collaborator shares may drift from the remainder by a few cents; that
// residual is not reassigned.
func Distribute(in DistributionInput) (*DistributionResult, error) {
	if in.Status != models.TaskStatusCompleted {
		return nil, ErrInvalidState
	}

	penalty := Penalty(in.EverPostponed)
	total := rounding.Round2(decimal.NewFromInt(int64(in.DifficultyScore)).Mul(penalty))
	result := &DistributionResult{TotalScore: total, PenaltyCoefficient: penalty}

	collaborators := uniqueCollaborators(in.OwnerID, in.CollaboratorIDs)
	if len(collaborators) == 0 {
		result.Shares = []Share{{
			UserID:        in.OwnerID,
			IsOwner:       true,
			BaseScore:     total,
			AdjustedScore: total,
			Percentage:    rounding.Hundred,
		}}
		return result, nil
	}

	n := decimal.NewFromInt(int64(len(collaborators)))
	ownerShare := rounding.Round2(total.Mul(ownerRatio))
	remainder := total.Sub(ownerShare)
	collabShare := rounding.Round2(remainder.Div(n))
	collabPct := rounding.Round2(collaboratorTotal.Div(n))

	result.Shares = make([]Share, 0, len(collaborators)+1)
	result.Shares = append(result.Shares, Share{
		UserID:        in.OwnerID,
		IsOwner:       true,
		BaseScore:     ownerShare,
		AdjustedScore: ownerShare,
		Percentage:    rounding.Round2(ownerRatio.Mul(rounding.Hundred)),
	})
	for _, id := range collaborators {
		result.Shares = append(result.Shares, Share{
			UserID:        id,
			BaseScore:     collabShare,
			AdjustedScore: collabShare,
			Percentage:    collabPct,
		})
	}
	return result, nil
}

// uniqueCollaborators drops blanks, duplicates and the owner, keeping order.
func uniqueCollaborators(ownerID string, ids []string) []string {
	seen := map[string]struct{}{ownerID: {}}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
