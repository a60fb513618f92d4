package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/okr-performance-api/internal/models"
	"github.com/noah-isme/okr-performance-api/internal/repository"
	appErrors "github.com/noah-isme/okr-performance-api/pkg/errors"
)

type recalcRecorder struct {
	calculated []string
	err        error
}

func (r *recalcRecorder) CalculateUser(ctx context.Context, userID string, month time.Time) (*models.PerformanceScore, error) {
	r.calculated = append(r.calculated, userID+"@"+models.FormatMonth(month))
	if r.err != nil {
		return nil, r.err
	}
	return &models.PerformanceScore{UserID: userID, Month: month}, nil
}

var (
	adminClaims  = &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin}
	memberClaims = &models.JWTClaims{UserID: "u2", Role: models.RoleMember}
)

func newEvaluationFixture() (*EvaluationService, *fakeEvaluations, *fakeWorkHours, *recalcRecorder) {
	users := &fakeUsers{users: []models.User{{ID: "u1", Active: true}, {ID: "u2", Active: true}}}
	evaluations := newFakeEvaluations(models.MonthlyEvaluation{ID: "ev-1", UserID: "u1", Month: march()})
	hours := &fakeWorkHours{}
	recalc := &recalcRecorder{}
	svc := NewEvaluationService(hours, evaluations, users, recalc, nil, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, time.April, 2, 8, 0, 0, 0, time.UTC) }
	return svc, evaluations, hours, recalc
}

func selfRequest(month string) SelfEvaluationRequest {
	return SelfEvaluationRequest{
		Month:                     month,
		CultureUnderstandingScore: 8,
		TeamFitRanking:            []string{"u1", "u3"},
		MonthlyGrowthScore:        7,
		BiggestContributionScore:  9,
	}
}

func TestEvaluationServiceRecordWorkHours(t *testing.T) {
	svc, _, hours, _ := newEvaluationFixture()
	ctx := context.Background()

	wh, err := svc.RecordWorkHours(ctx, adminClaims, WorkHoursRequest{UserID: "u1", Month: "2024-03", Hours: 160.456})
	require.NoError(t, err)
	assert.Equal(t, "160.46", wh.Hours.StringFixed(2))
	require.NotNil(t, wh.RecordedBy)
	assert.Equal(t, "admin-1", *wh.RecordedBy)
	assert.Contains(t, hours.hours, "u1")

	_, err = svc.RecordWorkHours(ctx, memberClaims, WorkHoursRequest{UserID: "u1", Month: "2024-03", Hours: 10})
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))

	_, err = svc.RecordWorkHours(ctx, nil, WorkHoursRequest{UserID: "u1", Month: "2024-03", Hours: 10})
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))

	_, err = svc.RecordWorkHours(ctx, adminClaims, WorkHoursRequest{UserID: "u1", Month: "2024-03", Hours: 745})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = svc.RecordWorkHours(ctx, adminClaims, WorkHoursRequest{UserID: "ghost", Month: "2024-03", Hours: 10})
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestEvaluationServiceSelfEvaluation(t *testing.T) {
	svc, _, _, _ := newEvaluationFixture()
	ctx := context.Background()

	ev, err := svc.SubmitSelfEvaluation(ctx, "u2", selfRequest("2024-03"))
	require.NoError(t, err)
	assert.True(t, ev.Month.Equal(march()))
	assert.Len(t, ev.TeamFitRanking, 2)

	_, err = svc.SubmitSelfEvaluation(ctx, "u2", selfRequest("2024-03-31"))
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))

	bad := selfRequest("2024-04")
	bad.MonthlyGrowthScore = 0
	_, err = svc.SubmitSelfEvaluation(ctx, "u2", bad)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestEvaluationServicePeerEvaluation(t *testing.T) {
	svc, evaluations, _, _ := newEvaluationFixture()
	ctx := context.Background()

	peer, err := svc.SubmitPeerEvaluation(ctx, "u2", PeerEvaluationRequest{EvaluationID: "ev-1", Score: 8, Ranking: 2, IsAnonymous: true})
	require.NoError(t, err)
	assert.Empty(t, peer.EvaluatorID)
	require.Len(t, evaluations.peers, 1)
	assert.Equal(t, "u2", evaluations.peers[0].EvaluatorID)

	_, err = svc.SubmitPeerEvaluation(ctx, "u2", PeerEvaluationRequest{EvaluationID: "ev-1", Score: 6, Ranking: 1})
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))

	_, err = svc.SubmitPeerEvaluation(ctx, "u1", PeerEvaluationRequest{EvaluationID: "ev-1", Score: 6, Ranking: 1})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = svc.SubmitPeerEvaluation(ctx, "u2", PeerEvaluationRequest{EvaluationID: "missing", Score: 6, Ranking: 1})
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))

	_, err = svc.SubmitPeerEvaluation(ctx, "u3", PeerEvaluationRequest{EvaluationID: "ev-1", Score: 6, Ranking: 0})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestEvaluationServiceUniqueViolationIsConflict(t *testing.T) {
	svc, evaluations, _, _ := newEvaluationFixture()
	ctx := context.Background()
	evaluations.createErr = fmt.Errorf("create peer evaluation: %w", repository.ErrDuplicate)

	_, err := svc.SubmitPeerEvaluation(ctx, "u2", PeerEvaluationRequest{EvaluationID: "ev-1", Score: 8, Ranking: 2})
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))

	_, err = svc.SubmitSelfEvaluation(ctx, "u2", selfRequest("2024-03"))
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))

	evaluations.createErr = errStoreDown
	_, err = svc.SubmitPeerEvaluation(ctx, "u2", PeerEvaluationRequest{EvaluationID: "ev-1", Score: 8, Ranking: 2})
	assert.True(t, appErrors.Is(err, appErrors.ErrInternal))
}

func TestEvaluationServiceAdminOverride(t *testing.T) {
	svc, evaluations, _, recalc := newEvaluationFixture()
	ctx := context.Background()

	entry, err := svc.SetAdminOverride(ctx, adminClaims, "ev-1", AdminOverrideRequest{Score: 7, Comment: "solid"})
	require.NoError(t, err)
	assert.Equal(t, models.AdminActionCreate, entry.Action)
	assert.Nil(t, entry.PreviousScore)
	require.Len(t, evaluations.overrides, 1)
	assert.Equal(t, "admin-1", evaluations.overrides[0].AdminID)
	assert.Equal(t, time.Date(2024, time.April, 2, 8, 0, 0, 0, time.UTC), evaluations.overrides[0].At)
	assert.Equal(t, []string{"u1@2024-03"}, recalc.calculated)

	entry, err = svc.SetAdminOverride(ctx, adminClaims, "ev-1", AdminOverrideRequest{Score: 9, Comment: "revised"})
	require.NoError(t, err)
	assert.Equal(t, models.AdminActionUpdate, entry.Action)
	require.NotNil(t, entry.PreviousScore)
	assert.Equal(t, 7, *entry.PreviousScore)
	assert.Equal(t, "solid", entry.PreviousComment)

	history, err := svc.AdminHistory(ctx, "ev-1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.AdminActionUpdate, history[0].Action)
}

func TestEvaluationServiceAdminOverrideRules(t *testing.T) {
	svc, _, _, recalc := newEvaluationFixture()
	ctx := context.Background()

	_, err := svc.SetAdminOverride(ctx, memberClaims, "ev-1", AdminOverrideRequest{Score: 7})
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))

	_, err = svc.SetAdminOverride(ctx, adminClaims, "ev-1", AdminOverrideRequest{Score: 0})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = svc.SetAdminOverride(ctx, adminClaims, "missing", AdminOverrideRequest{Score: 5})
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))

	recalc.err = errStoreDown
	_, err = svc.SetAdminOverride(ctx, adminClaims, "ev-1", AdminOverrideRequest{Score: 5})
	require.NoError(t, err)
	assert.Len(t, recalc.calculated, 1)
}
