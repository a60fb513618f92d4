package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/okr-performance-api/internal/models"
	"github.com/noah-isme/okr-performance-api/internal/repository"
	"github.com/noah-isme/okr-performance-api/internal/scoring"
	appErrors "github.com/noah-isme/okr-performance-api/pkg/errors"
	"github.com/noah-isme/okr-performance-api/pkg/rounding"
)

type rosterReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	ListActive(ctx context.Context) ([]models.User, error)
	ListActiveByDepartment(ctx context.Context, department models.Department) ([]models.User, error)
	CountActive(ctx context.Context) (int, error)
}

type workHoursReader interface {
	FindByUserMonth(ctx context.Context, userID string, month time.Time) (*models.WorkHours, error)
}

type participantTaskReader interface {
	ListForParticipantInMonth(ctx context.Context, userID string, start, end time.Time) ([]models.Task, error)
}

type allocationReader interface {
	AllocationsForUsers(ctx context.Context, userIDs []string, start, end time.Time) ([]models.AllocationRecord, error)
}

type completedTaskReviewReader interface {
	ListForCompletedTasks(ctx context.Context, userID string, start, end time.Time) ([]models.Review, error)
}

type evaluationReader interface {
	FindByUserMonth(ctx context.Context, userID string, month time.Time) (*models.MonthlyEvaluation, error)
	ListPeers(ctx context.Context, evaluationID string) ([]models.PeerEvaluation, error)
}

type performanceStore interface {
	ReplaceForUser(ctx context.Context, score *models.PerformanceScore) error
	FindByUserMonth(ctx context.Context, userID string, month time.Time) (*models.PerformanceScore, error)
	Rerank(ctx context.Context, month time.Time, ranker repository.Ranker) ([]scoring.RankEntry, error)
	Ranking(ctx context.Context, month time.Time) ([]models.RankingRow, error)
}

type departmentRegenerator interface {
	Regenerate(ctx context.Context, month time.Time) (*models.MonthlyReport, error)
}

// PerformanceConfig tunes monthly batches.
type PerformanceConfig struct {
	BatchConcurrency int
	RollupAfterBatch bool
}

// PerformanceDeps groups the readers and stores a PerformanceService needs.
type PerformanceDeps struct {
	Users       rosterReader
	WorkHours   workHoursReader
	Tasks       participantTaskReader
	Allocations allocationReader
	Reviews     completedTaskReviewReader
	Evaluations evaluationReader
	Scores      performanceStore
	Reports     departmentRegenerator
}

// BatchFailure names a user whose recalculation failed.
type BatchFailure struct {
	UserID string `json:"user_id"`
	Error  string `json:"error"`
}

// BatchResult summarises a monthly recalculation.
type BatchResult struct {
	Month           string         `json:"month"`
	Total           int            `json:"total"`
	Succeeded       int            `json:"succeeded"`
	Failures        []BatchFailure `json:"failures"`
	Ranked          int            `json:"ranked"`
	ReportGenerated bool           `json:"report_generated"`
	Duration        string         `json:"duration"`
}

// PerformanceService computes, ranks and presents monthly performance scores.
type PerformanceService struct {
	deps    PerformanceDeps
	engine  *scoring.Engine
	cache   *CacheService
	metrics *MetricsService
	cfg     PerformanceConfig
	logger  *zap.Logger
}

// NewPerformanceService constructs a PerformanceService.
func NewPerformanceService(deps PerformanceDeps, engine *scoring.Engine, cache *CacheService, metrics *MetricsService, cfg PerformanceConfig, logger *zap.Logger) *PerformanceService {
	if engine == nil {
		engine = scoring.NewEngine()
	}
	if cfg.BatchConcurrency <= 0 {
		cfg.BatchConcurrency = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PerformanceService{deps: deps, engine: engine, cache: cache, metrics: metrics, cfg: cfg, logger: logger}
}

// CalculateUser recomputes and stores the score of one user for month, then
// re-ranks the whole month so ranks stay 1..N. The returned score carries its
// new rank.
func (s *PerformanceService) CalculateUser(ctx context.Context, userID string, month time.Time) (*models.PerformanceScore, error) {
	month = models.MonthStart(month)
	user, err := s.deps.Users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	score, err := s.calculate(ctx, user, month)
	if err != nil {
		s.metrics.RecordRecalculation(false)
		return nil, err
	}
	s.metrics.RecordRecalculation(true)

	ranked, err := s.rerank(ctx, month)
	s.cache.InvalidateMonth(ctx, month)
	if err != nil {
		return nil, err
	}
	for _, entry := range ranked {
		if entry.UserID == score.UserID {
			score.Rank = entry.Rank
			break
		}
	}
	return score, nil
}

func (s *PerformanceService) calculate(ctx context.Context, user *models.User, month time.Time) (*models.PerformanceScore, error) {
	inputs, err := s.gatherInputs(ctx, user, month)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to gather score inputs")
	}
	result := s.engine.Score(inputs)

	score := toPerformanceScore(user, month, result)
	score.CalculatedAt = time.Now().UTC()
	start := time.Now()
	err = s.deps.Scores.ReplaceForUser(ctx, score)
	s.metrics.ObserveDBQuery("performance.replace_user", time.Since(start))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store performance score")
	}
	return score, nil
}

func (s *PerformanceService) gatherInputs(ctx context.Context, user *models.User, month time.Time) (scoring.Inputs, error) {
	start, end := models.MonthRange(month)
	var in scoring.Inputs

	hours, err := s.deps.WorkHours.FindByUserMonth(ctx, user.ID, start)
	switch {
	case err == nil:
		in.WorkHours = hours.Hours
	case !errors.Is(err, sql.ErrNoRows):
		return in, err
	}

	tasks, err := s.deps.Tasks.ListForParticipantInMonth(ctx, user.ID, start, end)
	if err != nil {
		return in, err
	}
	in.AssignedTasks = len(tasks)
	for _, task := range tasks {
		if task.Status != models.TaskStatusCompleted {
			continue
		}
		in.CompletedTasks++
		if task.CompletedAt != nil && !task.CompletedAt.Before(start) && task.CompletedAt.Before(end) {
			in.CompletedDifficulties = append(in.CompletedDifficulties, task.DifficultyScore)
			in.Revenue = in.Revenue.Add(task.RevenueAmount)
		}
	}

	if user.Department != "" {
		members, err := s.deps.Users.ListActiveByDepartment(ctx, user.Department)
		if err != nil {
			return in, err
		}
		ids := make([]string, 0, len(members))
		for _, member := range members {
			ids = append(ids, member.ID)
		}
		allocations, err := s.deps.Allocations.AllocationsForUsers(ctx, ids, start, end)
		if err != nil {
			return in, err
		}
		total := decimal.Zero
		for _, alloc := range allocations {
			total = total.Add(alloc.AdjustedScore)
		}
		in.DepartmentTotal = total
		in.DepartmentMembers = len(members)
	}

	reviews, err := s.deps.Reviews.ListForCompletedTasks(ctx, user.ID, start, end)
	if err != nil {
		return in, err
	}
	in.TaskReviews = ratedReviews(reviews)

	evaluation, err := s.deps.Evaluations.FindByUserMonth(ctx, user.ID, start)
	switch {
	case err == nil:
		in.Evaluation = &scoring.EvaluationInput{
			CultureUnderstanding: evaluation.CultureUnderstandingScore,
			MonthlyGrowth:        evaluation.MonthlyGrowthScore,
			BiggestContribution:  evaluation.BiggestContributionScore,
			TeamFitRankingLen:    len(evaluation.TeamFitRanking),
			AdminFinal:           evaluation.AdminFinalScore,
		}
		peers, err := s.deps.Evaluations.ListPeers(ctx, evaluation.ID)
		if err != nil {
			return in, err
		}
		for _, peer := range peers {
			in.Peers = append(in.Peers, scoring.PeerInput{Score: peer.Score, Ranking: peer.Ranking})
		}
	case !errors.Is(err, sql.ErrNoRows):
		return in, err
	}

	active, err := s.deps.Users.CountActive(ctx)
	if err != nil {
		return in, err
	}
	in.ActiveUsers = active
	return in, nil
}

// CalculateMonth recomputes every active user for month with bounded
// concurrency, then re-ranks the month and optionally regenerates the
// department rollup. A failing user keeps its previous row and is reported in
// the result; it does not abort the batch.
func (s *PerformanceService) CalculateMonth(ctx context.Context, month time.Time) (*BatchResult, error) {
	month = models.MonthStart(month)
	started := time.Now()

	users, err := s.deps.Users.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list active users")
	}

	result := &BatchResult{Month: models.FormatMonth(month), Total: len(users), Failures: []BatchFailure{}}
	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(s.cfg.BatchConcurrency)
	for i := range users {
		user := users[i]
		g.Go(func() error {
			_, err := s.calculate(ctx, &user, month)
			s.metrics.RecordRecalculation(err == nil)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger.Error("performance recalculation failed",
					zap.String("user_id", user.ID),
					zap.String("month", result.Month),
					zap.Error(err),
				)
				result.Failures = append(result.Failures, BatchFailure{UserID: user.ID, Error: err.Error()})
				return nil
			}
			result.Succeeded++
			return nil
		})
	}
	_ = g.Wait()

	ranked, err := s.rerank(ctx, month)
	if err != nil {
		return nil, err
	}
	result.Ranked = len(ranked)

	if s.cfg.RollupAfterBatch && s.deps.Reports != nil {
		if _, err := s.deps.Reports.Regenerate(ctx, month); err != nil {
			s.logger.Error("department rollup after batch failed", zap.String("month", result.Month), zap.Error(err))
		} else {
			result.ReportGenerated = true
		}
	}

	s.cache.InvalidateMonth(ctx, month)
	elapsed := time.Since(started)
	s.metrics.ObserveBatch(elapsed)
	result.Duration = elapsed.String()
	s.logger.Info("monthly performance batch finished",
		zap.String("month", result.Month),
		zap.Int("total", result.Total),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", len(result.Failures)),
		zap.Duration("duration", elapsed),
	)
	return result, nil
}

// Rerank assigns ranks 1..N to the stored scores of month atomically.
func (s *PerformanceService) Rerank(ctx context.Context, month time.Time) ([]scoring.RankEntry, error) {
	month = models.MonthStart(month)
	ranked, err := s.rerank(ctx, month)
	if err != nil {
		return nil, err
	}
	s.cache.InvalidateMonth(ctx, month)
	return ranked, nil
}

func (s *PerformanceService) rerank(ctx context.Context, month time.Time) ([]scoring.RankEntry, error) {
	start := time.Now()
	ranked, err := s.deps.Scores.Rerank(ctx, month, scoring.Rank)
	s.metrics.ObserveDBQuery("performance.rerank", time.Since(start))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to rank month")
	}
	return ranked, nil
}

// UserSummary presents a stored score dimension by dimension.
func (s *PerformanceService) UserSummary(ctx context.Context, userID string, month time.Time) (*models.PerformanceSummary, error) {
	month = models.MonthStart(month)
	return readThrough(ctx, s.cache, summaryCacheKey(userID, month), func(ctx context.Context) (*models.PerformanceSummary, error) {
		score, err := s.deps.Scores.FindByUserMonth(ctx, userID, month)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "performance score not calculated")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load performance score")
		}

		return &models.PerformanceSummary{
			UserID:       score.UserID,
			UserName:     score.UserName,
			Month:        models.FormatMonth(month),
			Dimensions:   dimensionRows(score, s.engine.Weights),
			FinalScore:   score.FinalScore,
			Rank:         score.Rank,
			CalculatedAt: score.CalculatedAt,
		}, nil
	})
}

// MonthRanking returns the ranked rows of month.
func (s *PerformanceService) MonthRanking(ctx context.Context, month time.Time) ([]models.RankingRow, error) {
	month = models.MonthStart(month)
	return readThrough(ctx, s.cache, rankingCacheKey(month), func(ctx context.Context) ([]models.RankingRow, error) {
		rows, err := s.deps.Scores.Ranking(ctx, month)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load ranking")
		}
		if rows == nil {
			rows = []models.RankingRow{}
		}
		return rows, nil
	})
}

func toPerformanceScore(user *models.User, month time.Time, result scoring.Result) *models.PerformanceScore {
	d := result.Dimensions
	return &models.PerformanceScore{
		UserID:                    user.ID,
		Month:                     month,
		WorkHours:                 d[scoring.DimensionWorkHours].Raw,
		WorkHoursScore:            d[scoring.DimensionWorkHours].Score,
		CompletionRate:            d[scoring.DimensionCompletionRate].Raw,
		CompletionRateScore:       d[scoring.DimensionCompletionRate].Score,
		AvgDifficulty:             d[scoring.DimensionAvgDifficulty].Raw,
		AvgDifficultyScore:        d[scoring.DimensionAvgDifficulty].Score,
		TotalRevenue:              d[scoring.DimensionRevenue].Raw,
		RevenueScore:              d[scoring.DimensionRevenue].Score,
		DepartmentAvg:             d[scoring.DimensionDepartmentAvg].Raw,
		DepartmentAvgScore:        d[scoring.DimensionDepartmentAvg].Score,
		TaskRating:                d[scoring.DimensionTaskRating].Raw,
		TaskRatingScore:           d[scoring.DimensionTaskRating].Score,
		CultureUnderstanding:      d[scoring.DimensionCultureUnderstanding].Raw,
		CultureUnderstandingScore: d[scoring.DimensionCultureUnderstanding].Score,
		TeamFit:                   d[scoring.DimensionTeamFit].Raw,
		TeamFitScore:              d[scoring.DimensionTeamFit].Score,
		MonthlyGrowth:             d[scoring.DimensionMonthlyGrowth].Raw,
		MonthlyGrowthScore:        d[scoring.DimensionMonthlyGrowth].Score,
		BiggestContribution:       d[scoring.DimensionBiggestContribution].Raw,
		BiggestContributionScore:  d[scoring.DimensionBiggestContribution].Score,
		PeerEvaluation:            d[scoring.DimensionPeerEvaluation].Raw,
		PeerEvaluationScore:       d[scoring.DimensionPeerEvaluation].Score,
		AdminFinal:                d[scoring.DimensionAdminFinal].Raw,
		AdminFinalScore:           d[scoring.DimensionAdminFinal].Score,
		FinalScore:                result.Final,
		UserName:                  user.Name,
		Department:                user.Department,
	}
}

func dimensionRows(score *models.PerformanceScore, weights scoring.Weights) []models.DimensionRow {
	values := map[scoring.Dimension][2]decimal.Decimal{
		scoring.DimensionWorkHours:            {score.WorkHours, score.WorkHoursScore},
		scoring.DimensionCompletionRate:       {score.CompletionRate, score.CompletionRateScore},
		scoring.DimensionAvgDifficulty:        {score.AvgDifficulty, score.AvgDifficultyScore},
		scoring.DimensionRevenue:              {score.TotalRevenue, score.RevenueScore},
		scoring.DimensionDepartmentAvg:        {score.DepartmentAvg, score.DepartmentAvgScore},
		scoring.DimensionTaskRating:           {score.TaskRating, score.TaskRatingScore},
		scoring.DimensionCultureUnderstanding: {score.CultureUnderstanding, score.CultureUnderstandingScore},
		scoring.DimensionTeamFit:              {score.TeamFit, score.TeamFitScore},
		scoring.DimensionMonthlyGrowth:        {score.MonthlyGrowth, score.MonthlyGrowthScore},
		scoring.DimensionBiggestContribution:  {score.BiggestContribution, score.BiggestContributionScore},
		scoring.DimensionPeerEvaluation:       {score.PeerEvaluation, score.PeerEvaluationScore},
		scoring.DimensionAdminFinal:           {score.AdminFinal, score.AdminFinalScore},
	}
	rows := make([]models.DimensionRow, 0, len(scoring.Dimensions))
	for _, dim := range scoring.Dimensions {
		v := values[dim]
		rows = append(rows, models.DimensionRow{
			Dimension: string(dim),
			RawValue:  rounding.Round2(v[0]),
			Score:     rounding.Round2(v[1]),
			Weight:    weights.Of(dim),
		})
	}
	return rows
}
