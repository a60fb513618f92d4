package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/okr-performance-api/internal/models"
	"github.com/noah-isme/okr-performance-api/internal/repository"
	"github.com/noah-isme/okr-performance-api/internal/scoring"
	appErrors "github.com/noah-isme/okr-performance-api/pkg/errors"
)

var errStoreDown = errors.New("store unavailable")

func march() time.Time {
	return time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
}

func timePtr(t time.Time) *time.Time { return &t }

type fakeUsers struct {
	users   []models.User
	listErr error
}

func (f *fakeUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			copy := u
			return &copy, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUsers) ListActive(ctx context.Context) ([]models.User, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.User
	for _, u := range f.users {
		if u.Active {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUsers) ListActiveByDepartment(ctx context.Context, department models.Department) ([]models.User, error) {
	var out []models.User
	for _, u := range f.users {
		if u.Active && u.Department == department {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUsers) CountActive(ctx context.Context) (int, error) {
	active, _ := f.ListActive(ctx)
	return len(active), nil
}

type fakeTasks struct {
	mu      sync.Mutex
	tasks   map[string]*models.Task
	updates []models.Task
}

func newFakeTasks(tasks ...models.Task) *fakeTasks {
	f := &fakeTasks{tasks: make(map[string]*models.Task)}
	for i := range tasks {
		task := tasks[i]
		f.tasks[task.ID] = &task
	}
	return f
}

func (f *fakeTasks) FindByID(ctx context.Context, id string) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copy := *task
	return &copy, nil
}

func (f *fakeTasks) UpdateStatus(ctx context.Context, task *models.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copy := *task
	f.tasks[task.ID] = &copy
	f.updates = append(f.updates, copy)
	return nil
}

func (f *fakeTasks) ListForParticipantInMonth(ctx context.Context, userID string, start, end time.Time) ([]models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Task
	for _, task := range f.tasks {
		if task.IsParticipant(userID) {
			out = append(out, *task)
		}
	}
	return out, nil
}

type fakeScores struct {
	mu          sync.Mutex
	byTask      map[string]*models.ScoreDistribution
	allocations []models.AllocationRecord
	monthly     *models.UserMonthlyScore
	replaceErr  error
}

func newFakeScores() *fakeScores {
	return &fakeScores{byTask: make(map[string]*models.ScoreDistribution)}
}

func (f *fakeScores) ReplaceForTask(ctx context.Context, dist *models.ScoreDistribution) error {
	if f.replaceErr != nil {
		return f.replaceErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	dist.ID = "dist-" + dist.TaskID
	copy := *dist
	f.byTask[dist.TaskID] = &copy
	return nil
}

func (f *fakeScores) FindByTask(ctx context.Context, taskID string) (*models.ScoreDistribution, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	dist, ok := f.byTask[taskID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copy := *dist
	return &copy, nil
}

func (f *fakeScores) UserMonthlyScore(ctx context.Context, userID string, start, end time.Time) (*models.UserMonthlyScore, error) {
	if f.monthly == nil {
		return &models.UserMonthlyScore{TotalScore: decimal.Zero}, nil
	}
	copy := *f.monthly
	return &copy, nil
}

func (f *fakeScores) AllocationsForUsers(ctx context.Context, userIDs []string, start, end time.Time) ([]models.AllocationRecord, error) {
	wanted := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		wanted[id] = struct{}{}
	}
	var out []models.AllocationRecord
	for _, rec := range f.allocations {
		if _, ok := wanted[rec.UserID]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

type fakeReviews struct {
	reviews        []models.Review
	roles          map[string]models.UserRole
	createErr      error
	adjustErr      error
	adjustments    []repository.ReviewAdjustment
	distributionID string
	candidateTasks []models.Task
	candidateUsers []models.User
}

func (f *fakeReviews) Create(ctx context.Context, review *models.Review) error {
	if f.createErr != nil {
		return f.createErr
	}
	review.ID = "review-" + review.ReviewerID
	if role, ok := f.roles[review.ReviewerID]; ok {
		review.ReviewerRole = role
	}
	f.reviews = append(f.reviews, *review)
	return nil
}

// CreateTaskReview keeps nothing when the adjustment write fails, like the
// rolled back transaction.
func (f *fakeReviews) CreateTaskReview(ctx context.Context, review *models.Review, distributionID string, adjust repository.ReviewAdjuster) error {
	if f.createErr != nil {
		return f.createErr
	}
	stored := *review
	stored.ID = "review-" + review.ReviewerID
	if role, ok := f.roles[review.ReviewerID]; ok {
		stored.ReviewerRole = role
	}

	var adjustment *repository.ReviewAdjustment
	if adjust != nil && distributionID != "" {
		taskReviews, _ := f.ListByTask(ctx, *review.TaskID)
		adj := adjust(append(taskReviews, stored))
		if f.adjustErr != nil {
			return f.adjustErr
		}
		adjustment = &adj
	}

	review.ID = stored.ID
	review.ReviewerRole = stored.ReviewerRole
	f.reviews = append(f.reviews, stored)
	if adjustment != nil {
		f.adjustments = append(f.adjustments, *adjustment)
		f.distributionID = distributionID
	}
	return nil
}

func (f *fakeReviews) ExistsForTask(ctx context.Context, taskID, reviewerID string) (bool, error) {
	for _, r := range f.reviews {
		if r.TaskID != nil && *r.TaskID == taskID && r.ReviewerID == reviewerID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeReviews) ExistsMonthly(ctx context.Context, reviewerID, revieweeID string, month time.Time) (bool, error) {
	for _, r := range f.reviews {
		if r.RevieweeID != nil && *r.RevieweeID == revieweeID && r.ReviewerID == reviewerID && r.Month != nil && r.Month.Equal(month) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeReviews) ListByTask(ctx context.Context, taskID string) ([]models.Review, error) {
	var out []models.Review
	for _, r := range f.reviews {
		if r.TaskID != nil && *r.TaskID == taskID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReviews) ListMonthly(ctx context.Context, revieweeID string, month time.Time) ([]models.Review, error) {
	var out []models.Review
	for _, r := range f.reviews {
		if r.RevieweeID != nil && *r.RevieweeID == revieweeID && r.Month != nil && r.Month.Equal(month) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReviews) ListReviewableTasks(ctx context.Context, reviewerID string) ([]models.Task, error) {
	var out []models.Task
	for _, task := range f.candidateTasks {
		if task.Status != models.TaskStatusCompleted || task.IsParticipant(reviewerID) {
			continue
		}
		if reviewed, _ := f.ExistsForTask(ctx, task.ID, reviewerID); reviewed {
			continue
		}
		out = append(out, task)
	}
	return out, nil
}

func (f *fakeReviews) ListReviewableUsers(ctx context.Context, reviewerID string, month time.Time) ([]models.User, error) {
	var out []models.User
	for _, user := range f.candidateUsers {
		if !user.Active || user.ID == reviewerID {
			continue
		}
		if reviewed, _ := f.ExistsMonthly(ctx, reviewerID, user.ID, month); reviewed {
			continue
		}
		out = append(out, user)
	}
	return out, nil
}

func (f *fakeReviews) ListForCompletedTasks(ctx context.Context, userID string, start, end time.Time) ([]models.Review, error) {
	return nil, nil
}

type fakeWorkHours struct {
	mu    sync.Mutex
	hours map[string]models.WorkHours
}

func (f *fakeWorkHours) Upsert(ctx context.Context, wh *models.WorkHours) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.hours == nil {
		f.hours = make(map[string]models.WorkHours)
	}
	f.hours[wh.UserID] = *wh
	return nil
}

func (f *fakeWorkHours) FindByUserMonth(ctx context.Context, userID string, month time.Time) (*models.WorkHours, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	wh, ok := f.hours[userID]
	if !ok || !wh.Month.Equal(month) {
		return nil, sql.ErrNoRows
	}
	return &wh, nil
}

type fakeEvaluations struct {
	mu          sync.Mutex
	evaluations map[string]*models.MonthlyEvaluation
	peers       []models.PeerEvaluation
	overrides   []repository.AdminOverride
	history     []models.AdminEvaluationHistory
	createErr   error
}

func newFakeEvaluations(evaluations ...models.MonthlyEvaluation) *fakeEvaluations {
	f := &fakeEvaluations{evaluations: make(map[string]*models.MonthlyEvaluation)}
	for i := range evaluations {
		ev := evaluations[i]
		f.evaluations[ev.ID] = &ev
	}
	return f
}

func (f *fakeEvaluations) Create(ctx context.Context, ev *models.MonthlyEvaluation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	ev.ID = "eval-" + ev.UserID
	copy := *ev
	f.evaluations[ev.ID] = &copy
	return nil
}

func (f *fakeEvaluations) FindByID(ctx context.Context, id string) (*models.MonthlyEvaluation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ev, ok := f.evaluations[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copy := *ev
	return &copy, nil
}

func (f *fakeEvaluations) FindByUserMonth(ctx context.Context, userID string, month time.Time) (*models.MonthlyEvaluation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ev := range f.evaluations {
		if ev.UserID == userID && ev.Month.Equal(month) {
			copy := *ev
			return &copy, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeEvaluations) CreatePeer(ctx context.Context, peer *models.PeerEvaluation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	peer.ID = "peer-" + peer.EvaluatorID
	f.peers = append(f.peers, *peer)
	return nil
}

func (f *fakeEvaluations) PeerExists(ctx context.Context, evaluationID, evaluatorID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.peers {
		if p.EvaluationID == evaluationID && p.EvaluatorID == evaluatorID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeEvaluations) ListPeers(ctx context.Context, evaluationID string) ([]models.PeerEvaluation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.PeerEvaluation
	for _, p := range f.peers {
		if p.EvaluationID == evaluationID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeEvaluations) SetAdminOverride(ctx context.Context, override repository.AdminOverride) (*models.AdminEvaluationHistory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ev, ok := f.evaluations[override.EvaluationID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	action := models.AdminActionUpdate
	if ev.AdminFinalScore == nil {
		action = models.AdminActionCreate
	}
	score := override.Score
	entry := models.AdminEvaluationHistory{
		ID:              "hist-" + override.EvaluationID,
		EvaluationID:    override.EvaluationID,
		AdminID:         override.AdminID,
		PreviousScore:   ev.AdminFinalScore,
		NewScore:        &score,
		PreviousComment: ev.AdminFinalComment,
		NewComment:      override.Comment,
		Action:          action,
		CreatedAt:       override.At,
	}
	ev.AdminFinalScore = &score
	ev.AdminFinalComment = override.Comment
	f.overrides = append(f.overrides, override)
	f.history = append([]models.AdminEvaluationHistory{entry}, f.history...)
	return &entry, nil
}

func (f *fakeEvaluations) AdminHistory(ctx context.Context, evaluationID string) ([]models.AdminEvaluationHistory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.AdminEvaluationHistory
	for _, h := range f.history {
		if h.EvaluationID == evaluationID {
			out = append(out, h)
		}
	}
	return out, nil
}

type fakePerformance struct {
	mu        sync.Mutex
	scores    map[string]*models.PerformanceScore
	failUsers map[string]bool
	rerankErr error
	reranks   int
}

func newFakePerformance() *fakePerformance {
	return &fakePerformance{scores: make(map[string]*models.PerformanceScore), failUsers: make(map[string]bool)}
}

func (f *fakePerformance) ReplaceForUser(ctx context.Context, score *models.PerformanceScore) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUsers[score.UserID] {
		return errStoreDown
	}
	copy := *score
	copy.Rank = 0
	f.scores[score.UserID] = &copy
	return nil
}

func (f *fakePerformance) FindByUserMonth(ctx context.Context, userID string, month time.Time) (*models.PerformanceScore, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	score, ok := f.scores[userID]
	if !ok || !score.Month.Equal(month) {
		return nil, sql.ErrNoRows
	}
	copy := *score
	return &copy, nil
}

func (f *fakePerformance) Rerank(ctx context.Context, month time.Time, ranker repository.Ranker) ([]scoring.RankEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reranks++
	if f.rerankErr != nil {
		return nil, f.rerankErr
	}
	var entries []scoring.RankEntry
	for _, s := range f.scores {
		if s.Month.Equal(month) {
			entries = append(entries, scoring.RankEntry{UserID: s.UserID, Name: s.UserName, FinalScore: s.FinalScore})
		}
	}
	ranked := ranker(entries)
	for _, e := range ranked {
		f.scores[e.UserID].Rank = e.Rank
	}
	return ranked, nil
}

func (f *fakePerformance) Ranking(ctx context.Context, month time.Time) ([]models.RankingRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var rows []models.RankingRow
	for _, s := range f.scores {
		if s.Month.Equal(month) {
			rows = append(rows, models.RankingRow{Rank: s.Rank, UserID: s.UserID, UserName: s.UserName, Department: s.Department, FinalScore: s.FinalScore})
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Rank < rows[j].Rank })
	return rows, nil
}

func (f *fakePerformance) TopByDepartment(ctx context.Context, dept models.Department, month time.Time) (*models.RankingRow, error) {
	rows, _ := f.Ranking(ctx, month)
	var best *models.RankingRow
	for i := range rows {
		row := rows[i]
		if row.Department != dept {
			continue
		}
		if best == nil || row.FinalScore.GreaterThan(best.FinalScore) {
			best = &row
		}
	}
	if best == nil {
		return nil, sql.ErrNoRows
	}
	return best, nil
}

type fakeReports struct {
	mu      sync.Mutex
	reports map[string]*models.MonthlyReport
	calls   int
}

func (f *fakeReports) ReplaceForMonth(ctx context.Context, report *models.MonthlyReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.reports == nil {
		f.reports = make(map[string]*models.MonthlyReport)
	}
	report.ID = "report-" + models.FormatMonth(report.Month)
	copy := *report
	f.reports[models.FormatMonth(report.Month)] = &copy
	return nil
}

func (f *fakeReports) FindByMonth(ctx context.Context, month time.Time) (*models.MonthlyReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	report, ok := f.reports[models.FormatMonth(month)]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copy := *report
	return &copy, nil
}

func (f *fakeReports) FindDepartment(ctx context.Context, dept models.Department, month time.Time) (*models.DepartmentReport, error) {
	report, err := f.FindByMonth(ctx, month)
	if err != nil {
		return nil, err
	}
	for _, d := range report.Departments {
		if d.Department == dept {
			copy := d
			return &copy, nil
		}
	}
	return nil, sql.ErrNoRows
}

type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	deleted []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = raw
	return nil
}

func (m *memoryCache) DeleteByPattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
		}
	}
	return nil
}

func (m *memoryCache) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[key]
	return ok
}
