package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/okr-performance-api/internal/models"
	appErrors "github.com/noah-isme/okr-performance-api/pkg/errors"
)

func newDepartmentReportFixture() (*DepartmentReportService, *fakeReports, *fakePerformance, *memoryCache) {
	users := &fakeUsers{users: []models.User{
		{ID: "u1", Name: "Ana", Department: models.DepartmentHardware, Active: true},
		{ID: "u2", Name: "Budi", Department: models.DepartmentHardware, Active: true},
		{ID: "u3", Name: "Citra", Department: models.DepartmentSoftware, Active: true},
		{ID: "u4", Name: "Dewi", Department: models.DepartmentMarketing, Active: false},
	}}
	scores := newFakeScores()
	scores.allocations = []models.AllocationRecord{
		{TaskID: "t1", UserID: "u1", AdjustedScore: decimal.NewFromInt(4), DifficultyScore: 8},
		{TaskID: "t1", UserID: "u2", AdjustedScore: decimal.NewFromInt(4), DifficultyScore: 8},
		{TaskID: "t2", UserID: "u1", AdjustedScore: decimal.NewFromInt(6), DifficultyScore: 6},
		{TaskID: "t3", UserID: "u3", AdjustedScore: decimal.NewFromInt(5), DifficultyScore: 5},
	}
	performance := newFakePerformance()
	performance.scores["u1"] = &models.PerformanceScore{UserID: "u1", UserName: "Ana", Department: models.DepartmentHardware, Month: march(), FinalScore: decimal.NewFromInt(40), Rank: 2}
	performance.scores["u2"] = &models.PerformanceScore{UserID: "u2", UserName: "Budi", Department: models.DepartmentHardware, Month: march(), FinalScore: decimal.NewFromInt(20), Rank: 3}
	performance.scores["u3"] = &models.PerformanceScore{UserID: "u3", UserName: "Citra", Department: models.DepartmentSoftware, Month: march(), FinalScore: decimal.NewFromInt(60), Rank: 1}

	reports := &fakeReports{}
	cacheRepo := newMemoryCache()
	cache := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)
	svc := NewDepartmentReportService(users, scores, reports, performance, cache, zap.NewNop(), nil, nil)
	return svc, reports, performance, cacheRepo
}

func TestDepartmentReportServiceRegenerate(t *testing.T) {
	svc, reports, _, _ := newDepartmentReportFixture()
	ctx := context.Background()

	report, err := svc.Regenerate(ctx, march())
	require.NoError(t, err)
	require.Len(t, report.Departments, 2)

	hardware := report.Departments[0]
	assert.Equal(t, models.DepartmentHardware, hardware.Department)
	assert.Equal(t, "14.00", hardware.TotalOKRScore.StringFixed(2))
	assert.Equal(t, 2, hardware.MemberCount)
	assert.Equal(t, "7.00", hardware.AvgScore.StringFixed(2))
	assert.Equal(t, 2, hardware.CompletedTasks)
	assert.Equal(t, "7.00", hardware.AvgDifficulty.StringFixed(2))

	software := report.Departments[1]
	assert.Equal(t, models.DepartmentSoftware, software.Department)
	assert.Equal(t, 1, software.CompletedTasks)

	_, err = svc.Regenerate(ctx, march())
	require.NoError(t, err)
	assert.Equal(t, 2, reports.calls)

	stored, err := svc.MonthReport(ctx, march())
	require.NoError(t, err)
	assert.Len(t, stored.Departments, 2)
}

func TestDepartmentReportServiceSummary(t *testing.T) {
	svc, _, _, cacheRepo := newDepartmentReportFixture()
	ctx := context.Background()

	_, err := svc.DepartmentSummary(ctx, models.DepartmentHardware, march())
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))

	_, err = svc.DepartmentSummary(ctx, "finance", march())
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = svc.Regenerate(ctx, march())
	require.NoError(t, err)

	summary, err := svc.DepartmentSummary(ctx, models.DepartmentHardware, march())
	require.NoError(t, err)
	assert.Equal(t, "2024-03", summary.Month)
	require.NotNil(t, summary.TopPerformer)
	assert.Equal(t, "u1", summary.TopPerformer.UserID)
	assert.True(t, cacheRepo.has("okr:2024-03:department:hardware"))
}

func TestDepartmentReportServiceSummaryWithoutScores(t *testing.T) {
	svc, _, performance, _ := newDepartmentReportFixture()
	performance.scores = map[string]*models.PerformanceScore{}
	ctx := context.Background()

	_, err := svc.Regenerate(ctx, march())
	require.NoError(t, err)

	summary, err := svc.DepartmentSummary(ctx, models.DepartmentSoftware, march())
	require.NoError(t, err)
	assert.Nil(t, summary.TopPerformer)
}

func TestDepartmentReportServiceExport(t *testing.T) {
	svc, _, _, _ := newDepartmentReportFixture()
	ctx := context.Background()

	_, err := svc.Export(ctx, march(), models.ReportFormatCSV)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))

	_, err = svc.Regenerate(ctx, march())
	require.NoError(t, err)

	file, err := svc.Export(ctx, march(), models.ReportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "department-report-2024-03.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)
	assert.Equal(t, "department,members,total_okr_score,avg_score,completed_tasks,avg_difficulty\n"+
		"hardware,2,14.00,7.00,2,7.00\n"+
		"software,1,5.00,5.00,1,5.00\n"+
		"all,3,19.00,6.33,3,\n", string(file.Content))

	pdf, err := svc.Export(ctx, march(), models.ReportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", pdf.ContentType)
	assert.True(t, bytes.HasPrefix(pdf.Content, []byte("%PDF")))

	_, err = svc.Export(ctx, march(), "xlsx")
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}
