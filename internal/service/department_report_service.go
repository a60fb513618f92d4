package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/noah-isme/okr-performance-api/internal/models"
	"github.com/noah-isme/okr-performance-api/internal/scoring"
	appErrors "github.com/noah-isme/okr-performance-api/pkg/errors"
	"github.com/noah-isme/okr-performance-api/pkg/export"
	"github.com/noah-isme/okr-performance-api/pkg/rounding"
)

type departmentMemberReader interface {
	ListActiveByDepartment(ctx context.Context, department models.Department) ([]models.User, error)
}

type reportStore interface {
	ReplaceForMonth(ctx context.Context, report *models.MonthlyReport) error
	FindByMonth(ctx context.Context, month time.Time) (*models.MonthlyReport, error)
	FindDepartment(ctx context.Context, dept models.Department, month time.Time) (*models.DepartmentReport, error)
}

type topPerformerReader interface {
	TopByDepartment(ctx context.Context, dept models.Department, month time.Time) (*models.RankingRow, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportFile is a rendered department report.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

// DepartmentReportService derives and serves monthly department rollups.
type DepartmentReportService struct {
	users       departmentMemberReader
	allocations allocationReader
	reports     reportStore
	performance topPerformerReader
	cache       *CacheService
	csv         csvRenderer
	pdf         pdfRenderer
	logger      *zap.Logger
}

// NewDepartmentReportService constructs a DepartmentReportService.
func NewDepartmentReportService(users departmentMemberReader, allocations allocationReader, reports reportStore, performance topPerformerReader, cache *CacheService, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *DepartmentReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &DepartmentReportService{
		users:       users,
		allocations: allocations,
		reports:     reports,
		performance: performance,
		cache:       cache,
		csv:         csv,
		pdf:         pdf,
		logger:      logger,
	}
}

// Regenerate rebuilds the month's report: one row per department with at
// least one active member, replacing every previous row.
func (s *DepartmentReportService) Regenerate(ctx context.Context, month time.Time) (*models.MonthlyReport, error) {
	month = models.MonthStart(month)
	start, end := models.MonthRange(month)

	report := &models.MonthlyReport{Month: month, GeneratedAt: time.Now().UTC()}
	for _, dept := range models.Departments {
		members, err := s.users.ListActiveByDepartment(ctx, dept)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list department members")
		}
		if len(members) == 0 {
			continue
		}
		ids := make([]string, 0, len(members))
		for _, member := range members {
			ids = append(ids, member.ID)
		}
		records, err := s.allocations.AllocationsForUsers(ctx, ids, start, end)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load department allocations")
		}
		inputs := make([]scoring.AllocationInput, 0, len(records))
		for _, rec := range records {
			inputs = append(inputs, scoring.AllocationInput{
				TaskID:          rec.TaskID,
				UserID:          rec.UserID,
				AdjustedScore:   rec.AdjustedScore,
				DifficultyScore: rec.DifficultyScore,
			})
		}
		rollup := scoring.RollupDepartment(ids, inputs)
		report.Departments = append(report.Departments, models.DepartmentReport{
			Department:     dept,
			TotalOKRScore:  rollup.TotalOKRScore,
			MemberCount:    rollup.MemberCount,
			AvgScore:       rollup.AvgScore,
			CompletedTasks: rollup.CompletedTasks,
			AvgDifficulty:  rollup.AvgDifficulty,
		})
	}

	if err := s.reports.ReplaceForMonth(ctx, report); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store department reports")
	}
	s.logger.Info("department reports regenerated",
		zap.String("month", models.FormatMonth(month)),
		zap.Int("departments", len(report.Departments)),
	)
	s.cache.InvalidateMonth(ctx, month)
	return report, nil
}

// MonthReport returns the stored report of month.
func (s *DepartmentReportService) MonthReport(ctx context.Context, month time.Time) (*models.MonthlyReport, error) {
	report, err := s.reports.FindByMonth(ctx, models.MonthStart(month))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "department report not generated")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load department report")
	}
	return report, nil
}

// DepartmentSummary returns one department's rollup and its top performer.
func (s *DepartmentReportService) DepartmentSummary(ctx context.Context, dept models.Department, month time.Time) (*models.DepartmentSummary, error) {
	if !dept.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown department")
	}
	month = models.MonthStart(month)
	return readThrough(ctx, s.cache, departmentCacheKey(dept, month), func(ctx context.Context) (*models.DepartmentSummary, error) {
		report, err := s.reports.FindDepartment(ctx, dept, month)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "department report not generated")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load department report")
		}

		summary := &models.DepartmentSummary{Month: models.FormatMonth(month), Report: *report}
		top, err := s.performance.TopByDepartment(ctx, dept, month)
		switch {
		case err == nil:
			summary.TopPerformer = top
		case !errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load top performer")
		}
		return summary, nil
	})
}

// Export renders the month's department rows as CSV or PDF.
func (s *DepartmentReportService) Export(ctx context.Context, month time.Time, format models.ReportFormat) (*ExportFile, error) {
	report, err := s.MonthReport(ctx, month)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{
		Headers: []string{"department", "members", "total_okr_score", "avg_score", "completed_tasks", "avg_difficulty"},
		Numeric: []string{"members", "total_okr_score", "avg_score", "completed_tasks", "avg_difficulty"},
	}
	var members, completed int
	total := decimal.Zero
	for _, dept := range report.Departments {
		members += dept.MemberCount
		completed += dept.CompletedTasks
		total = total.Add(dept.TotalOKRScore)
		dataset.Rows = append(dataset.Rows, map[string]string{
			"department":      string(dept.Department),
			"members":         strconv.Itoa(dept.MemberCount),
			"total_okr_score": dept.TotalOKRScore.StringFixed(2),
			"avg_score":       dept.AvgScore.StringFixed(2),
			"completed_tasks": strconv.Itoa(dept.CompletedTasks),
			"avg_difficulty":  dept.AvgDifficulty.StringFixed(2),
		})
	}

	if len(report.Departments) > 0 {
		avg := decimal.Zero
		if members > 0 {
			avg = rounding.Round2(total.Div(decimal.NewFromInt(int64(members))))
		}
		dataset.Footer = map[string]string{
			"department":      "all",
			"members":         strconv.Itoa(members),
			"total_okr_score": rounding.Round2(total).StringFixed(2),
			"avg_score":       avg.StringFixed(2),
			"completed_tasks": strconv.Itoa(completed),
		}
	}

	label := models.FormatMonth(report.Month)
	base := fmt.Sprintf("department-report-%s", label)
	switch format {
	case models.ReportFormatCSV, "":
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportFile{Filename: base + ".csv", ContentType: "text/csv", Content: content}, nil
	case models.ReportFormatPDF:
		content, err := s.pdf.Render(dataset, "Department Report "+label)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportFile{Filename: base + ".pdf", ContentType: "application/pdf", Content: content}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}
