package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/okr-performance-api/internal/models"
	"github.com/noah-isme/okr-performance-api/internal/repository"
	"github.com/noah-isme/okr-performance-api/internal/scoring"
	"github.com/noah-isme/okr-performance-api/internal/service"
	"github.com/noah-isme/okr-performance-api/pkg/cache"
	"github.com/noah-isme/okr-performance-api/pkg/config"
	"github.com/noah-isme/okr-performance-api/pkg/database"
	"github.com/noah-isme/okr-performance-api/pkg/logger"
)

func main() {
	var (
		monthFlag  string
		rerankOnly bool
		asJSON     bool
	)

	flag.StringVar(&monthFlag, "month", "", "Month to recalculate (YYYY-MM); defaults to the previous month")
	flag.BoolVar(&rerankOnly, "rerank-only", false, "Skip score recalculation and only re-rank stored scores")
	flag.BoolVar(&asJSON, "json", false, "Print the ranking as JSON")
	flag.Parse()

	month, err := resolveMonth(monthFlag, time.Now())
	if err != nil {
		log.Fatalf("invalid -month: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer db.Close()

	// cached rankings held by the API are invalidated when redis is reachable
	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, cached rankings will expire on their own", zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}
	cacheSvc := service.NewCacheService(repository.NewCacheRepository(redisClient, logr), nil, cfg.Cache.TTL, logr, redisClient != nil)

	users := repository.NewUserRepository(db)
	scores := repository.NewScoreRepository(db)
	performanceRepo := repository.NewPerformanceRepository(db)
	reportSvc := service.NewDepartmentReportService(users, scores, repository.NewReportRepository(db), performanceRepo, cacheSvc, logr, nil, nil)
	performanceSvc := service.NewPerformanceService(service.PerformanceDeps{
		Users:       users,
		WorkHours:   repository.NewWorkHoursRepository(db),
		Tasks:       repository.NewTaskRepository(db),
		Allocations: scores,
		Reviews:     repository.NewReviewRepository(db),
		Evaluations: repository.NewEvaluationRepository(db),
		Scores:      performanceRepo,
		Reports:     reportSvc,
	}, scoring.NewEngine(), cacheSvc, nil, service.PerformanceConfig{
		BatchConcurrency: cfg.Scoring.BatchConcurrency,
		RollupAfterBatch: cfg.Reports.RollupAfterBatch,
	}, logr)

	if rerankOnly {
		if _, err := performanceSvc.Rerank(ctx, month); err != nil {
			logr.Fatal("rerank failed", zap.Error(err))
		}
	} else {
		result, err := performanceSvc.CalculateMonth(ctx, month)
		if err != nil {
			logr.Fatal("recalculation failed", zap.Error(err))
		}
		fmt.Fprintf(os.Stderr, "%s: %d/%d users recalculated in %s\n", result.Month, result.Succeeded, result.Total, result.Duration)
		for _, failure := range result.Failures {
			fmt.Fprintf(os.Stderr, "  failed %s: %s\n", failure.UserID, failure.Error)
		}
	}

	rows, err := performanceSvc.MonthRanking(ctx, month)
	if err != nil {
		logr.Fatal("failed to load ranking", zap.Error(err))
	}
	if err := printRanking(os.Stdout, rows, asJSON); err != nil {
		logr.Fatal("failed to print ranking", zap.Error(err))
	}
}

func resolveMonth(raw string, now time.Time) (time.Time, error) {
	if raw == "" {
		return models.MonthStart(now).AddDate(0, -1, 0), nil
	}
	return models.ParseMonth(raw)
}

func printRanking(w io.Writer, rows []models.RankingRow, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tUSER\tNAME\tDEPARTMENT\tSCORE")
	for _, row := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", row.Rank, row.UserID, row.UserName, row.Department, row.FinalScore.StringFixed(2))
	}
	return tw.Flush()
}
