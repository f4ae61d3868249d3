package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/edutrack-app/edutrack-bff/internal/dto"
	"github.com/edutrack-app/edutrack-bff/internal/gateway"
	"github.com/edutrack-app/edutrack-bff/internal/schema"
)

const dashboardCacheKey = "dash:summary"

type recordLister interface {
	List(ctx context.Context, collection string, q gateway.ListQuery) ([]map[string]interface{}, error)
}

// DashboardServiceConfig tunes summary composition.
type DashboardServiceConfig struct {
	CacheTTL    time.Duration
	SampleLimit int
}

// DashboardService aggregates record counts for the dashboard home page.
type DashboardService struct {
	lister      recordLister
	students    schema.Schema
	departments schema.Schema
	cache       *CacheService
	logger      *zap.Logger
	now         func() time.Time
	cfg         DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(lister recordLister, cache *CacheService, logger *zap.Logger, cfg DashboardServiceConfig) *DashboardService {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.SampleLimit <= 0 {
		cfg.SampleLimit = 500
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		lister:      lister,
		students:    schema.Student(),
		departments: schema.Department(),
		cache:       cache,
		logger:      logger,
		now:         time.Now,
		cfg:         cfg,
	}
}

// Summary returns the aggregate view, indicating cache utilisation.
func (s *DashboardService) Summary(ctx context.Context) (*dto.DashboardSummary, bool, error) {
	if s.cache.Enabled() {
		var cached dto.DashboardSummary
		hit, err := s.cache.Get(ctx, dashboardCacheKey, &cached)
		if err == nil && hit {
			return &cached, true, nil
		}
	}

	summary, err := s.compose(ctx)
	if err != nil {
		return nil, false, err
	}

	if err := s.cache.Set(ctx, dashboardCacheKey, summary, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.Error(err))
	}
	return summary, false, nil
}

// Invalidate drops the cached summary after a mutation.
func (s *DashboardService) Invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, "dash:*"); err != nil {
		s.logger.Warn("dashboard cache invalidate failed", zap.Error(err))
	}
}

func (s *DashboardService) compose(ctx context.Context) (*dto.DashboardSummary, error) {
	studentRows, err := s.listAll(ctx, s.students)
	if err != nil {
		return nil, err
	}
	departmentRows, err := s.listAll(ctx, s.departments)
	if err != nil {
		return nil, err
	}

	byGrade := map[string]int{}
	byDepartment := map[string]int{}
	for _, raw := range studentRows {
		rec := s.students.FromWire(raw)
		if grade := rec.String("gradeLevel"); grade != "" {
			byGrade[grade]++
		}
		if dept := rec.String("department"); dept != "" {
			byDepartment[dept]++
		}
	}

	totalFaculty := 0
	for _, raw := range departmentRows {
		rec := s.departments.FromWire(raw)
		totalFaculty += rec.Int("facultyCount")
	}

	return &dto.DashboardSummary{
		TotalStudents:        len(studentRows),
		TotalDepartments:     len(departmentRows),
		TotalFaculty:         totalFaculty,
		StudentsByGrade:      buckets(byGrade),
		StudentsByDepartment: buckets(byDepartment),
		GeneratedAt:          s.now().UTC(),
	}, nil
}

func (s *DashboardService) listAll(ctx context.Context, sch schema.Schema) ([]map[string]interface{}, error) {
	return s.lister.List(ctx, sch.Collection, gateway.ListQuery{
		SortField:     sch.DefaultSortField,
		SortDirection: "asc",
		Limit:         s.cfg.SampleLimit,
	})
}

func buckets(counts map[string]int) []dto.CountBucket {
	out := make([]dto.CountBucket, 0, len(counts))
	for label, count := range counts {
		out = append(out, dto.CountBucket{Label: label, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Label < out[j].Label
		}
		return out[i].Count > out[j].Count
	})
	return out
}
