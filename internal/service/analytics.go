package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/godilite/eduinsight-server/internal/repository/models"
)

const (
	dbTimeout = 2 * time.Second
)

var (
	ErrStorageFailure = errors.New("storage failure")
)

// AnalyticsService aggregates raw ratings into the course, instructor,
// comparison, department and semester views. Every call re-reads storage.
type AnalyticsService struct {
	storage AnalyticsRepository
	logger  *zap.Logger
}

// NewAnalyticsService creates a new AnalyticsService instance.
func NewAnalyticsService(storage AnalyticsRepository, logger *zap.Logger) *AnalyticsService {
	if storage == nil {
		panic("storage must not be nil")
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}
	return &AnalyticsService{
		storage: storage,
		logger:  logger.Named("analytics"),
	}
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStorageFailure, op, err)
}

// GetCourseAnalytics returns course-section averages, best first.
func (s *AnalyticsService) GetCourseAnalytics(ctx context.Context) ([]CourseSummary, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.storage.CourseRatings(dbCtx)
	if err != nil {
		return nil, storageErr("course ratings", err)
	}

	out := make([]CourseSummary, 0, len(rows))
	for _, r := range rows {
		if r.RatingCount == 0 {
			continue
		}
		out = append(out, CourseSummary{
			CourseID:        r.CourseID,
			CourseName:      r.CourseName,
			Department:      r.Department,
			Semester:        r.Semester,
			AvgCourseRating: Average(r.RatingTotals),
			TotalResponses:  r.RatingCount,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].AvgCourseRating != out[j].AvgCourseRating {
			return out[i].AvgCourseRating > out[j].AvgCourseRating
		}
		return out[i].CourseID < out[j].CourseID
	})

	s.logger.Debug("course analytics computed", zap.Int("courses", len(out)))
	return out, nil
}

// GetInstructorAnalytics returns instructor-section averages per instructor
// name, best first.
//
// Instructors are keyed by display name, so two people with the same name are
// reported as one row. This mirrors the stored data, which has no instructor
// identifier on a response.
func (s *AnalyticsService) GetInstructorAnalytics(ctx context.Context) ([]InstructorSummary, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.storage.InstructorRatings(dbCtx)
	if err != nil {
		return nil, storageErr("instructor ratings", err)
	}

	out := make([]InstructorSummary, 0, len(rows))
	for _, r := range rows {
		if r.RatingCount == 0 {
			continue
		}
		out = append(out, InstructorSummary{
			InstructorName:      r.InstructorName,
			AvgInstructorRating: Average(r.RatingTotals),
			TotalResponses:      r.RatingCount,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].AvgInstructorRating != out[j].AvgInstructorRating {
			return out[i].AvgInstructorRating > out[j].AvgInstructorRating
		}
		return out[i].InstructorName < out[j].InstructorName
	})
	return out, nil
}

// GetComparisonAnalytics pairs each course's course-section average with the
// instructor-section average of every instructor rated on that course. Only
// courses present on both sides appear. Rows are ordered by gap, widest first.
func (s *AnalyticsService) GetComparisonAnalytics(ctx context.Context) ([]ComparisonRow, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	courseRows, err := s.storage.CourseRatings(dbCtx)
	if err != nil {
		return nil, storageErr("course ratings", err)
	}
	instructorRows, err := s.storage.InstructorRatingsByCourse(dbCtx)
	if err != nil {
		return nil, storageErr("instructor ratings by course", err)
	}

	courseCents := make(map[int64]int64, len(courseRows))
	for _, r := range courseRows {
		if r.RatingCount > 0 {
			courseCents[r.CourseID] = averageCents(r.RatingTotals)
		}
	}

	out := make([]ComparisonRow, 0, len(instructorRows))
	for _, r := range instructorRows {
		c, ok := courseCents[r.CourseID]
		if !ok || r.RatingCount == 0 {
			continue
		}
		i := averageCents(r.RatingTotals)
		gap := c - i
		if gap < 0 {
			gap = -gap
		}
		out = append(out, ComparisonRow{
			CourseID:            r.CourseID,
			CourseName:          r.CourseName,
			InstructorName:      r.InstructorName,
			AvgCourseRating:     centsToRating(c),
			AvgInstructorRating: centsToRating(i),
			Gap:                 centsToRating(gap),
			AlignmentBucket:     bucketCents(c, i),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Gap != out[j].Gap {
			return out[i].Gap > out[j].Gap
		}
		if out[i].CourseID != out[j].CourseID {
			return out[i].CourseID < out[j].CourseID
		}
		return out[i].InstructorName < out[j].InstructorName
	})
	return out, nil
}

// lessNullableLast orders strings ascending with nil after every value.
func lessNullableLast(a, b *string) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return *a < *b
	}
}

// GetDepartmentAnalytics returns averages over both sections per department,
// best first.
func (s *AnalyticsService) GetDepartmentAnalytics(ctx context.Context) ([]DepartmentSummary, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.storage.DepartmentRatings(dbCtx)
	if err != nil {
		return nil, storageErr("department ratings", err)
	}

	out := make([]DepartmentSummary, 0, len(rows))
	for _, r := range rows {
		if r.RatingCount == 0 {
			continue
		}
		out = append(out, DepartmentSummary{
			Department:          r.Department,
			AvgDepartmentRating: Average(r.RatingTotals),
			TotalResponses:      r.RatingCount,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].AvgDepartmentRating != out[j].AvgDepartmentRating {
			return out[i].AvgDepartmentRating > out[j].AvgDepartmentRating
		}
		return lessNullableLast(out[i].Department, out[j].Department)
	})
	return out, nil
}

// GetTrendAnalytics returns averages over both sections per semester in
// lexicographic semester order; courses without a semester come last.
func (s *AnalyticsService) GetTrendAnalytics(ctx context.Context) ([]SemesterTrendPoint, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.storage.SemesterRatings(dbCtx)
	if err != nil {
		return nil, storageErr("semester ratings", err)
	}
	return trendPoints(rows), nil
}

func trendPoints(rows []models.SemesterRatingRow) []SemesterTrendPoint {
	out := make([]SemesterTrendPoint, 0, len(rows))
	for _, r := range rows {
		if r.RatingCount == 0 {
			continue
		}
		out = append(out, SemesterTrendPoint{
			Semester:          r.Semester,
			AvgSemesterRating: Average(r.RatingTotals),
			TotalResponses:    r.RatingCount,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return lessNullableLast(out[i].Semester, out[j].Semester)
	})
	return out
}

// GetForecastSummary projects the next semester's average from the trend.
// It returns nil when no semester has a label.
func (s *AnalyticsService) GetForecastSummary(ctx context.Context) (*ForecastSummary, error) {
	trend, err := s.GetTrendAnalytics(ctx)
	if err != nil {
		return nil, err
	}
	summary := SummarizeTrend(trend)
	if summary != nil {
		s.logger.Info("forecast computed",
			zap.Float64("forecast", summary.Forecast),
			zap.String("direction", summary.Direction),
			zap.Int("points", summary.Points))
	}
	return summary, nil
}

// GetDashboard runs the five aggregations concurrently. The first failure
// cancels the rest.
func (s *AnalyticsService) GetDashboard(ctx context.Context) (Dashboard, error) {
	var d Dashboard
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		d.Courses, err = s.GetCourseAnalytics(gctx)
		return err
	})
	g.Go(func() (err error) {
		d.Instructors, err = s.GetInstructorAnalytics(gctx)
		return err
	})
	g.Go(func() (err error) {
		d.Comparison, err = s.GetComparisonAnalytics(gctx)
		return err
	})
	g.Go(func() (err error) {
		d.Departments, err = s.GetDepartmentAnalytics(gctx)
		return err
	})
	g.Go(func() (err error) {
		d.Trend, err = s.GetTrendAnalytics(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}

	d.Forecast = SummarizeTrend(d.Trend)
	d.BucketCounts = CountBuckets(d.Comparison)
	return d, nil
}

// CountBuckets tallies comparison rows per alignment bucket.
func CountBuckets(rows []ComparisonRow) map[AlignmentBucket]int {
	counts := make(map[AlignmentBucket]int, 4)
	for _, r := range rows {
		counts[r.AlignmentBucket]++
	}
	return counts
}
