package grpc

import (
	"context"

	"github.com/godilite/eduinsight-server/internal/service"
)

// AnalyticsService is the read surface the RPC handlers serve. It is
// satisfied by both service.AnalyticsService and service.CachedAnalytics.
type AnalyticsService interface {
	GetCourseAnalytics(ctx context.Context) ([]service.CourseSummary, error)
	GetInstructorAnalytics(ctx context.Context) ([]service.InstructorSummary, error)
	GetComparisonAnalytics(ctx context.Context) ([]service.ComparisonRow, error)
	GetDepartmentAnalytics(ctx context.Context) ([]service.DepartmentSummary, error)
	GetTrendAnalytics(ctx context.Context) ([]service.SemesterTrendPoint, error)
	GetForecastSummary(ctx context.Context) (*service.ForecastSummary, error)
	GetDashboard(ctx context.Context) (service.Dashboard, error)
}
