package mocks

import (
	"context"
	"errors"

	"github.com/godilite/eduinsight-server/internal/service"
)

// MockAnalyticsService is a function-field mock of the AnalyticsService
// interface for the RPC handler tests.
type MockAnalyticsService struct {
	GetCourseAnalyticsFunc     func(ctx context.Context) ([]service.CourseSummary, error)
	GetInstructorAnalyticsFunc func(ctx context.Context) ([]service.InstructorSummary, error)
	GetComparisonAnalyticsFunc func(ctx context.Context) ([]service.ComparisonRow, error)
	GetDepartmentAnalyticsFunc func(ctx context.Context) ([]service.DepartmentSummary, error)
	GetTrendAnalyticsFunc      func(ctx context.Context) ([]service.SemesterTrendPoint, error)
	GetForecastSummaryFunc     func(ctx context.Context) (*service.ForecastSummary, error)
	GetDashboardFunc           func(ctx context.Context) (service.Dashboard, error)
}

func (m *MockAnalyticsService) GetCourseAnalytics(ctx context.Context) ([]service.CourseSummary, error) {
	if m.GetCourseAnalyticsFunc != nil {
		return m.GetCourseAnalyticsFunc(ctx)
	}
	return nil, errors.New("GetCourseAnalyticsFunc not implemented")
}

func (m *MockAnalyticsService) GetInstructorAnalytics(ctx context.Context) ([]service.InstructorSummary, error) {
	if m.GetInstructorAnalyticsFunc != nil {
		return m.GetInstructorAnalyticsFunc(ctx)
	}
	return nil, errors.New("GetInstructorAnalyticsFunc not implemented")
}

func (m *MockAnalyticsService) GetComparisonAnalytics(ctx context.Context) ([]service.ComparisonRow, error) {
	if m.GetComparisonAnalyticsFunc != nil {
		return m.GetComparisonAnalyticsFunc(ctx)
	}
	return nil, errors.New("GetComparisonAnalyticsFunc not implemented")
}

func (m *MockAnalyticsService) GetDepartmentAnalytics(ctx context.Context) ([]service.DepartmentSummary, error) {
	if m.GetDepartmentAnalyticsFunc != nil {
		return m.GetDepartmentAnalyticsFunc(ctx)
	}
	return nil, errors.New("GetDepartmentAnalyticsFunc not implemented")
}

func (m *MockAnalyticsService) GetTrendAnalytics(ctx context.Context) ([]service.SemesterTrendPoint, error) {
	if m.GetTrendAnalyticsFunc != nil {
		return m.GetTrendAnalyticsFunc(ctx)
	}
	return nil, errors.New("GetTrendAnalyticsFunc not implemented")
}

func (m *MockAnalyticsService) GetForecastSummary(ctx context.Context) (*service.ForecastSummary, error) {
	if m.GetForecastSummaryFunc != nil {
		return m.GetForecastSummaryFunc(ctx)
	}
	return nil, errors.New("GetForecastSummaryFunc not implemented")
}

func (m *MockAnalyticsService) GetDashboard(ctx context.Context) (service.Dashboard, error) {
	if m.GetDashboardFunc != nil {
		return m.GetDashboardFunc(ctx)
	}
	return service.Dashboard{}, errors.New("GetDashboardFunc not implemented")
}
