package mocks

import (
	"context"
	"errors"

	"github.com/godilite/eduinsight-server/internal/service"
)

// MockAnalyticsService is a function-based mock of the analytics read surface.
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

// MockFeedbackService is a function-based mock of the feedback workflow.
type MockFeedbackService struct {
	SubmitFeedbackFunc         func(ctx context.Context, req service.SubmissionRequest) error
	AddQuestionFunc            func(ctx context.Context, section, text string) (service.Question, error)
	ListQuestionsFunc          func(ctx context.Context, section string) ([]service.Question, error)
	DeleteQuestionFunc         func(ctx context.Context, id int64) error
	ListSubmissionsFunc        func(ctx context.Context, limit, offset int) (service.SubmissionPage, error)
	ListStudentSubmissionsFunc func(ctx context.Context, studentID int64) ([]service.Submission, error)
}

func (m *MockFeedbackService) SubmitFeedback(ctx context.Context, req service.SubmissionRequest) error {
	if m.SubmitFeedbackFunc != nil {
		return m.SubmitFeedbackFunc(ctx, req)
	}
	return errors.New("SubmitFeedbackFunc not implemented")
}

func (m *MockFeedbackService) AddQuestion(ctx context.Context, section, text string) (service.Question, error) {
	if m.AddQuestionFunc != nil {
		return m.AddQuestionFunc(ctx, section, text)
	}
	return service.Question{}, errors.New("AddQuestionFunc not implemented")
}

func (m *MockFeedbackService) ListQuestions(ctx context.Context, section string) ([]service.Question, error) {
	if m.ListQuestionsFunc != nil {
		return m.ListQuestionsFunc(ctx, section)
	}
	return nil, errors.New("ListQuestionsFunc not implemented")
}

func (m *MockFeedbackService) DeleteQuestion(ctx context.Context, id int64) error {
	if m.DeleteQuestionFunc != nil {
		return m.DeleteQuestionFunc(ctx, id)
	}
	return errors.New("DeleteQuestionFunc not implemented")
}

func (m *MockFeedbackService) ListSubmissions(ctx context.Context, limit, offset int) (service.SubmissionPage, error) {
	if m.ListSubmissionsFunc != nil {
		return m.ListSubmissionsFunc(ctx, limit, offset)
	}
	return service.SubmissionPage{}, errors.New("ListSubmissionsFunc not implemented")
}

func (m *MockFeedbackService) ListStudentSubmissions(ctx context.Context, studentID int64) ([]service.Submission, error) {
	if m.ListStudentSubmissionsFunc != nil {
		return m.ListStudentSubmissionsFunc(ctx, studentID)
	}
	return nil, errors.New("ListStudentSubmissionsFunc not implemented")
}

// MockPinger is a function-based mock of the store health check.
type MockPinger struct {
	PingFunc func(ctx context.Context) error
}

func (m *MockPinger) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}

// MockCourseService is a function-based mock of the course workflow.
type MockCourseService struct {
	SubmitCourseFunc              func(ctx context.Context, owner service.Instructor, req service.CourseRequest) (service.Course, error)
	ListInstructorCoursesFunc     func(ctx context.Context, instructorID int64) ([]service.Course, error)
	UpdateCourseFunc              func(ctx context.Context, instructorID, courseID int64, req service.CourseRequest) (service.Course, error)
	DeleteCourseFunc              func(ctx context.Context, instructorID, courseID int64) error
	ListCoursesFunc               func(ctx context.Context, status string) ([]service.Course, error)
	ListApprovedCoursesFunc       func(ctx context.Context) ([]service.Course, error)
	SetCourseStatusFunc           func(ctx context.Context, courseID int64, status string) (service.Course, error)
	InstructorCourseAnalyticsFunc func(ctx context.Context, instructorID int64) (service.InstructorCourseAnalytics, error)
}

func (m *MockCourseService) SubmitCourse(ctx context.Context, owner service.Instructor, req service.CourseRequest) (service.Course, error) {
	if m.SubmitCourseFunc != nil {
		return m.SubmitCourseFunc(ctx, owner, req)
	}
	return service.Course{}, errors.New("SubmitCourseFunc not implemented")
}

func (m *MockCourseService) ListInstructorCourses(ctx context.Context, instructorID int64) ([]service.Course, error) {
	if m.ListInstructorCoursesFunc != nil {
		return m.ListInstructorCoursesFunc(ctx, instructorID)
	}
	return nil, errors.New("ListInstructorCoursesFunc not implemented")
}

func (m *MockCourseService) UpdateCourse(ctx context.Context, instructorID, courseID int64, req service.CourseRequest) (service.Course, error) {
	if m.UpdateCourseFunc != nil {
		return m.UpdateCourseFunc(ctx, instructorID, courseID, req)
	}
	return service.Course{}, errors.New("UpdateCourseFunc not implemented")
}

func (m *MockCourseService) DeleteCourse(ctx context.Context, instructorID, courseID int64) error {
	if m.DeleteCourseFunc != nil {
		return m.DeleteCourseFunc(ctx, instructorID, courseID)
	}
	return errors.New("DeleteCourseFunc not implemented")
}

func (m *MockCourseService) ListCourses(ctx context.Context, status string) ([]service.Course, error) {
	if m.ListCoursesFunc != nil {
		return m.ListCoursesFunc(ctx, status)
	}
	return nil, errors.New("ListCoursesFunc not implemented")
}

func (m *MockCourseService) ListApprovedCourses(ctx context.Context) ([]service.Course, error) {
	if m.ListApprovedCoursesFunc != nil {
		return m.ListApprovedCoursesFunc(ctx)
	}
	return nil, errors.New("ListApprovedCoursesFunc not implemented")
}

func (m *MockCourseService) SetCourseStatus(ctx context.Context, courseID int64, status string) (service.Course, error) {
	if m.SetCourseStatusFunc != nil {
		return m.SetCourseStatusFunc(ctx, courseID, status)
	}
	return service.Course{}, errors.New("SetCourseStatusFunc not implemented")
}

func (m *MockCourseService) InstructorCourseAnalytics(ctx context.Context, instructorID int64) (service.InstructorCourseAnalytics, error) {
	if m.InstructorCourseAnalyticsFunc != nil {
		return m.InstructorCourseAnalyticsFunc(ctx, instructorID)
	}
	return service.InstructorCourseAnalytics{}, errors.New("InstructorCourseAnalyticsFunc not implemented")
}
