package httpapi

import (
	"context"

	"github.com/godilite/eduinsight-server/internal/auth"
	"github.com/godilite/eduinsight-server/internal/service"
)

type AnalyticsService interface {
	GetCourseAnalytics(ctx context.Context) ([]service.CourseSummary, error)
	GetInstructorAnalytics(ctx context.Context) ([]service.InstructorSummary, error)
	GetComparisonAnalytics(ctx context.Context) ([]service.ComparisonRow, error)
	GetDepartmentAnalytics(ctx context.Context) ([]service.DepartmentSummary, error)
	GetTrendAnalytics(ctx context.Context) ([]service.SemesterTrendPoint, error)
	GetForecastSummary(ctx context.Context) (*service.ForecastSummary, error)
	GetDashboard(ctx context.Context) (service.Dashboard, error)
}

type FeedbackService interface {
	SubmitFeedback(ctx context.Context, req service.SubmissionRequest) error
	AddQuestion(ctx context.Context, section, text string) (service.Question, error)
	ListQuestions(ctx context.Context, section string) ([]service.Question, error)
	DeleteQuestion(ctx context.Context, id int64) error
	ListSubmissions(ctx context.Context, limit, offset int) (service.SubmissionPage, error)
	ListStudentSubmissions(ctx context.Context, studentID int64) ([]service.Submission, error)
}

type CourseService interface {
	SubmitCourse(ctx context.Context, owner service.Instructor, req service.CourseRequest) (service.Course, error)
	ListInstructorCourses(ctx context.Context, instructorID int64) ([]service.Course, error)
	UpdateCourse(ctx context.Context, instructorID, courseID int64, req service.CourseRequest) (service.Course, error)
	DeleteCourse(ctx context.Context, instructorID, courseID int64) error
	ListCourses(ctx context.Context, status string) ([]service.Course, error)
	ListApprovedCourses(ctx context.Context) ([]service.Course, error)
	SetCourseStatus(ctx context.Context, courseID int64, status string) (service.Course, error)
	InstructorCourseAnalytics(ctx context.Context, instructorID int64) (service.InstructorCourseAnalytics, error)
}

// TokenVerifier authenticates bearer tokens.
type TokenVerifier interface {
	Verify(raw string) (*auth.Claims, error)
}

// Pinger reports whether the store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}
