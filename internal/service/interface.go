package service

import (
	"context"

	"github.com/godilite/eduinsight-server/internal/repository/models"
)

// AnalyticsRepository defines the grouped reads the aggregator depends on.
type AnalyticsRepository interface {
	CourseRatings(ctx context.Context) ([]models.CourseRatingRow, error)
	InstructorRatings(ctx context.Context) ([]models.InstructorRatingRow, error)
	InstructorRatingsByCourse(ctx context.Context) ([]models.CourseInstructorRatingRow, error)
	DepartmentRatings(ctx context.Context) ([]models.DepartmentRatingRow, error)
	SemesterRatings(ctx context.Context) ([]models.SemesterRatingRow, error)
}

// FeedbackRepository defines the writes and listings of the feedback workflow.
type FeedbackRepository interface {
	InsertSubmission(ctx context.Context, sub models.Submission) error
	AddQuestion(ctx context.Context, section models.Section, text string) (models.Question, error)
	ListQuestions(ctx context.Context, section models.Section) ([]models.Question, error)
	DeleteQuestion(ctx context.Context, id int64) error
	ListSubmissions(ctx context.Context, limit, offset int) ([]models.SubmissionRow, int64, error)
	ListStudentSubmissions(ctx context.Context, studentID int64) ([]models.SubmissionRow, error)
}

// CourseRepository defines the catalogue and approval-state storage.
type CourseRepository interface {
	Create(ctx context.Context, c models.Course) (models.Course, error)
	Get(ctx context.Context, id int64) (models.Course, error)
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, error)
	Update(ctx context.Context, c models.Course) (models.Course, error)
	SetStatus(ctx context.Context, id int64, status models.CourseStatus) (models.Course, error)
	Delete(ctx context.Context, id int64) error
	RatingCounts(ctx context.Context, courseIDs []int64) ([]models.RatingCount, error)
}

// Invalidator is told whenever committed feedback changes what the
// aggregates would return.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// AnalyticsReader is the read surface shared by AnalyticsService and
// CachedAnalytics.
type AnalyticsReader interface {
	GetCourseAnalytics(ctx context.Context) ([]CourseSummary, error)
	GetInstructorAnalytics(ctx context.Context) ([]InstructorSummary, error)
	GetComparisonAnalytics(ctx context.Context) ([]ComparisonRow, error)
	GetDepartmentAnalytics(ctx context.Context) ([]DepartmentSummary, error)
	GetTrendAnalytics(ctx context.Context) ([]SemesterTrendPoint, error)
	GetForecastSummary(ctx context.Context) (*ForecastSummary, error)
	GetDashboard(ctx context.Context) (Dashboard, error)
}
