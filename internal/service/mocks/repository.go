package mocks

import (
	"context"
	"errors"
	"time"

	"github.com/godilite/eduinsight-server/internal/repository/models"
)

// MockAnalyticsRepository is a mock implementation of the AnalyticsRepository
// interface for testing the service layer.
type MockAnalyticsRepository struct {
	CourseRatingsFunc             func(ctx context.Context) ([]models.CourseRatingRow, error)
	InstructorRatingsFunc         func(ctx context.Context) ([]models.InstructorRatingRow, error)
	InstructorRatingsByCourseFunc func(ctx context.Context) ([]models.CourseInstructorRatingRow, error)
	DepartmentRatingsFunc         func(ctx context.Context) ([]models.DepartmentRatingRow, error)
	SemesterRatingsFunc           func(ctx context.Context) ([]models.SemesterRatingRow, error)
}

func (m *MockAnalyticsRepository) CourseRatings(ctx context.Context) ([]models.CourseRatingRow, error) {
	if m.CourseRatingsFunc != nil {
		return m.CourseRatingsFunc(ctx)
	}
	return nil, errors.New("CourseRatingsFunc not implemented")
}

func (m *MockAnalyticsRepository) InstructorRatings(ctx context.Context) ([]models.InstructorRatingRow, error) {
	if m.InstructorRatingsFunc != nil {
		return m.InstructorRatingsFunc(ctx)
	}
	return nil, errors.New("InstructorRatingsFunc not implemented")
}

func (m *MockAnalyticsRepository) InstructorRatingsByCourse(ctx context.Context) ([]models.CourseInstructorRatingRow, error) {
	if m.InstructorRatingsByCourseFunc != nil {
		return m.InstructorRatingsByCourseFunc(ctx)
	}
	return nil, errors.New("InstructorRatingsByCourseFunc not implemented")
}

func (m *MockAnalyticsRepository) DepartmentRatings(ctx context.Context) ([]models.DepartmentRatingRow, error) {
	if m.DepartmentRatingsFunc != nil {
		return m.DepartmentRatingsFunc(ctx)
	}
	return nil, errors.New("DepartmentRatingsFunc not implemented")
}

func (m *MockAnalyticsRepository) SemesterRatings(ctx context.Context) ([]models.SemesterRatingRow, error) {
	if m.SemesterRatingsFunc != nil {
		return m.SemesterRatingsFunc(ctx)
	}
	return nil, errors.New("SemesterRatingsFunc not implemented")
}

// MockFeedbackRepository is a mock implementation of the FeedbackRepository
// interface. Calls records the name of every method invoked.
type MockFeedbackRepository struct {
	InsertSubmissionFunc       func(ctx context.Context, sub models.Submission) error
	AddQuestionFunc            func(ctx context.Context, section models.Section, text string) (models.Question, error)
	ListQuestionsFunc          func(ctx context.Context, section models.Section) ([]models.Question, error)
	DeleteQuestionFunc         func(ctx context.Context, id int64) error
	ListSubmissionsFunc        func(ctx context.Context, limit, offset int) ([]models.SubmissionRow, int64, error)
	ListStudentSubmissionsFunc func(ctx context.Context, studentID int64) ([]models.SubmissionRow, error)

	Calls []string
}

func (m *MockFeedbackRepository) InsertSubmission(ctx context.Context, sub models.Submission) error {
	m.Calls = append(m.Calls, "InsertSubmission")
	if m.InsertSubmissionFunc != nil {
		return m.InsertSubmissionFunc(ctx, sub)
	}
	return errors.New("InsertSubmissionFunc not implemented")
}

func (m *MockFeedbackRepository) AddQuestion(ctx context.Context, section models.Section, text string) (models.Question, error) {
	m.Calls = append(m.Calls, "AddQuestion")
	if m.AddQuestionFunc != nil {
		return m.AddQuestionFunc(ctx, section, text)
	}
	return models.Question{}, errors.New("AddQuestionFunc not implemented")
}

func (m *MockFeedbackRepository) ListQuestions(ctx context.Context, section models.Section) ([]models.Question, error) {
	m.Calls = append(m.Calls, "ListQuestions")
	if m.ListQuestionsFunc != nil {
		return m.ListQuestionsFunc(ctx, section)
	}
	return nil, errors.New("ListQuestionsFunc not implemented")
}

func (m *MockFeedbackRepository) DeleteQuestion(ctx context.Context, id int64) error {
	m.Calls = append(m.Calls, "DeleteQuestion")
	if m.DeleteQuestionFunc != nil {
		return m.DeleteQuestionFunc(ctx, id)
	}
	return errors.New("DeleteQuestionFunc not implemented")
}

func (m *MockFeedbackRepository) ListSubmissions(ctx context.Context, limit, offset int) ([]models.SubmissionRow, int64, error) {
	m.Calls = append(m.Calls, "ListSubmissions")
	if m.ListSubmissionsFunc != nil {
		return m.ListSubmissionsFunc(ctx, limit, offset)
	}
	return nil, 0, errors.New("ListSubmissionsFunc not implemented")
}

func (m *MockFeedbackRepository) ListStudentSubmissions(ctx context.Context, studentID int64) ([]models.SubmissionRow, error) {
	m.Calls = append(m.Calls, "ListStudentSubmissions")
	if m.ListStudentSubmissionsFunc != nil {
		return m.ListStudentSubmissionsFunc(ctx, studentID)
	}
	return nil, errors.New("ListStudentSubmissionsFunc not implemented")
}

// MockInvalidator counts invalidations.
type MockInvalidator struct {
	InvalidateFunc func(ctx context.Context) error
	Count          int
}

func (m *MockInvalidator) Invalidate(ctx context.Context) error {
	m.Count++
	if m.InvalidateFunc != nil {
		return m.InvalidateFunc(ctx)
	}
	return nil
}

// MockCacher is a function-based mock of the analytics cache.
type MockCacher struct {
	GetFunc        func(ctx context.Context, key string, dest any) error
	SetFunc        func(ctx context.Context, key string, value any, expiration time.Duration) error
	GenerationFunc func(ctx context.Context, key string) (int64, error)
	BumpFunc       func(ctx context.Context, key string) (int64, error)
}

func (m *MockCacher) Get(ctx context.Context, key string, dest any) error {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key, dest)
	}
	return errors.New("cache miss")
}

func (m *MockCacher) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, expiration)
	}
	return nil
}

func (m *MockCacher) Generation(ctx context.Context, key string) (int64, error) {
	if m.GenerationFunc != nil {
		return m.GenerationFunc(ctx, key)
	}
	return 0, nil
}

func (m *MockCacher) Bump(ctx context.Context, key string) (int64, error) {
	if m.BumpFunc != nil {
		return m.BumpFunc(ctx, key)
	}
	return 1, nil
}

// MockCourseRepository is a mock implementation of the CourseRepository
// interface.
type MockCourseRepository struct {
	CreateFunc       func(ctx context.Context, c models.Course) (models.Course, error)
	GetFunc          func(ctx context.Context, id int64) (models.Course, error)
	ListFunc         func(ctx context.Context, filter models.CourseFilter) ([]models.Course, error)
	UpdateFunc       func(ctx context.Context, c models.Course) (models.Course, error)
	SetStatusFunc    func(ctx context.Context, id int64, status models.CourseStatus) (models.Course, error)
	DeleteFunc       func(ctx context.Context, id int64) error
	RatingCountsFunc func(ctx context.Context, courseIDs []int64) ([]models.RatingCount, error)
}

func (m *MockCourseRepository) Create(ctx context.Context, c models.Course) (models.Course, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, c)
	}
	return models.Course{}, errors.New("CreateFunc not implemented")
}

func (m *MockCourseRepository) Get(ctx context.Context, id int64) (models.Course, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return models.Course{}, errors.New("GetFunc not implemented")
}

func (m *MockCourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return nil, errors.New("ListFunc not implemented")
}

func (m *MockCourseRepository) Update(ctx context.Context, c models.Course) (models.Course, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, c)
	}
	return models.Course{}, errors.New("UpdateFunc not implemented")
}

func (m *MockCourseRepository) SetStatus(ctx context.Context, id int64, status models.CourseStatus) (models.Course, error) {
	if m.SetStatusFunc != nil {
		return m.SetStatusFunc(ctx, id, status)
	}
	return models.Course{}, errors.New("SetStatusFunc not implemented")
}

func (m *MockCourseRepository) Delete(ctx context.Context, id int64) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return errors.New("DeleteFunc not implemented")
}

func (m *MockCourseRepository) RatingCounts(ctx context.Context, courseIDs []int64) ([]models.RatingCount, error) {
	if m.RatingCountsFunc != nil {
		return m.RatingCountsFunc(ctx, courseIDs)
	}
	return nil, errors.New("RatingCountsFunc not implemented")
}
