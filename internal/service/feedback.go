package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/godilite/eduinsight-server/internal/repository"
	"github.com/godilite/eduinsight-server/internal/repository/models"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 500
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidSection   = errors.New("section must be 'course' or 'instructor'")
	ErrQuestionNotFound = errors.New("question not found")
)

// FeedbackService validates and records student feedback and manages the
// question bank.
type FeedbackService struct {
	storage     FeedbackRepository
	invalidator Invalidator
	validate    *validator.Validate
	logger      *zap.Logger
}

// NewFeedbackService creates a FeedbackService. invalidator may be nil.
func NewFeedbackService(storage FeedbackRepository, invalidator Invalidator, logger *zap.Logger) *FeedbackService {
	if storage == nil {
		panic("storage must not be nil")
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}
	return &FeedbackService{
		storage:     storage,
		invalidator: invalidator,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		logger:      logger.Named("feedback"),
	}
}

func (s *FeedbackService) invalidate(ctx context.Context, reason string) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.Invalidate(ctx); err != nil {
		s.logger.Warn("analytics invalidation failed", zap.String("reason", reason), zap.Error(err))
	}
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}

// SubmitFeedback records a full submission atomically. Invalid requests are
// rejected before anything is written. Repeat submissions for the same
// student and course are accepted.
func (s *FeedbackService) SubmitFeedback(ctx context.Context, req SubmissionRequest) error {
	req.InstructorName = strings.TrimSpace(req.InstructorName)
	if err := s.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidInput, describeValidation(err))
	}

	sub := models.Submission{
		StudentID:         req.StudentID,
		CourseID:          req.CourseID,
		InstructorName:    req.InstructorName,
		Ratings:           make([]models.QuestionRating, len(req.Ratings)),
		CourseComment:     req.CourseComment,
		InstructorComment: req.InstructorComment,
	}
	for i, r := range req.Ratings {
		sub.Ratings[i] = models.QuestionRating{QuestionID: r.QuestionID, Rating: r.Rating}
	}

	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	if err := s.storage.InsertSubmission(dbCtx, sub); err != nil {
		s.logger.Error("feedback submission failed",
			zap.Int64("student_id", req.StudentID),
			zap.Int64("course_id", req.CourseID),
			zap.Error(err))
		return fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	s.logger.Info("feedback submitted",
		zap.Int64("student_id", req.StudentID),
		zap.Int64("course_id", req.CourseID),
		zap.Int("ratings", len(req.Ratings)))

	s.invalidate(ctx, "submission")
	return nil
}

func parseSection(section string) (models.Section, error) {
	sec := models.Section(strings.ToLower(strings.TrimSpace(section)))
	if !sec.Valid() {
		return "", ErrInvalidSection
	}
	return sec, nil
}

func toQuestion(q models.Question) Question {
	return Question{QuestionID: q.ID, Section: string(q.Section), QuestionText: q.Text, Active: q.Active}
}

// AddQuestion adds an active question to a section.
func (s *FeedbackService) AddQuestion(ctx context.Context, section, text string) (Question, error) {
	sec, err := parseSection(section)
	if err != nil {
		return Question{}, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Question{}, fmt.Errorf("%w: question text is required", ErrInvalidInput)
	}

	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	q, err := s.storage.AddQuestion(dbCtx, sec, text)
	if err != nil {
		return Question{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	s.logger.Info("question added", zap.Int64("question_id", q.ID), zap.String("section", string(sec)))
	return toQuestion(q), nil
}

// ListQuestions returns the active questions of a section.
func (s *FeedbackService) ListQuestions(ctx context.Context, section string) ([]Question, error) {
	sec, err := parseSection(section)
	if err != nil {
		return nil, err
	}

	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	qs, err := s.storage.ListQuestions(dbCtx, sec)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	out := make([]Question, len(qs))
	for i, q := range qs {
		out[i] = toQuestion(q)
	}
	return out, nil
}

// DeleteQuestion removes a question and every rating recorded against it.
func (s *FeedbackService) DeleteQuestion(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: question id must be positive", ErrInvalidInput)
	}

	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	if err := s.storage.DeleteQuestion(dbCtx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	s.logger.Info("question deleted", zap.Int64("question_id", id))
	s.invalidate(ctx, "question deleted")
	return nil
}

func toSubmissions(rows []models.SubmissionRow) []Submission {
	out := make([]Submission, len(rows))
	for i, r := range rows {
		out[i] = Submission{
			ResponseID:     r.ResponseID,
			StudentID:      r.StudentID,
			CourseID:       r.CourseID,
			CourseName:     r.CourseName,
			InstructorName: r.InstructorName,
			QuestionText:   r.QuestionText,
			Rating:         r.Rating,
			CreatedAt:      r.CreatedAt,
		}
	}
	return out
}

// ListSubmissions pages through all rating rows, newest first. A
// non-positive limit means the default page size.
func (s *FeedbackService) ListSubmissions(ctx context.Context, limit, offset int) (SubmissionPage, error) {
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if offset < 0 {
		offset = 0
	}

	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, total, err := s.storage.ListSubmissions(dbCtx, limit, offset)
	if err != nil {
		return SubmissionPage{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return SubmissionPage{Total: total, Limit: limit, Offset: offset, Rows: toSubmissions(rows)}, nil
}

// ListStudentSubmissions returns one student's rating rows, newest first.
func (s *FeedbackService) ListStudentSubmissions(ctx context.Context, studentID int64) ([]Submission, error) {
	if studentID <= 0 {
		return nil, fmt.Errorf("%w: student id must be positive", ErrInvalidInput)
	}

	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.storage.ListStudentSubmissions(dbCtx, studentID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return toSubmissions(rows), nil
}
