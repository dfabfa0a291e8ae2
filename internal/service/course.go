package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/godilite/eduinsight-server/internal/repository"
	"github.com/godilite/eduinsight-server/internal/repository/models"
)

var (
	ErrCourseNotFound = errors.New("course not found")
	ErrNotCourseOwner = errors.New("course belongs to another instructor")
	ErrInvalidStatus  = errors.New("status must be Approved or Rejected")
)

// CourseService runs the course approval workflow. Instructors submit and
// edit their own courses, which then wait as Pending until an admin
// approves or rejects them.
type CourseService struct {
	storage     CourseRepository
	invalidator Invalidator
	validate    *validator.Validate
	logger      *zap.Logger
}

// NewCourseService creates a CourseService. invalidator may be nil.
func NewCourseService(storage CourseRepository, invalidator Invalidator, logger *zap.Logger) *CourseService {
	if storage == nil {
		panic("storage must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{
		storage:     storage,
		invalidator: invalidator,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		logger:      logger.Named("courses"),
	}
}

func (s *CourseService) invalidate(ctx context.Context, reason string) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.Invalidate(ctx); err != nil {
		s.logger.Warn("analytics invalidation failed", zap.String("reason", reason), zap.Error(err))
	}
}

func toCourse(c models.Course) Course {
	return Course{
		CourseID:       c.ID,
		CourseName:     c.Name,
		InstructorID:   c.InstructorID,
		InstructorName: c.InstructorName,
		Department:     c.Department,
		Semester:       c.Semester,
		Status:         string(c.Status),
	}
}

func toCourses(cs []models.Course) []Course {
	out := make([]Course, len(cs))
	for i, c := range cs {
		out[i] = toCourse(c)
	}
	return out
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func (s *CourseService) checkRequest(req *CourseRequest) error {
	req.CourseName = strings.TrimSpace(req.CourseName)
	req.Department = trimOptional(req.Department)
	req.Semester = trimOptional(req.Semester)
	if err := s.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidInput, describeValidation(err))
	}
	return nil
}

// parseStatus accepts any casing of a known status.
func parseStatus(status string) (models.CourseStatus, bool) {
	for _, known := range []models.CourseStatus{models.CoursePending, models.CourseApproved, models.CourseRejected} {
		if strings.EqualFold(strings.TrimSpace(status), string(known)) {
			return known, true
		}
	}
	return "", false
}

func courseStorageErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrCourseNotFound
	}
	return fmt.Errorf("%w: %v", ErrStorageFailure, err)
}

// SubmitCourse records a new Pending course owned by the caller.
func (s *CourseService) SubmitCourse(ctx context.Context, owner Instructor, req CourseRequest) (Course, error) {
	if err := s.checkRequest(&req); err != nil {
		return Course{}, err
	}
	name := strings.TrimSpace(owner.Name)
	if name == "" {
		return Course{}, fmt.Errorf("%w: instructor name is missing from the token", ErrInvalidInput)
	}

	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	created, err := s.storage.Create(dbCtx, models.Course{
		Name:           req.CourseName,
		InstructorID:   &owner.ID,
		InstructorName: name,
		Department:     req.Department,
		Semester:       req.Semester,
		Status:         models.CoursePending,
	})
	if err != nil {
		return Course{}, courseStorageErr(err)
	}
	s.logger.Info("course submitted",
		zap.Int64("course_id", created.ID),
		zap.Int64("instructor_id", owner.ID))
	return toCourse(created), nil
}

// ListInstructorCourses returns every course the instructor owns, newest first.
func (s *CourseService) ListInstructorCourses(ctx context.Context, instructorID int64) ([]Course, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	cs, err := s.storage.List(dbCtx, models.CourseFilter{InstructorID: &instructorID})
	if err != nil {
		return nil, courseStorageErr(err)
	}
	return toCourses(cs), nil
}

// owned loads a course and checks that instructorID owns it.
func (s *CourseService) owned(ctx context.Context, instructorID, courseID int64) (models.Course, error) {
	if courseID <= 0 {
		return models.Course{}, fmt.Errorf("%w: course id must be positive", ErrInvalidInput)
	}
	c, err := s.storage.Get(ctx, courseID)
	if err != nil {
		return models.Course{}, courseStorageErr(err)
	}
	if c.InstructorID == nil || *c.InstructorID != instructorID {
		return models.Course{}, ErrNotCourseOwner
	}
	return c, nil
}

// UpdateCourse edits an owned course and sends it back to Pending.
func (s *CourseService) UpdateCourse(ctx context.Context, instructorID, courseID int64, req CourseRequest) (Course, error) {
	if err := s.checkRequest(&req); err != nil {
		return Course{}, err
	}

	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	c, err := s.owned(dbCtx, instructorID, courseID)
	if err != nil {
		return Course{}, err
	}
	c.Name = req.CourseName
	c.Department = req.Department
	c.Semester = req.Semester
	c.Status = models.CoursePending

	updated, err := s.storage.Update(dbCtx, c)
	if err != nil {
		return Course{}, courseStorageErr(err)
	}
	s.logger.Info("course updated", zap.Int64("course_id", courseID), zap.Int64("instructor_id", instructorID))
	s.invalidate(ctx, "course updated")
	return toCourse(updated), nil
}

// DeleteCourse removes an owned course with all of its feedback.
func (s *CourseService) DeleteCourse(ctx context.Context, instructorID, courseID int64) error {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	if _, err := s.owned(dbCtx, instructorID, courseID); err != nil {
		return err
	}
	if err := s.storage.Delete(dbCtx, courseID); err != nil {
		return courseStorageErr(err)
	}
	s.logger.Info("course deleted", zap.Int64("course_id", courseID), zap.Int64("instructor_id", instructorID))
	s.invalidate(ctx, "course deleted")
	return nil
}

// ListCourses returns all courses, or only those in status when it is set.
func (s *CourseService) ListCourses(ctx context.Context, status string) ([]Course, error) {
	var filter models.CourseFilter
	if strings.TrimSpace(status) != "" {
		st, ok := parseStatus(status)
		if !ok {
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
		}
		filter.Status = st
	}

	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	cs, err := s.storage.List(dbCtx, filter)
	if err != nil {
		return nil, courseStorageErr(err)
	}
	return toCourses(cs), nil
}

// ListApprovedCourses returns the courses students can rate, by name.
func (s *CourseService) ListApprovedCourses(ctx context.Context) ([]Course, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	cs, err := s.storage.List(dbCtx, models.CourseFilter{Status: models.CourseApproved, OrderByName: true})
	if err != nil {
		return nil, courseStorageErr(err)
	}
	return toCourses(cs), nil
}

// SetCourseStatus records an admin decision. Only Approved and Rejected
// are decisions; Pending is reached by submitting or editing.
func (s *CourseService) SetCourseStatus(ctx context.Context, courseID int64, status string) (Course, error) {
	st, ok := parseStatus(status)
	if !ok || st == models.CoursePending {
		return Course{}, ErrInvalidStatus
	}
	if courseID <= 0 {
		return Course{}, fmt.Errorf("%w: course id must be positive", ErrInvalidInput)
	}

	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	c, err := s.storage.SetStatus(dbCtx, courseID, st)
	if err != nil {
		return Course{}, courseStorageErr(err)
	}
	s.logger.Info("course status changed", zap.Int64("course_id", courseID), zap.String("status", string(st)))
	return toCourse(c), nil
}

// InstructorCourseAnalytics reports every approved course the instructor
// owns, with the mean and distribution of all ratings given to it. Courses
// without feedback are listed with zero counts.
func (s *CourseService) InstructorCourseAnalytics(ctx context.Context, instructorID int64) (InstructorCourseAnalytics, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	cs, err := s.storage.List(dbCtx, models.CourseFilter{
		Status:       models.CourseApproved,
		InstructorID: &instructorID,
	})
	if err != nil {
		return InstructorCourseAnalytics{}, courseStorageErr(err)
	}

	ids := make([]int64, len(cs))
	for i, c := range cs {
		ids[i] = c.ID
	}
	counts, err := s.storage.RatingCounts(dbCtx, ids)
	if err != nil {
		return InstructorCourseAnalytics{}, courseStorageErr(err)
	}

	totals := make(map[int64]models.RatingTotals, len(cs))
	dist := make(map[int64]map[string]int64, len(cs))
	for _, c := range cs {
		dist[c.ID] = map[string]int64{"5": 0, "4": 0, "3": 0, "2": 0, "1": 0}
	}
	for _, rc := range counts {
		d, ok := dist[rc.CourseID]
		if !ok || rc.Rating < 1 || rc.Rating > 5 {
			continue
		}
		d[strconv.Itoa(rc.Rating)] += rc.Count
		t := totals[rc.CourseID]
		t.RatingSum += int64(rc.Rating) * rc.Count
		t.RatingCount += rc.Count
		totals[rc.CourseID] = t
	}

	out := InstructorCourseAnalytics{
		InstructorID: instructorID,
		TotalCourses: len(cs),
		Courses:      make([]CourseRatings, len(cs)),
	}
	for i, c := range cs {
		t := totals[c.ID]
		out.Courses[i] = CourseRatings{
			Course:             toCourse(c),
			AvgRating:          Average(t),
			FeedbackCount:      t.RatingCount,
			RatingDistribution: dist[c.ID],
		}
	}
	return out, nil
}
