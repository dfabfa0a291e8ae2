package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/godilite/eduinsight-server/internal/repository"
	"github.com/godilite/eduinsight-server/internal/repository/models"
	"github.com/godilite/eduinsight-server/internal/service/mocks"
)

func validRequest() SubmissionRequest {
	return SubmissionRequest{
		StudentID:      7,
		CourseID:       3,
		InstructorName: "Dr. Ada",
		Ratings: []RatingInput{
			{QuestionID: 1, Rating: 5},
			{QuestionID: 2, Rating: 4},
		},
		CourseComment: "well paced",
	}
}

func TestNewFeedbackService(t *testing.T) {
	assert.Panics(t, func() { NewFeedbackService(nil, nil, zap.NewNop()) })

	svc := NewFeedbackService(&mocks.MockFeedbackRepository{}, nil, nil)
	assert.NotNil(t, svc.logger)
	assert.NotNil(t, svc.validate)
}

func TestSubmitFeedback_Success(t *testing.T) {
	var stored models.Submission
	repo := &mocks.MockFeedbackRepository{
		InsertSubmissionFunc: func(ctx context.Context, sub models.Submission) error {
			stored = sub
			return nil
		},
	}
	inv := &mocks.MockInvalidator{}
	svc := NewFeedbackService(repo, inv, zap.NewNop())

	req := validRequest()
	req.InstructorName = "  Dr. Ada "
	require.NoError(t, svc.SubmitFeedback(context.Background(), req))

	assert.Equal(t, []string{"InsertSubmission"}, repo.Calls)
	assert.Equal(t, 1, inv.Count)
	assert.Equal(t, "Dr. Ada", stored.InstructorName)
	assert.Equal(t, []models.QuestionRating{{QuestionID: 1, Rating: 5}, {QuestionID: 2, Rating: 4}}, stored.Ratings)
	assert.Equal(t, "well paced", stored.CourseComment)
}

func TestSubmitFeedback_RejectsBeforeWriting(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(r *SubmissionRequest)
	}{
		{"missing student", func(r *SubmissionRequest) { r.StudentID = 0 }},
		{"negative course", func(r *SubmissionRequest) { r.CourseID = -1 }},
		{"blank instructor", func(r *SubmissionRequest) { r.InstructorName = "   " }},
		{"no ratings", func(r *SubmissionRequest) { r.Ratings = nil }},
		{"rating above five", func(r *SubmissionRequest) { r.Ratings[1].Rating = 6 }},
		{"rating below one", func(r *SubmissionRequest) { r.Ratings[0].Rating = 0 }},
		{"missing question id", func(r *SubmissionRequest) { r.Ratings[0].QuestionID = 0 }},
		{"oversized comment", func(r *SubmissionRequest) { r.InstructorComment = strings.Repeat("x", 5001) }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &mocks.MockFeedbackRepository{}
			inv := &mocks.MockInvalidator{}
			svc := NewFeedbackService(repo, inv, zap.NewNop())

			req := validRequest()
			tc.mutate(&req)

			err := svc.SubmitFeedback(context.Background(), req)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Empty(t, repo.Calls, "nothing may be written for an invalid submission")
			assert.Zero(t, inv.Count)
		})
	}
}

func TestSubmitFeedback_StorageFailure(t *testing.T) {
	repo := &mocks.MockFeedbackRepository{
		InsertSubmissionFunc: func(ctx context.Context, sub models.Submission) error {
			return errors.New("FOREIGN KEY constraint failed")
		},
	}
	inv := &mocks.MockInvalidator{}
	svc := NewFeedbackService(repo, inv, zap.NewNop())

	err := svc.SubmitFeedback(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrStorageFailure)
	assert.Contains(t, err.Error(), "FOREIGN KEY")
	assert.Zero(t, inv.Count, "failed writes must not invalidate")
}

func TestSubmitFeedback_InvalidationFailureIsNotFatal(t *testing.T) {
	repo := &mocks.MockFeedbackRepository{
		InsertSubmissionFunc: func(ctx context.Context, sub models.Submission) error { return nil },
	}
	inv := &mocks.MockInvalidator{
		InvalidateFunc: func(ctx context.Context) error { return errors.New("redis down") },
	}
	svc := NewFeedbackService(repo, inv, zap.NewNop())

	assert.NoError(t, svc.SubmitFeedback(context.Background(), validRequest()))
	assert.Equal(t, 1, inv.Count)
}

func TestAddQuestion(t *testing.T) {
	t.Run("normalises section", func(t *testing.T) {
		repo := &mocks.MockFeedbackRepository{
			AddQuestionFunc: func(ctx context.Context, section models.Section, text string) (models.Question, error) {
				assert.Equal(t, models.SectionInstructor, section)
				assert.Equal(t, "Was feedback timely?", text)
				return models.Question{ID: 4, Section: section, Text: text, Active: true}, nil
			},
		}
		svc := NewFeedbackService(repo, nil, zap.NewNop())

		q, err := svc.AddQuestion(context.Background(), " Instructor ", " Was feedback timely? ")
		require.NoError(t, err)
		assert.Equal(t, Question{QuestionID: 4, Section: "instructor", QuestionText: "Was feedback timely?", Active: true}, q)
	})

	t.Run("unknown section", func(t *testing.T) {
		repo := &mocks.MockFeedbackRepository{}
		svc := NewFeedbackService(repo, nil, zap.NewNop())

		_, err := svc.AddQuestion(context.Background(), "facilities", "Was the room warm?")
		assert.ErrorIs(t, err, ErrInvalidSection)
		assert.Empty(t, repo.Calls)
	})

	t.Run("empty text", func(t *testing.T) {
		repo := &mocks.MockFeedbackRepository{}
		svc := NewFeedbackService(repo, nil, zap.NewNop())

		_, err := svc.AddQuestion(context.Background(), "course", "  ")
		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.Empty(t, repo.Calls)
	})
}

func TestListQuestions(t *testing.T) {
	repo := &mocks.MockFeedbackRepository{
		ListQuestionsFunc: func(ctx context.Context, section models.Section) ([]models.Question, error) {
			return []models.Question{
				{ID: 1, Section: section, Text: "Content was clear", Active: true},
				{ID: 2, Section: section, Text: "Workload was fair", Active: true},
			}, nil
		},
	}
	svc := NewFeedbackService(repo, nil, zap.NewNop())

	qs, err := svc.ListQuestions(context.Background(), "course")
	require.NoError(t, err)
	require.Len(t, qs, 2)
	assert.Equal(t, "course", qs[0].Section)

	_, err = svc.ListQuestions(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidSection)
}

func TestDeleteQuestion(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		repo := &mocks.MockFeedbackRepository{
			DeleteQuestionFunc: func(ctx context.Context, id int64) error { return nil },
		}
		inv := &mocks.MockInvalidator{}
		svc := NewFeedbackService(repo, inv, zap.NewNop())

		require.NoError(t, svc.DeleteQuestion(context.Background(), 3))
		assert.Equal(t, 1, inv.Count)
	})

	t.Run("not found", func(t *testing.T) {
		repo := &mocks.MockFeedbackRepository{
			DeleteQuestionFunc: func(ctx context.Context, id int64) error {
				return fmt.Errorf("delete question %d: %w", id, repository.ErrNotFound)
			},
		}
		inv := &mocks.MockInvalidator{}
		svc := NewFeedbackService(repo, inv, zap.NewNop())

		err := svc.DeleteQuestion(context.Background(), 99)
		assert.ErrorIs(t, err, ErrQuestionNotFound)
		assert.Zero(t, inv.Count)
	})

	t.Run("invalid id", func(t *testing.T) {
		repo := &mocks.MockFeedbackRepository{}
		svc := NewFeedbackService(repo, nil, zap.NewNop())

		assert.ErrorIs(t, svc.DeleteQuestion(context.Background(), 0), ErrInvalidInput)
		assert.Empty(t, repo.Calls)
	})
}

func TestListSubmissions_Paging(t *testing.T) {
	created := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	cases := []struct {
		name                  string
		limit, offset         int
		wantLimit, wantOffset int
	}{
		{"defaults", 0, 0, defaultPageLimit, 0},
		{"negative offset", 10, -5, 10, 0},
		{"capped limit", 10_000, 20, maxPageLimit, 20},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &mocks.MockFeedbackRepository{
				ListSubmissionsFunc: func(ctx context.Context, limit, offset int) ([]models.SubmissionRow, int64, error) {
					assert.Equal(t, tc.wantLimit, limit)
					assert.Equal(t, tc.wantOffset, offset)
					return []models.SubmissionRow{{ResponseID: 1, StudentID: 7, Rating: 4, CreatedAt: created}}, 42, nil
				},
			}
			svc := NewFeedbackService(repo, nil, zap.NewNop())

			page, err := svc.ListSubmissions(context.Background(), tc.limit, tc.offset)
			require.NoError(t, err)
			assert.Equal(t, int64(42), page.Total)
			assert.Equal(t, tc.wantLimit, page.Limit)
			require.Len(t, page.Rows, 1)
			assert.Equal(t, created, page.Rows[0].CreatedAt)
		})
	}
}

func TestListStudentSubmissions(t *testing.T) {
	repo := &mocks.MockFeedbackRepository{
		ListStudentSubmissionsFunc: func(ctx context.Context, studentID int64) ([]models.SubmissionRow, error) {
			assert.Equal(t, int64(7), studentID)
			return []models.SubmissionRow{{ResponseID: 3, StudentID: 7}, {ResponseID: 2, StudentID: 7}}, nil
		},
	}
	svc := NewFeedbackService(repo, nil, zap.NewNop())

	rows, err := svc.ListStudentSubmissions(context.Background(), 7)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	_, err = svc.ListStudentSubmissions(context.Background(), -1)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
