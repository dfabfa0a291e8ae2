package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/godilite/eduinsight-server/internal/repository/models"
)

// FeedbackRepository persists submissions and the question bank.
type FeedbackRepository struct {
	db *sql.DB
	sqlBuilder
}

func NewFeedbackRepository(db *sql.DB, driver string) *FeedbackRepository {
	return &FeedbackRepository{db: db, sqlBuilder: newSQLBuilder(driver)}
}

// InsertSubmission writes every rating row and then the comment row in one
// transaction. Readers never observe a partial submission.
func (r *FeedbackRepository) InsertSubmission(ctx context.Context, sub models.Submission) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		for i, rt := range sub.Ratings {
			ds := r.dialect.Insert("feedback_responses").Rows(goqu.Record{
				"student_id":      sub.StudentID,
				"course_id":       sub.CourseID,
				"instructor_name": sub.InstructorName,
				"question_id":     rt.QuestionID,
				"rating":          rt.Rating,
			}).Prepared(true)
			if _, err := r.exec(ctx, tx, fmt.Sprintf("insert rating %d", i+1), ds); err != nil {
				return err
			}
		}

		ds := r.dialect.Insert("feedback_comments").Rows(goqu.Record{
			"student_id":         sub.StudentID,
			"course_id":          sub.CourseID,
			"instructor_name":    sub.InstructorName,
			"course_comment":     sub.CourseComment,
			"instructor_comment": sub.InstructorComment,
		}).Prepared(true)
		_, err := r.exec(ctx, tx, "insert comment", ds)
		return err
	})
}

// AddQuestion stores a new active question and returns it with its id.
func (r *FeedbackRepository) AddQuestion(ctx context.Context, section models.Section, text string) (models.Question, error) {
	ds := r.dialect.Insert("feedback_questions").Rows(goqu.Record{
		"section":       string(section),
		"question_text": text,
		"active":        true,
	})
	id, err := r.insertReturningID(ctx, r.db, ds, "question_id")
	if err != nil {
		return models.Question{}, fmt.Errorf("insert question: %w", err)
	}
	return models.Question{ID: id, Section: section, Text: text, Active: true}, nil
}

// ListQuestions returns the active questions of a section in id order.
func (r *FeedbackRepository) ListQuestions(ctx context.Context, section models.Section) ([]models.Question, error) {
	query, args, err := r.dialect.
		From("feedback_questions").
		Select("question_id", "section", "question_text", "active").
		Where(goqu.C("section").Eq(string(section)), goqu.C("active").IsTrue()).
		Order(goqu.C("question_id").Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build ListQuestions: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query ListQuestions: %w", err)
	}
	defer rows.Close()

	out := make([]models.Question, 0)
	for rows.Next() {
		var q models.Question
		var sec string
		if err := rows.Scan(&q.ID, &sec, &q.Text, &q.Active); err != nil {
			return nil, fmt.Errorf("scan ListQuestions row: %w", err)
		}
		q.Section = models.Section(sec)
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ListQuestions: %w", err)
	}
	return out, nil
}

// DeleteQuestion removes a question together with every rating given
// against it, in one transaction.
func (r *FeedbackRepository) DeleteQuestion(ctx context.Context, id int64) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		responses := r.dialect.Delete("feedback_responses").
			Where(goqu.C("question_id").Eq(id)).Prepared(true)
		if _, err := r.exec(ctx, tx, "delete responses", responses); err != nil {
			return err
		}

		question := r.dialect.Delete("feedback_questions").
			Where(goqu.C("question_id").Eq(id)).Prepared(true)
		res, err := r.exec(ctx, tx, "delete question", question)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("question %d: %w", id, ErrNotFound)
		}
		return nil
	})
}

func (r *FeedbackRepository) submissionRows() *goqu.SelectDataset {
	return r.dialect.
		From(goqu.T("feedback_responses").As("f")).
		Join(goqu.T("courses").As("c"),
			goqu.On(goqu.I("f.course_id").Eq(goqu.I("c.course_id")))).
		Join(goqu.T("feedback_questions").As("fq"),
			goqu.On(goqu.I("f.question_id").Eq(goqu.I("fq.question_id")))).
		Select(
			goqu.I("f.response_id"),
			goqu.I("f.student_id"),
			goqu.I("f.course_id"),
			goqu.I("c.course_name"),
			goqu.I("f.instructor_name"),
			goqu.I("fq.question_text"),
			goqu.I("f.rating"),
			goqu.I("f.created_at"),
		).
		Order(goqu.I("f.created_at").Desc(), goqu.I("f.response_id").Desc())
}

func (r *FeedbackRepository) scanSubmissions(ctx context.Context, op string, ds *goqu.SelectDataset) ([]models.SubmissionRow, error) {
	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", op, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", op, err)
	}
	defer rows.Close()

	out := make([]models.SubmissionRow, 0)
	for rows.Next() {
		var s models.SubmissionRow
		if err := rows.Scan(&s.ResponseID, &s.StudentID, &s.CourseID, &s.CourseName,
			&s.InstructorName, &s.QuestionText, &s.Rating, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", op, err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", op, err)
	}
	return out, nil
}

// ListSubmissions pages through every rating row, newest first, and reports
// the total number of rows.
func (r *FeedbackRepository) ListSubmissions(ctx context.Context, limit, offset int) ([]models.SubmissionRow, int64, error) {
	rows, err := r.scanSubmissions(ctx, "ListSubmissions",
		r.submissionRows().Limit(uint(limit)).Offset(uint(offset)))
	if err != nil {
		return nil, 0, err
	}

	query, args, err := r.dialect.From("feedback_responses").
		Select(goqu.COUNT(goqu.Star())).Prepared(true).ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build count: %w", err)
	}
	var total int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count submissions: %w", err)
	}
	return rows, total, nil
}

// ListStudentSubmissions returns one student's rating rows, newest first.
func (r *FeedbackRepository) ListStudentSubmissions(ctx context.Context, studentID int64) ([]models.SubmissionRow, error) {
	return r.scanSubmissions(ctx, "ListStudentSubmissions",
		r.submissionRows().Where(goqu.I("f.student_id").Eq(studentID)))
}

// Ping checks that the store is reachable.
func (r *FeedbackRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
