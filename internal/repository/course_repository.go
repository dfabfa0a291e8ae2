package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/godilite/eduinsight-server/internal/repository/models"
)

// CourseRepository owns the course catalogue and its approval state.
type CourseRepository struct {
	db *sql.DB
	sqlBuilder
}

func NewCourseRepository(db *sql.DB, driver string) *CourseRepository {
	return &CourseRepository{db: db, sqlBuilder: newSQLBuilder(driver)}
}

func (r *CourseRepository) columns() *goqu.SelectDataset {
	return r.dialect.From("courses").Select(
		"course_id", "course_name", "instructor_id", "instructor_name",
		"department", "semester", "status",
	)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCourse(row rowScanner) (models.Course, error) {
	var (
		c          models.Course
		owner      sql.NullInt64
		dept, sem  sql.NullString
		statusText string
	)
	if err := row.Scan(&c.ID, &c.Name, &owner, &c.InstructorName, &dept, &sem, &statusText); err != nil {
		return models.Course{}, err
	}
	c.InstructorID = nullableInt64(owner)
	c.Department = nullableString(dept)
	c.Semester = nullableString(sem)
	c.Status = models.CourseStatus(statusText)
	return c, nil
}

// Create inserts a course. An empty status is stored as Pending.
func (r *CourseRepository) Create(ctx context.Context, c models.Course) (models.Course, error) {
	if c.Status == "" {
		c.Status = models.CoursePending
	}
	ds := r.dialect.Insert("courses").Rows(goqu.Record{
		"course_name":     c.Name,
		"instructor_id":   toNullInt64(c.InstructorID),
		"instructor_name": c.InstructorName,
		"department":      toNullString(c.Department),
		"semester":        toNullString(c.Semester),
		"status":          string(c.Status),
	})
	id, err := r.insertReturningID(ctx, r.db, ds, "course_id")
	if err != nil {
		return models.Course{}, fmt.Errorf("insert course: %w", err)
	}
	c.ID = id
	return c, nil
}

func (r *CourseRepository) Get(ctx context.Context, id int64) (models.Course, error) {
	return r.get(ctx, r.db, id)
}

func (r *CourseRepository) get(ctx context.Context, q queryer, id int64) (models.Course, error) {
	query, args, err := r.columns().Where(goqu.C("course_id").Eq(id)).Prepared(true).ToSQL()
	if err != nil {
		return models.Course{}, fmt.Errorf("build get course: %w", err)
	}
	c, err := scanCourse(q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Course{}, fmt.Errorf("course %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.Course{}, fmt.Errorf("get course %d: %w", id, err)
	}
	return c, nil
}

// List returns courses matching filter, newest first unless the filter asks
// for name order.
func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, error) {
	ds := r.columns()
	if filter.Status != "" {
		ds = ds.Where(goqu.C("status").Eq(string(filter.Status)))
	}
	if filter.InstructorID != nil {
		ds = ds.Where(goqu.C("instructor_id").Eq(*filter.InstructorID))
	}
	if filter.OrderByName {
		ds = ds.Order(goqu.C("course_name").Asc(), goqu.C("course_id").Asc())
	} else {
		ds = ds.Order(goqu.C("course_id").Desc())
	}

	out := make([]models.Course, 0)
	err := queryEach(ctx, r.db, "ListCourses", ds, func(rows *sql.Rows) error {
		c, err := scanCourse(rows)
		if err != nil {
			return err
		}
		out = append(out, c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Update rewrites the editable fields of a course and its status in one
// statement, then reads the row back.
func (r *CourseRepository) Update(ctx context.Context, c models.Course) (models.Course, error) {
	var updated models.Course
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		ds := r.dialect.Update("courses").Set(goqu.Record{
			"course_name": c.Name,
			"department":  toNullString(c.Department),
			"semester":    toNullString(c.Semester),
			"status":      string(c.Status),
		}).Where(goqu.C("course_id").Eq(c.ID)).Prepared(true)
		if err := r.mustAffect(ctx, tx, "update course", c.ID, ds); err != nil {
			return err
		}
		var err error
		updated, err = r.get(ctx, tx, c.ID)
		return err
	})
	return updated, err
}

// SetStatus moves a course to status and returns the stored row.
func (r *CourseRepository) SetStatus(ctx context.Context, id int64, status models.CourseStatus) (models.Course, error) {
	var updated models.Course
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		ds := r.dialect.Update("courses").
			Set(goqu.Record{"status": string(status)}).
			Where(goqu.C("course_id").Eq(id)).Prepared(true)
		if err := r.mustAffect(ctx, tx, "update course status", id, ds); err != nil {
			return err
		}
		var err error
		updated, err = r.get(ctx, tx, id)
		return err
	})
	return updated, err
}

// Delete removes a course with its ratings and comments. The rows are
// deleted explicitly since sqlite only cascades with foreign keys enabled.
func (r *CourseRepository) Delete(ctx context.Context, id int64) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, table := range []string{"feedback_responses", "feedback_comments"} {
			ds := r.dialect.Delete(table).Where(goqu.C("course_id").Eq(id)).Prepared(true)
			if _, err := r.exec(ctx, tx, "delete "+table, ds); err != nil {
				return err
			}
		}
		ds := r.dialect.Delete("courses").Where(goqu.C("course_id").Eq(id)).Prepared(true)
		return r.mustAffect(ctx, tx, "delete course", id, ds)
	})
}

func (r *CourseRepository) mustAffect(ctx context.Context, q queryer, op string, id int64, ds sqlRenderer) error {
	res, err := r.exec(ctx, q, op, ds)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("course %d: %w", id, ErrNotFound)
	}
	return nil
}

// RatingCounts tallies every rating given to the listed courses, across
// both sections, grouped by course and rating value.
func (r *CourseRepository) RatingCounts(ctx context.Context, courseIDs []int64) ([]models.RatingCount, error) {
	out := make([]models.RatingCount, 0)
	if len(courseIDs) == 0 {
		return out, nil
	}
	ids := make([]any, len(courseIDs))
	for i, id := range courseIDs {
		ids[i] = id
	}
	ds := r.dialect.From("feedback_responses").
		Select(goqu.C("course_id"), goqu.C("rating"), goqu.COUNT("*").As("n")).
		Where(goqu.C("course_id").In(ids...)).
		GroupBy(goqu.C("course_id"), goqu.C("rating")).
		Order(goqu.C("course_id").Asc(), goqu.C("rating").Desc())

	err := queryEach(ctx, r.db, "RatingCounts", ds, func(rows *sql.Rows) error {
		var rc models.RatingCount
		if err := rows.Scan(&rc.CourseID, &rc.Rating, &rc.Count); err != nil {
			return err
		}
		out = append(out, rc)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
