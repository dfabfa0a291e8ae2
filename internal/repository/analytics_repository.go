package repository

import (
	"context"
	"database/sql"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/godilite/eduinsight-server/internal/repository/models"
)

// AnalyticsRepository runs the grouped rating queries. It returns exact sums
// and counts; averaging and rounding happen in the service.
type AnalyticsRepository struct {
	db *sql.DB
	sqlBuilder
}

func NewAnalyticsRepository(db *sql.DB, driver string) *AnalyticsRepository {
	return &AnalyticsRepository{db: db, sqlBuilder: newSQLBuilder(driver)}
}

// ratings joins every response to its question and course. Inner joins drop
// orphans, so a group never comes back with a zero count.
func (r *AnalyticsRepository) ratings(sections ...models.Section) *goqu.SelectDataset {
	tags := make([]any, len(sections))
	for i, s := range sections {
		tags[i] = string(s)
	}
	return r.dialect.
		From(goqu.T("feedback_responses").As("f")).
		Join(goqu.T("feedback_questions").As("q"),
			goqu.On(goqu.I("f.question_id").Eq(goqu.I("q.question_id")))).
		Join(goqu.T("courses").As("c"),
			goqu.On(goqu.I("f.course_id").Eq(goqu.I("c.course_id")))).
		Where(goqu.I("q.section").In(tags...))
}

func totals() []any {
	return []any{
		goqu.SUM("f.rating").As("rating_sum"),
		goqu.COUNT("f.rating").As("rating_count"),
	}
}

func (r *AnalyticsRepository) query(ctx context.Context, op string, ds *goqu.SelectDataset, scan func(*sql.Rows) error) error {
	return queryEach(ctx, r.db, op, ds, scan)
}

// CourseRatings groups course-section ratings by course.
func (r *AnalyticsRepository) CourseRatings(ctx context.Context) ([]models.CourseRatingRow, error) {
	group := []any{goqu.I("c.course_id"), goqu.I("c.course_name"), goqu.I("c.department"), goqu.I("c.semester")}
	ds := r.ratings(models.SectionCourse).
		Select(append(group, totals()...)...).
		GroupBy(group...).
		Order(goqu.I("c.course_id").Asc())

	var out []models.CourseRatingRow
	err := r.query(ctx, "CourseRatings", ds, func(rows *sql.Rows) error {
		var row models.CourseRatingRow
		var dept, sem sql.NullString
		if err := rows.Scan(&row.CourseID, &row.CourseName, &dept, &sem, &row.RatingSum, &row.RatingCount); err != nil {
			return err
		}
		row.Department = nullableString(dept)
		row.Semester = nullableString(sem)
		out = append(out, row)
		return nil
	})
	return out, err
}

// InstructorRatings groups instructor-section ratings by the free-text
// instructor name. Two instructors sharing a display name share a row.
func (r *AnalyticsRepository) InstructorRatings(ctx context.Context) ([]models.InstructorRatingRow, error) {
	ds := r.ratings(models.SectionInstructor).
		Select(append([]any{goqu.I("f.instructor_name")}, totals()...)...).
		GroupBy(goqu.I("f.instructor_name")).
		Order(goqu.I("f.instructor_name").Asc())

	var out []models.InstructorRatingRow
	err := r.query(ctx, "InstructorRatings", ds, func(rows *sql.Rows) error {
		var row models.InstructorRatingRow
		if err := rows.Scan(&row.InstructorName, &row.RatingSum, &row.RatingCount); err != nil {
			return err
		}
		out = append(out, row)
		return nil
	})
	return out, err
}

// InstructorRatingsByCourse groups instructor-section ratings by course and
// instructor name; it is the instructor side of the comparison.
func (r *AnalyticsRepository) InstructorRatingsByCourse(ctx context.Context) ([]models.CourseInstructorRatingRow, error) {
	group := []any{goqu.I("c.course_id"), goqu.I("c.course_name"), goqu.I("f.instructor_name")}
	ds := r.ratings(models.SectionInstructor).
		Select(append(group, totals()...)...).
		GroupBy(group...).
		Order(goqu.I("c.course_id").Asc(), goqu.I("f.instructor_name").Asc())

	var out []models.CourseInstructorRatingRow
	err := r.query(ctx, "InstructorRatingsByCourse", ds, func(rows *sql.Rows) error {
		var row models.CourseInstructorRatingRow
		if err := rows.Scan(&row.CourseID, &row.CourseName, &row.InstructorName, &row.RatingSum, &row.RatingCount); err != nil {
			return err
		}
		out = append(out, row)
		return nil
	})
	return out, err
}

// DepartmentRatings groups ratings from both sections by course department.
func (r *AnalyticsRepository) DepartmentRatings(ctx context.Context) ([]models.DepartmentRatingRow, error) {
	var out []models.DepartmentRatingRow
	err := r.groupByNullable(ctx, "DepartmentRatings", goqu.I("c.department"), func(key *string, t models.RatingTotals) {
		out = append(out, models.DepartmentRatingRow{Department: key, RatingTotals: t})
	})
	return out, err
}

// SemesterRatings groups ratings from both sections by course semester.
func (r *AnalyticsRepository) SemesterRatings(ctx context.Context) ([]models.SemesterRatingRow, error) {
	var out []models.SemesterRatingRow
	err := r.groupByNullable(ctx, "SemesterRatings", goqu.I("c.semester"), func(key *string, t models.RatingTotals) {
		out = append(out, models.SemesterRatingRow{Semester: key, RatingTotals: t})
	})
	return out, err
}

func (r *AnalyticsRepository) groupByNullable(ctx context.Context, op string, key exp.IdentifierExpression, emit func(*string, models.RatingTotals)) error {
	ds := r.ratings(models.SectionCourse, models.SectionInstructor).
		Select(append([]any{key}, totals()...)...).
		GroupBy(key)

	return r.query(ctx, op, ds, func(rows *sql.Rows) error {
		var k sql.NullString
		var t models.RatingTotals
		if err := rows.Scan(&k, &t.RatingSum, &t.RatingCount); err != nil {
			return err
		}
		emit(nullableString(k), t)
		return nil
	})
}
