package app

import (
	"context"
	"fmt"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/godilite/eduinsight-server/internal/repository/models"
	"github.com/godilite/eduinsight-server/internal/service"
)

type SeedOptions struct {
	Students    int
	Submissions int
	Seed        uint64
}

type SeedReport struct {
	Courses     int `json:"courses"`
	Questions   int `json:"questions"`
	Submissions int `json:"submissions"`
}

type seedCourse struct {
	name, instructor, department, semester string
}

var demoCatalogue = []seedCourse{
	{"Data Structures", "Dr. Amara Obi", "Computer Science", "2024-Spring"},
	{"Operating Systems", "Dr. Lena Varga", "Computer Science", "2024-Fall"},
	{"Distributed Systems", "Dr. Lena Varga", "Computer Science", "2025-Spring"},
	{"Linear Algebra", "Prof. Ken Ito", "Mathematics", "2024-Spring"},
	{"Probability", "Prof. Ken Ito", "Mathematics", "2024-Fall"},
	{"Real Analysis", "Dr. Sara Haddad", "Mathematics", "2025-Spring"},
	{"Microeconomics", "Dr. Tomas Reyes", "Economics", "2024-Fall"},
	{"Econometrics", "Dr. Tomas Reyes", "Economics", "2025-Spring"},
	{"Academic Writing", "Ms. Joy Mensah", "", ""},
}

// instructorIDs gives demo instructors stable user ids from 1001 in
// catalogue order, so a token minted for one of them owns their courses.
func instructorIDs() map[string]int64 {
	ids := make(map[string]int64)
	for _, c := range demoCatalogue {
		if _, ok := ids[c.instructor]; !ok {
			ids[c.instructor] = 1001 + int64(len(ids))
		}
	}
	return ids
}

var demoQuestions = []struct{ section, text string }{
	{"course", "The course content was well organised."},
	{"course", "The workload matched the credit hours."},
	{"course", "Assessments reflected what was taught."},
	{"instructor", "The instructor explained concepts clearly."},
	{"instructor", "The instructor was available outside class."},
}

// Seed loads a demo catalogue and deterministic ratings. Submissions go
// through FeedbackService so validation and cache invalidation apply.
func Seed(ctx context.Context, svc *Services, opts SeedOptions, logger *zap.Logger) (SeedReport, error) {
	if opts.Students <= 0 {
		opts.Students = 100
	}
	if opts.Submissions <= 0 {
		opts.Submissions = 300
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("seed")
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))

	var report SeedReport
	courses := make([]models.Course, 0, len(demoCatalogue))
	owners := instructorIDs()
	for _, c := range demoCatalogue {
		owner := owners[c.instructor]
		course := models.Course{
			Name:           c.name,
			InstructorID:   &owner,
			InstructorName: c.instructor,
			Status:         models.CourseApproved,
		}
		if c.department != "" {
			course.Department = &c.department
		}
		if c.semester != "" {
			course.Semester = &c.semester
		}
		created, err := svc.Catalogue.Create(ctx, course)
		if err != nil {
			return report, fmt.Errorf("seed course %q: %w", c.name, err)
		}
		courses = append(courses, created)
		report.Courses++
	}

	var courseQs, instructorQs []int64
	for _, q := range demoQuestions {
		created, err := svc.Feedback.AddQuestion(ctx, q.section, q.text)
		if err != nil {
			return report, fmt.Errorf("seed question: %w", err)
		}
		if q.section == "course" {
			courseQs = append(courseQs, created.QuestionID)
		} else {
			instructorQs = append(instructorQs, created.QuestionID)
		}
		report.Questions++
	}

	for range opts.Submissions {
		course := courses[rng.IntN(len(courses))]
		// Each course gets a stable lean so the comparison buckets fill in.
		courseLean := int(course.ID % 3)
		instructorLean := int((course.ID + 1) % 3)

		req := service.SubmissionRequest{
			StudentID:      int64(rng.IntN(opts.Students) + 1),
			CourseID:       course.ID,
			InstructorName: course.InstructorName,
		}
		for _, id := range courseQs {
			req.Ratings = append(req.Ratings, service.RatingInput{QuestionID: id, Rating: skewedRating(rng, courseLean)})
		}
		for _, id := range instructorQs {
			req.Ratings = append(req.Ratings, service.RatingInput{QuestionID: id, Rating: skewedRating(rng, instructorLean)})
		}

		if err := svc.Feedback.SubmitFeedback(ctx, req); err != nil {
			return report, fmt.Errorf("seed submission %d: %w", report.Submissions+1, err)
		}
		report.Submissions++
	}

	logger.Info("demo data seeded",
		zap.Int("courses", report.Courses),
		zap.Int("questions", report.Questions),
		zap.Int("submissions", report.Submissions))
	return report, nil
}

// skewedRating draws a rating in 1..5 nudged up by lean (0..2).
func skewedRating(rng *rand.Rand, lean int) int {
	r := rng.IntN(4) + 1 + lean/2
	if lean == 2 && rng.IntN(2) == 0 {
		r++
	}
	return min(r, 5)
}
