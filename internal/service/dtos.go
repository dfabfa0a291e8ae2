package service

import "time"

type CourseSummary struct {
	CourseID        int64   `json:"course_id"`
	CourseName      string  `json:"course_name"`
	Department      *string `json:"department"`
	Semester        *string `json:"semester"`
	AvgCourseRating float64 `json:"avg_course_rating"`
	TotalResponses  int64   `json:"total_responses"`
}

type InstructorSummary struct {
	InstructorName      string  `json:"instructor_name"`
	AvgInstructorRating float64 `json:"avg_instructor_rating"`
	TotalResponses      int64   `json:"total_responses"`
}

type AlignmentBucket string

const (
	BothHigh                AlignmentBucket = "Both High"
	CourseHighInstructorLow AlignmentBucket = "Course High, Instructor Low"
	CourseLowInstructorHigh AlignmentBucket = "Course Low, Instructor High"
	BothLow                 AlignmentBucket = "Both Low"
)

type ComparisonRow struct {
	CourseID            int64           `json:"course_id"`
	CourseName          string          `json:"course_name"`
	InstructorName      string          `json:"instructor_name"`
	AvgCourseRating     float64         `json:"avg_course_rating"`
	AvgInstructorRating float64         `json:"avg_instructor_rating"`
	Gap                 float64         `json:"gap"`
	AlignmentBucket     AlignmentBucket `json:"alignment_bucket"`
}

type DepartmentSummary struct {
	Department          *string `json:"department"`
	AvgDepartmentRating float64 `json:"avg_department_rating"`
	TotalResponses      int64   `json:"total_responses"`
}

type SemesterTrendPoint struct {
	Semester          *string `json:"semester"`
	AvgSemesterRating float64 `json:"avg_semester_rating"`
	TotalResponses    int64   `json:"total_responses"`
}

type ForecastPoint struct {
	NextIndex       int     `json:"next_index"`
	PredictedRating float64 `json:"predicted_rating"`
}

type ForecastSummary struct {
	Forecast      float64 `json:"forecast"`
	LastSemester  string  `json:"last_semester"`
	LastObserved  float64 `json:"last_observed"`
	PercentChange float64 `json:"percent_change"`
	PercentLabel  string  `json:"percent_change_label"`
	Direction     string  `json:"direction"`
	Points        int     `json:"points"`
}

type Dashboard struct {
	Courses      []CourseSummary         `json:"courses"`
	Instructors  []InstructorSummary     `json:"instructors"`
	Comparison   []ComparisonRow         `json:"comparison"`
	Departments  []DepartmentSummary     `json:"departments"`
	Trend        []SemesterTrendPoint    `json:"trend"`
	Forecast     *ForecastSummary        `json:"forecast"`
	BucketCounts map[AlignmentBucket]int `json:"alignment_buckets"`
}

type RatingInput struct {
	QuestionID int64 `json:"question_id" validate:"gt=0"`
	Rating     int   `json:"rating" validate:"min=1,max=5"`
}

type SubmissionRequest struct {
	StudentID         int64         `json:"student_id" validate:"gt=0"`
	CourseID          int64         `json:"course_id" validate:"gt=0"`
	InstructorName    string        `json:"instructor_name" validate:"required,max=200"`
	Ratings           []RatingInput `json:"ratings" validate:"required,min=1,max=100,dive"`
	CourseComment     string        `json:"course_comment" validate:"max=5000"`
	InstructorComment string        `json:"instructor_comment" validate:"max=5000"`
}

type Question struct {
	QuestionID   int64  `json:"question_id"`
	Section      string `json:"section"`
	QuestionText string `json:"question_text"`
	Active       bool   `json:"active"`
}

type Submission struct {
	ResponseID     int64     `json:"response_id"`
	StudentID      int64     `json:"student_id"`
	CourseID       int64     `json:"course_id"`
	CourseName     string    `json:"course_name"`
	InstructorName string    `json:"instructor_name"`
	QuestionText   string    `json:"question_text"`
	Rating         int       `json:"rating"`
	CreatedAt      time.Time `json:"created_at"`
}

type SubmissionPage struct {
	Total  int64        `json:"total"`
	Limit  int          `json:"limit"`
	Offset int          `json:"offset"`
	Rows   []Submission `json:"rows"`
}

// CourseRequest is the instructor-editable part of a course.
type CourseRequest struct {
	CourseName string  `json:"course_name" validate:"required,max=200"`
	Department *string `json:"department" validate:"omitempty,max=100"`
	Semester   *string `json:"semester" validate:"omitempty,max=50"`
}

// Instructor identifies the caller that owns a course.
type Instructor struct {
	ID   int64
	Name string
}

type Course struct {
	CourseID       int64   `json:"course_id"`
	CourseName     string  `json:"course_name"`
	InstructorID   *int64  `json:"instructor_id"`
	InstructorName string  `json:"instructor_name"`
	Department     *string `json:"department"`
	Semester       *string `json:"semester"`
	Status         string  `json:"status"`
}

// CourseRatings is one approved course with every rating it has received.
// RatingDistribution is keyed "5" down to "1" and always has all five keys.
type CourseRatings struct {
	Course
	AvgRating          float64          `json:"avg_rating"`
	FeedbackCount      int64            `json:"feedback_count"`
	RatingDistribution map[string]int64 `json:"rating_distribution"`
}

type InstructorCourseAnalytics struct {
	InstructorID int64           `json:"instructor_id"`
	TotalCourses int             `json:"total_courses"`
	Courses      []CourseRatings `json:"courses"`
}
