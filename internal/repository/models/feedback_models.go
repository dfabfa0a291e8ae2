package models

import "time"

// Section tags a feedback question as being about the course or the instructor.
type Section string

const (
	SectionCourse     Section = "course"
	SectionInstructor Section = "instructor"
)

// Valid reports whether s is one of the known sections.
func (s Section) Valid() bool {
	return s == SectionCourse || s == SectionInstructor
}

// RatingTotals is the exact integer sum and count behind an average.
type RatingTotals struct {
	RatingSum   int64
	RatingCount int64
}

type CourseRatingRow struct {
	CourseID   int64
	CourseName string
	Department *string
	Semester   *string
	RatingTotals
}

type InstructorRatingRow struct {
	InstructorName string
	RatingTotals
}

type CourseInstructorRatingRow struct {
	CourseID       int64
	CourseName     string
	InstructorName string
	RatingTotals
}

type DepartmentRatingRow struct {
	Department *string
	RatingTotals
}

type SemesterRatingRow struct {
	Semester *string
	RatingTotals
}

// CourseStatus is where a course sits in the approval workflow.
type CourseStatus string

const (
	CoursePending  CourseStatus = "Pending"
	CourseApproved CourseStatus = "Approved"
	CourseRejected CourseStatus = "Rejected"
)

type Course struct {
	ID             int64
	Name           string
	InstructorID   *int64
	InstructorName string
	Department     *string
	Semester       *string
	Status         CourseStatus
}

// CourseFilter narrows a course listing. Zero fields match everything.
type CourseFilter struct {
	Status       CourseStatus
	InstructorID *int64
	OrderByName  bool
}

// RatingCount is how many times one course received one rating value.
type RatingCount struct {
	CourseID int64
	Rating   int
	Count    int64
}

type Question struct {
	ID      int64
	Section Section
	Text    string
	Active  bool
}

type QuestionRating struct {
	QuestionID int64
	Rating     int
}

// Submission is one student's feedback for one course: N ratings and one
// comment record, persisted together or not at all.
type Submission struct {
	StudentID         int64
	CourseID          int64
	InstructorName    string
	Ratings           []QuestionRating
	CourseComment     string
	InstructorComment string
}

type SubmissionRow struct {
	ResponseID     int64
	StudentID      int64
	CourseID       int64
	CourseName     string
	InstructorName string
	QuestionText   string
	Rating         int
	CreatedAt      time.Time
}
