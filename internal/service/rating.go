package service

import (
	"math"

	"github.com/godilite/eduinsight-server/internal/repository/models"
)

const (
	highRating      = 4.0
	highRatingCents = 400
)

// averageCents returns sum/count rounded half-up to hundredths, as an
// integer number of cents. Integer arithmetic keeps 4.125 from turning
// into 4.12 through float error.
func averageCents(t models.RatingTotals) int64 {
	if t.RatingCount <= 0 {
		return 0
	}
	return (200*t.RatingSum + t.RatingCount) / (2 * t.RatingCount)
}

func centsToRating(c int64) float64 {
	return float64(c) / 100
}

// Average is the presented mean of a group: two decimals, half-up.
func Average(t models.RatingTotals) float64 {
	return centsToRating(averageCents(t))
}

// round2 rounds a float to two decimals, half away from zero.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Bucket classifies a course/instructor pair against the fixed 4.0 line.
// The comparison uses the values as given; 3.996 is low even though it
// displays as 4.00.
func Bucket(courseAvg, instructorAvg float64) AlignmentBucket {
	return classify(courseAvg >= highRating, instructorAvg >= highRating)
}

func bucketCents(course, instructor int64) AlignmentBucket {
	return classify(course >= highRatingCents, instructor >= highRatingCents)
}

func classify(courseHigh, instructorHigh bool) AlignmentBucket {
	switch {
	case courseHigh && instructorHigh:
		return BothHigh
	case courseHigh:
		return CourseHighInstructorLow
	case instructorHigh:
		return CourseLowInstructorHigh
	default:
		return BothLow
	}
}
