package service_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/godilite/eduinsight-server/internal/repository/models"
	"github.com/godilite/eduinsight-server/internal/service"
)

func TestBucket(t *testing.T) {
	cases := []struct {
		course, instructor float64
		want               service.AlignmentBucket
	}{
		{4.0, 4.0, service.BothHigh},
		{4.0, 3.99, service.CourseHighInstructorLow},
		{3.99, 4.0, service.CourseLowInstructorHigh},
		{3.99, 3.99, service.BothLow},
		{5.0, 1.0, service.CourseHighInstructorLow},
		{0, 0, service.BothLow},
		{3.996, 3.0, service.BothLow},
		{4.5, 3.996, service.CourseHighInstructorLow},
		{3.9999, 4.0001, service.CourseLowInstructorHigh},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, service.Bucket(tc.course, tc.instructor), "course=%v instructor=%v", tc.course, tc.instructor)
	}
}

func TestAverage_RoundsHalfUp(t *testing.T) {
	assert.Equal(t, 4.13, service.Average(models.RatingTotals{RatingSum: 33, RatingCount: 8}))
	assert.Equal(t, 4.25, service.Average(models.RatingTotals{RatingSum: 17, RatingCount: 4}))
	assert.Equal(t, 3.67, service.Average(models.RatingTotals{RatingSum: 11, RatingCount: 3}))
	assert.Equal(t, 3.33, service.Average(models.RatingTotals{RatingSum: 10, RatingCount: 3}))
	assert.Equal(t, 0.0, service.Average(models.RatingTotals{}))
}

func TestAverage_MatchesExactMean(t *testing.T) {
	for count := int64(1); count <= 60; count++ {
		for sum := count; sum <= 5*count; sum++ {
			want := math.Round(float64(100*sum)/float64(count)) / 100
			got := service.Average(models.RatingTotals{RatingSum: sum, RatingCount: count})
			if !assert.Equal(t, want, got, "sum=%d count=%d", sum, count) {
				return
			}
		}
	}
}
