package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/godilite/eduinsight-server/internal/auth"
	"github.com/godilite/eduinsight-server/internal/service"
)

func pathID(c *gin.Context, name, label string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, label+" id must be a positive integer.")
		return 0, false
	}
	return id, true
}

// caller returns the authenticated user. Routes using it sit behind
// Authenticate, so claims are always present.
func caller(c *gin.Context) *auth.Claims {
	if claims := GetClaims(c); claims != nil {
		return claims
	}
	return &auth.Claims{}
}

func (h *Handlers) SubmitCourse(c *gin.Context) {
	var req service.CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Course name is required.")
		return
	}
	claims := caller(c)

	ctx, cancel := h.withTimeout(c)
	defer cancel()

	course, err := h.courses.SubmitCourse(ctx, service.Instructor{ID: claims.UserID, Name: claims.FullName}, req)
	if err != nil {
		h.handleError(ctx, c, "adding course", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Course submitted for approval.",
		"course":  course,
	})
}

func (h *Handlers) ListMyCourses(c *gin.Context) {
	ctx, cancel := h.withTimeout(c)
	defer cancel()

	rows, err := h.courses.ListInstructorCourses(ctx, caller(c).UserID)
	if err != nil {
		h.handleError(ctx, c, "fetching courses", err)
		return
	}
	list(c, "courses", rows)
}

// UpdateCourse edits one of the caller's courses; the edit goes back for
// approval.
func (h *Handlers) UpdateCourse(c *gin.Context) {
	id, ok := pathID(c, "course_id", "Course")
	if !ok {
		return
	}
	var req service.CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Course name is required.")
		return
	}

	ctx, cancel := h.withTimeout(c)
	defer cancel()

	course, err := h.courses.UpdateCourse(ctx, caller(c).UserID, id, req)
	if err != nil {
		h.handleError(ctx, c, "updating course", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Course updated successfully (awaiting admin approval).",
		"course":  course,
	})
}

func (h *Handlers) DeleteCourse(c *gin.Context) {
	id, ok := pathID(c, "course_id", "Course")
	if !ok {
		return
	}

	ctx, cancel := h.withTimeout(c)
	defer cancel()

	if err := h.courses.DeleteCourse(ctx, caller(c).UserID, id); err != nil {
		h.handleError(ctx, c, "deleting course", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Course deleted successfully."})
}

// ListCourses is the admin view; ?status= narrows it to one state.
func (h *Handlers) ListCourses(c *gin.Context) {
	ctx, cancel := h.withTimeout(c)
	defer cancel()

	rows, err := h.courses.ListCourses(ctx, c.Query("status"))
	if err != nil {
		h.handleError(ctx, c, "fetching courses", err)
		return
	}
	list(c, "courses", rows)
}

func (h *Handlers) ListApprovedCourses(c *gin.Context) {
	ctx, cancel := h.withTimeout(c)
	defer cancel()

	rows, err := h.courses.ListApprovedCourses(ctx)
	if err != nil {
		h.handleError(ctx, c, "fetching courses", err)
		return
	}
	list(c, "courses", rows)
}

type courseStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handlers) SetCourseStatus(c *gin.Context) {
	id, ok := pathID(c, "course_id", "Course")
	if !ok {
		return
	}
	var req courseStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid status value.")
		return
	}

	ctx, cancel := h.withTimeout(c)
	defer cancel()

	course, err := h.courses.SetCourseStatus(ctx, id, req.Status)
	if err != nil {
		h.handleError(ctx, c, "updating course status", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Course " + course.Status + " successfully.",
		"course":  course,
	})
}

// InstructorCourseAnalytics reports an instructor's approved courses.
// Instructors may only read their own; admins may read anyone's.
func (h *Handlers) InstructorCourseAnalytics(c *gin.Context) {
	id, ok := pathID(c, "instructor_id", "Instructor")
	if !ok {
		return
	}
	if claims := caller(c); claims.Role != auth.RoleAdmin && claims.UserID != id {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "Access denied."})
		return
	}

	ctx, cancel := h.withTimeout(c)
	defer cancel()

	report, err := h.courses.InstructorCourseAnalytics(ctx, id)
	if err != nil {
		h.handleError(ctx, c, "fetching instructor courses", err)
		return
	}
	if report.Courses == nil {
		report.Courses = []service.CourseRatings{}
	}
	body := gin.H{"success": true, "data": report}
	if report.TotalCourses == 0 {
		body["message"] = "No approved courses yet."
	}
	c.JSON(http.StatusOK, body)
}
