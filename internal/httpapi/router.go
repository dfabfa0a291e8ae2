package httpapi

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/godilite/eduinsight-server/internal/auth"
	"github.com/godilite/eduinsight-server/internal/metrics"
)

// NewRouter builds the gin engine with middleware and every route mounted.
func NewRouter(h *Handlers, verifier TokenVerifier, limiter *ClientLimiter, logger *zap.Logger) *gin.Engine {
	if verifier == nil {
		panic("nil TokenVerifier provided to NewRouter")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if limiter == nil {
		limiter = NewClientLimiter(0, 1)
	}
	logger = logger.Named("http")

	router := gin.New()
	router.Use(RequestID(), AccessLog(logger), Metrics(), Recovery(logger))

	router.GET("/healthz", h.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authed := Authenticate(verifier, logger)

	analytics := router.Group("/api/analytics", authed)
	{
		analytics.GET("/course", h.CourseAnalytics)
		analytics.GET("/instructor", h.InstructorAnalytics)
		analytics.GET("/compare", h.ComparisonAnalytics)
		analytics.GET("/department", h.DepartmentAnalytics)
		analytics.GET("/trend", h.TrendAnalytics)
		analytics.GET("/forecast", h.ForecastSummary)
		analytics.POST("/forecast", h.ForecastSequence)
		analytics.GET("/dashboard", h.Dashboard)
	}

	admin := RequireRole(auth.RoleAdmin)
	instructor := RequireRole(auth.RoleInstructor)

	analytics.GET("/instructor/:instructor_id/courses",
		RequireRole(auth.RoleInstructor, auth.RoleAdmin),
		h.InstructorCourseAnalytics)

	courses := router.Group("/api/courses", authed)
	{
		courses.GET("/approved", h.ListApprovedCourses)

		courses.POST("", instructor, h.SubmitCourse)
		courses.GET("/mine", instructor, h.ListMyCourses)
		courses.PUT("/:course_id", instructor, h.UpdateCourse)
		courses.DELETE("/:course_id", instructor, h.DeleteCourse)

		courses.GET("", admin, h.ListCourses)
		courses.PUT("/:course_id/status", admin, h.SetCourseStatus)
	}

	feedback := router.Group("/api/feedback", authed)
	{
		feedback.POST("/submit",
			RequireRole(auth.RoleStudent),
			RateLimit(limiter, func() { metrics.RecordSubmission(metrics.SubmissionLimited) }),
			h.SubmitFeedback)

		feedback.GET("/questions/:section", h.ListQuestions)
		feedback.POST("/questions", admin, h.AddQuestion)
		feedback.DELETE("/questions/:id", admin, h.DeleteQuestion)

		feedback.GET("/submissions", admin, h.ListSubmissions)
		feedback.GET("/submissions/student/:student_id",
			RequireRole(auth.RoleStudent, auth.RoleAdmin),
			h.ListStudentSubmissions)
	}

	return router
}
