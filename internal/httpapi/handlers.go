package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/godilite/eduinsight-server/internal/auth"
	"github.com/godilite/eduinsight-server/internal/metrics"
	"github.com/godilite/eduinsight-server/internal/service"
)

const (
	defaultRequestTimeout = 10 * time.Second
	maxForecastValues     = 1000
)

type Handlers struct {
	analytics AnalyticsService
	feedback  FeedbackService
	courses   CourseService
	store     Pinger
	timeout   time.Duration
	logger    *zap.Logger
}

// HandlerOption tunes Handlers.
type HandlerOption func(*Handlers)

// WithRequestTimeout bounds each service call. Non-positive values keep
// the default.
func WithRequestTimeout(d time.Duration) HandlerOption {
	return func(h *Handlers) {
		if d > 0 {
			h.timeout = d
		}
	}
}

// NewHandlers wires the REST handlers. store may be nil, in which case the
// health check only reports liveness.
func NewHandlers(analytics AnalyticsService, feedback FeedbackService, courses CourseService, store Pinger, logger *zap.Logger, opts ...HandlerOption) *Handlers {
	if analytics == nil || feedback == nil || courses == nil {
		panic("nil service provided to NewHandlers")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handlers{
		analytics: analytics,
		feedback:  feedback,
		courses:   courses,
		store:     store,
		timeout:   defaultRequestTimeout,
		logger:    logger.Named("http-handler"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// handleError maps service errors onto HTTP responses. ctx is the context
// the failed call ran under, so a handler deadline reads as a timeout.
func (h *Handlers) handleError(ctx context.Context, c *gin.Context, op string, err error) {
	switch ctx.Err() {
	case context.Canceled:
		h.logger.Warn("request canceled", zap.String("op", op))
		c.AbortWithStatus(http.StatusRequestTimeout)
		return
	case context.DeadlineExceeded:
		h.logger.Warn("request timeout", zap.String("op", op))
		c.AbortWithStatusJSON(http.StatusGatewayTimeout, gin.H{"success": false, "message": "Request timed out."})
		return
	}

	status := http.StatusInternalServerError
	message := "Server error while " + op + "."
	switch {
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrInvalidSection):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrInvalidStatus):
		status, message = http.StatusBadRequest, "Invalid status value."
	case errors.Is(err, service.ErrQuestionNotFound):
		status, message = http.StatusNotFound, "Question not found."
	case errors.Is(err, service.ErrCourseNotFound):
		status, message = http.StatusNotFound, "Course not found."
	case errors.Is(err, service.ErrNotCourseOwner):
		status, message = http.StatusForbidden, "Access denied. Not your course."
	case errors.Is(err, service.ErrStorageFailure):
		h.logger.Error("storage failure", zap.String("op", op), zap.String("request_id", GetRequestID(c)), zap.Error(err))
	default:
		h.logger.Error("unexpected error", zap.String("op", op), zap.String("request_id", GetRequestID(c)), zap.Error(err))
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "message": message})
}

func (h *Handlers) withTimeout(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), h.timeout)
}

// list writes the {success, total_<axis>, data} envelope.
func list[T any](c *gin.Context, axis string, rows []T) {
	if rows == nil {
		rows = []T{}
	}
	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"total_" + axis: len(rows),
		"data":           rows,
	})
}

func (h *Handlers) Health(c *gin.Context) {
	if h.store != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.store.Ping(ctx); err != nil {
			h.logger.Warn("health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": "database unreachable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "time": time.Now().UTC()})
}

func (h *Handlers) CourseAnalytics(c *gin.Context) {
	ctx, cancel := h.withTimeout(c)
	defer cancel()

	rows, err := h.analytics.GetCourseAnalytics(ctx)
	if err != nil {
		h.handleError(ctx, c, "fetching course analytics", err)
		return
	}
	list(c, "courses", rows)
}

func (h *Handlers) InstructorAnalytics(c *gin.Context) {
	ctx, cancel := h.withTimeout(c)
	defer cancel()

	rows, err := h.analytics.GetInstructorAnalytics(ctx)
	if err != nil {
		h.handleError(ctx, c, "fetching instructor analytics", err)
		return
	}
	list(c, "instructors", rows)
}

func (h *Handlers) ComparisonAnalytics(c *gin.Context) {
	ctx, cancel := h.withTimeout(c)
	defer cancel()

	rows, err := h.analytics.GetComparisonAnalytics(ctx)
	if err != nil {
		h.handleError(ctx, c, "fetching comparison analytics", err)
		return
	}
	list(c, "pairs", rows)
}

func (h *Handlers) DepartmentAnalytics(c *gin.Context) {
	ctx, cancel := h.withTimeout(c)
	defer cancel()

	rows, err := h.analytics.GetDepartmentAnalytics(ctx)
	if err != nil {
		h.handleError(ctx, c, "fetching department analytics", err)
		return
	}
	list(c, "departments", rows)
}

func (h *Handlers) TrendAnalytics(c *gin.Context) {
	ctx, cancel := h.withTimeout(c)
	defer cancel()

	rows, err := h.analytics.GetTrendAnalytics(ctx)
	if err != nil {
		h.handleError(ctx, c, "fetching semester trend", err)
		return
	}
	list(c, "semesters", rows)
}

// ForecastSummary projects the next semester from the stored trend. data is
// null when no semester is labelled.
func (h *Handlers) ForecastSummary(c *gin.Context) {
	ctx, cancel := h.withTimeout(c)
	defer cancel()

	summary, err := h.analytics.GetForecastSummary(ctx)
	if err != nil {
		h.handleError(ctx, c, "computing forecast", err)
		return
	}
	points := 0
	if summary != nil {
		points = summary.Points
	}
	metrics.RecordForecast(points)
	c.JSON(http.StatusOK, gin.H{"success": true, "data": summary})
}

type forecastRequest struct {
	Values []*float64 `json:"values"`
}

// points drops JSON nulls so they are skipped like other unusable values
// rather than decoded as zero.
func (r forecastRequest) points() []float64 {
	out := make([]float64, 0, len(r.Values))
	for _, v := range r.Values {
		if v != nil {
			out = append(out, *v)
		}
	}
	return out
}

// ForecastSequence fits an arbitrary posted sequence.
func (h *Handlers) ForecastSequence(c *gin.Context) {
	var req forecastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Body must be {\"values\": [numbers]}.")
		return
	}
	if len(req.Values) > maxForecastValues {
		badRequest(c, "At most "+strconv.Itoa(maxForecastValues)+" values are accepted.")
		return
	}

	point, ok := service.Forecast(req.points())
	if !ok {
		metrics.RecordForecast(0)
		c.JSON(http.StatusOK, gin.H{"success": true, "data": nil})
		return
	}
	metrics.RecordForecast(point.NextIndex - 1)
	c.JSON(http.StatusOK, gin.H{"success": true, "data": point})
}

func (h *Handlers) Dashboard(c *gin.Context) {
	ctx, cancel := h.withTimeout(c)
	defer cancel()

	d, err := h.analytics.GetDashboard(ctx)
	if err != nil {
		h.handleError(ctx, c, "building dashboard", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": d})
}

// SubmitFeedback records a student's submission. Students submit as
// themselves; an omitted student_id is taken from the token.
func (h *Handlers) SubmitFeedback(c *gin.Context) {
	var req service.SubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.RecordSubmission(metrics.SubmissionInvalid)
		badRequest(c, "Missing required fields.")
		return
	}

	claims := GetClaims(c)
	if claims != nil && claims.Role == auth.RoleStudent {
		if req.StudentID == 0 {
			req.StudentID = claims.UserID
		}
		if req.StudentID != claims.UserID {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "Students may only submit their own feedback.",
			})
			return
		}
	}

	ctx, cancel := h.withTimeout(c)
	defer cancel()

	if err := h.feedback.SubmitFeedback(ctx, req); err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			metrics.RecordSubmission(metrics.SubmissionInvalid)
		} else {
			metrics.RecordSubmission(metrics.SubmissionFailed)
		}
		h.handleError(ctx, c, "submitting feedback", err)
		return
	}

	metrics.RecordSubmission(metrics.SubmissionAccepted)
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Feedback submitted successfully."})
}

func (h *Handlers) ListQuestions(c *gin.Context) {
	ctx, cancel := h.withTimeout(c)
	defer cancel()

	qs, err := h.feedback.ListQuestions(ctx, c.Param("section"))
	if err != nil {
		h.handleError(ctx, c, "fetching questions", err)
		return
	}
	list(c, "questions", qs)
}

type addQuestionRequest struct {
	Section      string `json:"section" binding:"required"`
	QuestionText string `json:"question_text" binding:"required"`
}

func (h *Handlers) AddQuestion(c *gin.Context) {
	var req addQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Section and question text are required.")
		return
	}

	ctx, cancel := h.withTimeout(c)
	defer cancel()

	q, err := h.feedback.AddQuestion(ctx, req.Section, req.QuestionText)
	if err != nil {
		h.handleError(ctx, c, "adding question", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success":  true,
		"message":  "Question added successfully.",
		"question": q,
	})
}

func (h *Handlers) DeleteQuestion(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "Question id must be a positive integer.")
		return
	}

	ctx, cancel := h.withTimeout(c)
	defer cancel()

	if err := h.feedback.DeleteQuestion(ctx, id); err != nil {
		h.handleError(ctx, c, "deleting question", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Question deleted successfully."})
}

func queryInt(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	return v, err == nil
}

func (h *Handlers) ListSubmissions(c *gin.Context) {
	limit, ok := queryInt(c, "limit")
	if !ok {
		badRequest(c, "limit must be an integer.")
		return
	}
	offset, ok := queryInt(c, "offset")
	if !ok {
		badRequest(c, "offset must be an integer.")
		return
	}

	ctx, cancel := h.withTimeout(c)
	defer cancel()

	page, err := h.feedback.ListSubmissions(ctx, limit, offset)
	if err != nil {
		h.handleError(ctx, c, "fetching submissions", err)
		return
	}
	rows := page.Rows
	if rows == nil {
		rows = []service.Submission{}
	}
	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"total_submissions": page.Total,
		"limit":             page.Limit,
		"offset":            page.Offset,
		"data":              rows,
	})
}

// ListStudentSubmissions lists one student's ratings. Students may only read
// their own.
func (h *Handlers) ListStudentSubmissions(c *gin.Context) {
	studentID, err := strconv.ParseInt(c.Param("student_id"), 10, 64)
	if err != nil || studentID <= 0 {
		badRequest(c, "Student id must be a positive integer.")
		return
	}

	if claims := GetClaims(c); claims != nil && claims.Role == auth.RoleStudent && claims.UserID != studentID {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "Access denied."})
		return
	}

	ctx, cancel := h.withTimeout(c)
	defer cancel()

	rows, err := h.feedback.ListStudentSubmissions(ctx, studentID)
	if err != nil {
		h.handleError(ctx, c, "fetching submissions", err)
		return
	}
	list(c, "submissions", rows)
}
