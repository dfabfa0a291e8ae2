package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/godilite/eduinsight-server/internal/auth"
	"github.com/godilite/eduinsight-server/internal/httpapi"
	"github.com/godilite/eduinsight-server/internal/repository"
	"github.com/godilite/eduinsight-server/internal/repository/models"
	"github.com/godilite/eduinsight-server/internal/service"
	"github.com/godilite/eduinsight-server/pkg/cache"
	dbbuilder "github.com/godilite/eduinsight-server/pkg/database"
)

// memoryCache is a process-local stand-in for redis.
type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
	gens map[string]int64
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string][]byte{}, gens: map[string]int64{}}
}

func (c *memoryCache) Get(ctx context.Context, key string, dest any) error {
	c.mu.Lock()
	raw, ok := c.data[key]
	c.mu.Unlock()
	if !ok {
		return cache.ErrMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *memoryCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.data[key] = raw
	c.mu.Unlock()
	return nil
}

func (c *memoryCache) Generation(ctx context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[key], nil
}

func (c *memoryCache) Bump(ctx context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[key]++
	return c.gens[key], nil
}

type stack struct {
	router  *gin.Engine
	tokens  *auth.Tokens
	courses []models.Course
}

func newStack(t *testing.T, withCache bool) *stack {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	logger := zaptest.NewLogger(t)

	db, err := dbbuilder.New(ctx,
		dbbuilder.WithDriver("sqlite3"),
		dbbuilder.WithDataSource(":memory:"),
		dbbuilder.WithMaxOpenConns(1),
	)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, dbbuilder.Migrate(ctx, db, "sqlite3", logger))

	feedbackRepo := repository.NewFeedbackRepository(db, "sqlite3")
	analyticsRepo := repository.NewAnalyticsRepository(db, "sqlite3")
	courseRepo := repository.NewCourseRepository(db, "sqlite3")

	dept, sem := "CS", "2025-Spring"
	var courses []models.Course
	for _, c := range []models.Course{
		{Name: "Algorithms", InstructorName: "Dr. Ada", Department: &dept, Semester: &sem, Status: models.CourseApproved},
		{Name: "Databases", InstructorName: "Dr. Bob", Department: &dept, Semester: &sem, Status: models.CourseApproved},
	} {
		created, err := courseRepo.Create(ctx, c)
		require.NoError(t, err)
		courses = append(courses, created)
	}

	base := service.NewAnalyticsService(analyticsRepo, logger)
	var analytics httpapi.AnalyticsService = base
	var invalidator service.Invalidator
	if withCache {
		cached := service.NewCachedAnalytics(base, newMemoryCache(), time.Minute, logger)
		analytics, invalidator = cached, cached
	}
	feedback := service.NewFeedbackService(feedbackRepo, invalidator, logger)
	courseSvc := service.NewCourseService(courseRepo, invalidator, logger)

	tokens, err := auth.NewTokens("e2e-secret", "eduinsight")
	require.NoError(t, err)

	h := httpapi.NewHandlers(analytics, feedback, courseSvc, feedbackRepo, logger)
	return &stack{
		router:  httpapi.NewRouter(h, tokens, httpapi.NewClientLimiter(0, 1), logger),
		tokens:  tokens,
		courses: courses,
	}
}

func (s *stack) token(t *testing.T, id int64, role auth.Role) string {
	t.Helper()
	raw, err := s.tokens.Issue(id, role, "User "+strconv.FormatInt(id, 10), time.Hour)
	require.NoError(t, err)
	return raw
}

func (s *stack) call(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return w.Code, out
}

func rows(t *testing.T, body map[string]any) []map[string]any {
	t.Helper()
	raw, ok := body["data"].([]any)
	require.True(t, ok, "data is %T", body["data"])
	out := make([]map[string]any, len(raw))
	for i, r := range raw {
		out[i] = r.(map[string]any)
	}
	return out
}

func TestE2E_FeedbackToAnalytics(t *testing.T) {
	for _, withCache := range []bool{false, true} {
		name := "uncached"
		if withCache {
			name = "cached"
		}
		t.Run(name, func(t *testing.T) {
			s := newStack(t, withCache)
			admin := s.token(t, 1, auth.RoleAdmin)
			alice := s.token(t, 7, auth.RoleStudent)
			bob := s.token(t, 8, auth.RoleStudent)
			algorithms := s.courses[0].ID

			code, body := s.call(t, http.MethodPost, "/api/feedback/questions", admin, map[string]string{"section": "course", "question_text": "Content was clear"})
			require.Equal(t, http.StatusCreated, code)
			courseQ := int64(body["question"].(map[string]any)["question_id"].(float64))

			code, body = s.call(t, http.MethodPost, "/api/feedback/questions", admin, map[string]string{"section": "instructor", "question_text": "Explained well"})
			require.Equal(t, http.StatusCreated, code)
			instructorQ := int64(body["question"].(map[string]any)["question_id"].(float64))

			submit := func(token string, courseRating, instructorRating int) int {
				code, _ := s.call(t, http.MethodPost, "/api/feedback/submit", token, map[string]any{
					"course_id":       algorithms,
					"instructor_name": "Dr. Ada",
					"ratings": []map[string]any{
						{"question_id": courseQ, "rating": courseRating},
						{"question_id": instructorQ, "rating": instructorRating},
					},
					"course_comment": "ok",
				})
				return code
			}

			require.Equal(t, http.StatusCreated, submit(alice, 5, 4))

			code, body = s.call(t, http.MethodGet, "/api/analytics/course", alice, nil)
			require.Equal(t, http.StatusOK, code)
			courses := rows(t, body)
			require.Len(t, courses, 1)
			assert.Equal(t, 5.0, courses[0]["avg_course_rating"])

			require.Equal(t, http.StatusCreated, submit(bob, 4, 4))
			require.Equal(t, http.StatusCreated, submit(bob, 1, 2), "repeat submissions are accepted")

			code, body = s.call(t, http.MethodGet, "/api/analytics/course", alice, nil)
			require.Equal(t, http.StatusOK, code)
			courses = rows(t, body)
			require.Len(t, courses, 1)
			assert.Equal(t, 3.33, courses[0]["avg_course_rating"], "reads after a commit see the new totals")
			assert.Equal(t, float64(3), courses[0]["total_responses"])

			code, body = s.call(t, http.MethodGet, "/api/analytics/compare", alice, nil)
			require.Equal(t, http.StatusOK, code)
			pairs := rows(t, body)
			require.Len(t, pairs, 1)
			assert.Equal(t, "Dr. Ada", pairs[0]["instructor_name"])
			assert.Equal(t, 3.33, pairs[0]["avg_course_rating"])
			assert.Equal(t, 3.33, pairs[0]["avg_instructor_rating"])
			assert.Equal(t, 0.0, pairs[0]["gap"])
			assert.Equal(t, "Both Low", pairs[0]["alignment_bucket"])

			require.Equal(t, http.StatusBadRequest, submit(alice, 9, 4))

			code, body = s.call(t, http.MethodGet, "/api/feedback/submissions", admin, nil)
			require.Equal(t, http.StatusOK, code)
			assert.Equal(t, float64(6), body["total_submissions"], "rejected submission wrote nothing")

			code, body = s.call(t, http.MethodGet, "/api/analytics/dashboard", admin, nil)
			require.Equal(t, http.StatusOK, code)
			forecast := body["data"].(map[string]any)["forecast"].(map[string]any)
			assert.Equal(t, "2025-Spring", forecast["last_semester"])
			assert.Equal(t, "remain roughly stable", forecast["direction"])

			code, _ = s.call(t, http.MethodDelete, "/api/feedback/questions/"+strconv.FormatInt(courseQ, 10), admin, nil)
			require.Equal(t, http.StatusOK, code)

			code, body = s.call(t, http.MethodGet, "/api/analytics/course", alice, nil)
			require.Equal(t, http.StatusOK, code)
			assert.Empty(t, rows(t, body), "deleting a question removes its ratings")

			code, body = s.call(t, http.MethodGet, "/api/analytics/compare", alice, nil)
			require.Equal(t, http.StatusOK, code)
			assert.Empty(t, rows(t, body))

			code, body = s.call(t, http.MethodGet, "/api/feedback/submissions/student/7", alice, nil)
			require.Equal(t, http.StatusOK, code)
			mine := rows(t, body)
			require.Len(t, mine, 1)
			assert.Equal(t, "Explained well", mine[0]["question_text"])
		})
	}
}

func TestE2E_CourseLifecycle(t *testing.T) {
	for _, withCache := range []bool{false, true} {
		name := "uncached"
		if withCache {
			name = "cached"
		}
		t.Run(name, func(t *testing.T) {
			s := newStack(t, withCache)
			admin := s.token(t, 1, auth.RoleAdmin)
			lecturer := s.token(t, 42, auth.RoleInstructor)
			rival := s.token(t, 43, auth.RoleInstructor)
			student := s.token(t, 7, auth.RoleStudent)

			code, body := s.call(t, http.MethodPost, "/api/courses", lecturer, map[string]any{"course_name": "Compilers", "department": "CS", "semester": "2025-Spring"})
			require.Equal(t, http.StatusCreated, code)
			course := body["course"].(map[string]any)
			assert.Equal(t, "Pending", course["status"])
			assert.Equal(t, "User 42", course["instructor_name"])
			id := strconv.FormatInt(int64(course["course_id"].(float64)), 10)

			code, body = s.call(t, http.MethodGet, "/api/courses?status=Pending", admin, nil)
			require.Equal(t, http.StatusOK, code)
			assert.Len(t, rows(t, body), 1)

			code, body = s.call(t, http.MethodGet, "/api/courses/approved", student, nil)
			require.Equal(t, http.StatusOK, code)
			approved := rows(t, body)
			require.Len(t, approved, 2, "pending course is not offered to students")
			assert.Equal(t, "Algorithms", approved[0]["course_name"])
			assert.Equal(t, "Databases", approved[1]["course_name"])

			code, body = s.call(t, http.MethodGet, "/api/analytics/instructor/42/courses", lecturer, nil)
			require.Equal(t, http.StatusOK, code)
			assert.Equal(t, "No approved courses yet.", body["message"])

			code, _ = s.call(t, http.MethodPut, "/api/courses/"+id+"/status", admin, map[string]string{"status": "Pending"})
			require.Equal(t, http.StatusBadRequest, code)
			code, _ = s.call(t, http.MethodPut, "/api/courses/"+id+"/status", admin, map[string]string{"status": "Approved"})
			require.Equal(t, http.StatusOK, code)

			code, body = s.call(t, http.MethodPost, "/api/feedback/questions", admin, map[string]string{"section": "course", "question_text": "Content was clear"})
			require.Equal(t, http.StatusCreated, code)
			q := body["question"].(map[string]any)["question_id"]
			for _, rating := range []int{5, 4, 4} {
				code, _ = s.call(t, http.MethodPost, "/api/feedback/submit", student, map[string]any{
					"course_id":       course["course_id"],
					"instructor_name": "User 42",
					"ratings":         []map[string]any{{"question_id": q, "rating": rating}},
				})
				require.Equal(t, http.StatusCreated, code)
			}

			code, body = s.call(t, http.MethodGet, "/api/analytics/instructor/42/courses", lecturer, nil)
			require.Equal(t, http.StatusOK, code)
			report := body["data"].(map[string]any)
			assert.Equal(t, float64(1), report["total_courses"])
			mine := report["courses"].([]any)[0].(map[string]any)
			assert.Equal(t, 4.33, mine["avg_rating"])
			assert.Equal(t, float64(3), mine["feedback_count"])
			assert.Equal(t, map[string]any{"5": float64(1), "4": float64(2), "3": float64(0), "2": float64(0), "1": float64(0)}, mine["rating_distribution"])

			code, body = s.call(t, http.MethodGet, "/api/analytics/course", student, nil)
			require.Equal(t, http.StatusOK, code)
			require.Len(t, rows(t, body), 1)
			assert.Equal(t, "Compilers", rows(t, body)[0]["course_name"])

			code, _ = s.call(t, http.MethodPut, "/api/courses/"+id, rival, map[string]any{"course_name": "Mine now"})
			require.Equal(t, http.StatusForbidden, code)

			code, body = s.call(t, http.MethodPut, "/api/courses/"+id, lecturer, map[string]any{"course_name": "Compilers II"})
			require.Equal(t, http.StatusOK, code)
			assert.Equal(t, "Pending", body["course"].(map[string]any)["status"])

			code, body = s.call(t, http.MethodGet, "/api/analytics/course", student, nil)
			require.Equal(t, http.StatusOK, code)
			assert.Equal(t, "Compilers II", rows(t, body)[0]["course_name"], "renames reach the aggregates")

			code, body = s.call(t, http.MethodGet, "/api/courses/mine", lecturer, nil)
			require.Equal(t, http.StatusOK, code)
			assert.Equal(t, float64(1), body["total_courses"])

			code, _ = s.call(t, http.MethodDelete, "/api/courses/"+id, lecturer, nil)
			require.Equal(t, http.StatusOK, code)
			code, _ = s.call(t, http.MethodDelete, "/api/courses/"+id, lecturer, nil)
			require.Equal(t, http.StatusNotFound, code)

			code, body = s.call(t, http.MethodGet, "/api/analytics/course", student, nil)
			require.Equal(t, http.StatusOK, code)
			assert.Empty(t, rows(t, body), "deleting a course removes its ratings")
		})
	}
}
