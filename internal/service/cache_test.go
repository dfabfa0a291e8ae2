package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/godilite/eduinsight-server/internal/repository/models"
	"github.com/godilite/eduinsight-server/internal/service/mocks"
	"github.com/godilite/eduinsight-server/pkg/cache"
)

func countingCourseRepo(calls *atomic.Int32) *mocks.MockAnalyticsRepository {
	return &mocks.MockAnalyticsRepository{
		CourseRatingsFunc: func(ctx context.Context) ([]models.CourseRatingRow, error) {
			calls.Add(1)
			return []models.CourseRatingRow{{CourseID: 1, CourseName: "Algorithms", RatingTotals: totals(17, 4)}}, nil
		},
	}
}

func TestNewCachedAnalytics_PanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { NewCachedAnalytics(nil, &mocks.MockCacher{}, time.Minute, nil) })
	svc := NewAnalyticsService(&mocks.MockAnalyticsRepository{}, zap.NewNop())
	assert.Panics(t, func() { NewCachedAnalytics(svc, nil, time.Minute, nil) })
}

func TestCachedAnalytics_Hit(t *testing.T) {
	var repoCalls atomic.Int32
	cached := []CourseSummary{{CourseID: 5, CourseName: "From cache", AvgCourseRating: 3.1, TotalResponses: 9}}

	mc := &mocks.MockCacher{
		GenerationFunc: func(ctx context.Context, key string) (int64, error) {
			assert.Equal(t, "analytics:generation", key)
			return 3, nil
		},
		GetFunc: func(ctx context.Context, key string, dest any) error {
			assert.Equal(t, "analytics:course:g3", key)
			data, _ := json.Marshal(cached)
			return json.Unmarshal(data, dest)
		},
	}
	c := NewCachedAnalytics(NewAnalyticsService(countingCourseRepo(&repoCalls), zap.NewNop()), mc, time.Minute, zap.NewNop())

	got, err := c.GetCourseAnalytics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cached, got)
	assert.Zero(t, repoCalls.Load())
}

func TestCachedAnalytics_MissPopulatesCurrentGeneration(t *testing.T) {
	var repoCalls atomic.Int32
	setKeys := make(chan string, 1)

	mc := &mocks.MockCacher{
		GenerationFunc: func(ctx context.Context, key string) (int64, error) { return 7, nil },
		GetFunc: func(ctx context.Context, key string, dest any) error {
			return cache.ErrMiss
		},
		SetFunc: func(ctx context.Context, key string, value any, ttl time.Duration) error {
			assert.Greater(t, ttl, time.Duration(0))
			setKeys <- key
			return nil
		},
	}
	c := NewCachedAnalytics(NewAnalyticsService(countingCourseRepo(&repoCalls), zap.NewNop()), mc, 10*time.Minute, zap.NewNop())

	got, err := c.GetCourseAnalytics(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 4.25, got[0].AvgCourseRating)
	assert.Equal(t, int32(1), repoCalls.Load())

	select {
	case key := <-setKeys:
		assert.Equal(t, "analytics:course:g7", key)
	case <-time.After(2 * time.Second):
		t.Fatal("cache was not populated")
	}
}

func TestCachedAnalytics_GetErrorTreatedAsMiss(t *testing.T) {
	var repoCalls atomic.Int32
	mc := &mocks.MockCacher{
		GetFunc: func(ctx context.Context, key string, dest any) error {
			return errors.New("i/o timeout")
		},
	}
	c := NewCachedAnalytics(NewAnalyticsService(countingCourseRepo(&repoCalls), zap.NewNop()), mc, time.Minute, zap.NewNop())

	_, err := c.GetCourseAnalytics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), repoCalls.Load())
}

func TestCachedAnalytics_GenerationFailureBypassesCache(t *testing.T) {
	var repoCalls atomic.Int32
	mc := &mocks.MockCacher{
		GenerationFunc: func(ctx context.Context, key string) (int64, error) {
			return 0, errors.New("connection refused")
		},
		GetFunc: func(ctx context.Context, key string, dest any) error {
			t.Fatal("Get must not be called without a generation")
			return nil
		},
		SetFunc: func(ctx context.Context, key string, value any, ttl time.Duration) error {
			t.Error("Set must not be called without a generation")
			return nil
		},
	}
	c := NewCachedAnalytics(NewAnalyticsService(countingCourseRepo(&repoCalls), zap.NewNop()), mc, time.Minute, zap.NewNop())

	got, err := c.GetCourseAnalytics(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, int32(1), repoCalls.Load())
}

func TestCachedAnalytics_FetchErrorPropagates(t *testing.T) {
	repo := &mocks.MockAnalyticsRepository{
		CourseRatingsFunc: func(ctx context.Context) ([]models.CourseRatingRow, error) {
			return nil, errors.New("database is locked")
		},
	}
	mc := &mocks.MockCacher{
		GetFunc: func(ctx context.Context, key string, dest any) error { return cache.ErrMiss },
		SetFunc: func(ctx context.Context, key string, value any, ttl time.Duration) error {
			t.Error("errors must not be cached")
			return nil
		},
	}
	c := NewCachedAnalytics(NewAnalyticsService(repo, zap.NewNop()), mc, time.Minute, zap.NewNop())

	_, err := c.GetCourseAnalytics(context.Background())
	assert.ErrorIs(t, err, ErrStorageFailure)
}

func TestCachedAnalytics_Invalidate(t *testing.T) {
	var bumped string
	mc := &mocks.MockCacher{
		BumpFunc: func(ctx context.Context, key string) (int64, error) {
			bumped = key
			return 8, nil
		},
	}
	c := NewCachedAnalytics(NewAnalyticsService(&mocks.MockAnalyticsRepository{}, zap.NewNop()), mc, time.Minute, zap.NewNop())

	require.NoError(t, c.Invalidate(context.Background()))
	assert.Equal(t, "analytics:generation", bumped)

	mc.BumpFunc = func(ctx context.Context, key string) (int64, error) { return 0, errors.New("READONLY") }
	assert.ErrorContains(t, c.Invalidate(context.Background()), "bump generation")
}

func TestCachedAnalytics_FailedBumpBypassesCacheUntilRecovered(t *testing.T) {
	var repoCalls, gets atomic.Int32
	var bumpDown atomic.Bool
	bumpDown.Store(true)

	mc := &mocks.MockCacher{
		BumpFunc: func(ctx context.Context, key string) (int64, error) {
			if bumpDown.Load() {
				return 0, errors.New("READONLY")
			}
			return 9, nil
		},
		GenerationFunc: func(ctx context.Context, key string) (int64, error) { return 8, nil },
		GetFunc: func(ctx context.Context, key string, dest any) error {
			gets.Add(1)
			data, _ := json.Marshal([]CourseSummary{{CourseID: 1, CourseName: "Old totals"}})
			return json.Unmarshal(data, dest)
		},
	}
	c := NewCachedAnalytics(NewAnalyticsService(countingCourseRepo(&repoCalls), zap.NewNop()), mc, time.Minute, zap.NewNop())
	ctx := context.Background()

	require.Error(t, c.Invalidate(ctx))
	assert.True(t, c.Stale())

	got, err := c.GetCourseAnalytics(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Algorithms", got[0].CourseName, "stale cache must not be served")
	assert.Equal(t, int32(1), repoCalls.Load())
	assert.Zero(t, gets.Load())

	bumpDown.Store(false)
	got, err = c.GetCourseAnalytics(ctx)
	require.NoError(t, err)
	assert.False(t, c.Stale())
	assert.Equal(t, int32(1), gets.Load(), "cache is read again once the bump lands")
	assert.Equal(t, "Old totals", got[0].CourseName)
}

func TestAddTTLJitter(t *testing.T) {
	assert.Equal(t, time.Duration(0), addTTLJitter(0))
	for i := 0; i < 50; i++ {
		got := addTTLJitter(10 * time.Minute)
		assert.GreaterOrEqual(t, got, 10*time.Minute-15*time.Second)
		assert.LessOrEqual(t, got, 10*time.Minute+15*time.Second)
		assert.Greater(t, addTTLJitter(time.Second), time.Duration(0))
	}
}
