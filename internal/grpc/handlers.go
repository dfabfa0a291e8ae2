package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/godilite/eduinsight-server/internal/service"
)

const defaultGRPCTimeout = 10 * time.Second

type GRPCHandlers struct {
	analytics AnalyticsService
	logger    *zap.Logger
}

var _ AnalyticsServer = (*GRPCHandlers)(nil)

// NewGRPCHandlers initializes the gRPC handlers. Caching, when enabled, lives
// in the AnalyticsService passed in.
func NewGRPCHandlers(analytics AnalyticsService, logger *zap.Logger) *GRPCHandlers {
	if analytics == nil {
		panic("nil AnalyticsService provided to NewGRPCHandlers")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GRPCHandlers{
		analytics: analytics,
		logger:    logger.Named("grpc-handler"),
	}
}

func (s *GRPCHandlers) handleError(ctx context.Context, op string, err error) error {
	switch ctx.Err() {
	case context.Canceled:
		s.logger.Warn("request canceled", zap.String("op", op))
		return status.Error(codes.Canceled, "request canceled")
	case context.DeadlineExceeded:
		s.logger.Warn("request timeout", zap.String("op", op))
		return status.Error(codes.DeadlineExceeded, "request timed out")
	}

	switch {
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrInvalidSection):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, service.ErrQuestionNotFound):
		return status.Error(codes.NotFound, "question not found")
	case errors.Is(err, service.ErrStorageFailure):
		s.logger.Error("storage failure", zap.String("op", op), zap.Error(err))
		return status.Error(codes.Internal, "database error")
	default:
		s.logger.Error("unexpected error", zap.String("op", op), zap.Error(err))
		return status.Errorf(codes.Internal, "%s failed: %v", op, err)
	}
}

// toStruct encodes v through its JSON tags so RPC clients see the same field
// names as REST clients.
func toStruct(v map[string]any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	var generic map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return structpb.NewStruct(generic)
}

func envelope[T any](axis string, rows []T) map[string]any {
	if rows == nil {
		rows = []T{}
	}
	return map[string]any{
		"success":       true,
		"total_" + axis: len(rows),
		"data":          rows,
	}
}

// listRPC runs fetch under the default timeout and wraps the result in the
// list envelope.
func listRPC[T any](ctx context.Context, s *GRPCHandlers, op, axis string, fetch func(context.Context) ([]T, error)) (*structpb.Struct, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	rows, err := fetch(ctx)
	if err != nil {
		return nil, s.handleError(ctx, op, err)
	}
	out, err := toStruct(envelope(axis, rows))
	if err != nil {
		return nil, s.handleError(ctx, op, err)
	}
	return out, nil
}

func (s *GRPCHandlers) GetCourseAnalytics(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return listRPC(ctx, s, "GetCourseAnalytics", "courses", s.analytics.GetCourseAnalytics)
}

func (s *GRPCHandlers) GetInstructorAnalytics(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return listRPC(ctx, s, "GetInstructorAnalytics", "instructors", s.analytics.GetInstructorAnalytics)
}

func (s *GRPCHandlers) GetComparisonAnalytics(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return listRPC(ctx, s, "GetComparisonAnalytics", "pairs", s.analytics.GetComparisonAnalytics)
}

func (s *GRPCHandlers) GetDepartmentAnalytics(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return listRPC(ctx, s, "GetDepartmentAnalytics", "departments", s.analytics.GetDepartmentAnalytics)
}

func (s *GRPCHandlers) GetTrendAnalytics(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return listRPC(ctx, s, "GetTrendAnalytics", "semesters", s.analytics.GetTrendAnalytics)
}

// GetForecastSummary answers with data set to null when no semester is
// labelled.
func (s *GRPCHandlers) GetForecastSummary(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	summary, err := s.analytics.GetForecastSummary(ctx)
	if err != nil {
		return nil, s.handleError(ctx, "GetForecastSummary", err)
	}
	out, err := toStruct(map[string]any{"success": true, "data": summary})
	if err != nil {
		return nil, s.handleError(ctx, "GetForecastSummary", err)
	}
	return out, nil
}

func (s *GRPCHandlers) GetDashboard(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	d, err := s.analytics.GetDashboard(ctx)
	if err != nil {
		return nil, s.handleError(ctx, "GetDashboard", err)
	}
	out, err := toStruct(map[string]any{"success": true, "data": d})
	if err != nil {
		return nil, s.handleError(ctx, "GetDashboard", err)
	}
	return out, nil
}
