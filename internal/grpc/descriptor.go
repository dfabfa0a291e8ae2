package grpc

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "eduinsight.analytics.v1.Analytics"

// AnalyticsServer is the server API for the Analytics service. Every method
// takes Empty and answers with the same {success, total_<axis>, data}
// envelope the REST surface returns, encoded as a Struct.
type AnalyticsServer interface {
	GetCourseAnalytics(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	GetInstructorAnalytics(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	GetComparisonAnalytics(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	GetDepartmentAnalytics(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	GetTrendAnalytics(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	GetForecastSummary(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	GetDashboard(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

type unaryCall func(AnalyticsServer, context.Context, *emptypb.Empty) (*structpb.Struct, error)

func unaryMethod(name string, call unaryCall) grpclib.MethodDesc {
	return grpclib.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
			in := new(emptypb.Empty)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(AnalyticsServer), ctx, in)
			}
			info := &grpclib.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + ServiceName + "/" + name,
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(AnalyticsServer), ctx, req.(*emptypb.Empty))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc describes the Analytics service for grpc.Server.RegisterService.
var ServiceDesc = grpclib.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AnalyticsServer)(nil),
	Methods: []grpclib.MethodDesc{
		unaryMethod("GetCourseAnalytics", AnalyticsServer.GetCourseAnalytics),
		unaryMethod("GetInstructorAnalytics", AnalyticsServer.GetInstructorAnalytics),
		unaryMethod("GetComparisonAnalytics", AnalyticsServer.GetComparisonAnalytics),
		unaryMethod("GetDepartmentAnalytics", AnalyticsServer.GetDepartmentAnalytics),
		unaryMethod("GetTrendAnalytics", AnalyticsServer.GetTrendAnalytics),
		unaryMethod("GetForecastSummary", AnalyticsServer.GetForecastSummary),
		unaryMethod("GetDashboard", AnalyticsServer.GetDashboard),
	},
	Streams:  []grpclib.StreamDesc{},
	Metadata: "eduinsight/analytics/v1/analytics.proto",
}

// AnalyticsClient calls the Analytics service over a client connection.
type AnalyticsClient struct {
	cc grpclib.ClientConnInterface
}

func NewAnalyticsClient(cc grpclib.ClientConnInterface) *AnalyticsClient {
	return &AnalyticsClient{cc: cc}
}

// Call invokes method by its short name, e.g. "GetDashboard".
func (c *AnalyticsClient) Call(ctx context.Context, method string, opts ...grpclib.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
