package interceptors

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/narwhalmedia/phimdash/internal/logger"
)

// RequestIDKey is the metadata key carrying the request id.
const RequestIDKey = "x-request-id"

type requestIDCtxKey struct{}

// RequestIDFrom returns the request id attached by the logging interceptors.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDCtxKey{}).(string)
	return id
}

// UnaryLoggingInterceptor logs unary RPC calls
func UnaryLoggingInterceptor(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		ctx, requestID := withRequestID(ctx)

		resp, err := handler(ctx, req)

		logCall(logger.WithContext(log, requestID), "grpc request", info.FullMethod, time.Since(start), err)
		return resp, err
	}
}

// StreamLoggingInterceptor logs streaming RPC calls
func StreamLoggingInterceptor(log *zap.Logger) grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()
		ctx, requestID := withRequestID(ss.Context())

		err := handler(srv, &contextStream{ServerStream: ss, ctx: ctx})

		reqLogger := logger.WithContext(log, requestID).With(
			zap.Bool("client_stream", info.IsClientStream),
			zap.Bool("server_stream", info.IsServerStream),
		)
		logCall(reqLogger, "grpc stream", info.FullMethod, time.Since(start), err)
		return err
	}
}

func logCall(log *zap.Logger, msg, method string, duration time.Duration, err error) {
	code := status.Code(err)
	fields := []zap.Field{
		zap.String("method", method),
		zap.Duration("duration", duration),
		zap.String("code", code.String()),
	}
	switch code {
	case codes.OK, codes.Canceled, codes.NotFound, codes.InvalidArgument:
		log.Info(msg, append(fields, zap.Error(err))...)
	default:
		log.Warn(msg, append(fields, zap.Error(err))...)
	}
}

// withRequestID reads the incoming request id or generates one, stores it
// on ctx and echoes it back as a response header.
func withRequestID(ctx context.Context) (context.Context, string) {
	var requestID string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(RequestIDKey); len(values) > 0 {
			requestID = values[0]
		}
	}
	if requestID == "" {
		requestID = uuid.New().String()
	}
	_ = grpc.SetHeader(ctx, metadata.Pairs(RequestIDKey, requestID))
	return context.WithValue(ctx, requestIDCtxKey{}, requestID), requestID
}

// contextStream overrides the stream context with the request-scoped one.
type contextStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *contextStream) Context() context.Context {
	return s.ctx
}
