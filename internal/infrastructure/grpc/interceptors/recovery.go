package interceptors

import (
	"context"
	"runtime/debug"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

// errPanic is what callers see; the panic value only goes to the log.
var errPanic = status.Error(codes.Internal, "internal server error")

// UnaryRecoveryInterceptor turns handler panics into codes.Internal.
func UnaryRecoveryInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		defer recoverCall(ctx, logger, info.FullMethod, "unary", &err)
		return handler(ctx, req)
	}
}

// StreamRecoveryInterceptor is the streaming counterpart of
// UnaryRecoveryInterceptor.
func StreamRecoveryInterceptor(logger *zap.Logger) grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) (err error) {
		defer recoverCall(ss.Context(), logger, info.FullMethod, "stream", &err)
		return handler(srv, ss)
	}
}

// recoverCall must be deferred directly so recover sees the panic.
func recoverCall(ctx context.Context, logger *zap.Logger, method, kind string, err *error) {
	r := recover()
	if r == nil {
		return
	}

	fields := []zap.Field{
		zap.String("request_id", RequestIDFrom(ctx)),
		zap.String("method", method),
		zap.String("kind", kind),
		zap.Any("panic", r),
		zap.ByteString("stack", debug.Stack()),
	}
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		fields = append(fields, zap.String("peer", p.Addr.String()))
	}
	logger.Error("grpc handler panicked", fields...)
	*err = errPanic
}
