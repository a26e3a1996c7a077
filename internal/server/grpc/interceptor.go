package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/timeboard/internal/common"
	"github.com/dmitrijs2005/timeboard/internal/server/sessions"
)

type ctxKey string

const workspaceKey ctxKey = "workspace"

// publicMethods can be called without a session token.
var publicMethods = map[string]bool{
	FullMethod(MethodOpenSession):    true,
	FullMethod(MethodListCategories): true,
}

func (s *GRPCServer) sessionInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {

	if publicMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	var token string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get(common.SessionTokenHeaderName)
		if len(values) > 0 {
			token = values[0]
		}
	}
	if len(token) == 0 {
		return nil, status.Error(codes.Unauthenticated, "missing session token")
	}

	ws, err := s.registry.Resolve(ctx, token)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, err.Error())
	}

	ctx = context.WithValue(ctx, workspaceKey, ws)

	return handler(ctx, req)
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	code := status.Code(err)
	args := []any{"method", info.FullMethod, "code", code.String(), "duration", time.Since(start)}
	switch code {
	case codes.OK:
		s.logger.Info(ctx, "grpc request", args...)
	case codes.Internal, codes.Unknown:
		s.logger.Error(ctx, "grpc request", append(args, "error", err)...)
	default:
		s.logger.Warn(ctx, "grpc request", append(args, "error", err)...)
	}

	return resp, err
}

func workspaceFrom(ctx context.Context) (*sessions.Workspace, error) {
	ws, ok := ctx.Value(workspaceKey).(*sessions.Workspace)
	if !ok || ws == nil {
		return nil, status.Error(codes.Unauthenticated, "no session")
	}
	return ws, nil
}
