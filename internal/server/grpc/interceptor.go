package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/shoplist/internal/common"
	"github.com/dmitrijs2005/shoplist/internal/rpc"
	"github.com/dmitrijs2005/shoplist/internal/server/auth"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const (
	UserIDKey    ctxKey = "userID"
	RequestIDKey ctxKey = "requestID"
)

// publicMethods may be called without an access token.
var publicMethods = map[string]bool{
	rpc.FullMethod(rpc.MethodPing):         true,
	rpc.FullMethod(rpc.MethodSignUp):       true,
	rpc.FullMethod(rpc.MethodSignIn):       true,
	rpc.FullMethod(rpc.MethodRefreshToken): true,
}

func userIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(UserIDKey).(string)
	return id, ok && id != ""
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if publicMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	var accessToken string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(common.AccessTokenHeaderName); len(values) > 0 {
			accessToken = values[0]
		}
	}
	if accessToken == "" {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	userID, err := auth.GetUserIDFromToken(accessToken, s.jwtSecret)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			return nil, status.Error(codes.Unauthenticated, common.ErrTokenExpired.Error())
		}
		return nil, status.Error(codes.Unauthenticated, "invalid token")
	}

	return handler(context.WithValue(ctx, UserIDKey, userID), req)
}

// loggingInterceptor tags each call with a request id, echoes it in the
// response header and logs the outcome.
func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	requestID := uuid.NewString()
	ctx = context.WithValue(ctx, RequestIDKey, requestID)
	_ = grpc.SetHeader(ctx, metadata.Pairs(common.RequestIDHeaderName, requestID))

	start := time.Now()
	resp, err := handler(ctx, req)

	code := status.Code(err)
	args := []any{
		"request_id", requestID,
		"method", info.FullMethod,
		"duration", time.Since(start),
		"code", code.String(),
	}
	switch code {
	case codes.OK:
		s.logger.Info(ctx, "request", args...)
	case codes.Internal, codes.Unknown, codes.Unavailable:
		s.logger.Error(ctx, "request", append(args, "error", err.Error())...)
	default:
		s.logger.Warn(ctx, "request", append(args, "error", status.Convert(err).Message())...)
	}
	return resp, err
}
