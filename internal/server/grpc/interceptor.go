package grpc

import (
	"context"
	"slices"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const accessKey ctxKey = "access"

// protected lists the methods that need a live access token.
var protected = map[string]bool{
	FullMethod(MethodSignOut):        true,
	FullMethod(MethodInfo):           true,
	FullMethod(MethodUpdateInfo):     true,
	FullMethod(MethodChangePassword): true,
	FullMethod(MethodWithdraw):       true,
}

var allowedRoles = []models.Role{models.RoleManagerMajor, models.RoleManagerMinor, models.RoleUser}

// bearerFromMetadata reads "authorization: Bearer <token>".
func bearerFromMetadata(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", common.ErrMissingToken
	}
	values := md.Get(common.AuthorizationHeaderName)
	if len(values) == 0 {
		return "", common.ErrMissingToken
	}
	return auth.ExtractBearer(values[0])
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if !protected[info.FullMethod] {
		return handler(ctx, req)
	}

	token, err := bearerFromMetadata(ctx)
	if err != nil {
		return nil, toStatus(err)
	}

	rec, err := s.sessions.Authenticate(ctx, token)
	if err != nil {
		return nil, toStatus(err)
	}
	if !slices.Contains(allowedRoles, rec.Role) {
		return nil, toStatus(common.ErrPermissionDenied)
	}

	return handler(context.WithValue(ctx, accessKey, rec), req)
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	s.logger.Info(ctx, "rpc",
		"method", info.FullMethod,
		"code", status.Code(err).String(),
		"duration", time.Since(start),
	)
	return resp, err
}

func accessFrom(ctx context.Context) models.AccessRecord {
	rec, _ := ctx.Value(accessKey).(models.AccessRecord)
	return rec
}
