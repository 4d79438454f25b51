package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	pb "github.com/dmitrijs2005/gophauth/internal/proto"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const credentialsKey ctxKey = "credentials"

// protectedMethods need an authorization header.
var protectedMethods = map[string]struct{}{
	pb.AuthService_VerifyOTP_FullMethodName:     {},
	pb.AuthService_ValidateToken_FullMethodName: {},
}

func firstMetadataValue(ctx context.Context, key string) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get(key)
		if len(values) > 0 {
			return values[0]
		}
	}
	return ""
}

// requestLoggingInterceptor tags every call with a request id (taken from the
// caller when present) and logs its outcome.
func (s *GRPCServer) requestLoggingInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	requestID := firstMetadataValue(ctx, common.RequestIDHeaderName)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	_ = grpc.SetHeader(ctx, metadata.Pairs(common.RequestIDHeaderName, requestID))

	start := time.Now()
	resp, err := handler(ctx, req)

	s.logger.Info(ctx, "request",
		"method", info.FullMethod,
		"request_id", requestID,
		"code", status.Code(err).String(),
		"duration", time.Since(start),
	)

	return resp, err
}

// authorizationInterceptor parses the authorization header of protected
// methods and puts the credentials into the context. Scheme and token are
// judged later by the service.
func (s *GRPCServer) authorizationInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {

	if _, ok := protectedMethods[info.FullMethod]; ok {

		header := firstMetadataValue(ctx, common.AuthorizationHeaderName)
		if len(header) == 0 {
			return nil, status.Error(codes.Unauthenticated, "missing authorization")
		}

		creds, err := auth.ParseAuthorization(header)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, "invalid credentials")
		}

		ctx = context.WithValue(ctx, credentialsKey, creds)
	}

	return handler(ctx, req)
}

func credentialsFromContext(ctx context.Context) (auth.Credentials, bool) {
	creds, ok := ctx.Value(credentialsKey).(auth.Credentials)
	return creds, ok
}
