package client

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	pb "github.com/dmitrijs2005/gophauth/internal/proto"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type GRPCClient struct {
	endpointURL string
	timeout     time.Duration
	conn        *grpc.ClientConn
	client      pb.AuthServiceClient
}

func withAuthorization(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+token)

	return metadata.NewOutgoingContext(ctx, md)
}

// requestIDInterceptor attaches a fresh request id unless the caller already
// set one.
func (s *GRPCClient) requestIDInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {

	md, _ := metadata.FromOutgoingContext(ctx)
	if len(md.Get(common.RequestIDHeaderName)) == 0 {
		ctx = metadata.AppendToOutgoingContext(ctx, common.RequestIDHeaderName, uuid.NewString())
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	return invoker(ctx, method, req, reply, cc, opts...)
}

func NewGRPCClient(endpointURL string, timeout time.Duration, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, timeout: timeout}
	err := c.InitGRPCClient(opts...)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient(opts ...grpc.DialOption) error {

	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.requestIDInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(s.endpointURL, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = pb.NewAuthServiceClient(conn)
	return nil
}

func (s *GRPCClient) Register(ctx context.Context, in RegisterInput) (string, error) {

	req := &pb.RegisterRequest{
		Email:            in.Email,
		Password:         in.Password,
		FirstName:        in.FirstName,
		LastName:         in.LastName,
		TwoFactorEnabled: in.TwoFactorEnabled,
	}

	resp, err := s.client.Register(ctx, req)
	if err != nil {
		return "", s.mapError(err)
	}

	return resp.Id, nil
}

func (s *GRPCClient) Login(ctx context.Context, email, password string) (*LoginResult, error) {

	req := &pb.LoginRequest{Email: email, Password: password}

	resp, err := s.client.Login(ctx, req)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &LoginResult{Token: resp.AccessToken, TokenType: resp.TokenType}, nil
}

func (s *GRPCClient) VerifyOTP(ctx context.Context, challengeToken, code string) (*LoginResult, error) {

	ctx = withAuthorization(ctx, challengeToken)

	resp, err := s.client.VerifyOTP(ctx, &pb.VerifyOTPRequest{Otp: code})
	if err != nil {
		return nil, s.mapError(err)
	}

	return &LoginResult{Token: resp.AccessToken, TokenType: resp.TokenType}, nil
}

func (s *GRPCClient) WhoAmI(ctx context.Context, accessToken string) (*User, error) {

	ctx = withAuthorization(ctx, accessToken)

	resp, err := s.client.ValidateToken(ctx, &pb.ValidateTokenRequest{})
	if err != nil {
		return nil, s.mapError(err)
	}

	u := resp.GetUser()
	if u == nil {
		return nil, fmt.Errorf("rpc error: empty user in response")
	}

	return &User{
		ID:               u.Id,
		Email:            u.Email,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		TwoFactorEnabled: u.TwoFactorEnabled,
	}, nil
}

func (s *GRPCClient) Ping(ctx context.Context) error {

	req := &pb.PingRequest{}

	resp, err := s.client.Ping(ctx, req)
	if err != nil {
		return s.mapError(err)
	}

	if resp.Status != "OK" {
		return ErrUnavailable
	}

	return nil

}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.AlreadyExists:
		return ErrAlreadyExists
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", ErrInvalidInput, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
var _ Client = (*GRPCClient)(nil)
