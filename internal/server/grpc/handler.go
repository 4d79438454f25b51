package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophauth/internal/common"
	pb "github.com/dmitrijs2005/gophauth/internal/proto"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// tokenTypeBearer is reported to clients alongside every issued token.
const tokenTypeBearer = "bearer"

type userSvc interface {
	Register(ctx context.Context, p services.RegisterParams) (string, error)
	Authenticate(ctx context.Context, email, password string) (string, error)
	VerifyOTP(ctx context.Context, creds auth.Credentials, otp string) (string, error)
	VerifyAccessToken(ctx context.Context, creds auth.Credentials) (*models.User, error)
}

type registerPayload struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

func (r registerPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
		validation.Field(&r.FirstName, validation.Length(0, 200)),
		validation.Field(&r.LastName, validation.Length(0, 200)),
	)
}

type loginPayload struct {
	Email    string
	Password string
}

func (r loginPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

type otpPayload struct {
	OTP string
}

func (r otpPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.OTP, validation.Required),
	)
}

// toStatus maps service errors onto gRPC codes. Unexpected errors are logged
// and hidden behind a generic message.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrorAlreadyExists):
		return status.Error(codes.AlreadyExists, "user already exists")
	case errors.Is(err, common.ErrorInvalidCredentials):
		return status.Error(codes.Unauthenticated, "invalid credentials")
	case errors.Is(err, common.ErrorValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		s.logger.Error(ctx, "request failed", "error", err)
		return status.Error(codes.Internal, "internal error")
	}
}

func invalidArgument(err error) error {
	return status.Error(codes.InvalidArgument, err.Error())
}

func (s *GRPCServer) Register(ctx context.Context, req *pb.RegisterRequest) (*pb.RegisterResponse, error) {

	s.logger.Info(ctx, "Registration request")

	payload := registerPayload{Email: req.Email, Password: req.Password, FirstName: req.FirstName, LastName: req.LastName}
	if err := payload.Validate(); err != nil {
		return nil, invalidArgument(err)
	}

	id, err := s.users.Register(ctx, services.RegisterParams{
		Email:            req.Email,
		Password:         req.Password,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		TwoFactorEnabled: req.TwoFactorEnabled,
	})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	s.logger.Info(ctx, "Registered", "user_id", id)
	return &pb.RegisterResponse{Id: id}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *pb.LoginRequest) (*pb.LoginResponse, error) {

	payload := loginPayload{Email: req.Email, Password: req.Password}
	if err := payload.Validate(); err != nil {
		return nil, invalidArgument(err)
	}

	token, err := s.users.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &pb.LoginResponse{AccessToken: token, TokenType: tokenTypeBearer}, nil
}

func (s *GRPCServer) VerifyOTP(ctx context.Context, req *pb.VerifyOTPRequest) (*pb.LoginResponse, error) {

	creds, ok := credentialsFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing authorization")
	}

	payload := otpPayload{OTP: req.Otp}
	if err := payload.Validate(); err != nil {
		return nil, invalidArgument(err)
	}

	token, err := s.users.VerifyOTP(ctx, creds, req.Otp)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &pb.LoginResponse{AccessToken: token, TokenType: tokenTypeBearer}, nil
}

func (s *GRPCServer) ValidateToken(ctx context.Context, req *pb.ValidateTokenRequest) (*pb.ValidateTokenResponse, error) {

	creds, ok := credentialsFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing authorization")
	}

	user, err := s.users.VerifyAccessToken(ctx, creds)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &pb.ValidateTokenResponse{User: &pb.User{
		Id:               user.ID,
		Email:            user.Email,
		FirstName:        user.FirstName,
		LastName:         user.LastName,
		TwoFactorEnabled: user.TwoFactorEnabled,
	}}, nil
}

func (s *GRPCServer) Ping(ctx context.Context, req *pb.PingRequest) (*pb.PingResponse, error) {

	return &pb.PingResponse{Status: "OK"}, nil

}
