package client

import (
	"context"
)

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	Email            string
	Password         string
	FirstName        string
	LastName         string
	TwoFactorEnabled bool
}

// User is the identity behind an access token.
type User struct {
	ID               string
	Email            string
	FirstName        string
	LastName         string
	TwoFactorEnabled bool
}

// LoginResult is what Login and VerifyOTP hand back. Token is either an
// access token or, when a second factor is pending, an OTP challenge token.
type LoginResult struct {
	Token     string
	TokenType string
}

type Client interface {
	Close() error
	Register(ctx context.Context, in RegisterInput) (string, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	VerifyOTP(ctx context.Context, challengeToken, code string) (*LoginResult, error)
	WhoAmI(ctx context.Context, accessToken string) (*User, error)
	Ping(ctx context.Context) error
}
