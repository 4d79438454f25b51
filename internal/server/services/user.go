// Package services contains server-side business logic. This file implements
// UserService, the credential authenticator: registration, password login
// with an optional one-time-password step, and access token validation.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/cryptox"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/otp"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

// RegisterParams is the input of Register. Password is plaintext and is
// hashed before it reaches the store.
type RegisterParams struct {
	Email            string
	Password         string
	FirstName        string
	LastName         string
	TwoFactorEnabled bool
}

// UserService sequences credential checks and token issuance. It holds no
// per-request state; the login state lives in the tokens it mints.
type UserService struct {
	db          dbx.DBTX
	repomanager repomanager.RepositoryManager
	tokens      *auth.TokenEngine
	otpSender   otp.Sender
	otpCodes    *otp.Generator
	passwords   cryptox.Hasher
	otpHasher   cryptox.Hasher
	logger      logging.Logger

	otpTokenValidityDuration time.Duration
	dummyPasswordHash        string
}

// Option customizes a UserService.
type Option func(*UserService)

// WithPasswordHasher replaces the default argon2id password hasher.
func WithPasswordHasher(h cryptox.Hasher) Option {
	return func(s *UserService) { s.passwords = h }
}

// WithOTPHasher replaces the default bcrypt OTP hasher.
func WithOTPHasher(h cryptox.Hasher) Option {
	return func(s *UserService) { s.otpHasher = h }
}

// NewUserService constructs a UserService using repositories, the token
// engine, an OTP sender and server config.
func NewUserService(
	db dbx.DBTX,
	m repomanager.RepositoryManager,
	tokens *auth.TokenEngine,
	sender otp.Sender,
	cfg *config.Config,
	logger logging.Logger,
	opts ...Option,
) (*UserService, error) {
	codes, err := otp.NewGenerator(cfg.OTPAlphabet, cfg.OTPLength)
	if err != nil {
		return nil, err
	}

	s := &UserService{
		db:                       db,
		repomanager:              m,
		tokens:                   tokens,
		otpSender:                sender,
		otpCodes:                 codes,
		passwords:                cryptox.NewArgon2Hasher(cryptox.DefaultArgon2Params),
		otpHasher:                cryptox.NewBcryptHasher(bcrypt.DefaultCost),
		logger:                   logger.With("module", "user_service"),
		otpTokenValidityDuration: cfg.OTPTokenValidityDuration,
	}
	for _, opt := range opts {
		opt(s)
	}

	if l, ok := s.otpHasher.(interface{ MaxInputLen() int }); ok && codes.MaxBytes() > l.MaxInputLen() {
		return nil, fmt.Errorf("otp codes of up to %d bytes exceed the otp hasher limit of %d", codes.MaxBytes(), l.MaxInputLen())
	}

	// Unknown emails are checked against this hash so that they cost the
	// same as a wrong password.
	s.dummyPasswordHash, err = s.passwords.Hash("gophauth-dummy-password")
	if err != nil {
		return nil, fmt.Errorf("error preparing dummy hash: %w", err)
	}

	return s, nil
}

// Register hashes the password and stores a new user, returning its id.
// A duplicate email yields common.ErrorAlreadyExists.
func (s *UserService) Register(ctx context.Context, p RegisterParams) (string, error) {
	if strings.TrimSpace(p.Email) == "" || p.Password == "" {
		return "", fmt.Errorf("%w: email and password are required", common.ErrorValidation)
	}

	hash, err := s.passwords.Hash(p.Password)
	if err != nil {
		return "", fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		Email:            p.Email,
		PasswordHash:     hash,
		FirstName:        p.FirstName,
		LastName:         p.LastName,
		TwoFactorEnabled: p.TwoFactorEnabled,
	}

	repo := s.repomanager.Users(s.db)
	u, err := repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return "", common.ErrorAlreadyExists
		}
		return "", fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info(ctx, "user registered", "user_id", u.ID, "two_factor", u.TwoFactorEnabled)
	return u.ID, nil
}

// Authenticate checks email and password. Without two-factor it returns an
// access token; with two-factor it sends a fresh code to the user's email
// and returns an OTP challenge token embedding the code's hash.
// Unknown email and wrong password both yield common.ErrorInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (string, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_, _ = s.passwords.Verify(password, s.dummyPasswordHash)
			return "", common.ErrorInvalidCredentials
		}
		return "", fmt.Errorf("error searching user: %w", err)
	}

	ok, err := s.passwords.Verify(password, user.PasswordHash)
	if err != nil {
		return "", fmt.Errorf("error verifying password: %w", err)
	}
	if !ok {
		return "", common.ErrorInvalidCredentials
	}

	if !user.TwoFactorEnabled {
		return s.generateAccessToken(user.ID)
	}

	return s.startOTPChallenge(ctx, user)
}

// VerifyOTP exchanges an OTP challenge token plus the code the user received
// for an access token. Every failure is common.ErrorInvalidCredentials.
func (s *UserService) VerifyOTP(ctx context.Context, creds auth.Credentials, code string) (string, error) {
	claims, err := s.decodeBearer(creds, auth.TokenTypeOTP)
	if err != nil {
		return "", err
	}

	ok, err := s.otpHasher.Verify(code, claims.OTPHash)
	if err != nil {
		s.logger.Warn(ctx, "otp hash verification failed", "error", err)
		return "", common.ErrorInvalidCredentials
	}
	if !ok {
		return "", common.ErrorInvalidCredentials
	}

	return s.generateAccessToken(claims.Subject)
}

// VerifyAccessToken resolves an access token back to its user. A user that
// no longer exists is reported as common.ErrorInvalidCredentials.
func (s *UserService) VerifyAccessToken(ctx context.Context, creds auth.Credentials) (*models.User, error) {
	claims, err := s.decodeBearer(creds, auth.TokenTypeAccess)
	if err != nil {
		return nil, err
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorInvalidCredentials
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	return user, nil
}

// decodeBearer folds wrong scheme, bad signature, expiry, malformed input and
// wrong token type into a single common.ErrorInvalidCredentials.
func (s *UserService) decodeBearer(creds auth.Credentials, want auth.TokenType) (*auth.Claims, error) {
	if !creds.IsBearer() {
		return nil, common.ErrorInvalidCredentials
	}

	claims, err := s.tokens.Decode(creds.Token)
	if err != nil {
		return nil, common.ErrorInvalidCredentials
	}

	if claims.Type != want || claims.Subject == "" {
		return nil, common.ErrorInvalidCredentials
	}

	return claims, nil
}

func (s *UserService) startOTPChallenge(ctx context.Context, user *models.User) (string, error) {
	code, err := s.otpCodes.Generate()
	if err != nil {
		return "", fmt.Errorf("error generating otp: %w", err)
	}

	hash, err := s.otpHasher.Hash(code)
	if err != nil {
		return "", fmt.Errorf("error hashing otp: %w", err)
	}

	// Dispatch is fire-and-forget: a failed send is logged and the
	// challenge is still issued so the user can ask for a new login.
	if err := s.otpSender.Send(ctx, user.Email, code); err != nil {
		s.logger.Warn(ctx, "otp dispatch failed", "user_id", user.ID, "error", err)
	}

	claims := auth.Claims{Type: auth.TokenTypeOTP, OTPHash: hash}
	claims.Subject = user.ID

	token, err := s.tokens.Mint(claims, s.otpTokenValidityDuration)
	if err != nil {
		return "", fmt.Errorf("error minting otp token: %w", err)
	}
	return token, nil
}

func (s *UserService) generateAccessToken(userID string) (string, error) {
	claims := auth.Claims{Type: auth.TokenTypeAccess}
	claims.Subject = userID

	token, err := s.tokens.Mint(claims, 0)
	if err != nil {
		return "", fmt.Errorf("error minting access token: %w", err)
	}
	return token, nil
}
