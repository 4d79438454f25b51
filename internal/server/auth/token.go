// Package auth implements the token engine: minting, decoding and verifying
// the signed bearer tokens handed out by the authentication service.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// TokenType tags a token with the step of the login flow it proves.
// Tokens of different types are never interchangeable.
type TokenType string

const (
	// TokenTypeOTP is issued after a correct password when two-factor
	// authentication is enabled. It only allows OTP confirmation.
	TokenTypeOTP TokenType = "otp_temp_token"
	// TokenTypeAccess proves a completed login.
	TokenTypeAccess TokenType = "access_token"
)

// Claims is the claim set carried by every token. OTPHash is set only on
// OTP challenge tokens and holds a one-way hash of the code, never the code.
type Claims struct {
	jwt.RegisteredClaims
	Type    TokenType `json:"type"`
	OTPHash string    `json:"otp_hash,omitempty"`
}

// TokenEngine owns the signing secret and the token format.
type TokenEngine struct {
	secret     []byte
	method     jwt.SigningMethod
	defaultTTL time.Duration
	now        func() time.Time
}

// NewTokenEngine returns an engine signing with the HMAC algorithm named by
// algorithm ("HS256", "HS384" or "HS512"). defaultTTL is used by Mint when
// no explicit lifetime is given.
func NewTokenEngine(secret []byte, algorithm string, defaultTTL time.Duration) (*TokenEngine, error) {
	if len(secret) == 0 {
		return nil, errors.New("token secret must not be empty")
	}
	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}
	if defaultTTL <= 0 {
		return nil, errors.New("default token lifetime must be positive")
	}
	return &TokenEngine{
		secret:     secret,
		method:     method,
		defaultTTL: defaultTTL,
		now:        time.Now,
	}, nil
}

// Mint signs claims with an expiry of now+ttl. A non-positive ttl means the
// engine's default lifetime. Any expiry already present in claims is replaced.
func (e *TokenEngine) Mint(claims Claims, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = e.defaultTTL
	}
	claims.ExpiresAt = jwt.NewNumericDate(e.now().Add(ttl))

	token, err := jwt.NewWithClaims(e.method, claims).SignedString(e.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Decode verifies signature, algorithm and expiry of tokenString and returns
// its claims. Verification is all-or-nothing: an expired token yields
// common.ErrTokenExpired, anything else wrong yields common.ErrInvalidToken.
func (e *TokenEngine) Decode(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return e.secret, nil },
		jwt.WithValidMethods([]string{e.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(e.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
