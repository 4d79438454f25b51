package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, secret string) *TokenEngine {
	t.Helper()
	e, err := NewTokenEngine([]byte(secret), "HS256", time.Hour)
	require.NoError(t, err)
	return e
}

func fixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}

func TestNewTokenEngine_Validation(t *testing.T) {
	_, err := NewTokenEngine(nil, "HS256", time.Hour)
	assert.Error(t, err)

	_, err = NewTokenEngine([]byte("k"), "RS256", time.Hour)
	assert.Error(t, err)

	_, err = NewTokenEngine([]byte("k"), "none", time.Hour)
	assert.Error(t, err)

	_, err = NewTokenEngine([]byte("k"), "HS512", 0)
	assert.Error(t, err)

	e, err := NewTokenEngine([]byte("k"), "HS384", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "HS384", e.method.Alg())
}

func TestMintAndDecode_AccessToken(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, "super-secret")

	tok, err := e.Mint(Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-123"},
		Type:             TokenTypeAccess,
	}, 0)
	require.NoError(t, err)

	claims, err := e.Decode(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, TokenTypeAccess, claims.Type)
	assert.Empty(t, claims.OTPHash)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestMintAndDecode_OTPTokenCarriesHash(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, "super-secret")

	tok, err := e.Mint(Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"},
		Type:             TokenTypeOTP,
		OTPHash:          "$2a$10$hash",
	}, 2*time.Minute)
	require.NoError(t, err)

	claims, err := e.Decode(tok)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeOTP, claims.Type)
	assert.Equal(t, "$2a$10$hash", claims.OTPHash)
	assert.WithinDuration(t, time.Now().Add(2*time.Minute), claims.ExpiresAt.Time, 5*time.Second)
}

func TestMint_DeterministicForSameExpiry(t *testing.T) {
	e := newTestEngine(t, "k")
	e.now = fixedClock(time.Unix(1_700_000_000, 0))

	c := Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "1"}, Type: TokenTypeAccess}
	a, err := e.Mint(c, time.Minute)
	require.NoError(t, err)
	b, err := e.Mint(c, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	e.now = fixedClock(time.Unix(1_700_000_001, 0))
	d, err := e.Mint(c, time.Minute)
	require.NoError(t, err)
	assert.NotEqual(t, a, d)
}

func TestDecode_Expired(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, "secret")

	issued := time.Now().Add(-2 * time.Hour)
	e.now = fixedClock(issued)
	tok, err := e.Mint(Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"}, Type: TokenTypeAccess}, time.Minute)
	require.NoError(t, err)

	e.now = time.Now
	_, err = e.Decode(tok)
	assert.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestDecode_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := newTestEngine(t, "right-secret").Mint(Claims{Type: TokenTypeAccess}, time.Hour)
	require.NoError(t, err)

	_, err = newTestEngine(t, "wrong-secret").Decode(tok)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestDecode_TamperedPayload(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, "k")

	tok, err := e.Mint(Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "1"}, Type: TokenTypeOTP}, time.Hour)
	require.NoError(t, err)

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		Type:             TokenTypeAccess,
	}).SignedString([]byte("k"))
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	forgedParts := strings.Split(forged, ".")
	spliced := parts[0] + "." + forgedParts[1] + "." + parts[2]

	_, err = e.Decode(spliced)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestDecode_RejectsOtherAlgorithm(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, "k")

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		Type:             TokenTypeAccess,
	}).SignedString([]byte("k"))
	require.NoError(t, err)

	_, err = e.Decode(tok)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestDecode_RequiresExpiry(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, "k")

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Type: TokenTypeAccess}).SignedString([]byte("k"))
	require.NoError(t, err)

	_, err = e.Decode(tok)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestDecode_MalformedString(t *testing.T) {
	t.Parallel()

	_, err := newTestEngine(t, "k").Decode("not.a.jwt")
	assert.ErrorIs(t, err, common.ErrInvalidToken)

	_, err = newTestEngine(t, "k").Decode("")
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}
