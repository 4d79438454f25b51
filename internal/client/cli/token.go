package cli

import (
	"github.com/golang-jwt/jwt/v5"
)

// Token types as they appear in the "type" claim.
const (
	tokenTypeOTP    = "otp_temp_token"
	tokenTypeAccess = "access_token"
)

type tokenClaims struct {
	jwt.RegisteredClaims
	Type string `json:"type"`
}

// tokenType reads the "type" claim without verifying the signature. The
// client only uses it to decide what to ask for next; the server remains
// the judge of validity.
func tokenType(token string) string {
	claims := &tokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}
	return claims.Type
}
