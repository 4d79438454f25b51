package auth

import (
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/common"
)

// Credentials is a bearer presentation: the scheme tag and the raw token.
type Credentials struct {
	Scheme string
	Token  string
}

// ParseAuthorization splits an "<scheme> <token>" header value. It does not
// judge the scheme; callers decide which schemes they accept.
func ParseAuthorization(header string) (Credentials, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	token = strings.TrimSpace(token)
	if !ok || scheme == "" || token == "" {
		return Credentials{}, common.ErrorInvalidCredentials
	}
	return Credentials{Scheme: scheme, Token: token}, nil
}

// IsBearer reports whether the credentials use the Bearer scheme.
func (c Credentials) IsBearer() bool {
	return c.Scheme == common.BearerScheme
}

// String renders the credentials back into header form.
func (c Credentials) String() string {
	return c.Scheme + " " + c.Token
}
