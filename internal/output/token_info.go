package output

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo is what can be read from a JWT without verifying it
type TokenInfo struct {
	Subject   string     `json:"sub,omitempty" yaml:"sub,omitempty"`
	Issuer    string     `json:"iss,omitempty" yaml:"iss,omitempty"`
	IssuedAt  *time.Time `json:"iat,omitempty" yaml:"iat,omitempty"`
	ExpiresAt *time.Time `json:"exp,omitempty" yaml:"exp,omitempty"`
}

// DescribeToken decodes the claims of a JWT. The signature is not checked:
// the token comes straight from the backend and is only described to the
// operator. ok is false when token is not a JWT.
func DescribeToken(token string) (info *TokenInfo, ok bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, false
	}

	info = &TokenInfo{}
	info.Subject, _ = claims.GetSubject()
	info.Issuer, _ = claims.GetIssuer()
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		t := iat.Time
		info.IssuedAt = &t
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time
		info.ExpiresAt = &t
	}
	return info, true
}
