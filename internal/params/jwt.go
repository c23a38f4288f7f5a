package params

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTSource mints a fresh HS256 bearer token on every call, useful for load
// tests against endpoints that require a valid (if short-lived) credential
// per request rather than a single static header value.
type JWTSource struct {
	secret []byte
	ttl    time.Duration
	claims map[string]any
}

// NewJWTSource validates the signing secret is non-empty and ttl is
// positive before returning a source; claims is an optional set of extra
// claims merged into every minted token alongside iat/exp.
func NewJWTSource(secret string, ttl time.Duration, claims map[string]any) (*JWTSource, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: jwt source requires a non-empty secret", ErrInvalidSource)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("%w: jwt source requires ttl > 0", ErrInvalidSource)
	}
	return &JWTSource{secret: []byte(secret), ttl: ttl, claims: claims}, nil
}

func (j *JWTSource) Next() string {
	now := time.Now()
	mapClaims := jwt.MapClaims{
		"iat": now.Unix(),
		"exp": now.Add(j.ttl).Unix(),
	}
	for k, v := range j.claims {
		mapClaims[k] = v
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, mapClaims)
	signed, err := tok.SignedString(j.secret)
	if err != nil {
		// Signing an HS256 token with a non-empty secret cannot fail; if it
		// somehow does, an empty bearer value is still a usable parameter.
		return ""
	}
	return signed
}
