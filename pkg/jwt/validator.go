package jwt

import (
	"errors"
	"fmt"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrMissingSub   = errors.New("token has no subject")
)

// Validator validates bearer tokens for the realtime channel. When no
// secret is configured the validator is permissive and accepts any token;
// that mode exists for local development only.
type Validator struct {
	secret []byte
}

// NewValidator creates a new Validator
func NewValidator(cfg Config) *Validator {
	return &Validator{secret: []byte(cfg.SecretKey)}
}

// Permissive reports whether the validator accepts any token.
func (v *Validator) Permissive() bool {
	return len(v.secret) == 0
}

// ExtractSubject validates the token and returns the (kind, id) subject
// binding carried in its claims.
func (v *Validator) ExtractSubject(token string) (kind, id string, err error) {
	if v.Permissive() {
		return "", "", nil
	}

	parsed, err := jwtlib.Parse(token, func(t *jwtlib.Token) (any, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", "", ErrInvalidToken
	}

	claims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok {
		return "", "", ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", "", ErrMissingSub
	}
	subjectKind, _ := claims["subject_kind"].(string)

	return subjectKind, sub, nil
}
