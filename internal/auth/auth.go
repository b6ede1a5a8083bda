package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Verifier maps a bearer token onto a user identity. The rest of the backend
// treats the credential as opaque.
type Verifier interface {
	Verify(ctx context.Context, token string) (uuid.UUID, error)
}

type JWTVerifier struct {
	secret string
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: secret}
}

func (v *JWTVerifier) Verify(ctx context.Context, token string) (uuid.UUID, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}

		return []byte(v.secret), nil
	})

	if err != nil {
		return uuid.Nil, fmt.Errorf("error parsing token: %w", err)
	}

	if !parsed.Valid {
		return uuid.Nil, fmt.Errorf("invalid token")
	}

	subject, err := parsed.Claims.GetSubject()

	if err != nil {
		return uuid.Nil, fmt.Errorf("error reading token subject: %w", err)
	}

	id, err := uuid.Parse(subject)

	if err != nil {
		return uuid.Nil, fmt.Errorf("token subject is not a user id: %w", err)
	}

	return id, nil
}

// CreateToken signs a token for the given user id. Used by tests and local
// tooling; production tokens come from the identity provider.
func CreateToken(id uuid.UUID, secret string) (string, error) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &jwt.RegisteredClaims{
		Issuer:    "booknest",
		Subject:   id.String(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
	}).SignedString([]byte(secret))

	if err != nil {
		return "", fmt.Errorf("error signing token: %v", err)
	}

	return token, nil
}
