package identity

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/shahpalash10/chore-Mate/internal/remote"
)

type claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

func (s *Service) issueToken(userID, email string) (string, *remote.Session, error) {
	now := time.Now()
	expiresAt := now.Add(s.ttl)

	c := claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", nil, err
	}

	return token, &remote.Session{
		UserID:    userID,
		Email:     email,
		ExpiresAt: expiresAt,
	}, nil
}

// parseToken validates the signature only. Expiry is the session manager's
// decision, so expired tokens still parse into a session with its timestamp.
func (s *Service) parseToken(raw string) (*remote.Session, error) {
	var c claims
	token, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}

	var expiresAt time.Time
	if c.ExpiresAt != nil {
		expiresAt = c.ExpiresAt.Time
	}

	return &remote.Session{
		UserID:    c.UserID,
		Email:     c.Email,
		ExpiresAt: expiresAt,
	}, nil
}
