// Package session owns the authenticated staff identity: an explicit,
// injectable object with a login/logout lifecycle instead of ambient global
// auth state.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"cleanbook/internal/booking"
)

var ErrNotAuthenticated = errors.New("not authenticated")

// Session is the decoded staff identity plus the bearer token that backs it.
type Session struct {
	Token     string       `json:"token"`
	UserID    string       `json:"userId"`
	Name      string       `json:"name,omitempty"`
	Email     string       `json:"email,omitempty"`
	Role      booking.Role `json:"role"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && s.ExpiresAt.Before(now)
}

type tokenClaims struct {
	jwt.RegisteredClaims

	Role  string `json:"role"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

// FromToken decodes the routing facts (subject, role, expiry) out of a bearer
// token issued by the booking backend. The backend is the verifier; the client
// only reads claims, it holds no signing secret.
func FromToken(token string) (*Session, error) {
	claims := &tokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("decode session token: %w", err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("session token has no subject")
	}
	role, err := booking.ParseRole(claims.Role)
	if err != nil {
		return nil, fmt.Errorf("session token: %w", err)
	}

	s := &Session{
		Token:  token,
		UserID: claims.Subject,
		Name:   claims.Name,
		Email:  claims.Email,
		Role:   role,
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	return s, nil
}
