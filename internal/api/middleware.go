package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"cleanbook/internal/booking"
	"cleanbook/internal/workflow"
)

type staffClaims struct {
	jwt.RegisteredClaims

	Role  string `json:"role"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

// VerifyStaffToken checks an HS256 staff token and returns the acting
// identity. The simulated gateway signs and verifies with the same secret.
func VerifyStaffToken(tokenString, secret string, now time.Time) (*workflow.Actor, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("missing token")
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	claims := &staffClaims{}
	tok, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.ExpiresAt == nil || claims.ExpiresAt.Time.Before(now) {
		return nil, fmt.Errorf("token expired")
	}
	role, err := booking.ParseRole(claims.Role)
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("missing subject")
	}
	return &workflow.Actor{UserID: claims.Subject, Role: role}, nil
}

// StaffAuth gates the bearer-authenticated staff routes. Public token-scoped
// routes never pass through here: possession of the URL token is their whole
// trust model.
func StaffAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := strings.TrimSpace(r.Header.Get("Authorization"))
			if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
				WriteError(w, http.StatusUnauthorized, CodeUnauthorized, "missing bearer token")
				return
			}
			actor, err := VerifyStaffToken(strings.TrimSpace(authz[7:]), secret, time.Now())
			if err != nil {
				WriteError(w, http.StatusUnauthorized, CodeUnauthorized, "invalid session token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), *actor)))
		})
	}
}
