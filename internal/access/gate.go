// Package access is the single place role rules for dashboard routing live.
// The gate is a pure predicate evaluated on every navigation; it holds no
// state of its own.
package access

import (
	"time"

	"cleanbook/internal/booking"
	"cleanbook/internal/session"
)

const LoginPath = "/admin-login"

// Decision tells the caller what to render or where to send the user.
type Decision struct {
	Kind Kind
	// Target is the redirect destination for the redirect kinds.
	Target string
	// ReturnTo retains the originally requested path across a login redirect.
	ReturnTo string
}

type Kind int

const (
	// Allow renders the requested view.
	Allow Kind = iota
	// RedirectLogin sends an unauthenticated visitor to the login screen.
	RedirectLogin
	// RedirectDashboard sends an authenticated user with the wrong role to
	// their own dashboard root, never to a generic error page.
	RedirectDashboard
)

// DashboardPath is the dashboard root owned by a role.
func DashboardPath(role booking.Role) string {
	return "/dashboard/" + string(role)
}

// Authorize gates a navigation to a view restricted to the given roles. An
// empty role list means any authenticated staff member may enter. The redirect
// target for a role mismatch is derived from the caller's role, not from the
// denied destination.
func Authorize(sess *session.Session, requestedPath string, required ...booking.Role) Decision {
	if sess == nil || sess.Token == "" || sess.Expired(time.Now()) {
		return Decision{Kind: RedirectLogin, Target: LoginPath, ReturnTo: requestedPath}
	}

	if len(required) == 0 {
		return Decision{Kind: Allow}
	}
	for _, r := range required {
		if sess.Role == r {
			return Decision{Kind: Allow}
		}
	}
	return Decision{Kind: RedirectDashboard, Target: DashboardPath(sess.Role)}
}
