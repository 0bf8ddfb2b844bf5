package auth

import "github.com/partnerhub/portal-server/internal/profile"

// Decision represents the outcome of an authorization check
type Decision int

const (
	// DecisionPending indicates that the auth context is still loading; callers
	// must treat this as neither allow nor deny
	DecisionPending Decision = iota

	// DecisionUnauthenticated indicates that no user is signed in
	DecisionUnauthenticated

	// DecisionAllowed indicates that the protected region may be accessed
	DecisionAllowed

	// DecisionDenied indicates that the user lacks the required role.
	// The denial is final; there is no silent fallback.
	DecisionDenied
)

// Authorize decides whether a protected region may be accessed.
// An empty required role only demands an authenticated user. Otherwise the
// user's role has to match exactly, with the admin role overriding every
// required role. Coordinators and regular users cannot cross into each
// other's gated regions.
//
// Authorize performs no I/O and only reacts to the already resolved state of
// an auth context.
func Authorize(user *profile.Profile, loading bool, requiredRole profile.Role) Decision {
	if loading {
		return DecisionPending
	}
	if user == nil {
		return DecisionUnauthenticated
	}
	if requiredRole == "" {
		return DecisionAllowed
	}
	if user.Role == requiredRole || user.Role == profile.RoleAdmin {
		return DecisionAllowed
	}
	return DecisionDenied
}
