package auth

import (
	"context"
	"errors"
	"time"

	"github.com/partnerhub/portal-server/internal/profile"
)

var (
	// ErrInvalidCredentials is returned when the session store rejects a sign-in attempt
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNotAuthenticated is returned when an operation requires a loaded user but none is present
	ErrNotAuthenticated = errors.New("not authenticated")
)

// Event represents the type of a session change notification emitted by a session store
type Event int

const (
	// EventSignedIn is emitted after a sign-in attempt succeeded and a session was established
	EventSignedIn Event = iota

	// EventSignedOut is emitted after the current session was terminated
	EventSignedOut

	// EventTokenRefreshed is emitted after the lifetime of the current session was extended
	EventTokenRefreshed
)

// Session represents an established session at a session store
type Session struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
}

// Store models the hosted authentication/session backend the portal clients
// talk to. Session change notifications are delivered in emission order.
type Store interface {
	// SignInWithPassword verifies the given credentials and establishes a session.
	// A rejected attempt fails with ErrInvalidCredentials.
	SignInWithPassword(ctx context.Context, email, password string) error

	// SignUp registers a new account and its initial profile seed
	SignUp(ctx context.Context, email, password, name string) error

	// SignOut terminates the current session
	SignOut(ctx context.Context) error

	// Session returns the currently established session, or nil if there is none
	Session(ctx context.Context) (*Session, error)

	// Profile retrieves the profile row matching a session subject ID.
	// A missing row is reported as (nil, nil).
	Profile(ctx context.Context, userID string) (*profile.Profile, error)

	// UpdateProfile writes partial fields to a profile row and returns the new row
	UpdateProfile(ctx context.Context, userID string, update *profile.Update) (*profile.Profile, error)

	// Subscribe registers a session change listener and returns a function that removes it again
	Subscribe(listener func(event Event, session *Session)) (unsubscribe func())
}
