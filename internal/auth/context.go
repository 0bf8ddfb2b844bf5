package auth

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/partnerhub/portal-server/internal/profile"
)

// State represents the lifecycle state of a Context
type State int

const (
	// StateInitializing indicates that the initial session recovery has not settled yet
	StateInitializing State = iota

	// StateAuthenticated indicates that a valid session yielded a resolvable profile
	StateAuthenticated

	// StateUnauthenticated indicates that no session is established
	StateUnauthenticated
)

// Notification represents a transient user notification emitted by a Context
type Notification struct {
	Title       string
	Description string
	Error       bool
}

// NotifyFunc consumes transient user notifications
type NotifyFunc func(notification Notification)

// Context is the single source of truth for who is currently signed in and
// with what role. It recovers an existing session on creation, follows the
// session change notifications of the underlying store and exposes the
// sign-in, sign-out and profile update operations.
//
// The context is the only writer of its state; all readers are pure consumers.
// A generation counter associated with every asynchronous initiation makes
// sure that a superseded recovery result never overwrites a newer event.
type Context struct {
	store  Store
	notify NotifyFunc

	mtx        sync.RWMutex
	user       *profile.Profile
	loading    bool
	generation uint64
	closed     bool

	unsubscribe func()
	loadedOnce  sync.Once
	loaded      chan struct{}
}

// NewContext creates a new authentication context on top of the given store.
// It subscribes to the store's session change notifications and kicks off the
// asynchronous recovery of a potentially existing session.
// The notify callback may be nil if notifications are of no interest.
func NewContext(store Store, notify NotifyFunc) *Context {
	if notify == nil {
		notify = func(Notification) {}
	}
	ctx := &Context{
		store:   store,
		notify:  notify,
		loading: true,
		loaded:  make(chan struct{}),
	}
	ctx.unsubscribe = store.Subscribe(ctx.handleSessionChange)
	go ctx.recoverSession()
	return ctx
}

// User returns the currently loaded user and whether the context is still loading.
// The user is nil while loading and whenever no session is established.
func (ctx *Context) User() (*profile.Profile, bool) {
	ctx.mtx.RLock()
	defer ctx.mtx.RUnlock()
	return ctx.user, ctx.loading
}

// State returns the current lifecycle state of the context
func (ctx *Context) State() State {
	ctx.mtx.RLock()
	defer ctx.mtx.RUnlock()
	switch {
	case ctx.loading:
		return StateInitializing
	case ctx.user != nil:
		return StateAuthenticated
	default:
		return StateUnauthenticated
	}
}

// Authorize evaluates the role guard against the current state of the context
func (ctx *Context) Authorize(requiredRole profile.Role) Decision {
	user, loading := ctx.User()
	return Authorize(user, loading, requiredRole)
}

// WaitUntilLoaded blocks until the initial session recovery has settled
func (ctx *Context) WaitUntilLoaded(waitCtx context.Context) error {
	select {
	case <-ctx.loaded:
		return nil
	case <-waitCtx.Done():
		return waitCtx.Err()
	}
}

// SignIn delegates credential verification to the store.
// The Authenticated transition is not performed here but by the store's
// session change notification; this avoids a race between the direct result
// and the asynchronous notification.
func (ctx *Context) SignIn(callCtx context.Context, email, password string) error {
	if err := ctx.store.SignInWithPassword(callCtx, email, password); err != nil {
		ctx.notify(Notification{
			Title:       "Sign-in failed",
			Description: err.Error(),
			Error:       true,
		})
		return err
	}
	ctx.notify(Notification{
		Title:       "Signed in",
		Description: "Welcome back.",
	})
	return nil
}

// SignUp registers a new account with the store
func (ctx *Context) SignUp(callCtx context.Context, email, password, name string) error {
	if err := ctx.store.SignUp(callCtx, email, password, name); err != nil {
		ctx.notify(Notification{
			Title:       "Sign-up failed",
			Description: err.Error(),
			Error:       true,
		})
		return err
	}
	ctx.notify(Notification{
		Title:       "Account created",
		Description: "You can now sign in.",
	})
	return nil
}

// SignOut requests session invalidation from the store and clears the local
// state unconditionally, regardless of whether the store call succeeded.
// A failed store call is reported to the caller but never blocks the
// transition to Unauthenticated.
func (ctx *Context) SignOut(callCtx context.Context) error {
	err := ctx.store.SignOut(callCtx)

	ctx.mtx.Lock()
	ctx.generation++
	if !ctx.closed {
		ctx.user = nil
		ctx.setLoadedLocked()
	}
	ctx.mtx.Unlock()

	if err != nil {
		ctx.notify(Notification{
			Title:       "Sign-out failed",
			Description: err.Error(),
			Error:       true,
		})
		return err
	}
	ctx.notify(Notification{
		Title:       "Signed out",
		Description: "You have been signed out.",
	})
	return nil
}

// UpdateProfile writes the given partial fields to the profile row of the
// currently loaded user. The local state is merged strictly after the store
// confirmed the write; a failed write leaves it untouched.
func (ctx *Context) UpdateProfile(callCtx context.Context, update *profile.Update) error {
	ctx.mtx.RLock()
	current := ctx.user
	generation := ctx.generation
	ctx.mtx.RUnlock()

	if current == nil {
		ctx.notify(Notification{
			Title:       "Profile update failed",
			Description: ErrNotAuthenticated.Error(),
			Error:       true,
		})
		return ErrNotAuthenticated
	}

	updated, err := ctx.store.UpdateProfile(callCtx, current.ID, update)
	if err != nil {
		ctx.notify(Notification{
			Title:       "Profile update failed",
			Description: err.Error(),
			Error:       true,
		})
		return err
	}

	ctx.mtx.Lock()
	if !ctx.closed && generation == ctx.generation && ctx.user != nil && updated != nil {
		merged := *updated
		merged.Role = profile.ParseRole(string(updated.Role))
		ctx.user = &merged
	}
	ctx.mtx.Unlock()

	ctx.notify(Notification{
		Title:       "Profile updated",
		Description: "Your information has been updated.",
	})
	return nil
}

// Close unsubscribes from the store's session change notifications and stops
// honoring any in-flight recovery result
func (ctx *Context) Close() {
	ctx.mtx.Lock()
	ctx.closed = true
	ctx.generation++
	ctx.mtx.Unlock()
	if ctx.unsubscribe != nil {
		ctx.unsubscribe()
	}
}

// recoverSession tries to recover an existing session from the store.
// The result is dropped if a session change notification arrived in the
// meantime or the context was closed.
func (ctx *Context) recoverSession() {
	ctx.mtx.RLock()
	generation := ctx.generation
	ctx.mtx.RUnlock()

	callCtx := context.Background()
	session, err := ctx.store.Session(callCtx)
	if err != nil {
		log.Warn().Err(err).Msg("could not recover an existing session")
		ctx.applyRecovery(generation, nil)
		return
	}
	if session == nil {
		ctx.applyRecovery(generation, nil)
		return
	}
	ctx.applyRecovery(generation, ctx.resolveProfile(callCtx, session))
}

func (ctx *Context) applyRecovery(generation uint64, user *profile.Profile) {
	ctx.mtx.Lock()
	defer ctx.mtx.Unlock()
	if ctx.closed || generation != ctx.generation {
		// A newer event superseded this recovery result
		return
	}
	ctx.user = user
	ctx.setLoadedLocked()
}

// handleSessionChange consumes the session change notifications of the store
func (ctx *Context) handleSessionChange(event Event, session *Session) {
	switch event {
	case EventSignedOut:
		ctx.mtx.Lock()
		ctx.generation++
		if !ctx.closed {
			ctx.user = nil
			ctx.setLoadedLocked()
		}
		ctx.mtx.Unlock()
	case EventSignedIn, EventTokenRefreshed:
		var user *profile.Profile
		if session != nil {
			user = ctx.resolveProfile(context.Background(), session)
		}
		ctx.mtx.Lock()
		ctx.generation++
		if !ctx.closed {
			ctx.user = user
			ctx.setLoadedLocked()
		}
		ctx.mtx.Unlock()
	}
}

// resolveProfile fetches the profile row matching the session's subject ID.
// Fetch failures and missing rows are fail-closed: the session is treated as
// unauthenticated. Unknown role values are coerced to the regular user role.
func (ctx *Context) resolveProfile(callCtx context.Context, session *Session) *profile.Profile {
	obj, err := ctx.store.Profile(callCtx, session.UserID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", session.UserID).Msg("could not fetch the profile of an established session")
		return nil
	}
	if obj == nil {
		log.Warn().Str("user_id", session.UserID).Msg("an established session references a missing profile row")
		return nil
	}
	resolved := *obj
	resolved.Role = profile.ParseRole(string(obj.Role))
	return &resolved
}

func (ctx *Context) setLoadedLocked() {
	ctx.loading = false
	ctx.loadedOnce.Do(func() {
		close(ctx.loaded)
	})
}
