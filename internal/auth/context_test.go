package auth_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partnerhub/portal-server/internal/auth"
	"github.com/partnerhub/portal-server/internal/profile"
)

// fakeStore implements auth.Store in memory.
// Session change notifications are delivered synchronously in emission order.
type fakeStore struct {
	mtx       sync.Mutex
	listeners map[uint64]func(auth.Event, *auth.Session)
	nextID    uint64

	password string
	profiles map[string]*profile.Profile
	current  *auth.Session

	// recoverySession is what Session reports; sessionGate, if set, blocks
	// Session until the channel is closed.
	recoverySession *auth.Session
	sessionGate     chan struct{}

	profileErr error
	signOutErr error
	updateErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		listeners: map[uint64]func(auth.Event, *auth.Session){},
		profiles:  map[string]*profile.Profile{},
		password:  "hunter2",
	}
}

func (store *fakeStore) emit(event auth.Event, session *auth.Session) {
	store.mtx.Lock()
	listeners := make([]func(auth.Event, *auth.Session), 0, len(store.listeners))
	for id := uint64(0); id < store.nextID; id++ {
		if listener, ok := store.listeners[id]; ok {
			listeners = append(listeners, listener)
		}
	}
	store.mtx.Unlock()
	for _, listener := range listeners {
		listener(event, session)
	}
}

func (store *fakeStore) SignInWithPassword(_ context.Context, email, password string) error {
	var subject *profile.Profile
	for _, obj := range store.profiles {
		if obj.Email == email {
			subject = obj
			break
		}
	}
	if subject == nil || password != store.password {
		return auth.ErrInvalidCredentials
	}
	session := &auth.Session{Token: "tok", UserID: subject.ID, ExpiresAt: time.Now().Add(time.Hour)}
	store.current = session
	store.emit(auth.EventSignedIn, session)
	return nil
}

func (store *fakeStore) SignUp(_ context.Context, email, _, name string) error {
	store.profiles[email] = &profile.Profile{ID: email, Email: email, Name: name, Role: profile.RoleUser}
	return nil
}

func (store *fakeStore) SignOut(_ context.Context) error {
	if store.signOutErr != nil {
		return store.signOutErr
	}
	store.current = nil
	store.emit(auth.EventSignedOut, nil)
	return nil
}

func (store *fakeStore) Session(_ context.Context) (*auth.Session, error) {
	if store.sessionGate != nil {
		<-store.sessionGate
	}
	return store.recoverySession, nil
}

func (store *fakeStore) Profile(_ context.Context, userID string) (*profile.Profile, error) {
	if store.profileErr != nil {
		return nil, store.profileErr
	}
	obj, ok := store.profiles[userID]
	if !ok {
		return nil, nil
	}
	cpy := *obj
	return &cpy, nil
}

func (store *fakeStore) UpdateProfile(_ context.Context, userID string, update *profile.Update) (*profile.Profile, error) {
	if store.updateErr != nil {
		return nil, store.updateErr
	}
	obj, ok := store.profiles[userID]
	if !ok {
		return nil, errors.New("no such profile")
	}
	if update.Name != nil {
		obj.Name = *update.Name
	}
	if update.Role != nil {
		obj.Role = *update.Role
	}
	if update.GroupID != nil {
		obj.GroupID = update.GroupID
	}
	cpy := *obj
	return &cpy, nil
}

func (store *fakeStore) Subscribe(listener func(auth.Event, *auth.Session)) func() {
	store.mtx.Lock()
	defer store.mtx.Unlock()
	id := store.nextID
	store.nextID++
	store.listeners[id] = listener
	return func() {
		store.mtx.Lock()
		defer store.mtx.Unlock()
		delete(store.listeners, id)
	}
}

type notificationSink struct {
	mtx     sync.Mutex
	entries []auth.Notification
}

func (sink *notificationSink) notify(notification auth.Notification) {
	sink.mtx.Lock()
	defer sink.mtx.Unlock()
	sink.entries = append(sink.entries, notification)
}

func (sink *notificationSink) last(t *testing.T) auth.Notification {
	t.Helper()
	sink.mtx.Lock()
	defer sink.mtx.Unlock()
	require.NotEmpty(t, sink.entries)
	return sink.entries[len(sink.entries)-1]
}

func waitLoaded(t *testing.T, authCtx *auth.Context) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, authCtx.WaitUntilLoaded(ctx))
}

func TestContext_StartsUnauthenticatedWithoutSession(t *testing.T) {
	store := newFakeStore()
	authCtx := auth.NewContext(store, nil)
	defer authCtx.Close()

	waitLoaded(t, authCtx)
	assert.Equal(t, auth.StateUnauthenticated, authCtx.State())
	user, loading := authCtx.User()
	assert.Nil(t, user)
	assert.False(t, loading)
}

func TestContext_RecoversExistingSession(t *testing.T) {
	store := newFakeStore()
	store.profiles["42"] = &profile.Profile{ID: "42", Email: "admin@portal.com", Name: "Admin", Role: profile.RoleAdmin}
	store.recoverySession = &auth.Session{Token: "tok", UserID: "42", ExpiresAt: time.Now().Add(time.Hour)}

	authCtx := auth.NewContext(store, nil)
	defer authCtx.Close()

	waitLoaded(t, authCtx)
	user, _ := authCtx.User()
	require.NotNil(t, user)
	assert.Equal(t, "42", user.ID)
	assert.Equal(t, profile.RoleAdmin, user.Role)
}

func TestContext_SignInTransitionsViaEvent(t *testing.T) {
	store := newFakeStore()
	store.profiles["42"] = &profile.Profile{ID: "42", Email: "admin@portal.com", Name: "Admin", Role: profile.RoleAdmin}
	sink := &notificationSink{}

	authCtx := auth.NewContext(store, sink.notify)
	defer authCtx.Close()
	waitLoaded(t, authCtx)

	require.NoError(t, authCtx.SignIn(context.Background(), "admin@portal.com", "hunter2"))

	assert.Equal(t, auth.StateAuthenticated, authCtx.State())
	user, _ := authCtx.User()
	require.NotNil(t, user)
	assert.Equal(t, profile.RoleAdmin, user.Role)

	// Admin overrides every required role
	assert.Equal(t, auth.DecisionAllowed, authCtx.Authorize(profile.RoleAdmin))
	assert.Equal(t, auth.DecisionAllowed, authCtx.Authorize(profile.RoleCoordinator))
	assert.False(t, sink.last(t).Error)
}

func TestContext_SignInInvalidCredentials(t *testing.T) {
	store := newFakeStore()
	store.profiles["42"] = &profile.Profile{ID: "42", Email: "user@portal.com", Role: profile.RoleUser}
	sink := &notificationSink{}

	authCtx := auth.NewContext(store, sink.notify)
	defer authCtx.Close()
	waitLoaded(t, authCtx)

	err := authCtx.SignIn(context.Background(), "user@portal.com", "wrong")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	assert.Equal(t, auth.StateUnauthenticated, authCtx.State())
	assert.True(t, sink.last(t).Error)
}

func TestContext_UnknownRoleCoercedToUser(t *testing.T) {
	store := newFakeStore()
	store.profiles["42"] = &profile.Profile{ID: "42", Email: "odd@portal.com", Role: profile.Role("superuser")}

	authCtx := auth.NewContext(store, nil)
	defer authCtx.Close()
	waitLoaded(t, authCtx)

	require.NoError(t, authCtx.SignIn(context.Background(), "odd@portal.com", "hunter2"))
	user, _ := authCtx.User()
	require.NotNil(t, user)
	assert.Equal(t, profile.RoleUser, user.Role)
	assert.Equal(t, auth.DecisionDenied, authCtx.Authorize(profile.RoleAdmin))
}

func TestContext_ProfileFetchFailureIsFailClosed(t *testing.T) {
	store := newFakeStore()
	store.recoverySession = &auth.Session{Token: "tok", UserID: "42", ExpiresAt: time.Now().Add(time.Hour)}
	store.profileErr = errors.New("boom")

	authCtx := auth.NewContext(store, nil)
	defer authCtx.Close()
	waitLoaded(t, authCtx)

	assert.Equal(t, auth.StateUnauthenticated, authCtx.State())
}

func TestContext_MissingProfileRowIsFailClosed(t *testing.T) {
	store := newFakeStore()
	store.recoverySession = &auth.Session{Token: "tok", UserID: "42", ExpiresAt: time.Now().Add(time.Hour)}

	authCtx := auth.NewContext(store, nil)
	defer authCtx.Close()
	waitLoaded(t, authCtx)

	assert.Equal(t, auth.StateUnauthenticated, authCtx.State())
}

func TestContext_SignOutClearsStateEvenOnStoreError(t *testing.T) {
	store := newFakeStore()
	store.profiles["42"] = &profile.Profile{ID: "42", Email: "user@portal.com", Role: profile.RoleUser}

	authCtx := auth.NewContext(store, nil)
	defer authCtx.Close()
	waitLoaded(t, authCtx)
	require.NoError(t, authCtx.SignIn(context.Background(), "user@portal.com", "hunter2"))

	store.signOutErr = errors.New("store unreachable")
	err := authCtx.SignOut(context.Background())
	assert.Error(t, err)
	assert.Equal(t, auth.StateUnauthenticated, authCtx.State())
}

func TestContext_SignOutIdempotent(t *testing.T) {
	store := newFakeStore()

	authCtx := auth.NewContext(store, nil)
	defer authCtx.Close()
	waitLoaded(t, authCtx)

	require.NoError(t, authCtx.SignOut(context.Background()))
	require.NoError(t, authCtx.SignOut(context.Background()))
	assert.Equal(t, auth.StateUnauthenticated, authCtx.State())
}

func TestContext_UpdateProfileRoundTrip(t *testing.T) {
	store := newFakeStore()
	store.profiles["42"] = &profile.Profile{ID: "42", Email: "user@portal.com", Name: "Old", Role: profile.RoleUser}

	authCtx := auth.NewContext(store, nil)
	defer authCtx.Close()
	waitLoaded(t, authCtx)
	require.NoError(t, authCtx.SignIn(context.Background(), "user@portal.com", "hunter2"))

	name := "X"
	require.NoError(t, authCtx.UpdateProfile(context.Background(), &profile.Update{Name: &name}))
	user, _ := authCtx.User()
	require.NotNil(t, user)
	assert.Equal(t, "X", user.Name)
}

func TestContext_UpdateProfileFailureLeavesStateUntouched(t *testing.T) {
	store := newFakeStore()
	store.profiles["42"] = &profile.Profile{ID: "42", Email: "user@portal.com", Name: "Old", Role: profile.RoleUser}
	sink := &notificationSink{}

	authCtx := auth.NewContext(store, sink.notify)
	defer authCtx.Close()
	waitLoaded(t, authCtx)
	require.NoError(t, authCtx.SignIn(context.Background(), "user@portal.com", "hunter2"))

	store.updateErr = errors.New("write rejected")
	name := "X"
	err := authCtx.UpdateProfile(context.Background(), &profile.Update{Name: &name})
	assert.Error(t, err)
	user, _ := authCtx.User()
	require.NotNil(t, user)
	assert.Equal(t, "Old", user.Name)
	assert.True(t, sink.last(t).Error)
}

func TestContext_UpdateProfileRequiresUser(t *testing.T) {
	store := newFakeStore()

	authCtx := auth.NewContext(store, nil)
	defer authCtx.Close()
	waitLoaded(t, authCtx)

	name := "X"
	err := authCtx.UpdateProfile(context.Background(), &profile.Update{Name: &name})
	assert.ErrorIs(t, err, auth.ErrNotAuthenticated)
}

func TestContext_StaleRecoveryResultIsDropped(t *testing.T) {
	store := newFakeStore()
	store.profiles["42"] = &profile.Profile{ID: "42", Email: "user@portal.com", Role: profile.RoleUser}
	store.sessionGate = make(chan struct{})

	authCtx := auth.NewContext(store, nil)
	defer authCtx.Close()

	// Sign in while the recovery call is still in flight. The recovery result
	// (no session) arrives afterwards and must not wipe the signed-in user.
	require.NoError(t, authCtx.SignIn(context.Background(), "user@portal.com", "hunter2"))
	close(store.sessionGate)
	waitLoaded(t, authCtx)

	time.Sleep(50 * time.Millisecond)
	user, _ := authCtx.User()
	require.NotNil(t, user)
	assert.Equal(t, "42", user.ID)
}
