package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/partnerhub/portal-server/internal/api/schema"
	"github.com/partnerhub/portal-server/internal/auth"
	"github.com/partnerhub/portal-server/internal/profile"
	"github.com/partnerhub/portal-server/internal/task"
	"github.com/partnerhub/portal-server/internal/threadsafe"
)

// Client talks to the portal API and implements the session store interface
// the auth context builds on. The session token is held in memory only;
// callers that want to persist it across runs use Token and SetToken.
type Client struct {
	baseURL string
	http    *http.Client

	mtx     sync.RWMutex
	token   string
	session *auth.Session

	listenerMtx    sync.Mutex
	listeners      *threadsafe.Map[uint64, func(event auth.Event, session *auth.Session)]
	nextListenerID uint64

	refreshTask *task.RepeatingTask
}

var _ auth.Store = (*Client)(nil)

// New creates a new portal API client
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		listeners: threadsafe.NewMap[uint64, func(event auth.Event, session *auth.Session)](),
	}
}

// Token returns the currently held raw session token
func (client *Client) Token() string {
	client.mtx.RLock()
	defer client.mtx.RUnlock()
	return client.token
}

// SetToken injects a previously persisted raw session token.
// The session itself is re-established on the next Session call.
func (client *Client) SetToken(token string) {
	client.mtx.Lock()
	defer client.mtx.Unlock()
	client.token = token
	client.session = nil
}

type loginResponse struct {
	Token     string `json:"token"`
	UserID    string `json:"user_id"`
	ExpiresAt int64  `json:"expires_at"`
}

// SignInWithPassword verifies the given credentials and establishes a session.
// A rejected attempt fails with auth.ErrInvalidCredentials.
func (client *Client) SignInWithPassword(ctx context.Context, email, password string) error {
	response := new(loginResponse)
	err := client.do(ctx, http.MethodPost, "/v1/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, response)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusForbidden {
			return auth.ErrInvalidCredentials
		}
		return err
	}

	ses := &auth.Session{
		Token:     response.Token,
		UserID:    response.UserID,
		ExpiresAt: time.Unix(response.ExpiresAt, 0),
	}

	client.mtx.Lock()
	client.token = response.Token
	client.session = ses
	client.mtx.Unlock()

	client.emit(auth.EventSignedIn, ses)
	return nil
}

// SignUp registers a new account and its initial profile row
func (client *Client) SignUp(ctx context.Context, email, password, name string) error {
	return client.do(ctx, http.MethodPost, "/v1/auth/signup", map[string]string{
		"email":    email,
		"password": password,
		"name":     name,
	}, nil)
}

// SignOut terminates the current session.
// The local token is dropped even if the server-side termination fails.
func (client *Client) SignOut(ctx context.Context) error {
	client.mtx.Lock()
	hadToken := client.token != ""
	client.mtx.Unlock()
	if !hadToken {
		return nil
	}

	err := client.do(ctx, http.MethodPost, "/v1/auth/logout", nil, nil)

	client.mtx.Lock()
	client.token = ""
	client.session = nil
	client.mtx.Unlock()

	client.emit(auth.EventSignedOut, nil)
	return err
}

type sessionResponse struct {
	UserID    string `json:"user_id"`
	ExpiresAt int64  `json:"expires_at"`
}

// Session returns the currently established session, or nil if there is none.
// A successful read slides the session expiry forward on the server.
func (client *Client) Session(ctx context.Context) (*auth.Session, error) {
	client.mtx.RLock()
	token := client.token
	client.mtx.RUnlock()
	if token == "" {
		return nil, nil
	}

	response := new(sessionResponse)
	if err := client.do(ctx, http.MethodGet, "/v1/auth/session", nil, response); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			client.mtx.Lock()
			client.token = ""
			client.session = nil
			client.mtx.Unlock()
			return nil, nil
		}
		return nil, err
	}

	ses := &auth.Session{
		Token:     token,
		UserID:    response.UserID,
		ExpiresAt: time.Unix(response.ExpiresAt, 0),
	}

	client.mtx.Lock()
	client.session = ses
	client.mtx.Unlock()

	return ses, nil
}

// Profile retrieves the profile row matching a session subject ID.
// A missing row is reported as (nil, nil).
func (client *Client) Profile(ctx context.Context, userID string) (*profile.Profile, error) {
	path := "/v1/profiles/" + userID
	if ses := client.currentSession(); ses != nil && ses.UserID == userID {
		path = "/v1/me"
	}

	obj := new(profile.Profile)
	if err := client.do(ctx, http.MethodGet, path, nil, obj); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	return obj, nil
}

// UpdateProfile writes partial fields to a profile row and returns the new row
func (client *Client) UpdateProfile(ctx context.Context, userID string, update *profile.Update) (*profile.Profile, error) {
	payload := map[string]any{}
	if update.Name != nil {
		payload["name"] = *update.Name
	}
	if update.Role != nil {
		payload["role"] = string(*update.Role)
	}
	if update.GroupID != nil {
		payload["group_id"] = *update.GroupID
	}

	path := "/v1/profiles/" + userID
	if ses := client.currentSession(); ses != nil && ses.UserID == userID {
		path = "/v1/me"
	}

	obj := new(profile.Profile)
	if err := client.do(ctx, http.MethodPatch, path, payload, obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// Subscribe registers a session change listener and returns a function that removes it again.
// Listeners are invoked synchronously in registration order.
func (client *Client) Subscribe(listener func(event auth.Event, session *auth.Session)) func() {
	client.listenerMtx.Lock()
	id := client.nextListenerID
	client.nextListenerID++
	client.listenerMtx.Unlock()

	client.listeners.Set(id, listener)
	return func() {
		client.listeners.Remove(id)
	}
}

// StartSessionRefresh schedules a background task that periodically slides the
// session expiry forward. Every successful refresh emits a token refresh event.
func (client *Client) StartSessionRefresh(interval time.Duration) {
	if client.refreshTask != nil {
		return
	}
	client.refreshTask = task.NewRepeating(func() {
		ses, err := client.Session(context.Background())
		if err != nil || ses == nil {
			return
		}
		client.emit(auth.EventTokenRefreshed, ses)
	}, interval)
	client.refreshTask.Start()
}

// StopSessionRefresh stops the background session refresh task
func (client *Client) StopSessionRefresh() {
	if client.refreshTask != nil {
		client.refreshTask.Stop(false)
		client.refreshTask = nil
	}
}

func (client *Client) currentSession() *auth.Session {
	client.mtx.RLock()
	defer client.mtx.RUnlock()
	return client.session
}

func (client *Client) emit(event auth.Event, ses *auth.Session) {
	client.listeners.Lock()
	ids := make([]uint64, 0, len(client.listeners.GetUnderlyingMap()))
	listeners := make(map[uint64]func(event auth.Event, session *auth.Session), len(ids))
	for id, listener := range client.listeners.GetUnderlyingMap() {
		ids = append(ids, id)
		listeners[id] = listener
	}
	client.listeners.Unlock()

	sort.Slice(ids, func(i, j int) bool {
		return ids[i] < ids[j]
	})
	for _, id := range ids {
		listeners[id](event, ses)
	}
}

// APIError represents an error response sent by the portal API
type APIError struct {
	Status int
	Errors []*schema.Error
}

// Error implements the error interface
func (err *APIError) Error() string {
	if len(err.Errors) > 0 {
		return fmt.Sprintf("portal API error (status %d): %s", err.Status, err.Errors[0].Message)
	}
	return fmt.Sprintf("portal API error (status %d)", err.Status)
}

func (client *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	request, err := http.NewRequestWithContext(ctx, method, client.baseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if token := client.Token(); token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	response, err := client.http.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	if response.StatusCode >= 400 {
		errResponse := new(schema.ErrorResponse)
		if err := json.NewDecoder(response.Body).Decode(errResponse); err != nil {
			return &APIError{Status: response.StatusCode}
		}
		return &APIError{
			Status: response.StatusCode,
			Errors: errResponse.Errors,
		}
	}

	if out != nil {
		return json.NewDecoder(response.Body).Decode(out)
	}
	return nil
}
