package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partnerhub/portal-server/internal/auth"
	"github.com/partnerhub/portal-server/internal/group"
)

type recordedEvent struct {
	event   auth.Event
	session *auth.Session
}

func TestSignInEmitsSignedInEvent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		require.Equal(t, http.MethodPost, request.Method)
		require.Equal(t, "/v1/auth/login", request.URL.Path)

		payload := map[string]string{}
		require.NoError(t, json.NewDecoder(request.Body).Decode(&payload))
		if payload["password"] != "hunter2" {
			writer.WriteHeader(http.StatusForbidden)
			writer.Write([]byte(`{"status":403,"errors":[{"type":"auth.invalidCredentials","message":"Invalid email address or password.","details":{}}]}`))
			return
		}

		json.NewEncoder(writer).Encode(map[string]any{
			"token":      "raw-token",
			"user_id":    "user-1",
			"expires_at": time.Now().Add(time.Hour).Unix(),
		})
	}))
	defer server.Close()

	portalClient := New(server.URL)

	var events []recordedEvent
	unsubscribe := portalClient.Subscribe(func(event auth.Event, session *auth.Session) {
		events = append(events, recordedEvent{event, session})
	})
	defer unsubscribe()

	err := portalClient.SignInWithPassword(context.Background(), "jane@example.com", "wrong")
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)
	assert.Empty(t, events)
	assert.Empty(t, portalClient.Token())

	require.NoError(t, portalClient.SignInWithPassword(context.Background(), "jane@example.com", "hunter2"))
	require.Len(t, events, 1)
	assert.Equal(t, auth.EventSignedIn, events[0].event)
	require.NotNil(t, events[0].session)
	assert.Equal(t, "user-1", events[0].session.UserID)
	assert.Equal(t, "raw-token", portalClient.Token())
}

func TestSignOutDropsTokenEvenOnServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusInternalServerError)
		writer.Write([]byte(`{"status":500,"errors":[{"type":"generic.internal","message":"An internal error occurred.","details":{}}]}`))
	}))
	defer server.Close()

	portalClient := New(server.URL)
	portalClient.SetToken("raw-token")

	var events []recordedEvent
	unsubscribe := portalClient.Subscribe(func(event auth.Event, session *auth.Session) {
		events = append(events, recordedEvent{event, session})
	})
	defer unsubscribe()

	err := portalClient.SignOut(context.Background())
	require.Error(t, err)

	assert.Empty(t, portalClient.Token())
	require.Len(t, events, 1)
	assert.Equal(t, auth.EventSignedOut, events[0].event)

	// A second sign-out without a session is a no-op
	require.NoError(t, portalClient.SignOut(context.Background()))
	assert.Len(t, events, 1)
}

func TestSessionWithoutTokenShortCircuits(t *testing.T) {
	portalClient := New("http://localhost:1")

	session, err := portalClient.Session(context.Background())
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestSessionDropsRejectedToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusUnauthorized)
		writer.Write([]byte(`{"status":401,"errors":[{"type":"access.unauthorized","message":"Unauthorized","details":{}}]}`))
	}))
	defer server.Close()

	portalClient := New(server.URL)
	portalClient.SetToken("expired")

	session, err := portalClient.Session(context.Background())
	require.NoError(t, err)
	assert.Nil(t, session)
	assert.Empty(t, portalClient.Token())
}

func TestListDrainsAllPages(t *testing.T) {
	items := make([]*group.Group, 5)
	for i := range items {
		items[i] = &group.Group{ID: fmt.Sprintf("group-%d", i), Name: fmt.Sprintf("Group %d", i)}
	}

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		require.Equal(t, "/v1/groups", request.URL.Path)
		offset, _ := strconv.Atoi(request.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(request.URL.Query().Get("limit"))

		end := offset + limit
		if end > len(items) {
			end = len(items)
		}
		page := items[offset:end]

		json.NewEncoder(writer).Encode(map[string]any{
			"pagination": map[string]any{
				"offset":         offset,
				"limit":          limit,
				"total_count":    len(items),
				"included_count": len(page),
			},
			"data": page,
		})
	}))
	defer server.Close()

	originalPageSize := listPageSize
	listPageSize = 2
	defer func() {
		listPageSize = originalPageSize
	}()

	portalClient := New(server.URL)
	listed, err := portalClient.Groups().List(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 5)
	assert.Equal(t, "group-0", listed[0].ID)
	assert.Equal(t, "group-4", listed[4].ID)
}
