package portal

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partnerhub/portal-server/internal/api/schema"
	"github.com/partnerhub/portal-server/internal/group"
	"github.com/partnerhub/portal-server/internal/news"
	"github.com/partnerhub/portal-server/internal/profile"
)

func TestSignUpLoginSessionFlow(t *testing.T) {
	setup := newTestSetup(t)

	status, body := setup.request(t, http.MethodPost, "/v1/auth/signup", "", map[string]string{
		"email":    "Jane.Doe@Example.com",
		"password": "hunter2",
		"name":     "Jane Doe",
	})
	require.Equal(t, http.StatusCreated, status)

	created := new(profile.Profile)
	require.NoError(t, json.Unmarshal(body, created))
	assert.Equal(t, "jane.doe@example.com", created.Email)
	assert.Equal(t, profile.RoleUser, created.Role)

	// A second registration with the same address is rejected
	status, _ = setup.request(t, http.MethodPost, "/v1/auth/signup", "", map[string]string{
		"email":    "jane.doe@example.com",
		"password": "hunter2",
		"name":     "Jane Doe",
	})
	assert.Equal(t, http.StatusConflict, status)

	// A wrong password is indistinguishable from a missing account
	status, _ = setup.request(t, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"email":    "jane.doe@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = setup.request(t, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"email":    "nobody@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusForbidden, status)

	status, body = setup.request(t, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"email":    "jane.doe@example.com",
		"password": "hunter2",
	})
	require.Equal(t, http.StatusOK, status)

	login := struct {
		Token  string `json:"token"`
		UserID string `json:"user_id"`
	}{}
	require.NoError(t, json.Unmarshal(body, &login))
	require.NotEmpty(t, login.Token)
	assert.Equal(t, created.ID, login.UserID)

	status, body = setup.request(t, http.MethodGet, "/v1/auth/session", login.Token, nil)
	require.Equal(t, http.StatusOK, status)
	ses := struct {
		UserID string `json:"user_id"`
	}{}
	require.NoError(t, json.Unmarshal(body, &ses))
	assert.Equal(t, created.ID, ses.UserID)

	status, body = setup.request(t, http.MethodGet, "/v1/me", login.Token, nil)
	require.Equal(t, http.StatusOK, status)
	self := new(profile.Profile)
	require.NoError(t, json.Unmarshal(body, self))
	assert.Equal(t, "jane.doe@example.com", self.Email)

	status, _ = setup.request(t, http.MethodPost, "/v1/auth/logout", login.Token, nil)
	require.Equal(t, http.StatusNoContent, status)

	status, _ = setup.request(t, http.MethodGet, "/v1/auth/session", login.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAdminEndpointsRequireAdminRole(t *testing.T) {
	setup := newTestSetup(t)

	_, adminToken := setup.seedProfile(t, profile.RoleAdmin)
	_, coordinatorToken := setup.seedProfile(t, profile.RoleCoordinator)
	_, userToken := setup.seedProfile(t, profile.RoleUser)

	status, _ := setup.request(t, http.MethodGet, "/v1/profiles", adminToken, nil)
	assert.Equal(t, http.StatusOK, status)

	status, body := setup.request(t, http.MethodGet, "/v1/profiles", coordinatorToken, nil)
	assert.Equal(t, http.StatusForbidden, status)
	errResponse := new(schema.ErrorResponse)
	require.NoError(t, json.Unmarshal(body, errResponse))
	require.Len(t, errResponse.Errors, 1)
	assert.Equal(t, "access.missingRole", errResponse.Errors[0].Type)

	status, _ = setup.request(t, http.MethodGet, "/v1/profiles", userToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = setup.request(t, http.MethodGet, "/v1/profiles", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestCoordinatorRegionAdmitsAdminOverride(t *testing.T) {
	setup := newTestSetup(t)

	_, adminToken := setup.seedProfile(t, profile.RoleAdmin)
	_, coordinatorToken := setup.seedProfile(t, profile.RoleCoordinator)
	_, userToken := setup.seedProfile(t, profile.RoleUser)

	obj, err := setup.driver.Groups().Create(context.Background(), &group.Create{Name: "North"})
	require.NoError(t, err)

	status, _ := setup.request(t, http.MethodGet, "/v1/groups/"+obj.ID, coordinatorToken, nil)
	assert.Equal(t, http.StatusOK, status)

	// The admin role overrides the coordinator requirement
	status, _ = setup.request(t, http.MethodGet, "/v1/groups/"+obj.ID, adminToken, nil)
	assert.Equal(t, http.StatusOK, status)

	// A regular user never crosses into the coordinator region
	status, _ = setup.request(t, http.MethodGet, "/v1/groups/"+obj.ID, userToken, nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestUnknownRoleIsTreatedAsRegularUser(t *testing.T) {
	setup := newTestSetup(t)

	_, token := setup.seedProfile(t, profile.Role("superuser"))

	status, _ := setup.request(t, http.MethodGet, "/v1/profiles", token, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body := setup.request(t, http.MethodGet, "/v1/me", token, nil)
	require.Equal(t, http.StatusOK, status)
	self := new(profile.Profile)
	require.NoError(t, json.Unmarshal(body, self))
	assert.Equal(t, profile.RoleUser, self.Role)
}

func TestEditProfileRejectsUnknownRole(t *testing.T) {
	setup := newTestSetup(t)

	_, adminToken := setup.seedProfile(t, profile.RoleAdmin)
	target, _ := setup.seedProfile(t, profile.RoleUser)

	status, body := setup.request(t, http.MethodPatch, "/v1/profiles/"+target.ID, adminToken, map[string]string{
		"role": "owner",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	errResponse := new(schema.ErrorResponse)
	require.NoError(t, json.Unmarshal(body, errResponse))
	require.Len(t, errResponse.Errors, 1)
	assert.Equal(t, "profiles.invalidRole", errResponse.Errors[0].Type)

	status, body = setup.request(t, http.MethodPatch, "/v1/profiles/"+target.ID, adminToken, map[string]string{
		"role": "coordinator",
	})
	require.Equal(t, http.StatusOK, status)
	updated := new(profile.Profile)
	require.NoError(t, json.Unmarshal(body, updated))
	assert.Equal(t, profile.RoleCoordinator, updated.Role)
}

func TestSelfEditOnlyChangesName(t *testing.T) {
	setup := newTestSetup(t)

	obj, token := setup.seedProfile(t, profile.RoleUser)

	status, body := setup.request(t, http.MethodPatch, "/v1/me", token, map[string]string{
		"name": "New Name",
		"role": "admin",
	})
	require.Equal(t, http.StatusOK, status)

	updated := new(profile.Profile)
	require.NoError(t, json.Unmarshal(body, updated))
	assert.Equal(t, "New Name", updated.Name)
	assert.Equal(t, profile.RoleUser, updated.Role)

	stored, err := setup.driver.Profiles().GetByID(context.Background(), obj.ID)
	require.NoError(t, err)
	assert.Equal(t, profile.RoleUser, stored.Role)
}

func TestNewsListHidesInactiveEntriesFromNonAdmins(t *testing.T) {
	setup := newTestSetup(t)

	admin, adminToken := setup.seedProfile(t, profile.RoleAdmin)
	_, userToken := setup.seedProfile(t, profile.RoleUser)

	_, err := setup.driver.News().Create(context.Background(), &news.Create{
		Title: "Visible", Content: "...", Active: true, CreatedBy: admin.ID,
	})
	require.NoError(t, err)
	_, err = setup.driver.News().Create(context.Background(), &news.Create{
		Title: "Hidden", Content: "...", Active: false, CreatedBy: admin.ID,
	})
	require.NoError(t, err)

	status, body := setup.request(t, http.MethodGet, "/v1/news", userToken, nil)
	require.Equal(t, http.StatusOK, status)
	page := new(schema.PaginatedResponse[*news.News])
	require.NoError(t, json.Unmarshal(body, page))
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Visible", page.Data[0].Title)

	status, body = setup.request(t, http.MethodGet, "/v1/news", adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	page = new(schema.PaginatedResponse[*news.News])
	require.NoError(t, json.Unmarshal(body, page))
	assert.Len(t, page.Data, 2)
}

func TestCreateNewsStampsCreator(t *testing.T) {
	setup := newTestSetup(t)

	admin, adminToken := setup.seedProfile(t, profile.RoleAdmin)

	status, body := setup.request(t, http.MethodPost, "/v1/news", adminToken, map[string]any{
		"title":     "Launch",
		"content":   "We are live.",
		"is_urgent": true,
	})
	require.Equal(t, http.StatusCreated, status)

	created := new(news.News)
	require.NoError(t, json.Unmarshal(body, created))
	assert.Equal(t, admin.ID, created.CreatedBy)
	assert.True(t, created.Urgent)
	assert.True(t, created.Active)
}

func TestGroupDeleteLeavesDanglingReference(t *testing.T) {
	setup := newTestSetup(t)

	_, adminToken := setup.seedProfile(t, profile.RoleAdmin)
	member, memberToken := setup.seedProfile(t, profile.RoleUser)

	status, body := setup.request(t, http.MethodPost, "/v1/groups", adminToken, map[string]string{
		"name": "South",
	})
	require.Equal(t, http.StatusCreated, status)
	created := new(group.Group)
	require.NoError(t, json.Unmarshal(body, created))

	status, _ = setup.request(t, http.MethodPatch, "/v1/profiles/"+member.ID, adminToken, map[string]string{
		"group_id": created.ID,
	})
	require.Equal(t, http.StatusOK, status)

	status, body = setup.request(t, http.MethodGet, "/v1/me/group", memberToken, nil)
	require.Equal(t, http.StatusOK, status)
	resolved := new(group.Group)
	require.NoError(t, json.Unmarshal(body, resolved))
	assert.Equal(t, created.ID, resolved.ID)

	status, _ = setup.request(t, http.MethodDelete, "/v1/groups/"+created.ID, adminToken, nil)
	require.Equal(t, http.StatusNoContent, status)

	// The group reference stays on the profile even though the group is gone
	stored, err := setup.driver.Profiles().GetByID(context.Background(), member.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.GroupID)
	assert.Equal(t, created.ID, *stored.GroupID)

	status, _ = setup.request(t, http.MethodGet, "/v1/me/group", memberToken, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestDeleteProfileTerminatesSessions(t *testing.T) {
	setup := newTestSetup(t)

	_, adminToken := setup.seedProfile(t, profile.RoleAdmin)
	target, targetToken := setup.seedProfile(t, profile.RoleUser)

	status, _ := setup.request(t, http.MethodDelete, "/v1/profiles/"+target.ID, adminToken, nil)
	require.Equal(t, http.StatusNoContent, status)

	status, _ = setup.request(t, http.MethodGet, "/v1/me", targetToken, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	stored, err := setup.driver.Profiles().GetByID(context.Background(), target.ID)
	require.NoError(t, err)
	assert.Nil(t, stored)
}
