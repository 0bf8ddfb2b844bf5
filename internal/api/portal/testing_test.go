package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/partnerhub/portal-server/internal/api/portal/session"
	"github.com/partnerhub/portal-server/internal/api/portal/session/storage/inmem"
	"github.com/partnerhub/portal-server/internal/api/schema"
	"github.com/partnerhub/portal-server/internal/config"
	"github.com/partnerhub/portal-server/internal/credential"
	"github.com/partnerhub/portal-server/internal/group"
	"github.com/partnerhub/portal-server/internal/material"
	"github.com/partnerhub/portal-server/internal/news"
	"github.com/partnerhub/portal-server/internal/profile"
)

type testSetup struct {
	server   *httptest.Server
	driver   *fakeDriver
	sessions session.Storage
	service  *Service
}

func newTestSetup(t *testing.T) *testSetup {
	t.Helper()

	driver := newFakeDriver()
	sessionStorage, err := inmem.New()
	require.NoError(t, err)

	service := &Service{
		Config: &config.Config{
			SessionLifetime:        time.Hour,
			PortalAPIAllowedOrigin: "*",
		},
		Storage:        driver,
		SessionStorage: sessionStorage,
		writer: &schema.Writer{
			InternalErrorHook: func(err error) {
				t.Logf("internal error: %v", err)
			},
		},
	}

	router := chi.NewRouter()
	service.registerEndpoints(router)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &testSetup{
		server:   server,
		driver:   driver,
		sessions: sessionStorage,
		service:  service,
	}
}

// seedProfile creates a profile row with the given role and an established session for it
func (setup *testSetup) seedProfile(t *testing.T, role profile.Role) (*profile.Profile, string) {
	t.Helper()

	obj, err := setup.driver.Profiles().Create(context.Background(), &profile.Create{
		ID:    uuid.NewString(),
		Email: uuid.NewString() + "@example.com",
		Name:  "Test User",
		Role:  role,
	})
	require.NoError(t, err)

	rawToken, err := setup.sessions.Create(context.Background(), obj.ID, time.Now().Add(time.Hour).Unix())
	require.NoError(t, err)

	return obj, rawToken
}

// request performs an HTTP request against the test server and returns the status code and response body
func (setup *testSetup) request(t *testing.T, method, path, token string, payload any) (int, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	request, err := http.NewRequest(method, setup.server.URL+path, body)
	require.NoError(t, err)
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	response, err := setup.server.Client().Do(request)
	require.NoError(t, err)
	defer response.Body.Close()

	raw, err := io.ReadAll(response.Body)
	require.NoError(t, err)
	return response.StatusCode, raw
}

// fakeDriver provides an in-memory storage driver implementation for handler tests

type fakeDriver struct {
	profiles    *fakeProfileRepository
	credentials *fakeCredentialRepository
	groups      *fakeGroupRepository
	news        *fakeNewsRepository
	materials   *fakeMaterialRepository
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		profiles:    &fakeProfileRepository{},
		credentials: &fakeCredentialRepository{values: map[string]*credential.Credential{}},
		groups:      &fakeGroupRepository{},
		news:        &fakeNewsRepository{},
		materials:   &fakeMaterialRepository{},
	}
}

func (driver *fakeDriver) Initialize(_ context.Context) error {
	return nil
}

func (driver *fakeDriver) Profiles() profile.Repository {
	return driver.profiles
}

func (driver *fakeDriver) Credentials() credential.Repository {
	return driver.credentials
}

func (driver *fakeDriver) Groups() group.Repository {
	return driver.groups
}

func (driver *fakeDriver) News() news.Repository {
	return driver.news
}

func (driver *fakeDriver) Materials() material.Repository {
	return driver.materials
}

func (driver *fakeDriver) Close() {}

type fakeProfileRepository struct {
	mtx   sync.RWMutex
	items []*profile.Profile
}

func (repo *fakeProfileRepository) Get(_ context.Context, offset, limit uint64) ([]*profile.Profile, uint64, error) {
	repo.mtx.RLock()
	defer repo.mtx.RUnlock()
	return paginate(repo.items, offset, limit), uint64(len(repo.items)), nil
}

func (repo *fakeProfileRepository) GetByID(_ context.Context, id string) (*profile.Profile, error) {
	repo.mtx.RLock()
	defer repo.mtx.RUnlock()
	for _, item := range repo.items {
		if item.ID == id {
			copied := *item
			return &copied, nil
		}
	}
	return nil, nil
}

func (repo *fakeProfileRepository) GetByEmail(_ context.Context, email string) (*profile.Profile, error) {
	repo.mtx.RLock()
	defer repo.mtx.RUnlock()
	for _, item := range repo.items {
		if item.Email == email {
			copied := *item
			return &copied, nil
		}
	}
	return nil, nil
}

func (repo *fakeProfileRepository) Create(_ context.Context, create *profile.Create) (*profile.Profile, error) {
	repo.mtx.Lock()
	defer repo.mtx.Unlock()
	now := time.Now()
	item := &profile.Profile{
		ID:        create.ID,
		Email:     create.Email,
		Name:      create.Name,
		Role:      create.Role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	repo.items = append([]*profile.Profile{item}, repo.items...)
	copied := *item
	return &copied, nil
}

func (repo *fakeProfileRepository) Update(_ context.Context, id string, update *profile.Update) (*profile.Profile, error) {
	repo.mtx.Lock()
	defer repo.mtx.Unlock()
	for _, item := range repo.items {
		if item.ID != id {
			continue
		}
		if update.Name != nil {
			item.Name = *update.Name
		}
		if update.Role != nil {
			item.Role = *update.Role
		}
		if update.GroupID != nil {
			groupID := *update.GroupID
			item.GroupID = &groupID
		}
		item.UpdatedAt = time.Now()
		copied := *item
		return &copied, nil
	}
	return nil, fmt.Errorf("unknown profile %q", id)
}

func (repo *fakeProfileRepository) Delete(_ context.Context, id string) error {
	repo.mtx.Lock()
	defer repo.mtx.Unlock()
	for i, item := range repo.items {
		if item.ID == id {
			repo.items = append(repo.items[:i], repo.items[i+1:]...)
			return nil
		}
	}
	return nil
}

type fakeCredentialRepository struct {
	mtx    sync.RWMutex
	values map[string]*credential.Credential
}

func (repo *fakeCredentialRepository) GetByProfileID(_ context.Context, profileID string) (*credential.Credential, error) {
	repo.mtx.RLock()
	defer repo.mtx.RUnlock()
	return repo.values[profileID], nil
}

func (repo *fakeCredentialRepository) Set(_ context.Context, cred *credential.Credential) error {
	repo.mtx.Lock()
	defer repo.mtx.Unlock()
	repo.values[cred.ProfileID] = cred
	return nil
}

func (repo *fakeCredentialRepository) Delete(_ context.Context, profileID string) error {
	repo.mtx.Lock()
	defer repo.mtx.Unlock()
	delete(repo.values, profileID)
	return nil
}

type fakeGroupRepository struct {
	mtx   sync.RWMutex
	items []*group.Group
}

func (repo *fakeGroupRepository) Get(_ context.Context, offset, limit uint64) ([]*group.Group, uint64, error) {
	repo.mtx.RLock()
	defer repo.mtx.RUnlock()
	return paginate(repo.items, offset, limit), uint64(len(repo.items)), nil
}

func (repo *fakeGroupRepository) GetByID(_ context.Context, id string) (*group.Group, error) {
	repo.mtx.RLock()
	defer repo.mtx.RUnlock()
	for _, item := range repo.items {
		if item.ID == id {
			copied := *item
			return &copied, nil
		}
	}
	return nil, nil
}

func (repo *fakeGroupRepository) Create(_ context.Context, create *group.Create) (*group.Group, error) {
	repo.mtx.Lock()
	defer repo.mtx.Unlock()
	now := time.Now()
	item := &group.Group{
		ID:            uuid.NewString(),
		Name:          create.Name,
		CoordinatorID: create.CoordinatorID,
		PowerBILink:   create.PowerBILink,
		FormLink:      create.FormLink,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	repo.items = append([]*group.Group{item}, repo.items...)
	copied := *item
	return &copied, nil
}

func (repo *fakeGroupRepository) Update(_ context.Context, id string, update *group.Update) (*group.Group, error) {
	repo.mtx.Lock()
	defer repo.mtx.Unlock()
	for _, item := range repo.items {
		if item.ID != id {
			continue
		}
		if update.Name != nil {
			item.Name = *update.Name
		}
		if update.CoordinatorID != nil {
			coordinatorID := *update.CoordinatorID
			item.CoordinatorID = &coordinatorID
		}
		if update.PowerBILink != nil {
			link := *update.PowerBILink
			item.PowerBILink = &link
		}
		if update.FormLink != nil {
			link := *update.FormLink
			item.FormLink = &link
		}
		item.UpdatedAt = time.Now()
		copied := *item
		return &copied, nil
	}
	return nil, fmt.Errorf("unknown group %q", id)
}

func (repo *fakeGroupRepository) Delete(_ context.Context, id string) error {
	repo.mtx.Lock()
	defer repo.mtx.Unlock()
	for i, item := range repo.items {
		if item.ID == id {
			repo.items = append(repo.items[:i], repo.items[i+1:]...)
			return nil
		}
	}
	return nil
}

type fakeNewsRepository struct {
	mtx   sync.RWMutex
	items []*news.News
}

func (repo *fakeNewsRepository) Get(_ context.Context, offset, limit uint64, activeOnly bool) ([]*news.News, uint64, error) {
	repo.mtx.RLock()
	defer repo.mtx.RUnlock()
	items := repo.items
	if activeOnly {
		items = nil
		for _, item := range repo.items {
			if item.Active {
				items = append(items, item)
			}
		}
	}
	return paginate(items, offset, limit), uint64(len(items)), nil
}

func (repo *fakeNewsRepository) GetByID(_ context.Context, id string) (*news.News, error) {
	repo.mtx.RLock()
	defer repo.mtx.RUnlock()
	for _, item := range repo.items {
		if item.ID == id {
			copied := *item
			return &copied, nil
		}
	}
	return nil, nil
}

func (repo *fakeNewsRepository) Create(_ context.Context, create *news.Create) (*news.News, error) {
	repo.mtx.Lock()
	defer repo.mtx.Unlock()
	now := time.Now()
	item := &news.News{
		ID:        uuid.NewString(),
		Title:     create.Title,
		Content:   create.Content,
		Category:  create.Category,
		ImageURL:  create.ImageURL,
		Urgent:    create.Urgent,
		Active:    create.Active,
		CreatedBy: create.CreatedBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
	repo.items = append([]*news.News{item}, repo.items...)
	copied := *item
	return &copied, nil
}

func (repo *fakeNewsRepository) Update(_ context.Context, id string, update *news.Update) (*news.News, error) {
	repo.mtx.Lock()
	defer repo.mtx.Unlock()
	for _, item := range repo.items {
		if item.ID != id {
			continue
		}
		if update.Title != nil {
			item.Title = *update.Title
		}
		if update.Content != nil {
			item.Content = *update.Content
		}
		if update.Category != nil {
			category := *update.Category
			item.Category = &category
		}
		if update.ImageURL != nil {
			imageURL := *update.ImageURL
			item.ImageURL = &imageURL
		}
		if update.Urgent != nil {
			item.Urgent = *update.Urgent
		}
		if update.Active != nil {
			item.Active = *update.Active
		}
		item.UpdatedAt = time.Now()
		copied := *item
		return &copied, nil
	}
	return nil, fmt.Errorf("unknown news entry %q", id)
}

func (repo *fakeNewsRepository) Delete(_ context.Context, id string) error {
	repo.mtx.Lock()
	defer repo.mtx.Unlock()
	for i, item := range repo.items {
		if item.ID == id {
			repo.items = append(repo.items[:i], repo.items[i+1:]...)
			return nil
		}
	}
	return nil
}

type fakeMaterialRepository struct {
	mtx   sync.RWMutex
	items []*material.Material
}

func (repo *fakeMaterialRepository) Get(_ context.Context, offset, limit uint64, activeOnly bool) ([]*material.Material, uint64, error) {
	repo.mtx.RLock()
	defer repo.mtx.RUnlock()
	items := repo.items
	if activeOnly {
		items = nil
		for _, item := range repo.items {
			if item.Active {
				items = append(items, item)
			}
		}
	}
	return paginate(items, offset, limit), uint64(len(items)), nil
}

func (repo *fakeMaterialRepository) GetByID(_ context.Context, id string) (*material.Material, error) {
	repo.mtx.RLock()
	defer repo.mtx.RUnlock()
	for _, item := range repo.items {
		if item.ID == id {
			copied := *item
			return &copied, nil
		}
	}
	return nil, nil
}

func (repo *fakeMaterialRepository) Create(_ context.Context, create *material.Create) (*material.Material, error) {
	repo.mtx.Lock()
	defer repo.mtx.Unlock()
	now := time.Now()
	item := &material.Material{
		ID:          uuid.NewString(),
		Title:       create.Title,
		Description: create.Description,
		FileURL:     create.FileURL,
		FileType:    create.FileType,
		Category:    create.Category,
		Active:      create.Active,
		CreatedBy:   create.CreatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	repo.items = append([]*material.Material{item}, repo.items...)
	copied := *item
	return &copied, nil
}

func (repo *fakeMaterialRepository) Update(_ context.Context, id string, update *material.Update) (*material.Material, error) {
	repo.mtx.Lock()
	defer repo.mtx.Unlock()
	for _, item := range repo.items {
		if item.ID != id {
			continue
		}
		if update.Title != nil {
			item.Title = *update.Title
		}
		if update.Description != nil {
			description := *update.Description
			item.Description = &description
		}
		if update.FileURL != nil {
			fileURL := *update.FileURL
			item.FileURL = &fileURL
		}
		if update.FileType != nil {
			fileType := *update.FileType
			item.FileType = &fileType
		}
		if update.Category != nil {
			category := *update.Category
			item.Category = &category
		}
		if update.Active != nil {
			item.Active = *update.Active
		}
		item.UpdatedAt = time.Now()
		copied := *item
		return &copied, nil
	}
	return nil, fmt.Errorf("unknown material %q", id)
}

func (repo *fakeMaterialRepository) Delete(_ context.Context, id string) error {
	repo.mtx.Lock()
	defer repo.mtx.Unlock()
	for i, item := range repo.items {
		if item.ID == id {
			repo.items = append(repo.items[:i], repo.items[i+1:]...)
			return nil
		}
	}
	return nil
}

func paginate[T any](items []T, offset, limit uint64) []T {
	if offset >= uint64(len(items)) {
		return []T{}
	}
	end := offset + limit
	if end > uint64(len(items)) {
		end = uint64(len(items))
	}
	page := make([]T, end-offset)
	copy(page, items[offset:end])
	return page
}
