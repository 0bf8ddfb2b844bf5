package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/partnerhub/portal-server/internal/api/schema"
	"github.com/partnerhub/portal-server/internal/group"
	"github.com/partnerhub/portal-server/internal/material"
	"github.com/partnerhub/portal-server/internal/mirror"
	"github.com/partnerhub/portal-server/internal/news"
	"github.com/partnerhub/portal-server/internal/profile"
)

var listPageSize = 100

// listAll drains a paginated collection endpoint page by page
func listAll[T any](ctx context.Context, client *Client, path string) ([]T, error) {
	var items []T
	offset := 0
	for {
		page := new(schema.PaginatedResponse[T])
		url := fmt.Sprintf("%s?offset=%d&limit=%d", path, offset, listPageSize)
		if err := client.do(ctx, http.MethodGet, url, nil, page); err != nil {
			return nil, err
		}
		items = append(items, page.Data...)
		offset += len(page.Data)
		if len(page.Data) == 0 || uint64(offset) >= page.Pagination.TotalCount {
			return items, nil
		}
	}
}

// ProfileCreate is used to register a new account through the profile table
type ProfileCreate struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// ProfilePatch is used to write partial fields to a profile row
type ProfilePatch struct {
	Name    *string `json:"name,omitempty"`
	Role    *string `json:"role,omitempty"`
	GroupID *string `json:"group_id,omitempty"`
}

type profileTable struct {
	client *Client
}

// Profiles returns the remote profile table
func (client *Client) Profiles() mirror.Table[*profile.Profile, *ProfileCreate, *ProfilePatch] {
	return &profileTable{client}
}

func (table *profileTable) List(ctx context.Context) ([]*profile.Profile, error) {
	return listAll[*profile.Profile](ctx, table.client, "/v1/profiles")
}

func (table *profileTable) Create(ctx context.Context, create *ProfileCreate) (*profile.Profile, error) {
	obj := new(profile.Profile)
	if err := table.client.do(ctx, http.MethodPost, "/v1/auth/signup", create, obj); err != nil {
		return nil, err
	}
	return obj, nil
}

func (table *profileTable) Update(ctx context.Context, id string, patch *ProfilePatch) (*profile.Profile, error) {
	obj := new(profile.Profile)
	if err := table.client.do(ctx, http.MethodPatch, "/v1/profiles/"+id, patch, obj); err != nil {
		return nil, err
	}
	return obj, nil
}

func (table *profileTable) Delete(ctx context.Context, id string) error {
	return table.client.do(ctx, http.MethodDelete, "/v1/profiles/"+id, nil, nil)
}

// GroupCreate is used to create a new partner group
type GroupCreate struct {
	Name          string  `json:"name"`
	CoordinatorID *string `json:"coordinator_id,omitempty"`
	PowerBILink   *string `json:"powerbi_link,omitempty"`
	FormLink      *string `json:"form_link,omitempty"`
}

// GroupPatch is used to write partial fields to a partner group
type GroupPatch struct {
	Name          *string `json:"name,omitempty"`
	CoordinatorID *string `json:"coordinator_id,omitempty"`
	PowerBILink   *string `json:"powerbi_link,omitempty"`
	FormLink      *string `json:"form_link,omitempty"`
}

type groupTable struct {
	client *Client
}

// Groups returns the remote partner group table
func (client *Client) Groups() mirror.Table[*group.Group, *GroupCreate, *GroupPatch] {
	return &groupTable{client}
}

func (table *groupTable) List(ctx context.Context) ([]*group.Group, error) {
	return listAll[*group.Group](ctx, table.client, "/v1/groups")
}

func (table *groupTable) Create(ctx context.Context, create *GroupCreate) (*group.Group, error) {
	obj := new(group.Group)
	if err := table.client.do(ctx, http.MethodPost, "/v1/groups", create, obj); err != nil {
		return nil, err
	}
	return obj, nil
}

func (table *groupTable) Update(ctx context.Context, id string, patch *GroupPatch) (*group.Group, error) {
	obj := new(group.Group)
	if err := table.client.do(ctx, http.MethodPatch, "/v1/groups/"+id, patch, obj); err != nil {
		return nil, err
	}
	return obj, nil
}

func (table *groupTable) Delete(ctx context.Context, id string) error {
	return table.client.do(ctx, http.MethodDelete, "/v1/groups/"+id, nil, nil)
}

// NewsCreate is used to publish a new news entry
type NewsCreate struct {
	Title    string  `json:"title"`
	Content  string  `json:"content"`
	Category *string `json:"category,omitempty"`
	ImageURL *string `json:"image_url,omitempty"`
	Urgent   *bool   `json:"is_urgent,omitempty"`
	Active   *bool   `json:"is_active,omitempty"`
}

// NewsPatch is used to write partial fields to a news entry
type NewsPatch struct {
	Title    *string `json:"title,omitempty"`
	Content  *string `json:"content,omitempty"`
	Category *string `json:"category,omitempty"`
	ImageURL *string `json:"image_url,omitempty"`
	Urgent   *bool   `json:"is_urgent,omitempty"`
	Active   *bool   `json:"is_active,omitempty"`
}

type newsTable struct {
	client *Client
}

// News returns the remote news table
func (client *Client) News() mirror.Table[*news.News, *NewsCreate, *NewsPatch] {
	return &newsTable{client}
}

func (table *newsTable) List(ctx context.Context) ([]*news.News, error) {
	return listAll[*news.News](ctx, table.client, "/v1/news")
}

func (table *newsTable) Create(ctx context.Context, create *NewsCreate) (*news.News, error) {
	obj := new(news.News)
	if err := table.client.do(ctx, http.MethodPost, "/v1/news", create, obj); err != nil {
		return nil, err
	}
	return obj, nil
}

func (table *newsTable) Update(ctx context.Context, id string, patch *NewsPatch) (*news.News, error) {
	obj := new(news.News)
	if err := table.client.do(ctx, http.MethodPatch, "/v1/news/"+id, patch, obj); err != nil {
		return nil, err
	}
	return obj, nil
}

func (table *newsTable) Delete(ctx context.Context, id string) error {
	return table.client.do(ctx, http.MethodDelete, "/v1/news/"+id, nil, nil)
}

// MaterialCreate is used to publish a new downloadable material
type MaterialCreate struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	FileURL     *string `json:"file_url,omitempty"`
	FileType    *string `json:"file_type,omitempty"`
	Category    *string `json:"category,omitempty"`
	Active      *bool   `json:"is_active,omitempty"`
}

// MaterialPatch is used to write partial fields to a material
type MaterialPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	FileURL     *string `json:"file_url,omitempty"`
	FileType    *string `json:"file_type,omitempty"`
	Category    *string `json:"category,omitempty"`
	Active      *bool   `json:"is_active,omitempty"`
}

type materialTable struct {
	client *Client
}

// Materials returns the remote material table
func (client *Client) Materials() mirror.Table[*material.Material, *MaterialCreate, *MaterialPatch] {
	return &materialTable{client}
}

func (table *materialTable) List(ctx context.Context) ([]*material.Material, error) {
	return listAll[*material.Material](ctx, table.client, "/v1/materials")
}

func (table *materialTable) Create(ctx context.Context, create *MaterialCreate) (*material.Material, error) {
	obj := new(material.Material)
	if err := table.client.do(ctx, http.MethodPost, "/v1/materials", create, obj); err != nil {
		return nil, err
	}
	return obj, nil
}

func (table *materialTable) Update(ctx context.Context, id string, patch *MaterialPatch) (*material.Material, error) {
	obj := new(material.Material)
	if err := table.client.do(ctx, http.MethodPatch, "/v1/materials/"+id, patch, obj); err != nil {
		return nil, err
	}
	return obj, nil
}

func (table *materialTable) Delete(ctx context.Context, id string) error {
	return table.client.do(ctx, http.MethodDelete, "/v1/materials/"+id, nil, nil)
}
