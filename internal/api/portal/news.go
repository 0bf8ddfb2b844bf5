package portal

import (
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/partnerhub/portal-server/internal/api/schema"
	"github.com/partnerhub/portal-server/internal/api/validation"
	"github.com/partnerhub/portal-server/internal/news"
	"github.com/partnerhub/portal-server/internal/profile"
)

// EndpointGetNews handles the 'GET /v1/news?offset={number?:0}&limit={number?:10}' endpoint.
// Non-admin users only see active entries; admins see everything.
func (service *Service) EndpointGetNews(writer http.ResponseWriter, request *http.Request) {
	requester := request.Context().Value(contextValueProfile).(*profile.Profile)

	var validationErrs []*schema.Error

	offset, validationErr := validation.QueryNumber(request, "offset", false, 0, 0, math.MaxInt64)
	if validationErr != nil {
		validationErrs = append(validationErrs, validationErr)
	}

	limit, validationErr := validation.QueryNumber(request, "limit", false, 10, 1, 1000)
	if validationErr != nil {
		validationErrs = append(validationErrs, validationErr)
	}

	if len(validationErrs) > 0 {
		service.writer.WriteErrors(writer, http.StatusBadRequest, validationErrs...)
		return
	}

	activeOnly := requester.Role != profile.RoleAdmin

	entries, n, err := service.Storage.News().Get(request.Context(), uint64(offset), uint64(limit), activeOnly)
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}

	service.writer.WriteJSON(writer, schema.BuildPaginatedResponse(uint64(offset), uint64(limit), n, entries))
}

type endpointCreateNewsRequestPayload struct {
	Title    *string `json:"title" required:"true"`
	Content  *string `json:"content" required:"true"`
	Category *string `json:"category"`
	ImageURL *string `json:"image_url"`
	Urgent   *bool   `json:"is_urgent"`
	Active   *bool   `json:"is_active"`
}

// EndpointCreateNews handles the 'POST /v1/news' endpoint
func (service *Service) EndpointCreateNews(writer http.ResponseWriter, request *http.Request) {
	requester := request.Context().Value(contextValueProfile).(*profile.Profile)

	payload, validationErrs, err := validation.UnmarshalBody[endpointCreateNewsRequestPayload](request)
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	if len(validationErrs) > 0 {
		service.writer.WriteErrors(writer, http.StatusBadRequest, validationErrs...)
		return
	}

	create := &news.Create{
		Title:     *payload.Title,
		Content:   *payload.Content,
		Category:  payload.Category,
		ImageURL:  payload.ImageURL,
		Active:    true,
		CreatedBy: requester.ID,
	}
	if payload.Urgent != nil {
		create.Urgent = *payload.Urgent
	}
	if payload.Active != nil {
		create.Active = *payload.Active
	}

	obj, err := service.Storage.News().Create(request.Context(), create)
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}

	service.writer.WriteJSONCode(writer, http.StatusCreated, obj)
}

type endpointEditNewsRequestPayload struct {
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	Category *string `json:"category"`
	ImageURL *string `json:"image_url"`
	Urgent   *bool   `json:"is_urgent"`
	Active   *bool   `json:"is_active"`
}

// EndpointEditNews handles the 'PATCH /v1/news/{id}' endpoint
func (service *Service) EndpointEditNews(writer http.ResponseWriter, request *http.Request) {
	id := chi.URLParam(request, "id")

	obj, err := service.Storage.News().GetByID(request.Context(), id)
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	if obj == nil {
		service.writer.WriteErrors(writer, http.StatusNotFound, schema.ErrNotFound)
		return
	}

	payload, validationErrs, err := validation.UnmarshalBody[endpointEditNewsRequestPayload](request)
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	if len(validationErrs) > 0 {
		service.writer.WriteErrors(writer, http.StatusBadRequest, validationErrs...)
		return
	}

	newObj, err := service.Storage.News().Update(request.Context(), obj.ID, &news.Update{
		Title:    payload.Title,
		Content:  payload.Content,
		Category: payload.Category,
		ImageURL: payload.ImageURL,
		Urgent:   payload.Urgent,
		Active:   payload.Active,
	})
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	service.writer.WriteJSON(writer, newObj)
}

// EndpointDeleteNews handles the 'DELETE /v1/news/{id}' endpoint
func (service *Service) EndpointDeleteNews(writer http.ResponseWriter, request *http.Request) {
	id := chi.URLParam(request, "id")

	obj, err := service.Storage.News().GetByID(request.Context(), id)
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	if obj == nil {
		service.writer.WriteErrors(writer, http.StatusNotFound, schema.ErrNotFound)
		return
	}

	if err := service.Storage.News().Delete(request.Context(), obj.ID); err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}

	writer.WriteHeader(http.StatusNoContent)
}
