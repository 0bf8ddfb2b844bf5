package portal

import (
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/partnerhub/portal-server/internal/api/schema"
	"github.com/partnerhub/portal-server/internal/api/validation"
	"github.com/partnerhub/portal-server/internal/material"
	"github.com/partnerhub/portal-server/internal/profile"
)

// EndpointGetMaterials handles the 'GET /v1/materials?offset={number?:0}&limit={number?:10}' endpoint.
// Non-admin users only see active materials; admins see everything.
func (service *Service) EndpointGetMaterials(writer http.ResponseWriter, request *http.Request) {
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

	materials, n, err := service.Storage.Materials().Get(request.Context(), uint64(offset), uint64(limit), activeOnly)
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}

	service.writer.WriteJSON(writer, schema.BuildPaginatedResponse(uint64(offset), uint64(limit), n, materials))
}

type endpointCreateMaterialRequestPayload struct {
	Title       *string `json:"title" required:"true"`
	Description *string `json:"description"`
	FileURL     *string `json:"file_url"`
	FileType    *string `json:"file_type"`
	Category    *string `json:"category"`
	Active      *bool   `json:"is_active"`
}

// EndpointCreateMaterial handles the 'POST /v1/materials' endpoint
func (service *Service) EndpointCreateMaterial(writer http.ResponseWriter, request *http.Request) {
	requester := request.Context().Value(contextValueProfile).(*profile.Profile)

	payload, validationErrs, err := validation.UnmarshalBody[endpointCreateMaterialRequestPayload](request)
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	if len(validationErrs) > 0 {
		service.writer.WriteErrors(writer, http.StatusBadRequest, validationErrs...)
		return
	}

	create := &material.Create{
		Title:       *payload.Title,
		Description: payload.Description,
		FileURL:     payload.FileURL,
		FileType:    payload.FileType,
		Category:    payload.Category,
		Active:      true,
		CreatedBy:   requester.ID,
	}
	if payload.Active != nil {
		create.Active = *payload.Active
	}

	obj, err := service.Storage.Materials().Create(request.Context(), create)
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}

	service.writer.WriteJSONCode(writer, http.StatusCreated, obj)
}

type endpointEditMaterialRequestPayload struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	FileURL     *string `json:"file_url"`
	FileType    *string `json:"file_type"`
	Category    *string `json:"category"`
	Active      *bool   `json:"is_active"`
}

// EndpointEditMaterial handles the 'PATCH /v1/materials/{id}' endpoint
func (service *Service) EndpointEditMaterial(writer http.ResponseWriter, request *http.Request) {
	id := chi.URLParam(request, "id")

	obj, err := service.Storage.Materials().GetByID(request.Context(), id)
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	if obj == nil {
		service.writer.WriteErrors(writer, http.StatusNotFound, schema.ErrNotFound)
		return
	}

	payload, validationErrs, err := validation.UnmarshalBody[endpointEditMaterialRequestPayload](request)
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	if len(validationErrs) > 0 {
		service.writer.WriteErrors(writer, http.StatusBadRequest, validationErrs...)
		return
	}

	newObj, err := service.Storage.Materials().Update(request.Context(), obj.ID, &material.Update{
		Title:       payload.Title,
		Description: payload.Description,
		FileURL:     payload.FileURL,
		FileType:    payload.FileType,
		Category:    payload.Category,
		Active:      payload.Active,
	})
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	service.writer.WriteJSON(writer, newObj)
}

// EndpointDeleteMaterial handles the 'DELETE /v1/materials/{id}' endpoint
func (service *Service) EndpointDeleteMaterial(writer http.ResponseWriter, request *http.Request) {
	id := chi.URLParam(request, "id")

	obj, err := service.Storage.Materials().GetByID(request.Context(), id)
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	if obj == nil {
		service.writer.WriteErrors(writer, http.StatusNotFound, schema.ErrNotFound)
		return
	}

	if err := service.Storage.Materials().Delete(request.Context(), obj.ID); err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}

	writer.WriteHeader(http.StatusNoContent)
}
