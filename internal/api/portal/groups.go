package portal

import (
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/partnerhub/portal-server/internal/api/schema"
	"github.com/partnerhub/portal-server/internal/api/validation"
	"github.com/partnerhub/portal-server/internal/group"
)

// EndpointGetGroups handles the 'GET /v1/groups?offset={number?:0}&limit={number?:10}' endpoint
func (service *Service) EndpointGetGroups(writer http.ResponseWriter, request *http.Request) {
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

	groups, n, err := service.Storage.Groups().Get(request.Context(), uint64(offset), uint64(limit))
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}

	service.writer.WriteJSON(writer, schema.BuildPaginatedResponse(uint64(offset), uint64(limit), n, groups))
}

// EndpointGetGroup handles the 'GET /v1/groups/{id}' endpoint
func (service *Service) EndpointGetGroup(writer http.ResponseWriter, request *http.Request) {
	id := chi.URLParam(request, "id")

	obj, err := service.Storage.Groups().GetByID(request.Context(), id)
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	if obj == nil {
		service.writer.WriteErrors(writer, http.StatusNotFound, schema.ErrNotFound)
		return
	}

	service.writer.WriteJSON(writer, obj)
}

type endpointCreateGroupRequestPayload struct {
	Name          *string `json:"name" required:"true"`
	CoordinatorID *string `json:"coordinator_id"`
	PowerBILink   *string `json:"powerbi_link"`
	FormLink      *string `json:"form_link"`
}

// EndpointCreateGroup handles the 'POST /v1/groups' endpoint
func (service *Service) EndpointCreateGroup(writer http.ResponseWriter, request *http.Request) {
	payload, validationErrs, err := validation.UnmarshalBody[endpointCreateGroupRequestPayload](request)
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	if len(validationErrs) > 0 {
		service.writer.WriteErrors(writer, http.StatusBadRequest, validationErrs...)
		return
	}

	obj, err := service.Storage.Groups().Create(request.Context(), &group.Create{
		Name:          *payload.Name,
		CoordinatorID: payload.CoordinatorID,
		PowerBILink:   payload.PowerBILink,
		FormLink:      payload.FormLink,
	})
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}

	service.writer.WriteJSONCode(writer, http.StatusCreated, obj)
}

type endpointEditGroupRequestPayload struct {
	Name          *string `json:"name"`
	CoordinatorID *string `json:"coordinator_id"`
	PowerBILink   *string `json:"powerbi_link"`
	FormLink      *string `json:"form_link"`
}

// EndpointEditGroup handles the 'PATCH /v1/groups/{id}' endpoint
func (service *Service) EndpointEditGroup(writer http.ResponseWriter, request *http.Request) {
	id := chi.URLParam(request, "id")

	obj, err := service.Storage.Groups().GetByID(request.Context(), id)
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	if obj == nil {
		service.writer.WriteErrors(writer, http.StatusNotFound, schema.ErrNotFound)
		return
	}

	payload, validationErrs, err := validation.UnmarshalBody[endpointEditGroupRequestPayload](request)
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	if len(validationErrs) > 0 {
		service.writer.WriteErrors(writer, http.StatusBadRequest, validationErrs...)
		return
	}

	newObj, err := service.Storage.Groups().Update(request.Context(), obj.ID, &group.Update{
		Name:          payload.Name,
		CoordinatorID: payload.CoordinatorID,
		PowerBILink:   payload.PowerBILink,
		FormLink:      payload.FormLink,
	})
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	service.writer.WriteJSON(writer, newObj)
}

// EndpointDeleteGroup handles the 'DELETE /v1/groups/{id}' endpoint.
// Profiles referencing the group keep their group_id; the reference is left
// dangling instead of cascading.
func (service *Service) EndpointDeleteGroup(writer http.ResponseWriter, request *http.Request) {
	id := chi.URLParam(request, "id")

	obj, err := service.Storage.Groups().GetByID(request.Context(), id)
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	if obj == nil {
		service.writer.WriteErrors(writer, http.StatusNotFound, schema.ErrNotFound)
		return
	}

	if err := service.Storage.Groups().Delete(request.Context(), obj.ID); err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}

	writer.WriteHeader(http.StatusNoContent)
}
