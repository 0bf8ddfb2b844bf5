package portal

import (
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/partnerhub/portal-server/internal/api/schema"
	"github.com/partnerhub/portal-server/internal/api/validation"
	"github.com/partnerhub/portal-server/internal/profile"
)

var errInvalidRole = func(raw string) *schema.Error {
	return &schema.Error{
		Type:    "profiles.invalidRole",
		Message: "The given role is not one of 'admin', 'coordinator' or 'user'.",
		Details: map[string]any{
			"role": raw,
		},
	}
}

// EndpointGetProfiles handles the 'GET /v1/profiles?offset={number?:0}&limit={number?:10}' endpoint
func (service *Service) EndpointGetProfiles(writer http.ResponseWriter, request *http.Request) {
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

	profiles, n, err := service.Storage.Profiles().Get(request.Context(), uint64(offset), uint64(limit))
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}

	service.writer.WriteJSON(writer, schema.BuildPaginatedResponse(uint64(offset), uint64(limit), n, profiles))
}

// EndpointGetProfile handles the 'GET /v1/profiles/{id}' endpoint
func (service *Service) EndpointGetProfile(writer http.ResponseWriter, request *http.Request) {
	id := chi.URLParam(request, "id")

	obj, err := service.Storage.Profiles().GetByID(request.Context(), id)
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

type endpointEditProfileRequestPayload struct {
	Name    *string `json:"name"`
	Role    *string `json:"role"`
	GroupID *string `json:"group_id"`
}

// EndpointEditProfile handles the 'PATCH /v1/profiles/{id}' endpoint
func (service *Service) EndpointEditProfile(writer http.ResponseWriter, request *http.Request) {
	id := chi.URLParam(request, "id")

	// Retrieve the old profile
	obj, err := service.Storage.Profiles().GetByID(request.Context(), id)
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	if obj == nil {
		service.writer.WriteErrors(writer, http.StatusNotFound, schema.ErrNotFound)
		return
	}

	// Unmarshal and validate the request body
	payload, validationErrs, err := validation.UnmarshalBody[endpointEditProfileRequestPayload](request)
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	if len(validationErrs) > 0 {
		service.writer.WriteErrors(writer, http.StatusBadRequest, validationErrs...)
		return
	}

	// Construct the update action.
	// Unlike reads, admin role writes are strict: unknown values are rejected instead of coerced.
	update := &profile.Update{
		Name:    payload.Name,
		GroupID: payload.GroupID,
	}
	if payload.Role != nil {
		role := profile.Role(*payload.Role)
		if !role.Valid() {
			service.writer.WriteErrors(writer, http.StatusBadRequest, errInvalidRole(*payload.Role))
			return
		}
		update.Role = &role
	}

	// Update the profile and return the new one
	newObj, err := service.Storage.Profiles().Update(request.Context(), obj.ID, update)
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	service.writer.WriteJSON(writer, newObj)
}

// EndpointDeleteProfile handles the 'DELETE /v1/profiles/{id}' endpoint.
// The credential and all sessions of the profile are removed along with the row itself.
func (service *Service) EndpointDeleteProfile(writer http.ResponseWriter, request *http.Request) {
	id := chi.URLParam(request, "id")

	obj, err := service.Storage.Profiles().GetByID(request.Context(), id)
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	if obj == nil {
		service.writer.WriteErrors(writer, http.StatusNotFound, schema.ErrNotFound)
		return
	}

	if err := service.Storage.Credentials().Delete(request.Context(), obj.ID); err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	if err := service.SessionStorage.TerminateByUserID(request.Context(), obj.ID); err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	if err := service.Storage.Profiles().Delete(request.Context(), obj.ID); err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}

	writer.WriteHeader(http.StatusNoContent)
}

// EndpointGetSelf handles the 'GET /v1/me' endpoint
func (service *Service) EndpointGetSelf(writer http.ResponseWriter, request *http.Request) {
	obj := request.Context().Value(contextValueProfile).(*profile.Profile)
	service.writer.WriteJSON(writer, obj)
}

type endpointEditSelfRequestPayload struct {
	Name *string `json:"name"`
}

// EndpointEditSelf handles the 'PATCH /v1/me' endpoint.
// Users may only change their own display name; role and group assignments are admin operations.
func (service *Service) EndpointEditSelf(writer http.ResponseWriter, request *http.Request) {
	obj := request.Context().Value(contextValueProfile).(*profile.Profile)

	payload, validationErrs, err := validation.UnmarshalBody[endpointEditSelfRequestPayload](request)
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	if len(validationErrs) > 0 {
		service.writer.WriteErrors(writer, http.StatusBadRequest, validationErrs...)
		return
	}

	newObj, err := service.Storage.Profiles().Update(request.Context(), obj.ID, &profile.Update{
		Name: payload.Name,
	})
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	service.writer.WriteJSON(writer, newObj)
}

// EndpointDeleteSelf handles the 'DELETE /v1/me' endpoint
func (service *Service) EndpointDeleteSelf(writer http.ResponseWriter, request *http.Request) {
	obj := request.Context().Value(contextValueProfile).(*profile.Profile)

	if err := service.Storage.Credentials().Delete(request.Context(), obj.ID); err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	if err := service.Storage.Profiles().Delete(request.Context(), obj.ID); err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	unsetCookie(writer, sessionTokenCookieName)
	if err := service.SessionStorage.TerminateByUserID(request.Context(), obj.ID); err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	writer.WriteHeader(http.StatusNoContent)
}

// EndpointGetSelfGroup handles the 'GET /v1/me/group' endpoint.
// It resolves the group the requesting user belongs to, carrying the Power BI
// and proposal form links shown in the partner portal.
func (service *Service) EndpointGetSelfGroup(writer http.ResponseWriter, request *http.Request) {
	obj := request.Context().Value(contextValueProfile).(*profile.Profile)
	if obj.GroupID == nil {
		service.writer.WriteErrors(writer, http.StatusNotFound, schema.ErrNotFound)
		return
	}

	groupObj, err := service.Storage.Groups().GetByID(request.Context(), *obj.GroupID)
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	if groupObj == nil {
		// The group was deleted; the dangling reference is kept on purpose
		service.writer.WriteErrors(writer, http.StatusNotFound, schema.ErrNotFound)
		return
	}

	service.writer.WriteJSON(writer, groupObj)
}
