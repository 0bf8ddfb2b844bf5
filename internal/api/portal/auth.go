package portal

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/partnerhub/portal-server/internal/api/portal/session"
	"github.com/partnerhub/portal-server/internal/api/schema"
	"github.com/partnerhub/portal-server/internal/api/validation"
	"github.com/partnerhub/portal-server/internal/credential"
	"github.com/partnerhub/portal-server/internal/profile"
)

var sessionTokenCookieName = "session_token"

var (
	errInvalidCredentials = &schema.Error{
		Type:    "auth.invalidCredentials",
		Message: "Invalid email address or password.",
		Details: map[string]any{},
	}
	errEmailTaken = &schema.Error{
		Type:    "auth.emailTaken",
		Message: "An account with this email address already exists.",
		Details: map[string]any{},
	}
)

type endpointSignUpRequestPayload struct {
	Email    *string `json:"email" required:"true"`
	Password *string `json:"password" required:"true"`
	Name     *string `json:"name" required:"true"`
}

// EndpointSignUp handles the 'POST /v1/auth/signup' endpoint
func (service *Service) EndpointSignUp(writer http.ResponseWriter, request *http.Request) {
	payload, validationErrs, err := validation.UnmarshalBody[endpointSignUpRequestPayload](request)
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	if len(validationErrs) > 0 {
		service.writer.WriteErrors(writer, http.StatusBadRequest, validationErrs...)
		return
	}

	email := strings.ToLower(strings.TrimSpace(*payload.Email))

	// Reject the registration if the email address is already taken
	existing, err := service.Storage.Profiles().GetByEmail(request.Context(), email)
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	if existing != nil {
		service.writer.WriteErrors(writer, http.StatusConflict, errEmailTaken)
		return
	}

	// Create the profile row; every new account starts out as a regular user
	obj, err := service.Storage.Profiles().Create(request.Context(), &profile.Create{
		ID:    uuid.NewString(),
		Email: email,
		Name:  *payload.Name,
		Role:  profile.RoleUser,
	})
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}

	// Create the corresponding credential
	hash, err := credential.HashPassword(*payload.Password)
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	if err := service.Storage.Credentials().Set(request.Context(), &credential.Credential{
		ProfileID: obj.ID,
		Hash:      hash,
	}); err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}

	service.writer.WriteJSONCode(writer, http.StatusCreated, obj)
}

type endpointLoginRequestPayload struct {
	Email    *string `json:"email" required:"true"`
	Password *string `json:"password" required:"true"`
}

type endpointLoginResponse struct {
	Token     string `json:"token"`
	UserID    string `json:"user_id"`
	ExpiresAt int64  `json:"expires_at"`
}

// EndpointLogin handles the 'POST /v1/auth/login' endpoint
func (service *Service) EndpointLogin(writer http.ResponseWriter, request *http.Request) {
	payload, validationErrs, err := validation.UnmarshalBody[endpointLoginRequestPayload](request)
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	if len(validationErrs) > 0 {
		service.writer.WriteErrors(writer, http.StatusBadRequest, validationErrs...)
		return
	}

	email := strings.ToLower(strings.TrimSpace(*payload.Email))

	// A missing profile and a wrong password are indistinguishable to the client
	obj, err := service.Storage.Profiles().GetByEmail(request.Context(), email)
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	if obj == nil {
		service.writer.WriteErrors(writer, http.StatusForbidden, errInvalidCredentials)
		return
	}
	cred, err := service.Storage.Credentials().GetByProfileID(request.Context(), obj.ID)
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	if cred == nil || !cred.Verify(*payload.Password) {
		service.writer.WriteErrors(writer, http.StatusForbidden, errInvalidCredentials)
		return
	}

	expires := time.Now().Add(service.Config.SessionLifetime).Unix()
	rawToken, err := service.SessionStorage.Create(request.Context(), obj.ID, expires)
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}

	service.setSessionCookie(writer, rawToken)
	service.writer.WriteJSON(writer, &endpointLoginResponse{
		Token:     rawToken,
		UserID:    obj.ID,
		ExpiresAt: expires,
	})
}

// EndpointLogout handles the 'POST /v1/auth/logout' endpoint
func (service *Service) EndpointLogout(writer http.ResponseWriter, request *http.Request) {
	rawToken := request.Context().Value(contextValueRawToken).(string)

	unsetCookie(writer, sessionTokenCookieName)
	if err := service.SessionStorage.TerminateByRawToken(request.Context(), rawToken); err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	writer.WriteHeader(http.StatusNoContent)
}

type endpointGetSessionResponse struct {
	UserID    string `json:"user_id"`
	ExpiresAt int64  `json:"expires_at"`
}

// EndpointGetSession handles the 'GET /v1/auth/session' endpoint.
// Besides reporting the session, it slides its expiry forward by the configured lifetime.
func (service *Service) EndpointGetSession(writer http.ResponseWriter, request *http.Request) {
	ses := request.Context().Value(contextValueSession).(*session.Session)
	rawToken := request.Context().Value(contextValueRawToken).(string)

	expires := time.Now().Add(service.Config.SessionLifetime).Unix()
	if err := service.SessionStorage.Extend(request.Context(), rawToken, expires); err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}

	service.writer.WriteJSON(writer, &endpointGetSessionResponse{
		UserID:    ses.UserID,
		ExpiresAt: expires,
	})
}

func (service *Service) setSessionCookie(writer http.ResponseWriter, rawToken string) {
	http.SetCookie(writer, &http.Cookie{
		Name:     sessionTokenCookieName,
		Value:    rawToken,
		Path:     "/",
		Secure:   service.Config.IsPortalAPISecure(),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func unsetCookie(writer http.ResponseWriter, name string) {
	http.SetCookie(writer, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Second),
		HttpOnly: true,
	})
}
