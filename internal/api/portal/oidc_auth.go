package portal

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/google/uuid"

	"github.com/partnerhub/portal-server/internal/api/schema"
	"github.com/partnerhub/portal-server/internal/profile"
	"github.com/partnerhub/portal-server/internal/random"
)

var (
	stateLength         = 16
	nonceLength         = 16
	cookieNameState     = "login_state"
	cookieLifetimeState = int(time.Hour.Seconds())
)

var errOIDCFlow = func(message string) *schema.Error {
	return &schema.Error{
		Type:    "auth.oidcFlowError",
		Message: message,
		Details: map[string]any{},
	}
}

type oidcLoginFlowState struct {
	ID         string `json:"id"`
	Nonce      string `json:"nonce"`
	Afterwards string `json:"afterwards"`
}

// EndpointOIDCLoginFlow handles the 'GET /v1/auth/oidc/login_flow' endpoint
func (service *Service) EndpointOIDCLoginFlow(writer http.ResponseWriter, request *http.Request) {
	afterwards := request.URL.Query().Get("afterwards")

	// Create and set the login flow state cookie
	state := oidcLoginFlowState{
		ID:         random.String(stateLength, random.CharsetAlphanumeric),
		Nonce:      random.String(nonceLength, random.CharsetAlphanumeric),
		Afterwards: afterwards,
	}
	stateJSON, err := json.Marshal(state)
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	http.SetCookie(writer, &http.Cookie{
		Name:     cookieNameState,
		Value:    base64.StdEncoding.EncodeToString(stateJSON),
		MaxAge:   cookieLifetimeState,
		Secure:   service.Config.IsPortalAPISecure(),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	// Redirect the user to the authentication endpoint of the OIDC provider
	http.Redirect(writer, request, service.oidcOAuth2Config.AuthCodeURL(state.ID, oidc.Nonce(state.Nonce)), http.StatusFound)
}

// EndpointOIDCLoginCallback handles the 'GET /v1/auth/oidc/callback' endpoint.
// It verifies the ID token handed back by the provider, provisions a profile row for
// first-time logins and establishes a regular portal session.
func (service *Service) EndpointOIDCLoginCallback(writer http.ResponseWriter, request *http.Request) {
	// Extract the state cookie
	stateCookie, err := request.Cookie(cookieNameState)
	if err != nil {
		service.writer.WriteErrors(writer, http.StatusBadRequest, errOIDCFlow("no login flow initiated"))
		return
	}
	stateJSON, err := base64.StdEncoding.DecodeString(stateCookie.Value)
	if err != nil {
		service.writer.WriteErrors(writer, http.StatusBadRequest, errOIDCFlow("invalid state cookie"))
		return
	}
	state := new(oidcLoginFlowState)
	if err := json.Unmarshal(stateJSON, state); err != nil {
		service.writer.WriteErrors(writer, http.StatusBadRequest, errOIDCFlow("invalid state cookie"))
		return
	}

	// Validate the state ID
	if request.URL.Query().Get("state") != state.ID {
		service.writer.WriteErrors(writer, http.StatusBadRequest, errOIDCFlow("states do not match"))
		return
	}

	// Unset the state cookie
	unsetCookie(writer, cookieNameState)

	// Retrieve the OAuth2 access token and extract and verify the ID token + nonce
	oauth2Token, err := service.oidcOAuth2Config.Exchange(request.Context(), request.URL.Query().Get("code"))
	if err != nil {
		service.writer.WriteErrors(writer, http.StatusForbidden, errOIDCFlow("invalid login code (expired?)"))
		return
	}
	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		service.writer.WriteInternalError(writer, errors.New("no 'id_token' field in OAuth2 access token; most likely an OIDC provider error"))
		return
	}
	idToken, err := service.oidcIDTokenVerifier.Verify(request.Context(), rawIDToken)
	if err != nil {
		service.writer.WriteInternalError(writer, errors.New("received invalid ID token; most likely an OIDC provider error"))
		return
	}
	if idToken.Nonce != state.Nonce {
		service.writer.WriteErrors(writer, http.StatusForbidden, errOIDCFlow("nonces do not match"))
		return
	}

	// Extract the claims the profile row is built from
	claims := struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}{}
	if err := idToken.Claims(&claims); err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	if claims.Email == "" {
		service.writer.WriteErrors(writer, http.StatusForbidden, errOIDCFlow("the ID token carries no email claim"))
		return
	}
	email := strings.ToLower(strings.TrimSpace(claims.Email))

	// Find or create the corresponding profile
	obj, err := service.Storage.Profiles().GetByEmail(request.Context(), email)
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	if obj == nil {
		name := claims.Name
		if name == "" {
			name = email
		}
		obj, err = service.Storage.Profiles().Create(request.Context(), &profile.Create{
			ID:    uuid.NewString(),
			Email: email,
			Name:  name,
			Role:  profile.RoleUser,
		})
		if err != nil {
			service.writer.WriteInternalError(writer, err)
			return
		}
	}

	// Establish a regular portal session
	expires := time.Now().Add(service.Config.SessionLifetime).Unix()
	rawToken, err := service.SessionStorage.Create(request.Context(), obj.ID, expires)
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	service.setSessionCookie(writer, rawToken)

	// Redirect the user to the URL specified on login flow initiating
	http.Redirect(writer, request, state.Afterwards, http.StatusFound)
}
