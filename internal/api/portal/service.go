package portal

import (
	"context"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/partnerhub/portal-server/internal/api/portal/session"
	"github.com/partnerhub/portal-server/internal/api/schema"
	"github.com/partnerhub/portal-server/internal/config"
	"github.com/partnerhub/portal-server/internal/function"
	"github.com/partnerhub/portal-server/internal/profile"
	"github.com/partnerhub/portal-server/internal/storage"
)

// Service represents the portal API service
type Service struct {
	server *http.Server

	Config *config.Config

	Storage storage.Driver

	SessionStorage session.Storage

	oidcOAuth2Config    *oauth2.Config
	oidcProvider        *oidc.Provider
	oidcIDTokenVerifier *oidc.IDTokenVerifier

	writer *schema.Writer
}

// Startup starts up the portal API
func (service *Service) Startup() error {
	// Create the HTTP schema writer
	service.writer = &schema.Writer{
		InternalErrorHook: func(err error) {
			log.Error().Err(err).Msg("the portal API experienced an unexpected error")
		},
	}

	// Create the HTTP router
	router := chi.NewRouter()
	router.Use(middleware.RedirectSlashes)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{service.Config.PortalAPIAllowedOrigin},
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))
	router.NotFound(func(writer http.ResponseWriter, _ *http.Request) {
		service.writer.WriteErrors(writer, http.StatusNotFound, schema.ErrNotFound)
	})
	router.MethodNotAllowed(func(writer http.ResponseWriter, _ *http.Request) {
		service.writer.WriteErrors(writer, http.StatusMethodNotAllowed, schema.ErrMethodNotAllowed)
	})

	// Create the OIDC provider, ID token verifier & OAuth2 config if SSO is enabled
	if service.Config.OIDCEnabled {
		oidcProvider, err := oidc.NewProvider(context.Background(), service.Config.OIDCProviderURL)
		if err != nil {
			return err
		}
		service.oidcProvider = oidcProvider
		service.oidcIDTokenVerifier = oidcProvider.Verifier(&oidc.Config{
			ClientID: service.Config.OIDCClientID,
		})
		service.oidcOAuth2Config = &oauth2.Config{
			ClientID:     service.Config.OIDCClientID,
			ClientSecret: service.Config.OIDCClientSecret,
			Endpoint:     oidcProvider.Endpoint(),
			RedirectURL:  service.Config.PortalAPIBaseAddress + "/v1/auth/oidc/callback",
			Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
		}
	}

	// Register the API endpoint handlers
	service.registerEndpoints(router)

	// Start up the server
	server := &http.Server{
		Addr:    service.Config.PortalAPIListenAddress,
		Handler: router,
	}
	service.server = server
	return server.ListenAndServe()
}

// Shutdown shuts down the portal API
func (service *Service) Shutdown() {
	if service.server != nil {
		service.server.Close()
		service.server = nil
	}
}

func (service *Service) registerEndpoints(router chi.Router) {
	// Register the authentication endpoints
	router.Post("/v1/auth/signup", service.EndpointSignUp)
	router.Post("/v1/auth/login", service.EndpointLogin)
	router.Post("/v1/auth/logout", function.Nest[http.HandlerFunc](
		service.EndpointLogout,
		service.MiddlewareVerifySession,
	))
	router.Get("/v1/auth/session", function.Nest[http.HandlerFunc](
		service.EndpointGetSession,
		service.MiddlewareVerifySession,
	))
	if service.Config.OIDCEnabled {
		router.Get("/v1/auth/oidc/login_flow", service.EndpointOIDCLoginFlow)
		router.Get("/v1/auth/oidc/callback", service.EndpointOIDCLoginCallback)
	}

	// Register the profile controller endpoints
	router.Get("/v1/profiles", function.Nest[http.HandlerFunc](
		service.EndpointGetProfiles,
		service.MiddlewareVerifySession,
		service.MiddlewareFetchProfile,
		service.MiddlewareRequireRole(profile.RoleAdmin),
	))
	router.Get("/v1/profiles/{id}", function.Nest[http.HandlerFunc](
		service.EndpointGetProfile,
		service.MiddlewareVerifySession,
		service.MiddlewareFetchProfile,
		service.MiddlewareRequireRole(profile.RoleAdmin),
	))
	router.Patch("/v1/profiles/{id}", function.Nest[http.HandlerFunc](
		service.EndpointEditProfile,
		service.MiddlewareVerifySession,
		service.MiddlewareFetchProfile,
		service.MiddlewareRequireRole(profile.RoleAdmin),
	))
	router.Delete("/v1/profiles/{id}", function.Nest[http.HandlerFunc](
		service.EndpointDeleteProfile,
		service.MiddlewareVerifySession,
		service.MiddlewareFetchProfile,
		service.MiddlewareRequireRole(profile.RoleAdmin),
	))
	router.Get("/v1/me", function.Nest[http.HandlerFunc](
		service.EndpointGetSelf,
		service.MiddlewareVerifySession,
		service.MiddlewareFetchProfile,
	))
	router.Patch("/v1/me", function.Nest[http.HandlerFunc](
		service.EndpointEditSelf,
		service.MiddlewareVerifySession,
		service.MiddlewareFetchProfile,
	))
	router.Delete("/v1/me", function.Nest[http.HandlerFunc](
		service.EndpointDeleteSelf,
		service.MiddlewareVerifySession,
		service.MiddlewareFetchProfile,
	))
	router.Get("/v1/me/group", function.Nest[http.HandlerFunc](
		service.EndpointGetSelfGroup,
		service.MiddlewareVerifySession,
		service.MiddlewareFetchProfile,
	))

	// Register the group controller endpoints
	router.Get("/v1/groups", function.Nest[http.HandlerFunc](
		service.EndpointGetGroups,
		service.MiddlewareVerifySession,
		service.MiddlewareFetchProfile,
		service.MiddlewareRequireRole(profile.RoleAdmin),
	))
	router.Get("/v1/groups/{id}", function.Nest[http.HandlerFunc](
		service.EndpointGetGroup,
		service.MiddlewareVerifySession,
		service.MiddlewareFetchProfile,
		service.MiddlewareRequireRole(profile.RoleCoordinator),
	))
	router.Post("/v1/groups", function.Nest[http.HandlerFunc](
		service.EndpointCreateGroup,
		service.MiddlewareVerifySession,
		service.MiddlewareFetchProfile,
		service.MiddlewareRequireRole(profile.RoleAdmin),
	))
	router.Patch("/v1/groups/{id}", function.Nest[http.HandlerFunc](
		service.EndpointEditGroup,
		service.MiddlewareVerifySession,
		service.MiddlewareFetchProfile,
		service.MiddlewareRequireRole(profile.RoleAdmin),
	))
	router.Delete("/v1/groups/{id}", function.Nest[http.HandlerFunc](
		service.EndpointDeleteGroup,
		service.MiddlewareVerifySession,
		service.MiddlewareFetchProfile,
		service.MiddlewareRequireRole(profile.RoleAdmin),
	))

	// Register the news controller endpoints
	router.Get("/v1/news", function.Nest[http.HandlerFunc](
		service.EndpointGetNews,
		service.MiddlewareVerifySession,
		service.MiddlewareFetchProfile,
	))
	router.Post("/v1/news", function.Nest[http.HandlerFunc](
		service.EndpointCreateNews,
		service.MiddlewareVerifySession,
		service.MiddlewareFetchProfile,
		service.MiddlewareRequireRole(profile.RoleAdmin),
	))
	router.Patch("/v1/news/{id}", function.Nest[http.HandlerFunc](
		service.EndpointEditNews,
		service.MiddlewareVerifySession,
		service.MiddlewareFetchProfile,
		service.MiddlewareRequireRole(profile.RoleAdmin),
	))
	router.Delete("/v1/news/{id}", function.Nest[http.HandlerFunc](
		service.EndpointDeleteNews,
		service.MiddlewareVerifySession,
		service.MiddlewareFetchProfile,
		service.MiddlewareRequireRole(profile.RoleAdmin),
	))

	// Register the material controller endpoints
	router.Get("/v1/materials", function.Nest[http.HandlerFunc](
		service.EndpointGetMaterials,
		service.MiddlewareVerifySession,
		service.MiddlewareFetchProfile,
	))
	router.Post("/v1/materials", function.Nest[http.HandlerFunc](
		service.EndpointCreateMaterial,
		service.MiddlewareVerifySession,
		service.MiddlewareFetchProfile,
		service.MiddlewareRequireRole(profile.RoleAdmin),
	))
	router.Patch("/v1/materials/{id}", function.Nest[http.HandlerFunc](
		service.EndpointEditMaterial,
		service.MiddlewareVerifySession,
		service.MiddlewareFetchProfile,
		service.MiddlewareRequireRole(profile.RoleAdmin),
	))
	router.Delete("/v1/materials/{id}", function.Nest[http.HandlerFunc](
		service.EndpointDeleteMaterial,
		service.MiddlewareVerifySession,
		service.MiddlewareFetchProfile,
		service.MiddlewareRequireRole(profile.RoleAdmin),
	))
}
