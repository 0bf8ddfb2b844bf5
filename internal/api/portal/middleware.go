package portal

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/partnerhub/portal-server/internal/api/portal/session"
	"github.com/partnerhub/portal-server/internal/api/schema"
	"github.com/partnerhub/portal-server/internal/auth"
	"github.com/partnerhub/portal-server/internal/profile"
)

var (
	contextValueSession  = "session"
	contextValueRawToken = "raw_token"
	contextValueProfile  = "profile"
)

var errRoleRequired = func(required, actual profile.Role) *schema.Error {
	return &schema.Error{
		Type:    "access.missingRole",
		Message: "You lack the role required to access this resource.",
		Details: map[string]any{
			"required": required,
			"actual":   actual,
		},
	}
}

// MiddlewareVerifySession makes sure that the requesting client has provided a valid session token,
// either via the session cookie or a bearer 'Authorization' header.
// Additionally, it injects the session object itself into the request context.
func (service *Service) MiddlewareVerifySession(next http.HandlerFunc) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		rawToken := ""
		if cookie, err := request.Cookie(sessionTokenCookieName); err == nil {
			rawToken = cookie.Value
		}
		if header := request.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer") {
			rawToken = strings.TrimSpace(strings.TrimPrefix(header, "Bearer"))
		}
		if rawToken == "" {
			service.writer.WriteErrors(writer, http.StatusUnauthorized, schema.ErrUnauthorized)
			return
		}

		ses, err := service.SessionStorage.GetByRawToken(request.Context(), rawToken)
		if err != nil {
			service.writer.WriteInternalError(writer, err)
			return
		}
		if ses == nil || ses.Expires <= time.Now().Unix() {
			service.writer.WriteErrors(writer, http.StatusUnauthorized, schema.ErrUnauthorized)
			return
		}

		ctx := context.WithValue(request.Context(), contextValueSession, ses)
		ctx = context.WithValue(ctx, contextValueRawToken, rawToken)
		next(writer, request.WithContext(ctx))
	}
}

// MiddlewareFetchProfile fetches the profile row matching the verified session and injects it into
// the request context. A session whose profile row is missing or unreadable is treated as
// unauthenticated; the check fails closed. Unknown role values are coerced to the regular user role.
func (service *Service) MiddlewareFetchProfile(next http.HandlerFunc) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		ses, ok := request.Context().Value(contextValueSession).(*session.Session)
		if !ok {
			service.writer.WriteInternalError(writer, errors.New("profile fetch without session verification"))
			return
		}

		obj, err := service.Storage.Profiles().GetByID(request.Context(), ses.UserID)
		if err != nil {
			log.Warn().Err(err).Str("user_id", ses.UserID).Msg("could not fetch the profile of an established session")
			service.writer.WriteErrors(writer, http.StatusUnauthorized, schema.ErrUnauthorized)
			return
		}
		if obj == nil {
			log.Warn().Str("user_id", ses.UserID).Msg("an established session references a missing profile row")
			service.writer.WriteErrors(writer, http.StatusUnauthorized, schema.ErrUnauthorized)
			return
		}

		resolved := *obj
		resolved.Role = profile.ParseRole(string(obj.Role))

		next(writer, request.WithContext(context.WithValue(request.Context(), contextValueProfile, &resolved)))
	}
}

// MiddlewareRequireRole makes sure that the requesting user holds the required role.
// The admin role overrides every required role.
func (service *Service) MiddlewareRequireRole(requiredRole profile.Role) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(writer http.ResponseWriter, request *http.Request) {
			obj, ok := request.Context().Value(contextValueProfile).(*profile.Profile)
			if !ok {
				service.writer.WriteInternalError(writer, errors.New("role check without profile fetch"))
				return
			}

			switch auth.Authorize(obj, false, requiredRole) {
			case auth.DecisionAllowed:
				next(writer, request)
			case auth.DecisionUnauthenticated:
				service.writer.WriteErrors(writer, http.StatusUnauthorized, schema.ErrUnauthorized)
			default:
				service.writer.WriteErrors(writer, http.StatusForbidden, errRoleRequired(requiredRole, obj.Role))
			}
		}
	}
}
