package api

import (
	"errors"
	"net/http"

	"github.com/partnerhub/portal-server/internal/api/portal"
	"github.com/partnerhub/portal-server/internal/api/portal/session"
	"github.com/partnerhub/portal-server/internal/config"
	"github.com/partnerhub/portal-server/internal/storage"
)

// Service represents the portal API service
type Service struct {
	Config         *config.Config
	Storage        storage.Driver
	SessionStorage session.Storage
	portal         *portal.Service
}

// Startup starts up the portal API
func (service *Service) Startup(errs chan<- error) {
	portalService := &portal.Service{
		Config:         service.Config,
		Storage:        service.Storage,
		SessionStorage: service.SessionStorage,
	}
	service.portal = portalService
	go func() {
		if err := portalService.Startup(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()
}

// Shutdown shuts down the portal API
func (service *Service) Shutdown() {
	if service.portal != nil {
		service.portal.Shutdown()
		service.portal = nil
	}
}
