package providers

import (
	"github.com/samber/do/v2"

	"github.com/pageturnapp/pageturn-server/internal/catalog/openlibrary"
	"github.com/pageturnapp/pageturn-server/internal/config"
	"github.com/pageturnapp/pageturn-server/internal/logger"
	"github.com/pageturnapp/pageturn-server/internal/media/covers"
	"github.com/pageturnapp/pageturn-server/internal/service"
)

// ProvideCatalogClient provides the Open Library client, or nil when
// catalog lookups are disabled.
func ProvideCatalogClient(i do.Injector) (*openlibrary.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Catalog.Enabled {
		log.Info("Catalog lookups disabled")
		return nil, nil
	}

	return openlibrary.NewClient(log.Logger, openlibrary.WithTimeout(cfg.Catalog.Timeout)), nil
}

// ProvideCatalogService provides the catalog lookup service, or nil
// when the client is disabled.
func ProvideCatalogService(i do.Injector) (*service.CatalogService, error) {
	client := do.MustInvoke[*openlibrary.Client](i)
	if client == nil {
		return nil, nil
	}
	log := do.MustInvoke[*logger.Logger](i)
	return service.NewCatalogService(client, log.Logger), nil
}

// ProvideCoverManager provides local cover image storage.
func ProvideCoverManager(i do.Injector) (*covers.Manager, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	manager, err := covers.NewManager(cfg.CoversPath(), log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Cover storage initialized", "path", cfg.CoversPath())

	return manager, nil
}
