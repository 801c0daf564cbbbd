package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/mycrew-backend/api/controllers"
	"github.com/angelmondragon/mycrew-backend/api/middleware"
	"github.com/angelmondragon/mycrew-backend/internal/contacts"
	"github.com/angelmondragon/mycrew-backend/internal/exports"
	"github.com/angelmondragon/mycrew-backend/internal/imports"
	"github.com/angelmondragon/mycrew-backend/internal/integrity"
	"github.com/angelmondragon/mycrew-backend/internal/profile"
	"github.com/angelmondragon/mycrew-backend/pkg/config"
	"github.com/angelmondragon/mycrew-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/mycrew-backend/pkg/redis"
)

// Sweeper runs the integrity repair pass.
type Sweeper interface {
	Run(ctx context.Context) (integrity.Report, error)
}

// RouterParams wires the API's services into the HTTP surface.
type RouterParams struct {
	Config   *config.Config
	Logger   *logger.Logger
	Checks   map[string]controllers.Pinger
	Gatherer prometheus.Gatherer

	Idempotency pkgredis.IdempotencyStore

	Contacts contacts.Service
	Exports  exports.Service
	Imports  imports.Service
	Profile  profile.Service
	Sweeper  Sweeper
}

func NewRouter(p RouterParams) http.Handler {
	cfg, logg := p.Config, p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.Checks))
	})

	if p.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.BodyLimit(cfg.Import.MaxUploadBytes))
		r.Use(middleware.Idempotency(p.Idempotency, logg))

		r.Get("/catalog", controllers.Catalog())

		r.Route("/contacts", func(r chi.Router) {
			r.Get("/", controllers.ContactList(p.Contacts, logg))
			r.Post("/", controllers.ContactCreate(p.Contacts, logg))
			r.Get("/filter-options", controllers.ContactFilterOptions(p.Contacts, logg))
			r.Post("/export", controllers.ContactsExport(p.Contacts, p.Exports, logg))
			r.Post("/export/download", controllers.ContactsExportDownload(p.Contacts, p.Exports, logg))

			r.Route("/{contactId}", func(r chi.Router) {
				r.Get("/", controllers.ContactGet(p.Contacts, logg))
				r.Put("/", controllers.ContactUpdate(p.Contacts, logg))
				r.Delete("/", controllers.ContactDelete(p.Contacts, logg))
				r.Post("/favorite", controllers.ContactToggleFavorite(p.Contacts, logg))
				r.Get("/export", controllers.ContactExport(p.Contacts, p.Exports, logg))
				r.Get("/scan-code", controllers.ContactScanCode(p.Contacts, p.Exports, logg))
			})
		})

		r.Route("/imports", func(r chi.Router) {
			r.Post("/", controllers.ImportUpload(p.Imports, cfg.Import.MaxUploadBytes, logg))
			r.Post("/scan", controllers.ImportScan(p.Imports, logg))
			r.Post("/{importId}/decision", controllers.ImportDecision(p.Imports, logg))
		})

		r.Route("/profile", func(r chi.Router) {
			r.Get("/", controllers.ProfileGet(p.Profile, logg))
			r.Put("/", controllers.ProfileSave(p.Profile, logg))
			r.Get("/scan-code", controllers.ProfileScanCode(p.Profile, logg))
			r.Get("/export", controllers.ProfileExport(p.Profile, logg))
		})

		r.Post("/maintenance/integrity-sweep", controllers.IntegritySweep(p.Sweeper, logg))
	})

	return r
}
