package api

import (
	"net/http"
	"time"

	"github.com/avbykov/printbridge/internal/api/handlers"
	"github.com/avbykov/printbridge/internal/api/middleware"
	"github.com/avbykov/printbridge/internal/domain/services"
	"github.com/avbykov/printbridge/internal/interfaces"
	"github.com/avbykov/printbridge/internal/security"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterDeps зависимости маршрутизатора
type RouterDeps struct {
	Pipeline  *services.PipelineService
	Suggest   *services.SuggestService
	Mappings  *services.MappingService
	Unmatched *services.UnmatchedService
	Settings  *services.SettingsService

	Auth       *security.StaticAuthService
	JWTManager *security.JWTManager

	Logger             interfaces.LoggerPort
	CORSAllowedOrigins []string
}

// SetupRouter настраивает маршрутизатор
func SetupRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	// Глобальные middleware
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Recoverer(deps.Logger))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.Metrics)
	r.Use(middleware.CORS(deps.CORSAllowedOrigins))

	r.Method(http.MethodGet, "/health", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}))
	r.Method(http.MethodHead, "/health", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	orderHandler := handlers.NewOrderHandler(deps.Pipeline, deps.Logger)
	authHandler := handlers.NewAuthHandler(deps.Auth, deps.JWTManager, deps.Logger)

	// Вебхук открыт: магазин не умеет проходить операторскую аутентификацию
	r.Post("/webhooks/orders", orderHandler.HandleOrderWebhook)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.JWTAuth(deps.JWTManager, deps.Logger))

			fileHandler := handlers.NewFileHandler(deps.Suggest, deps.Logger)
			mappingHandler := handlers.NewMappingHandler(deps.Mappings, deps.Logger)
			unmatchedHandler := handlers.NewUnmatchedHandler(deps.Unmatched, deps.Logger)
			settingsHandler := handlers.NewSettingsHandler(deps.Settings, deps.Logger)

			// Маршруты для подбора файлов
			r.Route("/files", func(r chi.Router) {
				r.Get("/suggest", fileHandler.SuggestFiles)
				r.Post("/validate", fileHandler.ValidateFiles)
			})

			// Маршруты для сопоставлений
			r.Route("/mappings", func(r chi.Router) {
				r.Get("/", mappingHandler.ListMappings)
				r.Put("/", mappingHandler.UpsertMapping)
				r.Delete("/", mappingHandler.DeleteMapping)
			})

			// Маршруты для неразобранных позиций
			r.Route("/unmatched", func(r chi.Router) {
				r.Get("/", unmatchedHandler.ListUnmatched)
				r.Route("/{id}", func(r chi.Router) {
					r.Post("/queue", unmatchedHandler.QueueUnmatched)
					r.Delete("/", unmatchedHandler.DismissUnmatched)
				})
			})

			// Маршруты для настроек
			r.Route("/settings/{name}", func(r chi.Router) {
				r.Get("/", settingsHandler.GetSetting)
				r.Put("/", settingsHandler.SetSetting)
				r.Delete("/", settingsHandler.DeleteSetting)
			})
		})
	})

	return r
}
