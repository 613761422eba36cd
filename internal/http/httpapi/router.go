package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"lessonserver/internal/http/handlers"
	"lessonserver/internal/middleware"
)

// Options configures the router beyond the handlers themselves.
type Options struct {
	AllowedOrigins []string
	DefaultLocale  string
	// FunctionsSecret enables bearer JWT auth on the image function endpoint.
	FunctionsSecret string
	// StaticDir is served under /static/ when set.
	StaticDir string
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		middleware.Logger(app.Logger, app.Metrics),
		chimw.Recoverer,
		middleware.CORS(opts.AllowedOrigins),
		middleware.I18N(opts.DefaultLocale),
	)

	// Health
	r.Get("/api/health", app.Health)
	r.Get("/v1/healthz", app.Healthz)

	// Flask-compatible generation
	r.Post("/api/generate-lesson", app.GenerateLessonPreview)
	r.Post("/api/generate-lesson-content", app.GenerateLessonContent)

	r.Group(func(r chi.Router) {
		if opts.FunctionsSecret != "" {
			r.Use(middleware.AuthJWT(opts.FunctionsSecret))
		}
		r.Post("/generate-lesson-images", app.GenerateImages)
	})

	r.Route("/v1/lessons", func(r chi.Router) {
		r.Get("/", app.ListLessons)
		r.Post("/", app.CreateLesson)
		r.Post("/generate", app.GenerateLesson)
		r.Get("/{id}", app.GetLesson)
		r.Delete("/{id}", app.DeleteLesson)
		r.Get("/{id}/export", app.ExportLesson)
	})

	if app.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", app.Metrics.Handler())
	}
	if opts.StaticDir != "" {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(opts.StaticDir))))
	}

	return r
}
