// Package bootstrap assembles the lesson generation stack from configuration.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"lessonserver/internal/adapter/repo"
	"lessonserver/internal/db"
	"lessonserver/internal/domain"
	"lessonserver/internal/http/handlers"
	"lessonserver/internal/infra"
	"lessonserver/internal/infra/credentials"
	"lessonserver/internal/lessongen"
	"lessonserver/internal/metrics"
	"lessonserver/internal/middleware"
	"lessonserver/internal/providers/content"
	"lessonserver/internal/providers/genai"
	"lessonserver/internal/providers/image"
	"lessonserver/internal/storage"
)

// Stack is every long-lived collaborator of the service.
type Stack struct {
	Config  *infra.Config
	Logger  infra.Logger
	Pool    *pgxpool.Pool
	Lessons domain.LessonRepository
	Store   storage.ObjectStore
	Metrics *metrics.Metrics
	Service *lessongen.Service
	Gemini  *genai.Client

	staticDir string
	closers   []func()
}

// Build wires the stack. Without DATABASE_URL lessons live in memory.
func Build(ctx context.Context, cfg *infra.Config, logger infra.Logger) (*Stack, error) {
	s := &Stack{Config: cfg, Logger: logger, Metrics: metrics.New()}
	if err := s.build(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Stack) build(ctx context.Context) error {
	cfg := s.Config
	var creds *credentials.Store

	if strings.TrimSpace(cfg.DatabaseURL) != "" {
		if cfg.AutoMigrate {
			if err := migrate(ctx, cfg.DatabaseURL, s.Logger); err != nil {
				return err
			}
		}
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			return err
		}
		s.Pool = pool
		s.closers = append(s.closers, pool.Close)
		runner := infra.NewSQLRunner(pool, s.Logger)
		s.Lessons = repo.NewLessonRepository(runner)
		creds = credentials.NewStore(runner)
	} else {
		s.Logger.Warn().Msg("DATABASE_URL not set, lessons are kept in memory")
		s.Lessons = repo.NewMemoryLessonRepository()
	}

	if err := s.buildStore(ctx); err != nil {
		return err
	}

	httpClient := &http.Client{Timeout: cfg.OutboundTimeout}
	geminiKey, err := creds.ResolveKey(ctx, credentials.ProviderGemini, cfg.GeminiAPIKey)
	if err != nil {
		s.Logger.Warn().Err(err).Msg("failed to load gemini api key from store")
	}
	s.Gemini = genai.NewClient(genai.Options{
		APIKey:     geminiKey,
		BaseURL:    cfg.GeminiBaseURL,
		TextModel:  cfg.GeminiTextModel,
		ImageModel: cfg.GeminiImageModel,
		HTTPClient: httpClient,
		Logger:     &s.Logger,
	})

	gen, err := s.contentGenerator(ctx, creds, httpClient)
	if err != nil {
		return err
	}
	images, err := s.imageGenerator(httpClient)
	if err != nil {
		return err
	}

	s.Service, err = lessongen.NewService(lessongen.Options{
		Content:    gen,
		Images:     images,
		Repository: s.Lessons,
		Metrics:    s.Metrics,
		Logger:     &s.Logger,
	})
	if err != nil {
		return err
	}
	s.Logger.Info().
		Str("content_provider", gen.Name()).
		Str("image_provider", cfg.ImageProvider).
		Str("storage", cfg.StorageDriver).
		Bool("gemini_configured", s.Gemini.Configured()).
		Msg("lesson stack ready")
	return nil
}

func (s *Stack) buildStore(ctx context.Context) error {
	cfg := s.Config
	switch cfg.StorageDriver {
	case "gcs":
		gcs, err := storage.NewGCSStore(ctx, storage.GCSOptions{
			Bucket:        cfg.GCSBucket,
			CDNDomain:     cfg.GCSCDNDomain,
			PublicBaseURL: cfg.ObjectStoragePublic,
			Endpoint:      cfg.GCSEndpoint,
		})
		if err != nil {
			return err
		}
		s.Store = gcs
		s.closers = append(s.closers, func() { _ = gcs.Close() })
	default:
		path := cfg.StoragePath
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		files, err := storage.NewFileStore(path, cfg.StorageBaseURL)
		if err != nil {
			return err
		}
		s.Store = files
		s.staticDir = files.BasePath()
	}
	return nil
}

func (s *Stack) contentGenerator(ctx context.Context, creds *credentials.Store, httpClient *http.Client) (content.Generator, error) {
	cfg := s.Config
	switch cfg.ContentProvider {
	case "remote":
		return content.NewRemote(content.RemoteOptions{
			BaseURL:    cfg.ContentBackendURL,
			HTTPClient: httpClient,
			Logger:     &s.Logger,
		}), nil
	case "gemini":
		if !s.Gemini.Configured() {
			return nil, errors.New("CONTENT_PROVIDER=gemini requires a Gemini API key")
		}
		s.Logger.Info().Str("model", s.Gemini.TextModel()).Msg("gemini content generator enabled")
		return content.NewGemini(s.Gemini)
	case "openai":
		key, err := creds.ResolveKey(ctx, credentials.ProviderOpenAI, cfg.OpenAIAPIKey)
		if err != nil {
			return nil, fmt.Errorf("load openai api key: %w", err)
		}
		return content.NewOpenAI(content.OpenAIOptions{
			APIKey:     key,
			Model:      cfg.OpenAIModel,
			BaseURL:    cfg.OpenAIBaseURL,
			HTTPClient: httpClient,
		})
	default:
		return content.NewTemplate(), nil
	}
}

func (s *Stack) imageGenerator(httpClient *http.Client) (image.Generator, error) {
	cfg := s.Config
	switch cfg.ImageProvider {
	case "none":
		return image.None{}, nil
	case "remote":
		token := cfg.FunctionsToken
		if token == "" && cfg.FunctionsSecret != "" {
			signed, err := middleware.SignToken(cfg.FunctionsSecret, "lessonserver", 0)
			if err != nil {
				return nil, err
			}
			token = signed
		}
		return image.NewRemote(image.RemoteOptions{
			FunctionsURL: cfg.FunctionsURL,
			Token:        token,
			HTTPClient:   httpClient,
			Logger:       &s.Logger,
		}), nil
	case "gemini":
		if s.Gemini.Configured() {
			illustrator, err := image.NewGemini(s.Gemini, s.Store)
			if err != nil {
				return nil, err
			}
			s.Logger.Info().Str("model", s.Gemini.ImageModel()).Int("concurrency", cfg.ImageConcurrency).
				Msg("gemini illustrator enabled")
			return image.NewFanOut(illustrator, cfg.ImageConcurrency, &s.Logger), nil
		}
		s.Logger.Warn().Msg("gemini api key missing, illustrating with placeholders")
	}
	return image.NewFanOut(image.NewPlaceholder(s.Store), cfg.ImageConcurrency, &s.Logger), nil
}

// App exposes the stack to the HTTP handlers.
func (s *Stack) App() *handlers.App {
	return &handlers.App{
		Service:          s.Service,
		Lessons:          s.Lessons,
		Store:            s.Store,
		Metrics:          s.Metrics,
		Logger:           s.Logger,
		GeminiConfigured: s.Gemini.Configured(),
	}
}

// StaticDir is the filesystem root served under /static/, "" for remote stores.
func (s *Stack) StaticDir() string { return s.staticDir }

// Close releases resources in reverse order of acquisition.
func (s *Stack) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

func migrate(ctx context.Context, databaseURL string, logger infra.Logger) error {
	m, err := db.NewMigrator(databaseURL, logger)
	if err != nil {
		return err
	}
	defer m.Close()
	return m.Up(ctx)
}
