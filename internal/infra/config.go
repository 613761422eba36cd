package infra

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string `env:"APP_ENV" env-default:"development"`
	Port        string `env:"PORT" env-default:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" env-default:"false"`

	ContentProvider   string `env:"CONTENT_PROVIDER" env-default:"template"`
	ImageProvider     string `env:"IMAGE_PROVIDER" env-default:"placeholder"`
	ContentBackendURL string `env:"CONTENT_BACKEND_URL" env-default:"http://localhost:5000"`
	FunctionsURL      string `env:"FUNCTIONS_URL"`
	FunctionsToken    string `env:"FUNCTIONS_TOKEN"`
	FunctionsSecret   string `env:"FUNCTIONS_JWT_SECRET"`
	ImageConcurrency  int    `env:"IMAGE_CONCURRENCY" env-default:"4"`

	GeminiAPIKey     string `env:"GEMINI_API_KEY"`
	GeminiBaseURL    string `env:"GEMINI_BASE_URL" env-default:"https://generativelanguage.googleapis.com/v1beta"`
	GeminiTextModel  string `env:"GEMINI_TEXT_MODEL" env-default:"gemini-2.0-flash"`
	GeminiImageModel string `env:"GEMINI_IMAGE_MODEL" env-default:"gemini-2.0-flash-exp-image-generation"`
	OpenAIAPIKey     string `env:"OPENAI_API_KEY"`
	OpenAIModel      string `env:"OPENAI_MODEL" env-default:"gpt-4o-mini"`
	OpenAIBaseURL    string `env:"OPENAI_BASE_URL" env-default:"https://api.openai.com/v1"`

	StorageDriver       string `env:"STORAGE_DRIVER" env-default:"filesystem"`
	StoragePath         string `env:"STORAGE_PATH" env-default:"./storage"`
	StorageBaseURL      string `env:"STORAGE_BASE_URL"`
	GCSBucket           string `env:"GCS_BUCKET" env-default:"lesson-images"`
	GCSCDNDomain        string `env:"GCS_CDN_DOMAIN"`
	GCSEndpoint         string `env:"GCS_ENDPOINT"`
	ObjectStoragePublic string `env:"OBJECT_STORAGE_PUBLIC_BASE_URL"`

	CORSAllowedOrigins  string `env:"CORS_ALLOWED_ORIGINS" env-default:"http://localhost:5173,http://localhost:8080"`
	DefaultLocale       string `env:"DEFAULT_LOCALE" env-default:"en"`
	OutboundTimeoutSec  int    `env:"OUTBOUND_TIMEOUT_SECONDS" env-default:"120"`
	HTTPReadTimeoutSec  int    `env:"HTTP_READ_TIMEOUT_SECONDS" env-default:"15"`
	HTTPWriteTimeoutSec int    `env:"HTTP_WRITE_TIMEOUT_SECONDS" env-default:"300"`
	HTTPIdleTimeoutSec  int    `env:"HTTP_IDLE_TIMEOUT_SECONDS" env-default:"60"`

	// Derived after loading.
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	OutboundTimeout  time.Duration
	AllowedOrigins   []string
}

// LoadConfig loads configuration from the environment (and an optional .env file)
// and applies derived defaults.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}

	if strings.TrimSpace(cfg.Port) == "" {
		cfg.Port = "8080"
	}
	cfg.HTTPReadTimeout = seconds(cfg.HTTPReadTimeoutSec, 15)
	cfg.HTTPWriteTimeout = seconds(cfg.HTTPWriteTimeoutSec, 300)
	cfg.HTTPIdleTimeout = seconds(cfg.HTTPIdleTimeoutSec, 60)
	cfg.OutboundTimeout = seconds(cfg.OutboundTimeoutSec, 120)

	if strings.TrimSpace(cfg.StorageBaseURL) == "" {
		cfg.StorageBaseURL = fmt.Sprintf("http://localhost:%s/static", cfg.Port)
	}
	cfg.StorageBaseURL = strings.TrimRight(cfg.StorageBaseURL, "/")
	if _, err := url.Parse(cfg.StorageBaseURL); err != nil {
		return nil, fmt.Errorf("invalid STORAGE_BASE_URL: %w", err)
	}

	cfg.AllowedOrigins = splitList(cfg.CORSAllowedOrigins)
	if cfg.ImageConcurrency <= 0 {
		cfg.ImageConcurrency = 1
	}

	switch cfg.ContentProvider {
	case "template", "remote", "gemini", "openai":
	default:
		return nil, fmt.Errorf("unsupported CONTENT_PROVIDER %q", cfg.ContentProvider)
	}
	switch cfg.ImageProvider {
	case "gemini", "remote", "placeholder", "none":
	default:
		return nil, fmt.Errorf("unsupported IMAGE_PROVIDER %q", cfg.ImageProvider)
	}
	if cfg.ImageProvider == "remote" && strings.TrimSpace(cfg.FunctionsURL) == "" {
		return nil, fmt.Errorf("FUNCTIONS_URL is required when IMAGE_PROVIDER=remote")
	}
	switch cfg.StorageDriver {
	case "filesystem", "gcs":
	default:
		return nil, fmt.Errorf("unsupported STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	return &cfg, nil
}

// IsDevelopment reports whether the service runs with developer defaults.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func seconds(v, fallback int) time.Duration {
	if v <= 0 {
		v = fallback
	}
	return time.Duration(v) * time.Second
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
