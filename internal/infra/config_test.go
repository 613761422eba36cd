package infra

import (
	"testing"
	"time"
)

func TestLoadConfigDefaultStorageBaseURL(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("STORAGE_BASE_URL", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	expected := "http://localhost:8080/static"
	if cfg.StorageBaseURL != expected {
		t.Fatalf("StorageBaseURL mismatch: got %q want %q", cfg.StorageBaseURL, expected)
	}
	if cfg.ContentProvider != "template" || cfg.ImageProvider != "placeholder" {
		t.Fatalf("unexpected provider defaults: %q/%q", cfg.ContentProvider, cfg.ImageProvider)
	}
}

func TestLoadConfigInheritsPortInStorageBaseURL(t *testing.T) {
	t.Setenv("PORT", "1919")
	t.Setenv("STORAGE_BASE_URL", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	expected := "http://localhost:1919/static"
	if cfg.StorageBaseURL != expected {
		t.Fatalf("StorageBaseURL mismatch: got %q want %q", cfg.StorageBaseURL, expected)
	}
}

func TestLoadConfigHonorsExplicitStorageBaseURL(t *testing.T) {
	t.Setenv("STORAGE_BASE_URL", "https://cdn.example.com/static/")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	expected := "https://cdn.example.com/static"
	if cfg.StorageBaseURL != expected {
		t.Fatalf("StorageBaseURL mismatch: got %q want %q", cfg.StorageBaseURL, expected)
	}
}

func TestLoadConfigDerivesTimeoutsAndOrigins(t *testing.T) {
	t.Setenv("HTTP_READ_TIMEOUT_SECONDS", "7")
	t.Setenv("OUTBOUND_TIMEOUT_SECONDS", "0")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://app.example.com, ,http://localhost:5173 ")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.HTTPReadTimeout != 7*time.Second {
		t.Fatalf("HTTPReadTimeout = %s, want 7s", cfg.HTTPReadTimeout)
	}
	if cfg.OutboundTimeout != 120*time.Second {
		t.Fatalf("OutboundTimeout = %s, want fallback 120s", cfg.OutboundTimeout)
	}
	expected := []string{"https://app.example.com", "http://localhost:5173"}
	if len(cfg.AllowedOrigins) != len(expected) {
		t.Fatalf("AllowedOrigins mismatch: got %#v want %#v", cfg.AllowedOrigins, expected)
	}
	for i, origin := range expected {
		if cfg.AllowedOrigins[i] != origin {
			t.Fatalf("AllowedOrigins[%d] = %q, want %q", i, cfg.AllowedOrigins[i], origin)
		}
	}
}

func TestLoadConfigRejectsUnknownProviders(t *testing.T) {
	t.Setenv("CONTENT_PROVIDER", "llama")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for unsupported content provider")
	}

	t.Setenv("CONTENT_PROVIDER", "template")
	t.Setenv("IMAGE_PROVIDER", "remote")
	t.Setenv("FUNCTIONS_URL", "")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error when remote image provider has no FUNCTIONS_URL")
	}
}
