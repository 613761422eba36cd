package credentials

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"lessonserver/internal/infra"
	"lessonserver/internal/sqlinline"
)

// Providers whose API keys can be persisted instead of set through the environment.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Providers lists every provider a key can be stored for.
var Providers = []string{ProviderGemini, ProviderOpenAI}

// EnvVar names the environment variable that overrides the stored key.
func EnvVar(provider string) string {
	return strings.ToUpper(provider) + "_API_KEY"
}

// Store reads and writes provider API keys in the integration_tokens table.
type Store struct {
	sql infra.SQLExecutor
}

func NewStore(sql infra.SQLExecutor) *Store {
	return &Store{sql: sql}
}

func (s *Store) GeminiAPIKey(ctx context.Context) (string, error) {
	return s.Token(ctx, ProviderGemini)
}

func (s *Store) OpenAIAPIKey(ctx context.Context) (string, error) {
	return s.Token(ctx, ProviderOpenAI)
}

func (s *Store) SetGeminiAPIKey(ctx context.Context, key string) error {
	return s.SetToken(ctx, ProviderGemini, key)
}

func (s *Store) SetOpenAIAPIKey(ctx context.Context, key string) error {
	return s.SetToken(ctx, ProviderOpenAI, key)
}

// Token returns the stored key for provider, or "" when none is stored.
func (s *Store) Token(ctx context.Context, provider string) (string, error) {
	var token string
	if err := s.sql.QueryRow(ctx, sqlinline.QSelectProviderToken, provider).Scan(&token); err != nil {
		if infra.IsNoRows(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(token), nil
}

// SetToken upserts the key for provider.
func (s *Store) SetToken(ctx context.Context, provider, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("%s api key is required", provider)
	}
	raw, err := json.Marshal(map[string]any{"source": "cli"})
	if err != nil {
		return err
	}
	_, err = s.sql.Exec(ctx, sqlinline.QUpsertProviderToken, provider, token, raw)
	return err
}

// DeleteToken removes the stored key for provider. It reports whether a
// row was removed.
func (s *Store) DeleteToken(ctx context.Context, provider string) (bool, error) {
	tag, err := s.sql.Exec(ctx, sqlinline.QDeleteProviderToken, provider)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ResolveKey prefers an explicit key and falls back to the stored one.
func (s *Store) ResolveKey(ctx context.Context, provider, explicit string) (string, error) {
	if key := strings.TrimSpace(explicit); key != "" {
		return key, nil
	}
	if s == nil || s.sql == nil {
		return "", nil
	}
	return s.Token(ctx, provider)
}
