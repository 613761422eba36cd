package content

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"lessonserver/internal/domain"
	"lessonserver/internal/domain/jsoncfg"
	"lessonserver/internal/infra"
)

// RemotePath is the content-only endpoint of the lesson backend.
const RemotePath = "/api/generate-lesson-content"

type RemoteOptions struct {
	BaseURL    string
	Path       string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Remote delegates content generation to a lesson backend over HTTP.
type Remote struct {
	endpoint string
	client   *http.Client
	logger   *infra.Logger
}

func NewRemote(opts RemoteOptions) *Remote {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}
	path := coalesce(opts.Path, RemotePath)
	logger := opts.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Remote{
		endpoint: strings.TrimRight(opts.BaseURL, "/") + "/" + strings.TrimLeft(path, "/"),
		client:   client,
		logger:   logger,
	}
}

func (r *Remote) Name() string { return remoteProviderName }

// Generate posts {topic, item_count}. A non-2xx status or success=false
// becomes a *domain.BackendError carrying the server message when present.
// Extra items are dropped so at most count items come back.
func (r *Remote) Generate(ctx context.Context, topic string, count int, language string) (*domain.GeneratedContent, error) {
	body, err := json.Marshal(jsoncfg.GenerateLessonRequest{Topic: topic, ItemCount: &count, Language: language})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(jsoncfg.SchemaHeader, jsoncfg.SchemaVersion)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, &domain.TransportError{Op: "post " + r.endpoint, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, &domain.TransportError{Op: "read response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		r.logger.Warn().Int("status", resp.StatusCode).Str("endpoint", r.endpoint).
			Msg("content backend returned an error status")
		var payload jsoncfg.LessonContentResponse
		if json.Unmarshal(raw, &payload) == nil && payload.Error != "" {
			return nil, &domain.BackendError{Status: resp.StatusCode, Message: payload.Error}
		}
		return nil, &domain.BackendError{Status: resp.StatusCode}
	}

	var payload jsoncfg.LessonContentResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, &domain.BackendError{Status: resp.StatusCode, Message: "invalid content response: " + err.Error()}
	}
	if !payload.Success {
		return nil, &domain.BackendError{Status: resp.StatusCode, Message: coalesce(payload.Error, "Failed to generate lesson")}
	}
	if err := payload.Validate(); err != nil {
		return nil, &domain.BackendError{Status: resp.StatusCode, Message: "invalid content response: " + err.Error()}
	}

	content := payload.Content()
	content.Items = limitItems(content.Items, count)
	if count > 0 && len(content.Items) == 0 {
		return nil, &domain.BackendError{Status: resp.StatusCode, Message: "content response contained no items"}
	}
	if len(payload.Items) > count {
		r.logger.Debug().Int("requested", count).Int("received", len(payload.Items)).
			Msg("content backend returned extra items")
	}
	content.Title = coalesce(content.Title, DefaultTitle(topic))
	content.Description = coalesce(content.Description, DefaultDescription(topic))
	return content, nil
}

var _ Generator = (*Remote)(nil)
