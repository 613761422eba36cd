package image

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

// RemotePath is the image function endpoint.
const RemotePath = "/generate-lesson-images"

type RemoteOptions struct {
	FunctionsURL string
	Token        string
	HTTPClient   *http.Client
	Logger       *infra.Logger
}

// Remote delegates a whole batch to the image-generation function.
type Remote struct {
	endpoint string
	token    string
	client   *http.Client
	logger   *infra.Logger
}

func NewRemote(opts RemoteOptions) *Remote {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 300 * time.Second}
	}
	logger := opts.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Remote{
		endpoint: strings.TrimRight(opts.FunctionsURL, "/") + RemotePath,
		token:    strings.TrimSpace(opts.Token),
		client:   client,
		logger:   logger,
	}
}

// Generate never fails as a whole: a transport error or non-2xx status marks
// every item missing, and an absent or empty entry marks that item missing.
func (r *Remote) Generate(ctx context.Context, topic string, items []domain.Item) []domain.ImageResult {
	results := make([]domain.ImageResult, len(items))
	if len(items) == 0 {
		return results
	}

	urls, err := r.call(ctx, jsoncfg.NewImagesRequest(topic, items))
	if err != nil {
		r.logger.Warn().Err(err).Int("items", len(items)).Msg("image: remote batch failed")
		for i := range results {
			results[i] = domain.ImageResult{Err: fmt.Errorf("%w: %w", domain.ErrMissingAsset, err)}
		}
		return results
	}
	for i, url := range urls {
		if url == "" {
			results[i] = domain.ImageResult{Err: domain.ErrMissingAsset}
			continue
		}
		results[i] = domain.ImageResult{URL: url}
	}
	return results
}

func (r *Remote) call(ctx context.Context, payload jsoncfg.GenerateImagesRequest) ([]string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(jsoncfg.SchemaHeader, jsoncfg.SchemaVersion)
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, &domain.TransportError{Op: "post " + r.endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, &domain.BackendError{Status: resp.StatusCode, Message: strings.TrimSpace(string(data))}
	}
	var out jsoncfg.GenerateImagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode image response: %w", err)
	}
	return out.ImageURLsFor(len(payload.Items)), nil
}

var _ Generator = (*Remote)(nil)
