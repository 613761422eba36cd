package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"lessonserver/internal/domain"
	"lessonserver/internal/infra"
)

const (
	DefaultBaseURL    = "https://generativelanguage.googleapis.com/v1beta"
	DefaultTextModel  = "gemini-2.0-flash"
	DefaultImageModel = "gemini-2.0-flash-exp-image-generation"
)

// ErrNoImage is returned when a response carries no inline image part.
var ErrNoImage = errors.New("gemini returned no image")

// ErrNoText is returned when a response carries no text part.
var ErrNoText = errors.New("gemini returned no text")

// Options controls how the Gemini client is configured.
type Options struct {
	APIKey     string
	BaseURL    string
	TextModel  string
	ImageModel string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Client calls the Gemini generateContent REST endpoint for text and images.
type Client struct {
	apiKey     string
	baseURL    string
	textModel  string
	imageModel string
	httpClient *http.Client
	logger     *infra.Logger
}

// Image is a decoded inline image part.
type Image struct {
	Data     []byte
	MimeType string
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts,omitempty"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
}

type geminiGenerationConfig struct {
	ResponseModalities []string `json:"responseModalities,omitempty"`
	ResponseMimeType   string   `json:"responseMimeType,omitempty"`
}

type geminiGenerateContentRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
}

type geminiGenerateContentResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error"`
}

// NewClient constructs a Gemini client. A nil HTTP client gets a 120s timeout.
func NewClient(opts Options) *Client {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}

	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	logger := opts.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		textModel:  firstNonEmpty(opts.TextModel, DefaultTextModel),
		imageModel: firstNonEmpty(opts.ImageModel, DefaultImageModel),
		httpClient: client,
		logger:     logger,
	}
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool {
	return c != nil && c.apiKey != ""
}

func (c *Client) TextModel() string  { return c.textModel }
func (c *Client) ImageModel() string { return c.imageModel }

// GenerateText returns the first non-empty text part of the response. With
// jsonMode the model is asked for an application/json response.
func (c *Client) GenerateText(ctx context.Context, prompt string, jsonMode bool) (string, error) {
	payload := geminiGenerateContentRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	}
	if jsonMode {
		payload.GenerationConfig = &geminiGenerationConfig{ResponseMimeType: "application/json"}
	}

	var response geminiGenerateContentResponse
	if err := c.invokeGemini(ctx, c.textModel, payload, &response); err != nil {
		return "", err
	}
	for _, candidate := range response.Candidates {
		for _, part := range candidate.Content.Parts {
			if text := strings.TrimSpace(part.Text); text != "" {
				return text, nil
			}
		}
	}
	return "", ErrNoText
}

// GenerateImage asks the image model for TEXT and IMAGE modalities and returns
// the first inline part whose mime type is image/*.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (*Image, error) {
	payload := geminiGenerateContentRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: &geminiGenerationConfig{
			ResponseModalities: []string{"TEXT", "IMAGE"},
		},
	}

	var response geminiGenerateContentResponse
	if err := c.invokeGemini(ctx, c.imageModel, payload, &response); err != nil {
		return nil, err
	}
	for _, candidate := range response.Candidates {
		for _, part := range candidate.Content.Parts {
			img, err := decodeInlineImage(part)
			if err != nil {
				c.logger.Warn().Err(err).Str("model", c.imageModel).Msg("genai: skipping undecodable inline part")
				continue
			}
			if img != nil {
				return img, nil
			}
		}
	}
	return nil, ErrNoImage
}

func (c *Client) invokeGemini(ctx context.Context, model string, payload any, out any) error {
	if c.apiKey == "" {
		return errors.New("gemini api key is not configured")
	}
	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, url.PathEscape(model))
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	q := req.URL.Query()
	q.Set("key", c.apiKey)
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.TransportError{Op: "invoke gemini", Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug().Str("model", model).Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).Msg("genai: generateContent")

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		var apiErr geminiErrorResponse
		if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Error.Message != "" {
			return &domain.BackendError{Status: resp.StatusCode, Message: fmt.Sprintf("gemini status %d: %s", resp.StatusCode, apiErr.Error.Message)}
		}
		if msg := strings.TrimSpace(string(data)); msg != "" {
			return &domain.BackendError{Status: resp.StatusCode, Message: fmt.Sprintf("gemini status %d: %s", resp.StatusCode, msg)}
		}
		return &domain.BackendError{Status: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode gemini response: %w", err)
	}
	return nil
}

func decodeInlineImage(part geminiPart) (*Image, error) {
	if part.InlineData == nil || part.InlineData.Data == "" {
		return nil, nil
	}
	if !strings.HasPrefix(part.InlineData.MimeType, "image/") {
		return nil, nil
	}
	data, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
	if err != nil {
		return nil, fmt.Errorf("decode inline data: %w", err)
	}
	return &Image{Data: data, MimeType: part.InlineData.MimeType}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
