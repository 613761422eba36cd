package content

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"lessonserver/internal/domain"
)

const defaultOpenAIModel = "gpt-4o-mini"

type OpenAIOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// OpenAI generates lesson text through the chat completions API.
type OpenAI struct {
	client *openai.Client
	model  string
}

func NewOpenAI(opts OpenAIOptions) (*OpenAI, error) {
	key := strings.TrimSpace(opts.APIKey)
	if key == "" {
		return nil, errors.New("openai api key is required")
	}
	config := openai.DefaultConfig(key)
	if base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"); base != "" {
		config.BaseURL = base
	}
	if opts.HTTPClient != nil {
		config.HTTPClient = opts.HTTPClient
	}
	return &OpenAI{
		client: openai.NewClientWithConfig(config),
		model:  coalesce(opts.Model, defaultOpenAIModel),
	}, nil
}

func (o *OpenAI) Name() string { return openAIProviderName }

func (o *OpenAI) Generate(ctx context.Context, topic string, count int, language string) (*domain.GeneratedContent, error) {
	if count == 0 {
		return &domain.GeneratedContent{Title: DefaultTitle(topic), Description: DefaultDescription(topic), Items: []domain.Item{}}, nil
	}
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "You write short lessons for young children and only respond with valid JSON."},
			{Role: openai.ChatMessageRoleUser, Content: buildLessonPrompt(topic, count, language)},
		},
		Temperature: 0.7,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, classifyOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("openai returned no choices")
	}
	return contentFromModel(resp.Choices[0].Message.Content, topic, count)
}

var _ Generator = (*OpenAI)(nil)

func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &domain.BackendError{Status: apiErr.HTTPStatusCode, Message: "openai: " + apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &domain.BackendError{Status: reqErr.HTTPStatusCode, Message: "openai: " + reqErr.Error()}
	}
	return &domain.TransportError{Op: "openai chat completion", Err: err}
}
