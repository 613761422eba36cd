package genai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lessonserver/internal/domain"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestGenerateImageSendsModalitiesAndKey(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G'}
	encoded := base64.StdEncoding.EncodeToString(png)

	var captured map[string]any
	client := NewClient(Options{
		APIKey:     "secret",
		BaseURL:    "https://gemini.test/v1beta/",
		ImageModel: "img-model",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			assert.Equal(t, "/v1beta/models/img-model:generateContent", r.URL.Path)
			assert.Equal(t, "secret", r.URL.Query().Get("key"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
			return jsonResponse(http.StatusOK, `{"candidates":[{"content":{"parts":[
				{"text":"here you go"},
				{"inlineData":{"mimeType":"text/plain","data":"aGVsbG8="}},
				{"inlineData":{"mimeType":"image/png","data":"`+encoded+`"}}
			]}}]}`), nil
		})},
	})

	img, err := client.GenerateImage(context.Background(), "draw a cat")
	require.NoError(t, err)
	assert.Equal(t, png, img.Data)
	assert.Equal(t, "image/png", img.MimeType)

	cfg := captured["generationConfig"].(map[string]any)
	assert.Equal(t, []any{"TEXT", "IMAGE"}, cfg["responseModalities"])
	contents := captured["contents"].([]any)
	parts := contents[0].(map[string]any)["parts"].([]any)
	assert.Equal(t, "draw a cat", parts[0].(map[string]any)["text"])
}

func TestGenerateImageWithoutImagePart(t *testing.T) {
	client := NewClient(Options{
		APIKey: "secret",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":"sorry"}]}}]}`), nil
		})},
	})
	_, err := client.GenerateImage(context.Background(), "draw")
	assert.ErrorIs(t, err, ErrNoImage)
}

func TestGenerateTextJSONMode(t *testing.T) {
	client := NewClient(Options{
		APIKey:    "secret",
		TextModel: "txt",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			cfg := body["generationConfig"].(map[string]any)
			assert.Equal(t, "application/json", cfg["responseMimeType"])
			return jsonResponse(http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":"  "},{"text":"{\"title\":\"x\"}"}]}}]}`), nil
		})},
	})
	text, err := client.GenerateText(context.Background(), "prompt", true)
	require.NoError(t, err)
	assert.Equal(t, `{"title":"x"}`, text)
}

func TestInvokeGeminiErrors(t *testing.T) {
	client := NewClient(Options{
		APIKey: "secret",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusForbidden, `{"error":{"code":403,"message":"API key invalid"}}`), nil
		})},
	})
	_, err := client.GenerateText(context.Background(), "p", false)
	var backendErr *domain.BackendError
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, http.StatusForbidden, backendErr.Status)
	assert.Contains(t, backendErr.Message, "API key invalid")

	failing := NewClient(Options{
		APIKey: "secret",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return nil, errors.New("dial tcp: refused")
		})},
	})
	_, err = failing.GenerateImage(context.Background(), "p")
	var transportErr *domain.TransportError
	require.ErrorAs(t, err, &transportErr)
}

func TestUnconfiguredClient(t *testing.T) {
	client := NewClient(Options{})
	assert.False(t, client.Configured())
	assert.Equal(t, DefaultTextModel, client.TextModel())
	_, err := client.GenerateText(context.Background(), "p", false)
	assert.Error(t, err)
}
