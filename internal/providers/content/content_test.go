package content

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lessonserver/internal/domain"
	"lessonserver/internal/domain/jsoncfg"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func stubResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

type stubTextModel struct {
	text   string
	err    error
	prompt string
	calls  int
}

func (s *stubTextModel) GenerateText(_ context.Context, prompt string, jsonMode bool) (string, error) {
	s.calls++
	s.prompt = prompt
	return s.text, s.err
}

func TestTemplateGeneratesRequestedCount(t *testing.T) {
	for _, count := range []int{0, 1, 5, 20} {
		content, err := NewTemplate().Generate(context.Background(), "Animals", count, "en")
		require.NoError(t, err)
		require.Len(t, content.Items, count)
		assert.Equal(t, "Learn About Animals", content.Title)
		assert.Contains(t, content.Description, "Animals")
		for i, item := range content.Items {
			assert.NotEmpty(t, item.Name)
			assert.NotEmpty(t, item.SpokenText)
			assert.Empty(t, item.Image)
			if i == 0 {
				assert.Equal(t, "Animals Item 1", item.Name)
			}
		}
	}
}

func TestRemotePostsTopicAndCount(t *testing.T) {
	var got jsoncfg.GenerateLessonRequest
	remote := NewRemote(RemoteOptions{
		BaseURL: "http://backend.test/",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			assert.Equal(t, "/api/generate-lesson-content", r.URL.Path)
			assert.Equal(t, jsoncfg.SchemaVersion, r.Header.Get(jsoncfg.SchemaHeader))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			return stubResponse(http.StatusOK, `{"success":true,"title":"Learn About Animals","description":"d","items":[
				{"name":"Dog","spokenText":"Woof"},{"name":"Cat","spokenText":"Meow"},{"name":"Cow","spokenText":"Moo"}]}`), nil
		})},
	})

	content, err := remote.Generate(context.Background(), "Animals", 3, "en")
	require.NoError(t, err)
	assert.Equal(t, "Animals", got.Topic)
	require.NotNil(t, got.ItemCount)
	assert.Equal(t, 3, *got.ItemCount)
	require.Len(t, content.Items, 3)
	assert.Equal(t, "Dog", content.Items[0].Name)
}

func TestRemoteErrors(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{name: "status with message", status: http.StatusBadRequest, body: `{"success":false,"error":"Topic is required"}`, wantMsg: "Topic is required"},
		{name: "status without body", status: http.StatusBadGateway, body: `<html>bad gateway</html>`, wantMsg: "API error: 502"},
		{name: "explicit failure", status: http.StatusOK, body: `{"success":false,"error":"GEMINI_API_KEY not configured"}`, wantMsg: "GEMINI_API_KEY not configured"},
		{name: "failure without message", status: http.StatusOK, body: `{"success":false}`, wantMsg: "Failed to generate lesson"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			remote := NewRemote(RemoteOptions{
				BaseURL: "http://backend.test",
				HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
					return stubResponse(tc.status, tc.body), nil
				})},
			})
			_, err := remote.Generate(context.Background(), "Animals", 3, "en")
			var backendErr *domain.BackendError
			require.ErrorAs(t, err, &backendErr)
			assert.Equal(t, tc.wantMsg, err.Error())
		})
	}
}

func TestRemoteTransportFailure(t *testing.T) {
	remote := NewRemote(RemoteOptions{
		BaseURL: "http://backend.test",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return nil, errors.New("connection refused")
		})},
	})
	_, err := remote.Generate(context.Background(), "Animals", 3, "en")
	var transportErr *domain.TransportError
	require.ErrorAs(t, err, &transportErr)
}

func TestGeminiParsesFencedJSON(t *testing.T) {
	model := &stubTextModel{text: "```json\n{\"title\":\"\",\"items\":[{\"name\":\"Red\",\"spokenText\":\"Red like an apple\"},{\"name\":\"\",\"spokenText\":\"skip\"},{\"name\":\"Blue\",\"spokenText\":\"Blue like the sky\"},{\"name\":\"Green\",\"spokenText\":\"extra\"}]}\n```"}
	gen, err := NewGemini(model)
	require.NoError(t, err)

	content, err := gen.Generate(context.Background(), "Colors", 2, "en")
	require.NoError(t, err)
	assert.Equal(t, "Learn About Colors", content.Title)
	assert.Equal(t, "A fun lesson about Colors", content.Description)
	require.Len(t, content.Items, 2)
	assert.Equal(t, "Red", content.Items[0].Name)
	assert.Equal(t, "Blue", content.Items[1].Name)
	assert.Contains(t, model.prompt, `"Colors"`)
	assert.Contains(t, model.prompt, "Generate exactly 2 items")
}

func TestGeminiZeroItemsSkipsModel(t *testing.T) {
	model := &stubTextModel{}
	gen, err := NewGemini(model)
	require.NoError(t, err)
	content, err := gen.Generate(context.Background(), "Colors", 0, "en")
	require.NoError(t, err)
	assert.Empty(t, content.Items)
	assert.Equal(t, 0, model.calls)
}

func TestGeminiRejectsUnparseableOutput(t *testing.T) {
	gen, err := NewGemini(&stubTextModel{text: "I cannot help with that"})
	require.NoError(t, err)
	_, err = gen.Generate(context.Background(), "Colors", 3, "en")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not parse JSON")
}

func TestBuildLessonPromptMentionsLanguage(t *testing.T) {
	assert.NotContains(t, buildLessonPrompt("Fruits", 3, "en"), "BCP 47")
	assert.Contains(t, buildLessonPrompt("Fruits", 3, "es"), `"es"`)
}

func TestOpenAIChatCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-4o-mini", body["model"])
		format := body["response_format"].(map[string]any)
		assert.Equal(t, "json_object", format["type"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"c1","object":"chat.completion","choices":[{"index":0,"finish_reason":"stop",
			"message":{"role":"assistant","content":"{\"title\":\"Learn About Fruits\",\"description\":\"Yum\",\"items\":[{\"name\":\"Apple\",\"spokenText\":\"Apples are crunchy\"}]}"}}]}`)
	}))
	defer srv.Close()

	gen, err := NewOpenAI(OpenAIOptions{APIKey: "sk-test", BaseURL: srv.URL + "/v1"})
	require.NoError(t, err)
	content, err := gen.Generate(context.Background(), "Fruits", 1, "en")
	require.NoError(t, err)
	require.Len(t, content.Items, 1)
	assert.Equal(t, "Apple", content.Items[0].Name)
	assert.Equal(t, "Yum", content.Description)
}

func TestOpenAIAPIErrorBecomesBackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`)
	}))
	defer srv.Close()

	gen, err := NewOpenAI(OpenAIOptions{APIKey: "sk-bad", BaseURL: srv.URL})
	require.NoError(t, err)
	_, err = gen.Generate(context.Background(), "Fruits", 2, "en")
	var backendErr *domain.BackendError
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, http.StatusUnauthorized, backendErr.Status)
	assert.Contains(t, backendErr.Message, "Incorrect API key")
}

func TestNewOpenAIRequiresKey(t *testing.T) {
	_, err := NewOpenAI(OpenAIOptions{})
	assert.Error(t, err)
}

func TestRemoteCutsItemsToRequestedCount(t *testing.T) {
	remote := NewRemote(RemoteOptions{
		BaseURL: "http://backend.test",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return stubResponse(http.StatusOK, `{"success":true,"title":"Colors","items":[
				{"name":"Red","spokenText":"Red"},{"name":"Blue","spokenText":"Blue"},{"name":"Green","spokenText":"Green"},
				{"name":"Pink","spokenText":"Pink"},{"name":"Gray","spokenText":"Gray"}]}`), nil
		})},
	})

	content, err := remote.Generate(context.Background(), "Colors", 2, "en")
	require.NoError(t, err)
	require.Len(t, content.Items, 2)
	assert.Equal(t, "Red", content.Items[0].Name)
	assert.Equal(t, "Blue", content.Items[1].Name)

	content, err = remote.Generate(context.Background(), "Colors", 0, "en")
	require.NoError(t, err)
	assert.Empty(t, content.Items)
}

func TestRemoteRejectsEmptyItems(t *testing.T) {
	remote := NewRemote(RemoteOptions{
		BaseURL: "http://backend.test",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return stubResponse(http.StatusOK, `{"success":true,"title":"Colors","items":[]}`), nil
		})},
	})

	_, err := remote.Generate(context.Background(), "Colors", 3, "en")
	var backendErr *domain.BackendError
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, "content response contained no items", backendErr.Message)
}

func TestContentFromModelHonorsZeroCount(t *testing.T) {
	content, err := contentFromModel(`{"title":"Shapes","items":[{"name":"Circle","spokenText":"Round"}]}`, "Shapes", 0)
	require.NoError(t, err)
	assert.Empty(t, content.Items)
}
