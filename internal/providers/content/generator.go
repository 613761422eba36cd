// Package content implements the lesson text generators: a local template,
// a remote Flask-style backend, and server-side Gemini and OpenAI calls.
package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"lessonserver/internal/domain"
)

// Generator produces lesson text for a topic. Items are returned without images.
type Generator interface {
	Generate(ctx context.Context, topic string, count int, language string) (*domain.GeneratedContent, error)
	Name() string
}

const (
	templateProviderName = "template"
	remoteProviderName   = "remote"
	geminiProviderName   = "gemini"
	openAIProviderName   = "openai"
)

// DefaultTitle is used when a generator returns no title.
func DefaultTitle(topic string) string {
	return "Learn About " + topic
}

// DefaultDescription is used when a generator returns no description.
func DefaultDescription(topic string) string {
	return "A fun lesson about " + topic
}

type modelLessonPayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Items       []struct {
		Name       string `json:"name"`
		SpokenText string `json:"spokenText"`
	} `json:"items"`
}

func buildLessonPrompt(topic string, count int, language string) string {
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "Generate an educational lesson about %q for children aged 4-8.\n\n", topic)
	sb.WriteString("Return a valid JSON object with this exact structure:\n")
	fmt.Fprintf(sb, `{
    "title": "Learn About %s",
    "description": "A fun lesson about %s for young learners.",
    "items": [
        {"name": "item name", "spokenText": "Simple, engaging text about this item (1-2 sentences)"}
    ]
}`, topic, topic)
	fmt.Fprintf(sb, "\n\nGenerate exactly %d items. Keep language simple and child-friendly.\n", count)
	if language != "" && language != domain.DefaultLanguage {
		fmt.Fprintf(sb, "Write the title, description, names and spokenText in the language with BCP 47 tag %q.\n", language)
	}
	sb.WriteString("Only return the JSON, no other text.")
	return sb.String()
}

// contentFromModel turns raw model output into lesson content. Items with an
// empty name are dropped and the list is cut to count.
func contentFromModel(raw, topic string, count int) (*domain.GeneratedContent, error) {
	parsed, err := parseModelPayload[modelLessonPayload](raw)
	if err != nil {
		return nil, fmt.Errorf("could not parse JSON from content response: %w", err)
	}
	out := &domain.GeneratedContent{
		Title:       coalesce(parsed.Title, DefaultTitle(topic)),
		Description: coalesce(parsed.Description, DefaultDescription(topic)),
		Items:       make([]domain.Item, 0, len(parsed.Items)),
	}
	for _, item := range parsed.Items {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			continue
		}
		out.Items = append(out.Items, domain.Item{
			Name:       name,
			SpokenText: coalesce(item.SpokenText, name),
		})
	}
	out.Items = limitItems(out.Items, count)
	if count > 0 && len(out.Items) == 0 {
		return nil, errors.New("content response contained no items")
	}
	return out, nil
}

// limitItems cuts items to at most count entries.
func limitItems(items []domain.Item, count int) []domain.Item {
	if count < 0 {
		count = 0
	}
	if len(items) > count {
		return items[:count]
	}
	return items
}

func coalesce(values ...string) string {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			return v
		}
	}
	return ""
}

func parseModelPayload[T any](raw string) (T, error) {
	var zero T
	cleaned := extractJSONObject(raw)
	if cleaned == "" {
		return zero, errors.New("empty payload")
	}
	var decoded T
	if err := json.Unmarshal([]byte(cleaned), &decoded); err != nil {
		return zero, err
	}
	return decoded, nil
}

// extractJSONObject returns the outermost {...} fragment of text.
func extractJSONObject(raw string) string {
	text := trimCodeFence(strings.TrimSpace(raw))
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return ""
	}
	return strings.TrimSpace(text[start : end+1])
}

func trimCodeFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```JSON")
	text = strings.TrimPrefix(text, "```")
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}
