package jsoncfg

import (
	"fmt"
	"strings"

	"lessonserver/internal/domain"
)

const (
	// SchemaVersion identifies the wire shapes below. It is sent on every
	// outbound call and echoed on responses in SchemaHeader.
	SchemaVersion = "2024-06"
	// SchemaHeader carries SchemaVersion.
	SchemaHeader = "X-Lesson-Schema"
)

// CheckSchema accepts an absent header or the current version.
func CheckSchema(header string) error {
	header = strings.TrimSpace(header)
	if header == "" || header == SchemaVersion {
		return nil
	}
	return fmt.Errorf("unsupported lesson schema %q, want %q", header, SchemaVersion)
}

// GenerateLessonRequest is the body of the content endpoints.
type GenerateLessonRequest struct {
	Topic     string `json:"topic"`
	ItemCount *int   `json:"item_count,omitempty"`
	Language  string `json:"language,omitempty"`
}

func (r GenerateLessonRequest) Validate() error {
	if strings.TrimSpace(r.Topic) == "" {
		return domain.ErrTopicRequired
	}
	if r.ItemCount != nil && *r.ItemCount < 0 {
		return domain.ErrInvalidItemCount
	}
	return nil
}

// ToDomain converts the wire request. Normalization happens in the domain.
func (r GenerateLessonRequest) ToDomain() domain.GenerationRequest {
	return domain.GenerationRequest{Topic: r.Topic, ItemCount: r.ItemCount, Language: r.Language}
}

// LessonContentResponse is returned by the content endpoints. On
// /api/generate-lesson items also carry their image URL.
type LessonContentResponse struct {
	Success     bool          `json:"success"`
	Title       string        `json:"title,omitempty"`
	Description string        `json:"description,omitempty"`
	Items       []domain.Item `json:"items,omitempty"`
	Error       string        `json:"error,omitempty"`
}

// Validate checks a successful payload has usable items. Unsuccessful payloads
// are always valid; their Error is reported as is.
func (r LessonContentResponse) Validate() error {
	if !r.Success {
		return nil
	}
	for i, item := range r.Items {
		if strings.TrimSpace(item.Name) == "" {
			return fmt.Errorf("items[%d].name is required", i)
		}
		if strings.TrimSpace(item.SpokenText) == "" {
			return fmt.Errorf("items[%d].spokenText is required", i)
		}
	}
	return nil
}

// Content converts a successful payload, dropping any image fields.
func (r LessonContentResponse) Content() *domain.GeneratedContent {
	items := make([]domain.Item, len(r.Items))
	for i, item := range r.Items {
		items[i] = domain.Item{Name: strings.TrimSpace(item.Name), SpokenText: strings.TrimSpace(item.SpokenText)}
	}
	return &domain.GeneratedContent{Title: r.Title, Description: r.Description, Items: items}
}

// ImageItem is the per-item body of an image generation request.
type ImageItem struct {
	Name       string `json:"name"`
	SpokenText string `json:"spokenText"`
}

// GenerateImagesRequest is the body of POST /generate-lesson-images.
type GenerateImagesRequest struct {
	Topic string      `json:"topic"`
	Items []ImageItem `json:"items"`
}

func (r GenerateImagesRequest) Validate() error {
	if strings.TrimSpace(r.Topic) == "" {
		return domain.ErrTopicRequired
	}
	if len(r.Items) > domain.MaxItemCount {
		return fmt.Errorf("at most %d items are allowed", domain.MaxItemCount)
	}
	for i, item := range r.Items {
		if strings.TrimSpace(item.Name) == "" {
			return fmt.Errorf("items[%d].name is required", i)
		}
	}
	return nil
}

// NewImagesRequest builds the request for items.
func NewImagesRequest(topic string, items []domain.Item) GenerateImagesRequest {
	out := GenerateImagesRequest{Topic: topic, Items: make([]ImageItem, len(items))}
	for i, item := range items {
		out.Items[i] = ImageItem{Name: item.Name, SpokenText: item.SpokenText}
	}
	return out
}

// DomainItems converts the request items.
func (r GenerateImagesRequest) DomainItems() []domain.Item {
	items := make([]domain.Item, len(r.Items))
	for i, item := range r.Items {
		items[i] = domain.Item{Name: item.Name, SpokenText: item.SpokenText}
	}
	return items
}

// GenerateImagesResponse carries one URL per requested item, "" on failure.
type GenerateImagesResponse struct {
	ImageURLs []string `json:"imageUrls"`
	Error     string   `json:"error,omitempty"`
}

// ImageURLsFor returns exactly n entries: missing entries become "" and extra
// entries are dropped.
func (r GenerateImagesResponse) ImageURLsFor(n int) []string {
	out := make([]string, n)
	copy(out, r.ImageURLs)
	for i := range out {
		out[i] = strings.TrimSpace(out[i])
	}
	return out
}
