// Package image implements the per-item illustrators and the batch image
// generators that turn a lesson's items into index-aligned image URLs.
package image

import (
	"context"

	"lessonserver/internal/domain"
	"lessonserver/internal/providers/genai"
)

// Illustrator produces and publishes one image, returning its public URL.
type Illustrator interface {
	Illustrate(ctx context.Context, topic string, item domain.Item) (string, error)
}

// Generator illustrates a batch of items. The result always has len(items)
// entries, aligned by index; failures are recorded per entry and never
// returned as an error.
type Generator interface {
	Generate(ctx context.Context, topic string, items []domain.Item) []domain.ImageResult
}

// ImageModel is the part of the Gemini client the illustrator needs.
type ImageModel interface {
	GenerateImage(ctx context.Context, prompt string) (*genai.Image, error)
}

// Publisher uploads bytes and resolves their public URL. storage.ObjectStore
// satisfies it.
type Publisher interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	PublicURL(key string) string
}
