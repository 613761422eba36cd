package image

import (
	"context"
	"errors"
	"time"

	"lessonserver/internal/domain"
)

// Gemini illustrates items with a Gemini image model and uploads the result.
type Gemini struct {
	model ImageModel
	store Publisher
	now   func() time.Time
}

func NewGemini(model ImageModel, store Publisher) (*Gemini, error) {
	if model == nil || store == nil {
		return nil, errors.New("image model and store are required")
	}
	return &Gemini{model: model, store: store, now: time.Now}, nil
}

func (g *Gemini) Illustrate(ctx context.Context, topic string, item domain.Item) (string, error) {
	img, err := g.model.GenerateImage(ctx, BuildPrompt(topic, item.Name))
	if err != nil {
		return "", err
	}
	return publish(ctx, g.store, ImageKey(g.now(), item.Name), img.Data, img.MimeType)
}

var _ Illustrator = (*Gemini)(nil)
