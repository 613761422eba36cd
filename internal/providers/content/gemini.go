package content

import (
	"context"
	"errors"

	"lessonserver/internal/domain"
)

// TextModel is the part of the Gemini client the generator needs.
type TextModel interface {
	GenerateText(ctx context.Context, prompt string, jsonMode bool) (string, error)
}

// Gemini generates lesson text with a Gemini text model.
type Gemini struct {
	model TextModel
}

func NewGemini(model TextModel) (*Gemini, error) {
	if model == nil {
		return nil, errors.New("gemini text model is required")
	}
	return &Gemini{model: model}, nil
}

func (g *Gemini) Name() string { return geminiProviderName }

func (g *Gemini) Generate(ctx context.Context, topic string, count int, language string) (*domain.GeneratedContent, error) {
	if count == 0 {
		return &domain.GeneratedContent{Title: DefaultTitle(topic), Description: DefaultDescription(topic), Items: []domain.Item{}}, nil
	}
	text, err := g.model.GenerateText(ctx, buildLessonPrompt(topic, count, language), true)
	if err != nil {
		return nil, err
	}
	return contentFromModel(text, topic, count)
}

var _ Generator = (*Gemini)(nil)
