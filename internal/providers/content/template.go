package content

import (
	"context"
	"fmt"

	"lessonserver/internal/domain"
)

// Template builds lesson text locally without any model call.
type Template struct{}

func NewTemplate() *Template { return &Template{} }

func (t *Template) Name() string { return templateProviderName }

// Generate never fails.
func (t *Template) Generate(_ context.Context, topic string, count int, _ string) (*domain.GeneratedContent, error) {
	items := make([]domain.Item, count)
	for i := range items {
		name := fmt.Sprintf("%s Item %d", topic, i+1)
		items[i] = domain.Item{
			Name:       name,
			SpokenText: fmt.Sprintf("This is %s. Let's learn about %s together!", name, topic),
		}
	}
	return &domain.GeneratedContent{
		Title:       DefaultTitle(topic),
		Description: fmt.Sprintf("A fun lesson about %s for young learners.", topic),
		Items:       items,
	}, nil
}

var _ Generator = (*Template)(nil)
