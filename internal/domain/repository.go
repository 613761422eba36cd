package domain

import (
	"context"

	"github.com/google/uuid"
)

// LessonRepository persists lessons. Create assigns the identity and is atomic:
// it either returns the full Lesson or an error.
type LessonRepository interface {
	Create(ctx context.Context, data LessonFormData) (*Lesson, error)
	Get(ctx context.Context, id uuid.UUID) (*Lesson, error)
	List(ctx context.Context, params ListParams) (*LessonPage, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
