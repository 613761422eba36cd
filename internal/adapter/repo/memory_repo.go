package repo

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"

	"lessonserver/internal/domain"
)

// MemoryLessonRepository keeps lessons in process memory. It is used when no
// DATABASE_URL is configured.
type MemoryLessonRepository struct {
	mu      sync.RWMutex
	lessons []domain.Lesson // newest last
	now     func() time.Time
}

// NewMemoryLessonRepository creates an empty repository.
func NewMemoryLessonRepository() *MemoryLessonRepository {
	return &MemoryLessonRepository{
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (r *MemoryLessonRepository) Create(_ context.Context, data domain.LessonFormData) (*domain.Lesson, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}
	items := make([]domain.Item, len(data.Items))
	copy(items, data.Items)

	ts := r.now()
	lesson := domain.Lesson{
		ID:          uuid.New(),
		Title:       strings.TrimSpace(data.Title),
		Description: data.Description,
		CoverImage:  data.CoverImage,
		Items:       items,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}

	r.mu.Lock()
	r.lessons = append(r.lessons, lesson)
	r.mu.Unlock()
	return cloneLesson(lesson), nil
}

func (r *MemoryLessonRepository) Get(_ context.Context, id uuid.UUID) (*domain.Lesson, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, lesson := range r.lessons {
		if lesson.ID == id {
			return cloneLesson(lesson), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MemoryLessonRepository) List(_ context.Context, params domain.ListParams) (*domain.LessonPage, error) {
	params.Normalize()
	fold := cases.Fold()
	needle := fold.String(params.Search)

	r.mu.RLock()
	matched := make([]domain.Lesson, 0, len(r.lessons))
	for i := len(r.lessons) - 1; i >= 0; i-- {
		lesson := r.lessons[i]
		if needle != "" && !strings.Contains(fold.String(lesson.Title), needle) {
			continue
		}
		matched = append(matched, lesson)
	}
	r.mu.RUnlock()

	page := &domain.LessonPage{Lessons: []domain.Lesson{}, Total: len(matched), Limit: params.Limit, Offset: params.Offset}
	if params.Offset >= len(matched) {
		return page, nil
	}
	end := min(params.Offset+params.Limit, len(matched))
	for _, lesson := range matched[params.Offset:end] {
		page.Lessons = append(page.Lessons, *cloneLesson(lesson))
	}
	return page, nil
}

func (r *MemoryLessonRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, lesson := range r.lessons {
		if lesson.ID == id {
			r.lessons = append(r.lessons[:i], r.lessons[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func cloneLesson(l domain.Lesson) *domain.Lesson {
	items := make([]domain.Item, len(l.Items))
	copy(items, l.Items)
	l.Items = items
	return &l
}

var _ domain.LessonRepository = (*MemoryLessonRepository)(nil)
