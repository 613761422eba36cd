package repo

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lessonserver/internal/domain"
)

func TestMemoryLessonRepositoryLifecycle(t *testing.T) {
	repo := NewMemoryLessonRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, domain.LessonFormData{
		Title: "Farm Animals",
		Items: []domain.Item{{Name: "Cow", SpokenText: "This is a cow."}},
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	created.Items[0].Name = "mutated"
	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cow", got.Items[0].Name)

	require.NoError(t, repo.Delete(ctx, created.ID))
	_, err = repo.Get(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, created.ID), domain.ErrNotFound)
}

func TestMemoryLessonRepositoryRejectsInvalid(t *testing.T) {
	repo := NewMemoryLessonRepository()
	_, err := repo.Create(context.Background(), domain.LessonFormData{})
	assert.ErrorIs(t, err, domain.ErrInvalidLesson)
}

func TestMemoryLessonRepositoryListNewestFirst(t *testing.T) {
	repo := NewMemoryLessonRepository()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	repo.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}
	ctx := context.Background()
	for _, title := range []string{"Fruits", "Ocean Life", "Forest FRUITS", "Shapes"} {
		_, err := repo.Create(ctx, domain.LessonFormData{Title: title})
		require.NoError(t, err)
	}

	page, err := repo.List(ctx, domain.ListParams{})
	require.NoError(t, err)
	assert.Equal(t, 4, page.Total)
	assert.Equal(t, domain.DefaultListLimit, page.Limit)
	require.Len(t, page.Lessons, 4)
	assert.Equal(t, "Shapes", page.Lessons[0].Title)
	assert.Equal(t, "Fruits", page.Lessons[3].Title)

	page, err = repo.List(ctx, domain.ListParams{Search: " fruits "})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	require.Len(t, page.Lessons, 2)
	assert.Equal(t, "Forest FRUITS", page.Lessons[0].Title)

	page, err = repo.List(ctx, domain.ListParams{Limit: 2, Offset: 3})
	require.NoError(t, err)
	assert.Equal(t, 4, page.Total)
	require.Len(t, page.Lessons, 1)
	assert.Equal(t, "Fruits", page.Lessons[0].Title)

	page, err = repo.List(ctx, domain.ListParams{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, page.Lessons)
	assert.NotNil(t, page.Lessons)
}
