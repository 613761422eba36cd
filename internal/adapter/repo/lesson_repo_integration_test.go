//go:build integration

package repo

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"lessonserver/internal/db"
	"lessonserver/internal/domain"
	"lessonserver/internal/infra"
)

func setupPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("lessons"),
		postgres.WithUsername("lessons"),
		postgres.WithPassword("lessons"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(2*time.Minute),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	migrator, err := db.NewMigrator(dsn, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, migrator.Up(ctx))
	require.NoError(t, migrator.Close())

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func TestLessonRepositoryPostgres(t *testing.T) {
	pool := setupPostgres(t)
	ctx := context.Background()
	repo := NewLessonRepository(infra.NewSQLRunner(pool, zerolog.Nop()))

	first, err := repo.Create(ctx, domain.LessonFormData{
		Title:      "Ocean Life",
		CoverImage: "http://localhost:8080/static/1-whale.png",
		Items: []domain.Item{
			{Name: "Whale", SpokenText: "This is a whale.", Image: "http://localhost:8080/static/1-whale.png"},
			{Name: "Crab", SpokenText: "This is a crab."},
		},
	})
	require.NoError(t, err)
	second, err := repo.Create(ctx, domain.LessonFormData{Title: "Fruits 100%"})
	require.NoError(t, err)

	got, err := repo.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Items, got.Items)

	page, err := repo.List(ctx, domain.ListParams{})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, second.ID, page.Lessons[0].ID)

	page, err = repo.List(ctx, domain.ListParams{Search: "100%"})
	require.NoError(t, err)
	require.Len(t, page.Lessons, 1)
	assert.Equal(t, second.ID, page.Lessons[0].ID)

	require.NoError(t, repo.Delete(ctx, first.ID))
	_, err = repo.Get(ctx, first.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
