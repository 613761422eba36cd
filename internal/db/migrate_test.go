package db

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lessonserver/internal/infra"
)

func TestMigrationsEmbedded(t *testing.T) {
	names, err := fs.Glob(Migrations(), "*.sql")
	require.NoError(t, err)
	require.Len(t, names, 2)
	assert.Equal(t, "00001_create_lessons.sql", names[0])

	for _, name := range names {
		body, err := fs.ReadFile(Migrations(), name)
		require.NoError(t, err)
		assert.True(t, strings.Contains(string(body), "-- +goose Up"), name)
		assert.True(t, strings.Contains(string(body), "-- +goose Down"), name)
	}
}

func TestNewMigratorRequiresURL(t *testing.T) {
	_, err := NewMigrator("", zerolog.Nop())
	assert.ErrorIs(t, err, infra.ErrNoDatabase)
}
