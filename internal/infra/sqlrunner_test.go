package infra

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractMarker(t *testing.T) {
	marker, body, err := extractMarker("\n--sql 0b7f2d8e-5a49-4c1e-9d6f-1f1e2a3b4c5d\nSELECT 1\n")
	require.NoError(t, err)
	assert.Equal(t, "0b7f2d8e-5a49-4c1e-9d6f-1f1e2a3b4c5d", marker)
	assert.Equal(t, "SELECT 1", body)

	_, _, err = extractMarker("SELECT 1")
	assert.ErrorIs(t, err, ErrMissingMarker)

	_, _, err = extractMarker("   ")
	assert.Error(t, err)
}

func TestSQLRunnerStripsMarker(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM lessons WHERE id = $1").
		WithArgs("abc").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	runner := NewSQLRunner(mock, zerolog.Nop())
	tag, err := runner.Exec(context.Background(),
		"--sql 0b7f2d8e-5a49-4c1e-9d6f-1f1e2a3b4c5d\nDELETE FROM lessons WHERE id = $1", "abc")
	require.NoError(t, err)
	assert.EqualValues(t, 1, tag.RowsAffected())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLRunnerRejectsUnmarkedQueryRow(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	runner := NewSQLRunner(mock, zerolog.Nop())
	var n int
	err = runner.QueryRow(context.Background(), "SELECT 1").Scan(&n)
	assert.ErrorIs(t, err, ErrMissingMarker)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIsNoRows(t *testing.T) {
	assert.True(t, IsNoRows(pgx.ErrNoRows))
	assert.True(t, IsNoRows(errors.Join(errors.New("scan"), pgx.ErrNoRows)))
	assert.False(t, IsNoRows(errors.New("boom")))
}
