package storage

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLTokenStore_Load(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	s := NewSQLTokenStore(db)
	ctx := context.Background()

	t.Run("Found", func(t *testing.T) {
		mock.ExpectQuery("SELECT value FROM session_tokens WHERE key = \\$1").
			WithArgs(TokenKey).
			WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("abc.def.ghi"))

		tok, err := s.Load(ctx)
		assert.NoError(t, err)
		assert.Equal(t, "abc.def.ghi", tok)
	})

	t.Run("Missing", func(t *testing.T) {
		mock.ExpectQuery("SELECT value FROM session_tokens").
			WithArgs(TokenKey).
			WillReturnError(sql.ErrNoRows)

		_, err := s.Load(ctx)
		assert.ErrorIs(t, err, ErrNoToken)
	})

	t.Run("Driver failure", func(t *testing.T) {
		mock.ExpectQuery("SELECT value FROM session_tokens").
			WithArgs(TokenKey).
			WillReturnError(errors.New("connection reset"))

		_, err := s.Load(ctx)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrNoToken)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLTokenStore_SaveAndClear(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	s := NewSQLTokenStore(db)
	ctx := context.Background()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS session_tokens").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO session_tokens").
		WithArgs(TokenKey, "abc.def.ghi", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM session_tokens WHERE key = \\$1").
		WithArgs(TokenKey).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.EnsureSchema(ctx))
	require.NoError(t, s.Save(ctx, "abc.def.ghi"))
	require.NoError(t, s.Clear(ctx))
	assert.NoError(t, mock.ExpectationsWereMet())
}
