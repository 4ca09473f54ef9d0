package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/center-cms-api/internal/models"
)

func TestAPIKeyFindByKey(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAPIKeyRepository(db)

	rows := sqlmock.NewRows([]string{"id", "key", "label", "class", "status", "created_at"}).
		AddRow("k1", "secret-key", "mobile app", string(models.KeyClassExternal), string(models.KeyStatusActive), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, key, label, class, status, created_at FROM api_keys WHERE key = $1 LIMIT 1")).
		WithArgs("secret-key").
		WillReturnRows(rows)

	key, err := repo.FindByKey(context.Background(), "secret-key")
	require.NoError(t, err)
	assert.Equal(t, models.KeyClassExternal, key.Class)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAPIKeyFindByKeyMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAPIKeyRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM api_keys WHERE key = $1")).
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByKey(context.Background(), "nope")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
