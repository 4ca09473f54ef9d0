package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/center-cms-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

var userRowColumns = []string{"id", "center_id", "email", "password_hash", "full_name", "role", "access", "status", "last_login", "created_at", "updated_at"}

func TestFindByEmail(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(userRowColumns).
		AddRow("u1", "c1", "staff@example.com", "hash", "Staff", string(models.RoleStaff), string(models.AccessGranted), 1, now, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE LOWER(email) = LOWER($1) LIMIT 1")).
		WithArgs("staff@example.com").
		WillReturnRows(rows)

	user, err := repo.FindByEmail(context.Background(), "staff@example.com")
	require.NoError(t, err)
	assert.Equal(t, "c1", user.CenterID)
	assert.Equal(t, models.StatusActive, user.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByIDWithRoles(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(userRowColumns).
		AddRow("u1", "c1", "admin@example.com", "hash", "Admin", string(models.RoleAdministrator), string(models.AccessGranted), 1, nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1 AND role = ANY($2) LIMIT 1")).
		WithArgs("u1", sqlmock.AnyArg()).
		WillReturnRows(rows)

	user, err := repo.FindByIDWithRoles(context.Background(), "u1", []models.UserRole{models.RoleAdministrator, models.RoleStaff})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdministrator, user.Role)
	assert.Nil(t, user.LastLogin)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByIDWithRolesNoMatch(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1 AND role = ANY($2)")).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByIDWithRoles(context.Background(), "u1", []models.UserRole{models.RoleStaff})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateLastLogin(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	ts := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET last_login = $2, updated_at = $3 WHERE id = $1")).
		WithArgs("u1", ts, ts).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateLastLogin(context.Background(), "u1", ts))
	assert.NoError(t, mock.ExpectationsWereMet())
}
