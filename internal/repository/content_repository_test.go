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

var contentRowColumns = []string{"id", "center_id", "title", "stripped_title", "summary", "body", "asset_id", "asset_url", "status", "created_by", "created_at", "updated_at"}

func contentRow(rows *sqlmock.Rows, id, center, title, stripped string, status models.Status) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(id, center, title, stripped, "", "", nil, nil, int(status), nil, now, now)
}

func TestContentFindOneScopedToTenantAndStatus(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewContentRepository(db)

	rows := contentRow(sqlmock.NewRows(contentRowColumns), "p1", "c1", "Annual Report", "annual-report", models.StatusActive)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + contentColumns + " FROM content_posts WHERE id = $1 AND center_id = $2 AND status = $3 LIMIT 1")).
		WithArgs("p1", "c1", int64(models.StatusActive)).
		WillReturnRows(rows)

	got, err := repo.FindOne(context.Background(), models.KindPosts, models.ContentLookup{ID: "p1", CenterID: "c1", Filter: models.FilterActive})
	require.NoError(t, err)
	assert.Equal(t, "annual-report", got.StrippedTitle)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContentExistsAnyStatusWithoutTenant(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewContentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM content_teams WHERE id = $1 LIMIT 1")).
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	ok, err := repo.Exists(context.Background(), models.KindTeams, models.ContentLookup{ID: "t1", Filter: models.FilterAny})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContentExistsSoftDeletedMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewContentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM content_journals WHERE id = $1 AND center_id = $2 AND status = $3 LIMIT 1")).
		WithArgs("j1", "c1", int64(models.StatusSoftDeleted)).
		WillReturnError(sql.ErrNoRows)

	ok, err := repo.Exists(context.Background(), models.KindJournals, models.ContentLookup{ID: "j1", CenterID: "c1", Filter: models.FilterSoftDeleted})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContentFindTitleCandidates(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewContentRepository(db)

	rows := contentRow(sqlmock.NewRows(contentRowColumns), "p2", "c1", "The 100% Annual Report", "the-100-annual-report", models.StatusActive)
	mock.ExpectQuery(regexp.QuoteMeta("FROM content_posts WHERE center_id = $1 AND status = $2 AND (stripped_title = $3 OR LOWER(title) LIKE '%' || $4 || '%') AND id <> $5 LIMIT 20")).
		WithArgs("c1", int64(models.StatusActive), "100-annual-report", `100\% annual report`, "p1").
		WillReturnRows(rows)

	got, err := repo.FindTitleCandidates(context.Background(), models.KindPosts, models.TitleQuery{
		CenterID:      "c1",
		Title:         "100% Annual Report",
		StrippedTitle: "100-annual-report",
		ExcludeID:     "p1",
	})
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContentCountAndSlice(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewContentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM content_projects WHERE center_id = $1 AND status = $2")).
		WithArgs("c1", int64(models.StatusActive)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(45))
	rows := contentRow(sqlmock.NewRows(contentRowColumns), "x1", "c1", "Solar", "solar", models.StatusActive)
	mock.ExpectQuery(regexp.QuoteMeta("FROM content_projects WHERE center_id = $1 AND status = $2 ORDER BY created_at DESC, id DESC LIMIT 20 OFFSET 25")).
		WithArgs("c1", int64(models.StatusActive)).
		WillReturnRows(rows)

	total, err := repo.CountActive(context.Background(), models.KindProjects, "c1")
	require.NoError(t, err)
	assert.Equal(t, 45, total)

	list, err := repo.SliceActive(context.Background(), models.KindProjects, "c1", 25, 20)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContentCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewContentRepository(db)

	mock.ExpectExec("INSERT INTO content_policies").WillReturnResult(sqlmock.NewResult(1, 1))

	content := &models.Content{CenterID: "c1", Title: "Leave Policy", StrippedTitle: "leave-policy", Status: models.StatusActive}
	require.NoError(t, repo.Create(context.Background(), models.KindPolicies, content))
	assert.NotEmpty(t, content.ID)
	assert.False(t, content.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContentSoftDeleteNoRows(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewContentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE content_posts SET status = $3, updated_at = $4 WHERE id = $1 AND center_id = $2 AND status = $5")).
		WithArgs("p1", "c1", int64(models.StatusSoftDeleted), sqlmock.AnyArg(), int64(models.StatusActive)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SoftDelete(context.Background(), models.KindPosts, "c1", "p1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContentPurge(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewContentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM content_galleries WHERE id = $1 AND center_id = $2 AND status = $3")).
		WithArgs("g1", "c1", int64(models.StatusSoftDeleted)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Purge(context.Background(), models.KindGalleries, "c1", "g1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\% off\_now \\ ok`, escapeLike(`50% off_now \ ok`))
}
